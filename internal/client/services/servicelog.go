package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/dmitrijs2005/bitacora/internal/client/client"
	"github.com/dmitrijs2005/bitacora/internal/client/models"
	"golang.org/x/sync/singleflight"
)

// ServiceLogService covers the bitacoras resource: CRUD, the payment action
// and the summary report. Results are never cached; callers reload the list
// after every mutation.
type ServiceLogService interface {
	List(ctx context.Context) ([]models.ServiceLog, error)
	Get(ctx context.Context, id int64) (*models.ServiceLog, error)
	Create(ctx context.Context, sub models.Submission) (*models.ServiceLog, error)
	Update(ctx context.Context, id int64, sub models.Submission) (*models.ServiceLog, error)
	Delete(ctx context.Context, id int64) error
	MarkPaid(ctx context.Context, id int64, req models.MarkPaidRequest) (*models.ServiceLog, error)
	Summary(ctx context.Context, filter models.ReportFilter) (*models.Report, error)

	DocumentURL(id int64) string
	DownloadDocument(ctx context.Context, id int64, w io.Writer) (int64, error)
}

const resource = "bitacoras/"

type serviceLogService struct {
	client client.Client
	// identical mutations in flight share one request
	mutations singleflight.Group
}

func NewServiceLogService(c client.Client) ServiceLogService {
	return &serviceLogService{client: c}
}

func itemEndpoint(id int64) string {
	return fmt.Sprintf("%s%d/", resource, id)
}

func (s *serviceLogService) List(ctx context.Context) ([]models.ServiceLog, error) {
	res, err := s.client.Request(ctx, http.MethodGet, resource, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("list service logs: %w", err)
	}
	var logs []models.ServiceLog
	if err := res.Decode(&logs); err != nil {
		return nil, fmt.Errorf("list service logs: %w", err)
	}
	return logs, nil
}

func (s *serviceLogService) Get(ctx context.Context, id int64) (*models.ServiceLog, error) {
	res, err := s.client.Request(ctx, http.MethodGet, itemEndpoint(id), nil, nil)
	if err != nil {
		return nil, fmt.Errorf("get service log %d: %w", id, err)
	}
	return decodeLog(res)
}

func decodeLog(res *client.Result) (*models.ServiceLog, error) {
	var l models.ServiceLog
	if err := res.Decode(&l); err != nil {
		return nil, err
	}
	return &l, nil
}

// mutate sends a write request, collapsing identical concurrent calls.
func (s *serviceLogService) mutate(ctx context.Context, method, endpoint string, body any) (*client.Result, error) {
	key := method + " " + endpoint
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		key += " " + string(b)
	}

	v, err, _ := s.mutations.Do(key, func() (any, error) {
		return s.client.Request(ctx, method, endpoint, body, nil)
	})
	if err != nil {
		return nil, err
	}
	return v.(*client.Result), nil
}

func (s *serviceLogService) Create(ctx context.Context, sub models.Submission) (*models.ServiceLog, error) {
	if err := sub.Validate(); err != nil {
		return nil, err
	}
	res, err := s.mutate(ctx, http.MethodPost, resource, sub.Payload())
	if err != nil {
		return nil, fmt.Errorf("create service log: %w", err)
	}
	return decodeLog(res)
}

func (s *serviceLogService) Update(ctx context.Context, id int64, sub models.Submission) (*models.ServiceLog, error) {
	if err := sub.Validate(); err != nil {
		return nil, err
	}
	res, err := s.mutate(ctx, http.MethodPut, itemEndpoint(id), sub.Payload())
	if err != nil {
		return nil, fmt.Errorf("update service log %d: %w", id, err)
	}
	return decodeLog(res)
}

func (s *serviceLogService) Delete(ctx context.Context, id int64) error {
	if _, err := s.mutate(ctx, http.MethodDelete, itemEndpoint(id), nil); err != nil {
		return fmt.Errorf("delete service log %d: %w", id, err)
	}
	return nil
}

func (s *serviceLogService) MarkPaid(ctx context.Context, id int64, req models.MarkPaidRequest) (*models.ServiceLog, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	res, err := s.mutate(ctx, http.MethodPost, itemEndpoint(id)+"marcar_pagado/", req)
	if err != nil {
		return nil, fmt.Errorf("mark service log %d paid: %w", id, err)
	}
	return decodeLog(res)
}

// Summary issues one request per call; the server does the filtering and
// the aggregation.
func (s *serviceLogService) Summary(ctx context.Context, filter models.ReportFilter) (*models.Report, error) {
	q, err := filter.Values()
	if err != nil {
		return nil, fmt.Errorf("encode report filter: %w", err)
	}
	res, err := s.client.Request(ctx, http.MethodGet, resource+"resumen/", nil, q)
	if err != nil {
		return nil, fmt.Errorf("load report: %w", err)
	}
	var rep models.Report
	if err := res.Decode(&rep); err != nil {
		return nil, fmt.Errorf("load report: %w", err)
	}
	return &rep, nil
}

func (s *serviceLogService) DocumentURL(id int64) string {
	return s.client.DocumentURL(id)
}

func (s *serviceLogService) DownloadDocument(ctx context.Context, id int64, w io.Writer) (int64, error) {
	n, err := s.client.Download(ctx, itemEndpoint(id)+"reporte/", w)
	if err != nil {
		return n, fmt.Errorf("download report of %d: %w", id, err)
	}
	return n, nil
}
