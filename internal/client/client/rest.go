package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/bitacora/internal/client/models"
	"github.com/dmitrijs2005/bitacora/internal/common"
	"github.com/dmitrijs2005/bitacora/internal/logging"
	"github.com/google/uuid"
)

// Result is a successful answer. NoContent is set for 204 and Body is then
// empty.
type Result struct {
	StatusCode int
	NoContent  bool
	Body       json.RawMessage
}

// Decode parses the body into v.
func (r *Result) Decode(v any) error {
	if r == nil || r.NoContent {
		return fmt.Errorf("%w: no content", ErrInvalidResponse)
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}
	return nil
}

type Option func(*RESTClient)

// WithHTTPClient replaces http.DefaultClient.
func WithHTTPClient(h *http.Client) Option {
	return func(c *RESTClient) { c.http = h }
}

type RESTClient struct {
	serverURL string
	apiRoot   string
	http      *http.Client
	tokens    TokenSource
	log       logging.Logger

	inflight atomic.Int32

	mu      sync.Mutex
	lastErr error
}

var _ Client = (*RESTClient)(nil)

// NewRESTClient builds a client for the server at serverURL. tokens may be
// nil, in which case no Authorization header is sent.
func NewRESTClient(serverURL string, tokens TokenSource, log logging.Logger, opts ...Option) *RESTClient {
	base := strings.TrimRight(serverURL, "/")
	c := &RESTClient{
		serverURL: base,
		apiRoot:   base + "/api/",
		http:      http.DefaultClient,
		tokens:    tokens,
		log:       log,
	}
	if c.log == nil {
		c.log = logging.Nop()
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *RESTClient) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Loading reports whether a Request is in flight.
func (c *RESTClient) Loading() bool {
	return c.inflight.Load() > 0
}

func (c *RESTClient) Request(ctx context.Context, method, endpoint string, body any, query url.Values) (*Result, error) {
	c.inflight.Add(1)
	defer c.inflight.Add(-1)

	res, err := c.do(ctx, method, c.endpointURL(endpoint, query), body)

	c.mu.Lock()
	c.lastErr = err
	c.mu.Unlock()

	if err != nil {
		return nil, err
	}
	return res, nil
}

func (c *RESTClient) endpointURL(endpoint string, query url.Values) string {
	u := c.apiRoot + strings.TrimPrefix(endpoint, "/")
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

func (c *RESTClient) DocumentURL(id int64) string {
	return c.endpointURL(fmt.Sprintf("bitacoras/%d/reporte/", id), nil)
}

func (c *RESTClient) newRequest(ctx context.Context, method, target string, body any, token string) (*http.Request, string, error) {
	var rd io.Reader
	if body != nil && method != http.MethodGet {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, "", fmt.Errorf("encode request body: %w", err)
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, rd)
	if err != nil {
		return nil, "", fmt.Errorf("build request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(common.RequestIDHeaderName, requestID)
	if token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.AuthorizationScheme+" "+token)
	}
	return req, requestID, nil
}

func (c *RESTClient) token() string {
	if c.tokens == nil {
		return ""
	}
	return c.tokens.Token()
}

// send executes req and reads the whole body. Non-2xx answers become *APIError.
func (c *RESTClient) send(req *http.Request, requestID string) (int, []byte, error) {
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn(req.Context(), "request failed", "method", req.Method, "url", req.URL.String(), "request_id", requestID, "error", err)
		return 0, nil, fmt.Errorf("%w: %s %s: %w", ErrUnavailable, req.Method, req.URL.String(), err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: read body: %w", ErrUnavailable, err)
	}

	c.log.Debug(req.Context(), "request done",
		"method", req.Method,
		"url", req.URL.String(),
		"status", resp.StatusCode,
		"request_id", requestID,
		"duration", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{
			Method:     req.Method,
			URL:        req.URL.String(),
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       data,
		}
		c.log.Warn(req.Context(), "request rejected", "method", req.Method, "url", req.URL.String(), "status", resp.StatusCode, "request_id", requestID)
		return resp.StatusCode, data, apiErr
	}
	return resp.StatusCode, data, nil
}

func (c *RESTClient) do(ctx context.Context, method, target string, body any) (*Result, error) {
	req, requestID, err := c.newRequest(ctx, method, target, body, c.token())
	if err != nil {
		return nil, err
	}

	status, data, err := c.send(req, requestID)
	if err != nil {
		c.evictOnUnauthorized(ctx, err)
		return nil, err
	}

	if status == http.StatusNoContent {
		return &Result{StatusCode: status, NoContent: true}, nil
	}

	if !json.Valid(data) {
		return nil, fmt.Errorf("%w: %s %s returned %d with a non-JSON body", ErrInvalidResponse, method, target, status)
	}
	return &Result{StatusCode: status, Body: json.RawMessage(data)}, nil
}

func (c *RESTClient) evictOnUnauthorized(ctx context.Context, err error) {
	if c.tokens == nil || !errors.Is(err, ErrUnauthorized) {
		return
	}
	c.log.Warn(ctx, "token rejected by server, clearing session")
	c.tokens.Invalidate(ctx)
}

// ObtainToken exchanges credentials for a token. A 400 or 401 answer is
// reported as ErrInvalidCredentials. The current session is never touched.
func (c *RESTClient) ObtainToken(ctx context.Context, username, password string) (string, error) {
	creds := map[string]string{"username": username, "password": password}
	req, requestID, err := c.newRequest(ctx, http.MethodPost, c.serverURL+"/api-token-auth/", creds, "")
	if err != nil {
		return "", err
	}

	status, data, err := c.send(req, requestID)
	if err != nil {
		if status == http.StatusBadRequest || status == http.StatusUnauthorized {
			return "", fmt.Errorf("%w: %w", ErrInvalidCredentials, err)
		}
		return "", err
	}

	var out struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}
	if out.Token == "" {
		return "", fmt.Errorf("%w: empty token", ErrInvalidResponse)
	}
	return out.Token, nil
}

// CurrentUser loads the profile bound to token without evicting on 401.
func (c *RESTClient) CurrentUser(ctx context.Context, token string) (*models.User, error) {
	req, requestID, err := c.newRequest(ctx, http.MethodGet, c.endpointURL("current_user/", nil), nil, token)
	if err != nil {
		return nil, err
	}

	_, data, err := c.send(req, requestID)
	if err != nil {
		return nil, err
	}

	var u models.User
	if err := json.Unmarshal(data, &u); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}
	return &u, nil
}

// Download streams a non-JSON resource (relative to the API root) into w.
func (c *RESTClient) Download(ctx context.Context, endpoint string, w io.Writer) (int64, error) {
	req, requestID, err := c.newRequest(ctx, http.MethodGet, c.endpointURL(endpoint, nil), nil, c.token())
	if err != nil {
		return 0, err
	}
	req.Header.Set("Accept", "*/*")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %s: %w", ErrUnavailable, req.Method, req.URL.String(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		apiErr := &APIError{
			Method:     req.Method,
			URL:        req.URL.String(),
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       data,
		}
		c.evictOnUnauthorized(ctx, apiErr)
		return 0, apiErr
	}

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, fmt.Errorf("download %s: %w", req.URL.String(), err)
	}
	c.log.Debug(ctx, "download done", "url", req.URL.String(), "bytes", n, "request_id", requestID)
	return n, nil
}
