package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

var (
	ErrUnavailable        = errors.New("server unavailable")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("not found")
	ErrBadRequest         = errors.New("bad request")
	ErrInvalidResponse    = errors.New("invalid response")
	ErrInvalidCredentials = errors.New("incorrect credentials")
)

// APIError is a non-2xx answer from the server.
type APIError struct {
	Method     string
	URL        string
	StatusCode int
	Status     string
	Body       []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Method, e.URL, e.Status)
}

// Unwrap maps the status code to the package sentinels.
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusBadRequest:
		return ErrBadRequest
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	}
	return nil
}

// Detail extracts a human readable message from the error body. The API
// answers either {"detail": "..."} or a map of field names to messages.
func (e *APIError) Detail() string {
	var detail struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(e.Body, &detail); err == nil && detail.Detail != "" {
		return detail.Detail
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(e.Body, &fields); err == nil && len(fields) > 0 {
		parts := make([]string, 0, len(fields))
		for k, v := range fields {
			var msgs []string
			if err := json.Unmarshal(v, &msgs); err == nil {
				parts = append(parts, k+": "+strings.Join(msgs, " "))
				continue
			}
			parts = append(parts, k+": "+string(v))
		}
		sort.Strings(parts)
		return strings.Join(parts, "; ")
	}

	body := strings.TrimSpace(string(e.Body))
	if body == "" {
		return e.Status
	}
	if len(body) > 200 {
		body = body[:200] + "..."
	}
	return body
}
