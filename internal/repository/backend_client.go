package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/academy-admin/pkg/config"
	appErrors "github.com/noah-isme/academy-admin/pkg/errors"
	"github.com/noah-isme/academy-admin/pkg/middleware/requestid"
)

const maxErrorBody = 64 << 10

// CallObserver receives latency samples for every backend call.
type CallObserver interface {
	ObserveBackendCall(method, resource string, status int, duration time.Duration)
}

// BackendError is a non-2xx answer from the academy backend.
type BackendError struct {
	Method string
	Path   string
	Status int
	Body   json.RawMessage
	// Fields holds field → messages when the body is a validation map.
	Fields appErrors.FieldErrors
}

func (e *BackendError) Error() string {
	body := strings.TrimSpace(string(e.Body))
	if body == "" {
		return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.Status)
	}
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.Status, body)
}

// BackendClient issues JSON requests against the academy REST API.
type BackendClient struct {
	baseURL  string
	client   *http.Client
	observer CallObserver
	logger   *zap.Logger
}

// NewBackendClient constructs a client for cfg.BaseURL.
func NewBackendClient(cfg config.BackendConfig, observer CallObserver, logger *zap.Logger) *BackendClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BackendClient{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		client:   &http.Client{Timeout: timeout},
		observer: observer,
		logger:   logger,
	}
}

// Get fetches path with query and decodes the JSON body into dest.
func (c *BackendClient) Get(ctx context.Context, path string, query url.Values, dest interface{}) error {
	if len(query) > 0 {
		path += "?" + query.Encode()
	}
	return c.do(ctx, http.MethodGet, path, nil, dest)
}

// Post sends body as JSON and decodes the response into dest.
func (c *BackendClient) Post(ctx context.Context, path string, body, dest interface{}) error {
	return c.do(ctx, http.MethodPost, path, body, dest)
}

// Patch sends a partial update.
func (c *BackendClient) Patch(ctx context.Context, path string, body, dest interface{}) error {
	return c.do(ctx, http.MethodPatch, path, body, dest)
}

// Delete removes the resource at path.
func (c *BackendClient) Delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// Ping requests the API root; any 2xx answer means the backend is reachable.
func (c *BackendClient) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/", nil, nil)
}

func (c *BackendClient) do(ctx context.Context, method, path string, body, dest interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if reqID := requestid.FromContext(ctx); reqID != "" {
		req.Header.Set(requestid.Header, reqID)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	duration := time.Since(start)
	if err != nil {
		c.observe(method, path, http.StatusServiceUnavailable, duration)
		c.logger.Warn("backend call failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	c.observe(method, path, resp.StatusCode, duration)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		backendErr := &BackendError{Method: method, Path: path, Status: resp.StatusCode, Body: raw, Fields: decodeFieldErrors(raw)}
		c.logger.Debug("backend returned error", zap.String("method", method), zap.String("path", path), zap.Int("status", resp.StatusCode))
		return backendErr
	}

	if dest == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func (c *BackendClient) observe(method, path string, status int, duration time.Duration) {
	if c.observer == nil {
		return
	}
	c.observer.ObserveBackendCall(method, resourceOf(path), status, duration)
}

// resourceOf returns the first path segment, e.g. "/students/4/?x" -> "students".
func resourceOf(path string) string {
	trimmed := strings.TrimLeft(path, "/")
	if i := strings.IndexAny(trimmed, "/?"); i >= 0 {
		trimmed = trimmed[:i]
	}
	if trimmed == "" {
		return "root"
	}
	return trimmed
}

// decodeFieldErrors reads the backend's {"field": ["msg", ...]} shape. Plain
// string values count as a single message; anything else is kept as raw JSON.
func decodeFieldErrors(raw []byte) appErrors.FieldErrors {
	var generic map[string]json.RawMessage
	if err := json.Unmarshal(raw, &generic); err != nil || len(generic) == 0 {
		return nil
	}
	fields := make(appErrors.FieldErrors, len(generic))
	for field, value := range generic {
		var list []string
		if err := json.Unmarshal(value, &list); err == nil {
			fields[field] = list
			continue
		}
		var single string
		if err := json.Unmarshal(value, &single); err == nil {
			fields[field] = []string{single}
			continue
		}
		fields[field] = []string{string(value)}
	}
	return fields
}
