package hubauth

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
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/volunteerhub/hubauth/authstate"
	"github.com/volunteerhub/hubauth/internal/flows"
)

// Request defines a public type used by hubauth APIs.
//
// Request instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header

	// Body is buffered so the request can be replayed after a token
	// refresh without consulting the caller again.
	Body []byte

	retried     bool
	refreshCall bool
	skipAuth    bool
}

// Response defines a public type used by hubauth APIs.
//
// Response instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// Client defines a public type used by hubauth APIs.
//
// Client instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Client struct {
	cfg        *Config
	httpClient *http.Client
	state      *authstate.Store
	refresh    refreshCoordinator
	metrics    *Metrics
	audit      *auditDispatcher
	closed     atomic.Bool
}

// State describes the state operation and its observable behavior.
//
// State may return an error when input validation, dependency calls, or security checks fail.
// State does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) State() *authstate.Store {
	return c.state
}

// MetricValue describes the metricvalue operation and its observable behavior.
//
// MetricValue may return an error when input validation, dependency calls, or security checks fail.
// MetricValue does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) MetricValue(id MetricID) uint64 {
	return c.metrics.Value(id)
}

// MetricsSnapshot describes the metricssnapshot operation and its observable behavior.
//
// MetricsSnapshot may return an error when input validation, dependency calls, or security checks fail.
// MetricsSnapshot does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) MetricsSnapshot() MetricsSnapshot {
	return c.metrics.Snapshot()
}

// AuditDropped describes the auditdropped operation and its observable behavior.
//
// AuditDropped may return an error when input validation, dependency calls, or security checks fail.
// AuditDropped does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) AuditDropped() uint64 {
	return c.audit.Dropped()
}

// Close describes the close operation and its observable behavior.
//
// Close may return an error when input validation, dependency calls, or security checks fail.
// Close does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) Close() {
	if c == nil {
		return
	}
	if c.closed.CompareAndSwap(false, true) {
		c.audit.Close()
	}
}

// Restore describes the restore operation and its observable behavior.
//
// Restore may return an error when input validation, dependency calls, or security checks fail.
// Restore does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) Restore(ctx context.Context) bool {
	if c == nil || c.state == nil {
		return false
	}
	ok := c.state.Restore(ctx)
	if ok {
		if !c.cfg.State.RevalidateOnRestore {
			c.state.ConfirmRestored()
		}
		c.metrics.Inc(MetricStateRestored)
		c.emitAudit(ctx, AuditEvent{
			EventType: auditEventStateRestored,
			UserID:    userID(c.state.CurrentUser()),
			Success:   true,
		})
	}
	return ok
}

// Do describes the do operation and its observable behavior.
//
// Do may return an error when input validation, dependency calls, or security checks fail.
// Do does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	if c == nil || c.httpClient == nil {
		return nil, ErrClientNotReady
	}
	if c.closed.Load() {
		return nil, ErrClientClosed
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if req == nil || req.Method == "" || req.Path == "" {
		return nil, errors.New("hubauth: request method and path are required")
	}

	start := time.Now()
	c.metrics.Inc(MetricRequest)

	var lastResp *Response
	deps := flows.SendDeps{
		Dispatch: func(ctx context.Context) (int, error) {
			resp, err := c.dispatch(ctx, req)
			if err != nil {
				return 0, err
			}
			lastResp = resp
			return resp.Status, nil
		},
		Retried:       func() bool { return req.retried },
		MarkRetried:   func() { req.retried = true },
		IsRefreshCall: req.refreshCall,
		AwaitRefresh:  c.awaitRefresh,
		ClearAuth: func(ctx context.Context) {
			c.clearAuthLocal(ctx, "refresh_rejected")
		},
	}

	res := flows.RunSend(ctx, deps)
	c.metrics.Observe(MetricSendLatency, time.Since(start))

	if res.RefreshAttempted && res.Failure != flows.SendFailureRefresh {
		c.metrics.Inc(MetricReplay)
	}

	switch res.Failure {
	case flows.SendFailureTransport:
		c.metrics.Inc(MetricRequestFailure)
		return nil, res.Err
	case flows.SendFailureRefresh:
		c.metrics.Inc(MetricRequestUnauthorized)
		return nil, res.Err
	case flows.SendFailureAuthTerminal:
		c.metrics.Inc(MetricRequestUnauthorized)
		if res.RefreshAttempted {
			// A second 401 after a successful refresh and replay: the new
			// token was rejected too, so retrying further is pointless.
			c.metrics.Inc(MetricReplayUnauthorized)
			return lastResp, fmt.Errorf("%w: %w", ErrRetryExhausted, decodeAPIError(lastResp))
		}
		return lastResp, decodeAPIError(lastResp)
	}

	// The first authenticated success confirms a rehydrated token is still
	// accepted by the backend.
	if c.state != nil && !req.skipAuth && c.state.RestoredUnverified() {
		c.state.ConfirmRestored()
		c.metrics.Inc(MetricStateRevalidated)
	}

	if lastResp.Status >= 400 {
		return lastResp, decodeAPIError(lastResp)
	}
	return lastResp, nil
}

// dispatch performs one transport round trip: URL assembly, bearer token,
// request ID stamping, full body buffering.
func (c *Client) dispatch(ctx context.Context, req *Request) (*Response, error) {
	reqCtx := ctx
	if c.cfg.HTTP.RequestTimeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, c.cfg.HTTP.RequestTimeout)
		defer cancel()
	}

	target := strings.TrimSuffix(c.cfg.HTTP.BaseURL, "/") + req.Path
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	var body io.Reader
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(reqCtx, req.Method, target, body)
	if err != nil {
		return nil, fmt.Errorf("hubauth: build request: %w", err)
	}

	for k, vs := range req.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	if len(req.Body) > 0 && httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if c.cfg.HTTP.UserAgent != "" {
		httpReq.Header.Set("User-Agent", c.cfg.HTTP.UserAgent)
	}
	if c.cfg.HTTP.StampRequestID {
		id := requestIDFromContext(ctx)
		if id == "" {
			id = uuid.NewString()
		}
		httpReq.Header.Set("X-Request-ID", id)
	}

	// The token is read at dispatch time, not enqueue time, so a replay
	// after refresh always carries the fresh token.
	if !req.skipAuth {
		if token := c.state.CurrentToken(); token != "" {
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("hubauth: %s %s: %w", req.Method, req.Path, err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("hubauth: read response body: %w", err)
	}

	return &Response{
		Status: httpResp.StatusCode,
		Header: httpResp.Header,
		Body:   data,
	}, nil
}

func (c *Client) clearAuthLocal(ctx context.Context, reason string) {
	uid := userID(c.state.CurrentUser())
	c.state.ClearAuth(ctx)
	c.metrics.Inc(MetricStateCleared)
	c.emitAudit(ctx, AuditEvent{
		EventType: auditEventAuthCleared,
		UserID:    uid,
		Success:   true,
		Metadata:  map[string]string{"reason": reason},
	})
}

func (c *Client) emitAudit(ctx context.Context, event AuditEvent) {
	if c.audit == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	if event.RequestID == "" {
		event.RequestID = requestIDFromContext(ctx)
	}
	c.audit.Emit(ctx, event)
}

func userID(u *authstate.User) string {
	if u == nil {
		return ""
	}
	return u.ID
}

// decodeAPIError shapes a non-2xx response into an *APIError. A body that
// is not the standard {code, message} envelope still yields the status.
func decodeAPIError(resp *Response) error {
	apiErr := &APIError{Status: resp.Status}
	if len(resp.Body) > 0 {
		_ = json.Unmarshal(resp.Body, apiErr)
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.Status)
	}
	return apiErr
}

/*
====================================
JSON HELPERS
====================================
*/

func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, in, out any, opts ...func(*Request)) error {
	req := &Request{Method: method, Path: path, Query: query}
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("hubauth: encode request body: %w", err)
		}
		req.Body = data
	}
	for _, opt := range opts {
		opt(req)
	}

	resp, err := c.Do(ctx, req)
	if err != nil {
		return err
	}
	if out == nil || len(resp.Body) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return fmt.Errorf("hubauth: decode response body: %w", err)
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	return c.doJSON(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) postJSON(ctx context.Context, path string, in, out any, opts ...func(*Request)) error {
	return c.doJSON(ctx, http.MethodPost, path, nil, in, out, opts...)
}

func (c *Client) patchJSON(ctx context.Context, path string, in, out any) error {
	return c.doJSON(ctx, http.MethodPatch, path, nil, in, out)
}

func withoutAuth() func(*Request) {
	return func(r *Request) { r.skipAuth = true }
}
