package hubauth

import (
	"context"
	"fmt"
	"sync"
	"time"
)

type refreshOutcome struct {
	err error
}

// pendingRequest is one waiter parked on an in-flight refresh cycle. The
// done channel is buffered so settlement never blocks on a waiter that
// already gave up.
type pendingRequest struct {
	done       chan refreshOutcome
	enqueuedAt time.Time
}

// refreshCoordinator serializes token refresh: however many requests hit a
// 401 concurrently, exactly one refresh round trip runs and every caller
// parks on its outcome.
type refreshCoordinator struct {
	mu       sync.Mutex
	inFlight bool
	queue    []*pendingRequest
}

// join enqueues the caller and reports whether it claimed ownership of the
// refresh cycle. The owner is also a waiter: it parks on the same queue and
// the spawned cycle settles everyone at once.
func (rc *refreshCoordinator) join() (owner bool, p *pendingRequest) {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	p = &pendingRequest{
		done:       make(chan refreshOutcome, 1),
		enqueuedAt: time.Now(),
	}
	rc.queue = append(rc.queue, p)

	if !rc.inFlight {
		rc.inFlight = true
		owner = true
	}
	return owner, p
}

// settle drains the queue in arrival order, delivering the shared outcome
// to every waiter, and reopens the coordinator for the next cycle.
func (rc *refreshCoordinator) settle(err error) int {
	rc.mu.Lock()
	waiters := rc.queue
	rc.queue = nil
	rc.inFlight = false
	rc.mu.Unlock()

	for _, w := range waiters {
		w.done <- refreshOutcome{err: err}
	}
	return len(waiters)
}

func (rc *refreshCoordinator) depth() int {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return len(rc.queue)
}

// awaitRefresh joins the current refresh cycle, starting one when none is
// in flight, and blocks until the cycle settles or ctx is done. The cycle
// itself runs on a detached context so one impatient caller cannot strand
// the others.
func (c *Client) awaitRefresh(ctx context.Context) error {
	owner, waiter := c.refresh.join()

	if owner {
		c.metrics.Inc(MetricRefreshStarted)
		go func() {
			err := c.runRefresh()
			settled := c.refresh.settle(err)
			c.emitAudit(context.Background(), AuditEvent{
				EventType: auditEventRefresh,
				UserID:    userID(c.state.CurrentUser()),
				Success:   err == nil,
				Error:     errString(err),
				Metadata:  map[string]string{"settled_waiters": fmt.Sprintf("%d", settled)},
			})
		}()
	} else {
		c.metrics.Inc(MetricRefreshCoalesced)
	}

	select {
	case out := <-waiter.done:
		return out.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// runRefresh performs the refresh round trip against the backend. The
// refresh credential travels out of band (HttpOnly cookie via the client's
// jar), so the request body is empty. Any failure clears local auth state:
// the session is over and every queued caller learns it at once.
func (c *Client) runRefresh() error {
	timeout := c.cfg.HTTP.RefreshTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var auth AuthResponse
	err := c.postJSON(ctx, c.cfg.Endpoints.RefreshPath, nil, &auth, func(r *Request) {
		r.refreshCall = true
	})
	if err != nil {
		c.metrics.Inc(MetricRefreshFailure)
		// runSend already cleared state for a refresh-endpoint 401; for
		// transport failures the session is equally unusable.
		c.clearAuthLocal(ctx, "refresh_failed")
		return fmt.Errorf("%w: %w", ErrRefreshFailed, err)
	}
	if auth.AccessToken == "" {
		c.metrics.Inc(MetricRefreshFailure)
		c.clearAuthLocal(ctx, "refresh_empty_token")
		return fmt.Errorf("%w: backend returned no access token", ErrRefreshFailed)
	}

	c.state.SetAuth(ctx, auth.AccessToken, auth.User)
	c.metrics.Inc(MetricRefreshSuccess)
	return nil
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
