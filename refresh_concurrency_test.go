package hubauth

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/volunteerhub/hubauth/internal/backendtest"
)

func newTestClient(t *testing.T, backend *backendtest.Server) *Client {
	t.Helper()

	cfg := DefaultConfig()
	cfg.HTTP.BaseURL = backend.URL()
	cfg.HTTP.RequestTimeout = 5 * time.Second
	cfg.HTTP.RefreshTimeout = 5 * time.Second

	client, err := New().WithConfig(cfg).WithMetricsEnabled(true).Build()
	if err != nil {
		t.Fatalf("build client: %v", err)
	}
	t.Cleanup(client.Close)
	return client
}

func login(t *testing.T, client *Client) *User {
	t.Helper()
	user, err := client.Login(context.Background(), LoginRequest{
		Email:    "ada@example.org",
		Password: "hunter22",
	})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	return user
}

func TestExpiredTokenRefreshedAndReplayedOnce(t *testing.T) {
	backend := backendtest.New()
	defer backend.Close()

	client := newTestClient(t, backend)
	login(t, client)
	backend.ExpireAccessTokens()

	user, err := client.CurrentUserRemote(context.Background())
	if err != nil {
		t.Fatalf("expected transparent refresh, got %v", err)
	}
	if user.Email != "ada@example.org" {
		t.Fatalf("unexpected user %q", user.Email)
	}
	if got := backend.RefreshCalls(); got != 1 {
		t.Fatalf("expected 1 refresh call, got %d", got)
	}
	if got := client.MetricValue(MetricReplay); got != 1 {
		t.Fatalf("expected 1 replay, got %d", got)
	}
}

func TestConcurrent401StormTriggersSingleRefresh(t *testing.T) {
	backend := backendtest.New()
	defer backend.Close()

	client := newTestClient(t, backend)
	login(t, client)
	backend.ExpireAccessTokens()
	backend.SetRefreshDelay(100 * time.Millisecond)

	const n = 16
	var wg sync.WaitGroup
	wg.Add(n)

	results := make(chan error, n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_, err := client.CurrentUserRemote(context.Background())
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	for err := range results {
		if err != nil {
			t.Fatalf("expected every request to succeed after refresh, got %v", err)
		}
	}

	if got := backend.RefreshCalls(); got != 1 {
		t.Fatalf("expected exactly one refresh round trip, got %d", got)
	}
	if got := client.MetricValue(MetricRefreshStarted); got != 1 {
		t.Fatalf("expected one refresh cycle, got %d", got)
	}
	if got := client.MetricValue(MetricRefreshCoalesced); got != n-1 {
		t.Fatalf("expected %d coalesced waiters, got %d", n-1, got)
	}
	if got := client.MetricValue(MetricReplay); got != n {
		t.Fatalf("expected %d replays, got %d", n, got)
	}
	if got := client.refresh.depth(); got != 0 {
		t.Fatalf("expected an empty waiter queue after settlement, got %d", got)
	}
}

func TestRefreshFailureRejectsAllWaitersAndClearsState(t *testing.T) {
	backend := backendtest.New()
	defer backend.Close()

	client := newTestClient(t, backend)
	login(t, client)
	backend.ExpireAccessTokens()
	backend.FailRefresh(true)
	backend.SetRefreshDelay(50 * time.Millisecond)

	const n = 8
	var wg sync.WaitGroup
	wg.Add(n)

	results := make(chan error, n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_, err := client.CurrentUserRemote(context.Background())
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	for err := range results {
		if err == nil {
			t.Fatal("expected refresh failure to reject the request")
		}
		if !errors.Is(err, ErrRefreshFailed) {
			t.Fatalf("expected ErrRefreshFailed, got %v", err)
		}
	}

	if got := backend.RefreshCalls(); got != 1 {
		t.Fatalf("expected one refresh attempt, got %d", got)
	}
	if client.State().IsAuthenticated() {
		t.Fatal("expected auth state cleared after refresh rejection")
	}
}

func TestSecond401AfterReplayIsTerminal(t *testing.T) {
	backend := backendtest.New()
	defer backend.Close()

	client := newTestClient(t, backend)
	login(t, client)

	// Original dispatch and replay both observe a 401; the refresh between
	// them succeeds, so the second 401 must surface, not loop.
	backend.ForceUnauthorized(2)

	_, err := client.CurrentUserRemote(context.Background())
	if err == nil {
		t.Fatal("expected terminal 401 after failed replay")
	}
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if !errors.Is(err, ErrRetryExhausted) {
		t.Fatalf("expected ErrRetryExhausted, got %v", err)
	}
	// One refresh for the first 401, a replay 401, no second cycle for the
	// same request.
	if got := backend.RefreshCalls(); got != 1 {
		t.Fatalf("expected one refresh call, got %d", got)
	}
}

func TestRequestStatusPassthroughNon401(t *testing.T) {
	backend := backendtest.New()
	defer backend.Close()

	client := newTestClient(t, backend)
	login(t, client)

	_, err := client.GetJob(context.Background(), "no-such-job")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusNotFound {
		t.Fatalf("expected APIError 404, got %v", err)
	}
	if got := backend.RefreshCalls(); got != 0 {
		t.Fatalf("404 must not trigger refresh, got %d calls", got)
	}
}

func TestWaiterContextCancellationLeavesCycleRunning(t *testing.T) {
	backend := backendtest.New()
	defer backend.Close()

	client := newTestClient(t, backend)
	login(t, client)
	backend.ExpireAccessTokens()
	backend.SetRefreshDelay(200 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := client.Refresh(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error for the impatient waiter, got %v", err)
	}

	// The detached cycle still completes and installs the new token.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if client.MetricValue(MetricRefreshSuccess) == 1 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if got := client.MetricValue(MetricRefreshSuccess); got != 1 {
		t.Fatalf("expected the refresh cycle to finish despite cancellation, got %d successes", got)
	}
	if !client.State().IsAuthenticated() {
		t.Fatal("expected fresh auth state after the detached cycle settled")
	}
}

func TestPendingQueueSettlesInArrivalOrder(t *testing.T) {
	rc := &refreshCoordinator{}

	owner, first := rc.join()
	if !owner {
		t.Fatal("first joiner must own the cycle")
	}
	_, second := rc.join()
	_, third := rc.join()

	if got := rc.depth(); got != 3 {
		t.Fatalf("expected 3 parked waiters, got %d", got)
	}
	if rc.queue[0] != first || rc.queue[1] != second || rc.queue[2] != third {
		t.Fatal("queue does not preserve arrival order")
	}

	wantErr := errors.New("session over")
	if settled := rc.settle(wantErr); settled != 3 {
		t.Fatalf("expected 3 settled waiters, got %d", settled)
	}

	for i, w := range []*pendingRequest{first, second, third} {
		select {
		case out := <-w.done:
			if !errors.Is(out.err, wantErr) {
				t.Fatalf("waiter %d got %v, want %v", i, out.err, wantErr)
			}
		default:
			t.Fatalf("waiter %d was not settled", i)
		}
	}

	if got := rc.depth(); got != 0 {
		t.Fatalf("expected an empty queue after settle, got depth %d", got)
	}
	if owner, _ := rc.join(); !owner {
		t.Fatal("coordinator must reopen for the next cycle")
	}
}
