package flows

import (
	"context"
	"net/http"
)

// SendFailureKind classifies send failures for root-level mapping.
type SendFailureKind int

const (
	SendFailureNone SendFailureKind = iota
	SendFailureTransport
	SendFailureAuthTerminal
	SendFailureRefresh
)

// SendResult carries the final HTTP status of the request or classified
// failure metadata. A non-2xx status with SendFailureNone means the response
// is handed back to the caller unmodified (no retry owned by this flow).
type SendResult struct {
	Failure SendFailureKind
	Err     error
	Status  int

	// RefreshAttempted is true when this send triggered or joined a
	// refresh cycle, whatever its outcome.
	RefreshAttempted bool
}

// SendDeps captures the send flow dependencies.
type SendDeps struct {
	// Dispatch performs one transport round trip with the current token
	// attached. It is invoked at most twice: original and replay.
	Dispatch func(ctx context.Context) (int, error)
	// Retried reports whether this request already went through a replay.
	Retried func() bool
	// MarkRetried flags the request before the refresh cycle starts, so a
	// second 401 can never re-enter coordination.
	MarkRetried func()
	// IsRefreshCall is true when the request targets the refresh endpoint
	// itself; a 401 there is terminal.
	IsRefreshCall bool
	// AwaitRefresh joins the single-flight refresh cycle, starting one if
	// none is in flight, and blocks until it settles or ctx is done.
	AwaitRefresh func(ctx context.Context) error
	// ClearAuth drops the local auth state; invoked only on the terminal
	// refresh-endpoint 401.
	ClearAuth func(ctx context.Context)
}

// RunSend executes the resilient send decision tree: dispatch, classify a
// 401, coordinate a refresh, replay once. Transport errors and non-401
// statuses pass through untouched; a request observes at most one refresh
// cycle in its lifetime.
func RunSend(ctx context.Context, deps SendDeps) SendResult {
	status, err := deps.Dispatch(ctx)
	if err != nil {
		return SendResult{Failure: SendFailureTransport, Err: err}
	}
	if status != http.StatusUnauthorized {
		return SendResult{Status: status}
	}

	// 401 on the refresh endpoint: do not recurse into another refresh.
	if deps.IsRefreshCall {
		deps.ClearAuth(ctx)
		return SendResult{Failure: SendFailureAuthTerminal, Status: status}
	}

	// 401 after a replay with a fresh token: surface the second failure.
	if deps.Retried() {
		return SendResult{Failure: SendFailureAuthTerminal, Status: status}
	}

	deps.MarkRetried()

	if err := deps.AwaitRefresh(ctx); err != nil {
		return SendResult{
			Failure:          SendFailureRefresh,
			Err:              err,
			Status:           status,
			RefreshAttempted: true,
		}
	}

	status, err = deps.Dispatch(ctx)
	if err != nil {
		return SendResult{Failure: SendFailureTransport, Err: err, RefreshAttempted: true}
	}
	if status == http.StatusUnauthorized {
		return SendResult{Failure: SendFailureAuthTerminal, Status: status, RefreshAttempted: true}
	}
	return SendResult{Status: status, RefreshAttempted: true}
}
