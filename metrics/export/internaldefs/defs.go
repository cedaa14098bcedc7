package internaldefs

import (
	hubauth "github.com/volunteerhub/hubauth"
)

// CounterDef defines a public type used by hubauth APIs.
//
// CounterDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CounterDef struct {
	ID   hubauth.MetricID
	Name string
	Help string
}

// HistogramDef defines a public type used by hubauth APIs.
//
// HistogramDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type HistogramDef struct {
	ID   hubauth.MetricID
	Name string
	Help string
}

// CounterDefs is an exported constant or variable used by the auth client.
var CounterDefs = []CounterDef{
	{ID: hubauth.MetricRequest, Name: "hubauth_request_total", Help: "Requests submitted to the client."},
	{ID: hubauth.MetricRequestFailure, Name: "hubauth_request_failure_total", Help: "Requests failed at the transport layer."},
	{ID: hubauth.MetricRequestUnauthorized, Name: "hubauth_request_unauthorized_total", Help: "Requests that ended unauthorized."},
	{ID: hubauth.MetricRefreshStarted, Name: "hubauth_refresh_started_total", Help: "Refresh cycles started."},
	{ID: hubauth.MetricRefreshCoalesced, Name: "hubauth_refresh_coalesced_total", Help: "Requests that joined an in-flight refresh cycle."},
	{ID: hubauth.MetricRefreshSuccess, Name: "hubauth_refresh_success_total", Help: "Successful refresh operations."},
	{ID: hubauth.MetricRefreshFailure, Name: "hubauth_refresh_failure_total", Help: "Failed refresh operations."},
	{ID: hubauth.MetricReplay, Name: "hubauth_replay_total", Help: "Requests replayed after a refresh."},
	{ID: hubauth.MetricReplayUnauthorized, Name: "hubauth_replay_unauthorized_total", Help: "Replays rejected with a second 401."},
	{ID: hubauth.MetricLoginSuccess, Name: "hubauth_login_success_total", Help: "Successful login attempts."},
	{ID: hubauth.MetricLoginFailure, Name: "hubauth_login_failure_total", Help: "Failed login attempts."},
	{ID: hubauth.MetricLogout, Name: "hubauth_logout_total", Help: "Logout operations."},
	{ID: hubauth.MetricRegisterSuccess, Name: "hubauth_register_success_total", Help: "Successful registrations."},
	{ID: hubauth.MetricRegisterFailure, Name: "hubauth_register_failure_total", Help: "Failed registrations."},
	{ID: hubauth.MetricStateRestored, Name: "hubauth_state_restored_total", Help: "Auth states rehydrated from storage."},
	{ID: hubauth.MetricStateRevalidated, Name: "hubauth_state_revalidated_total", Help: "Rehydrated states confirmed against the backend."},
	{ID: hubauth.MetricStateCleared, Name: "hubauth_state_cleared_total", Help: "Auth state clear operations."},
	{ID: hubauth.MetricGuardAllowed, Name: "hubauth_guard_allowed_total", Help: "Guard resolutions that authorized the caller."},
	{ID: hubauth.MetricGuardRedirect, Name: "hubauth_guard_redirect_total", Help: "Guard resolutions redirected to login."},
	{ID: hubauth.MetricGuardForbidden, Name: "hubauth_guard_forbidden_total", Help: "Guard resolutions rejected on role."},
}

// HistogramDefs is an exported constant or variable used by the auth client.
var HistogramDefs = []HistogramDef{
	{ID: hubauth.MetricSendLatency, Name: "hubauth_send_latency_seconds", Help: "End-to-end send latency histogram."},
}

// HistogramBounds is an exported constant or variable used by the auth client.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix is an exported constant or variable used by the auth client.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets describes the normalizebuckets operation and its observable behavior.
//
// NormalizeBuckets may return an error when input validation, dependency calls, or security checks fail.
// NormalizeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets describes the cumulativebuckets operation and its observable behavior.
//
// CumulativeBuckets may return an error when input validation, dependency calls, or security checks fail.
// CumulativeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
