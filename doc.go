// Package hubauth provides the client-side authentication runtime for the
// VolunteerHub job board: a resilient HTTP client with transparent token
// refresh, a persistent auth-state store, and an advisory role gate.
//
// The package is designed for concurrent use: Client methods are safe to call
// from multiple goroutines after initialization through [Builder.Build].
//
// # Architecture boundaries
//
// hubauth is the public surface. It exposes [Client], [Builder], [Config], and
// value types (Resolution, MetricsSnapshot, etc.). Internal coordination such
// as the send/refresh orchestration lives under internal/ and the authstate
// package and is never re-exported from there.
//
// # What this package must NOT do
//
//   - Store the refresh credential. It travels as an HttpOnly cookie in the
//     transport's jar and the Client never reads it.
//   - Retry a request more than once. One refresh cycle per request lifetime,
//     enforced before coordination starts.
//   - Import any sub-package that re-imports hubauth (no import cycles).
//
// # Concurrency contract
//
// However many requests observe a 401 concurrently, at most one refresh round
// trip runs; every affected request parks on its outcome and replays (or
// fails) exactly once. Store reads never block on network I/O.
package hubauth
