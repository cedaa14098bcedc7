// Package flows contains pure-function orchestrators for the client's core
// operations.
//
// Each flow function (RunSend, RunResolve) accepts a typed dependency struct
// and returns results without side-effects beyond those dependencies. This
// design enables exhaustive unit testing with mock dependencies and keeps the
// Client type thin.
//
// # Architecture boundaries
//
// Flow functions coordinate calls to the transport, the refresh coordinator,
// and the auth state store. They do NOT own any of these resources —
// ownership stays with the Client.
//
// # What this package must NOT do
//
//   - Hold mutable state between calls.
//   - Import hubauth (to avoid import cycles).
//   - Perform I/O directly — all I/O is mediated through dependency funcs.
package flows
