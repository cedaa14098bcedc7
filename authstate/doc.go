// Package authstate provides the client-session auth state store and its
// durable persistence backends.
//
// # Binary encoding
//
// Snapshots are persisted in a compact binary format (schema versions v1–v2)
// decoded tolerantly on restore. The encoder is append-only: new versions add
// fields but never reinterpret old ones. A snapshot that fails to decode is
// treated as "no prior state", logged, and discarded.
//
// # Architecture boundaries
//
// This package owns the [Store] (in-memory state + persistence) and the
// [State] model. It does NOT talk to the backend, refresh tokens, or make
// authorization decisions — those responsibilities belong to the Client and
// the guard package.
//
// # What this package must NOT do
//
//   - Import hubauth or guard (no upward imports).
//   - Perform network calls; Storage backends do raw blob I/O only.
//   - Validate or interpret the access token; it is opaque here.
package authstate
