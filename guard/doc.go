// Package guard exposes HTTP middleware adapters over hubauth's auth
// resolution gate.
//
// # Guards
//
//   - [RequireRoles] — active enforcement: resolves auth state (refreshing
//     once when the local store is empty), redirects unauthenticated
//     callers to login with a return URL, rejects wrong roles with 403.
//   - [Check] — passive read of the current state, no refresh, no redirect.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Client calls. It does NOT
// implement resolution logic itself — all decisions are delegated to
// Client.ResolveAuth, so middleware-guarded routes and direct ResolveAuth
// callers always agree.
//
// # What this package must NOT do
//
//   - Read or attach tokens (the Client owns the Authorization header).
//   - Cache resolution results across requests.
//   - Make authorization decisions beyond relaying the Resolution state.
package guard
