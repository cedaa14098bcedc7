package hubauth

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized is an exported constant or variable used by the auth client.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidCredentials is an exported constant or variable used by the auth client.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrRefreshFailed is an exported constant or variable used by the auth client.
	ErrRefreshFailed = errors.New("token refresh failed")
	// ErrRetryExhausted is an exported constant or variable used by the auth client.
	ErrRetryExhausted = errors.New("request rejected after token refresh")
	// ErrClientClosed is an exported constant or variable used by the auth client.
	ErrClientClosed = errors.New("client closed")
	// ErrForbidden is an exported constant or variable used by the auth client.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound is an exported constant or variable used by the auth client.
	ErrNotFound = errors.New("not found")
	// ErrClientNotReady is an exported constant or variable used by the auth client.
	ErrClientNotReady = errors.New("client not initialized")
)

// APIError is a non-2xx response decoded from the backend's error envelope.
// Status is always set; Code and Message are best-effort and may be empty
// when the body was not the standard envelope.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

// Error describes the error operation and its observable behavior.
//
// Error does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *APIError) Error() string {
	if e == nil {
		return "api error"
	}
	if e.Code != "" {
		return fmt.Sprintf("api error: status %d (%s): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("api error: status %d: %s", e.Status, e.Message)
}

// Is maps well-known statuses onto the sentinel taxonomy so callers can use
// errors.Is without digging the *APIError out first.
func (e *APIError) Is(target error) bool {
	if e == nil {
		return false
	}
	switch target {
	case ErrUnauthorized:
		return e.Status == 401
	case ErrForbidden:
		return e.Status == 403
	case ErrNotFound:
		return e.Status == 404
	default:
		return false
	}
}
