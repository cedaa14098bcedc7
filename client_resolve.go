package hubauth

import (
	"context"

	"github.com/volunteerhub/hubauth/internal/flows"
)

// Requirement defines a public type used by hubauth APIs.
//
// Requirement instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Requirement struct {
	// Roles is the allow-list; empty admits any authenticated account.
	Roles []Role
	// Passive suppresses the refresh trigger and the redirect URL: the
	// caller only wants to read the current state, not act on it.
	Passive bool
}

// ResolutionState defines a public type used by hubauth APIs.
//
// ResolutionState instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type ResolutionState int

const (
	// ResolutionUnauthenticated is an exported constant or variable used by the auth client.
	ResolutionUnauthenticated ResolutionState = iota
	// ResolutionForbidden is an exported constant or variable used by the auth client.
	ResolutionForbidden
	// ResolutionAuthorized is an exported constant or variable used by the auth client.
	ResolutionAuthorized
)

// String describes the string operation and its observable behavior.
//
// String does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s ResolutionState) String() string {
	switch s {
	case ResolutionUnauthenticated:
		return "unauthenticated"
	case ResolutionForbidden:
		return "forbidden"
	case ResolutionAuthorized:
		return "authorized"
	default:
		return "unknown"
	}
}

// Resolution is the advisory outcome of one auth gate evaluation. It never
// carries an error: inability to authenticate simply resolves to
// [ResolutionUnauthenticated].
type Resolution struct {
	State           ResolutionState
	IsAuthenticated bool
	IsAuthorized    bool
	User            *User

	// RedirectURL is set only for active unauthenticated resolutions: the
	// login page plus a return parameter pointing back at the caller.
	RedirectURL string
}

// ResolveAuth describes the resolveauth operation and its observable behavior.
//
// ResolveAuth may return an error when input validation, dependency calls, or security checks fail.
// ResolveAuth does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) ResolveAuth(ctx context.Context, currentPath string, req Requirement) Resolution {
	if c == nil || c.state == nil {
		return Resolution{State: ResolutionUnauthenticated}
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if currentPath == "" {
		currentPath = currentPathFromContext(ctx)
	}

	res := flows.RunResolve(ctx, flows.ResolveDeps{
		CurrentUser:  c.state.CurrentUser,
		Refresh:      c.awaitRefresh,
		Roles:        req.Roles,
		Passive:      req.Passive,
		RedirectBase: c.cfg.Guard.RedirectBase,
		ReturnParam:  c.cfg.Guard.ReturnURLParam,
		CurrentPath:  currentPath,
	})

	out := Resolution{
		IsAuthenticated: res.IsAuthenticated,
		IsAuthorized:    res.IsAuthorized,
		User:            res.User,
		RedirectURL:     res.RedirectURL,
	}

	switch res.State {
	case flows.ResolveAuthorized:
		out.State = ResolutionAuthorized
		c.metrics.Inc(MetricGuardAllowed)
	case flows.ResolveForbidden:
		out.State = ResolutionForbidden
		c.metrics.Inc(MetricGuardForbidden)
		c.emitAudit(ctx, AuditEvent{
			EventType: auditEventGuardForbade,
			UserID:    userID(res.User),
			Path:      currentPath,
			Success:   false,
		})
	default:
		out.State = ResolutionUnauthenticated
		if !req.Passive {
			c.metrics.Inc(MetricGuardRedirect)
			c.emitAudit(ctx, AuditEvent{
				EventType: auditEventGuardRedirect,
				Path:      currentPath,
				Success:   false,
			})
		}
	}

	return out
}
