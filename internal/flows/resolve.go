package flows

import (
	"context"
	"net/url"

	"github.com/volunteerhub/hubauth/authstate"
)

// ResolveState mirrors the gate's terminal states for root-level mapping.
type ResolveState int

const (
	ResolveUnauthenticated ResolveState = iota
	ResolveForbidden
	ResolveAuthorized
)

// ResolveResult is the gate's advisory output: the computed booleans plus
// redirect metadata when unauthenticated in active mode.
type ResolveResult struct {
	State           ResolveState
	IsAuthenticated bool
	IsAuthorized    bool
	User            *authstate.User
	RedirectURL     string
}

// ResolveDeps captures resolution flow dependencies.
type ResolveDeps struct {
	// CurrentUser reads the store; nil means unauthenticated.
	CurrentUser func() *authstate.User
	// Refresh invokes the client's single-flight refresh path. Only called
	// when the store is empty and Passive is false.
	Refresh func(ctx context.Context) error
	// Roles is the requirement; empty means any authenticated user.
	Roles []authstate.Role
	// Passive suppresses the refresh trigger and redirect computation.
	Passive bool
	// RedirectBase and ReturnParam shape the login redirect URL.
	RedirectBase string
	ReturnParam  string
	// CurrentPath is the caller's location, used as the returnUrl.
	CurrentPath string
}

// RunResolve evaluates the authentication/authorization state machine: an
// empty store triggers one refresh attempt (active mode only), then the
// role requirement is checked against the resulting user. Every failure
// path folds into Unauthenticated — the gate never propagates errors.
func RunResolve(ctx context.Context, deps ResolveDeps) ResolveResult {
	user := deps.CurrentUser()

	if user == nil && !deps.Passive && deps.Refresh != nil {
		// Refresh failure is not an error here: it simply means the
		// caller is unauthenticated.
		_ = deps.Refresh(ctx)
		user = deps.CurrentUser()
	}

	if user == nil {
		res := ResolveResult{State: ResolveUnauthenticated}
		if !deps.Passive {
			res.RedirectURL = LoginRedirectURL(deps.RedirectBase, deps.ReturnParam, deps.CurrentPath)
		}
		return res
	}

	if !RoleSatisfies(user.Role, deps.Roles) {
		return ResolveResult{
			State:           ResolveForbidden,
			IsAuthenticated: true,
			User:            user,
		}
	}

	return ResolveResult{
		State:           ResolveAuthorized,
		IsAuthenticated: true,
		IsAuthorized:    true,
		User:            user,
	}
}

// RoleSatisfies reports whether role meets the requirement. An empty
// requirement admits any authenticated user; [authstate.RoleUnset] never
// satisfies a non-empty one.
func RoleSatisfies(role authstate.Role, required []authstate.Role) bool {
	if len(required) == 0 {
		return true
	}
	if role == authstate.RoleUnset {
		return false
	}
	for _, r := range required {
		if r == role {
			return true
		}
	}
	return false
}

// LoginRedirectURL builds base?param=<pct-encoded path>. When the caller is
// already at the redirect base the return target falls back to root,
// avoiding a redirect loop.
func LoginRedirectURL(base, param, currentPath string) string {
	returnURL := currentPath
	if returnURL == base || returnURL == "" {
		returnURL = "/"
	}
	return base + "?" + param + "=" + url.QueryEscape(returnURL)
}
