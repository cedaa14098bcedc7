package guard

import (
	"context"
	"net/http"

	hubauth "github.com/volunteerhub/hubauth"
)

type userContextKey struct{}

// UserFromContext returns the account injected by [RequireRoles], if any.
func UserFromContext(ctx context.Context) (*hubauth.User, bool) {
	u, ok := ctx.Value(userContextKey{}).(*hubauth.User)
	return u, ok
}

// RequireRoles builds middleware protecting a route subtree. An
// unauthenticated caller is redirected to the login page with a return
// parameter; an authenticated caller whose role misses the allow-list gets
// a 403. The authorized user is injected into the request context.
//
// An empty role list admits any authenticated account.
func RequireRoles(client *hubauth.Client, roles ...hubauth.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if client == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			res := client.ResolveAuth(r.Context(), r.URL.Path, hubauth.Requirement{
				Roles: roles,
			})

			switch res.State {
			case hubauth.ResolutionUnauthenticated:
				http.Redirect(w, r, res.RedirectURL, http.StatusFound)
				return
			case hubauth.ResolutionForbidden:
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}

			ctx := context.WithValue(r.Context(), userContextKey{}, res.User)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Check is the passive form: it reports the current auth state without
// triggering a refresh or computing a redirect. Layout code uses it to
// branch on login status cheaply.
func Check(client *hubauth.Client, ctx context.Context, roles ...hubauth.Role) hubauth.Resolution {
	if client == nil {
		return hubauth.Resolution{State: hubauth.ResolutionUnauthenticated}
	}
	return client.ResolveAuth(ctx, "", hubauth.Requirement{
		Roles:   roles,
		Passive: true,
	})
}
