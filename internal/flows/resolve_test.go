package flows

import (
	"context"
	"errors"
	"testing"

	"github.com/volunteerhub/hubauth/authstate"
)

func volunteer() *authstate.User {
	return &authstate.User{ID: "u1", Name: "Ada", Role: authstate.RoleVolunteer}
}

func TestRunResolveAuthorizedWithMatchingRole(t *testing.T) {
	res := RunResolve(context.Background(), ResolveDeps{
		CurrentUser: func() *authstate.User { return volunteer() },
		Roles:       []authstate.Role{authstate.RoleVolunteer, authstate.RoleAdmin},
	})

	if res.State != ResolveAuthorized || !res.IsAuthenticated || !res.IsAuthorized {
		t.Fatalf("unexpected resolution %+v", res)
	}
	if res.User == nil || res.User.ID != "u1" {
		t.Fatalf("expected the resolved user, got %+v", res.User)
	}
}

func TestRunResolveForbiddenOnRoleMismatch(t *testing.T) {
	res := RunResolve(context.Background(), ResolveDeps{
		CurrentUser: func() *authstate.User { return volunteer() },
		Roles:       []authstate.Role{authstate.RoleNGO},
	})

	if res.State != ResolveForbidden {
		t.Fatalf("expected forbidden, got %+v", res)
	}
	if !res.IsAuthenticated || res.IsAuthorized {
		t.Fatal("forbidden means authenticated but not authorized")
	}
	if res.RedirectURL != "" {
		t.Fatal("role mismatch must not redirect to login")
	}
}

func TestRunResolveEmptyStoreTriggersOneRefresh(t *testing.T) {
	var user *authstate.User
	refreshes := 0

	res := RunResolve(context.Background(), ResolveDeps{
		CurrentUser: func() *authstate.User { return user },
		Refresh: func(context.Context) error {
			refreshes++
			user = volunteer()
			return nil
		},
		RedirectBase: "/auth/login",
		ReturnParam:  "returnUrl",
		CurrentPath:  "/dashboard",
	})

	if refreshes != 1 {
		t.Fatalf("expected exactly one refresh attempt, got %d", refreshes)
	}
	if res.State != ResolveAuthorized {
		t.Fatalf("expected authorized after successful refresh, got %+v", res)
	}
}

func TestRunResolveRefreshFailureFoldsToUnauthenticated(t *testing.T) {
	res := RunResolve(context.Background(), ResolveDeps{
		CurrentUser:  func() *authstate.User { return nil },
		Refresh:      func(context.Context) error { return errors.New("refresh rejected") },
		RedirectBase: "/auth/login",
		ReturnParam:  "returnUrl",
		CurrentPath:  "/dashboard/settings",
	})

	if res.State != ResolveUnauthenticated {
		t.Fatalf("expected unauthenticated, got %+v", res)
	}
	if res.RedirectURL != "/auth/login?returnUrl=%2Fdashboard%2Fsettings" {
		t.Fatalf("unexpected redirect %q", res.RedirectURL)
	}
}

func TestRunResolvePassiveNeverRefreshes(t *testing.T) {
	refreshes := 0
	res := RunResolve(context.Background(), ResolveDeps{
		CurrentUser: func() *authstate.User { return nil },
		Refresh: func(context.Context) error {
			refreshes++
			return nil
		},
		Passive:      true,
		RedirectBase: "/auth/login",
		ReturnParam:  "returnUrl",
		CurrentPath:  "/dashboard",
	})

	if refreshes != 0 {
		t.Fatal("passive resolution must not trigger refresh")
	}
	if res.RedirectURL != "" {
		t.Fatal("passive resolution must not compute a redirect")
	}
	if res.State != ResolveUnauthenticated {
		t.Fatalf("expected unauthenticated, got %+v", res)
	}
}

func TestRoleSatisfies(t *testing.T) {
	cases := []struct {
		name     string
		role     authstate.Role
		required []authstate.Role
		want     bool
	}{
		{"empty requirement admits volunteer", authstate.RoleVolunteer, nil, true},
		{"empty requirement admits unset", authstate.RoleUnset, nil, true},
		{"matching role", authstate.RoleNGO, []authstate.Role{authstate.RoleNGO}, true},
		{"one of several", authstate.RoleAdmin, []authstate.Role{authstate.RoleNGO, authstate.RoleAdmin}, true},
		{"mismatch", authstate.RoleVolunteer, []authstate.Role{authstate.RoleNGO}, false},
		{"unset never satisfies non-empty", authstate.RoleUnset, []authstate.Role{authstate.RoleVolunteer}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := RoleSatisfies(tc.role, tc.required); got != tc.want {
				t.Fatalf("RoleSatisfies(%v, %v) = %v, want %v", tc.role, tc.required, got, tc.want)
			}
		})
	}
}

func TestLoginRedirectURL(t *testing.T) {
	cases := []struct {
		name string
		path string
		want string
	}{
		{"normal path", "/dashboard/settings", "/auth/login?returnUrl=%2Fdashboard%2Fsettings"},
		{"already at login", "/auth/login", "/auth/login?returnUrl=%2F"},
		{"empty path", "", "/auth/login?returnUrl=%2F"},
		{"path with query chars", "/jobs?remote=true", "/auth/login?returnUrl=%2Fjobs%3Fremote%3Dtrue"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := LoginRedirectURL("/auth/login", "returnUrl", tc.path)
			if got != tc.want {
				t.Fatalf("LoginRedirectURL(%q) = %q, want %q", tc.path, got, tc.want)
			}
		})
	}
}
