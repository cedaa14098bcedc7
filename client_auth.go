package hubauth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Login describes the login operation and its observable behavior.
//
// Login may return an error when input validation, dependency calls, or security checks fail.
// Login does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) Login(ctx context.Context, creds LoginRequest) (*User, error) {
	if strings.TrimSpace(creds.Email) == "" || creds.Password == "" {
		return nil, ErrInvalidCredentials
	}

	var auth AuthResponse
	err := c.postJSON(ctx, c.cfg.Endpoints.LoginPath, creds, &auth, withoutAuth())
	if err != nil {
		// A rejected login ends whatever session was live before it: the
		// caller asserted a new identity and the backend said no.
		c.state.ClearAuth(ctx)
		c.metrics.Inc(MetricLoginFailure)
		c.emitAudit(ctx, AuditEvent{
			EventType: auditEventLogin,
			Success:   false,
			Error:     errString(err),
		})
		if apiStatus(err) == http.StatusUnauthorized {
			return nil, fmt.Errorf("%w: %w", ErrInvalidCredentials, err)
		}
		return nil, err
	}
	if auth.AccessToken == "" {
		c.metrics.Inc(MetricLoginFailure)
		return nil, fmt.Errorf("hubauth: login response carried no access token")
	}

	c.state.SetAuth(ctx, auth.AccessToken, auth.User)
	c.metrics.Inc(MetricLoginSuccess)
	c.emitAudit(ctx, AuditEvent{
		EventType: auditEventLogin,
		UserID:    auth.User.ID,
		Success:   true,
	})

	user := auth.User
	return &user, nil
}

// Logout describes the logout operation and its observable behavior.
//
// Logout may return an error when input validation, dependency calls, or security checks fail.
// Logout does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) Logout(ctx context.Context) error {
	uid := userID(c.state.CurrentUser())

	// Local state is dropped no matter what the backend says: a dead server
	// must not pin a live session on this side.
	err := c.postJSON(ctx, c.cfg.Endpoints.LogoutPath, nil, nil)
	c.state.ClearAuth(ctx)
	c.metrics.Inc(MetricLogout)
	c.metrics.Inc(MetricStateCleared)
	c.emitAudit(ctx, AuditEvent{
		EventType: auditEventLogout,
		UserID:    uid,
		Success:   err == nil,
		Error:     errString(err),
	})
	return err
}

// Refresh describes the refresh operation and its observable behavior.
//
// Refresh may return an error when input validation, dependency calls, or security checks fail.
// Refresh does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) Refresh(ctx context.Context) error {
	if c == nil || c.httpClient == nil {
		return ErrClientNotReady
	}
	if c.closed.Load() {
		return ErrClientClosed
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return c.awaitRefresh(ctx)
}

// RegisterVolunteer describes the registervolunteer operation and its observable behavior.
//
// RegisterVolunteer may return an error when input validation, dependency calls, or security checks fail.
// RegisterVolunteer does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) RegisterVolunteer(ctx context.Context, req RegisterVolunteerRequest) (*User, error) {
	if err := validateRegistration(req.Email, req.Password, req.ConfirmPassword); err != nil {
		return nil, err
	}
	return c.register(ctx, c.cfg.Endpoints.RegisterVolunteerPath, req)
}

// RegisterNGO describes the registerngo operation and its observable behavior.
//
// RegisterNGO may return an error when input validation, dependency calls, or security checks fail.
// RegisterNGO does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) RegisterNGO(ctx context.Context, req RegisterNGORequest) (*User, error) {
	if err := validateRegistration(req.Email, req.Password, req.ConfirmPassword); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.OrganizationName) == "" {
		return nil, fmt.Errorf("hubauth: organization name is required")
	}
	return c.register(ctx, c.cfg.Endpoints.RegisterNGOPath, req)
}

func (c *Client) register(ctx context.Context, path string, req any) (*User, error) {
	var auth AuthResponse
	err := c.postJSON(ctx, path, req, &auth, withoutAuth())
	if err != nil {
		c.metrics.Inc(MetricRegisterFailure)
		c.emitAudit(ctx, AuditEvent{
			EventType: auditEventRegister,
			Path:      path,
			Success:   false,
			Error:     errString(err),
		})
		return nil, err
	}

	// Registration logs the account straight in, same shape as login.
	c.state.SetAuth(ctx, auth.AccessToken, auth.User)
	c.metrics.Inc(MetricRegisterSuccess)
	c.emitAudit(ctx, AuditEvent{
		EventType: auditEventRegister,
		UserID:    auth.User.ID,
		Path:      path,
		Success:   true,
	})

	user := auth.User
	return &user, nil
}

// CurrentUserRemote describes the currentuserremote operation and its observable behavior.
//
// CurrentUserRemote may return an error when input validation, dependency calls, or security checks fail.
// CurrentUserRemote does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) CurrentUserRemote(ctx context.Context) (*User, error) {
	var user User
	if err := c.getJSON(ctx, c.cfg.Endpoints.MePath, nil, &user); err != nil {
		return nil, err
	}
	c.state.UpdateUser(ctx, UserPatch{
		Name:      &user.Name,
		Email:     &user.Email,
		Role:      &user.Role,
		AvatarURL: &user.AvatarURL,
	})
	return &user, nil
}

// UpdateProfile describes the updateprofile operation and its observable behavior.
//
// UpdateProfile may return an error when input validation, dependency calls, or security checks fail.
// UpdateProfile does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) UpdateProfile(ctx context.Context, patch UserPatch) (*User, error) {
	var user User
	if err := c.patchJSON(ctx, c.cfg.Endpoints.ProfilePath, patch, &user); err != nil {
		return nil, err
	}
	c.state.UpdateUser(ctx, patch)
	return &user, nil
}

func validateRegistration(email, password, confirm string) error {
	if strings.TrimSpace(email) == "" || password == "" {
		return ErrInvalidCredentials
	}
	if password != confirm {
		return fmt.Errorf("hubauth: password confirmation does not match")
	}
	return nil
}

func apiStatus(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}
