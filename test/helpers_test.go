package test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	hubauth "github.com/volunteerhub/hubauth"
	"github.com/volunteerhub/hubauth/internal/backendtest"
)

// newClientPair starts a mock VolunteerHub backend and builds a client
// against it with short timeouts suitable for tests.
func newClientPair(t *testing.T) (*hubauth.Client, *backendtest.Server) {
	t.Helper()

	backend := backendtest.New()
	t.Cleanup(backend.Close)

	return newClientFor(t, backend), backend
}

// newClientFor builds an additional client against an already-running
// backend, so tests can simulate independent browser sessions.
func newClientFor(t *testing.T, backend *backendtest.Server) *hubauth.Client {
	t.Helper()

	cfg := hubauth.DefaultConfig()
	cfg.HTTP.BaseURL = backend.URL()
	cfg.HTTP.RequestTimeout = 5 * time.Second
	cfg.HTTP.RefreshTimeout = 5 * time.Second

	client, err := hubauth.New().
		WithConfig(cfg).
		WithMetricsEnabled(true).
		Build()
	require.NoError(t, err)
	t.Cleanup(client.Close)

	return client
}

func loginVolunteer(t *testing.T, client *hubauth.Client) *hubauth.User {
	t.Helper()

	user, err := client.Login(context.Background(), hubauth.LoginRequest{
		Email:    "ada@example.org",
		Password: "hunter22",
	})
	require.NoError(t, err)
	return user
}

func loginNGO(t *testing.T, client *hubauth.Client) *hubauth.User {
	t.Helper()

	user, err := client.Login(context.Background(), hubauth.LoginRequest{
		Email:    "org@example.org",
		Password: "hunter22",
	})
	require.NoError(t, err)
	return user
}
