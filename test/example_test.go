package test

import (
	"context"
	"net/http"

	"github.com/redis/go-redis/v9"

	hubauth "github.com/volunteerhub/hubauth"
	"github.com/volunteerhub/hubauth/guard"
)

// ExampleNew demonstrates client construction with production-style dependencies.
func ExampleNew() {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:6379"})

	cfg := hubauth.DefaultConfig()
	cfg.HTTP.BaseURL = "https://api.volunteerhub.example"
	cfg.State.PersistenceEnabled = true

	client, _ := hubauth.New().
		WithConfig(cfg).
		WithRedis(rdb, "browser-session-1").
		WithMetricsEnabled(true).
		Build()
	_ = client
}

// ExampleClient_Login shows a typical login call and structured error handling.
func ExampleClient_Login() {
	var client *hubauth.Client
	_, err := client.Login(context.Background(), hubauth.LoginRequest{
		Email:    "ada@example.org",
		Password: "secret",
	})
	if err != nil {
		_ = err
	}
}

// ExampleRequireRoles shows how to gate an HTTP route on an NGO session.
func ExampleRequireRoles() {
	var client *hubauth.Client

	mux := http.NewServeMux()
	mux.Handle("/dashboard/jobs", guard.RequireRoles(client, hubauth.RoleNGO)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, _ := guard.UserFromContext(r.Context())
			_ = user
		}),
	))
}

// ExampleClient_MetricsSnapshot shows how to read in-process metrics counters.
func ExampleClient_MetricsSnapshot() {
	var client *hubauth.Client
	snapshot := client.MetricsSnapshot()
	_ = snapshot
}
