package hubauth

import (
	"testing"
	"time"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantValid bool
	}{
		{
			name:      "defaults valid",
			mutate:    func(*Config) {},
			wantValid: true,
		},
		{
			name: "base url empty",
			mutate: func(c *Config) {
				c.HTTP.BaseURL = ""
			},
			wantValid: false,
		},
		{
			name: "base url relative",
			mutate: func(c *Config) {
				c.HTTP.BaseURL = "/api"
			},
			wantValid: false,
		},
		{
			name: "request timeout zero",
			mutate: func(c *Config) {
				c.HTTP.RequestTimeout = 0
			},
			wantValid: false,
		},
		{
			name: "refresh timeout negative",
			mutate: func(c *Config) {
				c.HTTP.RefreshTimeout = -time.Second
			},
			wantValid: false,
		},
		{
			name: "refresh path missing",
			mutate: func(c *Config) {
				c.Endpoints.RefreshPath = ""
			},
			wantValid: false,
		},
		{
			name: "jobs path without slash",
			mutate: func(c *Config) {
				c.Endpoints.JobsPath = "api/jobs"
			},
			wantValid: false,
		},
		{
			name: "guard redirect base missing",
			mutate: func(c *Config) {
				c.Guard.RedirectBase = ""
			},
			wantValid: false,
		},
		{
			name: "guard return param missing",
			mutate: func(c *Config) {
				c.Guard.ReturnURLParam = ""
			},
			wantValid: false,
		},
		{
			name: "custom https base valid",
			mutate: func(c *Config) {
				c.HTTP.BaseURL = "https://api.volunteerhub.example"
			},
			wantValid: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := defaultConfig()
			tc.mutate(&cfg)

			err := cfg.Validate()
			if tc.wantValid && err != nil {
				t.Fatalf("expected valid config, got %v", err)
			}
			if !tc.wantValid && err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestConfigFromEnvOverridesDefaults(t *testing.T) {
	t.Setenv("HUBAUTH_BASE_URL", "https://staging.volunteerhub.example")
	t.Setenv("HUBAUTH_REQUEST_TIMEOUT", "3s")
	t.Setenv("HUBAUTH_GUARD_RETURN_PARAM", "next")

	cfg, err := ConfigFromEnv()
	if err != nil {
		t.Fatalf("ConfigFromEnv failed: %v", err)
	}

	if cfg.HTTP.BaseURL != "https://staging.volunteerhub.example" {
		t.Fatalf("base url not overridden: %q", cfg.HTTP.BaseURL)
	}
	if cfg.HTTP.RequestTimeout != 3*time.Second {
		t.Fatalf("timeout not overridden: %v", cfg.HTTP.RequestTimeout)
	}
	if cfg.Guard.ReturnURLParam != "next" {
		t.Fatalf("return param not overridden: %q", cfg.Guard.ReturnURLParam)
	}
	// Untouched fields keep their defaults.
	if cfg.Endpoints.LoginPath != "/api/auth/login" {
		t.Fatalf("unexpected login path %q", cfg.Endpoints.LoginPath)
	}
}

func TestBuilderSingleUse(t *testing.T) {
	b := New()
	if _, err := b.Build(); err != nil {
		t.Fatalf("first build failed: %v", err)
	}
	if _, err := b.Build(); err == nil {
		t.Fatal("expected second build to fail")
	}
}

func TestBuilderRequiresStorageWhenPersistenceEnabled(t *testing.T) {
	cfg := defaultConfig()
	cfg.State.PersistenceEnabled = true
	cfg.State.FilePath = ""

	if _, err := New().WithConfig(cfg).Build(); err == nil {
		t.Fatal("expected build failure without storage")
	}
}
