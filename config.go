package hubauth

import (
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config defines a public type used by hubauth APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	HTTP      HTTPConfig
	Endpoints EndpointsConfig
	State     StateConfig
	Guard     GuardConfig
	Audit     AuditConfig
	Metrics   MetricsConfig
}

/*
====================================
HTTP CONFIG
====================================
*/

// HTTPConfig defines a public type used by hubauth APIs.
//
// HTTPConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type HTTPConfig struct {
	BaseURL        string        `env:"HUBAUTH_BASE_URL"`
	RequestTimeout time.Duration `env:"HUBAUTH_REQUEST_TIMEOUT"`
	RefreshTimeout time.Duration `env:"HUBAUTH_REFRESH_TIMEOUT"`
	UserAgent      string        `env:"HUBAUTH_USER_AGENT"`
	StampRequestID bool          `env:"HUBAUTH_STAMP_REQUEST_ID"`
}

/*
====================================
ENDPOINTS CONFIG
====================================
*/

// EndpointsConfig holds the backend route layout. All paths are relative to
// [HTTPConfig.BaseURL]. RefreshPath doubles as the recursion cutoff: a 401 on
// this path never triggers another refresh.
type EndpointsConfig struct {
	LoginPath             string `env:"HUBAUTH_LOGIN_PATH"`
	RefreshPath           string `env:"HUBAUTH_REFRESH_PATH"`
	LogoutPath            string `env:"HUBAUTH_LOGOUT_PATH"`
	MePath                string `env:"HUBAUTH_ME_PATH"`
	RegisterVolunteerPath string `env:"HUBAUTH_REGISTER_VOLUNTEER_PATH"`
	RegisterNGOPath       string `env:"HUBAUTH_REGISTER_NGO_PATH"`
	JobsPath              string `env:"HUBAUTH_JOBS_PATH"`
	ApplicationsPath      string `env:"HUBAUTH_APPLICATIONS_PATH"`
	ProfilePath           string `env:"HUBAUTH_PROFILE_PATH"`
}

/*
====================================
STATE CONFIG
====================================
*/

// StateConfig defines a public type used by hubauth APIs.
//
// StateConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type StateConfig struct {
	// PersistenceEnabled controls whether mutations are snapshotted to the
	// configured Storage. Disabled means memory-only state.
	PersistenceEnabled bool `env:"HUBAUTH_STATE_PERSISTENCE"`
	// RevalidateOnRestore marks rehydrated state as unverified so the first
	// authenticated call confirms the persisted token is still accepted.
	RevalidateOnRestore bool   `env:"HUBAUTH_STATE_REVALIDATE"`
	FilePath            string `env:"HUBAUTH_STATE_FILE"`
	RedisPrefix         string `env:"HUBAUTH_STATE_REDIS_PREFIX"`
}

/*
====================================
GUARD CONFIG
====================================
*/

// GuardConfig defines a public type used by hubauth APIs.
//
// GuardConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type GuardConfig struct {
	RedirectBase   string `env:"HUBAUTH_GUARD_REDIRECT_BASE"`
	ReturnURLParam string `env:"HUBAUTH_GUARD_RETURN_PARAM"`
}

/*
====================================
AUDIT / METRICS CONFIG
====================================
*/

// AuditConfig defines a public type used by hubauth APIs.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool `env:"HUBAUTH_AUDIT_ENABLED"`
	BufferSize int  `env:"HUBAUTH_AUDIT_BUFFER"`
	DropIfFull bool `env:"HUBAUTH_AUDIT_DROP_IF_FULL"`
}

// MetricsConfig defines a public type used by hubauth APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled                 bool `env:"HUBAUTH_METRICS_ENABLED"`
	EnableLatencyHistograms bool `env:"HUBAUTH_METRICS_LATENCY"`
}

func defaultConfig() Config {
	return Config{
		HTTP: HTTPConfig{
			BaseURL:        "http://127.0.0.1:3000",
			RequestTimeout: 10 * time.Second,
			RefreshTimeout: 10 * time.Second,
			UserAgent:      "hubauth-go",
			StampRequestID: true,
		},
		Endpoints: EndpointsConfig{
			LoginPath:             "/api/auth/login",
			RefreshPath:           "/api/auth/refresh",
			LogoutPath:            "/api/auth/logout",
			MePath:                "/api/auth/me",
			RegisterVolunteerPath: "/api/auth/register/volunteer",
			RegisterNGOPath:       "/api/auth/register/ngo",
			JobsPath:              "/api/jobs",
			ApplicationsPath:      "/api/applications",
			ProfilePath:           "/api/users/me",
		},
		State: StateConfig{
			PersistenceEnabled:  false,
			RevalidateOnRestore: true,
			FilePath:            "",
			RedisPrefix:         "hubauth",
		},
		Guard: GuardConfig{
			RedirectBase:   "/auth/login",
			ReturnURLParam: "returnUrl",
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
	}
}

// DefaultConfig returns the stock configuration used by [New] when no
// explicit config is supplied.
func DefaultConfig() Config {
	return defaultConfig()
}

// DevConfig returns a configuration tuned for local development: short
// timeouts so a dead backend fails fast, and audit plus metrics enabled so
// every flow is observable.
func DevConfig() Config {
	cfg := defaultConfig()
	cfg.HTTP.RequestTimeout = 3 * time.Second
	cfg.HTTP.RefreshTimeout = 3 * time.Second
	cfg.Audit.Enabled = true
	cfg.Metrics.Enabled = true
	cfg.Metrics.EnableLatencyHistograms = true
	return cfg
}

// ConfigFromEnv layers HUBAUTH_* environment variables over the defaults.
func ConfigFromEnv() (Config, error) {
	cfg := defaultConfig()
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func cloneConfig(cfg Config) Config {
	// All fields are value types today; the clone exists so later slice or
	// map additions keep builder and engine configs independent.
	return cfg
}

// Validate describes the validate operation and its observable behavior.
//
// Validate may return an error when input validation, dependency calls, or security checks fail.
// Validate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Config) Validate() error {
	// HTTP
	if c.HTTP.BaseURL == "" {
		return errors.New("HTTP BaseURL is required")
	}
	u, err := url.Parse(c.HTTP.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.New("HTTP BaseURL must be an absolute URL")
	}
	if c.HTTP.RequestTimeout <= 0 {
		return errors.New("HTTP RequestTimeout must be > 0")
	}
	if c.HTTP.RefreshTimeout <= 0 {
		return errors.New("HTTP RefreshTimeout must be > 0")
	}

	// Endpoints
	for _, p := range []struct {
		name  string
		value string
	}{
		{"LoginPath", c.Endpoints.LoginPath},
		{"RefreshPath", c.Endpoints.RefreshPath},
		{"LogoutPath", c.Endpoints.LogoutPath},
		{"MePath", c.Endpoints.MePath},
		{"RegisterVolunteerPath", c.Endpoints.RegisterVolunteerPath},
		{"RegisterNGOPath", c.Endpoints.RegisterNGOPath},
		{"JobsPath", c.Endpoints.JobsPath},
		{"ApplicationsPath", c.Endpoints.ApplicationsPath},
		{"ProfilePath", c.Endpoints.ProfilePath},
	} {
		if p.value == "" {
			return errors.New("Endpoints " + p.name + " is required")
		}
		if !strings.HasPrefix(p.value, "/") {
			return errors.New("Endpoints " + p.name + " must start with '/'")
		}
	}

	// Guard
	if c.Guard.RedirectBase == "" {
		return errors.New("Guard RedirectBase is required")
	}
	if !strings.HasPrefix(c.Guard.RedirectBase, "/") {
		return errors.New("Guard RedirectBase must start with '/'")
	}
	if c.Guard.ReturnURLParam == "" {
		return errors.New("Guard ReturnURLParam is required")
	}

	// State
	if c.State.PersistenceEnabled && c.State.RedisPrefix == "" && c.State.FilePath == "" {
		// A Storage supplied through the builder may still carry its own
		// location; prefix and path only gate the built-in backends.
		return errors.New("State persistence requires a FilePath or RedisPrefix")
	}

	// Audit
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0 when audit is enabled")
	}

	return nil
}
