package sessionkit

import (
	"errors"
	"net/http"
	"net/url"
	"time"
)

// Config defines the session layer's behavior. Configure it once before
// [Builder.Build]; the Manager treats it as immutable afterwards.
type Config struct {
	Refresh     RefreshConfig
	Store       StoreConfig
	Roles       RoleConfig
	Handoff     HandoffConfig
	Logout      LogoutConfig
	Diagnostics DiagnosticsConfig
	Metrics     MetricsConfig
	Security    SecurityConfig
}

/*
====================================
REFRESH CONFIG
====================================
*/

// RefreshConfig controls the token exchange call.
type RefreshConfig struct {
	// EndpointURL is the token exchange endpoint. The refresh token is
	// passed as the TokenParam query parameter.
	EndpointURL string

	// TokenParam is the query parameter carrying the refresh token.
	// Default "token".
	TokenParam string

	// Timeout bounds one exchange call, including the body read.
	// Default 10s.
	Timeout time.Duration
}

/*
====================================
STORE CONFIG
====================================
*/

// StoreConfig controls how tokens are persisted.
type StoreConfig struct {
	// SharedDomain is the parent-domain scope under which tokens are
	// written and removed (e.g. ".campushq.example") so sibling
	// subdomains share the session. Empty means host-only.
	SharedDomain string

	// WriteTTL is the fixed storage expiry applied on every write,
	// independent of the token's own expiry claim. Default 7 days.
	WriteTTL time.Duration
}

/*
====================================
ROLE CONFIG
====================================
*/

// RoleConfig names the two disjoint role sets that gate the staff and
// learner surfaces. A token satisfying neither set is valid but
// surface-less; callers fall back to a generic landing page.
type RoleConfig struct {
	StaffRoles   []string
	LearnerRoles []string
}

/*
====================================
HANDOFF CONFIG
====================================
*/

// HandoffConfig controls the cross-domain single-sign-on handoff.
type HandoffConfig struct {
	// CopyURL receives every built handoff URL as a best-effort side
	// effect (e.g. a clipboard bridge). It runs on its own goroutine;
	// panics and failures are swallowed and never block URL construction.
	CopyURL func(url string)
}

/*
====================================
LOGOUT CONFIG
====================================
*/

// LogoutConfig controls forced logout.
type LogoutConfig struct {
	// LoginURL is the login entry point navigated to on forced logout.
	LoginURL string

	// Navigate performs the navigation. Optional; a nil Navigate makes
	// forced logout clear credentials only.
	Navigate func(loginURL string)
}

// DiagnosticsConfig controls the diagnostic event dispatcher.
type DiagnosticsConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig controls the in-process metrics system.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

/*
====================================
SECURITY CONFIG
====================================
*/

// SecurityConfig carries the storage security posture.
type SecurityConfig struct {
	// ProductionMode forbids insecure storage attributes.
	ProductionMode bool

	// SecureCookies requires the Secure attribute on cookie-backed
	// storage. May be toggled off only outside ProductionMode.
	SecureCookies bool

	SameSitePolicy http.SameSite
}

/*
====================================
DEFAULT CONFIG
====================================
*/

// DefaultConfig returns the baseline configuration. Callers must still set
// Refresh.EndpointURL, Logout.LoginURL, and the role sets.
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		Refresh: RefreshConfig{
			TokenParam: "token",
			Timeout:    10 * time.Second,
		},
		Store: StoreConfig{
			WriteTTL: 7 * 24 * time.Hour,
		},
		Diagnostics: DiagnosticsConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
		Security: SecurityConfig{
			ProductionMode: false,
			SecureCookies:  true,
			SameSitePolicy: http.SameSiteLaxMode,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Roles.StaffRoles = cloneStrings(cfg.Roles.StaffRoles)
	out.Roles.LearnerRoles = cloneStrings(cfg.Roles.LearnerRoles)
	return out
}

func cloneStrings(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, len(values))
	copy(out, values)
	return out
}

/*
====================================
VALIDATION
====================================
*/

// Validate checks the configuration for internal consistency.
func (c *Config) Validate() error {
	// Refresh
	if c.Refresh.EndpointURL == "" {
		return errors.New("Refresh EndpointURL must be set")
	}
	if u, err := url.Parse(c.Refresh.EndpointURL); err != nil || u.Scheme == "" || u.Host == "" {
		return errors.New("Refresh EndpointURL must be an absolute URL")
	}
	if c.Refresh.TokenParam == "" {
		return errors.New("Refresh TokenParam must be set")
	}
	if c.Refresh.Timeout <= 0 {
		return errors.New("Refresh Timeout must be > 0")
	}

	// Store
	if c.Store.WriteTTL <= 0 {
		return errors.New("Store WriteTTL must be > 0")
	}

	// Roles
	if len(c.Roles.StaffRoles) == 0 {
		return errors.New("Roles StaffRoles must be provided")
	}
	if len(c.Roles.LearnerRoles) == 0 {
		return errors.New("Roles LearnerRoles must be provided")
	}
	staff := make(map[string]struct{}, len(c.Roles.StaffRoles))
	for _, role := range c.Roles.StaffRoles {
		if role == "" {
			return errors.New("Roles StaffRoles contains an empty role")
		}
		staff[role] = struct{}{}
	}
	for _, role := range c.Roles.LearnerRoles {
		if role == "" {
			return errors.New("Roles LearnerRoles contains an empty role")
		}
		if _, ok := staff[role]; ok {
			return errors.New("Roles StaffRoles and LearnerRoles must be disjoint")
		}
	}

	// Logout
	if c.Logout.LoginURL == "" {
		return errors.New("Logout LoginURL must be set")
	}

	// Diagnostics
	if c.Diagnostics.Enabled && c.Diagnostics.BufferSize <= 0 {
		return errors.New("Diagnostics BufferSize must be > 0 when enabled")
	}

	// Security
	if c.Security.ProductionMode && !c.Security.SecureCookies {
		return errors.New("SecureCookies may be disabled only outside ProductionMode")
	}

	return nil
}
