package sessionkit

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/campushq/sessionkit/claims"
	"github.com/campushq/sessionkit/internal/flows"
	"github.com/campushq/sessionkit/token"
)

// Manager is the session layer's entry point. It owns the token store
// wiring, the single-flight refresh coordinator, the authenticated
// transport, and the cross-domain handoff. Construct one through
// [Builder.Build]; all methods are safe for concurrent use.
type Manager struct {
	config Config
	store  token.Store

	httpClient *http.Client
	base       http.RoundTripper

	metrics *Metrics
	audit   *auditDispatcher

	refreshGroup singleflight.Group
	logoutGroup  singleflight.Group

	now    func() time.Time
	closed atomic.Bool
}

func (m *Manager) storeAttrs() token.Attributes {
	return token.Attributes{
		Domain:   m.config.Store.SharedDomain,
		Secure:   m.config.Security.SecureCookies,
		SameSite: m.config.Security.SameSitePolicy,
		TTL:      m.config.Store.WriteTTL,
	}
}

// State recomputes the session state from storage. It is intentionally
// never cached: token state changes underneath the app through refreshes,
// handoffs, and logouts in other tabs.
func (m *Manager) State(ctx context.Context) (SessionState, error) {
	if m.closed.Load() {
		return SessionState{}, ErrManagerClosed
	}

	access, ok, err := m.store.Get(ctx, token.KeyAccessToken)
	if err != nil {
		return SessionState{}, err
	}
	if !ok {
		return SessionState{}, nil
	}

	if _, decoded := claims.Decode(access); !decoded {
		m.metrics.Inc(MetricTokenDecodeFailure)
	}

	now := m.now()
	return SessionState{
		HasAccessToken: true,
		Expired:        claims.IsExpired(access, now),
		Roles:          claims.Roles(access, now),
	}, nil
}

// Roles returns the union of roles across every authority scope of the
// stored access token. Absent or expired tokens yield no roles.
func (m *Manager) Roles(ctx context.Context) ([]string, error) {
	state, err := m.State(ctx)
	if err != nil {
		return nil, err
	}
	return state.Roles, nil
}

// CanAccessStaffSurface reports whether the stored token carries any of
// the configured staff roles.
func (m *Manager) CanAccessStaffSurface(ctx context.Context) (bool, error) {
	return m.hasAnyConfiguredRole(ctx, m.config.Roles.StaffRoles)
}

// CanAccessLearnerSurface reports whether the stored token carries any of
// the configured learner roles. A token satisfying neither surface
// predicate is valid but surface-less; callers fall back to a generic
// landing page, not an error.
func (m *Manager) CanAccessLearnerSurface(ctx context.Context) (bool, error) {
	return m.hasAnyConfiguredRole(ctx, m.config.Roles.LearnerRoles)
}

func (m *Manager) hasAnyConfiguredRole(ctx context.Context, required []string) (bool, error) {
	if m.closed.Load() {
		return false, ErrManagerClosed
	}

	access, ok, err := m.store.Get(ctx, token.KeyAccessToken)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	return claims.HasAnyRole(access, m.now(), required...), nil
}

// AccessToken returns a currently valid access token, refreshing through
// the single-flight coordinator when the stored one is expired. A missing
// or unrenewable credential forces a logout and rejects the call.
func (m *Manager) AccessToken(ctx context.Context) (string, error) {
	return m.ensureAccessToken(ctx)
}

func (m *Manager) ensureAccessToken(ctx context.Context) (string, error) {
	if m.closed.Load() {
		return "", ErrManagerClosed
	}

	access, ok, err := m.store.Get(ctx, token.KeyAccessToken)
	if err != nil {
		return "", err
	}
	if !ok {
		m.forceLogout(ctx, "access_token_missing")
		return "", ErrLoggedOut
	}

	now := m.now()
	if !claims.IsExpired(access, now) {
		return access, nil
	}
	if _, decoded := claims.Decode(access); !decoded {
		m.metrics.Inc(MetricTokenDecodeFailure)
	}

	refresh, ok, err := m.store.Get(ctx, token.KeyRefreshToken)
	if err != nil {
		return "", err
	}
	if !ok {
		m.forceLogout(ctx, "refresh_token_missing")
		return "", ErrSessionExpired
	}

	pair, err := m.refreshPair(ctx, refresh)
	if err != nil {
		m.forceLogout(ctx, "refresh_failed")
		return "", err
	}
	return pair.AccessToken, nil
}

// Logout clears the token pair — including the shared-domain scope — and
// navigates to the login entry point. Idempotent: concurrent invocations
// collapse into one effective logout.
func (m *Manager) Logout(ctx context.Context) error {
	return m.forceLogout(ctx, "explicit_logout")
}

func (m *Manager) forceLogout(ctx context.Context, reason string) error {
	// Detached from the caller: a logout triggered by a timed-out refresh
	// must still clear storage.
	ctx = context.WithoutCancel(ctx)

	_, err, _ := m.logoutGroup.Do("logout", func() (any, error) {
		clearErr := flows.RunLogout(ctx, flows.LogoutDeps{
			ClearPair: func(ctx context.Context) error {
				return token.ClearPair(ctx, m.store, m.storeAttrs())
			},
			Navigate: m.config.Logout.Navigate,
			LoginURL: m.config.Logout.LoginURL,
		})

		m.metrics.Inc(MetricLogout)
		m.audit.Emit(ctx, DiagnosticEvent{
			EventType: "logout",
			Error:     reason,
		})
		return nil, clearErr
	})
	return err
}

// MetricsSnapshot returns a point-in-time copy of all metrics. It feeds
// the exporters under metrics/export.
func (m *Manager) MetricsSnapshot() MetricsSnapshot {
	return m.metrics.Snapshot()
}

// AuditDropped reports how many diagnostic events were discarded under
// dispatcher backpressure.
func (m *Manager) AuditDropped() uint64 {
	return m.audit.Dropped()
}

// Close releases the diagnostic dispatcher and rejects further calls.
func (m *Manager) Close() {
	if m.closed.Swap(true) {
		return
	}
	m.audit.Close()
}
