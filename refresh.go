package sessionkit

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/campushq/sessionkit/claims"
	"github.com/campushq/sessionkit/internal/flows"
	"github.com/campushq/sessionkit/token"
)

const refreshFlightKey = "refresh"

// Refresh exchanges the stored refresh token for a new pair and persists
// it. Concurrent callers coalesce into a single exchange and all observe
// its outcome. Refresh never clears tokens on failure; callers that need
// a forced logout go through the transport or [Manager.Logout].
func (m *Manager) Refresh(ctx context.Context) (TokenPair, error) {
	if m.closed.Load() {
		return TokenPair{}, ErrManagerClosed
	}

	refresh, ok, err := m.store.Get(ctx, token.KeyRefreshToken)
	if err != nil {
		return TokenPair{}, err
	}
	if !ok {
		return TokenPair{}, ErrSessionExpired
	}
	return m.refreshPair(ctx, refresh)
}

func (m *Manager) refreshPair(ctx context.Context, refreshToken string) (TokenPair, error) {
	// Detach the flight from its first caller: waiters share the outcome,
	// so its lifetime is bounded by the configured timeout, not by any one
	// caller's context.
	flightCtx := context.WithoutCancel(ctx)

	v, err, shared := m.refreshGroup.Do(refreshFlightKey, func() (any, error) {
		res := flows.RunRefresh(flightCtx, refreshToken, flows.RefreshDeps{
			Exchange:  m.exchange,
			Timeout:   m.config.Refresh.Timeout,
			WritePair: m.writePair,
		})

		if res.Failure != flows.RefreshFailureNone {
			m.metrics.Inc(MetricRefreshFailure)
			if res.Failure == flows.RefreshFailureTimeout {
				m.metrics.Inc(MetricRefreshTimeout)
			}
			m.emitRefreshEvent(flightCtx, "refresh_failed", res)
			return nil, mapRefreshFailure(res)
		}

		m.metrics.Inc(MetricRefreshSuccess)
		m.emitRefreshEvent(flightCtx, "refresh_succeeded", res)
		return token.Pair{AccessToken: res.AccessToken, RefreshToken: res.RefreshToken}, nil
	})

	if shared {
		m.metrics.Inc(MetricRefreshShared)
	}
	if err != nil {
		return TokenPair{}, err
	}
	return v.(token.Pair), nil
}

// exchange performs the network half of a refresh. The refresh token
// travels as a query parameter on a GET, mirroring the exchange endpoint's
// contract.
func (m *Manager) exchange(ctx context.Context, refreshToken string) (*http.Response, error) {
	u, err := url.Parse(m.config.Refresh.EndpointURL)
	if err != nil {
		return nil, fmt.Errorf("parse exchange endpoint: %w", err)
	}
	q := u.Query()
	q.Set(m.config.Refresh.TokenParam, refreshToken)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	return m.httpClient.Do(req)
}

func (m *Manager) writePair(ctx context.Context, access, refresh string) error {
	return token.WritePair(ctx, m.store, token.Pair{
		AccessToken:  access,
		RefreshToken: refresh,
	}, m.storeAttrs())
}

func (m *Manager) emitRefreshEvent(ctx context.Context, eventType string, res flows.RefreshResult) {
	event := DiagnosticEvent{
		EventType:  eventType,
		StatusCode: res.StatusCode,
	}
	if res.Err != nil {
		event.Error = res.Err.Error()
	}
	if res.AccessToken != "" {
		event.AccessTokenPresent = true
		event.AccessTokenLength = len(res.AccessToken)
		if c, ok := claims.Decode(res.AccessToken); ok {
			event.ExpiresAt = c.ExpiresAt
		}
	}
	event.RefreshTokenPresent = res.RefreshToken != ""
	m.audit.Emit(ctx, event)
}

func mapRefreshFailure(res flows.RefreshResult) error {
	switch res.Failure {
	case flows.RefreshFailureTransport, flows.RefreshFailureTimeout:
		return fmt.Errorf("%w: %v", ErrRefreshUnavailable, res.Err)
	case flows.RefreshFailureStore:
		return fmt.Errorf("persist refreshed tokens: %w", res.Err)
	default:
		return fmt.Errorf("%w: %v", ErrRefreshRejected, res.Err)
	}
}
