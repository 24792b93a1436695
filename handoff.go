package sessionkit

import (
	"context"
	"fmt"
	"net/url"

	"github.com/campushq/sessionkit/claims"
	"github.com/campushq/sessionkit/internal/flows"
	"github.com/campushq/sessionkit/token"
)

// Handoff URL query parameters shared by both ends of the cross-domain
// handoff. ConsumeHandoff strips the first three after a successful
// consumption; the redirect hint survives the scrub.
const (
	HandoffParamSSO          = flows.ParamSSO
	HandoffParamAccessToken  = flows.ParamAccessToken
	HandoffParamRefreshToken = flows.ParamRefreshToken
	HandoffParamRedirect     = flows.ParamRedirect
)

// BuildHandoffURL serializes the live session pair into a URL on a
// sibling domain so the receiving app can seed its own storage. A missing
// pair or an expired access token rejects the call with [ErrNoLiveSession]
// or [ErrHandoffExpired]: a dead session is never handed off.
//
// When a CopyURL hook is configured it receives the URL on a separate
// goroutine; hook failures never affect the returned URL.
func (m *Manager) BuildHandoffURL(ctx context.Context, targetDomain, redirectPath string) (string, error) {
	if m.closed.Load() {
		return "", ErrManagerClosed
	}

	res := flows.RunBuildHandoff(ctx, targetDomain, redirectPath, flows.BuildHandoffDeps{
		ReadPair: func(ctx context.Context) (string, string, bool, error) {
			pair, ok, err := token.ReadPair(ctx, m.store)
			return pair.AccessToken, pair.RefreshToken, ok, err
		},
		IsLive: m.isLive,
	})

	switch res.Failure {
	case flows.HandoffFailureNoSession:
		m.metrics.Inc(MetricHandoffRejected)
		return "", fmt.Errorf("%w: %v", ErrNoLiveSession, res.Err)
	case flows.HandoffFailureExpired:
		m.metrics.Inc(MetricHandoffRejected)
		return "", fmt.Errorf("%w: %v", ErrHandoffExpired, res.Err)
	}

	m.metrics.Inc(MetricHandoffIssued)
	m.audit.Emit(ctx, DiagnosticEvent{
		EventType: "handoff_issued",
		Metadata:  map[string]string{"target_domain": targetDomain},
	})
	m.copyHandoffURL(res.URL)
	return res.URL, nil
}

func (m *Manager) copyHandoffURL(handoffURL string) {
	copyFn := m.config.Handoff.CopyURL
	if copyFn == nil {
		return
	}
	go func() {
		// The hook is best effort; it must never fail URL construction.
		defer func() { _ = recover() }()
		copyFn(handoffURL)
	}()
}

// ConsumeHandoff inspects u for an inbound handoff. Without the marker it
// is a no-op returning u unchanged. With a live carried pair it seeds
// storage and returns the URL scrubbed of token material for the caller
// to install as the visible location; consumed reports whether that
// happened. A dead or incomplete pair returns [ErrHandoffExpired] and
// leaves both the URL and local storage untouched.
func (m *Manager) ConsumeHandoff(ctx context.Context, u *url.URL) (clean *url.URL, consumed bool, err error) {
	if m.closed.Load() {
		return u, false, ErrManagerClosed
	}

	res := flows.RunConsumeHandoff(ctx, u, flows.ConsumeHandoffDeps{
		IsLive:    m.isLive,
		WritePair: m.writePair,
	})

	switch res.Failure {
	case flows.HandoffFailureExpired:
		m.metrics.Inc(MetricHandoffRejected)
		m.audit.Emit(ctx, DiagnosticEvent{EventType: "handoff_rejected", Error: res.Err.Error()})
		return res.CleanURL, false, fmt.Errorf("%w: %v", ErrHandoffExpired, res.Err)
	case flows.HandoffFailureStore:
		return res.CleanURL, false, res.Err
	}

	if res.Consumed {
		m.metrics.Inc(MetricHandoffConsumed)
		m.audit.Emit(ctx, DiagnosticEvent{EventType: "handoff_consumed"})
	}
	return res.CleanURL, res.Consumed, nil
}

// PeekHandoff decodes the handoff payload carried by u without consuming
// it. ok is false when u carries no handoff marker.
func PeekHandoff(u *url.URL) (payload HandoffPayload, ok bool) {
	query := u.Query()
	if query.Get(HandoffParamSSO) != "true" {
		return HandoffPayload{}, false
	}
	return HandoffPayload{
		AccessToken:  query.Get(HandoffParamAccessToken),
		RefreshToken: query.Get(HandoffParamRefreshToken),
		RedirectPath: query.Get(HandoffParamRedirect),
	}, true
}

func (m *Manager) isLive(access string) bool {
	return !claims.IsExpired(access, m.now())
}
