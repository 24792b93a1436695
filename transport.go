package sessionkit

import (
	"fmt"
	"net/http"

	"github.com/campushq/sessionkit/claims"
	"github.com/campushq/sessionkit/internal/flows"
)

// Transport is an [http.RoundTripper] that attaches a valid bearer token
// to every outbound request and applies the response status taxonomy:
// 401 and 511 force a logout, 403 and 5xx leave the session untouched.
// Requests under a [WithoutAuth] context pass through unmodified.
type Transport struct {
	manager *Manager
	base    http.RoundTripper
}

// Transport returns the authenticated round tripper backed by m.
func (m *Manager) Transport() *Transport {
	return &Transport{manager: m, base: m.base}
}

// Client returns an [http.Client] whose transport is [Manager.Transport].
func (m *Manager) Client() *http.Client {
	return &http.Client{Transport: m.Transport()}
}

// RoundTrip implements [http.RoundTripper]. The request is cloned before
// the bearer header is set; the caller's request is never mutated.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	m := t.manager
	if m.closed.Load() {
		return nil, ErrManagerClosed
	}

	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	if isWithoutAuth(req.Context()) {
		return base.RoundTrip(req)
	}

	access, err := m.ensureAccessToken(req.Context())
	if err != nil {
		return nil, err
	}

	out := req.Clone(req.Context())
	out.Header.Set("Authorization", "Bearer "+access)

	start := m.now()
	resp, err := base.RoundTrip(out)
	if err != nil {
		return nil, err
	}
	m.metrics.Observe(MetricRequestLatency, m.now().Sub(start))

	switch flows.ClassifyStatus(resp.StatusCode) {
	case flows.OutcomeCredentialRejected:
		// The server is authoritative: it rejected a token the local
		// expiry check accepted.
		m.metrics.Inc(MetricCredentialRejected)
		m.forceLogout(req.Context(), "credential_rejected")
	case flows.OutcomeNetworkAuthRequired:
		m.metrics.Inc(MetricNetworkAuthRequired)
		m.emitCredentialDump(req, resp.StatusCode, access)
		m.forceLogout(req.Context(), "network_authentication_required")
	case flows.OutcomePermissionDenied:
		m.metrics.Inc(MetricPermissionDenied)
	case flows.OutcomeServerError:
		m.metrics.Inc(MetricServerError)
	}

	return resp, nil
}

// emitCredentialDump records credential metadata for support triage of a
// 511 response. Only presence, length, and the decoded expiry are logged,
// never the token values themselves.
func (m *Manager) emitCredentialDump(req *http.Request, status int, access string) {
	event := DiagnosticEvent{
		EventType:          "network_auth_required",
		StatusCode:         status,
		AccessTokenPresent: access != "",
		AccessTokenLength:  len(access),
		Metadata:           map[string]string{"url": req.URL.Redacted()},
	}
	if c, ok := claims.Decode(access); ok {
		event.ExpiresAt = c.ExpiresAt
	}
	m.audit.Emit(req.Context(), event)
}

// CheckResponse maps an already-received response onto the session error
// taxonomy. It does not read or close the body.
func CheckResponse(resp *http.Response) error {
	switch flows.ClassifyStatus(resp.StatusCode) {
	case flows.OutcomeCredentialRejected, flows.OutcomeNetworkAuthRequired:
		return fmt.Errorf("%w (status %d)", ErrCredentialRejected, resp.StatusCode)
	case flows.OutcomePermissionDenied:
		return ErrPermissionDenied
	case flows.OutcomeServerError:
		return fmt.Errorf("%w (status %d)", ErrServerUnavailable, resp.StatusCode)
	default:
		return nil
	}
}

// Do dispatches req through the authenticated client and folds the status
// taxonomy into the returned error. The response is returned alongside a
// non-nil error so callers can inspect the body.
func (m *Manager) Do(req *http.Request) (*http.Response, error) {
	resp, err := m.Client().Do(req)
	if err != nil {
		return nil, err
	}
	if err := CheckResponse(resp); err != nil {
		return resp, err
	}
	return resp, nil
}
