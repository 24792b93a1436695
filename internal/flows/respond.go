package flows

import "net/http"

// ResponseOutcome classifies an upstream response status for the
// authenticated transport.
type ResponseOutcome int

const (
	OutcomeOK ResponseOutcome = iota

	// OutcomeCredentialRejected: the server rejected the credential
	// (401). The server is authoritative even when the local expiry
	// check passed.
	OutcomeCredentialRejected

	// OutcomePermissionDenied: the session is valid but insufficiently
	// privileged (403). Never forces a logout.
	OutcomePermissionDenied

	// OutcomeNetworkAuthRequired: 511. Treated like a rejected
	// credential, plus a diagnostic dump for support triage.
	OutcomeNetworkAuthRequired

	// OutcomeServerError: 5xx. Retryable; the session remains valid.
	OutcomeServerError
)

// ClassifyStatus maps an HTTP status code to its transport outcome.
func ClassifyStatus(code int) ResponseOutcome {
	switch {
	case code == http.StatusUnauthorized:
		return OutcomeCredentialRejected
	case code == http.StatusForbidden:
		return OutcomePermissionDenied
	case code == http.StatusNetworkAuthenticationRequired:
		return OutcomeNetworkAuthRequired
	case code >= 500:
		return OutcomeServerError
	default:
		return OutcomeOK
	}
}
