package sessionkit

import "errors"

var (
	// ErrLoggedOut is returned when no usable credential exists; the call
	// was rejected before anything was sent.
	ErrLoggedOut = errors.New("logged out")
	// ErrSessionExpired is returned when the access token is expired and no
	// refresh token is available to renew it.
	ErrSessionExpired = errors.New("session expired")
	// ErrRefreshRejected is returned when the token exchange endpoint
	// answered with a non-2xx status or an unusable body.
	ErrRefreshRejected = errors.New("refresh rejected")
	// ErrRefreshUnavailable is returned when the token exchange call failed
	// at the transport level or timed out.
	ErrRefreshUnavailable = errors.New("refresh unavailable")
	// ErrCredentialRejected is returned when the server rejected the
	// attached credential (401 or 511) despite the local expiry check.
	ErrCredentialRejected = errors.New("credential rejected by server")
	// ErrPermissionDenied is returned on 403: the session is valid but
	// insufficiently privileged. Never forces a logout.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrServerUnavailable is returned on 5xx responses; the failure is
	// retryable and the session remains valid.
	ErrServerUnavailable = errors.New("server unavailable")
	// ErrNoLiveSession is returned by handoff construction when no
	// non-expired access token exists locally.
	ErrNoLiveSession = errors.New("no live session to hand off")
	// ErrHandoffExpired is returned when an inbound handoff carries an
	// expired or incomplete token pair.
	ErrHandoffExpired = errors.New("handoff pair expired or incomplete")
	// ErrManagerClosed is returned by operations on a closed Manager.
	ErrManagerClosed = errors.New("manager closed")
)
