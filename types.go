package sessionkit

import (
	"io"

	internalaudit "github.com/campushq/sessionkit/internal/audit"
	"github.com/campushq/sessionkit/token"
)

// TokenPair is the access/refresh token pair held by the session layer.
// Both tokens are opaque signed strings; a persisted write always replaces
// both or neither.
type TokenPair = token.Pair

// SessionState is the logical state of the session at one instant. It is
// recomputed at the start of every authenticated call and on load — never
// cached across calls, because token state can change underneath the app
// (refresh, logout in another tab).
type SessionState struct {
	HasAccessToken bool
	Expired        bool
	Roles          []string
}

// LoggedIn reports whether a non-expired access token is present.
func (s SessionState) LoggedIn() bool {
	return s.HasAccessToken && !s.Expired
}

// HandoffPayload is the decoded content of an inbound cross-domain
// handoff URL.
type HandoffPayload struct {
	AccessToken  string
	RefreshToken string
	RedirectPath string
}

// DiagnosticEvent is a structured diagnostic record emitted by the session
// layer. It carries token metadata only, never raw token values.
type DiagnosticEvent = internalaudit.Event

// DiagnosticSink receives [DiagnosticEvent] values from the dispatcher.
type DiagnosticSink = internalaudit.Sink

// NoOpSink is a [DiagnosticSink] that silently discards all events.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink is a buffered channel-based [DiagnosticSink].
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink is a [DiagnosticSink] that writes JSON-encoded events to
// an [io.Writer].
type JSONWriterSink = internalaudit.JSONWriterSink

// NewChannelSink creates a [ChannelSink] with the given buffer capacity.
func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

// NewJSONWriterSink creates a [JSONWriterSink] that writes to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}
