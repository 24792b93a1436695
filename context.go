package sessionkit

import "context"

type withoutAuthContextKey struct{}
type requestIDContextKey struct{}

// WithoutAuth marks ctx so the authenticated transport dispatches the
// request as-is: no credential pre-flight, no bearer header. Intended for
// public endpoints (login, health) that share the same HTTP client.
func WithoutAuth(ctx context.Context) context.Context {
	return context.WithValue(ctx, withoutAuthContextKey{}, true)
}

// WithRequestID attaches a correlation ID to ctx. Diagnostic events
// emitted for calls under this context carry the ID for support triage.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDContextKey{}, requestID)
}

func isWithoutAuth(ctx context.Context) bool {
	if ctx == nil {
		return false
	}
	skip, _ := ctx.Value(withoutAuthContextKey{}).(bool)
	return skip
}

func requestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(requestIDContextKey{}).(string)
	return id
}
