// Package sessionkit manages the client-held session and credential
// lifecycle for a multi-role education platform frontend: bearer/refresh
// token storage, transparent single-flight refresh interleaved with
// outbound API calls, role extraction from signed tokens, and a
// cross-domain single-sign-on handoff between sibling domains.
//
// The package is designed for concurrent callers: Manager methods are safe
// to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// sessionkit is the public surface. It exposes [Manager], [Builder],
// [Config], and value types (SessionState, TokenPair, DiagnosticEvent).
// Flow orchestration and failure classification live under internal/ and
// are never exported. Token parsing lives in the claims subpackage;
// persistence in the token subpackage.
//
// # What this package must NOT do
//
//   - Verify token signatures or evaluate authorization policy; claims are
//     read for client-side UI and navigation decisions only, and the
//     backend remains the source of truth for every credential.
//   - Log or emit raw token values; diagnostics carry presence, length,
//     and decoded expiry metadata only.
//   - Retry a failed refresh automatically, or clear tokens from inside
//     the refresh path — forced logout is the transport's decision.
//
// # Concurrency contract
//
// At most one refresh exchange is in flight at any instant; concurrent
// callers that observe an expired token await the same outcome and then
// read the same renewed pair. Forced logout is idempotent, so racing
// rejections collapse into one effective logout.
package sessionkit
