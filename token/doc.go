// Package token persists the access/refresh token pair in
// credential-scoped storage.
//
// # Storage model
//
// A [Store] is plain key-value storage with security attributes: an
// optional shared parent-domain scope so a token written by one subdomain
// is readable by sibling subdomains, a Secure/SameSite policy, and a fixed
// multi-day write expiry that is independent of the token's own embedded
// expiry claim. Absence of a key is a normal state (logged out), never an
// error.
//
// # Architecture boundaries
//
// This package owns persistence only. The refresh coordinator and the
// cross-domain handoff are the sole writers of token pairs; everything
// else reads. Pair writes go through [WritePair], which replaces both
// tokens or neither.
//
// # What this package must NOT do
//
//   - Decode or interpret token contents.
//   - Decide when a pair is stale; expiry policy lives with the caller.
//   - Import the root sessionkit package.
package token
