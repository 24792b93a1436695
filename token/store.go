package token

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

const (
	// KeyAccessToken is the fixed storage key for the access token.
	KeyAccessToken = "accessToken"
	// KeyRefreshToken is the fixed storage key for the refresh token.
	KeyRefreshToken = "refreshToken"
)

// DefaultWriteTTL is the storage expiry applied when a write carries no
// explicit TTL. It is deliberately independent of the token's own exp
// claim: storage outlives the access token so the refresh token stays
// reachable.
const DefaultWriteTTL = 7 * 24 * time.Hour

// Attributes carry the security scope of a write or removal.
//
// Attributes instances are intended to be configured during initialization
// and then treated as immutable unless documented otherwise.
type Attributes struct {
	// Domain is the shared parent-domain scope (e.g. ".campushq.example").
	// Empty means host-only scope.
	Domain string

	// Secure and SameSite apply to cookie-backed stores. Secure is toggled
	// off only in non-production contexts.
	Secure   bool
	SameSite http.SameSite

	// TTL bounds how long the value persists. Zero means DefaultWriteTTL.
	TTL time.Duration
}

// Pair is the access/refresh token pair. The two tokens are never
// persisted independently of each other.
type Pair struct {
	AccessToken  string
	RefreshToken string
}

// Store is credential-scoped key-value storage. It is shared mutable state
// across browser tabs and sibling subdomains, so implementations must be
// safe for concurrent use and treated as an external resource.
type Store interface {
	// Get returns the stored value. A missing key is (_, false, nil).
	Get(ctx context.Context, key string) (string, bool, error)

	// Set writes value under key with the given attributes.
	Set(ctx context.Context, key, value string, attrs Attributes) error

	// Remove deletes key. Implementations must also attempt removal under
	// the shared-domain scope in attrs so credentials do not survive a
	// subdomain logout. Removing a missing key is not an error.
	Remove(ctx context.Context, key string, attrs Attributes) error
}

// ReadPair reads both tokens. ok is true only when both are present.
func ReadPair(ctx context.Context, s Store) (Pair, bool, error) {
	access, okAccess, err := s.Get(ctx, KeyAccessToken)
	if err != nil {
		return Pair{}, false, err
	}
	refresh, okRefresh, err := s.Get(ctx, KeyRefreshToken)
	if err != nil {
		return Pair{}, false, err
	}
	return Pair{AccessToken: access, RefreshToken: refresh}, okAccess && okRefresh, nil
}

// WritePair replaces both tokens or neither. When the second write fails,
// the first is rolled back so a partial pair is never left behind.
func WritePair(ctx context.Context, s Store, pair Pair, attrs Attributes) error {
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		return fmt.Errorf("token: refusing to persist a partial pair")
	}

	if err := s.Set(ctx, KeyAccessToken, pair.AccessToken, attrs); err != nil {
		return fmt.Errorf("token: write access token: %w", err)
	}
	if err := s.Set(ctx, KeyRefreshToken, pair.RefreshToken, attrs); err != nil {
		_ = s.Remove(ctx, KeyAccessToken, attrs)
		return fmt.Errorf("token: write refresh token: %w", err)
	}
	return nil
}

// ClearPair removes both tokens under the host scope and the shared-domain
// scope. It is idempotent: clearing an empty store succeeds.
func ClearPair(ctx context.Context, s Store, attrs Attributes) error {
	var firstErr error
	for _, key := range []string{KeyAccessToken, KeyRefreshToken} {
		if err := s.Remove(ctx, key, attrs); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("token: remove %s: %w", key, err)
		}
	}
	return firstErr
}
