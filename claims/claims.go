package claims

import (
	"sort"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the decoded, read-only view of a bearer token's payload. It is
// recomputed on demand from the raw token string and never mutated.
type Claims struct {
	// ExpiresAt is the token's exp claim in epoch seconds. Zero when the
	// claim is missing; callers treat that as already expired.
	ExpiresAt int64

	// Authorities maps an authority scope ID to the roles granted under it.
	Authorities map[string]Authority
}

// Authority holds the roles granted under a single authority scope.
type Authority struct {
	Roles []string
}

// Expiry validation is intentionally skipped at decode time: expiry is a
// separate predicate so callers can distinguish "no claims" from "expired".
var parser = jwt.NewParser(jwt.WithoutClaimsValidation())

// Decode extracts claims from token without verifying its signature.
// It returns false for any structurally invalid input: empty strings,
// non-JWT strings, undecodable segments, or non-object payloads. A valid
// token whose authorities claim is malformed decodes with the conforming
// scopes only.
func Decode(token string) (Claims, bool) {
	if token == "" {
		return Claims{}, false
	}

	raw := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, raw); err != nil {
		return Claims{}, false
	}

	out := Claims{}

	exp, err := raw.GetExpirationTime()
	if err != nil {
		return Claims{}, false
	}
	if exp != nil {
		out.ExpiresAt = exp.Unix()
	}

	if scopes, ok := raw["authorities"].(map[string]any); ok {
		out.Authorities = make(map[string]Authority, len(scopes))
		for scopeID, v := range scopes {
			entry, ok := v.(map[string]any)
			if !ok {
				continue
			}
			rawRoles, ok := entry["roles"].([]any)
			if !ok {
				continue
			}
			authority := Authority{Roles: make([]string, 0, len(rawRoles))}
			for _, r := range rawRoles {
				if role, ok := r.(string); ok && role != "" {
					authority.Roles = append(authority.Roles, role)
				}
			}
			out.Authorities[scopeID] = authority
		}
	}

	return out, true
}

// IsExpired reports whether token is expired at the given instant. An
// absent, malformed, or expiry-less token is expired (fail closed).
func IsExpired(token string, now time.Time) bool {
	c, ok := Decode(token)
	if !ok {
		return true
	}
	if c.ExpiresAt <= 0 {
		return true
	}
	return now.Unix() >= c.ExpiresAt
}

// Roles returns the sorted, de-duplicated union of roles across every
// authority scope. An absent, malformed, or expired token yields nil.
func Roles(token string, now time.Time) []string {
	if IsExpired(token, now) {
		return nil
	}
	c, ok := Decode(token)
	if !ok {
		return nil
	}

	seen := make(map[string]struct{})
	for _, authority := range c.Authorities {
		for _, role := range authority.Roles {
			seen[role] = struct{}{}
		}
	}
	if len(seen) == 0 {
		return nil
	}

	out := make([]string, 0, len(seen))
	for role := range seen {
		out = append(out, role)
	}
	sort.Strings(out)
	return out
}

// HasAnyRole reports whether token carries at least one of the required
// roles in any authority scope. False for absent, malformed, or expired
// tokens, and when required is empty.
func HasAnyRole(token string, now time.Time, required ...string) bool {
	roles := Roles(token, now)
	if len(roles) == 0 || len(required) == 0 {
		return false
	}

	have := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		have[role] = struct{}{}
	}
	for _, role := range required {
		if _, ok := have[role]; ok {
			return true
		}
	}
	return false
}
