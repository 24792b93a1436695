package token

import (
	"context"
	"net/http"
	"time"
)

// CookieStore is a [Store] backed by the cookies of one request/response
// exchange. It is the deployment-facing store for BFF-style frontends: a
// token set with a shared parent-domain scope is readable by sibling
// subdomains, and removal expires the cookie under both the host scope and
// the shared-domain scope.
//
// A CookieStore is bound to a single exchange; construct one per request.
type CookieStore struct {
	w   http.ResponseWriter
	r   *http.Request
	now func() time.Time

	// written shadows cookies set during this exchange, since the request's
	// Cookie header never reflects them.
	written map[string]string
}

// NewCookieStore binds a store to one request/response exchange.
func NewCookieStore(w http.ResponseWriter, r *http.Request) *CookieStore {
	return &CookieStore{
		w:       w,
		r:       r,
		now:     time.Now,
		written: make(map[string]string),
	}
}

// Get implements [Store].
func (c *CookieStore) Get(_ context.Context, key string) (string, bool, error) {
	if value, ok := c.written[key]; ok {
		if value == "" {
			return "", false, nil
		}
		return value, true, nil
	}

	cookie, err := c.r.Cookie(key)
	if err != nil || cookie.Value == "" {
		return "", false, nil
	}
	return cookie.Value, true, nil
}

// Set implements [Store].
func (c *CookieStore) Set(_ context.Context, key, value string, attrs Attributes) error {
	ttl := attrs.TTL
	if ttl <= 0 {
		ttl = DefaultWriteTTL
	}

	http.SetCookie(c.w, &http.Cookie{
		Name:     key,
		Value:    value,
		Path:     "/",
		Domain:   attrs.Domain,
		Expires:  c.now().Add(ttl),
		Secure:   attrs.Secure,
		HttpOnly: true,
		SameSite: attrs.SameSite,
	})
	c.written[key] = value
	return nil
}

// Remove implements [Store]. It expires the cookie under the host scope
// and, when a shared domain is configured, under that scope as well, so a
// logout on one subdomain does not orphan credentials on its siblings.
func (c *CookieStore) Remove(_ context.Context, key string, attrs Attributes) error {
	c.expire(key, "", attrs)
	if attrs.Domain != "" {
		c.expire(key, attrs.Domain, attrs)
	}
	c.written[key] = ""
	return nil
}

func (c *CookieStore) expire(key, domain string, attrs Attributes) {
	http.SetCookie(c.w, &http.Cookie{
		Name:     key,
		Value:    "",
		Path:     "/",
		Domain:   domain,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		Secure:   attrs.Secure,
		HttpOnly: true,
		SameSite: attrs.SameSite,
	})
}
