package token

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newCookieExchange(cookies ...*http.Cookie) (*CookieStore, *httptest.ResponseRecorder) {
	r := httptest.NewRequest(http.MethodGet, "https://teach.campushq.example/dashboard", nil)
	for _, c := range cookies {
		r.AddCookie(c)
	}
	w := httptest.NewRecorder()
	return NewCookieStore(w, r), w
}

func TestCookieStoreGetAbsent(t *testing.T) {
	s, _ := newCookieExchange()

	if _, ok, err := s.Get(context.Background(), KeyAccessToken); ok || err != nil {
		t.Fatalf("missing cookie: ok=%v err=%v, want absent without error", ok, err)
	}
}

func TestCookieStoreSetAttributes(t *testing.T) {
	s, w := newCookieExchange()
	ctx := context.Background()

	attrs := Attributes{
		Domain:   ".campushq.example",
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	}
	if err := s.Set(ctx, KeyAccessToken, "A1", attrs); err != nil {
		t.Fatalf("set: %v", err)
	}

	cookies := w.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("got %d cookies, want 1", len(cookies))
	}
	c := cookies[0]
	if c.Name != KeyAccessToken || c.Value != "A1" {
		t.Fatalf("cookie = %s=%s", c.Name, c.Value)
	}
	if c.Domain != "campushq.example" && c.Domain != ".campushq.example" {
		t.Fatalf("cookie domain = %q, want shared scope", c.Domain)
	}
	if !c.Secure || !c.HttpOnly {
		t.Fatalf("cookie missing Secure/HttpOnly: %+v", c)
	}
	if c.Expires.IsZero() {
		t.Fatalf("cookie has no expiry; write TTL not applied")
	}

	// The value written during this exchange must be readable back.
	value, ok, err := s.Get(ctx, KeyAccessToken)
	if err != nil || !ok || value != "A1" {
		t.Fatalf("read-back: value=%q ok=%v err=%v", value, ok, err)
	}
}

func TestCookieStoreRemoveClearsBothScopes(t *testing.T) {
	s, w := newCookieExchange(&http.Cookie{Name: KeyAccessToken, Value: "A1"})
	ctx := context.Background()

	attrs := Attributes{Domain: ".campushq.example", Secure: true}
	if err := s.Remove(ctx, KeyAccessToken, attrs); err != nil {
		t.Fatalf("remove: %v", err)
	}

	cookies := w.Result().Cookies()
	if len(cookies) != 2 {
		t.Fatalf("got %d expiry cookies, want host-scoped and domain-scoped", len(cookies))
	}
	sawHost, sawDomain := false, false
	for _, c := range cookies {
		if c.Name != KeyAccessToken || c.MaxAge != -1 {
			t.Fatalf("unexpected cookie %+v", c)
		}
		if c.Domain == "" {
			sawHost = true
		} else {
			sawDomain = true
		}
	}
	if !sawHost || !sawDomain {
		t.Fatalf("expiry cookies: host=%v domain=%v, want both", sawHost, sawDomain)
	}

	if _, ok, _ := s.Get(ctx, KeyAccessToken); ok {
		t.Fatalf("removed cookie still readable in the same exchange")
	}
}
