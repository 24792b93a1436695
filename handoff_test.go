package sessionkit

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/campushq/sessionkit/token"
)

func TestBuildHandoffURLSerializesLivePair(t *testing.T) {
	m, store := newTestManager(t, nil)
	access := mintToken(t, time.Now().Add(time.Hour), "STUDENT")
	seedPair(t, store, access, "refresh-1")

	raw, err := m.BuildHandoffURL(context.Background(), "learn.campushq.test", "/dashboard")
	if err != nil {
		t.Fatalf("BuildHandoffURL failed: %v", err)
	}

	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("built URL does not parse: %v", err)
	}
	if u.Scheme != "https" || u.Host != "learn.campushq.test" {
		t.Fatalf("URL targets %s://%s, want https://learn.campushq.test", u.Scheme, u.Host)
	}

	q := u.Query()
	if q.Get(HandoffParamSSO) != "true" {
		t.Fatal("handoff marker missing")
	}
	if q.Get(HandoffParamAccessToken) != access || q.Get(HandoffParamRefreshToken) != "refresh-1" {
		t.Fatal("handoff URL does not carry the stored pair")
	}
	if q.Get(HandoffParamRedirect) != "/dashboard" {
		t.Fatalf("redirect hint = %q, want /dashboard", q.Get(HandoffParamRedirect))
	}
}

func TestBuildHandoffURLInvokesCopyHook(t *testing.T) {
	copied := make(chan string, 1)
	m, store := newTestManager(t, func(cfg *Config) {
		cfg.Handoff.CopyURL = func(u string) { copied <- u }
	})
	seedPair(t, store, mintToken(t, time.Now().Add(time.Hour)), "refresh-1")

	raw, err := m.BuildHandoffURL(context.Background(), "learn.campushq.test", "")
	if err != nil {
		t.Fatalf("BuildHandoffURL failed: %v", err)
	}

	select {
	case got := <-copied:
		if got != raw {
			t.Fatalf("hook received %q, want the built URL", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("copy hook never invoked")
	}
}

func TestBuildHandoffURLSurvivesPanickingCopyHook(t *testing.T) {
	m, store := newTestManager(t, func(cfg *Config) {
		cfg.Handoff.CopyURL = func(string) { panic("clipboard bridge gone") }
	})
	seedPair(t, store, mintToken(t, time.Now().Add(time.Hour)), "refresh-1")

	if _, err := m.BuildHandoffURL(context.Background(), "learn.campushq.test", ""); err != nil {
		t.Fatalf("BuildHandoffURL failed: %v", err)
	}
}

func TestBuildHandoffURLRejectsDeadSession(t *testing.T) {
	ctx := context.Background()

	m, store := newTestManager(t, nil)
	if _, err := m.BuildHandoffURL(ctx, "learn.campushq.test", ""); !errors.Is(err, ErrNoLiveSession) {
		t.Fatalf("empty store: err = %v, want ErrNoLiveSession", err)
	}

	seedPair(t, store, mintToken(t, time.Now().Add(-time.Hour)), "refresh-1")
	if _, err := m.BuildHandoffURL(ctx, "learn.campushq.test", ""); !errors.Is(err, ErrHandoffExpired) {
		t.Fatalf("expired pair: err = %v, want ErrHandoffExpired", err)
	}
}

func TestConsumeHandoffSeedsStoreAndScrubsURL(t *testing.T) {
	ctx := context.Background()

	source, sourceStore := newTestManager(t, nil)
	access := mintToken(t, time.Now().Add(time.Hour), "STUDENT")
	seedPair(t, sourceStore, access, "refresh-1")

	raw, err := source.BuildHandoffURL(ctx, "learn.campushq.test", "/dashboard")
	if err != nil {
		t.Fatalf("BuildHandoffURL failed: %v", err)
	}
	inbound, _ := url.Parse(raw)

	target, targetStore := newTestManager(t, nil)
	clean, consumed, err := target.ConsumeHandoff(ctx, inbound)
	if err != nil {
		t.Fatalf("ConsumeHandoff failed: %v", err)
	}
	if !consumed {
		t.Fatal("handoff not consumed")
	}

	pair, ok, _ := token.ReadPair(ctx, targetStore)
	if !ok || pair.AccessToken != access || pair.RefreshToken != "refresh-1" {
		t.Fatalf("target store not seeded: ok=%v", ok)
	}

	q := clean.Query()
	if q.Get(HandoffParamSSO) != "" || q.Get(HandoffParamAccessToken) != "" || q.Get(HandoffParamRefreshToken) != "" {
		t.Fatalf("token material survived the scrub: %q", clean.String())
	}
	if q.Get(HandoffParamRedirect) != "/dashboard" {
		t.Fatalf("redirect hint lost in scrub: %q", clean.String())
	}
}

func TestConsumeHandoffWithoutMarkerIsNoOp(t *testing.T) {
	ctx := context.Background()
	m, store := newTestManager(t, nil)

	inbound, _ := url.Parse("https://learn.campushq.test/courses?page=2")
	clean, consumed, err := m.ConsumeHandoff(ctx, inbound)
	if err != nil {
		t.Fatalf("ConsumeHandoff failed: %v", err)
	}
	if consumed {
		t.Fatal("marker-less URL reported as consumed")
	}
	if clean != inbound {
		t.Fatal("marker-less URL was rewritten")
	}
	if _, ok, _ := token.ReadPair(ctx, store); ok {
		t.Fatal("marker-less URL seeded the store")
	}
}

func TestConsumeHandoffRejectsExpiredPair(t *testing.T) {
	ctx := context.Background()
	m, store := newTestManager(t, nil)

	dead := mintToken(t, time.Now().Add(-time.Hour))
	q := url.Values{}
	q.Set(HandoffParamSSO, "true")
	q.Set(HandoffParamAccessToken, dead)
	q.Set(HandoffParamRefreshToken, "refresh-1")
	inbound, _ := url.Parse("https://learn.campushq.test/?" + q.Encode())

	clean, consumed, err := m.ConsumeHandoff(ctx, inbound)
	if !errors.Is(err, ErrHandoffExpired) {
		t.Fatalf("err = %v, want ErrHandoffExpired", err)
	}
	if consumed {
		t.Fatal("dead pair reported as consumed")
	}
	if clean != inbound {
		t.Fatal("rejected handoff rewrote the URL")
	}
	if _, ok, _ := token.ReadPair(ctx, store); ok {
		t.Fatal("dead pair seeded the store")
	}
}

func TestPeekHandoffDecodesWithoutConsuming(t *testing.T) {
	q := url.Values{}
	q.Set(HandoffParamSSO, "true")
	q.Set(HandoffParamAccessToken, "a")
	q.Set(HandoffParamRefreshToken, "r")
	q.Set(HandoffParamRedirect, "/next")
	u, _ := url.Parse("https://learn.campushq.test/?" + q.Encode())

	payload, ok := PeekHandoff(u)
	if !ok {
		t.Fatal("PeekHandoff missed the marker")
	}
	if payload.AccessToken != "a" || payload.RefreshToken != "r" || payload.RedirectPath != "/next" {
		t.Fatalf("payload = %+v", payload)
	}

	plain, _ := url.Parse("https://learn.campushq.test/courses")
	if _, ok := PeekHandoff(plain); ok {
		t.Fatal("PeekHandoff claimed a marker on a plain URL")
	}
}
