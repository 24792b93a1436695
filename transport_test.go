package sessionkit

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/campushq/sessionkit/token"
)

func TestTransportAttachesBearerToken(t *testing.T) {
	var gotAuth atomic.Value
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth.Store(r.Header.Get("Authorization"))
	}))
	defer upstream.Close()

	m, store := newTestManager(t, nil)
	access := mintToken(t, time.Now().Add(time.Hour))
	seedPair(t, store, access, "refresh-1")

	req, _ := http.NewRequest(http.MethodGet, upstream.URL, nil)
	resp, err := m.Do(req)
	if err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	resp.Body.Close()

	if got, _ := gotAuth.Load().(string); got != "Bearer "+access {
		t.Fatalf("Authorization = %q, want bearer with stored token", got)
	}
}

func TestTransportDoesNotMutateCallerRequest(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	defer upstream.Close()

	m, store := newTestManager(t, nil)
	seedPair(t, store, mintToken(t, time.Now().Add(time.Hour)), "refresh-1")

	req, _ := http.NewRequest(http.MethodGet, upstream.URL, nil)
	resp, err := m.Do(req)
	if err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	resp.Body.Close()

	if req.Header.Get("Authorization") != "" {
		t.Fatal("caller's request gained an Authorization header")
	}
}

func TestTransportRefreshesExpiredTokenBeforeDispatch(t *testing.T) {
	var exchanges atomic.Int64
	newAccess := mintToken(t, time.Now().Add(time.Hour))
	exchange := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		exchanges.Add(1)
		fmt.Fprintf(w, `{"accessToken":%q,"refreshToken":"refresh-next"}`, newAccess)
	}))
	defer exchange.Close()

	var gotAuth atomic.Value
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth.Store(r.Header.Get("Authorization"))
	}))
	defer upstream.Close()

	m, store := newTestManager(t, func(cfg *Config) {
		cfg.Refresh.EndpointURL = exchange.URL
	})
	seedPair(t, store, mintToken(t, time.Now().Add(-time.Minute)), "refresh-old")

	// First request crosses the expiry boundary and refreshes.
	req, _ := http.NewRequest(http.MethodGet, upstream.URL, nil)
	resp, err := m.Do(req)
	if err != nil {
		t.Fatalf("first Do failed: %v", err)
	}
	resp.Body.Close()
	if got, _ := gotAuth.Load().(string); got != "Bearer "+newAccess {
		t.Fatalf("first request carried %q, want refreshed token", got)
	}

	// Second request reuses the refreshed token without another exchange.
	req2, _ := http.NewRequest(http.MethodGet, upstream.URL, nil)
	resp2, err := m.Do(req2)
	if err != nil {
		t.Fatalf("second Do failed: %v", err)
	}
	resp2.Body.Close()

	if got := exchanges.Load(); got != 1 {
		t.Fatalf("exchange endpoint called %d times, want 1", got)
	}
}

func TestTransport401ForcesLogout(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer upstream.Close()

	nav := &navRecorder{}
	m, store := newTestManager(t, func(cfg *Config) {
		cfg.Logout.Navigate = nav.navigate
	})
	seedPair(t, store, mintToken(t, time.Now().Add(time.Hour)), "refresh-1")

	req, _ := http.NewRequest(http.MethodGet, upstream.URL, nil)
	resp, err := m.Do(req)
	if !errors.Is(err, ErrCredentialRejected) {
		t.Fatalf("err = %v, want ErrCredentialRejected", err)
	}
	if resp != nil {
		resp.Body.Close()
	}

	if _, ok, _ := store.Get(context.Background(), token.KeyAccessToken); ok {
		t.Fatal("access token survived a 401")
	}
	if nav.last() != testLoginURL {
		t.Fatalf("navigated to %q, want login URL", nav.last())
	}
	if m.metrics.Value(MetricCredentialRejected) != 1 {
		t.Fatal("credential rejected metric not recorded")
	}
}

func TestTransport403LeavesSessionUntouched(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer upstream.Close()

	nav := &navRecorder{}
	m, store := newTestManager(t, func(cfg *Config) {
		cfg.Logout.Navigate = nav.navigate
	})
	access := mintToken(t, time.Now().Add(time.Hour))
	seedPair(t, store, access, "refresh-1")

	req, _ := http.NewRequest(http.MethodGet, upstream.URL, nil)
	resp, err := m.Do(req)
	if !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("err = %v, want ErrPermissionDenied", err)
	}
	if resp != nil {
		resp.Body.Close()
	}

	stored, ok, _ := token.ReadPair(context.Background(), store)
	if !ok || stored.AccessToken != access {
		t.Fatalf("403 disturbed the stored session: ok=%v", ok)
	}
	if nav.count() != 0 {
		t.Fatal("403 must not navigate away")
	}
}

func TestTransport511LogsOutAndEmitsDiagnostic(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNetworkAuthenticationRequired)
	}))
	defer upstream.Close()

	sink := NewChannelSink(16)
	store := token.NewMemoryStore()
	m, err := New().WithConfig(testConfig()).WithStore(store).WithDiagnosticSink(sink).Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(m.Close)

	access := mintToken(t, time.Now().Add(time.Hour))
	seedPair(t, store, access, "refresh-1")

	req, _ := http.NewRequest(http.MethodGet, upstream.URL, nil)
	resp, err := m.Do(req)
	if !errors.Is(err, ErrCredentialRejected) {
		t.Fatalf("err = %v, want ErrCredentialRejected", err)
	}
	if resp != nil {
		resp.Body.Close()
	}

	if _, ok, _ := store.Get(context.Background(), token.KeyAccessToken); ok {
		t.Fatal("access token survived a 511")
	}

	deadline := time.After(2 * time.Second)
	for {
		select {
		case event := <-sink.Events():
			if event.EventType != "network_auth_required" {
				continue
			}
			if !event.AccessTokenPresent || event.AccessTokenLength != len(access) {
				t.Fatalf("diagnostic misses token metadata: %+v", event)
			}
			return
		case <-deadline:
			t.Fatal("no network_auth_required diagnostic observed")
		}
	}
}

func TestTransport5xxKeepsSession(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer upstream.Close()

	m, store := newTestManager(t, nil)
	seedPair(t, store, mintToken(t, time.Now().Add(time.Hour)), "refresh-1")

	req, _ := http.NewRequest(http.MethodGet, upstream.URL, nil)
	resp, err := m.Do(req)
	if !errors.Is(err, ErrServerUnavailable) {
		t.Fatalf("err = %v, want ErrServerUnavailable", err)
	}
	if resp != nil {
		resp.Body.Close()
	}

	if _, ok, _ := token.ReadPair(context.Background(), store); !ok {
		t.Fatal("5xx cleared the stored session")
	}
	if m.metrics.Value(MetricServerError) != 1 {
		t.Fatal("server error metric not recorded")
	}
}

func TestTransportWithoutAuthBypassesCredentialCheck(t *testing.T) {
	var gotAuth atomic.Value
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth.Store(r.Header.Get("Authorization"))
	}))
	defer upstream.Close()

	// Deliberately empty store: an authenticated request would be rejected.
	m, _ := newTestManager(t, nil)

	req, _ := http.NewRequestWithContext(WithoutAuth(context.Background()), http.MethodGet, upstream.URL, nil)
	resp, err := m.Do(req)
	if err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	resp.Body.Close()

	if got, _ := gotAuth.Load().(string); got != "" {
		t.Fatalf("bypassed request still carried Authorization %q", got)
	}
}

func TestTransportAbsentTokenNeverDispatches(t *testing.T) {
	var hits atomic.Int64
	upstream := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		hits.Add(1)
	}))
	defer upstream.Close()

	m, _ := newTestManager(t, nil)

	req, _ := http.NewRequest(http.MethodGet, upstream.URL, nil)
	_, err := m.Do(req)
	if !errors.Is(err, ErrLoggedOut) {
		t.Fatalf("err = %v, want ErrLoggedOut", err)
	}
	if hits.Load() != 0 {
		t.Fatal("request reached upstream without a credential")
	}
}

func TestTransportTimedOutRefreshRejectsAllAndLogsOutOnce(t *testing.T) {
	release := make(chan struct{})
	exchange := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		<-release
	}))
	defer exchange.Close()
	defer close(release)

	var hits atomic.Int64
	upstream := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		hits.Add(1)
	}))
	defer upstream.Close()

	nav := &navRecorder{}
	m, store := newTestManager(t, func(cfg *Config) {
		cfg.Refresh.EndpointURL = exchange.URL
		cfg.Refresh.Timeout = 50 * time.Millisecond
		cfg.Logout.Navigate = nav.navigate
	})
	seedPair(t, store, mintToken(t, time.Now().Add(-time.Minute)), "refresh-old")

	const workers = 8
	errs := make([]error, workers)
	done := make(chan int, workers)
	for i := 0; i < workers; i++ {
		go func(i int) {
			req, _ := http.NewRequest(http.MethodGet, upstream.URL, nil)
			_, errs[i] = m.Do(req)
			done <- i
		}(i)
	}
	for i := 0; i < workers; i++ {
		<-done
	}

	for i := 0; i < workers; i++ {
		if !errors.Is(errs[i], ErrRefreshUnavailable) {
			t.Fatalf("worker %d err = %v, want ErrRefreshUnavailable", i, errs[i])
		}
	}
	if hits.Load() != 0 {
		t.Fatal("a request with a dead credential reached upstream")
	}
	if _, ok, _ := token.ReadPair(context.Background(), store); ok {
		t.Fatal("tokens survived the forced logout")
	}
	if nav.count() == 0 {
		t.Fatal("no navigation recorded after forced logout")
	}
}
