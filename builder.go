package sessionkit

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/campushq/sessionkit/token"
)

// Builder assembles a [Manager]. Configure it with the WithX methods and
// call [Builder.Build] exactly once; a Builder is not safe for concurrent
// use and must not be reused after Build.
type Builder struct {
	config Config

	store        token.Store
	redisClient  *redis.Client
	redisPrefix  string
	redisSession string

	httpClient *http.Client
	base       http.RoundTripper
	sink       DiagnosticSink

	built bool
}

// New creates a Builder seeded with [DefaultConfig].
func New() *Builder {
	return &Builder{config: defaultConfig()}
}

// WithConfig replaces the entire configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithStore sets the token store. Required unless [Builder.WithRedisSession]
// is used.
func (b *Builder) WithStore(store token.Store) *Builder {
	b.store = store
	return b
}

// WithRedisSession backs the token store with Redis, keyed by sessionID.
// Convenience for BFF deployments; equivalent to WithStore with a
// [token.RedisStore].
func (b *Builder) WithRedisSession(client *redis.Client, prefix, sessionID string) *Builder {
	b.redisClient = client
	b.redisPrefix = prefix
	b.redisSession = sessionID
	return b
}

// WithHTTPClient sets the client used for the token exchange call. It must
// NOT be the authenticated client returned by [Manager.Client]; the
// exchange runs outside the bearer transport.
func (b *Builder) WithHTTPClient(client *http.Client) *Builder {
	b.httpClient = client
	return b
}

// WithBaseTransport sets the round tripper the authenticated transport
// wraps. Defaults to [http.DefaultTransport].
func (b *Builder) WithBaseTransport(rt http.RoundTripper) *Builder {
	b.base = rt
	return b
}

// WithDiagnosticSink sets the sink receiving diagnostic events. Enables
// diagnostics implicitly.
func (b *Builder) WithDiagnosticSink(sink DiagnosticSink) *Builder {
	b.sink = sink
	b.config.Diagnostics.Enabled = true
	return b
}

// WithMetrics enables the in-process metrics system.
func (b *Builder) WithMetrics(latencyHistograms bool) *Builder {
	b.config.Metrics.Enabled = true
	b.config.Metrics.EnableLatencyHistograms = latencyHistograms
	return b
}

// Build validates the configuration and assembles the Manager.
func (b *Builder) Build() (*Manager, error) {
	if b.built {
		return nil, errors.New("sessionkit: Builder.Build called twice")
	}
	b.built = true

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("sessionkit: invalid config: %w", err)
	}

	store := b.store
	if store == nil && b.redisClient != nil {
		rs, err := token.NewRedisStore(b.redisClient, b.redisPrefix, b.redisSession)
		if err != nil {
			return nil, fmt.Errorf("sessionkit: redis store: %w", err)
		}
		store = rs
	}
	if store == nil {
		return nil, errors.New("sessionkit: a token store is required")
	}

	httpClient := b.httpClient
	if httpClient == nil {
		// Per-exchange deadlines come from Refresh.Timeout; the client
		// timeout is a backstop only.
		httpClient = &http.Client{Timeout: cfg.Refresh.Timeout + time.Second}
	}

	m := &Manager{
		config:     cfg,
		store:      store,
		httpClient: httpClient,
		base:       b.base,
		metrics:    NewMetrics(cfg.Metrics),
		audit:      newAuditDispatcher(cfg.Diagnostics, b.sink),
		now:        time.Now,
	}
	return m, nil
}
