package token

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore is a [Store] for horizontally scaled BFF deployments: the
// token pair lives server-side keyed by the end-user's session ID, so any
// instance behind the load balancer reads the same credentials. The
// Domain/Secure attributes do not apply here — scope is the session ID —
// but write TTLs are honored.
type RedisStore struct {
	client    *redis.Client
	prefix    string
	sessionID string
}

// NewRedisStore creates a store bound to one end-user session. prefix
// namespaces keys (e.g. "sk"); sessionID identifies the browser session
// whose credentials this store holds.
func NewRedisStore(client *redis.Client, prefix, sessionID string) (*RedisStore, error) {
	if client == nil {
		return nil, errors.New("token: nil redis client")
	}
	if sessionID == "" {
		return nil, errors.New("token: empty session ID")
	}
	if prefix == "" {
		prefix = "sk"
	}
	return &RedisStore{client: client, prefix: prefix, sessionID: sessionID}, nil
}

func (r *RedisStore) key(key string) string {
	return r.prefix + ":" + r.sessionID + ":" + key
}

// Get implements [Store].
func (r *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := r.client.Get(ctx, r.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("token: redis get: %w", err)
	}
	return value, true, nil
}

// Set implements [Store].
func (r *RedisStore) Set(ctx context.Context, key, value string, attrs Attributes) error {
	ttl := attrs.TTL
	if ttl <= 0 {
		ttl = DefaultWriteTTL
	}
	if err := r.client.Set(ctx, r.key(key), value, ttl).Err(); err != nil {
		return fmt.Errorf("token: redis set: %w", err)
	}
	return nil
}

// Remove implements [Store].
func (r *RedisStore) Remove(ctx context.Context, key string, _ Attributes) error {
	if err := r.client.Del(ctx, r.key(key)).Err(); err != nil {
		return fmt.Errorf("token: redis del: %w", err)
	}
	return nil
}
