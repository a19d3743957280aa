package session

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const defaultSessionTTL = 24 * time.Hour

// RedisStorage persists session identifiers in Redis. Hosts that embed
// the engine outside a browser (kiosks, server-rendered previews) use
// it to keep session continuity across restarts.
type RedisStorage struct {
	redis  *redis.Client
	tracer trace.Tracer
	ttl    time.Duration
}

// RedisOption configures RedisStorage.
type RedisOption func(*RedisStorage)

// WithTTL overrides how long an idle session identifier survives.
func WithTTL(ttl time.Duration) RedisOption {
	return func(s *RedisStorage) {
		s.ttl = ttl
	}
}

// WithTracer sets a custom tracer.
func WithTracer(tracer trace.Tracer) RedisOption {
	return func(s *RedisStorage) {
		s.tracer = tracer
	}
}

// NewRedisStorage creates Redis-backed session storage.
func NewRedisStorage(client *redis.Client, opts ...RedisOption) *RedisStorage {
	if client == nil {
		panic("session: redis client cannot be nil")
	}
	s := &RedisStorage{
		redis:  client,
		tracer: otel.Tracer("concierge.internal.session"),
		ttl:    defaultSessionTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStorage) Get(ctx context.Context, key string) (string, error) {
	ctx, span := s.tracer.Start(ctx, "session.storage_get")
	defer span.End()

	value, err := s.redis.Get(ctx, storageKey(key)).Result()
	if err != nil {
		if err == redis.Nil {
			return "", nil
		}
		span.RecordError(err)
		return "", fmt.Errorf("session: failed to read %s: %w", key, err)
	}
	return value, nil
}

func (s *RedisStorage) Set(ctx context.Context, key, value string) error {
	ctx, span := s.tracer.Start(ctx, "session.storage_set")
	defer span.End()

	if err := s.redis.Set(ctx, storageKey(key), value, s.ttl).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("session: failed to persist %s: %w", key, err)
	}
	return nil
}

func storageKey(key string) string {
	return "widget:session:" + key
}
