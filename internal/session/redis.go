package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const defaultSessionTTL = 30 * 24 * time.Hour

// RedisRepository stores sessions as JSON blobs with a sliding TTL.
type RedisRepository struct {
	client *redis.Client
	ttl    time.Duration
	tracer trace.Tracer
}

// NewRedisRepository builds a Redis-backed repository. A zero ttl uses 30 days.
func NewRedisRepository(client *redis.Client, ttl time.Duration) *RedisRepository {
	if client == nil {
		panic("session: redis client cannot be nil")
	}
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &RedisRepository{
		client: client,
		ttl:    ttl,
		tracer: otel.Tracer("concierge.internal.session.redis"),
	}
}

func (r *RedisRepository) Load(ctx context.Context, userID string) (*Session, error) {
	ctx, span := r.tracer.Start(ctx, "session.redis.load")
	defer span.End()

	data, err := r.client.Get(ctx, sessionKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("session: failed to load: %w", err)
	}
	return Decode(data)
}

func (r *RedisRepository) Save(ctx context.Context, s *Session) error {
	ctx, span := r.tracer.Start(ctx, "session.redis.save")
	defer span.End()

	data, err := Encode(s)
	if err != nil {
		span.RecordError(err)
		return err
	}
	if err := r.client.Set(ctx, sessionKey(s.UserID), data, r.ttl).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("session: failed to persist: %w", err)
	}
	return nil
}

func sessionKey(userID string) string {
	return fmt.Sprintf("concierge:session:%s", userID)
}
