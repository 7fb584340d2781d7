package kvstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/2beens/gymtimers/internal/telemetry/tracing"

	"github.com/go-redis/redis/v8"
	"go.opentelemetry.io/otel/attribute"
)

var _ Store = (*Redis)(nil)

// Redis keeps every blob under "<prefix>:<key>".
type Redis struct {
	redisClient *redis.Client
	prefix      string
}

func NewRedis(redisClient *redis.Client, prefix string) *Redis {
	return &Redis{
		redisClient: redisClient,
		prefix:      prefix,
	}
}

func (r *Redis) fullKey(key string) string {
	if r.prefix == "" {
		return key
	}
	return r.prefix + ":" + key
}

func (r *Redis) Get(ctx context.Context, key string) (_ []byte, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "kvstore.redis.get")
	span.SetAttributes(attribute.String("key", key))
	defer func() {
		if errors.Is(err, ErrNotFound) {
			span.End()
			return
		}
		tracing.EndSpanWithErrCheck(span, err)
	}()

	val, err := r.redisClient.Get(ctx, r.fullKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return val, nil
}

func (r *Redis) Set(ctx context.Context, key string, value []byte) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "kvstore.redis.set")
	span.SetAttributes(attribute.String("key", key))
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	if err := r.redisClient.Set(ctx, r.fullKey(key), string(value), 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (r *Redis) Del(ctx context.Context, keys ...string) (err error) {
	if len(keys) == 0 {
		return nil
	}

	ctx, span := tracing.GlobalTracer.Start(ctx, "kvstore.redis.del")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	fullKeys := make([]string, 0, len(keys))
	for _, k := range keys {
		fullKeys = append(fullKeys, r.fullKey(k))
	}
	if err := r.redisClient.Del(ctx, fullKeys...).Err(); err != nil {
		return fmt.Errorf("redis del %v: %w", keys, err)
	}
	return nil
}
