// Package querycache is a Redis cache-aside layer for read endpoints, with
// explicit invalidation by key after writes.
package querycache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/gymtimers/internal/telemetry/tracing"

	"github.com/go-redis/redis/v8"
	"go.opentelemetry.io/otel/attribute"
)

// cache keys shared by the workouts API and the auto-save bridge
const (
	KeyWorkouts              = "workouts"
	KeyWorkoutsWithExercises = "workouts-with-exercises"
	KeyWorkoutStats          = "workout-stats"
	KeyMonthlyGoals          = "monthly-goals"
	KeyCommunityPresence     = "community-presence"
)

// WorkoutKeys are the keys invalidated after a workout is added.
var WorkoutKeys = []string{
	KeyWorkouts,
	KeyWorkoutsWithExercises,
	KeyWorkoutStats,
	KeyMonthlyGoals,
}

type Cache struct {
	redisClient *redis.Client
	prefix      string
	ttl         time.Duration
}

func New(redisClient *redis.Client, prefix string, ttl time.Duration) *Cache {
	return &Cache{
		redisClient: redisClient,
		prefix:      prefix,
		ttl:         ttl,
	}
}

func (c *Cache) fullKey(key string) string {
	return c.prefix + ":query:" + key
}

// Get decodes the cached value into dst. A miss is (false, nil).
func (c *Cache) Get(ctx context.Context, key string, dst any) (_ bool, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "querycache.get")
	span.SetAttributes(attribute.String("key", key))
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	raw, err := c.redisClient.Get(ctx, c.fullKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			span.SetAttributes(attribute.Bool("hit", false))
			return false, nil
		}
		return false, fmt.Errorf("get %s: %w", key, err)
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("unmarshal %s: %w", key, err)
	}
	span.SetAttributes(attribute.Bool("hit", true))
	return true, nil
}

func (c *Cache) Set(ctx context.Context, key string, v any) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "querycache.set")
	span.SetAttributes(attribute.String("key", key))
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	if err := c.redisClient.Set(ctx, c.fullKey(key), string(raw), c.ttl).Err(); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (c *Cache) Invalidate(ctx context.Context, keys ...string) (err error) {
	if len(keys) == 0 {
		return nil
	}

	ctx, span := tracing.GlobalTracer.Start(ctx, "querycache.invalidate")
	span.SetAttributes(attribute.StringSlice("keys", keys))
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	fullKeys := make([]string, 0, len(keys))
	for _, k := range keys {
		fullKeys = append(fullKeys, c.fullKey(k))
	}
	if err := c.redisClient.Del(ctx, fullKeys...).Err(); err != nil {
		return fmt.Errorf("invalidate %v: %w", keys, err)
	}
	return nil
}
