package tracking

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"ProblemRadar/internal/config"
	"ProblemRadar/internal/domain"
	"ProblemRadar/internal/ports"
)

const eventLogLength = 1000

// RedisTracker keeps per-landing-page event counters in a Redis hash and a
// capped log of the raw events.
type RedisTracker struct {
	rdb *redis.Client
}

var _ ports.ConversionTracker = (*RedisTracker)(nil)

// NewRedisTracker connects to cfg.Addr and pings it.
func NewRedisTracker(ctx context.Context, cfg config.RedisConfig) (*RedisTracker, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis %s: %w", cfg.Addr, err)
	}
	return &RedisTracker{rdb: rdb}, nil
}

// Close releases the client.
func (t *RedisTracker) Close() error {
	return t.rdb.Close()
}

func countersKey(landingPageID string) string {
	return "landing:" + landingPageID + ":events"
}

func logKey(landingPageID string) string {
	return "landing:" + landingPageID + ":log"
}

// Track increments the event counter and appends the event to the log.
func (t *RedisTracker) Track(ctx context.Context, event domain.ConversionEvent) error {
	raw, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	_, err = t.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HIncrBy(ctx, countersKey(event.LandingPageID), event.EventType, 1)
		pipe.LPush(ctx, logKey(event.LandingPageID), raw)
		pipe.LTrim(ctx, logKey(event.LandingPageID), 0, eventLogLength-1)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: track event: %v", domain.ErrUpstream, err)
	}
	return nil
}

// Counts returns every event counter of the landing page.
func (t *RedisTracker) Counts(ctx context.Context, landingPageID string) (map[string]int64, error) {
	raw, err := t.rdb.HGetAll(ctx, countersKey(landingPageID)).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: read counters: %v", domain.ErrUpstream, err)
	}
	return parseCounts(raw), nil
}

func parseCounts(raw map[string]string) map[string]int64 {
	counts := make(map[string]int64, len(raw))
	for event, value := range raw {
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			continue
		}
		counts[event] = n
	}
	return counts
}
