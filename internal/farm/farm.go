// Package farm provides cross-process coordination for a fleet of miner
// processes sharing one Redis instance: a score-based submission rate
// limiter keyed by device id. It never stores mining results or job
// state, only ephemeral scores and cool-downs.
package farm

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/handshake-org/hs-miner-go/internal/util"
)

// Limiter rate-limits job submissions per device across a fleet of
// processes by maintaining a Redis-backed score per device, incremented
// on every submission and reset on a rolling window.
type Limiter struct {
	client      *redis.Client
	ctx         context.Context
	keyPrefix   string
	maxScore    int
	scoreWindow time.Duration
	costPerJob  int
}

// NewLimiter connects to redisURL/redisDB and returns a ready Limiter.
func NewLimiter(redisURL string, redisDB int, keyPrefix string, maxScore, costPerJob int, scoreWindow time.Duration) (*Limiter, error) {
	client := redis.NewClient(&redis.Options{
		Addr: redisURL,
		DB:   redisDB,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("farm: redis connection failed: %w", err)
	}

	util.Info("farm: connected to redis at ", redisURL)
	return &Limiter{
		client:      client,
		ctx:         ctx,
		keyPrefix:   keyPrefix,
		maxScore:    maxScore,
		costPerJob:  costPerJob,
		scoreWindow: scoreWindow,
	}, nil
}

// Close releases the underlying Redis connection.
func (l *Limiter) Close() error {
	return l.client.Close()
}

func (l *Limiter) scoreKey(device uint32) string {
	return fmt.Sprintf("%s:farm:score:%d", l.keyPrefix, device)
}

// Allow charges costPerJob against device's score, returning whether the
// submission is allowed. The score key expires after scoreWindow with no
// further charges, so an idle device's budget refills on its own.
func (l *Limiter) Allow(device uint32) (bool, error) {
	key := l.scoreKey(device)

	pipe := l.client.TxPipeline()
	incr := pipe.IncrBy(l.ctx, key, int64(l.costPerJob))
	pipe.Expire(l.ctx, key, l.scoreWindow)
	if _, err := pipe.Exec(l.ctx); err != nil {
		return false, fmt.Errorf("farm: score update failed: %w", err)
	}

	score := incr.Val()
	return score <= int64(l.maxScore), nil
}

// Score returns device's current score, or 0 if it has none.
func (l *Limiter) Score(device uint32) (int64, error) {
	val, err := l.client.Get(l.ctx, l.scoreKey(device)).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("farm: score lookup failed: %w", err)
	}
	return val, nil
}

// Reset clears device's score immediately, e.g. after an operator
// intervention.
func (l *Limiter) Reset(device uint32) error {
	return l.client.Del(l.ctx, l.scoreKey(device)).Err()
}
