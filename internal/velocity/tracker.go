// Package velocity provides Redis-backed conversation velocity tracking
// using the INCR + EXPIRE window algorithm. The context analyzer consumes
// the counts to spot bursts of messages in a single conversation; on any
// Redis error the tracker fails open and reports zero, so a Redis outage
// never distorts classification.
package velocity

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// KeyPrefix is the Redis key prefix for velocity counters.
	KeyPrefix = "vel:conv:"

	// DefaultWindow is the counting window per conversation.
	DefaultWindow = 1 * time.Minute
)

// Tracker counts messages per conversation in a rolling window.
type Tracker struct {
	client *redis.Client
	window time.Duration
}

// NewTracker creates a tracker backed by the given Redis client. A
// non-positive window falls back to DefaultWindow.
func NewTracker(client *redis.Client, window time.Duration) *Tracker {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Tracker{client: client, window: window}
}

// Observe increments the conversation's counter and returns the count in
// the current window, including this observation. On the first increment
// the expiry defines the window boundary. Redis errors fail open to zero.
func (t *Tracker) Observe(ctx context.Context, conversationID string) int {
	key := KeyPrefix + conversationID

	count, err := t.client.Incr(ctx, key).Result()
	if err != nil {
		log.Printf("[velocity] redis INCR error key=%s: %v (failing open)", key, err)
		return 0
	}

	if count == 1 {
		if err := t.client.Expire(ctx, key, t.window).Err(); err != nil {
			log.Printf("[velocity] redis EXPIRE error key=%s: %v (failing open)", key, err)
			// The key exists but has no TTL. Best effort: delete it so the
			// counter doesn't grow forever.
			t.client.Del(ctx, key)
			return 0
		}
	}

	return int(count)
}
