// Package ratelimit throttles abuse-prone endpoints with a Redis INCR +
// EXPIRE counter window. Login attempts are limited per client IP and the
// standalone moderation endpoints per authenticated user, so a single
// client cannot brute-force credentials or burn the classifier quota.
package ratelimit

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Rule is a throttling policy: the Redis key prefix, the maximum count in
// the window, and the window duration.
type Rule struct {
	Key    string
	Limit  int
	Window time.Duration
}

var (
	// RuleLogin allows 10 login attempts per minute per client IP.
	RuleLogin = Rule{Key: "rl:login:", Limit: 10, Window: time.Minute}

	// RuleModeration allows 30 standalone moderation calls per minute per
	// user. Post creation is not throttled here; its moderation cost is
	// bounded by the post size limits.
	RuleModeration = Rule{Key: "rl:mod:", Limit: 30, Window: time.Minute}
)

// Limiter counts requests against Redis.
type Limiter struct {
	client *redis.Client
}

// NewLimiter creates a Limiter backed by the given Redis client.
func NewLimiter(client *redis.Client) *Limiter {
	return &Limiter{client: client}
}

// Allow increments the counter for identifier under rule and reports whether
// the request fits in the window. On Redis errors it fails open so a Redis
// outage never locks users out.
func (l *Limiter) Allow(ctx context.Context, identifier string, rule Rule) bool {
	key := rule.Key + identifier

	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		log.Printf("[ratelimit] INCR %s: %v (failing open)", key, err)
		return true
	}

	// First hit in the window defines its boundary.
	if count == 1 {
		if err := l.client.Expire(ctx, key, rule.Window).Err(); err != nil {
			log.Printf("[ratelimit] EXPIRE %s: %v (failing open)", key, err)
			// The counter has no TTL and would throttle the identifier
			// forever; drop it.
			l.client.Del(ctx, key)
			return true
		}
	}

	return int(count) <= rule.Limit
}
