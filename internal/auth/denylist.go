package auth

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// DenyPrefix is the Redis key prefix for revoked token IDs.
const DenyPrefix = "deny:jti:"

// Denylist records revoked JWT IDs in Redis. Entries carry a TTL equal to
// the token's remaining lifetime, so the list stays bounded by the number of
// live revoked tokens.
type Denylist struct {
	client *redis.Client
}

// NewDenylist creates a Denylist using the provided Redis client.
func NewDenylist(client *redis.Client) *Denylist {
	return &Denylist{client: client}
}

// Revoke marks a jti as revoked for the given duration (the token's
// remaining lifetime). Durations <= 0 are no-ops: the token has already
// expired.
func (d *Denylist) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if jti == "" || ttl <= 0 {
		return nil
	}
	return d.client.Set(ctx, DenyPrefix+jti, "revoked", ttl).Err()
}

// Revoked reports whether a jti has been revoked. Redis errors fail open
// (token accepted) so a Redis outage does not lock every user out; the
// token still expires on its own.
func (d *Denylist) Revoked(ctx context.Context, jti string) bool {
	if jti == "" {
		return false
	}
	err := d.client.Get(ctx, DenyPrefix+jti).Err()
	if errors.Is(err, redis.Nil) {
		return false
	}
	if err != nil {
		log.Printf("[auth] denylist check: %v (failing open)", err)
		return false
	}
	return true
}
