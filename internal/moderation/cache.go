package moderation

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// cachePrefix is the Redis key prefix for cached text verdicts.
	cachePrefix = "modcache:"

	// DefaultCacheTTL is how long a cached verdict stays valid. Threshold
	// retuning takes effect within this window at worst.
	DefaultCacheTTL = 10 * time.Minute
)

// VerdictCache is a Redis-backed cache of text verdicts keyed by a hash of
// the normalized input. It is purely an optimization over the remote
// classifiers: every Redis error is logged and treated as a miss, and error
// verdicts are never cached (a transient classifier outage must not pin
// content as unsafe).
type VerdictCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewVerdictCache creates a VerdictCache. A zero ttl selects DefaultCacheTTL.
func NewVerdictCache(client *redis.Client, ttl time.Duration) *VerdictCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &VerdictCache{client: client, ttl: ttl}
}

func cacheKey(text string) string {
	sum := sha256.Sum256([]byte(Normalize(text)))
	return cachePrefix + hex.EncodeToString(sum[:])
}

// Get returns the cached verdict for text, if any.
func (c *VerdictCache) Get(ctx context.Context, text string) (Verdict, bool) {
	raw, err := c.client.Get(ctx, cacheKey(text)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Verdict{}, false
	}
	if err != nil {
		log.Printf("[moderation] verdict cache get: %v", err)
		return Verdict{}, false
	}

	var v Verdict
	if err := json.Unmarshal(raw, &v); err != nil {
		log.Printf("[moderation] verdict cache decode: %v", err)
		return Verdict{}, false
	}
	return v, true
}

// Put stores a verdict for text. Error verdicts are skipped.
func (c *VerdictCache) Put(ctx context.Context, text string, v Verdict) {
	if v.Category == CategoryError {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, cacheKey(text), raw, c.ttl).Err(); err != nil {
		log.Printf("[moderation] verdict cache set: %v", err)
	}
}
