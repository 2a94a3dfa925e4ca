package moderation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"

	"github.com/latroca/latroca-api/internal/metrics"
)

// newTestCache creates a VerdictCache connected to a local Redis instance and
// removes leftover verdict keys. Tests that call this helper require a
// running Redis on localhost:6379.
func newTestCache(t *testing.T) *VerdictCache {
	t.Helper()
	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("redis not available: %v", err)
	}

	clean := func() {
		iter := client.Scan(ctx, 0, cachePrefix+"*", 100).Iterator()
		for iter.Next(ctx) {
			client.Del(ctx, iter.Val())
		}
	}
	clean()
	t.Cleanup(func() {
		clean()
		client.Close()
	})
	return NewVerdictCache(client, time.Minute)
}

func TestVerdictCache_RoundTrip(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	want := unsafeVerdict(msgTextUnsafe, CategoryOffensive)
	c.Put(ctx, "Eres un badword", want)

	got, ok := c.Get(ctx, "Eres un badword")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestVerdictCache_KeyedByNormalizedText(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	c.Put(ctx, "¡Hola, Qué Tal!", safeVerdict(msgTextSafe))

	// Same text after normalization: accents, case and punctuation differ.
	if _, ok := c.Get(ctx, "hola que tal"); !ok {
		t.Error("expected hit for normalized-equal text")
	}
	if _, ok := c.Get(ctx, "otro texto"); ok {
		t.Error("expected miss for different text")
	}
}

func TestVerdictCache_ErrorVerdictNotCached(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	c.Put(ctx, "texto con error", unsafeVerdict(msgTextError, CategoryError))

	if _, ok := c.Get(ctx, "texto con error"); ok {
		t.Fatal("error verdict was cached; a classifier outage must not pin content as unsafe")
	}
}

// A dead Redis must degrade to a miss, never fail the moderation request.
func TestVerdictCache_RedisErrorIsMiss(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "localhost:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()
	c := NewVerdictCache(client, time.Minute)
	ctx := context.Background()

	if _, ok := c.Get(ctx, "cualquier texto"); ok {
		t.Fatal("expected miss on Redis error")
	}
	// Put is best effort; it must not panic or block.
	c.Put(ctx, "cualquier texto", safeVerdict(msgTextSafe))
}

func TestAnalyzeText_ServesFromCache(t *testing.T) {
	cache := newTestCache(t)

	lexicon := DefaultLexicon()
	primed := NewAnalyzer(&fakeScorer{text: scoresBelowAll()}, lexicon, DefaultThresholds(), cache)

	ctx := context.Background()
	before := testutil.ToFloat64(metrics.VerdictsTotal.WithLabelValues("text", string(CategoryNormal)))

	if v := primed.AnalyzeText(ctx, "vendo bicicleta usada"); !v.Safe {
		t.Fatalf("priming verdict = %+v", v)
	}

	// A second analyzer whose classifier always fails must still answer
	// from the shared cache.
	broken := NewAnalyzer(&fakeScorer{err: errors.New("classifier down")}, lexicon, DefaultThresholds(), cache)
	v := broken.AnalyzeText(ctx, "vendo bicicleta usada")
	if !v.Safe || v.Category != CategoryNormal {
		t.Fatalf("cached verdict = %+v", v)
	}

	// Both verdicts count, the classifier-backed one and the cached one.
	after := testutil.ToFloat64(metrics.VerdictsTotal.WithLabelValues("text", string(CategoryNormal)))
	if got := after - before; got != 2 {
		t.Errorf("text/Normal verdicts recorded = %v, want 2", got)
	}
}
