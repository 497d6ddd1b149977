package data

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/voltrun/voltrun/internal/domain/metrics"
)

// CachedProvider is a read-through Redis cache in front of another
// provider. Cache trouble degrades to the inner provider rather than
// failing the fetch; only fresh upstream data is written back.
type CachedProvider struct {
	inner Provider
	rdb   *redis.Client
	ttl   time.Duration
	log   zerolog.Logger
}

// NewCachedProvider wraps inner with a Redis cache.
func NewCachedProvider(inner Provider, rdb *redis.Client, ttl time.Duration, log zerolog.Logger) *CachedProvider {
	return &CachedProvider{
		inner: inner,
		rdb:   rdb,
		ttl:   ttl,
		log:   log.With().Str("component", "metrics_cache").Logger(),
	}
}

func cacheKey(symbol string) string {
	return fmt.Sprintf("volrun:metrics:%s", symbol)
}

// Fetch serves what it can from cache and fetches the rest from the inner
// provider. Unavailable markers are not cached: a symbol that failed once
// should be retried next run.
func (p *CachedProvider) Fetch(ctx context.Context, symbols []string) (Batch, error) {
	batch := make(Batch, len(symbols))
	missing := make([]string, 0, len(symbols))

	for _, sym := range symbols {
		raw, err := p.rdb.Get(ctx, cacheKey(sym)).Bytes()
		if err != nil {
			if err != redis.Nil {
				p.log.Warn().Str("symbol", sym).Err(err).Msg("cache read failed")
			}
			missing = append(missing, sym)
			continue
		}
		var rec metrics.Record
		if err := json.Unmarshal(raw, &rec); err != nil {
			p.log.Warn().Str("symbol", sym).Err(err).Msg("cache entry corrupt, refetching")
			missing = append(missing, sym)
			continue
		}
		batch[sym] = &rec
	}

	if len(missing) == 0 {
		return batch, nil
	}

	fetched, err := p.inner.Fetch(ctx, missing)
	if err != nil {
		return nil, err
	}
	for sym, rec := range fetched {
		batch[sym] = rec
		if rec == nil {
			continue
		}
		raw, err := json.Marshal(rec)
		if err != nil {
			continue
		}
		if err := p.rdb.Set(ctx, cacheKey(sym), raw, p.ttl).Err(); err != nil {
			p.log.Warn().Str("symbol", sym).Err(err).Msg("cache write failed")
		}
	}
	return batch, nil
}
