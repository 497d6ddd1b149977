package data

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/voltrun/voltrun/internal/domain/metrics"
)

// ClientConfig tunes the HTTP metrics provider.
type ClientConfig struct {
	// BaseURLs is the fallback chain: each symbol is tried against the
	// first healthy endpoint, then the next on failure.
	BaseURLs []string `yaml:"base_urls"`

	RequestsPerSecond float64       `yaml:"requests_per_second"`
	Burst             int           `yaml:"burst"`
	Timeout           time.Duration `yaml:"timeout"`
	MaxRetries        int           `yaml:"max_retries"`
	RetryBackoff      time.Duration `yaml:"retry_backoff"`
}

// DefaultClientConfig returns conservative provider-side limits.
func DefaultClientConfig(baseURLs ...string) ClientConfig {
	return ClientConfig{
		BaseURLs:          baseURLs,
		RequestsPerSecond: 5,
		Burst:             5,
		Timeout:           10 * time.Second,
		MaxRetries:        2,
		RetryBackoff:      500 * time.Millisecond,
	}
}

// Client fetches metrics over HTTP with a per-endpoint circuit breaker, a
// shared rate limiter and bounded retries. One failed symbol never fails
// the batch: it is marked unavailable and the run continues.
type Client struct {
	cfg      ClientConfig
	http     *http.Client
	limiter  *rate.Limiter
	breakers map[string]*gobreaker.CircuitBreaker
	log      zerolog.Logger
}

// NewClient wires the HTTP provider.
func NewClient(cfg ClientConfig, log zerolog.Logger) (*Client, error) {
	if len(cfg.BaseURLs) == 0 {
		return nil, fmt.Errorf("metrics client: at least one base URL required")
	}
	breakers := make(map[string]*gobreaker.CircuitBreaker, len(cfg.BaseURLs))
	for _, base := range cfg.BaseURLs {
		base := base
		breakers[base] = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    base,
			Timeout: 30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				log.Warn().Str("endpoint", name).
					Str("from", from.String()).Str("to", to.String()).
					Msg("metrics endpoint breaker state change")
			},
		})
	}
	return &Client{
		cfg:      cfg,
		http:     &http.Client{Timeout: cfg.Timeout},
		limiter:  rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		breakers: breakers,
		log:      log.With().Str("component", "metrics_client").Logger(),
	}, nil
}

// Fetch resolves each symbol independently. Symbols that fail every
// endpoint come back as nil entries.
func (c *Client) Fetch(ctx context.Context, symbols []string) (Batch, error) {
	batch := make(Batch, len(symbols))
	for _, sym := range symbols {
		rec, err := c.fetchOne(ctx, sym)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			c.log.Warn().Str("symbol", sym).Err(err).Msg("symbol unavailable")
			batch[sym] = nil
			continue
		}
		batch[sym] = rec
	}
	return batch, nil
}

func (c *Client) fetchOne(ctx context.Context, symbol string) (*metrics.Record, error) {
	var lastErr error
	for _, base := range c.cfg.BaseURLs {
		for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
			if attempt > 0 {
				select {
				case <-ctx.Done():
					return nil, ctx.Err()
				case <-time.After(c.cfg.RetryBackoff * time.Duration(attempt)):
				}
			}
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, err
			}
			rec, err := c.get(ctx, base, symbol)
			if err == nil {
				return rec, nil
			}
			lastErr = err
			if err == gobreaker.ErrOpenState {
				// Endpoint is tripped; move to the next in the chain.
				break
			}
		}
	}
	return nil, lastErr
}

func (c *Client) get(ctx context.Context, base, symbol string) (*metrics.Record, error) {
	out, err := c.breakers[base].Execute(func() (interface{}, error) {
		u := fmt.Sprintf("%s/metrics/%s", base, url.PathEscape(symbol))
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			io.Copy(io.Discard, resp.Body)
			return nil, fmt.Errorf("endpoint %s returned %d for %s", base, resp.StatusCode, symbol)
		}
		var rec metrics.Record
		if err := json.NewDecoder(resp.Body).Decode(&rec); err != nil {
			return nil, fmt.Errorf("decode metrics for %s: %w", symbol, err)
		}
		if rec.Symbol == "" {
			rec.Symbol = symbol
		}
		return &rec, nil
	})
	if err != nil {
		return nil, err
	}
	return out.(*metrics.Record), nil
}
