// Package metrics defines the normalized per-symbol market metrics that the
// screening pipeline consumes. Optional fields are pointers; nil means the
// upstream provider had no value, which is never the same as zero.
package metrics

import "time"

// Record holds one symbol's market metrics for a single screening run.
// Records are immutable once constructed; derived quantities live in the
// volatility package, not here.
type Record struct {
	Symbol string `json:"symbol"`

	Price *float64 `json:"price,omitempty"`

	// Implied volatility, annualized, as a percentage (e.g. 22.5).
	IV *float64 `json:"iv,omitempty"`

	// Realized volatility windows, annualized percentages.
	HV20 *float64 `json:"hv20,omitempty"`
	HV30 *float64 `json:"hv30,omitempty"`
	HV60 *float64 `json:"hv60,omitempty"`
	HV90 *float64 `json:"hv90,omitempty"`

	// IVPercentile is the 0-100 percentile of current IV within its
	// trailing range.
	IVPercentile *float64 `json:"iv_percentile,omitempty"`

	// LiquidityRating is an ordinal 1 (worst) to 5 (best) from the
	// options-chain provider. Bid/Ask back it up when absent.
	LiquidityRating *int     `json:"liquidity_rating,omitempty"`
	Bid             *float64 `json:"bid,omitempty"`
	Ask             *float64 `json:"ask,omitempty"`

	EarningsDate *time.Time `json:"earnings_date,omitempty"`

	Sector     string `json:"sector,omitempty"`
	AssetClass string `json:"asset_class,omitempty"`

	// Correlation to the benchmark index, in [-1, 1].
	Correlation *float64 `json:"correlation,omitempty"`
}

// Unavailable returns the record used for symbols the provider explicitly
// marked unavailable: all optional fields absent, which fails every
// data-dependent check downstream.
func Unavailable(symbol string) *Record {
	return &Record{Symbol: symbol}
}

// SpreadPct returns the bid/ask spread as a percentage of the midpoint, or
// false when bid/ask are absent or degenerate (non-positive mid, inverted
// book).
func (r *Record) SpreadPct() (float64, bool) {
	if r.Bid == nil || r.Ask == nil {
		return 0, false
	}
	bid, ask := *r.Bid, *r.Ask
	mid := (bid + ask) / 2
	if mid <= 0 || ask < bid {
		return 0, false
	}
	return (ask - bid) / mid * 100, true
}

// Float returns a pointer to v. Convenience for building records in tests
// and provider adapters.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v.
func Int(v int) *int { return &v }
