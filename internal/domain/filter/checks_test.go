package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voltrun/voltrun/internal/config"
	"github.com/voltrun/voltrun/internal/domain/metrics"
)

// goodRecord clears every check with the default thresholds.
func goodRecord() *metrics.Record {
	return &metrics.Record{
		Symbol:          "GOOD",
		Price:           metrics.Float(50),
		IV:              metrics.Float(20),
		HV20:            metrics.Float(22),
		HV30:            metrics.Float(25),
		HV60:            metrics.Float(20),
		HV90:            metrics.Float(18),
		IVPercentile:    metrics.Float(45),
		LiquidityRating: metrics.Int(4),
		Bid:             metrics.Float(5.00),
		Ask:             metrics.Float(5.05),
	}
}

func TestChainAcceptsCleanRecord(t *testing.T) {
	cfg := config.Default()
	res := Chain(cfg).Evaluate(goodRecord())
	assert.True(t, res.OK, "unexpected rejection: %s", res.Reason)
}

func TestChainFailClosedOnMissingFields(t *testing.T) {
	cfg := config.Default()
	chain := Chain(cfg)

	tests := []struct {
		name   string
		mutate func(*metrics.Record)
		reason string
	}{
		{"missing price", func(r *metrics.Record) { r.Price = nil }, "missing required field price"},
		{"missing iv", func(r *metrics.Record) { r.IV = nil }, "missing required field iv"},
		{"missing hv30", func(r *metrics.Record) { r.HV30 = nil }, "missing required field hv30"},
		{"missing hv90", func(r *metrics.Record) { r.HV90 = nil }, "missing required field hv90"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := goodRecord()
			tt.mutate(rec)
			res := chain.Evaluate(rec)
			require.False(t, res.OK)
			assert.Equal(t, "data_integrity", res.Name)
			assert.Equal(t, tt.reason, res.Reason)
		})
	}
}

func TestStructuralRichnessThreshold(t *testing.T) {
	cfg := config.Default() // threshold 1.05
	rec := goodRecord()
	rec.IV = metrics.Float(15) // sVRP 15/18 = 0.83

	res := Chain(cfg).Evaluate(rec)
	require.False(t, res.OK)
	assert.Equal(t, "vrp_structural", res.Name)
	assert.Contains(t, res.Reason, "below threshold")
}

func TestVolatilityTrapOnlyGuardsRichRecords(t *testing.T) {
	cfg := config.Default() // rich 1.35, rank threshold 0.20
	trap := VolatilityTrap(cfg)

	// Rich and HV30 at the bottom of its own term structure: trap.
	rec := goodRecord()
	rec.IV = metrics.Float(30) // sVRP 30/18 = 1.67
	rec.HV20 = metrics.Float(26)
	rec.HV30 = metrics.Float(18) // bottom of {26, 18, 24, 22}: rank 0
	rec.HV60 = metrics.Float(24)
	rec.HV90 = metrics.Float(22)
	res := trap.Evaluate(rec)
	require.False(t, res.OK)
	assert.Contains(t, res.Reason, "volatility trap")

	// Same dead-market shape but not rich: the guard does not apply.
	rec.IV = metrics.Float(24) // sVRP 24/22 = 1.09 < 1.35
	assert.True(t, trap.IsSatisfiedBy(rec))
}

func TestVolatilityMomentumIsUniversal(t *testing.T) {
	cfg := config.Default() // min ratio 0.50
	rec := goodRecord()
	rec.HV30 = metrics.Float(8) // 8/18 = 0.44
	rec.IV = metrics.Float(19)  // keeps sVRP above the floor, below rich

	res := Chain(cfg).Evaluate(rec)
	require.False(t, res.OK)
	assert.Equal(t, "volatility_momentum", res.Name, "momentum floor applies regardless of VRP")
}

func TestRetailEfficiency(t *testing.T) {
	cfg := config.Default()
	spec := RetailEfficiency(cfg)

	rec := goodRecord()
	rec.Price = metrics.Float(4)
	res := spec.Evaluate(rec)
	require.False(t, res.OK)
	assert.Contains(t, res.Reason, "below retail minimum")

	rec = goodRecord()
	rec.Bid = metrics.Float(1.00)
	rec.Ask = metrics.Float(1.20) // ~18% slippage
	res = spec.Evaluate(rec)
	require.False(t, res.OK)
	assert.Contains(t, res.Reason, "slippage")

	rec = goodRecord()
	rec.Bid, rec.Ask = nil, nil
	res = spec.Evaluate(rec)
	require.False(t, res.OK)
	assert.Contains(t, res.Reason, "bid/ask unavailable")
}

func TestLiquidityRatingWithSpreadFallback(t *testing.T) {
	cfg := config.Default() // min rating 3
	spec := Liquidity(cfg)

	rec := goodRecord()
	rec.LiquidityRating = metrics.Int(2)
	res := spec.Evaluate(rec)
	require.False(t, res.OK)
	assert.Contains(t, res.Reason, "liquidity rating 2")

	// No rating: tight spread passes via fallback.
	rec = goodRecord()
	rec.LiquidityRating = nil
	assert.True(t, spec.IsSatisfiedBy(rec))

	// No rating, wide spread: fallback rejects.
	rec.Bid = metrics.Float(1.00)
	rec.Ask = metrics.Float(1.50)
	res = spec.Evaluate(rec)
	require.False(t, res.OK)
	assert.Contains(t, res.Reason, "fallback spread")
}

func TestIVPercentileFloor(t *testing.T) {
	cfg := config.Default() // floor 30
	spec := IVPercentileFloor(cfg)

	rec := goodRecord()
	rec.IVPercentile = metrics.Float(12)
	res := spec.Evaluate(rec)
	require.False(t, res.OK)
	assert.Contains(t, res.Reason, "IV percentile 12")

	rec.IVPercentile = nil
	res = spec.Evaluate(rec)
	require.False(t, res.OK)
	assert.Contains(t, res.Reason, "missing required field iv_percentile")
}
