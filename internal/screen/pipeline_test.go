package screen

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voltrun/voltrun/internal/config"
	"github.com/voltrun/voltrun/internal/domain/metrics"
	"github.com/voltrun/voltrun/internal/domain/signal"
	"github.com/voltrun/voltrun/internal/domain/vote"
)

var testNow = time.Date(2026, 3, 2, 14, 0, 0, 0, time.UTC)

func cleanRecord(symbol string) *metrics.Record {
	return &metrics.Record{
		Symbol:          symbol,
		Price:           metrics.Float(50),
		IV:              metrics.Float(24),
		HV20:            metrics.Float(22),
		HV30:            metrics.Float(21),
		HV60:            metrics.Float(20),
		HV90:            metrics.Float(18),
		IVPercentile:    metrics.Float(45),
		LiquidityRating: metrics.Int(4),
		Bid:             metrics.Float(5.00),
		Ask:             metrics.Float(5.05),
		Correlation:     metrics.Float(0.3),
	}
}

func newTestContext(debug bool) *Context {
	ctx := NewContext(config.Default(), testNow, debug)
	return ctx
}

func TestRunPartitionsBatch(t *testing.T) {
	ctx := newTestContext(true)
	p := NewPipeline(ctx, nil, zerolog.Nop())

	bad := cleanRecord("BAD")
	bad.IV = nil

	batch := map[string]*metrics.Record{
		"OK":   cleanRecord("OK"),
		"BAD":  bad,
		"GONE": nil, // provider's explicit unavailable marker
	}
	candidates := p.Run(ctx, batch)

	require.Len(t, candidates, 1)
	assert.Equal(t, "OK", candidates[0].Symbol)

	counters := ctx.Counters()
	assert.Equal(t, 3, counters.Inspected)
	assert.Equal(t, 2, counters.Rejected)
	assert.Equal(t, 1, counters.Accepted)

	reasons := map[string]string{}
	for _, rej := range ctx.Rejections() {
		reasons[rej.Symbol] = rej.Reason
	}
	assert.Contains(t, reasons["BAD"], "missing required field iv")
	assert.Contains(t, reasons["GONE"], "missing required field")
}

func TestRunRanksByScoreThenSymbol(t *testing.T) {
	ctx := newTestContext(false)
	p := NewPipeline(ctx, nil, zerolog.Nop())

	hot := cleanRecord("HOT")
	hot.IV = metrics.Float(30) // bigger dislocation, bigger score

	batch := map[string]*metrics.Record{
		"HOT": hot,
		"BBB": cleanRecord("BBB"),
		"AAA": cleanRecord("AAA"),
	}
	candidates := p.Run(ctx, batch)

	require.Len(t, candidates, 3)
	assert.Equal(t, "HOT", candidates[0].Symbol)
	// Identical scores tie-break on symbol for deterministic output.
	assert.Equal(t, "AAA", candidates[1].Symbol)
	assert.Equal(t, "BBB", candidates[2].Symbol)
}

func TestRunIsDeterministic(t *testing.T) {
	batch := map[string]*metrics.Record{
		"AAA": cleanRecord("AAA"),
		"BBB": cleanRecord("BBB"),
		"CCC": cleanRecord("CCC"),
	}
	ctx1 := newTestContext(false)
	first := NewPipeline(ctx1, nil, zerolog.Nop()).Run(ctx1, batch)
	ctx2 := newTestContext(false)
	second := NewPipeline(ctx2, nil, zerolog.Nop()).Run(ctx2, batch)

	assert.Equal(t, first, second)
}

func TestHeldSymbolsVoteHoldOrScale(t *testing.T) {
	ctx := newTestContext(false)
	p := NewPipeline(ctx, map[string]bool{"AAA": true}, zerolog.Nop())

	batch := map[string]*metrics.Record{"AAA": cleanRecord("AAA")}
	candidates := p.Run(ctx, batch)

	require.Len(t, candidates, 1)
	assert.True(t, candidates[0].Held)
	assert.Contains(t, []vote.Vote{vote.Hold, vote.Scale}, candidates[0].Vote)
}

func TestScaleCorrectionAppliedBeforeChain(t *testing.T) {
	ctx := newTestContext(false)
	p := NewPipeline(ctx, nil, zerolog.Nop())

	rec := cleanRecord("FRAC")
	rec.IV = metrics.Float(0.24) // fraction-scale provider response

	candidates := p.Run(ctx, map[string]*metrics.Record{"FRAC": rec})

	require.Len(t, candidates, 1, "rescaled IV must pass the chain, not be rejected as cheap")
	assert.True(t, candidates[0].Analytics.ScaleCorrected)
	assert.InDelta(t, 24.0, candidates[0].IV, 1e-9)
}

func TestEarningsSignalUsesInjectedClock(t *testing.T) {
	ctx := newTestContext(false)
	p := NewPipeline(ctx, nil, zerolog.Nop())

	rec := cleanRecord("ERN")
	earnings := testNow.Add(5 * 24 * time.Hour)
	rec.EarningsDate = &earnings

	candidates := p.Run(ctx, map[string]*metrics.Record{"ERN": rec})
	require.Len(t, candidates, 1)
	assert.Equal(t, signal.Event, candidates[0].Signal)
}

func TestDebugAttachesExplainChecks(t *testing.T) {
	ctx := newTestContext(true)
	p := NewPipeline(ctx, nil, zerolog.Nop())

	candidates := p.Run(ctx, map[string]*metrics.Record{"OK": cleanRecord("OK")})
	require.Len(t, candidates, 1)
	assert.NotEmpty(t, candidates[0].Checks)
	for _, check := range candidates[0].Checks {
		assert.True(t, check.OK, "accepted candidate failed check %s: %s", check.Name, check.Reason)
	}
}

func TestRejectionLogOnlyInDebug(t *testing.T) {
	ctx := newTestContext(false)
	p := NewPipeline(ctx, nil, zerolog.Nop())

	bad := cleanRecord("BAD")
	bad.Price = nil
	p.Run(ctx, map[string]*metrics.Record{"BAD": bad})

	assert.Empty(t, ctx.Rejections())
	assert.Equal(t, 1, ctx.Counters().Rejected, "counter moves even when the log is off")
}
