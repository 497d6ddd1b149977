package screen

import (
	"fmt"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/voltrun/voltrun/internal/domain/filter"
	"github.com/voltrun/voltrun/internal/domain/metrics"
	"github.com/voltrun/voltrun/internal/domain/scoring"
	"github.com/voltrun/voltrun/internal/domain/signal"
	"github.com/voltrun/voltrun/internal/domain/volatility"
	"github.com/voltrun/voltrun/internal/domain/vote"
)

// CandidateView is the enriched, scored projection of a record that passed
// the chain. Immutable after creation; report ordering is by descending
// score with ascending symbol as the deterministic tie-break.
type CandidateView struct {
	Symbol     string  `json:"symbol"`
	Price      float64 `json:"price"`
	IV         float64 `json:"iv"`
	Sector     string  `json:"sector,omitempty"`
	AssetClass string  `json:"asset_class,omitempty"`

	Analytics volatility.Analytics `json:"analytics"`

	Signal signal.Label      `json:"signal"`
	Score  float64           `json:"score"`
	Detail scoring.Breakdown `json:"score_detail"`
	Vote   vote.Vote         `json:"vote"`

	Held        bool       `json:"held,omitempty"`
	Correlation *float64   `json:"correlation,omitempty"`
	Earnings    *time.Time `json:"earnings_date,omitempty"`

	// Checks carries the full per-leaf explain output in debug mode.
	Checks []filter.Result `json:"checks,omitempty"`
}

// Pipeline applies one composed chain to every record in a batch.
type Pipeline struct {
	chain   filter.Specification
	held    map[string]bool
	workers int
	log     zerolog.Logger
}

// NewPipeline wires a pipeline for one run. held marks symbols that
// correspond to existing portfolio positions; workers <= 0 means one per
// CPU.
func NewPipeline(ctx *Context, held map[string]bool, log zerolog.Logger) *Pipeline {
	workers := ctx.Config.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Pipeline{
		chain:   filter.Chain(ctx.Config),
		held:    held,
		workers: workers,
		log:     log.With().Str("component", "pipeline").Logger(),
	}
}

// Run screens the batch and returns the ranked candidates. A nil record is
// the provider's explicit "unavailable" marker and is treated as a record
// with every field absent. No record's evaluation can abort another's: a
// panic inside one evaluation is converted into a rejection.
func (p *Pipeline) Run(ctx *Context, batch map[string]*metrics.Record) []CandidateView {
	symbols := make([]string, 0, len(batch))
	for sym := range batch {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)

	results := make([]*CandidateView, len(symbols))

	var wg sync.WaitGroup
	sem := make(chan struct{}, p.workers)
	for i, sym := range symbols {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, sym string) {
			defer wg.Done()
			defer func() { <-sem }()
			rec := batch[sym]
			if rec == nil {
				rec = metrics.Unavailable(sym)
			}
			results[i] = p.screenOne(ctx, rec)
		}(i, sym)
	}
	wg.Wait()

	candidates := make([]CandidateView, 0, len(results))
	for _, cv := range results {
		if cv != nil {
			candidates = append(candidates, *cv)
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].Symbol < candidates[j].Symbol
	})

	counters := ctx.Counters()
	p.log.Info().
		Str("run_id", ctx.RunID).
		Int("inspected", counters.Inspected).
		Int("rejected", counters.Rejected).
		Int("accepted", counters.Accepted).
		Msg("screening complete")

	return candidates
}

// screenOne evaluates a single record. Returns nil when the record was
// rejected.
func (p *Pipeline) screenOne(ctx *Context, rec *metrics.Record) (cv *CandidateView) {
	ctx.Inspect()

	defer func() {
		if r := recover(); r != nil {
			// Isolation between per-symbol evaluations is a hard
			// requirement: one bad record never aborts the batch.
			p.log.Error().Str("symbol", rec.Symbol).Interface("panic", r).Msg("evaluation panicked")
			ctx.Reject(rec.Symbol, fmt.Sprintf("evaluation error: %v", r))
			cv = nil
		}
	}()

	// Scale correction substitutes the rescaled IV before any threshold
	// sees the record.
	rec, analytics := volatility.Normalize(rec, ctx.Config)
	if analytics.ScaleSuspect {
		p.log.Warn().Str("symbol", rec.Symbol).Msg("IV/HV scale mismatch suspected, proceeding uncorrected")
	}

	if res := p.chain.Evaluate(rec); !res.OK {
		ctx.Reject(rec.Symbol, res.Reason)
		return nil
	}
	ctx.Accept()

	label := signal.Classify(signal.Input{
		Analytics:    analytics,
		EarningsDate: rec.EarningsDate,
		Now:          ctx.Now,
	}, ctx.Config)

	score, detail := scoring.Compose(analytics, ctx.Config)

	v := vote.Synthesize(vote.Input{
		Held:        p.held[rec.Symbol],
		TacticalVRP: analytics.TacticalVRP,
		Compression: analytics.Compression,
		Score:       score,
		Correlation: rec.Correlation,
	}, ctx.Config)

	cv = &CandidateView{
		Symbol:      rec.Symbol,
		Price:       *rec.Price,
		IV:          *rec.IV,
		Sector:      rec.Sector,
		AssetClass:  rec.AssetClass,
		Analytics:   analytics,
		Signal:      label,
		Score:       score,
		Detail:      detail,
		Vote:        v,
		Held:        p.held[rec.Symbol],
		Correlation: rec.Correlation,
		Earnings:    rec.EarningsDate,
	}
	if ctx.Debug {
		cv.Checks = filter.Explain(p.chain, rec)
	}
	return cv
}
