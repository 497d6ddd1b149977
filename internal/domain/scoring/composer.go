// Package scoring computes the 0-100 opportunity score. The design is
// two-stage: a base built from independently normalized dislocation
// sub-scores, then multiplicative penalties. Keeping the stages separate
// lets base correctness and penalty logic be verified in isolation, and
// makes the penalties commute.
package scoring

import (
	"math"

	"github.com/voltrun/voltrun/internal/config"
	"github.com/voltrun/voltrun/internal/domain/volatility"
)

// Breakdown attributes the final score to its components: the raw
// sub-scores, the penalties that fired, and the clamped result.
type Breakdown struct {
	StructuralDislocation float64 `json:"structural_dislocation"`
	TacticalDislocation   float64 `json:"tactical_dislocation"`
	Base                  float64 `json:"base"`
	TrapPenaltyApplied    bool    `json:"trap_penalty_applied"`
	CompressionPenalty    bool    `json:"compression_penalty_applied"`
	Final                 float64 `json:"final"`
}

// Compose computes the opportunity score for one candidate's analytics.
// Each dislocation sub-score is half the base: min(|VRP-1| x multiplier, 50).
// Penalties multiply the base, so their order cannot matter, and the result
// is clamped into [0, 100].
func Compose(a volatility.Analytics, cfg *config.ScreeningConfig) (float64, Breakdown) {
	bd := Breakdown{
		StructuralDislocation: dislocation(a.StructuralVRP, cfg.ScoreDislocationMultiplier),
		TacticalDislocation:   dislocation(a.TacticalVRP, cfg.ScoreDislocationMultiplier),
	}
	bd.Base = bd.StructuralDislocation + bd.TacticalDislocation

	score := bd.Base
	if a.HVRank != nil && *a.HVRank < cfg.VolatilityTrapRankThreshold {
		// Selling premium into a dead market is penalized regardless of
		// apparent richness.
		score *= 1 - cfg.ScoreTrapPenaltyFraction
		bd.TrapPenaltyApplied = true
	}
	if a.Coiled(cfg) {
		score *= 1 - cfg.ScoreCompressionPenaltyFraction
		bd.CompressionPenalty = true
	}

	bd.Final = clamp(score, 0, 100)
	return bd.Final, bd
}

// dislocation normalizes one VRP's distance from 1.0 into [0, 50]. An
// absent VRP contributes nothing.
func dislocation(vrp *float64, multiplier float64) float64 {
	if vrp == nil {
		return 0
	}
	return math.Min(math.Abs(*vrp-1)*multiplier, 50)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
