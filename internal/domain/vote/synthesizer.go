// Package vote maps score, compression regime, correlation and holding
// status onto one discrete recommendation. Volatility mean-reverts:
// compressed realized vol is statistically likely to expand, which breaches
// strikes on a short-volatility posture, while elevated realized vol is
// likely to contract and support time-decay capture. The ladder therefore
// rewards expansion and penalizes compression.
package vote

import (
	"github.com/voltrun/voltrun/internal/config"
)

// Vote is the discrete recommendation for one candidate.
type Vote string

const (
	Hold        Vote = "HOLD"
	Scale       Vote = "SCALE"
	AvoidCoiled Vote = "AVOID (COILED)"
	Lean        Vote = "LEAN"
	Watch       Vote = "WATCH"
	Buy         Vote = "BUY"
	StrongBuy   Vote = "STRONG BUY"
	Avoid       Vote = "AVOID"
)

// Input carries the per-candidate facts the ladder evaluates. Nil pointers
// are absent values: absent compression skips the regime rules, absent
// correlation can neither qualify a buy tier nor trigger the correlation
// AVOID.
type Input struct {
	Held        bool
	TacticalVRP *float64
	Compression *float64
	Score       float64
	Correlation *float64
}

// Synthesize evaluates the ladder top to bottom, first match wins. It is a
// total function: every input maps to exactly one vote.
func Synthesize(in Input, cfg *config.ScreeningConfig) Vote {
	// Held positions only ever resolve to SCALE or HOLD.
	if in.Held {
		if in.TacticalVRP != nil && *in.TacticalVRP >= cfg.ScalableSurgeThreshold {
			return Scale
		}
		return Hold
	}

	if in.Compression != nil {
		c := *in.Compression
		switch {
		case c < cfg.CompressionSevereThreshold:
			return AvoidCoiled
		case c < cfg.CompressionMildThreshold:
			return downgrade(ladder(in, cfg))
		case c > cfg.ExpansionSevereThreshold && relaxedBar(in, cfg):
			return StrongBuy
		case c > cfg.ExpansionMildThreshold && relaxedBar(in, cfg):
			return Buy
		}
	}

	return ladder(in, cfg)
}

// relaxedBar is the easier qualification expansion regimes get: mid-bar
// score with mid-bar correlation.
func relaxedBar(in Input, cfg *config.ScreeningConfig) bool {
	return in.Score >= cfg.VoteScoreMidBar && corrAtOrBelow(in.Correlation, cfg.VoteCorrelationMidBar)
}

// ladder is the normal-regime decision ladder.
func ladder(in Input, cfg *config.ScreeningConfig) Vote {
	switch {
	case in.Score >= cfg.VoteScoreHighBar && corrAtOrBelow(in.Correlation, cfg.VoteCorrelationLowBar):
		return Buy
	case in.Score >= cfg.VoteScoreMidBar && corrAtOrBelow(in.Correlation, cfg.VoteCorrelationMidBar):
		return Lean
	case in.Correlation != nil && *in.Correlation > cfg.VoteCorrelationHighBar:
		return Avoid
	default:
		return Watch
	}
}

// downgrade shifts a would-be conviction one tier down for mild
// compression. WATCH and AVOID have nowhere lower to go.
func downgrade(v Vote) Vote {
	switch v {
	case StrongBuy:
		return Buy
	case Buy:
		return Lean
	case Lean:
		return Watch
	default:
		return v
	}
}

func corrAtOrBelow(corr *float64, bar float64) bool {
	return corr != nil && *corr <= bar
}
