package filter

import (
	"fmt"

	"github.com/voltrun/voltrun/internal/config"
	"github.com/voltrun/voltrun/internal/domain/metrics"
	"github.com/voltrun/voltrun/internal/domain/volatility"
)

// Chain builds the top-level acceptance chain: every check ANDed together,
// in the order their reasons should surface.
func Chain(cfg *config.ScreeningConfig) Specification {
	return And(
		DataIntegrity(),
		StructuralRichness(cfg),
		VolatilityTrap(cfg),
		VolatilityMomentum(cfg),
		RetailEfficiency(cfg),
		IVPercentileFloor(cfg),
		Liquidity(cfg),
	)
}

// DataIntegrity requires the fields every downstream ratio needs: price,
// IV, HV30 and HV90. The reason names the first missing field.
func DataIntegrity() Specification {
	return NewLeaf("data_integrity", func(rec *metrics.Record) (bool, string) {
		checks := []struct {
			field   string
			present bool
		}{
			{"price", rec.Price != nil},
			{"iv", rec.IV != nil},
			{"hv30", rec.HV30 != nil},
			{"hv90", rec.HV90 != nil},
		}
		for _, c := range checks {
			if !c.present {
				return false, fmt.Sprintf("missing required field %s", c.field)
			}
		}
		return true, ""
	})
}

// StructuralRichness requires structural VRP (IV over floored HV90) at or
// above the screening floor.
func StructuralRichness(cfg *config.ScreeningConfig) Specification {
	return NewLeaf("vrp_structural", func(rec *metrics.Record) (bool, string) {
		a := volatility.Analyze(rec, cfg)
		if a.StructuralVRP == nil {
			return false, "structural VRP undefined: missing iv or hv90"
		}
		if *a.StructuralVRP < cfg.VRPStructuralThreshold {
			return false, fmt.Sprintf("structural VRP %.2f below threshold %.2f",
				*a.StructuralVRP, cfg.VRPStructuralThreshold)
		}
		return true, ""
	})
}

// VolatilityTrap rejects symbols whose premium looks rich only because the
// underlying market is dead: when structural VRP clears the rich threshold
// and HV30 ranks near the bottom of the record's own term structure, the
// richness is a trap. The positional guard applies only to rich-looking
// records; everything else passes through.
func VolatilityTrap(cfg *config.ScreeningConfig) Specification {
	return NewLeaf("volatility_trap", func(rec *metrics.Record) (bool, string) {
		a := volatility.Analyze(rec, cfg)
		if a.StructuralVRP == nil || *a.StructuralVRP < cfg.VRPStructuralRichThreshold {
			return true, ""
		}
		if a.HVRank == nil {
			return true, ""
		}
		if *a.HVRank < cfg.VolatilityTrapRankThreshold {
			return false, fmt.Sprintf("volatility trap: VRP %.2f rich but HV rank %.2f below %.2f",
				*a.StructuralVRP, *a.HVRank, cfg.VolatilityTrapRankThreshold)
		}
		return true, ""
	})
}

// VolatilityMomentum rejects any symbol whose HV30/HV90 sits below the
// configured floor. Unlike the trap guard this check is universal: it is
// never gated on VRP richness.
func VolatilityMomentum(cfg *config.ScreeningConfig) Specification {
	return NewLeaf("volatility_momentum", func(rec *metrics.Record) (bool, string) {
		a := volatility.Analyze(rec, cfg)
		if a.Compression == nil {
			return false, "volatility momentum undefined: hv30/hv90 ratio unavailable"
		}
		if *a.Compression < cfg.VolatilityMomentumMinRatio {
			return false, fmt.Sprintf("volatility momentum %.2f below floor %.2f",
				*a.Compression, cfg.VolatilityMomentumMinRatio)
		}
		return true, ""
	})
}

// RetailEfficiency enforces a minimum underlying price and a maximum
// bid/ask slippage percentage.
func RetailEfficiency(cfg *config.ScreeningConfig) Specification {
	return NewLeaf("retail_efficiency", func(rec *metrics.Record) (bool, string) {
		if rec.Price == nil {
			return false, "missing required field price"
		}
		if *rec.Price < cfg.RetailMinPrice {
			return false, fmt.Sprintf("price %.2f below retail minimum %.2f",
				*rec.Price, cfg.RetailMinPrice)
		}
		spread, ok := rec.SpreadPct()
		if !ok {
			return false, "bid/ask unavailable, cannot assess slippage"
		}
		if spread > cfg.MaxSlippagePct {
			return false, fmt.Sprintf("slippage %.2f%% above maximum %.2f%%",
				spread, cfg.MaxSlippagePct)
		}
		return true, ""
	})
}

// IVPercentileFloor requires the current IV percentile at or above the
// configured floor.
func IVPercentileFloor(cfg *config.ScreeningConfig) Specification {
	return NewLeaf("iv_percentile", func(rec *metrics.Record) (bool, string) {
		if rec.IVPercentile == nil {
			return false, "missing required field iv_percentile"
		}
		if *rec.IVPercentile < cfg.MinIVPercentile {
			return false, fmt.Sprintf("IV percentile %.0f below floor %.0f",
				*rec.IVPercentile, cfg.MinIVPercentile)
		}
		return true, ""
	})
}

// Liquidity prefers the provider's ordinal rating and falls back to the
// bid/ask spread when no rating is available.
func Liquidity(cfg *config.ScreeningConfig) Specification {
	return NewLeaf("liquidity", func(rec *metrics.Record) (bool, string) {
		if rec.LiquidityRating != nil {
			if *rec.LiquidityRating < cfg.MinLiquidityRating {
				return false, fmt.Sprintf("liquidity rating %d below minimum %d",
					*rec.LiquidityRating, cfg.MinLiquidityRating)
			}
			return true, ""
		}
		spread, ok := rec.SpreadPct()
		if !ok {
			return false, "no liquidity rating and no bid/ask to fall back on"
		}
		if spread > cfg.MaxSlippagePct {
			return false, fmt.Sprintf("no liquidity rating, fallback spread %.2f%% above %.2f%%",
				spread, cfg.MaxSlippagePct)
		}
		return true, ""
	})
}
