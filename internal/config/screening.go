// Package config loads and validates the screening threshold configuration.
// Every threshold is overridable from YAML; unknown keys are ignored and
// missing keys fall back to the documented defaults. Out-of-range values are
// a fatal, run-aborting condition surfaced before any record is processed.
package config

import (
	"fmt"
	"os"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ScreeningConfig holds the resolved thresholds for one screening run.
type ScreeningConfig struct {
	// VRP thresholds. Structural uses HV90, tactical HV30.
	VRPStructuralThreshold     float64 `yaml:"vrp_structural_threshold" default:"1.05" validate:"gt=0"`
	VRPStructuralRichThreshold float64 `yaml:"vrp_structural_rich_threshold" default:"1.35" validate:"gt=0"`
	VRPTacticalThreshold       float64 `yaml:"vrp_tactical_threshold" default:"0.85" validate:"gt=0"`

	// HVFloorPercent guards VRP denominators against near-dead realized vol.
	HVFloorPercent float64 `yaml:"hv_floor_percent" default:"5.0" validate:"gt=0"`

	// VolatilityMomentumMinRatio rejects any symbol whose HV30/HV90 sits
	// below it, regardless of VRP richness.
	VolatilityMomentumMinRatio float64 `yaml:"volatility_momentum_min_ratio" default:"0.50" validate:"gt=0"`

	// VolatilityTrapRankThreshold is the HV-rank (0-1) below which an
	// apparently rich symbol is treated as a dead-market trap.
	VolatilityTrapRankThreshold float64 `yaml:"volatility_trap_rank_threshold" default:"0.20" validate:"gte=0,lte=1"`

	// Compression regime bounds, all ratios of HV windows.
	CompressionCoiledThreshold   float64 `yaml:"compression_coiled_threshold" default:"0.80" validate:"gt=0"`
	CompressionMomentumThreshold float64 `yaml:"compression_momentum_threshold" default:"0.90" validate:"gt=0"`
	CompressionSevereThreshold   float64 `yaml:"compression_severe_threshold" default:"0.60" validate:"gt=0"`
	CompressionMildThreshold     float64 `yaml:"compression_mild_threshold" default:"0.80" validate:"gt=0"`
	ExpansionSevereThreshold     float64 `yaml:"expansion_severe_threshold" default:"1.30" validate:"gt=0"`
	ExpansionMildThreshold       float64 `yaml:"expansion_mild_threshold" default:"1.10" validate:"gt=0"`

	// Retail efficiency gate.
	RetailMinPrice float64 `yaml:"retail_min_price" default:"10.0" validate:"gte=0"`
	MaxSlippagePct float64 `yaml:"max_slippage_pct" default:"2.0" validate:"gt=0"`

	MinIVPercentile    float64 `yaml:"min_iv_percentile" default:"30.0" validate:"gte=0,lte=100"`
	MinLiquidityRating int     `yaml:"min_liquidity_rating" default:"3" validate:"gte=1,lte=5"`

	// Score composition.
	ScoreDislocationMultiplier      float64 `yaml:"score_dislocation_multiplier" default:"50.0" validate:"gt=0"`
	ScoreTrapPenaltyFraction        float64 `yaml:"score_trap_penalty_fraction" default:"0.50" validate:"gte=0,lte=1"`
	ScoreCompressionPenaltyFraction float64 `yaml:"score_compression_penalty_fraction" default:"0.20" validate:"gte=0,lte=1"`

	EarningsWarningDays int `yaml:"earnings_warning_days" default:"10" validate:"gte=0"`

	// ScalableSurgeThreshold is the tactical VRP at which an existing
	// holding qualifies for SCALE instead of HOLD.
	ScalableSurgeThreshold float64 `yaml:"scalable_surge_threshold" default:"1.40" validate:"gt=0"`

	// Vote ladder bars.
	VoteScoreHighBar       float64 `yaml:"vote_score_high_bar" default:"70.0" validate:"gte=0,lte=100"`
	VoteScoreMidBar        float64 `yaml:"vote_score_mid_bar" default:"50.0" validate:"gte=0,lte=100"`
	VoteCorrelationLowBar  float64 `yaml:"vote_correlation_low_bar" default:"0.40" validate:"gte=-1,lte=1"`
	VoteCorrelationMidBar  float64 `yaml:"vote_correlation_mid_bar" default:"0.60" validate:"gte=-1,lte=1"`
	VoteCorrelationHighBar float64 `yaml:"vote_correlation_high_bar" default:"0.80" validate:"gte=-1,lte=1"`

	// Workers bounds the screening worker pool. 0 means one worker per CPU.
	Workers int `yaml:"workers" default:"0" validate:"gte=0"`
}

var validate = validator.New()

// Default returns the documented default configuration.
func Default() *ScreeningConfig {
	cfg := &ScreeningConfig{}
	if err := defaults.Set(cfg); err != nil {
		// Tags are compile-time constants; a failure here is a programming
		// error, not an input error.
		panic(fmt.Sprintf("config defaults: %v", err))
	}
	return cfg
}

// Load reads a YAML config file, fills missing keys with defaults, and
// validates the result. A missing file is not an error: defaults apply.
func Load(path string) (*ScreeningConfig, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return cfg, cfg.Validate()
			}
			return nil, fmt.Errorf("read screening config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse screening config: %w", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks threshold ranges and cross-field consistency. Called once
// per run, before any record is evaluated.
func (c *ScreeningConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("screening config invalid: %w", err)
	}
	if c.CompressionSevereThreshold > c.CompressionMildThreshold {
		return fmt.Errorf("screening config invalid: compression_severe_threshold %.2f exceeds compression_mild_threshold %.2f",
			c.CompressionSevereThreshold, c.CompressionMildThreshold)
	}
	if c.ExpansionMildThreshold > c.ExpansionSevereThreshold {
		return fmt.Errorf("screening config invalid: expansion_mild_threshold %.2f exceeds expansion_severe_threshold %.2f",
			c.ExpansionMildThreshold, c.ExpansionSevereThreshold)
	}
	if c.VoteScoreMidBar > c.VoteScoreHighBar {
		return fmt.Errorf("screening config invalid: vote_score_mid_bar %.1f exceeds vote_score_high_bar %.1f",
			c.VoteScoreMidBar, c.VoteScoreHighBar)
	}
	return nil
}
