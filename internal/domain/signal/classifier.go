// Package signal maps a candidate's volatility analytics onto one discrete
// label. Classification is a pure function evaluated in strict priority
// order: event risk and premium richness carry nearer-term, higher-magnitude
// implications than momentum, so they win ties.
package signal

import (
	"time"

	"github.com/voltrun/voltrun/internal/config"
	"github.com/voltrun/voltrun/internal/domain/volatility"
)

// Label is the discrete signal assigned to a candidate.
type Label string

const (
	Event           Label = "EVENT"
	Rich            Label = "RICH"
	CoiledSevere    Label = "COILED-SEVERE"
	CoiledMild      Label = "COILED-MILD"
	ExpandingSevere Label = "EXPANDING-SEVERE"
	ExpandingMild   Label = "EXPANDING-MILD"
	Discount        Label = "DISCOUNT"
	Fair            Label = "FAIR"
)

// Input carries everything classification depends on. Now is injected so
// the earnings window is testable and deterministic.
type Input struct {
	Analytics    volatility.Analytics
	EarningsDate *time.Time
	Now          time.Time
}

// Classify returns the first matching label in priority order.
func Classify(in Input, cfg *config.ScreeningConfig) Label {
	a := in.Analytics

	if earningsWithin(in.EarningsDate, in.Now, cfg.EarningsWarningDays) {
		return Event
	}
	if a.StructuralVRP != nil && *a.StructuralVRP >= cfg.VRPStructuralRichThreshold {
		return Rich
	}
	if a.Coiled(cfg) {
		if *a.Compression < cfg.CompressionSevereThreshold {
			return CoiledSevere
		}
		return CoiledMild
	}
	if a.Compression != nil {
		if *a.Compression > cfg.ExpansionSevereThreshold {
			return ExpandingSevere
		}
		if *a.Compression > cfg.ExpansionMildThreshold {
			return ExpandingMild
		}
	}
	if a.TacticalVRP != nil && *a.TacticalVRP < cfg.VRPTacticalThreshold {
		return Discount
	}
	return Fair
}

// earningsWithin reports an earnings date inside [now, now+days]. Past
// dates do not trigger: the event has already happened.
func earningsWithin(earnings *time.Time, now time.Time, days int) bool {
	if earnings == nil || days <= 0 {
		return false
	}
	until := earnings.Sub(now)
	return until >= 0 && until <= time.Duration(days)*24*time.Hour
}
