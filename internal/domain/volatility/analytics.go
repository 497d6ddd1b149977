// Package volatility derives the risk-premium and compression analytics the
// screening chain evaluates: structural/tactical VRP with a floored
// denominator, the compression ratios, the positional HV rank, and the
// fraction-vs-percent scale auto-correction.
package volatility

import (
	"math"

	"github.com/voltrun/voltrun/internal/config"
	"github.com/voltrun/voltrun/internal/domain/metrics"
)

// scaleSuspectDistance is the |ln(IV/HV)| beyond which the two inputs are
// suspected to sit on mismatched scales (ratio outside [0.1, 10]).
var scaleSuspectDistance = math.Log(10)

// Analytics is the derived view of one record. Ratio fields are nil when
// their inputs are absent or the denominator is zero: an undefined
// compression propagates as absent, never as 0 or Inf.
type Analytics struct {
	StructuralVRP *float64 `json:"structural_vrp,omitempty"`
	TacticalVRP   *float64 `json:"tactical_vrp,omitempty"`

	// Compression is HV30/HV90; MediumCompression is HV20/HV60.
	Compression       *float64 `json:"compression,omitempty"`
	MediumCompression *float64 `json:"medium_compression,omitempty"`

	// HVRank is the min-max position of HV30 within the record's HV term
	// structure, in [0, 1].
	HVRank *float64 `json:"hv_rank,omitempty"`

	// ScaleCorrected records that the IV was rescaled x100 before any
	// threshold ran. ScaleSuspect flags a record whose IV/HV pair looked
	// mismatched but could not be made self-consistent; it proceeds
	// uncorrected, surfaced for operator visibility.
	ScaleCorrected bool `json:"scale_corrected,omitempty"`
	ScaleSuspect   bool `json:"scale_suspect,omitempty"`
}

// Analyze computes the full analytics view for a record. The record itself
// is never mutated; scale correction happens on Normalize, whose output is
// what callers should feed through the rest of the run.
func Analyze(rec *metrics.Record, cfg *config.ScreeningConfig) Analytics {
	a := Analytics{
		StructuralVRP:     flooredRatio(rec.IV, rec.HV90, cfg.HVFloorPercent),
		TacticalVRP:       flooredRatio(rec.IV, rec.HV30, cfg.HVFloorPercent),
		Compression:       ratio(rec.HV30, rec.HV90),
		MediumCompression: ratio(rec.HV20, rec.HV60),
		HVRank:            HVRank(rec),
	}
	return a
}

// Normalize applies the scale auto-correction and returns the record the
// rest of the run should see, the analytics computed from it, and whether a
// correction was applied. Idempotent: normalizing an already-normalized
// record changes nothing.
func Normalize(rec *metrics.Record, cfg *config.ScreeningConfig) (*metrics.Record, Analytics) {
	out, corrected, suspect := correctScale(rec)
	a := Analyze(out, cfg)
	a.ScaleCorrected = corrected
	a.ScaleSuspect = suspect
	return out, a
}

// correctScale detects one volatility input on the wrong numeric scale
// (fraction vs percent) and rescales the IV x100 when that makes the pair
// self-consistent. Without this, a single unit-mismatched provider response
// poisons every downstream ratio.
func correctScale(rec *metrics.Record) (out *metrics.Record, corrected, suspect bool) {
	ref := referenceHV(rec)
	if rec.IV == nil || ref == nil || *rec.IV <= 0 || *ref <= 0 {
		return rec, false, false
	}
	raw := math.Abs(math.Log(*rec.IV / *ref))
	if raw <= scaleSuspectDistance {
		return rec, false, false
	}
	// The x100 substitution must land the pair inside the suspicion bound,
	// not merely closer. A record still off-scale after rescaling stays
	// uncorrected and flagged, and an already-corrected record sits inside
	// the bound so a second pass never re-corrects it.
	rescaled := math.Abs(math.Log(*rec.IV * 100 / *ref))
	if rescaled >= raw || rescaled > scaleSuspectDistance {
		return rec, false, true
	}
	clone := *rec
	clone.IV = metrics.Float(*rec.IV * 100)
	return &clone, true, false
}

// referenceHV picks the longest available realized-vol window as the scale
// baseline.
func referenceHV(rec *metrics.Record) *float64 {
	for _, hv := range []*float64{rec.HV90, rec.HV60, rec.HV30, rec.HV20} {
		if hv != nil {
			return hv
		}
	}
	return nil
}

// flooredRatio returns num / max(den, floor), or nil when either input is
// absent. Flooring the denominator keeps the ratio finite and ordinal when
// realized volatility is near zero.
func flooredRatio(num, den *float64, floor float64) *float64 {
	if num == nil || den == nil {
		return nil
	}
	d := math.Max(*den, floor)
	return metrics.Float(*num / d)
}

// ratio returns num/den, or nil when either input is absent or den is not
// strictly positive. Deliberately not floored: an undefined compression must
// stay undefined.
func ratio(num, den *float64) *float64 {
	if num == nil || den == nil || *den <= 0 {
		return nil
	}
	return metrics.Float(*num / *den)
}

// HVRank returns where HV30 sits within the record's available HV windows,
// min-max normalized to [0, 1]. Requires HV30 plus at least one other
// window and a non-degenerate range; otherwise nil.
func HVRank(rec *metrics.Record) *float64 {
	if rec.HV30 == nil {
		return nil
	}
	lo, hi := *rec.HV30, *rec.HV30
	n := 0
	for _, hv := range []*float64{rec.HV20, rec.HV30, rec.HV60, rec.HV90} {
		if hv == nil {
			continue
		}
		n++
		lo = math.Min(lo, *hv)
		hi = math.Max(hi, *hv)
	}
	if n < 2 || hi-lo < 1e-9 {
		return nil
	}
	return metrics.Float((*rec.HV30 - lo) / (hi - lo))
}

// Coiled reports the composite compression condition: both the long-window
// ratio and the medium-window ratio must sit below their bounds. Requiring
// both keeps instruments that durably shifted to a lower-vol regime from
// reading as coiled.
func (a Analytics) Coiled(cfg *config.ScreeningConfig) bool {
	return a.Compression != nil && *a.Compression < cfg.CompressionCoiledThreshold &&
		a.MediumCompression != nil && *a.MediumCompression < cfg.CompressionMomentumThreshold
}
