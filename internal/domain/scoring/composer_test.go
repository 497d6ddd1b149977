package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/voltrun/voltrun/internal/config"
	"github.com/voltrun/voltrun/internal/domain/metrics"
	"github.com/voltrun/voltrun/internal/domain/volatility"
)

func f(v float64) *float64 { return metrics.Float(v) }

func TestComposeBase(t *testing.T) {
	cfg := config.Default() // multiplier 50

	score, bd := Compose(volatility.Analytics{
		StructuralVRP: f(1.4), // |0.4| * 50 = 20
		TacticalVRP:   f(0.8), // |0.2| * 50 = 10
	}, cfg)

	assert.InDelta(t, 20.0, bd.StructuralDislocation, 1e-9)
	assert.InDelta(t, 10.0, bd.TacticalDislocation, 1e-9)
	assert.InDelta(t, 30.0, score, 1e-9)
	assert.False(t, bd.TrapPenaltyApplied)
	assert.False(t, bd.CompressionPenalty)
}

func TestComposeSubScoreCap(t *testing.T) {
	cfg := config.Default()

	// An extreme dislocation saturates its half of the base at 50.
	score, bd := Compose(volatility.Analytics{
		StructuralVRP: f(4.0),
		TacticalVRP:   f(3.5),
	}, cfg)
	assert.InDelta(t, 50.0, bd.StructuralDislocation, 1e-9)
	assert.InDelta(t, 50.0, bd.TacticalDislocation, 1e-9)
	assert.InDelta(t, 100.0, score, 1e-9)
}

func TestTrapPenaltyHalves(t *testing.T) {
	cfg := config.Default() // trap fraction 0.5, rank threshold 0.2

	a := volatility.Analytics{
		StructuralVRP: f(1.4),
		TacticalVRP:   f(0.8),
		HVRank:        f(0.1),
	}
	score, bd := Compose(a, cfg)
	assert.True(t, bd.TrapPenaltyApplied)
	assert.InDelta(t, 15.0, score, 1e-9)
}

func TestCompressionPenalty(t *testing.T) {
	cfg := config.Default() // compression fraction 0.2

	a := volatility.Analytics{
		StructuralVRP:     f(1.4),
		TacticalVRP:       f(0.8),
		Compression:       f(0.5),
		MediumCompression: f(0.5),
	}
	score, bd := Compose(a, cfg)
	assert.True(t, bd.CompressionPenalty)
	assert.InDelta(t, 24.0, score, 1e-9)
}

func TestPenaltiesCommute(t *testing.T) {
	// Both penalties multiply the same base, so applying both must equal
	// base x (1-trap) x (1-compression) no matter the order.
	cfg := config.Default()
	a := volatility.Analytics{
		StructuralVRP:     f(1.4),
		TacticalVRP:       f(0.8),
		HVRank:            f(0.05),
		Compression:       f(0.5),
		MediumCompression: f(0.5),
	}
	score, bd := Compose(a, cfg)
	assert.True(t, bd.TrapPenaltyApplied)
	assert.True(t, bd.CompressionPenalty)
	assert.InDelta(t, 30.0*0.5*0.8, score, 1e-9)
}

func TestScoreClampedAndAbsentVRP(t *testing.T) {
	cfg := config.Default()

	score, _ := Compose(volatility.Analytics{}, cfg)
	assert.Equal(t, 0.0, score, "no analytics, no score")

	score, _ = Compose(volatility.Analytics{StructuralVRP: f(9.0), TacticalVRP: f(9.0)}, cfg)
	assert.LessOrEqual(t, score, 100.0)
	assert.GreaterOrEqual(t, score, 0.0)
}
