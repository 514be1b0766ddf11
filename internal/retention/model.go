// Package retention implements the forgetting-curve memory model behind
// practice scheduling. Retention decays as R(t) = exp(-t/tau), where tau is
// the per-section decay time constant in days. Each completed session updates
// tau through a fixed pipeline of adjustment layers, and the next due date is
// the point where predicted retention falls to the difficulty's target R*.
//
// Everything in this package is a pure function of its inputs; disabled
// layers contribute the identity adjustment, never a skip.
package retention

import (
	"math"
	"time"

	"github.com/frankyzip/moduspractica/internal/dateutil"
)

// Tau bounds in days. A zero or negative tau would imply infinite-frequency
// scheduling, so the lower clamp is load-bearing, not cosmetic.
const (
	MinTau = 0.5
	MaxTau = 365.0
)

// Layers selects which optional tau adjustments are active. The adaptive
// master switch gates the memory-stability and personal-calibration
// sub-layers: a sub-layer only contributes when both it and the master
// switch are on.
type Layers struct {
	UseDemographics        bool
	UseRepetitionBonus     bool
	UseAdaptiveSystems     bool
	UseMemoryStability     bool
	UsePersonalCalibration bool
	UsePerformanceTrend    bool
}

// AgeBracket is the coarse demographic input consumed by the demographics
// layer. It is the only personal datum the model ever sees.
type AgeBracket int

const (
	AgeUnknown AgeBracket = iota
	AgeUnder18
	AgeAdult
	AgeSenior
)

// TauInput carries everything a tau recomputation needs.
type TauInput struct {
	PreviousTau   float64
	Outcome       Outcome
	TargetReps    int       // section target repetition count, [1, 12]
	CompletedReps int       // lifetime completed repetitions for the section
	Age           AgeBracket
	Calibration   float64   // personalized calibration factor; zero means unset
	TauHistory    []float64 // recent tau values for the section, oldest first
}

// TargetRetention maps a difficulty to its target retention probability R*.
// The mapping is monotone: harder material tolerates a lower retention floor.
// Every consumer goes through this function; no local caps exist elsewhere.
func TargetRetention(d Difficulty) float64 {
	switch d {
	case VeryEasy:
		return 0.95
	case Easy:
		return 0.92
	case Hard:
		return 0.85
	case VeryHard:
		return 0.80
	default:
		return 0.90
	}
}

// InitialTau returns the starting decay constant for a freshly onboarded
// section. More ambitious targets start with a slightly longer constant.
func InitialTau(targetReps int) float64 {
	if targetReps < 1 {
		targetReps = 1
	}
	if targetReps > 12 {
		targetReps = 12
	}
	return clampTau(1 + 0.25*float64(targetReps))
}

// ComputeTau recomputes the decay constant from a session outcome. Layers
// apply in a fixed order: base outcome growth, demographics, repetition
// bonus, adaptive corrections (stability then calibration), and finally
// performance-trend smoothing. A disabled layer multiplies by 1.
func ComputeTau(in TauInput, layers Layers) float64 {
	tau := in.PreviousTau
	if tau <= 0 {
		tau = InitialTau(in.TargetReps)
	}

	tau *= baseGrowth(in.Outcome.Classification) * progressFactor(in.CompletedReps, in.TargetReps)

	if layers.UseDemographics {
		tau *= demographicFactor(in.Age)
	}
	if layers.UseRepetitionBonus {
		tau *= repetitionBonus(in.CompletedReps)
	}
	if layers.UseAdaptiveSystems {
		if layers.UseMemoryStability {
			tau *= stabilityFactor(in.TauHistory)
		}
		if layers.UsePersonalCalibration {
			tau *= calibrationFactor(in.Calibration)
		}
	}
	if layers.UsePerformanceTrend {
		tau = smoothTrend(tau, in.TauHistory)
	}

	return clampTau(tau)
}

// DueDateFromTau derives the next due date: the whole-day horizon at which
// R(t) = exp(-t/tau) decays to the target retention, counted from the
// normalized fromDate. The result is always at least one day out.
func DueDateFromTau(tau, target float64, from time.Time) time.Time {
	tau = clampTau(tau)
	if target <= 0 || target >= 1 {
		target = TargetRetention(Moderate)
	}
	days := int(math.Round(-tau * math.Log(target)))
	if days < 1 {
		days = 1
	}
	return dateutil.AddDays(from, days)
}

// baseGrowth is the outcome-driven growth factor: a reached target extends
// the constant, frustration shrinks it, anything else holds steady.
func baseGrowth(c Classification) float64 {
	switch c {
	case TargetReached:
		return 1.3
	case Frustration:
		return 0.7
	default:
		return 1.0
	}
}

// progressFactor scales growth by how far along the section is toward its
// repetition target, in [0.9, 1.1].
func progressFactor(completed, target int) float64 {
	if target < 1 {
		target = 1
	}
	p := float64(completed) / float64(target)
	if p > 1 {
		p = 1
	}
	if p < 0 {
		p = 0
	}
	return 0.9 + 0.2*p
}

func demographicFactor(age AgeBracket) float64 {
	switch age {
	case AgeUnder18:
		return 1.05
	case AgeSenior:
		return 0.9
	default:
		return 1.0
	}
}

// repetitionBonus rewards accumulated repetitions, capped at 20.
func repetitionBonus(completed int) float64 {
	if completed < 0 {
		completed = 0
	}
	if completed > 20 {
		completed = 20
	}
	return 1 + 0.02*float64(completed)
}

// stabilityFactor reads the coefficient of variation of the recent tau
// history: a steady history earns a longer constant, an erratic one a
// shorter. Fewer than three samples is not enough signal.
func stabilityFactor(history []float64) float64 {
	if len(history) < 3 {
		return 1.0
	}
	mean, sd := meanStddev(history)
	if mean == 0 {
		return 1.0
	}
	cv := sd / mean
	switch {
	case cv < 0.15:
		return 1.1
	case cv > 0.5:
		return 0.95
	default:
		return 1.0
	}
}

// calibrationFactor clamps a caller-supplied personalization factor to
// [0.5, 1.5]. Zero means the calibration input is absent.
func calibrationFactor(f float64) float64 {
	if f == 0 {
		return 1.0
	}
	return math.Min(math.Max(f, 0.5), 1.5)
}

// smoothTrend pulls the fresh tau toward the historical mean, damping
// single-session swings.
func smoothTrend(tau float64, history []float64) float64 {
	if len(history) == 0 {
		return tau
	}
	mean, _ := meanStddev(history)
	return 0.7*tau + 0.3*mean
}

func meanStddev(xs []float64) (mean, sd float64) {
	for _, x := range xs {
		mean += x
	}
	mean /= float64(len(xs))
	for _, x := range xs {
		d := x - mean
		sd += d * d
	}
	sd = math.Sqrt(sd / float64(len(xs)))
	return mean, sd
}

func clampTau(tau float64) float64 {
	return math.Min(math.Max(tau, MinTau), MaxTau)
}
