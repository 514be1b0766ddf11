package retention

import (
	"math"
	"testing"
	"time"
)

var t0 = time.Date(2026, 6, 15, 10, 30, 0, 0, time.UTC)

func assertFloat(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

// --- TargetRetention ---

func TestTargetRetentionMonotone(t *testing.T) {
	order := []Difficulty{VeryEasy, Easy, Moderate, Hard, VeryHard}
	prev := 1.0
	for _, d := range order {
		r := TargetRetention(d)
		if r <= 0 || r >= 1 {
			t.Errorf("TargetRetention(%v) = %v, want in (0, 1)", d, r)
		}
		if r > prev {
			t.Errorf("TargetRetention(%v) = %v, breaks monotone non-increasing order", d, r)
		}
		prev = r
	}
}

func TestTargetRetentionUnknownDefaultsToModerate(t *testing.T) {
	if got := TargetRetention(Difficulty(42)); got != TargetRetention(Moderate) {
		t.Errorf("TargetRetention(invalid) = %v, want moderate default", got)
	}
}

// --- InitialTau ---

func TestInitialTau(t *testing.T) {
	assertFloat(t, "InitialTau(4)", InitialTau(4), 2.0)
	assertFloat(t, "InitialTau(12)", InitialTau(12), 4.0)
	// Out-of-range targets clamp to the [1, 12] bounds.
	assertFloat(t, "InitialTau(0)", InitialTau(0), 1.25)
	assertFloat(t, "InitialTau(99)", InitialTau(99), 4.0)
}

// --- ComputeTau ---

func reached() Outcome {
	return Evaluate(Feedback{Difficulty: Easy, Quality: Good}, 10)
}

func frustrated() Outcome {
	return Evaluate(Feedback{Difficulty: VeryHard, Quality: Poor}, 10)
}

func TestComputeTauAllLayersOff(t *testing.T) {
	in := TauInput{PreviousTau: 10, Outcome: reached(), TargetReps: 4, CompletedReps: 4}
	got := ComputeTau(in, Layers{})
	// base growth 1.3, progress factor 1.1 at full progress
	assertFloat(t, "tau", got, 10*1.3*1.1)
}

func TestComputeTauFrustrationShrinks(t *testing.T) {
	in := TauInput{PreviousTau: 10, Outcome: frustrated(), TargetReps: 4}
	got := ComputeTau(in, Layers{})
	// base growth 0.7, progress factor 0.9 at zero progress
	assertFloat(t, "tau", got, 10*0.7*0.9)
}

func TestComputeTauNeverBelowMinimum(t *testing.T) {
	in := TauInput{PreviousTau: MinTau, Outcome: frustrated(), TargetReps: 1}
	got := ComputeTau(in, Layers{})
	if got < MinTau {
		t.Errorf("tau = %v, want >= %v", got, MinTau)
	}
}

func TestComputeTauClampsMaximum(t *testing.T) {
	in := TauInput{PreviousTau: MaxTau, Outcome: reached(), TargetReps: 4, CompletedReps: 4}
	got := ComputeTau(in, Layers{})
	if got > MaxTau {
		t.Errorf("tau = %v, want <= %v", got, MaxTau)
	}
}

func TestComputeTauZeroPreviousUsesInitial(t *testing.T) {
	in := TauInput{PreviousTau: 0, Outcome: reached(), TargetReps: 4}
	got := ComputeTau(in, Layers{})
	assertFloat(t, "tau", got, InitialTau(4)*1.3*0.9)
}

func TestComputeTauDisabledLayerIsIdentity(t *testing.T) {
	in := TauInput{
		PreviousTau:   10,
		Outcome:       reached(),
		TargetReps:    4,
		CompletedReps: 8,
		Age:           AgeSenior,
		Calibration:   1.5,
		TauHistory:    []float64{2, 9, 30},
	}
	// Only the repetition bonus enabled: demographics, adaptive and trend
	// inputs are present but must contribute nothing.
	withBonus := ComputeTau(in, Layers{UseRepetitionBonus: true})
	without := ComputeTau(in, Layers{})
	assertFloat(t, "bonus ratio", withBonus/without, 1+0.02*8)
}

func TestComputeTauDemographics(t *testing.T) {
	in := TauInput{PreviousTau: 10, Outcome: reached(), TargetReps: 4, Age: AgeSenior}
	on := ComputeTau(in, Layers{UseDemographics: true})
	off := ComputeTau(in, Layers{})
	assertFloat(t, "senior ratio", on/off, 0.9)

	in.Age = AgeUnknown
	neutral := ComputeTau(in, Layers{UseDemographics: true})
	assertFloat(t, "unknown age", neutral, off)
}

func TestComputeTauAdaptiveMasterGatesSubLayers(t *testing.T) {
	in := TauInput{
		PreviousTau: 10,
		Outcome:     reached(),
		TargetReps:  4,
		Calibration: 1.4,
		TauHistory:  []float64{10, 10.1, 9.9},
	}
	off := ComputeTau(in, Layers{})

	// Sub-layers enabled without the master switch: identity.
	subOnly := ComputeTau(in, Layers{UseMemoryStability: true, UsePersonalCalibration: true})
	assertFloat(t, "sub-layers without master", subOnly, off)

	// Master plus both sub-layers: stable history (cv < 0.15) and calibration.
	full := ComputeTau(in, Layers{
		UseAdaptiveSystems:     true,
		UseMemoryStability:     true,
		UsePersonalCalibration: true,
	})
	assertFloat(t, "adaptive ratio", full/off, 1.1*1.4)
}

func TestComputeTauCalibrationClamped(t *testing.T) {
	in := TauInput{PreviousTau: 10, Outcome: reached(), TargetReps: 4, Calibration: 9.0}
	layers := Layers{UseAdaptiveSystems: true, UsePersonalCalibration: true}
	got := ComputeTau(in, layers)
	off := ComputeTau(in, Layers{})
	assertFloat(t, "clamped calibration ratio", got/off, 1.5)
}

func TestComputeTauTrendSmoothing(t *testing.T) {
	in := TauInput{PreviousTau: 10, Outcome: reached(), TargetReps: 4, CompletedReps: 4,
		TauHistory: []float64{4, 6}}
	raw := 10 * 1.3 * 1.1
	got := ComputeTau(in, Layers{UsePerformanceTrend: true})
	assertFloat(t, "smoothed tau", got, 0.7*raw+0.3*5)
}

// --- DueDateFromTau ---

func TestDueDateFromTauElapsedDays(t *testing.T) {
	cases := []struct {
		tau    float64
		target float64
		days   int
	}{
		{10, 0.9, int(math.Round(-10 * math.Log(0.9)))},   // 1
		{30, 0.9, int(math.Round(-30 * math.Log(0.9)))},   // 3
		{30, 0.8, int(math.Round(-30 * math.Log(0.8)))},   // 7
		{100, 0.85, int(math.Round(-100 * math.Log(0.85)))}, // 16
	}
	for _, tc := range cases {
		got := DueDateFromTau(tc.tau, tc.target, t0)
		want := time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC).AddDate(0, 0, tc.days)
		if !got.Equal(want) {
			t.Errorf("DueDateFromTau(%v, %v) = %v, want %v", tc.tau, tc.target, got, want)
		}
	}
}

func TestDueDateFromTauStrictlyAfter(t *testing.T) {
	// Even a tiny tau with a target near 1 schedules at least a day out.
	got := DueDateFromTau(MinTau, 0.99, t0)
	from := time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)
	if !got.After(from) {
		t.Errorf("due %v not after %v", got, from)
	}
}

func TestDueDateFromTauNormalized(t *testing.T) {
	got := DueDateFromTau(10, 0.9, t0)
	if got.Hour() != 0 || got.Minute() != 0 || got.Second() != 0 || got.Nanosecond() != 0 {
		t.Errorf("due date %v not day-normalized", got)
	}
}

func TestDueDateFromTauBadTargetDefaults(t *testing.T) {
	want := DueDateFromTau(10, TargetRetention(Moderate), t0)
	for _, bad := range []float64{0, 1, -0.5, 1.5} {
		if got := DueDateFromTau(10, bad, t0); !got.Equal(want) {
			t.Errorf("DueDateFromTau(10, %v) = %v, want moderate default %v", bad, got, want)
		}
	}
}
