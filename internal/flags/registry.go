// Package flags holds the process-wide feature flag registry. Flags switch
// optional tau-calculation layers on and off and bound diagnostic log volume.
// The registry is the one piece of shared mutable state in the core: reads
// and writes go through a single mutex so a reader never observes a
// half-applied configuration.
package flags

import (
	"sync"
	"time"

	"github.com/frankyzip/moduspractica/internal/dateutil"
	"github.com/frankyzip/moduspractica/internal/retention"
)

// DefaultDiagnosticLimit bounds diagnostic log lines per UTC day.
const DefaultDiagnosticLimit = 100

// Set is an immutable snapshot of the current flag values.
type Set struct {
	UseDemographics        bool `json:"use_demographics" yaml:"use_demographics"`
	UseRepetitionBonus     bool `json:"use_repetition_bonus" yaml:"use_repetition_bonus"`
	UseAdaptiveSystems     bool `json:"use_adaptive_systems" yaml:"use_adaptive_systems"`
	UseMemoryStability     bool `json:"use_memory_stability" yaml:"use_memory_stability"`
	UsePersonalCalibration bool `json:"use_personal_calibration" yaml:"use_personal_calibration"`
	UsePerformanceTrend    bool `json:"use_performance_trend" yaml:"use_performance_trend"`
	DiagnosticLogging      bool `json:"diagnostic_logging" yaml:"diagnostic_logging"`
	DiagnosticDailyLimit   int  `json:"diagnostic_daily_limit" yaml:"diagnostic_daily_limit"`
}

// Layers returns the retention-model view of the snapshot.
func (s Set) Layers() retention.Layers {
	return retention.Layers{
		UseDemographics:        s.UseDemographics,
		UseRepetitionBonus:     s.UseRepetitionBonus,
		UseAdaptiveSystems:     s.UseAdaptiveSystems,
		UseMemoryStability:     s.UseMemoryStability,
		UsePersonalCalibration: s.UsePersonalCalibration,
		UsePerformanceTrend:    s.UsePerformanceTrend,
	}
}

// Update carries one optional value per flag. A nil field leaves the
// corresponding flag unchanged; all non-nil fields apply as one atomic unit.
type Update struct {
	UseDemographics        *bool `json:"use_demographics,omitempty"`
	UseRepetitionBonus     *bool `json:"use_repetition_bonus,omitempty"`
	UseAdaptiveSystems     *bool `json:"use_adaptive_systems,omitempty"`
	UseMemoryStability     *bool `json:"use_memory_stability,omitempty"`
	UsePersonalCalibration *bool `json:"use_personal_calibration,omitempty"`
	UsePerformanceTrend    *bool `json:"use_performance_trend,omitempty"`
	DiagnosticLogging      *bool `json:"diagnostic_logging,omitempty"`
	DiagnosticDailyLimit   *int  `json:"diagnostic_daily_limit,omitempty"`
}

// Registry owns the flag state for the process lifetime. Construct one at
// startup and pass it to consumers; nothing here is a package global.
type Registry struct {
	mu       sync.Mutex
	set      Set
	logDay   time.Time
	logCount int
	now      func() time.Time
}

// NewRegistry returns a registry seeded with the given initial values.
// A zero DiagnosticDailyLimit is replaced with the default.
func NewRegistry(initial Set) *Registry {
	if initial.DiagnosticDailyLimit <= 0 {
		initial.DiagnosticDailyLimit = DefaultDiagnosticLimit
	}
	return &Registry{set: initial, now: time.Now}
}

// Snapshot returns a copy of the current flag set.
func (r *Registry) Snapshot() Set {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.set
}

// Configure applies all provided values under one critical section.
func (r *Registry) Configure(u Update) Set {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u.UseDemographics != nil {
		r.set.UseDemographics = *u.UseDemographics
	}
	if u.UseRepetitionBonus != nil {
		r.set.UseRepetitionBonus = *u.UseRepetitionBonus
	}
	if u.UseAdaptiveSystems != nil {
		r.set.UseAdaptiveSystems = *u.UseAdaptiveSystems
	}
	if u.UseMemoryStability != nil {
		r.set.UseMemoryStability = *u.UseMemoryStability
	}
	if u.UsePersonalCalibration != nil {
		r.set.UsePersonalCalibration = *u.UsePersonalCalibration
	}
	if u.UsePerformanceTrend != nil {
		r.set.UsePerformanceTrend = *u.UsePerformanceTrend
	}
	if u.DiagnosticLogging != nil {
		r.set.DiagnosticLogging = *u.DiagnosticLogging
	}
	if u.DiagnosticDailyLimit != nil && *u.DiagnosticDailyLimit > 0 {
		r.set.DiagnosticDailyLimit = *u.DiagnosticDailyLimit
	}
	return r.set
}

// ShouldLogDiagnostic admits or denies one diagnostic log emission. The
// internal counter resets at the first call of each UTC day; once the daily
// limit is spent, or when diagnostic logging is disabled, it denies.
func (r *Registry) ShouldLogDiagnostic() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.set.DiagnosticLogging {
		return false
	}
	today := dateutil.Normalize(r.now())
	if !today.Equal(r.logDay) {
		r.logDay = today
		r.logCount = 0
	}
	if r.logCount >= r.set.DiagnosticDailyLimit {
		return false
	}
	r.logCount++
	return true
}
