package balance

import (
	"fmt"
	"time"
)

// Default thresholds. An overloaded member is one whose effective hours
// exceed a full nominal week.
const (
	DefaultNominalCapacityHours = 40.0
	DefaultOverloadHours        = 40.0
	DefaultMinSkillCoverage     = 0.8
)

// Thresholds are the tunable limits the analyzer scores against.
type Thresholds struct {
	// NominalCapacityHours is one member's full-time sprint capacity.
	NominalCapacityHours float64
	// OverloadHours is the effective workload above which a member is a bottleneck.
	OverloadHours float64
	// MinSkillCoverage is the coverage ratio below which skills are a bottleneck.
	MinSkillCoverage float64
}

// DefaultThresholds returns the thresholds used when none are configured.
func DefaultThresholds() Thresholds {
	return Thresholds{
		NominalCapacityHours: DefaultNominalCapacityHours,
		OverloadHours:        DefaultOverloadHours,
		MinSkillCoverage:     DefaultMinSkillCoverage,
	}
}

// Validate reports thresholds the analyzer cannot work with.
func (t Thresholds) Validate() error {
	switch {
	case t.NominalCapacityHours <= 0:
		return fmt.Errorf("nominal capacity hours must be positive, got %v", t.NominalCapacityHours)
	case t.OverloadHours <= 0:
		return fmt.Errorf("overload hours must be positive, got %v", t.OverloadHours)
	case t.MinSkillCoverage < 0 || t.MinSkillCoverage > 1:
		return fmt.Errorf("min skill coverage must be within [0, 1], got %v", t.MinSkillCoverage)
	}

	return nil
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithThresholds overrides the default thresholds.
func WithThresholds(t Thresholds) Option {
	return func(a *Analyzer) {
		a.thresholds = t
	}
}

// WithClock replaces time.Now as the source of CalculatedAt.
func WithClock(now func() time.Time) Option {
	return func(a *Analyzer) {
		if now != nil {
			a.now = now
		}
	}
}
