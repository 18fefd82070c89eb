// Package risk turns a raw failure probability into a discrete risk
// band, display color and confidence, escalating on rule-based
// critical factors independently of the model.
package risk

import (
	"github.com/crimson-sun/pumpwise/internal/model"
)

// Display colors for each band. Part of the contract even for
// consumers that never render them.
const (
	ColorCritical = "#dc3545"
	ColorHigh     = "#fd7e14"
	ColorMedium   = "#ffc107"
	ColorLow      = "#20c997"
	ColorNormal   = "#198754"
	ColorUnknown  = "#6c757d"
)

// Critical factor cutoffs. A factor escalates risk regardless of what
// the model says.
const (
	criticalTemperature = 85.0
	criticalOilLevel    = 0.2
	criticalVibration   = 6.0
)

// Scorer assigns risk bands. Stateless; a single instance is safe for
// concurrent use.
type Scorer struct{}

// New creates a Scorer.
func New() *Scorer {
	return &Scorer{}
}

// Score maps the model probability and the raw snapshot to a band and
// its color. Each critical factor adds 0.1 to the probability before
// banding, and two or more force Critical outright.
func (s *Scorer) Score(probability float64, snapshot model.Snapshot) (model.RiskLevel, string) {
	factors := s.CriticalFactors(snapshot)
	adjusted := probability + 0.1*float64(factors)

	switch {
	case adjusted >= 0.8 || factors >= 2:
		return model.RiskCritical, ColorCritical
	case adjusted >= 0.6:
		return model.RiskHigh, ColorHigh
	case adjusted >= 0.4:
		return model.RiskMedium, ColorMedium
	case adjusted >= 0.2:
		return model.RiskLow, ColorLow
	default:
		return model.RiskNormal, ColorNormal
	}
}

// CriticalFactors counts the independently-checked sensor conditions:
// overheated casing, starved oil, excessive X-axis vibration.
func (s *Scorer) CriticalFactors(snapshot model.Snapshot) int {
	n := 0
	if snapshot[model.Temperature] > criticalTemperature {
		n++
	}
	if snapshot[model.OilLevel] < criticalOilLevel {
		n++
	}
	if snapshot[model.VibrationX] > criticalVibration {
		n++
	}
	return n
}

// Confidence starts from the model probability, rewards snapshots that
// carry the three critical channels, penalizes sparse input (more than
// three exact-zero values) and caps at 0.95.
func (s *Scorer) Confidence(probability float64, snapshot model.Snapshot) float64 {
	confidence := probability

	_, hasTemp := snapshot[model.Temperature]
	_, hasVib := snapshot[model.VibrationX]
	_, hasOil := snapshot[model.OilLevel]
	if hasTemp && hasVib && hasOil {
		confidence *= 1.1
	}

	if snapshot.ZeroCount() > 3 {
		confidence *= 0.8
	}

	return min(confidence, 0.95)
}
