// Package recommend produces priority-ordered maintenance actions and
// a maintenance-timing label. Rule order is part of the contract, not
// just rule content.
package recommend

import (
	"fmt"

	"github.com/crimson-sun/pumpwise/internal/model"
)

// Maintenance timing labels.
const (
	TimingImmediate = "Immediate (less than 24 hours)"
	TimingUrgent    = "Urgent (1-3 days)"
	TimingSoon      = "Soon (1 week)"
	TimingMonthly   = "Preventive (monthly)"
	TimingRoutine   = "Routine (every 3 months)"
)

// NormalMessage is the single entry emitted when no rule fires.
const NormalMessage = "Pump operating normally - continue periodic monitoring"

// Build evaluates the recommendation rules in their fixed order and
// returns a priority-numbered action list.
func Build(snapshot model.Snapshot, probability float64, riskLevel model.RiskLevel) []string {
	var recommendations []string
	priority := 1
	add := func(text string) {
		recommendations = append(recommendations, fmt.Sprintf("%d. %s", priority, text))
		priority++
	}

	if riskLevel == model.RiskCritical || riskLevel == model.RiskHigh {
		add("Stop pump immediately and contact technical support")
	}
	if snapshot[model.OilLevel] < 0.2 {
		add("Urgent oil addition (level very low)")
	}
	if snapshot[model.Temperature] > 90 {
		add("Urgent pump cooling")
	}

	// One maintenance-window branch at most.
	switch {
	case probability > 0.6:
		add("Schedule urgent maintenance within 24 hours")
	case probability > 0.4:
		add("Schedule maintenance within 3 days")
	case probability > 0.2:
		add("Preventive maintenance within a week")
	}

	if snapshot[model.OilQuality] < 0.5 {
		add("Replace oil at the earliest opportunity")
	}
	if snapshot[model.VibrationX] > 4.0 || snapshot[model.VibrationY] > 4.0 || snapshot[model.VibrationZ] > 4.0 {
		add("Check balance and bearings")
	}

	if len(recommendations) == 0 {
		recommendations = append(recommendations, NormalMessage)
	}
	return recommendations
}

// Timing suggests when maintenance should happen. Probability rules
// first, then accumulated operating hours, independently of what Build
// recommends.
func Timing(probability float64, snapshot model.Snapshot) string {
	switch {
	case probability > 0.7:
		return TimingImmediate
	case probability > 0.5:
		return TimingUrgent
	case probability > 0.3:
		return TimingSoon
	case snapshot[model.OperatingHours] > 3000:
		return TimingMonthly
	default:
		return TimingRoutine
	}
}
