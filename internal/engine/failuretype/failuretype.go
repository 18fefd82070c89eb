// Package failuretype maps sensor readings to qualitative failure
// categories. Vibration and temperature thresholds shift with the
// model's feature importances: a channel the model already weighs
// heavily gets more slack before its rule-based diagnosis fires.
package failuretype

import (
	"strings"

	"github.com/crimson-sun/pumpwise/internal/model"
)

// NoObviousFailure is returned when no diagnostic rule matches.
const NoObviousFailure = "No obvious failures"

// Separator joins matched failure labels.
const Separator = ", "

// Classify evaluates the diagnostic rules against the snapshot using
// the current model's feature importance map. Missing snapshot keys
// read as 0 and never trigger a rule. Pure function, no state.
func Classify(snapshot model.Snapshot, importance map[string]float64) string {
	temperatureThreshold := 80 + importance[model.Temperature]*10

	var types []string
	if snapshot[model.VibrationX] > vibrationThreshold(importance, model.VibrationX) {
		types = append(types, "X-axis imbalance")
	}
	if snapshot[model.VibrationY] > vibrationThreshold(importance, model.VibrationY) {
		types = append(types, "Y-axis imbalance")
	}
	if snapshot[model.VibrationZ] > vibrationThreshold(importance, model.VibrationZ) {
		types = append(types, "Z-axis imbalance")
	}
	if snapshot[model.Temperature] > temperatureThreshold {
		types = append(types, "Overheating")
	}
	if snapshot[model.OilLevel] < 0.3 {
		types = append(types, "Low oil level")
	}
	if snapshot[model.OilQuality] < 0.4 {
		types = append(types, "Oil contamination")
	}
	if snapshot[model.BearingTemperature] > 85 {
		types = append(types, "Bearing damage")
	}
	if snapshot[model.FlowRate] < 50 {
		types = append(types, "Low efficiency")
	}

	if len(types) == 0 {
		return NoObviousFailure
	}
	return strings.Join(types, Separator)
}

func vibrationThreshold(importance map[string]float64, axis string) float64 {
	return 4.5 + importance[axis]*2
}
