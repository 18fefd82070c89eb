package failuretype

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/crimson-sun/pumpwise/internal/model"
)

// healthy keeps every channel away from its diagnostic cutoff.
func healthy() model.Snapshot {
	return model.Snapshot{
		model.VibrationX:         2.5,
		model.VibrationY:         2.8,
		model.VibrationZ:         2.2,
		model.Temperature:        70,
		model.FlowRate:           100,
		model.BearingTemperature: 72,
		model.OilLevel:           0.8,
		model.OilQuality:         0.85,
	}
}

func TestClassifyHealthy(t *testing.T) {
	got := Classify(healthy(), nil)
	assert.Equal(t, NoObviousFailure, got)
}

func TestClassifySingleRules(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(model.Snapshot)
		want   string
	}{
		{"x vibration", func(s model.Snapshot) { s[model.VibrationX] = 5 }, "X-axis imbalance"},
		{"y vibration", func(s model.Snapshot) { s[model.VibrationY] = 5 }, "Y-axis imbalance"},
		{"z vibration", func(s model.Snapshot) { s[model.VibrationZ] = 5 }, "Z-axis imbalance"},
		{"overheating", func(s model.Snapshot) { s[model.Temperature] = 85 }, "Overheating"},
		{"low oil", func(s model.Snapshot) { s[model.OilLevel] = 0.2 }, "Low oil level"},
		{"oil contamination", func(s model.Snapshot) { s[model.OilQuality] = 0.3 }, "Oil contamination"},
		{"bearing damage", func(s model.Snapshot) { s[model.BearingTemperature] = 90 }, "Bearing damage"},
		{"low efficiency", func(s model.Snapshot) { s[model.FlowRate] = 40 }, "Low efficiency"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := healthy()
			tt.mutate(s)
			assert.Equal(t, tt.want, Classify(s, nil))
		})
	}
}

func TestClassifyJoinsMultipleTypes(t *testing.T) {
	s := healthy()
	s[model.VibrationX] = 6
	s[model.Temperature] = 95
	s[model.OilLevel] = 0.1

	got := Classify(s, nil)
	parts := strings.Split(got, Separator)
	assert.Equal(t, []string{"X-axis imbalance", "Overheating", "Low oil level"}, parts)
}

func TestClassifyImportanceRaisesThresholds(t *testing.T) {
	s := healthy()
	s[model.VibrationX] = 4.7

	// Base threshold 4.5 fires; weight 0.2 raises it to 4.9 and the
	// same reading passes.
	assert.Equal(t, "X-axis imbalance", Classify(s, nil))
	weighted := map[string]float64{model.VibrationX: 0.2}
	assert.Equal(t, NoObviousFailure, Classify(s, weighted))

	// Temperature margin widens with importance too.
	hot := healthy()
	hot[model.Temperature] = 84
	assert.Equal(t, "Overheating", Classify(hot, nil))
	assert.Equal(t, NoObviousFailure, Classify(hot, map[string]float64{model.Temperature: 0.5}))
}
