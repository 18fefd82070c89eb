// Package testdata generates deterministic synthetic pump sensor data
// for engine validation. Healthy and failing regimes are cleanly
// separated so learnability checks are stable.
package testdata

import (
	"math/rand"

	"github.com/crimson-sun/pumpwise/internal/dataset"
	"github.com/crimson-sun/pumpwise/internal/model"
)

// Snapshot returns a plausible healthy sensor reading, deterministic
// for a given pump ID.
func Snapshot(pumpID int64) model.Snapshot {
	rng := rand.New(rand.NewSource(pumpID))
	return model.Snapshot{
		model.VibrationX:         rng.NormFloat64()*0.8 + 2.5,
		model.VibrationY:         rng.NormFloat64()*0.9 + 2.8,
		model.VibrationZ:         rng.NormFloat64()*0.7 + 2.2,
		model.Temperature:        rng.NormFloat64()*10 + 70,
		model.Pressure:           rng.NormFloat64()*20 + 150,
		model.FlowRate:           rng.NormFloat64()*15 + 100,
		model.PowerConsumption:   rng.NormFloat64()*12 + 80,
		model.BearingTemperature: rng.NormFloat64()*8 + 72,
		model.OilLevel:           0.6 + rng.Float64()*0.4,
		model.OilQuality:         0.7 + rng.Float64()*0.25,
		model.OperatingHours:     1000 + rng.Float64()*3000,
	}
}

// TrainingTable builds a labeled training table of n rows, half
// healthy and half failing, with the canonical feature columns plus
// the failure label. Deterministic for a given seed.
func TrainingTable(n int, seed int64) *dataset.Table {
	rng := rand.New(rand.NewSource(seed))
	features := model.Features()
	cols := append(features, model.LabelColumn)

	rows := make([][]float64, 0, n)
	for i := 0; i < n; i++ {
		failing := i%2 == 1
		snap := row(rng, failing)
		values := make([]float64, 0, len(cols))
		for _, f := range features {
			values = append(values, snap[f])
		}
		if failing {
			values = append(values, 1)
		} else {
			values = append(values, 0)
		}
		rows = append(rows, values)
	}

	tbl, err := dataset.FromRows(cols, rows)
	if err != nil {
		panic(err) // row construction above is always rectangular
	}
	return tbl
}

// row draws one healthy or failing reading. Failing pumps run hot,
// vibrate hard and starve on oil.
func row(rng *rand.Rand, failing bool) model.Snapshot {
	if !failing {
		return model.Snapshot{
			model.VibrationX:         rng.NormFloat64()*0.5 + 2.5,
			model.VibrationY:         rng.NormFloat64()*0.5 + 2.8,
			model.VibrationZ:         rng.NormFloat64()*0.5 + 2.2,
			model.Temperature:        rng.NormFloat64()*5 + 68,
			model.Pressure:           rng.NormFloat64()*10 + 150,
			model.FlowRate:           rng.NormFloat64()*8 + 100,
			model.PowerConsumption:   rng.NormFloat64()*6 + 80,
			model.BearingTemperature: rng.NormFloat64()*4 + 70,
			model.OilLevel:           0.7 + rng.Float64()*0.3,
			model.OilQuality:         0.75 + rng.Float64()*0.2,
			model.OperatingHours:     500 + rng.Float64()*2000,
		}
	}
	return model.Snapshot{
		model.VibrationX:         rng.NormFloat64()*0.8 + 6.5,
		model.VibrationY:         rng.NormFloat64()*0.8 + 6.0,
		model.VibrationZ:         rng.NormFloat64()*0.8 + 5.5,
		model.Temperature:        rng.NormFloat64()*5 + 98,
		model.Pressure:           rng.NormFloat64()*15 + 120,
		model.FlowRate:           rng.NormFloat64()*8 + 45,
		model.PowerConsumption:   rng.NormFloat64()*8 + 105,
		model.BearingTemperature: rng.NormFloat64()*5 + 92,
		model.OilLevel:           0.05 + rng.Float64()*0.2,
		model.OilQuality:         0.1 + rng.Float64()*0.3,
		model.OperatingHours:     3500 + rng.Float64()*3000,
	}
}
