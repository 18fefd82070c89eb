package pumpwise_test

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/crimson-sun/pumpwise/pkg/pumpwise"
)

func Example() {
	dir, err := os.MkdirTemp("", "pumpwise")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(dir)

	eng, err := pumpwise.New(pumpwise.WithModelDir(dir))
	if err != nil {
		log.Fatal(err)
	}

	// Two labeled operating regimes: a healthy pump and a failing one.
	healthy := []float64{2.5, 2.8, 2.2, 70, 150, 100, 80, 1500, 72, 0.8, 0.85, 0}
	failing := []float64{6.5, 6.0, 5.5, 98, 120, 45, 105, 5000, 92, 0.1, 0.2, 1}
	rows := make([][]float64, 40)
	for i := range rows {
		if i%2 == 0 {
			rows[i] = healthy
		} else {
			rows[i] = failing
		}
	}
	columns := append(pumpwise.Features(), "failure")
	table, err := pumpwise.NewBatch(columns, rows)
	if err != nil {
		log.Fatal(err)
	}
	if _, err := eng.TrainFrom(context.Background(), table); err != nil {
		log.Fatal(err)
	}

	result := eng.Predict(context.Background(), pumpwise.Snapshot{
		"temperature": 95,
		"vibration_x": 7.0,
		"oil_level":   0.1,
	})
	fmt.Printf("Risk: %s\n", result.RiskLevel)
	// Output:
	// Risk: Critical
}
