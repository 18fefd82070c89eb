// Package csvfile provides a dataset.Source backed by a local CSV file
// with a header row of sensor channel names.
package csvfile

import (
	"context"
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"strconv"

	"github.com/crimson-sun/pumpwise/internal/dataset"
)

func init() {
	dataset.Register("csv", func(location string) dataset.Source {
		return &Source{Path: location}
	})
}

// Source reads a whole CSV file into a dataset.Table.
type Source struct {
	Path string
}

// Load parses the CSV at Path. The first record is the header; empty
// cells become NaN. Non-numeric cells are an error.
func (s *Source) Load(_ context.Context) (*dataset.Table, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("csvfile: open %s: %w", s.Path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("csvfile: read %s: %w", s.Path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("csvfile: %s is empty", s.Path)
	}

	header := records[0]
	rows := make([][]float64, 0, len(records)-1)
	for i, rec := range records[1:] {
		row := make([]float64, len(header))
		for c, cell := range rec {
			if cell == "" {
				row[c] = math.NaN()
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, fmt.Errorf("csvfile: %s row %d column %q: %w", s.Path, i+2, header[c], err)
			}
			row[c] = v
		}
		rows = append(rows, row)
	}

	tbl, err := dataset.FromRows(header, rows)
	if err != nil {
		return nil, fmt.Errorf("csvfile: %s: %w", s.Path, err)
	}
	return tbl, nil
}
