// Package preprocess implements the feature preprocessing contract:
// per-column median imputation of gaps followed by robust
// (median/interquartile-range) scaling. Robust scaling is used because
// sensor faults produce extreme but valid readings that must not
// dominate the scale.
package preprocess

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/crimson-sun/pumpwise/internal/dataset"
)

// ErrMissingColumn reports that the input table lacks a required
// feature column. It propagates during training and is converted to a
// structured error result during inference.
var ErrMissingColumn = errors.New("preprocess: missing feature column")

// ErrNotFitted reports a Transform call before FitTransform.
var ErrNotFitted = errors.New("preprocess: transform before fit")

// Params are the parameters frozen at fit time. They are persisted
// alongside the model they were fit for.
type Params struct {
	Features []string  `json:"features"`
	Medians  []float64 `json:"medians"`
	Scales   []float64 `json:"scales"` // interquartile ranges, zero replaced by 1
}

// Preprocessor imputes and scales feature matrices. Fit once during
// training; Transform is read-only afterwards.
type Preprocessor struct {
	params Params
	fitted bool
}

// New returns an unfitted Preprocessor.
func New() *Preprocessor {
	return &Preprocessor{}
}

// Restore rebuilds a fitted Preprocessor from persisted parameters.
func Restore(p Params) *Preprocessor {
	return &Preprocessor{params: p, fitted: true}
}

// Params returns the frozen fit parameters.
func (p *Preprocessor) Params() Params {
	return p.params
}

// FitTransform computes per-column medians and interquartile ranges on
// the training table and returns the imputed, scaled matrix.
func (p *Preprocessor) FitTransform(tbl *dataset.Table, features []string) ([][]float64, error) {
	X, err := matrix(tbl, features)
	if err != nil {
		return nil, err
	}

	medians := make([]float64, len(features))
	scales := make([]float64, len(features))
	for c := range features {
		col := column(X, c)
		vals := dropNaN(col)
		if len(vals) == 0 {
			// All-gap column: impute 0, leave scale at identity.
			medians[c] = 0
			scales[c] = 1
			continue
		}
		sort.Float64s(vals)
		medians[c] = quantile(vals, 0.5)
		iqr := quantile(vals, 0.75) - quantile(vals, 0.25)
		if iqr == 0 {
			iqr = 1
		}
		scales[c] = iqr
	}

	p.params = Params{
		Features: append([]string(nil), features...),
		Medians:  medians,
		Scales:   scales,
	}
	p.fitted = true

	apply(X, medians, scales)
	return X, nil
}

// Transform imputes and scales the table with the parameters frozen at
// fit time.
func (p *Preprocessor) Transform(tbl *dataset.Table, features []string) ([][]float64, error) {
	if !p.fitted {
		return nil, ErrNotFitted
	}
	if len(features) != len(p.params.Features) {
		return nil, fmt.Errorf("preprocess: got %d features, fitted with %d", len(features), len(p.params.Features))
	}
	X, err := matrix(tbl, features)
	if err != nil {
		return nil, err
	}
	apply(X, p.params.Medians, p.params.Scales)
	return X, nil
}

// TransformRow imputes and scales a single ordered feature vector.
func (p *Preprocessor) TransformRow(row []float64) ([]float64, error) {
	if !p.fitted {
		return nil, ErrNotFitted
	}
	if len(row) != len(p.params.Features) {
		return nil, fmt.Errorf("preprocess: got %d values, fitted with %d", len(row), len(p.params.Features))
	}
	out := make([]float64, len(row))
	for c, v := range row {
		if math.IsNaN(v) {
			v = p.params.Medians[c]
		}
		out[c] = (v - p.params.Medians[c]) / p.params.Scales[c]
	}
	return out, nil
}

func matrix(tbl *dataset.Table, features []string) ([][]float64, error) {
	for _, f := range features {
		if !tbl.Has(f) {
			return nil, fmt.Errorf("%w: %q", ErrMissingColumn, f)
		}
	}
	return tbl.Matrix(features)
}

func apply(X [][]float64, medians, scales []float64) {
	for _, row := range X {
		for c, v := range row {
			if math.IsNaN(v) {
				v = medians[c]
			}
			row[c] = (v - medians[c]) / scales[c]
		}
	}
}

func column(X [][]float64, c int) []float64 {
	col := make([]float64, len(X))
	for r, row := range X {
		col[r] = row[c]
	}
	return col
}

func dropNaN(vals []float64) []float64 {
	out := make([]float64, 0, len(vals))
	for _, v := range vals {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

// quantile computes the q-quantile of sorted values with linear
// interpolation between adjacent ranks.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
