// Package anomaly flags outlier rows in historical sensor batches.
// Each call fits an isolation forest on the batch alone; there is no
// cross-call state. Severity is bucketed from the sensitivity-quantile
// scheme over min-max-normalized scores.
package anomaly

import (
	"log/slog"
	"math"
	"sort"

	"github.com/crimson-sun/pumpwise/internal/dataset"
	"github.com/crimson-sun/pumpwise/internal/engine/preprocess"
)

// MinRows is the smallest batch a meaningful outlier model can be fit
// on. Smaller batches come back with default non-anomalous columns.
const MinRows = 20

// Severity buckets.
const (
	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

// rangeEpsilon guards normalization of a zero-range score batch.
const rangeEpsilon = 1e-9

// Annotated is the input batch augmented with aligned per-row anomaly
// columns. Computed fresh per call, never persisted.
type Annotated struct {
	Batch    *dataset.Table
	Anomaly  []bool
	Score    []float64
	Severity []string
}

// Detector scores historical sensor batches against themselves.
// Stateless between calls; safe for concurrent use.
type Detector struct {
	features []string
	forest   ForestConfig
}

// New creates a Detector over the given canonical feature order.
func New(features []string) *Detector {
	return &Detector{
		features: append([]string(nil), features...),
		forest:   DefaultForestConfig(),
	}
}

// Detect annotates every row of the batch with an anomaly flag, a
// normalized score in [0,1] and a severity bucket. Sensitivity in
// [0,1] sets the flagging quantile: rows scoring above the
// (1-sensitivity) quantile of the batch are flagged.
func (d *Detector) Detect(batch *dataset.Table, sensitivity float64) *Annotated {
	out := defaultAnnotated(batch)

	if batch.Len() < MinRows {
		slog.Warn("insufficient data for anomaly detection",
			"rows", batch.Len(), "min_rows", MinRows)
		return out
	}

	reindexed, missing := batch.Reindex(d.features)
	if len(missing) > 0 {
		slog.Warn("missing features for anomaly detection", "features", missing)
	}
	reindexed.FillGaps()

	X, err := preprocess.New().FitTransform(reindexed, d.features)
	if err != nil {
		slog.Error("anomaly detection failed", "error", err)
		return out
	}

	forest := NewForest(d.forest)
	if err := forest.Fit(X); err != nil {
		slog.Error("anomaly detection failed", "error", err)
		return out
	}

	raw := make([]float64, len(X))
	for i, row := range X {
		raw[i], _ = forest.Score(row)
	}

	scores := normalize(raw)
	threshold := quantile(scores, 1-sensitivity)

	for i, s := range scores {
		out.Score[i] = s
		out.Anomaly[i] = s > threshold
		switch {
		case s > 0.8:
			out.Severity[i] = SeverityHigh
		case s > 0.5:
			out.Severity[i] = SeverityMedium
		default:
			out.Severity[i] = SeverityLow
		}
	}
	return out
}

func defaultAnnotated(batch *dataset.Table) *Annotated {
	n := batch.Len()
	severity := make([]string, n)
	for i := range severity {
		severity[i] = SeverityLow
	}
	return &Annotated{
		Batch:    batch,
		Anomaly:  make([]bool, n),
		Score:    make([]float64, n),
		Severity: severity,
	}
}

// normalize min-max scales scores to [0,1] across the batch, with an
// epsilon guard for all-equal batches.
func normalize(raw []float64) []float64 {
	lo := math.Inf(1)
	hi := math.Inf(-1)
	for _, v := range raw {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	out := make([]float64, len(raw))
	span := hi - lo + rangeEpsilon
	for i, v := range raw {
		out[i] = (v - lo) / span
	}
	return out
}

// quantile computes the q-quantile with linear interpolation.
func quantile(values []float64, q float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
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
