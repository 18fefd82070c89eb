package anomaly

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crimson-sun/pumpwise/internal/dataset"
	"github.com/crimson-sun/pumpwise/internal/model"
)

var (
	steadyRow = []float64{2.5, 2.8, 2.2, 70, 150, 100, 80, 2000, 72, 0.8, 0.85}
	brokenRow = []float64{9, 9, 9, 120, 280, 20, 140, 9000, 110, 0.05, 0.1}
)

// batchWithOutliers builds n rows of one steady operating point with
// outlier rows substituted at the given indices.
func batchWithOutliers(t *testing.T, n int, outliers ...int) *dataset.Table {
	t.Helper()
	rows := make([][]float64, n)
	for i := range rows {
		rows[i] = steadyRow
	}
	for _, i := range outliers {
		rows[i] = brokenRow
	}
	tbl, err := dataset.FromRows(model.Features(), rows)
	require.NoError(t, err)
	return tbl
}

func TestDetectFlagsOutliers(t *testing.T) {
	batch := batchWithOutliers(t, 25, 5, 17)
	d := New(model.Features())

	out := d.Detect(batch, 0.5)
	require.Len(t, out.Anomaly, 25)
	require.Len(t, out.Score, 25)
	require.Len(t, out.Severity, 25)

	flagged := 0
	for i, a := range out.Anomaly {
		if a {
			flagged++
			assert.Contains(t, []int{5, 17}, i)
		}
	}
	assert.Equal(t, 2, flagged)

	// Outlier rows carry the top normalized score and high severity.
	assert.InDelta(t, 1.0, out.Score[5], 1e-6)
	assert.Equal(t, SeverityHigh, out.Severity[5])
	assert.Equal(t, SeverityHigh, out.Severity[17])
	assert.Equal(t, SeverityLow, out.Severity[0])
	assert.InDelta(t, 0.0, out.Score[0], 1e-6)
}

func TestDetectSmallBatchDefaults(t *testing.T) {
	batch := batchWithOutliers(t, MinRows-1, 3)
	out := New(model.Features()).Detect(batch, 0.9)

	require.Len(t, out.Anomaly, MinRows-1)
	for i := range out.Anomaly {
		assert.False(t, out.Anomaly[i])
		assert.Equal(t, 0.0, out.Score[i])
		assert.Equal(t, SeverityLow, out.Severity[i])
	}
}

func TestDetectDeterministic(t *testing.T) {
	batch := batchWithOutliers(t, 30, 2, 11, 28)
	d := New(model.Features())

	a := d.Detect(batch, 0.7)
	b := d.Detect(batch, 0.7)
	assert.Equal(t, a.Score, b.Score)
	assert.Equal(t, a.Anomaly, b.Anomaly)
}

func TestDetectMissingColumns(t *testing.T) {
	// Batch carries only three of the canonical channels; the rest are
	// reindexed in as gaps and zero-filled.
	rows := make([][]float64, 25)
	for i := range rows {
		rows[i] = []float64{2.5, 70, 0.8}
	}
	rows[10] = []float64{9, 120, 0.05}
	batch, err := dataset.FromRows(
		[]string{model.VibrationX, model.Temperature, model.OilLevel}, rows)
	require.NoError(t, err)

	out := New(model.Features()).Detect(batch, 0.5)
	require.Len(t, out.Anomaly, 25)
	assert.True(t, out.Anomaly[10])
}

func TestNormalize(t *testing.T) {
	out := normalize([]float64{2, 4, 6})
	assert.InDelta(t, 0.0, out[0], 1e-6)
	assert.InDelta(t, 0.5, out[1], 1e-6)
	assert.InDelta(t, 1.0, out[2], 1e-6)

	// All-equal batches normalize to zero instead of dividing by zero.
	same := normalize([]float64{3, 3, 3})
	for _, v := range same {
		assert.Equal(t, 0.0, v)
	}
}

func TestQuantile(t *testing.T) {
	vals := []float64{4, 1, 3, 2}
	assert.Equal(t, 1.0, quantile(vals, 0))
	assert.Equal(t, 4.0, quantile(vals, 1))
	assert.InDelta(t, 2.5, quantile(vals, 0.5), 1e-9)
}
