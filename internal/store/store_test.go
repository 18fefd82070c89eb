package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crimson-sun/pumpwise/internal/engine/gbdt"
	"github.com/crimson-sun/pumpwise/internal/engine/preprocess"
)

func trainedArtifact(t *testing.T) Artifact {
	t.Helper()
	cfg := gbdt.DefaultConfig()
	cfg.Trees = 5
	cfg.MaxDepth = 2
	clf := gbdt.New(cfg)
	X := [][]float64{{0}, {0.1}, {10}, {10.1}}
	require.NoError(t, clf.Fit(X, []int{0, 0, 1, 1}))

	return Artifact{
		Model: clf.State(),
		Preprocessor: preprocess.Params{
			Features: []string{"temperature"},
			Medians:  []float64{70},
			Scales:   []float64{10},
		},
		Accuracy: 0.93,
		Features: []string{"temperature"},
		SavedAt:  time.Now().UTC(),
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := New(t.TempDir())
	want := trainedArtifact(t)
	require.NoError(t, s.SaveModel(want))

	got, err := s.LoadModel()
	require.NoError(t, err)
	assert.Equal(t, want.Accuracy, got.Accuracy)
	assert.Equal(t, want.Features, got.Features)
	assert.Equal(t, want.Preprocessor, got.Preprocessor)

	// The restored ensemble predicts identically.
	orig, err := gbdt.Restore(want.Model)
	require.NoError(t, err)
	restored, err := gbdt.Restore(got.Model)
	require.NoError(t, err)
	pw, err := orig.PredictProba([]float64{5})
	require.NoError(t, err)
	pg, err := restored.PredictProba([]float64{5})
	require.NoError(t, err)
	assert.Equal(t, pw, pg)
}

func TestLoadModelMissing(t *testing.T) {
	_, err := New(t.TempDir()).LoadModel()
	assert.ErrorIs(t, err, ErrNoModel)
}

func TestLoadModelCorrupt(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, modelFile), []byte("{not json"), 0o644))

	_, err := New(dir).LoadModel()
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoModel)
}

func TestAppendMetadataHistory(t *testing.T) {
	s := New(t.TempDir())

	first := Metadata{RunID: "run-1", Accuracy: 0.9, ModelType: "GradientBoosting", Version: "1.0"}
	second := Metadata{RunID: "run-2", Accuracy: 0.95, ModelType: "GradientBoosting", Version: "1.0"}
	require.NoError(t, s.AppendMetadata(first))
	require.NoError(t, s.AppendMetadata(second))

	history, err := s.History()
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "run-1", history[0].RunID)
	assert.Equal(t, "run-2", history[1].RunID)
	assert.Equal(t, 0.95, history[1].Accuracy)
}

func TestHistoryMissing(t *testing.T) {
	_, err := New(t.TempDir()).History()
	assert.Error(t, err)
}

func TestSaveCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "models")
	s := New(dir)
	require.NoError(t, s.SaveModel(trainedArtifact(t)))

	_, err := os.Stat(filepath.Join(dir, modelFile))
	assert.NoError(t, err)
}
