// Package engine orchestrates the failure-prediction pipeline:
// preprocess → boosted classifier → risk/diagnosis/recommendation
// layers, behind an explicit model lifecycle state machine.
package engine

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/crimson-sun/pumpwise/internal/dataset"
	"github.com/crimson-sun/pumpwise/internal/engine/failuretype"
	"github.com/crimson-sun/pumpwise/internal/engine/gbdt"
	"github.com/crimson-sun/pumpwise/internal/engine/preprocess"
	"github.com/crimson-sun/pumpwise/internal/engine/recommend"
	"github.com/crimson-sun/pumpwise/internal/engine/risk"
	"github.com/crimson-sun/pumpwise/internal/model"
	"github.com/crimson-sun/pumpwise/internal/store"
)

// ModelType names the classifier family in metadata and info output.
const ModelType = "GradientBoosting"

// ModelVersion tags persisted metadata records.
const ModelVersion = "1.0"

// ErrEmptyDataset reports training on an empty or nil table.
var ErrEmptyDataset = errors.New("engine: empty training dataset")

// ErrNotReady reports prediction while no trained model is available
// and auto-training could not produce one.
var ErrNotReady = errors.New("engine: model not ready")

// State is the model lifecycle state.
type State int

const (
	Uninitialized State = iota
	Training
	Ready
)

func (s State) String() string {
	switch s {
	case Training:
		return "training"
	case Ready:
		return "ready"
	default:
		return "uninitialized"
	}
}

// Classifier is the minimal capability interface the scoring logic
// needs. Any equivalent implementation is substitutable.
type Classifier interface {
	Fit(X [][]float64, y []int) error
	Predict(x []float64) (int, error)
	PredictProba(x []float64) (float64, error)
	FeatureImportances() []float64
}

// Options configures a Predictor beyond its required collaborators.
type Options struct {
	// CrossValidation enables informational 5-fold CV during training.
	CrossValidation bool

	// NewClassifier builds a fresh untrained classifier. Defaults to
	// the production gradient-boosted configuration.
	NewClassifier func() Classifier
}

// Predictor owns the current trained model and its preprocessor.
// Training holds the write lock (single-writer); prediction holds the
// read lock, so concurrent predictions against a Ready model are safe.
type Predictor struct {
	features []string
	store    *store.Store
	source   dataset.Source
	opts     Options

	mu          sync.RWMutex
	state       State
	clf         Classifier
	pre         *preprocess.Preprocessor
	accuracy    float64
	importance  map[string]float64
	lastTrained time.Time

	risk *risk.Scorer
}

// New creates a Predictor over the given canonical feature order.
// It attempts to load a previously persisted model; on any load
// failure it falls back to a fresh untrained classifier and stays
// Uninitialized. Construction never fails.
func New(features []string, st *store.Store, src dataset.Source, opts Options) *Predictor {
	if opts.NewClassifier == nil {
		opts.NewClassifier = func() Classifier {
			return gbdt.New(gbdt.DefaultConfig())
		}
	}
	p := &Predictor{
		features: append([]string(nil), features...),
		store:    st,
		source:   src,
		opts:     opts,
		clf:      opts.NewClassifier(),
		pre:      preprocess.New(),
		risk:     risk.New(),
	}
	p.loadPersisted()
	return p
}

// loadPersisted restores the model + preprocessor pair and the last
// recorded accuracy. Missing or corrupt artifacts are logged and
// leave the Predictor Uninitialized.
func (p *Predictor) loadPersisted() {
	if p.store == nil {
		return
	}
	artifact, err := p.store.LoadModel()
	if err != nil {
		if errors.Is(err, store.ErrNoModel) {
			slog.Info("no persisted model, created new model")
		} else {
			slog.Error("error loading model, created new model", "error", err)
		}
		return
	}

	clf, err := gbdt.Restore(artifact.Model)
	if err != nil {
		slog.Error("error restoring model, created new model", "error", err)
		return
	}

	p.clf = clf
	p.pre = preprocess.Restore(artifact.Preprocessor)
	p.accuracy = artifact.Accuracy
	p.importance = importanceMap(artifact.Features, clf.FeatureImportances())
	p.state = Ready

	if history, err := p.store.History(); err == nil && len(history) > 0 {
		last := history[len(history)-1]
		p.accuracy = last.Accuracy
		p.lastTrained = last.Timestamp
	}
	slog.Info("loaded pre-trained model", "accuracy", p.accuracy)
}

// Predict scores one snapshot and returns a fully populated result.
// It never returns a Go error: any failure yields the fixed error
// shape with RiskUnknown and a populated Error field. If the model is
// not Ready, an implicit training pass over the configured source runs
// first.
func (p *Predictor) Predict(ctx context.Context, snapshot model.Snapshot) model.Prediction {
	p.mu.RLock()
	ready := p.state == Ready
	p.mu.RUnlock()

	if !ready {
		slog.Warn("model not trained, auto-training")
		if err := p.autoTrain(ctx); err != nil {
			slog.Error("auto-training failed", "error", err)
			return p.errorResponse(err)
		}
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.state != Ready {
		return p.errorResponse(ErrNotReady)
	}

	vector, missing := snapshot.Vector(p.features)
	if len(missing) > 0 {
		slog.Warn("missing sensor data", "features", missing)
	}

	x, err := p.pre.TransformRow(vector)
	if err != nil {
		slog.Error("prediction error", "error", err)
		return p.errorResponse(err)
	}
	probability, err := p.clf.PredictProba(x)
	if err != nil {
		slog.Error("prediction error", "error", err)
		return p.errorResponse(err)
	}
	label, err := p.clf.Predict(x)
	if err != nil {
		slog.Error("prediction error", "error", err)
		return p.errorResponse(err)
	}

	riskLevel, riskColor := p.risk.Score(probability, snapshot)

	return model.Prediction{
		FailureProbability:   round4(probability),
		Prediction:           label,
		FailureType:          failuretype.Classify(snapshot, p.importance),
		Confidence:           round4(p.risk.Confidence(probability, snapshot)),
		RiskLevel:            riskLevel,
		RiskColor:            riskColor,
		Recommendations:      recommend.Build(snapshot, probability, riskLevel),
		MaintenanceTiming:    recommend.Timing(probability, snapshot),
		FeatureContributions: p.contributions(snapshot),
		MissingFeatures:      missing,
		ModelAccuracy:        p.accuracy,
		Timestamp:            time.Now(),
	}
}

// autoTrain runs a training pass from the configured source.
func (p *Predictor) autoTrain(ctx context.Context) error {
	if p.source == nil {
		return ErrNotReady
	}
	tbl, err := p.source.Load(ctx)
	if err != nil {
		return err
	}
	_, err = p.Train(ctx, tbl)
	return err
}

// Info reports the current model state for collaborators.
func (p *Predictor) Info() model.Info {
	p.mu.RLock()
	defer p.mu.RUnlock()

	lastTrained := "Not available"
	if !p.lastTrained.IsZero() {
		lastTrained = p.lastTrained.Format(time.RFC3339)
	}
	return model.Info{
		IsTrained:         p.state == Ready,
		Accuracy:          p.accuracy,
		ModelType:         ModelType,
		FeatureImportance: copyMap(p.importance),
		FeaturesCount:     len(p.features),
		LastTrained:       lastTrained,
	}
}

// State returns the current lifecycle state.
func (p *Predictor) State() State {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

// contributions approximates each feature's pull on the prediction as
// reading x importance, scaled for display.
func (p *Predictor) contributions(snapshot model.Snapshot) map[string]float64 {
	out := make(map[string]float64, len(p.importance))
	for feature, importance := range p.importance {
		out[feature] = round4(snapshot[feature] * importance * 10)
	}
	return out
}

// errorResponse is the fixed failure shape: zeroed numerics, unknown
// risk, and a human-readable error. Callers never need error handling
// around Predict.
func (p *Predictor) errorResponse(err error) model.Prediction {
	return model.Prediction{
		FailureType:       "Prediction error",
		RiskLevel:         model.RiskUnknown,
		RiskColor:         risk.ColorUnknown,
		Recommendations:   []string{"Check AI system", "Review logs"},
		MaintenanceTiming: "Unspecified",
		Timestamp:         time.Now(),
		Error:             err.Error(),
	}
}

func importanceMap(features []string, importances []float64) map[string]float64 {
	out := make(map[string]float64, len(features))
	for i, f := range features {
		if i < len(importances) {
			out[f] = importances[i]
		}
	}
	return out
}

func copyMap(m map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
