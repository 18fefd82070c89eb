package pumpwise

import (
	"context"
	"fmt"

	"github.com/crimson-sun/pumpwise/internal/config"
	"github.com/crimson-sun/pumpwise/internal/dataset"
	"github.com/crimson-sun/pumpwise/internal/engine"
	"github.com/crimson-sun/pumpwise/internal/engine/anomaly"
	"github.com/crimson-sun/pumpwise/internal/logging"
	"github.com/crimson-sun/pumpwise/internal/model"
	"github.com/crimson-sun/pumpwise/internal/store"

	// Register dataset source implementations.
	_ "github.com/crimson-sun/pumpwise/internal/dataset/csvfile"
)

// Public aliases for the core result and input types.
type (
	// Snapshot is a sparse sensor reading keyed by channel name.
	Snapshot = model.Snapshot

	// Prediction is the fully populated result of scoring a snapshot.
	Prediction = model.Prediction

	// TrainingMetrics summarizes one training run.
	TrainingMetrics = model.TrainingMetrics

	// Info describes the current model state.
	Info = model.Info

	// Table is a batch of historical sensor rows.
	Table = dataset.Table

	// Annotated is a batch augmented with per-row anomaly columns.
	Annotated = anomaly.Annotated
)

// NewBatch builds a Table from row-major values under the given
// column names.
func NewBatch(columns []string, rows [][]float64) (*Table, error) {
	return dataset.FromRows(columns, rows)
}

// Features returns the canonical ordered 11-channel feature list.
func Features() []string {
	return model.Features()
}

// Engine is a predictive maintenance scoring engine for rotating
// industrial pumps. Construct once and share: training is
// single-writer, prediction and anomaly detection are safe to run
// concurrently against a trained model.
type Engine struct {
	cfg       *config.Config
	source    dataset.Source
	predictor *engine.Predictor
	detector  *anomaly.Detector
}

// New creates an Engine. A previously persisted model is loaded when
// present; otherwise the engine starts untrained and auto-trains from
// the configured training source on first prediction.
func New(opts ...Option) (*Engine, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, fmt.Errorf("pumpwise: %w", err)
	}
	if o.modelDir != "" {
		cfg.Engine.ModelDir = o.modelDir
	}
	if o.trainingData != "" {
		cfg.Engine.TrainingDataFile = o.trainingData
	}
	if o.logLevel != "" {
		cfg.Logging.Level = o.logLevel
		logging.Init(false, logging.ParseLevel(o.logLevel))
	}

	ctor, err := dataset.Get(o.sourceProvider)
	if err != nil {
		return nil, fmt.Errorf("pumpwise: %w", err)
	}
	src := ctor(cfg.Engine.TrainingDataFile)

	predictor := engine.New(
		cfg.Engine.Features,
		store.New(cfg.Engine.ModelDir),
		src,
		engine.Options{CrossValidation: cfg.Engine.CrossValidation},
	)

	return &Engine{
		cfg:       cfg,
		source:    src,
		predictor: predictor,
		detector:  anomaly.New(cfg.Engine.Features),
	}, nil
}

// Train loads the configured training source and runs a full training
// pass, replacing the owned model on success.
func (e *Engine) Train(ctx context.Context) (TrainingMetrics, error) {
	tbl, err := e.source.Load(ctx)
	if err != nil {
		return TrainingMetrics{}, fmt.Errorf("pumpwise: %w", err)
	}
	return e.predictor.Train(ctx, tbl)
}

// TrainFrom runs a full training pass on a caller-supplied table.
func (e *Engine) TrainFrom(ctx context.Context, tbl *Table) (TrainingMetrics, error) {
	return e.predictor.Train(ctx, tbl)
}

// Predict scores one snapshot. It never returns an error: failures
// come back as a result with RiskLevel "Unknown" and Error set.
func (e *Engine) Predict(ctx context.Context, snapshot Snapshot) Prediction {
	return e.predictor.Predict(ctx, snapshot)
}

// DetectAnomalies flags outlier rows in a historical batch. Pass a
// negative sensitivity to use the configured default.
func (e *Engine) DetectAnomalies(batch *Table, sensitivity float64) *Annotated {
	if sensitivity < 0 {
		sensitivity = e.cfg.Anomaly.Sensitivity
	}
	return e.detector.Detect(batch, sensitivity)
}

// Info reports the current model state.
func (e *Engine) Info() Info {
	return e.predictor.Info()
}

// PredictionThreshold is the configured probability at which
// collaborators should raise a failure alert.
func (e *Engine) PredictionThreshold() float64 {
	return e.cfg.Engine.PredictionThreshold
}
