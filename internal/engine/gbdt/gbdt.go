// Package gbdt implements a gradient-boosted decision tree classifier
// for binary failure prediction: logistic loss, Newton leaf weights,
// row and column subsampling, and gain-based feature importances.
package gbdt

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
)

// Config holds the boosting hyperparameters.
type Config struct {
	Trees        int     `json:"trees"`
	MaxDepth     int     `json:"max_depth"`
	LearningRate float64 `json:"learning_rate"`
	Subsample    float64 `json:"subsample"`  // row fraction per tree
	ColSample    float64 `json:"col_sample"` // feature fraction per tree
	MinLeaf      int     `json:"min_leaf"`
	Seed         int64   `json:"seed"`
}

// DefaultConfig returns the production hyperparameters: 200 trees,
// depth 8, learning rate 0.05, 0.8 row/column subsampling.
func DefaultConfig() Config {
	return Config{
		Trees:        200,
		MaxDepth:     8,
		LearningRate: 0.05,
		Subsample:    0.8,
		ColSample:    0.8,
		MinLeaf:      1,
		Seed:         42,
	}
}

// ErrNotFitted reports prediction before Fit.
var ErrNotFitted = errors.New("gbdt: predict before fit")

// Classifier is a boosted ensemble of regression trees producing a
// failure probability. Read-only after Fit.
type Classifier struct {
	cfg        Config
	baseScore  float64
	trees      []*Node
	gain       []float64
	nFeatures  int
	fitted     bool
}

// New creates an untrained Classifier.
func New(cfg Config) *Classifier {
	return &Classifier{cfg: cfg}
}

// State is the serializable snapshot of a trained Classifier.
type State struct {
	Config      Config    `json:"config"`
	BaseScore   float64   `json:"base_score"`
	NumFeatures int       `json:"num_features"`
	Trees       []*Node   `json:"trees"`
	Gain        []float64 `json:"gain"`
}

// State snapshots the trained model for persistence.
func (c *Classifier) State() State {
	return State{
		Config:      c.cfg,
		BaseScore:   c.baseScore,
		NumFeatures: c.nFeatures,
		Trees:       c.trees,
		Gain:        append([]float64(nil), c.gain...),
	}
}

// Restore rebuilds a trained Classifier from a persisted State.
func Restore(s State) (*Classifier, error) {
	if len(s.Trees) == 0 || s.NumFeatures <= 0 {
		return nil, fmt.Errorf("gbdt: restore: state has no trained ensemble")
	}
	return &Classifier{
		cfg:       s.Config,
		baseScore: s.BaseScore,
		trees:     s.Trees,
		gain:      append([]float64(nil), s.Gain...),
		nFeatures: s.NumFeatures,
		fitted:    true,
	}, nil
}

// Fitted reports whether the classifier has a trained ensemble.
func (c *Classifier) Fitted() bool { return c.fitted }

// Fit trains the ensemble on a row-major matrix and binary labels.
// Deterministic for a fixed Config.Seed.
func (c *Classifier) Fit(X [][]float64, y []int) error {
	n := len(X)
	if n == 0 {
		return fmt.Errorf("gbdt: fit on empty matrix")
	}
	if len(y) != n {
		return fmt.Errorf("gbdt: %d rows but %d labels", n, len(y))
	}
	nf := len(X[0])

	pos := 0
	for _, v := range y {
		if v == 1 {
			pos++
		}
	}
	prior := clamp(float64(pos)/float64(n), 1e-6, 1-1e-6)
	c.baseScore = math.Log(prior / (1 - prior))
	c.nFeatures = nf
	c.gain = make([]float64, nf)
	c.trees = make([]*Node, 0, c.cfg.Trees)

	rng := rand.New(rand.NewSource(c.cfg.Seed))
	rowsPerTree := max(1, int(c.cfg.Subsample*float64(n)))
	colsPerTree := max(1, int(c.cfg.ColSample*float64(nf)))

	F := make([]float64, n)
	for i := range F {
		F[i] = c.baseScore
	}
	grad := make([]float64, n)
	hess := make([]float64, n)

	for m := 0; m < c.cfg.Trees; m++ {
		for i := range F {
			p := sigmoid(F[i])
			grad[i] = float64(y[i]) - p
			hess[i] = p * (1 - p)
		}

		rows := rng.Perm(n)[:rowsPerTree]
		cols := rng.Perm(nf)[:colsPerTree]

		b := &treeBuilder{
			X:        X,
			grad:     grad,
			hess:     hess,
			cols:     cols,
			maxDepth: c.cfg.MaxDepth,
			minLeaf:  c.cfg.MinLeaf,
			gain:     c.gain,
		}
		tree := b.build(rows, 0)
		c.trees = append(c.trees, tree)

		for i := range F {
			F[i] += c.cfg.LearningRate * tree.predict(X[i])
		}
	}

	c.fitted = true
	return nil
}

// PredictProba returns the probability of the failure class.
func (c *Classifier) PredictProba(x []float64) (float64, error) {
	if !c.fitted {
		return 0, ErrNotFitted
	}
	if len(x) != c.nFeatures {
		return 0, fmt.Errorf("gbdt: got %d features, trained with %d", len(x), c.nFeatures)
	}
	score := c.baseScore
	for _, t := range c.trees {
		score += c.cfg.LearningRate * t.predict(x)
	}
	return sigmoid(score), nil
}

// Predict returns the hard class label at the 0.5 probability cut.
func (c *Classifier) Predict(x []float64) (int, error) {
	p, err := c.PredictProba(x)
	if err != nil {
		return 0, err
	}
	if p >= 0.5 {
		return 1, nil
	}
	return 0, nil
}

// FeatureImportances returns per-feature split gains normalized to
// sum to 1. All-zero when no split was ever made.
func (c *Classifier) FeatureImportances() []float64 {
	out := make([]float64, len(c.gain))
	var total float64
	for _, g := range c.gain {
		total += g
	}
	if total == 0 {
		return out
	}
	for i, g := range c.gain {
		out[i] = g / total
	}
	return out
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
