package anomaly

import (
	"fmt"
	"math"
	"math/rand"
)

// ForestConfig holds the isolation forest hyperparameters.
type ForestConfig struct {
	Trees      int
	SampleSize int
	Seed       int64
}

// DefaultForestConfig returns 100 trees over 256-row subsamples with a
// fixed seed, so identical batches always score identically.
func DefaultForestConfig() ForestConfig {
	return ForestConfig{Trees: 100, SampleSize: 256, Seed: 42}
}

// Forest is an isolation forest: rows that isolate in few random
// splits score close to 1, deeply buried rows close to 0.
type Forest struct {
	cfg    ForestConfig
	trees  []*isoNode
	cNorm  float64
	fitted bool
}

type isoNode struct {
	feature   int
	threshold float64
	left      *isoNode
	right     *isoNode
	size      int // external node only
}

// NewForest creates an unfitted Forest.
func NewForest(cfg ForestConfig) *Forest {
	return &Forest{cfg: cfg}
}

// Fit grows the forest on the given matrix. Each tree sees a random
// subsample of at most SampleSize rows.
func (f *Forest) Fit(X [][]float64) error {
	n := len(X)
	if n == 0 {
		return fmt.Errorf("anomaly: fit on empty matrix")
	}

	sample := f.cfg.SampleSize
	if sample > n {
		sample = n
	}
	heightLimit := int(math.Ceil(math.Log2(float64(sample))))
	if heightLimit < 1 {
		heightLimit = 1
	}

	rng := rand.New(rand.NewSource(f.cfg.Seed))
	f.trees = make([]*isoNode, f.cfg.Trees)
	for t := range f.trees {
		rows := rng.Perm(n)[:sample]
		f.trees[t] = growIsoTree(X, rows, 0, heightLimit, rng)
	}
	f.cNorm = avgPathLength(sample)
	f.fitted = true
	return nil
}

// Score returns the anomaly score of one row in (0, 1], higher meaning
// more anomalous.
func (f *Forest) Score(x []float64) (float64, error) {
	if !f.fitted {
		return 0, fmt.Errorf("anomaly: score before fit")
	}
	var total float64
	for _, t := range f.trees {
		total += pathLength(t, x, 0)
	}
	mean := total / float64(len(f.trees))
	return math.Pow(2, -mean/f.cNorm), nil
}

func growIsoTree(X [][]float64, rows []int, depth, limit int, rng *rand.Rand) *isoNode {
	if depth >= limit || len(rows) <= 1 {
		return &isoNode{size: len(rows)}
	}

	// Candidate features must have spread within this sample.
	nf := len(X[rows[0]])
	var candidates []int
	for f := 0; f < nf; f++ {
		lo, hi := bounds(X, rows, f)
		if hi > lo {
			candidates = append(candidates, f)
		}
	}
	if len(candidates) == 0 {
		return &isoNode{size: len(rows)}
	}

	feature := candidates[rng.Intn(len(candidates))]
	lo, hi := bounds(X, rows, feature)
	threshold := lo + rng.Float64()*(hi-lo)

	var left, right []int
	for _, r := range rows {
		if X[r][feature] < threshold {
			left = append(left, r)
		} else {
			right = append(right, r)
		}
	}

	return &isoNode{
		feature:   feature,
		threshold: threshold,
		left:      growIsoTree(X, left, depth+1, limit, rng),
		right:     growIsoTree(X, right, depth+1, limit, rng),
	}
}

func pathLength(n *isoNode, x []float64, depth int) float64 {
	for n.left != nil {
		if x[n.feature] < n.threshold {
			n = n.left
		} else {
			n = n.right
		}
		depth++
	}
	return float64(depth) + avgPathLength(n.size)
}

func bounds(X [][]float64, rows []int, f int) (lo, hi float64) {
	lo = math.Inf(1)
	hi = math.Inf(-1)
	for _, r := range rows {
		v := X[r][f]
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}

// avgPathLength is the expected path length of an unsuccessful BST
// search over n points, the standard isolation-forest normalizer.
func avgPathLength(n int) float64 {
	switch {
	case n <= 1:
		return 0
	case n == 2:
		return 1
	default:
		h := math.Log(float64(n-1)) + 0.5772156649015329
		return 2*h - 2*float64(n-1)/float64(n)
	}
}
