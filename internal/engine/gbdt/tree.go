package gbdt

import "sort"

// Node is one node of a regression tree. Exported for JSON
// persistence of trained models.
type Node struct {
	Leaf      bool    `json:"leaf,omitempty"`
	Value     float64 `json:"value,omitempty"`
	Feature   int     `json:"feature,omitempty"`
	Threshold float64 `json:"threshold,omitempty"`
	Left      *Node   `json:"left,omitempty"`
	Right     *Node   `json:"right,omitempty"`
}

// predict walks the tree for one feature vector.
func (n *Node) predict(x []float64) float64 {
	for !n.Leaf {
		if x[n.Feature] < n.Threshold {
			n = n.Left
		} else {
			n = n.Right
		}
	}
	return n.Value
}

// l2 regularization on leaf weights, XGBoost-style.
const lambda = 1.0

// treeBuilder grows one regression tree on gradient/hessian targets.
type treeBuilder struct {
	X        [][]float64
	grad     []float64
	hess     []float64
	cols     []int // candidate feature indices for this tree
	maxDepth int
	minLeaf  int
	gain     []float64 // accumulated split gain per feature, shared across trees
}

func (b *treeBuilder) build(rows []int, depth int) *Node {
	var sumG, sumH float64
	for _, r := range rows {
		sumG += b.grad[r]
		sumH += b.hess[r]
	}
	leaf := &Node{Leaf: true, Value: sumG / (sumH + lambda)}

	if depth >= b.maxDepth || len(rows) < 2*b.minLeaf {
		return leaf
	}

	feature, threshold, gain := b.bestSplit(rows, sumG, sumH)
	if gain <= 0 {
		return leaf
	}
	b.gain[feature] += gain

	var left, right []int
	for _, r := range rows {
		if b.X[r][feature] < threshold {
			left = append(left, r)
		} else {
			right = append(right, r)
		}
	}

	return &Node{
		Feature:   feature,
		Threshold: threshold,
		Left:      b.build(left, depth+1),
		Right:     b.build(right, depth+1),
	}
}

// bestSplit scans the candidate features for the split maximizing the
// regularized gain. Returns gain 0 when no admissible split exists.
func (b *treeBuilder) bestSplit(rows []int, sumG, sumH float64) (feature int, threshold, gain float64) {
	parent := sumG * sumG / (sumH + lambda)

	order := make([]int, len(rows))
	for _, f := range b.cols {
		copy(order, rows)
		sort.Slice(order, func(i, j int) bool {
			return b.X[order[i]][f] < b.X[order[j]][f]
		})

		var gl, hl float64
		for k := 0; k < len(order)-1; k++ {
			r := order[k]
			gl += b.grad[r]
			hl += b.hess[r]

			lo := b.X[r][f]
			hi := b.X[order[k+1]][f]
			if lo == hi {
				continue
			}
			if k+1 < b.minLeaf || len(order)-k-1 < b.minLeaf {
				continue
			}

			gr := sumG - gl
			hr := sumH - hl
			g := gl*gl/(hl+lambda) + gr*gr/(hr+lambda) - parent
			if g > gain {
				gain = g
				feature = f
				threshold = lo + (hi-lo)/2
			}
		}
	}

	return feature, threshold, gain
}
