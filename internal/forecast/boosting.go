package forecast

import "math/rand"

// boostedTrees is stage-wise gradient boosting on squared error: each
// shallow tree fits the running residuals and is added with shrinkage.
// Lambda applies XGBoost-style L2 regularization to leaf values.
type boostedTrees struct {
	name         string
	numTrees     int
	maxDepth     int
	learningRate float64
	lambda       float64
	seed         int64

	basePrediction float64
	trees          []*regressionTree
}

// NewGradientBoosting mirrors a stock gradient boosting regressor:
// 100 depth-3 trees at a 0.1 learning rate.
func NewGradientBoosting(seed int64) Model {
	return &boostedTrees{
		name:         "Gradient Boosting",
		numTrees:     100,
		maxDepth:     3,
		learningRate: 0.1,
		seed:         seed,
	}
}

// NewXGBoost mirrors XGBoost's regressor defaults: depth-6 trees, a 0.3
// learning rate, and L2-regularized leaves.
func NewXGBoost(seed int64) Model {
	return &boostedTrees{
		name:         "XGBoost",
		numTrees:     100,
		maxDepth:     6,
		learningRate: 0.3,
		lambda:       1.0,
		seed:         seed,
	}
}

func (b *boostedTrees) Name() string { return b.name }

func (b *boostedTrees) Fit(x [][]float64, y []float64) {
	n := len(x)
	rng := rand.New(rand.NewSource(b.seed))

	var sum float64
	for _, v := range y {
		sum += v
	}
	b.basePrediction = 0
	if n > 0 {
		b.basePrediction = sum / float64(n)
	}

	indices := make([]int, n)
	current := make([]float64, n)
	residuals := make([]float64, n)
	for i := range indices {
		indices[i] = i
		current[i] = b.basePrediction
	}

	b.trees = make([]*regressionTree, 0, b.numTrees)
	for t := 0; t < b.numTrees; t++ {
		for i := range residuals {
			residuals[i] = y[i] - current[i]
		}
		tree := &regressionTree{
			maxDepth:       b.maxDepth,
			minSamplesLeaf: 1,
			rng:            rng,
		}
		tree.fit(x, residuals, indices)
		if b.lambda > 0 {
			shrinkLeaves(tree.root, b.lambda, countLeafSamples(tree, x, indices))
		}
		b.trees = append(b.trees, tree)
		for i, row := range x {
			current[i] += b.learningRate * tree.predict(row)
		}
	}
}

func (b *boostedTrees) Predict(x [][]float64) []float64 {
	out := make([]float64, len(x))
	for i, row := range x {
		pred := b.basePrediction
		for _, tree := range b.trees {
			pred += b.learningRate * tree.predict(row)
		}
		out[i] = pred
	}
	return out
}

// countLeafSamples maps each leaf to the number of training rows routed
// into it, needed to rescale leaf values under L2 regularization.
func countLeafSamples(tree *regressionTree, x [][]float64, indices []int) map[*treeNode]int {
	counts := make(map[*treeNode]int)
	for _, i := range indices {
		node := tree.root
		for !node.leaf {
			if x[i][node.feature] <= node.threshold {
				node = node.left
			} else {
				node = node.right
			}
		}
		counts[node]++
	}
	return counts
}

// shrinkLeaves rescales a leaf's mean m over n samples to n*m/(n+lambda),
// the closed-form L2-regularized leaf weight for squared error.
func shrinkLeaves(node *treeNode, lambda float64, counts map[*treeNode]int) {
	if node == nil {
		return
	}
	if node.leaf {
		n := float64(counts[node])
		if n > 0 {
			node.value = n * node.value / (n + lambda)
		}
		return
	}
	shrinkLeaves(node.left, lambda, counts)
	shrinkLeaves(node.right, lambda, counts)
}
