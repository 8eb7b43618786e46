package forecast

import (
	"math/rand"
	"sort"
)

// regressionTree is the shared base learner for the tree ensembles: a
// CART-style tree splitting on squared-error reduction.
type regressionTree struct {
	maxDepth       int
	minSamplesLeaf int
	// maxFeatures bounds the random feature subset considered per split;
	// 0 means all features.
	maxFeatures int
	rng         *rand.Rand

	root *treeNode
}

type treeNode struct {
	leaf      bool
	value     float64
	feature   int
	threshold float64
	left      *treeNode
	right     *treeNode
}

func (t *regressionTree) fit(x [][]float64, y []float64, indices []int) {
	t.root = t.build(x, y, indices, 0)
}

func (t *regressionTree) predict(row []float64) float64 {
	node := t.root
	for !node.leaf {
		if row[node.feature] <= node.threshold {
			node = node.left
		} else {
			node = node.right
		}
	}
	return node.value
}

func (t *regressionTree) build(x [][]float64, y []float64, indices []int, depth int) *treeNode {
	if depth >= t.maxDepth || len(indices) < 2*t.minSamplesLeaf {
		return &treeNode{leaf: true, value: mean(y, indices)}
	}

	feature, threshold, ok := t.bestSplit(x, y, indices)
	if !ok {
		return &treeNode{leaf: true, value: mean(y, indices)}
	}

	var left, right []int
	for _, i := range indices {
		if x[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) < t.minSamplesLeaf || len(right) < t.minSamplesLeaf {
		return &treeNode{leaf: true, value: mean(y, indices)}
	}

	return &treeNode{
		feature:   feature,
		threshold: threshold,
		left:      t.build(x, y, left, depth+1),
		right:     t.build(x, y, right, depth+1),
	}
}

// bestSplit scans candidate features for the threshold minimizing the
// summed squared error of the two partitions, using sorted prefix sums so
// each feature costs O(n log n).
func (t *regressionTree) bestSplit(x [][]float64, y []float64, indices []int) (int, float64, bool) {
	nFeatures := len(x[indices[0]])
	candidates := t.featureCandidates(nFeatures)

	bestFeature := -1
	var bestThreshold, bestSSE float64
	found := false

	sorted := make([]int, len(indices))
	for _, feature := range candidates {
		copy(sorted, indices)
		sort.Slice(sorted, func(a, b int) bool {
			return x[sorted[a]][feature] < x[sorted[b]][feature]
		})

		// Prefix sums over the sorted order.
		var sumLeft, sqLeft float64
		var sumTotal, sqTotal float64
		for _, i := range sorted {
			sumTotal += y[i]
			sqTotal += y[i] * y[i]
		}

		for pos := 0; pos < len(sorted)-1; pos++ {
			i := sorted[pos]
			sumLeft += y[i]
			sqLeft += y[i] * y[i]

			// Can't split between equal feature values.
			if x[sorted[pos]][feature] == x[sorted[pos+1]][feature] {
				continue
			}

			nLeft := float64(pos + 1)
			nRight := float64(len(sorted) - pos - 1)
			sumRight := sumTotal - sumLeft
			sqRight := sqTotal - sqLeft

			sse := (sqLeft - sumLeft*sumLeft/nLeft) + (sqRight - sumRight*sumRight/nRight)
			if !found || sse < bestSSE {
				found = true
				bestSSE = sse
				bestFeature = feature
				bestThreshold = (x[sorted[pos]][feature] + x[sorted[pos+1]][feature]) / 2
			}
		}
	}

	return bestFeature, bestThreshold, found
}

func (t *regressionTree) featureCandidates(nFeatures int) []int {
	if t.maxFeatures <= 0 || t.maxFeatures >= nFeatures {
		all := make([]int, nFeatures)
		for i := range all {
			all[i] = i
		}
		return all
	}
	perm := t.rng.Perm(nFeatures)
	return perm[:t.maxFeatures]
}

func mean(y []float64, indices []int) float64 {
	if len(indices) == 0 {
		return 0
	}
	var sum float64
	for _, i := range indices {
		sum += y[i]
	}
	return sum / float64(len(indices))
}
