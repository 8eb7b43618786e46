package forecast

import (
	"math"
	"math/rand"
)

// RandomForest averages bootstrap-sampled regression trees, each split
// restricted to a random sqrt(p) feature subset.
type RandomForest struct {
	NumTrees int
	MaxDepth int
	Seed     int64

	trees []*regressionTree
}

func NewRandomForest(seed int64) *RandomForest {
	return &RandomForest{NumTrees: 100, MaxDepth: 10, Seed: seed}
}

func (f *RandomForest) Name() string { return "Random Forest" }

func (f *RandomForest) Fit(x [][]float64, y []float64) {
	rng := rand.New(rand.NewSource(f.Seed))
	n := len(x)
	nFeatures := 0
	if n > 0 {
		nFeatures = len(x[0])
	}
	maxFeatures := int(math.Sqrt(float64(nFeatures)))
	if maxFeatures < 1 {
		maxFeatures = 1
	}

	f.trees = make([]*regressionTree, f.NumTrees)
	for t := 0; t < f.NumTrees; t++ {
		sample := make([]int, n)
		for i := range sample {
			sample[i] = rng.Intn(n)
		}
		tree := &regressionTree{
			maxDepth:       f.MaxDepth,
			minSamplesLeaf: 1,
			maxFeatures:    maxFeatures,
			rng:            rng,
		}
		tree.fit(x, y, sample)
		f.trees[t] = tree
	}
}

func (f *RandomForest) Predict(x [][]float64) []float64 {
	out := make([]float64, len(x))
	for i, row := range x {
		var sum float64
		for _, tree := range f.trees {
			sum += tree.predict(row)
		}
		out[i] = sum / float64(len(f.trees))
	}
	return out
}
