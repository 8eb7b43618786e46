package forecast

import (
	"math"
	"math/rand"
)

// MLP is a small feed-forward regression network: two ReLU hidden layers
// (100 and 50 units) and a linear output, trained with Adam on squared
// error for a bounded number of iterations. Inputs and target are
// standardized internally; predictions are mapped back to points.
type MLP struct {
	HiddenSizes  []int
	MaxIter      int
	LearningRate float64
	Seed         int64

	weights [][][]float64 // [layer][out][in]
	biases  [][]float64   // [layer][out]

	featMean []float64
	featStd  []float64
	yMean    float64
	yStd     float64
}

func NewMLP(seed int64) *MLP {
	return &MLP{
		HiddenSizes:  []int{100, 50},
		MaxIter:      1000,
		LearningRate: 0.001,
		Seed:         seed,
	}
}

func (m *MLP) Name() string { return "Neural Network" }

func (m *MLP) Fit(x [][]float64, y []float64) {
	n := len(x)
	if n == 0 {
		return
	}
	p := len(x[0])
	rng := rand.New(rand.NewSource(m.Seed))

	m.fitScaler(x, y)
	xs := m.scaleX(x)
	ys := make([]float64, n)
	for i, v := range y {
		ys[i] = (v - m.yMean) / m.yStd
	}

	sizes := append([]int{p}, append(append([]int{}, m.HiddenSizes...), 1)...)
	layers := len(sizes) - 1
	m.weights = make([][][]float64, layers)
	m.biases = make([][]float64, layers)
	for l := 0; l < layers; l++ {
		in, out := sizes[l], sizes[l+1]
		// Glorot-uniform init keeps early activations in range.
		bound := math.Sqrt(6.0 / float64(in+out))
		m.weights[l] = make([][]float64, out)
		m.biases[l] = make([]float64, out)
		for j := 0; j < out; j++ {
			m.weights[l][j] = make([]float64, in)
			for k := 0; k < in; k++ {
				m.weights[l][j][k] = (rng.Float64()*2 - 1) * bound
			}
		}
	}

	// Adam state.
	mw, vw := zerosLike(m.weights), zerosLike(m.weights)
	mb, vb := zerosLikeBias(m.biases), zerosLikeBias(m.biases)
	const beta1, beta2, eps = 0.9, 0.999, 1e-8

	gradW := zerosLike(m.weights)
	gradB := zerosLikeBias(m.biases)

	for iter := 1; iter <= m.MaxIter; iter++ {
		zeroFill(gradW, gradB)

		for i := 0; i < n; i++ {
			acts, pre := m.forward(xs[i])
			pred := acts[layers][0]

			// Backprop squared-error loss.
			delta := []float64{2 * (pred - ys[i]) / float64(n)}
			for l := layers - 1; l >= 0; l-- {
				prev := acts[l]
				for j, d := range delta {
					gradB[l][j] += d
					for k, a := range prev {
						gradW[l][j][k] += d * a
					}
				}
				if l == 0 {
					break
				}
				next := make([]float64, len(prev))
				for k := range next {
					var sum float64
					for j, d := range delta {
						sum += d * m.weights[l][j][k]
					}
					if pre[l-1][k] <= 0 {
						sum = 0 // ReLU gate
					}
					next[k] = sum
				}
				delta = next
			}
		}

		// Adam update.
		correct1 := 1 - math.Pow(beta1, float64(iter))
		correct2 := 1 - math.Pow(beta2, float64(iter))
		for l := range m.weights {
			for j := range m.weights[l] {
				for k := range m.weights[l][j] {
					g := gradW[l][j][k]
					mw[l][j][k] = beta1*mw[l][j][k] + (1-beta1)*g
					vw[l][j][k] = beta2*vw[l][j][k] + (1-beta2)*g*g
					m.weights[l][j][k] -= m.LearningRate * (mw[l][j][k] / correct1) / (math.Sqrt(vw[l][j][k]/correct2) + eps)
				}
				g := gradB[l][j]
				mb[l][j] = beta1*mb[l][j] + (1-beta1)*g
				vb[l][j] = beta2*vb[l][j] + (1-beta2)*g*g
				m.biases[l][j] -= m.LearningRate * (mb[l][j] / correct1) / (math.Sqrt(vb[l][j]/correct2) + eps)
			}
		}
	}
}

func (m *MLP) Predict(x [][]float64) []float64 {
	out := make([]float64, len(x))
	if m.weights == nil {
		return out
	}
	xs := m.scaleX(x)
	for i := range xs {
		acts, _ := m.forward(xs[i])
		out[i] = acts[len(acts)-1][0]*m.yStd + m.yMean
	}
	return out
}

// forward returns per-layer activations (index 0 is the input) and the
// hidden layers' pre-activation values for the ReLU gradient.
func (m *MLP) forward(row []float64) ([][]float64, [][]float64) {
	layers := len(m.weights)
	acts := make([][]float64, layers+1)
	pre := make([][]float64, layers-1)
	acts[0] = row
	for l := 0; l < layers; l++ {
		out := make([]float64, len(m.weights[l]))
		for j := range out {
			z := m.biases[l][j]
			for k, a := range acts[l] {
				z += m.weights[l][j][k] * a
			}
			out[j] = z
		}
		if l < layers-1 {
			pre[l] = append([]float64(nil), out...)
			for j, z := range out {
				if z < 0 {
					out[j] = 0
				}
			}
		}
		acts[l+1] = out
	}
	return acts, pre
}

func (m *MLP) fitScaler(x [][]float64, y []float64) {
	n := float64(len(x))
	p := len(x[0])
	m.featMean = make([]float64, p)
	m.featStd = make([]float64, p)
	for _, row := range x {
		for j, v := range row {
			m.featMean[j] += v
		}
	}
	for j := range m.featMean {
		m.featMean[j] /= n
	}
	for _, row := range x {
		for j, v := range row {
			d := v - m.featMean[j]
			m.featStd[j] += d * d
		}
	}
	for j := range m.featStd {
		m.featStd[j] = math.Sqrt(m.featStd[j] / n)
		if m.featStd[j] == 0 {
			m.featStd[j] = 1
		}
	}

	for _, v := range y {
		m.yMean += v
	}
	m.yMean /= n
	for _, v := range y {
		d := v - m.yMean
		m.yStd += d * d
	}
	m.yStd = math.Sqrt(m.yStd / n)
	if m.yStd == 0 {
		m.yStd = 1
	}
}

func (m *MLP) scaleX(x [][]float64) [][]float64 {
	out := make([][]float64, len(x))
	for i, row := range x {
		scaled := make([]float64, len(row))
		for j, v := range row {
			scaled[j] = (v - m.featMean[j]) / m.featStd[j]
		}
		out[i] = scaled
	}
	return out
}

func zerosLike(w [][][]float64) [][][]float64 {
	out := make([][][]float64, len(w))
	for l := range w {
		out[l] = make([][]float64, len(w[l]))
		for j := range w[l] {
			out[l][j] = make([]float64, len(w[l][j]))
		}
	}
	return out
}

func zerosLikeBias(b [][]float64) [][]float64 {
	out := make([][]float64, len(b))
	for l := range b {
		out[l] = make([]float64, len(b[l]))
	}
	return out
}

func zeroFill(w [][][]float64, b [][]float64) {
	for l := range w {
		for j := range w[l] {
			for k := range w[l][j] {
				w[l][j][k] = 0
			}
			b[l][j] = 0
		}
	}
}
