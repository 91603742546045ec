// Package neural provides the driving policies: a compact feedforward
// network and a NEAT-genome wrapper, plus the generational evolvers that
// breed them.
package neural

import (
	"fmt"
	"math"
	"math/rand"
)

// FFNN is a simple two-layer feedforward driving network. The first output
// is steering in [-1, 1], the second throttle in [0, 1].
type FFNN struct {
	numInputs int
	numHidden int

	W1 [][]float64 // input -> hidden weights, [hidden][inputs]
	B1 []float64   // hidden biases
	W2 [][]float64 // hidden -> output weights, [outputs][hidden]
	B2 []float64   // output biases
}

// NumOutputs is fixed: steering and throttle.
const NumOutputs = 2

// NewFFNN creates a randomly initialized network.
func NewFFNN(rng *rand.Rand, numInputs, numHidden int) *FFNN {
	nn := &FFNN{
		numInputs: numInputs,
		numHidden: numHidden,
		W1:        make([][]float64, numHidden),
		B1:        make([]float64, numHidden),
		W2:        make([][]float64, NumOutputs),
		B2:        make([]float64, NumOutputs),
	}

	// Xavier initialization
	scale1 := math.Sqrt(2.0 / float64(numInputs))
	scale2 := math.Sqrt(2.0 / float64(numHidden))

	for i := range nn.W1 {
		nn.W1[i] = make([]float64, numInputs)
		for j := range nn.W1[i] {
			nn.W1[i][j] = rng.NormFloat64() * scale1
		}
	}
	for i := range nn.W2 {
		nn.W2[i] = make([]float64, numHidden)
		for j := range nn.W2[i] {
			nn.W2[i][j] = rng.NormFloat64() * scale2
		}
	}

	return nn
}

// NumInputs returns the expected input vector length.
func (nn *FFNN) NumInputs() int { return nn.numInputs }

// Activate computes the control outputs for one sensor frame.
// Returns [steer, throttle] with steer in [-1, 1] and throttle in [0, 1].
func (nn *FFNN) Activate(inputs []float64) ([]float64, error) {
	if len(inputs) != nn.numInputs {
		return nil, fmt.Errorf("expected %d inputs, got %d", nn.numInputs, len(inputs))
	}

	// Hidden layer with fast tanh activation
	// (tanh's |x|>4 branches are rarely taken, good for branch prediction)
	hidden := make([]float64, nn.numHidden)
	for i := 0; i < nn.numHidden; i++ {
		sum := nn.B1[i]
		for j := 0; j < nn.numInputs; j++ {
			sum += nn.W1[i][j] * inputs[j]
		}
		hidden[i] = tanh(sum)
	}

	out := make([]float64, NumOutputs)
	for i := 0; i < NumOutputs; i++ {
		sum := nn.B2[i]
		for j := 0; j < nn.numHidden; j++ {
			sum += nn.W2[i][j] * hidden[j]
		}
		out[i] = sum
	}

	// tanh for steering [-1,1], saturating linear for throttle [0,1]
	out[0] = tanh(out[0])
	out[1] = saturate01(out[1]*0.5 + 0.5)

	return out, nil
}

// Mutate perturbs all weights and biases with Gaussian noise.
func (nn *FFNN) Mutate(rng *rand.Rand, strength float64) {
	for i := range nn.W1 {
		for j := range nn.W1[i] {
			nn.W1[i][j] += rng.NormFloat64() * strength
		}
		nn.B1[i] += rng.NormFloat64() * strength
	}
	for i := range nn.W2 {
		for j := range nn.W2[i] {
			nn.W2[i][j] += rng.NormFloat64() * strength
		}
		nn.B2[i] += rng.NormFloat64() * strength
	}
}

// MutateSparse applies sparse per-weight mutation for stable lineages.
// rate: probability each weight mutates (e.g., 0.05)
// sigma: standard deviation of normal perturbation (e.g., 0.08)
// bigRate: probability of a large mutation (e.g., 0.01)
// bigSigma: sigma for large mutations (e.g., 0.4)
// Returns avgAbsDelta: the average absolute delta of all applied mutations.
func (nn *FFNN) MutateSparse(rng *rand.Rand, rate, sigma, bigRate, bigSigma float64) float64 {
	biasRate := rate * 0.5 // biases mutate at half the rate

	var totalDelta float64
	var count int

	mutate := func(w *float64) {
		var delta float64
		if rng.Float64() < bigRate {
			delta = rng.NormFloat64() * bigSigma
		} else {
			delta = rng.NormFloat64() * sigma
		}
		*w += delta
		totalDelta += math.Abs(delta)
		count++
	}

	for i := range nn.W1 {
		for j := range nn.W1[i] {
			if rng.Float64() < rate {
				mutate(&nn.W1[i][j])
			}
		}
		if rng.Float64() < biasRate {
			mutate(&nn.B1[i])
		}
	}
	for i := range nn.W2 {
		for j := range nn.W2[i] {
			if rng.Float64() < rate {
				mutate(&nn.W2[i][j])
			}
		}
		if rng.Float64() < biasRate {
			mutate(&nn.B2[i])
		}
	}

	if count == 0 {
		return 0
	}
	return totalDelta / float64(count)
}

// Clone creates a deep copy of the network.
func (nn *FFNN) Clone() *FFNN {
	clone := &FFNN{
		numInputs: nn.numInputs,
		numHidden: nn.numHidden,
		W1:        make([][]float64, nn.numHidden),
		B1:        append([]float64(nil), nn.B1...),
		W2:        make([][]float64, NumOutputs),
		B2:        append([]float64(nil), nn.B2...),
	}
	for i := range nn.W1 {
		clone.W1[i] = append([]float64(nil), nn.W1[i]...)
	}
	for i := range nn.W2 {
		clone.W2[i] = append([]float64(nil), nn.W2[i]...)
	}
	return clone
}

// saturate01 clamps x to [0, 1].
func saturate01(x float64) float64 {
	if x <= 0 {
		return 0
	}
	if x >= 1 {
		return 1
	}
	return x
}

// tanh uses a fast rational approximation. The rational form crosses 1 at
// x = 3 and overshoots slightly beyond it, so the result is clamped.
func tanh(x float64) float64 {
	if x > 4 {
		return 1
	}
	if x < -4 {
		return -1
	}
	x2 := x * x
	y := x * (27 + x2) / (27 + 9*x2)
	if y > 1 {
		return 1
	}
	if y < -1 {
		return -1
	}
	return y
}
