// Package neural provides the generic dense feedforward network used as
// a creature brain. The package has no knowledge of creatures; it maps
// an input vector to the index of the strongest output neuron.
package neural

import (
	"encoding/json"
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// Net is a dense feedforward network with ReLU activation on every
// layer transition, including the output layer. Weights[l] maps layer l
// activations to layer l+1; Biases[l] is added after the multiply.
type Net struct {
	sizes   []int
	weights []*mat.Dense
	biases  []*mat.VecDense

	// acts[l] holds the last-computed activation of layer l;
	// acts[0] is the input vector written via SetInput.
	acts [][]float64
}

// NewNet creates a network with the given layer sizes and every weight
// and bias drawn uniformly from [lo, hi].
func NewNet(sizes []int, lo, hi float64, rng *rand.Rand) *Net {
	n := &Net{
		sizes:   append([]int(nil), sizes...),
		weights: make([]*mat.Dense, len(sizes)-1),
		biases:  make([]*mat.VecDense, len(sizes)-1),
		acts:    make([][]float64, len(sizes)),
	}

	for l := range n.acts {
		n.acts[l] = make([]float64, sizes[l])
	}

	for l := 0; l < len(sizes)-1; l++ {
		rows, cols := sizes[l+1], sizes[l]
		w := make([]float64, rows*cols)
		for i := range w {
			w[i] = lo + rng.Float64()*(hi-lo)
		}
		b := make([]float64, rows)
		for i := range b {
			b[i] = lo + rng.Float64()*(hi-lo)
		}
		n.weights[l] = mat.NewDense(rows, cols, w)
		n.biases[l] = mat.NewVecDense(rows, b)
	}

	return n
}

// NumLayers returns the layer count, inputs and outputs included.
func (n *Net) NumLayers() int { return len(n.sizes) }

// LayerSize returns the neuron count of layer l.
func (n *Net) LayerSize(l int) int { return n.sizes[l] }

// NumInputs returns the input layer size.
func (n *Net) NumInputs() int { return n.sizes[0] }

// NumOutputs returns the output layer size.
func (n *Net) NumOutputs() int { return n.sizes[len(n.sizes)-1] }

// SetInput writes one input neuron value.
func (n *Net) SetInput(idx int, v float64) {
	n.acts[0][idx] = v
}

// SetWeight overwrites a single weight between layer l and l+1.
func (n *Net) SetWeight(l, row, col int, v float64) {
	n.weights[l].Set(row, col, v)
}

// SetBias overwrites a single bias of layer l+1.
func (n *Net) SetBias(l, row int, v float64) {
	n.biases[l].SetVec(row, v)
}

// Evaluate feeds the current input vector forward and returns the index
// of the output neuron with the strictly largest activation. Ties break
// to the lowest index.
func (n *Net) Evaluate() int {
	for l := 0; l < len(n.weights); l++ {
		in := mat.NewVecDense(n.sizes[l], n.acts[l])
		var out mat.VecDense
		out.MulVec(n.weights[l], in)
		out.AddVec(&out, n.biases[l])

		dst := n.acts[l+1]
		for i := range dst {
			v := out.AtVec(i)
			if v < 0 {
				v = 0
			}
			dst[i] = v
		}
	}

	outputs := n.acts[len(n.acts)-1]
	best := 0
	for i := 1; i < len(outputs); i++ {
		if outputs[i] > outputs[best] {
			best = i
		}
	}
	return best
}

// Activations returns the last-computed activation vector of layer l.
// The slice is live; callers must not modify it.
func (n *Net) Activations(l int) []float64 { return n.acts[l] }

// Outputs returns the last-computed output layer activations.
func (n *Net) Outputs() []float64 { return n.acts[len(n.acts)-1] }

// Clone returns a deep copy of the network, activations included.
func (n *Net) Clone() *Net {
	c := &Net{
		sizes:   append([]int(nil), n.sizes...),
		weights: make([]*mat.Dense, len(n.weights)),
		biases:  make([]*mat.VecDense, len(n.biases)),
		acts:    make([][]float64, len(n.acts)),
	}
	for l := range n.weights {
		c.weights[l] = mat.DenseCopyOf(n.weights[l])
		c.biases[l] = mat.VecDenseCopyOf(n.biases[l])
	}
	for l := range n.acts {
		c.acts[l] = append([]float64(nil), n.acts[l]...)
	}
	return c
}

// Mutate walks every individual weight and bias and, independently with
// probability prob, replaces it with a fresh uniform sample from
// [lo, hi]. This is a full overwrite of the chosen scalar, not a
// perturbation; it is the only source of genetic variation.
func (n *Net) Mutate(rng *rand.Rand, prob, lo, hi float64) {
	for l := range n.weights {
		rows, cols := n.weights[l].Dims()
		for i := 0; i < rows; i++ {
			for j := 0; j < cols; j++ {
				if rng.Float64() <= prob {
					n.weights[l].Set(i, j, lo+rng.Float64()*(hi-lo))
				}
			}
			if rng.Float64() <= prob {
				n.biases[l].SetVec(i, lo+rng.Float64()*(hi-lo))
			}
		}
	}
}

// netJSON is the serialized form: weights flattened row-major per layer.
type netJSON struct {
	Sizes   []int       `json:"sizes"`
	Weights [][]float64 `json:"weights"`
	Biases  [][]float64 `json:"biases"`
}

// MarshalJSON implements json.Marshaler.
func (n *Net) MarshalJSON() ([]byte, error) {
	nj := netJSON{
		Sizes:   n.sizes,
		Weights: make([][]float64, len(n.weights)),
		Biases:  make([][]float64, len(n.biases)),
	}
	for l := range n.weights {
		rows, cols := n.weights[l].Dims()
		flat := make([]float64, 0, rows*cols)
		for i := 0; i < rows; i++ {
			flat = append(flat, n.weights[l].RawRowView(i)...)
		}
		nj.Weights[l] = flat
		nj.Biases[l] = append([]float64(nil), n.biases[l].RawVector().Data...)
	}
	return json.Marshal(nj)
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *Net) UnmarshalJSON(data []byte) error {
	var nj netJSON
	if err := json.Unmarshal(data, &nj); err != nil {
		return err
	}
	if len(nj.Sizes) < 2 {
		return fmt.Errorf("network needs at least 2 layers, got %d", len(nj.Sizes))
	}
	if len(nj.Weights) != len(nj.Sizes)-1 || len(nj.Biases) != len(nj.Sizes)-1 {
		return fmt.Errorf("layer count mismatch: %d sizes, %d weight matrices, %d bias vectors",
			len(nj.Sizes), len(nj.Weights), len(nj.Biases))
	}

	n.sizes = nj.Sizes
	n.weights = make([]*mat.Dense, len(nj.Weights))
	n.biases = make([]*mat.VecDense, len(nj.Biases))
	n.acts = make([][]float64, len(nj.Sizes))
	for l := range n.acts {
		n.acts[l] = make([]float64, nj.Sizes[l])
	}
	for l := range nj.Weights {
		rows, cols := nj.Sizes[l+1], nj.Sizes[l]
		if len(nj.Weights[l]) != rows*cols {
			return fmt.Errorf("layer %d: want %d weights, got %d", l, rows*cols, len(nj.Weights[l]))
		}
		if len(nj.Biases[l]) != rows {
			return fmt.Errorf("layer %d: want %d biases, got %d", l, rows, len(nj.Biases[l]))
		}
		n.weights[l] = mat.NewDense(rows, cols, nj.Weights[l])
		n.biases[l] = mat.NewVecDense(rows, nj.Biases[l])
	}
	return nil
}
