package ml

import (
	"fmt"

	"gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// Network shape: 8 → 32 → 16 → (dropout 0.2) → 8 → 1, sigmoid output.
// Weight-only layers, Glorot-uniform initialization.
const (
	hidden1     = 32
	hidden2     = 16
	hidden3     = 8
	dropoutRate = 0.2
)

// Parameters is an immutable snapshot of the regressor's weights.
// Serving reads a snapshot through an atomic pointer; training fits a
// clone and swaps the pointer only on success, so a Parameters value is
// never mutated after publication.
type Parameters struct {
	W0, W1, W2, W3 *tensor.Dense
}

// NewParameters returns freshly initialized weights.
func NewParameters() *Parameters {
	g := gorgonia.NewGraph()
	w0 := gorgonia.NewMatrix(g, tensor.Float64, gorgonia.WithShape(FeatureDim, hidden1), gorgonia.WithName("w0"), gorgonia.WithInit(gorgonia.GlorotU(1.0)))
	w1 := gorgonia.NewMatrix(g, tensor.Float64, gorgonia.WithShape(hidden1, hidden2), gorgonia.WithName("w1"), gorgonia.WithInit(gorgonia.GlorotU(1.0)))
	w2 := gorgonia.NewMatrix(g, tensor.Float64, gorgonia.WithShape(hidden2, hidden3), gorgonia.WithName("w2"), gorgonia.WithInit(gorgonia.GlorotU(1.0)))
	w3 := gorgonia.NewMatrix(g, tensor.Float64, gorgonia.WithShape(hidden3, 1), gorgonia.WithName("w3"), gorgonia.WithInit(gorgonia.GlorotU(1.0)))

	return &Parameters{
		W0: w0.Value().(*tensor.Dense),
		W1: w1.Value().(*tensor.Dense),
		W2: w2.Value().(*tensor.Dense),
		W3: w3.Value().(*tensor.Dense),
	}
}

// Clone deep-copies the weights so training can mutate its own set.
func (p *Parameters) Clone() *Parameters {
	return &Parameters{
		W0: p.W0.Clone().(*tensor.Dense),
		W1: p.W1.Clone().(*tensor.Dense),
		W2: p.W2.Clone().(*tensor.Dense),
		W3: p.W3.Clone().(*tensor.Dense),
	}
}

// Forward runs a single inference pass. A fresh graph per call keeps
// prediction free of shared mutable state, so it can overlap with an
// in-flight training run. Dropout is omitted at inference time.
func (p *Parameters) Forward(f FeatureVector) (float64, error) {
	backing := make([]float64, FeatureDim)
	copy(backing, f[:])
	xT := tensor.New(tensor.WithShape(1, FeatureDim), tensor.WithBacking(backing))

	g := gorgonia.NewGraph()
	x := gorgonia.NewMatrix(g, tensor.Float64, gorgonia.WithShape(1, FeatureDim), gorgonia.WithValue(xT))
	w0 := gorgonia.NewMatrix(g, tensor.Float64, gorgonia.WithShape(FeatureDim, hidden1), gorgonia.WithValue(p.W0))
	w1 := gorgonia.NewMatrix(g, tensor.Float64, gorgonia.WithShape(hidden1, hidden2), gorgonia.WithValue(p.W1))
	w2 := gorgonia.NewMatrix(g, tensor.Float64, gorgonia.WithShape(hidden2, hidden3), gorgonia.WithValue(p.W2))
	w3 := gorgonia.NewMatrix(g, tensor.Float64, gorgonia.WithShape(hidden3, 1), gorgonia.WithValue(p.W3))

	out, err := forwardPass(x, w0, w1, w2, w3, false)
	if err != nil {
		return 0, err
	}

	vm := gorgonia.NewTapeMachine(g)
	defer vm.Close()
	if err := vm.RunAll(); err != nil {
		return 0, fmt.Errorf("forward pass: %w", err)
	}

	switch v := out.Value().Data().(type) {
	case []float64:
		return v[0], nil
	case float64:
		return v, nil
	default:
		return 0, fmt.Errorf("unexpected output type %T", v)
	}
}

// forwardPass wires the network graph. train toggles the dropout layer
// between the second and third hidden layers.
func forwardPass(x, w0, w1, w2, w3 *gorgonia.Node, train bool) (*gorgonia.Node, error) {
	h0, err := gorgonia.Mul(x, w0)
	if err != nil {
		return nil, fmt.Errorf("layer 0: %w", err)
	}
	if h0, err = gorgonia.Rectify(h0); err != nil {
		return nil, fmt.Errorf("layer 0 activation: %w", err)
	}

	h1, err := gorgonia.Mul(h0, w1)
	if err != nil {
		return nil, fmt.Errorf("layer 1: %w", err)
	}
	if h1, err = gorgonia.Rectify(h1); err != nil {
		return nil, fmt.Errorf("layer 1 activation: %w", err)
	}
	if train {
		if h1, err = gorgonia.Dropout(h1, dropoutRate); err != nil {
			return nil, fmt.Errorf("dropout: %w", err)
		}
	}

	h2, err := gorgonia.Mul(h1, w2)
	if err != nil {
		return nil, fmt.Errorf("layer 2: %w", err)
	}
	if h2, err = gorgonia.Rectify(h2); err != nil {
		return nil, fmt.Errorf("layer 2 activation: %w", err)
	}

	out, err := gorgonia.Mul(h2, w3)
	if err != nil {
		return nil, fmt.Errorf("output layer: %w", err)
	}
	if out, err = gorgonia.Sigmoid(out); err != nil {
		return nil, fmt.Errorf("output activation: %w", err)
	}
	return out, nil
}
