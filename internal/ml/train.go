package ml

import (
	"fmt"
	"log"
	"math"
	"math/rand"

	"gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// Training hyperparameters. BCE-style loss against the continuous
// weak-supervision labels, Adam, fixed learning rate, shuffled 80/20
// train/validation split each run.
const (
	learningRate    = 0.001
	maxEpochs       = 30
	batchSize       = 32
	validationSplit = 0.2

	// MinTrainingReports is the corpus floor below which training is
	// skipped silently and the existing parameters are kept. A policy,
	// not a failure.
	MinTrainingReports = 10
)

// Train fits a clone of base against the examples and returns the new
// parameter snapshot. base is never mutated. The example slice is
// shuffled in place.
func Train(base *Parameters, examples []Example, rng *rand.Rand) (*Parameters, error) {
	if len(examples) == 0 {
		return nil, fmt.Errorf("no training examples")
	}

	rng.Shuffle(len(examples), func(i, j int) {
		examples[i], examples[j] = examples[j], examples[i]
	})

	trainN := len(examples) - int(float64(len(examples))*validationSplit)
	if trainN < 1 {
		trainN = len(examples)
	}
	train, val := examples[:trainN], examples[trainN:]

	batch := batchSize
	if trainN < batch {
		batch = trainN
	}

	params := base.Clone()

	g := gorgonia.NewGraph()
	w0 := gorgonia.NodeFromAny(g, params.W0, gorgonia.WithName("w0"))
	w1 := gorgonia.NodeFromAny(g, params.W1, gorgonia.WithName("w1"))
	w2 := gorgonia.NodeFromAny(g, params.W2, gorgonia.WithName("w2"))
	w3 := gorgonia.NodeFromAny(g, params.W3, gorgonia.WithName("w3"))
	learnables := gorgonia.Nodes{w0, w1, w2, w3}

	x := gorgonia.NewMatrix(g, tensor.Float64, gorgonia.WithShape(batch, FeatureDim), gorgonia.WithName("x"))
	y := gorgonia.NewMatrix(g, tensor.Float64, gorgonia.WithShape(batch, 1), gorgonia.WithName("y"))

	out, err := forwardPass(x, w0, w1, w2, w3, true)
	if err != nil {
		return nil, err
	}

	cost, err := crossEntropy(out, y)
	if err != nil {
		return nil, err
	}

	var costVal gorgonia.Value
	gorgonia.Read(cost, &costVal)

	if _, err := gorgonia.Grad(cost, learnables...); err != nil {
		return nil, fmt.Errorf("failed to build gradient: %w", err)
	}

	vm := gorgonia.NewTapeMachine(g, gorgonia.BindDualValues(learnables...))
	defer vm.Close()

	solver := gorgonia.NewAdamSolver(
		gorgonia.WithLearnRate(learningRate),
		gorgonia.WithBatchSize(float64(batch)),
	)

	batches := trainN / batch
	for epoch := 0; epoch < maxEpochs; epoch++ {
		var epochLoss float64
		for b := 0; b < batches; b++ {
			xT, yT := batchTensors(train[b*batch:(b+1)*batch], batch)
			if err := gorgonia.Let(x, xT); err != nil {
				return nil, fmt.Errorf("failed to bind inputs: %w", err)
			}
			if err := gorgonia.Let(y, yT); err != nil {
				return nil, fmt.Errorf("failed to bind labels: %w", err)
			}
			if err := vm.RunAll(); err != nil {
				return nil, fmt.Errorf("training step failed (epoch %d): %w", epoch, err)
			}
			if err := solver.Step(gorgonia.NodesToValueGrads(learnables)); err != nil {
				return nil, fmt.Errorf("solver step failed (epoch %d): %w", epoch, err)
			}
			vm.Reset()

			if cv, ok := costVal.Data().(float64); ok {
				epochLoss += cv
			}
		}
		log.Printf("Training epoch %d: loss = %.4f", epoch, epochLoss/float64(batches))
	}

	if len(val) > 0 {
		log.Printf("Validation loss after training: %.4f", validationLoss(params, val))
	}

	return params, nil
}

// crossEntropy is the binary-cross-entropy-style loss between the
// sigmoid outputs and the continuous labels:
// mean(-(y*log(p) + (1-y)*log(1-p))).
func crossEntropy(out, y *gorgonia.Node) (*gorgonia.Node, error) {
	one := gorgonia.NewConstant(1.0)

	logOut, err := gorgonia.Log(out)
	if err != nil {
		return nil, fmt.Errorf("loss: %w", err)
	}
	pos, err := gorgonia.HadamardProd(y, logOut)
	if err != nil {
		return nil, fmt.Errorf("loss: %w", err)
	}

	oneMinusOut, err := gorgonia.Sub(one, out)
	if err != nil {
		return nil, fmt.Errorf("loss: %w", err)
	}
	logComp, err := gorgonia.Log(oneMinusOut)
	if err != nil {
		return nil, fmt.Errorf("loss: %w", err)
	}
	oneMinusY, err := gorgonia.Sub(one, y)
	if err != nil {
		return nil, fmt.Errorf("loss: %w", err)
	}
	neg, err := gorgonia.HadamardProd(oneMinusY, logComp)
	if err != nil {
		return nil, fmt.Errorf("loss: %w", err)
	}

	sum, err := gorgonia.Add(pos, neg)
	if err != nil {
		return nil, fmt.Errorf("loss: %w", err)
	}
	sum, err = gorgonia.Neg(sum)
	if err != nil {
		return nil, fmt.Errorf("loss: %w", err)
	}
	cost, err := gorgonia.Mean(sum)
	if err != nil {
		return nil, fmt.Errorf("loss: %w", err)
	}
	return cost, nil
}

// batchTensors packs a slice of examples into input and label tensors.
func batchTensors(batch []Example, n int) (tensor.Tensor, tensor.Tensor) {
	xBack := make([]float64, n*FeatureDim)
	yBack := make([]float64, n)
	for i, ex := range batch {
		copy(xBack[i*FeatureDim:], ex.Features[:])
		yBack[i] = ex.Label
	}
	xT := tensor.New(tensor.WithShape(n, FeatureDim), tensor.WithBacking(xBack))
	yT := tensor.New(tensor.WithShape(n, 1), tensor.WithBacking(yBack))
	return xT, yT
}

// validationLoss evaluates BCE on the held-out split with plain
// inference passes.
func validationLoss(p *Parameters, val []Example) float64 {
	var total float64
	var n int
	for _, ex := range val {
		pred, err := p.Forward(ex.Features)
		if err != nil {
			continue
		}
		total += bce(ex.Label, pred)
		n++
	}
	if n == 0 {
		return 0
	}
	return total / float64(n)
}

func bce(label, pred float64) float64 {
	const eps = 1e-12
	pred = clampScore(pred, eps, 1-eps)
	return -(label*math.Log(pred) + (1-label)*math.Log(1-pred))
}
