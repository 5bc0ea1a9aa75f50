package network

import (
	"encoding/gob"
	"errors"
	"fmt"
	"math"
	"os"

	"gomoku/game"
	"gomoku/searcher"
)

var ErrShape = errors.New("model shape does not match board")

// Linear is a policy-value model with one linear layer per head:
//
//	policy = softmax(W·x + b) over every cell
//	value  = tanh(u·x + c)
//
// where x is the board's Encode output. It is trained with plain SGD on
// (z - v)^2 - π·log p + l2·|θ|^2.
//
// Evaluate and PolicyValue only read the parameters and may run
// concurrently; TrainStep and Load must not overlap with them.
type Linear struct {
	width, height int
	inputs        int // game.Planes * cells
	cells         int
	l2            float64

	weights      []float64 // cells x inputs, row-major
	bias         []float64 // cells
	valueWeights []float64 // inputs
	valueBias    float64
}

// NewLinear returns a model with all parameters at zero, which predicts a
// uniform policy and a value of 0.
func NewLinear(width, height int, l2 float64) *Linear {
	cells := width * height
	inputs := game.Planes * cells
	return &Linear{
		width:        width,
		height:       height,
		inputs:       inputs,
		cells:        cells,
		l2:           l2,
		weights:      make([]float64, cells*inputs),
		bias:         make([]float64, cells),
		valueWeights: make([]float64, inputs),
	}
}

// forward writes the policy logits for x into logits and returns the value.
func (l *Linear) forward(x []float32, logits []float64) float64 {
	for j := 0; j < l.cells; j++ {
		sum := l.bias[j]
		row := l.weights[j*l.inputs : (j+1)*l.inputs]
		for d, xd := range x {
			if xd != 0 {
				sum += row[d] * float64(xd)
			}
		}
		logits[j] = sum
	}
	a := l.valueBias
	for d, xd := range x {
		if xd != 0 {
			a += l.valueWeights[d] * float64(xd)
		}
	}
	return math.Tanh(a)
}

// softmax turns logits into probabilities in place.
func softmax(logits []float64) {
	maxLogit := math.Inf(-1)
	for _, v := range logits {
		maxLogit = math.Max(maxLogit, v)
	}
	sum := 0.0
	for i, v := range logits {
		logits[i] = math.Exp(v - maxLogit)
		sum += logits[i]
	}
	for i := range logits {
		logits[i] /= sum
	}
}

// Evaluate returns priors over the legal moves of b, renormalized after
// masking occupied cells, and the value for the player to move.
func (l *Linear) Evaluate(b *game.Board) ([]searcher.Prior, float64) {
	moves := b.Available()
	if len(moves) == 0 {
		return nil, 0
	}
	logits := make([]float64, l.cells)
	value := l.forward(b.Encode(), logits)

	legal := make([]float64, len(moves))
	for i, m := range moves {
		legal[i] = logits[m]
	}
	softmax(legal)

	priors := make([]searcher.Prior, len(moves))
	for i, m := range moves {
		priors[i] = searcher.Prior{Move: m, P: legal[i]}
	}
	return priors, value
}

// PolicyValue returns move probabilities over every cell and values for a batch of encoded states.
func (l *Linear) PolicyValue(states [][]float32) ([][]float32, []float32) {
	probs := make([][]float32, len(states))
	values := make([]float32, len(states))
	logits := make([]float64, l.cells)
	for i, x := range states {
		values[i] = float32(l.forward(x, logits))
		softmax(logits)
		probs[i] = make([]float32, l.cells)
		for j, p := range logits {
			probs[i][j] = float32(p)
		}
	}
	return probs, values
}

// TrainStep takes one gradient step at learning rate lr and returns the
// batch loss and policy entropy measured before the step.
func (l *Linear) TrainStep(states, targets [][]float32, outcomes []float32, lr float64) (float64, float64) {
	n := float64(len(states))
	if n == 0 {
		return 0, 0
	}

	gradW := make([]float64, len(l.weights))
	gradB := make([]float64, l.cells)
	gradU := make([]float64, l.inputs)
	gradC := 0.0

	loss, entropy := 0.0, 0.0
	p := make([]float64, l.cells)
	for i, x := range states {
		v := l.forward(x, p)
		softmax(p)

		z := float64(outcomes[i])
		loss += (z - v) * (z - v)

		targetMass := 0.0
		for j, pj := range p {
			pi := float64(targets[i][j])
			targetMass += pi
			if pj > 0 {
				loss -= pi * math.Log(pj)
				entropy -= pj * math.Log(pj)
			}
		}

		// d/dlogits of -π·log softmax
		for j, pj := range p {
			g := (pj*targetMass - float64(targets[i][j])) / n
			gradB[j] += g
			row := gradW[j*l.inputs : (j+1)*l.inputs]
			for d, xd := range x {
				if xd != 0 {
					row[d] += g * float64(xd)
				}
			}
		}

		// d/da of (z - tanh(a))^2
		g := -2 * (z - v) * (1 - v*v) / n
		gradC += g
		for d, xd := range x {
			if xd != 0 {
				gradU[d] += g * float64(xd)
			}
		}
	}
	loss /= n
	entropy /= n

	penalty := 0.0
	for k, w := range l.weights {
		penalty += w * w
		l.weights[k] -= lr * (gradW[k] + 2*l.l2*w)
	}
	for k, w := range l.valueWeights {
		penalty += w * w
		l.valueWeights[k] -= lr * (gradU[k] + 2*l.l2*w)
	}
	for j := range l.bias {
		l.bias[j] -= lr * gradB[j]
	}
	l.valueBias -= lr * gradC

	return loss + l.l2*penalty, entropy
}

type params struct {
	Width, Height int
	Weights       []float64
	Bias          []float64
	ValueWeights  []float64
	ValueBias     float64
}

func (l *Linear) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create model file: %w", err)
	}
	defer f.Close()

	err = gob.NewEncoder(f).Encode(params{
		Width:        l.width,
		Height:       l.height,
		Weights:      l.weights,
		Bias:         l.bias,
		ValueWeights: l.valueWeights,
		ValueBias:    l.valueBias,
	})
	if err != nil {
		return fmt.Errorf("failed to encode model: %w", err)
	}
	return f.Close()
}

// Load replaces the parameters with those saved at path. The saved model
// must be for the same board size.
func (l *Linear) Load(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open model file: %w", err)
	}
	defer f.Close()

	var p params
	if err := gob.NewDecoder(f).Decode(&p); err != nil {
		return fmt.Errorf("failed to decode model: %w", err)
	}
	if p.Width != l.width || p.Height != l.height ||
		len(p.Weights) != len(l.weights) || len(p.Bias) != len(l.bias) || len(p.ValueWeights) != len(l.valueWeights) {
		return fmt.Errorf("%w: saved %dx%d, want %dx%d", ErrShape, p.Width, p.Height, l.width, l.height)
	}

	l.weights = p.Weights
	l.bias = p.Bias
	l.valueWeights = p.ValueWeights
	l.valueBias = p.ValueBias
	return nil
}
