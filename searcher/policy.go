package searcher

import "math"

// Hyperparameters for MCTS

const DefaultCPuct = 5.0 // Exploration constant

const WIN = 1.0   // Value of a won position for the player to move
const LOSS = -WIN // Value of a lost position (negate from opponent perspective)
const DRAW = 0.0

// Temperatures at or below this pick the most visited move outright
const minTemperature = 1e-3

type puct struct {
	exploration float64
}

func newPUCT(cPuct float64, N int) puct {
	if cPuct < 0 {
		panic("cPuct cannot be negative")
	}
	return puct{exploration: cPuct * math.Sqrt(float64(N))}
}

func (p puct) evaluate(q, prior float64, n int) float64 {
	// PUCT = q + c*P*sqrt(N)/(1+n)
	return q + p.exploration*prior/float64(1+n)
}

// adjustTemperature turns visit counts into move probabilities
// proportional to visits^(1/temperature).
func adjustTemperature(visits []int, temperature float64) []float64 {
	probs := make([]float64, len(visits))
	if len(visits) == 0 {
		return probs
	}

	if temperature <= minTemperature {
		best := 0
		for i, n := range visits {
			if n > visits[best] {
				best = i
			}
		}
		probs[best] = 1
		return probs
	}

	// Softmax over log visits keeps large exponents finite
	maxLogit := math.Inf(-1)
	for i, n := range visits {
		probs[i] = math.Log(float64(n)+1e-10) / temperature
		maxLogit = math.Max(maxLogit, probs[i])
	}
	sum := 0.0
	for i := range probs {
		probs[i] = math.Exp(probs[i] - maxLogit)
		sum += probs[i]
	}
	// Normalize
	for i := range probs {
		probs[i] /= sum
	}
	return probs
}
