package trainer

import "gomoku/searcher"

// Network is a trainable evaluator.
type Network interface {
	searcher.Evaluator
	// PolicyValue returns move probabilities over every cell and values for encoded states
	PolicyValue(states [][]float32) (probs [][]float32, values []float32)
	// TrainStep runs one gradient step and returns the loss and policy entropy
	TrainStep(states, probs [][]float32, outcomes []float32, lr float64) (loss, entropy float64)
	Save(path string) error
	Load(path string) error
}
