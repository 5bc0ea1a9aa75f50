package agent

import (
	"math"

	"gomoku/experiments/metrics"
	"gomoku/game"
	"gomoku/searcher"

	"golang.org/x/exp/rand"
	"lukechampine.com/frand"
)

type TrainingAgent struct {
	mcts        *searcher.MCTS
	temperature float64
	rng         *rand.Rand
}

// NewTrainingAgent returns a new agent for self-play during training. It
// samples moves from the temperature-adjusted visit distribution and keeps
// its tree across plies. A zero seed draws one at random.
func NewTrainingAgent(mcts *searcher.MCTS, temperature float64, seed uint64) *TrainingAgent {
	if seed == 0 {
		seed = frand.Uint64n(math.MaxUint64)
	}
	return &TrainingAgent{
		mcts:        mcts,
		temperature: temperature,
		rng:         rand.New(rand.NewSource(seed)),
	}
}

func (a *TrainingAgent) FindMove(b *game.Board) (game.Move, metrics.SearchMetric, error) {
	move, _, metric, err := a.FindMoveWithProbs(b)
	return move, metric, err
}

// FindMoveWithProbs also returns the move probabilities over every cell of b,
// zero for moves the search did not consider.
func (a *TrainingAgent) FindMoveWithProbs(b *game.Board) (game.Move, []float32, metrics.SearchMetric, error) {
	metric, err := a.mcts.Search(b)
	if err != nil {
		return game.InvalidMove, nil, metric, err
	}

	moves, probs := a.mcts.Policy(a.temperature)
	full := make([]float32, b.Size())
	for i, move := range moves {
		full[move] = float32(probs[i])
	}

	move := sample(a.rng, moves, probs)
	// Reuse the subtree of the chosen move for the next ply
	a.mcts.Advance(move)
	return move, full, metric, nil
}

func (a *TrainingAgent) Reset() {
	a.mcts.Reset()
}

func sample(rng *rand.Rand, moves []game.Move, probs []float64) game.Move {
	sampled := rng.Float64()
	cumulative := 0.0
	lastMove := game.InvalidMove
	for i, move := range moves {
		if probs[i] == 0 {
			continue
		}
		lastMove = move
		cumulative += probs[i]
		if sampled < cumulative {
			return move
		}
	}
	return lastMove // Fallback in case of rounding errors
}
