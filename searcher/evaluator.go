package searcher

import (
	"gomoku/game"

	"github.com/samber/lo"
)

// Prior is an evaluator's initial probability for playing Move.
type Prior struct {
	Move game.Move
	P    float64
}

// Evaluator scores a position for the search. Priors must cover exactly the
// legal moves of b and value is in [-1, 1] for the player to move.
// Evaluate must not modify b.
type Evaluator interface {
	Evaluate(b *game.Board) (priors []Prior, value float64)
}

type EvaluatorFunc func(b *game.Board) ([]Prior, float64)

func (f EvaluatorFunc) Evaluate(b *game.Board) ([]Prior, float64) {
	return f(b)
}

// UniformEvaluator spreads the prior evenly over legal moves and has no
// opinion on the value. Paired with rollouts it gives the pure search baseline.
type UniformEvaluator struct{}

func (UniformEvaluator) Evaluate(b *game.Board) ([]Prior, float64) {
	moves := b.Available()
	if len(moves) == 0 {
		return nil, 0
	}
	p := 1.0 / float64(len(moves))
	return lo.Map(moves, func(m game.Move, _ int) Prior {
		return Prior{Move: m, P: p}
	}), 0
}
