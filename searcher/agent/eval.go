package agent

import (
	"gomoku/experiments/metrics"
	"gomoku/game"
	"gomoku/searcher"
)

type evaluationAgent struct {
	mcts *searcher.MCTS
}

// NewEvaluationAgent returns a new agent for actual game play during evaluation.
// It searches every position from a fresh tree and plays the most visited move.
func NewEvaluationAgent(mcts *searcher.MCTS) Agent {
	return evaluationAgent{mcts: mcts}
}

func (a evaluationAgent) FindMove(b *game.Board) (game.Move, metrics.SearchMetric, error) {
	metric, err := a.mcts.Search(b)
	if err != nil {
		return game.InvalidMove, metric, err
	}
	move := findMax(a.mcts.Visits())
	a.mcts.Reset()
	return move, metric, nil
}

func (a evaluationAgent) Reset() {
	a.mcts.Reset()
}

func findMax(policy map[game.Move]int) game.Move {
	maxMove := game.InvalidMove
	maxVisit := -1
	for move, visit := range policy {
		// Break ties by the lower move so the result does not depend on map order
		if visit > maxVisit || (visit == maxVisit && move < maxMove) {
			maxVisit = visit
			maxMove = move
		}
	}
	return maxMove
}
