package agent

import (
	"gomoku/experiments/metrics"
	"gomoku/game"
)

type Agent interface {
	// FindMove returns a move for the player to move on b and performance metrics (if collected) from the search
	FindMove(b *game.Board) (game.Move, metrics.SearchMetric, error)
	// Reset forgets any state carried over from earlier moves
	Reset()
}
