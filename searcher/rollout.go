package searcher

import (
	"gomoku/game"

	"github.com/rs/zerolog/log"
)

// rollout plays uniformly random moves until the game ends or the move limit
// is reached, and scores the result for the player to move at the start.
func (m *MCTS) rollout(state game.Board) float64 {
	player := state.Current()
	for depth := 0; depth < m.rolloutLimit; depth++ {
		if ended, winner := state.GameOver(); ended {
			m.metrics.AddFullRollout()
			return outcome(winner, player)
		}
		state.Apply(state.RandomMove(m.rng))
	}
	if ended, winner := state.GameOver(); ended {
		m.metrics.AddFullRollout()
		return outcome(winner, player)
	}

	log.Warn().Msgf("rollout reached move limit %d", m.rolloutLimit)
	return DRAW
}
