package selfplay

import (
	"context"
	"fmt"

	"gomoku/experiments/metrics"
	"gomoku/game"
	"gomoku/replay"

	"github.com/rs/zerolog/log"
)

// Player picks self-play moves for both sides and reports the search's move
// probabilities over every cell.
type Player interface {
	FindMoveWithProbs(b *game.Board) (game.Move, []float32, metrics.SearchMetric, error)
	Reset()
}

// Play runs one game of p against itself from an empty board with Player1
// to move and returns the winner and one sample per ply. Outcomes are +1 for
// the winner's positions, -1 for the loser's and 0 everywhere on a draw.
// p is reset when the game ends.
func Play(ctx context.Context, board game.Board, p Player) (game.Player, []replay.Sample, error) {
	defer p.Reset()
	if err := board.Init(game.Player1); err != nil {
		return game.NoPlayer, nil, err
	}

	var samples []replay.Sample
	var movers []game.Player
	for {
		if ended, winner := board.GameOver(); ended {
			for i := range samples {
				samples[i].Outcome = outcome(winner, movers[i])
			}
			log.Debug().Int("moves", board.NumMoves()).Int("winner", int(winner)).Msg("self-play game over")
			return winner, samples, nil
		}
		if err := ctx.Err(); err != nil {
			return game.NoPlayer, nil, err
		}

		move, probs, _, err := p.FindMoveWithProbs(&board)
		if err != nil {
			return game.NoPlayer, nil, fmt.Errorf("failed to find self-play move: %w", err)
		}
		samples = append(samples, replay.Sample{State: board.Encode(), Probs: probs})
		movers = append(movers, board.Current())
		board.Apply(move)
	}
}

func outcome(winner, mover game.Player) float32 {
	switch winner {
	case game.NoPlayer:
		return 0
	case mover:
		return 1
	default:
		return -1
	}
}
