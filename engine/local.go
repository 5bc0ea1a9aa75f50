package engine

import (
	"context"
	"fmt"
	"time"

	"gomoku/experiments/metrics"
	"gomoku/game"
	"gomoku/searcher/agent"

	"github.com/rs/zerolog/log"
)

// Engine plays one game between two agents on a shared board.
type Engine struct {
	Board  game.Board
	Agents [2]agent.Agent // Agents[0] plays game.Player1
	// OnMove, if set, is called after every move
	OnMove func(b *game.Board, move game.Move)
}

func LocalEngine(board game.Board, agents []agent.Agent) *Engine {
	if len(agents) != 2 {
		panic("need exactly two agents")
	}
	return &Engine{
		Board:  board,
		Agents: [2]agent.Agent{agents[0], agents[1]},
	}
}

// Run resets the board with start to move and plays until the game is over.
// The winner is game.NoPlayer on a draw. Cancelling ctx stops the game
// between moves.
func (e *Engine) Run(ctx context.Context, start game.Player) (game.Player, metrics.GameMetric, []metrics.MoveMetric, error) {
	if err := e.Board.Init(start); err != nil {
		return game.NoPlayer, metrics.GameMetric{}, nil, err
	}
	for _, a := range e.Agents {
		a.Reset()
	}

	log.Debug().Msgf("player %d is starting", start)
	gameMetric := metrics.GameMetric{
		StartingPlayer: int(start),
		StartTime:      time.Now(),
	}

	// A game can not last longer than the number of cells
	maxMoves := e.Board.Size()
	var moveMetrics []metrics.MoveMetric
	for step := 1; step <= maxMoves; step++ {
		if ended, _ := e.Board.GameOver(); ended {
			break
		}
		if err := ctx.Err(); err != nil {
			return game.NoPlayer, gameMetric, moveMetrics, err
		}

		player := e.Board.Current()
		move, searchMetric, err := e.Agents[player-1].FindMove(&e.Board)
		if err != nil {
			return game.NoPlayer, gameMetric, moveMetrics, fmt.Errorf("player %d failed to move: %w", player, err)
		}
		if !e.Board.IsAvailable(move) {
			return game.NoPlayer, gameMetric, moveMetrics, fmt.Errorf("player %d chose illegal move %d", player, move)
		}
		moveMetrics = append(moveMetrics, metrics.MoveMetric{
			Step:         step,
			Player:       int(player),
			Move:         int(move),
			SearchMetric: searchMetric,
		})

		e.Board.Apply(move)
		if e.OnMove != nil {
			e.OnMove(&e.Board, move)
		}
	}

	_, winner := e.Board.GameOver()
	gameMetric.Winner = int(winner)
	gameMetric.EndTime = time.Now()
	gameMetric.Duration = gameMetric.EndTime.Sub(gameMetric.StartTime)
	gameMetric.TotalMoves = e.Board.NumMoves()
	log.Debug().Msgf("game over after %d moves, winner %d", gameMetric.TotalMoves, winner)
	return winner, gameMetric, moveMetrics, nil
}
