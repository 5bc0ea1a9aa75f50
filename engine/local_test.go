package engine

import (
	"context"
	"testing"

	"gomoku/experiments/metrics"
	"gomoku/game"
	"gomoku/searcher"
	"gomoku/searcher/agent"

	"github.com/stretchr/testify/require"
)

// scriptedAgent plays its moves in order.
type scriptedAgent struct {
	moves  []game.Move
	next   int
	resets int
}

func (a *scriptedAgent) FindMove(b *game.Board) (game.Move, metrics.SearchMetric, error) {
	move := a.moves[a.next]
	a.next++
	return move, metrics.SearchMetric{Playouts: 1}, nil
}

func (a *scriptedAgent) Reset() {
	a.resets++
	a.next = 0
}

func pureAgent(playouts int, seed uint64) agent.Agent {
	return agent.NewEvaluationAgent(searcher.NewMCTS(searcher.UniformEvaluator{},
		searcher.WithPlayouts(playouts), searcher.WithRollout(0), searcher.WithSeed(seed)))
}

func TestLocalEngine(t *testing.T) {
	t.Run("panics without two agents", func(t *testing.T) {
		require.Panics(t, func() {
			LocalEngine(game.NewBoard(3, 3, 3), []agent.Agent{&scriptedAgent{}})
		})
	})
}

func TestRun(t *testing.T) {
	t.Run("scripted win for the starting player", func(t *testing.T) {
		first := &scriptedAgent{moves: []game.Move{0, 1, 2}}
		second := &scriptedAgent{moves: []game.Move{3, 4}}
		e := LocalEngine(game.NewBoard(3, 3, 3), []agent.Agent{first, second})

		var seen []game.Move
		e.OnMove = func(b *game.Board, move game.Move) { seen = append(seen, move) }

		winner, gameMetric, moveMetrics, err := e.Run(context.Background(), game.Player1)
		require.NoError(t, err)
		require.Equal(t, game.Player1, winner)
		require.Equal(t, []game.Move{0, 3, 1, 4, 2}, seen)
		require.Equal(t, 1, first.resets)
		require.Equal(t, 1, second.resets)

		require.Equal(t, 1, gameMetric.StartingPlayer)
		require.Equal(t, 1, gameMetric.Winner)
		require.Equal(t, 5, gameMetric.TotalMoves)
		require.Len(t, moveMetrics, 5)
		require.Equal(t, 2, moveMetrics[1].Player)
		require.Equal(t, 3, moveMetrics[1].Move)
		require.Equal(t, 5, moveMetrics[4].Step)
	})

	t.Run("second player may start", func(t *testing.T) {
		first := &scriptedAgent{moves: []game.Move{6, 7}}
		second := &scriptedAgent{moves: []game.Move{0, 1, 2}}
		e := LocalEngine(game.NewBoard(3, 3, 3), []agent.Agent{first, second})

		winner, gameMetric, _, err := e.Run(context.Background(), game.Player2)
		require.NoError(t, err)
		require.Equal(t, game.Player2, winner)
		require.Equal(t, 2, gameMetric.StartingPlayer)
	})

	t.Run("illegal moves are errors", func(t *testing.T) {
		first := &scriptedAgent{moves: []game.Move{4, 4}}
		second := &scriptedAgent{moves: []game.Move{4}}
		e := LocalEngine(game.NewBoard(3, 3, 3), []agent.Agent{first, second})

		_, _, _, err := e.Run(context.Background(), game.Player1)
		require.ErrorContains(t, err, "illegal move 4")
	})

	t.Run("invalid board", func(t *testing.T) {
		e := LocalEngine(game.NewBoard(3, 3, 4), []agent.Agent{&scriptedAgent{}, &scriptedAgent{}})

		_, _, _, err := e.Run(context.Background(), game.Player1)
		require.ErrorIs(t, err, game.ErrConfiguration)
	})

	t.Run("cancelled context stops the game", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		e := LocalEngine(game.NewBoard(3, 3, 3), []agent.Agent{pureAgent(10, 1), pureAgent(10, 2)})

		_, _, _, err := e.Run(ctx, game.Player1)
		require.ErrorIs(t, err, context.Canceled)
	})

	t.Run("search agents finish a game", func(t *testing.T) {
		e := LocalEngine(game.NewBoard(5, 5, 4), []agent.Agent{pureAgent(50, 1), pureAgent(50, 2)})

		winner, gameMetric, moveMetrics, err := e.Run(context.Background(), game.Player1)
		require.NoError(t, err)
		require.Equal(t, int(winner), gameMetric.Winner)
		require.Len(t, moveMetrics, gameMetric.TotalMoves)
		ended, _ := e.Board.GameOver()
		require.True(t, ended)
	})
}
