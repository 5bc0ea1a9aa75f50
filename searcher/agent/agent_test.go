package agent

import (
	"testing"

	"gomoku/game"
	"gomoku/searcher"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

func newBoard(t *testing.T, width, height, n int, moves ...game.Move) *game.Board {
	t.Helper()
	b := game.NewBoard(width, height, n)
	require.NoError(t, b.Init(game.Player1))
	for _, m := range moves {
		b.Apply(m)
	}
	return &b
}

func TestFindMax(t *testing.T) {
	t.Run("most visited move", func(t *testing.T) {
		require.Equal(t, game.Move(7), findMax(map[game.Move]int{3: 10, 7: 42, 1: 5}))
	})

	t.Run("ties go to the lower move", func(t *testing.T) {
		require.Equal(t, game.Move(2), findMax(map[game.Move]int{9: 4, 2: 4, 5: 4}))
	})

	t.Run("empty policy", func(t *testing.T) {
		require.Equal(t, game.InvalidMove, findMax(nil))
	})
}

func TestSample(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	moves := []game.Move{4, 5, 6}

	t.Run("certain move", func(t *testing.T) {
		for i := 0; i < 20; i++ {
			require.Equal(t, game.Move(5), sample(rng, moves, []float64{0, 1, 0}))
		}
	})

	t.Run("never samples zero probability moves", func(t *testing.T) {
		for i := 0; i < 200; i++ {
			require.NotEqual(t, game.Move(6), sample(rng, moves, []float64{0.5, 0.5, 0}))
		}
	})

	t.Run("frequencies follow probabilities", func(t *testing.T) {
		counts := map[game.Move]int{}
		for i := 0; i < 10000; i++ {
			counts[sample(rng, moves, []float64{0.2, 0.3, 0.5})]++
		}
		require.InDelta(t, 2000, counts[4], 300)
		require.InDelta(t, 3000, counts[5], 300)
		require.InDelta(t, 5000, counts[6], 300)
	})
}

func TestEvaluationAgent(t *testing.T) {
	t.Run("plays the winning move and resets its tree", func(t *testing.T) {
		b := newBoard(t, 3, 3, 3, 0, 3, 1, 4)
		mcts := searcher.NewMCTS(searcher.UniformEvaluator{}, searcher.WithPlayouts(400))
		a := NewEvaluationAgent(mcts)

		move, _, err := a.FindMove(b)
		require.NoError(t, err)
		require.Equal(t, game.Move(2), move)
		require.Equal(t, 1, mcts.TreeSize())
	})

	t.Run("reports a full board", func(t *testing.T) {
		b := newBoard(t, 3, 3, 3, 0, 1, 2, 4, 3, 5, 7, 6, 8)
		a := NewEvaluationAgent(searcher.NewMCTS(searcher.UniformEvaluator{}, searcher.WithPlayouts(10)))

		move, _, err := a.FindMove(b)
		require.ErrorIs(t, err, searcher.ErrBoardFull)
		require.Equal(t, game.InvalidMove, move)
	})
}

func TestTrainingAgent(t *testing.T) {
	t.Run("returns a distribution over the whole board", func(t *testing.T) {
		b := newBoard(t, 4, 4, 3, 5, 6)
		mcts := searcher.NewMCTS(searcher.UniformEvaluator{}, searcher.WithPlayouts(60), searcher.WithSeed(1))
		a := NewTrainingAgent(mcts, 1.0, 7)

		move, probs, _, err := a.FindMoveWithProbs(b)
		require.NoError(t, err)
		require.True(t, b.IsAvailable(move))
		require.Len(t, probs, 16)
		require.Zero(t, probs[5])
		require.Zero(t, probs[6])
		require.Greater(t, probs[move], float32(0))

		var sum float32
		for _, p := range probs {
			sum += p
		}
		require.InDelta(t, 1.0, sum, 1e-5)
	})

	t.Run("keeps the subtree of its move", func(t *testing.T) {
		b := newBoard(t, 4, 4, 3)
		mcts := searcher.NewMCTS(searcher.UniformEvaluator{}, searcher.WithPlayouts(200), searcher.WithSeed(1))
		a := NewTrainingAgent(mcts, 1e-3, 7)

		move, _, _, err := a.FindMoveWithProbs(b)
		require.NoError(t, err)
		require.Greater(t, mcts.RootStats().Visits, 0, "root moved to the searched child")

		b.Apply(move)
		a.Reset()
		require.Equal(t, 1, mcts.TreeSize())
	})

	t.Run("same seed plays the same game", func(t *testing.T) {
		play := func() []game.Move {
			b := newBoard(t, 4, 4, 3)
			mcts := searcher.NewMCTS(searcher.UniformEvaluator{}, searcher.WithPlayouts(30), searcher.WithRollout(0), searcher.WithSeed(3))
			a := NewTrainingAgent(mcts, 1.0, 11)
			for {
				if ended, _ := b.GameOver(); ended {
					return b.Moves()
				}
				move, _, err := a.FindMove(b)
				require.NoError(t, err)
				b.Apply(move)
			}
		}
		require.Equal(t, play(), play())
	})
}
