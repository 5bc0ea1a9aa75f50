package game

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

func newBoard(t *testing.T, width, height, n int) Board {
	t.Helper()
	b := NewBoard(width, height, n)
	require.NoError(t, b.Init(Player1))
	return b
}

// place puts stones for p regardless of whose turn it is.
func place(b *Board, p Player, moves ...Move) {
	for _, m := range moves {
		b.current = p
		b.Apply(m)
	}
}

func TestBoardInit(t *testing.T) {
	t.Run("succeeds whenever both sides fit a line", func(t *testing.T) {
		for n := 1; n <= 6; n++ {
			for width := n; width <= 8; width++ {
				for height := n; height <= 8; height++ {
					b := NewBoard(width, height, n)
					require.NoError(t, b.Init(Player1), "%dx%d n=%d", width, height, n)
					require.Equal(t, width*height, b.NumAvailable())
					require.Equal(t, Player1, b.Current())
					require.Equal(t, InvalidMove, b.LastMove())
				}
			}
		}
	})

	t.Run("fails when a side is shorter than the line", func(t *testing.T) {
		cases := [][3]int{{4, 8, 5}, {8, 4, 5}, {3, 3, 4}, {1, 5, 2}}
		for _, c := range cases {
			b := NewBoard(c[0], c[1], c[2])
			require.ErrorIs(t, b.Init(Player1), ErrConfiguration, "%v", c)
		}
	})

	t.Run("fails for oversized boards and unknown start players", func(t *testing.T) {
		b := NewBoard(20, 19, 5)
		require.ErrorIs(t, b.Init(Player1), ErrConfiguration, "380 cells")

		b = NewBoard(MaxCells+1, 1, 1)
		require.ErrorIs(t, b.Init(Player1), ErrConfiguration)

		b = NewBoard(MaxSide, MaxSide, 5)
		require.NoError(t, b.Init(Player1))

		b = NewBoard(8, 8, 5)
		require.ErrorIs(t, b.Init(NoPlayer), ErrConfiguration)
	})

	t.Run("long sides fit while the cell count does", func(t *testing.T) {
		for _, c := range [][3]int{{20, 5, 5}, {25, 10, 5}, {MaxCells, 1, 1}} {
			b := NewBoard(c[0], c[1], c[2])
			require.NoError(t, b.Init(Player1), "%v", c)
			require.Equal(t, c[0]*c[1], b.NumAvailable())
		}
	})

	t.Run("resets a played board", func(t *testing.T) {
		b := newBoard(t, 5, 5, 3)
		b.Apply(12)
		b.Apply(13)

		require.NoError(t, b.Init(Player2))
		require.Equal(t, 25, b.NumAvailable())
		require.Equal(t, 0, b.NumMoves())
		require.Equal(t, Player2, b.Current())
		require.Empty(t, b.Occupancy())
	})
}

func TestBoardApply(t *testing.T) {
	t.Run("updates availability, occupancy and turn", func(t *testing.T) {
		b := newBoard(t, 6, 6, 4)
		rng := rand.New(rand.NewSource(7))

		for b.NumAvailable() > 0 {
			m := b.RandomMove(rng)
			mover := b.Current()
			before := b.NumAvailable()

			b.Apply(m)

			require.False(t, b.IsAvailable(m))
			require.NotContains(t, b.Available(), m)
			require.Equal(t, before-1, b.NumAvailable())
			require.Equal(t, mover, b.Occupancy()[m])
			require.Equal(t, mover, b.At(m))
			require.NotEqual(t, mover, b.Current())
			require.Equal(t, m, b.LastMove())
		}
		require.Empty(t, b.Available())
		require.Equal(t, InvalidMove, b.RandomMove(rng))
	})

	t.Run("panics on occupied or off-board moves", func(t *testing.T) {
		b := newBoard(t, 5, 5, 3)
		b.Apply(3)

		require.Panics(t, func() { b.Apply(3) })
		require.Panics(t, func() { b.Apply(25) })
		require.Panics(t, func() { b.Apply(InvalidMove) })
	})

	t.Run("copies are independent", func(t *testing.T) {
		b := newBoard(t, 5, 5, 3)
		b.Apply(0)

		c := b
		c.Apply(1)

		require.Equal(t, 1, b.NumMoves())
		require.Equal(t, 2, c.NumMoves())
		require.True(t, b.IsAvailable(1))
		require.Equal(t, Player2, b.Current())
	})

	t.Run("available moves are ascending", func(t *testing.T) {
		b := newBoard(t, 4, 4, 3)
		b.Apply(0)
		b.Apply(15)
		b.Apply(7)

		require.Equal(t, []Move{1, 2, 3, 4, 5, 6, 8, 9, 10, 11, 12, 13, 14}, b.Available())
		require.Equal(t, []Move{0, 15, 7}, b.Moves())
	})
}

func TestBoardWinner(t *testing.T) {
	t.Run("horizontal run in row 0", func(t *testing.T) {
		b := newBoard(t, 8, 8, 5)
		place(&b, Player1, 0, 1, 2, 3, 4)
		place(&b, Player2, 56, 57, 58, 59)

		won, winner := b.Winner()
		require.True(t, won)
		require.Equal(t, Player1, winner)
	})

	lines := map[string]struct {
		step func(w int) int
		row  int
		col  int
	}{
		"horizontal": {step: func(w int) int { return 1 }, row: 3, col: 2},
		"vertical":   {step: func(w int) int { return w }, row: 1, col: 6},
		"down-right": {step: func(w int) int { return w + 1 }, row: 2, col: 1},
		"down-left":  {step: func(w int) int { return w - 1 }, row: 0, col: 7},
	}
	for name, line := range lines {
		t.Run(name+" line of n wins, n-1 does not", func(t *testing.T) {
			const width, height, n = 9, 8, 5
			start := line.row*width + line.col
			step := line.step(width)

			b := newBoard(t, width, height, n)
			// Scattered stones on the top row push the count past 2n-1
			place(&b, Player1, 63, 65, 67, 69, 71)
			for k := 0; k < n-1; k++ {
				place(&b, Player2, Move(start+k*step))
			}
			won, winner := b.Winner()
			require.False(t, won)
			require.Equal(t, NoPlayer, winner)

			place(&b, Player2, Move(start+(n-1)*step))

			won, winner = b.Winner()
			require.True(t, won)
			require.Equal(t, Player2, winner)
		})
	}

	t.Run("horizontal run at the far end of a wide board", func(t *testing.T) {
		b := newBoard(t, 20, 5, 5)
		place(&b, Player2, 0, 2, 4, 6)
		place(&b, Player1, 55, 56, 57, 58)

		won, _ := b.Winner()
		require.False(t, won)

		place(&b, Player1, 59)
		won, winner := b.Winner()
		require.True(t, won)
		require.Equal(t, Player1, winner)
		row, col := b.MoveToLocation(59)
		require.Equal(t, []int{2, 19}, []int{row, col})
	})

	t.Run("lines do not wrap around row ends", func(t *testing.T) {
		b := newBoard(t, 5, 5, 3)
		// 3, 4 on row 0 and 5 on row 1 are consecutive indices but not a line
		place(&b, Player1, 3, 4, 5)
		place(&b, Player2, 15, 17)

		won, _ := b.Winner()
		require.False(t, won)
	})

	t.Run("diagonals do not wrap around", func(t *testing.T) {
		b := newBoard(t, 5, 5, 3)
		// 1, 5, 9 step by width-1 but 5 is at column 0 of the next row
		place(&b, Player1, 1, 5, 9)
		place(&b, Player2, 20, 22)

		won, _ := b.Winner()
		require.False(t, won)
	})

	t.Run("skips the scan below 2n-1 stones", func(t *testing.T) {
		b := newBoard(t, 5, 5, 3)
		place(&b, Player1, 0, 1, 2)

		won, _ := b.Winner()
		require.False(t, won, "only 3 stones are on the board, fewer than 2n-1")
	})

	t.Run("one in a row wins on the first stone", func(t *testing.T) {
		b := newBoard(t, 3, 3, 1)
		b.Apply(4)

		won, winner := b.Winner()
		require.True(t, won)
		require.Equal(t, Player1, winner)
	})
}

func TestBoardGameOver(t *testing.T) {
	t.Run("full 8x8 board without five in a row is a draw", func(t *testing.T) {
		b := newBoard(t, 8, 8, 5)
		// XXOO rows shifted by 0, 2, 1, 3 keep every line at three stones or fewer
		shift := [4]int{0, 2, 1, 3}
		for row := 0; row < 8; row++ {
			for col := 0; col < 8; col++ {
				p := Player1
				if ((col+shift[row%4])/2)%2 == 1 {
					p = Player2
				}
				place(&b, p, b.LocationToMove(row, col))
			}
		}

		won, _ := b.Winner()
		require.False(t, won)
		ended, winner := b.GameOver()
		require.True(t, ended)
		require.Equal(t, NoPlayer, winner)
	})

	t.Run("ongoing game", func(t *testing.T) {
		b := newBoard(t, 8, 8, 5)
		b.Apply(27)

		ended, winner := b.GameOver()
		require.False(t, ended)
		require.Equal(t, NoPlayer, winner)
	})

	t.Run("win ends the game", func(t *testing.T) {
		b := newBoard(t, 8, 8, 5)
		place(&b, Player2, 8, 17, 26, 35, 44)
		place(&b, Player1, 0, 1, 2, 3)

		ended, winner := b.GameOver()
		require.True(t, ended)
		require.Equal(t, Player2, winner)
	})
}

func TestMoveLocation(t *testing.T) {
	t.Run("conversions are exact inverses", func(t *testing.T) {
		b := newBoard(t, 7, 5, 4)
		for m := Move(0); int(m) < b.Size(); m++ {
			row, col := b.MoveToLocation(m)
			require.Equal(t, m, b.LocationToMove(row, col))
		}
		for row := 0; row < 5; row++ {
			for col := 0; col < 7; col++ {
				gotRow, gotCol := b.MoveToLocation(b.LocationToMove(row, col))
				require.Equal(t, []int{row, col}, []int{gotRow, gotCol})
			}
		}
	})

	t.Run("out of range maps to the sentinel", func(t *testing.T) {
		b := newBoard(t, 7, 5, 4)
		require.Equal(t, InvalidMove, b.LocationToMove(-1, 0))
		require.Equal(t, InvalidMove, b.LocationToMove(5, 0))
		require.Equal(t, InvalidMove, b.LocationToMove(0, 7))

		row, col := b.MoveToLocation(35)
		require.Equal(t, -1, row)
		require.Equal(t, -1, col)
	})
}

func TestPlayerOpponent(t *testing.T) {
	require.Equal(t, Player2, Player1.Opponent())
	require.Equal(t, Player1, Player2.Opponent())
	require.Equal(t, NoPlayer, NoPlayer.Opponent())
}
