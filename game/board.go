package game

import (
	"fmt"

	"golang.org/x/exp/rand"
)

// Board is the state of one gomoku game: a width x height grid where the
// first player to line up winLength stones wins.
//
// Board is a value type. Copying it with plain assignment yields an
// independent board, which is how simulations get their scratch state.
type Board struct {
	width     int
	height    int
	winLength int

	cells [MaxCells]Player
	// free holds the available moves (unordered), slot the index of each move in free
	free  [MaxCells]int16
	slot  [MaxCells]int16
	nFree int
	// history holds the occupied moves in play order
	history [MaxCells]int16
	nMoves  int

	current Player
	last    Move
}

// NewBoard returns an uninitialized board. Init must be called before play.
func NewBoard(width, height, winLength int) Board {
	return Board{
		width:     width,
		height:    height,
		winLength: winLength,
		last:      InvalidMove,
	}
}

// Init clears the board and hands the first move to start.
func (b *Board) Init(start Player) error {
	if b.width < 1 || b.height < 1 || b.winLength < 1 {
		return fmt.Errorf("%w: board %dx%d with %d in a row", ErrConfiguration, b.width, b.height, b.winLength)
	}
	if b.winLength > b.width || b.winLength > b.height {
		return fmt.Errorf("%w: board width and height can not be less than %d", ErrConfiguration, b.winLength)
	}
	if b.width > MaxCells || b.height > MaxCells || b.width*b.height > MaxCells {
		return fmt.Errorf("%w: board can not have more than %d cells", ErrConfiguration, MaxCells)
	}
	if start != Player1 && start != Player2 {
		return fmt.Errorf("%w: start player must be %d or %d, got %d", ErrConfiguration, Player1, Player2, start)
	}

	size := b.Size()
	for i := 0; i < size; i++ {
		b.cells[i] = NoPlayer
		b.free[i] = int16(i)
		b.slot[i] = int16(i)
	}
	b.nFree = size
	b.nMoves = 0
	b.current = start
	b.last = InvalidMove
	return nil
}

// Apply plays m for the current player. m must be an available move.
func (b *Board) Apply(m Move) {
	if !b.IsAvailable(m) {
		panic(fmt.Sprintf("illegal move %d", m))
	}

	b.cells[m] = b.current

	// Swap-remove m from the free list
	i := b.slot[m]
	moved := b.free[b.nFree-1]
	b.free[i] = moved
	b.slot[moved] = i
	b.slot[m] = -1
	b.nFree--

	b.history[b.nMoves] = int16(m)
	b.nMoves++

	b.current = b.current.Opponent()
	b.last = m
}

// Winner reports whether some player has winLength stones in a row.
func (b *Board) Winner() (bool, Player) {
	n := b.winLength
	// No line can exist before the first player has placed n stones
	if b.nMoves < 2*n-1 {
		return false, NoPlayer
	}

	w, h := b.width, b.height
	// Every line starts on an occupied cell, so only those are scanned
	for k := 0; k < b.nMoves; k++ {
		m := int(b.history[k])
		row, col := m/w, m%w
		p := b.cells[m]

		if col <= w-n && b.isLine(m, 1, p) {
			return true, p
		}
		if row <= h-n && b.isLine(m, w, p) {
			return true, p
		}
		if col <= w-n && row <= h-n && b.isLine(m, w+1, p) {
			return true, p
		}
		if col >= n-1 && row <= h-n && b.isLine(m, w-1, p) {
			return true, p
		}
	}
	return false, NoPlayer
}

func (b *Board) isLine(start, step int, p Player) bool {
	for k := 1; k < b.winLength; k++ {
		if b.cells[start+k*step] != p {
			return false
		}
	}
	return true
}

// GameOver reports whether the game has ended and who won. A full board
// without a line is a draw: (true, NoPlayer).
func (b *Board) GameOver() (bool, Player) {
	if won, winner := b.Winner(); won {
		return true, winner
	}
	if b.nFree == 0 {
		return true, NoPlayer
	}
	return false, NoPlayer
}

// Current returns the player to move.
func (b *Board) Current() Player {
	return b.current
}

// LastMove returns the most recent move, or InvalidMove on an empty board.
func (b *Board) LastMove() Move {
	return b.last
}

func (b *Board) Width() int {
	return b.width
}

func (b *Board) Height() int {
	return b.height
}

func (b *Board) WinLength() int {
	return b.winLength
}

// Size returns the number of cells.
func (b *Board) Size() int {
	return b.width * b.height
}

// At returns the occupant of m.
func (b *Board) At(m Move) Player {
	if m < 0 || int(m) >= b.Size() {
		return NoPlayer
	}
	return b.cells[m]
}

// IsAvailable reports whether m is on the board and unoccupied.
func (b *Board) IsAvailable(m Move) bool {
	return m >= 0 && int(m) < b.Size() && b.slot[m] >= 0 && int(b.slot[m]) < b.nFree
}

// NumAvailable returns the number of legal moves.
func (b *Board) NumAvailable() int {
	return b.nFree
}

// NumMoves returns the number of stones on the board.
func (b *Board) NumMoves() int {
	return b.nMoves
}

// Available returns the legal moves in ascending order.
func (b *Board) Available() []Move {
	moves := make([]Move, 0, b.nFree)
	size := b.Size()
	for i := 0; i < size; i++ {
		if b.cells[i] == NoPlayer {
			moves = append(moves, Move(i))
		}
	}
	return moves
}

// Moves returns the occupied moves in play order.
func (b *Board) Moves() []Move {
	moves := make([]Move, b.nMoves)
	for i := 0; i < b.nMoves; i++ {
		moves[i] = Move(b.history[i])
	}
	return moves
}

// Occupancy maps every occupied move to its owner.
func (b *Board) Occupancy() map[Move]Player {
	occupancy := make(map[Move]Player, b.nMoves)
	for i := 0; i < b.nMoves; i++ {
		m := Move(b.history[i])
		occupancy[m] = b.cells[m]
	}
	return occupancy
}

// RandomMove returns a uniformly random legal move, or InvalidMove on a full board.
func (b *Board) RandomMove(rng *rand.Rand) Move {
	if b.nFree == 0 {
		return InvalidMove
	}
	return Move(b.free[rng.Intn(b.nFree)])
}

// MoveToLocation converts m to (row, col); out of range moves give (-1, -1).
func (b *Board) MoveToLocation(m Move) (row, col int) {
	if m < 0 || int(m) >= b.Size() {
		return -1, -1
	}
	return int(m) / b.width, int(m) % b.width
}

// LocationToMove converts (row, col) to a move; out of range locations give InvalidMove.
func (b *Board) LocationToMove(row, col int) Move {
	if row < 0 || row >= b.height || col < 0 || col >= b.width {
		return InvalidMove
	}
	return Move(row*b.width + col)
}
