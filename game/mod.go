package game

import "errors"

// Player identifies a side. The zero value means no player (empty cell, draw).
type Player int8

const (
	NoPlayer Player = iota
	Player1
	Player2
)

// Opponent returns the other side. NoPlayer has no opponent.
func (p Player) Opponent() Player {
	switch p {
	case Player1:
		return Player2
	case Player2:
		return Player1
	default:
		return NoPlayer
	}
}

// Move is a board location encoded row-major: row*width + col.
type Move int

// InvalidMove is returned for out-of-range locations and when there is no move to play.
const InvalidMove Move = -1

// MaxSide is the side of the largest square board.
const MaxSide = 19

// MaxCells bounds the board so that a Board stays a fixed-size value type.
// Any shape fits as long as width*height stays within it.
const MaxCells = MaxSide * MaxSide

// ErrConfiguration reports board dimensions that cannot hold a winning line.
var ErrConfiguration = errors.New("invalid board configuration")
