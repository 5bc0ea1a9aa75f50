package game

// Planes is the number of feature planes produced by Encode.
const Planes = 4

// Encode returns the board from the current player's perspective as
// Planes x height x width float32 values, plane-major:
//
//	0: current player's stones
//	1: opponent's stones
//	2: last move
//	3: all ones when an even number of stones has been played (first mover to play)
//
// Plane cell (r, c) sits at offset plane*height*width + r*width + c, the same
// layout as move indices, so a grid transform applies to planes and move
// probabilities alike.
func (b *Board) Encode() []float32 {
	size := b.Size()
	t := make([]float32, Planes*size)

	for i := 0; i < b.nMoves; i++ {
		m := int(b.history[i])
		if b.cells[m] == b.current {
			t[m] = 1
		} else {
			t[size+m] = 1
		}
	}
	if b.last != InvalidMove {
		t[2*size+int(b.last)] = 1
	}
	if b.nMoves%2 == 0 {
		for i := 3 * size; i < 4*size; i++ {
			t[i] = 1
		}
	}
	return t
}
