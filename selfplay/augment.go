package selfplay

import "gomoku/replay"

// Transform is a symmetry of the board: an optional left-right flip
// followed by Rotations quarter turns counterclockwise.
type Transform struct {
	Rotations int
	Flip      bool
}

// Transforms returns the 8 transforms used for augmentation. Quarter turns
// do not preserve a non-square board, so those get the 4 shape-preserving
// transforms twice each.
func Transforms(height, width int) []Transform {
	if height == width {
		var all []Transform
		for _, flip := range []bool{false, true} {
			for k := 0; k < 4; k++ {
				all = append(all, Transform{Rotations: k, Flip: flip})
			}
		}
		return all
	}
	preserving := []Transform{{0, false}, {2, false}, {0, true}, {2, true}}
	return append(preserving, preserving...)
}

// mapCell returns where (row, col) of a height x width grid lands and the
// transformed grid's dimensions.
func (t Transform) mapCell(row, col, height, width int) (int, int, int, int) {
	if t.Flip {
		col = width - 1 - col
	}
	for k := 0; k < t.Rotations%4; k++ {
		row, col, height, width = width-1-col, row, width, height
	}
	return row, col, height, width
}

// Apply transforms every height x width plane of grid.
func (t Transform) Apply(grid []float32, height, width int) []float32 {
	out := make([]float32, len(grid))
	size := height * width
	for offset := 0; offset+size <= len(grid); offset += size {
		for row := 0; row < height; row++ {
			for col := 0; col < width; col++ {
				r, c, _, w := t.mapCell(row, col, height, width)
				out[offset+r*w+c] = grid[offset+row*width+col]
			}
		}
	}
	return out
}

// Inverse undoes Apply. height and width are the dimensions before Apply.
func (t Transform) Inverse(grid []float32, height, width int) []float32 {
	out := make([]float32, len(grid))
	size := height * width
	for offset := 0; offset+size <= len(grid); offset += size {
		for row := 0; row < height; row++ {
			for col := 0; col < width; col++ {
				r, c, _, w := t.mapCell(row, col, height, width)
				out[offset+row*width+col] = grid[offset+r*w+c]
			}
		}
	}
	return out
}

// Augment expands s into 8 samples, one per transform. The outcome does not
// change under symmetry.
func Augment(s replay.Sample, height, width int) []replay.Sample {
	transforms := Transforms(height, width)
	out := make([]replay.Sample, len(transforms))
	for i, t := range transforms {
		out[i] = replay.Sample{
			State:   t.Apply(s.State, height, width),
			Probs:   t.Apply(s.Probs, height, width),
			Outcome: s.Outcome,
		}
	}
	return out
}
