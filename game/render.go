package game

import (
	"fmt"
	"strings"

	"github.com/logrusorgru/aurora"
)

// Render draws the board with row 0 at the bottom. Player1 is X, Player2 is O
// and the last move is highlighted when colors are enabled.
func (b *Board) Render(colors bool) string {
	au := aurora.NewAurora(colors)
	var sb strings.Builder

	sb.WriteString("    ")
	for col := 0; col < b.width; col++ {
		fmt.Fprintf(&sb, "%3d", col)
	}
	sb.WriteString("\n")

	for row := b.height - 1; row >= 0; row-- {
		fmt.Fprintf(&sb, "%4d", row)
		for col := 0; col < b.width; col++ {
			m := Move(row*b.width + col)
			var cell aurora.Value
			switch b.cells[m] {
			case Player1:
				cell = au.Red("  X")
			case Player2:
				cell = au.Cyan("  O")
			default:
				cell = au.Faint("  _")
			}
			if m == b.last {
				cell = cell.Bold()
			}
			sb.WriteString(cell.String())
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func (b *Board) String() string {
	return b.Render(false)
}
