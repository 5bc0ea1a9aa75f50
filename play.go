package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"gomoku/config"
	"gomoku/engine"
	"gomoku/experiments/metrics"
	"gomoku/game"
	"gomoku/searcher/agent"
)

// humanAgent reads "row,col" moves from a terminal.
type humanAgent struct {
	in  *bufio.Scanner
	out io.Writer
}

func (h *humanAgent) FindMove(b *game.Board) (game.Move, metrics.SearchMetric, error) {
	for {
		fmt.Fprint(h.out, "your move (row,col): ")
		if !h.in.Scan() {
			if err := h.in.Err(); err != nil {
				return game.InvalidMove, metrics.SearchMetric{}, err
			}
			return game.InvalidMove, metrics.SearchMetric{}, io.EOF
		}
		move, err := parseMove(b, h.in.Text())
		if err != nil {
			fmt.Fprintln(h.out, err)
			continue
		}
		return move, metrics.SearchMetric{}, nil
	}
}

func (h *humanAgent) Reset() {}

func parseMove(b *game.Board, text string) (game.Move, error) {
	var row, col int
	if _, err := fmt.Sscanf(strings.ReplaceAll(text, " ", ""), "%d,%d", &row, &col); err != nil {
		return game.InvalidMove, fmt.Errorf("invalid move %q, expected row,col", text)
	}
	move := b.LocationToMove(row, col)
	if !b.IsAvailable(move) {
		return game.InvalidMove, fmt.Errorf("location %d,%d is not available", row, col)
	}
	return move, nil
}

// playHuman runs one game between a person and ai. The person always plays
// X; human selects whether X moves first.
func playHuman(ctx context.Context, cfg config.Config, ai agent.Agent, human int, in io.Reader, out io.Writer) error {
	person := &humanAgent{in: bufio.NewScanner(in), out: out}
	e := engine.LocalEngine(game.NewBoard(cfg.Width, cfg.Height, cfg.WinLength), []agent.Agent{person, ai})
	e.OnMove = func(b *game.Board, move game.Move) {
		row, col := b.MoveToLocation(move)
		name := "you"
		if b.At(move) == game.Player2 {
			name = "ai"
		}
		fmt.Fprintf(out, "\n%s played %d,%d\n%s", name, row, col, b.Render(true))
	}

	start := game.Player1
	if human == 2 {
		start = game.Player2
	}
	fmt.Fprintf(out, "you are X, %d in a row wins\n%s", cfg.WinLength, e.Board.Render(true))
	winner, _, _, err := e.Run(ctx, start)
	if err != nil {
		return err
	}

	switch winner {
	case game.Player1:
		fmt.Fprintln(out, "game over, you win")
	case game.Player2:
		fmt.Fprintln(out, "game over, you lose")
	default:
		fmt.Fprintln(out, "game over, tie")
	}
	return nil
}
