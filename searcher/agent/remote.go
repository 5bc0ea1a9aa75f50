package agent

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"gomoku/experiments/metrics"
	"gomoku/game"
	"gomoku/searcher"

	"github.com/samber/lo"
)

// RemoteAgent asks an agent server for moves.
type RemoteAgent struct {
	url    string
	client *http.Client
}

func NewRemoteAgent(url string, timeout time.Duration) *RemoteAgent {
	return &RemoteAgent{
		url:    strings.TrimRight(url, "/"),
		client: &http.Client{Timeout: timeout},
	}
}

func (a *RemoteAgent) FindMove(b *game.Board) (game.Move, metrics.SearchMetric, error) {
	start := time.Now()
	if ended, _ := b.GameOver(); ended {
		if b.NumAvailable() == 0 {
			return game.InvalidMove, metrics.SearchMetric{}, searcher.ErrBoardFull
		}
		return game.InvalidMove, metrics.SearchMetric{}, searcher.ErrGameOver
	}

	// The first mover is to play again after an even number of stones
	first := b.Current()
	if b.NumMoves()%2 == 1 {
		first = first.Opponent()
	}
	payload := MoveRequest{
		Width:     b.Width(),
		Height:    b.Height(),
		WinLength: b.WinLength(),
		Start:     int(first),
		Moves:     lo.Map(b.Moves(), func(m game.Move, _ int) int { return int(m) }),
	}

	// Marshal to JSON
	bodyBytes, err := json.Marshal(payload)
	if err != nil {
		return game.InvalidMove, metrics.SearchMetric{}, fmt.Errorf("failed to encode move request: %w", err)
	}

	resp, err := a.client.Post(a.url+"/move", "application/json", bytes.NewReader(bodyBytes))
	if err != nil {
		return game.InvalidMove, metrics.SearchMetric{}, fmt.Errorf("failed to request move: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		out, _ := io.ReadAll(resp.Body)
		return game.InvalidMove, metrics.SearchMetric{}, fmt.Errorf("agent returned status %d: %s", resp.StatusCode, bytes.TrimSpace(out))
	}

	var reply MoveResponse
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return game.InvalidMove, metrics.SearchMetric{}, fmt.Errorf("failed to decode move: %w", err)
	}
	move := game.Move(reply.Move)
	if !b.IsAvailable(move) {
		return game.InvalidMove, metrics.SearchMetric{}, fmt.Errorf("agent returned illegal move %d", reply.Move)
	}

	return move, metrics.SearchMetric{Duration: time.Since(start)}, nil
}

// Reset is a no-op: the server searches every request from scratch.
func (a *RemoteAgent) Reset() {}
