package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"gomoku/game"
	"gomoku/searcher"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

// MoveRequest describes a position by replaying moves on an empty board.
type MoveRequest struct {
	Width     int   `json:"width"`
	Height    int   `json:"height"`
	WinLength int   `json:"win_length"`
	Start     int   `json:"start"`
	Moves     []int `json:"moves"`
}

// maxMoveRequestBytes fits a full board of move indices with room for the other fields.
const maxMoveRequestBytes = 8*game.MaxCells + 1024

type MoveResponse struct {
	Move int `json:"move"`
	Row  int `json:"row"`
	Col  int `json:"col"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// NewRouter serves a on POST /move. Requests are handled one at a time
// since a search tree is not safe for concurrent use.
func NewRouter(a Agent) http.Handler {
	var mu sync.Mutex

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})

	r.Post("/move", func(w http.ResponseWriter, r *http.Request) {
		var payload MoveRequest
		body := http.MaxBytesReader(w, r.Body, maxMoveRequestBytes)
		if err := json.NewDecoder(body).Decode(&payload); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: err.Error()})
				return
			}
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad request: " + err.Error()})
			return
		}
		b, err := payload.Board()
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}

		mu.Lock()
		move, _, err := a.FindMove(&b)
		mu.Unlock()
		if errors.Is(err, searcher.ErrBoardFull) || errors.Is(err, searcher.ErrGameOver) {
			writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
			return
		}
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
			return
		}

		row, col := b.MoveToLocation(move)
		writeJSON(w, http.StatusOK, MoveResponse{Move: int(move), Row: row, Col: col})
	})

	return r
}

// Board replays the request's moves.
func (p MoveRequest) Board() (game.Board, error) {
	b := game.NewBoard(p.Width, p.Height, p.WinLength)
	if p.Start != int(game.Player1) && p.Start != int(game.Player2) {
		return b, fmt.Errorf("start player must be %d or %d, got %d", game.Player1, game.Player2, p.Start)
	}
	if err := b.Init(game.Player(p.Start)); err != nil {
		return b, err
	}
	for _, m := range p.Moves {
		if !b.IsAvailable(game.Move(m)) {
			return b, fmt.Errorf("illegal move %d", m)
		}
		if ended, _ := b.GameOver(); ended {
			return b, fmt.Errorf("move %d after the game ended", m)
		}
		b.Apply(game.Move(m))
	}
	return b, nil
}

// StartAgentServer serves a on addr until ctx is cancelled.
func StartAgentServer(ctx context.Context, addr string, a Agent) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           NewRouter(a),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		log.Info().Msgf("agent server listening on %s", addr)
		errs <- server.ListenAndServe()
	}()

	select {
	case err := <-errs:
		return fmt.Errorf("failed to serve agent: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to shut down agent server: %w", err)
	}
	log.Info().Msg("agent server stopped")
	return nil
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}
