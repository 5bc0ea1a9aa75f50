package main

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"gomoku/config"
	"gomoku/experiments/metrics"
	"gomoku/game"

	"github.com/stretchr/testify/require"
)

// firstFree plays the lowest available move.
type firstFree struct{}

func (firstFree) FindMove(b *game.Board) (game.Move, metrics.SearchMetric, error) {
	return b.Available()[0], metrics.SearchMetric{}, nil
}

func (firstFree) Reset() {}

func smallConfig() config.Config {
	cfg := config.Default()
	cfg.Width, cfg.Height, cfg.WinLength = 3, 3, 3
	cfg.Playouts = 20
	cfg.PurePlayouts = 50
	return cfg
}

func TestParseMove(t *testing.T) {
	b := game.NewBoard(3, 3, 3)
	require.NoError(t, b.Init(game.Player1))
	b.Apply(4)

	move, err := parseMove(&b, "2, 1")
	require.NoError(t, err)
	require.Equal(t, game.Move(7), move)

	for _, text := range []string{"1,1", "3,0", "a,b", ""} {
		_, err := parseMove(&b, text)
		require.Error(t, err, text)
	}
}

func TestPlayHuman(t *testing.T) {
	t.Run("human wins the left column", func(t *testing.T) {
		// firstFree takes 1, 2 and 5 while the human builds column 0
		in := strings.NewReader("0,0\nbad\n0,0\n1,1\n1,0\n2,0\n")
		var out bytes.Buffer

		require.NoError(t, playHuman(context.Background(), smallConfig(), firstFree{}, 1, in, &out))
		require.Contains(t, out.String(), "expected row,col")
		require.Contains(t, out.String(), "is not available")
		require.Contains(t, out.String(), "game over, you win")
	})

	t.Run("ai moving first", func(t *testing.T) {
		in := strings.NewReader("1,1\n2,2\n")
		var out bytes.Buffer

		require.NoError(t, playHuman(context.Background(), smallConfig(), firstFree{}, 2, in, &out))
		require.Contains(t, out.String(), "ai played 0,0")
		require.Contains(t, out.String(), "game over, you lose")
	})

	t.Run("input ends", func(t *testing.T) {
		err := playHuman(context.Background(), smallConfig(), firstFree{}, 1, strings.NewReader(""), io.Discard)
		require.ErrorIs(t, err, io.EOF)
	})
}

func TestNewSearchAgent(t *testing.T) {
	cfg := smallConfig()
	b := game.NewBoard(3, 3, 3)
	require.NoError(t, b.Init(game.Player1))

	pure, err := newSearchAgent(cfg, "")
	require.NoError(t, err)
	move, _, err := pure.FindMove(&b)
	require.NoError(t, err)
	require.True(t, b.IsAvailable(move))

	net, err := loadNetwork(cfg, "")
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "model")
	require.NoError(t, net.Save(path))

	guided, err := newSearchAgent(cfg, path)
	require.NoError(t, err)
	move, _, err = guided.FindMove(&b)
	require.NoError(t, err)
	require.True(t, b.IsAvailable(move))

	_, err = newSearchAgent(cfg, filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
}

func TestSetupLogging(t *testing.T) {
	require.NoError(t, setupLogging("debug"))
	require.Error(t, setupLogging("loud"))
	require.NoError(t, setupLogging("info"))
}
