package experiments

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"gomoku/experiments/metrics"
	"gomoku/game"

	"github.com/stretchr/testify/require"
)

func smallSettings(t *testing.T) Settings {
	return Settings{Width: 3, Height: 3, WinLength: 3, Games: 2, Seed: 3, OutputDir: t.TempDir()}
}

func readRows(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestRunExperiment(t *testing.T) {
	settings := smallSettings(t)
	weak := metrics.AgentConfig{ID: 1, Playouts: 5, RolloutLimit: 20}
	strong := metrics.AgentConfig{ID: 2, Playouts: 50}

	dir, err := runExperiment(context.Background(), "test", settings,
		[]metrics.AgentConfig{weak, strong},
		[][]metrics.AgentConfig{{weak, strong}, {strong, strong}})
	require.NoError(t, err)
	require.Equal(t, filepath.Join(settings.OutputDir, "test"), filepath.Dir(dir))

	require.Len(t, readRows(t, filepath.Join(dir, "agent_configs.csv")), 3)

	games := readRows(t, filepath.Join(dir, "game_records.csv"))
	require.Len(t, games, 1+4)

	moves := readRows(t, filepath.Join(dir, "move_records.csv"))
	require.GreaterOrEqual(t, len(moves), 1+4*5, "a 3x3 game lasts at least 5 moves")
	require.LessOrEqual(t, len(moves), 1+4*9)
}

func TestRunGameAlternatesStart(t *testing.T) {
	settings := smallSettings(t)
	config := metrics.AgentConfig{ID: 1, Playouts: 10}

	for _, start := range []game.Player{game.Player1, game.Player2} {
		_, gameMetric, moveMetrics, err := runGame(context.Background(), settings, config, config, start, 7)
		require.NoError(t, err)
		require.Equal(t, int(start), gameMetric.StartingPlayer)
		require.Equal(t, int(start), moveMetrics[0].Player)
		for _, mm := range moveMetrics {
			require.Equal(t, 10, mm.Playouts)
		}
	}
}

func TestRunExperimentCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := RunPlayoutExperiment(ctx, smallSettings(t))
	require.ErrorIs(t, err, context.Canceled)
}

func TestThroughput(t *testing.T) {
	games := []metrics.GameRecord{
		{ID: 1, Agent1: 2, Agent2: 2},
		{ID: 2, Agent1: 1, Agent2: 1},
	}
	moves := []metrics.MoveRecord{
		{Game: 1, MoveMetric: metrics.MoveMetric{SearchMetric: metrics.SearchMetric{Playouts: 100, Duration: time.Second}}},
		{Game: 1, MoveMetric: metrics.MoveMetric{SearchMetric: metrics.SearchMetric{Playouts: 300, Duration: time.Second}}},
		{Game: 2, MoveMetric: metrics.MoveMetric{SearchMetric: metrics.SearchMetric{Playouts: 50, Duration: 500 * time.Millisecond}}},
	}

	require.Equal(t, []Throughput{
		{Agent: 1, Moves: 1, PlayoutsPerSecond: 100},
		{Agent: 2, Moves: 2, PlayoutsPerSecond: 200},
	}, throughput(games, moves))
}
