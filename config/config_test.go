package config

import (
	"os"
	"path/filepath"
	"testing"

	"gomoku/game"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	require.Equal(t, 8, cfg.Width)
	require.Equal(t, 5, cfg.WinLength)
	require.Equal(t, 0.02, cfg.KLTarget)
	require.Equal(t, 512, cfg.BatchSize)
	require.Equal(t, 1000, cfg.PurePlayouts)
}

func TestLoad(t *testing.T) {
	t.Run("overlays the file on defaults", func(t *testing.T) {
		path := writeConfig(t, "board_width: 6\nboard_height: 6\nn_in_row: 4\nn_playout: 50\nseed: 42\n")

		cfg, err := Load(path)
		require.NoError(t, err)
		require.Equal(t, 6, cfg.Width)
		require.Equal(t, 4, cfg.WinLength)
		require.Equal(t, 50, cfg.Playouts)
		require.Equal(t, uint64(42), cfg.Seed)
		require.Equal(t, Default().BatchSize, cfg.BatchSize)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		require.ErrorContains(t, err, "failed to read config")
	})

	t.Run("malformed yaml", func(t *testing.T) {
		_, err := Load(writeConfig(t, "board_width: [\n"))
		require.ErrorContains(t, err, "failed to parse config")
	})

	t.Run("invalid values", func(t *testing.T) {
		_, err := Load(writeConfig(t, "n_in_row: 9\n"))
		require.ErrorIs(t, err, ErrInvalid)
		require.ErrorIs(t, err, game.ErrConfiguration)
	})
}

func TestValidate(t *testing.T) {
	cases := map[string]func(c *Config){
		"zero batch size":        func(c *Config) { c.BatchSize = 0 },
		"negative learning rate": func(c *Config) { c.LearnRate = -1 },
		"negative l2":            func(c *Config) { c.L2 = -0.1 },
		"win ratio above one":    func(c *Config) { c.BestWinRatio = 1.5 },
		"cap below budget":       func(c *Config) { c.PurePlayoutCap = 10 },
		"no arena workers":       func(c *Config) { c.ArenaWorkers = 0 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(&cfg)
			require.ErrorIs(t, cfg.Validate(), ErrInvalid)
		})
	}
}
