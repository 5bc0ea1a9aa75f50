package config

import (
	"errors"
	"fmt"
	"os"

	"gomoku/game"

	"gopkg.in/yaml.v3"
)

var ErrInvalid = errors.New("invalid config")

// Config holds every training and search setting. Components receive the
// values they need explicitly.
type Config struct {
	Width     int `yaml:"board_width"`
	Height    int `yaml:"board_height"`
	WinLength int `yaml:"n_in_row"`

	LearnRate    float64 `yaml:"learn_rate"`
	L2           float64 `yaml:"l2_const"`
	LRMultiplier float64 `yaml:"lr_multiplier"` // starting value, adapted by KL
	Temperature  float64 `yaml:"temp"`
	Playouts     int     `yaml:"n_playout"`
	CPuct        float64 `yaml:"c_puct"`
	RolloutLimit int     `yaml:"rollout_limit"`

	BufferSize    int     `yaml:"buffer_size"`
	BatchSize     int     `yaml:"batch_size"`
	PlayBatchSize int     `yaml:"play_batch_size"` // self-play games per batch
	Epochs        int     `yaml:"epochs"`
	KLTarget      float64 `yaml:"kl_targ"`
	CheckFreq     int     `yaml:"check_freq"`
	GameBatches   int     `yaml:"game_batch_num"`

	BestWinRatio    float64 `yaml:"best_win_ratio"`
	PurePlayouts    int     `yaml:"pure_mcts_playout_num"`
	PurePlayoutStep int     `yaml:"pure_mcts_playout_step"`
	PurePlayoutCap  int     `yaml:"pure_mcts_playout_max"`
	ArenaGames      int     `yaml:"arena_games"`
	ArenaWorkers    int     `yaml:"arena_workers"`

	Seed      uint64 `yaml:"seed"` // 0 draws a random seed
	OutputDir string `yaml:"output_dir"`
	InitModel string `yaml:"init_model"`
}

func Default() Config {
	return Config{
		Width:     8,
		Height:    8,
		WinLength: 5,

		LearnRate:    2e-3,
		L2:           1e-4,
		LRMultiplier: 1.0,
		Temperature:  1.0,
		Playouts:     400,
		CPuct:        5,
		RolloutLimit: 1000,

		BufferSize:    10000,
		BatchSize:     512,
		PlayBatchSize: 1,
		Epochs:        5,
		KLTarget:      0.02,
		CheckFreq:     100,
		GameBatches:   3000,

		BestWinRatio:    0.0,
		PurePlayouts:    1000,
		PurePlayoutStep: 1000,
		PurePlayoutCap:  5000,
		ArenaGames:      10,
		ArenaWorkers:    1,

		OutputDir: "runs",
	}
}

// Load overlays the YAML file at path on the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	b := game.NewBoard(c.Width, c.Height, c.WinLength)
	if err := b.Init(game.Player1); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	positive := map[string]float64{
		"learn_rate":            c.LearnRate,
		"lr_multiplier":         c.LRMultiplier,
		"temp":                  c.Temperature,
		"n_playout":             float64(c.Playouts),
		"c_puct":                c.CPuct,
		"rollout_limit":         float64(c.RolloutLimit),
		"buffer_size":           float64(c.BufferSize),
		"batch_size":            float64(c.BatchSize),
		"play_batch_size":       float64(c.PlayBatchSize),
		"epochs":                float64(c.Epochs),
		"kl_targ":               c.KLTarget,
		"check_freq":            float64(c.CheckFreq),
		"game_batch_num":        float64(c.GameBatches),
		"pure_mcts_playout_num": float64(c.PurePlayouts),
		"arena_games":           float64(c.ArenaGames),
		"arena_workers":         float64(c.ArenaWorkers),
	}
	for name, value := range positive {
		if value <= 0 {
			return fmt.Errorf("%w: %s must be positive, got %v", ErrInvalid, name, value)
		}
	}
	if c.L2 < 0 || c.PurePlayoutStep < 0 {
		return fmt.Errorf("%w: l2_const and pure_mcts_playout_step can not be negative", ErrInvalid)
	}
	if c.BestWinRatio < 0 || c.BestWinRatio > 1 {
		return fmt.Errorf("%w: best_win_ratio must be in [0, 1], got %v", ErrInvalid, c.BestWinRatio)
	}
	if c.PurePlayoutCap < c.PurePlayouts {
		return fmt.Errorf("%w: pure_mcts_playout_max %d is below pure_mcts_playout_num %d", ErrInvalid, c.PurePlayoutCap, c.PurePlayouts)
	}
	return nil
}
