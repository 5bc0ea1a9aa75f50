package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gomoku/config"
	"gomoku/experiments"
	"gomoku/experiments/metrics"
	"gomoku/network"
	"gomoku/searcher"
	"gomoku/searcher/agent"
	"gomoku/trainer"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const usage = `usage: gomoku <command> [flags]

commands:
  train       train a policy-value network by self-play
  play        play against a trained network or pure search
  serve       serve moves over HTTP
  experiment  run search agent matchups
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch cmd, args := os.Args[1], os.Args[2:]; cmd {
	case "train":
		err = runTrain(ctx, args)
	case "play":
		err = runPlay(ctx, args)
	case "serve":
		err = runServe(ctx, args)
	case "experiment":
		err = runExperiment(ctx, args)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("command failed")
	}
}

func newFlagSet(name string) (*flag.FlagSet, *string) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	level := fs.String("log-level", "info", "zerolog level: trace, debug, info, warn, error")
	return fs, level
}

func setupLogging(level string) error {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	zerolog.SetGlobalLevel(lvl)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})
	return nil
}

// loadConfig returns the defaults when path is empty.
func loadConfig(path string) (config.Config, error) {
	if path == "" {
		cfg := config.Default()
		return cfg, cfg.Validate()
	}
	return config.Load(path)
}

// loadNetwork reads a linear network checkpoint sized for cfg.
func loadNetwork(cfg config.Config, path string) (*network.Linear, error) {
	net := network.NewLinear(cfg.Width, cfg.Height, cfg.L2)
	if path == "" {
		return net, nil
	}
	if err := net.Load(path); err != nil {
		return nil, fmt.Errorf("failed to load model %s: %w", path, err)
	}
	log.Info().Str("model", path).Msg("loaded model")
	return net, nil
}

// newSearchAgent searches with the network at modelPath, or with uniform
// priors and rollouts when no model is given.
func newSearchAgent(cfg config.Config, modelPath string) (agent.Agent, error) {
	if modelPath == "" {
		log.Info().Int("playouts", cfg.PurePlayouts).Msg("no model, using pure search")
		return agent.NewEvaluationAgent(searcher.NewMCTS(searcher.UniformEvaluator{},
			searcher.WithPlayouts(cfg.PurePlayouts),
			searcher.WithCPuct(cfg.CPuct),
			searcher.WithRollout(cfg.RolloutLimit))), nil
	}
	net, err := loadNetwork(cfg, modelPath)
	if err != nil {
		return nil, err
	}
	return agent.NewEvaluationAgent(searcher.NewMCTS(net,
		searcher.WithPlayouts(cfg.Playouts),
		searcher.WithCPuct(cfg.CPuct))), nil
}

func runTrain(ctx context.Context, args []string) error {
	fs, level := newFlagSet("train")
	configPath := fs.String("config", "", "YAML config file")
	fs.Parse(args)
	if err := setupLogging(*level); err != nil {
		return err
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	net, err := loadNetwork(cfg, cfg.InitModel)
	if err != nil {
		return err
	}
	writer, err := metrics.NewWriter(cfg.OutputDir)
	if err != nil {
		return err
	}
	log.Info().Str("dir", writer.Dir()).Msgf("training config %+v", cfg)

	t, err := trainer.New(cfg, net, trainer.WithWriter(writer))
	if err != nil {
		return err
	}
	return t.Run(ctx)
}

func runPlay(ctx context.Context, args []string) error {
	fs, level := newFlagSet("play")
	configPath := fs.String("config", "", "YAML config file for the board and search")
	model := fs.String("model", "", "model checkpoint; pure search when empty")
	human := fs.Int("human", 1, "human plays as player 1 (moves first) or 2")
	fs.Parse(args)
	if err := setupLogging(*level); err != nil {
		return err
	}
	if *human != 1 && *human != 2 {
		return fmt.Errorf("-human must be 1 or 2, got %d", *human)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	ai, err := newSearchAgent(cfg, *model)
	if err != nil {
		return err
	}
	return playHuman(ctx, cfg, ai, *human, os.Stdin, os.Stdout)
}

func runServe(ctx context.Context, args []string) error {
	fs, level := newFlagSet("serve")
	configPath := fs.String("config", "", "YAML config file for the search")
	model := fs.String("model", "", "model checkpoint; pure search when empty")
	addr := fs.String("addr", ":8080", "listen address")
	fs.Parse(args)
	if err := setupLogging(*level); err != nil {
		return err
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	a, err := newSearchAgent(cfg, *model)
	if err != nil {
		return err
	}
	return agent.StartAgentServer(ctx, *addr, a)
}

func runExperiment(ctx context.Context, args []string) error {
	defaults := experiments.DefaultSettings()
	fs, level := newFlagSet("experiment")
	name := fs.String("name", "playouts", "experiment to run: playouts or throughput")
	games := fs.Int("games", defaults.Games, "games per matchup")
	width := fs.Int("width", defaults.Width, "board width")
	height := fs.Int("height", defaults.Height, "board height")
	n := fs.Int("n", defaults.WinLength, "stones in a row to win")
	seed := fs.Uint64("seed", defaults.Seed, "base seed")
	out := fs.String("out", defaults.OutputDir, "output directory")
	fs.Parse(args)
	if err := setupLogging(*level); err != nil {
		return err
	}

	settings := experiments.Settings{Width: *width, Height: *height, WinLength: *n, Games: *games, Seed: *seed, OutputDir: *out}
	switch *name {
	case "playouts":
		_, err := experiments.RunPlayoutExperiment(ctx, settings)
		return err
	case "throughput":
		_, err := experiments.RunThroughputExperiment(ctx, settings)
		return err
	default:
		return fmt.Errorf("unknown experiment %q", *name)
	}
}
