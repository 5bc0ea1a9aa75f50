package experiments

import (
	"context"
	"fmt"
	"path/filepath"

	"gomoku/engine"
	"gomoku/experiments/metrics"
	"gomoku/game"
	"gomoku/searcher"
	"gomoku/searcher/agent"

	"github.com/rs/zerolog/log"
)

// Settings are shared by every matchup of an experiment.
type Settings struct {
	Width, Height, WinLength int
	Games                    int // per matchup
	Seed                     uint64
	OutputDir                string
}

func DefaultSettings() Settings {
	return Settings{Width: 8, Height: 8, WinLength: 5, Games: 10, Seed: 1, OutputDir: "experiments"}
}

var baseline = metrics.AgentConfig{ID: 0, Playouts: 1000, CPuct: searcher.DefaultCPuct, RolloutLimit: searcher.DefaultRolloutLimit}

var playoutConfigs = []metrics.AgentConfig{
	{ID: 1, Playouts: 250, CPuct: searcher.DefaultCPuct, RolloutLimit: searcher.DefaultRolloutLimit},
	{ID: 2, Playouts: 500, CPuct: searcher.DefaultCPuct, RolloutLimit: searcher.DefaultRolloutLimit},
	{ID: 3, Playouts: 1000, CPuct: searcher.DefaultCPuct, RolloutLimit: searcher.DefaultRolloutLimit}, // Baseline equivalent
	{ID: 4, Playouts: 2000, CPuct: searcher.DefaultCPuct, RolloutLimit: searcher.DefaultRolloutLimit},
	{ID: 5, Playouts: 4000, CPuct: searcher.DefaultCPuct, RolloutLimit: searcher.DefaultRolloutLimit},
}

// RunPlayoutExperiment pairs the baseline agent against agents with smaller
// and larger playout budgets. It returns the folder holding the records.
func RunPlayoutExperiment(ctx context.Context, settings Settings) (string, error) {
	matchUps := [][]metrics.AgentConfig{}
	for _, config := range playoutConfigs {
		matchUps = append(matchUps, []metrics.AgentConfig{baseline, config})
	}

	return runExperiment(ctx, "playouts", settings, append(playoutConfigs, baseline), matchUps)
}

func runExperiment(ctx context.Context, name string, settings Settings, configs []metrics.AgentConfig, matchUps [][]metrics.AgentConfig) (string, error) {
	// Run a number of games for each matchup
	count := 0
	gameRecords := []metrics.GameRecord{}
	moveRecords := []metrics.MoveRecord{}

	log.Info().Msgf("starting %s experiment...", name)

	for mi, matchup := range matchUps {
		config1 := matchup[0]
		config2 := matchup[1]

		log.Info().Msgf("starting matchup %d of %d between agent1=%+v and agent2=%+v...", mi+1, len(matchUps), config1, config2)

		for i := 0; i < settings.Games; i++ {
			// Alternate the starting agent
			start := game.Player1
			if i%2 == 1 {
				start = game.Player2
			}
			seed := settings.Seed + uint64(2*count)

			winner, gameMetric, moveMetrics, err := runGame(ctx, settings, config1, config2, start, seed)
			if err != nil {
				return "", fmt.Errorf("matchup %d game %d failed: %w", mi+1, i+1, err)
			}
			count++
			gameRecords = append(gameRecords, metrics.GameRecord{
				ID:         count,
				Agent1:     config1.ID,
				Agent2:     config2.ID,
				GameMetric: gameMetric,
			})
			for _, mm := range moveMetrics {
				moveRecords = append(moveRecords, metrics.MoveRecord{
					Game:       count,
					MoveMetric: mm,
				})
			}

			log.Info().Msgf("completed matchup %d of %d game %d with winner: %d", mi+1, len(matchUps), i+1, winner)
		}
		log.Info().Msgf("completed matchup %d of %d", mi+1, len(matchUps))
	}

	log.Info().Msgf("completed %s experiment", name)

	dir, err := writeRecords(settings.OutputDir, name, configs, gameRecords, moveRecords)
	if err != nil {
		return "", err
	}
	return dir, nil
}

func writeRecords(root, name string, configs []metrics.AgentConfig, games []metrics.GameRecord, moves []metrics.MoveRecord) (string, error) {
	writer, err := metrics.NewWriter(filepath.Join(root, name))
	if err != nil {
		return "", fmt.Errorf("failed to create experiment writer: %w", err)
	}

	if err := writer.WriteAgentConfigs(configs); err != nil {
		return "", fmt.Errorf("failed to store agent configs: %w", err)
	}
	if err := writer.WriteGameRecords(games); err != nil {
		return "", fmt.Errorf("failed to write game records: %w", err)
	}
	if err := writer.WriteMoveRecords(moves); err != nil {
		return "", fmt.Errorf("failed to write move records: %w", err)
	}
	log.Info().Str("dir", writer.Dir()).Msg("stored experiment records")
	return writer.Dir(), nil
}

// runGame executes a single game between two agents and returns the winner
func runGame(ctx context.Context, settings Settings, config1, config2 metrics.AgentConfig, start game.Player, seed uint64) (game.Player, metrics.GameMetric, []metrics.MoveMetric, error) {
	agents := []agent.Agent{
		agent.NewEvaluationAgent(createMCTS(config1, seed)),
		agent.NewEvaluationAgent(createMCTS(config2, seed+1)),
	}
	e := engine.LocalEngine(game.NewBoard(settings.Width, settings.Height, settings.WinLength), agents)
	return e.Run(ctx, start)
}

// createMCTS builds a pure search: uniform priors and random rollouts.
func createMCTS(config metrics.AgentConfig, seed uint64) *searcher.MCTS {
	options := []searcher.Option{searcher.WithSeed(seed), searcher.WithMetrics()}

	if config.Playouts > 0 {
		options = append(options, searcher.WithPlayouts(config.Playouts))
	}
	if config.CPuct > 0 {
		options = append(options, searcher.WithCPuct(config.CPuct))
	}
	options = append(options, searcher.WithRollout(config.RolloutLimit))

	return searcher.NewMCTS(searcher.UniformEvaluator{}, options...)
}
