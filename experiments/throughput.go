package experiments

import (
	"context"
	"slices"
	"time"

	"gomoku/experiments/metrics"
	"gomoku/game"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

var throughputConfigs = []metrics.AgentConfig{
	{ID: 1, Playouts: 100},
	{ID: 2, Playouts: 400},
	{ID: 3, Playouts: 1600},
}

// Throughput is the search speed of one agent config over an experiment.
type Throughput struct {
	Agent             int
	Moves             int
	PlayoutsPerSecond float64
}

// RunThroughputExperiment plays each config against itself, for the same
// playing strength and similar game length, and reports playouts per second.
func RunThroughputExperiment(ctx context.Context, settings Settings) ([]Throughput, error) {
	matchUps := [][]metrics.AgentConfig{}
	for _, config := range throughputConfigs {
		matchUps = append(matchUps, []metrics.AgentConfig{config, config})
	}

	var moves []metrics.MoveRecord
	var games []metrics.GameRecord
	count := 0
	for _, matchup := range matchUps {
		for i := 0; i < settings.Games; i++ {
			_, gameMetric, moveMetrics, err := runGame(ctx, settings, matchup[0], matchup[1], game.Player(1+i%2), settings.Seed+uint64(2*count))
			if err != nil {
				return nil, err
			}
			count++
			games = append(games, metrics.GameRecord{ID: count, Agent1: matchup[0].ID, Agent2: matchup[1].ID, GameMetric: gameMetric})
			for _, mm := range moveMetrics {
				moves = append(moves, metrics.MoveRecord{Game: count, MoveMetric: mm})
			}
		}
	}

	if _, err := writeRecords(settings.OutputDir, "throughput", throughputConfigs, games, moves); err != nil {
		return nil, err
	}
	return throughput(games, moves), nil
}

func throughput(games []metrics.GameRecord, moves []metrics.MoveRecord) []Throughput {
	agentOf := lo.SliceToMap(games, func(g metrics.GameRecord) (int, int) {
		return g.ID, g.Agent1
	})
	byAgent := lo.GroupBy(moves, func(m metrics.MoveRecord) int {
		return agentOf[m.Game]
	})

	results := make([]Throughput, 0, len(byAgent))
	ids := lo.Uniq(lo.Values(agentOf))
	slices.Sort(ids)
	for _, id := range ids {
		records := byAgent[id]
		playouts := lo.SumBy(records, func(m metrics.MoveRecord) int { return m.Playouts })
		duration := lo.SumBy(records, func(m metrics.MoveRecord) time.Duration { return m.Duration })
		result := Throughput{Agent: id, Moves: len(records)}
		if duration > 0 {
			result.PlayoutsPerSecond = float64(playouts) / duration.Seconds()
		}
		log.Info().Int("agent", id).Int("moves", result.Moves).Float64("playouts_per_second", result.PlayoutsPerSecond).Msg("throughput")
		results = append(results, result)
	}
	return results
}
