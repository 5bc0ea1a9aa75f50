package trainer

import (
	"context"

	"gomoku/engine"
	"gomoku/game"
	"gomoku/searcher"
	"gomoku/searcher/agent"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Result counts arena games from the network's point of view.
type Result struct {
	Wins   int
	Losses int
	Ties   int
}

// WinRatio counts a tie as half a win.
func (r Result) WinRatio() float64 {
	games := r.Wins + r.Losses + r.Ties
	if games == 0 {
		return 0
	}
	return (float64(r.Wins) + 0.5*float64(r.Ties)) / float64(games)
}

// Arena benchmarks an evaluator against the pure search baseline.
type Arena interface {
	Play(ctx context.Context, evaluator searcher.Evaluator, purePlayouts, games int) (Result, error)
}

// EngineArena plays engine games between an evaluator-driven search and a
// rollout search with uniform priors. The first mover alternates, starting
// with the evaluator. Up to Workers games run at once.
type EngineArena struct {
	Width, Height, WinLength int
	Playouts                 int
	CPuct                    float64
	RolloutLimit             int
	Workers                  int
	Seed                     uint64
}

func (a EngineArena) Play(ctx context.Context, evaluator searcher.Evaluator, purePlayouts, games int) (Result, error) {
	winners := make([]game.Player, games)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(a.Workers, 1))
	for i := 0; i < games; i++ {
		g.Go(func() error {
			current := agent.NewEvaluationAgent(searcher.NewMCTS(evaluator,
				searcher.WithPlayouts(a.Playouts),
				searcher.WithCPuct(a.CPuct),
				searcher.WithSeed(a.Seed+uint64(2*i))))
			pure := agent.NewEvaluationAgent(searcher.NewMCTS(searcher.UniformEvaluator{},
				searcher.WithPlayouts(purePlayouts),
				searcher.WithCPuct(searcher.DefaultCPuct),
				searcher.WithRollout(a.RolloutLimit),
				searcher.WithSeed(a.Seed+uint64(2*i+1))))

			start := game.Player1
			if i%2 == 1 {
				start = game.Player2
			}
			e := engine.LocalEngine(game.NewBoard(a.Width, a.Height, a.WinLength), []agent.Agent{current, pure})
			winner, _, _, err := e.Run(ctx, start)
			if err != nil {
				return err
			}
			log.Debug().Int("game", i+1).Int("start", int(start)).Int("winner", int(winner)).Msg("arena game")
			winners[i] = winner
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	var r Result
	for _, w := range winners {
		switch w {
		case game.Player1:
			r.Wins++
		case game.Player2:
			r.Losses++
		default:
			r.Ties++
		}
	}
	return r, nil
}
