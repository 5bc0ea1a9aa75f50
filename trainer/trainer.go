package trainer

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"gomoku/config"
	"gomoku/experiments/metrics"
	"gomoku/game"
	"gomoku/replay"
	"gomoku/searcher"
	"gomoku/searcher/agent"
	"gomoku/selfplay"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"golang.org/x/exp/rand"
	"lukechampine.com/frand"
)

const (
	minLRMultiplier = 0.1
	maxLRMultiplier = 10.0
	lrFactor        = 1.5
)

type Option func(t *Trainer)

// WithArena replaces the engine arena used by ArenaEvaluate.
func WithArena(arena Arena) Option {
	return func(t *Trainer) {
		if arena != nil {
			t.arena = arena
		}
	}
}

// WithWriter records update and arena diagnostics as CSV and an HTML report.
func WithWriter(writer *metrics.Writer) Option {
	return func(t *Trainer) {
		t.writer = writer
	}
}

// Trainer owns the state of one training run: the network, the replay
// buffer, the learning rate multiplier and the arena curriculum.
type Trainer struct {
	cfg    config.Config
	net    Network
	buffer *replay.Buffer
	rng    *rand.Rand
	player *agent.TrainingAgent
	arena  Arena
	writer *metrics.Writer

	lrMultiplier float64
	bestWinRatio float64
	purePlayouts int

	updates []metrics.UpdateRecord
	arenas  []metrics.ArenaRecord
}

// UpdateStats are the diagnostics of one PolicyUpdate.
type UpdateStats struct {
	KL              float64
	LRMultiplier    float64 // after adjustment
	Loss            float64
	Entropy         float64
	ExplainedVarOld float64
	ExplainedVarNew float64
	Epochs          int // gradient steps taken
}

// ArenaStats are the outcome of one ArenaEvaluate.
type ArenaStats struct {
	Result
	WinRatio     float64
	PurePlayouts int // baseline strength the games were played at
	Improved     bool
	Harder       bool // baseline strength was raised afterwards
}

func New(cfg config.Config, net Network, options ...Option) (*Trainer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = frand.Uint64n(math.MaxUint64)
	}
	log.Info().Uint64("seed", seed).Msg("trainer seed")

	mcts := searcher.NewMCTS(net,
		searcher.WithPlayouts(cfg.Playouts),
		searcher.WithCPuct(cfg.CPuct),
		searcher.WithSeed(seed+1))

	t := &Trainer{
		cfg:          cfg,
		net:          net,
		buffer:       replay.NewBuffer(cfg.BufferSize),
		rng:          rand.New(rand.NewSource(seed)),
		player:       agent.NewTrainingAgent(mcts, cfg.Temperature, seed+2),
		lrMultiplier: cfg.LRMultiplier,
		bestWinRatio: cfg.BestWinRatio,
		purePlayouts: cfg.PurePlayouts,
		arena: EngineArena{
			Width:        cfg.Width,
			Height:       cfg.Height,
			WinLength:    cfg.WinLength,
			Playouts:     cfg.Playouts,
			CPuct:        cfg.CPuct,
			RolloutLimit: cfg.RolloutLimit,
			Workers:      cfg.ArenaWorkers,
			Seed:         seed + 3,
		},
	}
	for _, option := range options {
		option(t)
	}
	return t, nil
}

func (t *Trainer) Buffer() *replay.Buffer {
	return t.buffer
}

func (t *Trainer) LRMultiplier() float64 {
	return t.lrMultiplier
}

func (t *Trainer) BestWinRatio() float64 {
	return t.bestWinRatio
}

func (t *Trainer) PurePlayouts() int {
	return t.purePlayouts
}

// CollectSelfPlay plays games of the network against itself and adds the
// augmented samples to the buffer. It returns the length of the last game.
func (t *Trainer) CollectSelfPlay(ctx context.Context, games int) (int, error) {
	episodeLen := 0
	for i := 0; i < games; i++ {
		_, samples, err := selfplay.Play(ctx, game.NewBoard(t.cfg.Width, t.cfg.Height, t.cfg.WinLength), t.player)
		if err != nil {
			return episodeLen, err
		}
		episodeLen = len(samples)
		for _, s := range samples {
			t.buffer.Add(selfplay.Augment(s, t.cfg.Height, t.cfg.Width)...)
		}
	}
	return episodeLen, nil
}

// PolicyUpdate trains the network on one mini-batch with a learning rate
// adapted to how far each update moves the policy.
func (t *Trainer) PolicyUpdate() UpdateStats {
	batch := t.buffer.Sample(t.rng, t.cfg.BatchSize)
	states := make([][]float32, len(batch))
	probs := make([][]float32, len(batch))
	outcomes := make([]float32, len(batch))
	for i, s := range batch {
		states[i], probs[i], outcomes[i] = s.State, s.Probs, s.Outcome
	}

	oldProbs, oldValues := t.net.PolicyValue(states)
	newValues := oldValues
	var stats UpdateStats
	for i := 0; i < t.cfg.Epochs; i++ {
		stats.Loss, stats.Entropy = t.net.TrainStep(states, probs, outcomes, t.cfg.LearnRate*t.lrMultiplier)
		stats.Epochs++

		var newProbs [][]float32
		newProbs, newValues = t.net.PolicyValue(states)
		stats.KL = meanKL(oldProbs, newProbs)
		if stats.KL > 4*t.cfg.KLTarget {
			// Early stopping if D_KL diverges badly
			break
		}
	}

	// Adjust the learning rate
	if stats.KL > 2*t.cfg.KLTarget && t.lrMultiplier > minLRMultiplier {
		t.lrMultiplier = math.Max(t.lrMultiplier/lrFactor, minLRMultiplier)
	} else if stats.KL < t.cfg.KLTarget/2 && t.lrMultiplier < maxLRMultiplier {
		t.lrMultiplier = math.Min(t.lrMultiplier*lrFactor, maxLRMultiplier)
	}
	stats.LRMultiplier = t.lrMultiplier

	stats.ExplainedVarOld = explainedVariance(outcomes, oldValues)
	stats.ExplainedVarNew = explainedVariance(outcomes, newValues)
	return stats
}

// ArenaEvaluate plays games against the pure search baseline. A new best
// win ratio checkpoints the network as best; a perfect score also makes the
// baseline stronger and resets the best ratio.
func (t *Trainer) ArenaEvaluate(ctx context.Context, games int) (ArenaStats, error) {
	result, err := t.arena.Play(ctx, t.net, t.purePlayouts, games)
	if err != nil {
		return ArenaStats{}, fmt.Errorf("failed to run arena: %w", err)
	}

	stats := ArenaStats{Result: result, WinRatio: result.WinRatio(), PurePlayouts: t.purePlayouts}
	log.Info().
		Int("playouts", t.purePlayouts).
		Int("win", result.Wins).
		Int("lose", result.Losses).
		Int("tie", result.Ties).
		Float64("ratio", stats.WinRatio).
		Msg("arena")

	if stats.WinRatio > t.bestWinRatio {
		log.Info().Float64("ratio", stats.WinRatio).Msg("new best policy")
		stats.Improved = true
		t.bestWinRatio = stats.WinRatio
		if err := t.save("best"); err != nil {
			return stats, err
		}

		if t.bestWinRatio == 1.0 && t.purePlayouts < t.cfg.PurePlayoutCap {
			t.purePlayouts += t.cfg.PurePlayoutStep
			t.bestWinRatio = 0.0
			stats.Harder = true
			log.Info().Int("playouts", t.purePlayouts).Msg("stronger baseline")
		}
	}
	return stats, nil
}

// Run alternates self-play and policy updates for the configured number of
// batches, benchmarking every CheckFreq batches. Cancelling ctx stops the
// run and returns nil.
func (t *Trainer) Run(ctx context.Context) error {
	for i := 0; i < t.cfg.GameBatches; i++ {
		episodeLen, err := t.CollectSelfPlay(ctx, t.cfg.PlayBatchSize)
		if errors.Is(err, context.Canceled) {
			log.Info().Msg("quit")
			return nil
		}
		if err != nil {
			return err
		}
		log.Info().Int("batch", i+1).Int("episode_len", episodeLen).Msg("self-play")

		if t.buffer.Len() > t.cfg.BatchSize {
			stats := t.PolicyUpdate()
			log.Info().
				Float64("kl", stats.KL).
				Float64("lr_multiplier", stats.LRMultiplier).
				Float64("loss", stats.Loss).
				Float64("entropy", stats.Entropy).
				Float64("explained_var_old", stats.ExplainedVarOld).
				Float64("explained_var_new", stats.ExplainedVarNew).
				Msg("policy-update")
			t.updates = append(t.updates, metrics.UpdateRecord{
				Batch:           i + 1,
				KL:              stats.KL,
				LRMultiplier:    stats.LRMultiplier,
				Loss:            stats.Loss,
				Entropy:         stats.Entropy,
				ExplainedVarOld: stats.ExplainedVarOld,
				ExplainedVarNew: stats.ExplainedVarNew,
				Epochs:          stats.Epochs,
			})
		}

		if (i+1)%t.cfg.CheckFreq == 0 {
			log.Info().Int("batch", i+1).Msg("current self-play batch")
			stats, err := t.ArenaEvaluate(ctx, t.cfg.ArenaGames)
			if errors.Is(err, context.Canceled) {
				log.Info().Msg("quit")
				return nil
			}
			if err != nil {
				return err
			}
			if err := t.save("current"); err != nil {
				return err
			}
			t.arenas = append(t.arenas, metrics.ArenaRecord{
				Batch:        i + 1,
				PurePlayouts: stats.PurePlayouts,
				Wins:         stats.Wins,
				Losses:       stats.Losses,
				Ties:         stats.Ties,
				WinRatio:     stats.WinRatio,
			})
			if err := t.writeRecords(); err != nil {
				return err
			}
		}
	}
	return t.writeRecords()
}

// ModelPath returns where the named checkpoint is saved: next to the run's
// records when a writer is set, in OutputDir otherwise.
func (t *Trainer) ModelPath(name string) string {
	return filepath.Join(t.modelDir(), fmt.Sprintf("%s_policy_%d.model", name, t.cfg.Width))
}

func (t *Trainer) modelDir() string {
	if t.writer != nil {
		return t.writer.Dir()
	}
	return t.cfg.OutputDir
}

func (t *Trainer) save(name string) error {
	if t.modelDir() == "" {
		return nil
	}
	if err := os.MkdirAll(t.modelDir(), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := t.net.Save(t.ModelPath(name)); err != nil {
		return fmt.Errorf("failed to save %s policy: %w", name, err)
	}
	return nil
}

func (t *Trainer) writeRecords() error {
	if t.writer == nil {
		return nil
	}
	if err := t.writer.WriteUpdateRecords(t.updates); err != nil {
		return err
	}
	if err := t.writer.WriteArenaRecords(t.arenas); err != nil {
		return err
	}
	return t.writer.WriteReport(t.updates, t.arenas)
}

// meanKL averages Σ old·(log old - log new) over the batch.
func meanKL(oldProbs, newProbs [][]float32) float64 {
	if len(oldProbs) == 0 {
		return 0
	}
	total := 0.0
	for i := range oldProbs {
		for j, p := range oldProbs[i] {
			old := float64(p)
			total += old * (math.Log(old+1e-10) - math.Log(float64(newProbs[i][j])+1e-10))
		}
	}
	return total / float64(len(oldProbs))
}

// explainedVariance is 1 - Var(z - v)/Var(z), or 0 when z is constant.
func explainedVariance(outcomes, values []float32) float64 {
	diffs := make([]float64, len(outcomes))
	zs := make([]float64, len(outcomes))
	for i := range outcomes {
		zs[i] = float64(outcomes[i])
		diffs[i] = float64(outcomes[i] - values[i])
	}
	varZ := variance(zs)
	if varZ == 0 {
		return 0
	}
	return 1 - variance(diffs)/varZ
}

func variance(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	mean := lo.Sum(xs) / float64(len(xs))
	v := 0.0
	for _, x := range xs {
		v += (x - mean) * (x - mean)
	}
	return v / float64(len(xs))
}
