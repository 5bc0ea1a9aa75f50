package searcher

import (
	"errors"
	"math"

	"gomoku/experiments/metrics"
	"gomoku/game"

	"golang.org/x/exp/rand"
	"lukechampine.com/frand"
)

const (
	DefaultPlayouts     = 400
	DefaultRolloutLimit = 1000
)

var (
	ErrBoardFull = errors.New("board is full")
	ErrGameOver  = errors.New("game is over")
)

type Option func(mcts *MCTS)

// MCTS searches a gomoku position with PUCT selection. The tree survives
// between moves: Advance moves the root down the played move.
//
// An MCTS is not safe for concurrent use.
type MCTS struct {
	evaluator    Evaluator
	playouts     int
	cPuct        float64
	rolloutLimit int
	rng          *rand.Rand
	tree         *tree
	path         []handle
	metrics      metrics.Collector
}

func WithPlayouts(playouts int) Option {
	return func(m *MCTS) {
		if playouts > 0 {
			m.playouts = playouts
		}
	}
}

func WithCPuct(cPuct float64) Option {
	return func(m *MCTS) {
		if cPuct > 0 {
			m.cPuct = cPuct
		}
	}
}

// WithRollout scores leaves by random playouts of at most limit moves
// instead of the evaluator's value.
func WithRollout(limit int) Option {
	return func(m *MCTS) {
		if limit <= 0 {
			limit = DefaultRolloutLimit
		}
		m.rolloutLimit = limit
	}
}

func WithSeed(seed uint64) Option {
	return func(m *MCTS) {
		m.rng = rand.New(rand.NewSource(seed))
	}
}

func WithMetrics() Option {
	return func(m *MCTS) {
		m.metrics = metrics.NewCollector()
	}
}

func NewMCTS(evaluator Evaluator, options ...Option) *MCTS {
	if evaluator == nil {
		panic("evaluator cannot be nil")
	}
	m := &MCTS{ // Default values
		evaluator: evaluator,
		playouts:  DefaultPlayouts,
		cPuct:     DefaultCPuct,
		tree:      newTree(),
		metrics:   metrics.NewDummyCollector(),
	}
	for _, option := range options {
		option(m)
	}
	if m.rng == nil {
		m.rng = rand.New(rand.NewSource(frand.Uint64n(math.MaxUint64)))
	}
	return m
}

// Search runs the configured number of playouts from the current root,
// which must correspond to b.
func (m *MCTS) Search(b *game.Board) (metrics.SearchMetric, error) {
	if ended, _ := b.GameOver(); ended {
		if b.NumAvailable() == 0 {
			return metrics.SearchMetric{}, ErrBoardFull
		}
		return metrics.SearchMetric{}, ErrGameOver
	}

	m.metrics.Start(m.rolloutLimit)
	for i := 0; i < m.playouts; i++ {
		m.playout(*b)
		m.metrics.AddPlayout()
	}
	return m.metrics.Complete(), nil
}

// GetMove searches b and returns the most visited move. On a finished
// board it returns game.InvalidMove and ErrBoardFull or ErrGameOver.
func (m *MCTS) GetMove(b *game.Board) (game.Move, error) {
	if _, err := m.Search(b); err != nil {
		return game.InvalidMove, err
	}
	return m.BestMove(), nil
}

// MoveProbs searches b and returns the root's moves with probabilities
// proportional to visits^(1/temperature).
func (m *MCTS) MoveProbs(b *game.Board, temperature float64) ([]game.Move, []float64, error) {
	if _, err := m.Search(b); err != nil {
		return nil, nil, err
	}
	moves, probs := m.Policy(temperature)
	return moves, probs, nil
}

// Policy returns the root's moves with probabilities proportional to
// visits^(1/temperature), without searching.
func (m *MCTS) Policy(temperature float64) ([]game.Move, []float64) {
	moves, visits := m.rootVisits()
	return moves, adjustTemperature(visits, temperature)
}

// BestMove returns the most visited root move, or game.InvalidMove before
// any search. Ties go to the move the evaluator listed first.
func (m *MCTS) BestMove() game.Move {
	best, maxVisits := game.InvalidMove, -1
	for _, e := range m.tree.nodes[m.tree.root].edges {
		if n := m.tree.nodes[e.child].visits; n > maxVisits {
			best, maxVisits = e.move, n
		}
	}
	return best
}

func (m *MCTS) rootVisits() ([]game.Move, []int) {
	edges := m.tree.nodes[m.tree.root].edges
	moves := make([]game.Move, len(edges))
	visits := make([]int, len(edges))
	for i, e := range edges {
		moves[i] = e.move
		visits[i] = m.tree.nodes[e.child].visits
	}
	return moves, visits
}

// Visits maps each expanded root move to its visit count.
func (m *MCTS) Visits() map[game.Move]int {
	moves, visits := m.rootVisits()
	policy := make(map[game.Move]int, len(moves))
	for i, move := range moves {
		policy[move] = visits[i]
	}
	return policy
}

// Advance moves the root to the child reached by move, keeping its
// statistics. A move the tree never expanded starts a fresh root.
func (m *MCTS) Advance(move game.Move) {
	m.metrics.SetTreeReused(m.tree.reroot(move))
}

// Reset discards the whole tree.
func (m *MCTS) Reset() {
	m.tree = newTree()
	m.metrics.SetTreeReused(false)
}

func (m *MCTS) RootStats() Stats {
	return m.tree.stats(m.tree.root)
}

func (m *MCTS) ChildStats(move game.Move) (Stats, bool) {
	h := m.tree.child(m.tree.root, move)
	if h == noHandle {
		return Stats{}, false
	}
	return m.tree.stats(h), true
}

// TreeSize returns the number of live nodes.
func (m *MCTS) TreeSize() int {
	return m.tree.size()
}

// playout runs one selection, expansion, evaluation and backup on a copy of the board.
func (m *MCTS) playout(state game.Board) {
	t := m.tree
	h := t.root
	m.path = append(m.path[:0], h)
	for !t.isLeaf(h) {
		var move game.Move
		move, h = t.selectChild(h, m.cPuct)
		state.Apply(move)
		m.path = append(m.path, h)
	}

	var value float64
	if ended, winner := state.GameOver(); ended {
		value = outcome(winner, state.Current())
	} else {
		priors, v := m.evaluator.Evaluate(&state)
		t.expand(h, priors)
		value = v
		if m.rolloutLimit > 0 {
			value = m.rollout(state)
		}
	}
	t.backup(m.path, value)
}

// outcome scores a finished game for player.
func outcome(winner, player game.Player) float64 {
	switch winner {
	case game.NoPlayer:
		return DRAW
	case player:
		return WIN
	default:
		return LOSS
	}
}
