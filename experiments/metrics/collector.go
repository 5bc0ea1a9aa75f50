package metrics

import (
	"sync/atomic"
	"time"
)

type SearchMetric struct {
	Duration     time.Duration
	Playouts     int
	RolloutLimit int // 0 when leaves are scored by the evaluator directly
	FullRollouts int
	IsTreeReused bool
}

type MoveMetric struct {
	Step   int
	Player int // game.Player
	Move   int
	SearchMetric
}

type GameMetric struct {
	StartingPlayer int // game.Player
	Winner         int // game.Player, 0 on a draw
	StartTime      time.Time
	EndTime        time.Time
	Duration       time.Duration
	TotalMoves     int
}

type Collector interface {
	Start(rolloutLimit int)
	SetTreeReused(value bool)
	AddFullRollout()
	AddPlayout()
	Complete() SearchMetric
}

type collector struct {
	rolloutLimit int
	startTime    time.Time
	playouts     atomic.Int32
	fullRollouts atomic.Int32
	isTreeReused atomic.Bool
}

func NewCollector() Collector {
	return &collector{}
}

func (m *collector) SetTreeReused(value bool) {
	m.isTreeReused.Store(value)
}

// Start begins a new search. Tree reuse is left as set by the last SetTreeReused.
func (m *collector) Start(rolloutLimit int) {
	m.startTime = time.Now()
	m.rolloutLimit = rolloutLimit
	m.playouts.Store(0)
	m.fullRollouts.Store(0)
}

func (m *collector) AddFullRollout() {
	m.fullRollouts.Add(1)
}

func (m *collector) AddPlayout() {
	m.playouts.Add(1)
}

func (m *collector) Complete() SearchMetric {
	return SearchMetric{
		Duration:     time.Since(m.startTime),
		Playouts:     int(m.playouts.Load()),
		RolloutLimit: m.rolloutLimit,
		FullRollouts: int(m.fullRollouts.Load()),
		IsTreeReused: m.isTreeReused.Load(),
	}
}

type dummyCollector struct{}

func NewDummyCollector() Collector {
	return &dummyCollector{}
}

func (m *dummyCollector) Start(rolloutLimit int)   {}
func (m *dummyCollector) SetTreeReused(value bool) {}
func (m *dummyCollector) AddFullRollout()          {}
func (m *dummyCollector) AddPlayout()              {}
func (m *dummyCollector) Complete() SearchMetric   { return SearchMetric{} }
