package metrics

import (
	"sync/atomic"
	"time"
)

type SearchMetric struct {
	Strategy     string
	Duration     time.Duration
	Episodes     int
	Cutoff       int
	FullPlayouts int
	Nodes        int // Root children plus their children
	Ground       int // Children created by expansions
	Abstract     int // Distinct groups seen during selection
}

// Compression is the ratio of ground nodes to abstract groups, 0 when nothing was grouped.
func (m SearchMetric) Compression() float64 {
	if m.Abstract == 0 {
		return 0
	}
	return float64(m.Ground) / float64(m.Abstract)
}

type MoveMetric struct {
	Turn    int
	Player  int
	Variant string
	Choices int // Legal actions of the next player after the executed action
	Classes int // Distinct canonical successors among those choices, 0 when not symmetric
	SearchMetric
}

type GameMetric struct {
	Winner    int // Player ID, -1 without a winner
	Turns     int
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
}

type Collector interface {
	Start(strategy string, cutoff int)
	AddFullPlayout()
	AddEpisode()
	Complete() SearchMetric
}

type collector struct {
	strategy     string
	cutoff       int
	startTime    time.Time
	episodes     atomic.Int32
	fullPlayouts atomic.Int32
}

func NewCollector() Collector {
	return &collector{}
}

func (m *collector) Start(strategy string, cutoff int) {
	m.startTime = time.Now()
	m.strategy = strategy
	m.cutoff = cutoff
	m.episodes.Store(0)
	m.fullPlayouts.Store(0)
}

func (m *collector) AddFullPlayout() {
	m.fullPlayouts.Add(1)
}

func (m *collector) AddEpisode() {
	m.episodes.Add(1)
}

func (m *collector) Complete() SearchMetric {
	return SearchMetric{
		Strategy:     m.strategy,
		Duration:     time.Since(m.startTime),
		Episodes:     int(m.episodes.Load()),
		FullPlayouts: int(m.fullPlayouts.Load()),
		Cutoff:       m.cutoff,
	}
}

type dummyCollector struct{}

func NewDummyCollector() Collector {
	return &dummyCollector{}
}

func (m *dummyCollector) Start(strategy string, cutoff int) {}
func (m *dummyCollector) AddFullPlayout()                   {}
func (m *dummyCollector) AddEpisode()                       {}
func (m *dummyCollector) Complete() SearchMetric            { return SearchMetric{} }
