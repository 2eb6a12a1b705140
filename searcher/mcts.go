package searcher

import (
	"emcts/experiments/metrics"
	"emcts/game"
	"emcts/meta"
	"math"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
)

// ErrNoActions is returned when the root state has no legal action to recommend.
var ErrNoActions = errors.New("no legal actions available")

type Option func(mcts *MCTS)

type MCTS struct {
	episodes    int
	cutoff      int
	exploration float64
	abstraction AbstractionConfig
	rng         *rand.Rand
	metrics     metrics.Collector
	tree        *tree // Last decision's tree
}

func WithCutoff(depth int) Option {
	return func(m *MCTS) {
		if depth > 0 {
			m.cutoff = depth
		}
	}
}

func WithExploration(c float64) Option {
	return func(m *MCTS) {
		if c >= 0 {
			m.exploration = c
		}
	}
}

func WithAbstraction(config AbstractionConfig) Option {
	return func(m *MCTS) {
		m.abstraction = config
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

// DefaultAbstraction leaves the tree ungrouped.
func DefaultAbstraction() AbstractionConfig {
	return AbstractionConfig{
		Strategy:          None,
		BatchSize:         meta.BatchSize,
		AlphaAbs:          meta.AlphaAbs,
		Thresholds:        game.Thresholds{EtaR: meta.EtaR, EtaT: meta.EtaT},
		RandomGroups:      meta.RandomGroups,
		IsolatePrivileged: true,
	}
}

func NewMCTS(episodes int, options ...Option) *MCTS {
	m := &MCTS{ // Default values
		episodes:    max(episodes, 0),
		cutoff:      meta.Cutoff,
		exploration: meta.Exploration,
		abstraction: DefaultAbstraction(),
		metrics:     metrics.NewDummyCollector(),
	}
	for _, option := range options {
		option(m)
	}
	if m.rng == nil {
		m.rng = rand.New(rand.NewSource(uint64(time.Now().UnixNano())))
	}
	return m
}

// Search runs the fixed episode budget from state and recommends an action for player.
// With a zero budget the first legal action is returned without growing the tree.
func Search(state game.State, player, budget int, config AbstractionConfig, options ...Option) (game.Action, metrics.SearchMetric, error) {
	options = append(options, WithAbstraction(config))
	return NewMCTS(budget, options...).Search(state, player)
}

// search holds the bookkeeping of one decision.
type search struct {
	*MCTS
	tree     *tree
	player   int
	config   AbstractionConfig // Effective abstraction, ungrouped when unsupported
	strategy Strategy
	ground   int
	observed map[int]struct{}
}

func (m *MCTS) Search(state game.State, player int) (game.Action, metrics.SearchMetric, error) {
	actions := state.LegalActions()
	if len(actions) == 0 {
		return nil, metrics.SearchMetric{}, ErrNoActions
	}

	config := m.abstraction
	strategy, err := NewStrategy(config, state)
	if err != nil {
		log.Warn().Err(err).Msg("falling back to ungrouped search")
		config.Strategy = None
	}

	s := &search{
		MCTS:     m,
		tree:     newTree(state.Copy()),
		player:   player,
		config:   config,
		strategy: strategy,
		observed: make(map[int]struct{}),
	}
	m.tree = s.tree

	m.metrics.Start(string(config.Strategy), m.cutoff)
	for i := 0; i < m.episodes; i++ {
		if i == config.AlphaAbs && i > 0 {
			s.tree.dissolve()
		}
		s.iterate(state, i)
		m.metrics.AddEpisode()
	}
	metric := m.metrics.Complete()
	metric.Strategy = string(config.Strategy)
	metric.Nodes = s.tree.size()
	metric.Ground = s.ground
	metric.Abstract = len(s.observed)

	action := actions[0]
	if best := s.tree.recommend(); best.isValid() {
		action = s.tree.node(best).action
	}

	log.Debug().
		Str("strategy", metric.Strategy).
		Int("episodes", m.episodes).
		Int("nodes", metric.Nodes).
		Int("ground", metric.Ground).
		Int("abstract", metric.Abstract).
		Msgf("player %d chose %s", player, action)
	return action, metric, nil
}

func (s *search) iterate(state game.State, iteration int) {
	n, sim := s.selectThenExpand(state.Copy(), iteration)
	reward := s.rollout(sim)
	s.tree.backprop(n, reward)
}

func (s *search) selectThenExpand(sim game.State, iteration int) (naughty, game.State) {
	t := s.tree
	n := t.root()

	for t.isFullyExpanded(n, sim) && len(t.node(n).children) > 0 {
		n = s.pickChild(n)
		sim.Step(t.node(n).action)
	}

	if t.isFullyExpanded(n, sim) {
		return n, sim
	}

	created := t.expand(n, sim)
	s.ground += created
	if created == 0 {
		return n, sim
	}

	if s.config.checkpoint(iteration) {
		t.abstract(n, s.strategy, s.config, s.rng)
	} else if iteration >= s.config.AlphaAbs {
		t.ungroup(t.node(n).children)
	}

	if child := s.pickUnvisited(n); child.isValid() {
		n = child
		sim.Step(t.node(n).action)
	}
	return n, sim
}

// pickChild scores each distinct group and each ungrouped child by UCB1. A winning group
// yields one of its members uniformly at random. Ties go to the first in expansion order.
func (s *search) pickChild(n naughty) naughty {
	t := s.tree
	parentVisits := t.node(n).visits

	best, bestGroup := nilNode, nilGroup
	bestScore := math.Inf(-1)
	seen := make(map[int]bool)
	for _, c := range t.node(n).children {
		g := t.node(c).group
		if g != nilGroup {
			if seen[g] {
				continue
			}
			seen[g] = true
			s.observed[g] = struct{}{}
		}
		score := t.score(c, parentVisits, s.exploration)
		if !best.isValid() || score > bestScore {
			best, bestGroup, bestScore = c, g, score
		}
	}

	if bestGroup != nilGroup {
		members := t.groups[bestGroup].members
		best = members[s.rng.Intn(len(members))]
	}
	return best
}

// pickUnvisited prefers privileged children among those never visited.
func (s *search) pickUnvisited(n naughty) naughty {
	var unvisited, privileged []naughty
	for _, c := range s.tree.node(n).children {
		if s.tree.node(c).visits > 0 {
			continue
		}
		unvisited = append(unvisited, c)
		if s.tree.node(c).action.IsPrivileged() {
			privileged = append(privileged, c)
		}
	}

	switch {
	case len(privileged) > 0:
		return privileged[s.rng.Intn(len(privileged))]
	case len(unvisited) > 0:
		return unvisited[s.rng.Intn(len(unvisited))]
	default:
		return nilNode
	}
}

// rollout plays sim out, preferring privileged actions, until the game ends or the cutoff depth.
func (s *search) rollout(sim game.State) float64 {
	for depth := 0; !sim.IsDone() && depth < s.cutoff; depth++ {
		actions := sim.LegalActions()
		if len(actions) == 0 {
			break
		}
		sim.Step(s.pickRollout(actions))
	}

	if sim.IsDone() {
		s.metrics.AddFullPlayout()
		return game.Reward(sim, s.player)
	}

	// At cutoff, score the state from the searching player's perspective
	return game.EvaluateHeuristic(sim, s.player)
}

func (s *search) pickRollout(actions []game.Action) game.Action {
	var privileged []game.Action
	for _, a := range actions {
		if a.IsPrivileged() {
			privileged = append(privileged, a)
		}
	}
	if len(privileged) > 0 {
		return privileged[s.rng.Intn(len(privileged))]
	}
	return actions[s.rng.Intn(len(actions))]
}
