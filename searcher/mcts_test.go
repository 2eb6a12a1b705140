package searcher

import (
	"emcts/game"
	"emcts/game/ktk"
	"emcts/game/xo"
	"testing"

	"github.com/stretchr/testify/require"
)

// rootVisits sums the effective visits of the root's children, counting each group once.
func rootVisits(tr *tree) int {
	total := 0
	seen := make(map[int]bool)
	for _, c := range tr.node(tr.root()).children {
		if g := tr.node(c).group; g != nilGroup {
			if seen[g] {
				continue
			}
			seen[g] = true
		}
		visits, _ := tr.stats(c)
		total += visits
	}
	return total
}

func requireGroupsConsistent(t *testing.T, tr *tree) {
	t.Helper()
	for id, g := range tr.groups {
		for _, m := range g.members {
			require.Equal(t, id, tr.node(m).group, "member should point back to its group")
			require.Equal(t, tr.node(g.members[0]).parent, tr.node(m).parent, "members should be siblings")
		}
	}
	for i, nd := range tr.nodes {
		if nd.group != nilGroup {
			require.Contains(t, tr.groups[nd.group].members, naughty(i))
		}
	}
}

func abstraction(kind Kind, batch, alpha int) AbstractionConfig {
	config := DefaultAbstraction()
	config.Strategy = kind
	config.BatchSize = batch
	config.AlphaAbs = alpha
	return config
}

func TestSearchBudget(t *testing.T) {
	t.Run("zero budget returns the first legal action without growing the tree", func(t *testing.T) {
		m := NewMCTS(0, WithSeed(1))

		action, metric, err := m.Search(&mockState{width: 3, depth: 2}, 0)

		require.NoError(t, err)
		require.Equal(t, mockAction{id: 0}, action)
		require.Len(t, m.tree.nodes, 1)
		require.Equal(t, 0, metric.Nodes)
	})

	for _, kind := range []Kind{None, Random, Similarity} {
		t.Run("single episode visits one child and leaves its expanded siblings unvisited with "+string(kind)+" grouping", func(t *testing.T) {
			m := NewMCTS(1, WithSeed(3), WithAbstraction(abstraction(kind, 20, 160)))

			action, _, err := m.Search(&mockState{width: 3, depth: 3}, 0)

			require.NoError(t, err)
			var visited []naughty
			for _, c := range m.tree.node(m.tree.root()).children {
				if m.tree.node(c).visits > 0 {
					visited = append(visited, c)
				}
			}
			require.Len(t, m.tree.node(m.tree.root()).children, 3)
			require.Len(t, visited, 1)
			require.Equal(t, 1, m.tree.node(visited[0]).visits)
			require.Equal(t, m.tree.node(visited[0]).action, action)
		})
	}

	t.Run("no legal actions is reported", func(t *testing.T) {
		_, _, err := NewMCTS(10).Search(&mockState{width: 3, depth: 0}, 0)

		require.ErrorIs(t, err, ErrNoActions)
	})
}

func TestRollout(t *testing.T) {
	searchAs := func(player, cutoff int) *search {
		return &search{MCTS: NewMCTS(1, WithSeed(1), WithCutoff(cutoff), WithMetrics()), player: player}
	}

	t.Run("cutoff stops an endless playout and scores it with the heuristic", func(t *testing.T) {
		s := searchAs(0, 3)
		sim := &mockState{width: 2, depth: 100, score: 0.25}
		s.metrics.Start("none", 3)

		reward := s.rollout(sim)

		require.Len(t, sim.played, 3)
		require.Equal(t, 0.25, reward)
		require.Equal(t, 0, s.metrics.Complete().FullPlayouts)
	})

	t.Run("heuristic is read from the searching player's view", func(t *testing.T) {
		s := searchAs(1, 3)

		reward := s.rollout(&mockState{width: 2, depth: 100, score: 0.25})

		require.Equal(t, -0.25, reward)
	})

	t.Run("finished playout is rewarded by the outcome", func(t *testing.T) {
		winner := func() *mockState { return &mockState{width: 2, depth: 2, winning: 0, played: []int{0}} }

		s := searchAs(0, 20)
		s.metrics.Start("none", 20)
		require.Equal(t, 1.0, s.rollout(winner()))
		require.Equal(t, 1, s.metrics.Complete().FullPlayouts)

		require.Equal(t, -1.0, searchAs(1, 20).rollout(winner()))
	})

	t.Run("draw is worth nothing", func(t *testing.T) {
		s := searchAs(0, 20)

		require.Equal(t, 0.0, s.rollout(&mockState{width: 2, depth: 2, draw: true, score: 0.5}))
	})

	t.Run("privileged actions are always preferred", func(t *testing.T) {
		s := searchAs(0, 20)
		actions := (&mockState{width: 5, depth: 1, privileged: []int{1, 3}}).LegalActions()

		for i := 0; i < 50; i++ {
			picked := s.pickRollout(actions).(mockAction)
			require.True(t, picked.privileged)
			require.Contains(t, []int{1, 3}, picked.id)
		}
	})

	t.Run("full playouts follow the cutoff", func(t *testing.T) {
		_, short, err := NewMCTS(8, WithSeed(2), WithCutoff(10), WithMetrics()).Search(&mockState{width: 3, depth: 4}, 0)
		require.NoError(t, err)
		require.Equal(t, 8, short.FullPlayouts, "every playout ends within the cutoff")

		_, deep, err := NewMCTS(8, WithSeed(2), WithCutoff(1), WithMetrics()).Search(&mockState{width: 3, depth: 10}, 0)
		require.NoError(t, err)
		require.Equal(t, 0, deep.FullPlayouts)
		require.Equal(t, 8, deep.Episodes)
	})
}

func TestSearchInvariants(t *testing.T) {
	const episodes = 60
	state := &mockState{width: 5, depth: 4, privileged: []int{1}}

	for _, kind := range []Kind{None, Random, Similarity} {
		t.Run("root visits equal the episode count with "+string(kind)+" grouping", func(t *testing.T) {
			m := NewMCTS(episodes, WithSeed(7), WithAbstraction(abstraction(kind, 5, 1000)))

			_, _, err := m.Search(state, 0)

			require.NoError(t, err)
			require.Equal(t, episodes, rootVisits(m.tree))
			require.Equal(t, episodes, m.tree.node(m.tree.root()).visits)
			requireGroupsConsistent(t, m.tree)
		})
	}

	t.Run("groups exist before the stop threshold", func(t *testing.T) {
		m := NewMCTS(episodes, WithSeed(7), WithAbstraction(abstraction(Similarity, 5, 1000)))

		_, _, err := m.Search(state, 0)

		require.NoError(t, err)
		grouped := 0
		for _, nd := range m.tree.nodes {
			if nd.group != nilGroup {
				grouped++
			}
		}
		require.Greater(t, grouped, 0)
	})

	t.Run("no group survives the stop threshold", func(t *testing.T) {
		m := NewMCTS(episodes, WithSeed(7), WithAbstraction(abstraction(Similarity, 1, 10)))

		_, _, err := m.Search(state, 0)

		require.NoError(t, err)
		for _, nd := range m.tree.nodes {
			require.Equal(t, nilGroup, nd.group)
		}
		require.Equal(t, episodes, rootVisits(m.tree))
	})

	t.Run("fixed seed reproduces the search", func(t *testing.T) {
		run := func() (game.Action, int) {
			m := NewMCTS(episodes, WithSeed(11), WithAbstraction(abstraction(Random, 5, 40)))
			action, metric, err := m.Search(state, 0)
			require.NoError(t, err)
			return action, metric.Abstract
		}

		a1, abs1 := run()
		a2, abs2 := run()

		require.Equal(t, a1, a2)
		require.Equal(t, abs1, abs2)
	})

	t.Run("missing capability falls back to ungrouped search", func(t *testing.T) {
		m := NewMCTS(episodes, WithSeed(7), WithAbstraction(abstraction(Similarity, 5, 1000)))

		_, metric, err := m.Search(opaque{state}, 0)

		require.NoError(t, err)
		require.Empty(t, m.tree.groups)
		require.Equal(t, 0, metric.Abstract)
	})
}

func TestSelection(t *testing.T) {
	setup := func() *search {
		state := &mockState{width: 3, depth: 2}
		tr := newTree(state)
		tr.expand(tr.root(), state)
		return &search{MCTS: NewMCTS(1, WithSeed(1)), tree: tr, observed: make(map[int]struct{})}
	}

	t.Run("unvisited child outranks a strong visited one", func(t *testing.T) {
		s := setup()
		s.tree.node(0).visits = 5
		s.tree.node(1).visits, s.tree.node(1).value = 5, 5
		s.tree.node(2).visits, s.tree.node(2).value = 0, 0
		s.tree.node(3).visits, s.tree.node(3).value = 0, 0

		require.Equal(t, naughty(2), s.pickChild(0))
	})

	t.Run("winning group yields one of its members", func(t *testing.T) {
		s := setup()
		s.tree.node(0).visits = 3
		s.tree.node(1).visits, s.tree.node(1).value = 3, 3
		s.tree.newGroup([]naughty{2, 3})

		picked := s.pickChild(0)

		require.Contains(t, []naughty{2, 3}, picked)
		require.Len(t, s.observed, 1)
	})

	t.Run("better mean wins among visited children", func(t *testing.T) {
		s := setup()
		s.tree.node(0).visits = 6
		for _, c := range []naughty{1, 2, 3} {
			s.tree.node(c).visits = 2
		}
		s.tree.node(3).value = 2

		require.Equal(t, naughty(3), s.pickChild(0))
	})

	t.Run("unvisited privileged child is expanded first", func(t *testing.T) {
		state := &mockState{width: 4, depth: 2, privileged: []int{2}}
		tr := newTree(state)
		tr.expand(tr.root(), state)
		s := &search{MCTS: NewMCTS(1, WithSeed(1)), tree: tr}

		require.Equal(t, naughty(3), s.pickUnvisited(0))
	})
}

func TestSearchPlays(t *testing.T) {
	t.Run("finds the winning move", func(t *testing.T) {
		action, _, err := Search(&mockState{width: 3, depth: 1, winning: 2}, 0, 30, DefaultAbstraction(), WithSeed(5))

		require.NoError(t, err)
		require.Equal(t, mockAction{id: 2}, action)
	})

	t.Run("kill-the-king prefers attacks", func(t *testing.T) {
		board := []int{
			1, 0, 0, 0,
			0, 2, 6, 0,
			0, 0, 0, 0,
			0, 0, 0, 5,
		}
		state := ktk.NewFromBoard(4, ktk.DefaultMaxTurns, board, 0, ktk.Warrior)

		action, metric, err := Search(state, 0, 40, abstraction(Similarity, 20, 160), WithSeed(1), WithMetrics())

		require.NoError(t, err)
		require.True(t, action.IsPrivileged())
		require.Equal(t, 40, metric.Episodes)
		require.Equal(t, "similarity", metric.Strategy)
		require.Greater(t, metric.Ground, 0)
		require.Greater(t, metric.Abstract, 0)
		require.Greater(t, metric.Nodes, 0)
	})

	t.Run("tic-tac-toe takes the win", func(t *testing.T) {
		state := xo.FromBoard([9]int{
			xo.X, xo.X, xo.Empty,
			xo.O, xo.O, xo.Empty,
			xo.Empty, xo.Empty, xo.Empty,
		})
		config := abstraction(Symmetry, 10, 30)

		action, metric, err := Search(state, 0, 200, config, WithSeed(2), WithExploration(1.4))

		require.NoError(t, err)
		require.Equal(t, xo.Action{Cell: 2}, action)
		require.Greater(t, metric.Abstract, 0)
	})
}

func TestDOT(t *testing.T) {
	t.Run("renders the last tree", func(t *testing.T) {
		m := NewMCTS(10, WithSeed(1), WithAbstraction(abstraction(Similarity, 5, 100)))
		_, _, err := m.Search(&mockState{width: 3, depth: 3}, 0)
		require.NoError(t, err)

		out, err := m.DOT(2)

		require.NoError(t, err)
		require.Contains(t, out, "digraph search")
		require.Contains(t, out, "->")
		require.Contains(t, out, "fillcolor")
	})

	t.Run("fails before any search", func(t *testing.T) {
		_, err := NewMCTS(10).DOT(1)

		require.Error(t, err)
	})
}
