package searcher

import (
	"emcts/game"

	"github.com/pkg/errors"
	"golang.org/x/exp/rand"
)

type Kind string

const (
	None       Kind = "none"
	Random     Kind = "random"
	Similarity Kind = "similarity"
	Symmetry   Kind = "symmetry"
)

var Kinds = []Kind{None, Random, Similarity, Symmetry}

func ParseKind(name string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == name {
			return k, nil
		}
	}
	return None, errors.Errorf("unknown abstraction strategy %q", name)
}

// AbstractionConfig selects how and when sibling nodes are grouped.
type AbstractionConfig struct {
	Strategy   Kind            `yaml:"strategy"`
	BatchSize  int             `yaml:"batch_size"`
	AlphaAbs   int             `yaml:"alpha_abs"`
	Thresholds game.Thresholds `yaml:"thresholds"`
	// Random grouping slices the shuffled children into about this many chunks
	RandomGroups int `yaml:"random_groups"`
	// Pull privileged children into their own group before partitioning the rest
	IsolatePrivileged bool `yaml:"isolate_privileged"`
}

// checkpoint reports whether an expansion at iteration may build groups.
func (c AbstractionConfig) checkpoint(iteration int) bool {
	return c.Strategy != None && iteration < c.AlphaAbs && iteration%max(c.BatchSize, 1) == 0
}

// Strategy partitions sibling states into groups of indices. States left out of every
// group, or alone in one, keep independent statistics.
type Strategy interface {
	Partition(states []game.State, rng *rand.Rand) [][]int
}

// NewStrategy returns the strategy for a kind, or an error when state cannot support it.
func NewStrategy(config AbstractionConfig, state game.State) (Strategy, error) {
	switch config.Strategy {
	case None:
		return noGrouping{}, nil
	case Random:
		return randomGrouping{chunks: max(config.RandomGroups, 1)}, nil
	case Similarity:
		if _, ok := state.(game.Comparable); !ok {
			return noGrouping{}, errors.Errorf("%T does not support similarity grouping", state)
		}
		return similarityGrouping{thresholds: config.Thresholds}, nil
	case Symmetry:
		if _, ok := state.(game.Symmetric); !ok {
			return noGrouping{}, errors.Errorf("%T does not support symmetry grouping", state)
		}
		return symmetryGrouping{}, nil
	default:
		return noGrouping{}, errors.Errorf("unknown abstraction strategy %q", config.Strategy)
	}
}

type noGrouping struct{}

func (noGrouping) Partition([]game.State, *rand.Rand) [][]int { return nil }

// randomGrouping is a control baseline: shuffled siblings sliced into near equal chunks.
type randomGrouping struct {
	chunks int
}

func (g randomGrouping) Partition(states []game.State, rng *rand.Rand) [][]int {
	order := rng.Perm(len(states))
	size := max(1, len(states)/g.chunks)

	var groups [][]int
	for i := 0; i < len(order); i += size {
		groups = append(groups, order[i:min(i+size, len(order))])
	}
	return groups
}

// similarityGrouping joins each state to the first group whose representative is similar.
type similarityGrouping struct {
	thresholds game.Thresholds
}

func (g similarityGrouping) Partition(states []game.State, _ *rand.Rand) [][]int {
	var groups [][]int
	for i, s := range states {
		matched := false
		for gi, members := range groups {
			rep := states[members[0]].(game.Comparable)
			if rep.Similar(s, g.thresholds) {
				groups[gi] = append(groups[gi], i)
				matched = true
				break
			}
		}
		if !matched {
			groups = append(groups, []int{i})
		}
	}
	return groups
}

// symmetryGrouping groups states sharing a canonical form, in order of first appearance.
type symmetryGrouping struct{}

func (symmetryGrouping) Partition(states []game.State, _ *rand.Rand) [][]int {
	var groups [][]int
	index := make(map[game.StateHash]int)
	for i, s := range states {
		canonical := s.(game.Symmetric).Canonical()
		gi, ok := index[canonical]
		if !ok {
			index[canonical] = len(groups)
			groups = append(groups, []int{i})
			continue
		}
		groups[gi] = append(groups[gi], i)
	}
	return groups
}

// abstract groups the children of n: privileged children first when configured, then the
// strategy's partition of the rest. Previous groups of these children are replaced.
func (t *tree) abstract(n naughty, strategy Strategy, config AbstractionConfig, rng *rand.Rand) {
	children := t.nodes[n].children
	if len(children) == 0 {
		return
	}
	t.ungroup(children)

	var privileged, rest []naughty
	for _, c := range children {
		if config.IsolatePrivileged && t.nodes[c].action.IsPrivileged() {
			privileged = append(privileged, c)
		} else {
			rest = append(rest, c)
		}
	}
	if len(privileged) > 0 {
		t.newGroup(privileged)
	}

	states := make([]game.State, len(rest))
	for i, c := range rest {
		states[i] = t.nodes[c].state
	}
	for _, indices := range strategy.Partition(states, rng) {
		members := make([]naughty, len(indices))
		for i, idx := range indices {
			members[i] = rest[idx]
		}
		t.newGroup(members)
	}
}
