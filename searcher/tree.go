package searcher

import (
	"emcts/game"
	"math"
)

// naughty is a handle into the tree's arena, standing in for *node
type naughty int

func (n naughty) isValid() bool { return n >= 0 }

const (
	nilNode  naughty = -1
	nilGroup         = -1
)

type node struct {
	state    game.State
	action   game.Action // nil for the root
	parent   naughty     // back-reference only, the arena owns every node
	children []naughty
	group    int

	// Own statistics, read only while the node is ungrouped
	visits int
	value  float64
}

// group pools the statistics of sibling nodes judged equivalent.
type group struct {
	members []naughty
	visits  int
	value   float64
}

// tree holds one decision's search tree. Nodes and groups live in flat arenas and refer to
// each other by index, so parent links never form ownership cycles.
type tree struct {
	nodes  []node
	groups []group
}

func newTree(state game.State) *tree {
	t := &tree{}
	t.add(nilNode, state, nil)
	return t
}

func (t *tree) root() naughty { return 0 }

func (t *tree) add(parent naughty, state game.State, action game.Action) naughty {
	t.nodes = append(t.nodes, node{
		state:  state,
		action: action,
		parent: parent,
		group:  nilGroup,
	})
	return naughty(len(t.nodes) - 1)
}

func (t *tree) node(n naughty) *node {
	return &t.nodes[n]
}

// expand creates one child per legal action of state by copying then stepping it, and returns
// the number of children created. Already expanded nodes and dead ends are left untouched.
func (t *tree) expand(n naughty, state game.State) int {
	if len(t.nodes[n].children) > 0 {
		return 0
	}

	actions := state.LegalActions()
	children := make([]naughty, 0, len(actions))
	for _, action := range actions {
		next := state.Copy()
		next.Step(action)
		children = append(children, t.add(n, next, action))
	}
	t.nodes[n].children = children
	return len(children)
}

// isFullyExpanded re-queries the legal actions, which must be stable for a fixed state.
func (t *tree) isFullyExpanded(n naughty, state game.State) bool {
	return len(t.nodes[n].children) == len(state.LegalActions())
}

// stats returns the statistics in effect for a node, resolving through its group.
func (t *tree) stats(n naughty) (visits int, value float64) {
	nd := &t.nodes[n]
	if nd.group != nilGroup {
		g := &t.groups[nd.group]
		return g.visits, g.value
	}
	return nd.visits, nd.value
}

func (t *tree) score(n naughty, parentVisits int, exploration float64) float64 {
	visits, value := t.stats(n)
	return ucb1(value, visits, parentVisits, exploration)
}

// ucb1 is mean + C*sqrt(2 ln N / n). Unvisited arms score +Inf so every arm is tried first.
func ucb1(value float64, visits, parentVisits int, exploration float64) float64 {
	if visits == 0 {
		return math.Inf(1)
	}
	lnN := math.Log(float64(max(parentVisits, 1)))
	return value/float64(visits) + exploration*math.Sqrt(2*lnN/float64(visits))
}

// newGroup pools members under fresh, zeroed statistics. Any earlier group of a member loses
// that member and its accumulated statistics are not carried over.
func (t *tree) newGroup(members []naughty) int {
	t.ungroup(members)
	id := len(t.groups)
	t.groups = append(t.groups, group{members: members})
	for _, m := range members {
		t.nodes[m].group = id
	}
	return id
}

// ungroup returns nodes to their own statistics.
func (t *tree) ungroup(nodes []naughty) {
	for _, n := range nodes {
		id := t.nodes[n].group
		if id == nilGroup {
			continue
		}
		g := &t.groups[id]
		for i, m := range g.members {
			if m == n {
				g.members = append(g.members[:i], g.members[i+1:]...)
				break
			}
		}
		t.nodes[n].group = nilGroup
	}
}

// dissolve clears every group in the tree.
func (t *tree) dissolve() {
	for i := range t.nodes {
		t.nodes[i].group = nilGroup
	}
	for i := range t.groups {
		t.groups[i].members = nil
	}
}

// backprop credits a reward from n up to the root. Grouped nodes also credit their group.
func (t *tree) backprop(n naughty, reward float64) {
	for n.isValid() {
		nd := &t.nodes[n]
		if nd.group != nilGroup {
			g := &t.groups[nd.group]
			g.visits++
			g.value += reward
		}
		nd.visits++
		nd.value += reward
		n = nd.parent
	}
}

// size is the shallow node count: the root's children plus each child's own children.
func (t *tree) size() int {
	root := &t.nodes[t.root()]
	count := len(root.children)
	for _, c := range root.children {
		count += len(t.nodes[c].children)
	}
	return count
}
