package searcher

// recommend picks the root child with the most visits, resolving through groups and
// breaking ties by the child's own visits, then by expansion order. Privileged children
// win over the rest whenever the root has any.
func (t *tree) recommend() naughty {
	children := t.node(t.root()).children

	var privileged []naughty
	for _, c := range children {
		if t.node(c).action.IsPrivileged() {
			privileged = append(privileged, c)
		}
	}
	if len(privileged) > 0 {
		children = privileged
	}

	best := nilNode
	bestVisits, bestOwn := -1, -1
	for _, c := range children {
		visits, _ := t.stats(c)
		own := t.node(c).visits
		if visits > bestVisits || (visits == bestVisits && own > bestOwn) {
			best, bestVisits, bestOwn = c, visits, own
		}
	}
	return best
}
