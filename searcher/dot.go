package searcher

import (
	"fmt"
	"strconv"

	"github.com/awalterschulze/gographviz"
	"github.com/pkg/errors"
)

const graphName = "search"

var groupColors = []string{"lightblue", "lightpink", "palegreen", "khaki", "plum", "lightsalmon", "lightcyan", "wheat"}

// DOT renders the last search tree down to depth as a Graphviz digraph. Members of a group
// share a fill colour.
func (m *MCTS) DOT(depth int) (string, error) {
	if m.tree == nil {
		return "", errors.New("no search tree to render")
	}

	g := gographviz.NewGraph()
	if err := g.SetName(graphName); err != nil {
		return "", errors.Wrap(err, "failed to name graph")
	}
	if err := g.SetDir(true); err != nil {
		return "", errors.Wrap(err, "failed to direct graph")
	}
	if err := m.tree.render(g, m.tree.root(), depth); err != nil {
		return "", err
	}
	return g.String(), nil
}

func (t *tree) render(g *gographviz.Graph, n naughty, depth int) error {
	nd := t.node(n)
	visits, value := t.stats(n)

	label := "root"
	if nd.action != nil {
		label = nd.action.String()
	}
	mean := 0.0
	if visits > 0 {
		mean = value / float64(visits)
	}
	attrs := map[string]string{
		"label": strconv.Quote(fmt.Sprintf("%s\nn=%d q=%.2f", label, visits, mean)),
	}
	if nd.group != nilGroup {
		attrs["style"] = "filled"
		attrs["fillcolor"] = groupColors[nd.group%len(groupColors)]
	}
	if err := g.AddNode(graphName, nodeName(n), attrs); err != nil {
		return errors.Wrapf(err, "failed to add node %d", n)
	}

	if depth <= 0 {
		return nil
	}
	for _, c := range nd.children {
		if err := t.render(g, c, depth-1); err != nil {
			return err
		}
		if err := g.AddEdge(nodeName(n), nodeName(c), true, nil); err != nil {
			return errors.Wrapf(err, "failed to add edge %d->%d", n, c)
		}
	}
	return nil
}

func nodeName(n naughty) string {
	return "n" + strconv.Itoa(int(n))
}
