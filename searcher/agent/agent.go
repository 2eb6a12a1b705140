package agent

import (
	"emcts/experiments/metrics"
	"emcts/game"
)

type Agent interface {
	// FindMove returns the chosen action and the metrics of the search that produced it
	FindMove(state game.State) (game.Action, metrics.SearchMetric, error)
}
