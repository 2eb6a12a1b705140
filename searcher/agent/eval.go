package agent

import (
	"emcts/experiments/metrics"
	"emcts/game"
	"emcts/searcher"
)

type evaluationAgent struct {
	mcts *searcher.MCTS
}

// NewEvaluationAgent returns an agent searching from the acting player's perspective.
func NewEvaluationAgent(mcts *searcher.MCTS) Agent {
	return evaluationAgent{mcts: mcts}
}

func (a evaluationAgent) FindMove(state game.State) (game.Action, metrics.SearchMetric, error) {
	return a.mcts.Search(state, state.Player())
}
