package game

// Reward of a finished game from player's perspective: 1 for a win, -1 for a loss and 0 for a draw.
func Reward(s State, player int) float64 {
	switch s.Winner() {
	case NoWinner:
		return 0
	case player:
		return 1
	default:
		return -1
	}
}

// EvaluateHeuristic delegates to the state's own heuristic.
func EvaluateHeuristic(s State, player int) float64 {
	return s.Evaluate(player)
}

// Normalize returns the difference of two tallies relative to their sum, in [-1, 1].
func Normalize(value float64, otherValue float64) float64 {
	total := value + otherValue
	if total == 0 {
		return 0
	}
	return (value - otherValue) / total
}
