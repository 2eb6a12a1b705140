package ktk

import (
	"emcts/game"
	"math"
)

// Similar approximates an MDP homomorphism between two positions: same acting player and unit
// type, few differing squares and alive flags, and the same attack opportunity for the acting side.
func (s *State) Similar(other game.State, th game.Thresholds) bool {
	o, ok := other.(*State)
	if !ok || s.size != o.size {
		return false
	}
	if s.player != o.player || s.phase != o.phase {
		return false
	}

	cells := 0
	for i := range s.board {
		if s.board[i] != o.board[i] {
			cells++
		}
	}
	if cells > MaxCellDiff(th) {
		return false
	}

	flags := 0
	for unit := 1; unit <= numUnits; unit++ {
		if s.alive[unit] != o.alive[unit] {
			flags++
		}
	}
	if flags > MaxAliveDiff(th) {
		return false
	}

	return s.HasAttackOpportunity(s.player) == o.HasAttackOpportunity(o.player)
}

// MaxCellDiff is the number of differing squares tolerated, 2 at the default EtaT of 1.
func MaxCellDiff(th game.Thresholds) int {
	return int(math.Round(2 * th.EtaT))
}

// MaxAliveDiff is the number of differing alive flags tolerated, 1 at the default EtaR of 0.1.
func MaxAliveDiff(th game.Thresholds) int {
	return int(math.Round(10 * th.EtaR))
}

// HasAttackOpportunity reports whether any unit of player stands within two squares of an enemy.
func (s *State) HasAttackOpportunity(player int) bool {
	var own, enemy []cell
	for i, unit := range s.board {
		if unit == Empty {
			continue
		}
		c := cell{i / s.size, i % s.size}
		if Owner(unit) == player {
			own = append(own, c)
		} else {
			enemy = append(enemy, c)
		}
	}

	for _, a := range own {
		for _, b := range enemy {
			if chebyshev(a, b) <= 2 {
				return true
			}
		}
	}
	return false
}
