package ktk

import (
	"fmt"
	"strings"

	"github.com/logrusorgru/aurora"
)

var symbols = [...]string{".", "K", "W", "A", "H", "k", "w", "a", "h"}

// Render draws the board with unit status. Player 0 units are blue, player 1 units red.
func (s *State) Render(colors bool) string {
	au := aurora.NewAurora(colors)
	var b strings.Builder

	b.WriteString(" ")
	for col := 0; col < s.size; col++ {
		fmt.Fprintf(&b, " %d", col)
	}
	b.WriteString("\n")

	for row := 0; row < s.size; row++ {
		fmt.Fprintf(&b, "%d", row)
		for col := 0; col < s.size; col++ {
			unit := s.At(row, col)
			var symbol aurora.Value
			switch Owner(unit) {
			case 0:
				symbol = au.Blue(symbols[unit])
			case 1:
				symbol = au.Red(symbols[unit])
			default:
				symbol = au.Faint(symbols[unit])
			}
			fmt.Fprintf(&b, " %s", symbol)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "player %d, %s to act, turn %d/%d\n", s.player, s.phase, s.turn, s.maxTurns)
	if s.IsDone() {
		fmt.Fprintf(&b, "%s\n", au.Bold(fmt.Sprintf("winner: player %d", s.winner)))
	}
	return b.String()
}

func (s *State) String() string {
	return s.Render(false)
}
