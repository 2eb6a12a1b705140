// Package xo implements tic-tac-toe. Positions related by a rotation or reflection of
// the board share one canonical form, which makes them exactly groupable.
package xo

import (
	"emcts/game"
	"fmt"
	"strings"

	"github.com/logrusorgru/aurora"
)

const (
	Empty = 0
	X     = 1
	O     = 2

	cells = 9
)

// Symmetries lists the 8 rotations and reflections of the board as cell permutations.
var Symmetries = [8][cells]int{
	{0, 1, 2, 3, 4, 5, 6, 7, 8},
	{2, 5, 8, 1, 4, 7, 0, 3, 6},
	{8, 7, 6, 5, 4, 3, 2, 1, 0},
	{6, 3, 0, 7, 4, 1, 8, 5, 2},
	{0, 3, 6, 1, 4, 7, 2, 5, 8},
	{2, 1, 0, 5, 4, 3, 8, 7, 6},
	{8, 5, 2, 7, 4, 1, 6, 3, 0},
	{6, 7, 8, 3, 4, 5, 0, 1, 2},
}

var lines = [8][3]int{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
	{0, 4, 8}, {2, 4, 6},
}

type State struct {
	board [cells]int
}

func New() *State {
	return &State{}
}

// FromBoard builds a position from a row-major board of Empty, X and O marks.
func FromBoard(board [cells]int) *State {
	return &State{board: board}
}

func (s *State) Board() [cells]int { return s.board }

// Player is 0 (X) when both sides have the same number of marks, otherwise 1 (O).
func (s *State) Player() int {
	xs, ys := s.count()
	if xs > ys {
		return 1
	}
	return 0
}

func (s *State) count() (xs, ys int) {
	for _, mark := range s.board {
		switch mark {
		case X:
			xs++
		case O:
			ys++
		}
	}
	return xs, ys
}

func (s *State) LegalActions() []game.Action {
	if s.IsDone() {
		return nil
	}
	var actions []game.Action
	for i, mark := range s.board {
		if mark == Empty {
			actions = append(actions, Action{Cell: i})
		}
	}
	return actions
}

// Step marks a cell for the player to move. Occupied or out-of-range cells are skipped.
func (s *State) Step(a game.Action) bool {
	if s.IsDone() {
		return true
	}
	action, ok := a.(Action)
	if ok && action.Cell >= 0 && action.Cell < cells && s.board[action.Cell] == Empty {
		s.board[action.Cell] = s.Player() + 1
	}
	return s.IsDone()
}

func (s *State) Winner() int {
	for _, line := range lines {
		mark := s.board[line[0]]
		if mark != Empty && mark == s.board[line[1]] && mark == s.board[line[2]] {
			return mark - 1
		}
	}
	return game.NoWinner
}

// IsDone reports a win or a full board.
func (s *State) IsDone() bool {
	if s.Winner() != game.NoWinner {
		return true
	}
	xs, ys := s.count()
	return xs+ys == cells
}

func (s *State) Copy() game.State {
	c := *s
	return &c
}

// Canonical is the smallest encoding of the board over all symmetries.
func (s *State) Canonical() game.StateHash {
	best := encode(s.board, Symmetries[0])
	for _, perm := range Symmetries[1:] {
		best = min(best, encode(s.board, perm))
	}
	return best
}

// encode reads the permuted board as a base-3 number, first cell most significant
func encode(board [cells]int, perm [cells]int) game.StateHash {
	var code game.StateHash
	for _, i := range perm {
		code = code*3 + game.StateHash(board[i])
	}
	return code
}

// Permute returns the position transformed by one of the symmetries.
func (s *State) Permute(perm [cells]int) *State {
	var board [cells]int
	for i, from := range perm {
		board[i] = s.board[from]
	}
	return &State{board: board}
}

// Evaluate compares the lines each side can still complete.
func (s *State) Evaluate(player int) float64 {
	own, other := player+1, 2-player
	var mine, theirs float64
	for _, line := range lines {
		blockedMine, blockedTheirs := false, false
		for _, i := range line {
			switch s.board[i] {
			case own:
				blockedTheirs = true
			case other:
				blockedMine = true
			}
		}
		if !blockedMine {
			mine++
		}
		if !blockedTheirs {
			theirs++
		}
	}
	return game.Normalize(mine, theirs)
}

func (s *State) Render(colors bool) string {
	au := aurora.NewAurora(colors)
	var b strings.Builder
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			if col > 0 {
				b.WriteString(" ")
			}
			switch s.board[row*3+col] {
			case X:
				fmt.Fprintf(&b, "%s", au.Green("X"))
			case O:
				fmt.Fprintf(&b, "%s", au.Yellow("O"))
			default:
				fmt.Fprintf(&b, "%s", au.Faint("."))
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (s *State) String() string {
	return s.Render(false)
}

// Action marks one cell, numbered 0..8 row by row.
type Action struct {
	Cell int
}

func (a Action) IsPrivileged() bool { return false }

func (a Action) String() string {
	return fmt.Sprintf("(%d,%d)", a.Cell/3, a.Cell%3)
}
