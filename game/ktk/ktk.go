// Package ktk implements Kill-The-King, a two-player grid combat game.
//
// Each player owns a King, a Warrior, an Archer and a Healer. Players alternate
// rounds; within a round one unit type acts per sub-turn in that fixed order.
// Any attack kills its target outright and removes it from the board. The game
// ends when a king dies, or after the turn limit when one side has more units.
package ktk

import (
	"emcts/game"
	"fmt"

	"golang.org/x/exp/rand"
)

const (
	DefaultSize     = 4
	DefaultMaxTurns = 20

	Empty          = 0
	unitsPerPlayer = 4
	numUnits       = 2 * unitsPerPlayer
)

type UnitType int

const (
	King UnitType = iota
	Warrior
	Archer
	Healer
)

var unitNames = [...]string{"King", "Warrior", "Archer", "Healer"}

func (u UnitType) String() string { return unitNames[u] }

// UnitID returns the board identifier of a player's unit: 1..4 for player 0, 5..8 for player 1.
func UnitID(player int, u UnitType) int {
	return player*unitsPerPlayer + int(u) + 1
}

// Owner returns the player owning a unit, or -1 for an empty cell.
func Owner(unit int) int {
	if unit == Empty {
		return -1
	}
	return (unit - 1) / unitsPerPlayer
}

func unitType(unit int) UnitType {
	return UnitType((unit - 1) % unitsPerPlayer)
}

type State struct {
	size     int
	maxTurns int
	board    []int // row-major, size*size
	alive    [numUnits + 1]bool
	player   int
	phase    UnitType
	turn     int
	winner   int
}

// New returns a game with the default corner setup.
func New(size, maxTurns int) *State {
	s := empty(size, maxTurns)
	last := size - 1
	s.place(0, 0, UnitID(0, King))
	s.place(0, 1, UnitID(0, Archer))
	s.place(1, 0, UnitID(0, Warrior))
	s.place(1, 1, UnitID(0, Healer))
	s.place(last, last, UnitID(1, King))
	s.place(last, last-1, UnitID(1, Archer))
	s.place(last-1, last, UnitID(1, Warrior))
	s.place(last-1, last-1, UnitID(1, Healer))
	return s
}

// NewRandom shuffles each player's units inside their corner territory, keeping kings on the safer squares.
func NewRandom(size, maxTurns int, rng *rand.Rand) *State {
	s := empty(size, maxTurns)
	territory := max(2, size/3)

	var first, second []cell
	for i := 0; i < territory; i++ {
		for j := 0; j < territory; j++ {
			first = append(first, cell{i, j})
			second = append(second, cell{size - territory + i, size - territory + j})
		}
	}

	s.setupTerritory(0, first, rng, func(c cell) bool { return c.row+c.col <= territory })
	s.setupTerritory(1, second, rng, func(c cell) bool { return c.row+c.col >= 2*size-territory-1 })
	return s
}

// NewFromBoard builds a position from a row-major board. Units missing from the board are dead.
func NewFromBoard(size, maxTurns int, board []int, player int, phase UnitType) *State {
	s := empty(size, maxTurns)
	copy(s.board, board)
	for _, unit := range s.board {
		if unit != Empty {
			s.alive[unit] = true
		}
	}
	s.player = player
	s.phase = phase
	s.checkKings()
	return s
}

type cell struct {
	row, col int
}

func empty(size, maxTurns int) *State {
	return &State{
		size:     size,
		maxTurns: maxTurns,
		board:    make([]int, size*size),
		winner:   game.NoWinner,
	}
}

func (s *State) place(row, col, unit int) {
	s.board[row*s.size+col] = unit
	s.alive[unit] = true
}

func (s *State) setupTerritory(player int, cells []cell, rng *rand.Rand, safe func(cell) bool) {
	rng.Shuffle(len(cells), func(i, j int) { cells[i], cells[j] = cells[j], cells[i] })

	kingAt := 0
	var safer []int
	for i, c := range cells {
		if safe(c) {
			safer = append(safer, i)
		}
	}
	if len(safer) > 0 {
		kingAt = safer[rng.Intn(len(safer))]
	}
	king := cells[kingAt]
	s.place(king.row, king.col, UnitID(player, King))
	cells = append(cells[:kingAt:kingAt], cells[kingAt+1:]...)

	for u := Warrior; u <= Healer; u++ {
		if len(cells) > 0 {
			s.place(cells[0].row, cells[0].col, UnitID(player, u))
			cells = cells[1:]
			continue
		}
		// Territory exhausted, fall back to any free square
		for i, unit := range s.board {
			if unit == Empty {
				s.place(i/s.size, i%s.size, UnitID(player, u))
				break
			}
		}
	}
}

func (s *State) Size() int           { return s.size }
func (s *State) Turn() int           { return s.turn }
func (s *State) Phase() UnitType     { return s.phase }
func (s *State) Player() int         { return s.player }
func (s *State) Winner() int         { return s.winner }
func (s *State) IsDone() bool        { return s.winner != game.NoWinner }
func (s *State) Alive(unit int) bool { return s.alive[unit] }

// At returns the unit on a square, or Empty.
func (s *State) At(row, col int) int {
	return s.board[row*s.size+col]
}

func (s *State) Copy() game.State {
	c := *s
	c.board = make([]int, len(s.board))
	copy(c.board, s.board)
	return &c
}

func (s *State) locate(unit int) (cell, bool) {
	for i, u := range s.board {
		if u == unit {
			return cell{i / s.size, i % s.size}, true
		}
	}
	return cell{}, false
}

func (s *State) inside(row, col int) bool {
	return row >= 0 && row < s.size && col >= 0 && col < s.size
}

func (s *State) LegalActions() []game.Action {
	if s.IsDone() {
		return nil
	}

	unit := UnitID(s.player, s.phase)
	at, found := s.locate(unit)
	if !found || !s.alive[unit] {
		return []game.Action{Action{Unit: unit, Kind: Wait}}
	}

	var actions []game.Action
	for _, d := range [...]cell{{-1, 0}, {1, 0}, {0, -1}, {0, 1}} {
		row, col := at.row+d.row, at.col+d.col
		if s.inside(row, col) && s.At(row, col) == Empty {
			actions = append(actions, Action{Unit: unit, Kind: Move, Row: row, Col: col})
		}
	}

	if reach := attackRange(s.phase); reach > 0 {
		for row := max(0, at.row-reach); row < min(s.size, at.row+reach+1); row++ {
			for col := max(0, at.col-reach); col < min(s.size, at.col+reach+1); col++ {
				target := s.At(row, col)
				if target == Empty || Owner(target) == s.player {
					continue
				}
				attack := Action{Unit: unit, Kind: Attack, Target: target}
				actions = append(actions, attack)
				if s.phase == Warrior {
					// Warriors are weighted 3x under uniform sampling
					actions = append(actions, attack, attack)
				}
			}
		}
	}

	if len(actions) == 0 {
		actions = append(actions, Action{Unit: unit, Kind: Wait})
	}
	return actions
}

func attackRange(u UnitType) int {
	switch u {
	case King, Warrior:
		return 1
	case Archer:
		return 2
	default:
		return 0
	}
}

func chebyshev(a, b cell) int {
	return max(abs(a.row-b.row), abs(a.col-b.col))
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Step applies an action for the acting unit and advances to the next sub-turn.
// Stale actions (dead or missing actor, wrong owner, vanished target, blocked square) are skipped.
func (s *State) Step(a game.Action) bool {
	if s.IsDone() {
		return true
	}

	if action, ok := a.(Action); ok {
		s.apply(action)
	}
	s.checkKings()

	s.phase++
	if s.phase > Healer {
		s.phase = King
		s.player = 1 - s.player
		s.turn++

		if s.turn >= s.maxTurns && !s.IsDone() {
			// Piece count decides, a tie plays on
			mine, theirs := s.living(0), s.living(1)
			if mine > theirs {
				s.winner = 0
			} else if theirs > mine {
				s.winner = 1
			}
		}
	}

	return s.IsDone()
}

func (s *State) apply(a Action) {
	at, found := s.locate(a.Unit)
	if !found || !s.alive[a.Unit] || Owner(a.Unit) != s.player {
		return
	}

	switch a.Kind {
	case Move:
		to := cell{a.Row, a.Col}
		if s.inside(to.row, to.col) && s.At(to.row, to.col) == Empty && chebyshev(at, to) == 1 && (at.row == to.row || at.col == to.col) {
			s.board[to.row*s.size+to.col] = a.Unit
			s.board[at.row*s.size+at.col] = Empty
		}
	case Attack:
		if a.Target < 1 || a.Target > numUnits || Owner(a.Target) == s.player {
			return
		}
		target, found := s.locate(a.Target)
		if !found || chebyshev(at, target) > attackRange(unitType(a.Unit)) {
			return
		}
		s.alive[a.Target] = false
		s.board[target.row*s.size+target.col] = Empty
	}
}

func (s *State) checkKings() {
	if !s.alive[UnitID(0, King)] {
		s.winner = 1
	} else if !s.alive[UnitID(1, King)] {
		s.winner = 0
	}
}

func (s *State) living(player int) int {
	count := 0
	for u := King; u <= Healer; u++ {
		if s.alive[UnitID(player, u)] {
			count++
		}
	}
	return count
}

// Evaluate is the material differential from player's view, plus a bonus once the enemy king is dead.
func (s *State) Evaluate(player int) float64 {
	opponent := 1 - player
	score := float64(s.living(player)-s.living(opponent)) / numUnits
	if !s.alive[UnitID(opponent, King)] {
		score += 0.5
	}
	return score
}

type Kind int

const (
	Move Kind = iota
	Attack
	Wait
)

// Action is a unit order. Row/Col hold the destination of a move, Target the unit id of an attack.
type Action struct {
	Unit   int
	Kind   Kind
	Row    int
	Col    int
	Target int
}

func (a Action) IsPrivileged() bool {
	return a.Kind == Attack
}

func (a Action) String() string {
	name := unitType(a.Unit).String()
	switch a.Kind {
	case Move:
		return fmt.Sprintf("%s(%d) move (%d,%d)", name, a.Unit, a.Row, a.Col)
	case Attack:
		return fmt.Sprintf("%s(%d) attack %s(%d)", name, a.Unit, unitType(a.Target), a.Target)
	default:
		return fmt.Sprintf("%s(%d) wait", name, a.Unit)
	}
}
