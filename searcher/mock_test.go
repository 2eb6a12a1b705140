package searcher

import (
	"emcts/game"
	"fmt"
	"slices"
)

type mockAction struct {
	id         int
	privileged bool
}

func (m mockAction) IsPrivileged() bool {
	return m.privileged
}

func (m mockAction) String() string {
	return fmt.Sprintf("a%d", m.id)
}

// mockState offers width actions per ply until depth plies are played. Player 0 wins
// when the first action played is winning, unless the game is a draw.
type mockState struct {
	width      int
	depth      int
	privileged []int
	winning    int
	draw       bool
	score      float64 // Heuristic value for player 0
	played     []int
}

func (m *mockState) Player() int {
	return len(m.played) % 2
}

func (m *mockState) LegalActions() []game.Action {
	if m.IsDone() {
		return nil
	}
	actions := make([]game.Action, m.width)
	for i := range actions {
		actions[i] = mockAction{id: i, privileged: slices.Contains(m.privileged, i)}
	}
	return actions
}

func (m *mockState) Step(action game.Action) bool {
	if !m.IsDone() {
		m.played = append(m.played, action.(mockAction).id)
	}
	return m.IsDone()
}

func (m *mockState) IsDone() bool {
	return len(m.played) >= m.depth
}

func (m *mockState) Winner() int {
	if !m.IsDone() || len(m.played) == 0 || m.draw {
		return game.NoWinner
	}
	if m.played[0] == m.winning {
		return 0
	}
	return 1
}

func (m *mockState) Copy() game.State {
	c := *m
	c.played = append([]int(nil), m.played...)
	return &c
}

func (m *mockState) Evaluate(player int) float64 {
	if player == 0 {
		return m.score
	}
	return -m.score
}

// Similar groups states by the parity of their last action
func (m *mockState) Similar(other game.State, _ game.Thresholds) bool {
	return m.last()%2 == other.(*mockState).last()%2
}

func (m *mockState) last() int {
	if len(m.played) == 0 {
		return -1
	}
	return m.played[len(m.played)-1]
}

// opaque hides every optional capability of the wrapped state
type opaque struct {
	game.State
}
