package game

// NoWinner is reported by Winner() while the game is running or after a draw.
const NoWinner = -1

// Action is one legal move of a State. Privileged actions (captures, attacks) get
// preferential treatment during expansion, rollout and recommendation.
type Action interface {
	IsPrivileged() bool
	String() string
}

// StateHash identifies a position, e.g. a canonical form.
type StateHash uint64

// State is mutable: Step applies the action in place, Copy returns an independent deep copy.
// LegalActions must be stable for a fixed state and return nil only for terminal states.
// Stale actions (actor or target gone) must be tolerated as no-ops.
type State interface {
	Player() int
	LegalActions() []Action
	Step(Action) (done bool)
	IsDone() bool
	Winner() int
	Copy() State
	// Evaluate scores a non-terminal state between roughly -1 and 1 from player's perspective
	Evaluate(player int) float64
}

// Thresholds bound the approximate equivalence used by similarity grouping.
// EtaR bounds the reward error, EtaT the transition error.
type Thresholds struct {
	EtaR float64 `yaml:"eta_r"`
	EtaT float64 `yaml:"eta_t"`
}

// Comparable states can be grouped by approximate similarity.
type Comparable interface {
	Similar(other State, th Thresholds) bool
}

// Symmetric states can be grouped exactly by a canonical form under a known symmetry group.
type Symmetric interface {
	Canonical() StateHash
}

// Renderer states draw themselves for the terminal, with ANSI colours on request.
type Renderer interface {
	Render(colors bool) string
}
