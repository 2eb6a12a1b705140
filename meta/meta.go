// meta/meta.go
package meta

// Iterations defines the number of MCTS episodes per decision.
const Iterations = 50

// Cutoff defines the rollout depth cap.
const Cutoff = 20

// Exploration defines the UCB1 exploration constant C.
const Exploration = 1.0

// BatchSize defines how many episodes pass between abstraction checkpoints.
const BatchSize = 20

// AlphaAbs defines the episode after which groups are dissolved.
const AlphaAbs = 160

// EtaR and EtaT define the reward and transition error thresholds of similarity grouping.
const (
	EtaR = 0.1
	EtaT = 1.0
)

// RandomGroups defines the approximate number of chunks built by random grouping.
const RandomGroups = 3

// BoardSize defines the Kill-The-King board width.
const BoardSize = 4

// MaxTurns defines the Kill-The-King turn limit before units are counted.
const MaxTurns = 20

// MaxMoves caps a game's sub-turns when the turn limit keeps ending in ties.
const MaxMoves = 400

// SwitchProbability defines how often a random variant's action is played instead of the elastic one.
const SwitchProbability = 0.2
