package engine

import (
	"context"
	"emcts/experiments/metrics"
	"emcts/game"
	"emcts/searcher/agent"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
	"golang.org/x/sync/errgroup"
)

// Variant is one search algorithm consulted on every move.
type Variant struct {
	Name  string
	Agent agent.Agent
}

// LocalEngine consults every variant on each move, in parallel on private copies of the
// state, and executes the primary variant's action. With switchProbability a uniformly
// chosen variant's action is executed instead.
type LocalEngine struct {
	State             game.State
	Variants          []Variant
	Colors            bool // Render boards with ANSI colours
	primary           int
	switchProbability float64
	maxMoves          int
	rng               *rand.Rand
}

func NewLocalEngine(state game.State, variants []Variant, primary int, switchProbability float64, maxMoves int, seed uint64) *LocalEngine {
	if len(variants) == 0 {
		panic("need at least one variant")
	}
	if primary < 0 || primary >= len(variants) {
		panic(fmt.Sprintf("primary variant %d out of range", primary))
	}

	return &LocalEngine{
		State:             state,
		Variants:          variants,
		primary:           primary,
		switchProbability: switchProbability,
		maxMoves:          maxMoves,
		rng:               rand.New(rand.NewSource(seed)),
	}
}

var _ Engine = (*LocalEngine)(nil)

type decision struct {
	action game.Action
	metric metrics.SearchMetric
}

// Run executes the game loop until a winner is found or the move cap is reached.
func (e *LocalEngine) Run(ctx context.Context) (metrics.GameMetric, []metrics.MoveMetric, error) {
	gameMetric := metrics.GameMetric{Winner: game.NoWinner, StartTime: time.Now()}
	var moveMetrics []metrics.MoveMetric

	log.Info().Msgf("player %d is starting\n%s", e.State.Player(), board(e.State, e.Colors))

	move := 0
	for !e.State.IsDone() && move < e.maxMoves {
		player := e.State.Player()
		decisions, err := e.decide(ctx)
		if err != nil {
			return gameMetric, moveMetrics, err
		}

		chosen := e.choose()
		action := decisions[chosen].action
		if action == nil {
			chosen = e.primary
			action = decisions[chosen].action
		}
		if action == nil {
			action = e.State.LegalActions()[0]
			log.Warn().Msgf("no variant produced an action, player %d plays %s", player, action)
		}

		e.State.Step(action)
		move++
		log.Info().Msgf("move %d: player %d plays %s (%s)", move, player, action, e.Variants[chosen].Name)
		log.Debug().Msgf("\n%s", board(e.State, e.Colors))

		choices, classes := successors(e.State)
		for i, d := range decisions {
			moveMetrics = append(moveMetrics, metrics.MoveMetric{
				Turn:         move,
				Player:       player,
				Variant:      e.Variants[i].Name,
				Choices:      choices,
				Classes:      classes,
				SearchMetric: d.metric,
			})
		}
	}

	if !e.State.IsDone() {
		log.Info().Msgf("stopped after %d moves without a winner", move)
	}
	log.Info().Msgf("final board\n%s", board(e.State, e.Colors))

	gameMetric.Winner = e.State.Winner()
	gameMetric.Turns = move
	gameMetric.EndTime = time.Now()
	gameMetric.Duration = gameMetric.EndTime.Sub(gameMetric.StartTime)
	return gameMetric, moveMetrics, nil
}

// decide asks every variant for an action. A failed search leaves a nil action behind.
func (e *LocalEngine) decide(ctx context.Context) ([]decision, error) {
	decisions := make([]decision, len(e.Variants))
	g, ctx := errgroup.WithContext(ctx)
	for i, v := range e.Variants {
		i, v := i, v
		state := e.State.Copy()
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			action, metric, err := v.Agent.FindMove(state)
			if err != nil {
				log.Warn().Err(err).Msgf("%s search failed", v.Name)
				return nil
			}
			decisions[i] = decision{action: action, metric: metric}
			return nil
		})
	}
	return decisions, g.Wait()
}

func (e *LocalEngine) choose() int {
	if e.rng.Float64() < e.switchProbability {
		return e.rng.Intn(len(e.Variants))
	}
	return e.primary
}

// board draws the state, coloured when the state can render itself.
func board(state game.State, colors bool) string {
	if r, ok := state.(game.Renderer); ok {
		return r.Render(colors)
	}
	return fmt.Sprint(state)
}

// successors counts the next player's choices and, for symmetric games, their distinct
// canonical outcomes.
func successors(state game.State) (choices, classes int) {
	actions := state.LegalActions()
	if _, ok := state.(game.Symmetric); !ok {
		return len(actions), 0
	}

	seen := make(map[game.StateHash]struct{})
	for _, a := range actions {
		next := state.Copy()
		next.Step(a)
		seen[next.(game.Symmetric).Canonical()] = struct{}{}
	}
	return len(actions), len(seen)
}
