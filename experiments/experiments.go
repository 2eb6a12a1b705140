package experiments

import (
	"context"
	"emcts/config"
	"emcts/engine"
	"emcts/experiments/metrics"
	"emcts/game"
	"emcts/game/ktk"
	"emcts/game/xo"
	"emcts/searcher"
	"emcts/searcher/agent"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
)

// Result points at the files written by a run.
type Result struct {
	Dir     string
	Games   []metrics.GameRecord
	Moves   []metrics.MoveRecord
	Elastic *searcher.MCTS
}

// Run plays cfg.Games games comparing standard MCTS, random grouping and elastic grouping,
// then writes the configuration snapshot, the records and the charts under cfg.Experiment.OutputDir.
func Run(ctx context.Context, cfg config.Config) (Result, error) {
	if err := cfg.Validate(); err != nil {
		return Result{}, errors.Wrap(err, "invalid configuration")
	}

	name := "elastic_" + cfg.Game
	log.Info().Msgf("starting %s experiment with %d games...", name, cfg.Games)

	result := Result{}
	setup := rand.New(rand.NewSource(cfg.Seed))
	for i := 0; i < cfg.Games; i++ {
		id := i + 1
		state := newState(cfg, setup)
		variants, elastic := newVariants(cfg, i)
		primary := len(variants) - 1

		log.Info().Msgf("starting game %d of %d...", id, cfg.Games)
		e := engine.NewLocalEngine(state, variants, primary, cfg.Experiment.SwitchProbability,
			cfg.Experiment.MaxMoves, cfg.Seed+uint64(i))
		e.Colors = cfg.Experiment.Color
		gameMetric, moveMetrics, err := e.Run(ctx)
		if err != nil {
			return result, errors.Wrapf(err, "game %d failed", id)
		}

		result.Games = append(result.Games, metrics.GameRecord{ID: id, Game: cfg.Game, GameMetric: gameMetric})
		for _, mm := range moveMetrics {
			result.Moves = append(result.Moves, metrics.MoveRecord{Game: id, MoveMetric: mm})
		}
		result.Elastic = elastic

		log.Info().Msgf("completed game %d of %d with winner %d after %d turns", id, cfg.Games, gameMetric.Winner, gameMetric.Turns)
	}
	log.Info().Msgf("completed %s experiment", name)

	dir, err := store(cfg, name, result)
	result.Dir = dir
	return result, err
}

func store(cfg config.Config, name string, result Result) (string, error) {
	writer, err := metrics.NewWriter(cfg.Experiment.OutputDir, name)
	if err != nil {
		return "", errors.Wrap(err, "failed to create experiment writer")
	}

	if err := writer.WriteConfig(cfg); err != nil {
		return writer.Dir(), err
	}
	log.Info().Msg("stored config snapshot")

	if err := writer.WriteGameRecords(result.Games); err != nil {
		return writer.Dir(), err
	}
	log.Info().Msg("stored game records")

	if err := writer.WriteMoveRecords(result.Moves); err != nil {
		return writer.Dir(), err
	}
	log.Info().Msg("stored move records")

	if err := writer.WriteReport(result.Moves, cfg.Abstraction.AlphaAbs); err != nil {
		return writer.Dir(), err
	}
	log.Info().Msg("stored charts")

	if cfg.Experiment.DOTDepth > 0 && result.Elastic != nil {
		dot, err := result.Elastic.DOT(cfg.Experiment.DOTDepth)
		if err != nil {
			log.Warn().Err(err).Msg("skipping tree export")
		} else if err := writer.WriteFile("tree.dot", dot); err != nil {
			return writer.Dir(), err
		}
	}

	return writer.Dir(), nil
}

func newState(cfg config.Config, rng *rand.Rand) game.State {
	switch cfg.Game {
	case "xo":
		return xo.New()
	default:
		if cfg.KTK.RandomSetup {
			return ktk.NewRandom(cfg.KTK.BoardSize, cfg.KTK.MaxTurns, rng)
		}
		return ktk.New(cfg.KTK.BoardSize, cfg.KTK.MaxTurns)
	}
}

// newVariants builds standard, random and elastic searchers in that order, each with its own seed.
func newVariants(cfg config.Config, index int) ([]engine.Variant, *searcher.MCTS) {
	elastic, _ := cfg.ElasticKind() // Checked by Validate
	kinds := []searcher.Kind{searcher.None, searcher.Random, elastic}
	names := []string{"standard", "random", "elastic"}

	variants := make([]engine.Variant, 0, len(kinds))
	var last *searcher.MCTS
	for i, kind := range kinds {
		mcts := searcher.NewMCTS(cfg.Search.Iterations,
			searcher.WithCutoff(cfg.Search.Cutoff),
			searcher.WithExploration(cfg.Search.Exploration),
			searcher.WithAbstraction(cfg.AbstractionFor(kind)),
			searcher.WithSeed(cfg.Seed+uint64(index)*1000+uint64(i)),
			searcher.WithMetrics(),
		)
		variants = append(variants, engine.Variant{Name: names[i], Agent: agent.NewEvaluationAgent(mcts)})
		last = mcts
	}
	return variants, last
}
