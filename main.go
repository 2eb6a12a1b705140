package main

import (
	"context"
	"emcts/config"
	"emcts/experiments"
	"emcts/searcher"
	"flag"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
)

func main() {
	path := flag.String("config", "", "YAML configuration file overlaid on the defaults")
	interactive := flag.Bool("interactive", false, "Prompt for the tunable parameters")
	randomParams := flag.Bool("random-params", false, "Draw the tunable parameters at random")
	seed := flag.Uint64("seed", 0, "Seed of every random source, 0 keeps the configured one")
	name := flag.String("game", "", "Environment to play: ktk or xo")
	games := flag.Int("games", 0, "Number of games to play")
	out := flag.String("out", "", "Directory receiving the experiment results")
	dot := flag.Int("dot", -1, "Depth of the exported search tree, 0 disables the export")
	strategy := flag.String("strategy", "", "Strategy of the elastic variant: "+kinds()+", empty fits the game")
	level := flag.String("log-level", "info", "Log level: debug, info, warn or error")
	color := flag.Bool("color", false, "Colour the console log and the logged boards")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly, NoColor: !*color})
	lvl, err := zerolog.ParseLevel(*level)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid log level")
	}
	zerolog.SetGlobalLevel(lvl)

	cfg := config.Default()
	if *path != "" {
		cfg, err = config.Load(*path)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to load configuration")
		}
	}
	if *seed != 0 {
		cfg.Seed = *seed
	}
	if *name != "" {
		cfg.Game = *name
	}
	if *games > 0 {
		cfg.Games = *games
	}
	if *out != "" {
		cfg.Experiment.OutputDir = *out
	}
	if *dot >= 0 {
		cfg.Experiment.DOTDepth = *dot
	}
	if *strategy != "" {
		cfg.Abstraction.Elastic = *strategy
	}
	if *color {
		cfg.Experiment.Color = true
	}

	switch {
	case *randomParams:
		cfg.Randomize(rand.New(rand.NewSource(cfg.Seed)))
		log.Info().Msgf("random parameters: %+v", cfg.Abstraction)
	case *interactive:
		if err := config.Prompt(os.Stdin, os.Stdout, &cfg); err != nil {
			log.Fatal().Err(err).Msg("failed to read parameters")
		}
	}

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	result, err := experiments.Run(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("experiment failed")
	}
	log.Info().Msgf("results stored in %s", result.Dir)
}

func kinds() string {
	names := make([]string, len(searcher.Kinds))
	for i, k := range searcher.Kinds {
		names[i] = string(k)
	}
	return strings.Join(names, ", ")
}
