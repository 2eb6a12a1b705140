// Package config loads, validates and collects experiment parameters.
package config

import (
	"emcts/game"
	"emcts/meta"
	"emcts/searcher"
	"emcts/utils"
	"os"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"golang.org/x/exp/rand"
	"gopkg.in/yaml.v3"
)

var Games = []string{"ktk", "xo"}

type Search struct {
	Iterations  int     `yaml:"iterations"`
	Cutoff      int     `yaml:"cutoff"`
	Exploration float64 `yaml:"exploration"`
}

type Abstraction struct {
	// Elastic names the strategy of the elastic variant, empty picks the one that fits the game
	Elastic           string          `yaml:"elastic"`
	BatchSize         int             `yaml:"batch_size"`
	AlphaAbs          int             `yaml:"alpha_abs"`
	Thresholds        game.Thresholds `yaml:"thresholds"`
	RandomGroups      int             `yaml:"random_groups"`
	IsolatePrivileged bool            `yaml:"isolate_privileged"`
}

type KTK struct {
	BoardSize   int  `yaml:"board_size"`
	MaxTurns    int  `yaml:"max_turns"`
	RandomSetup bool `yaml:"random_setup"`
}

type Experiment struct {
	SwitchProbability float64 `yaml:"switch_probability"`
	MaxMoves          int     `yaml:"max_moves"`
	OutputDir         string  `yaml:"output_dir"`
	DOTDepth          int     `yaml:"dot_depth"` // 0 disables the tree export
	Color             bool    `yaml:"color"`     // ANSI colours in logged boards
}

type Config struct {
	Game        string      `yaml:"game"`
	Seed        uint64      `yaml:"seed"`
	Games       int         `yaml:"games"`
	Search      Search      `yaml:"search"`
	Abstraction Abstraction `yaml:"abstraction"`
	KTK         KTK         `yaml:"ktk"`
	Experiment  Experiment  `yaml:"experiment"`
}

func Default() Config {
	return Config{
		Game:  "ktk",
		Seed:  1,
		Games: 1,
		Search: Search{
			Iterations:  meta.Iterations,
			Cutoff:      meta.Cutoff,
			Exploration: meta.Exploration,
		},
		Abstraction: Abstraction{
			BatchSize:         meta.BatchSize,
			AlphaAbs:          meta.AlphaAbs,
			Thresholds:        game.Thresholds{EtaR: meta.EtaR, EtaT: meta.EtaT},
			RandomGroups:      meta.RandomGroups,
			IsolatePrivileged: true,
		},
		KTK: KTK{
			BoardSize:   meta.BoardSize,
			MaxTurns:    meta.MaxTurns,
			RandomSetup: true,
		},
		Experiment: Experiment{
			SwitchProbability: meta.SwitchProbability,
			MaxMoves:          meta.MaxMoves,
			OutputDir:         "results",
		},
	}
}

// Load overlays a YAML file on the defaults.
func Load(path string) (Config, error) {
	c := Default()
	content, err := os.ReadFile(path)
	if err != nil {
		return c, errors.Wrapf(err, "failed to read config %s", path)
	}
	if err := yaml.Unmarshal(content, &c); err != nil {
		return c, errors.Wrapf(err, "failed to parse config %s", path)
	}
	return c, nil
}

// Validate reports every invalid parameter at once.
func (c Config) Validate() error {
	var result *multierror.Error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			result = multierror.Append(result, errors.Errorf(format, args...))
		}
	}

	check(utils.FindIndex(Games, c.Game) >= 0, "unknown game %q", c.Game)
	check(c.Games > 0, "games must be positive, got %d", c.Games)
	check(c.Search.Iterations >= 0, "iterations must not be negative, got %d", c.Search.Iterations)
	check(c.Search.Cutoff > 0, "cutoff must be positive, got %d", c.Search.Cutoff)
	check(c.Search.Exploration >= 0, "exploration must not be negative, got %g", c.Search.Exploration)
	if c.Abstraction.Elastic != "" {
		_, err := c.ElasticKind()
		check(err == nil, "%v", err)
	}
	check(c.Abstraction.BatchSize > 0, "batch size must be positive, got %d", c.Abstraction.BatchSize)
	check(c.Abstraction.AlphaAbs >= 0, "alpha_abs must not be negative, got %d", c.Abstraction.AlphaAbs)
	check(c.Abstraction.Thresholds.EtaR >= 0, "eta_r must not be negative, got %g", c.Abstraction.Thresholds.EtaR)
	check(c.Abstraction.Thresholds.EtaT >= 0, "eta_t must not be negative, got %g", c.Abstraction.Thresholds.EtaT)
	check(c.Abstraction.RandomGroups > 0, "random groups must be positive, got %d", c.Abstraction.RandomGroups)
	check(c.KTK.BoardSize >= 4, "board size must be at least 4, got %d", c.KTK.BoardSize)
	check(c.KTK.MaxTurns > 0, "max turns must be positive, got %d", c.KTK.MaxTurns)
	check(c.Experiment.SwitchProbability >= 0 && c.Experiment.SwitchProbability <= 1,
		"switch probability must lie in [0, 1], got %g", c.Experiment.SwitchProbability)
	check(c.Experiment.MaxMoves > 0, "max moves must be positive, got %d", c.Experiment.MaxMoves)

	return result.ErrorOrNil()
}

// ElasticKind is the strategy of the elastic variant: exact symmetry for tic-tac-toe and
// similarity for Kill-The-King unless configured otherwise.
func (c Config) ElasticKind() (searcher.Kind, error) {
	if c.Abstraction.Elastic != "" {
		return searcher.ParseKind(c.Abstraction.Elastic)
	}
	if c.Game == "xo" {
		return searcher.Symmetry, nil
	}
	return searcher.Similarity, nil
}

// AbstractionFor returns the search abstraction of one strategy.
func (c Config) AbstractionFor(kind searcher.Kind) searcher.AbstractionConfig {
	return searcher.AbstractionConfig{
		Strategy:          kind,
		BatchSize:         c.Abstraction.BatchSize,
		AlphaAbs:          c.Abstraction.AlphaAbs,
		Thresholds:        c.Abstraction.Thresholds,
		RandomGroups:      c.Abstraction.RandomGroups,
		IsolatePrivileged: c.Abstraction.IsolatePrivileged,
	}
}

// Randomize draws the parameters from the ranges explored in batch experiments.
func (c *Config) Randomize(rng *rand.Rand) {
	between := func(lo, hi int) int { return lo + rng.Intn(hi-lo+1) }
	uniform := func(lo, hi float64) float64 { return lo + rng.Float64()*(hi-lo) }

	c.Abstraction.BatchSize = between(10, 30)
	c.Abstraction.AlphaAbs = c.Abstraction.BatchSize * between(4, 10)
	c.Search.Iterations = between(30, 70)
	c.KTK.MaxTurns = between(15, 25)
	c.Abstraction.Thresholds.EtaR = uniform(0.05, 0.2)
	c.Abstraction.Thresholds.EtaT = uniform(0.5, 1.5)
	c.KTK.BoardSize = between(4, 6)
}
