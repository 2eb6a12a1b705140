package config

import (
	"bytes"
	"emcts/searcher"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

func TestValidate(t *testing.T) {
	t.Run("defaults are valid", func(t *testing.T) {
		require.NoError(t, Default().Validate())
	})

	t.Run("reports every violation", func(t *testing.T) {
		c := Default()
		c.Game = "chess"
		c.Abstraction.BatchSize = 0
		c.KTK.BoardSize = 3
		c.Experiment.SwitchProbability = 1.5

		err := c.Validate()

		require.Error(t, err)
		var merr *multierror.Error
		require.ErrorAs(t, err, &merr)
		require.Len(t, merr.Errors, 4)
		require.Contains(t, err.Error(), `unknown game "chess"`)
	})
}

func TestLoad(t *testing.T) {
	t.Run("overlays the file on the defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		content := "game: xo\nsearch:\n  iterations: 100\nabstraction:\n  thresholds:\n    eta_r: 0.2\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))

		c, err := Load(path)

		require.NoError(t, err)
		require.Equal(t, "xo", c.Game)
		require.Equal(t, 100, c.Search.Iterations)
		require.Equal(t, 0.2, c.Abstraction.Thresholds.EtaR)
		require.Equal(t, 1.0, c.Abstraction.Thresholds.EtaT, "unset keys keep their default")
		require.Equal(t, 160, c.Abstraction.AlphaAbs)
	})

	t.Run("missing file fails", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))

		require.Error(t, err)
	})
}

func TestRandomize(t *testing.T) {
	t.Run("stays inside the explored ranges", func(t *testing.T) {
		rng := rand.New(rand.NewSource(5))
		for i := 0; i < 50; i++ {
			c := Default()
			c.Randomize(rng)

			require.NoError(t, c.Validate())
			require.GreaterOrEqual(t, c.Abstraction.BatchSize, 10)
			require.LessOrEqual(t, c.Abstraction.BatchSize, 30)
			require.Zero(t, c.Abstraction.AlphaAbs%c.Abstraction.BatchSize)
			require.GreaterOrEqual(t, c.KTK.BoardSize, 4)
			require.LessOrEqual(t, c.KTK.BoardSize, 6)
			require.InDelta(t, 0.125, c.Abstraction.Thresholds.EtaR, 0.075)
		}
	})

	t.Run("same seed draws the same parameters", func(t *testing.T) {
		a, b := Default(), Default()
		a.Randomize(rand.New(rand.NewSource(9)))
		b.Randomize(rand.New(rand.NewSource(9)))

		require.Equal(t, a, b)
	})
}

func TestPrompt(t *testing.T) {
	t.Run("blank keeps the default and values override it", func(t *testing.T) {
		c := Default()
		in := strings.NewReader("\n200\n80\n\n0.3\n\n5\n")
		var out bytes.Buffer

		err := Prompt(in, &out, &c)

		require.NoError(t, err)
		require.Equal(t, 20, c.Abstraction.BatchSize)
		require.Equal(t, 200, c.Abstraction.AlphaAbs)
		require.Equal(t, 80, c.Search.Iterations)
		require.Equal(t, 0.3, c.Abstraction.Thresholds.EtaR)
		require.Equal(t, 5, c.KTK.BoardSize)
		require.Contains(t, out.String(), "Batch size - iterations between abstractions [20]: ")
	})

	t.Run("invalid input keeps the default", func(t *testing.T) {
		c := Default()
		var out bytes.Buffer

		err := Prompt(strings.NewReader("abc\n"), &out, &c)

		require.NoError(t, err)
		require.Equal(t, 20, c.Abstraction.BatchSize)
		require.Contains(t, out.String(), `invalid input "abc", keeping 20`)
	})
}

func TestElasticKind(t *testing.T) {
	t.Run("fits the game by default", func(t *testing.T) {
		c := Default()
		kind, err := c.ElasticKind()
		require.NoError(t, err)
		require.Equal(t, searcher.Similarity, kind)

		c.Game = "xo"
		kind, err = c.ElasticKind()
		require.NoError(t, err)
		require.Equal(t, searcher.Symmetry, kind)
	})

	t.Run("configured strategy wins", func(t *testing.T) {
		c := Default()
		c.Abstraction.Elastic = "random"

		kind, err := c.ElasticKind()

		require.NoError(t, err)
		require.Equal(t, searcher.Random, kind)
	})

	t.Run("unknown strategy fails validation", func(t *testing.T) {
		c := Default()
		c.Abstraction.Elastic = "clustering"

		err := c.Validate()

		require.Error(t, err)
		require.Contains(t, err.Error(), `unknown abstraction strategy "clustering"`)
	})
}

func TestAbstractionFor(t *testing.T) {
	c := Default()

	a := c.AbstractionFor(searcher.Similarity)

	require.Equal(t, searcher.Similarity, a.Strategy)
	require.Equal(t, 20, a.BatchSize)
	require.Equal(t, 160, a.AlphaAbs)
	require.True(t, a.IsolatePrivileged)
}
