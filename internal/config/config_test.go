package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gsymbex/internal/choice"
	"gsymbex/internal/generator"
)

func write(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "gsymbex.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func Test_DefaultIsValid(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, BackendYices, cfg.Solver.Backend)

	cc, err := cfg.Choice()
	require.NoError(t, err)
	assert.Equal(t, choice.DefaultConfig(), cc)
}

func Test_LoadOverlaysDefaults(t *testing.T) {
	path := write(t, `
solver:
  backend: gini
search:
  max_depth: 8
  time_limit: 3s
arrays:
  generator: fibonacci
  start: 2
  null_first: false
floating:
  nan_bias: g
log_level: debug
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, BackendGini, cfg.Solver.Backend)
	assert.Equal(t, 10*time.Second, cfg.Solver.Timeout)
	assert.Equal(t, 8, cfg.SearchOptions().MaxDepth)
	assert.Equal(t, 3*time.Second, cfg.SearchOptions().TimeLimit)
	assert.Equal(t, 100000, cfg.SearchOptions().MaxSteps)

	cc, err := cfg.Choice()
	require.NoError(t, err)
	assert.Equal(t, generator.Fibonacci, cc.Arrays.Generator.Strategy)
	assert.Equal(t, 2, cc.Arrays.Generator.Start)
	assert.False(t, cc.Arrays.NullFirst)
	assert.True(t, cc.Arrays.ZeroLengthFirst)
	assert.Equal(t, choice.BiasG, cc.NaNBias)

	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, log.DebugLevel, level)
}

func Test_LoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		msg     string
	}{
		{"backend", "solver:\n  backend: z3\n", "solver.backend"},
		{"parallelism", "search:\n  parallelism: 0\n", "search.parallelism"},
		{"trials", "arrays:\n  max_trials: 0\n", "arrays.max_trials"},
		{"generator", "arrays:\n  generator: random\n", "arrays"},
		{"bias", "floating:\n  nan_bias: x\n", "floating.nan_bias"},
		{"level", "log_level: loud\n", "log_level"},
		{"syntax", "search: [\n", "parse config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(write(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func Test_LoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
