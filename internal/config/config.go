// Package config loads the YAML configuration of a search.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"gsymbex/internal/choice"
	"gsymbex/internal/generator"
	"gsymbex/internal/search"
)

const (
	BackendYices = "yices"
	BackendGini  = "gini"
)

type Config struct {
	Solver   SolverConfig   `yaml:"solver"`
	Search   SearchConfig   `yaml:"search"`
	Arrays   ArraysConfig   `yaml:"arrays"`
	Floating FloatingConfig `yaml:"floating"`
	LogLevel string         `yaml:"log_level"`
}

type SolverConfig struct {
	// Backend is yices or gini.
	Backend string        `yaml:"backend"`
	Timeout time.Duration `yaml:"timeout"`
}

// SearchConfig bounds exploration. Zero means unbounded.
type SearchConfig struct {
	MaxSteps    int           `yaml:"max_steps"`
	MaxDepth    int           `yaml:"max_depth"`
	TimeLimit   time.Duration `yaml:"time_limit"`
	Parallelism int           `yaml:"parallelism"`
}

type ArraysConfig struct {
	Generator       string `yaml:"generator"`
	Start           int    `yaml:"start"`
	Step            int    `yaml:"step"`
	MaxTrials       int    `yaml:"max_trials"`
	NullFirst       bool   `yaml:"null_first"`
	ZeroLengthFirst bool   `yaml:"zero_length_first"`
}

type FloatingConfig struct {
	// NaNBias is l or g.
	NaNBias string `yaml:"nan_bias"`
}

func Default() Config {
	return Config{
		Solver: SolverConfig{
			Backend: BackendYices,
			Timeout: 10 * time.Second,
		},
		Search: SearchConfig{
			MaxSteps:    100000,
			MaxDepth:    64,
			TimeLimit:   time.Minute,
			Parallelism: 1,
		},
		Arrays: ArraysConfig{
			Generator:       generator.Linear.String(),
			Start:           1,
			Step:            1,
			MaxTrials:       5,
			NullFirst:       true,
			ZeroLengthFirst: true,
		},
		Floating: FloatingConfig{NaNBias: choice.BiasL.String()},
		LogLevel: "info",
	}
}

// Load overlays the file at path on the defaults. An empty path yields the
// defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrap(err, "read config")
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "parse config %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, errors.Wrapf(err, "invalid config %s", path)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Solver.Backend {
	case BackendYices, BackendGini:
	default:
		return errors.Errorf("solver.backend: unknown backend %q", c.Solver.Backend)
	}
	if c.Solver.Timeout < 0 {
		return errors.New("solver.timeout: must not be negative")
	}
	if c.Search.MaxSteps < 0 || c.Search.MaxDepth < 0 || c.Search.TimeLimit < 0 {
		return errors.New("search: bounds must not be negative")
	}
	if c.Search.Parallelism < 1 {
		return errors.Errorf("search.parallelism: %d, must be at least 1", c.Search.Parallelism)
	}
	if c.Arrays.MaxTrials < 1 {
		return errors.Errorf("arrays.max_trials: %d, must be at least 1", c.Arrays.MaxTrials)
	}
	if _, err := c.Generator(); err != nil {
		return errors.Wrap(err, "arrays")
	}
	if _, err := choice.ParseBias(c.Floating.NaNBias); err != nil {
		return errors.Wrap(err, "floating.nan_bias")
	}
	if _, err := c.Level(); err != nil {
		return errors.Wrap(err, "log_level")
	}
	return nil
}

func (c Config) Generator() (generator.Config, error) {
	strategy, err := generator.ParseStrategy(c.Arrays.Generator)
	if err != nil {
		return generator.Config{}, err
	}
	cfg := generator.Config{Strategy: strategy, Start: c.Arrays.Start, Step: c.Arrays.Step}
	if _, err := generator.New(cfg); err != nil {
		return generator.Config{}, err
	}
	return cfg, nil
}

// Choice is the configuration handed to the choice point factory.
func (c Config) Choice() (choice.Config, error) {
	gen, err := c.Generator()
	if err != nil {
		return choice.Config{}, err
	}
	bias, err := choice.ParseBias(c.Floating.NaNBias)
	if err != nil {
		return choice.Config{}, err
	}
	return choice.Config{
		Arrays: choice.ArrayConfig{
			Generator:       gen,
			MaxTrials:       c.Arrays.MaxTrials,
			NullFirst:       c.Arrays.NullFirst,
			ZeroLengthFirst: c.Arrays.ZeroLengthFirst,
		},
		NaNBias: bias,
	}, nil
}

func (c Config) SearchOptions() search.Options {
	return search.Options{
		MaxSteps:  c.Search.MaxSteps,
		MaxDepth:  c.Search.MaxDepth,
		TimeLimit: c.Search.TimeLimit,
	}
}

func (c Config) Level() (log.Level, error) {
	return log.ParseLevel(strings.TrimSpace(c.LogLevel))
}
