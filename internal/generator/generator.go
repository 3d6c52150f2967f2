// Package generator produces candidate array lengths where no exact
// symbolic length can be used.
package generator

import (
	"math"
	"strings"

	"github.com/pkg/errors"
)

// MaxLength is the largest representable array length.
const MaxLength = math.MaxInt32

const (
	maxDoublings    = 31
	maxTenfoldSteps = 9
)

type Strategy int

const (
	Linear Strategy = iota
	Fibonacci
	Exponential
	PowerOfTen
)

var strategyNames = map[Strategy]string{
	Linear:      "linear",
	Fibonacci:   "fibonacci",
	Exponential: "exponential",
	PowerOfTen:  "power_of_ten",
}

func (s Strategy) String() string {
	if name, ok := strategyNames[s]; ok {
		return name
	}
	return "unknown"
}

func ParseStrategy(name string) (Strategy, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for s, n := range strategyNames {
		if n == name {
			return s, nil
		}
	}
	return Linear, errors.Errorf("unknown length generator %q", name)
}

// Config selects a strategy. Step only applies to Linear.
type Config struct {
	Strategy Strategy
	Start    int
	Step     int
}

// LengthGenerator yields a non-decreasing sequence of lengths, one per call.
type LengthGenerator interface {
	Next() int
	// Calls is the number of lengths produced so far.
	Calls() int
	Reset()
}

// New builds the generator described by cfg.
func New(cfg Config) (LengthGenerator, error) {
	if cfg.Start < 0 {
		return nil, errors.Errorf("start length %d is negative", cfg.Start)
	}
	var f func(n int) int
	switch cfg.Strategy {
	case Linear:
		if cfg.Step < 0 {
			return nil, errors.Errorf("linear step %d is negative", cfg.Step)
		}
		start, step := cfg.Start, cfg.Step
		f = func(n int) int { return saturatingAdd(start, saturatingMul(n, step)) }
	case Fibonacci:
		start := cfg.Start
		f = func(n int) int { return saturatingAdd(start, fib(n)) }
	case Exponential:
		start := cfg.Start
		f = func(n int) int { return saturatingAdd(start, pow(2, n, maxDoublings)) }
	case PowerOfTen:
		start := cfg.Start
		f = func(n int) int { return saturatingAdd(start, pow(10, n, maxTenfoldSteps)) }
	default:
		return nil, errors.Errorf("unknown length generator %d", int(cfg.Strategy))
	}
	return &sequence{length: f}, nil
}

// sequence is a pure function of its call counter.
type sequence struct {
	length func(n int) int
	calls  int
}

func (s *sequence) Next() int {
	v := s.length(s.calls)
	s.calls++
	return v
}

func (s *sequence) Calls() int {
	return s.calls
}

func (s *sequence) Reset() {
	s.calls = 0
}

func saturatingAdd(a, b int) int {
	if a >= MaxLength-b {
		return MaxLength
	}
	return a + b
}

func saturatingMul(a, b int) int {
	if a == 0 || b == 0 {
		return 0
	}
	if a > MaxLength/b {
		return MaxLength
	}
	return a * b
}

// pow computes base^n with n capped at limit, saturating at MaxLength.
func pow(base, n, limit int) int {
	if n > limit {
		n = limit
	}
	v := 1
	for i := 0; i < n; i++ {
		v = saturatingMul(v, base)
	}
	return v
}

// fib is 1, 1, 2, 3, 5, ... saturating at MaxLength.
func fib(n int) int {
	a, b := 1, 1
	for i := 0; i < n; i++ {
		a, b = b, saturatingAdd(a, b)
		if a == MaxLength {
			return MaxLength
		}
	}
	return a
}
