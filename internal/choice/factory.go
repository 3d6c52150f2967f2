package choice

import (
	log "github.com/sirupsen/logrus"

	"gsymbex/internal/constraint"
	"gsymbex/internal/generator"
	"gsymbex/internal/interp"
)

// ArrayConfig controls length enumeration of symbolic arrays.
type ArrayConfig struct {
	Generator       generator.Config
	MaxTrials       int
	NullFirst       bool
	ZeroLengthFirst bool
}

// Config is passed to every choice point a Factory builds.
type Config struct {
	Arrays ArrayConfig
	// NaNBias is used by floating comparisons built with BiasDefault.
	NaNBias Bias
}

func DefaultConfig() Config {
	return Config{
		Arrays: ArrayConfig{
			Generator:       generator.Config{Strategy: generator.Linear, Start: 1, Step: 1},
			MaxTrials:       5,
			NullFirst:       true,
			ZeroLengthFirst: true,
		},
		NaNBias: BiasL,
	}
}

// Factory builds choice points for one search. Ids increase per factory.
type Factory struct {
	nextID   int
	config   Config
	heap     interp.Heap
	hook     interp.ExceptionHook
	registry *Registry
	logger   *log.Entry
}

type FactoryOption func(*Factory)

func WithRegistry(r *Registry) FactoryOption {
	return func(f *Factory) {
		f.registry = r
	}
}

func WithLogger(logger *log.Entry) FactoryOption {
	return func(f *Factory) {
		f.logger = logger
	}
}

func NewFactory(cfg Config, heap interp.Heap, hook interp.ExceptionHook, opts ...FactoryOption) *Factory {
	f := &Factory{
		config: cfg,
		heap:   heap,
		hook:   hook,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.registry == nil {
		f.registry = NewRegistry()
	}
	if f.logger == nil {
		f.logger = log.NewEntry(log.StandardLogger())
	}
	return f
}

func (f *Factory) Config() Config {
	return f.config
}

func (f *Factory) Registry() *Registry {
	return f.registry
}

// Created is the number of choice points built so far.
func (f *Factory) Created() int {
	return f.nextID
}

func (f *Factory) base(kind Kind, parent ChoicePoint, frame interp.Frame) base {
	f.nextID++
	return newBase(f.nextID, kind, parent, frame)
}

func (f *Factory) created(cp ChoicePoint) {
	f.logger.WithFields(log.Fields{
		"choice_point": cp.ID(),
		"kind":         cp.Kind(),
		"location":     cp.Location(),
	}).Debugf("created with %d alternatives", cp.Total())
}

// NewBranch builds the choice point of a conditional jump.
func (f *Factory) NewBranch(parent ChoicePoint, frame interp.Frame, cond constraint.Expression, target, next int) *Branch {
	cp := newBranch(f.base(KindBranch, parent, frame), cond, target, next)
	f.created(cp)
	return cp
}

func (f *Factory) NewSwitch(parent ChoicePoint, frame interp.Frame, value constraint.Term, keys []int32, targets []int, defaultTarget int) (*Switch, error) {
	cp, err := newSwitch(f.base(KindSwitch, parent, frame), value, keys, targets, defaultTarget)
	if err != nil {
		return nil, err
	}
	f.created(cp)
	return cp, nil
}

func (f *Factory) NewLongCompare(parent ChoicePoint, frame interp.Frame, left, right constraint.Term, next int) *Compare {
	cp := newCompare(f.base(KindLongCompare, parent, frame), left, right, next)
	f.created(cp)
	return cp
}

// NewFloatCompare builds a floating comparison. A NaN operand leaves a
// single alternative that pushes the bias.
func (f *Factory) NewFloatCompare(parent ChoicePoint, frame interp.Frame, policy NaNPolicy, bias Bias, left, right constraint.Term, next int) *Compare {
	if bias == BiasDefault {
		bias = f.config.NaNBias
	}
	if bias == BiasDefault {
		bias = BiasL
	}
	cp := newFloatCompare(f.base(KindFloatCompare, parent, frame), policy, bias, left, right, next)
	f.created(cp)
	return cp
}

func (f *Factory) NewArithmeticGuard(parent ChoicePoint, frame interp.Frame, op constraint.ArithOp, dividend, divisor constraint.Term, next int) (*ArithmeticGuard, error) {
	cp, err := newArithmeticGuard(f.base(KindArithmeticGuard, parent, frame), f.hook, op, dividend, divisor, next)
	if err != nil {
		return nil, err
	}
	f.created(cp)
	return cp, nil
}

// NewArrayInitialization builds an array length enumeration. Elements come
// from the generator registered for the frame's program point, if any.
func (f *Factory) NewArrayInitialization(parent ChoicePoint, frame interp.Frame, spec ArraySpec) (*ArrayInitialization, error) {
	b := f.base(KindArrayInitialization, parent, frame)
	elements, _ := f.registry.Lookup(b.location)
	cp, err := newArrayInitialization(b, f.config.Arrays, f.heap, elements, spec)
	if err != nil {
		return nil, err
	}
	f.created(cp)
	return cp, nil
}
