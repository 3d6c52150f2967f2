package choice

import (
	"fmt"
	"sync"

	"github.com/pkg/errors"

	"gsymbex/internal/constraint"
	"gsymbex/internal/generator"
	"gsymbex/internal/interp"
)

// ElementGenerator supplies the elements of arrays built at one program point.
type ElementGenerator interface {
	Element(name string, index int, typ constraint.Type) (interp.Value, error)
}

type ElementGeneratorFunc func(name string, index int, typ constraint.Type) (interp.Value, error)

func (f ElementGeneratorFunc) Element(name string, index int, typ constraint.Type) (interp.Value, error) {
	return f(name, index, typ)
}

// Registry maps program points to element generators.
type Registry struct {
	mu         sync.RWMutex
	generators map[string]ElementGenerator
}

func NewRegistry() *Registry {
	return &Registry{generators: make(map[string]ElementGenerator)}
}

func (r *Registry) Register(method string, pc int, g ElementGenerator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.generators[locationKey(method, pc)] = g
}

func (r *Registry) Lookup(loc Location) (ElementGenerator, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.generators[loc.Key()]
	return g, ok
}

// OperandStack as an ArraySpec slot pushes the reference instead of
// storing it in a local.
const OperandStack = -1

// ArraySpec describes a symbolic array whose length is unknown.
type ArraySpec struct {
	// Name prefixes the element variables, "<name>[i]".
	Name    string
	Element constraint.Type
	// ElementClass is set for reference arrays, which cannot be modeled.
	ElementClass string
	// Length is the symbolic length term, constrained per trial when set.
	Length constraint.Term
	// Slot is the local receiving the reference, or OperandStack.
	Slot int
	Next int
	// NonNull skips the null trial, as for arrays the program allocates.
	NonNull bool
}

type trialKind int

const (
	trialNull trialKind = iota
	trialZero
	trialGenerated
)

// ArrayInitialization enumerates concrete lengths for an array, installing
// null, an empty array, or a generated length per alternative.
type ArrayInitialization struct {
	base
	spec      ArraySpec
	heap      interp.Heap
	elements  ElementGenerator
	gen       generator.LengthGenerator
	nullFirst bool
	zeroFirst bool

	kind   trialKind
	length int
	expr   constraint.Expression
	array  *interp.Array
}

func newArrayInitialization(b base, cfg ArrayConfig, heap interp.Heap, elements ElementGenerator, spec ArraySpec) (*ArrayInitialization, error) {
	if spec.ElementClass != "" {
		return nil, &ModelingError{Location: b.location, Reason: fmt.Sprintf("array of %s", spec.ElementClass)}
	}
	if spec.Element != constraint.Boolean && !spec.Element.IsNumeric() {
		return nil, &ModelingError{Location: b.location, Reason: fmt.Sprintf("array of %s", spec.Element)}
	}
	if spec.Length != nil && !spec.Length.Type().IsIntegral() {
		return nil, errors.Errorf("array length %s is not integral", spec.Length)
	}
	if cfg.MaxTrials <= 0 {
		return nil, errors.Errorf("array initialization at %s: max trials %d", b.location, cfg.MaxTrials)
	}
	gen, err := generator.New(cfg.Generator)
	if err != nil {
		return nil, errors.Wrapf(err, "array initialization at %s", b.location)
	}
	b.total = cfg.MaxTrials
	return &ArrayInitialization{
		base:      b,
		spec:      spec,
		heap:      heap,
		elements:  elements,
		gen:       gen,
		nullFirst: cfg.NullFirst && !spec.NonNull,
		zeroFirst: cfg.ZeroLengthFirst,
	}, nil
}

func (c *ArrayInitialization) ChangeToNextChoice() error {
	if err := c.advance(); err != nil {
		return err
	}
	trial := c.step - 1
	switch {
	case c.nullFirst && trial == 0:
		c.kind, c.length = trialNull, 0
	case c.zeroFirst && trial == c.special()-1:
		c.kind, c.length = trialZero, 0
	default:
		c.kind, c.length = trialGenerated, c.gen.Next()
	}
	c.expr = nil
	if c.spec.Length != nil && c.kind != trialNull {
		c.expr = condition(constraint.Eq(c.spec.Length, constraint.IntegralConstant(c.spec.Length.Type(), int64(c.length))))
	}
	return nil
}

// special counts the trials taken before the generator is consulted.
func (c *ArrayInitialization) special() int {
	n := 0
	if c.nullFirst {
		n++
	}
	if c.zeroFirst {
		n++
	}
	return n
}

func (c *ArrayInitialization) ApplyStateChanges() error {
	if err := c.checkApply(); err != nil {
		return err
	}
	var ref interp.Value
	if c.kind != trialNull {
		array, err := c.prepare()
		if err != nil {
			return err
		}
		ref = array
	}
	frame := c.location.Frame
	if c.spec.Slot == OperandStack {
		if err := c.trail.Push(frame, ref); err != nil {
			return errors.Wrapf(err, "install %s", c.spec.Name)
		}
	} else if err := c.trail.SetLocal(frame, c.spec.Slot, ref); err != nil {
		return errors.Wrapf(err, "install %s", c.spec.Name)
	}
	c.trail.SetPC(frame, c.spec.Next)
	c.phase = Applied
	return nil
}

// prepare sizes and fills the array, reusing the one of an earlier trial.
func (c *ArrayInitialization) prepare() (*interp.Array, error) {
	if c.array == nil {
		array, err := c.heap.NewArray(c.spec.Element, c.length)
		if err != nil {
			return nil, errors.Wrapf(err, "allocate %s of length %d", c.spec.Name, c.length)
		}
		c.array = array
	} else {
		c.trail.SaveArray(c.array)
		if err := c.heap.Resize(c.array, c.length); err != nil {
			return nil, errors.Wrapf(err, "resize %s to %d", c.spec.Name, c.length)
		}
	}
	values := make([]interp.Value, c.length)
	for i := range values {
		v, err := c.element(i)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	c.array.Replace(values)
	return c.array, nil
}

func (c *ArrayInitialization) element(i int) (interp.Value, error) {
	if c.elements != nil {
		v, err := c.elements.Element(c.spec.Name, i, c.spec.Element)
		if err != nil {
			return nil, errors.Wrapf(err, "element %d of %s", i, c.spec.Name)
		}
		return v, nil
	}
	return constraint.NewVariable(fmt.Sprintf("%s[%d]", c.spec.Name, i), c.spec.Element), nil
}

func (c *ArrayInitialization) ConstraintExpression() constraint.Expression {
	if c.phase == Idle {
		return nil
	}
	return c.expr
}

func (c *ArrayInitialization) Alternative() string {
	if c.phase == Idle || c.step == 0 {
		return ""
	}
	switch c.kind {
	case trialNull:
		return "null"
	case trialZero:
		return "empty"
	}
	return fmt.Sprintf("length %d", c.length)
}

// Length is the length of the prepared trial, zero for null.
func (c *ArrayInitialization) Length() int {
	return c.length
}

// Array is the array installed by the last committed trial.
func (c *ArrayInitialization) Array() *interp.Array {
	return c.array
}

func (c *ArrayInitialization) String() string {
	return fmt.Sprintf("array#%d(%s %s[]) at %s", c.id, c.spec.Name, c.spec.Element, c.location)
}
