package constraint

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Term is a symbolic value.
type Term interface {
	Type() Type
	String() string
}

// Expression is a boolean-valued term usable as a constraint.
type Expression interface {
	Term
	isExpression()
}

// AuxiliaryPrefix starts the names of variables introduced by rewriting.
const AuxiliaryPrefix = "$"

// Variable is a named symbolic input.
type Variable struct {
	name string
	typ  Type
}

func NewVariable(name string, typ Type) *Variable {
	return &Variable{name: name, typ: typ}
}

func (v *Variable) Name() string { return v.name }
func (v *Variable) Type() Type   { return v.typ }
func (v *Variable) String() string {
	return v.name
}

// IsAuxiliary reports whether the variable was introduced by rewriting.
func (v *Variable) IsAuxiliary() bool {
	return strings.HasPrefix(v.name, AuxiliaryPrefix)
}

// boolean variables double as expressions
func (v *Variable) isExpression() {}

// Constant is a concrete value of any type.
type Constant struct {
	typ Type
	i   int64
	f   float64
	b   bool
}

var (
	True  = &Constant{typ: Boolean, b: true}
	False = &Constant{typ: Boolean, b: false}
)

func BoolConstant(b bool) *Constant {
	if b {
		return True
	}
	return False
}

func IntConstant(v int32) *Constant {
	return &Constant{typ: Int, i: int64(v)}
}

func LongConstant(v int64) *Constant {
	return &Constant{typ: Long, i: v}
}

func FloatConstant(v float32) *Constant {
	return &Constant{typ: Float, f: float64(v)}
}

func DoubleConstant(v float64) *Constant {
	return &Constant{typ: Double, f: v}
}

// IntegralConstant builds a constant of an integral type, wrapping v to its width.
func IntegralConstant(typ Type, v int64) *Constant {
	return &Constant{typ: typ, i: wrap(typ, v)}
}

// FloatingConstant builds a Float or Double constant, rounding for Float.
func FloatingConstant(typ Type, v float64) *Constant {
	if typ == Float {
		v = float64(float32(v))
	}
	return &Constant{typ: typ, f: v}
}

func (c *Constant) Type() Type { return c.typ }

func (c *Constant) isExpression() {}

func (c *Constant) Bool() bool { return c.b }

// Int returns the integral value, truncating floating values toward zero.
func (c *Constant) Int() int64 {
	if c.typ.IsFloating() {
		return int64(c.f)
	}
	return c.i
}

// Float returns the value as a float64.
func (c *Constant) Float() float64 {
	if c.typ.IsFloating() {
		return c.f
	}
	if c.typ == Boolean {
		if c.b {
			return 1
		}
		return 0
	}
	return float64(c.i)
}

func (c *Constant) IsNaN() bool {
	return c.typ.IsFloating() && math.IsNaN(c.f)
}

func (c *Constant) IsZero() bool {
	if c.typ.IsFloating() {
		return c.f == 0
	}
	return c.typ.IsIntegral() && c.i == 0
}

func (c *Constant) String() string {
	switch c.typ {
	case Boolean:
		return strconv.FormatBool(c.b)
	case Long:
		return strconv.FormatInt(c.i, 10) + "L"
	case Float:
		return strconv.FormatFloat(c.f, 'g', -1, 32) + "f"
	case Double:
		return strconv.FormatFloat(c.f, 'g', -1, 64)
	case Char:
		return fmt.Sprintf("'\\u%04x'", c.i)
	}
	return strconv.FormatInt(c.i, 10)
}

// Equal reports value equality of two constants of the same type.
func (c *Constant) Equal(o *Constant) bool {
	if c == nil || o == nil {
		return c == o
	}
	if c.typ != o.typ {
		return false
	}
	switch {
	case c.typ == Boolean:
		return c.b == o.b
	case c.typ.IsFloating():
		return c.f == o.f || (math.IsNaN(c.f) && math.IsNaN(o.f))
	}
	return c.i == o.i
}

// IsNaN reports whether t is a constant NaN.
func IsNaN(t Term) bool {
	c, ok := t.(*Constant)
	return ok && c.IsNaN()
}

// AsConstant returns t as a constant if it is one.
func AsConstant(t Term) (*Constant, bool) {
	c, ok := t.(*Constant)
	return c, ok
}
