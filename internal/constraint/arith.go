package constraint

import (
	"fmt"
	"math"
)

type ArithOp int

const (
	OpAdd ArithOp = iota
	OpSub
	OpMul
	OpDiv
	OpRem
)

func (op ArithOp) String() string {
	switch op {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	case OpRem:
		return "%"
	}
	return "?"
}

// Arithmetic is a binary numeric operation.
type Arithmetic struct {
	op          ArithOp
	left, right Term
	typ         Type
}

func (a *Arithmetic) Type() Type  { return a.typ }
func (a *Arithmetic) Op() ArithOp { return a.op }
func (a *Arithmetic) Left() Term  { return a.left }
func (a *Arithmetic) Right() Term { return a.right }
func (a *Arithmetic) String() string {
	return fmt.Sprintf("(%s %s %s)", a.left, a.op, a.right)
}

// Negation is arithmetic negation.
type Negation struct {
	inner Term
}

func (n *Negation) Type() Type     { return promote(n.inner.Type(), Int) }
func (n *Negation) Inner() Term    { return n.inner }
func (n *Negation) String() string { return fmt.Sprintf("-%s", n.inner) }

// Cast is a primitive conversion.
type Cast struct {
	inner Term
	to    Type
}

func (c *Cast) Type() Type     { return c.to }
func (c *Cast) Inner() Term    { return c.inner }
func (c *Cast) String() string { return fmt.Sprintf("(%s)%s", c.to, c.inner) }

func mustNumeric(ts ...Term) {
	for _, t := range ts {
		if !t.Type().IsNumeric() {
			panic(fmt.Sprintf("constraint: non-numeric operand %s of type %s", t, t.Type()))
		}
	}
}

func Add(l, r Term) Term { return NewArithmetic(OpAdd, l, r) }
func Sub(l, r Term) Term { return NewArithmetic(OpSub, l, r) }
func Mul(l, r Term) Term { return NewArithmetic(OpMul, l, r) }
func Div(l, r Term) Term { return NewArithmetic(OpDiv, l, r) }
func Rem(l, r Term) Term { return NewArithmetic(OpRem, l, r) }

// NewArithmetic builds l op r with binary numeric promotion.
// Integral division by a constant zero is kept symbolic.
func NewArithmetic(op ArithOp, l, r Term) Term {
	mustNumeric(l, r)
	typ := promote(l.Type(), r.Type())
	lc, lok := l.(*Constant)
	rc, rok := r.(*Constant)
	if lok && rok {
		if c, ok := foldArithmetic(op, typ, lc, rc); ok {
			return c
		}
	}
	// identities only hold exactly for integral arithmetic
	if typ.IsIntegral() {
		switch op {
		case OpAdd:
			if rok && rc.i == 0 && l.Type() == typ {
				return l
			}
			if lok && lc.i == 0 && r.Type() == typ {
				return r
			}
		case OpSub:
			if rok && rc.i == 0 && l.Type() == typ {
				return l
			}
		case OpMul:
			if (rok && rc.i == 0) || (lok && lc.i == 0) {
				return IntegralConstant(typ, 0)
			}
			if rok && rc.i == 1 && l.Type() == typ {
				return l
			}
			if lok && lc.i == 1 && r.Type() == typ {
				return r
			}
		case OpDiv:
			if rok && rc.i == 1 && l.Type() == typ {
				return l
			}
		}
	}
	return &Arithmetic{op: op, left: l, right: r, typ: typ}
}

func foldArithmetic(op ArithOp, typ Type, l, r *Constant) (*Constant, bool) {
	switch typ {
	case Int:
		a, b := int32(l.Int()), int32(r.Int())
		switch op {
		case OpAdd:
			return IntConstant(a + b), true
		case OpSub:
			return IntConstant(a - b), true
		case OpMul:
			return IntConstant(a * b), true
		case OpDiv:
			if b == 0 {
				return nil, false
			}
			return IntConstant(a / b), true
		case OpRem:
			if b == 0 {
				return nil, false
			}
			return IntConstant(a % b), true
		}
	case Long:
		a, b := l.Int(), r.Int()
		switch op {
		case OpAdd:
			return LongConstant(a + b), true
		case OpSub:
			return LongConstant(a - b), true
		case OpMul:
			return LongConstant(a * b), true
		case OpDiv:
			if b == 0 {
				return nil, false
			}
			return LongConstant(a / b), true
		case OpRem:
			if b == 0 {
				return nil, false
			}
			return LongConstant(a % b), true
		}
	case Float, Double:
		a, b := l.Float(), r.Float()
		var v float64
		switch op {
		case OpAdd:
			v = a + b
		case OpSub:
			v = a - b
		case OpMul:
			v = a * b
		case OpDiv:
			v = a / b
		case OpRem:
			v = math.Mod(a, b)
		}
		if typ == Float {
			return FloatConstant(float32(v)), true
		}
		return DoubleConstant(v), true
	}
	return nil, false
}

// Neg builds -t.
func Neg(t Term) Term {
	mustNumeric(t)
	switch v := t.(type) {
	case *Constant:
		if v.typ.IsFloating() {
			return FloatingConstant(v.typ, -v.f)
		}
		return IntegralConstant(promote(v.typ, Int), -v.i)
	case *Negation:
		return v.inner
	}
	return &Negation{inner: t}
}

// CastTo converts t to the given numeric type.
func CastTo(t Term, to Type) Term {
	mustNumeric(t)
	if !to.IsNumeric() {
		panic(fmt.Sprintf("constraint: cast to %s", to))
	}
	if t.Type() == to {
		return t
	}
	if c, ok := t.(*Constant); ok {
		return foldCast(c, to)
	}
	return &Cast{inner: t, to: to}
}

func foldCast(c *Constant, to Type) *Constant {
	from := c.typ
	switch {
	case from.IsIntegral() && to.IsIntegral():
		return IntegralConstant(to, c.i)
	case from.IsIntegral() && to.IsFloating():
		return FloatingConstant(to, float64(c.i))
	case from.IsFloating() && to.IsFloating():
		return FloatingConstant(to, c.f)
	}
	// floating to integral: saturate to int or long, then narrow
	wide := Int
	if to == Long {
		wide = Long
	}
	return IntegralConstant(to, saturate(c.f, wide))
}

func saturate(f float64, t Type) int64 {
	if math.IsNaN(f) {
		return 0
	}
	min, max := t.Bounds()
	if f >= float64(max) {
		return max
	}
	if f <= float64(min) {
		return min
	}
	return int64(f)
}
