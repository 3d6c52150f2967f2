package constraint

import (
	"fmt"
	"math"
	"strings"
)

type CompareOp int

const (
	OpEQ CompareOp = iota
	OpNE
	OpLT
	OpLE
	OpGT
	OpGE
)

func (op CompareOp) String() string {
	switch op {
	case OpEQ:
		return "=="
	case OpNE:
		return "!="
	case OpLT:
		return "<"
	case OpLE:
		return "<="
	case OpGT:
		return ">"
	case OpGE:
		return ">="
	}
	return "?"
}

// Negate returns the complementary operator.
func (op CompareOp) Negate() CompareOp {
	switch op {
	case OpEQ:
		return OpNE
	case OpNE:
		return OpEQ
	case OpLT:
		return OpGE
	case OpLE:
		return OpGT
	case OpGT:
		return OpLE
	}
	return OpLT
}

// Comparison relates two terms of compatible types.
type Comparison struct {
	op          CompareOp
	left, right Term
}

func (c *Comparison) Type() Type    { return Boolean }
func (c *Comparison) isExpression() {}
func (c *Comparison) Op() CompareOp { return c.op }
func (c *Comparison) Left() Term    { return c.left }
func (c *Comparison) Right() Term   { return c.right }
func (c *Comparison) String() string {
	return fmt.Sprintf("(%s %s %s)", c.left, c.op, c.right)
}

func Eq(l, r Term) Expression { return Compare(OpEQ, l, r) }
func Ne(l, r Term) Expression { return Compare(OpNE, l, r) }
func Lt(l, r Term) Expression { return Compare(OpLT, l, r) }
func Le(l, r Term) Expression { return Compare(OpLE, l, r) }
func Gt(l, r Term) Expression { return Compare(OpGT, l, r) }
func Ge(l, r Term) Expression { return Compare(OpGE, l, r) }

// Compare builds l op r. Boolean operands only admit == and !=.
// Comparisons involving a constant NaN fold to false, except != which folds to true.
func Compare(op CompareOp, l, r Term) Expression {
	if l.Type() == Boolean || r.Type() == Boolean {
		if l.Type() != r.Type() || (op != OpEQ && op != OpNE) {
			panic(fmt.Sprintf("constraint: invalid boolean comparison %s %s %s", l, op, r))
		}
	} else {
		mustNumeric(l, r)
	}
	lc, lok := l.(*Constant)
	rc, rok := r.(*Constant)
	if lok && rok {
		return BoolConstant(foldCompare(op, lc, rc))
	}
	if (lok && lc.IsNaN()) || (rok && rc.IsNaN()) {
		return BoolConstant(op == OpNE)
	}
	return &Comparison{op: op, left: l, right: r}
}

func foldCompare(op CompareOp, l, r *Constant) bool {
	if l.typ == Boolean {
		if op == OpEQ {
			return l.b == r.b
		}
		return l.b != r.b
	}
	if l.typ.IsFloating() || r.typ.IsFloating() {
		a, b := l.Float(), r.Float()
		if math.IsNaN(a) || math.IsNaN(b) {
			return op == OpNE
		}
		return ordered(op, compareFloat(a, b))
	}
	a, b := l.Int(), r.Int()
	switch {
	case a < b:
		return ordered(op, -1)
	case a > b:
		return ordered(op, 1)
	}
	return ordered(op, 0)
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func ordered(op CompareOp, sign int) bool {
	switch op {
	case OpEQ:
		return sign == 0
	case OpNE:
		return sign != 0
	case OpLT:
		return sign < 0
	case OpLE:
		return sign <= 0
	case OpGT:
		return sign > 0
	}
	return sign >= 0
}

// Conjunction is a flattened n-ary and.
type Conjunction struct {
	operands []Expression
}

func (c *Conjunction) Type() Type             { return Boolean }
func (c *Conjunction) isExpression()          {}
func (c *Conjunction) Operands() []Expression { return c.operands }
func (c *Conjunction) String() string         { return join(c.operands, " && ") }

// Disjunction is a flattened n-ary or.
type Disjunction struct {
	operands []Expression
}

func (d *Disjunction) Type() Type             { return Boolean }
func (d *Disjunction) isExpression()          {}
func (d *Disjunction) Operands() []Expression { return d.operands }
func (d *Disjunction) String() string         { return join(d.operands, " || ") }

// Not is logical negation of a compound or variable operand.
type Not struct {
	inner Expression
}

func (n *Not) Type() Type        { return Boolean }
func (n *Not) isExpression()     {}
func (n *Not) Inner() Expression { return n.inner }
func (n *Not) String() string    { return fmt.Sprintf("!%s", n.inner) }

func join(es []Expression, sep string) string {
	parts := make([]string, len(es))
	for i := range es {
		parts[i] = es[i].String()
	}
	return "(" + strings.Join(parts, sep) + ")"
}

// And conjoins expressions. Nil operands are ignored.
func And(es ...Expression) Expression {
	operands := make([]Expression, 0, len(es))
	for _, e := range es {
		switch v := e.(type) {
		case nil:
		case *Constant:
			if !v.b {
				return False
			}
		case *Conjunction:
			operands = append(operands, v.operands...)
		default:
			operands = append(operands, e)
		}
	}
	switch len(operands) {
	case 0:
		return True
	case 1:
		return operands[0]
	}
	return &Conjunction{operands: operands}
}

// Or disjoins expressions. Nil operands are ignored.
func Or(es ...Expression) Expression {
	operands := make([]Expression, 0, len(es))
	for _, e := range es {
		switch v := e.(type) {
		case nil:
		case *Constant:
			if v.b {
				return True
			}
		case *Disjunction:
			operands = append(operands, v.operands...)
		default:
			operands = append(operands, e)
		}
	}
	switch len(operands) {
	case 0:
		return False
	case 1:
		return operands[0]
	}
	return &Disjunction{operands: operands}
}

// Negate builds !e. Comparisons flip their operator; symbolic floating
// values are modeled as reals so the flip is exact.
func Negate(e Expression) Expression {
	switch v := e.(type) {
	case *Constant:
		return BoolConstant(!v.b)
	case *Not:
		return v.inner
	case *Comparison:
		return &Comparison{op: v.op.Negate(), left: v.left, right: v.right}
	}
	return &Not{inner: e}
}

// Implies builds a -> b.
func Implies(a, b Expression) Expression {
	return Or(Negate(a), b)
}
