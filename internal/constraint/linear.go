package constraint

import (
	"fmt"

	"github.com/pkg/errors"

	"gsymbex/internal/core"
)

// Linearizer rewrites division, remainder and casts into linear
// constraints over fresh auxiliary variables. One Linearizer serves one
// solver session so auxiliary names never clash.
type Linearizer struct {
	counter int
}

func NewLinearizer() *Linearizer {
	return &Linearizer{}
}

// Linearize returns e rewritten, conjoined with the defining constraints of
// every auxiliary variable and the domain bounds of every integral variable.
// Products of two symbolic terms and symbolic divisors are reported as
// core.ErrCannotModel.
func (l *Linearizer) Linearize(e Expression) (Expression, error) {
	r := &rewriter{owner: l, memo: make(map[Term]Term)}
	out, err := r.expression(e)
	if err != nil {
		return nil, err
	}
	parts := append([]Expression{out}, r.side...)
	terms := make([]Term, len(parts))
	for i := range parts {
		terms[i] = parts[i]
	}
	for _, v := range Variables(terms...) {
		if v.typ.IsIntegral() {
			min, max := v.typ.Bounds()
			parts = append(parts, Ge(v, LongConstant(min)), Le(v, LongConstant(max)))
		}
	}
	return And(parts...), nil
}

func (l *Linearizer) fresh(kind string, typ Type) *Variable {
	l.counter++
	return NewVariable(fmt.Sprintf("%s%s%d", AuxiliaryPrefix, kind, l.counter), typ)
}

type rewriter struct {
	owner *Linearizer
	memo  map[Term]Term
	side  []Expression
}

func (r *rewriter) expression(e Expression) (Expression, error) {
	switch v := e.(type) {
	case *Comparison:
		left, err := r.term(v.left)
		if err != nil {
			return nil, err
		}
		right, err := r.term(v.right)
		if err != nil {
			return nil, err
		}
		return Compare(v.op, left, right), nil
	case *Conjunction:
		parts, err := r.expressions(v.operands)
		if err != nil {
			return nil, err
		}
		return And(parts...), nil
	case *Disjunction:
		parts, err := r.expressions(v.operands)
		if err != nil {
			return nil, err
		}
		return Or(parts...), nil
	case *Not:
		inner, err := r.expression(v.inner)
		if err != nil {
			return nil, err
		}
		return Negate(inner), nil
	}
	return e, nil
}

func (r *rewriter) expressions(es []Expression) ([]Expression, error) {
	result := make([]Expression, len(es))
	for i := range es {
		e, err := r.expression(es[i])
		if err != nil {
			return nil, err
		}
		result[i] = e
	}
	return result, nil
}

func (r *rewriter) term(t Term) (Term, error) {
	if done, ok := r.memo[t]; ok {
		return done, nil
	}
	var (
		result Term
		err    error
	)
	switch v := t.(type) {
	case *Negation:
		var inner Term
		if inner, err = r.term(v.inner); err == nil {
			result = Neg(inner)
		}
	case *Arithmetic:
		result, err = r.arithmetic(v)
	case *Cast:
		result, err = r.cast(v)
	default:
		result = t
	}
	if err != nil {
		return nil, err
	}
	r.memo[t] = result
	return result, nil
}

func (r *rewriter) arithmetic(a *Arithmetic) (Term, error) {
	left, err := r.term(a.left)
	if err != nil {
		return nil, err
	}
	right, err := r.term(a.right)
	if err != nil {
		return nil, err
	}
	_, lconst := left.(*Constant)
	rc, rconst := right.(*Constant)
	switch a.op {
	case OpAdd, OpSub:
		return NewArithmetic(a.op, left, right), nil
	case OpMul:
		if !lconst && !rconst {
			return nil, errors.Wrapf(core.ErrCannotModel, "non-linear product %s", a)
		}
		return NewArithmetic(a.op, left, right), nil
	}
	if !rconst {
		return nil, errors.Wrapf(core.ErrCannotModel, "symbolic divisor in %s", a)
	}
	if rc.IsZero() || rc.IsNaN() {
		return nil, errors.Wrapf(core.ErrCannotModel, "division by %s in %s", rc, a)
	}
	if lconst {
		// left only became constant after rewriting
		return NewArithmetic(a.op, left, right), nil
	}
	if a.typ.IsFloating() && a.op == OpDiv {
		q := r.owner.fresh("q", a.typ)
		r.side = append(r.side, Eq(left, Mul(rc, q)))
		return q, nil
	}
	// truncating division: left == c*k + rem, rem has the sign of left, |rem| < |c|
	ktyp := a.typ
	if ktyp.IsFloating() {
		ktyp = Long
	}
	k := r.owner.fresh("q", ktyp)
	rem := r.owner.fresh("r", a.typ)
	abs := rc
	if rc.Float() < 0 {
		abs = Neg(rc).(*Constant)
	}
	zero := IntegralConstant(Int, 0)
	r.side = append(r.side,
		Eq(left, Add(Mul(rc, k), rem)),
		Implies(Ge(left, zero), And(Ge(rem, zero), Lt(rem, abs))),
		Implies(Lt(left, zero), And(Gt(rem, Neg(abs)), Le(rem, zero))),
	)
	if a.op == OpDiv {
		return k, nil
	}
	return rem, nil
}

func (r *rewriter) cast(c *Cast) (Term, error) {
	inner, err := r.term(c.inner)
	if err != nil {
		return nil, err
	}
	from, to := c.inner.Type(), c.to
	if ic, ok := inner.(*Constant); ok {
		return CastTo(ic, to), nil
	}
	switch {
	case from.IsFloating() && to.IsIntegral():
		wide := Int
		if to == Long {
			wide = Long
		}
		i := r.owner.fresh("i", wide)
		r.side = append(r.side, truncation(inner, i, wide))
		if to != wide {
			return r.narrow(i, to), nil
		}
		return i, nil
	case from.IsIntegral() && to.IsIntegral() && !within(from, to):
		return r.narrow(inner, to), nil
	}
	// widening conversions keep the value
	return inner, nil
}

// narrow wraps x into the range of an integral type: x == r + span*w.
func (r *rewriter) narrow(x Term, to Type) Term {
	min, max := to.Bounds()
	res := r.owner.fresh("n", to)
	w := r.owner.fresh("w", Long)
	r.side = append(r.side, Eq(x, Add(res, Mul(LongConstant(max-min+1), w))))
	return res
}

// truncation defines i as x rounded toward zero, saturating at the bounds of wide.
func truncation(x Term, i *Variable, wide Type) Expression {
	min, max := wide.Bounds()
	var (
		fmin = DoubleConstant(float64(min))
		fmax = DoubleConstant(float64(max))
		zero = DoubleConstant(0)
		one  = IntegralConstant(wide, 1)
	)
	return Or(
		And(Ge(x, fmax), Eq(i, IntegralConstant(wide, max))),
		And(Le(x, fmin), Eq(i, IntegralConstant(wide, min))),
		And(Ge(x, zero), Lt(x, fmax), Le(i, x), Lt(x, Add(i, one))),
		And(Lt(x, zero), Gt(x, fmin), Lt(Sub(i, one), x), Le(x, i)),
	)
}

func within(from, to Type) bool {
	fmin, fmax := from.Bounds()
	tmin, tmax := to.Bounds()
	return fmin >= tmin && fmax <= tmax
}
