package smt

import (
	"fmt"
	"math"
	"math/big"

	yices2 "github.com/ianamason/yices2_go_bindings/yices_api"
	"github.com/pkg/errors"

	"gsymbex/internal/constraint"
	"gsymbex/internal/core"
)

// translate lowers a linearized expression to a yices term. Callers hold mu.
func (s *Solver) translate(t constraint.Term) (yices2.TermT, error) {
	switch v := t.(type) {
	case *constraint.Constant:
		return constant(v)
	case *constraint.Variable:
		return s.variable(v), nil
	case *constraint.Negation:
		inner, err := s.translate(v.Inner())
		if err != nil {
			return yices2.NullTerm, err
		}
		return check(yices2.Neg(inner))
	case *constraint.Cast:
		// linearized casts only widen, and reals contain the integers
		return s.translate(v.Inner())
	case *constraint.Arithmetic:
		return s.arithmetic(v)
	case *constraint.Comparison:
		return s.comparison(v)
	case *constraint.Not:
		inner, err := s.translate(v.Inner())
		if err != nil {
			return yices2.NullTerm, err
		}
		return check(yices2.Not(inner))
	case *constraint.Conjunction:
		terms, err := s.translateAll(v.Operands())
		if err != nil {
			return yices2.NullTerm, err
		}
		return check(yices2.And(terms))
	case *constraint.Disjunction:
		terms, err := s.translateAll(v.Operands())
		if err != nil {
			return yices2.NullTerm, err
		}
		return check(yices2.Or(terms))
	}
	return yices2.NullTerm, errors.Wrapf(core.ErrCannotModel, "yices: unsupported term %s", t)
}

func (s *Solver) translateAll(es []constraint.Expression) ([]yices2.TermT, error) {
	terms := make([]yices2.TermT, len(es))
	for i := range es {
		term, err := s.translate(es[i])
		if err != nil {
			return nil, err
		}
		terms[i] = term
	}
	return terms, nil
}

func (s *Solver) variable(v *constraint.Variable) yices2.TermT {
	if known, ok := s.vars[v.Name()]; ok {
		return known.term
	}
	var typ yices2.TypeT
	switch {
	case v.Type() == constraint.Boolean:
		typ = yices2.BoolType()
	case v.Type().IsIntegral():
		typ = yices2.IntType()
	default:
		typ = yices2.RealType()
	}
	term := yices2.NewUninterpretedTerm(typ)
	if errcode := yices2.SetTermName(term, v.Name()); errcode < 0 {
		s.logger.Warnf("set term name %s: %s", v.Name(), yices2.ErrorString())
	}
	s.vars[v.Name()] = &variable{term: term, typ: v.Type()}
	return term
}

func constant(c *constraint.Constant) (yices2.TermT, error) {
	switch {
	case c.Type() == constraint.Boolean:
		if c.Bool() {
			return yices2.True(), nil
		}
		return yices2.False(), nil
	case c.Type().IsIntegral():
		return check(yices2.Int64(c.Int()))
	}
	f := c.Float()
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return yices2.NullTerm, errors.Wrapf(core.ErrCannotModel, "yices: no real for %s", c)
	}
	return check(yices2.ParseRational(new(big.Rat).SetFloat64(f).RatString()))
}

func (s *Solver) arithmetic(a *constraint.Arithmetic) (yices2.TermT, error) {
	left, err := s.translate(a.Left())
	if err != nil {
		return yices2.NullTerm, err
	}
	right, err := s.translate(a.Right())
	if err != nil {
		return yices2.NullTerm, err
	}
	switch a.Op() {
	case constraint.OpAdd:
		return check(yices2.Add(left, right))
	case constraint.OpSub:
		return check(yices2.Sub(left, right))
	case constraint.OpMul:
		return check(yices2.Mul(left, right))
	}
	return yices2.NullTerm, errors.Wrapf(core.ErrCannotModel, "yices: %s is not linear", a)
}

func (s *Solver) comparison(c *constraint.Comparison) (yices2.TermT, error) {
	left, err := s.translate(c.Left())
	if err != nil {
		return yices2.NullTerm, err
	}
	right, err := s.translate(c.Right())
	if err != nil {
		return yices2.NullTerm, err
	}
	if c.Left().Type() == constraint.Boolean {
		if c.Op() == constraint.OpEQ {
			return check(yices2.Eq(left, right))
		}
		return check(yices2.Neq(left, right))
	}
	switch c.Op() {
	case constraint.OpEQ:
		return check(yices2.ArithEqAtom(left, right))
	case constraint.OpNE:
		return check(yices2.ArithNeqAtom(left, right))
	case constraint.OpLT:
		return check(yices2.ArithLtAtom(left, right))
	case constraint.OpLE:
		return check(yices2.ArithLeqAtom(left, right))
	case constraint.OpGT:
		return check(yices2.ArithGtAtom(left, right))
	}
	return check(yices2.ArithGeqAtom(left, right))
}

func check(term yices2.TermT) (yices2.TermT, error) {
	if term == yices2.NullTerm {
		return term, fmt.Errorf("%s", yices2.ErrorString())
	}
	return term, nil
}
