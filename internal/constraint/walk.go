package constraint

import (
	"sort"

	"github.com/pkg/errors"
)

// Walk visits t and its subterms in pre-order until fn returns false.
func Walk(t Term, fn func(Term) bool) {
	if t == nil || !fn(t) {
		return
	}
	switch v := t.(type) {
	case *Arithmetic:
		Walk(v.left, fn)
		Walk(v.right, fn)
	case *Negation:
		Walk(v.inner, fn)
	case *Cast:
		Walk(v.inner, fn)
	case *Comparison:
		Walk(v.left, fn)
		Walk(v.right, fn)
	case *Conjunction:
		for _, o := range v.operands {
			Walk(o, fn)
		}
	case *Disjunction:
		for _, o := range v.operands {
			Walk(o, fn)
		}
	case *Not:
		Walk(v.inner, fn)
	}
}

// Variables returns the distinct variables of the given terms ordered by name.
func Variables(ts ...Term) []*Variable {
	seen := make(map[string]*Variable)
	for _, t := range ts {
		Walk(t, func(n Term) bool {
			if v, ok := n.(*Variable); ok {
				seen[v.name] = v
			}
			return true
		})
	}
	result := make([]*Variable, 0, len(seen))
	for _, v := range seen {
		result = append(result, v)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].name < result[j].name })
	return result
}

// Substitute replaces bound variables and rebuilds t, folding what becomes concrete.
func Substitute(t Term, bindings map[string]Term) Term {
	switch v := t.(type) {
	case *Variable:
		if b, ok := bindings[v.name]; ok {
			return b
		}
		return v
	case *Arithmetic:
		return NewArithmetic(v.op, Substitute(v.left, bindings), Substitute(v.right, bindings))
	case *Negation:
		return Neg(Substitute(v.inner, bindings))
	case *Cast:
		return CastTo(Substitute(v.inner, bindings), v.to)
	case *Comparison:
		return Compare(v.op, Substitute(v.left, bindings), Substitute(v.right, bindings))
	case *Conjunction:
		return And(substituteAll(v.operands, bindings)...)
	case *Disjunction:
		return Or(substituteAll(v.operands, bindings)...)
	case *Not:
		return Negate(Substitute(v.inner, bindings).(Expression))
	}
	return t
}

func substituteAll(es []Expression, bindings map[string]Term) []Expression {
	result := make([]Expression, len(es))
	for i := range es {
		result[i] = Substitute(es[i], bindings).(Expression)
	}
	return result
}

// Evaluate computes the value of t under a full assignment.
func Evaluate(t Term, assignment map[string]*Constant) (*Constant, error) {
	bindings := make(map[string]Term, len(assignment))
	for k, v := range assignment {
		bindings[k] = v
	}
	c, ok := Substitute(t, bindings).(*Constant)
	if !ok {
		return nil, errors.Errorf("term %s does not evaluate to a constant", t)
	}
	return c, nil
}
