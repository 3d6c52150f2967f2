package constraint

import (
	"github.com/pkg/errors"
)

// DefaultSystemLimit bounds the number of conjunctive systems of one expansion.
const DefaultSystemLimit = 4096

// ErrTooManySystems is returned when a DNF expansion exceeds its limit.
var ErrTooManySystems = errors.New("too many conjunctive systems")

// System is a conjunction of literals.
type System []Expression

// Expression conjoins the literals of the system.
func (s System) Expression() Expression {
	return And(s...)
}

// DNF expands e into disjunctive normal form. A false expression has no
// systems, a true one has a single empty system.
func DNF(e Expression, limit int) ([]System, error) {
	if limit <= 0 {
		limit = DefaultSystemLimit
	}
	return expand(nnf(e, false), limit)
}

// nnf pushes negations down to literals.
func nnf(e Expression, negated bool) Expression {
	switch v := e.(type) {
	case *Not:
		return nnf(v.inner, !negated)
	case *Conjunction:
		parts := make([]Expression, len(v.operands))
		for i, o := range v.operands {
			parts[i] = nnf(o, negated)
		}
		if negated {
			return Or(parts...)
		}
		return And(parts...)
	case *Disjunction:
		parts := make([]Expression, len(v.operands))
		for i, o := range v.operands {
			parts[i] = nnf(o, negated)
		}
		if negated {
			return And(parts...)
		}
		return Or(parts...)
	}
	if negated {
		return Negate(e)
	}
	return e
}

func expand(e Expression, limit int) ([]System, error) {
	switch v := e.(type) {
	case *Constant:
		if v.b {
			return []System{{}}, nil
		}
		return nil, nil
	case *Disjunction:
		var result []System
		for _, o := range v.operands {
			systems, err := expand(o, limit)
			if err != nil {
				return nil, err
			}
			result = append(result, systems...)
			if len(result) > limit {
				return nil, ErrTooManySystems
			}
		}
		return result, nil
	case *Conjunction:
		result := []System{{}}
		for _, o := range v.operands {
			systems, err := expand(o, limit)
			if err != nil {
				return nil, err
			}
			if len(result)*len(systems) > limit {
				return nil, ErrTooManySystems
			}
			product := make([]System, 0, len(result)*len(systems))
			for _, prefix := range result {
				for _, s := range systems {
					merged := make(System, 0, len(prefix)+len(s))
					merged = append(merged, prefix...)
					merged = append(merged, s...)
					product = append(product, merged)
				}
			}
			result = product
		}
		return result, nil
	}
	return []System{{e}}, nil
}
