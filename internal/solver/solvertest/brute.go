// Package solvertest provides solver backends for tests.
package solvertest

import (
	"context"

	"github.com/pkg/errors"

	"gsymbex/internal/constraint"
	"gsymbex/internal/solver"
)

// Brute decides formulas by enumerating small variable domains. A
// formula whose only models lie outside the domains is reported Unsat, so
// tests must keep their constants small.
type Brute struct {
	Ints   []int64
	Floats []float64
	// MaxSteps bounds the enumeration; exhausting it yields Unknown.
	MaxSteps int

	scopes [][]constraint.Expression
	model  map[string]*constraint.Constant
	checks int
	depth  int
}

func NewBrute() *Brute {
	ints := make([]int64, 0, 17)
	for i := int64(-8); i <= 8; i++ {
		ints = append(ints, i)
	}
	return &Brute{
		Ints:     ints,
		Floats:   []float64{-2.5, -1, -0.5, 0, 0.5, 1, 2.5},
		MaxSteps: 1 << 20,
		scopes:   [][]constraint.Expression{nil},
	}
}

// Checks counts Check calls.
func (b *Brute) Checks() int {
	return b.checks
}

// Depth is the number of open scopes.
func (b *Brute) Depth() int {
	return b.depth
}

func (b *Brute) Push() error {
	b.scopes = append(b.scopes, nil)
	b.depth++
	return nil
}

func (b *Brute) Pop() error {
	if b.depth == 0 {
		return errors.New("pop without push")
	}
	b.scopes = b.scopes[:len(b.scopes)-1]
	b.depth--
	return nil
}

func (b *Brute) Assert(e constraint.Expression) error {
	if e == nil {
		return errors.New("assert nil expression")
	}
	last := len(b.scopes) - 1
	b.scopes[last] = append(b.scopes[last], e)
	return nil
}

func (b *Brute) Check(ctx context.Context) (solver.Status, error) {
	b.checks++
	b.model = nil
	if err := ctx.Err(); err != nil {
		return solver.Unknown, err
	}
	var all []constraint.Expression
	for _, scope := range b.scopes {
		all = append(all, scope...)
	}
	formula := constraint.And(all...)
	s := &search{brute: b, budget: b.MaxSteps, assignment: make(map[string]*constraint.Constant)}
	found := s.run(formula, constraint.Variables(formula))
	switch {
	case found:
		b.model = s.assignment
		return solver.Sat, nil
	case s.budget < 0:
		return solver.Unknown, nil
	}
	return solver.Unsat, nil
}

type search struct {
	brute      *Brute
	budget     int
	assignment map[string]*constraint.Constant
}

// run assigns vars in order, pruning as soon as the formula folds to false.
func (s *search) run(formula constraint.Term, vars []*constraint.Variable) bool {
	if s.budget--; s.budget < 0 {
		return false
	}
	if c, ok := formula.(*constraint.Constant); ok {
		if !c.Bool() {
			return false
		}
		for _, v := range vars {
			s.assignment[v.Name()] = s.brute.domain(v)[0]
		}
		return true
	}
	if len(vars) == 0 {
		return false
	}
	v := vars[0]
	for _, value := range s.brute.domain(v) {
		reduced := constraint.Substitute(formula, map[string]constraint.Term{v.Name(): value})
		if c, ok := reduced.(*constraint.Constant); ok && !c.Bool() {
			continue
		}
		s.assignment[v.Name()] = value
		if s.run(reduced, vars[1:]) {
			return true
		}
		if s.budget < 0 {
			break
		}
	}
	delete(s.assignment, v.Name())
	return false
}

func (b *Brute) domain(v *constraint.Variable) []*constraint.Constant {
	switch t := v.Type(); {
	case t == constraint.Boolean:
		return []*constraint.Constant{constraint.False, constraint.True}
	case t.IsFloating():
		result := make([]*constraint.Constant, len(b.Floats))
		for i, f := range b.Floats {
			result[i] = constraint.FloatingConstant(t, f)
		}
		return result
	default:
		result := make([]*constraint.Constant, len(b.Ints))
		for i, n := range b.Ints {
			result[i] = constraint.IntegralConstant(t, n)
		}
		return result
	}
}

func (b *Brute) Model() (map[string]*constraint.Constant, error) {
	if b.model == nil {
		return nil, errors.New("no model available")
	}
	result := make(map[string]*constraint.Constant, len(b.model))
	for k, v := range b.model {
		result[k] = v
	}
	return result, nil
}

func (b *Brute) Close() error {
	return nil
}
