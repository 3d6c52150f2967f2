// Package solver keeps the constraint layers of the active search path in
// step with an incremental decision procedure.
package solver

import (
	"sort"
	"strings"

	"gsymbex/internal/constraint"
)

// Status is a satisfiability verdict.
type Status int

const (
	Unknown Status = iota
	Sat
	Unsat
)

func (s Status) String() string {
	switch s {
	case Sat:
		return "sat"
	case Unsat:
		return "unsat"
	}
	return "unknown"
}

// Solution binds variables to constants. NoSolution is the distinguished
// result of an unsatisfiable query.
type Solution struct {
	values map[string]*constraint.Constant
	none   bool
}

var NoSolution = &Solution{none: true}

func NewSolution(values map[string]*constraint.Constant) *Solution {
	s := &Solution{values: make(map[string]*constraint.Constant, len(values))}
	for k, v := range values {
		s.values[k] = v
	}
	return s
}

func (s *Solution) IsNoSolution() bool {
	return s == nil || s.none
}

func (s *Solution) Value(name string) (*constraint.Constant, bool) {
	if s.IsNoSolution() {
		return nil, false
	}
	v, ok := s.values[name]
	return v, ok
}

func (s *Solution) Len() int {
	if s.IsNoSolution() {
		return 0
	}
	return len(s.values)
}

// Names returns the bound variable names in order.
func (s *Solution) Names() []string {
	if s.IsNoSolution() {
		return nil
	}
	names := make([]string, 0, len(s.values))
	for k := range s.values {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Assignment returns a copy of the bindings.
func (s *Solution) Assignment() map[string]*constraint.Constant {
	result := make(map[string]*constraint.Constant, s.Len())
	for _, k := range s.Names() {
		result[k] = s.values[k]
	}
	return result
}

func (s *Solution) String() string {
	if s.IsNoSolution() {
		return "no solution"
	}
	var builder strings.Builder
	builder.WriteString("{")
	for i, k := range s.Names() {
		if i > 0 {
			builder.WriteString(", ")
		}
		builder.WriteString(k)
		builder.WriteString("=")
		builder.WriteString(s.values[k].String())
	}
	builder.WriteString("}")
	return builder.String()
}

// restrict keeps the bindings of vars. Variables the model left
// unconstrained default to zero.
func restrict(model map[string]*constraint.Constant, vars []*constraint.Variable) *Solution {
	s := &Solution{values: make(map[string]*constraint.Constant, len(vars))}
	for _, v := range vars {
		if c, ok := model[v.Name()]; ok {
			s.values[v.Name()] = c
			continue
		}
		s.values[v.Name()] = zero(v.Type())
	}
	return s
}

func zero(t constraint.Type) *constraint.Constant {
	switch {
	case t == constraint.Boolean:
		return constraint.False
	case t.IsFloating():
		return constraint.FloatingConstant(t, 0)
	}
	return constraint.IntegralConstant(t, 0)
}
