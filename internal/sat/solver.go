// Package sat is a propositional backend over the gini SAT solver. It
// decides formulas built from boolean variables and connectives only.
package sat

import (
	"context"
	"time"

	"github.com/go-air/gini"
	"github.com/go-air/gini/logic"
	"github.com/go-air/gini/z"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"gsymbex/internal/constraint"
	"gsymbex/internal/core"
	"gsymbex/internal/solver"
)

// Solver keeps every asserted formula as a circuit root of its scope.
// Each check translates the circuit to CNF in a fresh gini instance and
// assumes the roots of all open scopes.
type Solver struct {
	circuit *logic.C
	vars    map[string]z.Lit
	scopes  [][]z.Lit
	model   map[string]*constraint.Constant
	timeout time.Duration
	logger  *log.Entry
}

type Option func(*Solver)

// WithTimeout bounds every check; an expired check is Unknown.
func WithTimeout(d time.Duration) Option {
	return func(s *Solver) {
		s.timeout = d
	}
}

func WithLogger(logger *log.Entry) Option {
	return func(s *Solver) {
		s.logger = logger
	}
}

func NewSolver(opts ...Option) *Solver {
	s := &Solver{
		circuit: logic.NewC(),
		vars:    make(map[string]z.Lit),
		scopes:  [][]z.Lit{nil},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.NewEntry(log.StandardLogger())
	}
	return s
}

func (s *Solver) Push() error {
	s.scopes = append(s.scopes, nil)
	return nil
}

func (s *Solver) Pop() error {
	if len(s.scopes) == 1 {
		return errors.New("pop without push")
	}
	s.scopes = s.scopes[:len(s.scopes)-1]
	return nil
}

func (s *Solver) Assert(e constraint.Expression) error {
	m, err := s.lower(e)
	if err != nil {
		return err
	}
	last := len(s.scopes) - 1
	s.scopes[last] = append(s.scopes[last], m)
	return nil
}

func (s *Solver) Check(ctx context.Context) (solver.Status, error) {
	s.model = nil
	if err := ctx.Err(); err != nil {
		return solver.Unknown, err
	}
	g := gini.NewV(s.circuit.Len())
	s.circuit.ToCnf(g)
	// inputs that occur in no gate still need a solver variable
	for _, m := range s.vars {
		g.Add(m)
		g.Add(m.Not())
		g.Add(z.LitNull)
	}
	for _, scope := range s.scopes {
		g.Assume(scope...)
	}

	var result int
	if d, bounded := s.budget(ctx); bounded {
		result = g.Try(d)
	} else {
		result = g.Solve()
	}
	switch result {
	case 1:
		s.model = make(map[string]*constraint.Constant, len(s.vars))
		for name, m := range s.vars {
			s.model[name] = constraint.BoolConstant(g.Value(m))
		}
		return solver.Sat, nil
	case -1:
		return solver.Unsat, nil
	}
	s.logger.Debugf("gini gave up after %s", s.timeout)
	return solver.Unknown, ctx.Err()
}

// budget is the smaller of the configured timeout and the context deadline.
func (s *Solver) budget(ctx context.Context) (time.Duration, bool) {
	d, bounded := s.timeout, s.timeout > 0
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); !bounded || left < d {
			d, bounded = left, true
		}
	}
	if bounded && d <= 0 {
		d = time.Nanosecond
	}
	return d, bounded
}

func (s *Solver) Model() (map[string]*constraint.Constant, error) {
	if s.model == nil {
		return nil, errors.New("no model: last check was not sat")
	}
	result := make(map[string]*constraint.Constant, len(s.model))
	for k, v := range s.model {
		result[k] = v
	}
	return result, nil
}

func (s *Solver) Close() error {
	s.scopes = [][]z.Lit{nil}
	return nil
}

func (s *Solver) lower(e constraint.Term) (z.Lit, error) {
	switch v := e.(type) {
	case *constraint.Constant:
		if v.Type() != constraint.Boolean {
			break
		}
		if v.Bool() {
			return s.circuit.T, nil
		}
		return s.circuit.F, nil
	case *constraint.Variable:
		if v.Type() != constraint.Boolean {
			break
		}
		m, ok := s.vars[v.Name()]
		if !ok {
			m = s.circuit.Lit()
			s.vars[v.Name()] = m
		}
		return m, nil
	case *constraint.Not:
		m, err := s.lower(v.Inner())
		if err != nil {
			return z.LitNull, err
		}
		return m.Not(), nil
	case *constraint.Conjunction:
		ms, err := s.lowerAll(v.Operands())
		if err != nil {
			return z.LitNull, err
		}
		return s.circuit.Ands(ms...), nil
	case *constraint.Disjunction:
		ms, err := s.lowerAll(v.Operands())
		if err != nil {
			return z.LitNull, err
		}
		return s.circuit.Ors(ms...), nil
	case *constraint.Comparison:
		if v.Left().Type() != constraint.Boolean {
			break
		}
		a, err := s.lower(v.Left())
		if err != nil {
			return z.LitNull, err
		}
		b, err := s.lower(v.Right())
		if err != nil {
			return z.LitNull, err
		}
		if v.Op() == constraint.OpEQ {
			return s.circuit.Xor(a, b).Not(), nil
		}
		return s.circuit.Xor(a, b), nil
	}
	return z.LitNull, errors.Wrapf(core.ErrCannotModel, "propositional backend: %s", e)
}

func (s *Solver) lowerAll(es []constraint.Expression) ([]z.Lit, error) {
	ms := make([]z.Lit, len(es))
	for i := range es {
		m, err := s.lower(es[i])
		if err != nil {
			return nil, err
		}
		ms[i] = m
	}
	return ms, nil
}
