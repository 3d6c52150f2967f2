package solver

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"gsymbex/internal/constraint"
	"gsymbex/internal/core"
)

// Manager is the solver session of one search. Its level always equals the
// depth of its ConstraintStack and the number of open backend scopes.
type Manager struct {
	id          uuid.UUID
	backend     Backend
	stack       *ConstraintStack
	level       int
	linear      *constraint.Linearizer
	systemLimit int
	queries     int
	logger      *log.Entry
}

type Option func(*Manager)

func WithLogger(logger *log.Entry) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithSystemLimit bounds the DNF expansion of a layer.
func WithSystemLimit(limit int) Option {
	return func(m *Manager) {
		m.systemLimit = limit
	}
}

func NewManager(backend Backend, opts ...Option) *Manager {
	m := &Manager{
		id:          uuid.New(),
		backend:     backend,
		stack:       NewConstraintStack(),
		linear:      constraint.NewLinearizer(),
		systemLimit: constraint.DefaultSystemLimit,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = log.NewEntry(log.StandardLogger())
	}
	m.logger = m.logger.WithField("session", m.id.String())
	return m
}

func (m *Manager) ID() string {
	return m.id.String()
}

func (m *Manager) Level() int {
	return m.level
}

// Queries counts the satisfiability checks sent to the backend.
func (m *Manager) Queries() int {
	return m.queries
}

func (m *Manager) Stack() *ConstraintStack {
	return m.stack
}

// AddConstraint opens a layer for expr, which may be nil for an
// unconstrained alternative. The level always grows by one once the backend
// scope is open. A constraint the backend cannot represent is remembered on
// its layer and makes later checks Unknown.
func (m *Manager) AddConstraint(expr constraint.Expression) error {
	if err := m.backend.Push(); err != nil {
		return errors.Wrapf(err, "push scope at level %d", m.level)
	}
	l := newLayer(expr)
	m.stack.push(l)
	m.level++
	if expr == nil {
		return nil
	}
	formula, err := m.linear.Linearize(expr)
	if err == nil {
		err = m.backend.Assert(formula)
	}
	if err != nil {
		if !errors.Is(err, core.ErrCannotModel) {
			return errors.Wrapf(err, "assert %s", expr)
		}
		m.logger.WithField("level", m.level).Warnf("constraint not modeled: %v", err)
		l.modelErr = err
		return nil
	}
	l.formula = formula
	m.logger.WithField("level", m.level).Debugf("add constraint %s", expr)
	return nil
}

// RemoveConstraint closes the top layer.
func (m *Manager) RemoveConstraint() error {
	if m.level == 0 {
		return &ProtocolError{Op: "remove constraint", Level: m.level}
	}
	if err := m.backend.Pop(); err != nil {
		return errors.Wrapf(err, "pop scope at level %d", m.level)
	}
	m.stack.pop()
	m.level--
	return nil
}

// Satisfiability decides the conjunction of all layers. It does not change the level.
func (m *Manager) Satisfiability(ctx context.Context) (Status, error) {
	if m.level == 0 {
		return Sat, nil
	}
	if m.stack.refuted() {
		return Unsat, nil
	}
	top := m.stack.top()
	if top.checked {
		return top.status, nil
	}
	if top.expr == nil && top.modelErr == nil {
		below := m.stack.below()
		if below == nil {
			top.checked, top.status = true, Sat
			return Sat, nil
		}
		if below.checked {
			top.checked, top.status = true, below.status
			return below.status, nil
		}
	}
	m.queries++
	status, err := m.backend.Check(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return Unknown, ctx.Err()
		}
		return Unknown, &IndecisionError{Level: m.level, Reason: "check failed", Cause: err}
	}
	if status == Sat && m.stack.modelErr() != nil {
		// only a subset of the layers reached the backend
		status = Unknown
	}
	top.checked, top.status = true, status
	m.logger.WithField("level", m.level).Debugf("check: %s", status)
	return status, nil
}

// HasSolution reports whether the active path is satisfiable. It is true
// at level zero. An undecided query yields an *IndecisionError.
func (m *Manager) HasSolution(ctx context.Context) (bool, error) {
	status, err := m.Satisfiability(ctx)
	if err != nil {
		return false, err
	}
	switch status {
	case Sat:
		return true, nil
	case Unsat:
		return false, nil
	}
	if merr := m.stack.modelErr(); merr != nil {
		return false, &IndecisionError{Level: m.level, Reason: "constraint not modeled", Cause: merr}
	}
	return false, &IndecisionError{Level: m.level, Reason: "backend returned unknown"}
}

// GetSolution returns values for every variable of the active layers, or
// NoSolution. Verdicts are cached per layer and DNF system, so asking
// twice at the same depth does not query the backend again.
func (m *Manager) GetSolution(ctx context.Context) (*Solution, error) {
	if m.level == 0 {
		return NewSolution(nil), nil
	}
	if m.stack.refuted() {
		return NoSolution, nil
	}
	top := m.stack.top()
	if top.solved != nil {
		return top.solved, nil
	}
	if merr := m.stack.modelErr(); merr != nil {
		return nil, &IndecisionError{Level: m.level, Reason: "constraint not modeled", Cause: merr}
	}
	systems, err := m.systems(top)
	if err != nil {
		return nil, &IndecisionError{Level: m.level, Reason: "dnf expansion", Cause: err}
	}
	for i, system := range systems {
		if cached, ok := top.solutions[i]; ok && cached.IsNoSolution() {
			continue
		}
		solution, err := m.solve(ctx, system)
		if err != nil {
			return nil, err
		}
		top.solutions[i] = solution
		if !solution.IsNoSolution() {
			top.solved = solution
			top.checked, top.status = true, Sat
			return solution, nil
		}
	}
	top.checked, top.status = true, Unsat
	return NoSolution, nil
}

func (m *Manager) systems(top *layer) ([]constraint.System, error) {
	if top.expanded {
		return top.systems, nil
	}
	if top.expr == nil {
		top.systems = []constraint.System{{}}
	} else {
		systems, err := constraint.DNF(top.expr, m.systemLimit)
		if err != nil {
			return nil, err
		}
		top.systems = systems
	}
	top.expanded = true
	return top.systems, nil
}

// solve checks one conjunctive system of the top layer in a temporary scope.
func (m *Manager) solve(ctx context.Context, system constraint.System) (solution *Solution, err error) {
	formula, err := m.linear.Linearize(system.Expression())
	if err != nil {
		return nil, &IndecisionError{Level: m.level, Reason: "system not modeled", Cause: err}
	}
	if err := m.backend.Push(); err != nil {
		return nil, errors.Wrap(err, "push system scope")
	}
	defer func() {
		if perr := m.backend.Pop(); perr != nil && err == nil {
			solution, err = nil, errors.Wrap(perr, "pop system scope")
		}
	}()
	if err := m.backend.Assert(formula); err != nil {
		if errors.Is(err, core.ErrCannotModel) {
			return nil, &IndecisionError{Level: m.level, Reason: "system not modeled", Cause: err}
		}
		return nil, errors.Wrap(err, "assert system")
	}
	m.queries++
	status, err := m.backend.Check(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &IndecisionError{Level: m.level, Reason: "check failed", Cause: err}
	}
	switch status {
	case Sat:
		model, err := m.backend.Model()
		if err != nil {
			return nil, errors.Wrap(err, "read model")
		}
		return restrict(model, m.stack.variables()), nil
	case Unsat:
		return NoSolution, nil
	}
	return nil, &IndecisionError{Level: m.level, Reason: "backend returned unknown"}
}

// Reset closes every open layer.
func (m *Manager) Reset() error {
	for m.level > 0 {
		if err := m.RemoveConstraint(); err != nil {
			return err
		}
	}
	return nil
}

func (m *Manager) Close() error {
	return m.backend.Close()
}
