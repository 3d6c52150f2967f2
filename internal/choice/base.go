package choice

import (
	"github.com/pkg/errors"

	"gsymbex/internal/constraint"
	"gsymbex/internal/interp"
	"gsymbex/internal/solver"
	"gsymbex/internal/trail"
)

// base carries the protocol state shared by all variants.
type base struct {
	id       int
	kind     Kind
	parent   ChoicePoint
	location Location
	total    int
	step     int
	phase    Phase
	trail    *trail.Trail
	outcomes []solver.Status
}

func newBase(id int, kind Kind, parent ChoicePoint, frame interp.Frame) base {
	return base{
		id:       id,
		kind:     kind,
		parent:   parent,
		location: Location{Frame: frame, PC: frame.PC()},
		trail:    trail.New(),
	}
}

func (b *base) ID() int {
	return b.id
}

func (b *base) Parent() ChoicePoint {
	return b.parent
}

func (b *base) Location() Location {
	return b.location
}

func (b *base) Kind() Kind {
	return b.kind
}

func (b *base) Total() int {
	return b.total
}

func (b *base) Step() int {
	return b.step
}

func (b *base) Phase() Phase {
	return b.phase
}

func (b *base) Trail() *trail.Trail {
	return b.trail
}

func (b *base) HasAnotherChoice() bool {
	return b.step < b.total
}

func (b *base) protocolError(op string) error {
	return &ProtocolError{ID: b.id, Location: b.location, Op: op, Phase: b.phase, Step: b.step, Total: b.total}
}

// advance moves to the next alternative.
func (b *base) advance() error {
	if b.phase != Idle || b.step >= b.total {
		return b.protocolError("change to next choice")
	}
	b.step++
	b.phase = Prepared
	return nil
}

func (b *base) checkApply() error {
	if b.phase != Prepared {
		return b.protocolError("apply state changes")
	}
	return nil
}

// Backtrack undoes everything the current alternative wrote.
func (b *base) Backtrack() error {
	if b.phase == Idle {
		return nil
	}
	b.phase = Idle
	if err := b.trail.Undo(b.location.Frame); err != nil {
		return errors.Wrapf(err, "backtrack choice point %d at %s", b.id, b.location)
	}
	return nil
}

func (b *base) RecordOutcome(status solver.Status) {
	if b.phase == Idle {
		return
	}
	b.outcomes = append(b.outcomes, status)
}

func (b *base) Verify() error {
	return nil
}

// refutedAll reports whether every alternative was tried and proven infeasible.
func (b *base) refutedAll() bool {
	if b.HasAnotherChoice() || len(b.outcomes) < b.total {
		return false
	}
	for _, status := range b.outcomes {
		if status != solver.Unsat {
			return false
		}
	}
	return true
}

// alternative is one precomputed option of a fixed choice point.
type alternative struct {
	name  string
	expr  constraint.Expression
	apply func(t *trail.Trail, frame interp.Frame) error
}

// fixed is a choice point whose alternatives are all known up front.
type fixed struct {
	base
	alts []alternative
}

func newFixed(b base, alts []alternative) fixed {
	b.total = len(alts)
	return fixed{base: b, alts: alts}
}

func (f *fixed) current() *alternative {
	if f.phase == Idle || f.step == 0 {
		return nil
	}
	return &f.alts[f.step-1]
}

func (f *fixed) ChangeToNextChoice() error {
	return f.advance()
}

func (f *fixed) ApplyStateChanges() error {
	if err := f.checkApply(); err != nil {
		return err
	}
	alt := f.current()
	if err := alt.apply(f.trail, f.location.Frame); err != nil {
		return errors.Wrapf(err, "apply %s of choice point %d at %s", alt.name, f.id, f.location)
	}
	f.phase = Applied
	return nil
}

func (f *fixed) ConstraintExpression() constraint.Expression {
	if alt := f.current(); alt != nil {
		return alt.expr
	}
	return nil
}

func (f *fixed) Alternative() string {
	if alt := f.current(); alt != nil {
		return alt.name
	}
	return ""
}

// condition drops a constraint that folded to true.
func condition(e constraint.Expression) constraint.Expression {
	if c, ok := e.(*constraint.Constant); ok && c.Bool() {
		return nil
	}
	return e
}

// refuted reports whether e folded to false.
func refuted(e constraint.Expression) bool {
	c, ok := e.(*constraint.Constant)
	return ok && !c.Bool()
}

// jumpTo resumes at pc.
func jumpTo(pc int) func(*trail.Trail, interp.Frame) error {
	return func(t *trail.Trail, frame interp.Frame) error {
		t.SetPC(frame, pc)
		return nil
	}
}

// pushAndJump pushes v and resumes at pc.
func pushAndJump(v interp.Value, pc int) func(*trail.Trail, interp.Frame) error {
	return func(t *trail.Trail, frame interp.Frame) error {
		if err := t.Push(frame, v); err != nil {
			return err
		}
		t.SetPC(frame, pc)
		return nil
	}
}
