package vm

import (
	"github.com/pkg/errors"

	"gsymbex/internal/constraint"
	"gsymbex/internal/interp"
	"gsymbex/internal/trail"
)

// recorder writes to the frame, recording each write on the trail of the
// innermost choice point. At the root there is no trail and writes are final.
type recorder struct {
	frame interp.Frame
	trail *trail.Trail
}

func (r recorder) push(v interp.Value) error {
	if r.trail != nil {
		return r.trail.Push(r.frame, v)
	}
	return r.frame.Push(v)
}

func (r recorder) pop() (interp.Value, error) {
	if r.trail != nil {
		return r.trail.Pop(r.frame)
	}
	return r.frame.Pop()
}

func (r recorder) setLocal(index int, v interp.Value) error {
	if r.trail != nil {
		return r.trail.SetLocal(r.frame, index, v)
	}
	return r.frame.SetLocal(index, v)
}

func (r recorder) setPC(pc int) {
	if r.trail != nil {
		r.trail.SetPC(r.frame, pc)
		return
	}
	r.frame.SetPC(pc)
}

func (r recorder) store(a *interp.Array, index int, v interp.Value) error {
	if r.trail != nil {
		return r.trail.Store(a, index, v)
	}
	return a.Store(index, v)
}

func (r recorder) saveOperands() {
	if r.trail != nil {
		r.trail.SaveOperands(r.frame)
	}
}

func (r recorder) popTerm() (constraint.Term, error) {
	v, err := r.pop()
	if err != nil {
		return nil, err
	}
	t, ok := v.(constraint.Term)
	if !ok || !t.Type().IsNumeric() {
		return nil, errors.Errorf("expected a number on the operand stack, got %T", v)
	}
	return t, nil
}

// popTerms pops the right operand, then the left one.
func (r recorder) popTerms() (constraint.Term, constraint.Term, error) {
	right, err := r.popTerm()
	if err != nil {
		return nil, nil, err
	}
	left, err := r.popTerm()
	if err != nil {
		return nil, nil, err
	}
	return left, right, nil
}

// popArray returns nil for a null reference.
func (r recorder) popArray() (*interp.Array, error) {
	v, err := r.pop()
	if err != nil {
		return nil, err
	}
	switch a := v.(type) {
	case nil:
		return nil, nil
	case *interp.Array:
		return a, nil
	}
	return nil, errors.Errorf("expected an array reference, got %T", v)
}
