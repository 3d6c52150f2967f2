// Package trail records reversible interpreter-state mutations.
package trail

import (
	"github.com/pkg/errors"

	"gsymbex/internal/interp"
)

// Trail is the undo log of one choice point alternative.
// Elements are undone in reverse recording order.
type Trail struct {
	elements []Element
}

func New() *Trail {
	return &Trail{elements: make([]Element, 0, 4)}
}

func (t *Trail) Record(e Element) {
	t.elements = append(t.elements, e)
}

func (t *Trail) Len() int {
	return len(t.elements)
}

func (t *Trail) Empty() bool {
	return len(t.elements) == 0
}

// Elements returns the recorded elements, oldest first.
func (t *Trail) Elements() []Element {
	result := make([]Element, len(t.elements))
	copy(result, t.elements)
	return result
}

// Undo restores frame state by replaying all elements in reverse. The trail
// is empty afterwards. A failing element aborts the replay: the state is then
// inconsistent and the error must not be recovered from.
func (t *Trail) Undo(frame interp.Frame) error {
	defer func() {
		t.elements = t.elements[:0]
	}()
	for i := len(t.elements) - 1; i >= 0; i-- {
		if err := t.elements[i].Undo(frame); err != nil {
			return errors.Wrapf(err, "undo %s (%d of %d)", t.elements[i], len(t.elements)-i, len(t.elements))
		}
	}
	return nil
}

// SetPC writes pc and records the previous value.
func (t *Trail) SetPC(frame interp.Frame, pc int) {
	t.Record(&RestorePC{PC: frame.PC()})
	frame.SetPC(pc)
}

// SetLocal writes a local slot and records the previous value.
func (t *Trail) SetLocal(frame interp.Frame, index int, v interp.Value) error {
	old, err := frame.Local(index)
	if err != nil {
		return err
	}
	if err := frame.SetLocal(index, v); err != nil {
		return err
	}
	t.Record(&RestoreLocal{Index: index, Value: old})
	return nil
}

// Push pushes an operand and records its removal.
func (t *Trail) Push(frame interp.Frame, v interp.Value) error {
	if err := frame.Push(v); err != nil {
		return err
	}
	t.Record(&PopOperand{})
	return nil
}

// Pop pops an operand and records its reinstatement.
func (t *Trail) Pop(frame interp.Frame) (interp.Value, error) {
	v, err := frame.Pop()
	if err != nil {
		return nil, err
	}
	t.Record(&PushOperand{Value: v})
	return v, nil
}

// SaveOperands records the whole operand stack before a mutation the
// recorder cannot observe, such as exception propagation.
func (t *Trail) SaveOperands(frame interp.Frame) {
	t.Record(&RestoreOperands{Values: frame.Operands()})
}

// Store writes an array element and records the previous value.
func (t *Trail) Store(a *interp.Array, index int, v interp.Value) error {
	old, err := a.Load(index)
	if err != nil {
		return err
	}
	if err := a.Store(index, v); err != nil {
		return err
	}
	t.Record(&RestoreArrayElement{Array: a, Index: index, Value: old})
	return nil
}

// SaveArray records the whole content of a before it is resized or refilled.
func (t *Trail) SaveArray(a *interp.Array) {
	t.Record(&RestoreArray{Array: a, Values: a.Values()})
}

// SetField writes an object field and records the previous value.
func (t *Trail) SetField(o *interp.Object, name string, v interp.Value) {
	old, present := o.Field(name)
	o.SetField(name, v)
	t.Record(&RestoreField{Object: o, Field: name, Value: old, Present: present})
}
