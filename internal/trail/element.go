package trail

import (
	"fmt"

	"github.com/pkg/errors"

	"gsymbex/internal/interp"
)

// Element reverses one elementary mutation.
type Element interface {
	Undo(frame interp.Frame) error
	String() string
}

type RestorePC struct {
	PC int
}

func (e *RestorePC) Undo(frame interp.Frame) error {
	frame.SetPC(e.PC)
	return nil
}

func (e *RestorePC) String() string {
	return fmt.Sprintf("restore pc %d", e.PC)
}

type RestoreLocal struct {
	Index int
	Value interp.Value
}

func (e *RestoreLocal) Undo(frame interp.Frame) error {
	return frame.SetLocal(e.Index, e.Value)
}

func (e *RestoreLocal) String() string {
	return fmt.Sprintf("restore local %d", e.Index)
}

// PopOperand reverses a push.
type PopOperand struct{}

func (e *PopOperand) Undo(frame interp.Frame) error {
	_, err := frame.Pop()
	return err
}

func (e *PopOperand) String() string {
	return "pop operand"
}

// PushOperand reverses a pop.
type PushOperand struct {
	Value interp.Value
}

func (e *PushOperand) Undo(frame interp.Frame) error {
	return frame.Push(e.Value)
}

func (e *PushOperand) String() string {
	return "push operand"
}

type RestoreOperands struct {
	Values []interp.Value
}

func (e *RestoreOperands) Undo(frame interp.Frame) error {
	return frame.SetOperands(e.Values)
}

func (e *RestoreOperands) String() string {
	return fmt.Sprintf("restore %d operands", len(e.Values))
}

type RestoreArrayElement struct {
	Array *interp.Array
	Index int
	Value interp.Value
}

func (e *RestoreArrayElement) Undo(interp.Frame) error {
	return e.Array.Store(e.Index, e.Value)
}

func (e *RestoreArrayElement) String() string {
	return fmt.Sprintf("restore %s[%d]", e.Array, e.Index)
}

type RestoreArray struct {
	Array  *interp.Array
	Values []interp.Value
}

func (e *RestoreArray) Undo(interp.Frame) error {
	if e.Array == nil {
		return errors.New("restore of nil array")
	}
	e.Array.Replace(e.Values)
	return nil
}

func (e *RestoreArray) String() string {
	return fmt.Sprintf("restore %s", e.Array)
}

type RestoreField struct {
	Object  *interp.Object
	Field   string
	Value   interp.Value
	Present bool
}

func (e *RestoreField) Undo(interp.Frame) error {
	if e.Present {
		e.Object.SetField(e.Field, e.Value)
	} else {
		e.Object.ClearField(e.Field)
	}
	return nil
}

func (e *RestoreField) String() string {
	return fmt.Sprintf("restore field %s.%s", e.Object.Class(), e.Field)
}
