// Package interp defines the interpreter state the search core mutates,
// with small in-memory implementations.
package interp

import (
	"fmt"

	"github.com/pkg/errors"
)

// Value is a slot or operand value: a constraint.Term for primitives,
// *Array or *Object for references, nil for the null reference.
type Value interface{}

// Frame is one method activation.
type Frame interface {
	Method() string
	PC() int
	SetPC(pc int)
	Local(index int) (Value, error)
	SetLocal(index int, v Value) error
	Push(v Value) error
	Pop() (Value, error)
	// Operands returns a bottom-to-top copy of the operand stack.
	Operands() []Value
	SetOperands(values []Value) error
}

// SimpleFrame is a Frame backed by a slice of locals and an OperandStack.
type SimpleFrame struct {
	method string
	pc     int
	locals []Value
	stack  *OperandStack
}

func NewSimpleFrame(method string, maxLocals int) *SimpleFrame {
	return &SimpleFrame{
		method: method,
		locals: make([]Value, maxLocals),
		stack:  NewOperandStack(),
	}
}

func (f *SimpleFrame) Method() string {
	return f.method
}

func (f *SimpleFrame) PC() int {
	return f.pc
}

func (f *SimpleFrame) SetPC(pc int) {
	f.pc = pc
}

func (f *SimpleFrame) Local(index int) (Value, error) {
	if index < 0 || index >= len(f.locals) {
		return nil, errors.Errorf("local %d out of range [0, %d)", index, len(f.locals))
	}
	return f.locals[index], nil
}

func (f *SimpleFrame) SetLocal(index int, v Value) error {
	if index < 0 || index >= len(f.locals) {
		return errors.Errorf("local %d out of range [0, %d)", index, len(f.locals))
	}
	f.locals[index] = v
	return nil
}

func (f *SimpleFrame) MaxLocals() int {
	return len(f.locals)
}

func (f *SimpleFrame) Push(v Value) error {
	return f.stack.Push(v)
}

func (f *SimpleFrame) Pop() (Value, error) {
	return f.stack.Pop()
}

func (f *SimpleFrame) Operands() []Value {
	return f.stack.Elements()
}

func (f *SimpleFrame) SetOperands(values []Value) error {
	return f.stack.Reset(values)
}

func (f *SimpleFrame) String() string {
	return fmt.Sprintf("%s@%d", f.method, f.pc)
}

// Snapshot is a comparable copy of a frame's observable state.
type Snapshot struct {
	PC       int
	Locals   []Value
	Operands []Value
}

func (f *SimpleFrame) Snapshot() Snapshot {
	locals := make([]Value, len(f.locals))
	copy(locals, f.locals)
	return Snapshot{PC: f.pc, Locals: locals, Operands: f.stack.Elements()}
}
