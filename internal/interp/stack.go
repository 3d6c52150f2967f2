package interp

import (
	"github.com/pkg/errors"
)

const STACK_SIZE = 1024

var (
	ErrStackOverflow  = errors.New("ErrorStackOverflow")
	ErrStackUnderflow = errors.New("ErrorStackUnderflow")
)

// OperandStack is a bounded operand stack.
type OperandStack struct {
	stack [STACK_SIZE]Value
	index int
}

func NewOperandStack() *OperandStack {
	return &OperandStack{}
}

func (ostack *OperandStack) Size() int {
	return ostack.index
}

func (ostack *OperandStack) Push(element Value) error {
	if ostack.index >= STACK_SIZE {
		return ErrStackOverflow
	}
	ostack.stack[ostack.index] = element
	ostack.index++
	return nil
}

func (ostack *OperandStack) Pop() (Value, error) {
	if ostack.index-1 < 0 {
		return nil, ErrStackUnderflow
	}
	ostack.index--
	element := ostack.stack[ostack.index]
	ostack.stack[ostack.index] = nil
	return element, nil
}

func (ostack *OperandStack) Top() (Value, error) {
	if ostack.index-1 < 0 {
		return nil, ErrStackUnderflow
	}
	return ostack.stack[ostack.index-1], nil
}

// Dup duplicates the top element.
func (ostack *OperandStack) Dup() error {
	top, err := ostack.Top()
	if err != nil {
		return err
	}
	return ostack.Push(top)
}

// Swap exchanges the two top elements.
func (ostack *OperandStack) Swap() error {
	if ostack.index < 2 {
		return ErrStackUnderflow
	}
	var (
		// 栈顶
		a = ostack.index - 1
		b = ostack.index - 2
	)
	ostack.stack[a], ostack.stack[b] = ostack.stack[b], ostack.stack[a]
	return nil
}

// Elements returns a copy of the stack from bottom to top.
func (ostack *OperandStack) Elements() []Value {
	result := make([]Value, ostack.index)
	copy(result, ostack.stack[:ostack.index])
	return result
}

// Reset replaces the stack content with values, bottom first.
func (ostack *OperandStack) Reset(values []Value) error {
	if len(values) > STACK_SIZE {
		return ErrStackOverflow
	}
	for i := range ostack.stack[:ostack.index] {
		ostack.stack[i] = nil
	}
	copy(ostack.stack[:], values)
	ostack.index = len(values)
	return nil
}

func (ostack *OperandStack) Clone() *OperandStack {
	s := &OperandStack{}
	s.index = ostack.index
	copy(s.stack[:], ostack.stack[:])
	return s
}
