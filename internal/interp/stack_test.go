package interp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_OperandStack_Overflow(t *testing.T) {
	var ostack OperandStack
	for i := 0; i < STACK_SIZE; i++ {
		ostack.Push(nil)
	}
	err := ostack.Push(nil)
	assert.Equal(t, ErrStackOverflow, err)
}

func Test_OperandStack_Underflow(t *testing.T) {
	var ostack OperandStack
	_, err := ostack.Pop()
	assert.Equal(t, ErrStackUnderflow, err)
	_, err = ostack.Top()
	assert.Equal(t, ErrStackUnderflow, err)
	assert.Equal(t, ErrStackUnderflow, ostack.Swap())
}

func Test_OperandStack_DupSwap(t *testing.T) {
	ostack := NewOperandStack()
	ostack.Push(1)
	ostack.Push(2)
	assert.NoError(t, ostack.Swap())
	assert.Equal(t, []Value{2, 1}, ostack.Elements())
	assert.NoError(t, ostack.Dup())
	assert.Equal(t, []Value{2, 1, 1}, ostack.Elements())

	clone := ostack.Clone()
	clone.Pop()
	assert.Equal(t, 3, ostack.Size())
	assert.Equal(t, 2, clone.Size())
}

func Test_OperandStack_Reset(t *testing.T) {
	ostack := NewOperandStack()
	ostack.Push(1)
	ostack.Push(2)
	ostack.Push(3)
	assert.NoError(t, ostack.Reset([]Value{7}))
	assert.Equal(t, []Value{7}, ostack.Elements())
	top, err := ostack.Top()
	assert.NoError(t, err)
	assert.Equal(t, 7, top)
}
