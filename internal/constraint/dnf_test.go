package constraint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_DNF(t *testing.T) {
	x := NewVariable("x", Int)
	y := NewVariable("y", Int)
	a := Gt(x, IntConstant(0))
	b := Lt(y, IntConstant(5))
	c := Eq(x, y)

	systems, err := DNF(And(Or(a, b), c), 0)
	require.NoError(t, err)
	require.Len(t, systems, 2)
	assert.Equal(t, System{a, c}, systems[0])
	assert.Equal(t, System{b, c}, systems[1])
}

func Test_DNF_Negation(t *testing.T) {
	x := NewVariable("x", Int)
	p := NewVariable("p", Boolean)
	a := Gt(x, IntConstant(0))

	systems, err := DNF(Negate(And(a, p)), 0)
	require.NoError(t, err)
	require.Len(t, systems, 2)
	assert.Equal(t, "(x <= 0)", systems[0][0].String())
	assert.Equal(t, "!p", systems[1][0].String())
}

func Test_DNF_Constants(t *testing.T) {
	systems, err := DNF(True, 0)
	require.NoError(t, err)
	assert.Equal(t, []System{{}}, systems)

	systems, err = DNF(False, 0)
	require.NoError(t, err)
	assert.Empty(t, systems)
}

func Test_DNF_Limit(t *testing.T) {
	var clauses []Expression
	for i := 0; i < 4; i++ {
		v := NewVariable("v", Int)
		clauses = append(clauses, Or(Gt(v, IntConstant(int32(i))), Lt(v, IntConstant(-int32(i)))))
	}
	_, err := DNF(And(clauses...), 8)
	assert.ErrorIs(t, err, ErrTooManySystems)

	systems, err := DNF(And(clauses...), 16)
	assert.NoError(t, err)
	assert.Len(t, systems, 16)
}
