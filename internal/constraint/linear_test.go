package constraint

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gsymbex/internal/core"
)

func holds(t *testing.T, e Expression, assignment map[string]*Constant) bool {
	t.Helper()
	c, err := Evaluate(e, assignment)
	require.NoError(t, err)
	return c.Bool()
}

func Test_LinearizeDivision(t *testing.T) {
	x := NewVariable("x", Int)
	y := NewVariable("y", Int)
	e, err := NewLinearizer().Linearize(Eq(Div(x, IntConstant(3)), y))
	require.NoError(t, err)

	// -7 / 3 truncates to -2 with remainder -1
	assert.True(t, holds(t, e, map[string]*Constant{
		"x": IntConstant(-7), "y": IntConstant(-2), "$q1": IntConstant(-2), "$r2": IntConstant(-1),
	}))
	// flooring is rejected
	assert.False(t, holds(t, e, map[string]*Constant{
		"x": IntConstant(-7), "y": IntConstant(-3), "$q1": IntConstant(-3), "$r2": IntConstant(2),
	}))
	assert.True(t, holds(t, e, map[string]*Constant{
		"x": IntConstant(7), "y": IntConstant(2), "$q1": IntConstant(2), "$r2": IntConstant(1),
	}))
}

func Test_LinearizeRemainderNegativeDivisor(t *testing.T) {
	x := NewVariable("x", Int)
	e, err := NewLinearizer().Linearize(Eq(Rem(x, IntConstant(-4)), IntConstant(3)))
	require.NoError(t, err)

	// 7 % -4 == 3 and 7 / -4 == -1
	assert.True(t, holds(t, e, map[string]*Constant{
		"x": IntConstant(7), "$q1": IntConstant(-1), "$r2": IntConstant(3),
	}))
	assert.False(t, holds(t, e, map[string]*Constant{
		"x": IntConstant(-5), "$q1": IntConstant(2), "$r2": IntConstant(3),
	}))
}

func Test_LinearizeFloatingCast(t *testing.T) {
	d := NewVariable("d", Double)
	y := NewVariable("y", Int)
	e, err := NewLinearizer().Linearize(Eq(CastTo(d, Int), y))
	require.NoError(t, err)

	assert.True(t, holds(t, e, map[string]*Constant{
		"d": DoubleConstant(-2.5), "y": IntConstant(-2), "$i1": IntConstant(-2),
	}))
	assert.False(t, holds(t, e, map[string]*Constant{
		"d": DoubleConstant(-2.5), "y": IntConstant(-3), "$i1": IntConstant(-3),
	}))
	assert.True(t, holds(t, e, map[string]*Constant{
		"d": DoubleConstant(1e20), "y": IntConstant(math.MaxInt32), "$i1": IntConstant(math.MaxInt32),
	}))
}

func Test_LinearizeNarrowing(t *testing.T) {
	x := NewVariable("x", Int)
	e, err := NewLinearizer().Linearize(Eq(CastTo(x, Byte), IntConstant(44)))
	require.NoError(t, err)

	assert.True(t, holds(t, e, map[string]*Constant{
		"x": IntConstant(300), "$n1": IntegralConstant(Byte, 44), "$w2": LongConstant(1),
	}))
	assert.False(t, holds(t, e, map[string]*Constant{
		"x": IntConstant(301), "$n1": IntegralConstant(Byte, 45), "$w2": LongConstant(1),
	}))
}

func Test_LinearizeDomainBounds(t *testing.T) {
	x := NewVariable("x", Int)
	e, err := NewLinearizer().Linearize(Gt(x, IntConstant(0)))
	require.NoError(t, err)

	assert.True(t, holds(t, e, map[string]*Constant{"x": LongConstant(5)}))
	assert.False(t, holds(t, e, map[string]*Constant{"x": LongConstant(3000000000)}))
}

func Test_LinearizeRejectsNonLinear(t *testing.T) {
	x := NewVariable("x", Int)
	y := NewVariable("y", Int)
	l := NewLinearizer()

	_, err := l.Linearize(Gt(Mul(x, y), IntConstant(0)))
	assert.ErrorIs(t, err, core.ErrCannotModel)

	_, err = l.Linearize(Gt(Div(x, y), IntConstant(0)))
	assert.ErrorIs(t, err, core.ErrCannotModel)

	_, err = l.Linearize(Gt(Div(x, IntConstant(0)), IntConstant(0)))
	assert.ErrorIs(t, err, core.ErrCannotModel)

	e, err := l.Linearize(Gt(Mul(x, IntConstant(2)), y))
	assert.NoError(t, err)
	assert.NotNil(t, e)
}

func Test_LinearizeFreshNames(t *testing.T) {
	x := NewVariable("x", Int)
	l := NewLinearizer()
	a, err := l.Linearize(Eq(Div(x, IntConstant(2)), IntConstant(1)))
	require.NoError(t, err)
	b, err := l.Linearize(Eq(Div(x, IntConstant(2)), IntConstant(1)))
	require.NoError(t, err)

	names := func(e Expression) []string {
		var result []string
		for _, v := range Variables(e) {
			if v.IsAuxiliary() {
				result = append(result, v.Name())
			}
		}
		return result
	}
	assert.Equal(t, []string{"$q1", "$r2"}, names(a))
	assert.Equal(t, []string{"$q3", "$r4"}, names(b))
}
