package constraint

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_ArithmeticFolding(t *testing.T) {
	var testCases = []struct {
		Name     string
		Term     Term
		Expected *Constant
	}{
		{"int add", Add(IntConstant(2), IntConstant(3)), IntConstant(5)},
		{"int overflow wraps", Add(IntConstant(math.MaxInt32), IntConstant(1)), IntConstant(math.MinInt32)},
		{"int division truncates", Div(IntConstant(-7), IntConstant(2)), IntConstant(-3)},
		{"int remainder keeps sign", Rem(IntConstant(-7), IntConstant(2)), IntConstant(-1)},
		{"min int divided by minus one", Div(IntConstant(math.MinInt32), IntConstant(-1)), IntConstant(math.MinInt32)},
		{"long promotion", Mul(IntConstant(3), LongConstant(4)), LongConstant(12)},
		{"double", Sub(DoubleConstant(1.5), IntConstant(1)), DoubleConstant(0.5)},
		{"float remainder", Rem(FloatConstant(5.5), FloatConstant(2)), FloatConstant(1.5)},
		{"negate min int", Neg(IntConstant(math.MinInt32)), IntConstant(math.MinInt32)},
	}
	for _, tc := range testCases {
		c, ok := tc.Term.(*Constant)
		if assert.True(t, ok, tc.Name) {
			assert.True(t, tc.Expected.Equal(c), "%s: got %s", tc.Name, c)
		}
	}
}

func Test_DivisionByZeroStaysSymbolic(t *testing.T) {
	term := Div(IntConstant(1), IntConstant(0))
	_, ok := term.(*Arithmetic)
	assert.True(t, ok)

	_, err := Evaluate(term, nil)
	assert.Error(t, err)
}

func Test_Identities(t *testing.T) {
	x := NewVariable("x", Int)
	assert.Equal(t, Term(x), Add(x, IntConstant(0)))
	assert.Equal(t, Term(x), Mul(IntConstant(1), x))
	assert.True(t, IntConstant(0).Equal(Mul(x, IntConstant(0)).(*Constant)))
	assert.Equal(t, Term(x), Neg(Neg(x)))

	d := NewVariable("d", Double)
	_, ok := Add(d, DoubleConstant(0)).(*Arithmetic)
	assert.True(t, ok, "floating identities are not applied")
}

func Test_CastFolding(t *testing.T) {
	var testCases = []struct {
		Value    *Constant
		To       Type
		Expected *Constant
	}{
		{DoubleConstant(3.9), Int, IntConstant(3)},
		{DoubleConstant(-3.9), Int, IntConstant(-3)},
		{DoubleConstant(math.NaN()), Int, IntConstant(0)},
		{DoubleConstant(1e20), Int, IntConstant(math.MaxInt32)},
		{DoubleConstant(-1e20), Long, LongConstant(math.MinInt64)},
		{IntConstant(300), Byte, IntegralConstant(Byte, 44)},
		{IntConstant(-1), Char, IntegralConstant(Char, 65535)},
		{DoubleConstant(1e10), Short, IntegralConstant(Short, -1)},
		{IntConstant(7), Double, DoubleConstant(7)},
	}
	for _, tc := range testCases {
		c := CastTo(tc.Value, tc.To).(*Constant)
		assert.True(t, tc.Expected.Equal(c), "(%s)%s: got %s", tc.To, tc.Value, c)
	}
}

func Test_ComparisonFolding(t *testing.T) {
	nan := DoubleConstant(math.NaN())
	x := NewVariable("x", Double)

	assert.Equal(t, Expression(True), Gt(IntConstant(3), IntConstant(2)))
	assert.Equal(t, Expression(False), Eq(LongConstant(3), IntConstant(2)))
	assert.Equal(t, Expression(False), Gt(nan, DoubleConstant(1)))
	assert.Equal(t, Expression(False), Eq(nan, nan))
	assert.Equal(t, Expression(True), Ne(nan, nan))
	assert.Equal(t, Expression(False), Lt(x, nan))
	assert.Equal(t, Expression(True), Ne(nan, x))
}

func Test_LogicNormalization(t *testing.T) {
	x := NewVariable("x", Int)
	a := Gt(x, IntConstant(0))
	b := Lt(x, IntConstant(10))

	assert.Equal(t, a, And(True, a))
	assert.Equal(t, Expression(False), And(a, False, b))
	assert.Equal(t, Expression(True), Or(a, True))
	assert.Equal(t, Expression(True), And())
	assert.Equal(t, Expression(False), Or())

	flat := And(And(a, b), a).(*Conjunction)
	assert.Len(t, flat.Operands(), 3)

	assert.Equal(t, "(x <= 0)", Negate(a).String())
	p := NewVariable("p", Boolean)
	assert.Equal(t, Expression(p), Negate(Negate(p)))
}

func Test_InvalidOperandsPanic(t *testing.T) {
	p := NewVariable("p", Boolean)
	assert.Panics(t, func() { Add(p, IntConstant(1)) })
	assert.Panics(t, func() { Lt(p, p) })
	assert.Panics(t, func() { CastTo(IntConstant(1), Boolean) })
}

func Test_VariablesAndEvaluate(t *testing.T) {
	x := NewVariable("x", Int)
	y := NewVariable("y", Int)
	e := And(Gt(Add(x, y), IntConstant(3)), Lt(y, IntConstant(2)))

	vars := Variables(e)
	if assert.Len(t, vars, 2) {
		assert.Equal(t, "x", vars[0].Name())
		assert.Equal(t, "y", vars[1].Name())
	}

	c, err := Evaluate(e, map[string]*Constant{"x": IntConstant(5), "y": IntConstant(1)})
	assert.NoError(t, err)
	assert.True(t, c.Bool())

	c, err = Evaluate(e, map[string]*Constant{"x": IntConstant(1), "y": IntConstant(1)})
	assert.NoError(t, err)
	assert.False(t, c.Bool())

	_, err = Evaluate(e, map[string]*Constant{"x": IntConstant(1)})
	assert.Error(t, err)
}

func Test_ParseType(t *testing.T) {
	typ, err := ParseType("Double")
	assert.NoError(t, err)
	assert.Equal(t, Double, typ)
	_, err = ParseType("object")
	assert.Error(t, err)
}
