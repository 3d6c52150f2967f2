// Package constraint 符号项与约束表达式
//
// Terms are immutable. Every constructor normalizes eagerly: operations on
// constants are folded, identities are dropped and nested logic is
// flattened, so a fully concrete input always yields a *Constant.
package constraint

import (
	"fmt"
	"math"
	"strings"
)

// Type is the value domain of a term, following the bytecode primitive types.
type Type int

const (
	Boolean Type = iota
	Byte
	Short
	Char
	Int
	Long
	Float
	Double
)

var typeNames = map[Type]string{
	Boolean: "boolean",
	Byte:    "byte",
	Short:   "short",
	Char:    "char",
	Int:     "int",
	Long:    "long",
	Float:   "float",
	Double:  "double",
}

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("type(%d)", int(t))
}

// ParseType maps a type name such as "int" or "double" to its Type.
func ParseType(name string) (Type, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for t, n := range typeNames {
		if n == name {
			return t, nil
		}
	}
	return Boolean, fmt.Errorf("unknown type %q", name)
}

func (t Type) IsIntegral() bool {
	return t >= Byte && t <= Long
}

func (t Type) IsFloating() bool {
	return t == Float || t == Double
}

func (t Type) IsNumeric() bool {
	return t.IsIntegral() || t.IsFloating()
}

// Bounds returns the inclusive range of an integral type.
func (t Type) Bounds() (int64, int64) {
	switch t {
	case Byte:
		return math.MinInt8, math.MaxInt8
	case Short:
		return math.MinInt16, math.MaxInt16
	case Char:
		return 0, math.MaxUint16
	case Int:
		return math.MinInt32, math.MaxInt32
	case Long:
		return math.MinInt64, math.MaxInt64
	}
	return 0, 0
}

// promote applies binary numeric promotion.
func promote(a, b Type) Type {
	switch {
	case a == Double || b == Double:
		return Double
	case a == Float || b == Float:
		return Float
	case a == Long || b == Long:
		return Long
	}
	return Int
}

// wrap truncates v to the width of an integral type.
func wrap(t Type, v int64) int64 {
	switch t {
	case Byte:
		return int64(int8(v))
	case Short:
		return int64(int16(v))
	case Char:
		return int64(uint16(v))
	case Int:
		return int64(int32(v))
	}
	return v
}
