package choice

import (
	"fmt"
	"math"
	"strings"

	"gsymbex/internal/constraint"
)

// NaNPolicy is the precision-specific part of a floating comparison.
type NaNPolicy struct {
	Type  constraint.Type
	NaN   *constraint.Constant
	isNaN func(*constraint.Constant) bool
}

var (
	// Wide is the double precision policy.
	Wide = NaNPolicy{
		Type:  constraint.Double,
		NaN:   constraint.DoubleConstant(math.NaN()),
		isNaN: func(c *constraint.Constant) bool { return math.IsNaN(c.Float()) },
	}
	// Narrow is the single precision policy.
	Narrow = NaNPolicy{
		Type: constraint.Float,
		NaN:  constraint.FloatConstant(float32(math.NaN())),
		isNaN: func(c *constraint.Constant) bool {
			f := float32(c.Float())
			return f != f
		},
	}
)

// Involves reports whether t is a NaN constant.
func (p NaNPolicy) Involves(t constraint.Term) bool {
	c, ok := constraint.AsConstant(t)
	return ok && c.Type().IsFloating() && p.isNaN(c)
}

func (p NaNPolicy) String() string {
	return p.Type.String()
}

// Bias is the result of a floating comparison with a NaN operand.
type Bias int

const (
	// BiasDefault defers to the factory configuration.
	BiasDefault Bias = 0
	BiasL       Bias = -1
	BiasG       Bias = 1
)

// ParseBias accepts "l" or "g".
func ParseBias(name string) (Bias, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "l":
		return BiasL, nil
	case "g":
		return BiasG, nil
	}
	return BiasDefault, fmt.Errorf("unknown nan bias %q", name)
}

func (b Bias) String() string {
	switch b {
	case BiasL:
		return "l"
	case BiasG:
		return "g"
	}
	return "default"
}

var orderings = []struct {
	name   string
	op     constraint.CompareOp
	result int32
}{
	{"greater", constraint.OpGT, 1},
	{"less", constraint.OpLT, -1},
	{"equal", constraint.OpEQ, 0},
}

// Compare is a three-way comparison pushing 1, -1 or 0. Orderings are
// tried greater, less, equal.
type Compare struct {
	fixed
	left, right constraint.Term
	nan         bool
}

func newCompare(b base, left, right constraint.Term, next int) *Compare {
	c := &Compare{left: left, right: right}
	var alts []alternative
	for _, o := range orderings {
		expr := constraint.Compare(o.op, left, right)
		if refuted(expr) {
			continue
		}
		alts = append(alts, alternative{
			name:  o.name,
			expr:  condition(expr),
			apply: pushAndJump(constraint.IntConstant(o.result), next),
		})
	}
	c.fixed = newFixed(b, alts)
	return c
}

// newFloatCompare short-circuits NaN operands to a single unconstrained
// alternative pushing the bias.
func newFloatCompare(b base, policy NaNPolicy, bias Bias, left, right constraint.Term, next int) *Compare {
	if policy.Involves(left) || policy.Involves(right) {
		alts := []alternative{{
			name:  "unordered",
			apply: pushAndJump(constraint.IntConstant(int32(bias)), next),
		}}
		return &Compare{fixed: newFixed(b, alts), left: left, right: right, nan: true}
	}
	return newCompare(b, left, right, next)
}

func (c *Compare) Operands() (constraint.Term, constraint.Term) {
	return c.left, c.right
}

// Unordered reports whether a NaN operand fixed the result.
func (c *Compare) Unordered() bool {
	return c.nan
}

// Verify fails when every ordering left after folding was refuted. The
// orderings are exhaustive over non-NaN values, so this indicates a modeling
// defect.
func (c *Compare) Verify() error {
	if c.nan || len(c.alts) == 0 || !c.refutedAll() {
		return nil
	}
	return &InconsistencyError{ID: c.id, Location: c.location, Left: c.left, Right: c.right}
}

func (c *Compare) String() string {
	return fmt.Sprintf("%s#%d(%s, %s) at %s", c.kind, c.id, c.left, c.right, c.location)
}
