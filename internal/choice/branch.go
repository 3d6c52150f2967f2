package choice

import (
	"fmt"

	"gsymbex/internal/constraint"
	"gsymbex/internal/interp"
	"gsymbex/internal/trail"
)

// Branch is a conditional jump: the condition holds and control moves to
// the target, or it fails and control falls through.
type Branch struct {
	fixed
	cond constraint.Expression
}

func newBranch(b base, cond constraint.Expression, target, next int) *Branch {
	var alts []alternative
	if !refuted(cond) {
		alts = append(alts, alternative{name: "jump", expr: condition(cond), apply: jumpTo(target)})
	}
	if neg := constraint.Negate(cond); !refuted(neg) {
		alts = append(alts, alternative{name: "fall through", expr: condition(neg), apply: jumpTo(next)})
	}
	return &Branch{fixed: newFixed(b, alts), cond: cond}
}

func (c *Branch) Condition() constraint.Expression {
	return c.cond
}

func (c *Branch) String() string {
	return fmt.Sprintf("branch#%d(%s) at %s", c.id, c.cond, c.location)
}

// Switch selects one case of a multi-way jump, the default last.
type Switch struct {
	fixed
	value constraint.Term
}

func newSwitch(b base, value constraint.Term, keys []int32, targets []int, defaultTarget int) (*Switch, error) {
	if len(keys) != len(targets) {
		return nil, fmt.Errorf("switch at %s: %d keys but %d targets", b.location, len(keys), len(targets))
	}
	var (
		alts   []alternative
		others = make([]constraint.Expression, 0, len(keys))
	)
	for i, key := range keys {
		k := constraint.IntConstant(key)
		eq := constraint.Eq(value, k)
		others = append(others, constraint.Ne(value, k))
		if refuted(eq) {
			continue
		}
		alts = append(alts, alternative{
			name:  fmt.Sprintf("case %d", key),
			expr:  condition(eq),
			apply: jumpTo(targets[i]),
		})
	}
	if def := constraint.And(others...); !refuted(def) {
		alts = append(alts, alternative{name: "default", expr: condition(def), apply: jumpTo(defaultTarget)})
	}
	return &Switch{fixed: newFixed(b, alts), value: value}, nil
}

func (c *Switch) Value() constraint.Term {
	return c.value
}

func (c *Switch) String() string {
	return fmt.Sprintf("switch#%d(%s) at %s", c.id, c.value, c.location)
}

// ArithmeticGuard splits an integral division or remainder on whether the
// divisor is zero. The zero case raises an ArithmeticException through the
// exception hook.
type ArithmeticGuard struct {
	fixed
	dividend constraint.Term
	divisor  constraint.Term
}

const ArithmeticException = "java/lang/ArithmeticException"

func newArithmeticGuard(b base, hook interp.ExceptionHook, op constraint.ArithOp, dividend, divisor constraint.Term, next int) (*ArithmeticGuard, error) {
	if op != constraint.OpDiv && op != constraint.OpRem {
		return nil, fmt.Errorf("arithmetic guard at %s: unexpected operator %s", b.location, op)
	}
	if !divisor.Type().IsIntegral() {
		return nil, fmt.Errorf("arithmetic guard at %s: %s divisor", b.location, divisor.Type())
	}
	zero := constraint.IntegralConstant(divisor.Type(), 0)
	var alts []alternative
	if nonZero := constraint.Ne(divisor, zero); !refuted(nonZero) {
		alts = append(alts, alternative{
			name:  "divide",
			expr:  condition(nonZero),
			apply: pushAndJump(constraint.NewArithmetic(op, dividend, divisor), next),
		})
	}
	if isZero := constraint.Eq(divisor, zero); !refuted(isZero) {
		alts = append(alts, alternative{
			name: "throw",
			expr: condition(isZero),
			apply: func(t *trail.Trail, frame interp.Frame) error {
				if hook == nil {
					return fmt.Errorf("no exception hook for %s", ArithmeticException)
				}
				t.SaveOperands(frame)
				t.SetPC(frame, frame.PC())
				return hook.Throw(frame, ArithmeticException)
			},
		})
	}
	return &ArithmeticGuard{fixed: newFixed(b, alts), dividend: dividend, divisor: divisor}, nil
}

func (c *ArithmeticGuard) Divisor() constraint.Term {
	return c.divisor
}

func (c *ArithmeticGuard) String() string {
	return fmt.Sprintf("guard#%d(%s / %s) at %s", c.id, c.dividend, c.divisor, c.location)
}
