package solver

import (
	"gsymbex/internal/constraint"
)

// layer is the constraint contributed by one open choice point alternative.
type layer struct {
	expr    constraint.Expression
	formula constraint.Expression
	// modelErr is set when the layer could not be handed to the backend
	modelErr error

	checked bool
	status  Status

	expanded  bool
	systems   []constraint.System
	solutions map[int]*Solution
	solved    *Solution
}

func newLayer(expr constraint.Expression) *layer {
	return &layer{expr: expr, solutions: make(map[int]*Solution)}
}

func (l *layer) refuted() bool {
	return l.checked && l.status == Unsat
}

// ConstraintStack holds one layer per open choice point on the active path.
type ConstraintStack struct {
	layers []*layer
}

func NewConstraintStack() *ConstraintStack {
	return &ConstraintStack{layers: make([]*layer, 0)}
}

func (cs *ConstraintStack) Depth() int {
	return len(cs.layers)
}

func (cs *ConstraintStack) push(l *layer) {
	cs.layers = append(cs.layers, l)
}

func (cs *ConstraintStack) pop() *layer {
	if len(cs.layers) == 0 {
		return nil
	}
	l := cs.layers[len(cs.layers)-1]
	cs.layers = cs.layers[:len(cs.layers)-1]
	return l
}

func (cs *ConstraintStack) top() *layer {
	if len(cs.layers) == 0 {
		return nil
	}
	return cs.layers[len(cs.layers)-1]
}

func (cs *ConstraintStack) below() *layer {
	if len(cs.layers) < 2 {
		return nil
	}
	return cs.layers[len(cs.layers)-2]
}

// Expressions returns the non-empty constraints, bottom layer first.
func (cs *ConstraintStack) Expressions() []constraint.Expression {
	result := make([]constraint.Expression, 0, len(cs.layers))
	for _, l := range cs.layers {
		if l.expr != nil {
			result = append(result, l.expr)
		}
	}
	return result
}

// Conjunction conjoins all layers.
func (cs *ConstraintStack) Conjunction() constraint.Expression {
	return constraint.And(cs.Expressions()...)
}

// variables returns the user variables of all layers.
func (cs *ConstraintStack) variables() []*constraint.Variable {
	exprs := cs.Expressions()
	terms := make([]constraint.Term, len(exprs))
	for i := range exprs {
		terms[i] = exprs[i]
	}
	var result []*constraint.Variable
	for _, v := range constraint.Variables(terms...) {
		if !v.IsAuxiliary() {
			result = append(result, v)
		}
	}
	return result
}

func (cs *ConstraintStack) modelErr() error {
	for _, l := range cs.layers {
		if l.modelErr != nil {
			return l.modelErr
		}
	}
	return nil
}

// refuted reports whether some layer is known unsatisfiable.
func (cs *ConstraintStack) refuted() bool {
	for _, l := range cs.layers {
		if l.refuted() {
			return true
		}
	}
	return false
}
