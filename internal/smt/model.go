package smt

import (
	"fmt"

	yices2 "github.com/ianamason/yices2_go_bindings/yices_api"

	"gsymbex/internal/constraint"
)

// Model reads the value of every variable of the last satisfiable check.
// Variables that only occurred in popped scopes are left out.
func (s *Solver) Model() (map[string]*constraint.Constant, error) {
	mu.Lock()
	defer mu.Unlock()
	if s.model == nil {
		return nil, fmt.Errorf("no model: last check was not sat")
	}
	result := make(map[string]*constraint.Constant, len(s.vars))
	for name, v := range s.vars {
		value, err := s.value(v)
		if err != nil {
			s.logger.Debugf("value of %s: %v", name, err)
			continue
		}
		result[name] = value
	}
	return result, nil
}

func (s *Solver) value(v *variable) (*constraint.Constant, error) {
	switch {
	case v.typ == constraint.Boolean:
		var val int32
		if errcode := yices2.GetBoolValue(*s.model, v.term, &val); errcode != 0 {
			return nil, fmt.Errorf(yices2.ErrorString())
		}
		return constraint.BoolConstant(val != 0), nil
	case v.typ.IsIntegral():
		var val int64
		if errcode := yices2.GetInt64Value(*s.model, v.term, &val); errcode != 0 {
			return nil, fmt.Errorf(yices2.ErrorString())
		}
		return constraint.IntegralConstant(v.typ, val), nil
	}
	var val float64
	if errcode := yices2.GetDoubleValue(*s.model, v.term, &val); errcode != 0 {
		return nil, fmt.Errorf(yices2.ErrorString())
	}
	return constraint.FloatingConstant(v.typ, val), nil
}
