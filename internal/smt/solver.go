// Package smt 基于 yices2 的线性算术求解后端
package smt

import (
	"context"
	"fmt"
	"sync"
	"time"

	yices2 "github.com/ianamason/yices2_go_bindings/yices_api"
	log "github.com/sirupsen/logrus"

	"gsymbex/internal/constraint"
	"gsymbex/internal/solver"
)

// yices keeps global term tables, so every call into it goes through mu.
var mu sync.Mutex

// Init and Exit bracket every use of the package.
func Init() {
	mu.Lock()
	defer mu.Unlock()
	yices2.Init()
}

func Exit() {
	mu.Lock()
	defer mu.Unlock()
	yices2.Exit()
}

// Solver is a yices context. Integral variables are yices integers,
// floating variables are reals.
type Solver struct {
	ctx     yices2.ContextT
	cfg     yices2.ConfigT
	vars    map[string]*variable
	model   *yices2.ModelT
	depth   int
	timeout time.Duration
	logger  *log.Entry
}

type variable struct {
	term yices2.TermT
	typ  constraint.Type
}

type Option func(*Solver)

// WithTimeout interrupts a check that runs longer than d.
func WithTimeout(d time.Duration) Option {
	return func(s *Solver) {
		s.timeout = d
	}
}

func WithLogger(logger *log.Entry) Option {
	return func(s *Solver) {
		s.logger = logger
	}
}

func NewSolver(opts ...Option) *Solver {
	s := &Solver{
		vars: make(map[string]*variable),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.NewEntry(log.StandardLogger())
	}
	mu.Lock()
	defer mu.Unlock()
	yices2.InitConfig(&s.cfg)
	yices2.InitContext(s.cfg, &s.ctx)
	return s
}

func (s *Solver) Push() error {
	mu.Lock()
	defer mu.Unlock()
	s.dropModel()
	if errcode := yices2.Push(s.ctx); errcode < 0 {
		return fmt.Errorf("push: %s", yices2.ErrorString())
	}
	s.depth++
	return nil
}

func (s *Solver) Pop() error {
	mu.Lock()
	defer mu.Unlock()
	if s.depth == 0 {
		return fmt.Errorf("pop without push")
	}
	s.dropModel()
	if errcode := yices2.Pop(s.ctx); errcode < 0 {
		return fmt.Errorf("pop: %s", yices2.ErrorString())
	}
	s.depth--
	return nil
}

func (s *Solver) Assert(e constraint.Expression) error {
	mu.Lock()
	defer mu.Unlock()
	s.dropModel()
	term, err := s.translate(e)
	if err != nil {
		return err
	}
	if errcode := yices2.AssertFormula(s.ctx, term); errcode < 0 {
		return fmt.Errorf("assert %s: %s", e, yices2.ErrorString())
	}
	return nil
}

func (s *Solver) Check(ctx context.Context) (solver.Status, error) {
	if err := ctx.Err(); err != nil {
		return solver.Unknown, err
	}
	mu.Lock()
	defer mu.Unlock()
	s.dropModel()

	timeout := s.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); timeout == 0 || left < timeout {
			timeout = left
		}
	}
	stop := make(chan struct{})
	defer close(stop)
	if timeout > 0 || ctx.Done() != nil {
		var expired <-chan time.Time
		if timeout > 0 {
			timer := time.NewTimer(timeout)
			defer timer.Stop()
			expired = timer.C
		}
		go func() {
			select {
			case <-expired:
			case <-ctx.Done():
			case <-stop:
				return
			}
			yices2.StopSearch(s.ctx)
		}()
	}

	status := yices2.CheckContext(s.ctx, yices2.ParamT{})
	switch status {
	case yices2.StatusSat:
		s.model = yices2.GetModel(s.ctx, 1)
		if s.model == nil {
			return solver.Unknown, fmt.Errorf("get model: %s", yices2.ErrorString())
		}
		return solver.Sat, nil
	case yices2.StatusUnsat:
		return solver.Unsat, nil
	case yices2.StatusInterrupted:
		s.logger.Debugf("yices search interrupted after %s", timeout)
		return solver.Unknown, ctx.Err()
	case yices2.StatusError:
		return solver.Unknown, fmt.Errorf("check: %s", yices2.ErrorString())
	}
	return solver.Unknown, nil
}

func (s *Solver) Close() error {
	mu.Lock()
	defer mu.Unlock()
	s.dropModel()
	yices2.CloseContext(s.ctx)
	yices2.CloseConfig(&s.cfg)
	s.depth = 0
	return nil
}

func (s *Solver) dropModel() {
	if s.model != nil {
		yices2.CloseModel(s.model)
		s.model = nil
	}
}
