// Package search drives the depth-first exploration of choice points.
package search

import (
	"context"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"gsymbex/internal/choice"
	"gsymbex/internal/core"
	"gsymbex/internal/solver"
	"gsymbex/internal/strategy"
	"gsymbex/internal/trail"
)

// Executor runs the interpreter from the current frame state until the
// path ends. At a symbolic branch it hands a choice point to Driver.Open
// and resumes if Open reports true; otherwise the path ends as pruned.
type Executor interface {
	Run(ctx context.Context, d *Driver) (*PathEnd, error)
}

// Options bound a search. Zero values mean unbounded.
type Options struct {
	// MaxSteps bounds the number of applied alternatives.
	MaxSteps int
	// MaxDepth bounds the number of open choice points; deeper branches end the path.
	MaxDepth  int
	TimeLimit time.Duration
}

// Driver owns one search: its open choice points and its solver session.
type Driver struct {
	manager   *solver.Manager
	points    strategy.Strategy
	options   Options
	listeners []Listener
	logger    *log.Entry

	steps      int
	opened     int
	backtracks int
	unknown    int
	prune      EndKind
	stop       StopReason
}

type Option func(*Driver)

func WithOptions(o Options) Option {
	return func(d *Driver) {
		d.options = o
	}
}

func WithListener(l Listener) Option {
	return func(d *Driver) {
		d.listeners = append(d.listeners, l)
	}
}

func WithLogger(logger *log.Entry) Option {
	return func(d *Driver) {
		d.logger = logger
	}
}

func NewDriver(manager *solver.Manager, opts ...Option) *Driver {
	d := &Driver{
		manager: manager,
		points:  strategy.NewDFS(),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = log.NewEntry(log.StandardLogger())
	}
	d.logger = d.logger.WithField("session", manager.ID())
	return d
}

func (d *Driver) Manager() *solver.Manager {
	return d.manager
}

// Depth is the number of open choice points.
func (d *Driver) Depth() int {
	return d.points.Size()
}

// Steps is the number of applied alternatives.
func (d *Driver) Steps() int {
	return d.steps
}

// Current is the innermost open choice point, nil at the root.
func (d *Driver) Current() choice.ChoicePoint {
	cp, err := d.points.Top()
	if err != nil {
		return nil
	}
	return cp
}

// Trail is where the interpreter records its writes: the trail of the
// innermost open choice point, nil at the root where nothing is undone.
func (d *Driver) Trail() *trail.Trail {
	if cp := d.Current(); cp != nil {
		return cp.Trail()
	}
	return nil
}

// Stopped reports why the search stopped early, StopNone while it runs.
func (d *Driver) Stopped() StopReason {
	return d.stop
}

// Open makes cp the innermost choice point and applies its first feasible
// alternative. It reports false when no alternative is feasible, the depth
// bound is hit or the search is stopping; the interpreter must then end the
// path.
func (d *Driver) Open(ctx context.Context, cp choice.ChoicePoint) (bool, error) {
	if d.stop != StopNone {
		return false, nil
	}
	if d.options.MaxDepth > 0 && d.points.Size() >= d.options.MaxDepth {
		d.prune = EndDepth
		d.logger.WithFields(fields(cp)).Debugf("depth bound %d reached", d.options.MaxDepth)
		return false, nil
	}
	if err := d.points.Push(cp); err != nil {
		return false, err
	}
	d.opened++
	choicePointsOpened.WithLabelValues(cp.Kind().String()).Inc()
	for _, l := range d.listeners {
		l.OnOpen(cp)
	}
	ok, err := d.advance(ctx, cp)
	if err != nil {
		return false, err
	}
	if !ok {
		d.prune = EndInfeasible
		if d.stop != StopNone {
			d.prune = EndAborted
		}
		if err := d.discard(cp); err != nil {
			return false, err
		}
	}
	return ok, nil
}

// advance applies the next feasible alternative of cp. It reports false
// once cp is exhausted or the search must stop.
func (d *Driver) advance(ctx context.Context, cp choice.ChoicePoint) (bool, error) {
	logger := d.logger.WithFields(fields(cp))
	for cp.HasAnotherChoice() {
		if err := ctx.Err(); err != nil {
			d.halt(ctx)
			return false, nil
		}
		if d.options.MaxSteps > 0 && d.steps >= d.options.MaxSteps {
			d.stop = StopMaxSteps
			return false, nil
		}
		if err := cp.ChangeToNextChoice(); err != nil {
			return false, d.fatal(cp, err)
		}
		expr := cp.ConstraintExpression()
		if err := d.manager.AddConstraint(expr); err != nil {
			return false, d.fatal(cp, err)
		}
		if err := d.checkLevel(); err != nil {
			return false, d.fatal(cp, err)
		}

		status := solver.Sat
		if expr != nil {
			ok, err := d.manager.HasSolution(ctx)
			switch {
			case err == nil && ok:
			case err == nil:
				status = solver.Unsat
			case ctx.Err() != nil:
				if rerr := d.reject(cp); rerr != nil {
					return false, rerr
				}
				d.halt(ctx)
				return false, nil
			case core.IsRecoverable(err):
				status = solver.Unknown
				d.unknown++
				logger.Warnf("alternative %q undecided: %v", cp.Alternative(), err)
			default:
				return false, d.fatal(cp, err)
			}
		}
		cp.RecordOutcome(status)
		solverOutcomes.WithLabelValues(status.String()).Inc()

		if status == solver.Sat {
			err := cp.ApplyStateChanges()
			if err == nil {
				d.steps++
				alternativesApplied.WithLabelValues(cp.Kind().String()).Inc()
				logger.Debugf("apply %q (%d of %d)", cp.Alternative(), cp.Step(), cp.Total())
				for _, l := range d.listeners {
					l.OnApply(cp)
				}
				return true, nil
			}
			if !core.IsRecoverable(err) {
				return false, d.fatal(cp, err)
			}
			logger.Warnf("alternative %q not explored: %v", cp.Alternative(), err)
		}
		if err := d.reject(cp); err != nil {
			return false, err
		}
	}
	if err := cp.Verify(); err != nil {
		var inconsistency *choice.InconsistencyError
		if errors.As(err, &inconsistency) {
			inconsistency.Layers = d.manager.Stack().Expressions()
		}
		return false, d.fatal(cp, err)
	}
	return false, nil
}

// reject undoes a prepared alternative and its constraint layer.
func (d *Driver) reject(cp choice.ChoicePoint) error {
	if err := cp.Backtrack(); err != nil {
		return d.fatal(cp, err)
	}
	if err := d.manager.RemoveConstraint(); err != nil {
		return d.fatal(cp, err)
	}
	return nil
}

// discard pops the exhausted innermost choice point.
func (d *Driver) discard(cp choice.ChoicePoint) error {
	if _, err := d.points.Pop(); err != nil {
		return d.fatal(cp, err)
	}
	if err := d.checkLevel(); err != nil {
		return d.fatal(cp, err)
	}
	return nil
}

// Backtrack undoes the innermost applied alternative and moves to the next
// feasible one, popping exhausted choice points on the way. It reports
// false when the search is over.
func (d *Driver) Backtrack(ctx context.Context) (bool, error) {
	for d.points.HasNext() {
		cp, err := d.points.Top()
		if err != nil {
			return false, err
		}
		if cp.Phase() != choice.Idle {
			if err := d.reject(cp); err != nil {
				return false, err
			}
			d.backtracks++
			backtracks.Inc()
			for _, l := range d.listeners {
				l.OnBacktrack(cp)
			}
		}
		if d.stop != StopNone {
			return false, nil
		}
		ok, err := d.advance(ctx, cp)
		if err != nil || ok {
			return ok, err
		}
		if d.stop != StopNone {
			return false, nil
		}
		if err := d.discard(cp); err != nil {
			return false, err
		}
	}
	return false, nil
}

// Abandon discards every open choice point, restoring the state before the
// outermost one.
func (d *Driver) Abandon() error {
	for d.points.HasNext() {
		cp, err := d.points.Pop()
		if err != nil {
			return err
		}
		if cp.Phase() != choice.Idle {
			if err := cp.Backtrack(); err != nil {
				return d.fatal(cp, err)
			}
			if err := d.manager.RemoveConstraint(); err != nil {
				return d.fatal(cp, err)
			}
		}
	}
	return d.checkLevel()
}

// Feasible reports whether the constraints of the active path are satisfiable.
func (d *Driver) Feasible(ctx context.Context) (bool, error) {
	return d.manager.HasSolution(ctx)
}

// Solution returns concrete inputs for the active path.
func (d *Driver) Solution(ctx context.Context) (*solver.Solution, error) {
	return d.manager.GetSolution(ctx)
}

// checkLevel holds after every push/pop pair: each open choice point with an
// applied alternative owns exactly one constraint layer.
func (d *Driver) checkLevel() error {
	applied := 0
	for _, cp := range d.points.Elements() {
		if cp.Phase() != choice.Idle {
			applied++
		}
	}
	if level, depth := d.manager.Level(), d.manager.Stack().Depth(); level != applied || depth != applied {
		return errors.Wrapf(core.ErrIllegalState, "solver level %d, stack depth %d, open alternatives %d", level, depth, applied)
	}
	return nil
}

func (d *Driver) halt(ctx context.Context) {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		d.stop = StopTimeLimit
	} else {
		d.stop = StopCancelled
	}
}

func (d *Driver) fatal(cp choice.ChoicePoint, err error) error {
	d.logger.WithFields(fields(cp)).Errorf("search aborted: %v", err)
	return errors.Wrapf(err, "choice point %d (%s) at %s", cp.ID(), cp.Kind(), cp.Location())
}

func fields(cp choice.ChoicePoint) log.Fields {
	return log.Fields{
		"choice_point": cp.ID(),
		"kind":         cp.Kind().String(),
		"location":     cp.Location().String(),
	}
}
