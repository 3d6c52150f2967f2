package search

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"gsymbex/internal/core"
	"gsymbex/internal/solver"
)

// EndKind classifies how a path ended.
type EndKind int

const (
	// EndReturn is a normal method return.
	EndReturn EndKind = iota
	// EndException is an uncaught exception.
	EndException
	// EndPruned is reported by the interpreter when Open refused to continue.
	EndPruned
	EndInfeasible
	EndDepth
	// EndAborted is a path cut short by a modeling gap or indecision.
	EndAborted
)

var endNames = [...]string{
	EndReturn:     "return",
	EndException:  "exception",
	EndPruned:     "pruned",
	EndInfeasible: "infeasible",
	EndDepth:      "depth",
	EndAborted:    "aborted",
}

func (k EndKind) String() string {
	if int(k) < len(endNames) {
		return endNames[k]
	}
	return fmt.Sprintf("end(%d)", int(k))
}

// Terminal reports whether the path reached the end of the program.
func (k EndKind) Terminal() bool {
	return k == EndReturn || k == EndException
}

// PathEnd is what the interpreter reports when a path stops.
type PathEnd struct {
	Kind EndKind
	// Detail is the exception class or a short reason.
	Detail string
	// Value is the returned value, if any.
	Value interface{}
}

// Path is one explored path.
type Path struct {
	ID       int
	End      PathEnd
	Depth    int
	Choices  []string
	Solution *solver.Solution
}

func (p *Path) String() string {
	return fmt.Sprintf("path %d: %s %s depth %d", p.ID, p.End.Kind, p.End.Detail, p.Depth)
}

type StopReason int

const (
	StopNone StopReason = iota
	StopMaxSteps
	StopTimeLimit
	StopCancelled
)

func (r StopReason) String() string {
	switch r {
	case StopNone:
		return "exhausted"
	case StopMaxSteps:
		return "max steps"
	case StopTimeLimit:
		return "time limit"
	case StopCancelled:
		return "cancelled"
	}
	return fmt.Sprintf("stop(%d)", int(r))
}

// Result summarizes a search.
type Result struct {
	Session    string
	Paths      []*Path
	Steps      int
	Opened     int
	Backtracks int
	Undecided  int
	Queries    int
	Stop       StopReason
	Duration   time.Duration
}

// Exhaustive reports whether every feasible path was explored.
func (r *Result) Exhaustive() bool {
	return r.Stop == StopNone
}

// Explore runs exec until every feasible path is explored or a bound is hit.
// Hitting a bound is not an error.
func (d *Driver) Explore(ctx context.Context, exec Executor) (*Result, error) {
	start := time.Now()
	if d.options.TimeLimit > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.options.TimeLimit)
		defer cancel()
	}
	d.logger.Infof("search started")

	result := &Result{Session: d.manager.ID()}
	for {
		d.prune = EndPruned
		end, err := exec.Run(ctx, d)
		if err != nil {
			if !core.IsRecoverable(err) && ctx.Err() == nil {
				return nil, errors.Wrapf(err, "path %d", len(result.Paths)+1)
			}
			d.logger.Warnf("path %d aborted: %v", len(result.Paths)+1, err)
			end = &PathEnd{Kind: EndAborted, Detail: err.Error()}
		}
		if end == nil {
			end = &PathEnd{Kind: EndReturn}
		}
		if end.Kind == EndPruned {
			end.Kind = d.prune
		}
		path := d.endPath(ctx, len(result.Paths)+1, *end)
		result.Paths = append(result.Paths, path)
		if ctx.Err() != nil && d.stop == StopNone {
			d.halt(ctx)
		}
		if d.stop != StopNone {
			break
		}
		more, err := d.Backtrack(ctx)
		if err != nil {
			return nil, err
		}
		if !more {
			break
		}
	}
	if d.stop != StopNone {
		d.logger.Infof("search stopped: %s", d.stop)
		if err := d.Abandon(); err != nil {
			return nil, err
		}
	}

	result.Steps = d.steps
	result.Opened = d.opened
	result.Backtracks = d.backtracks
	result.Undecided = d.unknown
	result.Queries = d.manager.Queries()
	result.Stop = d.stop
	result.Duration = time.Since(start)
	searchDuration.Observe(result.Duration.Seconds())
	d.logger.Infof("search finished: %d paths, %d steps, %d queries in %s",
		len(result.Paths), result.Steps, result.Queries, result.Duration)
	return result, nil
}

func (d *Driver) endPath(ctx context.Context, id int, end PathEnd) *Path {
	path := &Path{ID: id, End: end, Depth: d.points.Size()}
	for _, cp := range d.points.Elements() {
		path.Choices = append(path.Choices, fmt.Sprintf("%d:%s", cp.ID(), cp.Alternative()))
	}
	if end.Kind.Terminal() {
		solution, err := d.manager.GetSolution(ctx)
		if err != nil {
			d.logger.Warnf("no inputs for path %d: %v", id, err)
		} else {
			path.Solution = solution
		}
	}
	pathsCompleted.WithLabelValues(end.Kind.String()).Inc()
	for _, l := range d.listeners {
		l.OnPathEnd(path)
	}
	d.logger.Debugf("%s", path)
	return path
}
