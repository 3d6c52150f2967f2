package search

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// Job is one independent search. New builds a fresh driver, with its own
// solver session, and the executor to run under it.
type Job struct {
	Name string
	New  func() (*Driver, Executor, error)
}

// Explorer runs independent searches concurrently.
type Explorer struct {
	// Parallelism bounds concurrent searches; values below 1 mean one.
	Parallelism int
}

// Run explores every job and returns the results in job order. The first
// fatal error cancels the remaining jobs.
func (e *Explorer) Run(ctx context.Context, jobs []Job) ([]*Result, error) {
	limit := e.Parallelism
	if limit < 1 {
		limit = 1
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	var mu sync.Mutex
	results := make([]*Result, len(jobs))
	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			driver, exec, err := job.New()
			if err != nil {
				return errors.Wrapf(err, "job %s", job.Name)
			}
			defer driver.Manager().Close()
			result, err := driver.Explore(ctx, exec)
			if err != nil {
				return errors.Wrapf(err, "job %s", job.Name)
			}
			mu.Lock()
			results[i] = result
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
