package sitepass

import (
	"context"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// A Job is one derivation of a Batch.
type Job struct {
	Site   string
	Digest []byte
	Rule   Rule
}

// A Result is the outcome of a Job.
type Result struct {
	Site     string
	Password string
	Err      error
}

// A Batch derives many passwords concurrently.
// Each job gets its own decoder and emitter tree, so jobs share nothing.
type Batch struct {
	Policy Policy

	// Workers bounds the number of concurrent derivations. Zero means runtime.GOMAXPROCS(0).
	Workers int

	// Logger receives one entry per failed job. Nil disables logging.
	Logger *zap.Logger
}

// Run derives the password of every job, returning results in the order of jobs.
// A failed job is reported in its Result and does not stop the others.
// Run returns early with ctx's error if ctx is done.
func (b *Batch) Run(ctx context.Context, jobs []Job) ([]Result, error) {
	logger := b.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	workers := b.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	results := make([]Result, len(jobs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range jobs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			job := jobs[i]
			pw, err := Derive(job.Digest, job.Rule, b.Policy)
			if err != nil {
				logger.Warn("derivation failed", zap.String("site", job.Site), zap.String("rule", job.Rule.Name), zap.Error(err))
			}
			results[i] = Result{Site: job.Site, Password: pw, Err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	logger.Debug("batch done", zap.Int("jobs", len(jobs)), zap.Int("workers", workers))
	return results, nil
}
