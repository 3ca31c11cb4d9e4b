package parallel

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/nibzard/jsonedit/internal/jsontree"
	"github.com/nibzard/jsonedit/internal/validation"
)

// Job is one document to validate. When Load is set it is called on the
// worker and its result replaces Doc.
type Job struct {
	Name string
	Doc  jsontree.Value
	Load func() (jsontree.Value, error)
}

// Result is the outcome of one job. Err is set when the document could not
// be loaded or the run was cancelled before the job started.
type Result struct {
	Name     string
	Errors   []validation.Error
	Err      error
	Duration time.Duration
}

// Valid reports whether the job ran and found no validation errors.
func (r Result) Valid() bool {
	return r.Err == nil && len(r.Errors) == 0
}

// Pool validates documents against one schema with bounded concurrency.
type Pool struct {
	schema     jsontree.Value
	maxWorkers int
	failFast   bool
	logger     *log.Logger
}

// Option configures a Pool.
type Option func(*Pool)

// WithFailFast stops starting new jobs after the first job error.
// Documents that merely fail validation do not count as errors.
func WithFailFast() Option {
	return func(p *Pool) { p.failFast = true }
}

// WithLogger sets the logger used for per-job debug output.
func WithLogger(logger *log.Logger) Option {
	return func(p *Pool) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewPool checks that schema compiles and returns a pool running at most
// maxWorkers jobs at once. maxWorkers below 1 means no limit.
func NewPool(schema jsontree.Value, maxWorkers int, opts ...Option) (*Pool, error) {
	if _, err := validation.Compile(schema); err != nil {
		return nil, err
	}
	p := &Pool{
		schema:     schema,
		maxWorkers: maxWorkers,
		logger:     log.New(io.Discard),
	}
	for _, o := range opts {
		o(p)
	}
	return p, nil
}

// Run validates every job and returns one result per job in input order.
// The returned error is the first job error when fail-fast is on, or the
// context's error if ctx ended; results are returned either way.
func (p *Pool) Run(ctx context.Context, jobs []Job) ([]Result, error) {
	results := make([]Result, len(jobs))
	for i, job := range jobs {
		results[i].Name = job.Name
	}

	g, gctx := errgroup.WithContext(ctx)
	if p.maxWorkers > 0 {
		g.SetLimit(p.maxWorkers)
	}

	for i, job := range jobs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i].Err = err
				return nil
			}
			start := time.Now()
			errs, err := p.validate(job)
			results[i].Errors = errs
			results[i].Err = err
			results[i].Duration = time.Since(start)
			p.logger.Debug("validated", "doc", job.Name, "errors", len(errs), "err", err, "took", results[i].Duration)
			if err != nil && p.failFast {
				return fmt.Errorf("%s: %w", job.Name, err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, ctx.Err()
}

func (p *Pool) validate(job Job) ([]validation.Error, error) {
	doc := job.Doc
	if job.Load != nil {
		loaded, err := job.Load()
		if err != nil {
			return nil, err
		}
		doc = loaded
	}
	compiled, err := validation.Compile(p.schema)
	if err != nil {
		return nil, err
	}
	return compiled.Validate(doc), nil
}

// Summary counts valid, invalid and failed results.
type Summary struct {
	Valid   int
	Invalid int
	Failed  int
}

// Summarize tallies results.
func Summarize(results []Result) Summary {
	var s Summary
	for _, r := range results {
		switch {
		case r.Err != nil:
			s.Failed++
		case len(r.Errors) > 0:
			s.Invalid++
		default:
			s.Valid++
		}
	}
	return s
}
