package contract

import (
	"context"

	"github.com/rs/zerolog"

	pkgopenapi "github.com/goliatone/go-apicontract/pkg/openapi"
)

// Check evaluates one expectation against a contract.
type Check interface {
	Name() string
	Evaluate(ctx context.Context, doc *pkgopenapi.Contract) []Result
}

// CheckFunc adapts a function into a Check.
type CheckFunc struct {
	Label string
	Fn    func(ctx context.Context, doc *pkgopenapi.Contract) []Result
}

func (c CheckFunc) Name() string {
	return c.Label
}

func (c CheckFunc) Evaluate(ctx context.Context, doc *pkgopenapi.Contract) []Result {
	if c.Fn == nil {
		return nil
	}
	return c.Fn(ctx, doc)
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithLogger routes per-check debug events and the run summary to logger.
func WithLogger(logger zerolog.Logger) RunnerOption {
	return func(r *Runner) {
		r.logger = logger
	}
}

// WithSource labels reports with the contract location.
func WithSource(source string) RunnerOption {
	return func(r *Runner) {
		r.source = source
	}
}

// Runner executes checks and aggregates their results.
type Runner struct {
	logger zerolog.Logger
	source string
}

// NewRunner constructs a Runner. Logging is disabled unless WithLogger is
// supplied.
func NewRunner(options ...RunnerOption) *Runner {
	r := &Runner{logger: zerolog.Nop()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	return r
}

// Run evaluates every check in order. A cancelled context stops scheduling
// further checks; results gathered so far are kept.
func (r *Runner) Run(ctx context.Context, doc *pkgopenapi.Contract, checks ...Check) Report {
	report := Report{Source: r.source}
	for _, check := range checks {
		if check == nil {
			continue
		}
		if err := ctx.Err(); err != nil {
			r.logger.Warn().Err(err).Str("check", check.Name()).Msg("validation run cancelled")
			break
		}
		results := check.Evaluate(ctx, doc)
		failed := 0
		for _, res := range results {
			if !res.Passed() {
				failed++
			}
		}
		r.logger.Debug().
			Str("check", check.Name()).
			Int("results", len(results)).
			Int("failed", failed).
			Msg("check evaluated")
		report.Results = append(report.Results, results...)
	}

	passed, failed := report.Counts()
	event := r.logger.Info()
	if failed > 0 {
		event = r.logger.Warn()
	}
	event.Str("source", r.source).Int("passed", passed).Int("failed", failed).Msg("contract validation finished")
	return report
}
