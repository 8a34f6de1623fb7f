package tester

import (
	"context"

	"github.com/jbachurski/taucheck/internal"
)

// Runner launches the judged program on one test case and reports what
// happened to the process.
type Runner interface {
	Run(ctx context.Context, tc *internal.TestCase) internal.RunResult
}

// Verifier turns a finished run into a verdict.
type Verifier interface {
	Verify(ctx context.Context, res internal.RunResult) internal.Verdict
}

type Options struct {
	// Workers bounds how many cases run concurrently. Values below 1
	// mean strictly sequential execution.
	Workers int

	// Fatal stops dispatching new cases after the first verdict that
	// is not OK. In-flight cases still finish and are recorded;
	// everything never dispatched is marked skipped.
	Fatal bool

	Gatherer internal.Gatherer
}

// Tester drives a batch of test cases through the runner and verifier
// and assembles the report.
type Tester struct {
	runner   Runner
	verifier Verifier
	opts     Options
	gath     internal.Gatherer
}

func New(runner Runner, verifier Verifier, opts Options) *Tester {
	gath := opts.Gatherer
	if gath == nil {
		gath = internal.NopGatherer{}
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Tester{
		runner:   runner,
		verifier: verifier,
		opts:     opts,
		gath:     gath,
	}
}
