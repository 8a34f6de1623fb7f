package tester

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jbachurski/taucheck/internal"
)

// Run judges every case and returns the report. Cases are dispatched
// in the order given; with more than one worker they may finish in any
// order, but each verdict is written to the slot of its case, so the
// report always lists cases in the original order with exactly one
// verdict per case. The error is non-nil only when ctx was cancelled;
// the report is complete either way.
func (t *Tester) Run(ctx context.Context, cases []*internal.TestCase) (*internal.Report, error) {
	report := &internal.Report{Verdicts: make([]internal.Verdict, len(cases))}

	var (
		mu   sync.Mutex
		stop atomic.Bool
	)

	// mu guards the verdict slots and serializes gatherer callbacks.
	record := func(i int, v internal.Verdict) {
		mu.Lock()
		defer mu.Unlock()
		report.Verdicts[i] = v
		t.gath.FinishCase(v)
		if t.opts.Fatal && v.Kind != internal.KindOK && v.Kind != internal.KindSkipped {
			stop.Store(true)
		}
	}

	start := time.Now()
	t.gath.StartRun(len(cases))

	var eg errgroup.Group
	eg.SetLimit(t.opts.Workers)

	next := 0
	for next < len(cases) {
		if stop.Load() || ctx.Err() != nil {
			break
		}
		i, tc := next, cases[next]
		next++
		eg.Go(func() error {
			// The stop flag may have been raised while this case
			// waited for a worker slot; it must not launch then.
			if stop.Load() || ctx.Err() != nil {
				record(i, skipped(tc))
				return nil
			}
			mu.Lock()
			t.gath.StartCase(tc)
			mu.Unlock()
			res := t.runner.Run(ctx, tc)
			record(i, t.verifier.Verify(ctx, res))
			return nil
		})
	}
	for ; next < len(cases); next++ {
		record(next, skipped(cases[next]))
	}

	// worker funcs record verdicts instead of returning errors
	_ = eg.Wait()

	report.Finalize(time.Since(start))
	t.gath.FinishRun(report)

	if err := ctx.Err(); err != nil {
		return report, fmt.Errorf("run interrupted: %w", err)
	}
	return report, nil
}

func skipped(tc *internal.TestCase) internal.Verdict {
	return internal.Verdict{Case: tc, Kind: internal.KindSkipped, Detail: "not run"}
}
