package tester_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jbachurski/taucheck/internal"
	"github.com/jbachurski/taucheck/internal/tester"
)

func cases(bases ...string) []*internal.TestCase {
	out := make([]*internal.TestCase, len(bases))
	for i, b := range bases {
		out[i] = &internal.TestCase{Base: b}
	}
	return out
}

// script plays both runner and verifier: it records which cases were
// actually launched and fails the ones listed in fail.
type script struct {
	mu      sync.Mutex
	started []string
	fail    map[string]bool

	// release, when set, blocks each launched case until its channel
	// is closed, so tests control completion order.
	release map[string]chan struct{}
}

func (s *script) Run(ctx context.Context, tc *internal.TestCase) internal.RunResult {
	s.mu.Lock()
	s.started = append(s.started, tc.Base)
	s.mu.Unlock()
	if s.release != nil {
		<-s.release[tc.Base]
	}
	return internal.RunResult{Case: tc, Outcome: internal.OutcomeCompleted, Duration: time.Millisecond}
}

func (s *script) Verify(ctx context.Context, res internal.RunResult) internal.Verdict {
	v := internal.Verdict{Case: res.Case, Duration: res.Duration}
	if s.fail[res.Case.Base] {
		v.Kind = internal.KindWrongAnswer
		v.Detail = "scripted failure"
		return v
	}
	v.Kind = internal.KindOK
	return v
}

// eventLog captures the gatherer call sequence; FinishCase optionally
// signals each recorded base so tests can pace releases.
type eventLog struct {
	mu     sync.Mutex
	events []string
	signal chan string
}

func (g *eventLog) log(format string, args ...any) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.events = append(g.events, fmt.Sprintf(format, args...))
}

func (g *eventLog) StartRun(total int)              { g.log("run start %d", total) }
func (g *eventLog) StartCase(tc *internal.TestCase) { g.log("start %s", tc.Base) }
func (g *eventLog) FinishCase(v internal.Verdict) {
	g.log("finish %s %s", v.Case.Base, v.Kind.Code())
	if g.signal != nil {
		g.signal <- v.Case.Base
	}
}
func (g *eventLog) FinishRun(r *internal.Report) { g.log("run finish %d/%d", r.Correct(), r.Total()) }

func verdictCodes(r *internal.Report) []string {
	out := make([]string, 0, len(r.Verdicts))
	for _, v := range r.Verdicts {
		out = append(out, v.Kind.Code())
	}
	return out
}

func verdictBases(r *internal.Report) []string {
	out := make([]string, 0, len(r.Verdicts))
	for _, v := range r.Verdicts {
		out = append(out, v.Case.Base)
	}
	return out
}

func TestSequentialAllOK(t *testing.T) {
	s := &script{}
	gath := &eventLog{}
	tr := tester.New(s, s, tester.Options{Workers: 1, Gatherer: gath})

	report, err := tr.Run(context.Background(), cases("t1", "t2", "t3"))
	require.NoError(t, err)

	assert.True(t, report.AllOK)
	assert.Equal(t, 3, report.Correct())
	assert.Equal(t, 3, report.Total())
	assert.Nil(t, report.FirstFailure())
	assert.Equal(t, []string{"t1", "t2", "t3"}, s.started)
	assert.Equal(t, []string{
		"run start 3",
		"start t1", "finish t1 OK",
		"start t2", "finish t2 OK",
		"start t3", "finish t3 OK",
		"run finish 3/3",
	}, gath.events)
}

func TestFatalStopsAfterFirstFailure(t *testing.T) {
	s := &script{fail: map[string]bool{"t1": true}}
	tr := tester.New(s, s, tester.Options{Workers: 1, Fatal: true})

	report, err := tr.Run(context.Background(), cases("t1", "t2", "t3"))
	require.NoError(t, err)

	assert.Equal(t, []string{"WA", "SKIP", "SKIP"}, verdictCodes(report))
	assert.Equal(t, []string{"t1"}, s.started, "skipped cases must never launch")
	assert.False(t, report.AllOK)
	require.NotNil(t, report.FirstFailure())
	assert.Equal(t, "t1", report.FirstFailure().Case.Base)
	assert.Equal(t, 3, report.Total())
}

func TestWithoutFatalEveryCaseRuns(t *testing.T) {
	s := &script{fail: map[string]bool{"t1": true, "t3": true}}
	tr := tester.New(s, s, tester.Options{Workers: 1})

	report, err := tr.Run(context.Background(), cases("t1", "t2", "t3"))
	require.NoError(t, err)

	assert.Equal(t, []string{"WA", "OK", "WA"}, verdictCodes(report))
	assert.Equal(t, []string{"t1", "t2", "t3"}, s.started)
	assert.Equal(t, 1, report.Correct())
}

func TestParallelReportKeepsRegistryOrder(t *testing.T) {
	bases := []string{"a", "b", "c", "d"}
	release := make(map[string]chan struct{}, len(bases))
	for _, b := range bases {
		release[b] = make(chan struct{})
	}
	s := &script{release: release}
	gath := &eventLog{signal: make(chan string, len(bases))}
	tr := tester.New(s, s, tester.Options{Workers: len(bases), Gatherer: gath})

	// let the cases finish in reverse dispatch order
	go func() {
		for _, b := range []string{"d", "c", "b", "a"} {
			close(release[b])
			<-gath.signal
		}
	}()

	report, err := tr.Run(context.Background(), cases(bases...))
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b", "c", "d"}, verdictBases(report))
	assert.True(t, report.AllOK)

	var finishes []string
	for _, ev := range gath.events {
		var base, code string
		if _, err := fmt.Sscanf(ev, "finish %s %s", &base, &code); err == nil {
			finishes = append(finishes, base)
		}
	}
	assert.Equal(t, []string{"d", "c", "b", "a"}, finishes)
}

func TestParallelFatalSkipsUndispatched(t *testing.T) {
	release := map[string]chan struct{}{
		"t1": make(chan struct{}),
		"t2": make(chan struct{}),
	}
	s := &script{fail: map[string]bool{"t1": true}, release: release}
	gath := &eventLog{signal: make(chan string, 5)}
	tr := tester.New(s, s, tester.Options{Workers: 2, Fatal: true, Gatherer: gath})

	// t1 and t2 occupy both workers; t1 fails first, then the
	// in-flight t2 is allowed to finish
	go func() {
		close(release["t1"])
		for base := range gath.signal {
			if base == "t1" {
				close(release["t2"])
				return
			}
		}
	}()

	report, err := tr.Run(context.Background(), cases("t1", "t2", "t3", "t4", "t5"))
	require.NoError(t, err)

	assert.Equal(t, []string{"WA", "OK", "SKIP", "SKIP", "SKIP"}, verdictCodes(report))
	assert.ElementsMatch(t, []string{"t1", "t2"}, s.started)
	assert.Equal(t, 5, report.Total())
	assert.Equal(t, 1, report.Correct())
}

func TestCancelledContextSkipsEverything(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := &script{}
	tr := tester.New(s, s, tester.Options{Workers: 4})

	report, err := tr.Run(ctx, cases("t1", "t2"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, []string{"SKIP", "SKIP"}, verdictCodes(report))
	assert.Empty(t, s.started)
}

func TestNoCases(t *testing.T) {
	s := &script{}
	gath := &eventLog{}
	tr := tester.New(s, s, tester.Options{Gatherer: gath})

	report, err := tr.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.True(t, report.AllOK)
	assert.Equal(t, 0, report.Total())
	assert.Equal(t, []string{"run start 0", "run finish 0/0"}, gath.events)
}

func TestWorkersBelowOneRunSequentially(t *testing.T) {
	s := &script{}
	tr := tester.New(s, s, tester.Options{Workers: -3})

	report, err := tr.Run(context.Background(), cases("t1", "t2"))
	require.NoError(t, err)
	assert.True(t, report.AllOK)
	assert.Equal(t, []string{"t1", "t2"}, s.started)
}
