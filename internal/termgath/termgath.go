// Package termgath renders run progress and the final summary on a
// terminal. Verbosity -1 keeps only the aggregate line, 0 shows a
// percent ticker, 1 adds a line per finished case, 2 also announces
// cases as they launch.
package termgath

import (
	"fmt"
	"io"
	"slices"

	"github.com/fatih/color"

	"github.com/jbachurski/taucheck/internal"
	"github.com/jbachurski/taucheck/internal/tcase"
)

var kindColors = map[internal.Kind]*color.Color{
	internal.KindOK:           color.New(color.FgGreen),
	internal.KindWrongAnswer:  color.New(color.FgRed),
	internal.KindTimeout:      color.New(color.FgYellow, color.Bold),
	internal.KindRuntimeError: color.New(color.FgMagenta),
	internal.KindCheckerError: color.New(color.FgMagenta, color.Bold),
	internal.KindLaunchError:  color.New(color.FgMagenta, color.Bold),
	internal.KindSkipped:      color.New(color.Faint),
}

var accepted = color.New(color.FgHiGreen, color.Bold)

type TerminalGatherer struct {
	out       io.Writer
	verbosity int

	total   int
	done    int
	lastPct int
	sawSkip bool
}

func New(out io.Writer, verbosity int) *TerminalGatherer {
	return &TerminalGatherer{out: out, verbosity: verbosity, lastPct: -1}
}

func (t *TerminalGatherer) StartRun(total int) {
	t.total = total
	if t.verbosity >= 1 {
		fmt.Fprintf(t.out, "Testing %d cases\n", total)
	}
}

func (t *TerminalGatherer) StartCase(tc *internal.TestCase) {
	if t.verbosity >= 2 {
		fmt.Fprintf(t.out, "-> %s\n", tc.Base)
	}
}

func (t *TerminalGatherer) FinishCase(v internal.Verdict) {
	t.done++
	if v.Kind == internal.KindSkipped && !t.sawSkip {
		t.sawSkip = true
		if t.verbosity >= 0 {
			fmt.Fprintln(t.out, "!@#")
		}
	}
	switch {
	case t.verbosity >= 1:
		t.caseLine(v, v.Kind != internal.KindOK)
	case t.verbosity == 0 && t.total > 0:
		if pct := t.done * 100 / t.total; pct != t.lastPct {
			t.lastPct = pct
			fmt.Fprintf(t.out, "%3d%%...\r", pct)
		}
	}
}

func (t *TerminalGatherer) FinishRun(r *internal.Report) {
	correct, total := r.Correct(), r.Total()
	pct := 0.0
	if total > 0 {
		pct = float64(correct) / float64(total) * 100
	}
	if t.verbosity < 0 {
		fmt.Fprintf(t.out, "Correct: %d/%d (%.1f%%)\n", correct, total, pct)
		return
	}
	if t.verbosity == 0 && total > 0 {
		fmt.Fprintln(t.out, "100%... done")
	}
	fmt.Fprintf(t.out, "Correct: %d/%d (%.1f%%)\n", correct, total, pct)
	if r.AllOK {
		accepted.Fprintln(t.out, "AC! :)")
	}
	t.summary(r)
	fmt.Fprintf(t.out, "Done in %.3fs\n", r.Elapsed.Seconds())
}

// summary lists the failed cases (every case when verbose) in natural
// name order. The first failure in report order always gets its detail
// line, other failures only when verbose.
func (t *TerminalGatherer) summary(r *internal.Report) {
	fmt.Fprintln(t.out, "===\nTest summary\n===")
	first := r.FirstFailure()
	ordered := slices.Clone(r.Verdicts)
	slices.SortFunc(ordered, func(a, b internal.Verdict) int {
		return tcase.NaturalCompare(a.Case.Base, b.Case.Base)
	})
	for _, v := range ordered {
		if t.verbosity < 1 && v.Kind == internal.KindOK {
			continue
		}
		withDetail := t.verbosity >= 1 || (first != nil && v.Case == first.Case)
		t.caseLine(v, withDetail)
	}
}

func (t *TerminalGatherer) caseLine(v internal.Verdict, withDetail bool) {
	acr := fmt.Sprintf("%4s", v.Kind.Code())
	if c, ok := kindColors[v.Kind]; ok {
		acr = c.Sprint(acr)
	}
	fmt.Fprintf(t.out, "- %s %s (%6.3fs)\n", acr, v.Case.Base, v.Duration.Seconds())
	if withDetail && v.Detail != "" {
		fmt.Fprintf(t.out, "       %s\n", v.Detail)
	}
}
