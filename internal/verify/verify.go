// Package verify compares a run's received output against the expected
// output and classifies the test case. Three strategies exist: identical
// (byte-for-byte), loose (whitespace-separated tokens, the default) and
// checker (delegate to an external program).
package verify

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jbachurski/taucheck/internal"
	"github.com/jbachurski/taucheck/internal/choice"
	"github.com/jbachurski/taucheck/internal/tcase"
)

// Strategy names, resolvable by unambiguous prefix.
const (
	VerifyIdentical = "identical"
	VerifyLoose     = "loose"
	VerifyChecker   = "checker"
)

// Verifiers lists every strategy, for prefix resolution and help text.
var Verifiers = []string{VerifyIdentical, VerifyLoose, VerifyChecker}

// Verifier turns one RunResult into the final Verdict for its case.
type Verifier interface {
	Verify(ctx context.Context, res internal.RunResult) internal.Verdict
}

// Options carries strategy configuration resolved once at startup.
type Options struct {
	// Checker is the external checker command line; required by the
	// checker strategy, ignored by the others.
	Checker string

	// Timeout bounds a single checker invocation. It is a separate
	// budget, not counted against the program's own limit.
	Timeout time.Duration
}

// ByName resolves name (or an unambiguous prefix of it) to a strategy.
func ByName(name string, opts Options) (Verifier, error) {
	resolved, err := choice.Resolve(name, Verifiers)
	if err != nil {
		return nil, err
	}
	switch resolved {
	case VerifyIdentical:
		return identicalVerifier{}, nil
	case VerifyLoose:
		return looseVerifier{}, nil
	default:
		return newCheckerVerifier(opts.Checker, opts.Timeout)
	}
}

// shortCircuit classifies runs that never completed cleanly. No
// strategy reads any output for those: the verdict kind is determined
// by the process outcome alone.
func shortCircuit(res internal.RunResult) (internal.Verdict, bool) {
	v := internal.Verdict{Case: res.Case, Duration: res.Duration}
	switch res.Outcome {
	case internal.OutcomeTimedOut:
		v.Kind = internal.KindTimeout
		v.Detail = fmt.Sprintf("killed after %s", res.Duration)
	case internal.OutcomeCrashed:
		v.Kind = internal.KindRuntimeError
		v.Detail = fmt.Sprintf("exit code %d", res.ExitCode)
		if line := firstLine(res.Stderr); line != "" {
			v.Detail += ": " + line
		}
	case internal.OutcomeLaunchError:
		v.Kind = internal.KindLaunchError
		v.Detail = res.Err.Error()
	default:
		return internal.Verdict{}, false
	}
	return v, true
}

type identicalVerifier struct{}

func (identicalVerifier) Verify(_ context.Context, res internal.RunResult) internal.Verdict {
	if v, done := shortCircuit(res); done {
		return v
	}
	v := internal.Verdict{Case: res.Case, Duration: res.Duration}

	want, got, err := readBoth(res)
	if err != nil {
		v.Kind = internal.KindCheckerError
		v.Detail = err.Error()
		return v
	}

	if bytes.Equal(want, got) {
		v.Kind = internal.KindOK
		return v
	}
	v.Kind = internal.KindWrongAnswer
	v.Detail = firstLineDiff(want, got)
	return v
}

type looseVerifier struct{}

func (looseVerifier) Verify(_ context.Context, res internal.RunResult) internal.Verdict {
	if v, done := shortCircuit(res); done {
		return v
	}
	v := internal.Verdict{Case: res.Case, Duration: res.Duration}

	want, got, err := readBoth(res)
	if err != nil {
		v.Kind = internal.KindCheckerError
		v.Detail = err.Error()
		return v
	}

	wantTok := strings.Fields(string(want))
	gotTok := strings.Fields(string(got))
	for i := 0; i < len(wantTok) && i < len(gotTok); i++ {
		if wantTok[i] != gotTok[i] {
			v.Kind = internal.KindWrongAnswer
			v.Detail = fmt.Sprintf("token %d: expected %q, got %q", i, wantTok[i], gotTok[i])
			return v
		}
	}
	if len(wantTok) != len(gotTok) {
		v.Kind = internal.KindWrongAnswer
		v.Detail = fmt.Sprintf("expected %d tokens, got %d", len(wantTok), len(gotTok))
		return v
	}
	v.Kind = internal.KindOK
	return v
}

// readBoth loads the expected output and the received output. Expected
// files may be zstd-compressed; received files never are.
func readBoth(res internal.RunResult) (want, got []byte, err error) {
	want, err = tcase.ReadFile(res.Case.AnswerPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read expected output: %w", err)
	}
	got, err = tcase.ReadFile(res.GotPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read received output: %w", err)
	}
	return want, got, nil
}

// firstLineDiff describes the first line where the outputs disagree.
func firstLineDiff(want, got []byte) string {
	wantLines := strings.Split(string(want), "\n")
	gotLines := strings.Split(string(got), "\n")
	for i := 0; i < len(wantLines) && i < len(gotLines); i++ {
		if wantLines[i] != gotLines[i] {
			return fmt.Sprintf("line %d: expected %q, got %q", i+1, wantLines[i], gotLines[i])
		}
	}
	// equal common prefix, so only the line counts differ; a count off
	// by one where the longer side ends empty is a trailing newline
	switch {
	case len(wantLines) == len(gotLines)+1 && wantLines[len(gotLines)] == "":
		return "missing trailing newline"
	case len(gotLines) == len(wantLines)+1 && gotLines[len(wantLines)] == "":
		return "unexpected trailing newline"
	default:
		return fmt.Sprintf("expected %d lines, got %d", len(wantLines), len(gotLines))
	}
}

func firstLine(b []byte) string {
	s := strings.TrimSpace(string(b))
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return s
}
