package internal

import (
	"fmt"
	"time"
)

// TestCase is a paired input/expected-output file, identified by the
// base name the two files share. Instances are created during
// discovery and never mutated afterwards.
type TestCase struct {
	Base       string
	InputPath  string
	AnswerPath string

	// On-disk byte size of the input file, used by filesize ordering.
	InputSize int64
}

// Outcome classifies what happened to the judged process itself,
// before any output comparison takes place.
type Outcome int

const (
	OutcomeCompleted Outcome = iota
	OutcomeTimedOut
	OutcomeCrashed
	OutcomeLaunchError
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCompleted:
		return "completed"
	case OutcomeTimedOut:
		return "timed out"
	case OutcomeCrashed:
		return "crashed"
	case OutcomeLaunchError:
		return "launch error"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// RunResult is the record of a single supervised run of the judged
// program on one test case. It is produced by the runner, consumed
// exactly once by a verifier, and never mutated.
type RunResult struct {
	Case    *TestCase
	Outcome Outcome

	// GotPath is where the program's standard output was captured.
	// Empty when the process never started.
	GotPath string

	// Duration is wall-clock time. For OutcomeTimedOut it equals the
	// configured limit, not however long the kill actually took.
	Duration time.Duration

	ExitCode int

	// Stderr is a bounded capture of the program's standard error,
	// kept for diagnostics only.
	Stderr []byte

	// Err holds the launch failure for OutcomeLaunchError.
	Err error
}

// Kind is the final classification of a test case.
type Kind int

const (
	KindOK Kind = iota
	KindWrongAnswer
	KindTimeout
	KindRuntimeError
	KindCheckerError
	KindLaunchError
	KindSkipped
)

var kindNames = map[Kind]string{
	KindOK:           "OK",
	KindWrongAnswer:  "WrongAnswer",
	KindTimeout:      "Timeout",
	KindRuntimeError: "RuntimeError",
	KindCheckerError: "CheckerError",
	KindLaunchError:  "LaunchError",
	KindSkipped:      "Skipped",
}

var kindCodes = map[Kind]string{
	KindOK:           "OK",
	KindWrongAnswer:  "WA",
	KindTimeout:      "TLE",
	KindRuntimeError: "RE",
	KindCheckerError: "CE",
	KindLaunchError:  "LE",
	KindSkipped:      "SKIP",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Code returns the short verdict acronym used in terminal and stream
// output (WA, TLE, ...).
func (k Kind) Code() string {
	if s, ok := kindCodes[k]; ok {
		return s
	}
	return "??"
}

// Verdict is the judged outcome of one test case.
type Verdict struct {
	Case     *TestCase
	Kind     Kind
	Detail   string
	Duration time.Duration
}

// Report is the summary of a whole run. Verdicts are indexed by the
// original registry order of the cases, no matter in which order they
// actually finished. Exactly one verdict exists per discovered case,
// including cases skipped by a fatal stop.
type Report struct {
	Verdicts []Verdict
	Counts   map[Kind]int
	AllOK    bool
	Elapsed  time.Duration
}

// Finalize fills in the aggregate counts and AllOK from the verdict
// slots. It must be called once, after every slot has been written.
func (r *Report) Finalize(elapsed time.Duration) {
	r.Counts = make(map[Kind]int)
	r.AllOK = true
	for _, v := range r.Verdicts {
		r.Counts[v.Kind]++
		if v.Kind != KindOK {
			r.AllOK = false
		}
	}
	r.Elapsed = elapsed
}

// Correct is the number of OK verdicts.
func (r *Report) Correct() int {
	return r.Counts[KindOK]
}

// Total is the number of judged cases, skipped ones included.
func (r *Report) Total() int {
	return len(r.Verdicts)
}

// FirstFailure returns the first non-OK verdict in registry order,
// or nil if every case passed.
func (r *Report) FirstFailure() *Verdict {
	for i := range r.Verdicts {
		if r.Verdicts[i].Kind != KindOK {
			return &r.Verdicts[i]
		}
	}
	return nil
}
