// Package runner executes the judged program once per test case as a
// supervised subprocess: stdin from the case's input file, stdout to a
// fresh received-output file, wall-clock deadline enforced with a kill.
// No process handle escapes this package; callers see only the
// RunResult contract.
package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/google/shlex"

	"github.com/jbachurski/taucheck/internal"
	"github.com/jbachurski/taucheck/internal/tcase"
)

// GotExt is the extension of received-output files written next to the
// expected .out files. The differing extension guarantees the expected
// output is never clobbered.
const GotExt = ".got"

const maxStderrBytes = 64 * 1024

// waitDelay unblocks Wait when the stdin feeder goroutine lingers
// after a kill.
const waitDelay = time.Second

// Runner runs one configured program against test cases.
type Runner struct {
	argv    []string
	outDir  string
	timeout time.Duration
}

// New splits command shell-style into an argv and prepares the outputs
// directory. A timeout of zero means no deadline.
func New(command, outDir string, timeout time.Duration) (*Runner, error) {
	argv, err := shlex.Split(command)
	if err != nil {
		return nil, fmt.Errorf("failed to parse program command: %w", err)
	}
	if len(argv) == 0 {
		return nil, errors.New("empty program command")
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create outputs directory: %w", err)
	}
	return &Runner{argv: argv, outDir: outDir, timeout: timeout}, nil
}

// Run executes the program on one test case and classifies what
// happened to the process. Output comparison is someone else's job.
func (r *Runner) Run(ctx context.Context, tc *internal.TestCase) internal.RunResult {
	res := internal.RunResult{Case: tc}

	in, err := tcase.Open(tc.InputPath)
	if err != nil {
		res.Outcome = internal.OutcomeLaunchError
		res.Err = fmt.Errorf("failed to open input: %w", err)
		return res
	}
	defer func() { _ = in.Close() }()

	gotPath := filepath.Join(r.outDir, tc.Base+GotExt)
	out, err := os.Create(gotPath)
	if err != nil {
		res.Outcome = internal.OutcomeLaunchError
		res.Err = fmt.Errorf("failed to create received-output file: %w", err)
		return res
	}
	defer func() { _ = out.Close() }()
	res.GotPath = gotPath

	runCtx := ctx
	if r.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	stderr := &boundedBuffer{max: maxStderrBytes}
	cmd := exec.CommandContext(runCtx, r.argv[0], r.argv[1:]...)
	cmd.Stdin = in
	cmd.Stdout = out
	cmd.Stderr = stderr
	cmd.WaitDelay = waitDelay

	slog.Debug("running case", "case", tc.Base, "program", r.argv[0])

	start := time.Now()
	if err := cmd.Start(); err != nil {
		res.Outcome = internal.OutcomeLaunchError
		res.Err = fmt.Errorf("failed to start %s: %w", r.argv[0], err)
		return res
	}
	waitErr := cmd.Wait()
	res.Duration = time.Since(start)
	res.Stderr = stderr.bytes()

	if r.timeout > 0 && errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		res.Outcome = internal.OutcomeTimedOut
		// The contract records the limit, not how long the kill took.
		res.Duration = r.timeout
		slog.Debug("case timed out", "case", tc.Base, "limit", r.timeout)
		return res
	}

	if waitErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(waitErr, &exitErr) {
			res.Outcome = internal.OutcomeLaunchError
			res.Err = fmt.Errorf("failed to wait for %s: %w", r.argv[0], waitErr)
			return res
		}
		res.Outcome = internal.OutcomeCrashed
		res.ExitCode = exitErr.ExitCode()
		slog.Debug("case crashed", "case", tc.Base, "exit", res.ExitCode)
		return res
	}

	res.Outcome = internal.OutcomeCompleted
	slog.Debug("case completed", "case", tc.Base, "duration", res.Duration)
	return res
}

// boundedBuffer keeps the first max bytes written and drops the rest,
// so a runaway program cannot balloon the tester's memory.
type boundedBuffer struct {
	buf       []byte
	max       int
	truncated bool
}

func (b *boundedBuffer) Write(p []byte) (int, error) {
	if room := b.max - len(b.buf); room > 0 {
		if len(p) > room {
			b.buf = append(b.buf, p[:room]...)
			b.truncated = true
		} else {
			b.buf = append(b.buf, p...)
		}
	} else if len(p) > 0 {
		b.truncated = true
	}
	return len(p), nil
}

func (b *boundedBuffer) bytes() []byte {
	if b.truncated {
		return append(b.buf, []byte("\n[...]")...)
	}
	return b.buf
}
