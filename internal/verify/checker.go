package verify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"slices"
	"strings"
	"time"

	"github.com/google/shlex"

	"github.com/jbachurski/taucheck/internal"
)

// checkerWaitDelay unblocks Wait on a killed checker's lingering pipes.
const checkerWaitDelay = time.Second

// checkerVerifier delegates the accept/reject decision to an external
// program invoked as `checker INPUT EXPECTED RECEIVED`. Exit code zero
// accepts, anything else rejects; the checker's stdout becomes the
// verdict detail.
type checkerVerifier struct {
	argv    []string
	timeout time.Duration
}

func newCheckerVerifier(command string, timeout time.Duration) (*checkerVerifier, error) {
	if command == "" {
		return nil, errors.New("checker strategy requires a checker command (--checker)")
	}
	argv, err := shlex.Split(command)
	if err != nil {
		return nil, fmt.Errorf("failed to parse checker command: %w", err)
	}
	if len(argv) == 0 {
		return nil, errors.New("empty checker command")
	}
	return &checkerVerifier{argv: argv, timeout: timeout}, nil
}

func (c *checkerVerifier) Verify(ctx context.Context, res internal.RunResult) internal.Verdict {
	if v, done := shortCircuit(res); done {
		return v
	}
	v := internal.Verdict{Case: res.Case, Duration: res.Duration}

	runCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	argv := append(slices.Clone(c.argv), res.Case.InputPath, res.Case.AnswerPath, res.GotPath)
	cmd := exec.CommandContext(runCtx, argv[0], argv[1:]...)
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	cmd.WaitDelay = checkerWaitDelay

	slog.Debug("running checker", "case", res.Case.Base, "checker", argv[0])
	err := cmd.Run()
	comment := strings.TrimSpace(stdout.String())

	if c.timeout > 0 && errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		v.Kind = internal.KindCheckerError
		v.Detail = fmt.Sprintf("checker exceeded its %s budget", c.timeout)
		return v
	}
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			v.Kind = internal.KindCheckerError
			v.Detail = fmt.Sprintf("failed to run checker: %v", err)
			return v
		}
		v.Kind = internal.KindWrongAnswer
		v.Detail = fmt.Sprintf("checker exit code %d", exitErr.ExitCode())
		if comment != "" {
			v.Detail += ": " + comment
		}
		return v
	}

	v.Kind = internal.KindOK
	v.Detail = comment
	return v
}
