package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/lmittmann/tint"
	"github.com/nats-io/nats.go"
	"github.com/urfave/cli/v3"

	"github.com/jbachurski/taucheck/internal"
	"github.com/jbachurski/taucheck/internal/choice"
	"github.com/jbachurski/taucheck/internal/conf"
	"github.com/jbachurski/taucheck/internal/fetch"
	"github.com/jbachurski/taucheck/internal/natsgath"
	"github.com/jbachurski/taucheck/internal/runner"
	"github.com/jbachurski/taucheck/internal/sqsgath"
	"github.com/jbachurski/taucheck/internal/tcase"
	"github.com/jbachurski/taucheck/internal/termgath"
	"github.com/jbachurski/taucheck/internal/tester"
	"github.com/jbachurski/taucheck/internal/verify"
	"github.com/jbachurski/taucheck/internal/xdg"
)

const appName = "taucheck"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var verbosity int

	cmd := &cli.Command{
		Name:      appName,
		Usage:     "run a program against .in/.out test cases and judge its output",
		ArgsUsage: "PROGRAM [TESTS]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "outputs", Aliases: []string{"o"}, Usage: "`DIR` with the expected .out files (default: TESTS)"},
			&cli.StringFlag{Name: "order", Aliases: []string{"d"}, Usage: "case order: lexicographical, natural, random or filesize", DefaultText: "natural"},
			&cli.StringFlag{Name: "verify", Aliases: []string{"e"}, Usage: "comparison mode: identical, loose or checker", DefaultText: "loose"},
			&cli.StringFlag{Name: "checker", Aliases: []string{"c"}, Usage: "checker `COMMAND`, invoked as COMMAND IN ANS GOT"},
			&cli.FloatFlag{Name: "timeout", Aliases: []string{"t"}, Usage: "wall clock limit per case in `SECONDS` (0 = none)"},
			&cli.IntFlag{Name: "processes", Aliases: []string{"p"}, Usage: "run up to `N` cases concurrently", DefaultText: "1"},
			&cli.BoolFlag{Name: "fatal", Aliases: []string{"f"}, Usage: "stop dispatching new cases after the first failure"},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "more output (repeat for even more)", Config: cli.BoolConfig{Count: &verbosity}},
			&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Usage: "print only the final aggregate line"},
			&cli.StringFlag{Name: "fetch", Usage: "download tests from `URL` (tar or tar.zst over http(s) or s3)"},
			&cli.StringFlag{Name: "publish-nats", Usage: "publish run events to the NATS server at `URL`"},
			&cli.StringFlag{Name: "subject", Usage: "`SUBJECT` for published NATS events", DefaultText: "taucheck.results"},
			&cli.StringFlag{Name: "publish-sqs", Usage: "publish run events to the SQS queue at `QUEUE-URL`"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return run(ctx, cmd, verbosity)
		},
	}

	if err := cmd.Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", appName, err)
		os.Exit(2)
	}
}

func run(ctx context.Context, cmd *cli.Command, verbosity int) error {
	if cmd.Bool("quiet") {
		verbosity = -1
	}
	setupLogging(verbosity)

	dirs := xdg.New()
	cfg, err := conf.Load(dirs.AppConfigDir(appName))
	if err != nil {
		return cli.Exit(fmt.Sprintf("%s: %v", appName, err), 2)
	}
	applyFlags(&cfg, cmd)

	args := cmd.Args()
	if args.Len() < 1 || args.Len() > 2 {
		return cli.Exit(fmt.Sprintf("usage: %s PROGRAM [TESTS] (see --help)", appName), 2)
	}
	program := args.Get(0)

	orderBy, err := tcase.OrderingByName(cfg.Order)
	if err != nil {
		return cli.Exit(fmt.Sprintf("%s: %v", appName, err), 2)
	}

	verifyName, err := choice.Resolve(cfg.Verify, verify.Verifiers)
	if err != nil {
		return cli.Exit(fmt.Sprintf("%s: %v", appName, err), 2)
	}
	if cfg.Checker != "" && verifyName != verify.VerifyChecker {
		fmt.Println("[?] Checker parameter provided but verifier is not checker.")
	}
	budget := time.Duration(cfg.Timeout * float64(time.Second))
	ver, err := verify.ByName(verifyName, verify.Options{Checker: cfg.Checker, Timeout: budget})
	if err != nil {
		return cli.Exit(fmt.Sprintf("%s: %v", appName, err), 2)
	}

	testsDir, err := resolveTests(ctx, dirs, args.Get(1), cmd.String("fetch"))
	if err != nil {
		return cli.Exit(fmt.Sprintf("%s: %v", appName, err), 2)
	}
	outDir := cfg.Outputs
	if outDir == "" {
		outDir = testsDir
	}

	cases, err := tcase.Discover(testsDir, outDir)
	if err != nil {
		return cli.Exit(fmt.Sprintf("%s: %v", appName, err), 2)
	}
	orderBy(cases)

	prog, err := runner.New(program, outDir, budget)
	if err != nil {
		return cli.Exit(fmt.Sprintf("%s: %v", appName, err), 2)
	}

	runID := uuid.New().String()
	slog.Info("starting run",
		"run_id", runID, "cases", len(cases),
		"order", cfg.Order, "verify", verifyName, "processes", cfg.Processes)

	gath := internal.MultiGatherer{termgath.New(os.Stdout, verbosity)}
	if cfg.NatsURL != "" {
		nc, err := nats.Connect(cfg.NatsURL, nats.Name(appName))
		if err != nil {
			return cli.Exit(fmt.Sprintf("%s: failed to connect to nats: %v", appName, err), 2)
		}
		defer func() { _ = nc.Drain() }()
		gath = append(gath, natsgath.New(nc, runID, cfg.NatsSubject))
	}
	if cfg.SqsQueueURL != "" {
		sg, err := sqsgath.New(ctx, runID, cfg.SqsQueueURL)
		if err != nil {
			return cli.Exit(fmt.Sprintf("%s: failed to set up sqs publisher: %v", appName, err), 2)
		}
		gath = append(gath, sg)
	}

	refs := make([]*internal.TestCase, len(cases))
	for i := range cases {
		refs[i] = &cases[i]
	}
	t := tester.New(prog, ver, tester.Options{
		Workers:  cfg.Processes,
		Fatal:    cfg.Fatal,
		Gatherer: gath,
	})

	report, runErr := t.Run(ctx, refs)
	if runErr != nil {
		slog.Debug("run interrupted", "error", runErr)
	}
	if runErr != nil || !report.AllOK {
		return cli.Exit("", 1)
	}
	return nil
}

// applyFlags lays command-line values over the file and environment
// configuration. Only flags the user actually passed override.
func applyFlags(cfg *conf.Config, cmd *cli.Command) {
	if cmd.IsSet("outputs") {
		cfg.Outputs = cmd.String("outputs")
	}
	if cmd.IsSet("order") {
		cfg.Order = cmd.String("order")
	}
	if cmd.IsSet("verify") {
		cfg.Verify = cmd.String("verify")
	}
	if cmd.IsSet("checker") {
		cfg.Checker = cmd.String("checker")
	}
	if cmd.IsSet("timeout") {
		cfg.Timeout = cmd.Float("timeout")
	}
	if cmd.IsSet("processes") {
		cfg.Processes = int(cmd.Int("processes"))
	}
	if cmd.IsSet("fatal") {
		cfg.Fatal = cmd.Bool("fatal")
	}
	if cmd.IsSet("publish-nats") {
		cfg.NatsURL = cmd.String("publish-nats")
	}
	if cmd.IsSet("subject") {
		cfg.NatsSubject = cmd.String("subject")
	}
	if cmd.IsSet("publish-sqs") {
		cfg.SqsQueueURL = cmd.String("publish-sqs")
	}
}

// resolveTests returns the directory holding the .in files. Without
// --fetch that is the TESTS argument itself; with --fetch the pack is
// downloaded (or served from cache) and TESTS, if given, names a
// subdirectory inside it.
func resolveTests(ctx context.Context, dirs *xdg.Dirs, testsArg, fetchURL string) (string, error) {
	if fetchURL == "" {
		if testsArg == "" {
			return "", fmt.Errorf("TESTS argument is required unless --fetch is used")
		}
		return testsArg, nil
	}
	cache, err := fetch.New(dirs.AppCacheDir(appName))
	if err != nil {
		return "", err
	}
	packDir, err := cache.Fetch(ctx, fetchURL)
	if err != nil {
		return "", fmt.Errorf("failed to fetch tests: %w", err)
	}
	if testsArg != "" {
		return filepath.Join(packDir, testsArg), nil
	}
	return packDir, nil
}

func setupLogging(verbosity int) {
	level := slog.LevelWarn
	switch {
	case verbosity < 0:
		level = slog.LevelError
	case verbosity == 1:
		level = slog.LevelInfo
	case verbosity >= 2:
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	})))
}
