// Command quantscore validates and scores prevalence submissions for the
// text-quantification benchmark tasks.
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/quantscore/internal/config"
	"github.com/danielpatrickdp/quantscore/internal/eval"
	"github.com/danielpatrickdp/quantscore/internal/history"
	"github.com/danielpatrickdp/quantscore/internal/logging"
	"github.com/danielpatrickdp/quantscore/internal/task"
)

// #region main

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the CLI and returns the process exit status: 0 on success, 2 on
// usage errors and 1 on everything else.
func run(args []string, stdout, stderr io.Writer) int {
	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)
	err := root.Execute()
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errReported):
		return 1
	case isUsageError(err):
		fmt.Fprintf(stderr, "usage error: %v\n", err)
		return 2
	default:
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
}

// #endregion main

// #region errors

// errReported marks a failure whose message has already been printed.
var errReported = errors.New("failure already reported")

type usageError struct{ err error }

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func isUsageError(err error) bool {
	var u *usageError
	return errors.As(err, &u)
}

// exactArgs is cobra.ExactArgs with the error marked as a usage error.
func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.ExactArgs(n)(cmd, args); err != nil {
			return &usageError{err}
		}
		return nil
	}
}

// #endregion errors

// #region app

// app carries state shared by subcommands once the root pre-run has loaded
// configuration.
type app struct {
	stdout, stderr io.Writer

	configPath string
	dbPath     string
	logLevel   string

	cfg    config.Config
	logger *slog.Logger
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:   "quantscore",
		Short: "Validate and score prevalence submissions",
		Long: `quantscore checks class-prevalence submissions for the T1A, T1B, T2A and T2B
quantification tasks and scores predictions against ground truth with mean
absolute error (MAE) and mean relative absolute error (MRAE).`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{err}
	})

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "YAML config file")
	root.PersistentFlags().StringVar(&a.dbPath, "db", "", "SQLite history database (overrides config)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "debug, info, warn or error (overrides config)")

	root.AddCommand(
		newEvaluateCmd(a),
		newCheckFormatCmd(a),
		newTasksCmd(a),
		newHistoryCmd(a),
		newReplayCmd(a),
		newServeCmd(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.dbPath != "" {
		cfg.DBPath = a.dbPath
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}

	logger, err := logging.NewLogger(a.stderr, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return &usageError{err}
	}
	slog.SetDefault(logger)

	a.cfg = cfg
	a.logger = logger
	return nil
}

// harness builds the scoring pipeline. A positive eps overrides the configured
// smoothing constant.
func (a *app) harness(eps float64) *eval.Harness {
	ec := eval.EvalConfig{
		Epsilon:     a.cfg.Epsilon,
		Tolerance:   a.cfg.Tolerance,
		StrictTruth: a.cfg.StrictTruth,
	}
	if eps > 0 {
		ec.Epsilon = eps
	}
	return eval.NewHarness(task.Default(), ec, a.logger)
}

// openStore opens the history database, or returns nil when none is configured.
func (a *app) openStore() (*history.Store, error) {
	if a.cfg.DBPath == "" {
		return nil, nil
	}
	return history.NewStore(a.cfg.DBPath)
}

// logCheck records a check outcome when a store is open. Failures to record are
// logged, never returned.
func (a *app) logCheck(store *history.Store, entry logging.CheckEntry, err error) {
	if store == nil {
		return
	}
	entry.Decision = logging.DecisionPass
	if err != nil {
		entry.Decision = logging.DecisionFail
		entry.ErrorKind = eval.ErrorKind(err)
		entry.Reason = err.Error()
	}
	if logErr := logging.LogCheck(store.DB(), entry); logErr != nil {
		a.logger.Warn("check log write failed", "error", logErr)
	}
}

// #endregion app
