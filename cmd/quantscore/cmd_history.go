package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/quantscore/internal/history"
	"github.com/danielpatrickdp/quantscore/internal/logging"
)

const displayTime = "2006-01-02T15:04:05Z"

func newHistoryCmd(a *app) *cobra.Command {
	var (
		last    int
		runID   string
		checks  bool
		jsonOut bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded evaluation runs",
		Long: `Lists evaluation runs stored in the history database, newest first. --run
shows one run; --checks lists the format-check log instead.`,
		Args: exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.cfg.DBPath == "" {
				return &usageError{fmt.Errorf("history needs a database: pass --db or set db_path")}
			}
			if last <= 0 {
				return &usageError{fmt.Errorf("--last must be positive, got %d", last)}
			}
			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			switch {
			case runID != "":
				return a.runDetail(store, runID, jsonOut)
			case checks:
				return a.checkList(store, last, jsonOut)
			default:
				return a.runList(store, last, jsonOut)
			}
		},
	}
	cmd.Flags().IntVarP(&last, "last", "n", 20, "show N most recent entries")
	cmd.Flags().StringVar(&runID, "run", "", "show a single run")
	cmd.Flags().BoolVar(&checks, "checks", false, "list the check log")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output as JSON instead of table")
	return cmd
}

// #region list-mode

func (a *app) runList(store *history.Store, last int, jsonOut bool) error {
	runs, err := store.ListRuns(last)
	if err != nil {
		return err
	}
	if jsonOut {
		if runs == nil {
			runs = []history.RunRecord{}
		}
		return a.printJSON(runs)
	}
	if len(runs) == 0 {
		fmt.Fprintln(a.stderr, "no runs found")
		return nil
	}

	fmt.Fprintf(a.stdout, "%-12s  %-4s  %7s  %8s  %8s  %s\n", "Run", "Task", "Samples", "MAE", "MRAE", "Time")
	fmt.Fprintf(a.stdout, "%-12s+-%-4s+-%7s+-%8s+-%8s+-%s\n",
		"------------", "----", "-------", "--------", "--------", "--------------------")
	for _, r := range runs {
		fmt.Fprintf(a.stdout, "%-12s  %-4s  %7d  %8.4f  %8.4f  %s\n",
			shortID(r.RunID), r.Task, r.Samples, r.MAE, r.MRAE, r.CreatedAt.Format(displayTime))
	}
	return nil
}

func (a *app) checkList(store *history.Store, last int, jsonOut bool) error {
	entries, err := logging.ListChecks(store.DB(), last)
	if err != nil {
		return err
	}
	if jsonOut {
		if entries == nil {
			entries = []logging.CheckEntry{}
		}
		return a.printJSON(entries)
	}
	if len(entries) == 0 {
		fmt.Fprintln(a.stderr, "no checks found")
		return nil
	}

	fmt.Fprintf(a.stdout, "%-12s  %-4s  %-8s  %-20s  %-20s  %s\n", "Operation", "Task", "Decision", "Kind", "Time", "Path")
	for _, e := range entries {
		kind := "-"
		if e.ErrorKind != "" {
			kind = e.ErrorKind
		}
		fmt.Fprintf(a.stdout, "%-12s  %-4s  %-8s  %-20s  %-20s  %s\n",
			e.Operation, e.Task, e.Decision, kind, e.CreatedAt.Format(displayTime), e.Path)
	}
	return nil
}

// #endregion list-mode

// #region detail-mode

func (a *app) runDetail(store *history.Store, runID string, jsonOut bool) error {
	r, err := store.GetRun(runID)
	if err != nil {
		return err
	}
	if jsonOut {
		return a.printJSON(r)
	}
	fmt.Fprintf(a.stdout, "Run:        %s\n", r.RunID)
	fmt.Fprintf(a.stdout, "Task:       %s\n", r.Task)
	fmt.Fprintf(a.stdout, "Created:    %s\n", r.CreatedAt.Format(displayTime))
	fmt.Fprintf(a.stdout, "Truth:      %s\n", r.TruthPath)
	fmt.Fprintf(a.stdout, "Prediction: %s\n", r.PredictionPath)
	fmt.Fprintf(a.stdout, "Samples:    %d\n", r.Samples)
	fmt.Fprintf(a.stdout, "Epsilon:    %g\n", r.Epsilon)
	fmt.Fprintf(a.stdout, "MAE:        %.4f\n", r.MAE)
	fmt.Fprintf(a.stdout, "MRAE:       %.4f\n", r.MRAE)
	return nil
}

// #endregion detail-mode

// #region helpers

func (a *app) printJSON(v interface{}) error {
	enc := json.NewEncoder(a.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}

// #endregion helpers
