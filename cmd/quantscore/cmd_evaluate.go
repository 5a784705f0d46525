package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/quantscore/internal/eval"
	"github.com/danielpatrickdp/quantscore/internal/history"
	"github.com/danielpatrickdp/quantscore/internal/logging"
)

func newEvaluateCmd(a *app) *cobra.Command {
	var (
		output string
		eps    float64
	)

	cmd := &cobra.Command{
		Use:   "evaluate TASK TRUE_PREVALENCES PREDICTED_PREVALENCES",
		Short: "Score a prediction file against ground truth",
		Long: `Validates the prediction and ground-truth files for TASK and prints the mean
absolute error and mean relative absolute error as

  MAE: 0.1234
  MRAE: 1.2345

With --output the same lines are also written to a file.`,
		Args: exactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runEvaluate(args[0], args[1], args[2], output, eps)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "also write the scores to this file")
	cmd.Flags().Float64Var(&eps, "eps", 0, "RAE smoothing constant (default 1/(2*docs per sample))")
	return cmd
}

func (a *app) runEvaluate(taskName, truePath, predPath, output string, eps float64) error {
	if eps < 0 || eps >= 1 {
		return &usageError{fmt.Errorf("--eps must be between 0 and 1, got %v", eps)}
	}

	store, err := a.openStore()
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	report, err := a.harness(eps).Evaluate(taskName, truePath, predPath)
	entry := logging.CheckEntry{Operation: logging.OpEvaluate, Path: predPath, Task: taskName}
	if err != nil {
		a.logCheck(store, entry, err)
		return err
	}

	if store != nil {
		rec, recErr := store.RecordRun(history.RunRecord{
			Task:           report.Task,
			TruthPath:      truePath,
			PredictionPath: predPath,
			Samples:        report.Samples,
			Epsilon:        report.Epsilon,
			MAE:            report.MAE,
			MRAE:           report.MRAE,
		})
		if recErr != nil {
			a.logger.Warn("run history write failed", "error", recErr)
		} else {
			entry.RunID = rec.RunID
			a.logger.Debug("run recorded", "run_id", rec.RunID)
		}
	}
	a.logCheck(store, entry, nil)

	fmt.Fprint(a.stdout, eval.FormatReport(report))
	if output != "" {
		if err := eval.WriteReport(output, report); err != nil {
			return err
		}
	}
	return nil
}
