package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/quantscore/internal/logging"
)

func newCheckFormatCmd(a *app) *cobra.Command {
	var taskName string

	cmd := &cobra.Command{
		Use:   "check-format SUBMISSION",
		Short: "Check that a submission file is well formed",
		Long: `Parses SUBMISSION and runs every validation check. Without --task the task is
inferred from the number of classes and samples in the file.`,
		Args: exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runCheckFormat(args[0], taskName)
		},
	}
	cmd.Flags().StringVarP(&taskName, "task", "t", "", "task the submission is for (T1A, T1B, T2A, T2B)")
	return cmd
}

func (a *app) runCheckFormat(path, taskName string) error {
	store, err := a.openStore()
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	d, err := a.harness(0).CheckFormat(path, taskName)
	if taskName == "" {
		taskName = d.Name
	}
	a.logCheck(store, logging.CheckEntry{Operation: logging.OpCheckFormat, Path: path, Task: taskName}, err)

	if err != nil {
		fmt.Fprintf(a.stdout, "Format check: failed: %v\n", err)
		return errReported
	}
	fmt.Fprintln(a.stdout, "Format check: passed")
	a.logger.Debug("format check passed", "path", path, "task", d.Name)
	return nil
}
