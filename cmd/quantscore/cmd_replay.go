package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/quantscore/internal/replay"
)

func newReplayCmd(a *app) *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "replay FIXTURE...",
		Short: "Score JSON regression fixtures and compare against expected results",
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.MinimumNArgs(1)(cmd, args); err != nil {
				return &usageError{err}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			failed := 0
			for _, path := range args {
				n, err := a.replayFixture(path, verbose)
				if err != nil {
					return err
				}
				failed += n
			}
			if failed > 0 {
				fmt.Fprintf(a.stderr, "%d case(s) failed\n", failed)
				return errReported
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print passing cases too")
	return cmd
}

// replayFixture runs one fixture file and returns the number of failed cases.
func (a *app) replayFixture(path string, verbose bool) (int, error) {
	f, err := replay.LoadFixture(path)
	if err != nil {
		return 0, err
	}
	results, err := replay.Replay(f, a.logger)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", path, err)
	}

	fmt.Fprintf(a.stdout, "%s: %s\n", path, f.Description)
	for _, r := range results {
		switch {
		case !r.Passed:
			fmt.Fprintf(a.stdout, "  FAIL  %s: %s\n", r.Name, r.Reason)
		case verbose && r.Err != nil:
			fmt.Fprintf(a.stdout, "  ok    %s (%s)\n", r.Name, r.ErrorKind)
		case verbose:
			fmt.Fprintf(a.stdout, "  ok    %s (MAE %.4f, MRAE %.4f)\n", r.Name, r.Report.MAE, r.Report.MRAE)
		}
	}
	s := replay.Summarize(results)
	fmt.Fprintf(a.stdout, "  %d cases: %d passed, %d failed\n", s.TotalCases, s.Passed, s.Failed)
	return s.Failed, nil
}
