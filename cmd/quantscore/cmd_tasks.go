package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/quantscore/internal/task"
)

func newTasksCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tasks",
		Short: "List the known tasks and their submission shape",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg := task.Default()
			fmt.Fprintf(a.stdout, "%-6s  %7s  %7s  %11s  %s\n", "Task", "Classes", "Samples", "Docs/Sample", "Epsilon")
			for _, name := range reg.Names() {
				d, _ := reg.Resolve(name)
				fmt.Fprintf(a.stdout, "%-6s  %7d  %7d  %11d  %g\n",
					d.Name, d.Classes, d.Samples, d.DocsPerSample, d.DefaultEpsilon())
			}
			return nil
		},
	}
}
