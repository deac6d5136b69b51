package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func (cli *commandLine) pendingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pending",
		Short: "List queued actions awaiting replay, oldest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			actions, err := cli.queue.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(actions) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no pending actions")
				return nil
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tKIND\tREQUEST\tENQUEUED")
			for _, a := range actions {
				fmt.Fprintf(w, "%s\t%s\t%s %s\t%s\n",
					a.ID, a.Kind, a.Method, a.Endpoint, a.EnqueuedAt.Format(time.RFC3339))
			}
			return w.Flush()
		},
	}
}
