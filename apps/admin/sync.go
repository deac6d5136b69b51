package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/trezcool/darasa/core/connectivity"
	"github.com/trezcool/darasa/core/offline"
)

func (cli *commandLine) syncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Replay queued actions against the upstream API now",
		RunE: func(cmd *cobra.Command, _ []string) error {
			engine := offline.NewEngine(cli.queue, cli.dispatch, connectivity.NewMonitor(), cli.logger)
			if err := engine.Sync(cmd.Context()); err != nil {
				return err
			}
			if left := cli.queue.Pending(); left > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "sync finished; %d action(s) left queued\n", left)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), "sync finished; queue empty")
			return nil
		},
	}
}
