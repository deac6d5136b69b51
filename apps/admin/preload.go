package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/trezcool/darasa/core/connectivity"
	"github.com/trezcool/darasa/core/offline"
	webapisvc "github.com/trezcool/darasa/services/webapi"
)

func (cli *commandLine) preloadCmd() *cobra.Command {
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "preload [courseID]",
		Short: "Fetch essential data, and a course's content, into the offline store",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pl := offline.NewPreloader(connectivity.NewMonitor(), cli.logger, 10*time.Millisecond)
			preloads := webapisvc.NewPreloads(pl, cli.client, cli.store)
			preloads.EssentialData()
			preloads.UserProgress()
			if len(args) > 0 {
				preloads.CourseContent(args[0])
			}

			pl.Start(cmd.Context())
			defer pl.Stop()

			deadline := time.Now().Add(timeout)
			for pl.Pending() > 0 {
				if time.Now().After(deadline) {
					return fmt.Errorf("preload timed out with %d task(s) left", pl.Pending())
				}
				time.Sleep(50 * time.Millisecond)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "preload complete")
			return nil
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", time.Minute, "give up after this long")
	return cmd
}
