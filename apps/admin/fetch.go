package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/trezcool/darasa/core/offline"
)

func (cli *commandLine) fetchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fetch <path>",
		Short: "Read an API path, falling back to the offline cache when the network fails",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			var maxAge time.Duration
			if cli.conf != nil {
				maxAge = cli.conf.Offline.CacheMaxAge
			}
			cache := offline.NewReadThrough(cli.store, cli.logger, maxAge)
			res, err := cache.Request(cmd.Context(), cli.client.Op(path), nil, "GET "+path)
			if err != nil {
				return err
			}
			if res.FromCache {
				fmt.Fprintln(cmd.ErrOrStderr(), "(served from offline cache)")
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(res.Data))
			return nil
		},
	}
}
