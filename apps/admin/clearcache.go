package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/trezcool/darasa/core/offline"
)

func (cli *commandLine) clearCacheCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear-cache [collection...]",
		Short: "Drop cached responses; defaults to the API and static caches",
		RunE: func(cmd *cobra.Command, args []string) error {
			colls := []string{offline.CollectionAPICache, offline.CollectionStaticCache}
			if len(args) > 0 {
				for _, coll := range args {
					if !knownCollection(coll) {
						return fmt.Errorf("unknown collection %q", coll)
					}
				}
				colls = args
			}
			if err := cli.store.Clear(cmd.Context(), colls...); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "cleared %v\n", colls)
			return nil
		},
	}
}

func knownCollection(name string) bool {
	for _, coll := range offline.Collections() {
		if coll == name {
			return true
		}
	}
	return false
}
