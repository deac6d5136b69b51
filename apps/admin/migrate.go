package main

import (
	"github.com/spf13/cobra"

	"github.com/trezcool/darasa/storage/database"
)

var migrateFunc = database.Migrate // mockable

func (cli *commandLine) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending store migrations and record the schema version",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return migrateFunc(cli.db)
		},
	}
}
