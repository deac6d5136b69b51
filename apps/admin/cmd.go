package main

import (
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/offline"
	webapisvc "github.com/trezcool/darasa/services/webapi"
)

type commandLine struct {
	conf     *core.Config
	db       *sqlx.DB
	store    offline.Store
	queue    *offline.Queue
	client   *webapisvc.Client
	dispatch offline.Dispatcher
	logger   core.Logger
}

func (cli *commandLine) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "admin",
		Short:         "Darasa offline store administration",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		cli.migrateCmd(),
		cli.statusCmd(),
		cli.pendingCmd(),
		cli.enqueueCmd(),
		cli.syncCmd(),
		cli.fetchCmd(),
		cli.clearCacheCmd(),
		cli.preloadCmd(),
	)
	return root
}

func (cli *commandLine) run(args []string) error {
	root := cli.rootCmd()
	root.SetArgs(args)
	return root.Execute()
}
