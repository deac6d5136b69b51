package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"

	"github.com/jmoiron/sqlx"

	echogw "github.com/trezcool/darasa/apps/gateway/echo"
	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/connectivity"
	"github.com/trezcool/darasa/core/offline"
	logsvc "github.com/trezcool/darasa/services/logger"
	webapisvc "github.com/trezcool/darasa/services/webapi"
	"github.com/trezcool/darasa/storage/database"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	// set up loggers
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "GW : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	dbLogger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	dbLogger.Enable(!conf.Debug)

	// set up DB
	db, err := setUpDB(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = db.Close(); err != nil {
			dbLogger.Fatal("Failed to close", err)
		}
	}()
	store := database.NewStore(db)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Gateway initializing : version %q", conf.Build))
	defer logger.Info("Gateway stopped")

	// the upstream session token; refreshed out of band by the portal
	token := func() string { return os.Getenv("DARASA_AUTH_TOKEN") }

	monitor := connectivity.NewMonitor()
	client := webapisvc.NewClient(conf, token)

	// no sync engine here: the server's own replayer drains the pending
	// collections on the offline-to-online edge and on sync signals, so a
	// second drain in the same process would double-dispatch actions
	preloader := offline.NewPreloader(monitor, logger, conf.Offline.PreloadIdleInterval)
	preloads := webapisvc.NewPreloads(preloader, client, store)
	preloads.EssentialData()
	preloads.UserProgress()
	preloader.Start(context.Background())
	defer preloader.Stop()

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err = http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start Gateway Service

	server := echogw.NewServer(
		echogw.Deps{
			Conf:       conf,
			Logger:     logger,
			Store:      store,
			Monitor:    monitor,
			Preloader:  preloader,
			Dispatcher: client,
		},
	)
	server.Start()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

func setUpDB(conf *core.Config) (*sqlx.DB, error) {
	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}
	if err = database.Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

