package main

import (
	"fmt"
	"log"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/offline"
	logsvc "github.com/trezcool/darasa/services/logger"
	webapisvc "github.com/trezcool/darasa/services/webapi"
	"github.com/trezcool/darasa/storage/database"
)

func main() {
	conf := core.NewConfig()

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	// set up DB
	db, err := database.Open(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("opening store: %v", err), err)
	}
	defer func() { _ = db.Close() }()
	store := database.NewStore(db)

	validate := validator.New()
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	core.InitValidators(validate, translator)

	token := func() string { return os.Getenv("DARASA_AUTH_TOKEN") }
	client := webapisvc.NewClient(conf, token)

	cli := commandLine{
		conf:     conf,
		db:       db,
		store:    store,
		queue:    offline.NewQueue(store, validate, token, logger),
		client:   client,
		dispatch: client,
		logger:   logger,
	}
	if err := cli.run(os.Args[1:]); err != nil {
		logger.Error(fmt.Sprintf("%v", err), err)
		os.Exit(1)
	}
}
