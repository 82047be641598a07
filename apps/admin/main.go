package main

import (
	"context"
	"log"
	"os"

	"github.com/go-playground/validator/v10"

	"github.com/LukaszKielczewski66/fightclub/core"
	"github.com/LukaszKielczewski66/fightclub/core/account"
	"github.com/LukaszKielczewski66/fightclub/services/logger"
	"github.com/LukaszKielczewski66/fightclub/storage"
)

func main() {
	conf := core.NewConfig()
	logger := logsvc.NewStdLogger(log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile))

	// set up DB & repos; migrations are left to the migrate command
	repos, err := storage.Open(context.Background(), conf, false /* migrate */)
	if err != nil {
		logger.Fatal("opening storage", err)
	}

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	account.InitValidators(validate, translator)

	// start CLI
	cli := commandLine{
		db:        repos.SQL,
		accSvc:    account.NewService(repos.Accounts),
		validate:  validate,
		secretKey: conf.SecretKey,
		appName:   conf.AppName,
		tokenTTL:  conf.Server.JWTExpirationDelta,
		out:       os.Stdout,
	}
	err = cli.run(os.Args)
	_ = repos.Store.Close()
	if err != nil {
		if err != errHelp {
			logger.Error("admin command failed", err)
		}
		os.Exit(1)
	}
}
