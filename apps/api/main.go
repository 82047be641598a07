package main

import (
	"context"
	"log"
	"net/http"
	_ "net/http/pprof" // register the /debug/pprof handlers
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"github.com/go-playground/validator/v10"

	"github.com/LukaszKielczewski66/fightclub/apps/api/echo"
	"github.com/LukaszKielczewski66/fightclub/core"
	"github.com/LukaszKielczewski66/fightclub/core/account"
	"github.com/LukaszKielczewski66/fightclub/core/attendance"
	"github.com/LukaszKielczewski66/fightclub/core/session"
	"github.com/LukaszKielczewski66/fightclub/services/logger"
	"github.com/LukaszKielczewski66/fightclub/storage"
)

func main() {
	conf := core.NewConfig()
	logger := logsvc.NewRollbarLogger(log.New(os.Stderr, "", log.LstdFlags|log.Lshortfile), conf)

	if err := run(conf, logger); err != nil {
		logger.Fatal("api stopped", err)
	}
}

func run(conf *core.Config, logger core.Logger) error {
	ctx := context.Background()

	// set up DB & repos
	repos, err := storage.Open(ctx, conf, true /* migrate */)
	if err != nil {
		return err
	}
	defer func() { _ = repos.Store.Close() }()

	// set up validators
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	account.InitValidators(validate, translator)
	session.InitValidators(validate, translator)

	// set up services
	accSvc := account.NewService(repos.Accounts)
	conflicts := session.NewConflictChecker(repos.Sessions, conf.Schedule.ConflictPolicy)
	sessSvc := session.NewService(repos.Sessions, accSvc, conflicts, validate, conf.Schedule.Location(), logger)
	attSvc := attendance.NewService(repos.Attendance, repos.Sessions, accSvc, conf.Schedule.PastLimit, logger)

	// start debug server
	if conf.Debug && conf.Server.DebugAddress != "" {
		go func() {
			if err := http.ListenAndServe(conf.Server.DebugAddress, http.DefaultServeMux); err != nil {
				logger.Error("debug server stopped", err)
			}
		}()
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// start API server
	app := echoapi.NewServer(
		&echoapi.Options{
			Address:      conf.Server.Address,
			Debug:        conf.Debug,
			TestMode:     conf.TestMode,
			SecretKey:    conf.SecretKey,
			AppName:      conf.AppName,
			ReadTimeout:  conf.Server.ReadTimeout,
			WriteTimeout: conf.Server.WriteTimeout,
		},
		func() { shutdown <- syscall.SIGTERM },
		&echoapi.Deps{
			Logger:        logger,
			Store:         repos.Store,
			SessionSvc:    sessSvc,
			AttendanceSvc: attSvc,
			Validate:      validate,
			Translator:    translator,
		},
	)
	go app.Start()

	logger.Info("api started", map[string]interface{}{
		"address":        conf.Server.Address,
		"engine":         conf.Database.Engine,
		"conflictPolicy": conflicts.Policy(),
		"timezone":       conf.Schedule.Location().String(),
	})

	sig := <-shutdown
	logger.Info("api shutting down", map[string]interface{}{"signal": sig.String()})

	ctx, cancel := context.WithTimeout(ctx, conf.Server.ShutdownTimeout)
	defer cancel()
	return app.Stop(ctx)
}
