package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"

	"github.com/trezcool/absensi/apps/api/echo"
	"github.com/trezcool/absensi/core"
	"github.com/trezcool/absensi/core/attendance"
	"github.com/trezcool/absensi/core/roster"
	"github.com/trezcool/absensi/services/email"
	"github.com/trezcool/absensi/services/export"
	"github.com/trezcool/absensi/services/logger"
	"github.com/trezcool/absensi/storage"
	"github.com/trezcool/absensi/storage/remote"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	// set up loggers
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug && conf.RollbarToken != "")

	storeLogger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "STORE : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)

	policy, err := attendance.NewPolicy(conf.Attendance)
	if err != nil {
		logger.Fatal(fmt.Sprintf("attendance policy: %v", err), err)
	}

	// set up the local store
	store, closeStore, err := storage.OpenLocalStore(context.Background(), conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up local store: %v", err), err)
	}
	defer func() {
		if err = closeStore(); err != nil {
			storeLogger.Error("Failed to close", err)
		}
	}()
	storeLogger.Info(fmt.Sprintf("using the %q store", conf.Store.Engine))

	if conf.Remote.BaseURL == "" {
		logger.Warn("remote.baseURL is not set: every remote call will fail")
	}
	client := remote.NewClient(conf.Remote, logger)

	validate, translator := core.NewValidator()
	roster.InitValidators(validate, translator)

	// set up services
	bus := core.NewBus()
	rosterSvc := roster.NewService(client, store, bus, logger, conf.Remote.RosterTTL)
	defer rosterSvc.Close()

	attSvc := attendance.NewService(attendance.Deps{
		Remote:     client,
		Students:   rosterSvc,
		Store:      store,
		Bus:        bus,
		Logger:     logger,
		Validate:   validate,
		Policy:     policy,
		Location:   conf.Attendance.Location(),
		SchoolName: conf.SchoolName,
	})
	defer attSvc.Close()

	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf, logger)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)
	expvar.NewString("store").Set(conf.Store.Engine)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:       conf,
			Logger:     logger,
			Attendance: attSvc,
			Roster:     rosterSvc,
			Renderer:   exportsvc.NewRenderer(),
			Mailer:     mailSvc,
			Validate:   validate,
			Translator: translator,
		},
	)

	go func() {
		server.Start()
	}()

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

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}
