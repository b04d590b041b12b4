package main

import (
	"context"
	"log"
	"os"

	"github.com/trezcool/absensi/core"
	"github.com/trezcool/absensi/core/attendance"
	"github.com/trezcool/absensi/core/roster"
	"github.com/trezcool/absensi/services/export"
	"github.com/trezcool/absensi/services/logger"
	"github.com/trezcool/absensi/storage"
	"github.com/trezcool/absensi/storage/remote"
)

var logger *logsvc.RollbarLogger

func main() {
	conf := core.NewConfig()

	logger = logsvc.NewRollbarLogger(
		log.New(os.Stderr, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(false)

	policy, err := attendance.NewPolicy(conf.Attendance)
	errAndDie(err)

	// set up the local store
	store, closeStore, err := storage.OpenLocalStore(context.Background(), conf)
	errAndDie(err)

	client := remote.NewClient(conf.Remote, logger)
	validate, translator := core.NewValidator()
	roster.InitValidators(validate, translator)

	bus := core.NewBus()
	rosterSvc := roster.NewService(client, store, bus, logger, conf.Remote.RosterTTL)
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

	// start CLI
	cli := commandLine{
		conf:       conf,
		roster:     rosterSvc,
		attendance: attSvc,
		renderer:   exportsvc.NewRenderer(),
		out:        os.Stdout,
	}
	err = cli.run(os.Args)

	attSvc.Close()
	rosterSvc.Close()
	if cErr := closeStore(); cErr != nil {
		logger.Error("closing local store", cErr)
	}
	if err != nil {
		if err != errHelp {
			logger.Error(err.Error(), err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err.Error(), err)
	}
}
