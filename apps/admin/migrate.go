package main

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/absensi/storage"
	"github.com/trezcool/absensi/storage/database"
)

// mockable
var (
	openDBFunc    = database.Open
	migrateUpFunc = database.Migrate
	rollbackFunc  = database.Rollback
	versionFunc   = database.Version
)

func (cli *commandLine) migrate(ctx context.Context, command string) error {
	if cli.conf.Store.Engine != storage.EnginePostgres {
		return errors.Errorf("migrations need the %s store (store.engine is %q)", storage.EnginePostgres, cli.conf.Store.Engine)
	}

	var run func(ctx context.Context, db *sqlx.DB) error
	switch command {
	case "up":
		run = migrateUpFunc
	case "down":
		run = rollbackFunc
	case "version":
		run = cli.printVersion
	default:
		return errors.Errorf("%q: no such command", command)
	}

	db, err := openDBFunc(ctx, cli.conf)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}
	if err = run(ctx, db); err != nil {
		return err
	}
	if command != "version" {
		return cli.printVersion(ctx, db)
	}
	return nil
}

func (cli *commandLine) printVersion(ctx context.Context, db *sqlx.DB) error {
	v, err := versionFunc(ctx, db)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "schema version: %d\n", v)
	return nil
}
