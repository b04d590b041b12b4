// Package storage opens the local key-value store selected by the configuration.
package storage

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/absensi/core"
	"github.com/trezcool/absensi/storage/database"
	inmemdb "github.com/trezcool/absensi/storage/database/inmem"
	sqlxdb "github.com/trezcool/absensi/storage/database/sqlx"
	redisdb "github.com/trezcool/absensi/storage/redis"
)

const (
	EngineMemory   = "memory"
	EnginePostgres = "postgres"
	EngineRedis    = "redis"
)

// OpenLocalStore opens the store of conf.Store.Engine. The postgres database is created
// and migrated if needed. close releases the underlying connection.
func OpenLocalStore(ctx context.Context, conf *core.Config) (store core.KeyValueStore, close func() error, err error) {
	switch conf.Store.Engine {
	case "", EngineMemory:
		return inmemdb.NewLocalStore(inmemdb.Open()), func() error { return nil }, nil

	case EnginePostgres:
		if err := database.CreateIfNotExist(ctx, conf); err != nil {
			return nil, nil, errors.Wrap(err, "creating database")
		}
		db, err := database.Open(ctx, conf)
		if err != nil {
			return nil, nil, errors.Wrap(err, "opening database")
		}
		if err := database.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return nil, nil, errors.Wrap(err, "migrating database")
		}
		return sqlxdb.NewLocalStore(db), db.Close, nil

	case EngineRedis:
		rdb, err := redisdb.Open(ctx, conf.Redis)
		if err != nil {
			return nil, nil, errors.Wrap(err, "opening redis")
		}
		return redisdb.NewLocalStore(rdb, conf.Redis.KeyPrefix), rdb.Close, nil
	}
	return nil, nil, errors.Errorf("unknown store engine %q", conf.Store.Engine)
}
