package sqlxdb

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/absensi/core"
)

type localStore struct {
	db *sqlx.DB
}

var _ core.KeyValueStore = (*localStore)(nil)

// NewLocalStore keeps the local data in the local_store table.
func NewLocalStore(db *sqlx.DB) core.KeyValueStore {
	return &localStore{db: db}
}

func (s *localStore) Get(ctx context.Context, key string) (string, bool, error) {
	var val string
	err := s.db.GetContext(ctx, &val, `SELECT value FROM local_store WHERE key = $1`, key)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return "", false, nil
	case err != nil:
		return "", false, errors.Wrapf(err, "getting %s", key)
	}
	return val, true, nil
}

func (s *localStore) Set(ctx context.Context, key, value string) error {
	const q = `
		INSERT INTO local_store (key, value, updated_at) VALUES (:key, :value, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`
	_, err := s.db.NamedExecContext(ctx, q, map[string]interface{}{"key": key, "value": value})
	return errors.Wrapf(err, "setting %s", key)
}

func (s *localStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	_, err := s.db.ExecContext(ctx, `DELETE FROM local_store WHERE key = ANY($1)`, pq.Array(keys))
	return errors.Wrap(err, "deleting keys")
}

func (s *localStore) Keys(ctx context.Context) ([]string, error) {
	keys := make([]string, 0)
	if err := s.db.SelectContext(ctx, &keys, `SELECT key FROM local_store ORDER BY key`); err != nil {
		return nil, errors.Wrap(err, "listing keys")
	}
	return keys, nil
}
