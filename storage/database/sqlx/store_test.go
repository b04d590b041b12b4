package sqlxdb

import (
	"context"
	"os"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/absensi/core"
	"github.com/trezcool/absensi/storage/database"
)

// openTestDB connects to TEST_DATABASE_URL, skipping the test when it is not set.
func openTestDB(t *testing.T) *sqlx.DB {
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	db, err := sqlx.Open("postgres", url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	require.NoError(t, database.Migrate(ctx, db))
	_, err = db.ExecContext(ctx, `TRUNCATE local_store`)
	require.NoError(t, err)
	return db
}

func TestLocalStore(t *testing.T) {
	ctx := context.Background()
	store := NewLocalStore(openTestDB(t))

	_, ok, err := store.Get(ctx, core.KeyStudents)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, core.KeyStudents, "[]"))
	require.NoError(t, store.Set(ctx, core.KeyStudents, `[{"nisn":"1"}]`))
	require.NoError(t, store.Set(ctx, "theme", "dark"))

	val, ok, err := store.Get(ctx, core.KeyStudents)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[{"nisn":"1"}]`, val)

	removed, err := core.ClearLocalData(ctx, store)
	require.NoError(t, err)
	assert.Contains(t, removed, core.KeyStudents)

	keys, err := store.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"theme"}, keys)
}
