package inmemdb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/absensi/core"
)

func TestLocalStore(t *testing.T) {
	ctx := context.Background()
	store := NewLocalStore(Open())

	_, ok, err := store.Get(ctx, core.KeyStudents)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, core.KeyStudents, "[]"))
	require.NoError(t, store.Set(ctx, "theme", "dark"))
	val, ok, err := store.Get(ctx, core.KeyStudents)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "[]", val)

	keys, err := store.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{core.KeyStudents, "theme"}, keys)

	require.NoError(t, store.Delete(ctx, core.KeyStudents, "missing"))
	keys, _ = store.Keys(ctx)
	assert.Equal(t, []string{"theme"}, keys)
}

func TestClearLocalData(t *testing.T) {
	ctx := context.Background()
	store := NewLocalStore(Open())

	for _, k := range []string{
		core.KeyStudents, core.KeySchoolData, core.KeyAttendanceDraft,
		"lastStudentFilter", "SiswaBaru", "recapData", "theme", "sidebarCollapsed",
	} {
		require.NoError(t, store.Set(ctx, k, "x"))
	}

	removed, err := core.ClearLocalData(ctx, store)
	require.NoError(t, err)
	assert.Contains(t, removed, "lastStudentFilter")
	assert.Contains(t, removed, "SiswaBaru")
	assert.Contains(t, removed, "recapData")
	assert.Contains(t, removed, core.KeyClasses)

	keys, err := store.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"sidebarCollapsed", "theme"}, keys)
}
