package roster

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/absensi/core"
	"github.com/trezcool/absensi/storage/database/inmem"
)

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

type fakeRemote struct {
	students []Student
	err      error
	fetches  int
	added    []NewStudent
	edited   []UpdateStudent
	deleted  []string
}

func (f *fakeRemote) ListStudents(context.Context) ([]Student, error) {
	f.fetches++
	if f.err != nil {
		return nil, f.err
	}
	out := make([]Student, len(f.students))
	copy(out, f.students)
	return out, nil
}

func (f *fakeRemote) AddStudent(_ context.Context, ns NewStudent) (core.Delivery, error) {
	f.added = append(f.added, ns)
	return core.DeliveryUnconfirmed, f.err
}

func (f *fakeRemote) BulkAddStudents(_ context.Context, students []NewStudent) (core.Delivery, error) {
	f.added = append(f.added, students...)
	return core.DeliveryUnconfirmed, f.err
}

func (f *fakeRemote) EditStudent(_ context.Context, us UpdateStudent) (core.Delivery, error) {
	f.edited = append(f.edited, us)
	return core.DeliveryUnconfirmed, f.err
}

func (f *fakeRemote) DeleteStudent(_ context.Context, nisn string) (core.Delivery, error) {
	f.deleted = append(f.deleted, nisn)
	return core.DeliveryUnconfirmed, f.err
}

func newTestService(t *testing.T) (*Service, *fakeRemote, core.KeyValueStore) {
	remote := &fakeRemote{students: []Student{
		{NISN: null.StringFrom("001"), Name: null.StringFrom("Ani Lestari"), Class: null.StringFrom(" 7A ")},
		{ID: "s-2", NISN: null.StringFrom("002"), Name: null.StringFrom("Budi"), Class: null.StringFrom("undefined")},
		{NISN: null.StringFrom("003"), Name: null.StringFrom("Cici"), Class: null.StringFrom("8")},
	}}
	store := inmemdb.NewLocalStore(inmemdb.Open())
	svc := NewService(remote, store, core.NewBus(), nopLogger{}, time.Minute)
	t.Cleanup(svc.Close)
	return svc, remote, store
}

func TestService_List(t *testing.T) {
	svc, remote, store := newTestService(t)
	ctx := context.Background()

	students, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, students, 3)
	assert.Equal(t, "001", students[0].ID, "NISN stands in for a missing id")
	assert.Equal(t, "s-2", students[1].ID)
	assert.Equal(t, null.StringFrom("7A"), students[0].Class)
	assert.False(t, students[1].Class.Valid)

	_, err = svc.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, remote.fetches, "roster is cached")

	_, ok, _ := store.Get(ctx, core.KeyStudents)
	assert.True(t, ok)

	// a write drops the cache; the stored copy serves while the remote endpoint is down
	_, err = svc.Delete(ctx, "003")
	require.NoError(t, err)
	remote.err = errors.Wrap(core.ErrRemoteUnavailable, "dial tcp")
	students, err = svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, students, 3)
	assert.Equal(t, 2, remote.fetches)

	// application errors are not hidden
	remote.err = &core.RemoteError{Message: "Sheet Siswa not found"}
	_, err = svc.List(ctx)
	assert.True(t, core.IsRemoteError(err))
}

func TestService_List_refetch(t *testing.T) {
	svc, remote, _ := newTestService(t)
	ctx := context.Background()

	now := time.Date(2024, 5, 7, 8, 0, 0, 0, time.UTC)
	NowFunc = func() time.Time { return now }
	defer func() { NowFunc = time.Now }()

	students, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, students, 3)

	// edited directly in the spreadsheet
	remote.students = append(remote.students, Student{NISN: null.StringFrom("004"), Name: null.StringFrom("Dodi")})

	now = now.Add(30 * time.Second)
	students, _ = svc.List(ctx)
	assert.Len(t, students, 3)
	assert.Equal(t, 1, remote.fetches)

	now = now.Add(31 * time.Second)
	students, err = svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, students, 4)
	assert.Equal(t, 2, remote.fetches)

	t.Run("no ttl", func(t *testing.T) {
		remote := &fakeRemote{students: remote.students}
		svc := NewService(remote, inmemdb.NewLocalStore(inmemdb.Open()), core.NewBus(), nopLogger{}, 0)
		defer svc.Close()

		for i := 0; i < 3; i++ {
			_, err := svc.List(ctx)
			require.NoError(t, err)
		}
		assert.Equal(t, 3, remote.fetches)
	})
}

func TestService_Filter(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		filter QueryFilter
		want   []string
	}{
		{name: "all", filter: QueryFilter{Class: "Semua"}, want: []string{"001", "002", "003"}},
		{name: "class", filter: QueryFilter{Class: "7A"}, want: []string{"001"}},
		{name: "name contains", filter: QueryFilter{Name: "lestari"}, want: []string{"001"}},
		{name: "none", filter: QueryFilter{Class: "9"}, want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			students, err := svc.Filter(ctx, tt.filter)
			require.NoError(t, err)
			got := make([]string, 0, len(students))
			for _, s := range students {
				got = append(got, s.NISN.String)
			}
			assert.Equal(t, tt.want, got)
		})
	}

	s, err := svc.GetByNISN(ctx, " 003 ")
	require.NoError(t, err)
	assert.Equal(t, "Cici", s.Name.String)
	_, err = svc.GetByNISN(ctx, "999")
	assert.Equal(t, ErrNotFound, err)
}

func TestService_writes(t *testing.T) {
	svc, remote, _ := newTestService(t)
	ctx := context.Background()

	dlv, err := svc.Add(ctx, NewStudent{NISN: "004", Name: "Dedi", Class: "8"})
	require.NoError(t, err)
	assert.Equal(t, core.DeliveryUnconfirmed, dlv)

	n, _, err := svc.BulkAdd(ctx, BulkStudents{
		Class: "9",
		Names: []string{"Eka", "Fajar"},
		NISNs: []string{"005", "006"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, NewStudent{NISN: "006", Name: "Fajar", Class: "9"}, remote.added[2])

	_, err = svc.Update(ctx, UpdateStudent{OldNISN: "001", NewStudent: NewStudent{NISN: "010", Name: "Ani", Class: "7B"}})
	require.NoError(t, err)
	assert.Equal(t, "001", remote.edited[0].OldNISN)

	remote.err = errors.Wrap(core.ErrRemoteUnavailable, "timeout")
	_, err = svc.Add(ctx, NewStudent{NISN: "007"})
	assert.Equal(t, core.ErrRemoteUnavailable, errors.Cause(err))
}

func TestSuggestNames(t *testing.T) {
	students := []Student{
		{Name: null.StringFrom("Ani Lestari")},
		{Name: null.StringFrom("Budi Santoso")},
		{Name: null.StringFrom("Budi Santosa")},
		{},
	}
	assert.Equal(t, []string{"Ani Lestari", "Budi Santosa", "Budi Santoso"}, Names(students))
	got := SuggestNames(students, "budi santos", 3)
	assert.ElementsMatch(t, []string{"Budi Santoso", "Budi Santosa"}, got)
	assert.Equal(t, []string{"Budi Santoso"}, SuggestNames(students, "Budi Santoso", 1))
	assert.Equal(t, []string{"Ani Lestari"}, SuggestNames(students, " ANI LESTRI ", 3))
	assert.Empty(t, SuggestNames(students, "zzz", 3))
}
