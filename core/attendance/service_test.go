package attendance

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/absensi/core"
	"github.com/trezcool/absensi/core/roster"
	"github.com/trezcool/absensi/storage/database/inmem"
)

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

type fakeRemote struct {
	school   SchoolInfo
	recap    []RecapRow
	graph    GraphData
	history  []HistoryRow
	err      error
	delivery core.Delivery

	recapClass  string
	recapMonth  time.Month
	recapSem    int
	submitted   []DailyEntry
	updates     []Update
	clearedTab  string
	deletedData bool
}

func (f *fakeRemote) SchoolInfo(context.Context) (SchoolInfo, error) { return f.school, f.err }

func (f *fakeRemote) MonthlyRecap(_ context.Context, class string, month time.Month) ([]RecapRow, error) {
	f.recapClass, f.recapMonth = class, month
	return f.recap, f.err
}

func (f *fakeRemote) SemesterRecap(_ context.Context, class string, semester int) ([]RecapRow, error) {
	f.recapClass, f.recapSem = class, semester
	return f.recap, f.err
}

func (f *fakeRemote) GraphData(_ context.Context, class string, semester int) (GraphData, error) {
	f.recapClass, f.recapSem = class, semester
	return f.graph, f.err
}

func (f *fakeRemote) AttendanceHistory(context.Context) ([]HistoryRow, error) {
	return f.history, f.err
}

func (f *fakeRemote) SubmitAttendance(_ context.Context, entries []DailyEntry) (core.Delivery, error) {
	if f.err != nil {
		return "", f.err
	}
	f.submitted = entries
	return f.delivery, nil
}

func (f *fakeRemote) BulkUpdateAttendance(_ context.Context, updates []Update) (core.Delivery, error) {
	if f.err != nil {
		return "", f.err
	}
	f.updates = updates
	return f.delivery, nil
}

func (f *fakeRemote) DeleteAllAttendance(_ context.Context, sheetName string) (core.Delivery, error) {
	f.clearedTab = sheetName
	return f.delivery, f.err
}

func (f *fakeRemote) DeleteAllData(context.Context) (core.Delivery, error) {
	if f.err != nil {
		return "", f.err
	}
	f.deletedData = true
	return core.DeliveryConfirmed, nil
}

type fakeStudents []roster.Student

func (f fakeStudents) List(context.Context) ([]roster.Student, error) { return f, nil }

func student(nisn, name, class string) roster.Student {
	return roster.Student{ID: nisn, NISN: null.StringFrom(nisn), Name: null.StringFrom(name), Class: null.StringFrom(class)}
}

type testEnv struct {
	svc    *Service
	remote *fakeRemote
	store  core.KeyValueStore
	bus    *core.Bus
}

func newTestEnv(t *testing.T, policy Policy) testEnv {
	validate, _ := core.NewValidator()
	remote := &fakeRemote{delivery: core.DeliveryUnconfirmed}
	store := inmemdb.NewLocalStore(inmemdb.Open())
	bus := core.NewBus()
	svc := NewService(Deps{
		Remote: remote,
		Students: fakeStudents{
			student("001", "Ani", "7A"),
			student("002", "Budi", "7A"),
			student("003", "Cici", "8"),
		},
		Store:      store,
		Bus:        bus,
		Logger:     nopLogger{},
		Validate:   validate,
		Policy:     policy,
		Location:   time.FixedZone("UTC+7", 7*60*60),
		SchoolName: "SMP Negeri 1",
	})
	t.Cleanup(svc.Close)
	return testEnv{svc: svc, remote: remote, store: store, bus: bus}
}

func TestService_Recap(t *testing.T) {
	env := newTestEnv(t, DefaultPolicy())
	env.remote.recap = []RecapRow{
		recapRow("Ani", "7A", 5, 1, 0, 2),
		recapRow("Budi", "7A", 3, 0, 1, 0),
	}

	view, err := env.svc.Recap(context.Background(), RecapQuery{Period: Monthly, Month: "mei"})
	require.NoError(t, err)
	assert.Equal(t, "", env.remote.recapClass, "Semua is sent as an empty class")
	assert.Equal(t, time.May, env.remote.recapMonth)
	assert.Equal(t, "Mei", view.Label)
	assert.Equal(t, All, view.Class)
	assert.Equal(t, StatusSummary{Present: 8, Absent: 1, ExcusedLeave: 1, Sick: 2}, view.Summary)
	assert.Equal(t, "66.67%", view.Percentages["Hadir"])
	assert.Equal(t, []string{"Ani", "Budi"}, view.Names)

	view, err = env.svc.Recap(context.Background(), RecapQuery{Period: Semester, Semester: 1, Class: "7A", Name: "Budi"})
	require.NoError(t, err)
	assert.Equal(t, "7A", env.remote.recapClass)
	assert.Equal(t, 1, env.remote.recapSem)
	assert.Len(t, view.Rows, 1)
	assert.Equal(t, StatusSummary{Present: 3, ExcusedLeave: 1}, view.Summary)

	_, err = env.svc.Recap(context.Background(), RecapQuery{Period: Semester, Semester: 3})
	assert.IsType(t, &core.ValidationError{}, err)

	env.remote.err = &core.RemoteError{Action: "monthlyRecap", Message: "Sheet not found"}
	view, err = env.svc.Recap(context.Background(), RecapQuery{Period: Monthly, Month: "1"})
	assert.True(t, core.IsRemoteError(err))
	assert.Empty(t, view.Rows)
	assert.NotNil(t, view.Rows)
}

func TestService_Report(t *testing.T) {
	env := newTestEnv(t, DefaultPolicy())
	env.remote.recap = []RecapRow{recapRow("Ani", "7A", 5, 1, 0, 2)}
	env.remote.school = SchoolInfo{Name: null.StringFrom("SMP Harapan")}

	report, err := env.svc.Report(context.Background(), RecapQuery{Period: Monthly, Month: "5", Class: "7A"})
	require.NoError(t, err)
	assert.Equal(t, "Rekap Absensi Bulan Mei", report.Title)
	assert.Equal(t, "SMP Harapan", report.SchoolName)
	assert.Len(t, report.Table, 4)
	assert.Equal(t, "rekap_mei_7a.xlsx", report.FileName("xlsx"))

	// stored school data is served when the remote endpoint is down
	env.remote.err = errors.Wrap(core.ErrRemoteUnavailable, "dial tcp")
	info, err := env.svc.School(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "SMP Harapan", info.Name.String)
}

func TestService_History(t *testing.T) {
	env := newTestEnv(t, DefaultPolicy())
	env.remote.history = []HistoryRow{
		historyRow("2024-05-06T17:00:00.000Z", " Ani ", "001", "7A", "Hadir"),
		historyRow("07/05/2024", "Budi", "002", "7A", "=IF(A1)"),
		historyRow("08/05/2024", "Budi", "002", "7A", "Alpha"),
		historyRow("#REF!", "Cici", "003", "8", "Sakit"),
	}
	ctx := context.Background()

	view, err := env.svc.History(ctx, HistoryQuery{Class: All})
	require.NoError(t, err)
	assert.Equal(t, 2, view.Rejected)
	assert.Equal(t, []HistoryRow{
		historyRow("07/05/2024", "Ani", "001", "7A", "Hadir"),
		historyRow("08/05/2024", "Budi", "002", "7A", "Alpha"),
	}, view.Rows)
	assert.Equal(t, StatusSummary{Present: 1, Absent: 1}, view.Summary)

	id := env.svc.Sessions().Create()
	pending, err := env.svc.SetEdit(id, EditRequest{Date: "2024-05-07", NISN: "001", Status: "Sakit"})
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	_, err = env.svc.SetEdit(id, EditRequest{Date: "2024-05-07", NISN: "001", Status: "Bolos"})
	assert.Error(t, err)

	view, err = env.svc.History(ctx, HistoryQuery{Session: id, Date: "2024-05-07"})
	require.NoError(t, err)
	require.Len(t, view.Rows, 1)
	assert.Equal(t, "Sakit", view.Rows[0].Status)
	assert.Equal(t, StatusSummary{Sick: 1}, view.Summary)

	res, err := env.svc.Commit(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, CommitResult{Sent: 1, Delivery: core.DeliveryUnconfirmed}, res)
	assert.Equal(t, []Update{{Date: "07/05/2024", NISN: "001", Status: Sick}}, env.remote.updates)

	view, err = env.svc.History(ctx, HistoryQuery{Session: id, Date: "07/05/2024"})
	require.NoError(t, err)
	assert.Equal(t, "Hadir", view.Rows[0].Status, "committed edits are cleared")

	_, err = env.svc.History(ctx, HistoryQuery{Session: "unknown"})
	assert.Equal(t, ErrSessionNotFound, err)
}

func TestService_SheetAndSubmit(t *testing.T) {
	ctx := context.Background()

	t.Run("present by default", func(t *testing.T) {
		env := newTestEnv(t, DefaultPolicy())
		env.remote.history = []HistoryRow{historyRow("07/05/2024", "Budi", "002", "7A", "Izin")}

		sheet, err := env.svc.Sheet(ctx, "2024-05-07", "7A")
		require.NoError(t, err)
		assert.Equal(t, "07/05/2024", sheet.WireDate)
		assert.Equal(t, []SheetEntry{
			{NISN: "001", Name: "Ani", Class: "7A", Status: Present},
			{NISN: "002", Name: "Budi", Class: "7A", Status: ExcusedLeave},
		}, sheet.Entries)

		dlv, err := env.svc.SubmitAttendance(ctx, Submission{
			Date:  "2024-05-07",
			Class: "7A",
			Entries: []SheetEntry{
				{NISN: "001", Name: "Ani"},
				{NISN: "002", Name: "Budi", Status: Sick},
			},
		})
		require.NoError(t, err)
		assert.Equal(t, core.DeliveryUnconfirmed, dlv)
		assert.Equal(t, []DailyEntry{
			{Date: "07/05/2024", Name: "Ani", Class: "7A", NISN: "001", Status: Present},
			{Date: "07/05/2024", Name: "Budi", Class: "7A", NISN: "002", Status: Sick},
		}, env.remote.submitted)
	})

	t.Run("unmarked without default", func(t *testing.T) {
		env := newTestEnv(t, Policy{UnmarkedDefault: Unmarked})

		sheet, err := env.svc.Sheet(ctx, "2024-05-07", "8")
		require.NoError(t, err)
		require.Len(t, sheet.Entries, 1)
		assert.Equal(t, Unmarked, sheet.Entries[0].Status)

		_, err = env.svc.SubmitAttendance(ctx, Submission{
			Date:    "2024-05-07",
			Entries: []SheetEntry{{NISN: "003", Name: "Cici"}},
		})
		var vErr *core.ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "entries[0].status", vErr.Fields[0].Field)
		assert.Nil(t, env.remote.submitted, "nothing is sent")
	})

	t.Run("draft", func(t *testing.T) {
		env := newTestEnv(t, DefaultPolicy())
		require.NoError(t, env.svc.SaveDraft(ctx, Submission{
			Date:    "2024-05-07",
			Class:   "7A",
			Entries: []SheetEntry{{NISN: "001", Status: Absent}},
		}))

		sheet, err := env.svc.Sheet(ctx, "2024-05-07", "7A")
		require.NoError(t, err)
		assert.True(t, sheet.Draft)
		assert.Equal(t, Absent, sheet.Entries[0].Status)
		assert.Equal(t, Present, sheet.Entries[1].Status)

		_, err = env.svc.SubmitAttendance(ctx, Submission{Date: "2024-05-07", Entries: []SheetEntry{{NISN: "001"}}})
		require.NoError(t, err)
		_, ok, _ := env.store.Get(ctx, core.KeyAttendanceDraft)
		assert.False(t, ok, "draft is dropped once sent")
	})

	t.Run("invalid date", func(t *testing.T) {
		env := newTestEnv(t, DefaultPolicy())
		_, err := env.svc.Sheet(ctx, "07/05/2024", "7A")
		assert.IsType(t, &core.ValidationError{}, err)
	})
}

func TestService_DeleteAllData(t *testing.T) {
	env := newTestEnv(t, DefaultPolicy())
	ctx := context.Background()

	students, _ := json.Marshal([]roster.Student{student("001", "Ani", "7A")})
	require.NoError(t, env.store.Set(ctx, core.KeyStudents, string(students)))
	require.NoError(t, env.store.Set(ctx, "siswaFilter", "7A"))
	require.NoError(t, env.store.Set(ctx, "theme", "dark"))
	id := env.svc.Sessions().Create()

	var signals []string
	unsubCleared := env.bus.Subscribe(core.SignalDataCleared, func(e core.Event) { signals = append(signals, e.Signal) })
	defer unsubCleared()
	unsubRoster := env.bus.Subscribe(core.SignalRosterChanged, func(e core.Event) { signals = append(signals, e.Signal) })
	defer unsubRoster()

	dlv, err := env.svc.DeleteAllData(ctx)
	require.NoError(t, err)
	assert.Equal(t, core.DeliveryConfirmed, dlv)
	assert.True(t, env.remote.deletedData)
	assert.Equal(t, []string{core.SignalDataCleared, core.SignalRosterChanged}, signals)

	keys, _ := env.store.Keys(ctx)
	assert.Equal(t, []string{"theme"}, keys)
	_, err = env.svc.Sessions().Get(id)
	assert.Equal(t, ErrSessionNotFound, err)

	// failure: nothing is cleared, nobody is notified
	signals = nil
	require.NoError(t, env.store.Set(ctx, core.KeyStudents, "[]"))
	env.remote.err = errors.Wrap(core.ErrRemoteUnavailable, "timeout")
	_, err = env.svc.DeleteAllData(ctx)
	assert.Error(t, err)
	assert.Empty(t, signals)
	_, ok, _ := env.store.Get(ctx, core.KeyStudents)
	assert.True(t, ok)
}

func TestService_ClearAttendanceAndChart(t *testing.T) {
	env := newTestEnv(t, DefaultPolicy())
	ctx := context.Background()

	_, err := env.svc.ClearAttendance(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, AttendanceSheet, env.remote.clearedTab)

	env.remote.graph = GraphData{"juli": {Hadir: 3}}
	series, err := env.svc.Chart(ctx, "Semua", 1)
	require.NoError(t, err)
	assert.Equal(t, "", env.remote.recapClass)
	assert.Equal(t, []int{3, 0, 0, 0, 0, 0}, series.Hadir)

	_, err = env.svc.Chart(ctx, "7A", 5)
	assert.IsType(t, &core.ValidationError{}, err)

	classes, err := env.svc.Classes(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Semua", "8", "7A"}, classes)
}
