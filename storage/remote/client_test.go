package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/absensi/core"
	"github.com/trezcool/absensi/core/attendance"
	"github.com/trezcool/absensi/core/roster"
	"github.com/trezcool/absensi/tests"
)

func newTestClient(t *testing.T, confirm bool) (*Client, *testutil.Endpoint) {
	ep := testutil.NewEndpoint(t)
	return NewClient(ep.Config(confirm), testutil.NopLogger{}), ep
}

func TestClient_ListStudents(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []roster.Student
	}{
		{
			name: "bare array",
			body: `[{"id":"1","nama":"Ani","nisn":1234,"kelas":"5A"}]`,
			want: []roster.Student{{ID: "1", Name: null.StringFrom("Ani"), NISN: null.StringFrom("1234"), Class: null.StringFrom("5A")}},
		},
		{
			name: "envelope with mixed case keys",
			body: `{"success":true,"data":[{"Nama":"Budi","NISN":"99","Kelas":"undefined"}]}`,
			want: []roster.Student{{Name: null.StringFrom("Budi"), NISN: null.StringFrom("99")}},
		},
		{
			name: "null data",
			body: `{"success":true,"data":null}`,
			want: []roster.Student{},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c, ep := newTestClient(t, false)
			ep.Respond("", http.StatusOK, tc.body)

			got, err := c.ListStudents(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestClient_readErrors(t *testing.T) {
	t.Run("remote error", func(t *testing.T) {
		c, ep := newTestClient(t, false)
		ep.Respond("schoolData", http.StatusOK, testutil.Failure("Sheet not found"))

		_, err := c.SchoolInfo(context.Background())
		require.Error(t, err)
		assert.True(t, core.IsRemoteError(err))
		assert.Equal(t, "Sheet not found", err.Error())
	})

	t.Run("bad status", func(t *testing.T) {
		c, ep := newTestClient(t, false)
		ep.Respond("monthlyRecap", http.StatusInternalServerError, "oops")

		_, err := c.MonthlyRecap(context.Background(), "", time.March)
		assert.Equal(t, core.ErrRemoteUnavailable, errors.Cause(err))
	})

	t.Run("not configured", func(t *testing.T) {
		c := NewClient(core.RemoteConfig{}, testutil.NopLogger{})
		_, err := c.AttendanceHistory(context.Background())
		assert.Equal(t, core.ErrRemoteUnavailable, errors.Cause(err))
	})
}

func TestClient_MonthlyRecap(t *testing.T) {
	c, ep := newTestClient(t, false)
	ep.Respond("monthlyRecap", http.StatusOK,
		`{"success":true,"data":[{"nama":"Ani","kelas":"5A","hadir":"20","alpa":1,"izin":null,"sakit":"","persentase":"90,5%"}]}`)

	rows, err := c.MonthlyRecap(context.Background(), "5A", time.March)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	r := rows[0]
	assert.Equal(t, "Ani", r.StudentName)
	assert.Equal(t, 20, r.Present.Int)
	assert.Equal(t, 1, r.Absent.Int)
	assert.False(t, r.Excused.Valid)
	assert.False(t, r.Sick.Valid)
	assert.InDelta(t, 90.5, r.Percent.Float64, 0.0001)
	assert.Equal(t, []string{"monthlyRecap"}, ep.Gets())
}

func TestClient_GraphData(t *testing.T) {
	c, ep := newTestClient(t, false)
	ep.RespondData("graphData", map[string]interface{}{
		"Juli":     map[string]interface{}{"Hadir": 10, "Alpha": "2"},
		"Agustus ": map[string]interface{}{"hadir": 3, "izin": 1, "sakit": 1},
	})

	got, err := c.GraphData(context.Background(), "", 1)
	require.NoError(t, err)
	assert.Equal(t, attendance.GraphData{
		"Juli":    {Hadir: 10, Alpha: 2},
		"Agustus": {Hadir: 3, Izin: 1, Sakit: 1},
	}, got)
}

func TestClient_AttendanceHistory(t *testing.T) {
	c, ep := newTestClient(t, false)
	ep.Respond("attendanceHistory", http.StatusOK,
		`{"success":true,"data":[{"Tanggal":"2024-03-01T17:00:00.000Z","Nama":"Ani","NISN":123,"Kelas":"5A","Status":"Hadir"},{"nama":"Budi"}]}`)

	rows, err := c.AttendanceHistory(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []attendance.HistoryRow{
		{Date: "2024-03-01T17:00:00.000Z", Name: "Ani", NISN: "123", Class: "5A", Status: "Hadir"},
		{Name: "Budi"},
	}, rows)
}

func TestClient_writes(t *testing.T) {
	tests := []struct {
		name     string
		confirm  bool
		reply    string
		status   int
		wantDlv  core.Delivery
		wantErr  bool
		isRemote bool
	}{
		{name: "discard mode ignores the answer", reply: testutil.Failure("nope"), status: http.StatusOK, wantDlv: core.DeliveryUnconfirmed},
		{name: "discard mode ignores the status", reply: "", status: http.StatusInternalServerError, wantDlv: core.DeliveryUnconfirmed},
		{name: "checked mode confirms", confirm: true, reply: `{"success":true}`, status: http.StatusOK, wantDlv: core.DeliveryConfirmed},
		{name: "checked mode reports remote errors", confirm: true, reply: testutil.Failure("NISN sudah ada"), status: http.StatusOK, wantErr: true, isRemote: true},
		{name: "checked mode reports bad status", confirm: true, reply: "", status: http.StatusBadGateway, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c, ep := newTestClient(t, tc.confirm)
			ep.Respond("siswa", tc.status, tc.reply)

			dlv, err := c.AddStudent(context.Background(), roster.NewStudent{NISN: "1", Name: "Ani", Class: "5A"})
			if tc.wantErr {
				require.Error(t, err)
				assert.Equal(t, tc.isRemote, core.IsRemoteError(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantDlv, dlv)
		})
	}
}

func TestClient_payloads(t *testing.T) {
	c, ep := newTestClient(t, true)
	ctx := context.Background()

	_, err := c.EditStudent(ctx, roster.UpdateStudent{OldNISN: "1", NewStudent: roster.NewStudent{NISN: "2", Name: "Ani", Class: "5B"}})
	require.NoError(t, err)
	_, err = c.BulkAddStudents(ctx, []roster.NewStudent{{NISN: "3", Name: "Budi", Class: "5A"}})
	require.NoError(t, err)
	_, err = c.DeleteStudent(ctx, "2")
	require.NoError(t, err)
	_, err = c.SubmitAttendance(ctx, []attendance.DailyEntry{{Date: "01/03/2024", Name: "Budi", Class: "5A", NISN: "3", Status: attendance.Present}})
	require.NoError(t, err)
	_, err = c.BulkUpdateAttendance(ctx, []attendance.Update{{Date: "01/03/2024", NISN: "3", Status: attendance.Sick}})
	require.NoError(t, err)
	_, err = c.DeleteAllAttendance(ctx, attendance.AttendanceSheet)
	require.NoError(t, err)

	posts := ep.Posts()
	require.Len(t, posts, 6)

	want := []string{
		`{"type":"edit","nisnLama":"1","nisnBaru":"2","nama":"Ani","kelas":"5B"}`,
		`{"type":"bulk_siswa","students":[{"nisn":"3","nama":"Budi","kelas":"5A"}]}`,
		`{"type":"delete","nisn":"2"}`,
		`[{"tanggal":"01/03/2024","nama":"Budi","kelas":"5A","nisn":"3","status":"Hadir"}]`,
		`{"type":"bulkUpdateAttendance","updates":[{"tanggal":"01/03/2024","nisn":"3","status":"Sakit"}]}`,
		`{"type":"deleteAllAttendance","sheetName":"Absensi"}`,
	}
	for i, p := range posts {
		assert.JSONEq(t, want[i], string(p.Body))
		assert.Equal(t, "text/plain;charset=utf-8", p.ContentType)
	}
	assert.Equal(t, testutil.SubmitAttendance, posts[3].Type)
}

func TestClient_DeleteAllData(t *testing.T) {
	t.Run("confirmed", func(t *testing.T) {
		c, ep := newTestClient(t, false)

		dlv, err := c.DeleteAllData(context.Background())
		require.NoError(t, err)
		assert.Equal(t, core.DeliveryConfirmed, dlv)

		posts := ep.Posts()
		require.Len(t, posts, 1)
		var p map[string]string
		require.NoError(t, json.Unmarshal(posts[0].Body, &p))
		assert.Equal(t, map[string]string{"type": "deleteAllDataDataSiswanAbsensi", "sheet": "both"}, p)
	})

	t.Run("falls back once when unavailable", func(t *testing.T) {
		c, ep := newTestClient(t, false)
		ep.Respond("deleteAllDataDataSiswanAbsensi", http.StatusServiceUnavailable, "")

		dlv, err := c.DeleteAllData(context.Background())
		require.NoError(t, err)
		assert.Equal(t, core.DeliveryUnconfirmed, dlv)
		assert.Len(t, ep.Posts(), 2)
	})

	t.Run("remote error is not retried", func(t *testing.T) {
		c, ep := newTestClient(t, false)
		ep.Respond("deleteAllDataDataSiswanAbsensi", http.StatusOK, testutil.Failure("locked"))

		_, err := c.DeleteAllData(context.Background())
		assert.True(t, core.IsRemoteError(err))
		assert.Len(t, ep.Posts(), 1)
	})
}
