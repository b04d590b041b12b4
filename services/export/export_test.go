package exportsvc

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"
	"github.com/xuri/excelize/v2"

	"github.com/trezcool/absensi/core/attendance"
)

func testReport() attendance.Report {
	rows := []attendance.RecapRow{
		{StudentName: "Ani", Class: "5A", Present: null.IntFrom(18), Absent: null.IntFrom(1), Excused: null.IntFrom(1), Sick: null.IntFrom(0), Percent: null.Float64From(90)},
		{StudentName: "Budi", Class: "5A", Present: null.IntFrom(20)},
	}
	summary := attendance.SummarizeRecap(rows)
	return attendance.Report{
		Title:       "Rekap Absensi Bulan Maret",
		SchoolName:  "SD Negeri 1",
		Period:      attendance.Monthly,
		Label:       "Maret",
		Class:       "5A",
		Table:       attendance.BuildTable(rows, summary),
		Summary:     summary,
		GeneratedAt: time.Date(2024, 3, 31, 10, 0, 0, 0, time.UTC),
	}
}

func TestRenderer_RenderXLSX(t *testing.T) {
	report := testReport()
	content, err := NewRenderer().RenderXLSX(report)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(content))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, []string{SheetName}, f.GetSheetList())
	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)

	assert.Equal(t, report.Title, rows[0][0])
	assert.Equal(t, "SD Negeri 1", rows[1][0])
	// preamble (4 lines) + blank line
	assert.Equal(t, []string{"Nama", "Kelas", "Hadir", "Alpha", "Izin", "Sakit", "% Hadir"}, rows[5])
	assert.Equal(t, []string{"Ani", "5A", "18", "1", "1", "0", "90%"}, rows[6])
	assert.Equal(t, []string{"Budi", "5A", "20", "0", "0", "0", "N/A"}, rows[7])
	assert.Equal(t, "TOTAL", rows[8][0])
	assert.Equal(t, "38", rows[8][2])
	assert.Equal(t, "PERSEN", rows[9][0])
	assert.Equal(t, "95.00%", rows[9][2])
}

func TestRenderer_RenderPDF(t *testing.T) {
	content, err := NewRenderer().RenderPDF(testReport())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(content, []byte("%PDF-")))
}

func rosterFile(t *testing.T, rows [][]interface{}) *bytes.Buffer {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		row := row
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestParseRoster(t *testing.T) {
	t.Run("columns in any order", func(t *testing.T) {
		buf := rosterFile(t, [][]interface{}{
			{"NISN", "Kelas", "Nama"},
			{"0012", "5B", "Ani"},
			{"", "", ""},
			{"0013", "", "Budi"},
		})
		bs, err := ParseRoster(buf, "5A")
		require.NoError(t, err)
		assert.Equal(t, "5A", bs.Class)
		require.Len(t, bs.Students, 2)
		assert.Equal(t, "Ani", bs.Students[0].Name)
		assert.Equal(t, "0012", bs.Students[0].NISN)
		assert.Equal(t, "5B", bs.Students[0].Class)
		assert.Equal(t, "", bs.Students[1].Class)
	})

	t.Run("missing header", func(t *testing.T) {
		buf := rosterFile(t, [][]interface{}{{"Siswa", "Kelas"}, {"Ani", "5A"}})
		_, err := ParseRoster(buf, "")
		assert.Equal(t, ErrImportBadHeader, err)
	})

	t.Run("no rows", func(t *testing.T) {
		buf := rosterFile(t, [][]interface{}{{"Nama", "NISN"}})
		_, err := ParseRoster(buf, "")
		assert.Equal(t, ErrImportNoData, err)
	})

	t.Run("not an xlsx file", func(t *testing.T) {
		_, err := ParseRoster(strings.NewReader("nama,nisn\nAni,1\n"), "")
		assert.Equal(t, ErrImportUnreadable, errors.Cause(err))
	})
}
