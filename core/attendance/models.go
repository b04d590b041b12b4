package attendance

import (
	"time"

	"github.com/volatiletech/null/v8"
)

type (
	// DailyRecord is one student's attendance on one date.
	DailyRecord struct {
		Date      time.Time
		StudentID string
		Status    Status // Unmarked when no entry was recorded
	}

	// RecapRow is a monthly or semester recap line, computed by the remote endpoint.
	RecapRow struct {
		StudentName string       `json:"nama"`
		Class       string       `json:"kelas"`
		Present     null.Int     `json:"hadir"`
		Absent      null.Int     `json:"alpa"`
		Excused     null.Int     `json:"izin"`
		Sick        null.Int     `json:"sakit"`
		Percent     null.Float64 `json:"persentase"`
	}

	// HistoryRow is a raw attendance history line as received.
	HistoryRow struct {
		Date   string `json:"tanggal"`
		Name   string `json:"nama"`
		NISN   string `json:"nisn"`
		Class  string `json:"kelas"`
		Status string `json:"status"`
	}

	// DailyEntry is one line of a daily attendance submission, as written to the remote endpoint.
	DailyEntry struct {
		Date   string `json:"tanggal"` // dd/mm/yyyy
		Name   string `json:"nama"`
		Class  string `json:"kelas"`
		NISN   string `json:"nisn"`
		Status Status `json:"status"`
	}

	SchoolInfo struct {
		Name          null.String `json:"namaSekolah"`
		Address       null.String `json:"alamat"`
		Headmaster    null.String `json:"kepalaSekolah"`
		HeadmasterNIP null.String `json:"nipKepalaSekolah"`
		AcademicYear  null.String `json:"tahunAjaran"`
	}

	// MonthCounts are the per-status totals of one month of graph data.
	MonthCounts struct {
		Hadir int `json:"Hadir"`
		Alpha int `json:"Alpha"`
		Izin  int `json:"Izin"`
		Sakit int `json:"Sakit"`
	}

	// GraphData maps month names to their counts.
	GraphData map[string]MonthCounts
)

// Record converts a well-formed history row.
func (r HistoryRow) Record() (DailyRecord, error) {
	st, err := ParseStatus(r.Status)
	if err != nil {
		return DailyRecord{}, err
	}
	d, err := ParseWireDate(r.Date)
	if err != nil {
		return DailyRecord{}, err
	}
	return DailyRecord{Date: d, StudentID: r.NISN, Status: st}, nil
}

func (r HistoryRow) Key() EditKey {
	return EditKey{Date: r.Date, StudentID: r.NISN}
}
