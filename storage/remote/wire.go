package remote

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/absensi/core"
	"github.com/trezcool/absensi/core/attendance"
	"github.com/trezcool/absensi/core/roster"
)

// Spreadsheet cells reach us as strings, numbers, booleans or null, under keys whose case
// follows the sheet headers. The helpers below read them leniently.

type (
	envelope struct {
		Success json.RawMessage `json:"success"`
		Data    json.RawMessage `json:"data"`
		Message json.RawMessage `json:"message"`
	}

	// record is a JSON object with case-insensitive keys.
	record map[string]json.RawMessage
)

func (e envelope) ok() bool {
	switch strings.ToLower(cellString(e.Success).String) {
	case "true", "1":
		return true
	}
	return false
}

func decodeRecords(data json.RawMessage) ([]record, error) {
	if isNull(data) {
		return []record{}, nil
	}
	var raw []map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "decoding records")
	}
	out := make([]record, 0, len(raw))
	for _, m := range raw {
		out = append(out, newRecord(m))
	}
	return out, nil
}

func newRecord(m map[string]json.RawMessage) record {
	r := make(record, len(m))
	for k, v := range m {
		r[strings.ToLower(strings.TrimSpace(k))] = v
	}
	return r
}

// get returns the first value found under one of keys.
func (r record) get(keys ...string) json.RawMessage {
	for _, k := range keys {
		if v, ok := r[strings.ToLower(k)]; ok {
			return v
		}
	}
	return nil
}

func (r record) str(keys ...string) null.String { return cellString(r.get(keys...)) }
func (r record) num(keys ...string) null.Int    { return cellInt(r.get(keys...)) }

func isNull(v json.RawMessage) bool {
	v = bytes.TrimSpace(v)
	return len(v) == 0 || bytes.Equal(v, []byte("null"))
}

// cellString reads a cell as text, normalized as an optional value.
func cellString(v json.RawMessage) null.String {
	if isNull(v) {
		return null.String{}
	}
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		return core.NormalizeOptional(s)
	}
	var n json.Number
	if err := json.Unmarshal(v, &n); err == nil {
		return core.NormalizeOptional(n.String())
	}
	var b bool
	if err := json.Unmarshal(v, &b); err == nil {
		return null.StringFrom(strconv.FormatBool(b))
	}
	return null.String{}
}

// cellInt reads a count; fractional values are rounded.
func cellInt(v json.RawMessage) null.Int {
	f := cellFloat(v)
	if !f.Valid {
		return null.Int{}
	}
	return null.IntFrom(int(math.Round(f.Float64)))
}

// cellFloat reads a number, accepting "85,5" and "85.5%".
func cellFloat(v json.RawMessage) null.Float64 {
	s := cellString(v)
	if !s.Valid {
		return null.Float64{}
	}
	txt := strings.TrimSpace(strings.TrimSuffix(s.String, "%"))
	txt = strings.Replace(txt, ",", ".", 1)
	f, err := strconv.ParseFloat(txt, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return null.Float64{}
	}
	return null.Float64From(f)
}

func toStudent(r record) roster.Student {
	return roster.Student{
		ID:    r.str("id").String,
		Name:  r.str("nama", "name"),
		NISN:  r.str("nisn"),
		Class: r.str("kelas", "class"),
	}
}

func toRecapRow(r record) attendance.RecapRow {
	return attendance.RecapRow{
		StudentName: r.str("nama", "name").String,
		Class:       r.str("kelas", "class").String,
		Present:     r.num("hadir"),
		Absent:      r.num("alpa", "alpha"),
		Excused:     r.num("izin"),
		Sick:        r.num("sakit"),
		Percent:     cellFloat(r.get("persentase", "persen", "percentage", "kehadiran")),
	}
}

// toHistoryRow keeps the cells as received: malformed rows are rejected downstream.
func toHistoryRow(r record) attendance.HistoryRow {
	raw := func(keys ...string) string {
		v := r.get(keys...)
		if isNull(v) {
			return ""
		}
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			return s
		}
		return strings.TrimSpace(string(v))
	}
	return attendance.HistoryRow{
		Date:   raw("tanggal", "date"),
		Name:   raw("nama", "name"),
		NISN:   raw("nisn"),
		Class:  raw("kelas", "class"),
		Status: raw("status", "keterangan"),
	}
}

func toSchoolInfo(r record) attendance.SchoolInfo {
	return attendance.SchoolInfo{
		Name:          r.str("namaSekolah", "nama_sekolah", "nama sekolah", "nama"),
		Address:       r.str("alamat", "alamatSekolah", "alamat sekolah"),
		Headmaster:    r.str("kepalaSekolah", "kepala_sekolah", "kepala sekolah"),
		HeadmasterNIP: r.str("nipKepalaSekolah", "nip_kepala_sekolah", "nip kepala sekolah", "nip"),
		AcademicYear:  r.str("tahunAjaran", "tahun_ajaran", "tahun ajaran"),
	}
}

func toGraphData(data json.RawMessage) (attendance.GraphData, error) {
	out := make(attendance.GraphData)
	if isNull(data) {
		return out, nil
	}
	var raw map[string]map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "decoding graph data")
	}
	for month, counts := range raw {
		r := newRecord(counts)
		out[strings.TrimSpace(month)] = attendance.MonthCounts{
			Hadir: core.IntOrZero(r.num("hadir")),
			Alpha: core.IntOrZero(r.num("alpha", "alpa")),
			Izin:  core.IntOrZero(r.num("izin")),
			Sakit: core.IntOrZero(r.num("sakit")),
		}
	}
	return out, nil
}
