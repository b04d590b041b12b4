package attendance

import (
	"fmt"
	"math"
	"strconv"

	"github.com/trezcool/absensi/core"
)

// Labels of the computed report rows.
const (
	TotalLabel   = "TOTAL"
	PercentLabel = "PERSEN"
)

// Table is a report as rows of cells, shared by every export format.
type Table [][]interface{}

// TableHeader is the first row of every report table.
var TableHeader = []interface{}{"Nama", "Kelas", "Hadir", "Alpha", "Izin", "Sakit", "% Hadir"}

// BuildTable lays out rows followed by the TOTAL and PERSEN rows of summary.
func BuildTable(rows []RecapRow, summary StatusSummary) Table {
	t := make(Table, 0, len(rows)+3)
	t = append(t, append([]interface{}(nil), TableHeader...))

	for _, r := range rows {
		t = append(t, []interface{}{
			r.StudentName,
			r.Class,
			core.IntOrZero(r.Present),
			core.IntOrZero(r.Absent),
			core.IntOrZero(r.Excused),
			core.IntOrZero(r.Sick),
			formatRowPercent(r),
		})
	}

	total := []interface{}{TotalLabel, ""}
	percent := []interface{}{PercentLabel, ""}
	for _, st := range Statuses {
		total = append(total, summary.Count(st))
		percent = append(percent, summary.FormatPercent(st))
	}
	t = append(t, append(total, ""), append(percent, ""))
	return t
}

func formatRowPercent(r RecapRow) string {
	if !r.Percent.Valid || math.IsNaN(r.Percent.Float64) || math.IsInf(r.Percent.Float64, 0) {
		return NotAvailable
	}
	return strconv.FormatFloat(r.Percent.Float64, 'f', -1, 64) + "%"
}

// Strings renders every cell as text.
func (t Table) Strings() [][]string {
	out := make([][]string, len(t))
	for i, row := range t {
		cells := make([]string, len(row))
		for j, c := range row {
			cells[j] = fmt.Sprint(c)
		}
		out[i] = cells
	}
	return out
}
