package attendance

import (
	"strings"

	"github.com/trezcool/absensi/core"
)

// Criteria selects recap or history rows. Zero fields and All match everything.
type Criteria struct {
	Class    string
	Name     string
	Date     string // dd/mm/yyyy
	Month    int    // 1-12
	Semester int    // 1: July-December, 2: January-June
}

var errorMarkers = map[string]struct{}{
	"#N/A":    {},
	"#REF!":   {},
	"#VALUE!": {},
	"#ERROR!": {},
}

func (c Criteria) matchClass(class string) bool {
	want := core.CleanString(c.Class)
	return want == "" || want == All || strings.TrimSpace(class) == want
}

func (c Criteria) matchName(name string) bool {
	want := core.CleanString(c.Name)
	return want == "" || want == All || name == want
}

func (c Criteria) matchDate(date string) bool {
	want := core.CleanString(c.Date)
	if want != "" && date != want {
		return false
	}
	if c.Month == 0 && c.Semester == 0 {
		return true
	}
	d, err := ParseWireDate(date)
	if err != nil {
		return false
	}
	if c.Month != 0 && int(d.Month()) != c.Month {
		return false
	}
	if c.Semester != 0 && SemesterOf(d.Month()) != c.Semester {
		return false
	}
	return true
}

// FilterRecap keeps the recap rows matching the class and name criteria, in order.
// Recap rows carry no date: the period is scoped by the remote query.
func FilterRecap(rows []RecapRow, c Criteria) []RecapRow {
	out := make([]RecapRow, 0, len(rows))
	for _, r := range rows {
		if c.matchClass(r.Class) && c.matchName(r.StudentName) {
			out = append(out, r)
		}
	}
	return out
}

// FilterHistory keeps the history rows matching every criterion, in order.
func FilterHistory(rows []HistoryRow, c Criteria) []HistoryRow {
	out := make([]HistoryRow, 0, len(rows))
	for _, r := range rows {
		if c.matchClass(r.Class) && c.matchName(r.Name) && c.matchDate(r.Date) {
			out = append(out, r)
		}
	}
	return out
}

// RejectMalformed drops history rows leaking spreadsheet artifacts or carrying an unknown
// status. It returns the kept rows, in order, and the number of rejected ones.
func RejectMalformed(rows []HistoryRow) ([]HistoryRow, int) {
	out := make([]HistoryRow, 0, len(rows))
	for _, r := range rows {
		if Malformed(r) {
			continue
		}
		out = append(out, r)
	}
	return out, len(rows) - len(out)
}

func Malformed(r HistoryRow) bool {
	for _, v := range []string{r.Date, r.Name, r.NISN, r.Class, r.Status} {
		if badCell(v) {
			return true
		}
	}
	_, err := ParseStatus(r.Status)
	return err != nil
}

func badCell(v string) bool {
	v = strings.TrimSpace(v)
	if v == "" || strings.HasPrefix(v, "=") || strings.Contains(v, "FORMULA") {
		return true
	}
	_, marker := errorMarkers[v]
	return marker
}
