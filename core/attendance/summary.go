package attendance

import (
	"fmt"
	"math"

	"github.com/trezcool/absensi/core"
)

// NotAvailable replaces percentages that cannot be computed.
const NotAvailable = "N/A"

// StatusSummary counts records per status.
type StatusSummary struct {
	Present      int `json:"hadir"`
	ExcusedLeave int `json:"izin"`
	Sick         int `json:"sakit"`
	Absent       int `json:"alpha"`
	Unmarked     int `json:"unmarked"`
}

// SummarizeRecap sums the counts of recap rows, missing counts being 0.
func SummarizeRecap(rows []RecapRow) StatusSummary {
	var sum StatusSummary
	for _, r := range rows {
		sum.Present += core.IntOrZero(r.Present)
		sum.Absent += core.IntOrZero(r.Absent)
		sum.ExcusedLeave += core.IntOrZero(r.Excused)
		sum.Sick += core.IntOrZero(r.Sick)
	}
	return sum
}

// SummarizeRecords counts daily records, resolving unmarked ones with the policy.
func SummarizeRecords(records []DailyRecord, p Policy) StatusSummary {
	var sum StatusSummary
	for _, r := range records {
		st := r.Status
		if !st.Valid() {
			st = Unmarked
		}
		sum.add(p.Resolve(st))
	}
	return sum
}

func (s *StatusSummary) add(st Status) {
	switch st {
	case Present:
		s.Present++
	case ExcusedLeave:
		s.ExcusedLeave++
	case Sick:
		s.Sick++
	case Absent:
		s.Absent++
	default:
		s.Unmarked++
	}
}

// Total is the sum of the four status counters; unmarked records are left out.
func (s StatusSummary) Total() int {
	return s.Present + s.ExcusedLeave + s.Sick + s.Absent
}

func (s StatusSummary) Count(st Status) int {
	switch st {
	case Present:
		return s.Present
	case ExcusedLeave:
		return s.ExcusedLeave
	case Sick:
		return s.Sick
	case Absent:
		return s.Absent
	}
	return s.Unmarked
}

// Percent returns the share of st in Total, rounded to 2 decimals.
// ok is false when Total is 0.
func (s StatusSummary) Percent(st Status) (float64, bool) {
	total := s.Total()
	if total == 0 {
		return 0, false
	}
	return math.Round(float64(s.Count(st))/float64(total)*100*100) / 100, true
}

// FormatPercent renders Percent as "12.50%", or NotAvailable.
func (s StatusSummary) FormatPercent(st Status) string {
	p, ok := s.Percent(st)
	if !ok {
		return NotAvailable
	}
	return fmt.Sprintf("%.2f%%", p)
}

// Percentages maps every status label to its formatted percentage.
func (s StatusSummary) Percentages() map[string]string {
	out := make(map[string]string, len(Statuses))
	for _, st := range Statuses {
		out[st.String()] = s.FormatPercent(st)
	}
	return out
}
