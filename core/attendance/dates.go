package attendance

import (
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/absensi/core"
)

// WireDateLayout is the date layout the remote endpoint reads and writes.
const WireDateLayout = "02/01/2006"

var (
	ErrInvalidDate     = errors.New("invalid date")
	ErrInvalidMonth    = errors.New("invalid month")
	ErrInvalidSemester = errors.New("invalid semester")

	monthNames = [...]string{
		"januari", "februari", "maret", "april", "mei", "juni",
		"juli", "agustus", "september", "oktober", "november", "desember",
	}

	historyDateLayouts = []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05",
		core.PickerDateLayout,
		WireDateLayout,
		"2/1/2006",
	}
)

// ToWireDate converts a date-picker date (yyyy-mm-dd) to the wire format (dd/mm/yyyy).
func ToWireDate(picker string) (string, error) {
	d, err := time.Parse(core.PickerDateLayout, strings.TrimSpace(picker))
	if err != nil {
		return "", errors.Wrapf(ErrInvalidDate, "%q", picker)
	}
	return d.Format(WireDateLayout), nil
}

func ParseWireDate(s string) (time.Time, error) {
	d, err := time.Parse(WireDateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, errors.Wrapf(ErrInvalidDate, "%q", s)
	}
	return d, nil
}

// NormalizeHistoryDate renders a date read from the spreadsheet as dd/mm/yyyy in loc.
// Timestamps are converted to loc first, plain dates are taken as they are.
// ok is false when no known layout matches.
func NormalizeHistoryDate(raw string, loc *time.Location) (string, bool) {
	raw = strings.TrimSpace(raw)
	for _, layout := range historyDateLayouts {
		d, err := time.Parse(layout, raw)
		if err != nil {
			continue
		}
		if strings.Contains(layout, "15") {
			d = d.In(loc)
		}
		return d.Format(WireDateLayout), true
	}
	return raw, false
}

// MonthName is the lowercase indonesian name of m, as the remote endpoint expects it.
func MonthName(m time.Month) string {
	if m < time.January || m > time.December {
		return ""
	}
	return monthNames[m-1]
}

// ParseMonth accepts a month number (1-12) or its indonesian name.
func ParseMonth(s string) (time.Month, error) {
	s = core.CleanString(s, true /* lower */)
	if n, err := strconv.Atoi(s); err == nil {
		if n >= 1 && n <= 12 {
			return time.Month(n), nil
		}
		return 0, errors.Wrapf(ErrInvalidMonth, "%q", s)
	}
	for i, name := range monthNames {
		if name == s {
			return time.Month(i + 1), nil
		}
	}
	return 0, errors.Wrapf(ErrInvalidMonth, "%q", s)
}

// SemesterOf returns 1 for July to December and 2 for January to June.
func SemesterOf(m time.Month) int {
	if m >= time.July {
		return 1
	}
	return 2
}

// SemesterMonths lists the months of a semester in calendar order.
func SemesterMonths(semester int) ([]time.Month, error) {
	var first time.Month
	switch semester {
	case 1:
		first = time.July
	case 2:
		first = time.January
	default:
		return nil, errors.Wrapf(ErrInvalidSemester, "%d", semester)
	}
	months := make([]time.Month, 0, 6)
	for i := 0; i < 6; i++ {
		months = append(months, first+time.Month(i))
	}
	return months, nil
}

// AcademicMonths lists the months of a school year, July first.
func AcademicMonths() []time.Month {
	first, _ := SemesterMonths(1)
	second, _ := SemesterMonths(2)
	return append(first, second...)
}
