package attendance

import (
	"strings"
	"time"
)

// ChartSeries are the per-status datasets of the attendance chart, one point per label.
type ChartSeries struct {
	Labels []string `json:"labels"`
	Hadir  []int    `json:"hadir"`
	Alpha  []int    `json:"alpha"`
	Izin   []int    `json:"izin"`
	Sakit  []int    `json:"sakit"`
}

// BuildChartSeries orders graph data by month. A semester (1 or 2) yields its six months,
// missing ones at zero; otherwise the months present in data are listed from July on.
// Keys that are not month names are ignored.
func BuildChartSeries(data GraphData, semester int) ChartSeries {
	byMonth := make(map[time.Month]MonthCounts, len(data))
	for name, counts := range data {
		if m, err := ParseMonth(strings.TrimSpace(name)); err == nil {
			byMonth[m] = counts
		}
	}

	months, err := SemesterMonths(semester)
	showMissing := err == nil
	if !showMissing {
		months = AcademicMonths()
	}

	series := ChartSeries{
		Labels: []string{},
		Hadir:  []int{},
		Alpha:  []int{},
		Izin:   []int{},
		Sakit:  []int{},
	}
	for _, m := range months {
		counts, ok := byMonth[m]
		if !ok && !showMissing {
			continue
		}
		series.Labels = append(series.Labels, MonthName(m))
		series.Hadir = append(series.Hadir, counts.Hadir)
		series.Alpha = append(series.Alpha, counts.Alpha)
		series.Izin = append(series.Izin, counts.Izin)
		series.Sakit = append(series.Sakit, counts.Sakit)
	}
	return series
}
