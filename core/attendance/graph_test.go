package attendance

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildChartSeries(t *testing.T) {
	data := GraphData{
		"Januari": {Hadir: 20, Alpha: 1, Izin: 2, Sakit: 3},
		"maret":   {Hadir: 18, Sakit: 1},
		"agustus": {Hadir: 15, Alpha: 4},
		"total":   {Hadir: 99},
	}

	t.Run("semester lists its six months", func(t *testing.T) {
		got := BuildChartSeries(data, 2)
		assert.Equal(t, []string{"januari", "februari", "maret", "april", "mei", "juni"}, got.Labels)
		assert.Equal(t, []int{20, 0, 18, 0, 0, 0}, got.Hadir)
		assert.Equal(t, []int{3, 0, 1, 0, 0, 0}, got.Sakit)
	})

	t.Run("whole year keeps present months from july", func(t *testing.T) {
		got := BuildChartSeries(data, 0)
		want := ChartSeries{
			Labels: []string{"agustus", "januari", "maret"},
			Hadir:  []int{15, 20, 18},
			Alpha:  []int{4, 1, 0},
			Izin:   []int{0, 2, 0},
			Sakit:  []int{0, 3, 1},
		}
		assert.Equal(t, want, got)
	})

	t.Run("no data", func(t *testing.T) {
		got := BuildChartSeries(nil, 0)
		assert.Empty(t, got.Labels)
		assert.NotNil(t, got.Hadir)
	})
}
