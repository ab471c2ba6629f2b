package charts

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSymmetricRange(t *testing.T) {
	r := SymmetricRange([]float64{-300, 100}, []float64{50, 200})
	assert.InDelta(t, -330.0, r.Min, 1e-9)
	assert.InDelta(t, 330.0, r.Max, 1e-9)

	assert.Equal(t, AxisRange{Min: 0, Max: 0}, SymmetricRange(nil))
}

func TestPaddedRange(t *testing.T) {
	r := PaddedRange([]float64{1000, 1100, 900})
	assert.InDelta(t, 810.0, r.Min, 1e-9)
	assert.InDelta(t, 1210.0, r.Max, 1e-9)

	assert.Equal(t, AxisRange{}, PaddedRange(nil))
}

func TestRound2AndMillions(t *testing.T) {
	assert.Equal(t, 1.39, Round2(1.386))
	assert.Equal(t, -1.39, Round2(-1.386))
	assert.Equal(t, 1.01, Round2(1.005))
	assert.Equal(t, 1234.57, Millions(1_234_567_890))
	assert.Equal(t, 0.0, Millions(0))
}

func TestDescending(t *testing.T) {
	in := []int{1, 2, 3}
	out := Descending(in)
	assert.Equal(t, []int{3, 2, 1}, out)
	assert.Equal(t, []int{1, 2, 3}, in, "input untouched")
	assert.Empty(t, Descending([]int(nil)))
}

func TestAggregate(t *testing.T) {
	points := []ChartDataPoint{
		{Time: "2024-01-01", Value: 10}, // ISO week 1
		{Time: "2024-01-02", Value: 20},
		{Time: "2024-01-08", Value: 30}, // ISO week 2
		{Time: "2024-02-01", Value: 40},
	}

	weekly, err := Aggregate(points, "week")
	require.NoError(t, err)
	assert.Equal(t, []ChartDataPoint{
		{Time: "2024-W01", Value: 15},
		{Time: "2024-W02", Value: 30},
		{Time: "2024-W05", Value: 40},
	}, weekly)

	monthly, err := Aggregate(points, "month")
	require.NoError(t, err)
	assert.Equal(t, []ChartDataPoint{
		{Time: "2024-01", Value: 20},
		{Time: "2024-02", Value: 40},
	}, monthly)

	daily, err := Aggregate(points, "day")
	require.NoError(t, err)
	assert.Equal(t, points, daily)

	_, err = Aggregate(points, "year")
	assert.Error(t, err)
}

func TestPresetStart(t *testing.T) {
	now := time.Date(2024, time.March, 31, 15, 4, 0, 0, time.UTC)

	start, ok := PresetStart("1Y", now)
	require.True(t, ok)
	assert.Equal(t, time.Date(2023, time.March, 31, 0, 0, 0, 0, time.UTC), start)

	start, ok = PresetStart("3M", now)
	require.True(t, ok)
	assert.Equal(t, "2023-12-31", start.Format("2006-01-02"))

	_, ok = PresetStart("all", now)
	assert.False(t, ok)
	_, ok = PresetStart("2W", now)
	assert.False(t, ok)
}

func TestPoint(t *testing.T) {
	p := Point(time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC), 1.5)
	assert.Equal(t, ChartDataPoint{Time: "2024-05-06", Value: 1.5}, p)
}
