// Package charts shapes metric series for display: chart points, axis ranges,
// rounding and period aggregation.
package charts

import (
	"fmt"
	"sort"
	"time"

	"github.com/aristath/finlookup/internal/domain"
	"github.com/aristath/finlookup/pkg/formulas"
	"github.com/shopspring/decimal"
)

// ChartDataPoint represents a single point on a chart
type ChartDataPoint struct {
	Time  string  `json:"time"` // YYYY-MM-DD, YYYY-W## or YYYY-MM
	Value float64 `json:"value"`
}

// AxisRange is the y-axis extent suggested for a series.
type AxisRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// axisPadding widens ranges by 10% so extremes are not drawn on the border.
const axisPadding = 1.1

// SymmetricRange returns [-1.1·m, 1.1·m] where m is the largest absolute value
// across all given series. Used for bar charts of signed nets and ratios.
func SymmetricRange(series ...[]float64) AxisRange {
	var m float64
	for _, s := range series {
		if v := formulas.MaxAbs(s); v > m {
			m = v
		}
	}
	return AxisRange{Min: -axisPadding * m, Max: axisPadding * m}
}

// PaddedRange returns [0.9·min, 1.1·max] of the values.
func PaddedRange(values []float64) AxisRange {
	lo, hi, ok := formulas.MinMax(values)
	if !ok {
		return AxisRange{}
	}
	return AxisRange{Min: 0.9 * lo, Max: axisPadding * hi}
}

// Round2 rounds half away from zero to two decimals.
func Round2(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}

// Millions converts v to millions rounded to two decimals.
func Millions(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Div(decimal.NewFromInt(1_000_000)).Round(2).Float64()
	return f
}

// Descending returns a copy of rows in reverse order. Rows are expected ascending.
func Descending[T any](rows []T) []T {
	out := make([]T, len(rows))
	for i, r := range rows {
		out[len(rows)-1-i] = r
	}
	return out
}

// Point builds a chart point for a calendar date.
func Point(date time.Time, value float64) ChartDataPoint {
	return ChartDataPoint{Time: date.Format(domain.DateLayout), Value: value}
}

// Aggregate averages daily points into weekly ("week") or monthly ("month")
// buckets. "day" or "" returns the points unchanged.
func Aggregate(points []ChartDataPoint, groupBy string) ([]ChartDataPoint, error) {
	switch groupBy {
	case "", "day":
		return points, nil
	case "week", "month":
	default:
		return nil, fmt.Errorf("invalid interval: %s (must be day, week or month)", groupBy)
	}

	aggregated := make(map[string][]float64) // period -> values
	for _, p := range points {
		var period string
		if groupBy == "week" {
			t, err := time.Parse(domain.DateLayout, p.Time)
			if err != nil {
				continue
			}
			year, week := t.ISOWeek()
			period = fmt.Sprintf("%d-W%02d", year, week)
		} else {
			if len(p.Time) < 7 {
				continue
			}
			period = p.Time[:7] // "2024-01-15" -> "2024-01"
		}
		aggregated[period] = append(aggregated[period], p.Value)
	}

	periods := make([]string, 0, len(aggregated))
	for period := range aggregated {
		periods = append(periods, period)
	}
	sort.Strings(periods)

	out := make([]ChartDataPoint, 0, len(periods))
	for _, period := range periods {
		out = append(out, ChartDataPoint{Time: period, Value: formulas.Mean(aggregated[period])})
	}
	return out, nil
}

// PresetStart converts a range preset (1M, 3M, 6M, 1Y, 5Y, 10Y) to a start date
// relative to now. ok is false for "all", "" and unknown presets.
func PresetStart(rangeStr string, now time.Time) (time.Time, bool) {
	var start time.Time
	switch rangeStr {
	case "1M":
		start = now.AddDate(0, -1, 0)
	case "3M":
		start = now.AddDate(0, -3, 0)
	case "6M":
		start = now.AddDate(0, -6, 0)
	case "1Y":
		start = now.AddDate(-1, 0, 0)
	case "5Y":
		start = now.AddDate(-5, 0, 0)
	case "10Y":
		start = now.AddDate(-10, 0, 0)
	default:
		return time.Time{}, false
	}
	return domain.Day(start), true
}
