package metrics

import (
	"fmt"
	"math"
	"time"

	"github.com/aristath/finlookup/internal/domain"
	"github.com/aristath/finlookup/pkg/formulas"
)

// Direction is the presentational sign of the latest price change.
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

// Moving average periods reported with every bar.
var movingAveragePeriods = []int{5, 20, 60}

// PriceBar is one OHLCV bar plus the moving averages ending on that day.
type PriceBar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
	SMA5   Value     `json:"sma5"`
	SMA20  Value     `json:"sma20"`
	SMA60  Value     `json:"sma60"`
}

// PriceResult is the latest-change header plus the windowed bars.
type PriceResult struct {
	Window        Window     `json:"window"`
	LatestDate    time.Time  `json:"latest_date"`
	LatestClose   float64    `json:"latest_close"`
	Change        float64    `json:"change"`
	PercentChange Value      `json:"percent_change"`
	Direction     Direction  `json:"direction"`
	Bars          []PriceBar `json:"bars"`
}

// PriceSummary computes the latest change against the previous trading day from the
// full history and slices the bars to the window. A zero change is "down".
func PriceSummary(prices []domain.PriceRecord, w Window) (*PriceResult, error) {
	if len(prices) < 2 {
		return nil, fmt.Errorf("price change needs 2 rows, have %d: %w", len(prices), domain.ErrInsufficientHistory)
	}

	last, prev := prices[len(prices)-1], prices[len(prices)-2]
	change := last.Close - prev.Close

	result := &PriceResult{
		Window:        w,
		LatestDate:    last.Date,
		LatestClose:   last.Close,
		Change:        change,
		PercentChange: Growth(last.Close, prev.Close),
		Direction:     DirectionDown,
	}
	if change > 0 {
		result.Direction = DirectionUp
	}

	closes := make([]float64, len(prices))
	for i, p := range prices {
		closes[i] = p.Close
	}
	averages := make([][]float64, len(movingAveragePeriods))
	for i, period := range movingAveragePeriods {
		averages[i] = formulas.SMASeries(closes, period)
	}

	for i, p := range prices {
		if !w.Contains(p.Date) {
			continue
		}
		result.Bars = append(result.Bars, PriceBar{
			Date:   p.Date,
			Open:   p.Open,
			High:   p.High,
			Low:    p.Low,
			Close:  p.Close,
			Volume: p.Volume,
			SMA5:   seriesValue(averages[0], i),
			SMA20:  seriesValue(averages[1], i),
			SMA60:  seriesValue(averages[2], i),
		})
	}
	if len(result.Bars) == 0 {
		return nil, emptyWindow("price", w)
	}

	return result, nil
}

func seriesValue(series []float64, i int) Value {
	if i >= len(series) || math.IsNaN(series[i]) {
		return Undefined(domain.ErrInsufficientHistory)
	}
	return Defined(series[i])
}
