package metrics

import (
	"fmt"
	"time"

	"github.com/aristath/finlookup/internal/domain"
	"github.com/aristath/finlookup/internal/modules/charts"
)

// Statement line item types used by the derived metrics.
const (
	StatementEPS         = "EPS"
	StatementRevenue     = "Revenue"
	StatementGrossProfit = "GrossProfit"
)

// SnapshotRow is one line item of the most recent statement, for display.
// EPS is kept in absolute units, every other type is in millions.
type SnapshotRow struct {
	Type       string  `json:"type"`
	OriginName string  `json:"origin_name"`
	Value      float64 `json:"value"`
}

// GrossMarginPoint is the gross margin percentage of one reporting date.
type GrossMarginPoint struct {
	Date  time.Time `json:"date"`
	Value Value     `json:"value"`
}

// StatementResult holds EPS and gross margin for the (possibly widened) window.
type StatementResult struct {
	Window            Window                  `json:"window"`
	LatestEPS         Value                   `json:"latest_eps"`
	EPS               []charts.ChartDataPoint `json:"eps"`
	GrossMargin       []GrossMarginPoint      `json:"gross_margin"`
	LatestGrossMargin Value                   `json:"latest_gross_margin"`
	SnapshotDate      time.Time               `json:"snapshot_date"`
	Snapshot          []SnapshotRow           `json:"snapshot"`
}

// FinancialStatementMetrics derives EPS and gross margin (GrossProfit * 100 / Revenue)
// from statement line items. Latest EPS and the snapshot use the full history.
func FinancialStatementMetrics(rows []domain.StatementRecord, w Window) (*StatementResult, error) {
	if len(rows) == 0 {
		return nil, emptyWindow("financial statements", w)
	}

	widened := w.Widen(StatementWidenThreshold, StatementWidenYears)
	result := &StatementResult{
		Window:            widened,
		LatestEPS:         Undefined(fmt.Errorf("no EPS rows: %w", domain.ErrInsufficientHistory)),
		LatestGrossMargin: Undefined(fmt.Errorf("no revenue rows in window: %w", domain.ErrInsufficientHistory)),
	}
	for _, r := range rows {
		if r.Type == StatementEPS {
			result.LatestEPS = Defined(r.Value)
		}
	}

	windowed := filterWindow(rows, widened, func(r domain.StatementRecord) time.Time { return r.Date })
	if len(windowed) == 0 {
		return nil, emptyWindow("financial statements", widened)
	}

	type pair struct {
		revenue, gross       float64
		hasRevenue, hasGross bool
	}
	var dates []time.Time
	pairs := make(map[time.Time]*pair)
	for _, r := range windowed {
		day := domain.Day(r.Date)
		switch r.Type {
		case StatementEPS:
			result.EPS = append(result.EPS, charts.Point(day, r.Value))
		case StatementRevenue, StatementGrossProfit:
			p, ok := pairs[day]
			if !ok {
				p = &pair{}
				pairs[day] = p
				dates = append(dates, day)
			}
			if r.Type == StatementRevenue {
				p.revenue, p.hasRevenue = r.Value, true
			} else {
				p.gross, p.hasGross = r.Value, true
			}
		}
	}

	for _, day := range dates {
		p := pairs[day]
		v := Undefined(fmt.Errorf("gross margin on %s lacks a counterpart: %w", day.Format(domain.DateLayout), domain.ErrUndefinedRatio))
		if p.hasRevenue && p.hasGross {
			v = Ratio(p.gross*100, p.revenue)
		}
		result.GrossMargin = append(result.GrossMargin, GrossMarginPoint{Date: day, Value: v})
	}
	if n := len(result.GrossMargin); n > 0 {
		result.LatestGrossMargin = result.GrossMargin[n-1].Value
	}

	latest := domain.Day(rows[len(rows)-1].Date)
	result.SnapshotDate = latest
	for _, r := range rows {
		if !domain.Day(r.Date).Equal(latest) {
			continue
		}
		value := r.Value
		if r.Type != StatementEPS {
			value = charts.Millions(value)
		}
		result.Snapshot = append(result.Snapshot, SnapshotRow{Type: r.Type, OriginName: r.OriginName, Value: value})
	}

	return result, nil
}
