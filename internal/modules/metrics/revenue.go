package metrics

import (
	"fmt"
	"time"

	"github.com/aristath/finlookup/internal/domain"
	"github.com/aristath/finlookup/internal/modules/charts"
)

// yoyLag is the number of monthly rows between a period and the same month last year.
const yoyLag = 12

// RevenuePoint is one month of revenue with its growth rates.
type RevenuePoint struct {
	Period    time.Time `json:"period"`    // first day of the month the revenue belongs to
	Published time.Time `json:"published"` // report date
	Revenue   float64   `json:"revenue"`
	MoM       Value     `json:"mom"`
	YoY       Value     `json:"yoy"`
}

// RevenueRow is a display row: revenue in millions and growth rounded to two decimals.
type RevenueRow struct {
	Date            string  `json:"date"`
	RevenueMillions float64 `json:"revenue_millions"`
	YoY             Value   `json:"yoy"`
	MoM             Value   `json:"mom"`
}

// RevenueResult holds the growth series for the (possibly widened) window.
type RevenueResult struct {
	Window       Window           `json:"window"`
	Points       []RevenuePoint   `json:"points"`
	LatestMoM    Value            `json:"latest_mom"`
	LatestYoY    Value            `json:"latest_yoy"`
	RevenueRange charts.AxisRange `json:"revenue_range"`
	RatioRange   charts.AxisRange `json:"ratio_range"`
	Table        []RevenueRow     `json:"table"` // most recent first
}

// RevenueGrowth computes MoM and YoY over the full history, then slices to the
// window after applying the revenue auto-widen rule.
//
//	MoM = (revenue / revenue[previous row] - 1) * 100
//	YoY = (revenue / revenue[12 rows back] - 1) * 100
func RevenueGrowth(revenue []domain.RevenueRecord, w Window) (*RevenueResult, error) {
	if len(revenue) == 0 {
		return nil, emptyWindow("revenue", w)
	}

	points := make([]RevenuePoint, len(revenue))
	for i, r := range revenue {
		points[i] = RevenuePoint{
			Period:    revenuePeriod(r),
			Published: r.Date,
			Revenue:   r.Revenue,
			MoM:       lagGrowth(revenue, i, 1),
			YoY:       lagGrowth(revenue, i, yoyLag),
		}
	}

	widened := w.Widen(RevenueWidenThreshold, RevenueWidenYears)
	result := &RevenueResult{
		Window:    widened,
		Points:    filterWindow(points, widened, func(p RevenuePoint) time.Time { return p.Period }),
		LatestMoM: points[len(points)-1].MoM,
		LatestYoY: points[len(points)-1].YoY,
	}
	if len(result.Points) == 0 {
		return nil, emptyWindow("revenue", widened)
	}

	amounts := make([]float64, len(result.Points))
	moms := make([]Value, len(result.Points))
	yoys := make([]Value, len(result.Points))
	for i, p := range result.Points {
		amounts[i] = p.Revenue
		moms[i] = p.MoM
		yoys[i] = p.YoY
	}
	result.RevenueRange = charts.PaddedRange(amounts)
	result.RatioRange = charts.SymmetricRange(values(yoys, moms))

	for _, p := range charts.Descending(result.Points) {
		result.Table = append(result.Table, RevenueRow{
			Date:            p.Period.Format(domain.DateLayout),
			RevenueMillions: charts.Millions(p.Revenue),
			YoY:             p.YoY.Map(charts.Round2),
			MoM:             p.MoM.Map(charts.Round2),
		})
	}

	return result, nil
}

func lagGrowth(revenue []domain.RevenueRecord, i, lag int) Value {
	if i < lag {
		return Undefined(fmt.Errorf("needs %d prior months, have %d: %w", lag, i, domain.ErrInsufficientHistory))
	}
	return Growth(revenue[i].Revenue, revenue[i-lag].Revenue)
}

// revenuePeriod is the month the revenue was earned in. Reports are published
// the month after, so without revenue_year/revenue_month the report month minus one is used.
func revenuePeriod(r domain.RevenueRecord) time.Time {
	if r.Year > 0 && r.Month >= 1 && r.Month <= 12 {
		return time.Date(r.Year, time.Month(r.Month), 1, 0, 0, 0, 0, time.UTC)
	}
	d := domain.Day(r.Date)
	return time.Date(d.Year(), d.Month()-1, 1, 0, 0, 0, 0, time.UTC)
}
