package metrics

import (
	"time"

	"github.com/aristath/finlookup/internal/domain"
)

// TotalPercent is the constant reference line drawn above the shareholding series.
const TotalPercent = 100.0

// ShareholdingPoint is one day of foreign ownership as a share of issued shares.
type ShareholdingPoint struct {
	Date          time.Time `json:"date"`
	HeldPct       Value     `json:"held_pct"`
	UpperLimitPct Value     `json:"upper_limit_pct"`
	TotalPct      float64   `json:"total_pct"`
}

// ShareholdingResult holds the ratio series for the (possibly widened) window.
type ShareholdingResult struct {
	Window Window              `json:"window"`
	Points []ShareholdingPoint `json:"points"`
}

// ShareholdingRatio computes, over the widened window:
//
//	held        = 100 * foreign shares / issued shares
//	upper limit = 100 * (foreign shares + remaining allowed shares) / issued shares
func ShareholdingRatio(rows []domain.ShareholdingRecord, w Window) (*ShareholdingResult, error) {
	widened := w.Widen(StatementWidenThreshold, StatementWidenYears)
	windowed := filterWindow(rows, widened, func(r domain.ShareholdingRecord) time.Time { return r.Date })
	if len(windowed) == 0 {
		return nil, emptyWindow("shareholding", widened)
	}

	result := &ShareholdingResult{Window: widened, Points: make([]ShareholdingPoint, len(windowed))}
	for i, r := range windowed {
		result.Points[i] = ShareholdingPoint{
			Date:          r.Date,
			HeldPct:       Ratio(100*r.ForeignShares, r.SharesIssued),
			UpperLimitPct: Ratio(100*(r.ForeignShares+r.ForeignRemainingShares), r.SharesIssued),
			TotalPct:      TotalPercent,
		}
	}
	return result, nil
}
