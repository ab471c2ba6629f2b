package metrics

import (
	"time"

	"github.com/aristath/finlookup/internal/domain"
	"github.com/aristath/finlookup/internal/modules/charts"
)

// MarginPoint is one day of net margin purchase and net short sale volume.
type MarginPoint struct {
	Date          time.Time `json:"date"`
	NetMargin     float64   `json:"net_margin"`
	NetShort      float64   `json:"net_short"`
	MarginBalance float64   `json:"margin_balance"`
	ShortBalance  float64   `json:"short_balance"`
}

// MarginResult holds the windowed margin and short nets.
type MarginResult struct {
	Window Window           `json:"window"`
	Points []MarginPoint    `json:"points"`
	Range  charts.AxisRange `json:"range"`
}

// MarginAndShortNet computes, per date in the window:
//
//	net margin = MarginPurchaseBuy - MarginPurchaseSell - MarginPurchaseCashRepayment
//	net short  = ShortSaleSell - ShortSaleBuy - ShortSaleCashRepayment
func MarginAndShortNet(margin []domain.MarginRecord, w Window) (*MarginResult, error) {
	rows := filterWindow(margin, w, func(m domain.MarginRecord) time.Time { return m.Date })
	if len(rows) == 0 {
		return nil, emptyWindow("margin trading", w)
	}

	result := &MarginResult{Window: w, Points: make([]MarginPoint, len(rows))}
	netMargin := make([]float64, len(rows))
	netShort := make([]float64, len(rows))
	for i, m := range rows {
		netMargin[i] = m.MarginPurchaseBuy - m.MarginPurchaseSell - m.MarginPurchaseCashRepayment
		netShort[i] = m.ShortSaleSell - m.ShortSaleBuy - m.ShortSaleCashRepayment
		result.Points[i] = MarginPoint{
			Date:          m.Date,
			NetMargin:     netMargin[i],
			NetShort:      netShort[i],
			MarginBalance: m.MarginPurchaseTodayBalance,
			ShortBalance:  m.ShortSaleTodayBalance,
		}
	}
	result.Range = charts.SymmetricRange(netMargin, netShort)

	return result, nil
}
