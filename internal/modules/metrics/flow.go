package metrics

import (
	"sort"
	"time"

	"github.com/aristath/finlookup/internal/domain"
	"github.com/aristath/finlookup/internal/modules/charts"
)

// NetFlowPoint is the buy/sell volume summed over every investor category on one date.
type NetFlowPoint struct {
	Date time.Time `json:"date"`
	Buy  float64   `json:"buy"`
	Sell float64   `json:"sell"`
	Net  float64   `json:"net"`
}

// InvestorTotal is one investor category's volume over the whole window.
type InvestorTotal struct {
	Name string  `json:"name"`
	Buy  float64 `json:"buy"`
	Sell float64 `json:"sell"`
	Net  float64 `json:"net"`
}

// NetFlowResult holds the per-date institutional net flow.
type NetFlowResult struct {
	Window     Window           `json:"window"`
	Points     []NetFlowPoint   `json:"points"`
	Range      charts.AxisRange `json:"range"`
	ByInvestor []InvestorTotal  `json:"by_investor"`
}

// InstitutionalNetFlow groups the flows in the window by date and nets buy - sell.
func InstitutionalNetFlow(flows []domain.FlowRecord, w Window) (*NetFlowResult, error) {
	rows := filterWindow(flows, w, func(f domain.FlowRecord) time.Time { return f.Date })
	if len(rows) == 0 {
		return nil, emptyWindow("institutional flow", w)
	}

	result := &NetFlowResult{Window: w}
	investors := make(map[string]*InvestorTotal)

	for _, f := range rows {
		day := domain.Day(f.Date)
		// rows are sorted, so same-date rows are adjacent
		if n := len(result.Points); n == 0 || !result.Points[n-1].Date.Equal(day) {
			result.Points = append(result.Points, NetFlowPoint{Date: day})
		}
		p := &result.Points[len(result.Points)-1]
		p.Buy += f.Buy
		p.Sell += f.Sell

		total, ok := investors[f.Name]
		if !ok {
			total = &InvestorTotal{Name: f.Name}
			investors[f.Name] = total
		}
		total.Buy += f.Buy
		total.Sell += f.Sell
	}

	nets := make([]float64, len(result.Points))
	for i := range result.Points {
		result.Points[i].Net = result.Points[i].Buy - result.Points[i].Sell
		nets[i] = result.Points[i].Net
	}
	result.Range = charts.SymmetricRange(nets)

	for _, total := range investors {
		total.Net = total.Buy - total.Sell
		result.ByInvestor = append(result.ByInvestor, *total)
	}
	sort.Slice(result.ByInvestor, func(i, j int) bool {
		return result.ByInvestor[i].Name < result.ByInvestor[j].Name
	})

	return result, nil
}
