package dashboard

import (
	"context"

	"github.com/aristath/finlookup/internal/domain"
	"github.com/aristath/finlookup/internal/modules/metrics"
	"github.com/aristath/finlookup/internal/modules/news"
)

// Issue is a view or sub-view that could not be computed.
type Issue struct {
	View  string `json:"view"`
	Error string `json:"error"`
	Err   error  `json:"-" msgpack:"-"`
}

func issue(view string, err error) Issue {
	return Issue{View: view, Error: err.Error(), Err: err}
}

// PriceView is the price header and bars with the institutional flow and margin
// panels drawn below them. The panels fail independently of the price.
type PriceView struct {
	Price   *metrics.PriceResult   `json:"price"`
	NetFlow *metrics.NetFlowResult `json:"net_flow,omitempty"`
	Margin  *metrics.MarginResult  `json:"margin,omitempty"`
	Issues  []Issue                `json:"issues,omitempty"`
}

// PriceView computes the price summary, institutional net flow and margin nets.
func (c *Controller) PriceView(s Session, w metrics.Window) (*PriceView, error) {
	prices, err := read(c, s, domain.KindPrice, domain.DecodePrices)
	if err != nil {
		return nil, err
	}
	price, err := metrics.PriceSummary(prices, w)
	if err != nil {
		return nil, err
	}
	view := &PriceView{Price: price}

	if flows, err := read(c, s, domain.KindInstitutionalFlow, domain.DecodeFlows); err != nil {
		view.Issues = append(view.Issues, issue("net_flow", err))
	} else if view.NetFlow, err = metrics.InstitutionalNetFlow(flows, w); err != nil {
		view.Issues = append(view.Issues, issue("net_flow", err))
	}

	if margin, err := read(c, s, domain.KindMarginTrading, domain.DecodeMargin); err != nil {
		view.Issues = append(view.Issues, issue("margin", err))
	} else if view.Margin, err = metrics.MarginAndShortNet(margin, w); err != nil {
		view.Issues = append(view.Issues, issue("margin", err))
	}

	return view, nil
}

// RevenueView computes monthly revenue growth.
func (c *Controller) RevenueView(s Session, w metrics.Window) (*metrics.RevenueResult, error) {
	rows, err := read(c, s, domain.KindRevenue, domain.DecodeRevenue)
	if err != nil {
		return nil, err
	}
	return metrics.RevenueGrowth(rows, w)
}

// FinancialStatementsView computes EPS and gross margin.
func (c *Controller) FinancialStatementsView(s Session, w metrics.Window) (*metrics.StatementResult, error) {
	rows, err := read(c, s, domain.KindFinancialStatements, domain.DecodeStatements)
	if err != nil {
		return nil, err
	}
	return metrics.FinancialStatementMetrics(rows, w)
}

// ValuationRatios returns the latest PER and PBR.
func (c *Controller) ValuationRatios(s Session) (*metrics.ValuationResult, error) {
	rows, err := read(c, s, domain.KindValuationRatios, domain.DecodeValuation)
	if err != nil {
		return nil, err
	}
	return metrics.Valuation(rows)
}

// ShareholdingView computes the foreign shareholding ratios.
func (c *Controller) ShareholdingView(s Session, w metrics.Window) (*metrics.ShareholdingResult, error) {
	rows, err := read(c, s, domain.KindShareholding, domain.DecodeShareholding)
	if err != nil {
		return nil, err
	}
	return metrics.ShareholdingRatio(rows, w)
}

// NewsView returns the de-duplicated headlines, most recent first.
func (c *Controller) NewsView(s Session) ([]domain.NewsRecord, error) {
	rows, err := read(c, s, domain.KindNews, domain.DecodeNews)
	if err != nil {
		return nil, err
	}
	return news.Prepare(rows), nil
}

// NewsAnalysis ranks headline terms. enabled is owned by the caller; when false the
// cache is not read.
func (c *Controller) NewsAnalysis(ctx context.Context, s Session, enabled bool) (*news.Analysis, error) {
	if !enabled {
		return c.analyzer.Analyze(ctx, nil, false)
	}
	rows, err := read(c, s, domain.KindNews, domain.DecodeNews)
	if err != nil {
		return nil, err
	}
	return c.analyzer.Analyze(ctx, rows, true)
}

// Overview is every view for one window. A failing view leaves its slot empty
// and is listed in Issues.
type Overview struct {
	Session      Session                     `json:"session"`
	Window       metrics.Window              `json:"window"`
	Price        *PriceView                  `json:"price,omitempty"`
	Revenue      *metrics.RevenueResult      `json:"revenue,omitempty"`
	Statements   *metrics.StatementResult    `json:"statements,omitempty"`
	Valuation    *metrics.ValuationResult    `json:"valuation,omitempty"`
	Shareholding *metrics.ShareholdingResult `json:"shareholding,omitempty"`
	News         []domain.NewsRecord         `json:"news,omitempty"`
	Issues       []Issue                     `json:"issues,omitempty"`
}

// Overview computes every view, isolating failures per view.
func (c *Controller) Overview(s Session, w metrics.Window) *Overview {
	o := &Overview{Session: s, Window: w}
	var err error

	if o.Price, err = c.PriceView(s, w); err != nil {
		o.Issues = append(o.Issues, issue("price", err))
	} else {
		o.Issues = append(o.Issues, o.Price.Issues...)
	}
	if o.Revenue, err = c.RevenueView(s, w); err != nil {
		o.Issues = append(o.Issues, issue("revenue", err))
	}
	if o.Statements, err = c.FinancialStatementsView(s, w); err != nil {
		o.Issues = append(o.Issues, issue("statements", err))
	}
	if o.Valuation, err = c.ValuationRatios(s); err != nil {
		o.Issues = append(o.Issues, issue("valuation", err))
	}
	if o.Shareholding, err = c.ShareholdingView(s, w); err != nil {
		o.Issues = append(o.Issues, issue("shareholding", err))
	}
	if o.News, err = c.NewsView(s); err != nil {
		o.Issues = append(o.Issues, issue("news", err))
	}

	if len(o.Issues) > 0 {
		c.log.Debug().Str("company_id", s.CompanyID).Int("issues", len(o.Issues)).Msg("Overview computed with issues")
	}
	return o
}
