package domain

import (
	"slices"
	"time"
)

// PriceRecord is one daily OHLCV row.
type PriceRecord struct {
	Date     time.Time `json:"date"`
	Open     float64   `json:"open"`
	High     float64   `json:"high"`
	Low      float64   `json:"low"`
	Close    float64   `json:"close"`
	Volume   float64   `json:"volume"`
	Turnover float64   `json:"turnover"`
	Spread   float64   `json:"spread"`
}

// RevenueRecord is one monthly revenue report. Date is the publication month;
// Year and Month name the month the revenue belongs to (0 when not provided).
type RevenueRecord struct {
	Date    time.Time `json:"date"`
	Revenue float64   `json:"revenue"`
	Year    int       `json:"revenue_year"`
	Month   int       `json:"revenue_month"`
}

// FlowRecord is one institutional investor category's buy/sell volume for a day.
type FlowRecord struct {
	Date time.Time `json:"date"`
	Name string    `json:"name"`
	Buy  float64   `json:"buy"`
	Sell float64   `json:"sell"`
}

// MarginRecord is one day of margin purchase and short sale activity.
type MarginRecord struct {
	Date                        time.Time `json:"date"`
	MarginPurchaseBuy           float64   `json:"margin_purchase_buy"`
	MarginPurchaseSell          float64   `json:"margin_purchase_sell"`
	MarginPurchaseCashRepayment float64   `json:"margin_purchase_cash_repayment"`
	MarginPurchaseTodayBalance  float64   `json:"margin_purchase_today_balance"`
	ShortSaleBuy                float64   `json:"short_sale_buy"`
	ShortSaleSell               float64   `json:"short_sale_sell"`
	ShortSaleCashRepayment      float64   `json:"short_sale_cash_repayment"`
	ShortSaleTodayBalance       float64   `json:"short_sale_today_balance"`
}

// ShareholdingRecord is one day of foreign investor shareholding.
type ShareholdingRecord struct {
	Date                   time.Time `json:"date"`
	ForeignShares          float64   `json:"foreign_shares"`
	ForeignRemainingShares float64   `json:"foreign_remaining_shares"`
	SharesIssued           float64   `json:"shares_issued"`
}

// ValuationRecord is one day of valuation ratios.
type ValuationRecord struct {
	Date          time.Time `json:"date"`
	PER           float64   `json:"per"`
	PBR           float64   `json:"pbr"`
	DividendYield float64   `json:"dividend_yield"`
}

// StatementRecord is one line item of a quarterly financial statement.
type StatementRecord struct {
	Date       time.Time `json:"date"`
	Type       string    `json:"type"`
	Value      float64   `json:"value"`
	OriginName string    `json:"origin_name"`
}

// NewsRecord is one scraped headline.
type NewsRecord struct {
	Date   time.Time `json:"date"`
	Source string    `json:"source"`
	Title  string    `json:"title"`
	Link   string    `json:"link"`
}

// decode runs fn for every row and returns the records sorted ascending by date.
// A table with neither columns nor rows (an empty file) decodes to no records.
func decode[T any](t *Table, kind DatasetKind, fn func(r *rowReader) T, date func(T) time.Time) ([]T, error) {
	if t == nil || (len(t.Columns) == 0 && len(t.Rows) == 0) {
		return []T{}, nil
	}
	r, err := newRowReader(t, kind.Spec().Required)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(t.Rows))
	for i := range t.Rows {
		r.reset(i)
		rec := fn(r)
		if r.err != nil {
			return nil, r.err
		}
		out = append(out, rec)
	}
	slices.SortStableFunc(out, func(a, b T) int {
		return date(a).Compare(date(b))
	})
	return out, nil
}

// DecodePrices decodes a Price table.
func DecodePrices(t *Table) ([]PriceRecord, error) {
	return decode(t, KindPrice, func(r *rowReader) PriceRecord {
		return PriceRecord{
			Date:     r.day("date"),
			Open:     r.float("open"),
			High:     r.float("max"),
			Low:      r.float("min"),
			Close:    r.float("close"),
			Volume:   r.float("Trading_Volume"),
			Turnover: r.float("Trading_money"),
			Spread:   r.float("spread"),
		}
	}, func(p PriceRecord) time.Time { return p.Date })
}

// DecodeRevenue decodes a Revenue table.
func DecodeRevenue(t *Table) ([]RevenueRecord, error) {
	return decode(t, KindRevenue, func(r *rowReader) RevenueRecord {
		return RevenueRecord{
			Date:    r.day("date"),
			Revenue: r.float("revenue"),
			Year:    r.integer("revenue_year"),
			Month:   r.integer("revenue_month"),
		}
	}, func(p RevenueRecord) time.Time { return p.Date })
}

// DecodeFlows decodes an InstitutionalFlow table.
func DecodeFlows(t *Table) ([]FlowRecord, error) {
	return decode(t, KindInstitutionalFlow, func(r *rowReader) FlowRecord {
		return FlowRecord{
			Date: r.day("date"),
			Name: r.str("name"),
			Buy:  r.float("buy"),
			Sell: r.float("sell"),
		}
	}, func(p FlowRecord) time.Time { return p.Date })
}

// DecodeMargin decodes a MarginTrading table.
func DecodeMargin(t *Table) ([]MarginRecord, error) {
	return decode(t, KindMarginTrading, func(r *rowReader) MarginRecord {
		return MarginRecord{
			Date:                        r.day("date"),
			MarginPurchaseBuy:           r.float("MarginPurchaseBuy"),
			MarginPurchaseSell:          r.float("MarginPurchaseSell"),
			MarginPurchaseCashRepayment: r.float("MarginPurchaseCashRepayment"),
			MarginPurchaseTodayBalance:  r.float("MarginPurchaseTodayBalance"),
			ShortSaleBuy:                r.float("ShortSaleBuy"),
			ShortSaleSell:               r.float("ShortSaleSell"),
			ShortSaleCashRepayment:      r.float("ShortSaleCashRepayment"),
			ShortSaleTodayBalance:       r.float("ShortSaleTodayBalance"),
		}
	}, func(p MarginRecord) time.Time { return p.Date })
}

// DecodeShareholding decodes a Shareholding table.
func DecodeShareholding(t *Table) ([]ShareholdingRecord, error) {
	return decode(t, KindShareholding, func(r *rowReader) ShareholdingRecord {
		return ShareholdingRecord{
			Date:                   r.day("date"),
			ForeignShares:          r.float("ForeignInvestmentShares"),
			ForeignRemainingShares: r.float("ForeignInvestmentRemainingShares"),
			SharesIssued:           r.float("NumberOfSharesIssued"),
		}
	}, func(p ShareholdingRecord) time.Time { return p.Date })
}

// DecodeValuation decodes a ValuationRatios table.
func DecodeValuation(t *Table) ([]ValuationRecord, error) {
	return decode(t, KindValuationRatios, func(r *rowReader) ValuationRecord {
		return ValuationRecord{
			Date:          r.day("date"),
			PER:           r.float("PER"),
			PBR:           r.float("PBR"),
			DividendYield: r.float("dividend_yield"),
		}
	}, func(p ValuationRecord) time.Time { return p.Date })
}

// DecodeStatements decodes a FinancialStatements table.
func DecodeStatements(t *Table) ([]StatementRecord, error) {
	return decode(t, KindFinancialStatements, func(r *rowReader) StatementRecord {
		return StatementRecord{
			Date:       r.day("date"),
			Type:       r.str("type"),
			Value:      r.float("value"),
			OriginName: r.str("origin_name"),
		}
	}, func(p StatementRecord) time.Time { return p.Date })
}

// DecodeNews decodes a News table. Publication time of day is preserved.
func DecodeNews(t *Table) ([]NewsRecord, error) {
	return decode(t, KindNews, func(r *rowReader) NewsRecord {
		return NewsRecord{
			Date:   r.date("date"),
			Source: r.str("source"),
			Title:  r.str("title"),
			Link:   r.str("link"),
		}
	}, func(p NewsRecord) time.Time { return p.Date })
}
