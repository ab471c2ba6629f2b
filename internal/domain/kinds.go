// Package domain holds the dataset model shared by the fetch, cache and metrics layers.
package domain

import (
	"fmt"
	"regexp"
	"time"
)

// DatasetKind identifies one per-company dataset provided by FinMind.
type DatasetKind int

const (
	KindPrice DatasetKind = iota
	KindRevenue
	KindInstitutionalFlow
	KindValuationRatios
	KindFinancialStatements
	KindMarginTrading
	KindShareholding
	KindNews
)

// DateLayout is the calendar-date format used by the provider, the cache and the API.
const DateLayout = "2006-01-02"

// StartPolicy describes where a refresh begins for a dataset.
// Either a fixed calendar date or a lookback relative to the refresh time.
type StartPolicy struct {
	Fixed    time.Time
	Lookback time.Duration
}

// From resolves the start date for a refresh happening at now.
func (p StartPolicy) From(now time.Time) time.Time {
	if p.Lookback > 0 {
		d := now.Add(-p.Lookback)
		return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	}
	return p.Fixed
}

// KindSpec is the static description of a dataset kind.
type KindSpec struct {
	Kind     DatasetKind
	Name     string // short identifier used in logs and the API
	Dataset  string // remote dataset name
	Label    string // cache file label
	Start    StartPolicy
	Columns  []string // canonical column order
	Required []string // columns typed decoding depends on
}

func fixedDate(year int, month time.Month, day int) StartPolicy {
	return StartPolicy{Fixed: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

var kindSpecs = []KindSpec{
	{
		Kind:     KindPrice,
		Name:     "price",
		Dataset:  "TaiwanStockPrice",
		Label:    "Price",
		Start:    fixedDate(2009, time.January, 1),
		Columns:  []string{"date", "stock_id", "Trading_Volume", "Trading_money", "open", "max", "min", "close", "spread", "Trading_turnover"},
		Required: []string{"date", "open", "max", "min", "close", "Trading_Volume"},
	},
	{
		Kind:     KindRevenue,
		Name:     "revenue",
		Dataset:  "TaiwanStockMonthRevenue",
		Label:    "Revenue",
		Start:    fixedDate(2008, time.January, 1),
		Columns:  []string{"date", "stock_id", "country", "revenue", "revenue_month", "revenue_year"},
		Required: []string{"date", "revenue"},
	},
	{
		Kind:     KindInstitutionalFlow,
		Name:     "institutional_flow",
		Dataset:  "TaiwanStockInstitutionalInvestorsBuySell",
		Label:    "Investors_Buy_Sell",
		Start:    fixedDate(2008, time.January, 1),
		Columns:  []string{"date", "stock_id", "buy", "name", "sell"},
		Required: []string{"date", "buy", "sell"},
	},
	{
		Kind:     KindValuationRatios,
		Name:     "valuation",
		Dataset:  "TaiwanStockPER",
		Label:    "PER",
		Start:    StartPolicy{Lookback: 90 * 24 * time.Hour},
		Columns:  []string{"date", "stock_id", "dividend_yield", "PER", "PBR"},
		Required: []string{"date", "PER", "PBR"},
	},
	{
		Kind:     KindFinancialStatements,
		Name:     "financial_statements",
		Dataset:  "TaiwanStockFinancialStatements",
		Label:    "Financial_Statements",
		Start:    fixedDate(2008, time.January, 1),
		Columns:  []string{"date", "stock_id", "type", "value", "origin_name"},
		Required: []string{"date", "type", "value"},
	},
	{
		Kind:    KindMarginTrading,
		Name:    "margin_trading",
		Dataset: "TaiwanStockMarginPurchaseShortSale",
		Label:   "Margin_Trading",
		Start:   fixedDate(2008, time.January, 1),
		Columns: []string{
			"date", "stock_id",
			"MarginPurchaseBuy", "MarginPurchaseCashRepayment", "MarginPurchaseLimit", "MarginPurchaseSell",
			"MarginPurchaseTodayBalance", "MarginPurchaseYesterdayBalance", "Note", "OffsetLoanAndShort",
			"ShortSaleBuy", "ShortSaleCashRepayment", "ShortSaleLimit", "ShortSaleSell",
			"ShortSaleTodayBalance", "ShortSaleYesterdayBalance",
		},
		Required: []string{
			"date",
			"MarginPurchaseBuy", "MarginPurchaseSell", "MarginPurchaseCashRepayment",
			"ShortSaleBuy", "ShortSaleSell", "ShortSaleCashRepayment",
		},
	},
	{
		Kind:    KindShareholding,
		Name:    "shareholding",
		Dataset: "TaiwanStockShareholding",
		Label:   "Shareholding",
		Start:   fixedDate(2008, time.January, 1),
		Columns: []string{
			"date", "stock_id", "stock_name", "InternationalCode",
			"ForeignInvestmentRemainingShares", "ForeignInvestmentShares", "ForeignInvestmentRemainRatio",
			"ForeignInvestmentSharesRatio", "ForeignInvestmentUpperLimitRatio", "ChineseInvestmentUpperLimitRatio",
			"NumberOfSharesIssued", "RecentlyDeclareDate", "note",
		},
		Required: []string{"date", "ForeignInvestmentShares", "ForeignInvestmentRemainingShares", "NumberOfSharesIssued"},
	},
	{
		Kind:     KindNews,
		Name:     "news",
		Dataset:  "TaiwanStockNews",
		Label:    "News",
		Start:    StartPolicy{Lookback: 20 * 24 * time.Hour},
		Columns:  []string{"date", "stock_id", "link", "source", "title"},
		Required: []string{"date", "link", "source", "title"},
	},
}

// AllKinds returns every dataset kind in refresh order.
func AllKinds() []DatasetKind {
	kinds := make([]DatasetKind, len(kindSpecs))
	for i, s := range kindSpecs {
		kinds[i] = s.Kind
	}
	return kinds
}

// Spec returns the static description of the kind.
func (k DatasetKind) Spec() KindSpec {
	if int(k) < 0 || int(k) >= len(kindSpecs) {
		panic(fmt.Sprintf("domain: unknown dataset kind %d", int(k)))
	}
	return kindSpecs[k]
}

func (k DatasetKind) String() string {
	if int(k) < 0 || int(k) >= len(kindSpecs) {
		return fmt.Sprintf("DatasetKind(%d)", int(k))
	}
	return kindSpecs[k].Name
}

// MarshalText encodes the kind by name so outcomes read well in JSON.
func (k DatasetKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// ParseKind looks a kind up by its short name.
func ParseKind(name string) (DatasetKind, error) {
	for _, s := range kindSpecs {
		if s.Name == name {
			return s.Kind, nil
		}
	}
	return 0, fmt.Errorf("unknown dataset kind %q", name)
}

var companyIDPattern = regexp.MustCompile(`^[A-Za-z0-9]+$`)

// ValidateCompanyID rejects identifiers that cannot safely name a cache directory.
func ValidateCompanyID(id string) error {
	if !companyIDPattern.MatchString(id) {
		return fmt.Errorf("%w: %q", ErrInvalidCompanyID, id)
	}
	return nil
}
