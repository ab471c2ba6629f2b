package metrics

import (
	"fmt"
	"time"

	"github.com/aristath/finlookup/internal/domain"
)

// ValuationResult is the most recent valuation row, verbatim.
type ValuationResult struct {
	Date          time.Time `json:"date"`
	PER           float64   `json:"per"`
	PBR           float64   `json:"pbr"`
	DividendYield float64   `json:"dividend_yield"`
}

// Valuation returns the latest PER, PBR and dividend yield.
func Valuation(rows []domain.ValuationRecord) (*ValuationResult, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("valuation: %w", domain.ErrEmptyWindow)
	}
	last := rows[len(rows)-1]
	return &ValuationResult{
		Date:          last.Date,
		PER:           last.PER,
		PBR:           last.PBR,
		DividendYield: last.DividendYield,
	}, nil
}
