// Package dashboard is the per-company façade the HTTP layer binds to. It refreshes
// the cache on company selection and computes every view from a fresh cache read.
package dashboard

import (
	"context"
	"fmt"

	"github.com/aristath/finlookup/internal/domain"
	"github.com/aristath/finlookup/internal/modules/companies"
	"github.com/aristath/finlookup/internal/modules/news"
	"github.com/aristath/finlookup/internal/modules/refresh"
	"github.com/rs/zerolog"
)

// Refresher populates the cache for a company.
type Refresher interface {
	Refresh(ctx context.Context, companyID string, forceOnline bool) *refresh.Summary
}

// CacheReader reads one cached dataset.
type CacheReader interface {
	Read(companyID string, kind domain.DatasetKind) (*domain.Table, error)
}

// CompanyLookup resolves display labels.
type CompanyLookup interface {
	Lookup(id string) (companies.Company, bool)
	List() []companies.Company
}

// NewsAnalyzer ranks headline terms.
type NewsAnalyzer interface {
	Analyze(ctx context.Context, rows []domain.NewsRecord, enabled bool) (*news.Analysis, error)
}

// Session identifies the company a request is about. It is passed into every
// view instead of being held by the controller, so concurrent requests for
// different companies never interfere.
type Session struct {
	CompanyID string `json:"company_id"`
}

// NewSession validates the company ID.
func NewSession(companyID string) (Session, error) {
	if err := domain.ValidateCompanyID(companyID); err != nil {
		return Session{}, err
	}
	return Session{CompanyID: companyID}, nil
}

// Selection is the result of choosing a company.
type Selection struct {
	Session Session           `json:"session"`
	Company companies.Company `json:"company"`
	Header  string            `json:"header"`
	Summary *refresh.Summary  `json:"summary"`
	Alerts  refresh.Alerts    `json:"alerts"`
}

// Controller composes the refresh policy, the cache, the metrics engine and the
// news analyzer.
type Controller struct {
	refresher Refresher
	cache     CacheReader
	companies CompanyLookup
	analyzer  NewsAnalyzer
	log       zerolog.Logger
}

// NewController creates a dashboard controller.
func NewController(refresher Refresher, cache CacheReader, directory CompanyLookup, analyzer NewsAnalyzer, log zerolog.Logger) *Controller {
	return &Controller{
		refresher: refresher,
		cache:     cache,
		companies: directory,
		analyzer:  analyzer,
		log:       log.With().Str("service", "dashboard").Logger(),
	}
}

// Companies lists the reference table.
func (c *Controller) Companies() []companies.Company {
	return c.companies.List()
}

// SelectCompany refreshes the company's cache (every kind when forceOnline, else only
// missing kinds) and returns the header labels and alert states. Fetch failures are
// reported in the summary, never as an error.
func (c *Controller) SelectCompany(ctx context.Context, companyID string, forceOnline bool) (*Selection, error) {
	session, err := NewSession(companyID)
	if err != nil {
		return nil, err
	}

	company, ok := c.companies.Lookup(companyID)
	if !ok {
		// The provider is the authority on IDs; unknown ones just lack labels.
		company = companies.Company{ID: companyID}
		c.log.Debug().Str("company_id", companyID).Msg("Company not in reference table")
	}

	summary := c.refresher.Refresh(ctx, companyID, forceOnline)

	return &Selection{
		Session: session,
		Company: company,
		Header:  company.Header(),
		Summary: summary,
		Alerts:  summary.Alerts(),
	}, nil
}

// read loads and decodes one dataset for the session.
func read[T any](c *Controller, s Session, kind domain.DatasetKind, decode func(*domain.Table) ([]T, error)) ([]T, error) {
	table, err := c.cache.Read(s.CompanyID, kind)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", kind, err)
	}
	rows, err := decode(table)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", kind, err)
	}
	return rows, nil
}
