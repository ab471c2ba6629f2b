// Package di provides dependency injection wiring and initialization.
package di

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/aristath/finlookup/internal/clientdata"
	"github.com/aristath/finlookup/internal/clients/finmind"
	"github.com/aristath/finlookup/internal/config"
	"github.com/aristath/finlookup/internal/domain"
	"github.com/aristath/finlookup/internal/modules/companies"
	"github.com/aristath/finlookup/internal/modules/dashboard"
	"github.com/aristath/finlookup/internal/modules/news"
	"github.com/aristath/finlookup/internal/modules/refresh"
	"github.com/rs/zerolog"
)

// Wire initializes all dependencies and returns a fully configured container
// Order of operations:
// 1. Load reference data (company table, stopwords, entity lexicon)
// 2. Initialize the cache store and the FinMind client
// 3. Initialize services
func Wire(cfg *config.Config, log zerolog.Logger) (*Container, error) {
	container := &Container{Config: cfg, Log: log}

	// Step 1: Reference data
	if err := initializeReferenceData(container, cfg, log); err != nil {
		return nil, fmt.Errorf("failed to load reference data: %w", err)
	}

	// Step 2: Data layer
	container.Store = clientdata.NewStore(cfg.DataDir, log)
	container.FinMind = finmind.NewClient(cfg.FinMind.Token, log,
		finmind.WithBaseURL(cfg.FinMind.BaseURL),
		finmind.WithTimeout(cfg.FinMind.Timeout),
		finmind.WithRateLimit(cfg.FinMind.RateLimit),
		finmind.WithRetry(cfg.FinMind.MaxRetries, time.Second),
	)

	policyOpts := []refresh.Option{
		refresh.WithTimeout(cfg.RefreshTimeout),
		refresh.WithFetchTimeout(container.FinMind.Budget()),
	}
	if len(cfg.RefreshKinds) > 0 {
		kinds, err := parseKinds(cfg.RefreshKinds)
		if err != nil {
			return nil, fmt.Errorf("invalid REFRESH_KINDS: %w", err)
		}
		policyOpts = append(policyOpts, refresh.WithKinds(kinds...))
	}
	container.Policy = refresh.NewPolicy(container.FinMind, container.Store, log, policyOpts...)

	// Step 3: Services
	analyzerOpts := []news.Option{
		news.WithStopwords(container.Stopwords),
		news.WithTopK(cfg.NewsTopTerms),
	}
	if cfg.NewsTokenSource == config.NewsTokensSegments {
		analyzerOpts = append(analyzerOpts, news.WithTokenSource(news.FromSegments))
	}
	if cfg.NewsKeepDigits {
		analyzerOpts = append(analyzerOpts, news.WithDigits())
	}
	container.Analyzer = news.NewAnalyzer(container.Lexicon, log, analyzerOpts...)
	container.Controller = dashboard.NewController(
		container.Policy,
		container.Store,
		container.Companies,
		container.Analyzer,
		log,
	)

	log.Info().
		Str("data_dir", cfg.DataDir).
		Int("companies", container.Companies.Len()).
		Int("stopwords", len(container.Stopwords)).
		Int("lexicon", container.Lexicon.Len()).
		Msg("Dependency injection wiring completed successfully")

	return container, nil
}

// initializeReferenceData loads the company table, stopwords and entity lexicon.
// A missing company table or stopword file degrades with a warning; a malformed
// lexicon file is an error.
func initializeReferenceData(container *Container, cfg *config.Config, log zerolog.Logger) error {
	directory, err := companies.Load(cfg.CompanyTablePath)
	if err != nil {
		log.Warn().Err(err).Str("path", cfg.CompanyTablePath).Msg("Company table unavailable, headers fall back to company IDs")
		directory, _ = companies.Parse(strings.NewReader("[]"))
	}
	container.Companies = directory

	stopwords, found, err := news.LoadStopwords(cfg.StopwordsPath)
	if err != nil {
		return fmt.Errorf("failed to load stopwords: %w", err)
	}
	if !found && cfg.StopwordsPath != "" {
		log.Warn().Str("path", cfg.StopwordsPath).Msg("Stopword file not found, using built-in stopwords")
	}
	container.Stopwords = stopwords

	lexicon := news.NewLexiconRecognizer()
	for _, c := range directory.List() {
		lexicon.Add(c.ShortName, news.TagOrg)
		lexicon.Add(c.EnglishName, news.TagOrg)
	}
	if cfg.NERLexiconPath != "" {
		if err := loadLexicon(lexicon, cfg.NERLexiconPath); err != nil {
			return err
		}
	}
	container.Lexicon = lexicon

	return nil
}

// parseKinds resolves dataset kind names, keeping their order.
func parseKinds(names []string) ([]domain.DatasetKind, error) {
	kinds := make([]domain.DatasetKind, 0, len(names))
	for _, name := range names {
		kind, err := domain.ParseKind(name)
		if err != nil {
			return nil, err
		}
		kinds = append(kinds, kind)
	}
	return kinds, nil
}

func loadLexicon(lexicon *news.LexiconRecognizer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open entity lexicon: %w", err)
	}
	defer f.Close()

	if err := lexicon.Load(f); err != nil {
		return fmt.Errorf("failed to load entity lexicon %s: %w", path, err)
	}
	return nil
}
