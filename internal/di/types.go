/**
 * Package di provides dependency injection type definitions.
 *
 * This package defines the Container type which holds all application dependencies.
 * The Container is the single source of truth for all service instances and is
 * passed to the server for access to services.
 */
package di

import (
	"github.com/aristath/finlookup/internal/clientdata"
	"github.com/aristath/finlookup/internal/clients/finmind"
	"github.com/aristath/finlookup/internal/config"
	"github.com/aristath/finlookup/internal/modules/companies"
	"github.com/aristath/finlookup/internal/modules/dashboard"
	"github.com/aristath/finlookup/internal/modules/news"
	"github.com/aristath/finlookup/internal/modules/refresh"
	"github.com/rs/zerolog"
)

// Container holds all application dependencies
type Container struct {
	Config *config.Config
	Log    zerolog.Logger

	// Data layer
	Store   *clientdata.Store
	FinMind *finmind.Client
	Policy  *refresh.Policy

	// Reference data
	Companies *companies.Directory
	Stopwords news.Stopwords
	Lexicon   *news.LexiconRecognizer

	// Services
	Analyzer   *news.Analyzer
	Controller *dashboard.Controller
}
