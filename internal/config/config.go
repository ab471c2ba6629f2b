// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// DefaultFinMindBaseURL is the FinMind v4 data endpoint.
const DefaultFinMindBaseURL = "https://api.finmindtrade.com/api/v4"

// News token sources.
const (
	NewsTokensEntities = "entities" // ORG and PERSON entities only
	NewsTokensSegments = "segments" // every segmented word
)

// Config holds application configuration
type Config struct {
	DataDir           string `validate:"required"` // Root of the per-company cache directories (always absolute)
	CompanyTablePath  string `validate:"required"`
	StopwordsPath     string
	NERLexiconPath    string
	LogLevel          string `validate:"oneof=debug info warn warning error"`
	Port              int    `validate:"min=1,max=65535"`
	DevMode           bool
	DefaultWindowDays int           `validate:"min=1"`
	RefreshTimeout    time.Duration `validate:"min=1000000000"` // bounds one company selection
	RefreshKinds      []string      // dataset kinds refreshed on selection; empty means all
	NewsTopTerms      int           `validate:"min=1"`
	NewsTokenSource   string        `validate:"oneof=entities segments"`
	NewsKeepDigits    bool
	FinMind           FinMindConfig
}

// FinMindConfig holds the remote data source settings.
type FinMindConfig struct {
	BaseURL    string        `validate:"required,url"`
	Token      string        // empty is accepted by the unauthenticated tier
	Timeout    time.Duration `validate:"min=1000000000"`
	MaxRetries int           `validate:"min=1,max=10"`
	RateLimit  int           `validate:"min=1"` // requests per second
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("FINLOOKUP_DATA_DIR", "./data")
	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}

	// The cache root must exist; per-company directories are created on demand.
	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:           absDataDir,
		CompanyTablePath:  getEnv("COMPANY_TABLE_PATH", "./StockTable.json"),
		StopwordsPath:     getEnv("STOPWORDS_PATH", "./stopword.txt"),
		NERLexiconPath:    getEnv("NER_LEXICON_PATH", ""),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		Port:              getEnvAsInt("GO_PORT", 8050),
		DevMode:           getEnvAsBool("DEV_MODE", false),
		DefaultWindowDays: getEnvAsInt("DEFAULT_WINDOW_DAYS", 180),
		RefreshTimeout:    time.Duration(getEnvAsInt("REFRESH_TIMEOUT_SECONDS", 120)) * time.Second,
		RefreshKinds:      getEnvAsList("REFRESH_KINDS"),
		NewsTopTerms:      getEnvAsInt("NEWS_TOP_TERMS", 100),
		NewsTokenSource:   getEnv("NEWS_TOKEN_SOURCE", NewsTokensEntities),
		NewsKeepDigits:    getEnvAsBool("NEWS_KEEP_DIGITS", false),
		FinMind: FinMindConfig{
			BaseURL:    getEnv("FINMIND_BASE_URL", DefaultFinMindBaseURL),
			Token:      getEnv("FINMIND_API_TOKEN", ""),
			Timeout:    time.Duration(getEnvAsInt("FINMIND_TIMEOUT_SECONDS", 20)) * time.Second,
			MaxRetries: getEnvAsInt("FINMIND_MAX_RETRIES", 3),
			RateLimit:  getEnvAsInt("FINMIND_RATE_LIMIT", 5),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks if required configuration is present and in range
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsList(key string) []string {
	var out []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
