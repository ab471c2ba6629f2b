package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("FINLOOKUP_DATA_DIR", filepath.Join(dir, "cache"))

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, filepath.IsAbs(cfg.DataDir))
	assert.DirExists(t, cfg.DataDir)
	assert.Equal(t, 8050, cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 180, cfg.DefaultWindowDays)
	assert.Equal(t, DefaultFinMindBaseURL, cfg.FinMind.BaseURL)
	assert.Equal(t, "", cfg.FinMind.Token)
	assert.Equal(t, 20*time.Second, cfg.FinMind.Timeout)
	assert.Equal(t, 3, cfg.FinMind.MaxRetries)
	assert.Equal(t, 120*time.Second, cfg.RefreshTimeout)
	assert.Empty(t, cfg.RefreshKinds)
	assert.Equal(t, NewsTokensEntities, cfg.NewsTokenSource)
	assert.False(t, cfg.NewsKeepDigits)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("FINLOOKUP_DATA_DIR", t.TempDir())
	t.Setenv("FINMIND_API_TOKEN", "secret")
	t.Setenv("FINMIND_TIMEOUT_SECONDS", "5")
	t.Setenv("FINMIND_MAX_RETRIES", "2")
	t.Setenv("GO_PORT", "9000")
	t.Setenv("DEV_MODE", "true")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("REFRESH_TIMEOUT_SECONDS", "30")
	t.Setenv("REFRESH_KINDS", " price, news ,,")
	t.Setenv("NEWS_TOKEN_SOURCE", "segments")
	t.Setenv("NEWS_KEEP_DIGITS", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "secret", cfg.FinMind.Token)
	assert.Equal(t, 5*time.Second, cfg.FinMind.Timeout)
	assert.Equal(t, 2, cfg.FinMind.MaxRetries)
	assert.Equal(t, 9000, cfg.Port)
	assert.True(t, cfg.DevMode)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 30*time.Second, cfg.RefreshTimeout)
	assert.Equal(t, []string{"price", "news"}, cfg.RefreshKinds)
	assert.Equal(t, NewsTokensSegments, cfg.NewsTokenSource)
	assert.True(t, cfg.NewsKeepDigits)
}

func TestLoad_RejectsUnknownNewsTokenSource(t *testing.T) {
	t.Setenv("FINLOOKUP_DATA_DIR", t.TempDir())
	t.Setenv("NEWS_TOKEN_SOURCE", "words")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_InvalidValuesIgnoredOrRejected(t *testing.T) {
	t.Setenv("FINLOOKUP_DATA_DIR", t.TempDir())
	t.Setenv("GO_PORT", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8050, cfg.Port)

	t.Setenv("LOG_LEVEL", "chatty")
	_, err = Load()
	assert.Error(t, err)
}

func TestValidate_RejectsBadFinMindSettings(t *testing.T) {
	cfg := &Config{
		DataDir:           "/tmp/finlookup",
		CompanyTablePath:  "StockTable.json",
		LogLevel:          "info",
		Port:              8050,
		DefaultWindowDays: 180,
		RefreshTimeout:    time.Minute,
		NewsTopTerms:      100,
		NewsTokenSource:   NewsTokensEntities,
		FinMind: FinMindConfig{
			BaseURL:    "not a url",
			Timeout:    time.Second,
			MaxRetries: 3,
			RateLimit:  5,
		},
	}
	assert.Error(t, cfg.Validate())

	cfg.FinMind.BaseURL = DefaultFinMindBaseURL
	assert.NoError(t, cfg.Validate())

	cfg.FinMind.MaxRetries = 0
	assert.Error(t, cfg.Validate())
}
