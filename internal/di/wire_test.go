package di

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aristath/finlookup/internal/config"
	"github.com/aristath/finlookup/internal/domain"
	"github.com/aristath/finlookup/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	tmpDir := t.TempDir()
	return &config.Config{
		DataDir:           filepath.Join(tmpDir, "data"),
		CompanyTablePath:  filepath.Join(tmpDir, "StockTable.json"),
		StopwordsPath:     filepath.Join(tmpDir, "stopword.txt"),
		LogLevel:          "info",
		Port:              8050,
		DefaultWindowDays: 180,
		RefreshTimeout:    time.Minute,
		NewsTopTerms:      100,
		NewsTokenSource:   config.NewsTokensEntities,
		FinMind: config.FinMindConfig{
			BaseURL:    config.DefaultFinMindBaseURL,
			Timeout:    20 * time.Second,
			MaxRetries: 3,
			RateLimit:  5,
		},
	}
}

func TestWire(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.WriteFile(cfg.CompanyTablePath,
		[]byte(`[{"公司代號": 2330, "公司簡稱": "台積電", "英文簡稱": "TSMC"}]`), 0644))
	require.NoError(t, os.WriteFile(cfg.StopwordsPath, []byte("公司\n股價\n"), 0644))

	container, err := Wire(cfg, logger.Nop())
	require.NoError(t, err)
	require.NotNil(t, container)

	assert.NotNil(t, container.Store)
	assert.NotNil(t, container.FinMind)
	assert.NotNil(t, container.Policy)
	assert.NotNil(t, container.Analyzer)
	assert.NotNil(t, container.Controller)

	assert.Equal(t, 1, container.Companies.Len())
	assert.True(t, container.Stopwords.Contains("股價"))
	// short and English names
	assert.Equal(t, 2, container.Lexicon.Len())
}

func TestWire_MissingReferenceFilesDegrade(t *testing.T) {
	cfg := testConfig(t)

	container, err := Wire(cfg, logger.Nop())
	require.NoError(t, err)

	assert.Equal(t, 0, container.Companies.Len())
	assert.Empty(t, container.Controller.Companies())
	assert.True(t, container.Stopwords.Contains("蘋果日報"))
	assert.Equal(t, 0, container.Lexicon.Len())
}

func TestWire_LoadsEntityLexicon(t *testing.T) {
	cfg := testConfig(t)
	cfg.NERLexiconPath = filepath.Join(t.TempDir(), "lexicon.txt")
	require.NoError(t, os.WriteFile(cfg.NERLexiconPath, []byte("# people\n魏哲家\tPERSON\n輝達\n"), 0644))

	container, err := Wire(cfg, logger.Nop())
	require.NoError(t, err)
	assert.Equal(t, 2, container.Lexicon.Len())
}

func TestWire_MissingEntityLexiconFails(t *testing.T) {
	cfg := testConfig(t)
	cfg.NERLexiconPath = filepath.Join(t.TempDir(), "missing.txt")

	_, err := Wire(cfg, logger.Nop())
	assert.Error(t, err)
}

func TestWire_RefreshKinds(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		_, _ = w.Write([]byte(`{"msg":"success","status":200,"data":[]}`))
	}))
	t.Cleanup(server.Close)

	cfg := testConfig(t)
	cfg.FinMind.BaseURL = server.URL
	cfg.RefreshKinds = []string{"price", "news"}

	container, err := Wire(cfg, logger.Nop())
	require.NoError(t, err)

	summary := container.Policy.Refresh(context.Background(), "2330", true)
	assert.Equal(t, int32(2), requests.Load())
	require.Len(t, summary.Outcomes, 2)
	assert.Equal(t, domain.KindPrice, summary.Outcomes[0].Kind)
	assert.Equal(t, domain.KindNews, summary.Outcomes[1].Kind)
}

func TestWire_UnknownRefreshKindFails(t *testing.T) {
	cfg := testConfig(t)
	cfg.RefreshKinds = []string{"price", "options"}

	_, err := Wire(cfg, logger.Nop())
	assert.Error(t, err)
}

func TestWire_NewsTokenSettings(t *testing.T) {
	rows := make([]domain.NewsRecord, 10)
	for i := range rows {
		rows[i] = domain.NewsRecord{
			Date:  time.Date(2024, 3, 1, i, 0, 0, 0, time.UTC),
			Link:  fmt.Sprintf("https://example.com/%d", i),
			Title: fmt.Sprintf("q%dq", i),
		}
	}

	cfg := testConfig(t)
	container, err := Wire(cfg, logger.Nop())
	require.NoError(t, err)
	_, err = container.Analyzer.Analyze(context.Background(), rows, true)
	assert.ErrorIs(t, err, domain.ErrInsufficientHistory, "no entities and digits removed")

	cfg = testConfig(t)
	cfg.NewsTokenSource = config.NewsTokensSegments
	cfg.NewsKeepDigits = true
	container, err = Wire(cfg, logger.Nop())
	require.NoError(t, err)
	result, err := container.Analyzer.Analyze(context.Background(), rows, true)
	require.NoError(t, err)
	assert.Len(t, result.Terms, 10)
}
