package clientdata

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aristath/finlookup/internal/domain"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	return NewStore(t.TempDir(), zerolog.New(nil).Level(zerolog.Disabled))
}

func TestPath_UsesLabelConvention(t *testing.T) {
	store := NewStore("/cache", zerolog.New(nil).Level(zerolog.Disabled))

	assert.Equal(t, filepath.Join("/cache", "2330", "2330_Investors_Buy_Sell.csv"),
		store.Path("2330", domain.KindInstitutionalFlow))
	assert.Equal(t, filepath.Join("/cache", "2330", "2330_PER.csv"),
		store.Path("2330", domain.KindValuationRatios))
}

func TestWriteRead_RoundTrip(t *testing.T) {
	store := newTestStore(t)

	table := domain.NewTable(domain.KindNews.Spec().Columns)
	table.AppendRow("2024-03-01 09:30:00", "2330", "https://example.com/a?x=1,2", "XYZ News", `He said "hello", then left`)
	table.AppendRow("2024-03-02", "2330", "https://example.com/b", "ABC", "multi\nline title")

	require.NoError(t, store.Write("2330", domain.KindNews, table))

	got, err := store.Read("2330", domain.KindNews)
	require.NoError(t, err)
	assert.Equal(t, table.Columns, got.Columns)
	assert.Equal(t, table.Rows, got.Rows)
}

func TestExists_CacheMissThenHit(t *testing.T) {
	store := newTestStore(t)

	ok, err := store.Exists("2330", domain.KindPrice)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = store.Read("2330", domain.KindPrice)
	assert.ErrorIs(t, err, domain.ErrCacheMiss)

	require.NoError(t, store.Write("2330", domain.KindPrice, domain.NewTable(domain.KindPrice.Spec().Columns)))

	ok, err = store.Exists("2330", domain.KindPrice)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestWrite_FullyOverwrites(t *testing.T) {
	store := newTestStore(t)

	first := domain.NewTable([]string{"date", "revenue"})
	first.AppendRow("2024-01-01", "1")
	first.AppendRow("2024-02-01", "2")
	require.NoError(t, store.Write("2330", domain.KindRevenue, first))

	second := domain.NewTable([]string{"date", "revenue"})
	second.AppendRow("2024-03-01", "3")
	require.NoError(t, store.Write("2330", domain.KindRevenue, second))

	got, err := store.Read("2330", domain.KindRevenue)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"2024-03-01", "3"}}, got.Rows)

	entries, err := os.ReadDir(store.CompanyDir("2330"))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestRead_EmptyFile(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.EnsureCompanyDir("2330"))
	require.NoError(t, os.WriteFile(store.Path("2330", domain.KindNews), nil, 0644))

	got, err := store.Read("2330", domain.KindNews)
	require.NoError(t, err)
	assert.Empty(t, got.Columns)
	assert.Equal(t, 0, got.Len())
}

func TestRead_RaggedRowsAreMalformed(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.EnsureCompanyDir("2330"))
	require.NoError(t, os.WriteFile(store.Path("2330", domain.KindPrice), []byte("date,close\n2024-01-01,1,extra\n"), 0644))

	_, err := store.Read("2330", domain.KindPrice)
	assert.ErrorIs(t, err, domain.ErrMalformedDataset)
}

func TestStore_RejectsUnsafeCompanyIDs(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Exists("../x", domain.KindPrice)
	assert.ErrorIs(t, err, domain.ErrInvalidCompanyID)

	err = store.Write("a/b", domain.KindPrice, domain.NewTable(nil))
	assert.ErrorIs(t, err, domain.ErrInvalidCompanyID)

	_, err = store.Read("", domain.KindPrice)
	assert.ErrorIs(t, err, domain.ErrInvalidCompanyID)
}
