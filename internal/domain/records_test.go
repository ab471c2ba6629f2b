package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodePrices_SortsAscending(t *testing.T) {
	table := NewTable(KindPrice.Spec().Columns)
	table.AppendRow("2024-01-03", "2330", "1000", "500000", "505", "510", "495", "498", "-7", "10")
	table.AppendRow("2024-01-01", "2330", "1200", "600000", "499", "502", "497", "500", "1", "12")
	table.AppendRow("2024-01-02", "2330", "900", "450000", "500", "507", "499", "505", "5", "9")

	prices, err := DecodePrices(table)
	require.NoError(t, err)
	require.Len(t, prices, 3)

	assert.Equal(t, []float64{500, 505, 498}, []float64{prices[0].Close, prices[1].Close, prices[2].Close})
	assert.Equal(t, 510.0, prices[2].High)
	assert.Equal(t, 495.0, prices[2].Low)
	assert.Equal(t, 1000.0, prices[2].Volume)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), prices[0].Date)
}

func TestDecode_MissingColumnIsMalformed(t *testing.T) {
	table := NewTable([]string{"date", "stock_id", "buy"})
	table.AppendRow("2024-01-01", "2330", "100")

	_, err := DecodeFlows(table)
	assert.ErrorIs(t, err, ErrMalformedDataset)
	assert.Contains(t, err.Error(), "sell")
}

func TestDecode_BadCellIsMalformed(t *testing.T) {
	table := NewTable(KindValuationRatios.Spec().Columns)
	table.AppendRow("2024-01-01", "2330", "2.1", "abc", "5.2")

	_, err := DecodeValuation(table)
	assert.ErrorIs(t, err, ErrMalformedDataset)

	table = NewTable(KindValuationRatios.Spec().Columns)
	table.AppendRow("01/02/2024", "2330", "2.1", "20.5", "5.2")
	_, err = DecodeValuation(table)
	assert.ErrorIs(t, err, ErrMalformedDataset)
}

func TestDecode_EmptyNumericCellIsZero(t *testing.T) {
	table := NewTable(KindRevenue.Spec().Columns)
	table.AppendRow("2024-02-01", "2330", "Taiwan", "1000000", "", "")

	revenue, err := DecodeRevenue(table)
	require.NoError(t, err)
	require.Len(t, revenue, 1)
	assert.Equal(t, 0, revenue[0].Month)
	assert.Equal(t, 1000000.0, revenue[0].Revenue)
}

func TestDecodeNews_KeepsTimeOfDay(t *testing.T) {
	table := NewTable(KindNews.Spec().Columns)
	table.AppendRow("2024-03-01 09:30:00", "2330", "https://a", "XYZ", "title a")
	table.AppendRow("2024-03-01 08:00:00", "2330", "https://b", "XYZ", "title b")

	news, err := DecodeNews(table)
	require.NoError(t, err)
	require.Len(t, news, 2)
	assert.Equal(t, "https://b", news[0].Link)
	assert.Equal(t, 9, news[1].Date.Hour())
}

func TestTable_AppendRowPads(t *testing.T) {
	table := NewTable([]string{"a", "b", "c"})
	table.AppendRow("1")

	assert.Equal(t, 1, table.Len())
	assert.Equal(t, []string{"1", "", ""}, table.Rows[0])

	var nilTable *Table
	assert.Equal(t, 0, nilTable.Len())
}

func TestDecode_EmptyFileHasNoRecords(t *testing.T) {
	news, err := DecodeNews(&Table{})
	require.NoError(t, err)
	assert.Empty(t, news)

	// a header without the required columns is still malformed
	_, err = DecodeNews(NewTable([]string{"date"}))
	assert.ErrorIs(t, err, ErrMalformedDataset)
}
