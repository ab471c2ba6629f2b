package news

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/aristath/finlookup/internal/domain"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(s string) time.Time {
	t, err := time.Parse("2006-01-02 15:04", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestPrepare_StripsSourceLiterally(t *testing.T) {
	rows := []domain.NewsRecord{
		{Date: at("2024-03-01 09:00"), Source: "XYZ News", Title: "XYZ News: Company A raises prices", Link: "l1"},
		{Date: at("2024-03-02 09:00"), Source: "C++ (Daily)", Title: "Chip demand soars - C++ (Daily)", Link: "l2"},
		{Date: at("2024-03-03 09:00"), Source: "a.b", Title: "axb stays, a.b goes", Link: "l3"},
	}

	got := Prepare(rows)
	require.Len(t, got, 3)
	assert.Equal(t, "axb stays, goes", strings.Join(strings.Fields(got[0].Title), " "))
	assert.Equal(t, "Chip demand soars", got[1].Title)
	assert.Equal(t, "Company A raises prices", got[2].Title)
}

func TestPrepare_DedupesAndSortsDescending(t *testing.T) {
	rows := []domain.NewsRecord{
		{Date: at("2024-03-01 09:00"), Source: "S", Title: "first", Link: "dup"},
		{Date: at("2024-03-01 10:00"), Source: "S", Title: "other", Link: "x"},
		{Date: at("2024-03-05 09:00"), Source: "S", Title: "second", Link: "dup"},
	}

	got := Prepare(rows)
	require.Len(t, got, 2)
	assert.Equal(t, "dup", got[0].Link)
	assert.Equal(t, "second", got[0].Title, "most recent occurrence of a link wins")
	assert.Equal(t, "x", got[1].Link)
	assert.Equal(t, "first", rows[0].Title, "input untouched")
}

func TestStripSources_LongestFirst(t *testing.T) {
	assert.Equal(t, "Headline", StripSources("XYZ News | Headline", []string{"XYZ News", "XYZ"}))
	assert.Equal(t, "Headline", StripSources("Headline", nil))
}

func TestStopwordsAndClean(t *testing.T) {
	sw, err := ParseStopwords(strings.NewReader("的\n  公司  \n\n"))
	require.NoError(t, err)
	assert.True(t, sw.Contains("公司"))
	assert.True(t, sw.Contains("蘋果日報"))
	assert.True(t, sw.Contains("蘋果新聞網"))

	tokens := []string{"台積電", "公司", "A", " b ", "3奈米", "5G", "魏哲家", "蘋果日報"}
	assert.Equal(t, []string{"台積電", "魏哲家"}, Clean(tokens, sw, true))
	assert.Equal(t, []string{"台積電", "3奈米", "5G", "魏哲家"}, Clean(tokens, sw, false))
}

func TestLoadStopwords_MissingFile(t *testing.T) {
	sw, found, err := LoadStopwords(t.TempDir() + "/nope.txt")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Len(t, sw, 2)
}

func TestUnicodeSegmenter(t *testing.T) {
	got := UnicodeSegmenter{}.Segment("TSMC's 3nm, 台積電 (2330) 漲停!")
	assert.Equal(t, []string{"TSMC", "s", "3nm", "台積電", "2330", "漲停"}, got)
}

func TestLexiconRecognizer(t *testing.T) {
	lex := NewLexiconRecognizer()
	require.NoError(t, lex.Load(strings.NewReader("# comment\n台積電\tORG\n台積\tORG\n魏哲家\tperson\nTSMC\n")))
	assert.Equal(t, 4, lex.Len())

	entities, err := lex.Recognize("台積電董事長魏哲家談TSMC與TSMCX")
	require.NoError(t, err)
	assert.Equal(t, []Entity{
		{Word: "TSMC", Tag: "ORG"},
		{Word: "台積電", Tag: "ORG"},
		{Word: "魏哲家", Tag: "PERSON"},
	}, entities)

	_, err = lex.Recognize(string([]byte{0xff, 0xfe}))
	assert.ErrorIs(t, err, ErrUnrecognizable)
}

func TestVectorizer_HandComputed(t *testing.T) {
	v := Vectorizer{}
	w, err := v.Fit([]string{"a b", "A c", "b b percentrank"})
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b", "c"}, w.Vocabulary)
	rows, cols := w.TF.Dims()
	assert.Equal(t, 3, rows)
	assert.Equal(t, 3, cols)

	require.Len(t, w.Ranked, 3)
	assert.Equal(t, "b", w.Ranked[0].Term)
	assert.InDelta(t, 1.5, w.Ranked[0].TF, 1e-9)
	assert.InDelta(t, 1.5, w.Ranked[0].TFIDF, 1e-9)
	assert.InDelta(t, 1.0, w.Ranked[0].IDF, 1e-9)

	assert.Equal(t, "a", w.Ranked[1].Term)
	assert.InDelta(t, 1.0, w.Ranked[1].TF, 1e-9)
	assert.InDelta(t, 0.901093, w.Ranked[1].TFIDF, 1e-5)

	assert.Equal(t, "c", w.Ranked[2].Term)
	assert.InDelta(t, 0.5, w.Ranked[2].TF, 1e-9)
	assert.InDelta(t, 0.598907, w.Ranked[2].TFIDF, 1e-5)
	assert.InDelta(t, 1.197814, w.Ranked[2].IDF, 1e-5)
}

func TestVectorizer_MaxDFAndMaxFeatures(t *testing.T) {
	docs := []string{"common rare1", "common rare2"}
	for i := 0; i < 8; i++ {
		docs = append(docs, "filler")
	}
	// "filler" appears in 8 of 10 documents and "common" in 2; only the rare terms survive 0.1
	w, err := DefaultVectorizer().Fit(docs)
	require.NoError(t, err)
	assert.Equal(t, []string{"rare1", "rare2"}, w.Vocabulary)

	w, err = Vectorizer{MaxFeatures: 1}.Fit([]string{"x y y", "y z"})
	require.NoError(t, err)
	assert.Equal(t, []string{"y"}, w.Vocabulary)
}

func TestVectorizer_NoTerms(t *testing.T) {
	_, err := DefaultVectorizer().Fit([]string{"a", "a b"})
	assert.ErrorIs(t, err, domain.ErrInsufficientHistory)

	_, err = Vectorizer{}.Fit([]string{"", "percentrank"})
	assert.ErrorIs(t, err, domain.ErrInsufficientHistory)

	_, err = Vectorizer{}.Fit(nil)
	assert.ErrorIs(t, err, domain.ErrInsufficientHistory)
}

func testAnalyzer(opts ...Option) *Analyzer {
	lex := NewLexiconRecognizer()
	lex.Add("台積電", TagOrg)
	lex.Add("聯發科", TagOrg)
	lex.Add("魏哲家", TagPerson)
	lex.Add("台北", "LOC")
	opts = append([]Option{WithVectorizer(Vectorizer{MaxFeatures: 100})}, opts...)
	return NewAnalyzer(lex, zerolog.New(nil).Level(zerolog.Disabled), opts...)
}

func headlines(titles ...string) []domain.NewsRecord {
	out := make([]domain.NewsRecord, len(titles))
	for i, title := range titles {
		out[i] = domain.NewsRecord{
			Date:   at("2024-03-01 09:00").Add(time.Duration(i) * time.Hour),
			Source: "經濟日報",
			Title:  title,
			Link:   "https://example.com/" + string(rune('a'+i)),
		}
	}
	return out
}

func TestAnalyze_Disabled(t *testing.T) {
	a := testAnalyzer()
	result, err := a.Analyze(context.Background(), headlines("台積電"), false)
	require.NoError(t, err)
	assert.False(t, result.Enabled)
	assert.Empty(t, result.Terms)
	assert.Empty(t, result.WordCloud)
}

func TestAnalyze_RanksEntities(t *testing.T) {
	a := testAnalyzer()
	rows := headlines(
		"經濟日報：台積電，魏哲家在台北說明",
		"聯發科與台積電合作",
		"台北股市上漲",
		"",
	)

	result, err := a.Analyze(context.Background(), rows, true)
	require.NoError(t, err)

	assert.True(t, result.Enabled)
	assert.Equal(t, 3, result.Documents)
	assert.Equal(t, 1, result.Skipped)

	terms := make([]string, len(result.Terms))
	for i, tw := range result.Terms {
		terms[i] = tw.Term
	}
	assert.ElementsMatch(t, []string{"台積電", "魏哲家", "聯發科"}, terms)
	assert.NotContains(t, terms, "台北", "LOC entities are not ranked")
	assert.NotContains(t, terms, "經濟日報", "sources are stripped")

	assert.Len(t, result.WordCloud, 3)
	assert.InDelta(t, result.Terms[0].TFIDF, result.WordCloud[result.Terms[0].Term], 1e-12)
	assert.GreaterOrEqual(t, result.Terms[0].TFIDF, result.Terms[len(result.Terms)-1].TFIDF)
}

func TestAnalyze_SkippedTitlesDoNotChangeWeights(t *testing.T) {
	a := testAnalyzer()
	valid := []string{"台積電與聯發科合作", "聯發科，魏哲家出席"}

	base, err := a.Analyze(context.Background(), headlines(valid...), true)
	require.NoError(t, err)

	withInvalid, err := a.Analyze(context.Background(), headlines(append(valid, "\xff\xfe", "   ")...), true)
	require.NoError(t, err)

	assert.Equal(t, 2, withInvalid.Documents)
	assert.Equal(t, 2, withInvalid.Skipped)
	require.Len(t, withInvalid.WordCloud, len(base.WordCloud))
	for term, weight := range base.WordCloud {
		assert.InDelta(t, weight, withInvalid.WordCloud[term], 1e-12, term)
	}
}

func TestAnalyze_TopKAndSegments(t *testing.T) {
	a := testAnalyzer(WithTokenSource(FromSegments), WithTopK(2))
	result, err := a.Analyze(context.Background(), headlines("alpha beta，gamma", "delta"), true)
	require.NoError(t, err)
	assert.Len(t, result.Terms, 2)
}

func TestAnalyze_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := testAnalyzer().Analyze(ctx, headlines("台積電"), true)
	assert.ErrorIs(t, err, context.Canceled)
}
