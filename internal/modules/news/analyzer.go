package news

import (
	"context"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/aristath/finlookup/internal/domain"
	"github.com/rs/zerolog"
)

// TokenSource selects which tokens of a headline are ranked.
type TokenSource int

const (
	// FromEntities ranks ORG and PERSON entities only.
	FromEntities TokenSource = iota
	// FromSegments ranks every segmented word.
	FromSegments
)

// Analysis is the ranked-terms result for one company's headlines.
type Analysis struct {
	Enabled   bool               `json:"enabled"`
	Documents int                `json:"documents"`
	Skipped   int                `json:"skipped"`
	Terms     []TermWeight       `json:"terms"`
	WordCloud map[string]float64 `json:"word_cloud"`
}

// Analyzer ranks headline terms for a word cloud.
type Analyzer struct {
	segmenter    Segmenter
	recognizer   EntityRecognizer
	stopwords    Stopwords
	vectorizer   Vectorizer
	source       TokenSource
	keepTags     map[string]bool
	removeDigits bool
	topK         int
	log          zerolog.Logger
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithStopwords replaces the stopword set.
func WithStopwords(s Stopwords) Option {
	return func(a *Analyzer) {
		a.stopwords = s
	}
}

// WithVectorizer replaces the TF-IDF settings.
func WithVectorizer(v Vectorizer) Option {
	return func(a *Analyzer) {
		a.vectorizer = v
	}
}

// WithTokenSource chooses between entity and segment tokens.
func WithTokenSource(src TokenSource) Option {
	return func(a *Analyzer) {
		a.source = src
	}
}

// WithTopK limits the number of ranked terms returned.
func WithTopK(k int) Option {
	return func(a *Analyzer) {
		a.topK = k
	}
}

// WithDigits keeps tokens containing digits.
func WithDigits() Option {
	return func(a *Analyzer) {
		a.removeDigits = false
	}
}

// NewAnalyzer creates an analyzer around an entity recognizer.
func NewAnalyzer(recognizer EntityRecognizer, log zerolog.Logger, opts ...Option) *Analyzer {
	a := &Analyzer{
		segmenter:    UnicodeSegmenter{},
		recognizer:   recognizer,
		stopwords:    DefaultStopwords(),
		vectorizer:   DefaultVectorizer(),
		source:       FromEntities,
		keepTags:     map[string]bool{TagOrg: true, TagPerson: true},
		removeDigits: true,
		topK:         100,
		log:          log.With().Str("service", "news").Logger(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze ranks the terms of the prepared headlines. Disabled analysis returns an
// empty result without touching the headlines. Headlines that yield no tokens
// still count as documents; invalid ones are left out and reported in Skipped.
func (a *Analyzer) Analyze(ctx context.Context, rows []domain.NewsRecord, enabled bool) (*Analysis, error) {
	result := &Analysis{Enabled: enabled, WordCloud: map[string]float64{}}
	if !enabled {
		return result, nil
	}

	prepared := Prepare(rows)
	docs := make([]string, 0, len(prepared))
	for _, r := range prepared {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		tokens, ok := a.tokens(r.Title)
		if !ok {
			result.Skipped++
			continue
		}
		docs = append(docs, strings.Join(Clean(tokens, a.stopwords, a.removeDigits), " "))
	}
	result.Documents = len(docs)

	weights, err := a.vectorizer.Fit(docs)
	if err != nil {
		a.log.Debug().Err(err).Int("documents", len(docs)).Msg("No terms to rank")
		return nil, err
	}

	result.Terms = weights.Ranked
	if a.topK > 0 && len(result.Terms) > a.topK {
		result.Terms = result.Terms[:a.topK]
	}
	for _, t := range result.Terms {
		result.WordCloud[t.Term] = t.TFIDF
	}

	a.log.Debug().
		Int("documents", result.Documents).
		Int("skipped", result.Skipped).
		Int("terms", len(result.Terms)).
		Msg("Ranked headline terms")
	return result, nil
}

// tokens extracts the words of one title. ok is false when the title is blank,
// not valid text or rejected by the recognizer.
func (a *Analyzer) tokens(title string) (tokens []string, ok bool) {
	if strings.TrimSpace(title) == "" || !utf8.ValidString(title) {
		return nil, false
	}

	if a.source == FromSegments {
		for _, sentence := range splitSentences(title) {
			tokens = append(tokens, a.segmenter.Segment(sentence)...)
		}
		return tokens, true
	}

	entities := make(map[Entity]struct{})
	for _, sentence := range splitSentences(title) {
		found, err := a.recognizer.Recognize(sentence)
		if err != nil {
			return nil, false
		}
		for _, e := range found {
			entities[e] = struct{}{}
		}
	}
	for e := range entities {
		if a.keepTags[e.Tag] {
			tokens = append(tokens, e.Word)
		}
	}
	sort.Strings(tokens)
	return tokens, true
}
