package news

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/aristath/finlookup/internal/domain"
	"gonum.org/v1/gonum/mat"
)

// tokenPattern matches runs of word characters in any script.
var tokenPattern = regexp.MustCompile(`[\p{L}\p{M}\p{N}_]+`)

// Vectorizer turns documents into L1-normalised term weights.
type Vectorizer struct {
	// MaxFeatures keeps only the most frequent terms across the corpus.
	MaxFeatures int
	// MaxDF drops terms appearing in more than this fraction of documents.
	MaxDF float64
	// StopWords are removed after tokenization.
	StopWords []string
}

// DefaultVectorizer returns the vectorizer used for headline ranking.
func DefaultVectorizer() Vectorizer {
	return Vectorizer{
		MaxFeatures: 100,
		MaxDF:       0.1,
		StopWords:   []string{"percentrank"},
	}
}

// TermWeight is one ranked term. IDF is TFIDF / TF of the column sums.
type TermWeight struct {
	Term  string  `json:"term"`
	TF    float64 `json:"tf"`
	IDF   float64 `json:"idf"`
	TFIDF float64 `json:"tfidf"`
}

// Weights is the fitted document-term matrices and the ranked column sums.
type Weights struct {
	Vocabulary []string
	TF         *mat.Dense // documents x terms, L1-normalised counts
	TFIDF      *mat.Dense // documents x terms, L1-normalised counts * idf
	Ranked     []TermWeight
}

func (v Vectorizer) tokenize(doc string) []string {
	tokens := tokenPattern.FindAllString(strings.ToLower(doc), -1)
	out := tokens[:0]
	for _, tok := range tokens {
		if !v.isStopWord(tok) {
			out = append(out, tok)
		}
	}
	return out
}

func (v Vectorizer) isStopWord(tok string) bool {
	for _, s := range v.StopWords {
		if s == tok {
			return true
		}
	}
	return false
}

// Fit computes TF and TF-IDF with idf = ln(n / df) + 1, then sums each term's
// column and ranks terms by TF-IDF (ties by term).
func (v Vectorizer) Fit(docs []string) (*Weights, error) {
	n := len(docs)
	if n == 0 {
		return nil, fmt.Errorf("no documents: %w", domain.ErrInsufficientHistory)
	}

	tokenized := make([][]string, n)
	df := make(map[string]int)
	corpusCount := make(map[string]int)
	for i, doc := range docs {
		tokenized[i] = v.tokenize(doc)
		seen := make(map[string]struct{})
		for _, tok := range tokenized[i] {
			corpusCount[tok]++
			if _, ok := seen[tok]; !ok {
				seen[tok] = struct{}{}
				df[tok]++
			}
		}
	}
	if len(df) == 0 {
		return nil, fmt.Errorf("empty vocabulary: %w", domain.ErrInsufficientHistory)
	}

	vocab := v.prune(df, corpusCount, n)
	if len(vocab) == 0 {
		return nil, fmt.Errorf("no terms remain after pruning %d documents: %w", n, domain.ErrInsufficientHistory)
	}
	column := make(map[string]int, len(vocab))
	for j, term := range vocab {
		column[term] = j
	}

	counts := mat.NewDense(n, len(vocab), nil)
	for i, toks := range tokenized {
		for _, tok := range toks {
			if j, ok := column[tok]; ok {
				counts.Set(i, j, counts.At(i, j)+1)
			}
		}
	}

	idf := make([]float64, len(vocab))
	for j, term := range vocab {
		idf[j] = math.Log(float64(n)/float64(df[term])) + 1
	}

	tf := mat.DenseCopyOf(counts)
	tfidf := mat.NewDense(n, len(vocab), nil)
	tfidf.Apply(func(_, j int, x float64) float64 { return x * idf[j] }, counts)
	normalizeRowsL1(tf)
	normalizeRowsL1(tfidf)

	ranked := make([]TermWeight, len(vocab))
	for j, term := range vocab {
		tfSum := mat.Sum(tf.ColView(j))
		tfidfSum := mat.Sum(tfidf.ColView(j))
		ranked[j] = TermWeight{Term: term, TF: tfSum, TFIDF: tfidfSum}
		if tfSum != 0 {
			ranked[j].IDF = tfidfSum / tfSum
		}
	}
	sort.Slice(ranked, func(a, b int) bool {
		if ranked[a].TFIDF != ranked[b].TFIDF {
			return ranked[a].TFIDF > ranked[b].TFIDF
		}
		return ranked[a].Term < ranked[b].Term
	})

	return &Weights{Vocabulary: vocab, TF: tf, TFIDF: tfidf, Ranked: ranked}, nil
}

// prune drops terms above the document-frequency cutoff, then keeps the
// MaxFeatures most frequent. The vocabulary is returned sorted.
func (v Vectorizer) prune(df, corpusCount map[string]int, n int) []string {
	maxDocs := math.Inf(1)
	if v.MaxDF > 0 && v.MaxDF < 1 {
		maxDocs = v.MaxDF * float64(n)
	}

	var kept []string
	for term, count := range df {
		if float64(count) <= maxDocs {
			kept = append(kept, term)
		}
	}

	if v.MaxFeatures > 0 && len(kept) > v.MaxFeatures {
		sort.Slice(kept, func(a, b int) bool {
			if corpusCount[kept[a]] != corpusCount[kept[b]] {
				return corpusCount[kept[a]] > corpusCount[kept[b]]
			}
			return kept[a] < kept[b]
		})
		kept = kept[:v.MaxFeatures]
	}

	sort.Strings(kept)
	return kept
}

func normalizeRowsL1(m *mat.Dense) {
	rows, cols := m.Dims()
	for i := 0; i < rows; i++ {
		norm := mat.Norm(m.RowView(i), 1)
		if norm == 0 {
			continue
		}
		for j := 0; j < cols; j++ {
			m.Set(i, j, m.At(i, j)/norm)
		}
	}
}
