package news

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
)

// builtinStopwords are news outlet names that appear inside entity spans.
var builtinStopwords = []string{"蘋果日報", "蘋果新聞網"}

// Stopwords is a set of terms excluded from term ranking.
type Stopwords map[string]struct{}

// DefaultStopwords returns only the built-in terms.
func DefaultStopwords() Stopwords {
	s := make(Stopwords, len(builtinStopwords))
	for _, w := range builtinStopwords {
		s[w] = struct{}{}
	}
	return s
}

// ParseStopwords reads newline-delimited terms, trimming each line. Built-in
// terms are always included.
func ParseStopwords(r io.Reader) (Stopwords, error) {
	s := DefaultStopwords()
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if w := strings.TrimSpace(scanner.Text()); w != "" {
			s[w] = struct{}{}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read stopwords: %w", err)
	}
	return s, nil
}

// LoadStopwords reads a stopword file. A missing file yields the built-in terms
// and found=false.
func LoadStopwords(path string) (s Stopwords, found bool, err error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultStopwords(), false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to open stopwords: %w", err)
	}
	defer f.Close()

	s, err = ParseStopwords(f)
	if err != nil {
		return nil, false, err
	}
	return s, true, nil
}

// Contains reports whether w is a stopword.
func (s Stopwords) Contains(w string) bool {
	_, ok := s[w]
	return ok
}

// Clean drops tokens that contain a digit (when removeDigits is set), are shorter
// than two characters once trimmed, or are stopwords.
func Clean(tokens []string, stopwords Stopwords, removeDigits bool) []string {
	var out []string
	for _, tok := range tokens {
		if removeDigits && strings.ContainsFunc(tok, isDigit) {
			continue
		}
		if len([]rune(strings.TrimSpace(tok))) < 2 || stopwords.Contains(tok) {
			continue
		}
		out = append(out, tok)
	}
	return out
}
