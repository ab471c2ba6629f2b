package news

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Entity tags kept for term ranking.
const (
	TagOrg    = "ORG"
	TagPerson = "PERSON"
)

// sentenceSeparator splits a headline into clauses before segmentation.
const sentenceSeparator = "，"

// ErrUnrecognizable is returned by recognizers for text they cannot process.
var ErrUnrecognizable = errors.New("unrecognizable text")

// Entity is a named span found in a sentence.
type Entity struct {
	Word string `json:"word"`
	Tag  string `json:"tag"`
}

// Segmenter splits a sentence into words.
type Segmenter interface {
	Segment(sentence string) []string
}

// EntityRecognizer finds named entities in a sentence.
type EntityRecognizer interface {
	Recognize(sentence string) ([]Entity, error)
}

// UnicodeSegmenter splits on anything that is not a letter, mark or number.
type UnicodeSegmenter struct{}

// Segment implements Segmenter.
func (UnicodeSegmenter) Segment(sentence string) []string {
	return strings.FieldsFunc(sentence, func(r rune) bool {
		return !isWordRune(r)
	})
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsMark(r) || unicode.IsNumber(r) || r == '_'
}

func isDigit(r rune) bool {
	return unicode.IsDigit(r)
}

// LexiconRecognizer tags every occurrence of a known word, preferring the
// longest match at each position.
type LexiconRecognizer struct {
	words  map[string]string // word -> tag
	maxLen int               // longest word, in runes
}

// NewLexiconRecognizer creates an empty lexicon.
func NewLexiconRecognizer() *LexiconRecognizer {
	return &LexiconRecognizer{words: make(map[string]string)}
}

// Add registers word with tag. Blank words are ignored.
func (l *LexiconRecognizer) Add(word, tag string) {
	word = strings.TrimSpace(word)
	if word == "" {
		return
	}
	l.words[word] = tag
	if n := utf8.RuneCountInString(word); n > l.maxLen {
		l.maxLen = n
	}
}

// Len returns the number of words known.
func (l *LexiconRecognizer) Len() int {
	return len(l.words)
}

// Load reads "word<TAB>TAG" lines. Lines without a tag are tagged ORG and
// lines starting with # are comments.
func (l *LexiconRecognizer) Load(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		word, tag, ok := strings.Cut(line, "\t")
		if !ok {
			tag = TagOrg
		}
		l.Add(word, strings.ToUpper(strings.TrimSpace(tag)))
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read lexicon: %w", err)
	}
	return nil
}

// Recognize implements EntityRecognizer. The result is de-duplicated and sorted.
func (l *LexiconRecognizer) Recognize(sentence string) ([]Entity, error) {
	if !utf8.ValidString(sentence) {
		return nil, ErrUnrecognizable
	}

	runes := []rune(sentence)
	found := make(map[Entity]struct{})
	for i := 0; i < len(runes); {
		matched := 0
		for n := min(l.maxLen, len(runes)-i); n > 0; n-- {
			word := string(runes[i : i+n])
			if tag, ok := l.words[word]; ok && boundary(runes, i, n) {
				found[Entity{Word: word, Tag: tag}] = struct{}{}
				matched = n
				break
			}
		}
		if matched == 0 {
			matched = 1
		}
		i += matched
	}

	entities := make([]Entity, 0, len(found))
	for e := range found {
		entities = append(entities, e)
	}
	sort.Slice(entities, func(i, j int) bool {
		if entities[i].Word != entities[j].Word {
			return entities[i].Word < entities[j].Word
		}
		return entities[i].Tag < entities[j].Tag
	})
	return entities, nil
}

// boundary rejects Latin-script matches glued to neighbouring letters, so "TSMC"
// does not match inside "TSMCX". Han text has no spaces and always matches.
func boundary(runes []rune, i, n int) bool {
	if unicode.Is(unicode.Han, runes[i]) {
		return true
	}
	if i > 0 && isWordRune(runes[i-1]) && !unicode.Is(unicode.Han, runes[i-1]) {
		return false
	}
	if end := i + n; end < len(runes) && isWordRune(runes[end]) && !unicode.Is(unicode.Han, runes[end]) {
		return false
	}
	return true
}

// splitSentences splits a headline into its comma-separated clauses.
func splitSentences(title string) []string {
	return strings.Split(title, sentenceSeparator)
}
