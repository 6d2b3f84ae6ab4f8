package semantic

import (
	"strings"

	"github.com/surgebase/porter2"
)

// Stemmer reduces identifier words to their Porter2 stems so that
// "parse", "parser" and "parsing" compare equal.
type Stemmer struct {
	minLength  int
	exclusions map[string]bool // words never stemmed
}

// NewStemmer creates a stemmer. Words shorter than minLength are returned
// unchanged.
func NewStemmer(minLength int, exclusions ...string) *Stemmer {
	if minLength < 0 {
		minLength = 3
	}
	ex := make(map[string]bool, len(exclusions))
	for _, w := range exclusions {
		ex[strings.ToLower(w)] = true
	}
	return &Stemmer{minLength: minLength, exclusions: ex}
}

// Stem returns the lowercase stem of word
func (s *Stemmer) Stem(word string) string {
	word = strings.ToLower(word)
	if s.exclusions[word] || len(word) < s.minLength {
		return word
	}
	return porter2.Stem(word)
}

// StemAll stems every word, preserving order
func (s *Stemmer) StemAll(words []string) []string {
	out := make([]string, len(words))
	for i, w := range words {
		out[i] = s.Stem(w)
	}
	return out
}
