package semantic

import (
	"strings"
)

// MatchKind is the strength of a name match, strongest first.
type MatchKind int

const (
	MatchExact MatchKind = iota
	MatchCaseInsensitive
	MatchFuzzy
	MatchNone
)

func (k MatchKind) String() string {
	switch k {
	case MatchExact:
		return "exact"
	case MatchCaseInsensitive:
		return "case_insensitive"
	case MatchFuzzy:
		return "fuzzy"
	default:
		return "none"
	}
}

// NameMatcher classifies how a candidate declaration name relates to a
// searched name.
type NameMatcher struct {
	fuzzy    *FuzzyMatcher
	stemmer  *Stemmer
	splitter *NameSplitter
}

// NewNameMatcher creates a matcher with the given Jaro-Winkler threshold
// and minimum stemmable word length.
func NewNameMatcher(fuzzyThreshold float64, stemMinLength int) *NameMatcher {
	return &NameMatcher{
		fuzzy:    NewFuzzyMatcher(fuzzyThreshold, AlgorithmJaroWinkler),
		stemmer:  NewStemmer(stemMinLength),
		splitter: NewNameSplitter(),
	}
}

// Classify returns the strongest match between query and candidate.
func (m *NameMatcher) Classify(query, candidate string) MatchKind {
	if query == "" || candidate == "" {
		return MatchNone
	}
	if query == candidate {
		return MatchExact
	}
	lq, lc := strings.ToLower(query), strings.ToLower(candidate)
	if lq == lc {
		return MatchCaseInsensitive
	}
	if strings.Contains(lc, lq) || strings.Contains(lq, lc) {
		return MatchFuzzy
	}
	if m.sameStems(query, candidate) {
		return MatchFuzzy
	}
	if m.fuzzy.Match(lq, lc) {
		return MatchFuzzy
	}
	return MatchNone
}

// sameStems reports whether both names split into the same sequence of
// word stems (getUser / get_users).
func (m *NameMatcher) sameStems(a, b string) bool {
	wa := m.stemmer.StemAll(m.splitter.Split(a))
	wb := m.stemmer.StemAll(m.splitter.Split(b))
	if len(wa) == 0 || len(wa) != len(wb) {
		return false
	}
	for i := range wa {
		if wa[i] != wb[i] {
			return false
		}
	}
	return true
}

// Words exposes the identifier splitter
func (m *NameMatcher) Words(name string) []string {
	return m.splitter.Split(name)
}
