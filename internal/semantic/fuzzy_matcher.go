package semantic

import (
	"fmt"

	"github.com/hbollon/go-edlib"
)

const (
	AlgorithmJaroWinkler = "jaro-winkler"
	AlgorithmLevenshtein = "levenshtein"
)

// DefaultFuzzyThreshold is the minimum similarity for a fuzzy match
const DefaultFuzzyThreshold = 0.85

// FuzzyMatcher provides similarity scoring between two names.
type FuzzyMatcher struct {
	threshold float64
	algorithm string
}

// NewFuzzyMatcher creates a matcher. Out-of-range thresholds fall back to
// DefaultFuzzyThreshold and an empty algorithm means Jaro-Winkler.
func NewFuzzyMatcher(threshold float64, algorithm string) *FuzzyMatcher {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultFuzzyThreshold
	}
	if algorithm == "" {
		algorithm = AlgorithmJaroWinkler
	}
	return &FuzzyMatcher{threshold: threshold, algorithm: algorithm}
}

// Threshold returns the configured similarity threshold
func (fm *FuzzyMatcher) Threshold() float64 {
	return fm.threshold
}

// Match checks if two strings are similar within the configured threshold
func (fm *FuzzyMatcher) Match(a, b string) bool {
	return fm.Similarity(a, b) >= fm.threshold
}

// Similarity returns the similarity score between two strings (0.0-1.0)
func (fm *FuzzyMatcher) Similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	if a == "" || b == "" {
		return 0.0
	}

	algo := edlib.JaroWinkler
	if fm.algorithm == AlgorithmLevenshtein {
		algo = edlib.Levenshtein
	}
	score, err := edlib.StringsSimilarity(a, b, algo)
	if err != nil {
		return 0.0
	}
	return float64(score)
}

// Validate checks the matcher configuration
func (fm *FuzzyMatcher) Validate() error {
	switch fm.algorithm {
	case AlgorithmJaroWinkler, AlgorithmLevenshtein:
		return nil
	default:
		return fmt.Errorf("unsupported fuzzy algorithm %q", fm.algorithm)
	}
}
