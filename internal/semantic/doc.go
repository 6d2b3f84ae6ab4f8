// Package semantic scores how well a declaration name matches a searched
// name.
//
// Matching falls back through increasingly loose strategies:
//
//  1. Exact match (case-sensitive)
//  2. Case-insensitive match
//  3. Fuzzy match: substring containment, stem equality of the split
//     identifier words, or Jaro-Winkler similarity above a threshold
//
// # Core Components
//
// NameMatcher: the entry point used by definition search. Classify returns
// the strongest MatchKind for a (query, candidate) pair.
//
// FuzzyMatcher: Jaro-Winkler or Levenshtein similarity via go-edlib.
//
// Stemmer: Porter2 stemming so that "validate" and "validation" compare
// equal.
//
// NameSplitter: splits camelCase, PascalCase, snake_case and acronym-bearing
// identifiers ("HTTPServer" -> "http", "server") into lowercase words.
//
// All types are safe for concurrent use once constructed.
package semantic
