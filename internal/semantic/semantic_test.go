package semantic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNameSplitter_Split(t *testing.T) {
	ns := NewNameSplitter()

	tests := []struct {
		input string
		want  []string
	}{
		{"", []string{}},
		{"user", []string{"user"}},
		{"getUserName", []string{"get", "user", "name"}},
		{"GetUserName", []string{"get", "user", "name"}},
		{"get_user_name", []string{"get", "user", "name"}},
		{"MAX_RETRY_COUNT", []string{"max", "retry", "count"}},
		{"HTTPServer", []string{"http", "server"}},
		{"parseXMLDocument", []string{"parse", "xml", "document"}},
		{"base64Encode", []string{"base", "64", "encode"}},
		{"__init__", []string{"init"}},
		{"kebab-case", []string{"kebab", "case"}},
		{"com.example.Foo", []string{"com", "example", "foo"}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ns.Split(tt.input))
		})
	}
}

func TestNameSplitter_SplitToSet(t *testing.T) {
	set := NewNameSplitter().SplitToSet("userUserID")
	assert.Equal(t, map[string]bool{"user": true, "id": true}, set)
}

func TestStemmer(t *testing.T) {
	s := NewStemmer(3, "news")

	assert.Equal(t, s.Stem("parsing"), s.Stem("parse"))
	assert.Equal(t, s.Stem("validation"), s.Stem("validate"))
	assert.Equal(t, "id", s.Stem("ID"), "short words are only lowercased")
	assert.Equal(t, "news", s.Stem("news"), "exclusions are never stemmed")
	assert.Equal(t, []string{s.Stem("users"), "id"}, s.StemAll([]string{"users", "id"}))
}

func TestFuzzyMatcher(t *testing.T) {
	fm := NewFuzzyMatcher(0, "")
	require.NoError(t, fm.Validate())
	assert.Equal(t, DefaultFuzzyThreshold, fm.Threshold())

	assert.Equal(t, 1.0, fm.Similarity("abc", "abc"))
	assert.Equal(t, 0.0, fm.Similarity("", "abc"))
	assert.True(t, fm.Match("calculate", "calcualte"))
	assert.False(t, fm.Match("calculate", "render"))

	lev := NewFuzzyMatcher(0.5, AlgorithmLevenshtein)
	require.NoError(t, lev.Validate())
	assert.Greater(t, lev.Similarity("kitten", "sitting"), 0.5)

	assert.Error(t, NewFuzzyMatcher(0.5, "soundex").Validate())
}

func TestNameMatcher_Classify(t *testing.T) {
	m := NewNameMatcher(0.85, 3)

	tests := []struct {
		query, candidate string
		want             MatchKind
	}{
		{"UserService", "UserService", MatchExact},
		{"userservice", "UserService", MatchCaseInsensitive},
		{"User", "UserService", MatchFuzzy},
		{"getUsers", "get_user", MatchFuzzy},
		{"calculateTotl", "calculateTotal", MatchFuzzy},
		{"render", "UserService", MatchNone},
		{"", "UserService", MatchNone},
	}

	for _, tt := range tests {
		t.Run(tt.query+"/"+tt.candidate, func(t *testing.T) {
			assert.Equal(t, tt.want, m.Classify(tt.query, tt.candidate))
		})
	}
}

func TestMatchKindString(t *testing.T) {
	assert.Equal(t, "exact", MatchExact.String())
	assert.Equal(t, "case_insensitive", MatchCaseInsensitive.String())
	assert.Equal(t, "fuzzy", MatchFuzzy.String())
	assert.Equal(t, "none", MatchNone.String())
}
