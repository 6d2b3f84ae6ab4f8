package semantic

import (
	"strings"
	"unicode"
)

// NameSplitter splits identifiers into lowercase words. Supports camelCase,
// PascalCase, snake_case, kebab-case, SCREAMING_SNAKE_CASE, dotted names and
// letter/digit boundaries.
type NameSplitter struct{}

// NewNameSplitter creates a splitter
func NewNameSplitter() *NameSplitter {
	return &NameSplitter{}
}

func isSeparator(r rune) bool {
	return r == '_' || r == '-' || r == '.' || r == '/' || r == '$' || unicode.IsSpace(r)
}

// Split splits a symbol name into constituent words
func (ns *NameSplitter) Split(name string) []string {
	runes := []rune(name)
	words := make([]string, 0, 4)
	buf := make([]rune, 0, len(runes))

	flush := func() {
		if len(buf) > 0 {
			words = append(words, strings.ToLower(string(buf)))
			buf = buf[:0]
		}
	}

	for i, ch := range runes {
		if isSeparator(ch) {
			flush()
			continue
		}
		if i > 0 && len(buf) > 0 {
			prev := runes[i-1]
			switch {
			case unicode.IsLower(prev) && unicode.IsUpper(ch):
				flush()
			case unicode.IsUpper(prev) && unicode.IsLower(ch) && len(buf) > 1 && unicode.IsUpper(buf[len(buf)-2]):
				// End of an acronym: HTTPServer -> HTTP + Server
				last := buf[len(buf)-1]
				buf = buf[:len(buf)-1]
				flush()
				buf = append(buf, last)
			case unicode.IsLetter(prev) != unicode.IsLetter(ch) && (unicode.IsDigit(prev) || unicode.IsDigit(ch)):
				flush()
			}
		}
		buf = append(buf, ch)
	}
	flush()
	return words
}

// SplitToSet splits a name and returns unique words as a set
func (ns *NameSplitter) SplitToSet(name string) map[string]bool {
	words := ns.Split(name)
	set := make(map[string]bool, len(words))
	for _, word := range words {
		set[word] = true
	}
	return set
}
