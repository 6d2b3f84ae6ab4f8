package sourcemodel

import (
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"unsafe"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_java "github.com/tree-sitter/tree-sitter-java/bindings/go"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"

	cnerrors "github.com/standardbeagle/codenav/internal/errors"
)

// LanguageID names a source language.
type LanguageID string

const (
	LangJava       LanguageID = "java"
	LangKotlin     LanguageID = "kotlin"
	LangPython     LanguageID = "python"
	LangJavaScript LanguageID = "javascript"
	LangTypeScript LanguageID = "typescript"
	LangTSX        LanguageID = "tsx"
)

// Family groups languages served by the same adapter.
type Family string

const (
	FamilyJVM    Family = "jvm"
	FamilyPython Family = "python"
	FamilyJS     Family = "js"
)

// Language is one compiled-in language entry. A nil grammar pointer means
// the language is recognized by extension but cannot be parsed.
type Language struct {
	ID         LanguageID
	Family     Family
	Extensions []string

	tsLanguage func() unsafe.Pointer
	syntax     *grammar

	once    sync.Once
	lang    *tree_sitter.Language
	loadErr error
	parsers sync.Pool
}

// Load initializes the grammar once. It returns an
// *errors.UnsupportedLanguageError when the grammar is missing
// (not installed) or rejected by the parser runtime (broken).
func (l *Language) Load() error {
	l.once.Do(func() {
		if l.tsLanguage == nil || l.syntax == nil {
			l.loadErr = cnerrors.NewUnsupportedLanguageError(string(l.ID), cnerrors.ReasonNotInstalled, nil)
			return
		}
		lang := tree_sitter.NewLanguage(l.tsLanguage())
		parser := tree_sitter.NewParser()
		defer parser.Close()
		if err := parser.SetLanguage(lang); err != nil {
			l.loadErr = cnerrors.NewUnsupportedLanguageError(string(l.ID), cnerrors.ReasonBroken, err)
			return
		}
		l.lang = lang
	})
	return l.loadErr
}

// Available reports whether the grammar loads.
func (l *Language) Available() bool {
	return l.Load() == nil
}

func (l *Language) acquireParser() (*tree_sitter.Parser, error) {
	if err := l.Load(); err != nil {
		return nil, err
	}
	if p, ok := l.parsers.Get().(*tree_sitter.Parser); ok {
		return p, nil
	}
	p := tree_sitter.NewParser()
	if err := p.SetLanguage(l.lang); err != nil {
		p.Close()
		return nil, cnerrors.NewUnsupportedLanguageError(string(l.ID), cnerrors.ReasonBroken, err)
	}
	return p, nil
}

func (l *Language) releaseParser(p *tree_sitter.Parser) {
	p.Reset()
	l.parsers.Put(p)
}

// LanguageSet is the static table of compiled-in languages.
type LanguageSet struct {
	byID  map[LanguageID]*Language
	byExt map[string]*Language
}

// NewLanguageSet builds the table of every compiled-in language.
func NewLanguageSet() *LanguageSet {
	return newLanguageSet([]*Language{
		{
			ID: LangJava, Family: FamilyJVM, Extensions: []string{".java"},
			tsLanguage: tree_sitter_java.Language, syntax: javaGrammar(),
		},
		{
			// No Kotlin grammar is compiled in.
			ID: LangKotlin, Family: FamilyJVM, Extensions: []string{".kt", ".kts"},
		},
		{
			ID: LangPython, Family: FamilyPython, Extensions: []string{".py", ".pyi"},
			tsLanguage: tree_sitter_python.Language, syntax: pythonGrammar(),
		},
		{
			ID: LangJavaScript, Family: FamilyJS, Extensions: []string{".js", ".jsx", ".mjs", ".cjs"},
			tsLanguage: tree_sitter_javascript.Language, syntax: javascriptGrammar(false),
		},
		{
			ID: LangTypeScript, Family: FamilyJS, Extensions: []string{".ts", ".mts", ".cts"},
			tsLanguage: tree_sitter_typescript.LanguageTypescript, syntax: javascriptGrammar(true),
		},
		{
			ID: LangTSX, Family: FamilyJS, Extensions: []string{".tsx"},
			tsLanguage: tree_sitter_typescript.LanguageTSX, syntax: javascriptGrammar(true),
		},
	})
}

func newLanguageSet(langs []*Language) *LanguageSet {
	s := &LanguageSet{
		byID:  make(map[LanguageID]*Language, len(langs)),
		byExt: make(map[string]*Language),
	}
	for _, l := range langs {
		s.byID[l.ID] = l
		for _, ext := range l.Extensions {
			s.byExt[ext] = l
		}
	}
	return s
}

// ForPath returns the language for a file path by extension, or nil.
func (s *LanguageSet) ForPath(path string) *Language {
	return s.byExt[strings.ToLower(filepath.Ext(path))]
}

// Get returns a language by ID, or nil.
func (s *LanguageSet) Get(id LanguageID) *Language {
	return s.byID[id]
}

// All returns every language sorted by ID.
func (s *LanguageSet) All() []*Language {
	out := make([]*Language, 0, len(s.byID))
	for _, l := range s.byID {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
