package types

import (
	"encoding/json"
	"strings"
)

// SymbolKind classifies a declaration. The string value is the wire form.
// Kinds outside the predefined set are created with CustomKind.
type SymbolKind string

const (
	SymbolKindClass         SymbolKind = "class"
	SymbolKindInterface     SymbolKind = "interface"
	SymbolKindEnum          SymbolKind = "enum"
	SymbolKindAnnotation    SymbolKind = "annotation"
	SymbolKindTypeAlias     SymbolKind = "type_alias"
	SymbolKindComponent     SymbolKind = "component"
	SymbolKindMethod        SymbolKind = "method"
	SymbolKindConstructor   SymbolKind = "constructor"
	SymbolKindFunction      SymbolKind = "function"
	SymbolKindAsyncFunction SymbolKind = "async_function"
	SymbolKindGenerator     SymbolKind = "generator"
	SymbolKindHook          SymbolKind = "hook"
	SymbolKindField         SymbolKind = "field"
	SymbolKindConstant      SymbolKind = "constant"
	SymbolKindVariable      SymbolKind = "variable"
	SymbolKindEnumMember    SymbolKind = "enum_member"
	SymbolKindImport        SymbolKind = "import"
)

// symbolKindCategories maps every predefined kind to its category.
var symbolKindCategories = map[SymbolKind]Category{
	SymbolKindClass:         CategoryType,
	SymbolKindInterface:     CategoryType,
	SymbolKindEnum:          CategoryType,
	SymbolKindAnnotation:    CategoryType,
	SymbolKindTypeAlias:     CategoryType,
	SymbolKindComponent:     CategoryType,
	SymbolKindMethod:        CategoryFunction,
	SymbolKindConstructor:   CategoryFunction,
	SymbolKindFunction:      CategoryFunction,
	SymbolKindAsyncFunction: CategoryFunction,
	SymbolKindGenerator:     CategoryFunction,
	SymbolKindHook:          CategoryFunction,
	SymbolKindField:         CategoryVariable,
	SymbolKindConstant:      CategoryVariable,
	SymbolKindVariable:      CategoryVariable,
	SymbolKindEnumMember:    CategoryVariable,
	SymbolKindImport:        CategoryModule,
}

// CustomKind returns an adapter-defined kind. Names are normalized to
// lower snake case so they compare equal to filter strings.
func CustomKind(name string) SymbolKind {
	return SymbolKind(strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), " ", "_")))
}

// ParseSymbolKind converts a filter string (for example "constant" or
// "EnumMember") into a kind.
func ParseSymbolKind(s string) SymbolKind {
	s = strings.TrimSpace(s)
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 && s[i-1] != '_' {
				b.WriteByte('_')
			}
			b.WriteRune(r + ('a' - 'A'))
			continue
		}
		b.WriteRune(r)
	}
	return SymbolKind(b.String())
}

// IsCustom reports whether the kind is outside the predefined vocabulary.
func (k SymbolKind) IsCustom() bool {
	_, ok := symbolKindCategories[k]
	return !ok
}

// Category returns the derived grouping for the kind.
func (k SymbolKind) Category() Category {
	if c, ok := symbolKindCategories[k]; ok {
		return c
	}
	return CategoryOther
}

// IsContainer reports whether declarations of this kind own member declarations.
func (k SymbolKind) IsContainer() bool {
	switch k {
	case SymbolKindClass, SymbolKindInterface, SymbolKindEnum, SymbolKindAnnotation, SymbolKindComponent:
		return true
	}
	return false
}

// IsCallable reports whether the kind is a function-like declaration.
func (k SymbolKind) IsCallable() bool {
	return k.Category() == CategoryFunction
}

// Category is the coarse grouping derived from a SymbolKind.
type Category string

const (
	CategoryType     Category = "type"
	CategoryFunction Category = "function"
	CategoryVariable Category = "variable"
	CategoryModule   Category = "module"
	CategoryOther    Category = "other"
)

// Visibility is one of exactly five access levels.
type Visibility string

const (
	VisibilityPublic    Visibility = "public"
	VisibilityPrivate   Visibility = "private"
	VisibilityProtected Visibility = "protected"
	VisibilityPackage   Visibility = "package"
	VisibilityDefault   Visibility = "default"
)

// IsNarrow reports whether the member is not accessible from arbitrary code.
func (v Visibility) IsNarrow() bool {
	return v == VisibilityPrivate || v == VisibilityProtected || v == VisibilityPackage
}

// Location is a byte range with the 1-based line of its start.
type Location struct {
	StartOffset int `json:"startOffset"`
	EndOffset   int `json:"endOffset"`
	LineNumber  int `json:"lineNumber"`
}

// Contains reports whether other lies fully inside l.
func (l Location) Contains(other Location) bool {
	return other.StartOffset >= l.StartOffset && other.EndOffset <= l.EndOffset
}

// Decorator is a decorator or annotation in source order.
type Decorator struct {
	Name string `json:"name"`
}

// OverrideInfo records the supertype member a method overrides.
type OverrideInfo struct {
	ParentClass string `json:"parentClass"`
	MethodName  string `json:"methodName"`
	IsExplicit  bool   `json:"isExplicit"`
}

// TypeInfo holds the display form of a declared type.
type TypeInfo struct {
	DisplayName string `json:"displayName"`
}

// SymbolInfo is a declaration found in a file.
type SymbolInfo struct {
	Name          string            `json:"name"`
	QualifiedName string            `json:"qualifiedName,omitempty"`
	Kind          SymbolKind        `json:"kind"`
	Category      Category          `json:"category"`
	Location      Location          `json:"location"`
	Modifiers     []string          `json:"modifiers"`
	Visibility    Visibility        `json:"visibility"`
	Signature     *string           `json:"signature,omitempty"`
	Documentation *string           `json:"documentation,omitempty"`
	Decorators    []Decorator       `json:"decorators"`
	Overrides     *OverrideInfo     `json:"overrides,omitempty"`
	Implements    []string          `json:"implements"`
	TypeInfo      *TypeInfo         `json:"typeInfo,omitempty"`
	LanguageData  map[string]string `json:"languageData,omitempty"`
	Children      []*SymbolInfo     `json:"-"`
	IsSynthetic   bool              `json:"isSynthetic"`
	IsDeprecated  bool              `json:"isDeprecated"`
}

// MarshalJSON emits "children" only for hierarchical results: a nil slice
// is omitted, an empty one is written as [].
func (s SymbolInfo) MarshalJSON() ([]byte, error) {
	type plain SymbolInfo
	out := struct {
		*plain
		Children *[]*SymbolInfo `json:"children,omitempty"`
	}{plain: (*plain)(&s)}
	if s.Children != nil {
		out.Children = &s.Children
	}
	return json.Marshal(out)
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (s *SymbolInfo) UnmarshalJSON(data []byte) error {
	type plain SymbolInfo
	in := struct {
		*plain
		Children *[]*SymbolInfo `json:"children"`
	}{plain: (*plain)(s)}
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	if in.Children != nil {
		s.Children = *in.Children
		if s.Children == nil {
			s.Children = []*SymbolInfo{}
		}
	}
	return nil
}

// HasModifier reports whether mod is present.
func (s *SymbolInfo) HasModifier(mod string) bool {
	for _, m := range s.Modifiers {
		if m == mod {
			return true
		}
	}
	return false
}

// StringPtr returns a pointer to s, or nil for the empty string.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Deref returns the pointed-to string or "".
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
