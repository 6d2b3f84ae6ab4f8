package analyzer

import (
	"strings"
	"unicode"

	"github.com/standardbeagle/codenav/internal/sourcemodel"
	"github.com/standardbeagle/codenav/internal/types"
)

// Node is a shorthand for the source model node type.
type Node = sourcemodel.Node

// Usage is one usage site found by an adapter outside the model's
// reference search.
type Usage struct {
	Node      *Node
	UsageType string
}

// Adapter translates one language family's tree shapes into the symbol,
// reference and hover vocabulary. Adapters are stateless; the model is
// passed to every call that needs semantic information.
type Adapter interface {
	Family() sourcemodel.Family

	// Kind classifies a declaration into exactly one kind. ok is false for
	// declarations that are not symbols, such as parameters.
	Kind(m sourcemodel.Model, decl *Node) (kind types.SymbolKind, ok bool)
	Visibility(decl *Node) types.Visibility
	Modifiers(decl *Node) []string
	Decorators(decl *Node) []types.Decorator
	Signature(decl *Node) string
	// ParameterList returns the syntactic parameter list of a callable.
	ParameterList(decl *Node) *Node
	ReturnType(decl *Node) string
	// Throws lists the exceptions a callable declares or raises directly.
	Throws(decl *Node) []string
	// Qualifier is the package or module prefix of qualified names.
	Qualifier(m sourcemodel.Model, f *sourcemodel.File) string
	LanguageData(m sourcemodel.Model, decl *Node, kind types.SymbolKind) map[string]string
	IsSynthetic(decl *Node) bool
	// Deprecation reports a deprecation marker (annotation or decorator)
	// and its message, if any.
	Deprecation(decl *Node) (bool, string)
	// ExplicitOverride reports an @Override style marker.
	ExplicitOverride(decl *Node) bool

	// ClassifyUsage returns the usage type of ref, an identifier that
	// resolves to target.
	ClassifyUsage(m sourcemodel.Model, ref, target *Node, kind types.SymbolKind) string
	// DataFlow describes the semantic role of the expression at ref.
	DataFlow(ref *Node) string
	// ExtraUsages finds usages the model's reference search misses.
	ExtraUsages(m sourcemodel.Model, target *Node, kind types.SymbolKind, scope sourcemodel.Scope) []Usage
	// IsDecoration reports whether n is an annotation or decorator node.
	IsDecoration(n *Node) bool

	// BranchPoints is the cyclomatic contribution of a single node.
	BranchPoints(n *Node) int
	// IsNestedUnit reports nodes whose bodies are measured separately.
	IsNestedUnit(n *Node) bool
}

// ownerType returns the type a declaration is a member of, or nil.
func ownerType(decl *Node) *Node {
	if decl == nil || decl.Decl == nil {
		return nil
	}
	s := decl.Decl.Scope
	if s != nil && s.IsDecl() && s.Decl.Role == sourcemodel.RoleType {
		return s
	}
	return nil
}

// ownerChain returns the names of the enclosing types, outermost first.
func ownerChain(decl *Node) []string {
	var names []string
	for o := ownerType(decl); o != nil; o = ownerType(o) {
		names = append(names, o.Name())
	}
	for i, j := 0, len(names)-1; i < j; i, j = i+1, j-1 {
		names[i], names[j] = names[j], names[i]
	}
	return names
}

// collapse normalizes all whitespace runs to single spaces.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// textRange returns collapsed source text between two offsets of f.
func textRange(f *sourcemodel.File, start, end int) string {
	if start < 0 {
		start = 0
	}
	if end > len(f.Content) {
		end = len(f.Content)
	}
	if start >= end {
		return ""
	}
	return collapse(string(f.Content[start:end]))
}

// header returns the declaration text before its body.
func header(decl *Node, bodyFields ...string) string {
	end := decl.End
	for _, field := range bodyFields {
		if body := decl.ChildByField(field); body != nil {
			end = body.Start
			break
		}
	}
	return strings.TrimRight(textRange(decl.File, decl.Start, end), " {:;")
}

// innerText strips the outer delimiters of a list node such as "(a, b)".
func innerText(n *Node) string {
	if n == nil {
		return ""
	}
	text := collapse(n.Text())
	if len(text) >= 2 && strings.ContainsRune("([{<", rune(text[0])) {
		text = text[1 : len(text)-1]
	}
	return strings.TrimSpace(text)
}

// keywords returns the anonymous keyword children of n found in words, in
// source order.
func keywords(n *Node, words map[string]bool) []string {
	if n == nil {
		return nil
	}
	var out []string
	for _, c := range n.Children {
		if !c.Named && words[c.Type] {
			out = append(out, c.Type)
		}
	}
	return out
}

// isConstantName reports UPPER_SNAKE_CASE names.
func isConstantName(name string) bool {
	hasLetter := false
	for _, r := range name {
		switch {
		case unicode.IsUpper(r):
			hasLetter = true
		case unicode.IsDigit(r) || r == '_':
		default:
			return false
		}
	}
	return hasLetter
}

func isCapitalized(name string) bool {
	for _, r := range name {
		return unicode.IsUpper(r)
	}
	return false
}

// appendUnique appends s unless present.
func appendUnique(list []string, items ...string) []string {
	for _, s := range items {
		if s == "" {
			continue
		}
		found := false
		for _, have := range list {
			if have == s {
				found = true
				break
			}
		}
		if !found {
			list = append(list, s)
		}
	}
	return list
}

// memberExpr returns the expression a usage occupies: the whole member
// access when ref is its member part, otherwise ref itself.
func memberExpr(m sourcemodel.Model, ref *Node) *Node {
	if _, ok := m.MemberReceiver(ref); ok && ref.Parent != nil {
		return ref.Parent
	}
	return ref
}

// climb skips wrapping nodes of the given types.
func climb(n *Node, wrappers map[string]bool) *Node {
	for n.Parent != nil && wrappers[n.Parent.Type] {
		n = n.Parent
	}
	return n
}

func set(items ...string) map[string]bool {
	m := make(map[string]bool, len(items))
	for _, it := range items {
		m[it] = true
	}
	return m
}

// bodyOf returns the first body field present on decl.
func bodyOf(decl *Node) *Node {
	if b := decl.ChildByField("body"); b != nil {
		return b
	}
	if v := decl.ChildByField("value"); v != nil {
		return v.ChildByField("body")
	}
	return nil
}

// isMemberKind reports kinds that belong to a type rather than a module.
func isMemberKind(k types.SymbolKind) bool {
	switch k {
	case types.SymbolKindMethod, types.SymbolKindConstructor, types.SymbolKindField, types.SymbolKindEnumMember:
		return true
	}
	return false
}

// dataFlowOf is the shared data-flow description; adapters supply the node
// type sets for their grammar.
type flowShapes struct {
	wrappers   map[string]bool
	assign     map[string]bool // assignment-like parents with a "right" field
	declarator map[string]bool // declarations with a "value" field
	returns    map[string]bool
	arguments  map[string]bool
	conditions map[string]bool // statements with a "condition" field
	awaits     map[string]bool
	throws     map[string]bool
	iterables  map[string]bool // loops with a "right" or "value" iterable
	yields     map[string]bool
}

func (s flowShapes) describe(expr *Node) string {
	n := climb(expr, s.wrappers)
	p := n.Parent
	if p == nil {
		return ""
	}
	switch {
	case s.awaits[p.Type]:
		return "awaited"
	case s.assign[p.Type] && n.Field == "right":
		if left := p.ChildByField("left"); left != nil {
			return "assigned to " + collapse(left.Text())
		}
	case s.declarator[p.Type] && n.Field == "value":
		if name := p.ChildByField("name"); name != nil {
			return "assigned to " + name.Text()
		}
	case s.returns[p.Type]:
		return "returned from function"
	case s.arguments[p.Type]:
		return "passed as argument"
	case s.conditions[p.Type] && n.Field == "condition":
		return "used in condition"
	case s.throws[p.Type]:
		return "thrown"
	case s.iterables[p.Type] && (n.Field == "right" || n.Field == "value"):
		return "iterated over"
	case s.yields[p.Type]:
		return "yielded"
	}
	return ""
}
