package sourcemodel

import (
	"strings"
)

// declRule recognizes a declaration node and returns the identifier that
// names it.
type declRule func(n *Node) (name *Node, role DeclRole, ok bool)

// importSpec describes what an import declaration binds.
type importSpec struct {
	Module   string // dotted (Java, Python) or path-like (JS) module name
	Name     string // imported member, "" when the module itself is bound
	Relative int    // Python leading dots
	Static   bool   // Java static member import
}

// grammar holds the per-language knowledge the model needs to build scopes
// and resolve names. Everything else is left to the analyzers.
type grammar struct {
	identifiers map[string]bool
	comments    map[string]bool
	strings     map[string]bool
	decls       map[string]declRule
	// scopes lists non-declaration nodes that open a lexical scope
	scopes map[string]bool
	// rebinding decl types only declare on the first binding in a scope
	rebinding map[string]bool
	// escapes reports names a scope rebinds in an outer scope
	escapes func(scope *Node, name string) escapeKind
	// wrappers are statement nodes that carry a declaration's comments
	wrappers map[string]bool
	// bareMembers: class members are visible as plain names in methods
	bareMembers bool
	// declareBeforeUse: locals are only visible after their declaration
	declareBeforeUse bool

	receiverTypes map[string]bool
	receiverNames map[string]bool
	superTypes    map[string]bool

	memberOf       func(id *Node) (object *Node, ok bool)
	instanceField  func(n *Node) *Node
	supertypeNodes func(decl *Node) []*Node
	declaredType   func(decl *Node) string
	importOf       func(decl *Node) (importSpec, bool)
	packageOf      func(root *Node) string
	isSuperCall    func(n *Node) bool
	docString      func(decl *Node) *Node
}

// escapeKind says where a scope's assignments to a name bind.
type escapeKind int

const (
	escapeNone escapeKind = iota
	escapeGlobal
	escapeNonlocal
)

func noEscapes(*Node, string) escapeKind { return escapeNone }

func set(items ...string) map[string]bool {
	m := make(map[string]bool, len(items))
	for _, it := range items {
		m[it] = true
	}
	return m
}

// byField declares the node named by its field child.
func byField(field string, role DeclRole) declRule {
	return func(n *Node) (*Node, DeclRole, bool) {
		name := n.ChildByField(field)
		if name == nil || name.Kind != KindIdentifier {
			return nil, 0, false
		}
		return name, role, true
	}
}

// selfDecl declares an identifier node as its own name.
func selfDecl(role DeclRole) declRule {
	return func(n *Node) (*Node, DeclRole, bool) {
		return n, role, true
	}
}

// firstRule tries rules in order.
func firstRule(rules ...declRule) declRule {
	return func(n *Node) (*Node, DeclRole, bool) {
		for _, r := range rules {
			if name, role, ok := r(n); ok {
				return name, role, true
			}
		}
		return nil, 0, false
	}
}

// when guards a rule with a predicate.
func when(pred func(n *Node) bool, rule declRule) declRule {
	return func(n *Node) (*Node, DeclRole, bool) {
		if !pred(n) {
			return nil, 0, false
		}
		return rule(n)
	}
}

func parentIs(types ...string) func(n *Node) bool {
	return func(n *Node) bool {
		if n.Parent == nil {
			return false
		}
		for _, t := range types {
			if n.Parent.Type == t {
				return true
			}
		}
		return false
	}
}

func parentFieldIs(parentType, field string) func(n *Node) bool {
	return func(n *Node) bool {
		return n.Parent != nil && n.Parent.Type == parentType && n.Field == field
	}
}

// firstIdentifierChild declares the first identifier child.
func firstIdentifierChild(role DeclRole) declRule {
	return func(n *Node) (*Node, DeclRole, bool) {
		for _, c := range n.Children {
			if c.Kind == KindIdentifier {
				return c, role, true
			}
		}
		return nil, 0, false
	}
}

// simpleTypeName reduces a type expression to its last simple name:
// "java.util.List<Foo>" -> "List", "Foo[]" -> "Foo", "Optional[Bar]" -> "Bar".
func simpleTypeName(text string) string {
	text = strings.TrimSpace(text)
	text = strings.Trim(text, `"'`)
	text = strings.TrimPrefix(text, ":")
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "Optional[") && strings.HasSuffix(text, "]") {
		text = text[len("Optional[") : len(text)-1]
	}
	if i := strings.IndexAny(text, "<[|("); i >= 0 {
		text = text[:i]
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "?")
	if i := strings.LastIndexByte(text, '.'); i >= 0 {
		text = text[i+1:]
	}
	return strings.TrimSpace(text)
}

// typeNameNode returns the identifier that names a type expression.
func typeNameNode(t *Node) *Node {
	if t == nil {
		return nil
	}
	switch {
	case t.Kind == KindIdentifier:
		return t
	case t.Type == "generic_type":
		if n := t.ChildByField("name"); n != nil {
			return typeNameNode(n)
		}
		if len(t.Children) > 0 {
			return typeNameNode(t.Children[0])
		}
	case t.Type == "scoped_type_identifier" || t.Type == "nested_type_identifier":
		for i := len(t.Children) - 1; i >= 0; i-- {
			if t.Children[i].Kind == KindIdentifier {
				return t.Children[i]
			}
		}
	case t.Type == "member_expression":
		return t.ChildByField("property")
	case t.Type == "attribute":
		return t.ChildByField("attribute")
	case t.Type == "subscript":
		return typeNameNode(t.ChildByField("value"))
	case t.Type == "type_annotation" || t.Type == "type":
		for _, c := range t.NamedChildren() {
			if n := typeNameNode(c); n != nil {
				return n
			}
		}
	}
	return nil
}
