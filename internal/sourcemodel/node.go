package sourcemodel

import (
	"strings"
)

// NodeKind discriminates the Node variants the analyzers dispatch on.
type NodeKind uint8

const (
	KindOther NodeKind = iota
	KindFile
	KindDeclaration
	KindIdentifier
	KindComment
	KindString
)

func (k NodeKind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindDeclaration:
		return "declaration"
	case KindIdentifier:
		return "identifier"
	case KindComment:
		return "comment"
	case KindString:
		return "string"
	default:
		return "other"
	}
}

// DeclRole is the structural role of a declaration, independent of the
// language-specific kind the analyzers later assign.
type DeclRole uint8

const (
	RoleType DeclRole = iota
	RoleCallable
	RoleVariable
	RoleParameter
	RoleImport
)

func (r DeclRole) String() string {
	switch r {
	case RoleType:
		return "type"
	case RoleCallable:
		return "callable"
	case RoleVariable:
		return "variable"
	case RoleParameter:
		return "parameter"
	case RoleImport:
		return "import"
	default:
		return "unknown"
	}
}

// DeclInfo is the payload of a KindDeclaration node.
type DeclInfo struct {
	Role DeclRole
	// Name is the identifier naming the declaration. It lies inside the
	// declaration's byte range.
	Name *Node
	// Scope is the node the name is bound in: the file root, a type
	// declaration (members) or a callable/lambda (locals).
	Scope *Node
}

// Node is one syntax node. Trees are converted from tree-sitter once at
// parse time and are never mutated afterwards.
type Node struct {
	Kind  NodeKind
	Type  string // grammar node type, e.g. "method_declaration"
	Named bool
	Field string // field name in the parent, "" when none
	Start int    // byte offsets, End exclusive
	End   int

	Parent   *Node
	Children []*Node
	Index    int // position in Parent.Children
	File     *File

	Decl *DeclInfo // non-nil iff Kind == KindDeclaration
}

// Text returns the source text covered by the node.
func (n *Node) Text() string {
	if n == nil || n.File == nil {
		return ""
	}
	return string(n.File.Content[n.Start:n.End])
}

// IsDecl reports whether n is a declaration
func (n *Node) IsDecl() bool {
	return n != nil && n.Kind == KindDeclaration
}

// Role returns the declaration role. Only meaningful for declarations.
func (n *Node) Role() DeclRole {
	if n.Decl == nil {
		return RoleVariable
	}
	return n.Decl.Role
}

// Name returns the declared name, "" for non-declarations.
func (n *Node) Name() string {
	if n == nil || n.Decl == nil || n.Decl.Name == nil {
		return ""
	}
	return n.Decl.Name.Text()
}

// Scope returns the scope the declaration is bound in.
func (n *Node) Scope() *Node {
	if n == nil || n.Decl == nil {
		return nil
	}
	return n.Decl.Scope
}

// Contains reports whether offset falls inside the node.
func (n *Node) Contains(offset int) bool {
	return offset >= n.Start && offset < n.End
}

// Encloses reports whether other lies entirely within n.
func (n *Node) Encloses(other *Node) bool {
	return other.Start >= n.Start && other.End <= n.End
}

// ChildByField returns the first child with the given field name.
func (n *Node) ChildByField(field string) *Node {
	if n == nil {
		return nil
	}
	for _, c := range n.Children {
		if c.Field == field {
			return c
		}
	}
	return nil
}

// ChildrenByField returns all children with the given field name.
func (n *Node) ChildrenByField(field string) []*Node {
	var out []*Node
	for _, c := range n.Children {
		if c.Field == field {
			out = append(out, c)
		}
	}
	return out
}

// ChildOfType returns the first child whose type is one of types.
func (n *Node) ChildOfType(types ...string) *Node {
	if n == nil {
		return nil
	}
	for _, c := range n.Children {
		for _, t := range types {
			if c.Type == t {
				return c
			}
		}
	}
	return nil
}

// ChildrenOfType returns all children whose type is one of types.
func (n *Node) ChildrenOfType(types ...string) []*Node {
	var out []*Node
	for _, c := range n.Children {
		for _, t := range types {
			if c.Type == t {
				out = append(out, c)
				break
			}
		}
	}
	return out
}

// HasChild reports whether n has a direct child (named or anonymous) of
// type typ. Anonymous keyword tokens such as "static" or "async" are
// matched this way.
func (n *Node) HasChild(typ string) bool {
	return n.ChildOfType(typ) != nil
}

// NamedChildren returns the named children.
func (n *Node) NamedChildren() []*Node {
	out := make([]*Node, 0, len(n.Children))
	for _, c := range n.Children {
		if c.Named {
			out = append(out, c)
		}
	}
	return out
}

// PrevSibling returns the previous sibling or nil.
func (n *Node) PrevSibling() *Node {
	if n.Parent == nil || n.Index == 0 {
		return nil
	}
	return n.Parent.Children[n.Index-1]
}

// NextSibling returns the next sibling or nil.
func (n *Node) NextSibling() *Node {
	if n.Parent == nil || n.Index+1 >= len(n.Parent.Children) {
		return nil
	}
	return n.Parent.Children[n.Index+1]
}

// Ancestor returns the nearest proper ancestor whose type is one of types.
func (n *Node) Ancestor(types ...string) *Node {
	for p := n.Parent; p != nil; p = p.Parent {
		for _, t := range types {
			if p.Type == t {
				return p
			}
		}
	}
	return nil
}

// EnclosingDecl returns the nearest proper ancestor that is a declaration
// with one of the given roles (any role when none are given).
func (n *Node) EnclosingDecl(roles ...DeclRole) *Node {
	for p := n.Parent; p != nil; p = p.Parent {
		if !p.IsDecl() {
			continue
		}
		if len(roles) == 0 {
			return p
		}
		for _, r := range roles {
			if p.Decl.Role == r {
				return p
			}
		}
	}
	return nil
}

// Walk visits n and its descendants in pre-order. Returning false from fn
// skips the node's children.
func (n *Node) Walk(fn func(*Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// FirstLine returns the first source line of the node, trimmed.
func (n *Node) FirstLine() string {
	text := n.Text()
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[:i]
	}
	return strings.TrimSpace(text)
}
