package sourcemodel

import (
	"errors"
	"sort"

	"github.com/cespare/xxhash/v2"
	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	cnerrors "github.com/standardbeagle/codenav/internal/errors"
)

// File is one parsed source file. It is immutable after parsing; the
// project swaps whole File values when content changes.
type File struct {
	Path     string // absolute
	RelPath  string // slash-separated, relative to the project root
	Language *Language
	Content  []byte
	Hash     uint64
	Root     *Node
	Package  string // Java package, "" elsewhere

	// Decls lists every declaration in document order.
	Decls []*Node
	// Comments lists every comment node in document order.
	Comments []*Node
	// HasErrors is set when the parser recovered from syntax errors.
	HasErrors bool

	lineStarts []int
	idents     map[string][]*Node
	nameOf     map[*Node]*Node
	byScope    map[*Node][]*Node
	scoped     map[*Node]map[string][]*Node
}

// HashContent returns the content hash used to detect changes.
func HashContent(content []byte) uint64 {
	return xxhash.Sum64(content)
}

// ParseFile parses content with the language's grammar and indexes it.
func ParseFile(lang *Language, path, relPath string, content []byte) (*File, error) {
	parser, err := lang.acquireParser()
	if err != nil {
		return nil, err
	}
	tree := parser.Parse(content, nil)
	lang.releaseParser(parser)
	if tree == nil {
		return nil, cnerrors.NewParseError(path, 0, 0, errors.New("parser produced no tree"))
	}
	defer tree.Close()

	f := &File{
		Path:     path,
		RelPath:  relPath,
		Language: lang,
		Content:  content,
		Hash:     HashContent(content),
	}
	f.Root = convertTree(tree, f)
	f.Root.Kind = KindFile
	f.HasErrors = tree.RootNode().HasError()
	f.index(lang.syntax)
	return f, nil
}

// convertTree copies the tree-sitter tree into Go nodes so the C tree can
// be released immediately.
func convertTree(tree *tree_sitter.Tree, f *File) *Node {
	cursor := tree.Walk()
	defer cursor.Close()

	var build func(parent *Node) *Node
	build = func(parent *Node) *Node {
		tn := cursor.Node()
		n := &Node{
			Type:   tn.Kind(),
			Named:  tn.IsNamed(),
			Field:  cursor.FieldName(),
			Start:  int(tn.StartByte()),
			End:    int(tn.EndByte()),
			Parent: parent,
			File:   f,
		}
		if cursor.GotoFirstChild() {
			for {
				child := build(n)
				child.Index = len(n.Children)
				n.Children = append(n.Children, child)
				if !cursor.GotoNextSibling() {
					break
				}
			}
			cursor.GotoParent()
		}
		return n
	}
	return build(nil)
}

func (f *File) index(g *grammar) {
	f.lineStarts = []int{0}
	for i, b := range f.Content {
		if b == '\n' {
			f.lineStarts = append(f.lineStarts, i+1)
		}
	}
	f.idents = make(map[string][]*Node)
	f.nameOf = make(map[*Node]*Node)
	f.byScope = make(map[*Node][]*Node)
	f.scoped = make(map[*Node]map[string][]*Node)

	f.Root.Walk(func(n *Node) bool {
		switch {
		case g.identifiers[n.Type]:
			n.Kind = KindIdentifier
		case g.comments[n.Type]:
			n.Kind = KindComment
			f.Comments = append(f.Comments, n)
		case g.strings[n.Type]:
			n.Kind = KindString
		}
		return true
	})

	f.declare(g, f.Root, f.Root)
	f.Package = g.packageOf(f.Root)

	f.Root.Walk(func(n *Node) bool {
		if n.Kind == KindIdentifier || (n.IsDecl() && n.Decl.Name == n) {
			text := n.Text()
			f.idents[text] = append(f.idents[text], n)
		}
		return true
	})
}

// declare assigns declarations and scopes in one pre-order pass.
func (f *File) declare(g *grammar, n *Node, scope *Node) {
	if n != f.Root {
		if rule, ok := g.decls[n.Type]; ok {
			if name, role, ok := rule(n); ok {
				switch {
				case !g.rebinding[n.Type]:
					f.bind(n, name, role, scope)
				case g.escapes(scope, name.Text()) != escapeNone:
					// assigns a name bound in an outer scope
				case f.lookupLocal(scope, name.Text()) == nil:
					f.bind(n, name, role, scope)
				}
			}
		}
		if !n.IsDecl() {
			if field := g.instanceField(n); field != nil {
				if cls := enclosingClassOfMethod(scope); cls != nil && f.lookupLocal(cls, field.Text()) == nil {
					f.bind(n, field, RoleVariable, cls)
				}
			}
		}
	}

	inner := scope
	if n.IsDecl() && (n.Decl.Role == RoleType || n.Decl.Role == RoleCallable) {
		inner = n
	} else if g.scopes[n.Type] {
		inner = n
	}
	for _, c := range n.Children {
		f.declare(g, c, inner)
	}
}

func (f *File) bind(n, name *Node, role DeclRole, scope *Node) {
	n.Kind = KindDeclaration
	n.Decl = &DeclInfo{Role: role, Name: name, Scope: scope}
	f.nameOf[name] = n
	f.byScope[scope] = append(f.byScope[scope], n)
	tbl := f.scoped[scope]
	if tbl == nil {
		tbl = make(map[string][]*Node)
		f.scoped[scope] = tbl
	}
	key := name.Text()
	tbl[key] = append(tbl[key], n)
	f.Decls = append(f.Decls, n)
}

// enclosingClassOfMethod returns the type a callable scope is a member of.
func enclosingClassOfMethod(scope *Node) *Node {
	if scope == nil || !scope.IsDecl() || scope.Decl.Role != RoleCallable {
		return nil
	}
	if owner := scope.Decl.Scope; owner != nil && owner.IsDecl() && owner.Decl.Role == RoleType {
		return owner
	}
	return nil
}

func (f *File) lookupLocal(scope *Node, name string) *Node {
	if decls := f.scoped[scope][name]; len(decls) > 0 {
		return decls[0]
	}
	return nil
}

// DeclsIn returns the declarations bound directly in scope, in document
// order.
func (f *File) DeclsIn(scope *Node) []*Node {
	return f.byScope[scope]
}

// DeclOfName returns the declaration whose name node is id, or nil.
func (f *File) DeclOfName(id *Node) *Node {
	return f.nameOf[id]
}

// Identifiers returns every identifier node with the given text.
func (f *File) Identifiers(name string) []*Node {
	return f.idents[name]
}

// TopLevel returns declarations bound at file scope.
func (f *File) TopLevel() []*Node {
	return f.byScope[f.Root]
}

// ElementAt returns the deepest node covering offset, or nil when offset is
// outside the file.
func (f *File) ElementAt(offset int) *Node {
	if offset < 0 || offset >= len(f.Content) {
		return nil
	}
	n := f.Root
	for {
		var next *Node
		for _, c := range n.Children {
			if c.Start < c.End && c.Contains(offset) {
				next = c
				break
			}
		}
		if next == nil {
			return n
		}
		n = next
	}
}

// LineNumberOf converts a byte offset to a 1-based line number. Offsets
// beyond the end map to the last line.
func (f *File) LineNumberOf(offset int) int {
	if offset <= 0 {
		return 1
	}
	return sort.Search(len(f.lineStarts), func(i int) bool { return f.lineStarts[i] > offset })
}

// LineCount returns the number of lines.
func (f *File) LineCount() int {
	return len(f.lineStarts)
}

// Offset converts a 1-based line and column to a byte offset.
func (f *File) Offset(line, column int) (int, bool) {
	if line < 1 || line > len(f.lineStarts) || column < 1 {
		return 0, false
	}
	off := f.lineStarts[line-1] + column - 1
	end := len(f.Content)
	if line < len(f.lineStarts) {
		end = f.lineStarts[line] - 1
	}
	if off > end {
		return 0, false
	}
	return off, true
}

// LineText returns the text of a 1-based line without its newline.
func (f *File) LineText(line int) string {
	if line < 1 || line > len(f.lineStarts) {
		return ""
	}
	start := f.lineStarts[line-1]
	end := len(f.Content)
	if line < len(f.lineStarts) {
		end = f.lineStarts[line] - 1
	}
	if end > start && f.Content[end-1] == '\r' {
		end--
	}
	return string(f.Content[start:end])
}

// IsBlank reports whether the byte at offset is whitespace.
func (f *File) IsBlank(offset int) bool {
	if offset < 0 || offset >= len(f.Content) {
		return true
	}
	switch f.Content[offset] {
	case ' ', '\t', '\n', '\r', '\f', '\v':
		return true
	}
	return false
}
