// Package sourcemodel hosts parsed source code for the analyzers: syntax
// trees, name resolution, reference search and path classification.
//
// Model methods never lock. Callers hold ReadLock for the duration of a
// request; the watcher takes the write lock to swap changed files.
package sourcemodel

// Tier orders search scopes from narrowest to widest.
type Tier int

const (
	TierFile Tier = iota
	TierProject
	TierProjectAndLibraries
	TierEverything
)

func (t Tier) String() string {
	switch t {
	case TierFile:
		return "file"
	case TierProject:
		return "project"
	case TierProjectAndLibraries:
		return "project_and_libraries"
	default:
		return "everything"
	}
}

// Scope restricts a search. File is required for TierFile. Limit bounds the
// number of results, 0 means unbounded.
type Scope struct {
	Tier  Tier
	File  *File
	Limit int
}

// ProjectScope is the common project-only scope.
func ProjectScope() Scope {
	return Scope{Tier: TierProject}
}

// Model is what the analyzers see of the source code.
type Model interface {
	// Parse returns the parsed file for path, parsing on demand.
	Parse(path string) (*File, error)
	// ElementAt returns the deepest node at offset or nil.
	ElementAt(f *File, offset int) *Node
	// ResolveReference returns the declaration a node refers to or nil.
	ResolveReference(n *Node) *Node
	// FindAllReferences returns every identifier resolving to target.
	FindAllReferences(target *Node, scope Scope) []*Node
	// LineNumberOf converts an offset to a 1-based line.
	LineNumberOf(f *File, offset int) int
	IsTestCode(path string) bool
	IsLibraryCode(path string) bool

	// Root returns the absolute project root.
	Root() string
	// RelPath returns path relative to the root, slash-separated.
	RelPath(path string) string
	// Files returns the files in scope sorted by relative path.
	Files(scope Scope) []*File
	// Supertypes resolves the declared supertypes of a type declaration.
	Supertypes(decl *Node) []*Node
	// SupertypeNames lists the declared supertype names, resolved or not.
	SupertypeNames(decl *Node) []string
	// Inheritors returns types extending or implementing decl, transitively.
	Inheritors(decl *Node, limit int) []*Node
	// Members returns the member declarations of a type.
	Members(decl *Node) []*Node
	// FindMember looks a member up on a type and its supertypes.
	FindMember(typeDecl *Node, name string) *Node
	// DeclaredType resolves the declared or inferred type of a variable,
	// parameter or callable return.
	DeclaredType(decl *Node) *Node
	// DeclaredTypeName is the unresolved type text.
	DeclaredTypeName(decl *Node) string
	// AttachedComments returns doc comments or docstrings for a declaration.
	AttachedComments(decl *Node) []*Node
	// FindDeclarations returns declarations named name in scope.
	FindDeclarations(name string, scope Scope) []*Node
	// FollowImport returns the declaration an import binds, or nil.
	FollowImport(decl *Node) *Node
	// IsReceiver reports whether n denotes the current instance.
	IsReceiver(n *Node) bool
	// IsSuper reports whether n denotes the supertype instance.
	IsSuper(n *Node) bool
	// MemberReceiver returns the object of a member access whose member
	// part is id.
	MemberReceiver(id *Node) (*Node, bool)

	// ReadLock acquires the shared lock and returns its release function.
	ReadLock() (release func())
}
