package analyzer

import (
	"strings"

	"github.com/standardbeagle/codenav/internal/debug"
	"github.com/standardbeagle/codenav/internal/sourcemodel"
	"github.com/standardbeagle/codenav/internal/types"
)

// extractor converts the declarations of one file into symbols.
type extractor struct {
	m    sourcemodel.Model
	a    Adapter
	f    *sourcemodel.File
	opts types.ExtractOptions
}

// extractSymbols lists the symbols of f. Flat results never carry
// children; hierarchical results start at the top-level declarations and
// nest type members recursively.
func extractSymbols(m sourcemodel.Model, a Adapter, f *sourcemodel.File, hierarchical bool, opts types.ExtractOptions) []*types.SymbolInfo {
	x := &extractor{m: m, a: a, f: f, opts: opts}
	if hierarchical {
		return x.members(f.Root)
	}
	return x.flat()
}

func (x *extractor) flat() []*types.SymbolInfo {
	out := []*types.SymbolInfo{}
	for _, d := range x.f.Decls {
		if d.Decl.Role == sourcemodel.RoleParameter || sourcemodel.IsLocal(d) {
			continue
		}
		kind, ok := x.a.Kind(x.m, d)
		if !ok || !x.accepts(d, kind) {
			continue
		}
		if info := x.safeBuild(d, kind); info != nil {
			out = append(out, info)
		}
	}
	return out
}

// members returns the symbols bound directly in scope. Members of a
// container that is itself filtered out are lifted to its level.
func (x *extractor) members(scope *Node) []*types.SymbolInfo {
	out := []*types.SymbolInfo{}
	for _, d := range x.f.DeclsIn(scope) {
		if d.Decl.Role == sourcemodel.RoleParameter {
			continue
		}
		kind, ok := x.a.Kind(x.m, d)
		if !ok {
			continue
		}
		var children []*types.SymbolInfo
		if kind.IsContainer() {
			children = []*types.SymbolInfo{}
			if d.Decl.Role == sourcemodel.RoleType {
				children = x.members(d)
			}
		}
		if !x.accepts(d, kind) {
			out = append(out, children...)
			continue
		}
		info := x.safeBuild(d, kind)
		if info == nil {
			continue
		}
		info.Children = children
		out = append(out, info)
	}
	return out
}

func (x *extractor) accepts(d *Node, kind types.SymbolKind) bool {
	if !x.opts.Allows(kind) {
		return false
	}
	if !x.opts.IncludePrivate && x.a.Visibility(d) == types.VisibilityPrivate {
		return false
	}
	if !x.opts.IncludeSynthetic && x.a.IsSynthetic(d) {
		return false
	}
	return true
}

// safeBuild builds one symbol; a declaration that cannot be analyzed is
// skipped.
func (x *extractor) safeBuild(d *Node, kind types.SymbolKind) (info *types.SymbolInfo) {
	defer func() {
		if r := recover(); r != nil {
			debug.LogAnalyzer("skipping %s %q in %s: %v", kind, d.Name(), x.f.RelPath, r)
			info = nil
		}
	}()
	return buildSymbol(x.m, x.a, d, kind)
}

func buildSymbol(m sourcemodel.Model, a Adapter, d *Node, kind types.SymbolKind) *types.SymbolInfo {
	info := &types.SymbolInfo{
		Name:          d.Name(),
		QualifiedName: qualifiedName(m, a, d, kind),
		Kind:          kind,
		Category:      kind.Category(),
		Location:      location(m, d),
		Modifiers:     nonNil(a.Modifiers(d)),
		Visibility:    a.Visibility(d),
		Signature:     types.StringPtr(a.Signature(d)),
		Decorators:    a.Decorators(d),
		Implements:    []string{},
		LanguageData:  a.LanguageData(m, d, kind),
		IsSynthetic:   a.IsSynthetic(d),
	}
	if info.Decorators == nil {
		info.Decorators = []types.Decorator{}
	}
	if kind.Category() == types.CategoryType {
		info.Implements = implementedTypes(m, d)
	}
	if t := displayType(m, a, d, kind); t != "" {
		info.TypeInfo = &types.TypeInfo{DisplayName: t}
	}
	deprecated, _ := a.Deprecation(d)
	if doc := documentation(m, d); doc != nil {
		info.Documentation = types.StringPtr(doc.Text)
		deprecated = deprecated || doc.Deprecated
	}
	info.IsDeprecated = deprecated
	if kind == types.SymbolKindMethod {
		info.Overrides = findOverride(m, a, d)
	}
	return info
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func location(m sourcemodel.Model, d *Node) types.Location {
	return types.Location{
		StartOffset: d.Start,
		EndOffset:   d.End,
		LineNumber:  m.LineNumberOf(d.File, d.Start),
	}
}

// qualifiedName joins the package or module, the enclosing types and the
// name. Imports have none.
func qualifiedName(m sourcemodel.Model, a Adapter, d *Node, kind types.SymbolKind) string {
	if kind == types.SymbolKindImport {
		return ""
	}
	var parts []string
	if q := a.Qualifier(m, d.File); q != "" {
		parts = append(parts, q)
	}
	parts = append(parts, ownerChain(d)...)
	parts = append(parts, d.Name())
	return strings.Join(parts, ".")
}

// displayType is the declared type of a variable or the return type of a
// callable.
func displayType(m sourcemodel.Model, a Adapter, d *Node, kind types.SymbolKind) string {
	switch kind.Category() {
	case types.CategoryVariable:
		return m.DeclaredTypeName(d)
	case types.CategoryFunction:
		return a.ReturnType(d)
	}
	return ""
}

// implementedTypes lists the interfaces or bases of a type, leaving out
// the superclass of single-inheritance languages.
func implementedTypes(m sourcemodel.Model, d *Node) []string {
	names := m.SupertypeNames(d)
	skip := 0
	if d.ChildByField("superclass") != nil {
		skip = 1
	}
	if h := d.ChildOfType("class_heritage"); h != nil {
		switch {
		case h.ChildOfType("implements_clause") == nil:
			skip = len(names)
		case h.ChildOfType("extends_clause") != nil:
			skip = 1
		}
	}
	if skip >= len(names) {
		return []string{}
	}
	return append([]string{}, names[skip:]...)
}

// findOverride reports the supertype member a method overrides, when the
// model can resolve it. An explicit override marker against supertypes
// outside the project names the first declared supertype.
func findOverride(m sourcemodel.Model, a Adapter, d *Node) *types.OverrideInfo {
	owner := ownerType(d)
	if owner == nil {
		return nil
	}
	explicit := a.ExplicitOverride(d)
	arity := paramCount(a, d)
	overloads := a.Family() == sourcemodel.FamilyJVM
	for _, super := range m.Supertypes(owner) {
		mem := m.FindMember(super, d.Name())
		if mem == nil || !mem.IsDecl() || mem.Decl.Role != sourcemodel.RoleCallable {
			continue
		}
		if overloads && paramCount(a, mem) != arity {
			continue
		}
		parent := super.Name()
		if o := ownerType(mem); o != nil {
			parent = o.Name()
		}
		return &types.OverrideInfo{ParentClass: parent, MethodName: d.Name(), IsExplicit: explicit}
	}
	if explicit {
		if names := m.SupertypeNames(owner); len(names) > 0 && len(m.Supertypes(owner)) < len(names) {
			return &types.OverrideInfo{ParentClass: names[0], MethodName: d.Name(), IsExplicit: true}
		}
	}
	return nil
}
