package sourcemodel

import (
	"path"
	"strings"
)

// maxResolveDepth bounds chains of imports, receivers and supertypes.
const maxResolveDepth = 24

var jsModuleExtensions = []string{".ts", ".tsx", ".d.ts", ".js", ".jsx", ".mjs", ".cjs"}

type acceptFunc func(d *Node) bool

func acceptAll(*Node) bool { return true }

func isTypeDecl(d *Node) bool {
	return d != nil && (d.Kind == KindFile || (d.IsDecl() && d.Decl.Role == RoleType))
}

// acceptFor narrows lookups by syntactic position: type positions only see
// types, Java call names only see callables.
func acceptFor(at *Node) acceptFunc {
	switch {
	case at.Type == "type_identifier":
		return func(d *Node) bool {
			return d.Kind == KindFile || d.Decl.Role == RoleType || d.Decl.Role == RoleImport
		}
	case at.Field == "name" && at.Parent != nil && at.Parent.Type == "method_invocation":
		return func(d *Node) bool {
			return d.Decl != nil && (d.Decl.Role == RoleCallable || d.Decl.Role == RoleImport)
		}
	}
	return acceptAll
}

// ResolveReference returns the declaration n refers to. Declaration names
// resolve to their own declaration; `this` resolves to the enclosing type.
func (p *Project) ResolveReference(n *Node) *Node {
	return p.resolve(n, 0)
}

func (p *Project) resolve(n *Node, depth int) *Node {
	if n == nil || n.File == nil || depth > maxResolveDepth {
		return nil
	}
	f := n.File
	g := f.Language.syntax
	if n.IsDecl() && n.Decl.Name == n {
		return n
	}
	if d := f.nameOf[n]; d != nil {
		return d
	}
	switch {
	case g.receiverTypes[n.Type]:
		return enclosingType(n)
	case g.superTypes[n.Type]:
		if supers := p.supertypes(enclosingType(n), depth+1); len(supers) > 0 {
			return supers[0]
		}
		return nil
	case n.Kind != KindIdentifier:
		return nil
	}
	accept := acceptFor(n)
	if obj, ok := g.memberOf(n); ok && obj != nil {
		return p.resolveMember(obj, n.Text(), depth+1, accept)
	}
	return p.resolveName(n, n.Text(), depth+1, accept)
}

// scopeAt returns the innermost scope whose names are visible at n. Names
// in a declaration's header (supertypes, parameter types) see the scope
// outside the declaration.
func scopeAt(n *Node) *Node {
	g := n.File.Language.syntax
	for s := n.Parent; s != nil; s = s.Parent {
		switch {
		case s.Kind == KindFile:
			return s
		case s.IsDecl() && (s.Decl.Role == RoleType || s.Decl.Role == RoleCallable):
			if body := s.ChildByField("body"); body != nil && !body.Encloses(n) {
				continue
			}
			return s
		case g.scopes[s.Type]:
			return s
		}
	}
	return nil
}

func enclosingType(n *Node) *Node {
	if n == nil {
		return nil
	}
	return n.EnclosingDecl(RoleType)
}

// resolveName walks the lexical scopes outward from at, then falls back to
// project-wide type lookup.
func (p *Project) resolveName(at *Node, name string, depth int, accept acceptFunc) *Node {
	if depth > maxResolveDepth {
		return nil
	}
	f := at.File
	g := f.Language.syntax
	first := true
	for s := scopeAt(at); s != nil; s = scopeAt(s) {
		if g.escapes(s, name) == escapeGlobal {
			s = f.Root
		}
		isType := s.IsDecl() && s.Decl.Role == RoleType
		if isType && !g.bareMembers && !first {
			// Python and JS class bodies are not visible from methods.
			continue
		}
		first = false
		if d := lookupVisible(g, s, name, at, accept); d != nil {
			return p.through(d, depth+1)
		}
		if isType && g.bareMembers {
			for _, super := range p.supertypes(s, depth+1) {
				if m := p.findMember(super, name, depth+1, accept); m != nil {
					return m
				}
			}
		}
	}
	return p.resolveGlobal(f, name, accept)
}

func lookupVisible(g *grammar, scope *Node, name string, at *Node, accept acceptFunc) *Node {
	local := g.declareBeforeUse && !isTypeDecl(scope)
	var found *Node
	for _, d := range scope.File.scoped[scope][name] {
		if !accept(d) {
			continue
		}
		if !local {
			return d
		}
		if d.Start <= at.Start {
			found = d
		}
	}
	return found
}

// through follows an import to its target, keeping the import when the
// target is outside the project.
func (p *Project) through(d *Node, depth int) *Node {
	if d.IsDecl() && d.Decl.Role == RoleImport {
		if t := p.followImport(d, depth+1); t != nil {
			return t
		}
	}
	return d
}

// resolveGlobal finds a top-level type by name: same Java package first,
// then a unique match in the language family.
func (p *Project) resolveGlobal(from *File, name string, accept acceptFunc) *Node {
	var unique, uniqueProject []*Node
	for _, c := range p.topTypes[name] {
		if c.File.Language.Family != from.Language.Family || c.Decl.Scope.Kind != KindFile || !accept(c) {
			continue
		}
		if from.Language.Family == FamilyJVM && c.File.Package == from.Package {
			return c
		}
		unique = append(unique, c)
		if !p.classOf(c.File).library {
			uniqueProject = append(uniqueProject, c)
		}
	}
	switch {
	case len(unique) == 1:
		return unique[0]
	case len(uniqueProject) == 1:
		return uniqueProject[0]
	}
	return nil
}

func (p *Project) resolveMember(obj *Node, name string, depth int, accept acceptFunc) *Node {
	switch {
	case p.IsReceiver(obj):
		if m := p.findMember(enclosingType(obj), name, depth+1, accept); m != nil {
			return m
		}
		return nil
	case p.IsSuper(obj):
		for _, super := range p.supertypes(enclosingType(obj), depth+1) {
			if m := p.findMember(super, name, depth+1, accept); m != nil {
				return m
			}
		}
		return nil
	}
	if owner := p.typeOf(obj, depth+1); owner != nil {
		return p.findMember(owner, name, depth+1, accept)
	}
	if m := p.uniqueMember(obj.File, name, accept); m != nil {
		return m
	}
	return p.resolveGlobal(obj.File, name, accept)
}

// uniqueMember returns the only member with the given name in the
// language family, or nil when there are none or several.
func (p *Project) uniqueMember(from *File, name string, accept acceptFunc) *Node {
	var found *Node
	for _, m := range p.membersByName[name] {
		if m.File.Language.Family != from.Language.Family || !accept(m) {
			continue
		}
		if found != nil {
			return nil
		}
		found = m
	}
	return found
}

// typeOf infers the type declaration (or module) an expression evaluates to.
func (p *Project) typeOf(expr *Node, depth int) *Node {
	if expr == nil || depth > maxResolveDepth {
		return nil
	}
	switch {
	case p.IsReceiver(expr):
		return enclosingType(expr)
	case p.IsSuper(expr):
		if supers := p.supertypes(enclosingType(expr), depth+1); len(supers) > 0 {
			return supers[0]
		}
		return nil
	}

	switch expr.Type {
	case "parenthesized_expression", "await_expression", "non_null_expression":
		if inner := expr.NamedChildren(); len(inner) > 0 {
			return p.typeOf(inner[0], depth+1)
		}
		return nil
	case "object_creation_expression":
		return p.typeOfTypeNode(expr.ChildByField("type"), depth+1)
	case "new_expression":
		return p.typeOfTypeNode(expr.ChildByField("constructor"), depth+1)
	case "method_invocation":
		return p.typeOfDecl(p.resolve(expr.ChildByField("name"), depth+1), depth+1)
	case "call", "call_expression":
		callee := typeNameNode(expr.ChildByField("function"))
		d := p.resolve(callee, depth+1)
		if isTypeDecl(d) {
			// Python instantiation: Foo()
			return d
		}
		if d != nil && d.IsDecl() && d.Decl.Role == RoleCallable {
			return p.declaredType(d, depth+1)
		}
		return nil
	case "field_access":
		return p.typeOfDecl(p.resolve(expr.ChildByField("field"), depth+1), depth+1)
	}
	if name := typeNameNode(expr); name != nil {
		return p.typeOfDecl(p.resolve(name, depth+1), depth+1)
	}
	return nil
}

func (p *Project) typeOfTypeNode(t *Node, depth int) *Node {
	d := p.resolve(typeNameNode(t), depth+1)
	if isTypeDecl(d) {
		return d
	}
	return nil
}

// typeOfDecl returns the type a reference to decl evaluates to: the type
// itself for type and module references, the declared type otherwise.
func (p *Project) typeOfDecl(d *Node, depth int) *Node {
	switch {
	case d == nil || depth > maxResolveDepth:
		return nil
	case isTypeDecl(d):
		return d
	case d.Decl.Role == RoleImport:
		if t := p.followImport(d, depth+1); t != nil {
			return p.typeOfDecl(t, depth+1)
		}
		return nil
	}
	return p.declaredType(d, depth+1)
}

// DeclaredType resolves the declared or inferred type of a variable,
// parameter or callable return.
func (p *Project) DeclaredType(decl *Node) *Node {
	if !decl.IsDecl() || decl.Decl.Role == RoleType || decl.Decl.Role == RoleImport {
		return nil
	}
	return p.declaredType(decl, 0)
}

func (p *Project) declaredType(decl *Node, depth int) *Node {
	if depth > maxResolveDepth {
		return nil
	}
	name := decl.File.Language.syntax.declaredType(decl)
	if name == "" {
		return nil
	}
	d := p.resolveName(decl, name, depth+1, acceptAll)
	switch {
	case d == nil || d == decl:
		return nil
	case isTypeDecl(d):
		return d
	case d.Decl.Role == RoleCallable:
		// x = make_foo() takes the factory's return type
		return p.declaredType(d, depth+1)
	}
	return nil
}

// DeclaredTypeName returns the unresolved type text of a declaration.
func (p *Project) DeclaredTypeName(decl *Node) string {
	if !decl.IsDecl() {
		return ""
	}
	return decl.File.Language.syntax.declaredType(decl)
}

// IsReceiver reports whether n denotes the current instance.
func (p *Project) IsReceiver(n *Node) bool {
	if n == nil || n.File == nil {
		return false
	}
	g := n.File.Language.syntax
	return g.receiverTypes[n.Type] || (n.Kind == KindIdentifier && g.receiverNames[n.Text()])
}

// IsSuper reports whether n denotes the supertype instance.
func (p *Project) IsSuper(n *Node) bool {
	if n == nil || n.File == nil {
		return false
	}
	g := n.File.Language.syntax
	return g.superTypes[n.Type] || g.isSuperCall(n)
}

// MemberReceiver returns the object of the member access whose member name
// is id.
func (p *Project) MemberReceiver(id *Node) (*Node, bool) {
	if id == nil || id.File == nil {
		return nil, false
	}
	return id.File.Language.syntax.memberOf(id)
}

// Supertypes resolves the declared supertypes of a type. Unresolvable
// names are dropped; SupertypeNames keeps them.
func (p *Project) Supertypes(decl *Node) []*Node {
	return p.supertypes(decl, 0)
}

func (p *Project) supertypes(decl *Node, depth int) []*Node {
	if !decl.IsDecl() || decl.Decl.Role != RoleType || depth > maxResolveDepth {
		return nil
	}
	var out []*Node
	for _, n := range decl.File.Language.syntax.supertypeNodes(decl) {
		if d := p.resolve(n, depth+1); d != decl && isTypeDecl(d) {
			out = append(out, d)
		}
	}
	return out
}

// SupertypeNames lists the declared supertype names in source order.
func (p *Project) SupertypeNames(decl *Node) []string {
	if !decl.IsDecl() || decl.Decl.Role != RoleType {
		return nil
	}
	nodes := decl.File.Language.syntax.supertypeNodes(decl)
	names := make([]string, 0, len(nodes))
	for _, n := range nodes {
		names = append(names, n.Text())
	}
	return names
}

// Inheritors returns the types that extend or implement decl, directly or
// transitively, in breadth-first order. limit <= 0 means no limit.
func (p *Project) Inheritors(decl *Node, limit int) []*Node {
	if !decl.IsDecl() || decl.Decl.Role != RoleType {
		return nil
	}
	var out []*Node
	seen := map[*Node]bool{decl: true}
	queue := []*Node{decl}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, sub := range p.subtypes[cur.Name()] {
			if seen[sub] || !containsNode(p.supertypes(sub, 0), cur) {
				continue
			}
			seen[sub] = true
			out = append(out, sub)
			if limit > 0 && len(out) >= limit {
				return out
			}
			queue = append(queue, sub)
		}
	}
	return out
}

func containsNode(nodes []*Node, n *Node) bool {
	for _, c := range nodes {
		if c == n {
			return true
		}
	}
	return false
}

// Members returns the declarations bound directly in a type (or module).
func (p *Project) Members(decl *Node) []*Node {
	if decl == nil || decl.File == nil {
		return nil
	}
	return decl.File.DeclsIn(decl)
}

// FindMember looks name up on a type, then on its supertypes depth-first.
// A module (file root) owner finds its top-level names.
func (p *Project) FindMember(owner *Node, name string) *Node {
	return p.findMember(owner, name, 0, acceptAll)
}

func (p *Project) findMember(owner *Node, name string, depth int, accept acceptFunc) *Node {
	seen := make(map[*Node]bool)
	var walk func(t *Node, depth int) *Node
	walk = func(t *Node, depth int) *Node {
		if t == nil || seen[t] || depth > maxResolveDepth {
			return nil
		}
		seen[t] = true
		for _, d := range t.File.scoped[t][name] {
			if accept(d) {
				return p.through(d, depth+1)
			}
		}
		for _, super := range p.supertypes(t, depth+1) {
			if m := walk(super, depth+1); m != nil {
				return m
			}
		}
		return nil
	}
	return walk(owner, depth)
}

// FindDeclarations returns the non-local declarations named name within
// scope, ordered by file path then position.
func (p *Project) FindDeclarations(name string, scope Scope) []*Node {
	var out []*Node
	add := func(d *Node) bool {
		out = append(out, d)
		return scope.Limit <= 0 || len(out) < scope.Limit
	}
	if scope.Tier == TierFile {
		if scope.File == nil {
			return nil
		}
		for _, d := range scope.File.Decls {
			if d.Name() == name && !IsLocal(d) && d.Decl.Role != RoleImport && !add(d) {
				break
			}
		}
		return out
	}
	for _, d := range p.declsByName[name] {
		if p.inTier(d.File, scope) && !add(d) {
			return out
		}
	}
	if scope.Tier == TierEverything {
		for _, f := range p.Files(scope) {
			if p.files[f.Path] != nil {
				continue
			}
			for _, d := range f.Decls {
				if d.Name() == name && !IsLocal(d) && d.Decl.Role != RoleImport && !add(d) {
					return out
				}
			}
		}
	}
	return out
}

// FollowImport returns the declaration (or module root) an import binds,
// or nil when it points outside the project.
func (p *Project) FollowImport(decl *Node) *Node {
	return p.followImport(decl, 0)
}

func (p *Project) followImport(decl *Node, depth int) *Node {
	if !decl.IsDecl() || decl.Decl.Role != RoleImport || depth > maxResolveDepth {
		return nil
	}
	spec, ok := decl.File.Language.syntax.importOf(decl)
	if !ok {
		return nil
	}
	var target *Node
	switch decl.File.Language.Family {
	case FamilyJVM:
		target = p.followJavaImport(spec, depth)
	case FamilyPython:
		target = p.followPythonImport(decl, spec, depth)
	case FamilyJS:
		target = p.followJSImport(decl, spec, depth)
	}
	if target == decl {
		return nil
	}
	return target
}

func splitLast(qualified string) (string, string) {
	if i := strings.LastIndexByte(qualified, '.'); i >= 0 {
		return qualified[:i], qualified[i+1:]
	}
	return "", qualified
}

func (p *Project) findJavaType(pkg, name string) *Node {
	for _, c := range p.topTypes[name] {
		if c.File.Language.Family == FamilyJVM && c.File.Package == pkg && c.Decl.Scope.Kind == KindFile {
			return c
		}
	}
	return nil
}

func (p *Project) followJavaImport(spec importSpec, depth int) *Node {
	if spec.Static {
		pkg, cls := splitLast(spec.Module)
		return p.findMember(p.findJavaType(pkg, cls), spec.Name, depth+1, acceptAll)
	}
	if t := p.findJavaType(spec.Module, spec.Name); t != nil {
		return t
	}
	// Nested type: import a.b.Outer.Inner
	pkg, outer := splitLast(spec.Module)
	return p.findMember(p.findJavaType(pkg, outer), spec.Name, depth+1, isTypeDecl)
}

func (p *Project) followPythonImport(decl *Node, spec importSpec, depth int) *Node {
	from := decl.File
	mod := p.pythonModule(from, spec.Module, spec.Relative)
	if spec.Name == "" {
		if mod != nil {
			return mod.Root
		}
		return nil
	}
	if mod != nil {
		if m := p.findMember(mod.Root, spec.Name, depth+1, acceptAll); m != nil && m != decl {
			return m
		}
	}
	sub := spec.Name
	if spec.Module != "" {
		sub = spec.Module + "." + spec.Name
	}
	if subMod := p.pythonModule(from, sub, spec.Relative); subMod != nil {
		return subMod.Root
	}
	return nil
}

// pythonModule maps a dotted module name to a loaded file, trying the
// source roots for absolute imports and the importing package for
// relative ones.
func (p *Project) pythonModule(from *File, module string, relative int) *File {
	var bases []string
	if relative > 0 {
		dir := path.Dir(from.RelPath)
		for i := 1; i < relative; i++ {
			dir = path.Dir(dir)
		}
		bases = []string{dir}
	} else {
		for _, root := range p.cfg.Project.SourceRoots {
			bases = append(bases, path.Clean(root))
		}
		bases = append(bases, ".")
	}
	modPath := strings.ReplaceAll(module, ".", "/")
	for _, base := range bases {
		stem := path.Join(base, modPath)
		candidates := []string{path.Join(stem, "__init__.py"), path.Join(stem, "__init__.pyi")}
		if modPath != "" {
			candidates = append([]string{stem + ".py", stem + ".pyi"}, candidates...)
		}
		for _, cand := range candidates {
			if f := p.byRel[cand]; f != nil {
				return f
			}
		}
	}
	return nil
}

func (p *Project) followJSImport(decl *Node, spec importSpec, depth int) *Node {
	if !strings.HasPrefix(spec.Module, ".") {
		// Bare specifiers name packages outside the project.
		return nil
	}
	mod := p.jsModule(path.Join(path.Dir(decl.File.RelPath), spec.Module))
	if mod == nil {
		return nil
	}
	switch spec.Name {
	case "":
		return mod.Root
	case "default":
		return p.jsDefaultExport(mod, depth+1)
	}
	if m := p.findMember(mod.Root, spec.Name, depth+1, acceptAll); m != decl {
		return m
	}
	return nil
}

func (p *Project) jsModule(base string) *File {
	stems := []string{base}
	if ext := path.Ext(base); ext != "" {
		if f := p.byRel[base]; f != nil {
			return f
		}
		// "./util.js" written against util.ts
		stems = append(stems, strings.TrimSuffix(base, ext))
	}
	for _, stem := range stems {
		for _, ext := range jsModuleExtensions {
			if f := p.byRel[stem+ext]; f != nil {
				return f
			}
		}
		for _, ext := range jsModuleExtensions {
			if f := p.byRel[stem+"/index"+ext]; f != nil {
				return f
			}
		}
	}
	return nil
}

func (p *Project) jsDefaultExport(f *File, depth int) *Node {
	for _, stmt := range f.Root.Children {
		if stmt.Type != "export_statement" || !stmt.HasChild("default") {
			continue
		}
		if d := stmt.ChildByField("declaration"); d.IsDecl() {
			return d
		}
		v := stmt.ChildByField("value")
		switch {
		case v.IsDecl():
			return v
		case v != nil && v.Kind == KindIdentifier:
			return p.resolveName(v, v.Text(), depth+1, acceptAll)
		}
		return nil
	}
	return nil
}
