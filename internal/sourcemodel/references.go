package sourcemodel

// FindAllReferences returns the identifiers in scope that resolve to
// target, in file order then document order. The declaration's own name is
// not a reference; an import that binds target is.
func (p *Project) FindAllReferences(target *Node, scope Scope) []*Node {
	if !target.IsDecl() {
		return nil
	}
	name := target.Name()
	var out []*Node
	for _, f := range p.Files(scope) {
		for _, id := range f.Identifiers(name) {
			if id == target.Decl.Name {
				continue
			}
			if d := f.nameOf[id]; d != nil || (id.IsDecl() && id.Decl.Name == id) {
				if d == nil {
					d = id
				}
				if d == target || d.Decl.Role != RoleImport || p.followImport(d, 0) != target {
					continue
				}
			} else if p.resolve(id, 0) != target {
				continue
			}
			out = append(out, id)
			if scope.Limit > 0 && len(out) >= scope.Limit {
				return out
			}
		}
	}
	return out
}
