package analyzer

import (
	"github.com/standardbeagle/codenav/internal/sourcemodel"
)

// scopeFilter returns a membership test for the files of scope.
func scopeFilter(m sourcemodel.Model, scope sourcemodel.Scope) func(*sourcemodel.File) bool {
	files := make(map[*sourcemodel.File]bool)
	for _, f := range m.Files(sourcemodel.Scope{Tier: scope.Tier, File: scope.File}) {
		files[f] = true
	}
	return func(f *sourcemodel.File) bool { return files[f] }
}

// paramCount is the number of declared parameters of a callable.
func paramCount(a Adapter, decl *Node) int {
	list := a.ParameterList(decl)
	if list == nil {
		return 0
	}
	if list.Kind == sourcemodel.KindIdentifier {
		return 1
	}
	return argCount(list)
}

// argCount counts the entries of a parameter or argument list.
func argCount(args *Node) int {
	if args == nil {
		return 0
	}
	n := 0
	for _, c := range args.NamedChildren() {
		if c.Kind != sourcemodel.KindComment {
			n++
		}
	}
	return n
}

// overriders returns the same-named callables declared by types inheriting
// from the owner of target. inheritorLimit bounds the subtype walk and limit
// the result; 0 means unbounded.
func overriders(m sourcemodel.Model, target *Node, inheritorLimit, limit int) []*Node {
	owner := ownerType(target)
	if owner == nil {
		return nil
	}
	name := target.Name()
	var out []*Node
	for _, sub := range m.Inheritors(owner, inheritorLimit) {
		for _, mem := range m.Members(sub) {
			if mem.Name() != name || mem.Decl.Role != sourcemodel.RoleCallable {
				continue
			}
			out = append(out, mem)
			if limit > 0 && len(out) >= limit {
				return out
			}
		}
	}
	return out
}
