package analyzer

import (
	"sort"
	"strings"

	"github.com/standardbeagle/codenav/internal/sourcemodel"
	"github.com/standardbeagle/codenav/internal/types"
)

// referencesTo finds and classifies every usage of target.
func (e *Engine) referencesTo(target *Node, opts types.ReferenceOptions) []*types.ReferenceInfo {
	out := []*types.ReferenceInfo{}
	if !target.IsDecl() {
		return out
	}
	a, ok := e.dispatcher.ForFile(target.File)
	if !ok {
		return out
	}
	kind, ok := kindOf(e.model, a, target)
	if !ok {
		return out
	}
	scope := sourcemodel.Scope{Tier: sourcemodel.TierEverything}

	type site struct {
		file  *sourcemodel.File
		start int
	}
	seen := make(map[site]bool)
	var found []*types.ReferenceInfo
	add := func(n *Node, usage string) {
		key := site{n.File, n.Start}
		if seen[key] {
			return
		}
		seen[key] = true
		if info := e.referenceInfo(n, usage, target); info != nil {
			found = append(found, info)
		}
	}

	for _, ref := range e.model.FindAllReferences(target, scope) {
		ra, ok := e.dispatcher.ForFile(ref.File)
		if !ok {
			continue
		}
		add(ref, ra.ClassifyUsage(e.model, ref, target, kind))
	}
	for _, u := range a.ExtraUsages(e.model, target, kind, scope) {
		add(u.Node, u.UsageType)
	}
	if opts.IncludeComments {
		for _, u := range e.commentMentions(target.Name(), scope) {
			add(u.Node, u.UsageType)
		}
	}
	sort.SliceStable(found, func(i, j int) bool {
		if found[i].FilePath != found[j].FilePath {
			return found[i].FilePath < found[j].FilePath
		}
		return found[i].StartOffset < found[j].StartOffset
	})

	if opts.IncludeDeclaration {
		if decl := e.referenceInfo(target.Decl.Name, types.UsageDeclaration, target); decl != nil {
			out = append(out, decl)
		}
	}
	return append(out, found...)
}

// referenceInfo describes one usage site.
func (e *Engine) referenceInfo(n *Node, usage string, target *Node) *types.ReferenceInfo {
	f := n.File
	a, ok := e.dispatcher.ForFile(f)
	if !ok {
		return nil
	}
	line := e.model.LineNumberOf(f, n.Start)
	info := &types.ReferenceInfo{
		FilePath:           f.RelPath,
		StartOffset:        n.Start,
		EndOffset:          n.End,
		LineNumber:         line,
		UsageType:          usage,
		ElementText:        elementText(e.model, n),
		Preview:            strings.TrimSpace(f.LineText(line)),
		IsInTestCode:       e.model.IsTestCode(f.Path),
		IsInComment:        usage == types.UsageComment || usage == types.UsageDocstring,
		SurroundingContext: types.StringPtr(surroundingLines(f, line, e.cfg.Limits.SurroundingLines)),
	}
	if usage != types.UsageDeclaration && n.Kind == sourcemodel.KindIdentifier {
		info.DataFlowContext = types.StringPtr(a.DataFlow(n))
	}
	container := n.EnclosingDecl(sourcemodel.RoleCallable, sourcemodel.RoleType)
	if usage == types.UsageDeclaration {
		container = target.EnclosingDecl(sourcemodel.RoleCallable, sourcemodel.RoleType)
	}
	if m := enclosingOf(n, target, sourcemodel.RoleCallable); m != nil {
		info.ContainingMethod = types.StringPtr(m.Name())
	}
	if c := enclosingOf(n, target, sourcemodel.RoleType); c != nil {
		info.ContainingClass = types.StringPtr(c.Name())
	}
	if container != nil {
		info.AccessModifier = types.StringPtr(string(a.Visibility(container)))
	}
	info.IsInDeprecatedCode = e.inDeprecatedCode(a, n, target)
	return info
}

// enclosingOf returns the nearest enclosing declaration of role around n,
// not counting target itself.
func enclosingOf(n, target *Node, role sourcemodel.DeclRole) *Node {
	d := n.EnclosingDecl(role)
	if d == target && d != nil {
		d = d.EnclosingDecl(role)
	}
	return d
}

// inDeprecatedCode reports whether any declaration around n, other than
// target, is deprecated.
func (e *Engine) inDeprecatedCode(a Adapter, n, target *Node) bool {
	for d := n.EnclosingDecl(); d != nil; d = d.EnclosingDecl() {
		if d == target || d.Decl.Role == sourcemodel.RoleParameter {
			continue
		}
		if dep, _ := a.Deprecation(d); dep {
			return true
		}
		if doc := documentation(e.model, d); doc != nil && doc.Deprecated {
			return true
		}
	}
	return false
}

// elementText is the first line of the expression a usage occupies.
func elementText(m sourcemodel.Model, n *Node) string {
	if n.Kind == sourcemodel.KindComment || n.Kind == sourcemodel.KindString {
		return n.Text()
	}
	e := memberExpr(m, n)
	if p := e.Parent; p != nil {
		switch p.Type {
		case "call", "call_expression", "method_invocation", "new_expression", "object_creation_expression":
			if e.Field == "function" || e.Field == "constructor" || e.Field == "type" || p.Type == "method_invocation" {
				e = p
			}
		}
	}
	return e.FirstLine()
}

// surroundingLines returns radius lines on each side of line.
func surroundingLines(f *sourcemodel.File, line, radius int) string {
	from := line - radius
	if from < 1 {
		from = 1
	}
	to := line + radius
	if to > f.LineCount() {
		to = f.LineCount()
	}
	lines := make([]string, 0, to-from+1)
	for l := from; l <= to; l++ {
		lines = append(lines, f.LineText(l))
	}
	return strings.Join(lines, "\n")
}

// commentMentions finds whole-word occurrences of name in comments and
// docstrings. Each returned node is a synthetic span over the word.
func (e *Engine) commentMentions(name string, scope sourcemodel.Scope) []Usage {
	if name == "" {
		return nil
	}
	var out []Usage
	for _, f := range e.model.Files(scope) {
		docstrings := make(map[*Node]bool)
		for _, d := range f.Decls {
			for _, c := range e.model.AttachedComments(d) {
				if c.Kind == sourcemodel.KindString {
					docstrings[c] = true
				}
			}
		}
		scan := func(c *Node, usage string) {
			text := c.Text()
			for _, i := range wordIndexes(text, name) {
				span := &Node{
					Kind:   c.Kind,
					Type:   c.Type,
					Start:  c.Start + i,
					End:    c.Start + i + len(name),
					Parent: c.Parent,
					File:   f,
				}
				out = append(out, Usage{Node: span, UsageType: usage})
			}
		}
		for _, c := range f.Comments {
			usage := types.UsageComment
			if strings.HasPrefix(c.Text(), "/**") {
				usage = types.UsageDocstring
			}
			scan(c, usage)
		}
		for c := range docstrings {
			scan(c, types.UsageDocstring)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Node.File != out[j].Node.File {
			return out[i].Node.File.RelPath < out[j].Node.File.RelPath
		}
		return out[i].Node.Start < out[j].Node.Start
	})
	return out
}

// wordIndexes returns the offsets of whole-word occurrences of word in s.
func wordIndexes(s, word string) []int {
	var out []int
	for from := 0; ; {
		i := strings.Index(s[from:], word)
		if i < 0 {
			return out
		}
		start := from + i
		end := start + len(word)
		if (start == 0 || !isIdentByte(s[start-1])) && (end == len(s) || !isIdentByte(s[end])) {
			out = append(out, start)
		}
		from = end
	}
}

func isIdentByte(b byte) bool {
	return b == '_' || b == '$' || (b >= '0' && b <= '9') || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
