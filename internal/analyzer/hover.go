package analyzer

import (
	"strings"

	"github.com/standardbeagle/codenav/internal/sourcemodel"
	"github.com/standardbeagle/codenav/internal/types"
)

// hoverAt resolves the element at offset and describes it. Offsets on
// whitespace fall back to the nearest declaration; the result is nil only
// when the offset is out of range or the file declares nothing.
func (e *Engine) hoverAt(f *sourcemodel.File, a Adapter, offset int) *types.HoverInfo {
	if offset < 0 || offset >= len(f.Content) {
		return nil
	}
	if n := tokenAt(f, offset, e.cfg.Limits.PositionProbe); n != nil {
		if deco := decorationAround(a, n); deco != nil {
			return e.decorationHover(a, deco)
		}
		if target, _ := e.resolveToken(n); target != nil {
			return e.hoverFor(target)
		}
		if d := nearestDecl(e.model, a, n); d != nil {
			return e.hoverFor(d)
		}
	}
	if d := nearestDecl(e.model, a, f.ElementAt(offset)); d != nil {
		return e.hoverFor(d)
	}
	if d := closestDecl(e.model, a, f, offset); d != nil {
		return e.hoverFor(d)
	}
	return nil
}

// decorationAround returns the annotation or decorator n is part of, if
// any, without leaving the declaration it decorates.
func decorationAround(a Adapter, n *Node) *Node {
	for cur := n; cur != nil && !cur.IsDecl(); cur = cur.Parent {
		if a.IsDecoration(cur) {
			return cur
		}
	}
	return nil
}

// closestDecl picks the symbol declaration whose range is nearest to offset.
func closestDecl(m sourcemodel.Model, a Adapter, f *sourcemodel.File, offset int) *Node {
	var best *Node
	bestDist := -1
	for _, d := range f.Decls {
		if d.Decl.Role == sourcemodel.RoleParameter || sourcemodel.IsLocal(d) {
			continue
		}
		if _, ok := a.Kind(m, d); !ok {
			continue
		}
		dist := 0
		switch {
		case offset < d.Start:
			dist = d.Start - offset
		case offset >= d.End:
			dist = offset - d.End + 1
		}
		if best == nil || dist < bestDist {
			best, bestDist = d, dist
		}
	}
	return best
}

// hoverFor describes a declaration.
func (e *Engine) hoverFor(d *Node) *types.HoverInfo {
	a, ok := e.dispatcher.ForFile(d.File)
	if !ok {
		return nil
	}
	if d.Kind == sourcemodel.KindFile {
		h := emptyHover(e.model, d)
		h.ElementName = moduleName(d.File)
		h.ElementType = "module"
		h.PresentableText = types.StringPtr(a.Qualifier(e.model, d.File))
		return h
	}
	kind, ok := kindOf(e.model, a, d)
	if !ok {
		return e.minimalHover(d)
	}

	limits := e.cfg.Limits
	h := emptyHover(e.model, d)
	h.ElementName = d.Name()
	h.ElementType = string(kind)
	h.Modifiers = nonNil(a.Modifiers(d))
	h.Signature = types.StringPtr(a.Signature(d))
	h.PresentableText = types.StringPtr(d.Name())
	if !sourcemodel.IsLocal(d) && d.Decl.Role != sourcemodel.RoleParameter {
		h.PresentableText = types.StringPtr(qualifiedName(e.model, a, d, kind))
	}

	deprecated, message := a.Deprecation(d)
	doc := documentation(e.model, d)
	if doc != nil {
		text := doc.Description
		if text == "" {
			text = doc.Text
		}
		h.JavaDoc = types.StringPtr(text)
		h.Since = types.StringPtr(doc.Since)
		h.SeeAlso = appendUnique(h.SeeAlso, doc.See...)
		if doc.Deprecated {
			deprecated = true
			if message == "" {
				message = doc.DeprecationMessage
			}
		}
	}
	h.IsDeprecated = deprecated
	h.DeprecationMessage = types.StringPtr(message)

	switch kind.Category() {
	case types.CategoryType:
		h.Type = h.PresentableText
		h.SuperTypes = supertypeNames(e.model, d)
		for _, sub := range capNodes(e.model.Inheritors(d, limits.HoverList), limits.HoverList) {
			h.ImplementedBy = append(h.ImplementedBy, sub.Name())
		}
	case types.CategoryFunction:
		h.Type = types.StringPtr(a.ReturnType(d))
		h.ThrowsExceptions = appendUnique(h.ThrowsExceptions, a.Throws(d)...)
		if doc != nil {
			h.ThrowsExceptions = appendUnique(h.ThrowsExceptions, doc.Throws...)
		}
		for _, o := range capNodes(overriders(e.model, d, limits.UsageCount, limits.HoverList), limits.HoverList) {
			h.OverriddenBy = append(h.OverriddenBy, e.displayName(o))
		}
		h.CalledByCount = e.usageCount(d, kind, callUsages)
		c := cyclomaticComplexity(a, d)
		h.Complexity = &c
	case types.CategoryVariable:
		h.Type = types.StringPtr(e.model.DeclaredTypeName(d))
		h.CalledByCount = e.usageCount(d, kind, nil)
	}
	return h
}

func emptyHover(m sourcemodel.Model, n *Node) *types.HoverInfo {
	return &types.HoverInfo{
		Modifiers:        []string{},
		SuperTypes:       []string{},
		ImplementedBy:    []string{},
		OverriddenBy:     []string{},
		ThrowsExceptions: []string{},
		SeeAlso:          []string{},
		FilePath:         n.File.RelPath,
		LineNumber:       m.LineNumberOf(n.File, n.Start),
	}
}

// minimalHover describes a node no adapter classifies.
func (e *Engine) minimalHover(n *Node) *types.HoverInfo {
	h := emptyHover(e.model, n)
	h.ElementName = n.Name()
	if h.ElementName == "" {
		h.ElementName = n.FirstLine()
	}
	h.ElementType = n.Type
	h.PresentableText = types.StringPtr(n.FirstLine())
	return h
}

// decorationHover shows an annotation or decorator as written.
func (e *Engine) decorationHover(a Adapter, n *Node) *types.HoverInfo {
	h := emptyHover(e.model, n)
	raw := collapse(n.Text())
	name := strings.TrimLeft(raw, "@")
	if i := strings.IndexAny(name, "( "); i >= 0 {
		name = name[:i]
	}
	h.ElementName = name
	h.ElementType = "decorator"
	if a.Family() == sourcemodel.FamilyJVM {
		h.ElementType = "annotation"
	}
	h.PresentableText = types.StringPtr(raw)
	return h
}

// supertypeNames prefers resolved supertypes and adds the declared names
// the model could not resolve.
func supertypeNames(m sourcemodel.Model, d *Node) []string {
	names := []string{}
	resolved := make(map[string]bool)
	for _, s := range m.Supertypes(d) {
		names = appendUnique(names, s.Name())
		resolved[s.Name()] = true
	}
	for _, n := range m.SupertypeNames(d) {
		if !resolved[lastSegment(n)] {
			names = appendUnique(names, n)
		}
	}
	return names
}

// callUsages are the usage types that invoke a callable.
var callUsages = map[string]bool{
	types.UsageMethodCall:      true,
	types.UsageFunctionCall:    true,
	types.UsageConstructorCall: true,
	types.UsageSuperCall:       true,
	types.UsageJSXElement:      true,
}

// usageCount counts references to d, capped at the usage limit. A non-nil
// only keeps references whose usage type it holds.
func (e *Engine) usageCount(d *Node, kind types.SymbolKind, only map[string]bool) int {
	limit := e.cfg.Limits.UsageCount
	refs := e.model.FindAllReferences(d, sourcemodel.Scope{Tier: sourcemodel.TierEverything, Limit: limit})
	n := 0
	for _, ref := range refs {
		if only != nil {
			ra, ok := e.dispatcher.ForFile(ref.File)
			if !ok || !only[ra.ClassifyUsage(e.model, ref, d, kind)] {
				continue
			}
		}
		n++
	}
	if limit > 0 && n > limit {
		n = limit
	}
	return n
}

// displayName is the qualified name of d, or its owner chain when no
// adapter claims its file.
func (e *Engine) displayName(d *Node) string {
	if a, ok := e.dispatcher.ForFile(d.File); ok {
		if kind, ok := a.Kind(e.model, d); ok {
			return qualifiedName(e.model, a, d, kind)
		}
	}
	return strings.Join(append(ownerChain(d), d.Name()), ".")
}

func capNodes(nodes []*Node, limit int) []*Node {
	if limit > 0 && len(nodes) > limit {
		return nodes[:limit]
	}
	return nodes
}
