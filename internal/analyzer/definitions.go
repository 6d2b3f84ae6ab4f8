package analyzer

import (
	"bytes"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/standardbeagle/codenav/internal/debug"
	"github.com/standardbeagle/codenav/internal/semantic"
	"github.com/standardbeagle/codenav/internal/sourcemodel"
	"github.com/standardbeagle/codenav/internal/types"
)

// candidate is a declaration found by a search with its confidence.
type candidate struct {
	decl       *Node
	confidence float64
}

// kindOf classifies any declaration a lookup can land on, including
// parameters and locals.
func kindOf(m sourcemodel.Model, a Adapter, d *Node) (types.SymbolKind, bool) {
	if d.Kind == sourcemodel.KindFile {
		return types.CustomKind("module"), true
	}
	if !d.IsDecl() {
		return "", false
	}
	if d.Decl.Role == sourcemodel.RoleParameter {
		return types.SymbolKindVariable, true
	}
	return a.Kind(m, d)
}

// definition converts a declaration into a DefinitionLocation.
func (e *Engine) definition(d *Node, confidence float64) *types.DefinitionLocation {
	a, ok := e.dispatcher.ForFile(d.File)
	if !ok {
		return nil
	}
	kind, ok := kindOf(e.model, a, d)
	if !ok {
		return nil
	}
	f := d.File
	loc := &types.DefinitionLocation{
		Name:          d.Name(),
		Type:          kind,
		Modifiers:     []string{},
		Visibility:    types.VisibilityPublic,
		Language:      string(f.Language.ID),
		FilePath:      f.RelPath,
		StartOffset:   d.Start,
		EndOffset:     d.End,
		LineNumber:    e.model.LineNumberOf(f, d.Start),
		Confidence:    clamp(confidence),
		IsTestCode:    e.model.IsTestCode(f.Path),
		IsLibraryCode: e.model.IsLibraryCode(f.Path),
	}
	if d.Kind == sourcemodel.KindFile {
		loc.Name = moduleName(f)
		loc.QualifiedName = a.Qualifier(e.model, f)
		loc.DisambiguationHint = types.StringPtr("Module " + f.RelPath)
		return loc
	}
	if !sourcemodel.IsLocal(d) && d.Decl.Role != sourcemodel.RoleParameter {
		loc.QualifiedName = qualifiedName(e.model, a, d, kind)
	}
	loc.Signature = types.StringPtr(a.Signature(d))
	loc.Modifiers = nonNil(a.Modifiers(d))
	loc.Visibility = a.Visibility(d)
	if owner := ownerType(d); owner != nil {
		loc.ContainingClass = types.StringPtr(owner.Name())
	}
	loc.DisambiguationHint = disambiguationHint(e.model, a, d, kind)
	loc.AccessibilityWarning = accessibilityWarning(a, d, loc.Visibility)
	loc.IsAbstract = isAbstract(e.model, a, d, kind, loc.Modifiers)
	return loc
}

func moduleName(f *sourcemodel.File) string {
	base := filepath.Base(f.RelPath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func clamp(c float64) float64 {
	switch {
	case c < 0:
		return 0
	case c > 1:
		return 1
	}
	return c
}

// isAbstract reports abstract types and bodiless interface or abstract
// methods.
func isAbstract(m sourcemodel.Model, a Adapter, d *Node, kind types.SymbolKind, mods []string) bool {
	if hasModifier(mods, "abstract") {
		return true
	}
	switch d.Type {
	case "abstract_method_signature", "abstract_class_declaration":
		return true
	}
	if kind != types.SymbolKindMethod {
		return kind == types.SymbolKindInterface
	}
	owner := ownerType(d)
	if owner == nil || bodyOf(d) != nil {
		return false
	}
	ownerKind, ok := a.Kind(m, owner)
	return ok && ownerKind == types.SymbolKindInterface && !hasModifier(mods, "default") && !hasModifier(mods, "static")
}

// definitionsAt implements position lookup: resolve the token at offset,
// else the nearest enclosing declaration, else retry at nearby offsets
// with a confidence penalty.
func (e *Engine) definitionsAt(f *sourcemodel.File, a Adapter, offset int) []*types.DefinitionLocation {
	out := []*types.DefinitionLocation{}
	if offset < 0 || offset >= len(f.Content) {
		return out
	}
	conf := e.cfg.Confidence
	if c := e.lookupAt(f, a, offset, 1.0); c != nil {
		return e.appendDefinitions(out, c)
	}
	for d := 1; d <= e.cfg.Limits.FallbackRadius; d++ {
		for _, o := range []int{offset - d, offset + d} {
			if o < 0 || o >= len(f.Content) {
				continue
			}
			if c := e.lookupAt(f, a, o, conf.FallbackPenalty); c != nil {
				return e.appendDefinitions(out, c)
			}
		}
	}
	return out
}

func (e *Engine) appendDefinitions(out []*types.DefinitionLocation, cands ...*candidate) []*types.DefinitionLocation {
	for _, c := range cands {
		if loc := e.definition(c.decl, c.confidence); loc != nil {
			out = append(out, loc)
		}
	}
	return out
}

// lookupAt resolves a single offset. factor scales the confidence.
func (e *Engine) lookupAt(f *sourcemodel.File, a Adapter, offset int, factor float64) *candidate {
	conf := e.cfg.Confidence
	n := tokenAt(f, offset, e.cfg.Limits.PositionProbe)
	if n == nil {
		return nil
	}
	if target, c := e.resolveToken(n); target != nil {
		return &candidate{decl: target, confidence: c * factor}
	}
	if d := nearestDecl(e.model, a, n); d != nil {
		return &candidate{decl: d, confidence: conf.Enclosing * factor}
	}
	return nil
}

// tokenAt returns the node at offset, probing outward over whitespace.
func tokenAt(f *sourcemodel.File, offset, radius int) *Node {
	if !f.IsBlank(offset) {
		return f.ElementAt(offset)
	}
	for d := 1; d <= radius; d++ {
		for _, o := range []int{offset - d, offset + d} {
			if !f.IsBlank(o) {
				return f.ElementAt(o)
			}
		}
	}
	return nil
}

// resolveToken resolves n or its immediate parent. Imports are followed
// to the declaration they bind; an import that leads outside the project
// is returned itself with library confidence.
func (e *Engine) resolveToken(n *Node) (*Node, float64) {
	conf := e.cfg.Confidence
	target := e.model.ResolveReference(n)
	if target == nil && n.Parent != nil && n.Kind != sourcemodel.KindIdentifier {
		target = e.model.ResolveReference(n.Parent)
	}
	if target == nil {
		return nil, 0
	}
	if target.IsDecl() && target.Decl.Role == sourcemodel.RoleImport {
		if real := e.model.FollowImport(target); real != nil {
			return real, conf.Exact
		}
		return target, conf.Library
	}
	return target, conf.Exact
}

// nearestDecl walks up from n to the closest named, classifiable
// declaration that is not a parameter or local.
func nearestDecl(m sourcemodel.Model, a Adapter, n *Node) *Node {
	for cur := n; cur != nil; cur = cur.Parent {
		if !cur.IsDecl() || cur.Decl.Role == sourcemodel.RoleParameter || sourcemodel.IsLocal(cur) {
			continue
		}
		if _, ok := a.Kind(m, cur); ok {
			return cur
		}
	}
	return nil
}

// definitionsByName implements name search.
func (e *Engine) definitionsByName(name string) []*types.DefinitionLocation {
	return e.appendDefinitions([]*types.DefinitionLocation{}, e.candidatesByName(name)...)
}

// candidatesByName ranks the declarations matching name, best first.
func (e *Engine) candidatesByName(name string) []*candidate {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	var cands []*candidate
	query := name
	owner, member, qualified := splitQualified(name)
	if qualified {
		cands = e.qualifiedCandidates(owner, member)
		query = member
	}
	if len(cands) == 0 {
		cands = e.scopedCandidates(query)
		if len(cands) == 0 {
			cands = e.walkCandidates(query)
		}
		if qualified {
			// the owner did not match; these are guesses by member name
			for _, c := range cands {
				c.confidence *= e.cfg.Confidence.FallbackPenalty
			}
		}
	}
	sort.SliceStable(cands, func(i, j int) bool { return cands[i].confidence > cands[j].confidence })
	if limit := e.cfg.Limits.MaxResults; limit > 0 && len(cands) > limit {
		cands = cands[:limit]
	}
	return cands
}

// splitQualified splits "Outer.member" (also "a.b.Outer.member" and
// "Outer::member") at the last separator.
func splitQualified(name string) (owner, member string, ok bool) {
	name = strings.ReplaceAll(name, "::", ".")
	i := strings.LastIndexByte(name, '.')
	if i <= 0 || i == len(name)-1 {
		return "", "", false
	}
	return name[:i], name[i+1:], true
}

// qualifiedCandidates looks member up inside every type named by the last
// segment of owner.
func (e *Engine) qualifiedCandidates(owner, member string) []*candidate {
	typeName := lastSegment(owner)
	var out []*candidate
	seen := make(map[*Node]bool)
	everything := sourcemodel.Scope{Tier: sourcemodel.TierEverything}
	for _, t := range e.model.FindDeclarations(typeName, everything) {
		if t.Decl.Role != sourcemodel.RoleType {
			continue
		}
		if strings.Contains(owner, ".") {
			a, ok := e.dispatcher.ForFile(t.File)
			if !ok {
				continue
			}
			kind, _ := a.Kind(e.model, t)
			if q := qualifiedName(e.model, a, t, kind); q != owner && !strings.HasSuffix(q, "."+owner) {
				continue
			}
		}
		if mem := e.model.FindMember(t, member); mem != nil && mem.IsDecl() && !seen[mem] {
			seen[mem] = true
			out = append(out, &candidate{decl: mem, confidence: e.cfg.Confidence.Exact})
		}
	}
	return out
}

// tierBase pairs a scope tier with its base confidence.
type tierBase struct {
	tier sourcemodel.Tier
	base float64
}

// scopedCandidates scores every non-local declaration against name. Each
// file contributes at the narrowest tier that contains it.
func (e *Engine) scopedCandidates(name string) []*candidate {
	conf := e.cfg.Confidence
	tiers := []tierBase{
		{sourcemodel.TierProject, conf.TierProject},
		{sourcemodel.TierProjectAndLibraries, conf.TierLibraries},
		{sourcemodel.TierEverything, conf.TierEverything},
	}
	queryWords := wordSet(e.matcher.Words(name))
	var out []*candidate
	visited := make(map[*sourcemodel.File]bool)
	for _, tb := range tiers {
		for _, f := range e.model.Files(sourcemodel.Scope{Tier: tb.tier}) {
			if visited[f] {
				continue
			}
			visited[f] = true
			a, ok := e.dispatcher.ForFile(f)
			if !ok {
				continue
			}
			library := e.model.IsLibraryCode(f.Path)
			for _, d := range f.Decls {
				if d.Decl.Role == sourcemodel.RoleParameter || d.Decl.Role == sourcemodel.RoleImport || sourcemodel.IsLocal(d) {
					continue
				}
				score := e.nameScore(name, queryWords, d.Name(), library)
				if score <= 0 {
					continue
				}
				kind, ok := a.Kind(e.model, d)
				if !ok {
					continue
				}
				if score == conf.Exact && !kindMatchesQuery(name, kind) {
					score = conf.ExactMember
				}
				out = append(out, &candidate{decl: d, confidence: tb.base * score})
			}
		}
	}
	return out
}

// nameScore is the name-match confidence of candidate for query. Zero
// means the candidate is unrelated and dropped.
func (e *Engine) nameScore(query string, queryWords map[string]bool, cand string, library bool) float64 {
	conf := e.cfg.Confidence
	switch e.matcher.Classify(query, cand) {
	case semantic.MatchExact:
		if library {
			return conf.Library
		}
		return conf.Exact
	case semantic.MatchCaseInsensitive:
		return conf.CaseInsensitive
	case semantic.MatchFuzzy:
		return conf.Fuzzy
	}
	for _, w := range e.matcher.Words(cand) {
		if queryWords[strings.ToLower(w)] {
			return conf.Unrelated
		}
	}
	return 0
}

func wordSet(words []string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		if len(w) > 1 {
			set[strings.ToLower(w)] = true
		}
	}
	return set
}

// kindMatchesQuery reports whether the kind is what the query's shape
// asks for: capitalized names look for types, others for members.
func kindMatchesQuery(query string, kind types.SymbolKind) bool {
	wantsType := isCapitalized(query) && !isConstantName(query)
	return wantsType == (kind.Category() == types.CategoryType)
}

// walkCandidates scans files on disk that the model has not loaded, for
// exact declarations of name.
func (e *Engine) walkCandidates(name string) []*candidate {
	root := e.model.Root()
	if root == "" {
		return nil
	}
	known := make(map[string]bool)
	for _, f := range e.model.Files(sourcemodel.Scope{Tier: sourcemodel.TierEverything}) {
		known[f.Path] = true
	}
	needle := []byte(name)
	var out []*candidate
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() && path != root {
				return fs.SkipDir
			}
			return nil
		}
		rel := e.model.RelPath(path)
		if d.IsDir() {
			if path != root && (strings.HasPrefix(d.Name(), ".") || excluded(e.cfg.Exclude, rel+"/x")) {
				return fs.SkipDir
			}
			return nil
		}
		if known[path] || !d.Type().IsRegular() || excluded(e.cfg.Exclude, rel) {
			return nil
		}
		_, lang, err := e.dispatcher.For(path)
		if err != nil {
			return nil
		}
		info, err := d.Info()
		if err != nil || (e.cfg.Index.MaxFileSize > 0 && info.Size() > e.cfg.Index.MaxFileSize) {
			return nil
		}
		content, err := os.ReadFile(path)
		if err != nil || !bytes.Contains(content, needle) {
			return nil
		}
		// Parsed outside the model so repeated searches see the same tiers.
		f, err := sourcemodel.ParseFile(lang, path, rel, content)
		if err != nil {
			debug.LogAnalyzer("manual search: %s: %v", rel, err)
			return nil
		}
		for _, decl := range f.Decls {
			if decl.Name() == name && decl.Decl.Role != sourcemodel.RoleParameter &&
				decl.Decl.Role != sourcemodel.RoleImport && !sourcemodel.IsLocal(decl) {
				out = append(out, &candidate{decl: decl, confidence: e.cfg.Confidence.ManualWalk})
			}
		}
		return nil
	})
	if err != nil {
		debug.LogAnalyzer("manual search walk: %v", err)
	}
	return out
}

func excluded(patterns []string, rel string) bool {
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}
