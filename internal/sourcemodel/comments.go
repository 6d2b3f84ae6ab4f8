package sourcemodel

// AttachedComments returns the documentation of a declaration: its
// docstring when the language has them, otherwise the contiguous comments
// directly above the statement that carries it.
func (p *Project) AttachedComments(decl *Node) []*Node {
	if !decl.IsDecl() {
		return nil
	}
	g := decl.File.Language.syntax
	if doc := g.docString(decl); doc != nil {
		return []*Node{doc}
	}

	stmt := decl
	for stmt.Parent != nil && g.wrappers[stmt.Parent.Type] {
		stmt = stmt.Parent
	}

	f := decl.File
	var out []*Node
	next := stmt
	for prev := stmt.PrevSibling(); prev != nil && prev.Kind == KindComment; prev = prev.PrevSibling() {
		if !f.blankBetween(prev.End, next.Start) || !f.startsLine(prev.Start) {
			break
		}
		out = append(out, prev)
		next = prev
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// blankBetween reports whether only whitespace lies in [start, end).
func (f *File) blankBetween(start, end int) bool {
	for i := start; i < end; i++ {
		if !f.IsBlank(i) {
			return false
		}
	}
	return true
}

// startsLine reports whether nothing but indentation precedes offset on
// its line.
func (f *File) startsLine(offset int) bool {
	for i := offset - 1; i >= 0 && f.Content[i] != '\n'; i-- {
		if !f.IsBlank(i) {
			return false
		}
	}
	return true
}
