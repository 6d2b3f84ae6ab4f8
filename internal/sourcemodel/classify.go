package sourcemodel

import (
	"strings"
)

// IsTestCode reports whether path matches the configured test patterns.
func (p *Project) IsTestCode(path string) bool {
	rel := p.RelPath(path)
	if f := p.byRel[rel]; f != nil {
		return p.classOf(f).test
	}
	return matchesAny(p.cfg.TestPatterns, rel)
}

// IsLibraryCode reports whether path is third-party code: outside the
// project root or matching a library pattern.
func (p *Project) IsLibraryCode(path string) bool {
	rel := p.RelPath(path)
	if f := p.byRel[rel]; f != nil {
		return p.classOf(f).library
	}
	return p.isLibraryRel(rel)
}

func (p *Project) isLibraryRel(rel string) bool {
	if rel == ".." || strings.HasPrefix(rel, "../") || strings.HasPrefix(rel, "/") {
		return true
	}
	return matchesAny(p.cfg.LibraryPatterns, rel)
}
