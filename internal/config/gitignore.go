package config

import (
	"bufio"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// GitignorePattern is one .gitignore line translated into doublestar globs
type GitignorePattern struct {
	Pattern   string
	Negate    bool
	Directory bool
	// Base is the slash-separated directory (relative to the root) holding
	// the .gitignore the pattern came from.
	Base string

	globs []string
}

// GitignoreMatcher evaluates the patterns of every .gitignore under a root.
// Later patterns override earlier ones, as in git.
type GitignoreMatcher struct {
	patterns []GitignorePattern
}

// NewGitignoreMatcher creates an empty matcher
func NewGitignoreMatcher() *GitignoreMatcher {
	return &GitignoreMatcher{}
}

// LoadGitignore reads <root>/<relDir>/.gitignore. A missing file is not an
// error.
func (gm *GitignoreMatcher) LoadGitignore(root, relDir string) error {
	file, err := os.Open(filepath.Join(root, filepath.FromSlash(relDir), ".gitignore"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer file.Close()

	base := strings.Trim(filepath.ToSlash(relDir), "/")
	if base == "." {
		base = ""
	}

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		gm.addLine(base, scanner.Text())
	}
	return scanner.Err()
}

// AddPattern adds a root-level pattern line
func (gm *GitignoreMatcher) AddPattern(line string) {
	gm.addLine("", line)
}

// Len returns the number of loaded patterns
func (gm *GitignoreMatcher) Len() int {
	return len(gm.patterns)
}

func (gm *GitignoreMatcher) addLine(base, line string) {
	line = strings.TrimRight(line, " \t\r")
	if line == "" || strings.HasPrefix(line, "#") {
		return
	}
	p := GitignorePattern{Base: base}
	if strings.HasPrefix(line, "!") {
		p.Negate = true
		line = line[1:]
	} else if strings.HasPrefix(line, `\`) {
		line = line[1:]
	}
	if strings.HasSuffix(line, "/") {
		p.Directory = true
		line = strings.TrimSuffix(line, "/")
	}
	if line == "" {
		return
	}
	p.Pattern = line

	// A slash anywhere but the end anchors the pattern to its base
	anchored := strings.Contains(line, "/")
	line = strings.TrimPrefix(line, "/")

	prefix := ""
	if base != "" {
		prefix = base + "/"
	}
	var glob string
	if anchored {
		glob = prefix + line
	} else {
		glob = prefix + "**/" + line
	}
	// Matching a directory also ignores everything beneath it
	p.globs = []string{glob, glob + "/**"}
	if !doublestar.ValidatePattern(glob) {
		return
	}
	gm.patterns = append(gm.patterns, p)
}

// IsIgnored reports whether relPath (slash-separated, relative to the
// root) is ignored. isDir says whether relPath itself is a directory.
func (gm *GitignoreMatcher) IsIgnored(relPath string, isDir bool) bool {
	relPath = strings.TrimPrefix(path.Clean(filepath.ToSlash(relPath)), "./")
	ignored := false
	for i := range gm.patterns {
		p := &gm.patterns[i]
		if p.matches(relPath, isDir) {
			ignored = !p.Negate
		}
	}
	return ignored
}

func (p *GitignorePattern) matches(relPath string, isDir bool) bool {
	if ok, _ := doublestar.Match(p.globs[0], relPath); ok {
		// Directory-only patterns match the directory itself, not a file
		// with the same name.
		return !p.Directory || isDir
	}
	ok, _ := doublestar.Match(p.globs[1], relPath)
	return ok
}
