package sourcemodel

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"

	"github.com/standardbeagle/codenav/internal/config"
	"github.com/standardbeagle/codenav/internal/debug"
	cnerrors "github.com/standardbeagle/codenav/internal/errors"
	"github.com/standardbeagle/codenav/internal/security"
)

// fileClass caches the path classification of a loaded file.
type fileClass struct {
	library bool
	test    bool
	inRoots bool
}

// Project is the Model over a directory tree. Files are parsed by Load and
// replaced by Refresh; every other method is read-only and expects the
// caller to hold ReadLock.
type Project struct {
	cfg       *config.Config
	root      string
	langs     *LanguageSet
	validator *security.FileValidator

	mu      sync.RWMutex
	files   map[string]*File // by absolute path
	ignore  *config.GitignoreMatcher
	sorted  []*File
	byRel   map[string]*File
	classes map[*File]fileClass

	// Declaration indexes over all loaded files, rebuilt on every swap.
	topTypes      map[string][]*Node
	declsByName   map[string][]*Node
	membersByName map[string][]*Node
	subtypes      map[string][]*Node

	// Files parsed on demand outside the loaded set. Guarded separately so
	// Parse can run while the read lock is held.
	adhocMu sync.Mutex
	adhoc   map[string]*File
}

var _ Model = (*Project)(nil)

// NewProject creates an empty project rooted at cfg.Project.Root.
func NewProject(cfg *config.Config, langs *LanguageSet) *Project {
	if langs == nil {
		langs = NewLanguageSet()
	}
	root := cfg.Project.Root
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	p := &Project{
		cfg:       cfg,
		root:      root,
		langs:     langs,
		validator: security.NewFileValidator(security.DefaultThresholdKB),
		files:     make(map[string]*File),
		adhoc:     make(map[string]*File),
	}
	p.reindexLocked()
	return p
}

// Config returns the configuration the project was created with.
func (p *Project) Config() *config.Config {
	return p.cfg
}

// Languages returns the language table.
func (p *Project) Languages() *LanguageSet {
	return p.langs
}

// Root returns the absolute project root.
func (p *Project) Root() string {
	return p.root
}

// ReadLock acquires the shared lock.
func (p *Project) ReadLock() func() {
	p.mu.RLock()
	return p.mu.RUnlock
}

// Abs resolves path against the project root.
func (p *Project) Abs(path string) string {
	if !filepath.IsAbs(path) {
		path = filepath.Join(p.root, filepath.FromSlash(path))
	}
	return filepath.Clean(path)
}

// RelPath returns path relative to the root with forward slashes. Paths
// outside the root keep their "../" prefix.
func (p *Project) RelPath(path string) string {
	rel, err := filepath.Rel(p.root, p.Abs(path))
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

// FileCount returns the number of loaded files.
func (p *Project) FileCount() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.files)
}

// Load discovers and parses every eligible file under the root. Files that
// fail to read or parse are skipped and reported in the returned
// *errors.MultiError; the rest of the project stays usable.
func (p *Project) Load(ctx context.Context) error {
	paths, ignore, err := p.discover(ctx)
	if err != nil {
		return cnerrors.NewLoadError("discover", err)
	}

	workers := p.cfg.Index.MaxWorkers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	parsed := make([]*File, len(paths))
	var errMu sync.Mutex
	var errs []error

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			f, err := p.parsePath(path)
			if err != nil {
				debug.LogError("MODEL", err, "skip "+p.RelPath(path))
				errMu.Lock()
				errs = append(errs, err)
				errMu.Unlock()
				return nil
			}
			parsed[i] = f
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return cnerrors.NewLoadError("parse", err)
	}

	p.mu.Lock()
	p.files = make(map[string]*File, len(parsed))
	for _, f := range parsed {
		if f != nil {
			p.files[f.Path] = f
		}
	}
	p.ignore = ignore
	p.reindexLocked()
	count := len(p.files)
	p.mu.Unlock()

	debug.LogModel("loaded %d files from %s (%d skipped)", count, p.root, len(errs))
	return cnerrors.NewMultiError(errs).ErrorOrNil()
}

func (p *Project) discover(ctx context.Context) ([]string, *config.GitignoreMatcher, error) {
	var ignore *config.GitignoreMatcher
	if p.cfg.Index.RespectGitignore {
		ignore = config.NewGitignoreMatcher()
	}

	var paths []string
	err := filepath.WalkDir(p.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			debug.LogModel("walk %s: %v", path, err)
			if d != nil && d.IsDir() && path != p.root {
				return fs.SkipDir
			}
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		rel := p.RelPath(path)
		if d.IsDir() {
			if path != p.root && p.skipDir(rel, ignore) {
				return fs.SkipDir
			}
			if ignore != nil {
				dir := rel
				if dir == "." {
					dir = ""
				}
				if err := ignore.LoadGitignore(p.root, dir); err != nil {
					debug.LogModel("gitignore in %s: %v", rel, err)
				}
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if p.accepts(rel, ignore) {
			paths = append(paths, path)
		}
		return nil
	})
	return paths, ignore, err
}

func (p *Project) skipDir(rel string, ignore *config.GitignoreMatcher) bool {
	if matchesDir(p.cfg.Exclude, rel) {
		return true
	}
	if !p.cfg.Index.IncludeLibraries && matchesDir(p.cfg.LibraryPatterns, rel) {
		return true
	}
	return ignore != nil && ignore.IsIgnored(rel, true)
}

// accepts reports whether a file at rel should be part of the project.
func (p *Project) accepts(rel string, ignore *config.GitignoreMatcher) bool {
	lang := p.langs.ForPath(rel)
	if lang == nil || !p.cfg.Languages.IsEnabled(string(lang.ID)) || !lang.Available() {
		return false
	}
	if matchesAny(p.cfg.Exclude, rel) {
		return false
	}
	if len(p.cfg.Include) > 0 && !matchesAny(p.cfg.Include, rel) {
		return false
	}
	if !p.cfg.Index.IncludeLibraries && p.isLibraryRel(rel) {
		return false
	}
	return ignore == nil || !ignore.IsIgnored(rel, false)
}

func matchesAny(patterns []string, rel string) bool {
	for _, pattern := range patterns {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

// matchesDir reports whether a directory pattern such as "**/build/**"
// covers rel itself.
func matchesDir(patterns []string, rel string) bool {
	for _, pattern := range patterns {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
		if ok, _ := doublestar.Match(pattern, rel+"/x"); ok {
			return true
		}
	}
	return false
}

func (p *Project) parsePath(path string) (*File, error) {
	lang := p.langs.ForPath(path)
	if lang == nil {
		return nil, cnerrors.NewUnsupportedLanguageError(strings.TrimPrefix(filepath.Ext(path), "."),
			cnerrors.ReasonNotInstalled, nil).WithFile(path)
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, cnerrors.NewFileError("stat", path, err)
	}
	if limit := p.cfg.Index.MaxFileSize; limit > 0 && info.Size() > limit {
		return nil, cnerrors.NewFileTooLargeError(path, info.Size(), limit)
	}
	if err := p.validator.ValidateLargeFile(path, info.Size()); err != nil {
		return nil, cnerrors.NewFileError("validate", path, err)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, cnerrors.NewFileError("read", path, err)
	}
	return ParseFile(lang, path, p.RelPath(path), content)
}

// Parse returns the loaded file for path, or parses it on demand. Ad-hoc
// files are cached but never join the project tiers below TierEverything.
func (p *Project) Parse(path string) (*File, error) {
	abs := p.Abs(path)
	if f := p.files[abs]; f != nil {
		return f, nil
	}

	p.adhocMu.Lock()
	defer p.adhocMu.Unlock()
	if f := p.adhoc[abs]; f != nil {
		return f, nil
	}
	lang := p.langs.ForPath(abs)
	if lang == nil {
		return nil, cnerrors.NewUnsupportedLanguageError("", cnerrors.ReasonNotInstalled,
			fmt.Errorf("no language for extension %q", filepath.Ext(abs))).WithFile(abs)
	}
	if err := lang.Load(); err != nil {
		return nil, err
	}
	f, err := p.parsePath(abs)
	if err != nil {
		return nil, err
	}
	p.adhoc[abs] = f
	return f, nil
}

// AddSource parses content as the file at relPath and adds it to the
// project, replacing any previous version.
func (p *Project) AddSource(relPath string, content []byte) (*File, error) {
	abs := p.Abs(relPath)
	lang := p.langs.ForPath(abs)
	if lang == nil {
		return nil, cnerrors.NewUnsupportedLanguageError("", cnerrors.ReasonNotInstalled, nil).WithFile(abs)
	}
	f, err := ParseFile(lang, abs, p.RelPath(abs), content)
	if err != nil {
		return nil, err
	}
	p.mu.Lock()
	p.files[abs] = f
	p.reindexLocked()
	p.mu.Unlock()
	return f, nil
}

// Refresh re-reads path from disk and swaps the parsed file in when its
// content changed. Missing or no longer eligible files are removed. It
// reports whether the project changed.
func (p *Project) Refresh(path string) (bool, error) {
	abs := p.Abs(path)
	rel := p.RelPath(abs)

	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return p.Remove(abs), nil
		}
		return false, cnerrors.NewFileError("stat", abs, err)
	}
	if info.IsDir() {
		return false, nil
	}

	p.mu.RLock()
	ignore := p.ignore
	old := p.files[abs]
	p.mu.RUnlock()

	if strings.HasPrefix(rel, "../") || !p.accepts(rel, ignore) {
		return p.Remove(abs), nil
	}
	if limit := p.cfg.Index.MaxFileSize; limit > 0 && info.Size() > limit {
		p.Remove(abs)
		return old != nil, cnerrors.NewFileTooLargeError(abs, info.Size(), limit)
	}
	if err := p.validator.ValidateLargeFile(abs, info.Size()); err != nil {
		p.Remove(abs)
		return old != nil, cnerrors.NewFileError("validate", abs, err)
	}
	content, err := os.ReadFile(abs)
	if err != nil {
		return false, cnerrors.NewFileError("read", abs, err)
	}
	if old != nil && old.Hash == HashContent(content) {
		return false, nil
	}

	f, err := ParseFile(p.langs.ForPath(abs), abs, rel, content)
	if err != nil {
		return false, err
	}
	p.mu.Lock()
	p.files[abs] = f
	p.reindexLocked()
	p.mu.Unlock()

	p.adhocMu.Lock()
	delete(p.adhoc, abs)
	p.adhocMu.Unlock()

	debug.LogModel("refreshed %s", rel)
	return true, nil
}

// Remove drops a file from the project and reports whether it was loaded.
func (p *Project) Remove(path string) bool {
	abs := p.Abs(path)
	p.mu.Lock()
	_, ok := p.files[abs]
	if ok {
		delete(p.files, abs)
		p.reindexLocked()
	}
	p.mu.Unlock()
	if ok {
		debug.LogModel("removed %s", p.RelPath(abs))
	}
	return ok
}

// reindexLocked rebuilds the derived indexes. Caller holds the write lock.
func (p *Project) reindexLocked() {
	p.sorted = make([]*File, 0, len(p.files))
	for _, f := range p.files {
		p.sorted = append(p.sorted, f)
	}
	sort.Slice(p.sorted, func(i, j int) bool { return p.sorted[i].RelPath < p.sorted[j].RelPath })

	p.byRel = make(map[string]*File, len(p.sorted))
	p.classes = make(map[*File]fileClass, len(p.sorted))
	p.topTypes = make(map[string][]*Node)
	p.declsByName = make(map[string][]*Node)
	p.membersByName = make(map[string][]*Node)
	p.subtypes = make(map[string][]*Node)

	for _, f := range p.sorted {
		p.byRel[f.RelPath] = f
		p.classes[f] = fileClass{
			library: p.isLibraryRel(f.RelPath),
			test:    matchesAny(p.cfg.TestPatterns, f.RelPath),
			inRoots: p.inSourceRoots(f.RelPath),
		}
		for _, d := range f.Decls {
			if IsLocal(d) || d.Decl.Role == RoleImport {
				continue
			}
			name := d.Name()
			p.declsByName[name] = append(p.declsByName[name], d)
			if scope := d.Decl.Scope; scope != nil && scope.IsDecl() && scope.Decl.Role == RoleType {
				p.membersByName[name] = append(p.membersByName[name], d)
			}
			if d.Decl.Role != RoleType {
				continue
			}
			p.topTypes[name] = append(p.topTypes[name], d)
			for _, super := range f.Language.syntax.supertypeNodes(d) {
				key := super.Text()
				p.subtypes[key] = append(p.subtypes[key], d)
			}
		}
	}
}

// IsLocal reports whether decl is bound inside a callable or lambda rather
// than at file or type level.
func IsLocal(decl *Node) bool {
	if !decl.IsDecl() {
		return false
	}
	scope := decl.Decl.Scope
	if scope == nil || scope.Kind == KindFile {
		return false
	}
	return !(scope.IsDecl() && scope.Decl.Role == RoleType)
}

func (p *Project) inSourceRoots(rel string) bool {
	roots := p.cfg.Project.SourceRoots
	if len(roots) == 0 {
		return !strings.HasPrefix(rel, "../")
	}
	for _, root := range roots {
		root = strings.Trim(path.Clean(filepath.ToSlash(root)), "/")
		if root == "." || root == "" || rel == root || strings.HasPrefix(rel, root+"/") {
			return true
		}
	}
	return false
}

func (p *Project) classOf(f *File) fileClass {
	if c, ok := p.classes[f]; ok {
		return c
	}
	return fileClass{
		library: p.isLibraryRel(f.RelPath),
		test:    matchesAny(p.cfg.TestPatterns, f.RelPath),
		inRoots: p.inSourceRoots(f.RelPath),
	}
}

// inTier reports whether f belongs to the scope.
func (p *Project) inTier(f *File, scope Scope) bool {
	c := p.classOf(f)
	switch scope.Tier {
	case TierFile:
		return f == scope.File
	case TierProject:
		return c.inRoots && !c.library
	case TierProjectAndLibraries:
		return c.inRoots || c.library
	default:
		return true
	}
}

// Files returns the files in scope sorted by relative path.
func (p *Project) Files(scope Scope) []*File {
	if scope.Tier == TierFile {
		if scope.File == nil {
			return nil
		}
		return []*File{scope.File}
	}
	out := make([]*File, 0, len(p.sorted))
	for _, f := range p.sorted {
		if p.inTier(f, scope) {
			out = append(out, f)
		}
	}
	if scope.Tier == TierEverything {
		p.adhocMu.Lock()
		for _, f := range p.adhoc {
			if p.files[f.Path] == nil {
				out = append(out, f)
			}
		}
		p.adhocMu.Unlock()
		sort.SliceStable(out, func(i, j int) bool { return out[i].RelPath < out[j].RelPath })
	}
	return out
}

// FileByRelPath returns a loaded file by its relative path.
func (p *Project) FileByRelPath(rel string) *File {
	return p.byRel[rel]
}

// ElementAt returns the deepest node at offset.
func (p *Project) ElementAt(f *File, offset int) *Node {
	if f == nil {
		return nil
	}
	return f.ElementAt(offset)
}

// LineNumberOf converts an offset in f to a 1-based line.
func (p *Project) LineNumberOf(f *File, offset int) int {
	return f.LineNumberOf(offset)
}
