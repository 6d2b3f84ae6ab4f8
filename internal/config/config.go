package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// ConfigFileName is the per-project (and per-user, in $HOME) config file
const ConfigFileName = ".codenav.kdl"

const (
	DefaultMaxFileSize     = 5 * 1024 * 1024
	DefaultWatchDebounceMs = 300
)

type Config struct {
	Version         int
	Project         Project
	Index           Index
	Languages       Languages
	Confidence      Confidence
	Limits          Limits
	TestPatterns    []string
	LibraryPatterns []string
	Include         []string
	Exclude         []string
}

type Project struct {
	Root string
	Name string
	// SourceRoots are relative to Root. Empty means "detect".
	SourceRoots []string
}

type Index struct {
	MaxFileSize      int64
	RespectGitignore bool // Process .gitignore files for additional exclusions
	IncludeLibraries bool // Load files matching LibraryPatterns instead of skipping them
	WatchMode        bool // Re-parse changed files while serving
	WatchDebounceMs  int  // Debounce time for file change events
	MaxWorkers       int  // Parallel parse workers, 0 = NumCPU
}

// Languages holds the per-language enable flags. A language that is
// disabled is reported as not installed at dispatch time.
type Languages struct {
	Enabled map[string]bool
}

// IsEnabled reports whether the language may be served. Unknown
// languages default to enabled so the dispatcher decides based on the
// compiled-in grammars.
func (l Languages) IsEnabled(id string) bool {
	if l.Enabled == nil {
		return true
	}
	enabled, ok := l.Enabled[id]
	return !ok || enabled
}

// Confidence holds the scoring constants used by definition search.
// The values are empirical; downstream rankings depend on them exactly.
type Confidence struct {
	Exact           float64 // exact name, expected kind, project code
	ExactMember     float64 // exact name, other kind
	Library         float64 // exact name in library code
	CaseInsensitive float64
	Fuzzy           float64 // substring, stem or Jaro-Winkler match
	Unrelated       float64
	FallbackPenalty float64 // multiplier for offset probing and unmatched qualified names
	ManualWalk      float64 // hits found by walking files outside the model
	Enclosing       float64 // nearest enclosing declaration instead of a resolved reference
	TierProject     float64
	TierLibraries   float64
	TierEverything  float64
	FuzzyThreshold  float64 // minimum Jaro-Winkler similarity
	StemMinLength   int
}

// Limits bounds per-request cost.
type Limits struct {
	HoverList        int // implementors / overriders listed in hover
	UsageCount       int // cap for calledByCount scans
	PositionProbe    int // whitespace probe radius for position lookups
	FallbackRadius   int // offset radius for fallback definition search
	SurroundingLines int // lines of context on each side of a reference
	MaxResults       int // definitions returned by name search
}

// DefaultConfidence returns the stock scoring constants.
func DefaultConfidence() Confidence {
	return Confidence{
		Exact:           1.0,
		ExactMember:     0.9,
		Library:         0.5,
		CaseInsensitive: 0.7,
		Fuzzy:           0.3,
		Unrelated:       0.1,
		FallbackPenalty: 0.8,
		ManualWalk:      0.9,
		Enclosing:       0.9,
		TierProject:     1.0,
		TierLibraries:   0.7,
		TierEverything:  0.5,
		FuzzyThreshold:  0.85,
		StemMinLength:   3,
	}
}

// DefaultLimits returns the stock cost bounds.
func DefaultLimits() Limits {
	return Limits{
		HoverList:        10,
		UsageCount:       100,
		PositionProbe:    3,
		FallbackRadius:   5,
		SurroundingLines: 2,
		MaxResults:       50,
	}
}

// DefaultLanguages enables every language with a compiled-in grammar.
// Kotlin is recognized by extension but has no grammar.
func DefaultLanguages() Languages {
	return Languages{Enabled: map[string]bool{
		"java":       true,
		"kotlin":     false,
		"python":     true,
		"javascript": true,
		"typescript": true,
		"tsx":        true,
	}}
}

// Default returns a configuration rooted at root (cwd when empty).
func Default(root string) *Config {
	if root == "" {
		if cwd, err := os.Getwd(); err == nil {
			root = cwd
		} else {
			root = "."
		}
	}
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}

	return &Config{
		Version: 1,
		Project: Project{
			Root: root,
			Name: filepath.Base(root),
		},
		Index: Index{
			MaxFileSize:      DefaultMaxFileSize,
			RespectGitignore: true,
			IncludeLibraries: false,
			WatchMode:        true,
			WatchDebounceMs:  DefaultWatchDebounceMs,
			MaxWorkers:       runtime.NumCPU(),
		},
		Languages:       DefaultLanguages(),
		Confidence:      DefaultConfidence(),
		Limits:          DefaultLimits(),
		TestPatterns:    defaultTestPatterns(),
		LibraryPatterns: defaultLibraryPatterns(),
		Include:         []string{},
		Exclude:         defaultExclusions(),
	}
}

func Load(path string) (*Config, error) {
	return LoadWithRoot(path, "")
}

// LoadWithRoot loads ~/.codenav.kdl and <root>/.codenav.kdl, merges them
// (project wins, exclusions are unioned) and detects the project layout.
// A non-empty path names an explicit config file that replaces the
// project file.
func LoadWithRoot(path string, rootDir string) (*Config, error) {
	searchDir := "."
	if rootDir != "" {
		searchDir = rootDir
	}
	if abs, err := filepath.Abs(searchDir); err == nil {
		searchDir = abs
	}

	var baseConfig *Config
	if homeDir, err := os.UserHomeDir(); err == nil && homeDir != searchDir {
		if globalCfg, err := LoadKDL(homeDir); err == nil && globalCfg != nil {
			baseConfig = globalCfg
		}
	}

	var projectConfig *Config
	var err error
	if path != "" {
		projectConfig, err = LoadKDLFile(path, searchDir)
	} else {
		projectConfig, err = LoadKDL(searchDir)
	}
	if err != nil {
		return nil, err
	}

	var cfg *Config
	switch {
	case baseConfig != nil && projectConfig != nil:
		cfg = mergeConfigs(baseConfig, projectConfig)
	case projectConfig != nil:
		cfg = projectConfig
	case baseConfig != nil:
		baseConfig.Project.Root = searchDir
		baseConfig.Project.Name = filepath.Base(searchDir)
		cfg = baseConfig
	default:
		cfg = Default(searchDir)
	}

	cfg.ApplyProjectLayout()
	return cfg, nil
}

// mergeConfigs merges a base config with a project config.
// Project config takes precedence, but base exclusions are preserved.
func mergeConfigs(base, project *Config) *Config {
	merged := *project

	if len(base.Exclude) > 0 {
		merged.Exclude = DeduplicatePatterns(append(append([]string{}, base.Exclude...), project.Exclude...))
	}

	if len(project.Include) == 0 && len(base.Include) > 0 {
		merged.Include = base.Include
	}

	// Language flags: base disables survive unless the project re-enables.
	if base.Languages.Enabled != nil {
		langs := make(map[string]bool, len(base.Languages.Enabled))
		for k, v := range base.Languages.Enabled {
			langs[k] = v
		}
		for k, v := range project.Languages.Enabled {
			langs[k] = v
		}
		merged.Languages = Languages{Enabled: langs}
	}

	return &merged
}

// ApplyProjectLayout fills in detected source roots, pytest test paths
// and build output exclusions.
func (c *Config) ApplyProjectLayout() {
	if c.Project.Root == "" {
		return
	}

	layout := NewProjectLayoutDetector(c.Project.Root).Detect()
	if len(c.Project.SourceRoots) == 0 {
		c.Project.SourceRoots = layout.SourceRoots
	}
	if len(layout.TestPatterns) > 0 {
		c.TestPatterns = DeduplicatePatterns(append(c.TestPatterns, layout.TestPatterns...))
	}
	if len(layout.OutputPatterns) > 0 {
		c.Exclude = DeduplicatePatterns(append(c.Exclude, layout.OutputPatterns...))
	}
}

func defaultTestPatterns() []string {
	return []string{
		"**/test/**",
		"**/tests/**",
		"**/__tests__/**",
		"**/src/test/**",
		"**/test_*.py",
		"**/*_test.py",
		"**/conftest.py",
		"**/*.test.{js,jsx,ts,tsx,mjs,cjs}",
		"**/*.spec.{js,jsx,ts,tsx,mjs,cjs}",
		"**/*Test.java",
		"**/*Tests.java",
		"**/*TestCase.java",
		"**/*IT.java",
	}
}

func defaultLibraryPatterns() []string {
	return []string{
		"**/node_modules/**",
		"**/bower_components/**",
		"**/jspm_packages/**",
		"**/site-packages/**",
		"**/dist-packages/**",
		"**/.venv/**",
		"**/venv/**",
		"**/vendor/**",
		"**/lib/python*/**",
	}
}

func defaultExclusions() []string {
	return []string{
		"**/.git/**",
		"**/.idea/**",
		"**/.vscode/**",
		"**/__pycache__/**",
		"**/*.pyc",
		"**/.mypy_cache/**",
		"**/.pytest_cache/**",
		"**/.tox/**",
		"**/.nox/**",
		"**/dist/**",
		"**/build/**",
		"**/out/**",
		"**/target/**",
		"**/coverage/**",
		"**/.next/**",
		"**/.nuxt/**",
		"**/*.min.js",
		"**/*.bundle.js",
		"**/*.chunk.js",
	}
}

// DeduplicatePatterns removes duplicate patterns, keeping first occurrences
func DeduplicatePatterns(patterns []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(patterns))

	for _, pattern := range patterns {
		if !seen[pattern] {
			seen[pattern] = true
			result = append(result, pattern)
		}
	}

	return result
}
