package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKDL_Defaults(t *testing.T) {
	cfg, err := parseKDL("", t.TempDir())
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, DefaultConfidence(), cfg.Confidence)
	assert.Equal(t, DefaultLimits(), cfg.Limits)
	assert.Equal(t, int64(DefaultMaxFileSize), cfg.Index.MaxFileSize)
	assert.True(t, cfg.Languages.IsEnabled("java"))
	assert.False(t, cfg.Languages.IsEnabled("kotlin"))
}

func TestParseKDL_ProjectAndIndex(t *testing.T) {
	kdlContent := `
project {
    root "."
    name "demo"
    source_roots "src/main/java" "src/test/java"
}
index {
    max_file_size "2MB"
    respect_gitignore false
    include_libraries true
    watch_mode false
    watch_debounce_ms 50
    max_workers 3
}
`
	cfg, err := parseKDL(kdlContent, "/tmp/demo")
	require.NoError(t, err)

	assert.Equal(t, "demo", cfg.Project.Name)
	assert.Equal(t, []string{"src/main/java", "src/test/java"}, cfg.Project.SourceRoots)
	assert.Equal(t, int64(2*1024*1024), cfg.Index.MaxFileSize)
	assert.False(t, cfg.Index.RespectGitignore)
	assert.True(t, cfg.Index.IncludeLibraries)
	assert.False(t, cfg.Index.WatchMode)
	assert.Equal(t, 50, cfg.Index.WatchDebounceMs)
	assert.Equal(t, 3, cfg.Index.MaxWorkers)
}

func TestParseKDL_ConfidenceAndLimits(t *testing.T) {
	kdlContent := `
confidence {
    fallback_penalty 0.75
    library 0.4
    stem_min_length 4
}
limits {
    hover_list 5
    usage_count 20
}
`
	cfg, err := parseKDL(kdlContent, t.TempDir())
	require.NoError(t, err)

	assert.InDelta(t, 0.75, cfg.Confidence.FallbackPenalty, 1e-9)
	assert.InDelta(t, 0.4, cfg.Confidence.Library, 1e-9)
	assert.Equal(t, 4, cfg.Confidence.StemMinLength)
	// Untouched values keep their defaults
	assert.InDelta(t, 1.0, cfg.Confidence.Exact, 1e-9)

	assert.Equal(t, 5, cfg.Limits.HoverList)
	assert.Equal(t, 20, cfg.Limits.UsageCount)
	assert.Equal(t, 3, cfg.Limits.PositionProbe)
}

func TestParseKDL_LanguagesAndPatterns(t *testing.T) {
	kdlContent := `
languages {
    python false
    kotlin true
}
test_patterns "**/it/**"
exclude "**/generated/**"
include "**/*.java"
`
	cfg, err := parseKDL(kdlContent, t.TempDir())
	require.NoError(t, err)

	assert.False(t, cfg.Languages.IsEnabled("python"))
	assert.True(t, cfg.Languages.IsEnabled("kotlin"))
	assert.True(t, cfg.Languages.IsEnabled("java"))
	assert.Equal(t, []string{"**/it/**"}, cfg.TestPatterns)
	assert.Equal(t, []string{"**/generated/**"}, cfg.Exclude)
	assert.Equal(t, []string{"**/*.java"}, cfg.Include)
}

func TestParseKDL_Invalid(t *testing.T) {
	_, err := parseKDL("project {", t.TempDir())
	assert.Error(t, err)
}

func TestLoadKDL_MissingFile(t *testing.T) {
	cfg, err := LoadKDL(t.TempDir())
	require.NoError(t, err)
	assert.Nil(t, cfg)
}

func TestLoadKDLFile_ResolvesRelativeRoot(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte("project {\n    root \"sub\"\n}\n"), 0644))

	cfg, err := LoadKDLFile(path, dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "sub"), cfg.Project.Root)
	assert.Equal(t, "sub", cfg.Project.Name)
}

func TestParseSize(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"10", 10},
		{"10B", 10},
		{"4KB", 4096},
		{"5mb", 5 * 1024 * 1024},
		{"1GB", 1024 * 1024 * 1024},
	}
	for _, tt := range tests {
		got, err := parseSize(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := parseSize("lots")
	assert.Error(t, err)
}
