package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGitignoreMatcher_Patterns(t *testing.T) {
	gm := NewGitignoreMatcher()
	gm.AddPattern("# comment")
	gm.AddPattern("")
	gm.AddPattern("*.log")
	gm.AddPattern("/generated")
	gm.AddPattern("cache/")
	gm.AddPattern("!keep.log")
	gm.AddPattern("docs/*.md")

	assert.Equal(t, 5, gm.Len())

	tests := []struct {
		path    string
		isDir   bool
		ignored bool
	}{
		{"app.log", false, true},
		{"deep/nested/app.log", false, true},
		{"keep.log", false, false},
		{"generated", true, true},
		{"generated/Foo.java", false, true},
		{"src/generated/Foo.java", false, false},
		{"cache", true, true},
		{"cache", false, false},
		{"a/cache/x.py", false, true},
		{"docs/readme.md", false, true},
		{"docs/sub/readme.md", false, false},
		{"src/Main.java", false, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.ignored, gm.IsIgnored(tt.path, tt.isDir), tt.path)
	}
}

func TestGitignoreMatcher_NestedFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "pkg", ".gitignore"), "*.tmp\n/local\n")

	gm := NewGitignoreMatcher()
	require.NoError(t, gm.LoadGitignore(dir, "pkg"))
	require.NoError(t, gm.LoadGitignore(dir, "missing"))

	assert.True(t, gm.IsIgnored("pkg/a.tmp", false))
	assert.True(t, gm.IsIgnored("pkg/x/a.tmp", false))
	assert.False(t, gm.IsIgnored("a.tmp", false), "patterns apply below their own directory")
	assert.True(t, gm.IsIgnored("pkg/local/file.py", false))
	assert.False(t, gm.IsIgnored("local/file.py", false))
}
