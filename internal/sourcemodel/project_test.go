package sourcemodel

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/codenav/internal/config"
	cnerrors "github.com/standardbeagle/codenav/internal/errors"
	"github.com/standardbeagle/codenav/internal/security"
)

func relPaths(files []*File) []string {
	out := make([]string, 0, len(files))
	for _, f := range files {
		out = append(out, f.RelPath)
	}
	return out
}

func TestLoadFiltering(t *testing.T) {
	p := loadProject(t, map[string]string{
		"src/app.py":                  "x = 1\n",
		"src/Main.java":               "class Main {}\n",
		"web/index.ts":                "export const a = 1;\n",
		"build/Gen.java":              "class Gen {}\n",
		"generated/Out.java":          "class Out {}\n",
		".gitignore":                  "generated/\n",
		"node_modules/lib/index.js":   "module.exports = {};\n",
		"README.md":                   "# readme\n",
		"src/Widget.kt":               "class Widget\n",
		"src/test/java/FooTest.java":  "class FooTest {}\n",
		"scripts/bundle.min.js":       "var a=1;\n",
		"src/__pycache__/app.cpython": "junk",
	})
	release := p.ReadLock()
	defer release()

	assert.Equal(t, []string{
		"src/Main.java",
		"src/app.py",
		"src/test/java/FooTest.java",
		"web/index.ts",
	}, relPaths(p.Files(Scope{Tier: TierEverything})))
}

func TestLoadLanguagesAndLibraries(t *testing.T) {
	files := map[string]string{
		"src/app.py":                "x = 1\n",
		"src/Main.java":             "class Main {}\n",
		"node_modules/lib/index.js": "module.exports = {};\n",
		"scripts/tool.py":           "y = 2\n",
	}
	p := loadProject(t, files, func(cfg *config.Config) {
		cfg.Languages.Enabled["python"] = false
		cfg.Index.IncludeLibraries = true
		cfg.Project.SourceRoots = []string{"src"}
	})
	release := p.ReadLock()
	defer release()

	assert.Equal(t, []string{"src/Main.java"}, relPaths(p.Files(ProjectScope())))
	assert.Equal(t, []string{"node_modules/lib/index.js", "src/Main.java"},
		relPaths(p.Files(Scope{Tier: TierProjectAndLibraries})))
	assert.Equal(t, []string{"node_modules/lib/index.js", "src/Main.java"},
		relPaths(p.Files(Scope{Tier: TierEverything})))
	assert.Nil(t, p.Files(Scope{Tier: TierFile}))
}

func TestLoadReportsOversizedFiles(t *testing.T) {
	root := writeTree(t, map[string]string{
		"small.py": "a = 1\n",
		"big.py":   "b = 'this file is far too large for the configured limit'\n",
	})
	cfg := config.Default(root)
	cfg.Index.MaxFileSize = 16
	p := NewProject(cfg, NewLanguageSet())

	err := p.Load(context.Background())
	require.Error(t, err)
	var multi *cnerrors.MultiError
	require.True(t, errors.As(err, &multi))
	require.Len(t, multi.Errors, 1)
	var fileErr *cnerrors.FileError
	assert.True(t, errors.As(multi.Errors[0], &fileErr))
	assert.Equal(t, 1, p.FileCount())
}

func TestLoadScreensBinaryFiles(t *testing.T) {
	blob := strings.Repeat("\x00\x01\x02\x03", 80*1024)
	root := writeTree(t, map[string]string{
		"src/Main.java": "class Main {}\n",
		"src/Blob.java": blob,
	})
	p := NewProject(config.Default(root), NewLanguageSet())

	err := p.Load(context.Background())
	require.Error(t, err)
	var fileErr *cnerrors.FileError
	require.True(t, errors.As(err, &fileErr))
	assert.ErrorIs(t, err, security.ErrBinaryContent)
	assert.Equal(t, 1, p.FileCount())
}

func TestLoadCancelled(t *testing.T) {
	root := writeTree(t, map[string]string{"a.py": "a = 1\n"})
	p := NewProject(config.Default(root), NewLanguageSet())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, p.Load(ctx))
	assert.Equal(t, 0, p.FileCount())
}

func TestClassification(t *testing.T) {
	p := loadProject(t, map[string]string{"src/a.py": "a = 1\n"})

	tests := []struct {
		path    string
		test    bool
		library bool
	}{
		{"src/a.py", false, false},
		{"src/test/java/com/x/FooTest.java", true, false},
		{"tests/test_models.py", true, false},
		{"web/button.spec.ts", true, false},
		{"web/__tests__/button.js", true, false},
		{"node_modules/react/index.js", false, true},
		{".venv/lib/python3.12/site-packages/x.py", false, true},
		{"../outside/lib.py", false, true},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.test, p.IsTestCode(tt.path))
			assert.Equal(t, tt.library, p.IsLibraryCode(tt.path))
		})
	}
	assert.True(t, p.IsLibraryCode(filepath.Join(filepath.Dir(p.Root()), "elsewhere.py")))
}

func TestParseOnDemand(t *testing.T) {
	p := loadProject(t, map[string]string{
		"src/A.java":     "class A {}\n",
		"build/Gen.java": "class Gen {}\n",
		"src/W.kt":       "class W\n",
		"notes.txt":      "hello\n",
	})
	release := p.ReadLock()
	defer release()

	loaded, err := p.Parse("src/A.java")
	require.NoError(t, err)
	assert.Same(t, mustFile(t, p, "src/A.java"), loaded)

	gen, err := p.Parse(filepath.Join(p.Root(), "build", "Gen.java"))
	require.NoError(t, err)
	again, err := p.Parse("build/Gen.java")
	require.NoError(t, err)
	assert.Same(t, gen, again)
	assert.NotContains(t, relPaths(p.Files(ProjectScope())), "build/Gen.java")
	assert.Contains(t, relPaths(p.Files(Scope{Tier: TierEverything})), "build/Gen.java")

	_, err = p.Parse("src/W.kt")
	var unsupported *cnerrors.UnsupportedLanguageError
	require.True(t, errors.As(err, &unsupported))
	assert.Equal(t, cnerrors.ReasonNotInstalled, unsupported.Reason)
	assert.Equal(t, "kotlin", unsupported.Language)

	_, err = p.Parse("notes.txt")
	assert.True(t, cnerrors.IsHostUnavailable(err))

	_, err = p.Parse("src/Missing.java")
	var fileErr *cnerrors.FileError
	assert.True(t, errors.As(err, &fileErr))
}

func TestRefreshAndRemove(t *testing.T) {
	p := loadProject(t, map[string]string{"src/a.py": "a = 1\n"})
	path := filepath.Join(p.Root(), "src", "a.py")
	before := p.FileByRelPath("src/a.py")
	require.NotNil(t, before)

	changed, err := p.Refresh(path)
	require.NoError(t, err)
	assert.False(t, changed, "unchanged content is not re-parsed")

	require.NoError(t, os.WriteFile(path, []byte("a = 1\nb = 2\n"), 0o644))
	changed, err = p.Refresh(path)
	require.NoError(t, err)
	assert.True(t, changed)

	release := p.ReadLock()
	after := p.FileByRelPath("src/a.py")
	release()
	require.NotNil(t, after)
	assert.NotSame(t, before, after)
	assert.Equal(t, 2, len(after.TopLevel()))
	assert.Equal(t, 1, len(before.TopLevel()), "old snapshots stay intact")

	newPath := filepath.Join(p.Root(), "src", "b.py")
	require.NoError(t, os.WriteFile(newPath, []byte("c = 3\n"), 0o644))
	changed, err = p.Refresh(newPath)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, 2, p.FileCount())

	require.NoError(t, os.Remove(path))
	changed, err = p.Refresh(path)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, 1, p.FileCount())
	assert.False(t, p.Remove(path))
}
