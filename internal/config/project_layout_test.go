package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestDetect_Empty(t *testing.T) {
	layout := NewProjectLayoutDetector(t.TempDir()).Detect()
	assert.Equal(t, []string{"."}, layout.SourceRoots)
	assert.Empty(t, layout.TestPatterns)
	assert.Empty(t, layout.OutputPatterns)
}

func TestDetect_Pyproject(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "pyproject.toml"), `
[tool.setuptools.packages.find]
where = ["src"]

[tool.pytest.ini_options]
testpaths = ["tests", "integration/"]
`)

	layout := NewProjectLayoutDetector(dir).Detect()
	assert.ElementsMatch(t, []string{"src", "tests", "integration", "."}, layout.SourceRoots)
	assert.ElementsMatch(t, []string{"tests/**", "integration/**"}, layout.TestPatterns)
}

func TestDetect_Poetry(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "pyproject.toml"), `
[tool.poetry]
name = "demo"
packages = [{ include = "demo", from = "lib" }]
`)

	layout := NewProjectLayoutDetector(dir).Detect()
	assert.ElementsMatch(t, []string{"lib", "."}, layout.SourceRoots)
}

func TestDetect_MalformedPyproject(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "pyproject.toml"), "[tool\nbroken")

	layout := NewProjectLayoutDetector(dir).Detect()
	assert.Equal(t, []string{"."}, layout.SourceRoots)
}

func TestDetect_Gradle(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "build.gradle.kts"), "plugins {}")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "src", "main", "kotlin"), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "src", "test", "java"), 0755))

	layout := NewProjectLayoutDetector(dir).Detect()
	assert.Equal(t, []string{"src/main/kotlin", "src/test/java"}, layout.SourceRoots)
	assert.Equal(t, []string{"build/**", ".gradle/**"}, layout.OutputPatterns)
}

func TestDetect_TsconfigOutDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "tsconfig.json"), `{"compilerOptions": {"outDir": "./lib/"}}`)

	layout := NewProjectLayoutDetector(dir).Detect()
	assert.Equal(t, []string{"lib/**"}, layout.OutputPatterns)
	assert.Equal(t, []string{"."}, layout.SourceRoots)
}
