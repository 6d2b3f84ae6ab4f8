// Project layout detection from build configuration files.
// Reads pyproject.toml, pom.xml/build.gradle presence and tsconfig.json
// to find source roots, test directories and build outputs.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// ProjectLayout is what detection found. Paths are relative to the root.
type ProjectLayout struct {
	SourceRoots    []string
	TestPatterns   []string
	OutputPatterns []string
}

// ProjectLayoutDetector inspects build files in a project root
type ProjectLayoutDetector struct {
	projectRoot string
}

// NewProjectLayoutDetector creates a detector for projectRoot
func NewProjectLayoutDetector(projectRoot string) *ProjectLayoutDetector {
	return &ProjectLayoutDetector{projectRoot: projectRoot}
}

// pyproject is the subset of pyproject.toml we read
type pyproject struct {
	Tool struct {
		Setuptools struct {
			PackageDir map[string]string `toml:"package-dir"`
			Packages   struct {
				Find struct {
					Where []string `toml:"where"`
				} `toml:"find"`
			} `toml:"packages"`
		} `toml:"setuptools"`
		Pytest struct {
			IniOptions struct {
				TestPaths []string `toml:"testpaths"`
			} `toml:"ini_options"`
		} `toml:"pytest"`
		Poetry struct {
			Packages []struct {
				Include string `toml:"include"`
				From    string `toml:"from"`
			} `toml:"packages"`
		} `toml:"poetry"`
	} `toml:"tool"`
}

// Detect returns the detected layout. Missing files contribute nothing;
// when no source roots are found the project root itself is the only one.
func (d *ProjectLayoutDetector) Detect() ProjectLayout {
	var layout ProjectLayout

	d.detectPython(&layout)
	d.detectJVM(&layout)
	d.detectJavaScript(&layout)

	layout.SourceRoots = DeduplicatePatterns(layout.SourceRoots)
	layout.TestPatterns = DeduplicatePatterns(layout.TestPatterns)
	layout.OutputPatterns = DeduplicatePatterns(layout.OutputPatterns)
	if len(layout.SourceRoots) == 0 {
		layout.SourceRoots = []string{"."}
	}
	return layout
}

func (d *ProjectLayoutDetector) detectPython(layout *ProjectLayout) {
	data, err := os.ReadFile(filepath.Join(d.projectRoot, "pyproject.toml"))
	if err != nil {
		return
	}
	var py pyproject
	if err := toml.Unmarshal(data, &py); err != nil {
		return
	}

	for _, dir := range py.Tool.Setuptools.PackageDir {
		if dir != "" {
			layout.SourceRoots = append(layout.SourceRoots, filepath.ToSlash(filepath.Clean(dir)))
		}
	}
	for _, dir := range py.Tool.Setuptools.Packages.Find.Where {
		layout.SourceRoots = append(layout.SourceRoots, filepath.ToSlash(filepath.Clean(dir)))
	}
	for _, pkg := range py.Tool.Poetry.Packages {
		if pkg.From != "" {
			layout.SourceRoots = append(layout.SourceRoots, filepath.ToSlash(filepath.Clean(pkg.From)))
		}
	}
	for _, tp := range py.Tool.Pytest.IniOptions.TestPaths {
		tp = strings.Trim(filepath.ToSlash(filepath.Clean(tp)), "/")
		if tp != "" && tp != "." {
			layout.TestPatterns = append(layout.TestPatterns, tp+"/**")
			// pytest test paths are part of the project even outside package roots
			layout.SourceRoots = append(layout.SourceRoots, tp)
		}
	}
	if len(layout.SourceRoots) > 0 {
		// Top-level modules next to pyproject.toml stay in scope
		layout.SourceRoots = append(layout.SourceRoots, ".")
	}
}

func (d *ProjectLayoutDetector) detectJVM(layout *ProjectLayout) {
	isMaven := fileExists(filepath.Join(d.projectRoot, "pom.xml"))
	isGradle := fileExists(filepath.Join(d.projectRoot, "build.gradle")) ||
		fileExists(filepath.Join(d.projectRoot, "build.gradle.kts"))
	if !isMaven && !isGradle {
		return
	}

	for _, dir := range []string{"src/main/java", "src/main/kotlin", "src/test/java", "src/test/kotlin"} {
		if dirExists(filepath.Join(d.projectRoot, filepath.FromSlash(dir))) {
			layout.SourceRoots = append(layout.SourceRoots, dir)
		}
	}
	if isMaven {
		layout.OutputPatterns = append(layout.OutputPatterns, "target/**")
	}
	if isGradle {
		layout.OutputPatterns = append(layout.OutputPatterns, "build/**", ".gradle/**")
	}
}

func (d *ProjectLayoutDetector) detectJavaScript(layout *ProjectLayout) {
	data, err := os.ReadFile(filepath.Join(d.projectRoot, "tsconfig.json"))
	if err != nil {
		return
	}
	var tsconfig struct {
		CompilerOptions struct {
			OutDir string `json:"outDir"`
		} `json:"compilerOptions"`
	}
	if json.Unmarshal(data, &tsconfig) != nil {
		return
	}
	if tsconfig.CompilerOptions.OutDir == "" {
		return
	}
	if dir := strings.Trim(filepath.ToSlash(filepath.Clean(tsconfig.CompilerOptions.OutDir)), "/"); dir != "" && dir != "." {
		layout.OutputPatterns = append(layout.OutputPatterns, dir+"/**")
	}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
