package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"

	"github.com/standardbeagle/codenav/internal/debug"
)

// LoadKDL loads <dir>/.codenav.kdl. A missing file yields (nil, nil).
func LoadKDL(dir string) (*Config, error) {
	kdlPath := filepath.Join(dir, ConfigFileName)
	if _, err := os.Stat(kdlPath); os.IsNotExist(err) {
		return nil, nil
	}
	return LoadKDLFile(kdlPath, dir)
}

// LoadKDLFile parses an explicit config file. Relative project roots are
// resolved against defaultRoot.
func LoadKDLFile(path string, defaultRoot string) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	cfg, err := parseKDL(string(content), defaultRoot)
	if err != nil {
		return nil, err
	}

	if !filepath.IsAbs(cfg.Project.Root) {
		cfg.Project.Root = filepath.Clean(filepath.Join(defaultRoot, cfg.Project.Root))
	}
	if cfg.Project.Name == "" {
		cfg.Project.Name = filepath.Base(cfg.Project.Root)
	}
	return cfg, nil
}

// parseKDL reads a config document on top of Default(defaultRoot).
//
//	project { root "."; name "demo"; source_roots "src/main/java" "src" }
//	index { max_file_size "5MB"; respect_gitignore true; watch_mode false }
//	languages { python false }
//	confidence { fallback_penalty 0.8 }
//	limits { hover_list 10; usage_count 100 }
//	test_patterns "**/it/**"
//	library_patterns "**/third_party/**"
//	include "**/*.java"
//	exclude "**/generated/**"
func parseKDL(content string, defaultRoot string) (*Config, error) {
	cfg := Default(defaultRoot)
	cfg.Project.Root = "."

	doc, err := kdl.Parse(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse KDL config: %w", err)
	}

	for _, n := range doc.Nodes {
		switch nodeName(n) {
		case "project":
			for _, cn := range n.Children {
				assignSimpleString(cn, "root", func(v string) { cfg.Project.Root = v })
				assignSimpleString(cn, "name", func(v string) { cfg.Project.Name = v })
				if nodeName(cn) == "source_roots" {
					cfg.Project.SourceRoots = collectStringArgs(cn)
				}
			}
		case "index":
			parseIndexNode(cfg, n)
		case "languages":
			for _, cn := range n.Children {
				if b, ok := firstBoolArg(cn); ok {
					cfg.Languages.Enabled[nodeName(cn)] = b
				}
			}
		case "confidence":
			parseConfidenceNode(cfg, n)
		case "limits":
			parseLimitsNode(cfg, n)
		case "test_patterns":
			// Replace defaults when given
			cfg.TestPatterns = collectStringArgs(n)
		case "library_patterns":
			cfg.LibraryPatterns = collectStringArgs(n)
		case "include":
			cfg.Include = append(cfg.Include, collectStringArgs(n)...)
		case "exclude":
			// Replace default exclusions if exclude block is present
			cfg.Exclude = collectStringArgs(n)
		default:
			debug.Log("CONFIG", "ignoring unknown config node %q", nodeName(n))
		}
	}

	return cfg, nil
}

func parseIndexNode(cfg *Config, n *document.Node) {
	for _, cn := range n.Children {
		switch nodeName(cn) {
		case "max_file_size":
			if v, ok := firstIntArg(cn); ok {
				cfg.Index.MaxFileSize = int64(v)
			}
			if s, ok := firstStringArg(cn); ok {
				if sz, err := parseSize(s); err == nil {
					cfg.Index.MaxFileSize = sz
				}
			}
		case "respect_gitignore":
			if b, ok := firstBoolArg(cn); ok {
				cfg.Index.RespectGitignore = b
			}
		case "include_libraries":
			if b, ok := firstBoolArg(cn); ok {
				cfg.Index.IncludeLibraries = b
			}
		case "watch_mode":
			if b, ok := firstBoolArg(cn); ok {
				cfg.Index.WatchMode = b
			}
		case "watch_debounce_ms":
			if v, ok := firstIntArg(cn); ok {
				cfg.Index.WatchDebounceMs = v
			}
		case "max_workers":
			if v, ok := firstIntArg(cn); ok {
				cfg.Index.MaxWorkers = v
			}
		}
	}
}

func parseConfidenceNode(cfg *Config, n *document.Node) {
	c := &cfg.Confidence
	targets := map[string]*float64{
		"exact":            &c.Exact,
		"exact_member":     &c.ExactMember,
		"library":          &c.Library,
		"case_insensitive": &c.CaseInsensitive,
		"fuzzy":            &c.Fuzzy,
		"unrelated":        &c.Unrelated,
		"fallback_penalty": &c.FallbackPenalty,
		"manual_walk":      &c.ManualWalk,
		"enclosing":        &c.Enclosing,
		"tier_project":     &c.TierProject,
		"tier_libraries":   &c.TierLibraries,
		"tier_everything":  &c.TierEverything,
		"fuzzy_threshold":  &c.FuzzyThreshold,
	}
	for _, cn := range n.Children {
		name := nodeName(cn)
		if name == "stem_min_length" {
			if v, ok := firstIntArg(cn); ok {
				c.StemMinLength = v
			}
			continue
		}
		if target, ok := targets[name]; ok {
			if v, ok := firstFloatArg(cn); ok {
				*target = v
			}
		}
	}
}

func parseLimitsNode(cfg *Config, n *document.Node) {
	l := &cfg.Limits
	targets := map[string]*int{
		"hover_list":        &l.HoverList,
		"usage_count":       &l.UsageCount,
		"position_probe":    &l.PositionProbe,
		"fallback_radius":   &l.FallbackRadius,
		"surrounding_lines": &l.SurroundingLines,
		"max_results":       &l.MaxResults,
	}
	for _, cn := range n.Children {
		if target, ok := targets[nodeName(cn)]; ok {
			if v, ok := firstIntArg(cn); ok {
				*target = v
			}
		}
	}
}

func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}

func firstIntArg(n *document.Node) (int, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func firstStringArg(n *document.Node) (string, bool) {
	if len(n.Arguments) == 0 {
		return "", false
	}
	if s, ok := n.Arguments[0].Value.(string); ok {
		return s, true
	}
	return "", false
}

func firstBoolArg(n *document.Node) (bool, bool) {
	if len(n.Arguments) == 0 {
		return false, false
	}
	if b, ok := n.Arguments[0].Value.(bool); ok {
		return b, true
	}
	return false, false
}

func firstFloatArg(n *document.Node) (float64, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	default:
		debug.Log("CONFIG", "invalid float value for %q, got %T", nodeName(n), n.Arguments[0].Value)
		return 0, false
	}
}

// collectStringArgs accepts both inline (`exclude "a" "b"`) and block
// (`exclude { "a"; "b" }`) forms.
func collectStringArgs(n *document.Node) []string {
	if n == nil {
		return nil
	}
	out := make([]string, 0, len(n.Arguments))
	for _, a := range n.Arguments {
		if s, ok := a.Value.(string); ok {
			out = append(out, s)
		}
	}

	if len(out) == 0 && len(n.Children) > 0 {
		for _, child := range n.Children {
			if s, ok := firstStringArg(child); ok {
				out = append(out, s)
			} else if child.Name != nil {
				// In block form the node name itself is the string value
				if s, ok := child.Name.Value.(string); ok {
					out = append(out, s)
				}
			}
		}
	}

	return out
}

func assignSimpleString(n *document.Node, target string, set func(string)) {
	if nodeName(n) == target {
		if s, ok := firstStringArg(n); ok {
			set(s)
		}
	}
}

func parseSize(s string) (int64, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	multiplier := int64(1)

	switch {
	case strings.HasSuffix(s, "GB"):
		multiplier = 1024 * 1024 * 1024
		s = strings.TrimSuffix(s, "GB")
	case strings.HasSuffix(s, "MB"):
		multiplier = 1024 * 1024
		s = strings.TrimSuffix(s, "MB")
	case strings.HasSuffix(s, "KB"):
		multiplier = 1024
		s = strings.TrimSuffix(s, "KB")
	case strings.HasSuffix(s, "B"):
		s = strings.TrimSuffix(s, "B")
	}

	value, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, err
	}
	return value * multiplier, nil
}
