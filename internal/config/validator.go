package config

import (
	"errors"
	"fmt"
	"runtime"
	"strconv"

	"github.com/bmatcuk/doublestar/v4"

	cnerrors "github.com/standardbeagle/codenav/internal/errors"
)

// Validator validates configuration and sets smart defaults
type Validator struct{}

// NewValidator creates a new configuration validator
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateAndSetDefaults validates configuration and applies smart defaults.
// Returns a *ConfigError naming the first offending field.
func (v *Validator) ValidateAndSetDefaults(cfg *Config) error {
	if cfg.Project.Root == "" {
		return cnerrors.NewConfigError("project.root", "", errors.New("project root cannot be empty"))
	}

	if err := v.validateIndexConfig(&cfg.Index); err != nil {
		return err
	}

	if err := v.validateConfidence(&cfg.Confidence); err != nil {
		return err
	}

	if err := v.validateLimits(&cfg.Limits); err != nil {
		return err
	}

	for _, group := range [][]string{cfg.Include, cfg.Exclude, cfg.TestPatterns, cfg.LibraryPatterns} {
		for _, pattern := range group {
			if !doublestar.ValidatePattern(pattern) {
				return cnerrors.NewConfigError("pattern", pattern, errors.New("invalid glob pattern"))
			}
		}
	}

	v.setSmartDefaults(cfg)
	return nil
}

func (v *Validator) validateIndexConfig(index *Index) error {
	if index.MaxFileSize <= 0 {
		return cnerrors.NewConfigError("index.max_file_size", strconv.FormatInt(index.MaxFileSize, 10),
			errors.New("must be positive"))
	}

	if index.MaxFileSize > 100*1024*1024 {
		return cnerrors.NewConfigError("index.max_file_size", strconv.FormatInt(index.MaxFileSize, 10),
			errors.New("should not exceed 100MB"))
	}

	if index.MaxWorkers < 0 {
		return cnerrors.NewConfigError("index.max_workers", strconv.Itoa(index.MaxWorkers),
			errors.New("cannot be negative"))
	}

	if index.WatchDebounceMs < 0 {
		return cnerrors.NewConfigError("index.watch_debounce_ms", strconv.Itoa(index.WatchDebounceMs),
			errors.New("cannot be negative"))
	}

	return nil
}

func (v *Validator) validateConfidence(c *Confidence) error {
	fields := []struct {
		name  string
		value float64
	}{
		{"exact", c.Exact},
		{"exact_member", c.ExactMember},
		{"library", c.Library},
		{"case_insensitive", c.CaseInsensitive},
		{"fuzzy", c.Fuzzy},
		{"unrelated", c.Unrelated},
		{"fallback_penalty", c.FallbackPenalty},
		{"manual_walk", c.ManualWalk},
		{"enclosing", c.Enclosing},
		{"tier_project", c.TierProject},
		{"tier_libraries", c.TierLibraries},
		{"tier_everything", c.TierEverything},
		{"fuzzy_threshold", c.FuzzyThreshold},
	}
	for _, f := range fields {
		if f.value < 0 || f.value > 1 {
			return cnerrors.NewConfigError("confidence."+f.name, strconv.FormatFloat(f.value, 'f', -1, 64),
				errors.New("must be within [0,1]"))
		}
	}
	if c.StemMinLength < 0 {
		return cnerrors.NewConfigError("confidence.stem_min_length", strconv.Itoa(c.StemMinLength),
			errors.New("cannot be negative"))
	}
	return nil
}

func (v *Validator) validateLimits(l *Limits) error {
	fields := []struct {
		name  string
		value int
	}{
		{"hover_list", l.HoverList},
		{"usage_count", l.UsageCount},
		{"max_results", l.MaxResults},
	}
	for _, f := range fields {
		if f.value <= 0 {
			return cnerrors.NewConfigError("limits."+f.name, strconv.Itoa(f.value), errors.New("must be positive"))
		}
	}
	if l.PositionProbe < 0 || l.FallbackRadius < 0 || l.SurroundingLines < 0 {
		return cnerrors.NewConfigError("limits", fmt.Sprintf("%d/%d/%d", l.PositionProbe, l.FallbackRadius, l.SurroundingLines),
			errors.New("probe, fallback and context radii cannot be negative"))
	}
	return nil
}

// setSmartDefaults applies defaults based on system capabilities
func (v *Validator) setSmartDefaults(cfg *Config) {
	// Leave one core for the OS, minimum of 1
	if cfg.Index.MaxWorkers == 0 {
		cfg.Index.MaxWorkers = max(1, runtime.NumCPU()-1)
	}

	if cfg.Index.WatchDebounceMs == 0 {
		cfg.Index.WatchDebounceMs = DefaultWatchDebounceMs
	}

	if cfg.Languages.Enabled == nil {
		cfg.Languages = DefaultLanguages()
	}
}

// ValidateConfig is a convenience function for quick validation
func ValidateConfig(cfg *Config) error {
	return NewValidator().ValidateAndSetDefaults(cfg)
}
