package config

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cnerrors "github.com/standardbeagle/codenav/internal/errors"
)

func TestValidateAndSetDefaults(t *testing.T) {
	cfg := Default(t.TempDir())
	cfg.Index.MaxWorkers = 0
	cfg.Index.WatchDebounceMs = 0
	cfg.Languages = Languages{}

	require.NoError(t, NewValidator().ValidateAndSetDefaults(cfg))

	assert.GreaterOrEqual(t, cfg.Index.MaxWorkers, 1)
	assert.Equal(t, DefaultWatchDebounceMs, cfg.Index.WatchDebounceMs)
	assert.NotNil(t, cfg.Languages.Enabled)
}

func TestValidateAndSetDefaults_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"empty root", func(c *Config) { c.Project.Root = "" }, "project.root"},
		{"zero file size", func(c *Config) { c.Index.MaxFileSize = 0 }, "index.max_file_size"},
		{"huge file size", func(c *Config) { c.Index.MaxFileSize = 200 * 1024 * 1024 }, "index.max_file_size"},
		{"negative workers", func(c *Config) { c.Index.MaxWorkers = -1 }, "index.max_workers"},
		{"confidence above one", func(c *Config) { c.Confidence.Library = 1.5 }, "confidence.library"},
		{"negative confidence", func(c *Config) { c.Confidence.FallbackPenalty = -0.1 }, "confidence.fallback_penalty"},
		{"zero hover list", func(c *Config) { c.Limits.HoverList = 0 }, "limits.hover_list"},
		{"negative radius", func(c *Config) { c.Limits.FallbackRadius = -1 }, "limits"},
		{"bad glob", func(c *Config) { c.Exclude = []string{"[unclosed"} }, "pattern"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default(t.TempDir())
			tt.mutate(cfg)

			err := ValidateConfig(cfg)
			require.Error(t, err)

			var cfgErr *cnerrors.ConfigError
			require.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}
}
