package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	stencilerrors "github.com/stencilkit/stencil/internal/errors"
)

func resetViper(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
}

func TestLoadDefaults(t *testing.T) {
	resetViper(t)
	require.NoError(t, Init(""))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "templates", cfg.Templates.Root)
	assert.Equal(t, ".", cfg.Output.Dir)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Empty(t, cfg.Metadata.Schema)
	assert.False(t, cfg.Templates.Watch)
}

func TestLoadFromFile(t *testing.T) {
	resetViper(t)

	path := filepath.Join(t.TempDir(), "stencil.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
templates:
  root: scaffolds
  watch: true
output:
  dir: generated
metadata:
  schema: .stencil/metadata.yml
logging:
  level: debug
  format: json
`), 0o644))

	require.NoError(t, Init(path))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "scaffolds", cfg.Templates.Root)
	assert.True(t, cfg.Templates.Watch)
	assert.Equal(t, "generated", cfg.Output.Dir)
	assert.Equal(t, ".stencil/metadata.yml", cfg.Metadata.Schema)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestInitRejectsMalformedFile(t *testing.T) {
	resetViper(t)

	path := filepath.Join(t.TempDir(), "stencil.yml")
	require.NoError(t, os.WriteFile(path, []byte("templates: ["), 0o644))

	err := Init(path)

	require.Error(t, err)
	assert.True(t, stencilerrors.IsConfigError(err))
}

func TestInitMissingExplicitFile(t *testing.T) {
	resetViper(t)

	err := Init(filepath.Join(t.TempDir(), "absent.yml"))

	assert.Error(t, err)
}

func TestEnvironmentOverride(t *testing.T) {
	resetViper(t)
	t.Setenv("STENCIL_TEMPLATES_ROOT", "env-templates")

	require.NoError(t, Init(""))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "env-templates", cfg.Templates.Root)
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty root", func(c *Config) { c.Templates.Root = "" }},
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }},
		{"bad format", func(c *Config) { c.Logging.Format = "xml" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := &Config{
				Templates: TemplatesConfig{Root: "templates"},
				Logging:   LoggingConfig{Level: "info", Format: "text"},
			}
			tc.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, stencilerrors.IsConfigError(err))
		})
	}
}
