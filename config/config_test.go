package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "minibrowser.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, FormatTree, cfg.Output.Format)
	assert.True(t, cfg.Output.Color)
	assert.False(t, cfg.Parser.Strict)
	assert.NoError(t, cfg.Validate())
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
[log]
level = "debug"
format = "json"

[parser]
strict = true

[output]
format = "yaml"
color = false
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.True(t, cfg.Parser.Strict)
	assert.Equal(t, FormatYAML, cfg.Output.Format)
	assert.False(t, cfg.Output.Color)

	l := cfg.Logger()
	assert.Equal(t, logrus.DebugLevel, l.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, l.Formatter)
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "[parser]\nstrict = true\n"))
	require.NoError(t, err)
	assert.True(t, cfg.Parser.Strict)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, FormatTree, cfg.Output.Format)
	assert.True(t, cfg.Output.Color)
	assert.IsType(t, &logrus.TextFormatter{}, cfg.Logger().Formatter)
}

func TestLoadExpandsEnv(t *testing.T) {
	path := writeConfig(t, "[output]\nformat = \"html\"\n")
	t.Setenv("MINIBROWSER_TEST_DIR", filepath.Dir(path))

	cfg, err := Load("$MINIBROWSER_TEST_DIR/minibrowser.toml")
	require.NoError(t, err)
	assert.Equal(t, FormatHTML, cfg.Output.Format)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"bad toml", "[log\nlevel = ", "parsing config"},
		{"bad level", "[log]\nlevel = \"loud\"\n", "log.level"},
		{"bad log format", "[log]\nformat = \"xml\"\n", "log.format"},
		{"bad output format", "[output]\nformat = \"pdf\"\n", "output.format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
	assert.True(t, os.IsNotExist(errors.Cause(err)))
}

func TestLoadFromEnv(t *testing.T) {
	path := writeConfig(t, "[output]\ncolor = false\n")
	t.Setenv(EnvPath, path)

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.False(t, cfg.Output.Color)

	t.Setenv(EnvPath, filepath.Join(t.TempDir(), "missing.toml"))
	_, err = LoadFromEnv()
	assert.Error(t, err)
}

func TestLoadFromEnvFallsBackToDefault(t *testing.T) {
	t.Setenv(EnvPath, "")
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}
