package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// EnvPath names the environment variable that points at a config file.
const EnvPath = "MINIBROWSER_CONFIG"

// Config holds the complete command-line configuration
type Config struct {
	Log    LogConfig    `toml:"log"`
	Parser ParserConfig `toml:"parser"`
	Output OutputConfig `toml:"output"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// ParserConfig holds parser settings
type ParserConfig struct {
	Strict bool `toml:"strict"`
}

// OutputConfig holds rendering settings
type OutputConfig struct {
	Format string `toml:"format"`
	Color  bool   `toml:"color"`
}

// Output formats understood by the parse command.
const (
	FormatTree = "tree"
	FormatHTML = "html"
	FormatYAML = "yaml"
)

// Default returns the configuration used when no file is found.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	cfg.Output.Color = true
	return cfg
}

// Load reads a TOML file and fills in defaults for anything it leaves unset.
func Load(path string) (*Config, error) {
	path = os.ExpandEnv(path)

	if _, err := os.Stat(path); err != nil {
		return nil, errors.Wrapf(err, "config file %s", path)
	}

	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, errors.Wrapf(err, "parsing config %s", path)
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrapf(err, "config %s", path)
	}
	return cfg, nil
}

// LoadFromEnv loads the file named by MINIBROWSER_CONFIG, or the first file
// found in the default locations. Without any file the defaults are used.
func LoadFromEnv() (*Config, error) {
	if path := os.Getenv(EnvPath); path != "" {
		return Load(path)
	}

	defaultPaths := []string{"./minibrowser.toml"}
	if dir, err := os.UserConfigDir(); err == nil {
		defaultPaths = append(defaultPaths, filepath.Join(dir, "minibrowser", "config.toml"))
	}
	for _, p := range defaultPaths {
		if _, err := os.Stat(p); err == nil {
			return Load(p)
		}
	}
	return Default(), nil
}

func (c *Config) applyDefaults() {
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Output.Format == "" {
		c.Output.Format = FormatTree
	}
}

// Validate checks values that TOML decoding cannot.
func (c *Config) Validate() error {
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return errors.Wrap(err, "log.level")
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return errors.Errorf("log.format: unknown format %q", c.Log.Format)
	}
	switch c.Output.Format {
	case FormatTree, FormatHTML, FormatYAML:
	default:
		return errors.Errorf("output.format: unknown format %q", c.Output.Format)
	}
	return nil
}

// Logger builds a logrus logger from the [log] table.
func (c *Config) Logger() *logrus.Logger {
	l := logrus.New()
	if level, err := logrus.ParseLevel(c.Log.Level); err == nil {
		l.SetLevel(level)
	}
	if c.Log.Format == "json" {
		l.SetFormatter(&logrus.JSONFormatter{})
	}
	return l
}
