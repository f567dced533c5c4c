// Package config loads the per-workspace specflow configuration.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// FileName is the config file inside the .specflow directory.
const FileName = "config.yaml"

// EnvPrefix prefixes environment overrides, e.g. SPECFLOW_LOG_LEVEL.
const EnvPrefix = "SPECFLOW"

// Config represents the full specflow configuration
type Config struct {
	// SpecsDir holds one folder per feature, relative to the workspace root
	SpecsDir string `yaml:"specs_dir" mapstructure:"specs_dir"`

	// TemplatesDir receives the mirrored bundled templates and prompts
	TemplatesDir string `yaml:"templates_dir" mapstructure:"templates_dir"`

	Log   LogConfig   `yaml:"log" mapstructure:"log"`
	Watch WatchConfig `yaml:"watch" mapstructure:"watch"`
}

// LogConfig configures diagnostic logging
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// WatchConfig configures file watching
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce" mapstructure:"debounce"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		SpecsDir:     ".specflow/specs",
		TemplatesDir: ".specflow/templates",
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
		Watch: WatchConfig{
			Debounce: 200 * time.Millisecond,
		},
	}
}

// Path returns the config file location for a workspace root.
func Path(root string) string {
	return filepath.Join(root, ".specflow", FileName)
}

// Load reads the workspace config over the defaults. A missing file is not an
// error, nor is a .specflow that is not a directory; callers report that.
// Environment variables override file values.
func Load(root string) (*Config, error) {
	def := Default()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("specs_dir", def.SpecsDir)
	v.SetDefault("templates_dir", def.TemplatesDir)
	v.SetDefault("log.level", def.Log.Level)
	v.SetDefault("log.format", def.Log.Format)
	v.SetDefault("watch.debounce", def.Watch.Debounce)

	path := Path(root)
	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
	} else if !errors.Is(err, fs.ErrNotExist) && !errors.Is(err, syscall.ENOTDIR) {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that cannot be defaulted.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.SpecsDir) == "" {
		return fmt.Errorf("config: specs_dir must not be empty")
	}
	if strings.TrimSpace(c.TemplatesDir) == "" {
		return fmt.Errorf("config: templates_dir must not be empty")
	}
	if c.Watch.Debounce < 0 {
		return fmt.Errorf("config: watch.debounce must not be negative")
	}
	return nil
}

// Save writes the config as YAML to the workspace config path.
func Save(root string, cfg *Config) error {
	path := Path(root)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(fileConfig(cfg))
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// fileConfig mirrors Config with the debounce as a duration string, which is
// what both humans and viper's decoder expect in YAML.
func fileConfig(cfg *Config) any {
	return struct {
		SpecsDir     string    `yaml:"specs_dir"`
		TemplatesDir string    `yaml:"templates_dir"`
		Log          LogConfig `yaml:"log"`
		Watch        struct {
			Debounce string `yaml:"debounce"`
		} `yaml:"watch"`
	}{
		SpecsDir:     cfg.SpecsDir,
		TemplatesDir: cfg.TemplatesDir,
		Log:          cfg.Log,
		Watch: struct {
			Debounce string `yaml:"debounce"`
		}{Debounce: cfg.Watch.Debounce.String()},
	}
}
