// Package config loads the settings of the transmogrify command from
// .transmogrify.yaml and TRANSMOGRIFY_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/viper"
)

// FileName is the configuration file looked up in the project root.
const FileName = ".transmogrify.yaml"

// EnvPrefix prefixes the environment variables that override the file.
const EnvPrefix = "TRANSMOGRIFY"

// Log formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Color modes.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Config represents the transmogrify configuration
type Config struct {
	Derive  DeriveConfig  `mapstructure:"derive"`
	Rewrite RewriteConfig `mapstructure:"rewrite"`
	Log     LogConfig     `mapstructure:"log"`
	Color   string        `mapstructure:"color"`
	// DebugUnformatted keeps the unformatted source of a file that fails to
	// format next to its output.
	DebugUnformatted bool `mapstructure:"debug_unformatted"`
}

// DeriveConfig represents derive configuration
type DeriveConfig struct {
	Output string   `mapstructure:"output"`
	Types  []string `mapstructure:"types"`
}

// RewriteConfig represents rewrite configuration
type RewriteConfig struct {
	Tag string `mapstructure:"tag"`
}

// LogConfig represents logging configuration
type LogConfig struct {
	Format    string `mapstructure:"format"`
	Verbosity int    `mapstructure:"verbosity"`
}

// JSON reports whether log lines are written as JSON.
func (l LogConfig) JSON() bool {
	return l.Format == FormatJSON
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Derive:  DeriveConfig{Output: "transmogrify_gen.go"},
		Rewrite: RewriteConfig{Tag: "transmogrify"},
		Log:     LogConfig{Format: FormatText},
		Color:   ColorAuto,
	}
}

// Load reads the configuration from dir/.transmogrify.yaml, if present, with
// environment overrides applied. An empty dir means the current directory.
func Load(dir string) (*Config, error) {
	if dir == "" {
		dir = "."
	}

	v := viper.New()

	def := Default()
	v.SetDefault("derive.output", def.Derive.Output)
	v.SetDefault("derive.types", def.Derive.Types)
	v.SetDefault("rewrite.tag", def.Rewrite.Tag)
	v.SetDefault("log.format", def.Log.Format)
	v.SetDefault("log.verbosity", def.Log.Verbosity)
	v.SetDefault("color", def.Color)
	v.SetDefault("debug_unformatted", def.DebugUnformatted)

	v.SetConfigFile(filepath.Join(dir, FileName))
	v.SetConfigType("yaml")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil && !notFound(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// notFound reports whether err is a missing configuration file. An explicit
// config file surfaces as a path error rather than ConfigFileNotFoundError.
func notFound(err error) bool {
	var nf viper.ConfigFileNotFoundError

	return errors.As(err, &nf) || errors.Is(err, os.ErrNotExist)
}

// FindRoot walks up from dir to the nearest directory holding a
// .transmogrify.yaml or a go.mod. It returns dir itself when neither exists.
func FindRoot(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}

	for cur := abs; ; {
		for _, marker := range []string{FileName, "go.mod"} {
			if _, err := os.Stat(filepath.Join(cur, marker)); err == nil {
				return cur, nil
			}
		}

		parent := filepath.Dir(cur)
		if parent == cur {
			return abs, nil
		}
		cur = parent
	}
}

// validateConfig validates the configuration
func validateConfig(cfg *Config) error {
	if !slices.Contains([]string{FormatText, FormatJSON}, cfg.Log.Format) {
		return fmt.Errorf("log.format must be %q or %q, got: %s", FormatText, FormatJSON, cfg.Log.Format)
	}

	if !slices.Contains([]string{ColorAuto, ColorAlways, ColorNever}, cfg.Color) {
		return fmt.Errorf("color must be one of auto, always, never, got: %s", cfg.Color)
	}

	if cfg.Log.Verbosity < 0 {
		return fmt.Errorf("log.verbosity must not be negative, got: %d", cfg.Log.Verbosity)
	}

	if cfg.Rewrite.Tag == "" || strings.ContainsAny(cfg.Rewrite.Tag, " \t!&|()") {
		return fmt.Errorf("rewrite.tag must be a single build tag, got: %q", cfg.Rewrite.Tag)
	}

	if cfg.Derive.Output == "" || filepath.Base(cfg.Derive.Output) != cfg.Derive.Output ||
		!strings.HasSuffix(cfg.Derive.Output, ".go") {
		return fmt.Errorf("derive.output must be a .go file name, got: %q", cfg.Derive.Output)
	}

	return nil
}
