package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// ErrUnknownFormat is returned when the configured output format is not supported.
var ErrUnknownFormat = errors.New("unknown output format")

// Formats lists the supported output formats.
var Formats = []string{"text", "json", "markdown", "toon", "sarif"}

// Config holds all configuration options for pysentry.
type Config struct {
	// Analysis settings
	Analysis AnalysisConfig `koanf:"analysis" toml:"analysis"`

	// File exclusion patterns
	Exclude ExcludeConfig `koanf:"exclude" toml:"exclude"`

	// Severity overrides, issue type -> HIGH|MEDIUM|LOW
	Severity map[string]string `koanf:"severity" toml:"severity"`

	// Fixer settings
	Fixer FixerConfig `koanf:"fixer" toml:"fixer"`

	// Cache settings
	Cache CacheConfig `koanf:"cache" toml:"cache"`

	// Output settings
	Output OutputConfig `koanf:"output" toml:"output"`
}

// AnalysisConfig controls how files are analyzed.
type AnalysisConfig struct {
	Workers     int      `koanf:"workers" toml:"workers"`             // 0 = 2x NumCPU
	MaxFileSize int64    `koanf:"max_file_size" toml:"max_file_size"` // bytes, 0 = unlimited
	Extensions  []string `koanf:"extensions" toml:"extensions"`
	Builtins    []string `koanf:"builtins" toml:"builtins"` // extra names treated as always defined
}

// ExcludeConfig defines file exclusion patterns.
type ExcludeConfig struct {
	Patterns  []string `koanf:"patterns" toml:"patterns"`
	Dirs      []string `koanf:"dirs" toml:"dirs"`
	Gitignore bool     `koanf:"gitignore" toml:"gitignore"`
}

// FixerConfig controls the line fixer.
type FixerConfig struct {
	Rules string `koanf:"rules" toml:"rules"` // path to a JSON or YAML rule table; built-in when empty
}

// CacheConfig controls caching of per-file results.
type CacheConfig struct {
	Enabled bool   `koanf:"enabled" toml:"enabled"`
	Dir     string `koanf:"dir" toml:"dir"`
	TTL     int    `koanf:"ttl" toml:"ttl"` // TTL in hours
}

// OutputConfig controls output formatting.
type OutputConfig struct {
	Format string `koanf:"format" toml:"format"` // text, json, markdown, toon, sarif
	Color  bool   `koanf:"color" toml:"color"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Analysis: AnalysisConfig{
			Workers:     0,
			MaxFileSize: 0,
			Extensions:  []string{".py", ".pyw", ".pyi"},
		},
		Exclude: ExcludeConfig{
			Dirs: []string{
				".git",
				"__pycache__",
				".venv",
				"venv",
				".tox",
				".mypy_cache",
				".pytest_cache",
				"node_modules",
				"build",
				"dist",
				".pysentry",
			},
			Gitignore: true,
		},
		Severity: map[string]string{},
		Cache: CacheConfig{
			Enabled: false,
			Dir:     ".pysentry/cache",
			TTL:     24,
		},
		Output: OutputConfig{
			Format: "text",
			Color:  true,
		},
	}
}

// configNames are the file names searched for, in order.
var configNames = []string{
	"pysentry.toml",
	"pysentry.yaml",
	"pysentry.yml",
	"pysentry.json",
	".pysentry.toml",
	".pysentry.yaml",
	".pysentry.yml",
	".pysentry.json",
}

// searchDirs are the directories searched for a config file.
var searchDirs = []string{".", ".pysentry"}

// Load loads configuration from a file on top of the defaults.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	var parser koanf.Parser
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		parser = toml.Parser()
	}

	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return cfg, nil
}

// Find returns the first config file in the standard locations, or "".
func Find() string {
	for _, dir := range searchDirs {
		for _, name := range configNames {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
	}
	return ""
}

// LoadOrDefault tries to load config from standard locations or returns defaults.
func LoadOrDefault() *Config {
	if path := Find(); path != "" {
		if cfg, err := Load(path); err == nil {
			return cfg
		}
	}
	return DefaultConfig()
}

// LoadResult is a loaded configuration and where it came from.
type LoadResult struct {
	Config *Config
	Source string // empty when defaults were used
}

// LoadOption configures LoadConfig.
type LoadOption func(*loadOptions)

type loadOptions struct {
	path string
}

// WithPath loads the given file instead of searching the standard locations.
func WithPath(path string) LoadOption {
	return func(o *loadOptions) {
		o.path = path
	}
}

// LoadConfig loads and validates configuration. Unlike LoadOrDefault it
// reports load errors instead of falling back to defaults.
func LoadConfig(opts ...LoadOption) (*LoadResult, error) {
	var o loadOptions
	for _, opt := range opts {
		opt(&o)
	}

	path := o.path
	if path == "" {
		path = Find()
	}
	if path == "" {
		return &LoadResult{Config: DefaultConfig()}, nil
	}

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &LoadResult{Config: cfg, Source: path}, nil
}

// Validate checks values that decoding alone cannot.
func (c *Config) Validate() error {
	var errs []error
	if c.Analysis.Workers < 0 {
		errs = append(errs, fmt.Errorf("analysis.workers must be >= 0, got %d", c.Analysis.Workers))
	}
	if c.Analysis.MaxFileSize < 0 {
		errs = append(errs, fmt.Errorf("analysis.max_file_size must be >= 0, got %d", c.Analysis.MaxFileSize))
	}
	if !slices.Contains(Formats, c.Output.Format) {
		errs = append(errs, fmt.Errorf("%w %q (want one of %s)", ErrUnknownFormat, c.Output.Format, strings.Join(Formats, ", ")))
	}
	for typ, sev := range c.Severity {
		switch strings.ToUpper(sev) {
		case "HIGH", "MEDIUM", "LOW":
		default:
			errs = append(errs, fmt.Errorf("severity.%s: invalid severity %q", typ, sev))
		}
	}
	return errors.Join(errs...)
}

// SeverityOverrides returns the severity map with upper-cased values.
func (c *Config) SeverityOverrides() map[string]string {
	out := make(map[string]string, len(c.Severity))
	for typ, sev := range c.Severity {
		out[typ] = strings.ToUpper(sev)
	}
	return out
}

// ShouldExclude checks if a path should be excluded from analysis.
func (c *Config) ShouldExclude(path string) bool {
	sep := string(filepath.Separator)
	for _, dir := range c.Exclude.Dirs {
		if strings.Contains(path, sep+dir+sep) || strings.HasPrefix(path, dir+sep) || path == dir {
			return true
		}
	}

	base := filepath.Base(path)
	for _, pattern := range c.Exclude.Patterns {
		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
	}
	return false
}
