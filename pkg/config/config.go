package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds all configuration options for bigo.
type Config struct {
	// HTTP server settings
	Server ServerConfig `koanf:"server" toml:"server"`

	// Resource ceilings for one analysis
	Analysis AnalysisConfig `koanf:"analysis" toml:"analysis"`

	// Complexity classifier strategy
	Classifier ClassifierConfig `koanf:"classifier" toml:"classifier"`

	// File exclusion patterns for batch analysis
	Exclude ExcludeConfig `koanf:"exclude" toml:"exclude"`

	// Cache settings for model-assisted estimates
	Cache CacheConfig `koanf:"cache" toml:"cache"`

	// Logging settings
	Log LogConfig `koanf:"log" toml:"log"`

	// Output settings
	Output OutputConfig `koanf:"output" toml:"output"`
}

// ServerConfig controls the HTTP endpoint.
type ServerConfig struct {
	Addr            string   `koanf:"addr" toml:"addr"`
	MaxBodyBytes    int64    `koanf:"max_body_bytes" toml:"max_body_bytes"`
	CORSOrigins     []string `koanf:"cors_origins" toml:"cors_origins"`
	ReadTimeout     int      `koanf:"read_timeout" toml:"read_timeout"`         // seconds
	ShutdownTimeout int      `koanf:"shutdown_timeout" toml:"shutdown_timeout"` // seconds
	Metrics         bool     `koanf:"metrics" toml:"metrics"`
}

// AnalysisConfig bounds the work done for a single snippet.
type AnalysisConfig struct {
	MaxCodeBytes int `koanf:"max_code_bytes" toml:"max_code_bytes"`
	MaxNodes     int `koanf:"max_nodes" toml:"max_nodes"`
	MaxDepth     int `koanf:"max_depth" toml:"max_depth"`
	Timeout      int `koanf:"timeout" toml:"timeout"` // milliseconds
	Workers      int `koanf:"workers" toml:"workers"` // batch analysis, 0 = NumCPU
}

// ClassifierConfig selects and tunes the classification strategy.
type ClassifierConfig struct {
	Strategy          string  `koanf:"strategy" toml:"strategy"` // rule, model
	Model             string  `koanf:"model" toml:"model"`
	BaseURL           string  `koanf:"base_url" toml:"base_url"`
	APIKeyEnv         string  `koanf:"api_key_env" toml:"api_key_env"`
	Temperature       float64 `koanf:"temperature" toml:"temperature"`
	RequestsPerMinute int     `koanf:"requests_per_minute" toml:"requests_per_minute"`
	Timeout           int     `koanf:"timeout" toml:"timeout"` // seconds
}

// ExcludeConfig defines file exclusion patterns.
type ExcludeConfig struct {
	Patterns []string `koanf:"patterns" toml:"patterns"`
	Dirs     []string `koanf:"dirs" toml:"dirs"`
}

// CacheConfig controls caching behavior.
type CacheConfig struct {
	Enabled bool   `koanf:"enabled" toml:"enabled"`
	Dir     string `koanf:"dir" toml:"dir"`
	TTL     int    `koanf:"ttl" toml:"ttl"` // TTL in hours
}

// LogConfig controls the process logger.
type LogConfig struct {
	Level  string `koanf:"level" toml:"level"`   // debug, info, warn, error
	Format string `koanf:"format" toml:"format"` // text, json
}

// OutputConfig controls output formatting.
type OutputConfig struct {
	Format  string `koanf:"format" toml:"format"` // text, json, markdown, toon
	Color   bool   `koanf:"color" toml:"color"`
	Verbose bool   `koanf:"verbose" toml:"verbose"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":5000",
			MaxBodyBytes:    1 << 20,
			CORSOrigins:     []string{"*"},
			ReadTimeout:     15,
			ShutdownTimeout: 10,
			Metrics:         true,
		},
		Analysis: AnalysisConfig{
			MaxCodeBytes: 64 * 1024,
			MaxNodes:     50000,
			MaxDepth:     200,
			Timeout:      2000,
		},
		Classifier: ClassifierConfig{
			Strategy:          "rule",
			Model:             "gpt-4o-mini",
			APIKeyEnv:         "OPENAI_API_KEY",
			Temperature:       0.2,
			RequestsPerMinute: 30,
			Timeout:           30,
		},
		Exclude: ExcludeConfig{
			Patterns: []string{
				"test_*.py",
				"*_test.py",
				"conftest.py",
			},
			Dirs: []string{
				".git",
				".venv",
				"venv",
				"node_modules",
				"__pycache__",
				".bigo",
				"build",
				"dist",
			},
		},
		Cache: CacheConfig{
			Enabled: true,
			Dir:     ".bigo/cache",
			TTL:     24,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Output: OutputConfig{
			Format:  "text",
			Color:   true,
			Verbose: false,
		},
	}
}

// Load loads configuration from a file.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	// Determine parser based on extension
	var parser koanf.Parser
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".toml":
		parser = toml.Parser()
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		parser = toml.Parser()
	}

	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}

	return cfg, nil
}

// configNames are searched, in order, by Find.
var configNames = []string{
	"bigo.toml",
	"bigo.yaml",
	"bigo.yml",
	"bigo.json",
	".bigo.toml",
	".bigo.yaml",
	".bigo.yml",
	".bigo.json",
}

// Find returns the first config file in the current directory or .bigo/,
// or "" when there is none.
func Find() string {
	for _, dir := range []string{".", ".bigo"} {
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

// Strategies, log levels and formats accepted by Validate.
var (
	validStrategies = []string{"rule", "model"}
	validLogLevels  = []string{"debug", "info", "warn", "error"}
	validLogFormats = []string{"text", "json"}
	validOutputs    = []string{"text", "json", "markdown", "toon"}
)

// Validate reports every out-of-range setting.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(c.Server.Addr != "", "server.addr must not be empty")
	check(c.Server.MaxBodyBytes > 0, "server.max_body_bytes must be positive, got %d", c.Server.MaxBodyBytes)
	check(c.Server.ReadTimeout >= 0, "server.read_timeout must not be negative")
	check(c.Server.ShutdownTimeout >= 0, "server.shutdown_timeout must not be negative")

	check(c.Analysis.MaxCodeBytes >= 0, "analysis.max_code_bytes must not be negative")
	check(c.Analysis.MaxNodes >= 0, "analysis.max_nodes must not be negative")
	check(c.Analysis.MaxDepth >= 0, "analysis.max_depth must not be negative")
	check(c.Analysis.Timeout >= 0, "analysis.timeout must not be negative")
	check(c.Analysis.Workers >= 0, "analysis.workers must not be negative")
	check(c.Analysis.MaxCodeBytes == 0 || int64(c.Analysis.MaxCodeBytes) <= c.Server.MaxBodyBytes,
		"analysis.max_code_bytes (%d) must not exceed server.max_body_bytes (%d)", c.Analysis.MaxCodeBytes, c.Server.MaxBodyBytes)

	check(slices.Contains(validStrategies, c.Classifier.Strategy),
		"classifier.strategy must be one of %v, got %q", validStrategies, c.Classifier.Strategy)
	if c.Classifier.Strategy == "model" {
		check(c.Classifier.Model != "", "classifier.model is required for the model strategy")
		check(c.Classifier.APIKeyEnv != "", "classifier.api_key_env is required for the model strategy")
	}
	check(c.Classifier.Temperature >= 0 && c.Classifier.Temperature <= 2,
		"classifier.temperature must be within [0, 2], got %g", c.Classifier.Temperature)
	check(c.Classifier.RequestsPerMinute >= 0, "classifier.requests_per_minute must not be negative")
	check(c.Classifier.Timeout >= 0, "classifier.timeout must not be negative")

	check(!c.Cache.Enabled || c.Cache.Dir != "", "cache.dir is required when the cache is enabled")
	check(c.Cache.TTL >= 0, "cache.ttl must not be negative")

	check(slices.Contains(validLogLevels, c.Log.Level), "log.level must be one of %v, got %q", validLogLevels, c.Log.Level)
	check(slices.Contains(validLogFormats, c.Log.Format), "log.format must be one of %v, got %q", validLogFormats, c.Log.Format)
	check(slices.Contains(validOutputs, c.Output.Format), "output.format must be one of %v, got %q", validOutputs, c.Output.Format)

	return errors.Join(errs...)
}

// AnalysisTimeout returns the parse timeout as a duration.
func (c *Config) AnalysisTimeout() time.Duration {
	return time.Duration(c.Analysis.Timeout) * time.Millisecond
}

// CacheTTL returns the cache TTL as a duration.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTL) * time.Hour
}

// ShouldExclude checks if a path should be excluded from batch analysis.
func (c *Config) ShouldExclude(path string) bool {
	for _, dir := range c.Exclude.Dirs {
		if strings.Contains(path, string(filepath.Separator)+dir+string(filepath.Separator)) ||
			strings.HasPrefix(path, dir+string(filepath.Separator)) {
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
