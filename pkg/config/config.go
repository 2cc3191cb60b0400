package config

import (
	"bytes"
	_ "embed"
	stdjson "encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	gotoml "github.com/pelletier/go-toml"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

// ErrInvalidConfig is returned when a configuration file or value is invalid.
var ErrInvalidConfig = errors.New("invalid configuration")

//go:embed schema.json
var schemaJSON []byte

// Config holds all configuration options for paramlint.
type Config struct {
	// Rule settings
	Check CheckConfig `koanf:"check" toml:"check"`

	// File exclusion patterns
	Exclude ExcludeConfig `koanf:"exclude" toml:"exclude"`

	// Cache settings
	Cache CacheConfig `koanf:"cache" toml:"cache"`

	// Output settings
	Output OutputConfig `koanf:"output" toml:"output"`

	// Workers caps concurrent file processing (0 = 2x NumCPU).
	Workers int `koanf:"workers" toml:"workers" comment:"Concurrent files (0 = 2x NumCPU)"`

	// MaxFileSize skips larger files, in bytes (0 = no limit).
	MaxFileSize int64 `koanf:"max_file_size" toml:"max_file_size" comment:"Skip files larger than this many bytes (0 = no limit)"`
}

// CheckConfig controls which parameters are reported.
type CheckConfig struct {
	IgnoreCatchParameters bool   `koanf:"ignore_catch_parameters" toml:"ignore_catch_parameters" comment:"Never report unused catch clause parameters"`
	IgnorePattern         string `koanf:"ignore_pattern" toml:"ignore_pattern" comment:"Regular expression of parameter names never reported"`
}

// ExcludeConfig defines file exclusion patterns.
type ExcludeConfig struct {
	Patterns  []string `koanf:"patterns" toml:"patterns"`
	Dirs      []string `koanf:"dirs" toml:"dirs"`
	Gitignore bool     `koanf:"gitignore" toml:"gitignore"`
}

// CacheConfig controls caching behavior.
type CacheConfig struct {
	Enabled bool   `koanf:"enabled" toml:"enabled"`
	Dir     string `koanf:"dir" toml:"dir"`
	TTL     int    `koanf:"ttl" toml:"ttl" comment:"Hours (0 = until the file changes)"`
}

// OutputConfig controls output formatting.
type OutputConfig struct {
	Format string `koanf:"format" toml:"format" comment:"text, json, markdown, toon or yaml"`
	Color  bool   `koanf:"color" toml:"color"`
}

// Formats lists the supported output formats.
var Formats = []string{"text", "json", "markdown", "toon", "yaml"}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Check: CheckConfig{
			IgnoreCatchParameters: true,
		},
		Exclude: ExcludeConfig{
			Patterns: []string{},
			Dirs: []string{
				".git",
				".gradle",
				".idea",
				".paramlint",
				"build",
				"node_modules",
				"out",
				"target",
			},
			Gitignore: true,
		},
		Cache: CacheConfig{
			Enabled: true,
			Dir:     ".paramlint/cache",
			TTL:     24,
		},
		Output: OutputConfig{
			Format: "text",
			Color:  true,
		},
	}
}

// configNames are searched, in order, in each search directory.
var configNames = []string{
	"paramlint.toml",
	"paramlint.yaml",
	"paramlint.yml",
	"paramlint.json",
	".paramlint.toml",
	".paramlint.yaml",
	".paramlint.yml",
	".paramlint.json",
}

func parserFor(path string) koanf.Parser {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Parser()
	case ".json":
		return json.Parser()
	default:
		return toml.Parser()
	}
}

func loadRaw(path string) (*koanf.Koanf, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), parserFor(path)); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, path, err)
	}
	return k, nil
}

// Load loads configuration from a file on top of the defaults and validates it.
func Load(path string) (*Config, error) {
	k, err := loadRaw(path)
	if err != nil {
		return nil, err
	}
	if err := validateSchema(k.Raw()); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	cfg := DefaultConfig()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Find returns the first config file found in dir or dir/.paramlint.
func Find(dir string) (string, bool) {
	for _, sub := range []string{".", ".paramlint"} {
		for _, name := range configNames {
			path := filepath.Join(dir, sub, name)
			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				return path, true
			}
		}
	}
	return "", false
}

// LoadResult is a loaded configuration and the file it came from. Source is
// empty when defaults were used.
type LoadResult struct {
	Config *Config
	Source string
}

// LoadOption configures LoadConfig.
type LoadOption func(*loadOptions)

type loadOptions struct {
	path string
	dir  string
}

// WithPath loads an explicit file instead of searching.
func WithPath(path string) LoadOption {
	return func(o *loadOptions) {
		o.path = path
	}
}

// WithDir searches dir instead of the working directory.
func WithDir(dir string) LoadOption {
	return func(o *loadOptions) {
		o.dir = dir
	}
}

// LoadConfig loads an explicit file or the first one found by Find. A
// missing explicit file is an error; finding nothing yields the defaults.
func LoadConfig(opts ...LoadOption) (*LoadResult, error) {
	o := loadOptions{dir: "."}
	for _, opt := range opts {
		opt(&o)
	}

	path := o.path
	if path == "" {
		found, ok := Find(o.dir)
		if !ok {
			return &LoadResult{Config: DefaultConfig()}, nil
		}
		path = found
	}

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	return &LoadResult{Config: cfg, Source: path}, nil
}

// Validate checks values the schema cannot express.
func (c *Config) Validate() error {
	if _, err := c.IgnorePattern(); err != nil {
		return err
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must not be negative", ErrInvalidConfig)
	}
	if c.MaxFileSize < 0 {
		return fmt.Errorf("%w: max_file_size must not be negative", ErrInvalidConfig)
	}
	for _, f := range Formats {
		if c.Output.Format == f {
			return nil
		}
	}
	return fmt.Errorf("%w: unknown output format %q", ErrInvalidConfig, c.Output.Format)
}

// IgnorePattern compiles check.ignore_pattern. It returns nil when no
// pattern is set.
func (c *Config) IgnorePattern() (*regexp.Regexp, error) {
	if c.Check.IgnorePattern == "" {
		return nil, nil
	}
	re, err := regexp.Compile(c.Check.IgnorePattern)
	if err != nil {
		return nil, fmt.Errorf("%w: ignore_pattern: %v", ErrInvalidConfig, err)
	}
	return re, nil
}

// TOML renders the configuration as a commented TOML document.
func (c *Config) TOML() ([]byte, error) {
	return gotoml.Marshal(*c)
}

var schema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaJSON))
	if err != nil {
		return nil, err
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource("paramlint.schema.json", doc); err != nil {
		return nil, err
	}
	return c.Compile("paramlint.schema.json")
})

// validateSchema checks a raw document against the embedded JSON Schema.
// The document is round-tripped through JSON so TOML and YAML values take
// the shapes the validator expects.
func validateSchema(raw map[string]any) error {
	s, err := schema()
	if err != nil {
		return err
	}
	data, err := stdjson.Marshal(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := s.Validate(doc); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// ShouldExclude checks if a path should be excluded from analysis.
func (c *Config) ShouldExclude(path string) bool {
	slashed := filepath.ToSlash(path)
	for _, dir := range c.Exclude.Dirs {
		if strings.Contains(slashed, "/"+dir+"/") || strings.HasPrefix(slashed, dir+"/") {
			return true
		}
	}

	base := filepath.Base(path)
	for _, pattern := range c.Exclude.Patterns {
		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
		if matched, _ := filepath.Match(pattern, slashed); matched {
			return true
		}
	}
	return false
}
