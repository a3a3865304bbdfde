// Package config holds fairlens runtime configuration: analysis
// thresholds, output and cache settings, and the bias lexicons. The
// lexicon defaults ship embedded in the binary; a config file can
// override any part of them.
package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	kjson "github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	kyaml "github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed lexicon.yaml
var defaultLexiconYAML []byte

//go:embed lexicon_schema.json
var lexiconSchemaJSON []byte

// EnvConfigPath overrides the config search path when set.
const EnvConfigPath = "FAIRLENS_CONFIG"

// Config holds all configuration options for fairlens.
type Config struct {
	Thresholds ThresholdConfig  `koanf:"thresholds"`
	Repository RepositoryConfig `koanf:"repository"`
	Cache      CacheConfig      `koanf:"cache"`
	Output     OutputConfig     `koanf:"output"`
	Lexicon    Lexicon          `koanf:"lexicon"`
}

// ThresholdConfig names the audit policy constants with their documented
// defaults so boundary values can be exercised explicitly.
type ThresholdConfig struct {
	// ComplexityRatio flags a snippet pair when either complexity ratio
	// direction exceeds it.
	ComplexityRatio float64 `koanf:"complexity_ratio"`
	// NestingDelta and DecisionDelta bound the structural divergence test.
	NestingDelta  int `koanf:"nesting_delta"`
	DecisionDelta int `koanf:"decision_delta"`

	// Lexicon audit thresholds.
	StereotypeDisparity  float64 `koanf:"stereotype_disparity"`
	CategoryDisparity    float64 `koanf:"category_disparity"`
	ChannelDisparity     float64 `koanf:"channel_disparity"`
	StereotypeScore      float64 `koanf:"stereotype_score"`
	MicroaggressionScore float64 `koanf:"microaggression_score"`

	// SuitePassRate is the minimum percentage of passing outputs for a
	// suite run to pass overall.
	SuitePassRate float64 `koanf:"suite_pass_rate"`
}

// RepositoryConfig controls the git history audit.
type RepositoryConfig struct {
	MaxCommits          int  `koanf:"max_commits"`
	MinCommitsPerAuthor int  `koanf:"min_commits_per_author"`
	AnonymizeAuthors    bool `koanf:"anonymize_authors"`
	Progress            bool `koanf:"progress"`
}

// CacheConfig controls result caching.
type CacheConfig struct {
	Enabled bool   `koanf:"enabled"`
	Dir     string `koanf:"dir"`
	TTL     int    `koanf:"ttl"` // TTL in hours
}

// OutputConfig controls output formatting.
type OutputConfig struct {
	Format  string `koanf:"format"` // text, json, markdown, toon
	Color   bool   `koanf:"color"`
	Verbose bool   `koanf:"verbose"`
}

// DefaultConfig returns a config with documented defaults and the
// embedded lexicons.
func DefaultConfig() *Config {
	cfg := &Config{
		Thresholds: ThresholdConfig{
			ComplexityRatio:      1.5,
			NestingDelta:         2,
			DecisionDelta:        3,
			StereotypeDisparity:  0.5,
			CategoryDisparity:    0.6,
			ChannelDisparity:     0.7,
			StereotypeScore:      0.2,
			MicroaggressionScore: 0.1,
			SuitePassRate:        80.0,
		},
		Repository: RepositoryConfig{
			MaxCommits:          0, // unlimited
			MinCommitsPerAuthor: 5,
			AnonymizeAuthors:    true,
			Progress:            true,
		},
		Cache: CacheConfig{
			Enabled: true,
			Dir:     ".fairlens/cache",
			TTL:     24,
		},
		Output: OutputConfig{
			Format:  "text",
			Color:   true,
			Verbose: false,
		},
	}

	k := koanf.New(".")
	// The embedded lexicon is authored alongside this package and always
	// parses; a failure here is a build defect.
	if err := k.Load(rawbytes.Provider(defaultLexiconYAML), kyaml.Parser()); err != nil {
		panic(fmt.Sprintf("config: embedded lexicon: %v", err))
	}
	if err := k.Unmarshal("lexicon", &cfg.Lexicon); err != nil {
		panic(fmt.Sprintf("config: embedded lexicon: %v", err))
	}
	return cfg
}

// Load loads configuration from a file, layered over the defaults. The
// parser is chosen by extension; unknown extensions are treated as TOML.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(rawbytes.Provider(defaultLexiconYAML), kyaml.Parser()); err != nil {
		return nil, fmt.Errorf("embedded lexicon: %w", err)
	}

	var parser koanf.Parser
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		parser = kyaml.Parser()
	case ".json":
		parser = kjson.Parser()
	default:
		parser = toml.Parser()
	}

	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}
	if err := ValidateLexicon(cfg.Lexicon); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault tries the FAIRLENS_CONFIG path, then standard locations,
// and falls back to defaults.
func LoadOrDefault() *Config {
	if path := os.Getenv(EnvConfigPath); path != "" {
		if cfg, err := Load(path); err == nil {
			return cfg
		}
	}

	configNames := []string{
		"fairlens.toml",
		"fairlens.yaml",
		"fairlens.yml",
		"fairlens.json",
		".fairlens.toml",
		".fairlens.yaml",
		".fairlens.yml",
		".fairlens.json",
	}
	searchDirs := []string{".", ".fairlens"}

	for _, dir := range searchDirs {
		for _, name := range configNames {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				if cfg, err := Load(path); err == nil {
					return cfg
				}
			}
		}
	}
	return DefaultConfig()
}

// ValidateLexicon checks a lexicon against the embedded JSON Schema.
func ValidateLexicon(lex Lexicon) error {
	schemaDoc, err := jsonschema.UnmarshalJSON(bytes.NewReader(lexiconSchemaJSON))
	if err != nil {
		return fmt.Errorf("lexicon schema: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("lexicon_schema.json", schemaDoc); err != nil {
		return fmt.Errorf("lexicon schema: %w", err)
	}
	schema, err := compiler.Compile("lexicon_schema.json")
	if err != nil {
		return fmt.Errorf("lexicon schema: %w", err)
	}

	raw, err := json.Marshal(lex)
	if err != nil {
		return err
	}
	instance, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return err
	}
	if err := schema.Validate(instance); err != nil {
		return fmt.Errorf("lexicon: %w", err)
	}
	return nil
}

var (
	globalOnce sync.Once
	global     *Config
)

// Global returns the process-wide configuration, loaded once on first
// use and never mutated afterward.
func Global() *Config {
	globalOnce.Do(func() {
		global = LoadOrDefault()
	})
	return global
}
