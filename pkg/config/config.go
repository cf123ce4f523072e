// Package config holds the compiler front end settings and loads them from
// TOML or YAML files.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/agenthands/xenon/pkg/compiler/emitter"
	"github.com/agenthands/xenon/pkg/compiler/lexer"
	"github.com/agenthands/xenon/pkg/compiler/parser"
	"github.com/agenthands/xenon/pkg/vm"
)

// Format is a configuration file syntax.
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// Config holds the complete front end configuration.
type Config struct {
	Parser   ParserConfig   `toml:"parser" yaml:"parser"`
	Assembly AssemblyConfig `toml:"assembly" yaml:"assembly"`
	Log      LogConfig      `toml:"log" yaml:"log"`
}

// ParserConfig holds source parsing settings.
type ParserConfig struct {
	MaxTextLength int  `toml:"max_text_length" yaml:"max_text_length"`
	Strict        bool `toml:"strict" yaml:"strict"`
}

// AssemblyConfig holds assembly image settings.
type AssemblyConfig struct {
	MaxTextLength int `toml:"max_text_length" yaml:"max_text_length"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `toml:"level" yaml:"level"`
	Format string `toml:"format" yaml:"format"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Parser:   ParserConfig{MaxTextLength: lexer.DefaultMaxTextLength},
		Assembly: AssemblyConfig{MaxTextLength: vm.MaxTextLength},
		Log:      LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads a configuration file. The format follows the extension:
// .yaml and .yml are YAML, anything else is TOML. Unset fields keep their
// defaults.
func Load(path string) (*Config, error) {
	path = os.ExpandEnv(path)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return Decode(data, DetectFormat(path))
}

// DetectFormat determines the configuration format from a file extension.
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatTOML
	}
}

// Decode parses data on top of the defaults and validates the result.
func Decode(data []byte, format Format) (*Config, error) {
	cfg := Default()
	switch format {
	case FormatTOML:
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("config: TOML parse error: %w", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: YAML parse error: %w", err)
		}
	default:
		return nil, fmt.Errorf("config: unsupported format %q", format)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the ranges of all settings.
func (c *Config) Validate() error {
	if c.Assembly.MaxTextLength < 1 || c.Assembly.MaxTextLength > vm.MaxTextLength {
		return fmt.Errorf("config: assembly.max_text_length must be in 1..%d, got %d", vm.MaxTextLength, c.Assembly.MaxTextLength)
	}
	if c.Parser.MaxTextLength < 0 || c.Parser.MaxTextLength > c.Assembly.MaxTextLength {
		return fmt.Errorf("config: parser.max_text_length must be in 0..%d, got %d", c.Assembly.MaxTextLength, c.Parser.MaxTextLength)
	}
	if _, err := c.level(); err != nil {
		return err
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("config: unknown log format %q", c.Log.Format)
	}
	return nil
}

// ParserOptions converts the parser section into parser options. A zero
// max_text_length falls back to the assembly limit, since every text
// literal ends up in the assembly text pool.
func (c *Config) ParserOptions() []parser.Option {
	n := c.Parser.MaxTextLength
	if n == 0 {
		n = c.Assembly.MaxTextLength
	}
	return []parser.Option{
		parser.WithMaxTextLength(n),
		parser.WithStrict(c.Parser.Strict),
	}
}

// EmitterOptions converts the assembly section into emitter options.
func (c *Config) EmitterOptions() []emitter.Option {
	return []emitter.Option{emitter.WithMaxTextLength(c.Assembly.MaxTextLength)}
}

// Logger builds a structured logger writing to w.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	level, err := c.level()
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func (c *Config) level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, fmt.Errorf("config: unknown log level %q", c.Log.Level)
	}
	return level, nil
}
