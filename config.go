package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"jsctx/errors"
	"jsctx/logging"
	"jsctx/serialization"

	"gopkg.in/yaml.v3"
)

const (
	SourceTypeScript = "script"
	SourceTypeModule = "module"
)

// Config represents the application configuration
type Config struct {
	Parser        ParserConfig        `json:"parser" yaml:"parser"`
	Logging       LoggingConfig       `json:"logging" yaml:"logging"`
	REPL          REPLConfig          `json:"repl" yaml:"repl"`
	Predicates    PredicatesConfig    `json:"predicates" yaml:"predicates"`
	Batch         BatchConfig         `json:"batch" yaml:"batch"`
	Serialization SerializationConfig `json:"serialization" yaml:"serialization"`
}

// ParserConfig selects how units are interpreted
type ParserConfig struct {
	SourceType string `json:"source_type" yaml:"source_type"`
	// MaxLookahead bounds how many tokens the REPL shows around the cursor
	MaxLookahead int `json:"max_lookahead" yaml:"max_lookahead"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format" yaml:"format"`
	File   string `json:"file,omitempty" yaml:"file,omitempty"`
}

// REPLConfig contains REPL configuration
type REPLConfig struct {
	Prompt      string `json:"prompt" yaml:"prompt"`
	HistorySize int    `json:"history_size" yaml:"history_size"`
	HistoryFile string `json:"history_file" yaml:"history_file"`
	Colors      bool   `json:"colors" yaml:"colors"`
}

// PredicatesConfig points at a Lua file of extra predicates
type PredicatesConfig struct {
	Script string `json:"script,omitempty" yaml:"script,omitempty"`
}

// BatchConfig contains worker pool settings for multi-file runs
type BatchConfig struct {
	Workers int `json:"workers" yaml:"workers"`
}

// SerializationConfig selects the snapshot format written by -dump
type SerializationConfig struct {
	Format string `json:"format" yaml:"format"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Parser: ParserConfig{
			SourceType:   SourceTypeScript,
			MaxLookahead: 8,
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "text",
		},
		REPL: REPLConfig{
			Prompt:      "js> ",
			HistorySize: 1000,
			HistoryFile: "~/.jsctx_history",
			Colors:      true,
		},
		Batch: BatchConfig{
			Workers: 4,
		},
		Serialization: SerializationConfig{
			Format: serialization.FormatFunbit,
		},
	}
}

// LoadConfig loads configuration from a file. A missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()
	if path == "" {
		return config, nil
	}

	path = expandHome(path)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return nil, errors.NewConfigError("CONFIG_READ_FAILED", "failed to read config file").
			WithSource(path).Wrap(err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(data, config); err != nil {
			return nil, errors.NewConfigError("CONFIG_PARSE_FAILED", "failed to parse JSON config").
				WithSource(path).Wrap(err)
		}
	default:
		// .yaml, .yml and anything else
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, errors.NewConfigError("CONFIG_PARSE_FAILED", "failed to parse YAML config").
				WithSource(path).Wrap(err)
		}
	}

	if err := config.Validate(); err != nil {
		return nil, err.WithSource(path)
	}
	return config, nil
}

// SaveConfig saves configuration to a file
func SaveConfig(config *Config, path string) error {
	path = expandHome(path)

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.NewConfigError("CONFIG_WRITE_FAILED", "failed to create config directory").Wrap(err)
	}

	var data []byte
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		data, err = json.MarshalIndent(config, "", "  ")
	default:
		data, err = yaml.Marshal(config)
	}
	if err != nil {
		return errors.NewConfigError("CONFIG_MARSHAL_FAILED", "failed to marshal config").Wrap(err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.NewConfigError("CONFIG_WRITE_FAILED", "failed to write config file").
			WithSource(path).Wrap(err)
	}
	return nil
}

// Validate rejects settings the tools cannot run with
func (c *Config) Validate() *errors.Error {
	invalid := func(field string, value interface{}, msg string) *errors.Error {
		return errors.NewConfigError("INVALID_CONFIG", fmt.Sprintf("%s: %s", field, msg)).
			WithContext("field", field).WithContext("value", value)
	}

	switch c.Parser.SourceType {
	case SourceTypeScript, SourceTypeModule:
	default:
		return invalid("parser.source_type", c.Parser.SourceType, "must be script or module")
	}
	if c.Parser.MaxLookahead <= 0 {
		return invalid("parser.max_lookahead", c.Parser.MaxLookahead, "must be positive")
	}
	if c.REPL.HistorySize <= 0 {
		return invalid("repl.history_size", c.REPL.HistorySize, "must be positive")
	}
	if c.Batch.Workers <= 0 {
		return invalid("batch.workers", c.Batch.Workers, "must be positive")
	}
	if _, ok := logging.LookupLevel(c.Logging.Level); !ok {
		return invalid("logging.level", c.Logging.Level, "unknown level")
	}
	if _, err := logging.NewFormatter(c.Logging.Format); err != nil {
		return invalid("logging.format", c.Logging.Format, "unknown format")
	}
	if !serialization.NewDefaultSerializerRegistry().IsFormatSupported(c.Serialization.Format) {
		return invalid("serialization.format", c.Serialization.Format, "unsupported format")
	}
	return nil
}

// DefaultStrict reports whether units start in strict mode
func (c *Config) DefaultStrict() bool {
	return c.Parser.SourceType == SourceTypeModule
}

// PredicateScript returns the predicate file path with ~ expanded
func (c *Config) PredicateScript() string {
	if c.Predicates.Script == "" {
		return ""
	}
	return expandHome(c.Predicates.Script)
}

// NewLogger builds the logger described by the logging section
func (c *Config) NewLogger() (*logging.DefaultLogger, error) {
	formatter, err := logging.NewFormatter(c.Logging.Format)
	if err != nil {
		return nil, err
	}

	writers := []logging.Writer{logging.NewConsoleWriter(os.Stderr)}
	if c.Logging.File != "" {
		fw, err := logging.NewFileWriter(expandHome(c.Logging.File))
		if err != nil {
			return nil, errors.NewConfigError("LOG_FILE_FAILED", "failed to open log file").
				WithSource(c.Logging.File).Wrap(err)
		}
		writers = []logging.Writer{fw}
	}

	return logging.NewDefaultLoggerWithConfig(logging.LoggerConfig{
		Level:      logging.ParseLevel(c.Logging.Level),
		Formatters: []logging.Formatter{formatter},
		Writers:    writers,
	}), nil
}

// expandHome expands ~ to the user's home directory
func expandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
