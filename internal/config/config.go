package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/docstore/internal/queryir"
	"github.com/roach88/docstore/internal/querysql"
)

//go:embed schema.cue
var schemaCUE string

// Config is the docstore configuration file.
//
// Tags serve both decoders: yaml for .yaml files, json for CUE values,
// which decode through their JSON form.
type Config struct {
	Database Database      `yaml:"database" json:"database"`
	Tables   []TableConfig `yaml:"tables" json:"tables"`
	Query    Query         `yaml:"query" json:"query"`
	Log      Log           `yaml:"log" json:"log"`
}

// Database selects the SQL engine and its file.
type Database struct {
	Driver string `yaml:"driver" json:"driver"`
	Path   string `yaml:"path" json:"path"`
}

// TableConfig declares one document table.
type TableConfig struct {
	Name          string   `yaml:"name" json:"name"`
	IndexedFields []string `yaml:"indexed_fields" json:"indexed_fields"`
}

// Query tunes the query compiler.
type Query struct {
	ParamsLimit         int  `yaml:"params_limit" json:"params_limit"`
	ChunkSize           int  `yaml:"chunk_size" json:"chunk_size"`
	UniqueScratchTables bool `yaml:"unique_scratch_tables" json:"unique_scratch_tables"`
}

// Log configures the slog handler.
type Log struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
}

const (
	DefaultDriver = "sqlite3"
	DefaultPath   = "docstore.db"
)

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads a configuration file. Files ending in .cue are unified with
// the #Config schema; anything else is parsed as strict YAML.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg *Config
	if strings.EqualFold(filepath.Ext(path), ".cue") {
		cfg, err = ParseCUE(path, data)
	} else {
		cfg, err = ParseYAML(data)
	}
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// ParseYAML parses YAML configuration with strict field validation.
func ParseYAML(data []byte) (*Config, error) {
	var cfg Config
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return finish(&cfg)
}

func finish(cfg *Config) (*Config, error) {
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Database.Driver == "" {
		c.Database.Driver = DefaultDriver
	}
	if c.Database.Path == "" {
		c.Database.Path = DefaultPath
	}
	if c.Query.ParamsLimit == 0 {
		c.Query.ParamsLimit = querysql.DefaultParamsLimit
	}
	if c.Query.ChunkSize == 0 {
		c.Query.ChunkSize = querysql.DefaultChunkSize
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks the configuration. It reports every problem found, not
// just the first.
func (c *Config) Validate() error {
	var errs []error

	switch c.Database.Driver {
	case "sqlite3", "duckdb":
	default:
		errs = append(errs, fmt.Errorf("database.driver: unsupported driver %q", c.Database.Driver))
	}

	seen := make(map[string]bool, len(c.Tables))
	for i, t := range c.Tables {
		if err := queryir.ValidateIdentifiers("table", t.Name); err != nil {
			errs = append(errs, fmt.Errorf("tables[%d]: %w", i, err))
		}
		if err := queryir.ValidateIdentifiers("column", t.IndexedFields...); err != nil {
			errs = append(errs, fmt.Errorf("tables[%d]: %w", i, err))
		}
		if seen[t.Name] {
			errs = append(errs, fmt.Errorf("tables[%d]: duplicate table %q", i, t.Name))
		}
		seen[t.Name] = true
	}

	if c.Query.ParamsLimit <= 0 {
		errs = append(errs, fmt.Errorf("query.params_limit must be positive: %d", c.Query.ParamsLimit))
	}
	if c.Query.ChunkSize <= 0 || c.Query.ChunkSize > querysql.MaxChunkSize {
		errs = append(errs, fmt.Errorf("query.chunk_size must be in 1..%d: %d", querysql.MaxChunkSize, c.Query.ChunkSize))
	}

	if _, err := c.Log.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format: unsupported format %q", c.Log.Format))
	}

	return errors.Join(errs...)
}

// Table returns the declaration of the named table.
func (c *Config) Table(name string) (TableConfig, bool) {
	for _, t := range c.Tables {
		if t.Name == name {
			return t, true
		}
	}
	return TableConfig{}, false
}

// SlogLevel maps the configured level name to a slog.Level.
func (l Log) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}
