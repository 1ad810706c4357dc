// Package config loads the YAML configuration of a conversion run.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/FocuswithJustin/famtree/core/enrich"
	apperrors "github.com/FocuswithJustin/famtree/core/errors"
	"github.com/FocuswithJustin/famtree/core/gedcom"
)

// Config is the file form of the conversion settings. Command-line flags
// override it.
type Config struct {
	Header     gedcom.Header `yaml:"header"`
	Enrichment Enrichment    `yaml:"enrichment"`
	Input      Input         `yaml:"input"`
	Log        Log           `yaml:"log"`
}

// Enrichment describes the enrichment table.
type Enrichment struct {
	// Format is "csv", "sqlite", or empty to decide by file extension.
	Format string `yaml:"format,omitempty"`

	// Columns overrides the CSV layout. Nil means enrich.DefaultColumns.
	Columns *enrich.Columns `yaml:"columns,omitempty"`

	// SkipHeader drops the first CSV row. Nil means true.
	SkipHeader *bool `yaml:"skip_header,omitempty"`
}

// Input describes the leveled list.
type Input struct {
	// Encoding is an IANA charset name; empty means UTF-8.
	Encoding string `yaml:"encoding,omitempty"`
}

// Log holds the logger settings.
type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	var c Config
	applyDefaults(&c)
	return &c
}

// LoadFile loads and parses a YAML configuration file from the given path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return Parse(data)
}

// Parse parses YAML data into a Config.
func Parse(data []byte) (*Config, error) {
	var c Config

	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, apperrors.NewParse("config YAML", "", err.Error())
	}

	applyDefaults(&c)

	if err := c.Enrichment.Columns.Validate(); err != nil {
		return nil, err
	}
	switch c.Enrichment.Format {
	case "", "csv", "sqlite":
	default:
		return nil, apperrors.NewUnsupported(fmt.Sprintf("enrichment format %q", c.Enrichment.Format), "expected csv or sqlite")
	}

	return &c, nil
}

// applyDefaults fills in default values for optional fields.
func applyDefaults(c *Config) {
	c.Header = c.Header.WithDefaults()

	if c.Enrichment.Columns == nil {
		cols := enrich.DefaultColumns
		c.Enrichment.Columns = &cols
	}
	if c.Enrichment.SkipHeader == nil {
		skip := true
		c.Enrichment.SkipHeader = &skip
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Marshal serializes a Config to YAML.
func Marshal(c *Config) ([]byte, error) {
	return yaml.Marshal(c)
}
