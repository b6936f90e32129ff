package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/multierr"
)

// ErrUnknownFormat is returned by NewProvider for file extensions it does
// not recognize
var ErrUnknownFormat = errors.New("unknown configuration file format")

// Source types
const (
	SourceReplay    = "replay"
	SourceSimulator = "simulator"
)

// Logbook drivers
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// StdoutPath as an output path writes the document to standard output
const StdoutPath = "-"

// DefaultMaxSurfaceInterval matches the default of the surface interval
// calculation
const DefaultMaxSurfaceInterval = 48 * time.Hour

// ConfigProvider defines the interface for configuration data sources
type ConfigProvider interface {
	// Load complete configuration.  Settings missing from the source keep
	// their Defaults() value.
	LoadConfig() (*ConfigData, error)

	Close() error
}

// ConfigData represents the complete configuration structure
type ConfigData struct {
	Source      SourceData      `json:"source"`
	Output      OutputData      `json:"output"`
	Corrections CorrectionsData `json:"corrections"`
	Generator   GeneratorData   `json:"generator,omitempty"`
	Logbook     LogbookData     `json:"logbook,omitempty"`
	Debug       bool            `json:"debug,omitempty"`
}

// SourceData selects where dives are downloaded from
type SourceData struct {
	Type string `json:"type"`
	// Path of the recording to replay
	Path string `json:"path,omitempty"`
	// Dives and Seed configure the simulator
	Dives int   `json:"dives,omitempty"`
	Seed  int64 `json:"seed,omitempty"`
	// Record, when set, saves everything read from the source as a
	// recording that the replay source can read back
	Record string `json:"record,omitempty"`
}

// OutputData holds the settings of the UDDF document
type OutputData struct {
	Path             string `json:"path"`
	IncludeNonSchema bool   `json:"include_non_schema,omitempty"`
}

// CorrectionsData selects the corrections applied to downloaded dives
type CorrectionsData struct {
	Truncate           bool          `json:"truncate"`
	InitialPressureFix bool          `json:"initial_pressure_fix"`
	MaxSurfaceInterval time.Duration `json:"max_surface_interval"`
}

// GeneratorData overrides the generator block of the document.  Empty
// fields keep the built-in identity.
type GeneratorData struct {
	Name         string `json:"name,omitempty"`
	Version      string `json:"version,omitempty"`
	Manufacturer string `json:"manufacturer,omitempty"`
	Email        string `json:"email,omitempty"`
}

// LogbookData configures the dive archive.  An empty driver disables it.
type LogbookData struct {
	Driver string `json:"driver,omitempty"`
	DSN    string `json:"dsn,omitempty"`
}

// Enabled reports whether a logbook is configured
func (l LogbookData) Enabled() bool {
	return l.Driver != ""
}

// Defaults returns the configuration used when no file is given
func Defaults() *ConfigData {
	return &ConfigData{
		Source: SourceData{
			Type:  SourceSimulator,
			Dives: 4,
			Seed:  1,
		},
		Output: OutputData{
			Path: StdoutPath,
		},
		Corrections: CorrectionsData{
			Truncate:           true,
			InitialPressureFix: true,
			MaxSurfaceInterval: DefaultMaxSurfaceInterval,
		},
	}
}

// Validate checks the configuration and reports every problem found
func (c *ConfigData) Validate() error {
	var err error

	switch c.Source.Type {
	case SourceReplay:
		if c.Source.Path == "" {
			err = multierr.Append(err, errors.New("source: replay requires a recording path"))
		}
	case SourceSimulator:
		if c.Source.Dives <= 0 {
			err = multierr.Append(err, fmt.Errorf("source: simulator needs at least one dive, got %d", c.Source.Dives))
		}
	default:
		err = multierr.Append(err, fmt.Errorf("source: unknown type %q", c.Source.Type))
	}

	if c.Output.Path == "" {
		err = multierr.Append(err, errors.New("output: path is required (use - for stdout)"))
	}

	if c.Corrections.MaxSurfaceInterval < 0 {
		err = multierr.Append(err, fmt.Errorf("corrections: max surface interval must not be negative, got %v", c.Corrections.MaxSurfaceInterval))
	}

	switch c.Logbook.Driver {
	case "":
	case DriverSQLite, DriverPostgres:
		if c.Logbook.DSN == "" {
			err = multierr.Append(err, fmt.Errorf("logbook: %v driver requires a dsn", c.Logbook.Driver))
		}
	default:
		err = multierr.Append(err, fmt.Errorf("logbook: unknown driver %q", c.Logbook.Driver))
	}

	return err
}

// NewProvider picks a provider by the extension of filename
func NewProvider(filename string) (ConfigProvider, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		return NewYAMLProvider(filename), nil
	case ".toml":
		return NewTOMLProvider(filename), nil
	}
	return nil, fmt.Errorf("%w: %v", ErrUnknownFormat, filename)
}

// fileConfig is the on-disk layout shared by the file providers.  Booleans
// are pointers so that a missing key keeps its default.
type fileConfig struct {
	Source      fileSource      `yaml:"source" toml:"source"`
	Output      fileOutput      `yaml:"output" toml:"output"`
	Corrections fileCorrections `yaml:"corrections" toml:"corrections"`
	Generator   fileGenerator   `yaml:"generator" toml:"generator"`
	Logbook     fileLogbook     `yaml:"logbook" toml:"logbook"`
	Debug       *bool           `yaml:"debug" toml:"debug"`
}

type fileSource struct {
	Type   string `yaml:"type" toml:"type"`
	Path   string `yaml:"path" toml:"path"`
	Dives  *int   `yaml:"dives" toml:"dives"`
	Seed   *int64 `yaml:"seed" toml:"seed"`
	Record string `yaml:"record" toml:"record"`
}

type fileOutput struct {
	Path             string `yaml:"path" toml:"path"`
	IncludeNonSchema *bool  `yaml:"include-non-schema" toml:"include-non-schema"`
}

type fileCorrections struct {
	Truncate           *bool  `yaml:"truncate" toml:"truncate"`
	InitialPressureFix *bool  `yaml:"initial-pressure-fix" toml:"initial-pressure-fix"`
	MaxSurfaceInterval string `yaml:"max-surface-interval" toml:"max-surface-interval"`
}

type fileGenerator struct {
	Name         string `yaml:"name" toml:"name"`
	Version      string `yaml:"version" toml:"version"`
	Manufacturer string `yaml:"manufacturer" toml:"manufacturer"`
	Email        string `yaml:"email" toml:"email"`
}

type fileLogbook struct {
	Driver string `yaml:"driver" toml:"driver"`
	DSN    string `yaml:"dsn" toml:"dsn"`
}

// toConfigData overlays the file settings on the defaults
func (f *fileConfig) toConfigData() (*ConfigData, error) {
	config := Defaults()

	if f.Source.Type != "" {
		config.Source.Type = f.Source.Type
	}
	config.Source.Path = f.Source.Path
	config.Source.Record = f.Source.Record
	if f.Source.Dives != nil {
		config.Source.Dives = *f.Source.Dives
	}
	if f.Source.Seed != nil {
		config.Source.Seed = *f.Source.Seed
	}

	if f.Output.Path != "" {
		config.Output.Path = f.Output.Path
	}
	if f.Output.IncludeNonSchema != nil {
		config.Output.IncludeNonSchema = *f.Output.IncludeNonSchema
	}

	if f.Corrections.Truncate != nil {
		config.Corrections.Truncate = *f.Corrections.Truncate
	}
	if f.Corrections.InitialPressureFix != nil {
		config.Corrections.InitialPressureFix = *f.Corrections.InitialPressureFix
	}
	if f.Corrections.MaxSurfaceInterval != "" {
		d, err := time.ParseDuration(f.Corrections.MaxSurfaceInterval)
		if err != nil {
			return nil, fmt.Errorf("invalid max-surface-interval: %w", err)
		}
		config.Corrections.MaxSurfaceInterval = d
	}

	config.Generator = GeneratorData{
		Name:         f.Generator.Name,
		Version:      f.Generator.Version,
		Manufacturer: f.Generator.Manufacturer,
		Email:        f.Generator.Email,
	}

	config.Logbook = LogbookData{
		Driver: f.Logbook.Driver,
		DSN:    f.Logbook.DSN,
	}

	if f.Debug != nil {
		config.Debug = *f.Debug
	}

	return config, nil
}
