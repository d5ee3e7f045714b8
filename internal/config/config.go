// =============================================================================
// P&L Workbook Generator - Configuration Module
// =============================================================================
//
// This module loads the generator configuration. Values are resolved in
// this order, later sources winning:
//
//   1. Built-in defaults (DefaultConfig)
//   2. The YAML file (config.yaml)
//   3. Environment variables with the PNL_ prefix
//
// CONFIGURATION FILE FORMAT:
//
//   data_dir: ./data
//   output_dir: ./output
//   log_level: info
//   log_format: text
//   csv:
//     encoding: tis-620
//   satellite:
//     enabled: true
//     source_label: SATELLITE
//     descendants: [SATELLITE-NT, SATELLITE-THAICOM]
//     product_keys:
//       SATELLITE-NT: ["5101", "5102"]
//       SATELLITE-THAICOM: ["5201"]
//   bu_colors:
//     "01.ภาคกลาง": "#2E75B6"
//   viewer:
//     addr: ":8090"
//     cache_size: 10
//
// ENVIRONMENT OVERRIDES (examples):
//   PNL_DATA_DIR, PNL_OUTPUT_DIR, PNL_LOG_LEVEL, PNL_LOG_FORMAT,
//   PNL_CSV_ENCODING, PNL_SATELLITE_ENABLED, PNL_VIEWER_ADDR,
//   PNL_VIEWER_CACHE_SIZE, PNL_VIEWER_RATE_LIMIT
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/pnl-workbook/internal/facts"
	"github.com/ginjaninja78/pnl-workbook/internal/mapping"
)

// DefaultPath is the config file looked up when no path is given.
const DefaultPath = "config.yaml"

// EnvPrefix prefixes every environment override.
const EnvPrefix = "PNL"

// =============================================================================
// CONFIGURATION STRUCTURES
// =============================================================================

// Config is the generator configuration.
type Config struct {
	// DataDir is searched for fact extracts and remark files.
	// Default: "data"
	DataDir string `yaml:"data_dir" envconfig:"DATA_DIR" validate:"required"`

	// OutputDir receives generated workbooks.
	// Default: "output"
	OutputDir string `yaml:"output_dir" envconfig:"OUTPUT_DIR" validate:"required"`

	// LogLevel is one of debug, info, warn, error.
	// Default: "info"
	LogLevel string `yaml:"log_level" envconfig:"LOG_LEVEL" validate:"oneof=debug info warn error"`

	// LogFormat is "text" or "json".
	// Default: "text"
	LogFormat string `yaml:"log_format" envconfig:"LOG_FORMAT" validate:"oneof=text json"`

	// CSV holds input decoding settings.
	CSV CSVSettings `yaml:"csv" envconfig:"CSV"`

	// Satellite configures the satellite service-group split.
	Satellite SatelliteConfig `yaml:"satellite" envconfig:"SATELLITE"`

	// BUColors maps a BU name (as in the extract) to its header colour.
	BUColors map[string]string `yaml:"bu_colors" ignored:"true" validate:"dive,keys,required,endkeys,hexcolor"`

	// Banners overrides the section banner colour cycle.
	Banners []string `yaml:"banners" ignored:"true" validate:"dive,hexcolor"`

	// Sheet holds title block and info box overrides.
	Sheet SheetConfig `yaml:"sheet" envconfig:"SHEET"`

	// Viewer configures the workbook viewer API.
	Viewer ViewerConfig `yaml:"viewer" envconfig:"VIEWER"`
}

// CSVSettings controls how fact extracts are read.
type CSVSettings struct {
	// Encoding is tried before the built-in fallbacks. Empty keeps the
	// default order (tis-620, cp874, utf-8-sig, utf-8).
	Encoding string `yaml:"encoding" envconfig:"ENCODING" validate:"omitempty,oneof=tis-620 cp874 utf-8-sig utf-8"`

	// Delimiter is the single-character field separator; write a tab as
	// "\t" in YAML.
	// Default: ","
	Delimiter string `yaml:"delimiter" envconfig:"DELIMITER" validate:"len=1"`
}

// SatelliteConfig configures the satellite split. Empty product keys use
// the built-in table.
type SatelliteConfig struct {
	Enabled     bool                `yaml:"enabled" envconfig:"ENABLED"`
	SourceLabel string              `yaml:"source_label" envconfig:"SOURCE_LABEL" validate:"required_if=Enabled true"`
	Descendants []string            `yaml:"descendants" envconfig:"DESCENDANTS" validate:"omitempty,len=2,unique,dive,required"`
	ProductKeys map[string][]string `yaml:"product_keys" ignored:"true"`

	// SummaryLabel is the header text of the satellite summary column.
	SummaryLabel string `yaml:"summary_label" envconfig:"SUMMARY_LABEL"`
}

// SheetConfig overrides sheet decoration.
type SheetConfig struct {
	Title   string   `yaml:"title" envconfig:"TITLE"`
	Unit    string   `yaml:"unit" envconfig:"UNIT"`
	InfoBox []string `yaml:"info_box" ignored:"true" validate:"max=5"`
}

// ViewerConfig configures the viewer API.
type ViewerConfig struct {
	// Addr is the listen address.
	// Default: ":8090"
	Addr string `yaml:"addr" envconfig:"ADDR" validate:"required"`

	// CacheSize bounds the snapshot cache.
	// Default: 10
	CacheSize int `yaml:"cache_size" envconfig:"CACHE_SIZE" validate:"min=1"`

	// RateLimit is the number of requests allowed per client per RateWindow.
	// Default: 60
	RateLimit int `yaml:"rate_limit" envconfig:"RATE_LIMIT" validate:"min=1"`

	// RateWindow is the rate-limit window.
	// Default: 1m
	RateWindow time.Duration `yaml:"rate_window" envconfig:"RATE_WINDOW" validate:"min=1s"`
}

// =============================================================================
// LOADING FUNCTIONS
// =============================================================================

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	sat := mapping.DefaultSatellite()
	return &Config{
		DataDir:   "data",
		OutputDir: "output",
		LogLevel:  "info",
		LogFormat: "text",
		CSV:       CSVSettings{Delimiter: ","},
		Satellite: SatelliteConfig{
			Enabled:     sat.Enabled,
			SourceLabel: sat.SourceLabel,
			Descendants: sat.Descendants,
		},
		Viewer: ViewerConfig{
			Addr:       ":8090",
			CacheSize:  10,
			RateLimit:  60,
			RateWindow: time.Minute,
		},
	}
}

// Load reads the configuration.
//
// PARAMETERS:
//   - path: The YAML file. Empty means DefaultPath, which may be absent;
//     an explicit path must exist.
//
// RETURNS:
//   - The resolved configuration.
//   - An error if the file cannot be parsed, an environment override is
//     malformed, or the result is invalid.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	applyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// applyDefaults fills values a YAML file may have blanked.
func applyDefaults(cfg *Config) {
	d := DefaultConfig()
	if cfg.DataDir == "" {
		cfg.DataDir = d.DataDir
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = d.OutputDir
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = d.LogLevel
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = d.LogFormat
	}
	if cfg.CSV.Delimiter == "" {
		cfg.CSV.Delimiter = d.CSV.Delimiter
	}
	if cfg.Satellite.SourceLabel == "" {
		cfg.Satellite.SourceLabel = d.Satellite.SourceLabel
	}
	if len(cfg.Satellite.Descendants) == 0 {
		cfg.Satellite.Descendants = d.Satellite.Descendants
	}
	if cfg.Viewer.Addr == "" {
		cfg.Viewer.Addr = d.Viewer.Addr
	}
	if cfg.Viewer.CacheSize == 0 {
		cfg.Viewer.CacheSize = d.Viewer.CacheSize
	}
	if cfg.Viewer.RateLimit == 0 {
		cfg.Viewer.RateLimit = d.Viewer.RateLimit
	}
	if cfg.Viewer.RateWindow == 0 {
		cfg.Viewer.RateWindow = d.Viewer.RateWindow
	}
}

// Validate checks the configuration's struct constraints.
func (c *Config) Validate() error {
	return validator.New(validator.WithRequiredStructEnabled()).Struct(c)
}

// =============================================================================
// DERIVED SETTINGS
// =============================================================================

// SplitConfig returns the satellite split the facts package applies.
func (c *Config) SplitConfig() facts.SplitConfig {
	products := c.Satellite.ProductKeys
	if len(products) == 0 {
		products = mapping.SatelliteProducts
	}
	return mapping.SatelliteSplit(c.Satellite.Enabled, c.Satellite.SourceLabel, c.Satellite.Descendants, products)
}
