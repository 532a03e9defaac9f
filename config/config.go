// Package config resolves banknews settings from defaults, a YAML file and
// APP_-prefixed environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"time"
	_ "time/tzdata"

	"github.com/go-playground/validator/v10"
	"github.com/phuslu/log"

	"github.com/pevans/banknews/scraper"
	"github.com/pevans/banknews/sheet"
)

// Store backends.
const (
	BackendGoogle = "google"
	BackendSQLite = "sqlite"
)

// Issuer source types.
const (
	IssuersFile   = "file"
	IssuersSQLite = "sqlite"
)

// DefaultConfigFile is read when no path is given.
const DefaultConfigFile = "banknews.yaml"

// DefaultSpreadsheetName is the spreadsheet title looked up when no ID is
// configured.
const DefaultSpreadsheetName = "bank_news_scrapping_data"

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// StoreConfig selects the tabular store articles are written to. For the
// google backend SpreadsheetID wins over SpreadsheetName.
type StoreConfig struct {
	Backend         string `yaml:"backend" validate:"oneof=google sqlite"`
	DSN             string `yaml:"dsn" validate:"required_if=Backend sqlite"`
	CredsPath       string `yaml:"creds_path" validate:"required_if=Backend google"`
	SpreadsheetID   string `yaml:"spreadsheet_id"`
	SpreadsheetName string `yaml:"spreadsheet_name"`
	SheetName       string `yaml:"sheet_name" validate:"required"`
}

// IssuersConfig selects where issuer keywords come from.
type IssuersConfig struct {
	Type string `yaml:"type" validate:"oneof=file sqlite"`
	DSN  string `yaml:"dsn" validate:"required"`
}

// HistoryConfig locates the run history database.
type HistoryConfig struct {
	DSN string `yaml:"dsn" validate:"required"`
}

// APIConfig configures the run history API server.
type APIConfig struct {
	Addr string `yaml:"addr" validate:"required"`
}

// Config is the complete banknews configuration.
type Config struct {
	// NegativeKeywords extends the built-in negative lexicon.
	NegativeKeywords []string       `yaml:"negative_keywords"`
	Columns          sheet.Columns  `yaml:"columns"`
	Timezone         string         `yaml:"timezone" validate:"required"`
	LogLevel         string         `yaml:"log_level" validate:"oneof=debug info warn error"`
	Schedule         string         `yaml:"schedule" validate:"required"`
	Scraper          scraper.Config `yaml:"scraper"`
	Store            StoreConfig    `yaml:"store"`
	Issuers          IssuersConfig  `yaml:"issuers"`
	History          HistoryConfig  `yaml:"history"`
	API              APIConfig      `yaml:"api"`
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	return &Config{
		Columns:  sheet.DefaultColumns(),
		Timezone: "Asia/Jakarta",
		LogLevel: "info",
		Schedule: "0 */6 * * *",
		Scraper:  scraper.DefaultConfig(),
		Store: StoreConfig{
			Backend:         BackendGoogle,
			CredsPath:       "service_account.json",
			SpreadsheetName: DefaultSpreadsheetName,
			SheetName:       "Sheet1",
		},
		Issuers: IssuersConfig{
			Type: IssuersFile,
			DSN:  "issuers.yaml",
		},
		History: HistoryConfig{DSN: "history.db"},
		API:     APIConfig{Addr: ":8080"},
	}
}

// Load resolves the configuration. An empty path falls back to
// APP_CONFIG_FILE and then DefaultConfigFile. A missing file is not an
// error.
func Load(path string) (*Config, error) {
	if path == "" {
		path = getEnv("APP_CONFIG_FILE", DefaultConfigFile)
	}

	cfg := Default()
	if _, err := LoadFile(path, cfg); err != nil {
		return nil, err
	}

	if err := applyEnv(cfg, lookupEnv); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

var validate = validator.New()

// Validate checks struct constraints, the column layout and the time zone.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.Store.Backend == BackendGoogle && c.Store.SpreadsheetID == "" && c.Store.SpreadsheetName == "" {
		return fmt.Errorf("%w: spreadsheet_id or spreadsheet_name is required for the google backend", ErrInvalidConfig)
	}
	if err := c.Columns.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// Location resolves the configured time zone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// RequestTimeout bounds every outbound request: scraper fetches and store
// calls alike.
func (c *Config) RequestTimeout() time.Duration {
	if c.Scraper.Timeout <= 0 {
		return scraper.DefaultTimeout
	}
	return c.Scraper.Timeout
}

// SetupLogging applies the configured level to the default logger.
func (c *Config) SetupLogging() {
	log.DefaultLogger.Level = log.ParseLevel(c.LogLevel)
}
