package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

// Storage drivers supported by the API server.
const (
	DriverPostgres = "postgres"
	DriverMongoDB  = "mongodb"
)

// Config represents the full application configuration surface.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	MongoDB  MongoDBConfig
	Expiry   ExpiryConfig
	Sheets   SheetsConfig
	Client   ClientConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port string
}

// DatabaseConfig selects the storage backend of the API server.
type DatabaseConfig struct {
	Driver      string
	PostgresDSN string
}

// MongoDBConfig holds settings for MongoDB.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// ExpiryConfig holds the expiry sweep schedule.
type ExpiryConfig struct {
	CronSchedule string
	Timezone     string
}

// SheetsConfig is optional; when both fields are set the expiry sweep also
// appends a snapshot to Google Sheets.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
}

// Enabled reports whether the Sheets export is configured.
func (s SheetsConfig) Enabled() bool {
	return s.CredentialsPath != "" && s.SpreadsheetID != ""
}

// ClientConfig configures the terminal client.
type ClientConfig struct {
	BaseURL      string
	Timeout      time.Duration
	LoadingDelay time.Duration
	Timezone     string
}

// LoadServer reads the environment (optionally from envFile) and validates the
// settings the API server needs.
func LoadServer(envFile string) (*Config, error) {
	cfg, err := load(envFile)
	if err != nil {
		return nil, err
	}
	if err := cfg.ValidateServer(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadClient reads the environment (optionally from envFile) and validates the
// settings the terminal client needs.
func LoadClient(envFile string) (*Config, error) {
	cfg, err := load(envFile)
	if err != nil {
		return nil, err
	}
	if err := cfg.ValidateClient(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// A missing .env is fine when everything comes from the environment.
		_ = godotenv.Load()
	}

	timeout, err := getDurationWithDefault("FRDG_HTTP_TIMEOUT", 15*time.Second)
	if err != nil {
		return nil, err
	}
	loadingDelay, err := getDurationWithDefault("FRDG_LOADING_DELAY", 500*time.Millisecond)
	if err != nil {
		return nil, err
	}

	timezone := getenvWithDefault("TIMEZONE", "UTC")

	return &Config{
		Server: ServerConfig{
			Port: getenvWithDefault("APP_PORT", "8080"),
		},
		Database: DatabaseConfig{
			Driver:      strings.ToLower(getenvWithDefault("DB_DRIVER", DriverPostgres)),
			PostgresDSN: os.Getenv("DATABASE_URL"),
		},
		MongoDB: MongoDBConfig{
			URI:    os.Getenv("MONGODB_URI"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "frdg"),
		},
		Expiry: ExpiryConfig{
			CronSchedule: getenvWithDefault("EXPIRY_CRON_SCHEDULE", "0 8 * * *"),
			Timezone:     timezone,
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_EXPIRY_ID"),
		},
		Client: ClientConfig{
			BaseURL:      getenvWithDefault("FRDG_API_URL", "http://127.0.0.1:8080"),
			Timeout:      timeout,
			LoadingDelay: loadingDelay,
			Timezone:     timezone,
		},
	}, nil
}

// ValidateServer ensures the API server settings are usable.
func (c *Config) ValidateServer() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	switch c.Database.Driver {
	case DriverPostgres:
		if c.Database.PostgresDSN == "" {
			return errors.New("DATABASE_URL must be provided when DB_DRIVER=postgres")
		}
	case DriverMongoDB:
		if c.MongoDB.URI == "" {
			return errors.New("MONGODB_URI must be provided when DB_DRIVER=mongodb")
		}
		if c.MongoDB.DBName == "" {
			return errors.New("MONGODB_DB_NAME must not be empty")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}

	if c.Expiry.CronSchedule == "" {
		return errors.New("EXPIRY_CRON_SCHEDULE must be provided")
	}
	if _, err := cron.ParseStandard(c.Expiry.CronSchedule); err != nil {
		return fmt.Errorf("invalid EXPIRY_CRON_SCHEDULE: %w", err)
	}

	if _, err := time.LoadLocation(c.Expiry.Timezone); err != nil {
		return fmt.Errorf("invalid TIMEZONE: %w", err)
	}

	if (c.Sheets.CredentialsPath == "") != (c.Sheets.SpreadsheetID == "") {
		return errors.New("GOOGLE_SHEETS_CREDENTIALS_PATH and GOOGLE_SHEET_EXPIRY_ID must be set together")
	}

	return nil
}

// ValidateClient ensures the terminal client settings are usable.
func (c *Config) ValidateClient() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Client.BaseURL == "" {
		return errors.New("FRDG_API_URL must not be empty")
	}
	if c.Client.Timeout <= 0 {
		return errors.New("FRDG_HTTP_TIMEOUT must be positive")
	}
	if c.Client.LoadingDelay < 0 {
		return errors.New("FRDG_LOADING_DELAY must not be negative")
	}
	if _, err := time.LoadLocation(c.Client.Timezone); err != nil {
		return fmt.Errorf("invalid TIMEZONE: %w", err)
	}

	return nil
}

// Location resolves a configured timezone name, falling back to UTC.
func Location(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getDurationWithDefault(key string, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
