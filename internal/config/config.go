package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"
)

// Store drivers
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
)

// Config holds all configuration for the application
type Config struct {
	App     AppConfig
	Store   StoreConfig
	Catalog CatalogConfig
	Logger  LoggerConfig
}

// AppConfig holds configuration for the process and its console
type AppConfig struct {
	Env                    string `mapstructure:"APP_ENV"`
	ConsoleColor           bool   `mapstructure:"CONSOLE_COLOR"`
	ShutdownTimeoutSeconds int    `mapstructure:"SHUTDOWN_TIMEOUT_SECONDS"`
}

// StoreConfig selects and configures the catalog store
type StoreConfig struct {
	Driver    string `mapstructure:"STORE_DRIVER"`
	SQLiteDSN string `mapstructure:"SQLITE_DSN"`
}

// CatalogConfig holds the user ID space and startup seeding
type CatalogConfig struct {
	SeedSampleData    bool  `mapstructure:"SEED_SAMPLE_DATA"`
	UserIDMin         int64 `mapstructure:"USER_ID_MIN"`
	UserIDMax         int64 `mapstructure:"USER_ID_MAX"` // exclusive
	UserIDMaxAttempts int   `mapstructure:"USER_ID_MAX_ATTEMPTS"`
}

// LoggerConfig holds configuration for the logger
type LoggerConfig struct {
	Level            string  `mapstructure:"LOG_LEVEL"`
	Format           string  `mapstructure:"LOG_FORMAT"`
	OutputPath       string  `mapstructure:"LOG_OUTPUT_PATH"`
	SlowQuerySeconds float64 `mapstructure:"LOG_SLOW_QUERY_SECONDS"`
	EnableSampling   bool    `mapstructure:"LOG_ENABLE_SAMPLING"`
	ServiceName      string  `mapstructure:"SERVICE_NAME"`
	ServiceVersion   string  `mapstructure:"SERVICE_VERSION"`
}

// LoadConfig reads configuration from app.env under path and from environment variables.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.AddConfigPath(path)
	v.SetConfigName("app") // Look for app.env
	v.SetConfigType("env")

	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is okay if we have env vars
	}

	var config Config

	config.App.Env = v.GetString("APP_ENV")
	config.App.ConsoleColor = v.GetBool("CONSOLE_COLOR")
	config.App.ShutdownTimeoutSeconds = v.GetInt("SHUTDOWN_TIMEOUT_SECONDS")

	config.Store.Driver = v.GetString("STORE_DRIVER")
	config.Store.SQLiteDSN = v.GetString("SQLITE_DSN")

	config.Catalog.SeedSampleData = v.GetBool("SEED_SAMPLE_DATA")
	config.Catalog.UserIDMin = v.GetInt64("USER_ID_MIN")
	config.Catalog.UserIDMax = v.GetInt64("USER_ID_MAX")
	config.Catalog.UserIDMaxAttempts = v.GetInt("USER_ID_MAX_ATTEMPTS")

	config.Logger.Level = v.GetString("LOG_LEVEL")
	config.Logger.Format = v.GetString("LOG_FORMAT")
	config.Logger.OutputPath = v.GetString("LOG_OUTPUT_PATH")
	config.Logger.SlowQuerySeconds = v.GetFloat64("LOG_SLOW_QUERY_SECONDS")
	config.Logger.EnableSampling = v.GetBool("LOG_ENABLE_SAMPLING")
	config.Logger.ServiceName = v.GetString("SERVICE_NAME")
	config.Logger.ServiceVersion = v.GetString("SERVICE_VERSION")

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("CONSOLE_COLOR", true)
	v.SetDefault("SHUTDOWN_TIMEOUT_SECONDS", 5)

	v.SetDefault("STORE_DRIVER", StoreMemory)
	v.SetDefault("SQLITE_DSN", ":memory:")

	v.SetDefault("SEED_SAMPLE_DATA", true)
	v.SetDefault("USER_ID_MIN", 100)
	v.SetDefault("USER_ID_MAX", 999)
	v.SetDefault("USER_ID_MAX_ATTEMPTS", 32)

	// Logs share the terminal with the menu, so keep them quiet and off stdout
	v.SetDefault("LOG_LEVEL", "warn")
	v.SetDefault("LOG_FORMAT", "console")
	v.SetDefault("LOG_OUTPUT_PATH", "stderr")
	v.SetDefault("LOG_SLOW_QUERY_SECONDS", 0.2)
	v.SetDefault("LOG_ENABLE_SAMPLING", false)
	v.SetDefault("SERVICE_NAME", "library-catalog")
	v.SetDefault("SERVICE_VERSION", "1.0.0")
}

// Validate checks the configuration for values the application cannot start with.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case StoreMemory:
	case StoreSQLite:
		if c.Store.SQLiteDSN == "" {
			return errors.New("SQLITE_DSN is required when STORE_DRIVER=sqlite")
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.Store.Driver)
	}

	if c.Catalog.UserIDMin < 1 {
		return fmt.Errorf("USER_ID_MIN must be positive, got %d", c.Catalog.UserIDMin)
	}
	if c.Catalog.UserIDMax <= c.Catalog.UserIDMin {
		return fmt.Errorf("USER_ID_MAX (%d) must be greater than USER_ID_MIN (%d)",
			c.Catalog.UserIDMax, c.Catalog.UserIDMin)
	}
	if c.Catalog.UserIDMaxAttempts < 1 {
		return fmt.Errorf("USER_ID_MAX_ATTEMPTS must be at least 1, got %d", c.Catalog.UserIDMaxAttempts)
	}
	if c.App.ShutdownTimeoutSeconds < 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT_SECONDS must not be negative, got %d", c.App.ShutdownTimeoutSeconds)
	}

	return nil
}
