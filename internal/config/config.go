package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"slicefinder/internal/errors"

	"github.com/go-playground/validator/v10"
)

// Config represents the complete application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig  `validate:"required"`
	Slicing  SlicingConfig `validate:"required"`
	Reports  ReportsConfig
}

// DatabaseConfig holds database connection settings. An empty URL runs
// the service without persistence.
type DatabaseConfig struct {
	URL             string `validate:"omitempty,url"`
	MaxOpenConns    int    `validate:"gte=0"`
	ConnMaxLifetime time.Duration
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port            string        `validate:"required,numeric"`
	GinMode         string        `validate:"oneof=debug release test"`
	ShutdownTimeout time.Duration `validate:"gt=0"`
	// MaxBodyBytes caps uploaded metrics documents.
	MaxBodyBytes int64 `validate:"gt=0"`
}

// SlicingConfig holds defaults for slice discovery requests
type SlicingConfig struct {
	Alpha          float64 `validate:"gt=0,lte=1"`
	MinNumExamples float64 `validate:"gte=0"`
	TopK           int     `validate:"gte=0"`
	RankBy         string  `validate:"oneof=PVALUE EFFECT_SIZE"`
	// BatchConcurrency bounds parallel runs in a batch request.
	BatchConcurrency int `validate:"gte=1"`
}

// ReportsConfig holds report output settings
type ReportsConfig struct {
	Dir string
}

var validate = validator.New()

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Database: loadDatabaseConfig(),
		Server:   loadServerConfig(),
		Slicing:  loadSlicingConfig(),
		Reports:  ReportsConfig{Dir: getEnvOrDefault("REPORTS_DIR", "./reports")},
	}

	if err := Validate(config); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks struct constraints and reports the first failing field
func Validate(config *Config) error {
	if err := validate.Struct(config); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			return errors.ConfigInvalid("invalid configuration: " + verrs[0].Namespace() + " fails " + verrs[0].Tag())
		}
		return errors.Wrap(err, "configuration validation failed")
	}
	return nil
}

func loadDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		URL:             os.Getenv("DATABASE_URL"),
		MaxOpenConns:    getEnvIntOrDefault("DB_MAX_OPEN_CONNS", 10),
		ConnMaxLifetime: getEnvDurationOrDefault("DB_CONN_MAX_LIFETIME", 30*time.Minute),
	}
}

func loadServerConfig() ServerConfig {
	return ServerConfig{
		Port:            getEnvOrDefault("PORT", "8080"),
		GinMode:         getEnvOrDefault("GIN_MODE", "release"),
		ShutdownTimeout: getEnvDurationOrDefault("SHUTDOWN_TIMEOUT", 10*time.Second),
		MaxBodyBytes:    int64(getEnvIntOrDefault("MAX_BODY_BYTES", 32<<20)),
	}
}

func loadSlicingConfig() SlicingConfig {
	return SlicingConfig{
		Alpha:            getEnvFloatOrDefault("SLICE_ALPHA", 0.01),
		MinNumExamples:   getEnvFloatOrDefault("SLICE_MIN_EXAMPLES", 0),
		TopK:             getEnvIntOrDefault("SLICE_TOP_K", 0),
		RankBy:           strings.ToUpper(getEnvOrDefault("SLICE_RANK_BY", "PVALUE")),
		BatchConcurrency: getEnvIntOrDefault("SLICE_BATCH_CONCURRENCY", 4),
	}
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
