// pkg/config/config.go
package config

import (
	"errors"
	"os"
	"strconv"
	"time"
)

// Config represents the application configuration
type Config struct {
	// Input sources
	IndividualPath       string
	BrigadePath          string
	BrigadeSheet         string
	PopulationDANEPath   string
	PopulationSISBENPath string
	PopulationSheet      string

	// Pipeline settings
	ReferenceDate time.Time
	TargetPct     float64

	// Audit persistence (empty DSN disables it)
	AuditDSN string

	// Report output ("" means stdout)
	ReportPath string

	// Logging
	LogLevel  string
	LogFormat string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		IndividualPath:       getEnv("INDIVIDUAL_PATH", ""),
		BrigadePath:          getEnv("BRIGADE_PATH", ""),
		BrigadeSheet:         getEnv("BRIGADE_SHEET", ""),
		PopulationDANEPath:   getEnv("POPULATION_DANE_PATH", ""),
		PopulationSISBENPath: getEnv("POPULATION_SISBEN_PATH", ""),
		PopulationSheet:      getEnv("POPULATION_SHEET", ""),
		TargetPct:            getEnvAsFloat("COVERAGE_TARGET_PCT", 80),
		AuditDSN:             getEnv("AUDIT_DSN", ""),
		ReportPath:           getEnv("REPORT_PATH", ""),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		LogFormat:            getEnv("LOG_FORMAT", "json"),
	}

	// Default reference date is today: ages mean "current age as of the run"
	refRaw := getEnv("REFERENCE_DATE", "")
	if refRaw == "" {
		now := time.Now().UTC()
		cfg.ReferenceDate = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	} else {
		ref, err := time.Parse("2006-01-02", refRaw)
		if err != nil {
			return nil, errors.New("REFERENCE_DATE must be YYYY-MM-DD: " + err.Error())
		}
		cfg.ReferenceDate = ref
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures all required configuration is present and valid
func (c *Config) Validate() error {
	if c.IndividualPath == "" && c.BrigadePath == "" {
		return errors.New("at least one of INDIVIDUAL_PATH and BRIGADE_PATH is required")
	}

	if c.TargetPct < 0 {
		return errors.New("coverage target cannot be negative")
	}

	if c.ReferenceDate.IsZero() {
		return errors.New("reference date is required")
	}

	return nil
}

// Helper functions for environment variables
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}
