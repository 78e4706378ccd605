package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap/zapcore"
)

const (
	defaultDBPath      = "./dev.db"
	defaultPort        = "8080"
	defaultLogLevel    = "info"
	defaultPricingFile = "./pricing.yaml"
	defaultCurrency    = "USD"
)

// Config holds application configuration sourced from environment variables.
type Config struct {
	AppEnv      string
	DBPath      string
	Port        string
	LogLevel    string
	PricingFile string
	Currency    string
}

// Load reads environment variables and returns a populated Config.
func Load() Config {
	// Local development convenience; real deployments inject the environment.
	_, _ = loadDotEnv(".env")

	cfg := Config{
		AppEnv:      strings.ToLower(os.Getenv("APP_ENV")),
		DBPath:      os.Getenv("DB_PATH"),
		Port:        os.Getenv("PORT"),
		LogLevel:    os.Getenv("LOG_LEVEL"),
		PricingFile: os.Getenv("PRICING_FILE"),
		Currency:    strings.ToUpper(os.Getenv("CURRENCY")),
	}

	if cfg.DBPath == "" {
		cfg.DBPath = defaultDBPath
	}
	if cfg.Port == "" {
		cfg.Port = defaultPort
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = defaultLogLevel
	}
	if cfg.PricingFile == "" {
		cfg.PricingFile = defaultPricingFile
	}
	if cfg.Currency == "" {
		cfg.Currency = defaultCurrency
	}

	return cfg
}

// IsDev reports whether the application runs in a development environment.
func (c Config) IsDev() bool {
	switch c.AppEnv {
	case "", "dev", "development", "local":
		return true
	}
	return false
}

// Level parses LogLevel into a zap level.
func (c Config) Level() (zapcore.Level, error) {
	level, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return zapcore.InfoLevel, fmt.Errorf("parse LOG_LEVEL: %w", err)
	}
	return level, nil
}

// Validate checks values that cannot be defaulted.
func (c Config) Validate() error {
	port, err := strconv.Atoi(c.Port)
	if err != nil || port <= 0 || port > 65535 {
		return fmt.Errorf("PORT must be a number between 1 and 65535, got %q", c.Port)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	if len(c.Currency) != 3 {
		return fmt.Errorf("CURRENCY must be a 3-letter code, got %q", c.Currency)
	}
	return nil
}
