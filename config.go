package xlsxtemplate

import (
	"errors"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config — настройки CLI и HTTP-сервиса, читаются из окружения.
type Config struct {
	// LogLevel: debug, info или off.
	LogLevel string
	// Resolver: path (точечные пути) или expr (выражения expr-lang).
	Resolver string
	// Parallelism: число листов, разбираемых одновременно (0 означает по числу CPU).
	Parallelism int
	// FetchTimeout ограничивает загрузку шаблона по URL.
	FetchTimeout time.Duration
	// Addr: адрес HTTP-сервиса.
	Addr string
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		LogLevel:     "info",
		Resolver:     "path",
		Parallelism:  0,
		FetchTimeout: 30 * time.Second,
		Addr:         ":8080",
	}
}

// ConfigFromEnvironment creates a configuration from environment variables
func ConfigFromEnvironment() *Config {
	config := DefaultConfig()

	if val := os.Getenv("XLSXTEMPLATE_LOG_LEVEL"); val != "" {
		config.LogLevel = strings.ToLower(val)
	}
	if val := os.Getenv("XLSXTEMPLATE_RESOLVER"); val != "" {
		config.Resolver = strings.ToLower(val)
	}
	if val := os.Getenv("XLSXTEMPLATE_PARALLELISM"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			config.Parallelism = n
		}
	}
	if val := os.Getenv("XLSXTEMPLATE_FETCH_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			config.FetchTimeout = d
		}
	}
	if val := os.Getenv("XLSXTEMPLATE_ADDR"); val != "" {
		config.Addr = val
	}
	return config
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "off":
	default:
		return errors.New("invalid log level: " + c.LogLevel)
	}
	switch c.Resolver {
	case "path", "expr":
	default:
		return errors.New("invalid resolver: " + c.Resolver)
	}
	if c.Parallelism < 0 {
		return errors.New("parallelism cannot be negative")
	}
	if c.FetchTimeout < 0 {
		return errors.New("fetch timeout cannot be negative")
	}
	return nil
}

// Options переводит конфигурацию в опции движка. logger может быть nil.
func (c *Config) Options(logger *log.Logger) []Option {
	if c.LogLevel == "off" || logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	opts := []Option{
		WithLogger(logger),
		WithDebug(c.LogLevel == "debug"),
		WithParallelism(c.Parallelism),
	}
	if c.Resolver == "expr" {
		opts = append(opts, WithResolver(NewExprResolver()))
	}
	return opts
}
