package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds BSR tracker configuration.
type Config struct {
	URLFile      string
	Delay        time.Duration
	Timeout      time.Duration
	UserAgent    string
	CSVFile      string
	JSONFile     string
	OutputFormat string // csv, json, or dual
	CacheSize    int
	MetricsAddr  string
	Verbose      bool
}

// DefaultConfig returns the defaults matching the documented CLI surface.
func DefaultConfig() *Config {
	return &Config{
		URLFile:      "amazon_urls.txt",
		Delay:        3 * time.Second,
		Timeout:      15 * time.Second,
		UserAgent:    "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		CSVFile:      "amazon_bsr_results.csv",
		JSONFile:     "amazon_bsr_results.json",
		OutputFormat: "dual",
		CacheSize:    128,
		MetricsAddr:  "",
		Verbose:      false,
	}
}

// Validate ensures all configuration values are coherent.
func (c *Config) Validate() error {
	if c.URLFile == "" {
		return fmt.Errorf("URL file cannot be empty")
	}
	if c.Delay < 0 {
		return fmt.Errorf("delay cannot be negative")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.UserAgent == "" {
		return fmt.Errorf("user agent cannot be empty")
	}
	if c.CSVFile == "" {
		return fmt.Errorf("CSV output file cannot be empty")
	}
	if c.JSONFile == "" {
		return fmt.Errorf("JSON output file cannot be empty")
	}
	if c.OutputFormat != "csv" && c.OutputFormat != "json" && c.OutputFormat != "dual" {
		return fmt.Errorf("output format must be csv, json, or dual")
	}
	if c.CacheSize <= 0 {
		return fmt.Errorf("cache size must be positive")
	}
	return nil
}

// EnvString reads a string environment variable, reporting whether it was set.
func EnvString(key string) (string, bool) {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return "", false
	}
	return value, true
}

// EnvInt reads an integer environment variable.
func EnvInt(key string) (int, bool, error) {
	raw, ok := EnvString(key)
	if !ok {
		return 0, false, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false, fmt.Errorf("parse %s=%q: %w", key, raw, err)
	}
	return value, true, nil
}

// EnvDuration reads a duration environment variable. Bare integers are
// interpreted as seconds, so BSR_DELAY=3 and BSR_DELAY=3s are equivalent.
func EnvDuration(key string) (time.Duration, bool, error) {
	raw, ok := EnvString(key)
	if !ok {
		return 0, false, nil
	}
	if seconds, err := strconv.Atoi(raw); err == nil {
		return time.Duration(seconds) * time.Second, true, nil
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		return 0, false, fmt.Errorf("parse %s=%q: %w", key, raw, err)
	}
	return value, true, nil
}
