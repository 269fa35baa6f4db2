// Package config loads receipt-parser settings from YAML and the environment.
package config

import (
	"os"
	"path/filepath"
	"time"
)

// EnvPrefix is prepended to environment overrides, e.g. RECEIPT_PARSER_API_BASE_URL.
const EnvPrefix = "RECEIPT_PARSER"

// Config is the root configuration.
type Config struct {
	LogLevel    string       `yaml:"log_level" mapstructure:"log_level"`
	Verbose     bool         `yaml:"verbose" mapstructure:"verbose"`
	LogJSON     bool         `yaml:"log_json" mapstructure:"log_json"`
	DBPath      string       `yaml:"db_path" mapstructure:"db_path"`
	Concurrency int          `yaml:"concurrency" mapstructure:"concurrency"`
	API         APIConfig    `yaml:"api" mapstructure:"api"`
	AWS         AWSConfig    `yaml:"aws" mapstructure:"aws"`
	Server      ServerConfig `yaml:"server" mapstructure:"server"`
}

// APIConfig configures the customer info backend.
type APIConfig struct {
	BaseURL   string        `yaml:"base_url" mapstructure:"base_url"`
	APIKey    string        `yaml:"api_key" mapstructure:"api_key"`
	Timeout   time.Duration `yaml:"timeout" mapstructure:"timeout"`
	RateLimit float64       `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// AWSConfig selects credentials for s3:// receipt references. Endpoint and static keys
// target S3-compatible stores.
type AWSConfig struct {
	Profile         string `yaml:"profile" mapstructure:"profile"`
	Region          string `yaml:"region" mapstructure:"region"`
	Endpoint        string `yaml:"endpoint,omitempty" mapstructure:"endpoint"`
	AccessKeyID     string `yaml:"access_key_id,omitempty" mapstructure:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key,omitempty" mapstructure:"secret_access_key"`
}

// ServerConfig configures `receipt-parser serve`.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		LogLevel:    "info",
		DBPath:      DefaultDBPath(),
		Concurrency: 4,
		API: APIConfig{
			BaseURL:   "https://api.revenuecat.com",
			Timeout:   30 * time.Second,
			RateLimit: 5,
		},
		AWS: AWSConfig{
			Region: "us-east-1",
		},
		Server: ServerConfig{
			Port: 8080,
		},
	}
}

// Dir returns ~/.receipt-parser, falling back to the working directory.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".receipt-parser"
	}
	return filepath.Join(home, ".receipt-parser")
}

// DefaultPath is where Load looks when no path is given.
func DefaultPath() string {
	return filepath.Join(Dir(), "config.yaml")
}

// DefaultDBPath is the default history database.
func DefaultDBPath() string {
	return filepath.Join(Dir(), "history.db")
}
