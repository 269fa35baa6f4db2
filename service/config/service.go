package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

type service struct {
	viper  *viper.Viper
	config *Config
}

// Service holds the loaded configuration and persists edits.
type Service interface {
	Get() *Config
	Path() string
	Reload() (*Config, error)
	SetValue(key, value string) error
}

// Load reads path (DefaultPath when empty) and applies environment overrides.
// A missing file is not an error; defaults are used.
func Load(path string) (*Config, error) {
	svc, err := NewService(path)
	if err != nil {
		return nil, err
	}
	return svc.Get(), nil
}

// NewService loads the configuration at path and returns a Service bound to it.
func NewService(path string) (Service, error) {
	if path == "" {
		path = DefaultPath()
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v, DefaultConfig())

	s := &service{viper: v}
	if _, err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *service) Get() *Config {
	return s.config
}

func (s *service) Path() string {
	return s.viper.ConfigFileUsed()
}

// Reload re-reads the file from disk.
func (s *service) Reload() (*Config, error) {
	if err := s.viper.ReadInConfig(); err != nil && !isNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := s.viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	s.config = cfg
	return cfg, nil
}

// SetValue sets a dotted key (e.g. api.base_url) and saves the file. Only the file's own
// contents and defaults are written back; environment overrides stay out of it.
func (s *service) SetValue(key, value string) error {
	if !s.viper.IsSet(key) {
		return fmt.Errorf("unknown config key %q", key)
	}

	fileOnly := viper.New()
	fileOnly.SetConfigFile(s.Path())
	fileOnly.SetConfigType("yaml")
	setDefaults(fileOnly, DefaultConfig())
	if err := fileOnly.ReadInConfig(); err != nil && !isNotExist(err) {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	fileOnly.Set(key, value)

	cfg := DefaultConfig()
	if err := fileOnly.Unmarshal(cfg); err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	if err := write(s.Path(), cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	_, err := s.Reload()
	return err
}

// WriteDefault writes DefaultConfig to path unless a file already exists.
func WriteDefault(path string) error {
	if path == "" {
		path = DefaultPath()
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists: %s", path)
	}
	return write(path, DefaultConfig())
}

func write(path string, cfg *Config) error {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to close YAML encoder: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// setDefaults registers every key so AutomaticEnv can override it.
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("log_level", cfg.LogLevel)
	v.SetDefault("verbose", cfg.Verbose)
	v.SetDefault("log_json", cfg.LogJSON)
	v.SetDefault("db_path", cfg.DBPath)
	v.SetDefault("concurrency", cfg.Concurrency)
	v.SetDefault("api.base_url", cfg.API.BaseURL)
	v.SetDefault("api.api_key", cfg.API.APIKey)
	v.SetDefault("api.timeout", cfg.API.Timeout)
	v.SetDefault("api.rate_limit", cfg.API.RateLimit)
	v.SetDefault("aws.profile", cfg.AWS.Profile)
	v.SetDefault("aws.region", cfg.AWS.Region)
	v.SetDefault("aws.endpoint", cfg.AWS.Endpoint)
	v.SetDefault("aws.access_key_id", cfg.AWS.AccessKeyID)
	v.SetDefault("aws.secret_access_key", cfg.AWS.SecretAccessKey)
	v.SetDefault("server.port", cfg.Server.Port)
}

func isNotExist(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist)
}
