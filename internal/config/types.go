// Package config provides configuration loading for credprobe using Viper.
// Configuration is loaded from an optional YAML file with automatic
// environment variable binding.
//
// Environment variables use the CREDPROBE_ prefix and underscore-separated
// keys:
//   - CREDPROBE_SMTP_HOST -> smtp.host
//   - CREDPROBE_SMTP_PORT -> smtp.port
//   - CREDPROBE_PROBE_PARALLELISM -> probe.parallelism
//   - CREDPROBE_API_ENABLED -> api.enabled
package config

import (
	"os"
	"strings"
	"time"

	"github.com/relayaudit/credprobe/internal/smtp"
)

// SMTPConfig mirrors smtp.Config with struct tags for file/env loading.
type SMTPConfig struct {
	Host           string `yaml:"host"            mapstructure:"host"`
	Port           int    `yaml:"port"            mapstructure:"port"`
	AuthMethod     string `yaml:"auth_method"     mapstructure:"auth_method"`
	UseTLS         bool   `yaml:"use_tls"         mapstructure:"use_tls"`
	TimeoutSeconds int    `yaml:"timeout_seconds" mapstructure:"timeout_seconds"`
	MaxRetries     int    `yaml:"max_retries"     mapstructure:"max_retries"`
	EHLODomain     string `yaml:"ehlo_domain"     mapstructure:"ehlo_domain"`
}

// ToSMTPConfig builds the smtp package's immutable Config from the loaded
// values.
func (c SMTPConfig) ToSMTPConfig() smtp.Config {
	return smtp.Config{
		Host:       c.Host,
		Port:       uint16(c.Port),
		AuthMethod: smtp.AuthMethod(c.AuthMethod),
		UseTLS:     c.UseTLS,
		Timeout:    time.Duration(c.TimeoutSeconds) * time.Second,
		MaxRetries: uint16(c.MaxRetries),
		EHLODomain: c.EHLODomain,
	}
}

// ProbeConfig mirrors smtp.Params with struct tags for file/env loading.
type ProbeConfig struct {
	Usernames          []string `yaml:"usernames"             mapstructure:"usernames"`
	Passwords          []string `yaml:"passwords"             mapstructure:"passwords"`
	Parallelism        int      `yaml:"parallelism"           mapstructure:"parallelism"`
	StopOnFirstSuccess bool     `yaml:"stop_on_first_success" mapstructure:"stop_on_first_success"`
}

// ToParams builds the smtp package's Params from the loaded values.
func (c ProbeConfig) ToParams() smtp.Params {
	return smtp.Params{
		Usernames:          c.Usernames,
		Passwords:          c.Passwords,
		Parallelism:        uint16(c.Parallelism),
		StopOnFirstSuccess: c.StopOnFirstSuccess,
	}
}

// LoggingConfig controls the slog handler built by internal/logging.
type LoggingConfig struct {
	Level            string `yaml:"level"             mapstructure:"level"`
	Structured       bool   `yaml:"structured"        mapstructure:"structured"`
	StructuredFormat string `yaml:"structured_format" mapstructure:"structured_format"`
}

// StoreConfig controls the sqlite-backed run history store.
type StoreConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// APIConfig contains control-API settings.
//
// Note: APIKey is intentionally treated as a secret and should not be
// returned by any API endpoint.
type APIConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Host    string `yaml:"host"    mapstructure:"host"`
	Port    int    `yaml:"port"    mapstructure:"port"`
	APIKey  string `yaml:"api_key" mapstructure:"api_key" json:"-"`
}

// Config is the root, fully-loaded and validated configuration.
type Config struct {
	SMTP    SMTPConfig    `yaml:"smtp"    mapstructure:"smtp"`
	Probe   ProbeConfig   `yaml:"probe"   mapstructure:"probe"`
	Logging LoggingConfig `yaml:"logging" mapstructure:"logging"`
	Store   StoreConfig   `yaml:"store"   mapstructure:"store"`
	API     APIConfig     `yaml:"api"     mapstructure:"api"`
}

// ResolveConfigPath determines the config file path from a flag or
// environment variable, preferring the flag.
func ResolveConfigPath(flagValue string) string {
	if strings.TrimSpace(flagValue) != "" {
		return flagValue
	}
	if v := strings.TrimSpace(os.Getenv("CREDPROBE_CONFIG")); v != "" {
		return v
	}
	return ""
}

// Load loads configuration from a YAML file with environment variable
// overrides. This is the main entry point for loading configuration.
//
// Configuration priority (highest to lowest):
//  1. Environment variables (CREDPROBE_*)
//  2. Config file values
//  3. Default values
func Load(path string) (*Config, error) {
	return loadFromSource(path)
}
