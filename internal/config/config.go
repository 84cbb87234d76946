// Package config provides configuration loading and validation for
// credprobe.
//
// Configuration is loaded with the following priority (highest to lowest):
//  1. Command-line flags (not handled here, see cmd/credprobe/main.go)
//  2. Environment variables (CREDPROBE_* prefix)
//  3. YAML config file (if specified with --config)
//  4. Hardcoded defaults
//
// Environment variables are mapped from CREDPROBE_CATEGORY_SETTING format,
// e.g., CREDPROBE_SMTP_HOST maps to smtp.host in YAML.
//
// All configuration is validated during Load() to ensure correctness early.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// initConfig sets up the config loader with defaults, env binding, and config file.
func initConfig(configPath string) (*viper.Viper, error) {
	v := viper.New()

	setDefaults(v)

	// Uses CREDPROBE_ prefix: CREDPROBE_SMTP_HOST -> smtp.host
	v.SetEnvPrefix("CREDPROBE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return v, nil
}

// setDefaults configures all default values.
func setDefaults(v *viper.Viper) {
	// SMTP target defaults
	v.SetDefault("smtp.port", 25)
	v.SetDefault("smtp.auth_method", "AUTO")
	v.SetDefault("smtp.use_tls", false)
	v.SetDefault("smtp.timeout_seconds", 10)
	v.SetDefault("smtp.max_retries", 2)
	v.SetDefault("smtp.ehlo_domain", "localhost")

	// Probe defaults
	v.SetDefault("probe.usernames", []string{})
	v.SetDefault("probe.passwords", []string{})
	v.SetDefault("probe.parallelism", 4)
	v.SetDefault("probe.stop_on_first_success", false)

	// Logging defaults
	v.SetDefault("logging.level", "INFO")
	v.SetDefault("logging.structured", false)
	v.SetDefault("logging.structured_format", "json")

	// Store defaults
	v.SetDefault("store.path", "credprobe.db")

	// Control API defaults. Disabled and bound to localhost by default.
	v.SetDefault("api.enabled", false)
	v.SetDefault("api.host", "127.0.0.1")
	v.SetDefault("api.port", 8880)
	v.SetDefault("api.api_key", "")
}

// loadFromSource loads configuration from file and environment.
func loadFromSource(configPath string) (*Config, error) {
	v, err := initConfig(configPath)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}

	loadSMTPConfig(v, cfg)
	loadProbeConfig(v, cfg)
	loadLoggingConfig(v, cfg)
	loadStoreConfig(v, cfg)
	loadAPIConfig(v, cfg)

	if err := normalizeConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func loadSMTPConfig(v *viper.Viper, cfg *Config) {
	cfg.SMTP.Host = v.GetString("smtp.host")
	cfg.SMTP.Port = v.GetInt("smtp.port")
	cfg.SMTP.AuthMethod = strings.ToUpper(v.GetString("smtp.auth_method"))
	cfg.SMTP.UseTLS = v.GetBool("smtp.use_tls")
	cfg.SMTP.TimeoutSeconds = v.GetInt("smtp.timeout_seconds")
	cfg.SMTP.MaxRetries = v.GetInt("smtp.max_retries")
	cfg.SMTP.EHLODomain = v.GetString("smtp.ehlo_domain")
}

func loadProbeConfig(v *viper.Viper, cfg *Config) {
	cfg.Probe.Usernames = getStringSliceOrSplit(v, "probe.usernames")
	cfg.Probe.Passwords = getStringSliceOrSplit(v, "probe.passwords")
	cfg.Probe.Parallelism = v.GetInt("probe.parallelism")
	cfg.Probe.StopOnFirstSuccess = v.GetBool("probe.stop_on_first_success")
}

func loadLoggingConfig(v *viper.Viper, cfg *Config) {
	cfg.Logging.Level = strings.ToUpper(v.GetString("logging.level"))
	cfg.Logging.Structured = v.GetBool("logging.structured")
	cfg.Logging.StructuredFormat = v.GetString("logging.structured_format")
}

func loadStoreConfig(v *viper.Viper, cfg *Config) {
	cfg.Store.Path = v.GetString("store.path")
}

func loadAPIConfig(v *viper.Viper, cfg *Config) {
	cfg.API.Enabled = v.GetBool("api.enabled")
	cfg.API.Host = v.GetString("api.host")
	cfg.API.Port = v.GetInt("api.port")
	cfg.API.APIKey = v.GetString("api.api_key")
}

// getStringSliceOrSplit handles both slice and comma-separated string values,
// since CREDPROBE_PROBE_USERNAMES arrives from the environment as one string.
func getStringSliceOrSplit(v *viper.Viper, key string) []string {
	if s, ok := v.Get(key).(string); ok && s != "" {
		parts := strings.Split(s, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				result = append(result, p)
			}
		}
		return result
	}
	if slice := v.GetStringSlice(key); len(slice) > 0 {
		result := make([]string, 0, len(slice))
		for _, s := range slice {
			s = strings.TrimSpace(s)
			if s != "" {
				result = append(result, s)
			}
		}
		return result
	}
	return nil
}

// normalizeConfig validates and normalizes the configuration.
func normalizeConfig(cfg *Config) error {
	if strings.TrimSpace(cfg.SMTP.Host) == "" {
		return errors.New("smtp.host is required")
	}
	if cfg.SMTP.Port <= 0 || cfg.SMTP.Port > 65535 {
		return errors.New("smtp.port must be 1..65535")
	}
	switch cfg.SMTP.AuthMethod {
	case "AUTO", "LOGIN", "PLAIN", "CRAM-MD5", "CRAM_MD5":
	default:
		return fmt.Errorf("smtp.auth_method %q is not recognized", cfg.SMTP.AuthMethod)
	}

	if cfg.Probe.Parallelism <= 0 {
		cfg.Probe.Parallelism = 1
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "INFO"
	}
	if cfg.Logging.StructuredFormat == "" {
		cfg.Logging.StructuredFormat = "json"
	}

	if cfg.Store.Path == "" {
		cfg.Store.Path = "credprobe.db"
	}

	if cfg.API.Host == "" {
		cfg.API.Host = "127.0.0.1"
	}
	if cfg.API.Enabled {
		if cfg.API.Port <= 0 || cfg.API.Port > 65535 {
			return errors.New("api.port must be 1..65535")
		}
	}

	return nil
}
