package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveConfigPath(t *testing.T) {
	tests := []struct {
		name     string
		flag     string
		envValue string
		want     string
	}{
		{"flag takes precedence", "/path/from/flag", "/path/from/env", "/path/from/flag"},
		{"env when no flag", "", "/path/from/env", "/path/from/env"},
		{"empty when neither", "", "", ""},
		{"whitespace flag", "  ", "/path/from/env", "/path/from/env"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("CREDPROBE_CONFIG", tt.envValue)
			got := ResolveConfigPath(tt.flag)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadDefault(t *testing.T) {
	t.Setenv("CREDPROBE_SMTP_HOST", "mail.example.com")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "mail.example.com", cfg.SMTP.Host)
	assert.Equal(t, 25, cfg.SMTP.Port)
	assert.Equal(t, "AUTO", cfg.SMTP.AuthMethod)
	assert.Equal(t, 4, cfg.Probe.Parallelism)
	assert.Equal(t, "credprobe.db", cfg.Store.Path)
	assert.False(t, cfg.API.Enabled)
	assert.Equal(t, "127.0.0.1", cfg.API.Host)
}

func TestLoadFromFile(t *testing.T) {
	content := `
smtp:
  host: "mail.example.com"
  port: 587
  use_tls: true
  auth_method: "LOGIN"

probe:
  usernames:
    - "alice"
    - "bob"
  passwords:
    - "hunter2"
  parallelism: 8
  stop_on_first_success: true

logging:
  level: "DEBUG"
  structured: true
  structured_format: "text"

api:
  enabled: true
  port: 9090
`
	dir := t.TempDir()
	path := filepath.Join(dir, "test-config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "mail.example.com", cfg.SMTP.Host)
	assert.Equal(t, 587, cfg.SMTP.Port)
	assert.True(t, cfg.SMTP.UseTLS)
	assert.Equal(t, "LOGIN", cfg.SMTP.AuthMethod)
	assert.Equal(t, []string{"alice", "bob"}, cfg.Probe.Usernames)
	assert.Equal(t, 8, cfg.Probe.Parallelism)
	assert.True(t, cfg.Probe.StopOnFirstSuccess)
	assert.Equal(t, "DEBUG", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Structured)
	assert.True(t, cfg.API.Enabled)
	assert.Equal(t, 9090, cfg.API.Port)
}

func TestLoadInvalidPath(t *testing.T) {
	_, err := Load("/nonexistent/path/to/config.yaml")
	assert.Error(t, err)
}

func TestLoadInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("smtp:\n  port: [invalid"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestNormalizeMissingHost(t *testing.T) {
	_, err := Load("")
	assert.Error(t, err)
}

func TestNormalizeInvalidPort(t *testing.T) {
	content := `
smtp:
  host: "mail.example.com"
  port: 0
`
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestNormalizeUnknownAuthMethod(t *testing.T) {
	content := `
smtp:
  host: "mail.example.com"
  auth_method: "NTLM"
`
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestNormalizeZeroParallelismDefaultsToOne(t *testing.T) {
	content := `
smtp:
  host: "mail.example.com"
probe:
  parallelism: 0
`
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.Probe.Parallelism)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("CREDPROBE_SMTP_HOST", "192.168.1.1")
	t.Setenv("CREDPROBE_SMTP_PORT", "2525")
	t.Setenv("CREDPROBE_PROBE_PARALLELISM", "16")
	t.Setenv("CREDPROBE_PROBE_USERNAMES", "alice, bob")
	t.Setenv("CREDPROBE_LOGGING_LEVEL", "debug")
	t.Setenv("CREDPROBE_API_ENABLED", "true")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "192.168.1.1", cfg.SMTP.Host)
	assert.Equal(t, 2525, cfg.SMTP.Port)
	assert.Equal(t, 16, cfg.Probe.Parallelism)
	assert.Equal(t, []string{"alice", "bob"}, cfg.Probe.Usernames)
	assert.Equal(t, "DEBUG", cfg.Logging.Level)
	assert.True(t, cfg.API.Enabled)
}
