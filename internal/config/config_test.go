package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points PROOFPOINT_CONFIG at a fresh path and runs from an empty
// directory so no .env or user config leaks into the test.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(wd) })

	for _, k := range []string{
		"PROOFPOINT_SERVER_URL", "PROOFPOINT_TIMEOUT", "PROOFPOINT_RETRY_ATTEMPTS",
		"PROOFPOINT_REPORT_SINK", "PROOFPOINT_S3_BUCKET", "PROOFPOINT_LOG_LEVEL",
	} {
		t.Setenv(k, "")
	}
	t.Setenv("HOME", dir)
	return dir
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)
	os.Unsetenv("PROOFPOINT_CONFIG")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:5000", cfg.ServerURL)
	assert.Equal(t, 60*time.Second, cfg.Timeout)
	assert.Equal(t, 1, cfg.RetryAttempts)
	assert.Equal(t, 1, cfg.RetryConfig().MaxAttempts)
	assert.Equal(t, "local", cfg.ReportConfig().Type)
}

func TestLoadYAMLThenEnv(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "proofpoint.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server_url: https://verify.example.edu
timeout: 15s
retry_attempts: 3
report_sink: s3
s3:
  bucket: reports
  endpoint: http://minio:9000
`), 0644))
	t.Setenv("PROOFPOINT_CONFIG", path)
	t.Setenv("PROOFPOINT_RETRY_ATTEMPTS", "2")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://verify.example.edu", cfg.ServerURL)
	assert.Equal(t, 15*time.Second, cfg.Timeout)
	assert.Equal(t, 2, cfg.RetryAttempts, "env wins over file")
	assert.Equal(t, "reports", cfg.S3.Bucket)
	assert.Equal(t, "us-east-1", cfg.S3.Region, "defaults survive partial YAML")
	assert.Equal(t, "s3", cfg.ReportConfig().Type)
}

func TestLoadDotEnv(t *testing.T) {
	dir := isolate(t)
	os.Unsetenv("PROOFPOINT_CONFIG")
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("PROOFPOINT_TIMEOUT=5\n"), 0644))
	t.Cleanup(func() { os.Unsetenv("PROOFPOINT_TIMEOUT") })
	os.Unsetenv("PROOFPOINT_TIMEOUT")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	dir := isolate(t)
	t.Setenv("PROOFPOINT_CONFIG", filepath.Join(dir, "nope.yaml"))
	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty url", func(c *Config) { c.ServerURL = "" }},
		{"ftp url", func(c *Config) { c.ServerURL = "ftp://example.com" }},
		{"no host", func(c *Config) { c.ServerURL = "http://" }},
		{"zero timeout", func(c *Config) { c.Timeout = 0 }},
		{"zero retries", func(c *Config) { c.RetryAttempts = 0 }},
		{"unknown sink", func(c *Config) { c.ReportSink = "ftp" }},
		{"s3 without bucket", func(c *Config) { c.ReportSink = "s3" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
	assert.NoError(t, Defaults().Validate())
}
