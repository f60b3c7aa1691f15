// Package config loads client configuration from a YAML file, a .env file
// and environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/proofpoint/proofpoint/internal/report"
	"github.com/proofpoint/proofpoint/internal/report/local"
	s3sink "github.com/proofpoint/proofpoint/internal/report/s3"
	"github.com/proofpoint/proofpoint/pkg/credentials"
	"github.com/proofpoint/proofpoint/pkg/logging"
	"github.com/proofpoint/proofpoint/pkg/retry"
)

// Config holds all client configuration.
type Config struct {
	// Server
	ServerURL     string        `yaml:"server_url"`
	Timeout       time.Duration `yaml:"timeout"`
	RetryAttempts int           `yaml:"retry_attempts"`

	// Logging
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
	LogOutput string `yaml:"log_output"`

	// Session file with token, user and theme
	CredentialsFile string `yaml:"credentials_file"`

	// Optional Prometheus listener for the interactive shell
	MetricsAddr string `yaml:"metrics_addr"`

	// Report sink ("local" or "s3")
	ReportSink string        `yaml:"report_sink"`
	ReportDir  string        `yaml:"report_dir"`
	S3         s3sink.Config `yaml:"s3"`
}

// Defaults returns the configuration used when nothing is set.
func Defaults() *Config {
	return &Config{
		ServerURL:       "http://localhost:5000",
		Timeout:         60 * time.Second,
		RetryAttempts:   1,
		LogLevel:        "warn",
		LogFormat:       "console",
		LogOutput:       "stderr",
		CredentialsFile: credentials.DefaultPath(),
		ReportSink:      "local",
		ReportDir:       ".",
		S3:              s3sink.Config{Region: "us-east-1"},
	}
}

// DefaultPath returns the default YAML config location.
func DefaultPath() string {
	return filepath.Join(filepath.Dir(credentials.DefaultPath()), "config.yaml")
}

// Load reads .env, then the YAML file named by PROOFPOINT_CONFIG (or the
// default path if it exists), then PROOFPOINT_* variables, and validates
// the result.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := Defaults()

	path := os.Getenv("PROOFPOINT_CONFIG")
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if err := cfg.loadFile(path); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.ServerURL = envOr("PROOFPOINT_SERVER_URL", c.ServerURL)
	c.Timeout = envDuration("PROOFPOINT_TIMEOUT", c.Timeout)
	c.RetryAttempts = envInt("PROOFPOINT_RETRY_ATTEMPTS", c.RetryAttempts)
	c.LogLevel = envOr("PROOFPOINT_LOG_LEVEL", c.LogLevel)
	c.LogFormat = envOr("PROOFPOINT_LOG_FORMAT", c.LogFormat)
	c.LogOutput = envOr("PROOFPOINT_LOG_OUTPUT", c.LogOutput)
	c.CredentialsFile = envOr("PROOFPOINT_CREDENTIALS_FILE", c.CredentialsFile)
	c.MetricsAddr = envOr("PROOFPOINT_METRICS_ADDR", c.MetricsAddr)
	c.ReportSink = envOr("PROOFPOINT_REPORT_SINK", c.ReportSink)
	c.ReportDir = envOr("PROOFPOINT_REPORT_DIR", c.ReportDir)
	c.S3.Endpoint = envOr("PROOFPOINT_S3_ENDPOINT", c.S3.Endpoint)
	c.S3.Bucket = envOr("PROOFPOINT_S3_BUCKET", c.S3.Bucket)
	c.S3.Prefix = envOr("PROOFPOINT_S3_PREFIX", c.S3.Prefix)
	c.S3.AccessKey = envOr("PROOFPOINT_S3_ACCESS_KEY", c.S3.AccessKey)
	c.S3.SecretKey = envOr("PROOFPOINT_S3_SECRET_KEY", c.S3.SecretKey)
	c.S3.Region = envOr("PROOFPOINT_S3_REGION", c.S3.Region)
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.ServerURL == "" {
		return fmt.Errorf("server URL is required")
	}
	u, err := url.Parse(c.ServerURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("server URL %q must be an http(s) URL", c.ServerURL)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	if c.RetryAttempts < 1 {
		return fmt.Errorf("retry attempts must be at least 1, got %d", c.RetryAttempts)
	}
	switch c.ReportSink {
	case "local":
	case "s3":
		if c.S3.Bucket == "" {
			return fmt.Errorf("PROOFPOINT_S3_BUCKET is required for the s3 report sink")
		}
	default:
		return fmt.Errorf("unknown report sink %q", c.ReportSink)
	}
	return nil
}

// RetryConfig returns the retry policy for idempotent reads.
func (c *Config) RetryConfig() retry.Config {
	rc := retry.DefaultConfig()
	rc.MaxAttempts = c.RetryAttempts
	return rc
}

// LoggingConfig returns the logger settings.
func (c *Config) LoggingConfig() logging.Config {
	return logging.Config{Level: c.LogLevel, Format: c.LogFormat, OutputPath: c.LogOutput}
}

// ReportConfig returns the report sink settings.
func (c *Config) ReportConfig() report.Config {
	return report.Config{
		Type:  c.ReportSink,
		Local: local.Config{Dir: c.ReportDir, CreateDirs: true},
		S3:    c.S3,
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return i
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		if secs, convErr := strconv.Atoi(v); convErr == nil {
			return time.Duration(secs) * time.Second
		}
		return fallback
	}
	return d
}
