// Package local writes reports to a directory.
package local

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/proofpoint/proofpoint/pkg/logging"
	"github.com/proofpoint/proofpoint/pkg/metrics"
)

// Config holds local sink settings.
type Config struct {
	Dir        string `yaml:"dir"`
	CreateDirs bool   `yaml:"create_dirs"`
}

// Sink writes reports under a directory.
type Sink struct {
	dir string
}

// New creates a local sink. An empty Dir means the working directory.
func New(cfg Config) (*Sink, error) {
	dir := cfg.Dir
	if dir == "" {
		dir = "."
	}

	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) && cfg.CreateDirs {
			if mkErr := os.MkdirAll(dir, 0755); mkErr != nil {
				return nil, fmt.Errorf("create report dir %s: %w", dir, mkErr)
			}
		} else {
			return nil, fmt.Errorf("stat report dir %s: %w", dir, err)
		}
	} else if !info.IsDir() {
		return nil, fmt.Errorf("report dir %s is not a directory", dir)
	}

	return &Sink{dir: dir}, nil
}

// Save writes data to <dir>/<name> through a temp file and returns the path.
func (s *Sink) Save(_ context.Context, name string, data []byte, _ string) (string, error) {
	path := filepath.Join(s.dir, filepath.Base(name))

	tmp, err := os.CreateTemp(s.dir, ".report-*")
	if err != nil {
		metrics.RecordReportSaved(s.Type(), false)
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		metrics.RecordReportSaved(s.Type(), false)
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		metrics.RecordReportSaved(s.Type(), false)
		return "", err
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		logging.Warn("chmod report", logging.String("path", tmpPath), logging.Err(err))
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		metrics.RecordReportSaved(s.Type(), false)
		return "", fmt.Errorf("rename to %s: %w", path, err)
	}

	metrics.RecordReportSaved(s.Type(), true)
	logging.Debug("report saved", logging.String("path", path), logging.Int("size", len(data)))
	return path, nil
}

// Type returns "local".
func (s *Sink) Type() string { return "local" }
