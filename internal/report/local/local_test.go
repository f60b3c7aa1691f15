package local

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestSaveWritesFile(t *testing.T) {
	dir := t.TempDir()
	s, err := New(Config{Dir: dir})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	path, err := s.Save(context.Background(), "../escape/report.pdf", []byte("%PDF-1.7"), "application/pdf")
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if path != filepath.Join(dir, "report.pdf") {
		t.Errorf("unexpected path %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "%PDF-1.7" {
		t.Errorf("unexpected content %q", data)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("expected only the report in %s, got %d entries", dir, len(entries))
	}
}

func TestSaveOverwrites(t *testing.T) {
	dir := t.TempDir()
	s, _ := New(Config{Dir: dir})
	s.Save(context.Background(), "r.pdf", []byte("old"), "")
	path, err := s.Save(context.Background(), "r.pdf", []byte("new"), "")
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "new" {
		t.Errorf("expected overwrite, got %q", data)
	}
}

func TestNewRejectsMissingDir(t *testing.T) {
	if _, err := New(Config{Dir: filepath.Join(t.TempDir(), "missing")}); err == nil {
		t.Fatal("expected error for missing dir without CreateDirs")
	}

	file := filepath.Join(t.TempDir(), "file")
	os.WriteFile(file, nil, 0644)
	if _, err := New(Config{Dir: file}); err == nil {
		t.Fatal("expected error for non-directory")
	}
}
