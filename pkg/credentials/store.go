// Package credentials persists the signed-in user's token and preferences as a
// small key-value file outside process memory.
package credentials

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
)

// Keys stored by the client.
const (
	KeyToken    = "authToken"
	KeyUserName = "userName"
	KeyUserRole = "userRole"
	KeyTheme    = "theme"
)

// Store is a string key-value store. Get returns "" for missing keys.
type Store interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
	Clear() error
}

// Record is the signed-in user as stored.
type Record struct {
	Token    string
	UserName string
	UserRole string
}

// Load reads the signed-in user from s.
func Load(s Store) (Record, error) {
	var r Record
	var err error
	if r.Token, err = s.Get(KeyToken); err != nil {
		return Record{}, err
	}
	if r.UserName, err = s.Get(KeyUserName); err != nil {
		return Record{}, err
	}
	if r.UserRole, err = s.Get(KeyUserRole); err != nil {
		return Record{}, err
	}
	return r, nil
}

// Save writes the signed-in user to s.
func Save(s Store, r Record) error {
	if err := s.Set(KeyToken, r.Token); err != nil {
		return err
	}
	if err := s.Set(KeyUserName, r.UserName); err != nil {
		return err
	}
	return s.Set(KeyUserRole, r.UserRole)
}

// DefaultPath returns the default location of the session file.
func DefaultPath() string {
	if runtime.GOOS == "windows" {
		appData := os.Getenv("APPDATA")
		if appData == "" {
			home, _ := os.UserHomeDir()
			appData = filepath.Join(home, "AppData", "Roaming")
		}
		return filepath.Join(appData, "ProofPoint", "session.json")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "proofpoint", "session.json")
}

// FileStore keeps the values in a JSON object on disk. Every operation reads
// the file, so concurrent processes see each other's writes.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore returns a store backed by path. The file is created on the
// first write.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the file backing the store.
func (f *FileStore) Path() string {
	return f.path
}

func (f *FileStore) read() (map[string]string, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.path, err)
	}
	values := map[string]string{}
	if len(data) == 0 {
		return values, nil
	}
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("parse %s: %w", f.path, err)
	}
	return values, nil
}

func (f *FileStore) write(values map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return err
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return err
	}
	return os.Rename(tmp, f.path)
}

// Get returns the value for key, or "" if it is not set.
func (f *FileStore) Get(key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	values, err := f.read()
	if err != nil {
		return "", err
	}
	return values[key], nil
}

// Set stores value under key.
func (f *FileStore) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	values, err := f.read()
	if err != nil {
		// A corrupt file is replaced rather than blocking sign-in.
		values = map[string]string{}
	}
	values[key] = value
	return f.write(values)
}

// Delete removes key.
func (f *FileStore) Delete(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	values, err := f.read()
	if err != nil {
		return err
	}
	if _, ok := values[key]; !ok {
		return nil
	}
	delete(values, key)
	return f.write(values)
}

// Clear removes every key by deleting the file.
func (f *FileStore) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// MemoryStore is an in-process Store.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: map[string]string{}}
}

func (m *MemoryStore) Get(key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.values[key], nil
}

func (m *MemoryStore) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *MemoryStore) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values = map[string]string{}
	return nil
}

// Len returns the number of stored keys.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.values)
}
