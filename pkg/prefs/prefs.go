// Package prefs persists small client-side preferences as a JSON key-value file.
package prefs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

const (
	FileName = ".bpdash.prefs.json"

	ThemeKey     = "bpdash.theme"
	ThemeDark    = "dark"
	ThemeLight   = "light"
	DefaultTheme = ThemeDark
)

// Store is a string key-value store.
type Store interface {
	Get(key, def string) string
	Set(key, value string) error
}

// FileStore keeps values in memory and writes the whole file on each Set.
type FileStore struct {
	path   string
	mu     sync.RWMutex
	values map[string]string
}

// DefaultPath returns ~/.bpdash.prefs.json.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, FileName), nil
}

// Open reads path. A missing file gives an empty store.
func Open(path string) (*FileStore, error) {
	s := &FileStore{path: path, values: map[string]string{}}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return s, nil
	}
	if err := json.Unmarshal(data, &s.values); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return s, nil
}

func (s *FileStore) Get(key, def string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if v, ok := s.values[key]; ok {
		return v
	}
	return def
}

func (s *FileStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value

	data, err := json.MarshalIndent(s.values, "", "  ")
	if err != nil {
		return err
	}
	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return err
	}
	return os.Rename(tmpPath, s.path)
}

// MemoryStore is a Store that is never persisted.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: map[string]string{}}
}

func (m *MemoryStore) Get(key, def string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if v, ok := m.values[key]; ok {
		return v
	}
	return def
}

func (m *MemoryStore) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

// Theme reads the theme preference, falling back to DefaultTheme for
// unknown values.
func Theme(s Store) string {
	switch v := s.Get(ThemeKey, DefaultTheme); v {
	case ThemeDark, ThemeLight:
		return v
	}
	return DefaultTheme
}

// ToggleTheme flips the theme, stores it and returns the new value. The
// returned theme is valid even if the write failed.
func ToggleTheme(s Store) (string, error) {
	next := ThemeLight
	if Theme(s) == ThemeLight {
		next = ThemeDark
	}
	return next, s.Set(ThemeKey, next)
}
