package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileStore keeps all preferences in one JSON object on disk.
type FileStore struct {
	path string
	mu   sync.Mutex
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Theme(ctx context.Context, user string) (Theme, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prefs, err := s.load()
	if err != nil {
		return ThemeLight, err
	}
	if theme, ok := prefs[user]; ok {
		return theme, nil
	}
	return ThemeLight, nil
}

func (s *FileStore) SetTheme(ctx context.Context, user string, theme Theme) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prefs, err := s.load()
	if err != nil {
		return err
	}
	prefs[user] = theme

	err = os.MkdirAll(filepath.Dir(s.path), 0755)
	if err != nil {
		return fmt.Errorf("create directory for %s: %w", s.path, err)
	}

	jsonData, err := json.MarshalIndent(prefs, "", "  ")
	if err != nil {
		return fmt.Errorf("encode preferences: %w", err)
	}

	// Write to a temp file first so a crash never leaves half a file.
	tmp := s.path + ".tmp"
	err = os.WriteFile(tmp, jsonData, 0644)
	if err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	return os.Rename(tmp, s.path)
}

func (s *FileStore) load() (map[string]Theme, error) {
	prefs := make(map[string]Theme)

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return prefs, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	if len(data) == 0 {
		return prefs, nil
	}

	err = json.Unmarshal(data, &prefs)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.path, err)
	}
	return prefs, nil
}
