package storage

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileStore persists each key as a file under a root directory. Keys are
// hex-encoded into file names so arbitrary key strings stay filesystem-safe.
type FileStore struct {
	root string
}

// NewFileStore creates the root directory if needed and returns a store over
// it. A "file://" prefix on root is tolerated.
func NewFileStore(root string) (*FileStore, error) {
	cleanRoot := strings.Replace(root, "file://", "", 1)

	if err := os.MkdirAll(cleanRoot, 0o755); err != nil {
		return nil, fmt.Errorf("create storage root %s: %w", cleanRoot, err)
	}

	return &FileStore{root: cleanRoot}, nil
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.root, hex.EncodeToString([]byte(key))+".json")
}

func (s *FileStore) Get(key string) ([]byte, error) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("read key %s: %w", key, err)
	}

	return data, nil
}

func (s *FileStore) Set(key string, value []byte) error {
	if err := os.WriteFile(s.path(key), value, 0o644); err != nil {
		return fmt.Errorf("write key %s: %w", key, err)
	}

	return nil
}

func (s *FileStore) Delete(key string) error {
	if err := os.Remove(s.path(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete key %s: %w", key, err)
	}

	return nil
}
