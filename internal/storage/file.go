package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// FileSlot stores each key as <dataDir>/<key>.json
type FileSlot struct {
	dataDir string
}

// NewFileSlot creates a slot rooted at dataDir. The directory is created on first write.
func NewFileSlot(dataDir string) *FileSlot {
	return &FileSlot{dataDir: dataDir}
}

// Path returns the file that holds key
func (f *FileSlot) Path(key string) string {
	return filepath.Join(f.dataDir, key+".json")
}

func (f *FileSlot) Get(ctx context.Context, key string) ([]byte, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(f.Path(key))
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot file: %w", err)
	}

	return data, nil
}

// Set writes the value to a temp file and renames it over the old one,
// so readers never see a half-written snapshot.
func (f *FileSlot) Set(ctx context.Context, key string, value []byte) error {
	if err := validateKey(key); err != nil {
		return err
	}

	// Ensure data directory exists
	if err := os.MkdirAll(f.dataDir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	tmp, err := os.CreateTemp(f.dataDir, key+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	if _, err := tmp.Write(value); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write snapshot file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close snapshot file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		return fmt.Errorf("failed to set snapshot file permissions: %w", err)
	}

	if err := os.Rename(tmpPath, f.Path(key)); err != nil {
		return fmt.Errorf("failed to replace snapshot file: %w", err)
	}

	return nil
}

func (f *FileSlot) Close() error {
	return nil
}
