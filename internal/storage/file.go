package storage

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	domainErrors "github.com/thomas-vilte/deckreport/internal/errors"
)

// FileStore keeps one file per key under a directory. Writes go through a temp file and a rename
// so a crash never leaves a half-written blob behind.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, domainErrors.ErrStorageWrite.WithError(fmt.Errorf("error creating store directory: %w", err))
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, url.QueryEscape(key)+".json")
}

func (s *FileStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, domainErrors.ErrStorageRead.WithError(err).WithContext("key", key)
	}
	return data, true, nil
}

func (s *FileStore) Set(_ context.Context, key string, value []byte) error {
	target := s.path(key)
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, value, 0600); err != nil {
		return domainErrors.ErrStorageWrite.WithError(err).WithContext("key", key)
	}
	if err := os.Rename(tmp, target); err != nil {
		_ = os.Remove(tmp)
		return domainErrors.ErrStorageWrite.WithError(err).WithContext("key", key)
	}
	return nil
}

func (s *FileStore) Delete(_ context.Context, key string) error {
	if err := os.Remove(s.path(key)); err != nil && !os.IsNotExist(err) {
		return domainErrors.ErrStorageWrite.WithError(err).WithContext("key", key)
	}
	return nil
}

func (s *FileStore) Close() error { return nil }
