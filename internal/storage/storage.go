// Package storage is the host key/value persistence capability. Every other persisted concern
// (definition cache, drafts, settings, tokens) is a JSON blob under one namespaced key.
package storage

import (
	"context"
	"fmt"
	"path/filepath"
)

// Store is a flat key/value store of opaque byte blobs.
type Store interface {
	// Get returns the value for key; found is false when the key does not exist.
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	// Delete is a no-op for missing keys.
	Delete(ctx context.Context, key string) error
	Close() error
}

const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Open builds the store for a configured backend rooted at dataDir.
func Open(backend, dataDir string) (Store, error) {
	switch backend {
	case BackendFile, "":
		return NewFileStore(filepath.Join(dataDir, "store"))
	case BackendSQLite:
		return OpenSQLite(filepath.Join(dataDir, "deckreport.db"))
	case BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}

// Key joins the namespace and a logical name as "<namespace>:<name>".
func Key(namespace, name string) string {
	return namespace + ":" + name
}
