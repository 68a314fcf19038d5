// Package memorystorage provides the in-memory storage backend.
// It reuses the jsondb cache without a backing file and is used by tests
// and by default when neither a DSN nor a storage file is configured.
package memorystorage

import (
	"context"

	"github.com/patric-chuzhbe/artcls/internal/db/jsondb"
)

// MemoryStorage is a jsondb cache that never touches the filesystem.
type MemoryStorage struct {
	*jsondb.JSONDB
}

// New returns an empty in-memory storage.
func New() (*MemoryStorage, error) {
	return &MemoryStorage{
		JSONDB: &jsondb.JSONDB{
			Cache: jsondb.NewCache(),
		},
	}, nil
}

// Close is a no-op: there is nothing to flush.
func (theStorage *MemoryStorage) Close() error {
	return nil
}

// Ping always succeeds for the in-memory backend.
func (theStorage *MemoryStorage) Ping(ctx context.Context) error {
	return nil
}
