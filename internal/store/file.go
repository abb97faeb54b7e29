package store

import (
	"context"
	"errors"
	"fmt"
	"os"

	"lockbox/internal/filex"
)

// FileStore keeps the record in a single local file, written atomically with
// owner-only permissions. This is the default backend.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Load(ctx context.Context) ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading vault file: %w", err)
	}
	return data, nil
}

func (s *FileStore) Save(ctx context.Context, data []byte) error {
	if err := filex.WriteAtomic(s.path, data, 0o600); err != nil {
		return fmt.Errorf("writing vault file: %w", err)
	}
	return nil
}
