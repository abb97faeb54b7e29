// Package store provides durable byte stores for the encrypted vault record.
//
// Every implementation persists a single opaque blob. Only the vault session
// manager writes it; nothing else may touch the storage key.
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Load when no record has been persisted yet.
var ErrNotFound = errors.New("vault record not found")

// Store is a durable key-value byte store holding one serialized vault
// record.
type Store interface {
	// Load returns the persisted record bytes, or ErrNotFound.
	Load(ctx context.Context) ([]byte, error)

	// Save durably writes the record bytes, replacing any previous value.
	Save(ctx context.Context, data []byte) error
}
