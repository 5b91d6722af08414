// Package repository contains data access layer abstractions.
// Implementations live in subpackages (mongodb, postgres) inside this directory.
package repository

import (
	"context"
	"errors"

	"github.com/math-u-t/litedrive/internal/model"
)

// ErrNotFound is returned when no record matches the given id and owner.
// Malformed ids are reported as ErrNotFound too.
var ErrNotFound = errors.New("record not found")

// FileRepository defines persistence for file metadata. No business logic here.
// Every method is scoped by owner; there is no cross-owner lookup.
// Implementations acquire their connection on entry and release it before returning.
type FileRepository interface {
	// Insert stores a new record and returns the store-generated id.
	Insert(ctx context.Context, rec *model.FileRecord) (string, error)

	// FindOne returns the record with the given id owned by ownerID, or ErrNotFound.
	FindOne(ctx context.Context, id, ownerID string) (*model.FileRecord, error)

	// DeleteOne removes the record with the given id owned by ownerID and
	// returns the number of records deleted (0 or 1).
	DeleteOne(ctx context.Context, id, ownerID string) (int64, error)

	// FindByOwner returns all records of ownerID, most recent first.
	FindByOwner(ctx context.Context, ownerID string) ([]model.FileRecord, error)

	// Ping checks connectivity with the backing store.
	Ping(ctx context.Context) error
}
