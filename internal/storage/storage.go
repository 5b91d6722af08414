package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// Package storage contains object storage backends addressed by a key (bucket + path).
// Implementations never overwrite an existing object and never retry.

// ErrObjectExists is returned by Put when an object is already stored under the key.
var ErrObjectExists = errors.New("object already exists")

// PutObjectOptions define optional parameters for uploading objects.
// Size should be the exact number of bytes if known; set to -1 when unknown.
type PutObjectOptions struct {
	Size        int64
	ContentType string
}

// ObjectInfo contains basic information about a stored object.
type ObjectInfo struct {
	Key         string
	Size        int64
	ETag        string
	ContentType string
}

// Storage is the object store contract used by the file flows.
type Storage interface {
	// Put stores an object under key. It fails with ErrObjectExists instead of overwriting.
	Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error)
	// Delete removes the object stored under key. Deleting a missing object is not an error.
	Delete(ctx context.Context, key string) error
	// PublicURL returns the publicly resolvable address of key. It is a pure function of key.
	PublicURL(key string) string
}

// StatusError reports a non-success response from a remote object store.
type StatusError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("object store %s: status %d: %s", e.Op, e.StatusCode, e.Body)
}
