package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

// Package storage holds the permanent byte store for documents. Two backends
// exist: the local filesystem rooted at a configured directory, and an
// S3-compatible bucket (MinIO).

// ErrNotFound is returned by Get when no object exists under the key.
var ErrNotFound = errors.New("object not found")

// ErrInvalidKey is returned for keys that are empty, absolute or escape the root.
var ErrInvalidKey = errors.New("invalid storage key")

// PutObjectOptions define optional parameters for uploading objects.
// Size should be the exact number of bytes if known; if unknown, set to -1.
type PutObjectOptions struct {
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// ObjectInfo contains basic information about an object in storage.
type ObjectInfo struct {
	Key          string
	Size         int64
	ETag         string
	ContentType  string
	LastModified time.Time
	Metadata     map[string]string
}

// Storage is the permanent object store used by the document service.
type Storage interface {
	// Put writes an object under key from r.
	Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error)
	// Get retrieves an object's content as a streaming reader alongside its info.
	Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)
	// Delete removes an object by key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Import moves the local file at srcPath into the store under key. On
	// success srcPath no longer exists; on failure the store is unchanged.
	Import(ctx context.Context, srcPath, key string, opt PutObjectOptions) (ObjectInfo, error)
}
