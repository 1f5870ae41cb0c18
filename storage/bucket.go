// Package storage defines the object bucket used for uploaded blog images.
package storage

import (
	"context"
	"errors"
	"io"
)

// ErrObjectExists is returned by Put when the key is already taken.
// Objects are never overwritten.
var ErrObjectExists = errors.New("storage: object already exists")

// ErrObjectNotFound is returned by Open for unknown keys.
var ErrObjectNotFound = errors.New("storage: object not found")

// PutOptions carries the HTTP metadata stored alongside an object.
type PutOptions struct {
	ContentType  string
	CacheControl string
}

// Bucket is a flat namespace of immutable objects addressed by key.
type Bucket interface {
	// Name is the logical bucket name used in public URLs.
	Name() string
	// Put stores r under key. It fails with ErrObjectExists if key is taken.
	Put(ctx context.Context, key string, r io.Reader, opts PutOptions) (int64, error)
	// Open returns a reader for key.
	Open(key string) (io.ReadSeekCloser, error)
	// PublicURL returns the URL the object is served from.
	PublicURL(key string) string
}
