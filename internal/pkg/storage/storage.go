package storage

import (
	"context"
	"io"
)

// ObjectStore is the boundary the image and marketplace domains depend on.
// Objects are written private; SetPublic is a one-way ACL change used when
// an image is shared or listed for sale.
type ObjectStore interface {
	// Put stores an object under key with a private ACL.
	Put(ctx context.Context, key string, reader io.Reader, contentType string) error

	// Delete removes an object by key. Returns nil if it doesn't exist.
	Delete(ctx context.Context, key string) error

	// SetPublic makes an existing object publicly readable.
	SetPublic(ctx context.Context, key string) error

	// GetURL returns the durable URL for an object key.
	GetURL(key string) string

	// KeyFromURL recovers the object key from a URL previously
	// produced by GetURL.
	KeyFromURL(url string) (string, error)
}
