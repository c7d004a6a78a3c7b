// Package storage provides access to the S3-compatible bucket that holds the
// audio recordings and the publication ledger.
package storage

import (
	"context"
	"errors"
)

// ErrNotExist is returned by Get when the requested object is absent. A
// missing ledger object means "first run", so callers must be able to tell
// absence from read failure.
var ErrNotExist = errors.New("object does not exist")

// ObjectStore is the remote storage surface the pipeline consumes.
type ObjectStore interface {
	// List returns every object key in the bucket.
	List(ctx context.Context) ([]string, error)
	// Get returns the object's bytes, or ErrNotExist.
	Get(ctx context.Context, key string) ([]byte, error)
	// Put overwrites the object with body under the given content type.
	Put(ctx context.Context, key string, body []byte, contentType string) error
	// Download streams the object to a local file path.
	Download(ctx context.Context, key, localPath string) error
}
