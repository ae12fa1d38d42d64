package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrObjectNotFound is returned when an object does not exist in the bucket
var ErrObjectNotFound = errors.New("object not found")

// Object is a downloaded object; the caller must close Body
type Object struct {
	Body        io.ReadCloser
	ContentType string
	Size        int64
}

// DocumentStore defines the object storage operations used by the document archive
type DocumentStore interface {
	Upload(ctx context.Context, objectPath string, data io.Reader, contentType string, size int64) (string, error)
	Download(ctx context.Context, objectPath string) (*Object, error)
	Delete(ctx context.Context, objectPath string) error
	GeneratePresignedURL(ctx context.Context, objectPath string, expiry time.Duration) (string, error)
}
