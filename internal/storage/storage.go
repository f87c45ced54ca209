package storage

import (
	"context"
	"io"
)

// UploadInput describes a single object upload.
type UploadInput struct {
	Bucket      string
	Key         string
	Body        io.Reader
	ContentType string
}

// Service stores listing images in remote object storage.
type Service interface {
	Upload(ctx context.Context, input UploadInput) error
	Delete(ctx context.Context, bucket, key string) error
	// PublicURL returns the browser-reachable URL for a stored object.
	PublicURL(bucket, key string) string
}
