package service

import (
	"context"
	"io"
)

// FileStore is the object-storage boundary for PDF bytes. The MinIO
// implementation is the production one; tests substitute an in-memory
// fake.
type FileStore interface {
	Upload(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) error
	Download(ctx context.Context, objectName string) ([]byte, error)
	Delete(ctx context.Context, objectName string) error
	PresignedURL(ctx context.Context, objectName string) (string, error)
}
