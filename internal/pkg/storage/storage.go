// Package storage reads objects from S3, Google Cloud Storage or MinIO
// behind one interface.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

var (
	ErrUnknownDriver  = errors.New("storage: unknown driver")
	ErrObjectNotFound = errors.New("storage: object not found")
)

const (
	DriverS3    = "s3"
	DriverGCS   = "gcs"
	DriverMinIO = "minio"
)

// Reader fetches objects and their metadata.
type Reader interface {
	io.Closer
	// StatObject returns metadata only. Missing objects yield ErrObjectNotFound.
	StatObject(ctx context.Context, bucket, key string) (ObjectInfo, error)
	// GetObject streams the object. The caller closes the body.
	GetObject(ctx context.Context, bucket, key string) (io.ReadCloser, ObjectInfo, error)
}

// ObjectInfo is the metadata common to every backend.
type ObjectInfo struct {
	Bucket      string
	Key         string
	Size        int64
	ETag        string
	ContentType string
	UpdatedAt   time.Time
}

// Options configures every driver; only the selected one is read.
type Options struct {
	S3    S3Options
	GCS   GCSOptions
	MinIO MinIOOptions
}

// New opens the backend named by driver.
func New(ctx context.Context, driver string, opts Options) (Reader, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case DriverS3:
		return NewS3(ctx, opts.S3)
	case DriverGCS:
		return NewGCS(ctx, opts.GCS)
	case DriverMinIO:
		return NewMinIO(opts.MinIO)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
}
