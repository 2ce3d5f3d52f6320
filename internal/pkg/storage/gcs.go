package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	gcs "cloud.google.com/go/storage"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
)

type GCSOptions struct {
	// CredentialsFile or CredentialsJSON hold a service account key. Without
	// either, application default credentials are used.
	CredentialsFile string
	CredentialsJSON []byte
	// Endpoint targets an emulator such as fake-gcs-server.
	Endpoint    string
	WithoutAuth bool
	UserAgent   string
}

func (o GCSOptions) clientOptions(ctx context.Context) ([]option.ClientOption, error) {
	var opts []option.ClientOption

	raw := o.CredentialsJSON
	if o.CredentialsFile != "" {
		b, err := os.ReadFile(o.CredentialsFile) // #nosec G304 -- path from trusted config
		if err != nil {
			return nil, fmt.Errorf("storage: read gcs credentials: %w", err)
		}
		raw = b
	}
	if len(raw) > 0 {
		creds, err := google.CredentialsFromJSON(ctx, raw, gcs.ScopeReadOnly)
		if err != nil {
			return nil, fmt.Errorf("storage: parse gcs credentials: %w", err)
		}
		opts = append(opts, option.WithCredentials(creds))
	}
	if o.WithoutAuth {
		opts = append(opts, option.WithoutAuthentication())
	}
	if o.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(o.Endpoint))
	}
	if o.UserAgent != "" {
		opts = append(opts, option.WithUserAgent(o.UserAgent))
	}
	return opts, nil
}

// GCS reads from Google Cloud Storage.
type GCS struct {
	client *gcs.Client
}

func NewGCS(ctx context.Context, opts GCSOptions) (*GCS, error) {
	clientOpts, err := opts.clientOptions(ctx)
	if err != nil {
		return nil, err
	}

	client, err := gcs.NewClient(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("storage: gcs client: %w", err)
	}
	return &GCS{client: client}, nil
}

func (g *GCS) StatObject(ctx context.Context, bucket, key string) (ObjectInfo, error) {
	attrs, err := g.client.Bucket(bucket).Object(key).Attrs(ctx)
	if err != nil {
		return ObjectInfo{}, gcsErr(err)
	}
	return ObjectInfo{
		Bucket:      attrs.Bucket,
		Key:         attrs.Name,
		Size:        attrs.Size,
		ETag:        attrs.Etag,
		ContentType: attrs.ContentType,
		UpdatedAt:   attrs.Updated,
	}, nil
}

func (g *GCS) GetObject(ctx context.Context, bucket, key string) (io.ReadCloser, ObjectInfo, error) {
	info, err := g.StatObject(ctx, bucket, key)
	if err != nil {
		return nil, ObjectInfo{}, err
	}

	r, err := g.client.Bucket(bucket).Object(key).NewReader(ctx)
	if err != nil {
		return nil, ObjectInfo{}, gcsErr(err)
	}
	return r, info, nil
}

func (g *GCS) Close() error { return g.client.Close() }

func gcsErr(err error) error {
	if errors.Is(err, gcs.ErrObjectNotExist) || errors.Is(err, gcs.ErrBucketNotExist) {
		return fmt.Errorf("%w: %w", ErrObjectNotFound, err)
	}
	return err
}
