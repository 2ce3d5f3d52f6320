package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestNew_UnknownDriver(t *testing.T) {
	_, err := New(context.Background(), "ftp", Options{})

	if !errors.Is(err, ErrUnknownDriver) {
		t.Fatalf("error = %v, want ErrUnknownDriver", err)
	}
}

func TestNew_MinIO(t *testing.T) {
	r, err := New(context.Background(), "MinIO", Options{MinIO: MinIOOptions{Endpoint: "localhost:9000", AccessKey: "k", SecretKey: "s"}})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, ok := r.(*MinIO); !ok {
		t.Fatalf("New() = %T, want *MinIO", r)
	}
	_ = r.Close()
}

func TestNew_S3StaticCredentials(t *testing.T) {
	r, err := New(context.Background(), "s3", Options{S3: S3Options{
		Endpoint: "http://localhost:4566", AccessKey: "k", SecretKey: "s", UsePathStyle: true,
	}})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, ok := r.(*S3); !ok {
		t.Fatalf("New() = %T, want *S3", r)
	}
}

func TestGCSOptions_MissingCredentialsFile(t *testing.T) {
	opts := GCSOptions{CredentialsFile: filepath.Join(t.TempDir(), "missing.json")}

	if _, err := opts.clientOptions(context.Background()); err == nil {
		t.Fatalf("clientOptions() expected error for missing file")
	}
}

func TestGCSOptions_InvalidCredentials(t *testing.T) {
	path := filepath.Join(t.TempDir(), "creds.json")
	if err := os.WriteFile(path, []byte("not json"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	if _, err := (GCSOptions{CredentialsFile: path}).clientOptions(context.Background()); err == nil {
		t.Fatalf("clientOptions() expected parse error")
	}
}

func TestGCSOptions_Emulator(t *testing.T) {
	opts, err := GCSOptions{WithoutAuth: true, Endpoint: "http://localhost:4443/storage/v1/"}.clientOptions(context.Background())
	if err != nil {
		t.Fatalf("clientOptions() error = %v", err)
	}
	if len(opts) != 2 {
		t.Fatalf("len(opts) = %d, want 2", len(opts))
	}
}
