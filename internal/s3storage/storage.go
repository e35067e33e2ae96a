// Package s3storage loads file attachments from an S3-compatible bucket so a
// CV can be referenced as s3://bucket/key instead of a local path.
package s3storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/dharsanguruparan/FormDrop/internal/config"
	"github.com/dharsanguruparan/FormDrop/internal/form"
)

// Scheme prefixes object references.
const Scheme = "s3://"

// ErrTooLarge is returned when an object exceeds the configured size limit.
var ErrTooLarge = errors.New("object exceeds size limit")

// Storage wraps the MinIO client.
type Storage struct {
	client  *minio.Client
	maxSize int64
}

// New creates a MinIO client from the S3 settings.
func New(cfg *config.Config) (*Storage, error) {
	client, err := minio.New(cfg.S3.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.S3.AccessKey, cfg.S3.SecretKey, ""),
		Secure: cfg.S3.UseSSL,
		Region: cfg.S3.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio: %w", err)
	}
	return &Storage{client: client, maxSize: cfg.MaxFileSize}, nil
}

// IsRef reports whether ref uses the s3:// scheme.
func IsRef(ref string) bool {
	return strings.HasPrefix(ref, Scheme)
}

// ParseRef splits s3://bucket/key.
func ParseRef(ref string) (bucket, key string, err error) {
	if !IsRef(ref) {
		return "", "", fmt.Errorf("not an %s reference: %q", Scheme, ref)
	}
	bucket, key, ok := strings.Cut(strings.TrimPrefix(ref, Scheme), "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fmt.Errorf("malformed reference %q, want %sbucket/key", ref, Scheme)
	}
	return bucket, key, nil
}

// Fetch downloads the referenced object as a form file. The stored content
// type is kept as the declared type.
func (s *Storage) Fetch(ctx context.Context, ref string) (*form.File, error) {
	bucket, key, err := ParseRef(ref)
	if err != nil {
		return nil, err
	}
	// GetObject is lazy: no request is made until the object is read or
	// Stat is called.
	obj, err := s.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get object: %w", err)
	}
	defer obj.Close()
	// Stat surfaces missing objects and gives the size to enforce the limit
	// before downloading the body.
	info, err := obj.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat object: %w", err)
	}
	if s.maxSize > 0 && info.Size > s.maxSize {
		return nil, fmt.Errorf("%s: %w (%d bytes)", ref, ErrTooLarge, s.maxSize)
	}
	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("read object: %w", err)
	}
	return &form.File{Name: path.Base(key), ContentType: info.ContentType, Data: data}, nil
}
