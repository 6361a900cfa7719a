package blobstore

import (
	"context"
	"io"
)

// Store is the capability contract every storage backend satisfies. A Store
// is constructed per request from a storage profile (see FromProfile) and
// must not be cached across requests.
type Store interface {
	// Put uploads data to path with idempotent overwrite semantics: writing
	// the same path twice replaces the content. Callers are responsible for
	// choosing collision-free paths; this system embeds a generated file id
	// in the path.
	Put(ctx context.Context, path string, r io.Reader, size int64, contentType string) (*ObjectInfo, error)

	// Get retrieves an object. The caller closes the returned reader.
	Get(ctx context.Context, path string) (io.ReadCloser, error)

	// Delete removes an object. A path that no longer exists is treated as
	// success; delete is frequently best-effort cleanup after a partial
	// failure elsewhere.
	Delete(ctx context.Context, path string) error

	// PresignedURL issues a time-bounded, unauthenticated-bearer URL for
	// the object. Filename/disposition options map to a Content-Disposition
	// response header where the backend supports it. Once issued, a URL
	// cannot be revoked before expiry.
	PresignedURL(ctx context.Context, path string, opts ...URLOption) (string, error)

	// PublicURL returns the permanent public URL for the object. Only valid
	// for profiles exposing a public base URL (managed mode, or BYOS with
	// public_url configured); otherwise returns ErrNoPublicURL.
	PublicURL(path string) (string, error)
}

// ObjectInfo describes a stored object.
type ObjectInfo struct {
	// Path is the storage key the object was written under, including any
	// namespace prefix.
	Path string

	// ContentType is the MIME type the object was stored with.
	ContentType string

	// Size is the object size in bytes.
	Size int64
}

// SystemConfig holds the system-managed bucket's own coordinates and master
// credentials. These are process configuration, never per-tenant, and are
// read-only after process start.
type SystemConfig struct {
	Endpoint  string `env:"STORAGE_ENDPOINT"`
	AccessKey string `env:"STORAGE_ACCESS_KEY"`
	SecretKey string `env:"STORAGE_SECRET_KEY"`
	Bucket    string `env:"STORAGE_BUCKET"`
	Region    string `env:"STORAGE_REGION" envDefault:"auto"`

	// PublicURL is the CDN or public base URL for managed files.
	PublicURL string `env:"STORAGE_PUBLIC_URL"`

	// PathStyle enables path-style addressing (MinIO, R2).
	PathStyle bool `env:"STORAGE_PATH_STYLE" envDefault:"true"`
}

// Validate checks the fields needed to construct the managed driver.
// Absence of system storage configuration is a distinct failure from an
// absent encryption secret.
func (c *SystemConfig) Validate() error {
	if c.Bucket == "" || c.AccessKey == "" || c.SecretKey == "" || c.Endpoint == "" {
		return ErrSystemStorageNotConfigured
	}
	return nil
}

// DefaultContentType is used when a caller does not provide one.
const DefaultContentType = "application/octet-stream"
