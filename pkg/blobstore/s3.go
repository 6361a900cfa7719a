package blobstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// s3Store drives every S3-protocol backend: AWS S3 itself, Cloudflare R2,
// GCS HMAC interop, generic S3-compatible services, Azure behind a
// tenant-supplied S3 translation gateway, and the system-managed bucket.
// The differences between them are entirely in construction parameters
// (endpoint, addressing style, key prefix, public base URL).
type s3Store struct {
	client    *s3.Client
	presigner *s3.PresignClient

	bucket string

	// keyPrefix namespaces every object key. Managed mode sets it to the
	// organization's namespace; BYOS buckets are tenant-owned and need none.
	keyPrefix string

	// publicBase, when non-empty, is the permanent public URL prefix.
	publicBase string
}

type s3Params struct {
	endpoint   string
	region     string
	accessKey  string
	secretKey  string
	bucket     string
	keyPrefix  string
	publicBase string
	pathStyle  bool
}

func newS3Store(p s3Params) *s3Store {
	opts := []func(*s3.Options){
		func(o *s3.Options) {
			o.Region = p.region
			o.Credentials = credentials.NewStaticCredentialsProvider(p.accessKey, p.secretKey, "")
		},
	}

	if p.endpoint != "" {
		opts = append(opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(p.endpoint)
			o.UsePathStyle = p.pathStyle
		})
	}

	client := s3.New(s3.Options{}, opts...)

	return &s3Store{
		client:     client,
		presigner:  s3.NewPresignClient(client),
		bucket:     p.bucket,
		keyPrefix:  strings.Trim(p.keyPrefix, "/"),
		publicBase: strings.TrimSuffix(p.publicBase, "/"),
	}
}

// objectKey joins the namespace prefix and the caller-supplied path.
func (s *s3Store) objectKey(path string) string {
	path = strings.TrimLeft(path, "/")
	if s.keyPrefix == "" {
		return path
	}
	return s.keyPrefix + "/" + path
}

// Put uploads data with overwrite semantics.
func (s *s3Store) Put(ctx context.Context, path string, r io.Reader, size int64, contentType string) (*ObjectInfo, error) {
	if contentType == "" {
		contentType = DefaultContentType
	}

	// The request signer needs a seekable body; buffer when the caller's
	// reader cannot seek.
	body, ok := r.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("%w: read input: %v", ErrUploadFailed, err)
		}
		body = bytes.NewReader(data)
		size = int64(len(data))
	}

	key := s.objectKey(path)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return nil, wrapAPIError(err, ErrUploadFailed)
	}

	return &ObjectInfo{
		Path:        key,
		ContentType: contentType,
		Size:        size,
	}, nil
}

// Get retrieves an object.
func (s *s3Store) Get(ctx context.Context, path string) (io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(path)),
	})
	if err != nil {
		return nil, wrapAPIError(err, ErrNotFound)
	}
	return out.Body, nil
}

// Delete removes an object. A missing object is success: S3 DeleteObject
// already behaves that way, and any NotFound surfaced by stricter
// S3-compatible backends is swallowed here.
func (s *s3Store) Delete(ctx context.Context, path string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(path)),
	})
	if err != nil {
		wrapped := wrapAPIError(err, ErrDeleteFailed)
		if errors.Is(wrapped, ErrNotFound) {
			return nil
		}
		return wrapped
	}
	return nil
}

// PresignedURL issues a time-bounded GET URL.
func (s *s3Store) PresignedURL(ctx context.Context, path string, opts ...URLOption) (string, error) {
	o := &urlOptions{ttl: DefaultURLTTL}
	for _, opt := range opts {
		opt(o)
	}

	input := &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(path)),
	}
	if o.filename != "" {
		input.ResponseContentDisposition = aws.String(
			fmt.Sprintf("%s; filename=%q", o.disposition, o.filename),
		)
	}

	res, err := s.presigner.PresignGetObject(ctx, input, func(po *s3.PresignOptions) {
		po.Expires = o.ttl
	})
	if err != nil {
		return "", wrapAPIError(err, ErrPresignFailed)
	}
	return res.URL, nil
}

// PublicURL returns the permanent public URL for the object.
func (s *s3Store) PublicURL(path string) (string, error) {
	if s.publicBase == "" {
		return "", ErrNoPublicURL
	}
	return s.publicBase + "/" + s.objectKey(path), nil
}

var _ Store = (*s3Store)(nil)
