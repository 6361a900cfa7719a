package blobstore

import (
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// Sentinel errors for storage operations.
var (
	// Construction errors.
	ErrUnknownProfileMode         = errors.New("blobstore: unknown storage profile mode")
	ErrUnknownProvider            = errors.New("blobstore: unknown byos provider")
	ErrMissingBYOSConfig          = errors.New("blobstore: byos mode without byos configuration")
	ErrMissingManagedConfig       = errors.New("blobstore: managed mode without managed configuration")
	ErrMissingEndpoint            = errors.New("blobstore: provider requires an explicit endpoint")
	ErrSealedCredentials          = errors.New("blobstore: profile credentials are still sealed")
	ErrSystemStorageNotConfigured = errors.New("blobstore: system storage is not configured")

	// Operation errors.
	ErrNotFound      = errors.New("blobstore: object not found")
	ErrAccessDenied  = errors.New("blobstore: access denied")
	ErrUploadFailed  = errors.New("blobstore: upload failed")
	ErrDeleteFailed  = errors.New("blobstore: delete failed")
	ErrPresignFailed = errors.New("blobstore: presign failed")

	// URL errors.
	ErrNoPublicURL = errors.New("blobstore: profile exposes no public base URL")
)

// wrapAPIError maps backend API errors onto sentinels. Uses %v (not %w) for
// the original error to normalize error types: callers branch with
// errors.Is on the sentinels, never errors.As on AWS types.
func wrapAPIError(err error, fallback error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return fmt.Errorf("%w: %v", ErrNotFound, err)
		case "AccessDenied", "Forbidden":
			return fmt.Errorf("%w: %v", ErrAccessDenied, err)
		}
	}

	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}

	return fmt.Errorf("%w: %v", fallback, err)
}
