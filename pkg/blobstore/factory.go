package blobstore

import (
	"fmt"
	"strings"

	"github.com/classdesk/tenantbroker/pkg/storageprofile"
)

// Per-provider defaults for the S3 protocol.
const (
	defaultS3Region    = "us-east-1"
	gcsInteropEndpoint = "https://storage.googleapis.com"
)

// FromProfile constructs the driver for a storage profile. Selection is
// purely a function of (mode, provider) — never of caller intent — and
// construction fails loudly on an unrecognized mode or an incomplete
// configuration.
//
// BYOS profiles must have their credentials opened (see
// storageprofile.DecryptCredentials) before reaching this factory; a
// profile still carrying a sealed envelope is rejected.
func FromProfile(p *storageprofile.Profile, sys *SystemConfig) (Store, error) {
	if p == nil {
		return nil, ErrUnknownProfileMode
	}

	switch p.Mode {
	case storageprofile.ModeManaged:
		return managedStore(p, sys)
	case storageprofile.ModeBYOS:
		return byosStore(p)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProfileMode, p.Mode)
	}
}

// managedStore builds the system-bucket driver, path-namespaced with the
// organization's namespace. Credentials come from process configuration,
// never from the tenant.
func managedStore(p *storageprofile.Profile, sys *SystemConfig) (Store, error) {
	if p.Managed == nil || p.Managed.Namespace == "" {
		return nil, ErrMissingManagedConfig
	}
	if sys == nil {
		return nil, ErrSystemStorageNotConfigured
	}
	if err := sys.Validate(); err != nil {
		return nil, err
	}

	publicBase := sys.PublicURL
	if publicBase == "" {
		// No CDN configured: fall back to the bucket's own endpoint URL.
		publicBase = strings.TrimSuffix(sys.Endpoint, "/")
		if sys.PathStyle {
			publicBase += "/" + sys.Bucket
		}
	}

	return newS3Store(s3Params{
		endpoint:   sys.Endpoint,
		region:     sys.Region,
		accessKey:  sys.AccessKey,
		secretKey:  sys.SecretKey,
		bucket:     sys.Bucket,
		keyPrefix:  p.Managed.Namespace,
		publicBase: publicBase,
		pathStyle:  sys.PathStyle,
	}), nil
}

// byosStore builds a driver for a customer-supplied bucket.
func byosStore(p *storageprofile.Profile) (Store, error) {
	b := p.BYOS
	if b == nil {
		return nil, ErrMissingBYOSConfig
	}
	if b.Encrypted || b.Credentials != "" {
		return nil, ErrSealedCredentials
	}

	params := s3Params{
		endpoint:   b.Endpoint,
		region:     b.Region,
		accessKey:  b.AccessKeyID,
		secretKey:  b.SecretAccessKey,
		bucket:     b.Bucket,
		publicBase: b.PublicURL,
	}

	switch b.Provider {
	case storageprofile.ProviderS3:
		// Endpoint is optional: empty means AWS proper with virtual-hosted
		// addressing.
		if params.region == "" {
			params.region = defaultS3Region
		}

	case storageprofile.ProviderR2:
		// Account-scoped endpoint, path-style, region fixed to "auto".
		if params.endpoint == "" {
			return nil, fmt.Errorf("%w: r2", ErrMissingEndpoint)
		}
		params.region = "auto"
		params.pathStyle = true

	case storageprofile.ProviderGCS:
		// HMAC interop over the S3 protocol.
		if params.endpoint == "" {
			params.endpoint = gcsInteropEndpoint
		}
		if params.region == "" {
			params.region = "auto"
		}
		params.pathStyle = true

	case storageprofile.ProviderAzure:
		// Azure Blob itself speaks no S3; tenants point the broker at an
		// S3 translation gateway in front of their account.
		if params.endpoint == "" {
			return nil, fmt.Errorf("%w: azure", ErrMissingEndpoint)
		}
		if params.region == "" {
			params.region = "auto"
		}
		params.pathStyle = true

	case storageprofile.ProviderGeneric:
		if params.endpoint == "" {
			return nil, fmt.Errorf("%w: generic", ErrMissingEndpoint)
		}
		if params.region == "" {
			params.region = "auto"
		}
		params.pathStyle = true

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, b.Provider)
	}

	return newS3Store(params), nil
}
