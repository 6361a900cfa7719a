package storageprofile

import "errors"

// Sentinel errors for profile credential handling.
var (
	// ErrMissingCredentials indicates a BYOS profile reached the seal step
	// without both credential fields present.
	ErrMissingCredentials = errors.New("storageprofile: byos credentials are incomplete")

	// ErrEncryptionNotConfigured indicates the operator encryption secret is
	// absent or unusable. Deployment misconfiguration; fatal to the request.
	ErrEncryptionNotConfigured = errors.New("storageprofile: credential encryption is not configured")

	// ErrDecryptionFailed indicates the sealed credential envelope failed
	// authentication. May indicate key rotation or tampering; logged
	// distinctly for incident response.
	ErrDecryptionFailed = errors.New("storageprofile: failed to decrypt byos credentials")

	// ErrPlaintextCredentials indicates a persisted BYOS profile carries
	// unsealed credentials. Only the explicit legacy migration path may read
	// such a profile.
	ErrPlaintextCredentials = errors.New("storageprofile: profile carries plaintext credentials")
)
