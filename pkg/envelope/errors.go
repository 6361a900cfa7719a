package envelope

import "errors"

// Sentinel errors for envelope operations.
var (
	// ErrNoKeyMaterial indicates the operator secret was empty or decoded to
	// zero bytes. This is a deployment misconfiguration.
	ErrNoKeyMaterial = errors.New("envelope: no usable key material")

	// ErrInvalidKeySize indicates the key is not exactly 32 bytes.
	ErrInvalidKeySize = errors.New("envelope: key must be 32 bytes")

	// ErrNotEnvelope indicates the input does not parse as a v1 GCM
	// envelope. Callers may treat the value as legacy/unencrypted.
	ErrNotEnvelope = errors.New("envelope: not a v1 gcm envelope")

	// ErrDecryptFailed indicates a well-formed envelope failed
	// authentication: wrong key, key rotation, or tampering.
	ErrDecryptFailed = errors.New("envelope: decryption failed")
)
