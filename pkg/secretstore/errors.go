package secretstore

import "errors"

var (
	// ErrEmptyKey is returned when a caller attempts to save an empty
	// dedicated key.
	ErrEmptyKey = errors.New("secretstore: dedicated key must not be empty")

	// ErrForbidden is returned when the acting user is not an owner or
	// admin of the organization. Membership absence maps here too so the
	// response does not reveal whether the organization exists.
	ErrForbidden = errors.New("secretstore: user may not manage credentials")

	// ErrDedicatedKeyMissing is returned by LoadDedicatedKey when the
	// organization has no dedicated key on record.
	ErrDedicatedKeyMissing = errors.New("secretstore: dedicated key not configured")

	// ErrEncryptionNotConfigured is returned when no encryption secret is
	// available for the requested purpose.
	ErrEncryptionNotConfigured = errors.New("secretstore: encryption secret not configured")

	// ErrDecryptionFailed is returned when a stored value cannot be
	// opened with the configured secret. Callers must treat this as
	// fatal for the request; there is no plaintext fallback.
	ErrDecryptionFailed = errors.New("secretstore: failed to decrypt stored value")
)
