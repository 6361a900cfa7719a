package policy

import "errors"

// Sentinel errors for storage access gating.
var (
	// ErrStorageNotConfigured indicates the organization never configured
	// storage. Precondition failure; the client UI should prompt setup.
	ErrStorageNotConfigured = errors.New("policy: storage not configured")

	// ErrStorageDisconnected indicates a write was attempted while storage
	// is disconnected (grace or revoked).
	ErrStorageDisconnected = errors.New("policy: storage disconnected")

	// ErrStorageRevoked indicates access was fully revoked.
	ErrStorageRevoked = errors.New("policy: storage access revoked")

	// ErrUnknownOperation indicates an operation outside the known set.
	ErrUnknownOperation = errors.New("policy: unknown storage operation")
)
