// Package envelope implements authenticated encryption of opaque secret
// strings using AES-256-GCM with a key derived from an operator-supplied
// secret.
//
// Envelopes use a fixed, wire-compatible serialization:
//
//	v1:gcm:<iv_b64>:<tag_b64>:<ciphertext_b64>
//
// with a 96-bit IV and a 128-bit authentication tag. A secret leaked from
// the database alone is useless without the separately held operator
// secret, and the GCM tag makes tampering detectable.
//
// # Key Derivation
//
// DeriveKey accepts the operator secret in base64, hex, or raw UTF-8 form
// and always produces a 32-byte key:
//
//	key, err := envelope.DeriveKey(os.Getenv("TENANT_KEY_ENCRYPTION_SECRET"))
//	if err != nil {
//		// deployment misconfiguration: refuse to serve, do not degrade
//	}
//
// Derived keys are cheap to compute; derive per request from the long-lived
// operator secret rather than caching the derived key.
//
// # Encrypt / Decrypt
//
//	sealed, err := envelope.Encrypt("service-role-secret", key)
//	plain, err := envelope.Decrypt(sealed, key)
//
// Decrypt distinguishes two failures: ErrNotEnvelope (the value never was
// an envelope; callers with a legacy migration path may fall back) and
// ErrDecryptFailed (authentication failure; treat as tampering or key
// rotation, never fall through to plaintext).
package envelope
