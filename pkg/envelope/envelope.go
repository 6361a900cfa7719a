package envelope

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"strings"
)

// Envelope format constants. The serialized form is wire-compatible and must
// not change: five colon-delimited segments, version and mode literal,
// remaining three segments base64-encoded.
const (
	Version = "v1"
	Mode    = "gcm"

	// KeySize is the required symmetric key length (AES-256).
	KeySize = 32

	ivSize  = 12
	tagSize = 16

	segmentCount = 5
)

// DeriveKey derives a fixed-size AES-256 key from an operator-supplied
// secret. The secret is decoded as base64, then hex, then raw UTF-8; the
// first decoding that yields a non-empty byte sequence is used as key
// material. Material shorter than KeySize is stretched with a SHA-256
// digest; longer material is truncated.
//
// Returns ErrNoKeyMaterial for an empty secret. Callers must treat that as
// a deployment misconfiguration, never as a silent no-op.
func DeriveKey(secret string) ([]byte, error) {
	material := keyMaterial(secret)
	if len(material) == 0 {
		return nil, ErrNoKeyMaterial
	}

	if len(material) < KeySize {
		sum := sha256.Sum256(material)
		return sum[:], nil
	}

	return material[:KeySize], nil
}

// keyMaterial resolves secret bytes using the base64 -> hex -> raw decoding
// order. Raw UTF-8 is the final fallback so any non-empty secret produces
// material.
func keyMaterial(secret string) []byte {
	if b, err := base64.StdEncoding.DecodeString(secret); err == nil && len(b) > 0 {
		return b
	}
	if b, err := hex.DecodeString(secret); err == nil && len(b) > 0 {
		return b
	}
	return []byte(secret)
}

// Encrypt seals plaintext under key with AES-256-GCM and serializes the
// result as "v1:gcm:<iv_b64>:<tag_b64>:<ciphertext_b64>". A fresh random
// 12-byte IV is generated per call, so encrypting the same plaintext twice
// yields two different envelopes.
func Encrypt(plaintext string, key []byte) (string, error) {
	if len(key) != KeySize {
		return "", ErrInvalidKeySize
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	iv := make([]byte, ivSize)
	if _, err := rand.Read(iv); err != nil {
		return "", err
	}

	sealed := aead.Seal(nil, iv, []byte(plaintext), nil)
	ciphertext := sealed[:len(sealed)-tagSize]
	tag := sealed[len(sealed)-tagSize:]

	enc := base64.StdEncoding
	return strings.Join([]string{
		Version,
		Mode,
		enc.EncodeToString(iv),
		enc.EncodeToString(tag),
		enc.EncodeToString(ciphertext),
	}, ":"), nil
}

// Decrypt opens an envelope produced by Encrypt.
//
// A string that does not parse as a five-segment v1 GCM envelope returns
// ErrNotEnvelope so callers can fall back to legacy handling. A
// well-formed envelope that fails authentication (wrong key, tampered or
// corrupted ciphertext) returns ErrDecryptFailed; partial or garbage
// plaintext is never returned.
func Decrypt(envelope string, key []byte) (string, error) {
	if len(key) != KeySize {
		return "", ErrInvalidKeySize
	}

	parts := strings.Split(envelope, ":")
	if len(parts) != segmentCount || parts[0] != Version || parts[1] != Mode {
		return "", ErrNotEnvelope
	}

	enc := base64.StdEncoding
	iv, err := enc.DecodeString(parts[2])
	if err != nil || len(iv) != ivSize {
		return "", ErrNotEnvelope
	}
	tag, err := enc.DecodeString(parts[3])
	if err != nil || len(tag) != tagSize {
		return "", ErrNotEnvelope
	}
	ciphertext, err := enc.DecodeString(parts[4])
	if err != nil {
		return "", ErrNotEnvelope
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	plaintext, err := aead.Open(nil, iv, append(ciphertext, tag...), nil)
	if err != nil {
		return "", ErrDecryptFailed
	}

	return string(plaintext), nil
}

// IsEnvelope reports whether s has the envelope wire shape. It is a cheap
// format probe only; it does not prove the payload decrypts.
func IsEnvelope(s string) bool {
	parts := strings.SplitN(s, ":", segmentCount+1)
	return len(parts) == segmentCount && parts[0] == Version && parts[1] == Mode
}
