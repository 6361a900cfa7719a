package storageprofile

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/classdesk/tenantbroker/pkg/envelope"
)

// credentialPair is the only part of a BYOS configuration that is secret.
// Provider, endpoint, bucket, region and public URL stay in cleartext in
// the same JSON document.
type credentialPair struct {
	AccessKeyID     string `json:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key"`
}

// DecryptOption configures DecryptCredentials.
type DecryptOption func(*decryptOptions)

type decryptOptions struct {
	allowLegacyPlaintext bool
}

// AllowLegacyPlaintext permits reading a BYOS profile whose credentials
// were persisted before envelope encryption was introduced. Only the
// migration path may use this; request-serving code must not.
func AllowLegacyPlaintext() DecryptOption {
	return func(o *decryptOptions) {
		o.allowLegacyPlaintext = true
	}
}

// EncryptCredentials seals the BYOS credential pair into the profile's
// _credentials envelope and blanks the plaintext fields. It is mandatory at
// the write boundary: persisting a BYOS profile without calling this first
// would store credentials in the clear.
//
// Managed profiles and profiles already sealed pass through unchanged (as
// clones). The input is never mutated.
func EncryptCredentials(p *Profile, key []byte) (*Profile, error) {
	out := p.Clone()
	if out == nil || out.Mode != ModeBYOS || out.BYOS == nil {
		return out, nil
	}
	b := out.BYOS
	if b.Encrypted && b.Credentials != "" {
		return out, nil
	}
	if b.AccessKeyID == "" || b.SecretAccessKey == "" {
		return nil, ErrMissingCredentials
	}

	payload, err := json.Marshal(credentialPair{
		AccessKeyID:     b.AccessKeyID,
		SecretAccessKey: b.SecretAccessKey,
	})
	if err != nil {
		return nil, fmt.Errorf("storageprofile: marshal credentials: %w", err)
	}

	sealed, err := envelope.Encrypt(string(payload), key)
	if err != nil {
		if errors.Is(err, envelope.ErrInvalidKeySize) || errors.Is(err, envelope.ErrNoKeyMaterial) {
			return nil, fmt.Errorf("%w: %v", ErrEncryptionNotConfigured, err)
		}
		return nil, err
	}

	b.Credentials = sealed
	b.Encrypted = true
	b.AccessKeyID = ""
	b.SecretAccessKey = ""
	return out, nil
}

// DecryptCredentials restores the plaintext credential pair from a sealed
// profile. A BYOS profile carrying plaintext credentials without the
// _encrypted flag is rejected with ErrPlaintextCredentials unless
// AllowLegacyPlaintext is given. Profiles without credentials (managed
// mode, public-only configurations) pass through unchanged.
func DecryptCredentials(p *Profile, key []byte, opts ...DecryptOption) (*Profile, error) {
	o := &decryptOptions{}
	for _, opt := range opts {
		opt(o)
	}

	out := p.Clone()
	if out == nil || out.Mode != ModeBYOS || out.BYOS == nil {
		return out, nil
	}
	b := out.BYOS

	if !b.Encrypted || b.Credentials == "" {
		if b.AccessKeyID != "" || b.SecretAccessKey != "" {
			if !o.allowLegacyPlaintext {
				return nil, ErrPlaintextCredentials
			}
		}
		return out, nil
	}

	plain, err := envelope.Decrypt(b.Credentials, key)
	if err != nil {
		if errors.Is(err, envelope.ErrInvalidKeySize) || errors.Is(err, envelope.ErrNoKeyMaterial) {
			return nil, fmt.Errorf("%w: %v", ErrEncryptionNotConfigured, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrDecryptionFailed, err)
	}

	var pair credentialPair
	if err := json.Unmarshal([]byte(plain), &pair); err != nil {
		return nil, fmt.Errorf("%w: malformed credential payload", ErrDecryptionFailed)
	}

	b.AccessKeyID = pair.AccessKeyID
	b.SecretAccessKey = pair.SecretAccessKey
	b.Credentials = ""
	b.Encrypted = false
	return out, nil
}
