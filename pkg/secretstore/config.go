package secretstore

import (
	"fmt"

	"github.com/classdesk/tenantbroker/pkg/envelope"
)

// Recognized environment variable names for the operator encryption
// secrets, checked in order; the first non-empty value wins. The names
// cover current and historical deployments.
var (
	dedicatedKeyEnvVars = []string{
		"TENANT_KEY_ENCRYPTION_SECRET",
		"CREDENTIALS_ENCRYPTION_KEY",
		"ENCRYPTION_SECRET",
	}
	byosEnvVars = []string{
		"STORAGE_CREDENTIALS_SECRET",
		"TENANT_KEY_ENCRYPTION_SECRET",
		"CREDENTIALS_ENCRYPTION_KEY",
		"ENCRYPTION_SECRET",
	}
)

// Secrets carries the operator secrets for the two encryption purposes:
// tenant dedicated keys and BYOS storage credentials. Resolved once at
// process start and passed explicitly; derived keys are computed per
// request and never persisted.
type Secrets struct {
	dedicated string
	byos      string
}

// ResolveSecrets resolves both purposes through lookup (usually
// os.Getenv). Either purpose may end up empty; the error surfaces at key
// derivation time so that an absent encryption secret is detectable
// independently of absent storage configuration.
func ResolveSecrets(lookup func(string) string) Secrets {
	return Secrets{
		dedicated: firstNonEmpty(lookup, dedicatedKeyEnvVars),
		byos:      firstNonEmpty(lookup, byosEnvVars),
	}
}

// NewSecrets builds Secrets from explicit values, for tests and for
// deployments that resolve configuration elsewhere.
func NewSecrets(dedicated, byos string) Secrets {
	return Secrets{dedicated: dedicated, byos: byos}
}

func firstNonEmpty(lookup func(string) string, names []string) string {
	for _, name := range names {
		if v := lookup(name); v != "" {
			return v
		}
	}
	return ""
}

// DedicatedKey derives the 32-byte key for the tenant dedicated-key
// purpose.
func (s Secrets) DedicatedKey() ([]byte, error) {
	key, err := envelope.DeriveKey(s.dedicated)
	if err != nil {
		return nil, fmt.Errorf("%w: dedicated key purpose: %v", ErrEncryptionNotConfigured, err)
	}
	return key, nil
}

// BYOSKey derives the 32-byte key for the BYOS credential purpose.
func (s Secrets) BYOSKey() ([]byte, error) {
	key, err := envelope.DeriveKey(s.byos)
	if err != nil {
		return nil, fmt.Errorf("%w: byos credential purpose: %v", ErrEncryptionNotConfigured, err)
	}
	return key, nil
}
