package storageprofile_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/classdesk/tenantbroker/pkg/envelope"
	"github.com/classdesk/tenantbroker/pkg/storageprofile"
)

func byosKey(t *testing.T, secret string) []byte {
	t.Helper()
	key, err := envelope.DeriveKey(secret)
	require.NoError(t, err)
	return key
}

func TestCredentials_SealAndOpenRoundTrip(t *testing.T) {
	t.Parallel()
	key := byosKey(t, "operator-secret-S")

	p := &storageprofile.Profile{
		Mode: storageprofile.ModeBYOS,
		BYOS: &storageprofile.BYOS{
			Provider:        storageprofile.ProviderS3,
			Endpoint:        "https://s3.amazonaws.com",
			Bucket:          "b",
			AccessKeyID:     "AKIAEXAMPLEKEY",
			SecretAccessKey: "secret",
		},
	}

	sealed, err := storageprofile.EncryptCredentials(p, key)
	require.NoError(t, err)
	require.True(t, sealed.BYOS.Encrypted)
	require.NotEmpty(t, sealed.BYOS.Credentials)
	require.Empty(t, sealed.BYOS.AccessKeyID)
	require.Empty(t, sealed.BYOS.SecretAccessKey)

	// The persisted intermediate form must contain neither plaintext value.
	persisted, err := json.Marshal(sealed)
	require.NoError(t, err)
	require.NotContains(t, string(persisted), "AKIAEXAMPLEKEY")
	require.NotContains(t, string(persisted), `"secret"`)

	// Non-secret fields stay in cleartext.
	require.Contains(t, string(persisted), "s3.amazonaws.com")

	opened, err := storageprofile.DecryptCredentials(sealed, key)
	require.NoError(t, err)
	require.Equal(t, "AKIAEXAMPLEKEY", opened.BYOS.AccessKeyID)
	require.Equal(t, "secret", opened.BYOS.SecretAccessKey)
	require.False(t, opened.BYOS.Encrypted)

	// The sealed input was not mutated.
	require.True(t, sealed.BYOS.Encrypted)
	require.Empty(t, sealed.BYOS.AccessKeyID)
}

func TestEncryptCredentials_IncompletePair(t *testing.T) {
	t.Parallel()

	p := &storageprofile.Profile{
		Mode: storageprofile.ModeBYOS,
		BYOS: &storageprofile.BYOS{
			Provider:    storageprofile.ProviderS3,
			Endpoint:    "https://s3.amazonaws.com",
			Bucket:      "b",
			AccessKeyID: "only-half",
		},
	}

	_, err := storageprofile.EncryptCredentials(p, byosKey(t, "s"))
	require.ErrorIs(t, err, storageprofile.ErrMissingCredentials)
}

func TestEncryptCredentials_ManagedPassthrough(t *testing.T) {
	t.Parallel()

	p := &storageprofile.Profile{
		Mode:    storageprofile.ModeManaged,
		Managed: &storageprofile.Managed{Namespace: "org-1", Active: true},
	}

	out, err := storageprofile.EncryptCredentials(p, byosKey(t, "s"))
	require.NoError(t, err)
	require.Equal(t, p.Managed.Namespace, out.Managed.Namespace)
}

func TestDecryptCredentials_WrongKey(t *testing.T) {
	t.Parallel()

	p := &storageprofile.Profile{
		Mode: storageprofile.ModeBYOS,
		BYOS: &storageprofile.BYOS{
			Provider:        storageprofile.ProviderR2,
			Endpoint:        "https://accountid.r2.cloudflarestorage.com",
			Bucket:          "b",
			AccessKeyID:     "a",
			SecretAccessKey: "s",
		},
	}

	sealed, err := storageprofile.EncryptCredentials(p, byosKey(t, "key-one"))
	require.NoError(t, err)

	_, err = storageprofile.DecryptCredentials(sealed, byosKey(t, "key-two"))
	require.ErrorIs(t, err, storageprofile.ErrDecryptionFailed)
}

func TestDecryptCredentials_PlaintextRejectedByDefault(t *testing.T) {
	t.Parallel()
	key := byosKey(t, "s")

	p := &storageprofile.Profile{
		Mode: storageprofile.ModeBYOS,
		BYOS: &storageprofile.BYOS{
			Provider:        storageprofile.ProviderGeneric,
			Endpoint:        "https://minio.internal",
			Bucket:          "b",
			AccessKeyID:     "plain",
			SecretAccessKey: "plain",
		},
	}

	_, err := storageprofile.DecryptCredentials(p, key)
	require.ErrorIs(t, err, storageprofile.ErrPlaintextCredentials)

	// The explicit legacy path may still read it.
	out, err := storageprofile.DecryptCredentials(p, key, storageprofile.AllowLegacyPlaintext())
	require.NoError(t, err)
	require.Equal(t, "plain", out.BYOS.AccessKeyID)
}

func TestDecryptCredentials_NoCredentialsPassthrough(t *testing.T) {
	t.Parallel()

	p := &storageprofile.Profile{
		Mode: storageprofile.ModeBYOS,
		BYOS: &storageprofile.BYOS{
			Provider:  storageprofile.ProviderS3,
			Endpoint:  "https://s3.amazonaws.com",
			Bucket:    "public-only",
			PublicURL: "https://cdn.example.com",
		},
	}

	out, err := storageprofile.DecryptCredentials(p, byosKey(t, "s"))
	require.NoError(t, err)
	require.Empty(t, out.BYOS.AccessKeyID)
}
