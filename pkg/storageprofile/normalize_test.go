package storageprofile_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/classdesk/tenantbroker/pkg/storageprofile"
)

func TestNormalize_BYOS(t *testing.T) {
	t.Parallel()

	raw := &storageprofile.Profile{
		Mode: "  BYOS ",
		BYOS: &storageprofile.BYOS{
			Provider:        "S3 ",
			Endpoint:        " https://s3.amazonaws.com ",
			Region:          "   ",
			Bucket:          " files ",
			AccessKeyID:     " AKIAEXAMPLE ",
			SecretAccessKey: " secret ",
			PublicURL:       "",
		},
	}

	p := storageprofile.Normalize(raw, "user-1")
	require.NotNil(t, p)
	require.Equal(t, storageprofile.ModeBYOS, p.Mode)
	require.Nil(t, p.Managed)
	require.Equal(t, storageprofile.ProviderS3, p.BYOS.Provider)
	require.Equal(t, "https://s3.amazonaws.com", p.BYOS.Endpoint)
	require.Equal(t, "files", p.BYOS.Bucket)
	require.Equal(t, "AKIAEXAMPLE", p.BYOS.AccessKeyID)
	require.Equal(t, "secret", p.BYOS.SecretAccessKey)
	require.Equal(t, "user-1", p.UpdatedBy)
	require.False(t, p.UpdatedAt.IsZero())

	// Input must never be mutated.
	require.Equal(t, storageprofile.Mode("  BYOS "), raw.Mode)
	require.Equal(t, storageprofile.Provider("S3 "), raw.BYOS.Provider)
}

func TestNormalize_OmitsEmptyOptionals(t *testing.T) {
	t.Parallel()

	p := storageprofile.Normalize(&storageprofile.Profile{
		Mode: "byos",
		BYOS: &storageprofile.BYOS{
			Provider:        "s3",
			Endpoint:        "https://s3.amazonaws.com",
			Bucket:          "b",
			AccessKeyID:     "a",
			SecretAccessKey: "s",
			Region:          "  \t ",
			PublicURL:       "   ",
		},
	}, "admin")
	require.NotNil(t, p)

	// Omission, not empty string, is the canonical "unset" representation:
	// assert on key presence in the serialized document.
	data, err := json.Marshal(p.BYOS)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	require.NotContains(t, doc, "region")
	require.NotContains(t, doc, "public_url")
	require.Contains(t, doc, "endpoint")
	require.Contains(t, doc, "bucket")
}

func TestNormalize_Managed(t *testing.T) {
	t.Parallel()

	p := storageprofile.Normalize(&storageprofile.Profile{
		Mode: "Managed",
		Managed: &storageprofile.Managed{
			Namespace: "  org-42  ",
			Active:    true,
		},
		BYOS: &storageprofile.BYOS{Provider: "s3"},
	}, "admin")
	require.NotNil(t, p)
	require.Equal(t, storageprofile.ModeManaged, p.Mode)
	require.Equal(t, "org-42", p.Managed.Namespace)
	require.True(t, p.Managed.Active)
	require.False(t, p.Managed.CreatedAt.IsZero())

	// Mode determines the meaningful sibling; the other is dropped.
	require.Nil(t, p.BYOS)
}

func TestNormalize_UnknownMode(t *testing.T) {
	t.Parallel()

	require.Nil(t, storageprofile.Normalize(&storageprofile.Profile{Mode: "ftp"}, "admin"))
	require.Nil(t, storageprofile.Normalize(&storageprofile.Profile{}, "admin"))
	require.Nil(t, storageprofile.Normalize(nil, "admin"))
}
