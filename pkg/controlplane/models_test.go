package controlplane_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/classdesk/tenantbroker/pkg/controlplane"
	"github.com/classdesk/tenantbroker/pkg/storageprofile"
)

func TestRole_CanManageCredentials(t *testing.T) {
	t.Parallel()

	require.True(t, controlplane.RoleOwner.CanManageCredentials())
	require.True(t, controlplane.RoleAdmin.CanManageCredentials())
	require.False(t, controlplane.RoleMember.CanManageCredentials())
	require.False(t, controlplane.Role("viewer").CanManageCredentials())
}

func TestSettings_StorageAccessLevel(t *testing.T) {
	t.Parallel()

	var s *controlplane.Settings
	require.Empty(t, s.StorageAccessLevel())

	s = &controlplane.Settings{}
	require.Empty(t, s.StorageAccessLevel())

	s.Permissions = map[string]any{"storage_access_level": "read_only"}
	require.Equal(t, "read_only", s.StorageAccessLevel())

	// Non-string values are treated as unset, not coerced.
	s.Permissions = map[string]any{"storage_access_level": 42}
	require.Empty(t, s.StorageAccessLevel())
}

func TestSaveStorageProfile_RejectsPlaintextCredentials(t *testing.T) {
	t.Parallel()

	// The write boundary must refuse unsealed credentials before any
	// database work happens.
	repo := controlplane.NewRepository(nil)
	err := repo.SaveStorageProfile(context.Background(), uuid.New(), &storageprofile.Profile{
		Mode: storageprofile.ModeBYOS,
		BYOS: &storageprofile.BYOS{
			Provider:        storageprofile.ProviderS3,
			Endpoint:        "https://s3.amazonaws.com",
			Bucket:          "b",
			AccessKeyID:     "plain",
			SecretAccessKey: "plain",
		},
	})
	require.ErrorIs(t, err, controlplane.ErrPlaintextProfile)
}
