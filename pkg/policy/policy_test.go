package policy_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/classdesk/tenantbroker/pkg/policy"
	"github.com/classdesk/tenantbroker/pkg/storageprofile"
)

func managedProfile(disconnected bool) *storageprofile.Profile {
	return &storageprofile.Profile{
		Mode:         storageprofile.ModeManaged,
		Managed:      &storageprofile.Managed{Namespace: "org-1", Active: true},
		Disconnected: disconnected,
	}
}

func byosProfile(disconnected bool) *storageprofile.Profile {
	return &storageprofile.Profile{
		Mode: storageprofile.ModeBYOS,
		BYOS: &storageprofile.BYOS{
			Provider: storageprofile.ProviderS3,
			Endpoint: "https://s3.amazonaws.com",
			Bucket:   "b",
		},
		Disconnected: disconnected,
	}
}

func TestParseAccessLevel(t *testing.T) {
	t.Parallel()

	require.Equal(t, policy.AccessFull, policy.ParseAccessLevel("full"))
	require.Equal(t, policy.AccessNone, policy.ParseAccessLevel(" NONE "))
	require.Equal(t, policy.AccessReadOnly, policy.ParseAccessLevel("read_only"))

	// Absent or unknown levels default to a read-only grace window.
	require.Equal(t, policy.AccessReadOnly, policy.ParseAccessLevel(""))
	require.Equal(t, policy.AccessReadOnly, policy.ParseAccessLevel("whatever"))
}

func TestEvaluate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		profile *storageprofile.Profile
		level   policy.AccessLevel
		want    policy.State
	}{
		{name: "connected managed", profile: managedProfile(false), level: policy.AccessFull, want: policy.StateConnected},
		{name: "disconnected managed defaults to grace", profile: managedProfile(true), level: policy.AccessReadOnly, want: policy.StateDisconnectedGrace},
		{name: "disconnected managed revoked", profile: managedProfile(true), level: policy.AccessNone, want: policy.StateDisconnectedRevoked},
		{name: "disconnected byos never revoked", profile: byosProfile(true), level: policy.AccessNone, want: policy.StateDisconnectedGrace},
		{name: "connected byos", profile: byosProfile(false), level: policy.AccessNone, want: policy.StateConnected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			state, err := policy.Evaluate(tt.profile, tt.level)
			require.NoError(t, err)
			require.Equal(t, tt.want, state)
		})
	}
}

func TestEvaluate_NeverConfigured(t *testing.T) {
	t.Parallel()

	_, err := policy.Evaluate(nil, policy.AccessFull)
	require.ErrorIs(t, err, policy.ErrStorageNotConfigured)
}

func TestAuthorize_DisconnectedManagedGrace(t *testing.T) {
	t.Parallel()

	// Disconnected managed storage with no explicit grace permission: put
	// is rejected with the disconnect condition, while bulk download/read
	// stays available.
	state, err := policy.Evaluate(managedProfile(true), policy.ParseAccessLevel(""))
	require.NoError(t, err)

	require.ErrorIs(t, policy.Authorize(policy.OpPut, state), policy.ErrStorageDisconnected)
	require.ErrorIs(t, policy.Authorize(policy.OpDelete, state), policy.ErrStorageDisconnected)
	require.NoError(t, policy.Authorize(policy.OpRead, state))
	require.NoError(t, policy.Authorize(policy.OpPresign, state))
	require.NoError(t, policy.Authorize(policy.OpExport, state))
}

func TestAuthorize_Revoked(t *testing.T) {
	t.Parallel()

	state, err := policy.Evaluate(managedProfile(true), policy.AccessNone)
	require.NoError(t, err)

	require.ErrorIs(t, policy.Authorize(policy.OpPut, state), policy.ErrStorageDisconnected)
	require.ErrorIs(t, policy.Authorize(policy.OpRead, state), policy.ErrStorageRevoked)
	require.ErrorIs(t, policy.Authorize(policy.OpExport, state), policy.ErrStorageRevoked)
}

func TestAuthorize_Connected(t *testing.T) {
	t.Parallel()

	for _, op := range []policy.Operation{policy.OpPut, policy.OpDelete, policy.OpRead, policy.OpPresign, policy.OpExport} {
		require.NoError(t, policy.Authorize(op, policy.StateConnected))
	}
	require.ErrorIs(t, policy.Authorize("compact", policy.StateConnected), policy.ErrUnknownOperation)
}
