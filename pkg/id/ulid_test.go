package id_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/classdesk/tenantbroker/pkg/id"
)

func TestNewULID(t *testing.T) {
	t.Parallel()

	ulid := id.NewULID()
	require.Len(t, ulid, 26)
	for _, c := range ulid {
		require.Contains(t, "0123456789ABCDEFGHJKMNPQRSTVWXYZ", string(c))
	}
}

func TestNewULID_Unique(t *testing.T) {
	t.Parallel()

	seen := make(map[string]struct{}, 1000)
	for range 1000 {
		ulid := id.NewULID()
		_, dup := seen[ulid]
		require.False(t, dup, "duplicate ULID %s", ulid)
		seen[ulid] = struct{}{}
	}
}

func TestNewULID_Sortable(t *testing.T) {
	t.Parallel()

	first := id.NewULID()
	time.Sleep(2 * time.Millisecond)
	second := id.NewULID()
	require.Less(t, first, second)
}
