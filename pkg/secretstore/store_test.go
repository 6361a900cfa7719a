package secretstore_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"github.com/classdesk/tenantbroker/pkg/controlplane"
	"github.com/classdesk/tenantbroker/pkg/envelope"
	"github.com/classdesk/tenantbroker/pkg/secretstore"
)

type fakeRoles struct {
	role controlplane.Role
	err  error
}

func (f fakeRoles) MemberRole(context.Context, uuid.UUID, uuid.UUID) (controlplane.Role, error) {
	return f.role, f.err
}

type execCall struct {
	sql  string
	args []any
}

type execResult struct {
	tag pgconn.CommandTag
	err error
}

type fakeRow struct {
	val *string
	err error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*(dest[0].(**string)) = r.val
	return nil
}

type fakeDB struct {
	execs       []execCall
	execResults []execResult
	row         fakeRow
}

func (f *fakeDB) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.execs = append(f.execs, execCall{sql: sql, args: args})
	res := execResult{tag: pgconn.NewCommandTag("UPDATE 1")}
	if len(f.execResults) > 0 {
		res = f.execResults[0]
		f.execResults = f.execResults[1:]
	}
	return res.tag, res.err
}

func (f *fakeDB) QueryRow(context.Context, string, ...any) pgx.Row {
	return f.row
}

func adminStore(db *fakeDB, roles secretstore.RoleSource, opts ...secretstore.StoreOption) *secretstore.Store {
	return secretstore.NewStore(db, roles, secretstore.NewSecrets("unit-secret", "unit-secret"), opts...)
}

func TestSaveDedicatedKey_EmptyKey(t *testing.T) {
	t.Parallel()

	db := &fakeDB{}
	store := adminStore(db, fakeRoles{role: controlplane.RoleOwner})

	err := store.SaveDedicatedKey(context.Background(), uuid.New(), uuid.New(), "")
	require.ErrorIs(t, err, secretstore.ErrEmptyKey)
	require.Empty(t, db.execs, "nothing may touch the database")
}

func TestSaveDedicatedKey_RoleGate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		roles fakeRoles
	}{
		{name: "member may not save", roles: fakeRoles{role: controlplane.RoleMember}},
		{name: "non-member reads as forbidden", roles: fakeRoles{err: controlplane.ErrNotAMember}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			db := &fakeDB{}
			store := adminStore(db, tt.roles)

			err := store.SaveDedicatedKey(context.Background(), uuid.New(), uuid.New(), "db-password")
			require.ErrorIs(t, err, secretstore.ErrForbidden)
			require.Empty(t, db.execs)
		})
	}
}

func TestSaveDedicatedKey_SealsBeforeWrite(t *testing.T) {
	t.Parallel()

	var invalidated []uuid.UUID
	db := &fakeDB{}
	store := adminStore(db, fakeRoles{role: controlplane.RoleAdmin},
		secretstore.WithInvalidator(func(orgID uuid.UUID) {
			invalidated = append(invalidated, orgID)
		}))

	orgID := uuid.New()
	require.NoError(t, store.SaveDedicatedKey(context.Background(), orgID, uuid.New(), "db-password"))

	require.Len(t, db.execs, 1)
	require.Contains(t, db.execs[0].sql, "setup_completed")
	require.Contains(t, db.execs[0].sql, "verified_at")

	sealed, ok := db.execs[0].args[1].(string)
	require.True(t, ok)
	require.True(t, envelope.IsEnvelope(sealed), "the key must be persisted sealed, never plaintext")
	require.NotContains(t, sealed, "db-password")

	require.Equal(t, []uuid.UUID{orgID}, invalidated)
}

func TestSaveDedicatedKey_UndefinedColumnRetriesReducedWrite(t *testing.T) {
	t.Parallel()

	db := &fakeDB{execResults: []execResult{
		{err: &pgconn.PgError{Code: "42703"}},
		{tag: pgconn.NewCommandTag("UPDATE 1")},
	}}
	store := adminStore(db, fakeRoles{role: controlplane.RoleOwner})

	require.NoError(t, store.SaveDedicatedKey(context.Background(), uuid.New(), uuid.New(), "db-password"))

	require.Len(t, db.execs, 2)
	require.Contains(t, db.execs[0].sql, "setup_completed")
	require.NotContains(t, db.execs[1].sql, "setup_completed")
	require.NotContains(t, db.execs[1].sql, "verified_at")
	require.Contains(t, db.execs[1].sql, "dedicated_key_encrypted")
}

func TestSaveDedicatedKey_OtherErrorDoesNotRetry(t *testing.T) {
	t.Parallel()

	db := &fakeDB{execResults: []execResult{
		{err: &pgconn.PgError{Code: "23505"}},
	}}
	store := adminStore(db, fakeRoles{role: controlplane.RoleOwner})

	err := store.SaveDedicatedKey(context.Background(), uuid.New(), uuid.New(), "db-password")
	require.Error(t, err)
	require.Len(t, db.execs, 1)
}

func TestSaveDedicatedKey_OrganizationGone(t *testing.T) {
	t.Parallel()

	db := &fakeDB{execResults: []execResult{
		{tag: pgconn.NewCommandTag("UPDATE 0")},
	}}
	store := adminStore(db, fakeRoles{role: controlplane.RoleOwner})

	err := store.SaveDedicatedKey(context.Background(), uuid.New(), uuid.New(), "db-password")
	require.ErrorIs(t, err, controlplane.ErrOrganizationNotFound)
}

func TestLoadDedicatedKey_RoundTrip(t *testing.T) {
	t.Parallel()

	key, err := envelope.DeriveKey("unit-secret")
	require.NoError(t, err)
	sealed, err := envelope.Encrypt("db-password", key)
	require.NoError(t, err)

	db := &fakeDB{row: fakeRow{val: &sealed}}
	store := adminStore(db, fakeRoles{})

	plaintext, err := store.LoadDedicatedKey(context.Background(), uuid.New())
	require.NoError(t, err)
	require.Equal(t, "db-password", plaintext)
}

func TestLoadDedicatedKey_Missing(t *testing.T) {
	t.Parallel()

	empty := ""
	tests := []struct {
		name string
		row  fakeRow
		want error
	}{
		{name: "null column", row: fakeRow{val: nil}, want: secretstore.ErrDedicatedKeyMissing},
		{name: "empty column", row: fakeRow{val: &empty}, want: secretstore.ErrDedicatedKeyMissing},
		{name: "no organization row", row: fakeRow{err: pgx.ErrNoRows}, want: controlplane.ErrOrganizationNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			store := adminStore(&fakeDB{row: tt.row}, fakeRoles{})
			_, err := store.LoadDedicatedKey(context.Background(), uuid.New())
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestLoadDedicatedKey_FailsClosed(t *testing.T) {
	t.Parallel()

	// A stored value sealed under a different operator secret must come
	// back as a decryption failure, never as garbage or plaintext.
	otherKey, err := envelope.DeriveKey("rotated-away-secret")
	require.NoError(t, err)
	sealed, err := envelope.Encrypt("db-password", otherKey)
	require.NoError(t, err)

	store := adminStore(&fakeDB{row: fakeRow{val: &sealed}}, fakeRoles{})
	_, err = store.LoadDedicatedKey(context.Background(), uuid.New())
	require.ErrorIs(t, err, secretstore.ErrDecryptionFailed)

	// A value that is not an envelope at all is equally fatal.
	junk := "plain-old-password"
	store = adminStore(&fakeDB{row: fakeRow{val: &junk}}, fakeRoles{})
	_, err = store.LoadDedicatedKey(context.Background(), uuid.New())
	require.ErrorIs(t, err, secretstore.ErrDecryptionFailed)
}

func TestLoadDedicatedKey_NoSecret(t *testing.T) {
	t.Parallel()

	sealed := "v1:gcm:aaaa:bbbb:cccc"
	store := secretstore.NewStore(&fakeDB{row: fakeRow{val: &sealed}}, fakeRoles{},
		secretstore.NewSecrets("", ""))

	_, err := store.LoadDedicatedKey(context.Background(), uuid.New())
	require.ErrorIs(t, err, secretstore.ErrEncryptionNotConfigured)
}
