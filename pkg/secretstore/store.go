package secretstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/classdesk/tenantbroker/pkg/controlplane"
	"github.com/classdesk/tenantbroker/pkg/envelope"
	"github.com/classdesk/tenantbroker/pkg/storageprofile"
)

// pgUndefinedColumn is the SQLSTATE Postgres reports when an UPDATE
// references a column the deployed schema does not have yet.
const pgUndefinedColumn = "42703"

// Querier is the slice of pgx the store needs. Satisfied by
// *pgxpool.Pool.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var _ Querier = (*pgxpool.Pool)(nil)

// RoleSource answers membership role lookups. Satisfied by
// *controlplane.Repository.
type RoleSource interface {
	MemberRole(ctx context.Context, orgID, userID uuid.UUID) (controlplane.Role, error)
}

// Store saves and loads envelope-encrypted secrets against the
// control-plane database. The dedicated key write path carries the
// authorization check itself so no caller can persist a key without a
// role check happening first.
type Store struct {
	db         Querier
	roles      RoleSource
	secrets    Secrets
	log        *slog.Logger
	invalidate func(orgID uuid.UUID)
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithInvalidator registers a callback fired after every successful
// dedicated-key write. The tenant connection registry hooks in here so
// a rotated key cannot keep serving pools built from the old one.
func WithInvalidator(fn func(orgID uuid.UUID)) StoreOption {
	return func(s *Store) {
		s.invalidate = fn
	}
}

// WithStoreLogger sets the logger for schema-skew notices.
func WithStoreLogger(log *slog.Logger) StoreOption {
	return func(s *Store) {
		s.log = log
	}
}

// NewStore creates a Store over the control-plane database.
func NewStore(db Querier, roles RoleSource, secrets Secrets, opts ...StoreOption) *Store {
	s := &Store{
		db:      db,
		roles:   roles,
		secrets: secrets,
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SaveDedicatedKey encrypts plaintext under the dedicated-key secret and
// writes it to the organization row. Only owners and admins may call it;
// any other role, or no membership at all, yields ErrForbidden.
//
// The write also stamps verified_at and setup_completed. Deployments
// mid-migration may not carry those columns yet, so an undefined-column
// error retries with the reduced statement instead of failing the save.
func (s *Store) SaveDedicatedKey(ctx context.Context, orgID, userID uuid.UUID, plaintext string) error {
	if plaintext == "" {
		return ErrEmptyKey
	}

	role, err := s.roles.MemberRole(ctx, orgID, userID)
	if errors.Is(err, controlplane.ErrNotAMember) {
		return ErrForbidden
	}
	if err != nil {
		return err
	}
	if !role.CanManageCredentials() {
		return ErrForbidden
	}

	key, err := s.secrets.DedicatedKey()
	if err != nil {
		return err
	}
	sealed, err := envelope.Encrypt(plaintext, key)
	if err != nil {
		return err
	}

	tag, err := s.db.Exec(ctx,
		`UPDATE organizations
		 SET dedicated_key_encrypted = $2, verified_at = now(), setup_completed = true, updated_at = now()
		 WHERE id = $1`,
		orgID, sealed)
	if isUndefinedColumn(err) {
		s.log.WarnContext(ctx, "organizations table missing setup columns, writing key only",
			slog.String("org_id", orgID.String()))
		tag, err = s.db.Exec(ctx,
			`UPDATE organizations SET dedicated_key_encrypted = $2, updated_at = now() WHERE id = $1`,
			orgID, sealed)
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return controlplane.ErrOrganizationNotFound
	}

	if s.invalidate != nil {
		s.invalidate(orgID)
	}
	return nil
}

// LoadDedicatedKey returns the organization's dedicated key in
// plaintext. A stored value that is not a sealed envelope is treated as
// a decryption failure; there is no plaintext fallback for keys.
func (s *Store) LoadDedicatedKey(ctx context.Context, orgID uuid.UUID) (string, error) {
	var sealed *string
	err := s.db.QueryRow(ctx,
		`SELECT dedicated_key_encrypted FROM organizations WHERE id = $1`, orgID).
		Scan(&sealed)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", controlplane.ErrOrganizationNotFound
	}
	if err != nil {
		return "", err
	}
	if sealed == nil || *sealed == "" {
		return "", ErrDedicatedKeyMissing
	}

	key, err := s.secrets.DedicatedKey()
	if err != nil {
		return "", err
	}
	plaintext, err := envelope.Decrypt(*sealed, key)
	if err != nil {
		return "", fmt.Errorf("%w: org %s: %v", ErrDecryptionFailed, orgID, err)
	}
	return plaintext, nil
}

// SealProfile encrypts a profile's BYOS credentials under the
// credential-purpose secret. Managed profiles pass through unchanged.
func (s *Store) SealProfile(p *storageprofile.Profile) (*storageprofile.Profile, error) {
	key, err := s.secrets.BYOSKey()
	if err != nil {
		return nil, err
	}
	return storageprofile.EncryptCredentials(p, key)
}

// OpenProfile decrypts a profile's sealed BYOS credentials for
// immediate use. The result must never be written back.
func (s *Store) OpenProfile(p *storageprofile.Profile, opts ...storageprofile.DecryptOption) (*storageprofile.Profile, error) {
	key, err := s.secrets.BYOSKey()
	if err != nil {
		return nil, err
	}
	return storageprofile.DecryptCredentials(p, key, opts...)
}

func isUndefinedColumn(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUndefinedColumn
}
