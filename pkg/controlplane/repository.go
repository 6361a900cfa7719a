package controlplane

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/classdesk/tenantbroker/pkg/storageprofile"
)

// Repository reads and writes control-plane rows. Settings reads go
// through an optional Redis cache with a bounded TTL; every write
// invalidates the organization's cache entry.
type Repository struct {
	pool     *pgxpool.Pool
	cache    redis.UniversalClient
	log      *slog.Logger
	cacheTTL time.Duration
}

// RepositoryOption configures a Repository.
type RepositoryOption func(*Repository)

// WithCache enables Redis caching of settings rows. Entries are
// time-bounded and deleted on every write to the organization.
func WithCache(client redis.UniversalClient, ttl time.Duration) RepositoryOption {
	return func(r *Repository) {
		r.cache = client
		if ttl > 0 {
			r.cacheTTL = ttl
		}
	}
}

// WithLogger sets the logger used for cache degradation notices.
func WithLogger(log *slog.Logger) RepositoryOption {
	return func(r *Repository) {
		r.log = log
	}
}

// NewRepository creates a Repository over the control-plane pool.
func NewRepository(pool *pgxpool.Pool, opts ...RepositoryOption) *Repository {
	r := &Repository{
		pool:     pool,
		cacheTTL: 5 * time.Minute,
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func settingsCacheKey(orgID uuid.UUID) string {
	return "org_settings:" + orgID.String()
}

// CreateOrganization inserts a new organization with the given owner.
func (r *Repository) CreateOrganization(ctx context.Context, name string, ownerID uuid.UUID) (*Organization, error) {
	org := &Organization{
		ID:        uuid.New(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
	org.UpdatedAt = org.CreatedAt

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	_, err = tx.Exec(ctx,
		`INSERT INTO organizations (id, name, created_at, updated_at) VALUES ($1, $2, $3, $4)`,
		org.ID, org.Name, org.CreatedAt, org.UpdatedAt)
	if err != nil {
		return nil, err
	}
	_, err = tx.Exec(ctx,
		`INSERT INTO org_memberships (org_id, user_id, role) VALUES ($1, $2, $3)`,
		org.ID, ownerID, RoleOwner)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return org, nil
}

// GetOrganization loads an organization row. The dedicated key stays
// encrypted; only pkg/secretstore opens it.
func (r *Repository) GetOrganization(ctx context.Context, id uuid.UUID) (*Organization, error) {
	org := &Organization{}
	var keyEnc *string
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, dedicated_key_encrypted, created_at, updated_at, verified_at, COALESCE(setup_completed, false)
		 FROM organizations WHERE id = $1`, id).
		Scan(&org.ID, &org.Name, &keyEnc, &org.CreatedAt, &org.UpdatedAt, &org.VerifiedAt, &org.SetupCompleted)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrOrganizationNotFound
	}
	if err != nil {
		return nil, err
	}
	if keyEnc != nil {
		org.DedicatedKeyEncrypted = *keyEnc
	}
	return org, nil
}

// GetSettings loads an organization's settings, cache-first.
func (r *Repository) GetSettings(ctx context.Context, orgID uuid.UUID) (*Settings, error) {
	if r.cache != nil {
		if data, err := r.cache.Get(ctx, settingsCacheKey(orgID)).Bytes(); err == nil {
			s := &Settings{}
			if err := json.Unmarshal(data, s); err == nil {
				return s, nil
			}
		}
	}

	s := &Settings{}
	var profileJSON, permsJSON []byte
	err := r.pool.QueryRow(ctx,
		`SELECT org_id, COALESCE(supabase_url, ''), COALESCE(anon_key, ''), storage_profile, permissions, updated_at
		 FROM org_settings WHERE org_id = $1`, orgID).
		Scan(&s.OrgID, &s.SupabaseURL, &s.AnonKey, &profileJSON, &permsJSON, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrSettingsNotFound
	}
	if err != nil {
		return nil, err
	}

	if len(profileJSON) > 0 {
		s.StorageProfile = &storageprofile.Profile{}
		if err := json.Unmarshal(profileJSON, s.StorageProfile); err != nil {
			return nil, fmt.Errorf("controlplane: malformed storage profile for org %s: %w", orgID, err)
		}
	}
	if len(permsJSON) > 0 {
		if err := json.Unmarshal(permsJSON, &s.Permissions); err != nil {
			return nil, fmt.Errorf("controlplane: malformed permissions for org %s: %w", orgID, err)
		}
	}

	if r.cache != nil {
		if data, err := json.Marshal(s); err == nil {
			if err := r.cache.Set(ctx, settingsCacheKey(orgID), data, r.cacheTTL).Err(); err != nil {
				r.log.WarnContext(ctx, "settings cache write failed", slog.String("org_id", orgID.String()), slog.String("error", err.Error()))
			}
		}
	}
	return s, nil
}

// SaveConnectionSettings upserts the non-secret tenant database
// coordinates.
func (r *Repository) SaveConnectionSettings(ctx context.Context, orgID uuid.UUID, supabaseURL, anonKey string) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO org_settings (org_id, supabase_url, anon_key, updated_at)
		 VALUES ($1, $2, $3, now())
		 ON CONFLICT (org_id) DO UPDATE
		 SET supabase_url = EXCLUDED.supabase_url, anon_key = EXCLUDED.anon_key, updated_at = now()`,
		orgID, supabaseURL, anonKey)
	if err != nil {
		return err
	}
	r.invalidate(ctx, orgID)
	return nil
}

// SaveStorageProfile upserts the storage profile document. The write
// boundary enforces credential sealing: a BYOS profile still carrying
// plaintext credentials is rejected, never persisted.
func (r *Repository) SaveStorageProfile(ctx context.Context, orgID uuid.UUID, p *storageprofile.Profile) error {
	if p != nil && p.Mode == storageprofile.ModeBYOS && p.BYOS != nil {
		if p.BYOS.AccessKeyID != "" || p.BYOS.SecretAccessKey != "" {
			return ErrPlaintextProfile
		}
	}

	data, err := json.Marshal(p)
	if err != nil {
		return err
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO org_settings (org_id, storage_profile, updated_at)
		 VALUES ($1, $2, now())
		 ON CONFLICT (org_id) DO UPDATE
		 SET storage_profile = EXCLUDED.storage_profile, updated_at = now()`,
		orgID, data)
	if err != nil {
		return err
	}
	r.invalidate(ctx, orgID)
	return nil
}

// SetStorageDisconnected flips the profile's disconnected flag in place.
// The profile itself is retained so grace-window reads keep working.
func (r *Repository) SetStorageDisconnected(ctx context.Context, orgID uuid.UUID, disconnected bool) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE org_settings
		 SET storage_profile = jsonb_set(storage_profile, '{disconnected}', to_jsonb($2::boolean)), updated_at = now()
		 WHERE org_id = $1 AND storage_profile IS NOT NULL`,
		orgID, disconnected)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrSettingsNotFound
	}
	r.invalidate(ctx, orgID)
	return nil
}

// SetStorageAccessLevel records the operator's grace-window policy in
// permissions.storage_access_level.
func (r *Repository) SetStorageAccessLevel(ctx context.Context, orgID uuid.UUID, level string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE org_settings
		 SET permissions = jsonb_set(COALESCE(permissions, '{}'::jsonb), '{storage_access_level}', to_jsonb($2::text)), updated_at = now()
		 WHERE org_id = $1`,
		orgID, level)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrSettingsNotFound
	}
	r.invalidate(ctx, orgID)
	return nil
}

// MemberRole returns the caller's role in the organization.
func (r *Repository) MemberRole(ctx context.Context, orgID, userID uuid.UUID) (Role, error) {
	var role Role
	err := r.pool.QueryRow(ctx,
		`SELECT role FROM org_memberships WHERE org_id = $1 AND user_id = $2`,
		orgID, userID).Scan(&role)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotAMember
	}
	if err != nil {
		return "", err
	}
	return role, nil
}

// invalidate drops the cached settings row. Cache failures degrade to
// slower reads, never to stale security decisions: the TTL bounds staleness
// and secrets are never cached.
func (r *Repository) invalidate(ctx context.Context, orgID uuid.UUID) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Del(ctx, settingsCacheKey(orgID)).Err(); err != nil {
		r.log.WarnContext(ctx, "settings cache invalidation failed",
			slog.String("org_id", orgID.String()), slog.String("error", err.Error()))
	}
}
