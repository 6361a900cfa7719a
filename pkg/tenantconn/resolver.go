package tenantconn

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/classdesk/tenantbroker/pkg/controlplane"
	"github.com/classdesk/tenantbroker/pkg/secretstore"
)

// SettingsSource loads an organization's connection settings. Satisfied
// by *controlplane.Repository.
type SettingsSource interface {
	GetSettings(ctx context.Context, orgID uuid.UUID) (*controlplane.Settings, error)
}

// KeySource loads an organization's decrypted dedicated key. Satisfied
// by *secretstore.Store.
type KeySource interface {
	LoadDedicatedKey(ctx context.Context, orgID uuid.UUID) (string, error)
}

// Conn is a ready tenant database handle. The decrypted dedicated key is
// consumed while building the pool and is not retained here.
type Conn struct {
	OrgID       uuid.UUID
	SupabaseURL string
	AnonKey     string
	Schema      string
	Pool        *pgxpool.Pool
}

// Close releases the tenant pool. Safe on a Conn without one.
func (c *Conn) Close() {
	if c != nil && c.Pool != nil {
		c.Pool.Close()
	}
}

type connectFunc func(ctx context.Context, dsn, schema string) (*pgxpool.Pool, error)

// Resolver turns an organization id into a ready tenant connection:
// load settings, decrypt the dedicated key, build a schema-scoped pool.
// Each step failure is a terminal ResolveError; the resolver never
// retries on its own.
type Resolver struct {
	settings SettingsSource
	keys     KeySource
	connect  connectFunc
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithConnectFunc replaces the pool constructor. Tests use it to resolve
// without a live database.
func WithConnectFunc(fn func(ctx context.Context, dsn, schema string) (*pgxpool.Pool, error)) ResolverOption {
	return func(r *Resolver) {
		r.connect = fn
	}
}

// NewResolver creates a Resolver over the given sources.
func NewResolver(settings SettingsSource, keys KeySource, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		settings: settings,
		keys:     keys,
		connect:  buildPool,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve runs the per-request state machine for orgID. Failures come
// back as *ResolveError with the reason for the state that failed;
// control-plane infrastructure errors pass through untyped.
func (r *Resolver) Resolve(ctx context.Context, orgID uuid.UUID) (*Conn, error) {
	settings, err := r.settings.GetSettings(ctx, orgID)
	if errors.Is(err, controlplane.ErrSettingsNotFound) {
		return nil, failed(ReasonMissingConnectionSettings, err)
	}
	if err != nil {
		return nil, err
	}
	if settings.SupabaseURL == "" {
		return nil, failed(ReasonMissingConnectionSettings, errors.New("settings row has no database url"))
	}

	key, err := r.keys.LoadDedicatedKey(ctx, orgID)
	switch {
	case errors.Is(err, secretstore.ErrDedicatedKeyMissing),
		errors.Is(err, controlplane.ErrOrganizationNotFound):
		return nil, failed(ReasonMissingDedicatedKey, err)
	case errors.Is(err, secretstore.ErrEncryptionNotConfigured):
		return nil, failed(ReasonEncryptionNotConfigured, err)
	case errors.Is(err, secretstore.ErrDecryptionFailed):
		return nil, failed(ReasonDecryptFailed, err)
	case err != nil:
		return nil, failed(ReasonConnectFailed, err)
	}

	schema := SchemaName(orgID)
	dsn, err := TenantDSN(settings.SupabaseURL, key)
	if err != nil {
		return nil, failed(ReasonConnectFailed, err)
	}

	pool, err := r.connect(ctx, dsn, schema)
	if err != nil {
		return nil, failed(ReasonConnectFailed, err)
	}

	return &Conn{
		OrgID:       orgID,
		SupabaseURL: settings.SupabaseURL,
		AnonKey:     settings.AnonKey,
		Schema:      schema,
		Pool:        pool,
	}, nil
}

// SchemaName is the tenant's private schema, derived from the
// organization id.
func SchemaName(orgID uuid.UUID) string {
	return "org_" + strings.ReplaceAll(orgID.String(), "-", "_")
}

// TenantDSN builds the tenant database DSN. A dedicated key that is
// itself a postgres URL is used directly; otherwise the key is the
// database password for the project's direct-connection host derived
// from the project URL.
func TenantDSN(projectURL, dedicatedKey string) (string, error) {
	if strings.HasPrefix(dedicatedKey, "postgres://") || strings.HasPrefix(dedicatedKey, "postgresql://") {
		return dedicatedKey, nil
	}

	u, err := url.Parse(projectURL)
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("tenantconn: unusable project url %q", projectURL)
	}
	host := u.Hostname()
	if !strings.HasPrefix(host, "db.") {
		host = "db." + host
	}
	return fmt.Sprintf("postgres://postgres:%s@%s:5432/postgres",
		url.QueryEscape(dedicatedKey), host), nil
}

func buildPool(ctx context.Context, dsn, schema string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	cfg.ConnConfig.RuntimeParams["search_path"] = schema

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}
