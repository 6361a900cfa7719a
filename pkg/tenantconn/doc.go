// Package tenantconn resolves an organization id into a ready,
// schema-scoped tenant database handle.
//
// Resolution is a per-request state machine: load the organization's
// connection settings, decrypt its dedicated key, build a pgx pool with
// search_path pinned to the tenant schema. Each step that fails produces
// a typed ResolveError whose Reason maps to a distinct HTTP status, so
// "tenant never finished setup" (412, 428) never masquerades as an
// operator outage (500). The resolver never retries; callers re-invoke
// it if they want another attempt.
//
// Registry adds optional pooling on top: entries are keyed by
// organization id, expire on a bounded TTL, and are torn down whenever
// that organization's dedicated key is re-saved.
package tenantconn
