// Package db provides PostgreSQL utilities for the control-plane database:
// pooled connections with startup retry, a health check closure, embedded
// goose migrations and a transaction helper.
//
// Configuration is environment-based:
//
//	CONTROLPLANE_DATABASE_URL        - connection URL (required)
//	CONTROLPLANE_MAX_OPEN_CONNS      - maximum open connections (default: 10)
//	CONTROLPLANE_MIN_CONNS           - minimum idle connections (default: 2)
//	CONTROLPLANE_HEALTHCHECK_PERIOD  - health check interval (default: 1m)
//	CONTROLPLANE_MAX_CONN_IDLE_TIME  - max connection idle time (default: 10m)
//	CONTROLPLANE_MAX_CONN_LIFETIME   - max connection lifetime (default: 30m)
//	CONTROLPLANE_RETRY_ATTEMPTS      - startup retry attempts (default: 3)
//	CONTROLPLANE_RETRY_INTERVAL      - base retry interval (default: 5s)
//	CONTROLPLANE_MIGRATIONS_TABLE    - goose table (default: broker_schema_migrations)
//
// Tenant databases are NOT opened through this package; see pkg/tenantconn
// for per-request, schema-scoped tenant handles.
package db
