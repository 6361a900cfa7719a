// Package controlplane owns the shared database rows every tenant-scoped
// request depends on: organizations (with the envelope-encrypted dedicated
// key), org_settings (connection coordinates, storage profile, permissions)
// and org_memberships.
//
// Settings reads are cache-first when a Redis client is configured; cache
// entries carry a bounded TTL and are deleted on every write to the
// organization, so a re-saved storage profile or permission change takes
// effect within one request. Encrypted secrets are stored and returned
// opaque — decryption happens in pkg/secretstore and pkg/storageprofile.
//
// Migrations for the control-plane schema are embedded and applied with
// pkg/db.Migrate at startup.
package controlplane
