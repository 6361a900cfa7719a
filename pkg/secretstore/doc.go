// Package secretstore is the only code allowed to open envelope-encrypted
// secrets: the per-tenant dedicated database key and sealed BYOS storage
// credentials.
//
// Two encryption purposes exist, each with its own operator secret.
// Secrets resolve once at startup from a recognized list of environment
// variables (first non-empty wins); keys derive per request via
// envelope.DeriveKey and never persist.
//
// The dedicated-key write path embeds the authorization check: only
// organization owners and admins may save a key, and a successful save
// fires the registered invalidator so cached tenant connections built
// from the previous key are torn down. Loads fail closed: a value that
// cannot be opened is an error, never returned as-is.
package secretstore
