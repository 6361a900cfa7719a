package tenantconn

import (
	"fmt"
	"net/http"
)

// Reason identifies the state the resolver failed in. Reasons are part
// of the API surface: handlers map them to distinct HTTP statuses so an
// operator misconfiguration (500) is distinguishable from a tenant that
// simply has not finished setup (412/428).
type Reason string

const (
	// ReasonMissingConnectionSettings means the organization never
	// configured a tenant database.
	ReasonMissingConnectionSettings Reason = "missing_connection_settings"

	// ReasonMissingDedicatedKey means connection settings exist but no
	// dedicated key was ever saved.
	ReasonMissingDedicatedKey Reason = "missing_dedicated_key"

	// ReasonEncryptionNotConfigured means the operator encryption
	// secret is absent from the environment.
	ReasonEncryptionNotConfigured Reason = "encryption_not_configured"

	// ReasonDecryptFailed means the stored key exists but cannot be
	// opened: tampering, or a rotated operator secret.
	ReasonDecryptFailed Reason = "failed_to_decrypt_key"

	// ReasonConnectFailed means the tenant pool could not be built or
	// reached.
	ReasonConnectFailed Reason = "failed_to_connect_tenant"
)

// ResolveError is the typed failure returned by Resolver.Resolve.
type ResolveError struct {
	Reason Reason
	Err    error
}

func (e *ResolveError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("tenantconn: %s", e.Reason)
	}
	return fmt.Sprintf("tenantconn: %s: %v", e.Reason, e.Err)
}

func (e *ResolveError) Unwrap() error { return e.Err }

// HTTPStatus maps the failure reason to the response status handlers
// should emit.
func (e *ResolveError) HTTPStatus() int {
	switch e.Reason {
	case ReasonMissingConnectionSettings:
		return http.StatusPreconditionFailed
	case ReasonMissingDedicatedKey:
		return http.StatusPreconditionRequired
	default:
		return http.StatusInternalServerError
	}
}

func failed(reason Reason, err error) *ResolveError {
	return &ResolveError{Reason: reason, Err: err}
}
