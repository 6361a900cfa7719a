package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/classdesk/tenantbroker/pkg/blobstore"
	"github.com/classdesk/tenantbroker/pkg/controlplane"
	"github.com/classdesk/tenantbroker/pkg/export"
	"github.com/classdesk/tenantbroker/pkg/policy"
	"github.com/classdesk/tenantbroker/pkg/secretstore"
	"github.com/classdesk/tenantbroker/pkg/storageprofile"
	"github.com/classdesk/tenantbroker/pkg/tenantconn"
)

type errorBody struct {
	Error      string                     `json:"error"`
	Message    string                     `json:"message,omitempty"`
	Violations []storageprofile.Violation `json:"violations,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps package sentinels to the response taxonomy. Anything
// unmapped is a 500 with a generic body; the detail goes to the log,
// never to the client.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)

	if status >= http.StatusInternalServerError {
		s.log.ErrorContext(r.Context(), "request failed",
			slog.String("path", r.URL.Path),
			slog.String("code", code),
			slog.String("error", err.Error()))
		writeJSON(w, status, errorBody{Error: code, Message: "internal server error"})
		return
	}
	writeJSON(w, status, errorBody{Error: code, Message: err.Error()})
}

func classify(err error) (int, string) {
	var resErr *tenantconn.ResolveError
	if errors.As(err, &resErr) {
		return resErr.HTTPStatus(), string(resErr.Reason)
	}

	switch {
	case errors.Is(err, secretstore.ErrForbidden),
		errors.Is(err, controlplane.ErrNotAMember):
		return http.StatusForbidden, "forbidden"

	case errors.Is(err, controlplane.ErrOrganizationNotFound):
		return http.StatusNotFound, "organization_not_found"
	case errors.Is(err, blobstore.ErrNotFound):
		return http.StatusNotFound, "object_not_found"

	case errors.Is(err, policy.ErrStorageNotConfigured),
		errors.Is(err, controlplane.ErrSettingsNotFound):
		return http.StatusPreconditionFailed, "storage_not_configured"

	case errors.Is(err, policy.ErrStorageDisconnected):
		return http.StatusConflict, "storage_disconnected"
	case errors.Is(err, policy.ErrStorageRevoked):
		return http.StatusConflict, "storage_revoked"

	case errors.Is(err, secretstore.ErrEmptyKey),
		errors.Is(err, storageprofile.ErrMissingCredentials),
		errors.Is(err, blobstore.ErrNoPublicURL),
		errors.Is(err, blobstore.ErrMissingBYOSConfig),
		errors.Is(err, blobstore.ErrMissingManagedConfig),
		errors.Is(err, blobstore.ErrUnknownProfileMode),
		errors.Is(err, blobstore.ErrUnknownProvider):
		return http.StatusUnprocessableEntity, "invalid_request"

	case errors.Is(err, blobstore.ErrAccessDenied):
		return http.StatusBadGateway, "backend_access_denied"
	case errors.Is(err, export.ErrAllItemsFailed):
		return http.StatusBadGateway, "export_failed"

	case errors.Is(err, secretstore.ErrDedicatedKeyMissing):
		return http.StatusPreconditionRequired, string(tenantconn.ReasonMissingDedicatedKey)

	case errors.Is(err, secretstore.ErrEncryptionNotConfigured),
		errors.Is(err, storageprofile.ErrEncryptionNotConfigured):
		return http.StatusInternalServerError, "encryption_not_configured"
	case errors.Is(err, secretstore.ErrDecryptionFailed),
		errors.Is(err, storageprofile.ErrDecryptionFailed):
		return http.StatusInternalServerError, "decryption_failed"
	case errors.Is(err, blobstore.ErrSystemStorageNotConfigured):
		return http.StatusInternalServerError, "system_storage_not_configured"

	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
