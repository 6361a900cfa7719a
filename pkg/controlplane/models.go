package controlplane

import (
	"time"

	"github.com/google/uuid"

	"github.com/classdesk/tenantbroker/pkg/storageprofile"
)

// Role is an organization membership role.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// CanManageCredentials reports whether the role may save tenant
// credentials or storage configuration.
func (r Role) CanManageCredentials() bool {
	return r == RoleOwner || r == RoleAdmin
}

// Organization is a control-plane tenant record. DedicatedKeyEncrypted is
// the envelope-encrypted database service credential; it is written only
// through the admin "save credentials" path and never read in plaintext
// outside pkg/secretstore.
type Organization struct {
	ID                    uuid.UUID
	Name                  string
	DedicatedKeyEncrypted string
	CreatedAt             time.Time
	UpdatedAt             time.Time
	VerifiedAt            *time.Time
	SetupCompleted        bool
}

// Settings is the per-organization configuration row read by every
// tenant-scoped request. SupabaseURL and AnonKey are non-secret connection
// coordinates; the dedicated key lives on the organizations row.
type Settings struct {
	OrgID          uuid.UUID               `json:"org_id"`
	SupabaseURL    string                  `json:"supabase_url"`
	AnonKey        string                  `json:"anon_key"`
	StorageProfile *storageprofile.Profile `json:"storage_profile,omitempty"`
	Permissions    map[string]any          `json:"permissions,omitempty"`
	UpdatedAt      time.Time               `json:"updated_at"`
}

// StorageAccessLevel extracts permissions.storage_access_level, empty when
// unset.
func (s *Settings) StorageAccessLevel() string {
	if s == nil || s.Permissions == nil {
		return ""
	}
	if v, ok := s.Permissions["storage_access_level"].(string); ok {
		return v
	}
	return ""
}

// Membership links a user to an organization with a role.
type Membership struct {
	OrgID  uuid.UUID
	UserID uuid.UUID
	Role   Role
}
