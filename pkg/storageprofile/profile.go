package storageprofile

import "time"

// Mode selects how an organization's files are stored.
type Mode string

const (
	// ModeManaged uses the system-operated bucket, path-namespaced per
	// organization. No per-tenant secrets are involved.
	ModeManaged Mode = "managed"

	// ModeBYOS uses a customer-supplied bucket and credentials.
	ModeBYOS Mode = "byos"
)

// Provider identifies the backend family of a BYOS bucket.
type Provider string

const (
	ProviderS3      Provider = "s3"
	ProviderAzure   Provider = "azure"
	ProviderGCS     Provider = "gcs"
	ProviderR2      Provider = "r2"
	ProviderGeneric Provider = "generic"
)

// KnownProviders lists every provider the broker can construct a driver for.
var KnownProviders = []Provider{ProviderS3, ProviderAzure, ProviderGCS, ProviderR2, ProviderGeneric}

// Profile is the normalized representation of an organization's storage
// configuration, persisted as a JSONB document in org_settings. The Mode
// field determines which sibling object is meaningful; the other must be
// absent or ignored.
type Profile struct {
	Mode    Mode     `json:"mode"`
	BYOS    *BYOS    `json:"byos,omitempty"`
	Managed *Managed `json:"managed,omitempty"`

	// Disconnected is set when an admin revokes a storage connection. The
	// profile is retained so reads can continue during the grace window.
	Disconnected bool `json:"disconnected,omitempty"`

	UpdatedAt time.Time `json:"updated_at"`
	UpdatedBy string    `json:"updated_by,omitempty"`
}

// BYOS holds customer-supplied bucket configuration. When persisted, the
// credential pair is replaced by the sealed Credentials envelope and the
// Encrypted flag; the plaintext fields never touch the database.
type BYOS struct {
	Provider Provider `json:"provider"`
	Endpoint string   `json:"endpoint"`
	Region   string   `json:"region,omitempty"`
	Bucket   string   `json:"bucket"`

	AccessKeyID     string `json:"access_key_id,omitempty"`
	SecretAccessKey string `json:"secret_access_key,omitempty"`

	PublicURL   string     `json:"public_url,omitempty"`
	ValidatedAt *time.Time `json:"validated_at,omitempty"`

	Encrypted   bool   `json:"_encrypted,omitempty"`
	Credentials string `json:"_credentials,omitempty"`
}

// Managed holds system-bucket configuration for one organization.
type Managed struct {
	Namespace string    `json:"namespace"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// Clone returns a deep copy. Normalize, Validate and the credential
// helpers never mutate their input; they operate on clones.
func (p *Profile) Clone() *Profile {
	if p == nil {
		return nil
	}
	out := *p
	if p.BYOS != nil {
		byos := *p.BYOS
		if p.BYOS.ValidatedAt != nil {
			ts := *p.BYOS.ValidatedAt
			byos.ValidatedAt = &ts
		}
		out.BYOS = &byos
	}
	if p.Managed != nil {
		managed := *p.Managed
		out.Managed = &managed
	}
	return &out
}

// HasPublicURL reports whether the profile exposes a permanent public base
// URL: managed mode always does (via system CDN config); BYOS only when
// the tenant configured one.
func (p *Profile) HasPublicURL() bool {
	switch p.Mode {
	case ModeManaged:
		return true
	case ModeBYOS:
		return p.BYOS != nil && p.BYOS.PublicURL != ""
	default:
		return false
	}
}
