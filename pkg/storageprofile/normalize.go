package storageprofile

import (
	"strings"
	"time"
)

// Normalize produces the canonical form of a raw profile: mode and provider
// are trimmed and lower-cased, free-text fields are trimmed, and optional
// fields (region, public_url) are dropped entirely when empty after
// trimming — omission, not empty string, is the canonical "unset"
// representation. UpdatedAt/UpdatedBy are always stamped.
//
// The input is never mutated. Returns nil when the mode is empty or
// unknown; callers must treat nil as "no usable profile".
func Normalize(raw *Profile, updatedBy string) *Profile {
	if raw == nil {
		return nil
	}

	p := raw.Clone()
	p.Mode = Mode(strings.ToLower(strings.TrimSpace(string(p.Mode))))

	switch p.Mode {
	case ModeBYOS:
		p.Managed = nil
		if p.BYOS != nil {
			normalizeBYOS(p.BYOS)
		}
	case ModeManaged:
		p.BYOS = nil
		if p.Managed != nil {
			p.Managed.Namespace = strings.TrimSpace(p.Managed.Namespace)
			if p.Managed.CreatedAt.IsZero() {
				p.Managed.CreatedAt = time.Now().UTC()
			}
		}
	default:
		return nil
	}

	p.UpdatedAt = time.Now().UTC()
	p.UpdatedBy = strings.TrimSpace(updatedBy)
	return p
}

func normalizeBYOS(b *BYOS) {
	b.Provider = Provider(strings.ToLower(strings.TrimSpace(string(b.Provider))))
	b.Endpoint = strings.TrimSpace(b.Endpoint)
	b.Bucket = strings.TrimSpace(b.Bucket)
	b.AccessKeyID = strings.TrimSpace(b.AccessKeyID)
	b.SecretAccessKey = strings.TrimSpace(b.SecretAccessKey)

	// Empty-after-trim optionals are unset, not empty strings. Their JSON
	// keys disappear via omitempty.
	b.Region = strings.TrimSpace(b.Region)
	b.PublicURL = strings.TrimSpace(b.PublicURL)
}
