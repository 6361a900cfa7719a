package controlplane

import "errors"

var (
	// ErrOrganizationNotFound indicates no organization row for the id.
	ErrOrganizationNotFound = errors.New("controlplane: organization not found")

	// ErrSettingsNotFound indicates the organization never saved settings.
	ErrSettingsNotFound = errors.New("controlplane: organization settings not found")

	// ErrNotAMember indicates the user has no membership in the
	// organization. Callers map this to 403 without revealing whether the
	// organization exists.
	ErrNotAMember = errors.New("controlplane: not a member of organization")

	// ErrPlaintextProfile indicates an attempt to persist a BYOS profile
	// whose credentials were not sealed first.
	ErrPlaintextProfile = errors.New("controlplane: refusing to persist plaintext storage credentials")
)
