package policy

import (
	"strings"

	"github.com/classdesk/tenantbroker/pkg/storageprofile"
)

// AccessLevel is the operator-policy value tracked in
// permissions.storage_access_level. It governs what remains possible after
// an admin disconnects managed storage.
type AccessLevel string

const (
	AccessFull     AccessLevel = "full"
	AccessReadOnly AccessLevel = "read_only"
	AccessNone     AccessLevel = "none"
)

// ParseAccessLevel maps the raw permissions value to an AccessLevel. An
// absent or unrecognized value defaults to read_only: a disconnect without
// an explicit operator decision leaves the tenant a read-only grace window
// rather than cutting access outright.
func ParseAccessLevel(raw string) AccessLevel {
	switch AccessLevel(strings.ToLower(strings.TrimSpace(raw))) {
	case AccessFull:
		return AccessFull
	case AccessNone:
		return AccessNone
	default:
		return AccessReadOnly
	}
}

// State is the lifecycle state of an organization's storage.
type State string

const (
	// StateConnected permits all operations.
	StateConnected State = "connected"

	// StateDisconnectedGrace blocks writes but keeps reads and bulk export
	// available so tenants can retrieve their files before the window ends.
	StateDisconnectedGrace State = "disconnected_grace"

	// StateDisconnectedRevoked blocks all access. Managed storage only;
	// a BYOS bucket stays readable because only its owner can truly revoke
	// it.
	StateDisconnectedRevoked State = "disconnected_revoked"
)

// Operation classifies a storage call for gating.
type Operation string

const (
	OpPut     Operation = "put"
	OpDelete  Operation = "delete"
	OpRead    Operation = "read"
	OpPresign Operation = "presign"
	OpExport  Operation = "export"
)

// Evaluate derives the lifecycle state for a profile under the given access
// level. A nil profile means storage was never configured.
func Evaluate(p *storageprofile.Profile, level AccessLevel) (State, error) {
	if p == nil {
		return "", ErrStorageNotConfigured
	}
	if !p.Disconnected {
		return StateConnected, nil
	}
	if p.Mode == storageprofile.ModeBYOS {
		// The tenant still owns the bucket; disconnect only stops the
		// system from writing to it.
		return StateDisconnectedGrace, nil
	}
	if level == AccessNone {
		return StateDisconnectedRevoked, nil
	}
	return StateDisconnectedGrace, nil
}

// CanWrite reports whether put/delete operations are permitted.
func (s State) CanWrite() bool { return s == StateConnected }

// CanRead reports whether read/presign operations are permitted.
func (s State) CanRead() bool {
	return s == StateConnected || s == StateDisconnectedGrace
}

// CanExport reports whether bulk download/export is permitted. Export is
// explicitly available during the grace window.
func (s State) CanExport() bool { return s.CanRead() }

// Authorize gates op against the state. Write attempts while disconnected
// fail with ErrStorageDisconnected; they never silently degrade to a no-op.
func Authorize(op Operation, s State) error {
	switch op {
	case OpPut, OpDelete:
		if !s.CanWrite() {
			return ErrStorageDisconnected
		}
	case OpRead, OpPresign:
		if !s.CanRead() {
			return ErrStorageRevoked
		}
	case OpExport:
		if !s.CanExport() {
			return ErrStorageRevoked
		}
	default:
		return ErrUnknownOperation
	}
	return nil
}
