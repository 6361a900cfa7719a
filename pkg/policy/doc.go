// Package policy gates storage operations by an organization's storage
// lifecycle state: connected, disconnected_grace (reads and bulk export
// allowed, writes blocked) or disconnected_revoked (no access).
//
// An admin "disconnect" moves managed storage into the grace window; the
// window's outcome is operator policy carried in
// permissions.storage_access_level. Disconnecting a BYOS bucket only blocks
// further writes — the tenant owns the bucket, so reads always remain
// available and there is no revoked state.
//
//	state, err := policy.Evaluate(profile, policy.ParseAccessLevel(level))
//	if err := policy.Authorize(policy.OpPut, state); err != nil {
//		// storage_disconnected: surface, never degrade to a no-op
//	}
package policy
