// Package storageprofile models how an organization's files are stored:
// either in the system-managed bucket ("managed") or in a customer-supplied
// bucket ("byos"), as a tagged union persisted in org_settings.
//
// # Normalization and Validation
//
// Raw admin input goes through Normalize, then Validate:
//
//	p := storageprofile.Normalize(raw, userID)
//	if p == nil {
//		// unknown mode
//	}
//	if res := storageprofile.Validate(p); !res.Valid {
//		// res.Errors holds every violation, not just the first
//	}
//
// Validation enforces HTTPS on BYOS endpoints and public URLs with a
// distinct violation code for plain-http URLs; AllowInsecureLocal relaxes
// this for flagged local-development setups only.
//
// # Credential Sealing
//
// Only the BYOS access_key_id / secret_access_key pair is secret. Before a
// profile is persisted the pair must be sealed:
//
//	sealed, err := storageprofile.EncryptCredentials(p, byosKey)
//
// which replaces the plaintext pair with an _encrypted flag and an opaque
// _credentials envelope (see package envelope). DecryptCredentials reverses
// this at read time and refuses plaintext profiles outside the explicit
// legacy migration path.
package storageprofile
