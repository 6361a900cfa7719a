// Package blobstore exposes one capability interface over heterogeneous
// object-storage backends: the system-managed bucket and customer-supplied
// (BYOS) S3, R2, GCS, Azure-gateway and generic S3-compatible buckets.
//
// # Driver Selection
//
// Drivers are constructed per request from a storage profile; selection is
// an explicit switch on (mode, provider), never on caller intent or runtime
// shape-sniffing:
//
//	store, err := blobstore.FromProfile(profile, sysCfg)
//	if err != nil {
//		// unknown mode / missing byos config / sealed credentials
//	}
//	info, err := store.Put(ctx, "docs/"+fileID+".pdf", r, size, "application/pdf")
//
// BYOS credentials must be opened with storageprofile.DecryptCredentials
// before construction; the factory refuses sealed profiles.
//
// # URLs
//
// PresignedURL issues time-bounded bearer URLs with optional
// Content-Disposition mapping:
//
//	url, err := store.PresignedURL(ctx, path,
//		blobstore.WithTTL(time.Hour),
//		blobstore.WithDownload("report.pdf"),
//	)
//
// A presigned URL cannot be revoked before its TTL expires; that is an
// accepted, documented limitation of the design. PublicURL is only valid
// for profiles exposing a permanent public base (managed mode, or BYOS
// with public_url configured) and returns ErrNoPublicURL otherwise.
//
// # Error Handling
//
// Backend API errors are normalized onto package sentinels (ErrNotFound,
// ErrAccessDenied, ...); branch with errors.Is. Delete treats a missing
// object as success so best-effort cleanup never escalates.
package blobstore
