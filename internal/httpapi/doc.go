// Package httpapi hosts the broker's admin and storage HTTP surface:
// dedicated-key saves, connection resolution, storage profile
// configuration, lifecycle actions and object operations.
//
// Handlers translate package sentinels into the response taxonomy
// (403 forbidden, 412 storage or connection not configured, 422
// invalid profile, 428 dedicated key required, 409 disconnected, 5xx
// operator faults); unmapped errors become an opaque 500 with the
// detail kept in the log. Secret material never appears in a response
// body: profiles are redacted before serialization.
package httpapi
