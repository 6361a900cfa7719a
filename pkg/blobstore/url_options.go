package blobstore

import "time"

// URLOption configures presigned URL issuance.
type URLOption func(*urlOptions)

type urlOptions struct {
	filename    string
	disposition string
	ttl         time.Duration
}

// Disposition values for Content-Disposition mapping.
const (
	dispositionInline     = "inline"
	dispositionAttachment = "attachment"
)

// DefaultURLTTL is the default presigned URL lifetime.
const DefaultURLTTL = 15 * time.Minute

// WithTTL sets the presigned URL lifetime. Non-positive values fall back to
// DefaultURLTTL.
func WithTTL(d time.Duration) URLOption {
	return func(o *urlOptions) {
		if d > 0 {
			o.ttl = d
		}
	}
}

// WithDownload sets Content-Disposition: attachment with the given
// filename, forcing the browser to download rather than render.
func WithDownload(filename string) URLOption {
	return func(o *urlOptions) {
		o.filename = filename
		o.disposition = dispositionAttachment
	}
}

// WithInline sets Content-Disposition: inline with the given filename, for
// in-browser preview of documents and images.
func WithInline(filename string) URLOption {
	return func(o *urlOptions) {
		o.filename = filename
		o.disposition = dispositionInline
	}
}
