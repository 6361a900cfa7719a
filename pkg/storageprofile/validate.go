package storageprofile

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// Violation codes returned by Validate.
const (
	CodeUnknownMode       = "unknown_mode"
	CodeMissingBYOSConfig = "missing_byos_config"
	CodeUnknownProvider   = "unknown_provider"
	CodeMissingBucket     = "missing_bucket"
	CodeMissingAccessKey  = "missing_access_key"
	CodeMissingSecretKey  = "missing_secret_key"
	CodeMissingEndpoint   = "missing_endpoint"
	CodeInsecureURL       = "insecure_url"
	CodeInvalidURL        = "invalid_url"
	CodeMissingManaged    = "missing_managed_config"
	CodeMissingNamespace  = "missing_namespace"
	CodeInvalidNamespace  = "invalid_namespace"
)

// Violation describes a single validation failure.
type Violation struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Result carries the outcome of Validate. Errors always holds the full
// list of violations, never just the first, so a caller can surface every
// problem in one round-trip.
type Result struct {
	Errors []Violation `json:"errors,omitempty"`
	Valid  bool        `json:"valid"`
}

// ValidateOption configures Validate.
type ValidateOption func(*validateOptions)

type validateOptions struct {
	allowInsecure bool
}

// AllowInsecureLocal permits http:// endpoints and public URLs. Only for
// explicitly flagged local-development configurations (MinIO on localhost);
// production profiles must be HTTPS to protect credentials and signed URLs
// in transit.
func AllowInsecureLocal() ValidateOption {
	return func(o *validateOptions) {
		o.allowInsecure = true
	}
}

// namespaceRegex constrains managed namespaces to safe object-key path
// segments. Case-insensitive by construction: namespaces are matched after
// lowering.
var namespaceRegex = regexp.MustCompile(`^[a-z0-9_-]+$`)

// Validate runs structural and security checks on a profile. It never
// mutates the input and accumulates every violation.
func Validate(p *Profile, opts ...ValidateOption) Result {
	o := &validateOptions{}
	for _, opt := range opts {
		opt(o)
	}

	var errs []Violation
	add := func(field, code, format string, args ...any) {
		errs = append(errs, Violation{
			Field:   field,
			Code:    code,
			Message: fmt.Sprintf(format, args...),
		})
	}

	if p == nil {
		add("mode", CodeUnknownMode, "profile is missing")
		return Result{Valid: false, Errors: errs}
	}

	switch p.Mode {
	case ModeBYOS:
		validateBYOS(p.BYOS, o, add)
	case ModeManaged:
		validateManaged(p.Managed, add)
	default:
		add("mode", CodeUnknownMode, "mode %q is not one of %q or %q", p.Mode, ModeBYOS, ModeManaged)
	}

	return Result{Valid: len(errs) == 0, Errors: errs}
}

func validateBYOS(b *BYOS, o *validateOptions, add func(field, code, format string, args ...any)) {
	if b == nil {
		add("byos", CodeMissingBYOSConfig, "mode is byos but byos configuration is absent")
		return
	}

	if !knownProvider(b.Provider) {
		add("byos.provider", CodeUnknownProvider, "provider %q is not one of %v", b.Provider, KnownProviders)
	}
	if b.Bucket == "" {
		add("byos.bucket", CodeMissingBucket, "bucket is required")
	}

	// Credentials may be present either as the plaintext pair (pre-seal) or
	// as the sealed envelope (post-persist).
	if !b.Encrypted || b.Credentials == "" {
		if b.AccessKeyID == "" {
			add("byos.access_key_id", CodeMissingAccessKey, "access_key_id is required")
		}
		if b.SecretAccessKey == "" {
			add("byos.secret_access_key", CodeMissingSecretKey, "secret_access_key is required")
		}
	}

	if b.Endpoint == "" {
		add("byos.endpoint", CodeMissingEndpoint, "endpoint is required")
	} else {
		checkURL("byos.endpoint", b.Endpoint, o, add)
	}
	if b.PublicURL != "" {
		checkURL("byos.public_url", b.PublicURL, o, add)
	}
}

func validateManaged(m *Managed, add func(field, code, format string, args ...any)) {
	if m == nil {
		add("managed", CodeMissingManaged, "mode is managed but managed configuration is absent")
		return
	}
	switch ns := strings.ToLower(m.Namespace); {
	case ns == "":
		add("managed.namespace", CodeMissingNamespace, "namespace is required")
	case !namespaceRegex.MatchString(ns):
		add("managed.namespace", CodeInvalidNamespace, "namespace %q must match [a-z0-9_-]+", m.Namespace)
	}
}

// checkURL enforces HTTPS transport. A plain-http URL is a distinct,
// deliberate rejection (credentials and signed URLs would travel in the
// clear), reported separately from a generically malformed URL.
func checkURL(field, raw string, o *validateOptions, add func(field, code, format string, args ...any)) {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		add(field, CodeInvalidURL, "%q is not a valid URL", raw)
		return
	}
	switch u.Scheme {
	case "https":
	case "http":
		if !o.allowInsecure {
			add(field, CodeInsecureURL, "%q uses http; https is required outside local development", raw)
		}
	default:
		add(field, CodeInvalidURL, "%q must use the https scheme", raw)
	}
}

func knownProvider(p Provider) bool {
	for _, known := range KnownProviders {
		if p == known {
			return true
		}
	}
	return false
}
