package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/classdesk/tenantbroker/pkg/blobstore"
	"github.com/classdesk/tenantbroker/pkg/controlplane"
	"github.com/classdesk/tenantbroker/pkg/storageprofile"
	"github.com/classdesk/tenantbroker/pkg/tenantconn"
)

// ControlPlane is the slice of the control-plane repository the API
// uses. Satisfied by *controlplane.Repository.
type ControlPlane interface {
	GetSettings(ctx context.Context, orgID uuid.UUID) (*controlplane.Settings, error)
	SaveConnectionSettings(ctx context.Context, orgID uuid.UUID, supabaseURL, anonKey string) error
	SaveStorageProfile(ctx context.Context, orgID uuid.UUID, p *storageprofile.Profile) error
	SetStorageDisconnected(ctx context.Context, orgID uuid.UUID, disconnected bool) error
	SetStorageAccessLevel(ctx context.Context, orgID uuid.UUID, level string) error
	MemberRole(ctx context.Context, orgID, userID uuid.UUID) (controlplane.Role, error)
}

// KeyStore saves dedicated keys and seals/opens BYOS credentials.
// Satisfied by *secretstore.Store.
type KeyStore interface {
	SaveDedicatedKey(ctx context.Context, orgID, userID uuid.UUID, plaintext string) error
	SealProfile(p *storageprofile.Profile) (*storageprofile.Profile, error)
	OpenProfile(p *storageprofile.Profile, opts ...storageprofile.DecryptOption) (*storageprofile.Profile, error)
}

// ConnSource resolves tenant connections. Satisfied by
// *tenantconn.Registry.
type ConnSource interface {
	Get(ctx context.Context, orgID uuid.UUID) (*tenantconn.Conn, error)
}

// StoreFactory builds a storage driver from a decrypted profile. The
// default is blobstore.FromProfile; tests substitute a fake.
type StoreFactory func(p *storageprofile.Profile, sys *blobstore.SystemConfig) (blobstore.Store, error)

// Server hosts the broker's admin and storage API.
type Server struct {
	cp       ControlPlane
	keys     KeyStore
	conns    ConnSource
	sys      *blobstore.SystemConfig
	log      *slog.Logger
	newStore StoreFactory

	requestTimeout time.Duration
	healthChecks   map[string]func(context.Context) error
	allowInsecure  bool
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Server) { s.log = log }
}

// WithStoreFactory replaces the storage driver constructor.
func WithStoreFactory(fn StoreFactory) Option {
	return func(s *Server) { s.newStore = fn }
}

// WithHealthChecks registers readiness checks served on /healthz.
func WithHealthChecks(checks map[string]func(context.Context) error) Option {
	return func(s *Server) { s.healthChecks = checks }
}

// WithRequestTimeout bounds handler execution.
func WithRequestTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.requestTimeout = d
		}
	}
}

// WithInsecureLocalEndpoints accepts http:// BYOS endpoints. Local
// development only.
func WithInsecureLocalEndpoints() Option {
	return func(s *Server) { s.allowInsecure = true }
}

// NewServer wires the API over its dependencies.
func NewServer(cp ControlPlane, keys KeyStore, conns ConnSource, sys *blobstore.SystemConfig, opts ...Option) *Server {
	s := &Server{
		cp:             cp,
		keys:           keys,
		conns:          conns,
		sys:            sys,
		log:            slog.Default(),
		newStore:       blobstore.FromProfile,
		requestTimeout: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router builds the HTTP routing tree.
func (s *Server) Router() http.Handler {
	registerMetrics()

	r := chi.NewRouter()
	r.Use(RequestID, Recover(s.log), Metrics, Timeout(s.requestTimeout))

	r.Get("/healthz", s.handleHealthz)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1/orgs/{org_id}", func(r chi.Router) {
		r.Put("/credentials/dedicated-key", s.handleSaveDedicatedKey)

		r.Get("/connection", s.handleResolveConnection)
		r.Put("/connection", s.handleSaveConnectionSettings)

		r.Route("/storage", func(r chi.Router) {
			r.Get("/profile", s.handleGetStorageProfile)
			r.Put("/profile", s.handleSaveStorageProfile)
			r.Post("/disconnect", s.handleDisconnect)
			r.Post("/presign", s.handlePresign)
			r.Post("/export", s.handleExport)
			r.Put("/objects/*", s.handlePutObject)
			r.Delete("/objects/*", s.handleDeleteObject)
		})
	})

	return r
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	type check struct {
		Status string `json:"status"`
		Error  string `json:"error,omitempty"`
	}
	resp := struct {
		Status string           `json:"status"`
		Checks map[string]check `json:"checks,omitempty"`
	}{Status: "healthy"}

	if len(s.healthChecks) > 0 {
		resp.Checks = make(map[string]check, len(s.healthChecks))
		for name, fn := range s.healthChecks {
			c := check{Status: "healthy"}
			if err := fn(r.Context()); err != nil {
				c = check{Status: "unhealthy", Error: err.Error()}
				resp.Status = "unhealthy"
			}
			resp.Checks[name] = c
		}
	}

	status := http.StatusOK
	if resp.Status != "healthy" {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}
