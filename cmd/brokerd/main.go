package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/classdesk/tenantbroker/internal/httpapi"
	"github.com/classdesk/tenantbroker/pkg/blobstore"
	"github.com/classdesk/tenantbroker/pkg/controlplane"
	"github.com/classdesk/tenantbroker/pkg/db"
	"github.com/classdesk/tenantbroker/pkg/logger"
	"github.com/classdesk/tenantbroker/pkg/redis"
	"github.com/classdesk/tenantbroker/pkg/secretstore"
	"github.com/classdesk/tenantbroker/pkg/tenantconn"
)

type config struct {
	Addr            string        `env:"BROKER_HTTP_ADDR" envDefault:":8080"`
	RequestTimeout  time.Duration `env:"BROKER_REQUEST_TIMEOUT" envDefault:"30s"`
	ShutdownTimeout time.Duration `env:"BROKER_SHUTDOWN_TIMEOUT" envDefault:"15s"`
	SettingsTTL     time.Duration `env:"BROKER_SETTINGS_CACHE_TTL" envDefault:"5m"`
	TenantPoolTTL   time.Duration `env:"BROKER_TENANT_POOL_TTL" envDefault:"10m"`
	InsecureLocal   bool          `env:"BROKER_ALLOW_INSECURE_ENDPOINTS" envDefault:"false"`

	DB      db.Config
	Redis   redis.Config
	Storage blobstore.SystemConfig
	Sentry  logger.SentryConfig
}

func main() {
	cfg := config{}
	if err := env.Parse(&cfg); err != nil {
		slog.Error("failed to parse configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log := logger.NewWithSentry(cfg.Sentry, httpapi.RequestIDExtractor)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("broker exited with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config, log *slog.Logger) error {
	pool, err := db.Connect(ctx, cfg.DB)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool, controlplane.Migrations, cfg.DB.MigrationsTable, log); err != nil {
		return err
	}

	checks := map[string]func(context.Context) error{
		"postgres": db.Healthcheck(pool),
	}

	repoOpts := []controlplane.RepositoryOption{controlplane.WithLogger(log)}
	if cfg.Redis.URL != "" {
		cache, err := redis.Open(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		defer cache.Close()
		repoOpts = append(repoOpts, controlplane.WithCache(cache, cfg.SettingsTTL))
		checks["redis"] = redis.Healthcheck(cache)
	}
	repo := controlplane.NewRepository(pool, repoOpts...)

	secrets := secretstore.ResolveSecrets(os.Getenv)
	keyLoader := secretstore.NewStore(pool, repo, secrets, secretstore.WithStoreLogger(log))

	resolver := tenantconn.NewResolver(repo, keyLoader)
	registry := tenantconn.NewRegistry(resolver, cfg.TenantPoolTTL)
	defer registry.Close()

	// A rotated dedicated key must tear down pools built from the old one.
	keys := secretstore.NewStore(pool, repo, secrets,
		secretstore.WithStoreLogger(log),
		secretstore.WithInvalidator(registry.Invalidate))

	srvOpts := []httpapi.Option{
		httpapi.WithLogger(log),
		httpapi.WithRequestTimeout(cfg.RequestTimeout),
		httpapi.WithHealthChecks(checks),
	}
	if cfg.InsecureLocal {
		srvOpts = append(srvOpts, httpapi.WithInsecureLocalEndpoints())
	}
	api := httpapi.NewServer(repo, keys, registry, &cfg.Storage, srvOpts...)

	httpSrv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("broker listening", slog.String("addr", cfg.Addr))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}
