package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/google/uuid"
	"golang.org/x/text/language"

	"github.com/orgspace-systems/orgspace-stack/common/actions"
	"github.com/orgspace-systems/orgspace-stack/common/audit"
	"github.com/orgspace-systems/orgspace-stack/common/config"
	"github.com/orgspace-systems/orgspace-stack/common/gateway"
	"github.com/orgspace-systems/orgspace-stack/common/logging"
	"github.com/orgspace-systems/orgspace-stack/common/messaging"
	"github.com/orgspace-systems/orgspace-stack/common/messaging/nats"
	"github.com/orgspace-systems/orgspace-stack/common/session"
	"github.com/orgspace-systems/orgspace-stack/web/backend/internal/auth"
	"github.com/orgspace-systems/orgspace-stack/web/backend/internal/cache"
	"github.com/orgspace-systems/orgspace-stack/web/backend/internal/handlers"
	"github.com/orgspace-systems/orgspace-stack/web/backend/internal/metrics"
	webnats "github.com/orgspace-systems/orgspace-stack/web/backend/internal/nats"
	"github.com/orgspace-systems/orgspace-stack/web/backend/internal/server"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Default().Error("Failed to load config", logging.Error(err))
		os.Exit(1)
	}

	logger := logging.New(logging.ParseLevel(cfg.Logging.Level), cfg.Logging.Format).With(logging.Service("web"))
	logging.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("Web service stopped", logging.Error(err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *logging.Logger) error {
	ctx := context.Background()

	loc, err := cfg.Web.Location()
	if err != nil {
		return err
	}

	gw := gateway.NewClient(cfg.Gateway.BaseURL,
		gateway.WithTimeout(cfg.Gateway.Timeout),
		gateway.WithUserAgent(cfg.Gateway.UserAgent+"/"+version),
		gateway.WithTokenSecret(cfg.Auth.JWTSecret),
		gateway.WithObserver(metrics.ObserveGateway),
	)

	store, closeStore, err := openSessionStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	msgClient := connectMessaging(cfg, logger)
	defer func() {
		if err := msgClient.Drain(); err != nil {
			logger.Error("Failed to drain message broker connection", logging.Error(err))
		}
	}()

	origin := uuid.NewString()
	lists := cache.New(cfg.Web.CacheTTL)
	publisher := webnats.NewChangePublisher(msgClient, lists, origin, logger)
	subscriber := webnats.NewChangeSubscriber(msgClient, lists, origin, logger)
	if err := subscriber.Start(); err != nil {
		logger.Warn("Cross-instance cache invalidation disabled", logging.Error(err))
	} else {
		defer func() {
			if err := subscriber.Stop(); err != nil {
				logger.Error("Failed to stop change subscriber", logging.Error(err))
			}
		}()
	}

	svc := actions.NewService(gw, actions.Config{
		PublicURL:  cfg.Web.PublicURL,
		SessionTTL: cfg.Session.TTL,
		Notifier:   publisher,
	})

	manager := auth.NewManager(store, auth.Config{
		CookieName:   cfg.Web.CookieName,
		CookieDomain: cfg.Web.CookieDomain,
		CookieSecure: cfg.Web.CookieSecure,
	}, logger)

	h := handlers.New(handlers.Config{
		Service:      svc,
		Cache:        lists,
		Auth:         manager,
		Signer:       audit.NewReportSigner(cfg.Reports.SigningSecret),
		Messaging:    msgClient,
		Logger:       logger,
		Locale:       language.Make(cfg.Web.Locale),
		Location:     loc,
		Organization: cfg.Reports.Organization,
		Version:      version,
	})

	origins := cfg.Web.CORSOrigins
	if cfg.Web.DevMode {
		origins = append(origins, "http://localhost:5173")
	}

	srv := &http.Server{
		Addr: cfg.Server.Addr(),
		Handler: server.NewRouter(server.RouterConfig{
			Handler:        h,
			Auth:           manager,
			StaticDir:      cfg.Web.StaticDir,
			Logger:         logger,
			AllowedOrigins: origins,
			CookieSecure:   cfg.Web.CookieSecure,
		}),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Web service listening",
			"addr", srv.Addr,
			"record_api", cfg.Gateway.BaseURL,
			"session_store", cfg.Session.Store,
			"static_dir", cfg.Web.StaticDir,
			"version", version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Info("Server stopped")
	return nil
}

// openSessionStore builds the configured store. The memory store is swept
// of expired sessions in the background.
func openSessionStore(ctx context.Context, cfg *config.Config, logger *logging.Logger) (session.Store, func(), error) {
	if cfg.Session.Store == "redis" {
		store, err := session.NewRedisStore(cfg.Redis.URL)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("Sessions stored in Redis")
		return store, func() { _ = store.Close() }, nil
	}

	store := session.NewMemoryStore()
	interval := cfg.Session.SweepInterval
	if interval <= 0 {
		interval = time.Minute
	}
	sweepCtx, stop := context.WithCancel(ctx)
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-sweepCtx.Done():
				return
			case <-ticker.C:
				if n := store.Sweep(); n > 0 {
					metrics.Sessions.WithLabelValues("expired").Add(float64(n))
					logger.Debug("Swept expired sessions", "count", n)
				}
			}
		}
	}()
	logger.Warn("Sessions held in memory; they do not survive restarts or span instances")
	return store, stop, nil
}

// connectMessaging returns a NATS client when enabled and reachable, or an
// in-process broker so change events still reach this instance's cache.
func connectMessaging(cfg *config.Config, logger *logging.Logger) messaging.Client {
	if !cfg.NATS.Enabled {
		return messaging.NewLocal(logger)
	}
	natsCfg := nats.DefaultConfig()
	natsCfg.URL = cfg.NATS.URL
	natsCfg.MaxReconnects = cfg.NATS.MaxReconnects
	natsCfg.ReconnectWait = cfg.NATS.ReconnectWait
	natsCfg.Logger = logger.Logger

	client, err := nats.NewClient(natsCfg)
	if err != nil {
		logger.Warn("Failed to connect to NATS, using in-process events", "url", cfg.NATS.URL, logging.Error(err))
		return messaging.NewLocal(logger)
	}
	logger.Info("Connected to NATS", "url", cfg.NATS.URL)
	return client
}
