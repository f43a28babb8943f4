package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/target/order-notify/config"
	httpx "github.com/target/order-notify/internal/http"
)

// HTTPServerConfig contains configuration for HTTP server.
type HTTPServerConfig struct {
	Config   *config.AppConfig
	Services ServiceContainer
	DB       *sql.DB
	Logger   *slog.Logger
	// ErrCh receives listener failures (optional).
	ErrCh chan<- error
}

// StartHTTPServer creates and starts the HTTP server.
// Returns the server instance for graceful shutdown.
func StartHTTPServer(cfg *HTTPServerConfig) *http.Server {
	if cfg == nil {
		return nil
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	appCfg := cfg.Config
	if appCfg == nil {
		appCfg = &config.AppConfig{}
	}

	handler := BuildHTTPHandler(cfg.Services, cfg.DB, appCfg.HTTP, logger)
	return startServer(serverParams{
		logger:  logger,
		handler: handler,
		http:    appCfg.HTTP,
		errCh:   cfg.ErrCh,
	})
}

// BuildHTTPHandler assembles the API router from the service container.
func BuildHTTPHandler(services ServiceContainer, db *sql.DB, cfg config.HTTPConfig, logger *slog.Logger) http.Handler {
	readiness := map[string]httpx.HealthCheck{}
	if db != nil {
		readiness["postgres"] = db.PingContext
	}
	if services.Cache != nil {
		readiness["redis"] = services.Cache.Health
	}

	var notifications *httpx.NotificationHandlers
	if services.Queue != nil && services.Notifications != nil {
		notifications = &httpx.NotificationHandlers{
			Queue:    services.Queue,
			Producer: services.Notifications,
			Logger:   logger,
		}
	}

	return httpx.NewRouter(httpx.RouterServices{
		Notifications: notifications,
		Readiness:     readiness,
		MaxBodyBytes:  cfg.MaxBodyBytes,
		Logger:        logger,
	})
}

type serverParams struct {
	logger  *slog.Logger
	handler http.Handler
	http    config.HTTPConfig
	errCh   chan<- error
}

func startServer(p serverParams) *http.Server {
	addr := p.http.Addr
	// Guard against empty addr to avoid listening on Go default
	if addr == "" {
		addr = ":8080"
	}
	readHeaderTimeout := p.http.ReadHeaderTimeout
	if readHeaderTimeout <= 0 {
		readHeaderTimeout = 10 * time.Second
	}

	server := &http.Server{
		Addr:              addr,
		Handler:           p.handler,
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		p.logger.Info("starting HTTP server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			p.logger.Error("HTTP server failed", "error", err)
			if p.errCh != nil {
				select {
				case p.errCh <- fmt.Errorf("http server: %w", err):
				default:
				}
			}
		}
	}()

	return server
}

// ShutdownConfig contains dependencies for HTTP server shutdown.
type ShutdownConfig struct {
	Context context.Context
	Server  *http.Server
	Logger  *slog.Logger
}

// ShutdownHTTPServer gracefully shuts down the HTTP server.
func ShutdownHTTPServer(cfg ShutdownConfig) error {
	if cfg.Server == nil {
		return nil
	}
	ctx := cfg.Context
	if ctx == nil {
		ctx = context.Background()
	}

	if cfg.Logger != nil {
		cfg.Logger.Info("shutting down HTTP server")
	}

	if err := cfg.Server.Shutdown(ctx); err != nil {
		return err
	}

	if cfg.Logger != nil {
		cfg.Logger.Info("HTTP server stopped")
	}

	return nil
}
