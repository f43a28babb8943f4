package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/target/order-notify/config"
	"github.com/target/order-notify/internal/adapters/messaging"
	"github.com/target/order-notify/internal/core"
	"github.com/target/order-notify/internal/data"
	"github.com/target/order-notify/internal/data/cryptoutil"
	"github.com/target/order-notify/internal/observability/statsd"
	"github.com/target/order-notify/internal/service"
)

// ServiceContainer holds all application services.
type ServiceContainer struct {
	Queue         *service.QueueService
	Notifications *service.NotificationService
	Delivery      *service.DeliveryService
	Channels      *core.ChannelCacheService
	StoreChannels core.StoreChannelRepository
	Cache         core.CacheRepository
	Observability ObservabilityContainer
}

// ObservabilityContainer groups shared observability dependencies.
type ObservabilityContainer struct {
	// MetricsSink is nil when metrics are disabled.
	MetricsSink   statsd.Sink
	MetricsConfig config.ObservabilityMetricsConfig
	closer        func() error
}

// Close releases the metrics connection, if any.
func (o ObservabilityContainer) Close() error {
	if o.closer == nil {
		return nil
	}
	return o.closer()
}

// ServiceDeps groups dependencies for service initialization.
type ServiceDeps struct {
	Config      *config.AppConfig
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Encryptor   cryptoutil.Encryptor
	// Sender overrides the messaging API client (tests).
	Sender core.Sender
	Logger *slog.Logger
}

// buildObservability configures the metrics sink.
func buildObservability(logger *slog.Logger, cfg config.ObservabilityConfig) ObservabilityContainer {
	obs := ObservabilityContainer{MetricsConfig: cfg.Metrics}
	if !cfg.Metrics.IsEnabled() {
		return obs
	}

	client, err := statsd.NewClient(statsd.Config{
		Enabled: true,
		Address: cfg.Metrics.StatsdAddress,
		Prefix:  cfg.Metrics.Prefix,
		Logger:  logger,
	})
	if err != nil {
		logger.Error("failed to initialise statsd client", "error", err)
		return obs
	}
	obs.MetricsSink = client
	obs.closer = client.Close
	return obs
}

// buildChannelLookup wires the credential read path: Postgres behind an optional Redis cache.
func buildChannelLookup(deps *ServiceDeps, repo core.StoreChannelRepository) (*core.ChannelCacheService, core.CacheRepository) {
	var cache core.CacheRepository
	ttl := time.Duration(0)
	if deps.RedisClient != nil {
		cache = data.NewRedisCacheRepo(deps.RedisClient, data.DefaultCacheKeyPrefix)
		ttl = deps.Config.Cache.CredentialsTTL
	}
	return core.NewChannelCacheService(core.ChannelCacheServiceOptions{
		Cache:    cache,
		Channels: repo,
		Sealer:   deps.Encryptor,
		TTL:      ttl,
		Logger:   deps.Logger,
	}), cache
}

// NewServices wires the notification pipeline. It does not start any loop.
func NewServices(deps *ServiceDeps) (ServiceContainer, error) {
	if deps == nil || deps.Config == nil {
		return ServiceContainer{}, errors.New("service deps with config are required")
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Encryptor == nil {
		deps.Encryptor = cryptoutil.NoopEncryptor{}
	}
	cfg := deps.Config

	obs := buildObservability(deps.Logger, cfg.Observability)

	repo := data.NewStoreChannelRepo(deps.DB, deps.Encryptor)
	channels, cache := buildChannelLookup(deps, repo)

	sender := deps.Sender
	if sender == nil {
		client, err := messaging.NewClient(messaging.Options{
			BaseURL:   cfg.Messaging.BaseURL,
			Timeout:   cfg.Messaging.Timeout,
			ErrorPath: cfg.Messaging.ErrorPath,
			Logger:    deps.Logger,
		})
		if err != nil {
			return ServiceContainer{}, fmt.Errorf("create messaging client: %w", err)
		}
		sender = client
	}

	delivery, err := service.NewDeliveryService(service.DeliveryServiceOptions{
		Channels: channels,
		Sender:   sender,
		Logger:   deps.Logger,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("create delivery service: %w", err)
	}

	queue, err := service.NewQueueService(service.QueueServiceOptions{
		Deliverer: delivery,
		Config:    cfg.Dispatcher,
		Logger:    deps.Logger,
		Metrics:   obs.MetricsSink,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("create queue service: %w", err)
	}

	notifications, err := service.NewNotificationService(service.NotificationServiceOptions{
		Queue:  queue,
		Logger: deps.Logger,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("create notification service: %w", err)
	}

	return ServiceContainer{
		Queue:         queue,
		Notifications: notifications,
		Delivery:      delivery,
		Channels:      channels,
		StoreChannels: repo,
		Cache:         cache,
		Observability: obs,
	}, nil
}

// ServiceOrchestrationConfig contains configuration for service orchestration.
type ServiceOrchestrationConfig struct {
	Config   *config.AppConfig
	Services ServiceContainer
	DB       *sql.DB
	Logger   *slog.Logger
	// Signals overrides the OS shutdown signals (tests).
	Signals <-chan os.Signal
}

const (
	// shutdownWaitTimeout is the maximum time to wait for services to stop gracefully.
	shutdownWaitTimeout = 15 * time.Second
)

// serviceStartupDeps groups dependencies for service startup.
type serviceStartupDeps struct {
	ctx             context.Context
	cfg             *ServiceOrchestrationConfig
	logger          *slog.Logger
	enabledServices map[config.ServiceMode]bool
	errCh           chan error
}

// backgroundService describes a startable background component.
type backgroundService struct {
	mode  config.ServiceMode
	name  string
	start func(context.Context) error
}

// backgroundServiceHandle tracks a running background service.
type backgroundServiceHandle struct {
	mode config.ServiceMode
	name string
	done <-chan struct{}
}

// startHTTPServerIfEnabled starts the HTTP server if enabled.
func startHTTPServerIfEnabled(deps *serviceStartupDeps) *http.Server {
	if deps == nil || deps.cfg == nil || !deps.enabledServices[config.ServiceModeHTTP] {
		return nil
	}
	return StartHTTPServer(&HTTPServerConfig{
		Config:   deps.cfg.Config,
		Services: deps.cfg.Services,
		DB:       deps.cfg.DB,
		Logger:   deps.logger,
		ErrCh:    deps.errCh,
	})
}

func launchBackground(ctx context.Context, deps *serviceStartupDeps, descriptor backgroundService) <-chan struct{} {
	if deps == nil || !deps.enabledServices[descriptor.mode] {
		return nil
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := descriptor.start(ctx); err != nil {
			errMsg := fmt.Errorf("%s failed: %w", descriptor.name, err)
			select {
			case deps.errCh <- errMsg:
			case <-ctx.Done():
			default:
				deps.logger.WarnContext(ctx, "dropping background service error",
					"service", descriptor.name,
					"error", errMsg,
				)
			}
		}
	}()

	deps.logger.InfoContext(ctx, "background service started", "service", descriptor.name, "mode", descriptor.mode)
	return done
}

func startBackgroundServices(deps *serviceStartupDeps, services []backgroundService) []backgroundServiceHandle {
	if deps == nil {
		return nil
	}
	handles := make([]backgroundServiceHandle, 0, len(services))

	for _, svc := range services {
		done := launchBackground(deps.ctx, deps, svc)
		if done == nil {
			continue
		}

		handles = append(handles, backgroundServiceHandle{
			mode: svc.mode,
			name: svc.name,
			done: done,
		})
	}

	return handles
}

func newDispatcherBackgroundService(deps *serviceStartupDeps) backgroundService {
	return backgroundService{
		mode: config.ServiceModeDispatcher,
		name: "dispatcher",
		start: func(ctx context.Context) error {
			return RunDispatcher(ctx, DispatcherConfig{
				Queue:    deps.cfg.Services.Queue,
				Interval: deps.cfg.Config.Dispatcher.Interval,
				Logger:   deps.logger,
				Metrics:  deps.cfg.Services.Observability.MetricsSink,
			})
		},
	}
}

func newReaperBackgroundService(deps *serviceStartupDeps) backgroundService {
	return backgroundService{
		mode: config.ServiceModeReaper,
		name: "reaper",
		start: func(ctx context.Context) error {
			return RunReaper(ctx, ReaperConfig{
				Jobs:    deps.cfg.Services.Queue,
				Logger:  deps.logger,
				Config:  deps.cfg.Config.Reaper,
				Metrics: deps.cfg.Services.Observability.MetricsSink,
			})
		},
	}
}

func buildBackgroundServices(deps *serviceStartupDeps) []backgroundService {
	if deps == nil {
		return nil
	}
	return []backgroundService{
		newDispatcherBackgroundService(deps),
		newReaperBackgroundService(deps),
	}
}

// ServiceStartupResult holds the results of starting all services.
type ServiceStartupResult struct {
	HTTPServer *http.Server
	Background []backgroundServiceHandle
}

// startServices starts all enabled services and returns their completion channels.
func startServices(deps *serviceStartupDeps) ServiceStartupResult {
	return ServiceStartupResult{
		HTTPServer: startHTTPServerIfEnabled(deps),
		Background: startBackgroundServices(deps, buildBackgroundServices(deps)),
	}
}

// RunServicesWithShutdown starts all enabled services and manages their lifecycle.
// This function blocks until a shutdown signal is received or a service fails.
func RunServicesWithShutdown(cfg *ServiceOrchestrationConfig) error {
	if cfg == nil {
		return errors.New("service orchestration config is required")
	}
	if cfg.Config == nil {
		return errors.New("service orchestration config missing AppConfig")
	}
	if cfg.Services.Queue == nil {
		return errors.New("service orchestration config missing queue")
	}

	serviceCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	enabledServices, err := cfg.Config.GetEnabledServices()
	if err != nil {
		return fmt.Errorf("determine enabled services: %w", err)
	}
	if enabledServices[config.ServiceModeHTTP] && !enabledServices[config.ServiceModeDispatcher] {
		logger.Warn("http enabled without dispatcher; queued notifications will not be delivered by this process")
	}
	errCh := make(chan error, errorChannelBufferSize(enabledServices))

	result := startServices(&serviceStartupDeps{
		ctx:             serviceCtx,
		cfg:             cfg,
		logger:          logger,
		enabledServices: enabledServices,
		errCh:           errCh,
	})

	quit := cfg.Signals
	if quit == nil {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigCh)
		quit = sigCh
	}

	return waitForShutdown(shutdownConfig{
		quit:        quit,
		cancel:      cancel,
		errCh:       errCh,
		httpServer:  result.HTTPServer,
		logger:      logger,
		backgrounds: result.Background,
	})
}

func errorChannelCapacity(enabled map[config.ServiceMode]bool) int {
	count := 0
	for _, mode := range config.ValidServiceModes() {
		if enabled[mode] {
			count++
		}
	}
	return count
}

func errorChannelBufferSize(enabled map[config.ServiceMode]bool) int {
	return errorChannelCapacity(enabled) + 1
}

// shutdownConfig contains dependencies for graceful shutdown.
type shutdownConfig struct {
	quit        <-chan os.Signal
	cancel      context.CancelFunc
	errCh       <-chan error
	httpServer  *http.Server
	logger      *slog.Logger
	backgrounds []backgroundServiceHandle
}

// waitForShutdown waits for shutdown signal or service error.
func waitForShutdown(cfg shutdownConfig) error {
	select {
	case <-cfg.quit:
		cfg.logger.Info("shutting down services...")
		return gracefulStop(cfg)
	case err := <-cfg.errCh:
		cfg.logger.Error("service error", "error", err)
		if stopErr := gracefulStop(cfg); stopErr != nil {
			cfg.logger.Error("graceful stop failed", "error", stopErr)
		}
		return err
	}
}

// gracefulStop stops intake first, then lets the background loops drain.
func gracefulStop(cfg shutdownConfig) error {
	var stopErr error
	if cfg.httpServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownWaitTimeout)
		stopErr = ShutdownHTTPServer(ShutdownConfig{
			Context: shutdownCtx,
			Server:  cfg.httpServer,
			Logger:  cfg.logger,
		})
		cancel()
	}

	cfg.cancel()
	for _, svc := range cfg.backgrounds {
		waitForService(svc.done, svc.name, cfg.logger)
	}

	return stopErr
}

// waitForService waits for a service to finish with timeout.
func waitForService(done <-chan struct{}, name string, logger *slog.Logger) {
	if done == nil {
		return
	}
	select {
	case <-done:
		logger.Info(name + " stopped")
	case <-time.After(shutdownWaitTimeout):
		logger.Warn("timeout waiting for " + name + " to stop")
	}
}
