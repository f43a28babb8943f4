package bootstrap

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target/order-notify/config"
	"github.com/target/order-notify/internal/core"
	"github.com/target/order-notify/internal/data/cryptoutil"
	"github.com/target/order-notify/internal/domain/model"
	"github.com/target/order-notify/internal/service"
)

type nopSender struct{}

func (nopSender) Send(context.Context, core.OutboundMessage) error { return nil }

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testAppConfig(services string) *config.AppConfig {
	cfg := &config.AppConfig{
		IsDev:    true,
		Services: services,
		Dispatcher: config.DispatcherConfig{
			Interval:      100 * time.Millisecond,
			MaxConcurrent: 2,
			MaxAttempts:   3,
			BackoffBase:   time.Second,
			BackoffMax:    time.Minute,
		},
		Reaper: config.ReaperConfig{Interval: time.Hour, MaxAge: 24 * time.Hour},
		HTTP:   config.HTTPConfig{Addr: "127.0.0.1:0", MaxBodyBytes: 1 << 20},
	}
	cfg.Sanitize()
	return cfg
}

func newTestContainer(t *testing.T, cfg *config.AppConfig) ServiceContainer {
	t.Helper()
	services, err := NewServices(&ServiceDeps{
		Config: cfg,
		Sender: nopSender{},
		Logger: quietLogger(),
	})
	require.NoError(t, err)
	return services
}

func TestErrorChannelCapacity(t *testing.T) {
	tests := []struct {
		name  string
		modes []config.ServiceMode
		want  int
	}{
		{name: "no services enabled", want: 0},
		{name: "http only", modes: []config.ServiceMode{config.ServiceModeHTTP}, want: 1},
		{
			name:  "dispatcher and reaper",
			modes: []config.ServiceMode{config.ServiceModeDispatcher, config.ServiceModeReaper},
			want:  2,
		},
		{name: "all services enabled", modes: config.ValidServiceModes(), want: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enabled := make(map[config.ServiceMode]bool, len(tt.modes))
			for _, mode := range tt.modes {
				enabled[mode] = true
			}

			assert.Equal(t, tt.want, errorChannelCapacity(enabled))
			assert.Equal(t, tt.want+1, errorChannelBufferSize(enabled))
		})
	}
}

func TestGetEnabledServices(t *testing.T) {
	assert.Equal(t, []string{"http", "dispatcher", "reaper"}, GetEnabledServices(testAppConfig("reaper, http,dispatcher")))
	assert.Empty(t, GetEnabledServices(&config.AppConfig{Services: "scheduler"}))
	assert.Empty(t, GetEnabledServices(nil))

	require.Error(t, ValidateServiceConfig(&config.AppConfig{Services: ""}))
	require.NoError(t, ValidateServiceConfig(testAppConfig("dispatcher")))
}

func TestCreateEncryptor(t *testing.T) {
	_, err := CreateEncryptor("", false, quietLogger())
	require.ErrorIs(t, err, errMissingEncryptionKey)

	enc, err := CreateEncryptor(" ", true, quietLogger())
	require.NoError(t, err)
	assert.IsType(t, cryptoutil.NoopEncryptor{}, enc)

	enc, err = CreateEncryptor("a-long-enough-secret", false, quietLogger())
	require.NoError(t, err)
	sealed, err := enc.Encrypt([]byte("token"))
	require.NoError(t, err)
	assert.NotContains(t, sealed, "token")
	plain, err := enc.Decrypt(sealed)
	require.NoError(t, err)
	assert.Equal(t, "token", string(plain))
}

func TestNewServices(t *testing.T) {
	_, err := NewServices(nil)
	require.Error(t, err)

	services := newTestContainer(t, testAppConfig("http,dispatcher,reaper"))
	require.NotNil(t, services.Queue)
	require.NotNil(t, services.Notifications)
	require.NotNil(t, services.Delivery)
	require.NotNil(t, services.Channels)
	assert.Nil(t, services.Cache, "no redis client means no cache")
	assert.Nil(t, services.Observability.MetricsSink)
	require.NoError(t, services.Observability.Close())

	id, err := services.Notifications.SendConfirmation(context.Background(),
		service.Destination{Recipient: "+5491111111111", StoreID: "S1", OrderID: "O1"},
		model.ConfirmationPayload{CustomerName: "Ana"},
	)
	require.NoError(t, err)
	status, ok := services.Queue.StatusOf(id)
	require.True(t, ok)
	assert.Equal(t, model.JobStatusPending, status)
	assert.Equal(t, 0, services.Queue.InFlight(), "enqueue must not start dispatching")
}

func TestBuildHTTPHandler(t *testing.T) {
	services := newTestContainer(t, testAppConfig("http"))
	handler := BuildHTTPHandler(services, nil, config.HTTPConfig{MaxBodyBytes: 1024}, quietLogger())

	for _, path := range []string{"/healthz", "/readyz", "/api/notifications/stats"} {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestRunServicesWithShutdown(t *testing.T) {
	require.Error(t, RunServicesWithShutdown(nil))
	require.Error(t, RunServicesWithShutdown(&ServiceOrchestrationConfig{}))

	cfg := testAppConfig("dispatcher,reaper")
	services := newTestContainer(t, cfg)
	signals := make(chan os.Signal, 1)

	done := make(chan error, 1)
	go func() {
		done <- RunServicesWithShutdown(&ServiceOrchestrationConfig{
			Config:   cfg,
			Services: services,
			Logger:   quietLogger(),
			Signals:  signals,
		})
	}()

	time.Sleep(50 * time.Millisecond)
	signals <- syscall.SIGTERM

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("services did not stop after shutdown signal")
	}
}
