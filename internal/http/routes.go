package httpx

import (
	"log/slog"
	"net/http"
	"time"
)

// DefaultReadinessTimeout bounds the dependency checks behind /readyz.
const DefaultReadinessTimeout = 2 * time.Second

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Notifications *NotificationHandlers
	// Readiness checks keyed by dependency name (optional).
	Readiness    map[string]HealthCheck
	MaxBodyBytes int64
	Logger       *slog.Logger
}

// NewRouter creates and configures the API router.
func NewRouter(services RouterServices) http.Handler {
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}
	mux := http.NewServeMux()

	if h := services.Notifications; h != nil {
		if h.Logger == nil {
			h.Logger = logger
		}
		registerNotificationRoutes(mux, h)
	}

	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("GET /readyz", readinessHandler(services.Readiness, DefaultReadinessTimeout))

	return Chain(mux,
		Recover(logger),
		Logging(logger),
		LimitBody(services.MaxBodyBytes),
	)
}

func registerNotificationRoutes(mux *http.ServeMux, h *NotificationHandlers) {
	mux.HandleFunc("GET /api/notifications/stats", h.Stats)
	mux.HandleFunc("GET /api/notifications/jobs", h.ListJobs)
	mux.HandleFunc("GET /api/notifications/jobs/{id}", h.GetJob)
	mux.HandleFunc("POST /api/notifications/actions", h.Action)
	mux.HandleFunc("POST /api/notifications", h.Enqueue)
	mux.HandleFunc("POST /api/orders/{orderID}/status", h.OrderStatusChanged)
}
