package httpx

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/diffscope/diffscope/internal/service"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Queue     *service.QueueService
	StartedAt time.Time
	Logger    *slog.Logger // Optional
}

// NewRouter creates and configures the HTTP router.
func NewRouter(services RouterServices) http.Handler {
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}

	startedAt := services.StartedAt
	if startedAt.IsZero() {
		startedAt = time.Now()
	}

	mux := http.NewServeMux()

	reviewHandlers := &ReviewHandlers{Svc: services.Queue}
	healthHandlers := &HealthHandlers{Svc: services.Queue, StartedAt: startedAt}

	mux.HandleFunc("POST /api/reviews", reviewHandlers.CreateReview)
	mux.HandleFunc("GET /api/reviews/{id}", reviewHandlers.GetReview)
	mux.HandleFunc("GET /healthz", healthHandlers.Health)
	mux.HandleFunc("HEAD /healthz", healthHandlers.Health)

	return Recover(logger)(Logging(logger)(mux))
}
