package httpx

import (
	"net/http"
	"time"

	"github.com/diffscope/diffscope/internal/domain/model"
	"github.com/diffscope/diffscope/internal/service"
)

// HealthHandlers reports process liveness alongside queue depth by status.
type HealthHandlers struct {
	Svc       *service.QueueService
	StartedAt time.Time
}

type healthResponse struct {
	Status        string         `json:"status"`
	UptimeSeconds int64          `json:"uptime_seconds"`
	Jobs          model.JobStats `json:"jobs"`
}

// Health handles readiness/liveness checks. The queue counts are best-effort;
// a store outage degrades the payload but still reports the process as up.
func (h *HealthHandlers) Health(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:        "ok",
		UptimeSeconds: int64(time.Since(h.StartedAt).Seconds()),
	}

	if r.Method == http.MethodHead {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		return
	}

	if stats, err := h.Svc.StatusCounts(r.Context()); err == nil {
		resp.Jobs = *stats
	} else {
		resp.Status = "degraded"
	}

	WriteJSON(w, http.StatusOK, resp)
}
