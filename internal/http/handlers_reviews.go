// Package httpx provides the HTTP surface of the diffscope review queue.
package httpx

import (
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/diffscope/diffscope/internal/data"
	"github.com/diffscope/diffscope/internal/domain/model"
	"github.com/diffscope/diffscope/internal/service"
)

// ReviewHandlers provides HTTP handlers for review job submission and status.
type ReviewHandlers struct {
	Svc *service.QueueService
}

// CreateReview handles review submissions. A fresh enqueue answers 202; a
// submission suppressed by the idempotency guard answers 200 with the
// already-tracked job.
func (h *ReviewHandlers) CreateReview(w http.ResponseWriter, r *http.Request) {
	var req model.CreateReviewJobRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	result, err := h.Svc.Enqueue(r.Context(), &req)
	if errors.Is(err, model.ErrInvalidRequest) {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_request", Err: err})
		return
	}
	if err != nil {
		// Anything past validation is the queue's fault, not the caller's.
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "enqueue_failed", Err: err})
		return
	}

	code := http.StatusAccepted
	if result.Deduplicated {
		code = http.StatusOK
	}
	WriteJSON(w, code, result.Job.StatusView())
}

// GetReview handles status lookups for a single job.
func (h *ReviewHandlers) GetReview(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	// Job ids are UUIDs; rejecting anything else here spares the store a
	// guaranteed cast error.
	if _, err := uuid.Parse(id); err != nil {
		WriteError(w, ErrorParams{
			Code:    http.StatusNotFound,
			ErrCode: "not_found",
			Err:     errors.New("job not found"),
		})
		return
	}

	job, err := h.Svc.GetByID(r.Context(), id)
	if errors.Is(err, data.ErrJobNotFound) {
		WriteError(w, ErrorParams{Code: http.StatusNotFound, ErrCode: "not_found", Err: err})
		return
	}
	if err != nil {
		WriteError(w, ErrorParams{
			Code:    http.StatusInternalServerError,
			ErrCode: "lookup_failed",
			Err:     err,
		})
		return
	}

	WriteJSON(w, http.StatusOK, job.StatusView())
}
