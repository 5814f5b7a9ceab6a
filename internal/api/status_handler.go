package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/xsideai/pixgen-api/internal/api/shared"
	"github.com/xsideai/pixgen-api/internal/job"
)

// StatusHandler answers polling requests for job state.
type StatusHandler struct {
	status *job.StatusService
}

// NewStatusHandler creates a new StatusHandler.
func NewStatusHandler(status *job.StatusService) *StatusHandler {
	return &StatusHandler{status: status}
}

// TaskStatus handles GET /api/task/{taskID} requests. Unresolved and
// unknown ids both report PENDING; terminal states repeat identically on
// every subsequent poll.
func (h *StatusHandler) TaskStatus(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "taskID")
	if taskID == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Missing taskId")
		return
	}

	result, err := h.status.Status(r.Context(), taskID)
	if err != nil {
		slog.Error("Failed to get job status", "error", err, "task_id", taskID)
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, jobResultToDTO(result))
}
