package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/xsideai/pixgen-api/internal/api/shared"
	"github.com/xsideai/pixgen-api/internal/job"
	"github.com/xsideai/pixgen-api/internal/platform/kie"
)

// CallbackHandler receives completion notices from the external worker.
type CallbackHandler struct {
	reconciler *job.Reconciler
}

// NewCallbackHandler creates a new CallbackHandler.
func NewCallbackHandler(reconciler *job.Reconciler) *CallbackHandler {
	return &CallbackHandler{reconciler: reconciler}
}

// Callback handles POST /api/callback requests.
//
// The worker retries delivery on any non-2xx acknowledgement, so the
// response code is the retry contract: 200 for processed notices AND for
// duplicates/unknown ids (retrying those is pointless), 400 only for
// structurally invalid payloads, and 5xx when a storage failure left the
// job unresolved and a redelivery can succeed.
func (h *CallbackHandler) Callback(w http.ResponseWriter, r *http.Request) {
	var req CallbackRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	notice := job.CompletionNotice{
		Message: req.Msg,
	}
	if req.Data != nil {
		notice.JobID = req.Data.TaskID
		notice.StateSuccess = req.Code == 200 && req.Data.State == "success"
		notice.ResultURL = kie.FirstResultURL(req.Data.ResultJSON)
		if req.Data.FailMsg != "" {
			notice.Message = req.Data.FailMsg
		}
	}

	if _, err := h.reconciler.Resolve(r.Context(), notice); err != nil {
		if errors.Is(err, job.ErrMissingJobID) {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Missing taskId")
			return
		}
		slog.Error("Failed to reconcile completion notice",
			"error", err, "task_id", notice.JobID)
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to process completion notice", err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, map[string]string{"status": "received"})
}
