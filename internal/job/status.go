package job

import (
	"context"
	"log/slog"

	"github.com/xsideai/pixgen-api/internal/domain"
	"github.com/xsideai/pixgen-api/internal/platform/logger"
	"github.com/xsideai/pixgen-api/internal/worker"
)

// pendingResult is what polls observe before any reconciliation has
// landed. It is never stored: PENDING lives only in responses.
var pendingResult = &domain.JobResult{State: domain.JobStatePending}

// StatusService answers "is job X done yet, and with what result" for
// polling clients. Stored results are returned verbatim; otherwise, when
// the worker exposes a pull API, the service queries it once and funnels a
// terminal answer through the same reconciler as the callback path, so
// both paths converge on identical stored state.
type StatusService struct {
	results    ResultStore
	reconciler *Reconciler
	worker     worker.Worker
	logger     *slog.Logger
}

// NewStatusService creates a StatusService. The worker may or may not
// implement worker.StatusPuller; callback-only workers simply leave
// unresolved jobs reported as pending.
func NewStatusService(
	results ResultStore,
	reconciler *Reconciler,
	w worker.Worker,
	log *slog.Logger,
) *StatusService {
	if log == nil {
		log = slog.Default()
	}
	return &StatusService{
		results:    results,
		reconciler: reconciler,
		worker:     w,
		logger:     log.With(slog.String("component", "status_service")),
	}
}

// Status reports the current state of the job. Unknown ids are reported as
// pending: the coordinator cannot positively distinguish "never existed"
// from "not yet resolved".
func (s *StatusService) Status(ctx context.Context, jobID string) (*domain.JobResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if result, ok, err := s.results.Get(ctx, jobID); err != nil {
		return nil, err
	} else if ok {
		return result, nil
	}

	puller, ok := s.worker.(worker.StatusPuller)
	if !ok {
		return pendingResult, nil
	}

	// One bounded query per status call; the client's poll loop is the
	// retry mechanism.
	pull, err := puller.PullStatus(ctx, jobID)
	if err != nil {
		log.Warn("pull status failed, reporting pending",
			slog.String("job_id", jobID),
			slog.String("error", err.Error()))
		return pendingResult, nil
	}

	if !pull.Done {
		return pendingResult, nil
	}

	result, err := s.reconciler.Resolve(ctx, CompletionNotice{
		JobID:        jobID,
		StateSuccess: pull.Succeeded,
		ResultURL:    pull.ResultURL,
		Message:      pull.FailureMessage,
	})
	if err != nil {
		return nil, err
	}
	if result != nil {
		return result, nil
	}

	// Lost the race against a concurrent resolution: the winner's result
	// is (or is about to be) stored.
	if stored, ok, err := s.results.Get(ctx, jobID); err != nil {
		return nil, err
	} else if ok {
		return stored, nil
	}
	return pendingResult, nil
}
