package job

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/xsideai/pixgen-api/internal/domain"
	"github.com/xsideai/pixgen-api/internal/platform/logger"
	"github.com/xsideai/pixgen-api/internal/store"
)

// ErrMissingJobID is returned for completion notices that carry no job id.
// Unlike a duplicate or unknown id, this is a protocol violation and must
// be answered with a client error rather than acknowledged.
var ErrMissingJobID = errors.New("completion notice missing job id")

// genericFailureText stands in when a failed notice carries no diagnostic.
const genericFailureText = "generation failed"

// CompletionNotice is the provider-neutral form of an out-of-band
// completion message. Transport layers (the callback handler, the pull
// path) normalize their wire formats into this before reconciliation.
type CompletionNotice struct {
	// JobID is the external worker's job id.
	JobID string

	// StateSuccess is true when the worker reports the job succeeded.
	StateSuccess bool

	// ResultURL is the generated artifact's URL, when present.
	ResultURL string

	// Message is the worker's diagnostic text, when present.
	Message string
}

// Reconciler applies a completion notice to durable state exactly once per
// job id. Duplicates and notices for unknown jobs are inert: the registry
// take is the single admission point, and only its winner writes anything.
type Reconciler struct {
	registry PendingRegistry
	results  ResultStore
	gallery  store.GalleryStore
	logger   *slog.Logger
}

// NewReconciler creates a Reconciler with the given dependencies.
// If logger is nil, a default logger will be used.
func NewReconciler(
	registry PendingRegistry,
	results ResultStore,
	gallery store.GalleryStore,
	log *slog.Logger,
) *Reconciler {
	if log == nil {
		log = slog.Default()
	}
	return &Reconciler{
		registry: registry,
		results:  results,
		gallery:  gallery,
		logger:   log.With(slog.String("component", "reconciler")),
	}
}

// Resolve runs the reconciliation state machine for one completion notice.
//
// It returns the stored JobResult when this call performed the
// reconciliation, or (nil, nil) when the notice was a harmless duplicate
// or referred to a job that was never registered; callers acknowledge
// both outcomes identically, so the worker does not redeliver a notice
// that was fully processed or correctly recognized as redundant.
//
// A storage failure while appending the gallery item rolls the job back:
// the snapshot is re-recorded in the registry and the error is returned,
// so a redelivered notice (or the pull path) can retry the whole
// reconciliation.
func (r *Reconciler) Resolve(ctx context.Context, notice CompletionNotice) (*domain.JobResult, error) {
	log := logger.FromContextOrDefault(ctx, r.logger)

	if notice.JobID == "" {
		return nil, ErrMissingJobID
	}

	succeeded := notice.StateSuccess && notice.ResultURL != ""

	genJob, ok, err := r.registry.Take(ctx, notice.JobID)
	if err != nil {
		return nil, fmt.Errorf("failed to take pending job %s: %w", notice.JobID, err)
	}
	if !ok {
		// Already reconciled, or never registered here. Either way the
		// notice needs nothing beyond an acknowledgement.
		log.Debug("completion notice for absent job, acknowledging",
			slog.String("job_id", notice.JobID))
		return nil, nil
	}

	if !succeeded {
		errorText := notice.Message
		if errorText == "" {
			errorText = genericFailureText
		}
		result := &domain.JobResult{
			State:     domain.JobStateFailed,
			ErrorText: errorText,
		}
		if err := r.results.Put(ctx, notice.JobID, result); err != nil {
			return nil, fmt.Errorf("failed to store result for job %s: %w", notice.JobID, err)
		}
		log.Info("job reconciled as failed",
			slog.String("job_id", notice.JobID),
			slog.String("error_text", errorText))
		return result, nil
	}

	result := &domain.JobResult{
		State:     domain.JobStateSucceeded,
		ResultURL: notice.ResultURL,
	}

	// A job submitted without an owner still resolves, it just leaves no
	// gallery trace.
	if genJob.OwnerID != "" {
		item, err := domain.NewGalleryItem(genJob.OwnerID, notice.ResultURL, genJob.Prompt, genJob.CreatedAt)
		if err != nil {
			log.Error("failed to build gallery item",
				slog.String("error", err.Error()),
				slog.String("job_id", notice.JobID))
			return nil, r.rollback(ctx, notice.JobID, genJob, err)
		}
		if err := r.gallery.Append(ctx, item); err != nil {
			log.Error("failed to append gallery item, re-recording job for retry",
				slog.String("error", err.Error()),
				slog.String("job_id", notice.JobID),
				slog.String("owner_id", genJob.OwnerID))
			return nil, r.rollback(ctx, notice.JobID, genJob, err)
		}
		result.GalleryItem = item
	}

	if err := r.results.Put(ctx, notice.JobID, result); err != nil {
		// The gallery item is already durable; re-recording the snapshot
		// here would let a redelivery append it twice. Surface the error
		// and leave the job to the pull path.
		log.Error("failed to store result after gallery append",
			slog.String("error", err.Error()),
			slog.String("job_id", notice.JobID))
		return nil, fmt.Errorf("failed to store result for job %s: %w", notice.JobID, err)
	}

	log.Info("job reconciled as succeeded",
		slog.String("job_id", notice.JobID),
		slog.String("owner_id", genJob.OwnerID),
		slog.String("result_url", notice.ResultURL))
	return result, nil
}

// rollback restores the pending entry after a failed success-path write so
// a later redelivery can reconcile the job, then wraps the original error.
func (r *Reconciler) rollback(ctx context.Context, jobID string, genJob *domain.GenerationJob, cause error) error {
	if recordErr := r.registry.Record(ctx, jobID, genJob); recordErr != nil {
		return fmt.Errorf(
			"failed to re-record job %s after storage failure: %v (original error: %w)",
			jobID, recordErr, cause,
		)
	}
	return fmt.Errorf("gallery write failed for job %s: %w", jobID, cause)
}
