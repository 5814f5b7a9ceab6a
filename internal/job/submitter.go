package job

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/xsideai/pixgen-api/internal/blob"
	"github.com/xsideai/pixgen-api/internal/domain"
	"github.com/xsideai/pixgen-api/internal/generation"
	"github.com/xsideai/pixgen-api/internal/platform/logger"
	"github.com/xsideai/pixgen-api/internal/worker"
)

// StagedImage is one decoded reference image awaiting staging. Size and
// content-type limits are enforced by the transport layer before this
// point.
type StagedImage struct {
	Data []byte
	Mime string
}

// SubmitInput is a validated-enough generation request: the transport
// layer has decoded images and trimmed nothing; prompt and profile
// validation happen here so every entry path shares it.
type SubmitInput struct {
	OwnerID string
	Prompt  string
	Profile string
	Quality generation.Quality
	Aspect  string
	Format  string
	Images  []StagedImage
}

// Submitter turns a generation request into an upstream job: it validates
// the request against its profile, stages reference images in the blob
// store, calls the external worker, and records the pending snapshot under
// the returned job id.
type Submitter struct {
	registry PendingRegistry
	worker   worker.Worker
	blobs    *blob.Store
	baseURL  string
	logger   *slog.Logger
}

// NewSubmitter creates a Submitter. baseURL is this server's externally
// reachable address; it is embedded into the callback URL and staged-image
// URLs handed to the worker.
func NewSubmitter(
	registry PendingRegistry,
	w worker.Worker,
	blobs *blob.Store,
	baseURL string,
	log *slog.Logger,
) *Submitter {
	if log == nil {
		log = slog.Default()
	}
	return &Submitter{
		registry: registry,
		worker:   w,
		blobs:    blobs,
		baseURL:  strings.TrimRight(baseURL, "/"),
		logger:   log.With(slog.String("component", "submitter")),
	}
}

// Submit validates and submits the request, returning the external job id.
//
// Validation failures (empty prompt, unknown profile, image-count rules)
// come back as domain/generation sentinel errors and happen before any
// upstream call or registry write. Upstream failures come back as
// *worker.UpstreamError with the upstream's diagnostic preserved.
func (s *Submitter) Submit(ctx context.Context, in SubmitInput) (string, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	prompt := strings.TrimSpace(in.Prompt)
	if prompt == "" {
		return "", domain.ErrEmptyPrompt
	}

	profile, err := generation.ByName(in.Profile)
	if err != nil {
		return "", err
	}

	if err := profile.ValidateImageCount(len(in.Images)); err != nil {
		return "", err
	}

	cost := profile.Cost(in.Quality)

	// Stage reference images and replace each with a URL that resolves
	// through the blob store's get endpoint.
	imageURLs := make([]string, 0, len(in.Images))
	for _, img := range in.Images {
		id := s.blobs.Put(img.Data, img.Mime)
		imageURLs = append(imageURLs, fmt.Sprintf("%s/api/image/%s", s.baseURL, id))
	}

	jobID, err := s.worker.Submit(ctx, worker.SubmitRequest{
		Model:       profile.Model,
		Prompt:      prompt,
		Aspect:      in.Aspect,
		Format:      in.Format,
		ImageURLs:   imageURLs,
		CallbackURL: s.baseURL + "/api/callback",
	})
	if err != nil {
		return "", err
	}

	genJob := &domain.GenerationJob{
		OwnerID:   in.OwnerID,
		Prompt:    prompt,
		Profile:   profile.Name,
		Quality:   string(in.Quality),
		Aspect:    in.Aspect,
		Format:    in.Format,
		Cost:      cost,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.registry.Record(ctx, jobID, genJob); err != nil {
		// The upstream job is already running; without a snapshot its
		// completion will be acknowledged as unknown and discarded.
		log.Error("failed to record pending job",
			slog.String("error", err.Error()),
			slog.String("job_id", jobID))
		return "", fmt.Errorf("failed to record pending job %s: %w", jobID, err)
	}

	log.Info("generation job submitted",
		slog.String("job_id", jobID),
		slog.String("profile", profile.Name),
		slog.String("owner_id", in.OwnerID),
		slog.Int("cost", cost),
		slog.Int("image_count", len(imageURLs)))
	return jobID, nil
}
