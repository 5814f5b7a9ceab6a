// Package gemini implements the external-worker contract in-process using
// Google's Gemini API. Unlike the KIE backend there is no remote job
// record: Submit returns a locally generated job id, generation runs in a
// goroutine, and completion is delivered to the reconciler through the
// same notice shape a webhook would produce. The backend is callback-only,
// so it deliberately does not implement worker.StatusPuller.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xsideai/pixgen-api/internal/blob"
	"github.com/xsideai/pixgen-api/internal/job"
	"github.com/xsideai/pixgen-api/internal/worker"
	"google.golang.org/genai"
)

// generateTimeout bounds one generation run.
const generateTimeout = 5 * time.Minute

// Error definitions for the gemini package.
var (
	// ErrNoImageGenerated is returned when a response carries no image data.
	ErrNoImageGenerated = errors.New("no image data in response")
)

// resolver delivers one completion notice. Held as a closure over the
// reconciler so tests can intercept deliveries.
type resolver func(ctx context.Context, notice job.CompletionNotice)

// Worker generates images through the Gemini API and feeds results to the
// reconciler. Generated bytes are staged in the blob store and exposed via
// the image endpoint, so result URLs resolve the same way staged inputs do.
type Worker struct {
	client  *genai.Client
	model   string
	blobs   *blob.Store
	baseURL string
	resolve resolver
	logger  *slog.Logger
}

// NewWorker creates a Gemini-backed worker.
//
// Parameters:
//   - ctx: used for client initialization only
//   - apiKey, model: Gemini API credentials and model name
//   - blobs: store for generated image bytes
//   - baseURL: this server's external address, for result URLs
//   - reconciler: receives completion notices
//   - log: structured logger; nil selects the default
func NewWorker(
	ctx context.Context,
	apiKey, model string,
	blobs *blob.Store,
	baseURL string,
	reconciler *job.Reconciler,
	log *slog.Logger,
) (*Worker, error) {
	if apiKey == "" {
		return nil, errors.New("gemini API key cannot be empty")
	}
	if model == "" {
		return nil, errors.New("gemini model name cannot be empty")
	}
	if log == nil {
		log = slog.Default()
	}

	clientConfig := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	w := &Worker{
		client:  client,
		model:   model,
		blobs:   blobs,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  log.With(slog.String("component", "gemini_worker")),
	}
	w.resolve = func(ctx context.Context, notice job.CompletionNotice) {
		if _, err := reconciler.Resolve(ctx, notice); err != nil {
			w.logger.Error("failed to resolve gemini job",
				slog.String("job_id", notice.JobID),
				slog.String("error", err.Error()))
		}
	}

	return w, nil
}

var _ worker.Worker = (*Worker)(nil)

// Submit implements worker.Worker.Submit. The job id is issued locally and
// generation proceeds in the background; completion reaches the reconciler
// exactly like an external callback would.
func (w *Worker) Submit(ctx context.Context, req worker.SubmitRequest) (string, error) {
	if len(req.ImageURLs) > 0 {
		// This backend does text-to-image only; the KIE backend carries
		// the image-to-image profiles.
		return "", &worker.UpstreamError{
			Message: "gemini backend does not accept reference images",
		}
	}

	jobID := uuid.New().String()

	go w.run(jobID, req.Prompt)

	return jobID, nil
}

// run executes one generation and delivers the completion notice. It uses
// a fresh context: the submitting request's context ends long before the
// generation does.
func (w *Worker) run(jobID, prompt string) {
	ctx, cancel := context.WithTimeout(context.Background(), generateTimeout)
	defer cancel()

	resultURL, err := w.generate(ctx, prompt)
	if err != nil {
		w.logger.Warn("gemini generation failed",
			slog.String("job_id", jobID),
			slog.String("error", err.Error()))
		w.resolve(ctx, job.CompletionNotice{
			JobID:   jobID,
			Message: err.Error(),
		})
		return
	}

	w.resolve(ctx, job.CompletionNotice{
		JobID:        jobID,
		StateSuccess: true,
		ResultURL:    resultURL,
	})
}

// generate calls the Gemini API once and stages the first returned image,
// returning its fetchable URL.
func (w *Worker) generate(ctx context.Context, prompt string) (string, error) {
	resp, err := w.client.Models.GenerateContent(ctx, w.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("gemini API call failed: %w", err)
	}

	img := firstImage(resp)
	if img == nil {
		return "", ErrNoImageGenerated
	}

	mimeType := img.MIMEType
	if mimeType == "" {
		mimeType = "image/png"
	}
	id := w.blobs.Put(img.Data, mimeType)
	return fmt.Sprintf("%s/api/image/%s", w.baseURL, id), nil
}

// firstImage returns the first inline image blob in the response, or nil
// when the response carries none. Text parts are skipped; models often
// interleave commentary with the generated image.
func firstImage(resp *genai.GenerateContentResponse) *genai.Blob {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil && part.InlineData != nil && len(part.InlineData.Data) > 0 {
			return part.InlineData
		}
	}
	return nil
}
