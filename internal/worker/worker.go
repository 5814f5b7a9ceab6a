// Package worker defines the contract between the job coordinator and the
// external generation worker. Implementations live under
// internal/platform; the coordinator treats them as opaque beyond the
// submit / callback / pull surface defined here.
package worker

import (
	"context"
	"fmt"
)

// SubmitRequest is the provider-neutral payload for starting a generation
// job. Profile-specific mapping (model selection, image rules) happens
// before this point; reference images arrive as publicly fetchable URLs.
type SubmitRequest struct {
	Model       string
	Prompt      string
	Aspect      string
	Format      string
	ImageURLs   []string
	CallbackURL string
}

// Worker starts asynchronous generation jobs upstream.
type Worker interface {
	// Submit starts a job and returns the worker's opaque job id.
	// Transport failures and upstream rejections are returned as
	// *UpstreamError with the upstream's own diagnostic preserved.
	Submit(ctx context.Context, req SubmitRequest) (string, error)
}

// PullResult is the outcome of one pull-status query.
type PullResult struct {
	// Done is false while the worker still reports the job in progress.
	Done bool

	// Succeeded is meaningful only when Done is true.
	Succeeded bool

	// ResultURL carries the generated artifact's URL on success.
	ResultURL string

	// FailureMessage carries the worker's failure diagnostic, if any.
	FailureMessage string
}

// StatusPuller is implemented by workers that expose a pull/status
// endpoint in addition to callbacks. The status service type-asserts for
// this interface; callback-only workers simply don't implement it.
type StatusPuller interface {
	// PullStatus queries the worker once for the job's current state.
	// No retrying happens inside this call.
	PullStatus(ctx context.Context, jobID string) (*PullResult, error)
}

// UpstreamError reports that the external worker rejected a request or was
// unreachable. Message preserves the upstream's diagnostic verbatim, since
// callers need the original text to decide whether to retry.
type UpstreamError struct {
	// Code is the upstream's status code, when one was received.
	Code int

	// Message is the upstream's own error text, unmodified.
	Message string

	// Err is the underlying transport error, if any.
	Err error
}

// Error implements the error interface.
func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("upstream worker error: %s: %v", e.Message, e.Err)
	}
	if e.Code != 0 {
		return fmt.Sprintf("upstream worker error (code %d): %s", e.Code, e.Message)
	}
	return fmt.Sprintf("upstream worker error: %s", e.Message)
}

// Unwrap returns the wrapped transport error to support errors.Is/errors.As.
func (e *UpstreamError) Unwrap() error {
	return e.Err
}
