package domain

import (
	"errors"
	"time"
)

// JobState represents the lifecycle state of a generation job as observed
// through its JobResult. Jobs start unseen, become pending once submitted,
// and end in exactly one terminal state.
type JobState string

// Possible job states. Succeeded and failed are terminal: once a JobResult
// carries one of them it never changes.
const (
	JobStatePending   JobState = "PENDING"
	JobStateSucceeded JobState = "SUCCEEDED"
	JobStateFailed    JobState = "FAILED"
)

// Common validation errors for generation jobs.
var (
	ErrEmptyJobID      = errors.New("job ID cannot be empty")
	ErrEmptyJobOwnerID = errors.New("job owner ID cannot be empty")
)

// GenerationJob is the transient snapshot of a submitted generation
// request, keyed by the external worker's job id. It is written once on
// submission and consumed exactly once by reconciliation; it is never
// mutated in between.
type GenerationJob struct {
	OwnerID   string    `json:"owner_id"`
	Prompt    string    `json:"prompt"`
	Profile   string    `json:"profile"`
	Quality   string    `json:"quality,omitempty"`
	Aspect    string    `json:"aspect,omitempty"`
	Format    string    `json:"format,omitempty"`
	Cost      int       `json:"cost"`
	CreatedAt time.Time `json:"created_at"`
}

// Validate checks if the GenerationJob has valid data.
func (j *GenerationJob) Validate() error {
	if j.Prompt == "" {
		return ErrEmptyPrompt
	}
	return nil
}

// JobResult is the reconciled outcome of a generation job, keyed by the
// external job id. It is written at most once per job id; subsequent reads
// are pure lookups. A succeeded result always carries a result URL, and a
// gallery item reference when the owner was known at reconciliation time.
type JobResult struct {
	State       JobState     `json:"state"`
	ResultURL   string       `json:"result_url,omitempty"`
	ErrorText   string       `json:"error_text,omitempty"`
	GalleryItem *GalleryItem `json:"gallery_item,omitempty"`
}

// Terminal reports whether the result carries a terminal state.
func (r *JobResult) Terminal() bool {
	return r.State == JobStateSucceeded || r.State == JobStateFailed
}

// Validate checks if the JobResult has valid data.
func (r *JobResult) Validate() error {
	switch r.State {
	case JobStatePending, JobStateSucceeded, JobStateFailed:
		return nil
	default:
		return ErrInvalidJobState
	}
}
