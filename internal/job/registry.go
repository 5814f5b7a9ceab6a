// Package job implements the asynchronous job lifecycle coordinator: the
// pending registry, the completion reconciler, the status service, and the
// request submitter. The pieces share one correlation key, the external
// worker's job id, and converge on a single reconciliation path whether a
// job finishes via callback or via pull.
package job

import (
	"context"
	"sync"

	"github.com/xsideai/pixgen-api/internal/domain"
)

// PendingRegistry maps an external job id to the request snapshot needed
// to finish the job later. Entries are immutable after Record; Take is an
// atomic read-and-remove, so for a given job id exactly one caller ever
// observes a present value. That atomicity is what makes reconciliation
// idempotent under duplicate callbacks and concurrent pull resolution.
type PendingRegistry interface {
	// Record stores the snapshot under the job id.
	Record(ctx context.Context, jobID string, job *domain.GenerationJob) error

	// Take atomically removes and returns the snapshot for the job id.
	// The second return is false when no entry exists: either the job
	// was never registered or it has already been taken.
	Take(ctx context.Context, jobID string) (*domain.GenerationJob, bool, error)
}

// MemoryRegistry is the in-process PendingRegistry. The pending map may be
// volatile: a job lost to a restart is still recoverable through the
// worker's pull API, because the external job id is the durable key.
type MemoryRegistry struct {
	mu   sync.Mutex
	jobs map[string]*domain.GenerationJob
}

// NewMemoryRegistry creates an empty in-memory registry.
func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{
		jobs: make(map[string]*domain.GenerationJob),
	}
}

var _ PendingRegistry = (*MemoryRegistry)(nil)

// Record implements PendingRegistry.Record.
func (r *MemoryRegistry) Record(ctx context.Context, jobID string, job *domain.GenerationJob) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs[jobID] = job
	return nil
}

// Take implements PendingRegistry.Take. Lookup and delete happen under one
// lock; read-then-delete as two steps would let two resolvers both observe
// the entry.
func (r *MemoryRegistry) Take(ctx context.Context, jobID string) (*domain.GenerationJob, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[jobID]
	if !ok {
		return nil, false, nil
	}
	delete(r.jobs, jobID)
	return job, true, nil
}

// Len reports the number of pending entries.
func (r *MemoryRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.jobs)
}
