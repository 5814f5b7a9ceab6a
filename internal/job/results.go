package job

import (
	"context"
	"sync"

	"github.com/xsideai/pixgen-api/internal/domain"
)

// ResultStore caches reconciled job outcomes by external job id. Results
// are written at most once per id (the reconciler only writes after
// winning the registry take) and terminal results are immutable, so
// repeated polls after completion return the identical payload.
type ResultStore interface {
	// Put stores the result for the job id. A result that is already
	// present is left untouched.
	Put(ctx context.Context, jobID string, result *domain.JobResult) error

	// Get returns the stored result for the job id, or false when none
	// has been written yet.
	Get(ctx context.Context, jobID string) (*domain.JobResult, bool, error)
}

// MemoryResultStore is the in-process ResultStore.
type MemoryResultStore struct {
	mu      sync.Mutex
	results map[string]*domain.JobResult
}

// NewMemoryResultStore creates an empty in-memory result store.
func NewMemoryResultStore() *MemoryResultStore {
	return &MemoryResultStore{
		results: make(map[string]*domain.JobResult),
	}
}

var _ ResultStore = (*MemoryResultStore)(nil)

// Put implements ResultStore.Put.
func (s *MemoryResultStore) Put(ctx context.Context, jobID string, result *domain.JobResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.results[jobID]; exists {
		return nil
	}
	s.results[jobID] = result
	return nil
}

// Get implements ResultStore.Get.
func (s *MemoryResultStore) Get(ctx context.Context, jobID string) (*domain.JobResult, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, ok := s.results[jobID]
	return result, ok, nil
}
