package job

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xsideai/pixgen-api/internal/domain"
)

// fakeGalleryStore records appends in memory and can be told to fail.
type fakeGalleryStore struct {
	mu        sync.Mutex
	items     []*domain.GalleryItem
	appendErr error
}

func (f *fakeGalleryStore) Append(ctx context.Context, item *domain.GalleryItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.appendErr != nil {
		return f.appendErr
	}
	f.items = append(f.items, item)
	return nil
}

func (f *fakeGalleryStore) ListByOwner(ctx context.Context, ownerID string) ([]*domain.GalleryItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.GalleryItem
	for _, item := range f.items {
		if item.OwnerID == ownerID {
			out = append(out, item)
		}
	}
	return out, nil
}

func (f *fakeGalleryStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.items)
}

func newTestReconciler(t *testing.T) (*Reconciler, *MemoryRegistry, *MemoryResultStore, *fakeGalleryStore) {
	t.Helper()
	registry := NewMemoryRegistry()
	results := NewMemoryResultStore()
	gallery := &fakeGalleryStore{}
	return NewReconciler(registry, results, gallery, nil), registry, results, gallery
}

func pendingJob(ownerID string) *domain.GenerationJob {
	return &domain.GenerationJob{
		OwnerID: ownerID,
		Prompt:  "a red fox in the snow",
		Profile: "base",
		Cost:    10,
	}
}

func TestReconcilerResolveSuccess(t *testing.T) {
	ctx := context.Background()
	r, registry, results, gallery := newTestReconciler(t)

	require.NoError(t, registry.Record(ctx, "task-1", pendingJob("user-1")))

	result, err := r.Resolve(ctx, CompletionNotice{
		JobID:        "task-1",
		StateSuccess: true,
		ResultURL:    "https://cdn.example.com/out.png",
	})
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Equal(t, domain.JobStateSucceeded, result.State)
	assert.Equal(t, "https://cdn.example.com/out.png", result.ResultURL)
	require.NotNil(t, result.GalleryItem)
	assert.Equal(t, "user-1", result.GalleryItem.OwnerID)
	assert.Equal(t, "a red fox in the snow", result.GalleryItem.Prompt)

	// The stored result matches what Resolve returned.
	stored, ok, err := results.Get(ctx, "task-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, result, stored)

	// The pending entry is consumed.
	assert.Equal(t, 0, registry.Len())
	assert.Equal(t, 1, gallery.count())
}

func TestReconcilerResolveFailure(t *testing.T) {
	ctx := context.Background()
	r, registry, results, gallery := newTestReconciler(t)

	require.NoError(t, registry.Record(ctx, "task-1", pendingJob("user-1")))

	result, err := r.Resolve(ctx, CompletionNotice{
		JobID:   "task-1",
		Message: "content policy violation",
	})
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Equal(t, domain.JobStateFailed, result.State)
	assert.Equal(t, "content policy violation", result.ErrorText)
	assert.Nil(t, result.GalleryItem)
	assert.Equal(t, 0, gallery.count())

	stored, ok, err := results.Get(ctx, "task-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, domain.JobStateFailed, stored.State)
}

func TestReconcilerResolveFailureWithoutMessage(t *testing.T) {
	ctx := context.Background()
	r, registry, _, _ := newTestReconciler(t)

	require.NoError(t, registry.Record(ctx, "task-1", pendingJob("user-1")))

	result, err := r.Resolve(ctx, CompletionNotice{JobID: "task-1"})
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, "generation failed", result.ErrorText)
}

func TestReconcilerSuccessWithoutResultURLIsFailure(t *testing.T) {
	ctx := context.Background()
	r, registry, _, gallery := newTestReconciler(t)

	require.NoError(t, registry.Record(ctx, "task-1", pendingJob("user-1")))

	// A success notice with no artifact cannot produce a gallery item; it
	// reconciles as failed.
	result, err := r.Resolve(ctx, CompletionNotice{
		JobID:        "task-1",
		StateSuccess: true,
	})
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, domain.JobStateFailed, result.State)
	assert.Equal(t, 0, gallery.count())
}

func TestReconcilerDuplicateNoticeIsInert(t *testing.T) {
	ctx := context.Background()
	r, registry, _, gallery := newTestReconciler(t)

	require.NoError(t, registry.Record(ctx, "task-1", pendingJob("user-1")))

	notice := CompletionNotice{
		JobID:        "task-1",
		StateSuccess: true,
		ResultURL:    "https://cdn.example.com/out.png",
	}

	first, err := r.Resolve(ctx, notice)
	require.NoError(t, err)
	require.NotNil(t, first)

	// Redeliveries resolve to nil without touching state.
	for i := 0; i < 3; i++ {
		dup, err := r.Resolve(ctx, notice)
		require.NoError(t, err)
		assert.Nil(t, dup)
	}

	assert.Equal(t, 1, gallery.count())
}

func TestReconcilerUnknownJobIsInert(t *testing.T) {
	ctx := context.Background()
	r, _, results, gallery := newTestReconciler(t)

	result, err := r.Resolve(ctx, CompletionNotice{
		JobID:        "never-seen",
		StateSuccess: true,
		ResultURL:    "https://cdn.example.com/out.png",
	})
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.Equal(t, 0, gallery.count())

	_, ok, err := results.Get(ctx, "never-seen")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestReconcilerMissingJobID(t *testing.T) {
	ctx := context.Background()
	r, _, _, _ := newTestReconciler(t)

	_, err := r.Resolve(ctx, CompletionNotice{StateSuccess: true})
	assert.ErrorIs(t, err, ErrMissingJobID)
}

func TestReconcilerOwnerlessJobSkipsGallery(t *testing.T) {
	ctx := context.Background()
	r, registry, results, gallery := newTestReconciler(t)

	require.NoError(t, registry.Record(ctx, "task-1", pendingJob("")))

	result, err := r.Resolve(ctx, CompletionNotice{
		JobID:        "task-1",
		StateSuccess: true,
		ResultURL:    "https://cdn.example.com/out.png",
	})
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, domain.JobStateSucceeded, result.State)
	assert.Nil(t, result.GalleryItem)
	assert.Equal(t, 0, gallery.count())

	_, ok, err := results.Get(ctx, "task-1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestReconcilerGalleryFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	registry := NewMemoryRegistry()
	results := NewMemoryResultStore()
	gallery := &fakeGalleryStore{appendErr: errors.New("connection refused")}
	r := NewReconciler(registry, results, gallery, nil)

	require.NoError(t, registry.Record(ctx, "task-1", pendingJob("user-1")))

	_, err := r.Resolve(ctx, CompletionNotice{
		JobID:        "task-1",
		StateSuccess: true,
		ResultURL:    "https://cdn.example.com/out.png",
	})
	require.Error(t, err)

	// No result was stored and the pending entry is back, so a redelivered
	// notice can retry the whole reconciliation.
	_, ok, getErr := results.Get(ctx, "task-1")
	require.NoError(t, getErr)
	assert.False(t, ok)
	assert.Equal(t, 1, registry.Len())

	// The retry succeeds once the store recovers.
	gallery.appendErr = nil
	result, err := r.Resolve(ctx, CompletionNotice{
		JobID:        "task-1",
		StateSuccess: true,
		ResultURL:    "https://cdn.example.com/out.png",
	})
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, domain.JobStateSucceeded, result.State)
	assert.Equal(t, 1, gallery.count())
}

func TestReconcilerConcurrentNoticesConverge(t *testing.T) {
	ctx := context.Background()
	r, registry, results, gallery := newTestReconciler(t)

	require.NoError(t, registry.Record(ctx, "task-1", pendingJob("user-1")))

	notice := CompletionNotice{
		JobID:        "task-1",
		StateSuccess: true,
		ResultURL:    "https://cdn.example.com/out.png",
	}

	const resolvers = 16
	var wg sync.WaitGroup
	winners := make(chan *domain.JobResult, resolvers)

	for i := 0; i < resolvers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := r.Resolve(ctx, notice)
			assert.NoError(t, err)
			if result != nil {
				winners <- result
			}
		}()
	}
	wg.Wait()
	close(winners)

	// Exactly one resolver performed the reconciliation.
	assert.Len(t, winners, 1)
	assert.Equal(t, 1, gallery.count())

	stored, ok, err := results.Get(ctx, "task-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, domain.JobStateSucceeded, stored.State)
}
