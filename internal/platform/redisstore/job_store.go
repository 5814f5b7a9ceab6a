// Package redisstore provides Redis-backed implementations of the pending
// job registry and the job result cache. Deployments that want job state
// to survive a process restart (or to be shared across replicas) select
// this over the in-memory defaults; the semantics are identical. GETDEL
// gives the registry its atomic take, and SETNX keeps results write-once.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/xsideai/pixgen-api/internal/domain"
	"github.com/xsideai/pixgen-api/internal/job"
)

// Retention windows. Pending entries outlive any reasonable generation
// run; results stay long enough for every polling client to observe the
// terminal state.
const (
	pendingTTL = 24 * time.Hour
	resultTTL  = 24 * time.Hour
)

// JobStore implements job.PendingRegistry and job.ResultStore on Redis.
type JobStore struct {
	client *redis.Client
	prefix string
	logger *slog.Logger
}

// NewJobStore creates a JobStore around an initialized Redis client.
// If logger is nil, a default logger will be used.
func NewJobStore(client *redis.Client, log *slog.Logger) *JobStore {
	if client == nil {
		panic("redis client cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	return &JobStore{
		client: client,
		prefix: "pixgen",
		logger: log.With(slog.String("component", "redis_job_store")),
	}
}

var (
	_ job.PendingRegistry = (*JobStore)(nil)
	_ job.ResultStore     = (*JobStore)(nil)
)

func (s *JobStore) pendingKey(jobID string) string {
	return s.prefix + ":pending:" + jobID
}

func (s *JobStore) resultKey(jobID string) string {
	return s.prefix + ":result:" + jobID
}

// Record implements job.PendingRegistry.Record.
func (s *JobStore) Record(ctx context.Context, jobID string, genJob *domain.GenerationJob) error {
	payload, err := json.Marshal(genJob)
	if err != nil {
		return fmt.Errorf("failed to marshal pending job %s: %w", jobID, err)
	}

	if err := s.client.Set(ctx, s.pendingKey(jobID), payload, pendingTTL).Err(); err != nil {
		return fmt.Errorf("failed to record pending job %s: %w", jobID, err)
	}
	return nil
}

// Take implements job.PendingRegistry.Take. GETDEL removes and returns the
// entry in one server-side step, so concurrent resolvers for the same job
// id cannot both observe it.
func (s *JobStore) Take(ctx context.Context, jobID string) (*domain.GenerationJob, bool, error) {
	payload, err := s.client.GetDel(ctx, s.pendingKey(jobID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to take pending job %s: %w", jobID, err)
	}

	var genJob domain.GenerationJob
	if err := json.Unmarshal([]byte(payload), &genJob); err != nil {
		s.logger.Error("corrupt pending job entry",
			slog.String("job_id", jobID),
			slog.String("error", err.Error()))
		return nil, false, fmt.Errorf("failed to unmarshal pending job %s: %w", jobID, err)
	}

	return &genJob, true, nil
}

// Put implements job.ResultStore.Put. SETNX leaves an existing result
// untouched, preserving terminal immutability.
func (s *JobStore) Put(ctx context.Context, jobID string, result *domain.JobResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal result for job %s: %w", jobID, err)
	}

	if err := s.client.SetNX(ctx, s.resultKey(jobID), payload, resultTTL).Err(); err != nil {
		return fmt.Errorf("failed to store result for job %s: %w", jobID, err)
	}
	return nil
}

// Get implements job.ResultStore.Get.
func (s *JobStore) Get(ctx context.Context, jobID string) (*domain.JobResult, bool, error) {
	payload, err := s.client.Get(ctx, s.resultKey(jobID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get result for job %s: %w", jobID, err)
	}

	var result domain.JobResult
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal result for job %s: %w", jobID, err)
	}

	return &result, true, nil
}
