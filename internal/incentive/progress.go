package incentive

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

type JobStatus string

const (
	JobRunning  JobStatus = "running"
	JobFinished JobStatus = "finished"
)

type JobProgress struct {
	JobID     string    `json:"jobId"`
	Status    JobStatus `json:"status"`
	Total     int       `json:"total"`
	Processed int       `json:"processed"`
	Mutated   int       `json:"mutated"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// RedisJobTracker keeps bulk-job progress in redis under a TTL so it is
// visible to every instance and evicted on its own.
type RedisJobTracker struct {
	client  *redis.Client
	ttl     time.Duration
	timeout time.Duration
}

func NewRedisJobTracker(client *redis.Client, ttl, timeout time.Duration) *RedisJobTracker {
	return &RedisJobTracker{
		client:  client,
		ttl:     ttl,
		timeout: timeout,
	}
}

func jobKey(jobID string) string {
	return "bulk_job_" + jobID
}

func (t *RedisJobTracker) set(progress *JobProgress) error {
	progress.UpdatedAt = time.Now()

	data, err := json.Marshal(progress)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), t.timeout)
	defer cancel()

	return t.client.Set(ctx, jobKey(progress.JobID), data, t.ttl).Err()
}

func (t *RedisJobTracker) Start(jobID string, total int) error {
	return t.set(&JobProgress{
		JobID:  jobID,
		Status: JobRunning,
		Total:  total,
	})
}

func (t *RedisJobTracker) Advance(jobID string, processed, mutated int) error {
	progress, err := t.Get(jobID)
	if err != nil {
		return err
	}

	progress.Processed = processed
	progress.Mutated = mutated
	return t.set(progress)
}

func (t *RedisJobTracker) Finish(jobID string, mutated int) error {
	progress, err := t.Get(jobID)
	if err != nil {
		return err
	}

	progress.Status = JobFinished
	progress.Processed = progress.Total
	progress.Mutated = mutated
	return t.set(progress)
}

func (t *RedisJobTracker) Get(jobID string) (*JobProgress, error) {
	ctx, cancel := context.WithTimeout(context.Background(), t.timeout)
	defer cancel()

	data, err := t.client.Get(ctx, jobKey(jobID)).Bytes()
	if err != nil {
		return nil, err
	}

	progress := &JobProgress{}
	if err := json.Unmarshal(data, progress); err != nil {
		return nil, err
	}

	return progress, nil
}
