package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

// Job is the task a handler receives.
type Job struct {
	ID   string
	Name string
	Data json.RawMessage
	// Attempt is 1 on the first try.
	Attempt     int
	MaxAttempts int
}

// Decode unmarshals the job payload into v.
func (j *Job) Decode(v any) error {
	if err := json.Unmarshal(j.Data, v); err != nil {
		return fmt.Errorf("decode job %s payload: %w", j.ID, err)
	}
	return nil
}

// LastAttempt reports whether a failure now drops the job.
func (j *Job) LastAttempt() bool {
	return j.Attempt >= j.MaxAttempts
}

// JobOptions is the retry policy attached to a job when it is added. The
// delay between retries is the queue's Backoff.
type JobOptions struct {
	// Attempts is the total number of tries, including the first one.
	Attempts int
	// Delay postpones the first try.
	Delay time.Duration
}

// backoffFor returns the wait before the next try once attemptsMade tries
// have failed: base, 2*base, 4*base, ...
func backoffFor(base time.Duration, attemptsMade int) time.Duration {
	if base <= 0 || attemptsMade < 1 {
		return 0
	}
	return base * time.Duration(1<<(attemptsMade-1))
}

// jobFromTask reads the task metadata asynq puts on the handler context.
func jobFromTask(ctx context.Context, t *asynq.Task) *Job {
	job := &Job{Name: t.Type(), Data: json.RawMessage(t.Payload()), Attempt: 1, MaxAttempts: 1}
	if id, ok := asynq.GetTaskID(ctx); ok {
		job.ID = id
	}
	if retried, ok := asynq.GetRetryCount(ctx); ok {
		job.Attempt = retried + 1
	}
	if maxRetry, ok := asynq.GetMaxRetry(ctx); ok {
		job.MaxAttempts = maxRetry + 1
	}
	return job
}
