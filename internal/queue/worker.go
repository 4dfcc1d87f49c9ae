package queue

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/hibiken/asynq"
)

func (q *Queue) handle(ctx context.Context, t *asynq.Task, h Handler) error {
	job := jobFromTask(ctx, t)
	q.emit(EventActive, job, nil)

	if err := run(ctx, h, job); err != nil {
		q.emit(EventFailed, job, err)
		return err
	}
	q.emit(EventCompleted, job, nil)
	return nil
}

func run(ctx context.Context, h Handler, job *Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job %s panicked: %v", job.Name, r)
		}
	}()
	return h(ctx, job)
}

// retryDelay is asynq's RetryDelayFunc; n is the number of retries so far.
func (q *Queue) retryDelay(n int, _ error, _ *asynq.Task) time.Duration {
	return backoffFor(q.cfg.Backoff, n+1)
}

// asynqLogger routes asynq's own logs through slog.
type asynqLogger struct {
	log *slog.Logger
}

func (l asynqLogger) Debug(args ...any) { l.log.Debug(fmt.Sprint(args...)) }
func (l asynqLogger) Info(args ...any)  { l.log.Info(fmt.Sprint(args...)) }
func (l asynqLogger) Warn(args ...any)  { l.log.Warn(fmt.Sprint(args...)) }
func (l asynqLogger) Error(args ...any) { l.log.Error(fmt.Sprint(args...)) }

func (l asynqLogger) Fatal(args ...any) {
	l.log.Error(fmt.Sprint(args...))
	os.Exit(1)
}
