// Package queue runs background jobs on asynq: Redis-backed tasks with
// retries, exponential backoff and delayed start. A task held by a worker
// that dies is recovered once its lease expires.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/hibiken/asynq"
)

// Handler processes one job. A returned error (or panic) counts as a failed try.
type Handler func(ctx context.Context, job *Job) error

// Config tunes a Queue. Zero values fall back to sane defaults.
type Config struct {
	Name        string
	Concurrency int
	// Backoff is the base of the exponential delay between tries.
	Backoff time.Duration
	// Retention keeps completed tasks inspectable; zero deletes them at once.
	Retention       time.Duration
	ShutdownTimeout time.Duration
}

type taskClient interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
	Close() error
}

// Queue enqueues jobs through an asynq client and processes them with an
// asynq server listening on the single queue cfg.Name.
type Queue struct {
	client taskClient
	server *asynq.Server
	mux    *asynq.ServeMux
	cfg    Config
	log    *slog.Logger

	mu        sync.RWMutex
	listeners map[Event][]Listener

	runMu   sync.Mutex
	running bool
	closed  bool
}

// New connects to the Redis at redisURL (redis:// or rediss://). Nothing is
// processed until Start.
func New(redisURL string, cfg Config, log *slog.Logger) (*Queue, error) {
	opt, err := asynq.ParseRedisURI(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse queue redis url: %w", err)
	}

	q := newQueue(asynq.NewClient(opt), cfg, log)
	q.server = asynq.NewServer(opt, asynq.Config{
		Concurrency:     q.cfg.Concurrency,
		Queues:          map[string]int{q.cfg.Name: 1},
		RetryDelayFunc:  q.retryDelay,
		ShutdownTimeout: q.cfg.ShutdownTimeout,
		Logger:          asynqLogger{log: q.log},
		LogLevel:        asynq.WarnLevel,
	})
	return q, nil
}

func newQueue(client taskClient, cfg Config, log *slog.Logger) *Queue {
	if cfg.Name == "" {
		cfg.Name = "default"
	}
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
	return &Queue{
		client:    client,
		mux:       asynq.NewServeMux(),
		cfg:       cfg,
		log:       log.With("queue", cfg.Name),
		listeners: make(map[Event][]Listener),
	}
}

// Process registers the handler for jobs called name. Call before Start.
func (q *Queue) Process(name string, h Handler) {
	q.mux.HandleFunc(name, func(ctx context.Context, t *asynq.Task) error {
		return q.handle(ctx, t, h)
	})
}

// Add enqueues a job and returns its id.
func (q *Queue) Add(ctx context.Context, name string, payload any, opts JobOptions) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode job %s payload: %w", name, err)
	}

	attempts := max(opts.Attempts, 1)
	taskOpts := []asynq.Option{asynq.Queue(q.cfg.Name), asynq.MaxRetry(attempts - 1)}
	if opts.Delay > 0 {
		taskOpts = append(taskOpts, asynq.ProcessIn(opts.Delay))
	}
	if q.cfg.Retention > 0 {
		taskOpts = append(taskOpts, asynq.Retention(q.cfg.Retention))
	}

	info, err := q.client.EnqueueContext(ctx, asynq.NewTask(name, data), taskOpts...)
	if err != nil {
		return "", fmt.Errorf("enqueue %s: %w", name, err)
	}

	q.emit(EventWaiting, &Job{ID: info.ID, Name: name, Data: data, Attempt: 1, MaxAttempts: attempts}, nil)
	return info.ID, nil
}

// Start launches the workers. They run until Close.
func (q *Queue) Start() error {
	q.runMu.Lock()
	defer q.runMu.Unlock()
	switch {
	case q.running:
		return errors.New("queue already started")
	case q.closed:
		return errors.New("queue closed")
	case q.server == nil:
		return errors.New("queue has no worker server")
	}

	if err := q.server.Start(q.mux); err != nil {
		return fmt.Errorf("start queue workers: %w", err)
	}
	q.running = true
	q.log.Info("queue workers started", "concurrency", q.cfg.Concurrency)
	return nil
}

// Close stops taking new jobs, waits up to ShutdownTimeout for in-flight
// ones, then closes the client. Unfinished jobs go back to the queue.
func (q *Queue) Close() {
	q.runMu.Lock()
	defer q.runMu.Unlock()
	if q.closed {
		return
	}
	q.closed = true

	if q.running {
		q.server.Shutdown()
		q.running = false
	}
	if err := q.client.Close(); err != nil {
		q.log.Warn("failed to close queue client", "error", err)
	}
	q.log.Info("queue closed")
}
