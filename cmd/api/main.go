package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/danielgtaylor/huma/v2/humacli"

	"github.com/delordemm1/psych-api/internal/cache"
	"github.com/delordemm1/psych-api/internal/config"
	"github.com/delordemm1/psych-api/internal/database"
	"github.com/delordemm1/psych-api/internal/logging"
	"github.com/delordemm1/psych-api/internal/metrics"
	"github.com/delordemm1/psych-api/internal/modules/appointment"
	"github.com/delordemm1/psych-api/internal/modules/questionnaire"
	"github.com/delordemm1/psych-api/internal/modules/user"
	"github.com/delordemm1/psych-api/internal/notification"
	"github.com/delordemm1/psych-api/internal/notification/templates"
	"github.com/delordemm1/psych-api/internal/queue"
	"github.com/delordemm1/psych-api/internal/server"
	"github.com/delordemm1/psych-api/internal/session"
	"github.com/delordemm1/psych-api/internal/storage"
)

// Options for the CLI.
type Options struct {
	Port int `help:"Port to listen on, overrides SERVER_PORT" short:"p"`
}

const shutdownTimeout = 15 * time.Second

func main() {
	cli := humacli.New(func(hooks humacli.Hooks, options *Options) {
		cfg, err := config.Load()
		if err != nil {
			slog.Error("failed to load configuration", "error", err)
			os.Exit(1)
		}
		logger := logging.New(cfg.Log.Level, cfg.Log.Format)
		slog.SetDefault(logger)
		logger.Info("configuration loaded successfully", "env", cfg.Server.Env)

		ctx := context.Background()

		// --- Database & Cache ---
		dbPool, err := database.NewPostgresPool(ctx, cfg.Database.URL, logger)
		if err != nil {
			logger.Error("failed to connect to postgres", "error", err)
			os.Exit(1)
		}
		redisClient, err := cache.NewRedisClient(ctx, cfg.Redis.URL, logger)
		if err != nil {
			dbPool.Close()
			logger.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}

		metrics.MustRegister()

		// --- Shared infrastructure ---
		mailer := notification.NewSMTPMailer(cfg.SMTP, logger)
		notifier := notification.NewService(logger, mailer, templates.NewEngine())

		images, err := storage.New(ctx, cfg.Storage)
		if err != nil {
			logger.Warn("image storage unavailable, profile pictures disabled", "error", err)
			images = storage.Disabled{}
		}

		sessions := session.NewManager(session.Config{
			Secret:     cfg.JWTSecret,
			TTL:        cfg.Auth.SessionTTL,
			Production: cfg.IsProduction(),
			Domain:     cfg.Server.CookieDomain,
		})

		jobs, err := queue.New(cfg.Redis.URL, queue.Config{
			Name:            cfg.Queue.Name,
			Concurrency:     cfg.Queue.Concurrency,
			Backoff:         cfg.Queue.Backoff,
			Retention:       cfg.Queue.Retention,
			ShutdownTimeout: cfg.Queue.ShutdownTimeout,
		}, logger)
		if err != nil {
			logger.Error("failed to create job queue", "error", err)
			os.Exit(1)
		}
		observeQueue(jobs, cfg.Queue.Name, logger)

		// --- Module Initialization (Bottom-Up) ---

		// Questionnaire Module
		questionnaireService := questionnaire.NewService(questionnaire.NewRepository(dbPool), logger)

		// User Module
		userService := user.NewService(&user.Config{
			Repo:           user.NewRepository(dbPool),
			States:         user.NewStateStore(redisClient),
			Questionnaires: questionnaireService,
			Tx:             user.NewTransactor(dbPool, logger),
			Notifier:       notifier,
			Queue:          jobs,
			Images:         images,
			Sessions:       sessions,
			Logger:         logger,
			Config:         cfg,
		})
		jobs.Process(user.JobSendOTP, userService.HandleOTPDelivery)

		// Appointment Module
		appointmentService := appointment.NewService(userService, questionnaireService, notifier, logger)

		router := server.New(cfg, logger,
			map[string]server.HealthCheck{
				"postgres": dbPool.Ping,
				"redis":    func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
			},
			user.NewHandler(userService, sessions, logger, !cfg.IsProduction()),
			questionnaire.NewHandler(questionnaireService, logger),
			appointment.NewHandler(appointmentService, sessions, logger),
		)

		port := options.Port
		if port == 0 {
			port = cfg.Server.Port
		}
		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		}

		hooks.OnStart(func() {
			if err := jobs.Start(); err != nil {
				logger.Error("failed to start queue workers", "error", err)
				os.Exit(1)
			}
			logger.Info("starting server", "port", port)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("server failed to start", "error", err)
				os.Exit(1)
			}
		})

		hooks.OnStop(func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error("server shutdown failed", "error", err)
			}
			jobs.Close()
			if err := redisClient.Close(); err != nil {
				logger.Error("failed to close redis", "error", err)
			}
			dbPool.Close()
			logger.Info("server stopped")
		})
	})
	cli.Run()
}

// observeQueue logs failures and counts every lifecycle event.
func observeQueue(q *queue.Queue, name string, logger *slog.Logger) {
	count := func(event queue.Event, _ *queue.Job, _ error) {
		metrics.QueueJobsTotal.WithLabelValues(name, string(event)).Inc()
	}
	for _, ev := range []queue.Event{queue.EventWaiting, queue.EventActive, queue.EventCompleted, queue.EventFailed} {
		q.On(ev, count)
	}

	q.On(queue.EventCompleted, func(_ queue.Event, job *queue.Job, _ error) {
		logger.Info("job completed", "job_id", job.ID, "job", job.Name)
	})
	q.On(queue.EventFailed, func(_ queue.Event, job *queue.Job, err error) {
		logger.Error("job failed", "job_id", job.ID, "job", job.Name,
			"attempt", job.Attempt, "max_attempts", job.MaxAttempts, "final", job.LastAttempt(), "error", err)
	})
}
