package user

import (
	"context"
	"log/slog"
	"time"

	"github.com/delordemm1/psych-api/internal/config"
	"github.com/delordemm1/psych-api/internal/modules/questionnaire"
	"github.com/delordemm1/psych-api/internal/notification"
	"github.com/delordemm1/psych-api/internal/queue"
	"github.com/delordemm1/psych-api/internal/session"
	"github.com/delordemm1/psych-api/internal/storage"
)

// Service defines the interface for the user module's business logic.
type Service interface {
	// Auth
	Register(ctx context.Context, input RegisterInput) (*RegisterResult, error)
	VerifyOTP(ctx context.Context, userID, otp string) (session.Token, error)
	ResendOTP(ctx context.Context, userID string) (*Delivery, error)
	Login(ctx context.Context, email, password string) (*User, session.Token, error)

	// Profile
	GetProfile(ctx context.Context, userID string) (*User, error)
	GetDetails(ctx context.Context, userID string) (*User, *questionnaire.Questionnaire, error)
	UpdateProfile(ctx context.Context, userID string, input UpdateProfileInput) (*User, *questionnaire.Questionnaire, error)
	DeleteAccount(ctx context.Context, callerID, targetID string) error

	// OAuth
	InitiateOAuthLogin(ctx context.Context, provider AuthProvider) (redirectURL string, err error)
	HandleOAuthCallback(ctx context.Context, provider AuthProvider, state, code string) (*User, session.Token, error)

	// HandleOTPDelivery is the queue handler for JobSendOTP.
	HandleOTPDelivery(ctx context.Context, job *queue.Job) error
}

// Enqueuer is the part of the job queue the service needs.
type Enqueuer interface {
	Add(ctx context.Context, name string, payload any, opts queue.JobOptions) (string, error)
}

// SessionIssuer mints session tokens.
type SessionIssuer interface {
	Issue(userID string) (session.Token, error)
}

// service implements the Service interface.
type service struct {
	repo           Repository
	states         StateStore
	questionnaires questionnaire.Service
	tx             Transactor
	notifier       *notification.Service
	queue          Enqueuer
	images         storage.ImageStore
	sessions       SessionIssuer
	google         OAuthProvider
	logger         *slog.Logger
	config         *config.Config
	now            func() time.Time
}

// Config holds the dependencies for the user service.
type Config struct {
	Repo           Repository
	States         StateStore
	Questionnaires questionnaire.Service
	Tx             Transactor
	Notifier       *notification.Service
	Queue          Enqueuer
	Images         storage.ImageStore
	Sessions       SessionIssuer
	// Google overrides the provider built from Config.Google.
	Google OAuthProvider
	Logger *slog.Logger
	Config *config.Config
	Now    func() time.Time
}

// NewService creates a new user service with the given dependencies.
func NewService(cfg *Config) Service {
	s := &service{
		repo:           cfg.Repo,
		states:         cfg.States,
		questionnaires: cfg.Questionnaires,
		tx:             cfg.Tx,
		notifier:       cfg.Notifier,
		queue:          cfg.Queue,
		images:         cfg.Images,
		sessions:       cfg.Sessions,
		google:         cfg.Google,
		logger:         cfg.Logger,
		config:         cfg.Config,
		now:            cfg.Now,
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.images == nil {
		s.images = storage.Disabled{}
	}
	if s.google == nil {
		s.google = newGoogleProvider(cfg.Config.Google)
	}
	return s
}
