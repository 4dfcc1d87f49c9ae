package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/delordemm1/psych-api/internal/metrics"
	"github.com/delordemm1/psych-api/internal/notification"
	"github.com/delordemm1/psych-api/internal/notification/templates"
	"github.com/delordemm1/psych-api/internal/queue"
)

// JobSendOTP is the queue job name for deferred OTP e-mails.
const JobSendOTP = "sendOTP"

var errDeliveryTimeout = errors.New("email delivery timed out")

// OTPJob is the payload of a JobSendOTP job.
type OTPJob struct {
	Email    string `json:"email"`
	OTP      string `json:"otp"`
	Username string `json:"username"`
	UserID   string `json:"userId"`
}

// Delivery reports how an OTP left the request path.
type Delivery struct {
	// EmailSent is true only when the direct send finished successfully
	// within the delivery timeout.
	EmailSent bool
	// Queued is true when a retry job was accepted by the queue.
	Queued bool
	// Err is the direct-send failure, nil when EmailSent.
	Err error
}

// deliverOTP races a direct send against the delivery timeout and falls back
// to the job queue. It never fails the caller: when the enqueue fails too the
// user is marked with the email failure.
func (s *service) deliverOTP(ctx context.Context, u *User, code string) Delivery {
	job := OTPJob{Email: u.Email, OTP: code, Username: u.Username, UserID: u.ID}

	// The send outlives the request if it loses the race.
	detached := context.WithoutCancel(ctx)
	result := make(chan error, 1)
	go func() { result <- s.sendOTPEmail(detached, job) }()

	timer := time.NewTimer(s.config.Auth.DeliveryTimeout)
	defer timer.Stop()

	var err error
	select {
	case err = <-result:
	case <-timer.C:
		err = errDeliveryTimeout
	case <-ctx.Done():
		err = ctx.Err()
	}

	if err == nil {
		metrics.OTPDeliveriesTotal.WithLabelValues("direct").Inc()
		s.logger.Info("otp email sent", "user_id", u.ID)
		return Delivery{EmailSent: true}
	}

	s.logger.Warn("direct otp email failed, queueing", "user_id", u.ID, "error", err)
	d := Delivery{Err: err}

	id, qerr := s.queue.Add(detached, JobSendOTP, job, queue.JobOptions{
		Attempts: s.config.Queue.Attempts,
		Delay:    s.config.Queue.InitialDelay,
	})
	if qerr != nil {
		metrics.OTPDeliveriesTotal.WithLabelValues("enqueue_failed").Inc()
		s.logger.Error("otp email neither sent nor queued", "user_id", u.ID, "email", u.Email, "send_error", err, "queue_error", qerr)
		reason := fmt.Sprintf("%v; enqueue: %v", err, qerr)
		if merr := s.repo.MarkEmailFailed(detached, u.ID, reason); merr != nil {
			s.logger.Error("failed to record email failure", "user_id", u.ID, "error", merr)
		}
		return d
	}

	metrics.OTPDeliveriesTotal.WithLabelValues("queued").Inc()
	s.logger.Info("otp email queued", "user_id", u.ID, "job_id", id)
	d.Queued = true
	return d
}

func (s *service) sendOTPEmail(ctx context.Context, job OTPJob) error {
	return notification.Send(ctx, s.notifier, templates.OTP, job.Email, templates.OTPData{
		Username:      job.Username,
		Code:          job.OTP,
		ExpiryMinutes: int(s.config.Auth.OTPTTL / time.Minute),
	})
}

// HandleOTPDelivery sends a queued OTP e-mail. A transport failure is
// recorded on the user and returned so the queue retries.
func (s *service) HandleOTPDelivery(ctx context.Context, j *queue.Job) error {
	var job OTPJob
	if err := j.Decode(&job); err != nil {
		return err
	}

	err := s.sendOTPEmail(ctx, job)
	if err == nil {
		s.logger.Info("queued otp email sent", "user_id", job.UserID, "job_id", j.ID, "attempt", j.Attempt)
		return nil
	}

	if job.UserID != "" {
		if merr := s.repo.MarkEmailFailed(ctx, job.UserID, err.Error()); merr != nil {
			s.logger.Error("failed to record email failure", "user_id", job.UserID, "error", merr)
		}
	}
	return fmt.Errorf("send otp email: %w", err)
}
