package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	AuthRegistrationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_registrations_total",
			Help: "Total number of registration attempts.",
		},
		[]string{"result"},
	)

	AuthLoginsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_logins_total",
			Help: "Total number of login attempts.",
		},
		[]string{"result"},
	)

	// OTPDeliveriesTotal counts how each OTP left the request path:
	// direct (sent inline), queued (handed to the retry queue) or
	// enqueue_failed (neither worked).
	OTPDeliveriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_otp_deliveries_total",
			Help: "Total number of OTP deliveries by path.",
		},
		[]string{"path"},
	)

	QueueJobsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "queue_jobs_total",
			Help: "Total number of job lifecycle events.",
		},
		[]string{"queue", "event"},
	)

	AppointmentEmailsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "appointment_emails_total",
			Help: "Total number of appointment e-mails by recipient and result.",
		},
		[]string{"recipient", "result"},
	)
)

// Result label values.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// MustRegister registers every collector with the default registry. Call once.
func MustRegister() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDurationSeconds,
		AuthRegistrationsTotal,
		AuthLoginsTotal,
		OTPDeliveriesTotal,
		QueueJobsTotal,
		AppointmentEmailsTotal,
	)
}
