package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Submission outcomes
const (
	OutcomeSuccess    = "success"
	OutcomeReplayed   = "replayed"
	OutcomeInvalid    = "invalid"
	OutcomeInProgress = "in_progress"
)

// Metrics provides observability for registration forms and submissions.
// Each instance owns its registry so tests can create as many as they like.
type Metrics struct {
	registry *prometheus.Registry

	FormsOpened        prometheus.Counter
	FormsExpired       prometheus.Counter
	OpenForms          prometheus.Gauge
	FieldErrors        *prometheus.CounterVec
	Submissions        *prometheus.CounterVec
	SubmissionsPending prometheus.Gauge
	SubmitDuration     prometheus.Histogram
	HTTPRequests       *prometheus.CounterVec
}

// New creates a new Metrics instance with all registration metrics registered.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		FormsOpened: factory.NewCounter(prometheus.CounterOpts{
			Name: "hackfest_forms_opened_total",
			Help: "Total number of registration forms opened",
		}),
		FormsExpired: factory.NewCounter(prometheus.CounterOpts{
			Name: "hackfest_forms_expired_total",
			Help: "Total number of idle registration forms dropped after their TTL",
		}),
		OpenForms: factory.NewGauge(prometheus.GaugeOpts{
			Name: "hackfest_forms_open",
			Help: "Number of registration forms currently held in memory",
		}),
		FieldErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "hackfest_field_validation_failures_total",
			Help: "Inline field validation failures by field and reason",
		}, []string{"field", "reason"}),
		Submissions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "hackfest_submissions_total",
			Help: "Registration submissions by outcome",
		}, []string{"outcome"}),
		SubmissionsPending: factory.NewGauge(prometheus.GaugeOpts{
			Name: "hackfest_submissions_in_flight",
			Help: "Number of registration submissions currently in flight",
		}),
		SubmitDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "hackfest_submit_duration_seconds",
			Help:    "Duration of registration submit calls",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "hackfest_http_requests_total",
			Help: "HTTP requests by route and status code",
		}, []string{"method", "route", "status"}),
	}
}

// Registry exposes the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// IncrementFormsOpened records a newly opened form.
func (m *Metrics) IncrementFormsOpened() {
	m.FormsOpened.Inc()
}

// SetOpenForms records how many forms are currently held.
func (m *Metrics) SetOpenForms(n int) {
	m.OpenForms.Set(float64(n))
}

// AddFormsExpired records forms dropped after their TTL.
func (m *Metrics) AddFormsExpired(n int) {
	if n > 0 {
		m.FormsExpired.Add(float64(n))
	}
}

// IncrementFieldError records an inline validation failure.
func (m *Metrics) IncrementFieldError(field, reason string) {
	m.FieldErrors.WithLabelValues(field, reason).Inc()
}

// SubmissionStarted marks a submission as in flight and returns the start time.
func (m *Metrics) SubmissionStarted() time.Time {
	m.SubmissionsPending.Inc()
	return time.Now()
}

// SubmissionFinished records the outcome of a submission started with SubmissionStarted.
func (m *Metrics) SubmissionFinished(start time.Time, outcome string) {
	m.SubmissionsPending.Dec()
	m.SubmitDuration.Observe(time.Since(start).Seconds())
	m.Submissions.WithLabelValues(outcome).Inc()
}

// IncrementSubmission records an outcome that never reached the store.
func (m *Metrics) IncrementSubmission(outcome string) {
	m.Submissions.WithLabelValues(outcome).Inc()
}

// IncrementHTTPRequest records a served request.
func (m *Metrics) IncrementHTTPRequest(method, route, status string) {
	m.HTTPRequests.WithLabelValues(method, route, status).Inc()
}
