// Package metrics holds the Prometheus collectors of the onboarding workflow.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	SessionsStarted   prometheus.Counter
	Transitions       *prometheus.CounterVec
	AdvanceRejected   *prometheus.CounterVec
	UploadOutcomes    *prometheus.CounterVec
	CollaboratorFails *prometheus.CounterVec
	Submissions       prometheus.Counter
	AdvanceLatency    prometheus.Histogram
}

func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		SessionsStarted: factory.NewCounter(prometheus.CounterOpts{
			Name: "onboarding_sessions_started_total",
			Help: "Onboarding sessions started",
		}),
		Transitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "onboarding_step_transitions_total",
			Help: "Step transitions by destination step and direction",
		}, []string{"step", "direction"}),
		AdvanceRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "onboarding_advance_rejected_total",
			Help: "Forward transitions rejected, by step and reason code",
		}, []string{"step", "code"}),
		UploadOutcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "onboarding_document_uploads_total",
			Help: "Document upload entries by document type, status and error reason",
		}, []string{"document_type", "status", "reason"}),
		CollaboratorFails: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "onboarding_collaborator_failures_total",
			Help: "External collaborator failures by step",
		}, []string{"step"}),
		Submissions: factory.NewCounter(prometheus.CounterOpts{
			Name: "onboarding_submissions_total",
			Help: "Onboarding sessions submitted",
		}),
		AdvanceLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "onboarding_advance_duration_seconds",
			Help:    "Time spent in a forward transition including entry hooks",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
	}
}

func (m *Metrics) IncSessionsStarted() { m.SessionsStarted.Inc() }

func (m *Metrics) IncTransition(step, direction string) {
	m.Transitions.WithLabelValues(step, direction).Inc()
}

func (m *Metrics) IncAdvanceRejected(step, code string) {
	m.AdvanceRejected.WithLabelValues(step, code).Inc()
}

func (m *Metrics) IncUpload(documentType, status, reason string) {
	m.UploadOutcomes.WithLabelValues(documentType, status, reason).Inc()
}

func (m *Metrics) IncCollaboratorFailure(step string) {
	m.CollaboratorFails.WithLabelValues(step).Inc()
}

func (m *Metrics) IncSubmissions() { m.Submissions.Inc() }

func (m *Metrics) ObserveAdvance(d time.Duration) {
	m.AdvanceLatency.Observe(d.Seconds())
}
