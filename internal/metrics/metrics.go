// Package metrics exposes the coach's Prometheus collectors.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "interview_coach"

// Outcome labels for evaluation calls.
const (
	OutcomeSuccess     = "success"
	OutcomeUnavailable = "unavailable"
	OutcomeTransport   = "transport_error"
	OutcomeMalformed   = "malformed_response"
)

// Metrics holds the collectors on a dedicated registry. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry           *prometheus.Registry
	sessionsStarted    *prometheus.CounterVec
	answersSubmitted   prometheus.Counter
	evaluations        *prometheus.CounterVec
	evaluationDuration *prometheus.HistogramVec
	examsFinished      prometheus.Counter
	examScore          prometheus.Histogram
	cvReviews          *prometheus.CounterVec
	recordings         *prometheus.CounterVec
	activeUsers        prometheus.Gauge
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		sessionsStarted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_started_total",
			Help:      "Interview sessions started, by language.",
		}, []string{"language"}),
		answersSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "answers_submitted_total",
			Help:      "Candidate answers accepted by the orchestrator.",
		}),
		evaluations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ai",
			Name:      "requests_total",
			Help:      "Evaluation service calls, by operation and outcome.",
		}, []string{"operation", "outcome"}),
		evaluationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "ai",
			Name:      "request_duration_seconds",
			Help:      "Duration of evaluation service calls.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32},
		}, []string{"operation"}),
		examsFinished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exams_finished_total",
			Help:      "Practice exams completed.",
		}),
		examScore: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "exam_score_ratio",
			Help:      "Share of correctly answered exam questions.",
			Buckets:   []float64{0.25, 0.5, 0.75, 1},
		}),
		cvReviews: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cv_reviews_total",
			Help:      "CV reviews requested, by outcome.",
		}, []string{"outcome"}),
		recordings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recordings_total",
			Help:      "Recorder transitions, by resulting status.",
		}, []string{"status"}),
		activeUsers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_users",
			Help:      "Users with an in-memory application state.",
		}),
	}

	m.registry.MustRegister(
		m.sessionsStarted,
		m.answersSubmitted,
		m.evaluations,
		m.evaluationDuration,
		m.examsFinished,
		m.examScore,
		m.cvReviews,
		m.recordings,
		m.activeUsers,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the registry to scrape.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return prometheus.NewRegistry()
	}
	return m.registry
}

func (m *Metrics) IncrementSessionsStarted(lang string) {
	if m == nil {
		return
	}
	m.sessionsStarted.WithLabelValues(lang).Inc()
}

func (m *Metrics) IncrementAnswersSubmitted() {
	if m == nil {
		return
	}
	m.answersSubmitted.Inc()
}

// ObserveEvaluation records one evaluation service call.
func (m *Metrics) ObserveEvaluation(operation, outcome string, took time.Duration) {
	if m == nil {
		return
	}
	m.evaluations.WithLabelValues(operation, outcome).Inc()
	m.evaluationDuration.WithLabelValues(operation).Observe(took.Seconds())
}

func (m *Metrics) IncrementExamsFinished(score, total int) {
	if m == nil {
		return
	}
	m.examsFinished.Inc()
	if total > 0 {
		m.examScore.Observe(float64(score) / float64(total))
	}
}

func (m *Metrics) IncrementCVReviews(outcome string) {
	if m == nil {
		return
	}
	m.cvReviews.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncrementRecordings(status string) {
	if m == nil {
		return
	}
	m.recordings.WithLabelValues(status).Inc()
}

func (m *Metrics) SetActiveUsers(n int) {
	if m == nil {
		return
	}
	m.activeUsers.Set(float64(n))
}
