package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the service's collectors. Build it once with New and share it.
type Metrics struct {
	Uploads            *prometheus.CounterVec
	Submissions        *prometheus.CounterVec
	ValidationDuration *prometheus.HistogramVec
}

// New registers the collectors on reg. A nil reg registers nothing, which
// keeps tests and tools free of global state.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		Uploads: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cv_uploads_total",
				Help: "Total number of CV uploads by result",
			},
			[]string{"result"},
		),
		Submissions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cv_submissions_total",
				Help: "Total number of CV submissions by status",
			},
			[]string{"status"},
		),
		ValidationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cv_validation_duration_seconds",
				Help:    "Duration of CV validation calls in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"backend"},
		),
	}
}

func (m *Metrics) ObserveUpload(result string) {
	if m == nil {
		return
	}
	m.Uploads.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveSubmission(status string) {
	if m == nil {
		return
	}
	m.Submissions.WithLabelValues(status).Inc()
}

func (m *Metrics) ObserveValidation(backend string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.ValidationDuration.WithLabelValues(backend).Observe(elapsed.Seconds())
}
