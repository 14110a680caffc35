package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for triage views and case transitions.
type Metrics struct {
	// Full resolve + fetch + aggregate latency by entry point
	TriageLatency *prometheus.HistogramVec

	// Entries produced per classification across all views
	Classified *prometheus.CounterVec

	// Cases that failed scoring and were left out of a view
	Unscored prometheus.Counter

	// Which cascade level satisfied a request
	CascadeLevel *prometheus.CounterVec

	// Transition outcomes by target status
	Transitions *prometheus.CounterVec

	CasesReported prometheus.Counter
}

// New registers the triage metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		TriageLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "casetriage_triage_duration_seconds",
			Help:    "Duration of building a triage view including case retrieval",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"entry"}), // entry: "viewer", "scope", "score"

		Classified: f.NewCounterVec(prometheus.CounterOpts{
			Name: "casetriage_triage_classified_total",
			Help: "Total scored cases by classification",
		}, []string{"classification"}),

		Unscored: f.NewCounter(prometheus.CounterOpts{
			Name: "casetriage_triage_unscored_total",
			Help: "Total cases skipped because they could not be scored",
		}),

		CascadeLevel: f.NewCounterVec(prometheus.CounterOpts{
			Name: "casetriage_jurisdiction_cascade_level_total",
			Help: "Total triage requests by the cascade level that produced cases",
		}, []string{"level"}), // level: "exact", "region", "all", "none"

		Transitions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "casetriage_case_transitions_total",
			Help: "Total status transition attempts by target and outcome",
		}, []string{"target", "outcome"}),

		CasesReported: f.NewCounter(prometheus.CounterOpts{
			Name: "casetriage_cases_reported_total",
			Help: "Total cases reported through intake",
		}),
	}
}

// ObserveTriageLatency records how long a view took to build.
func (m *Metrics) ObserveTriageLatency(entry string, d time.Duration) {
	if m != nil {
		m.TriageLatency.WithLabelValues(entry).Observe(d.Seconds())
	}
}

// AddClassified counts n entries with the given classification.
func (m *Metrics) AddClassified(classification string, n int) {
	if m != nil && n > 0 {
		m.Classified.WithLabelValues(classification).Add(float64(n))
	}
}

func (m *Metrics) AddUnscored(n int) {
	if m != nil && n > 0 {
		m.Unscored.Add(float64(n))
	}
}

func (m *Metrics) IncrementCascadeLevel(level string) {
	if m != nil {
		if level == "" {
			level = "none"
		}
		m.CascadeLevel.WithLabelValues(level).Inc()
	}
}

func (m *Metrics) IncrementTransition(target, outcome string) {
	if m != nil {
		m.Transitions.WithLabelValues(target, outcome).Inc()
	}
}

func (m *Metrics) IncrementCasesReported() {
	if m != nil {
		m.CasesReported.Inc()
	}
}
