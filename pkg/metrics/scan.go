package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ScanMetrics records gate scan decisions and latency.
type ScanMetrics struct {
	duration *prometheus.HistogramVec
	decision *prometheus.CounterVec
	visits   *prometheus.CounterVec
}

// NewScanMetrics registers the scan metrics on the provided registerer.
func NewScanMetrics(reg prometheus.Registerer) *ScanMetrics {
	if reg == nil {
		return &ScanMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "scan_duration_seconds",
		Help:    "Duration of card scan decisions in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	decision := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "scan_decisions_total",
		Help: "Card scan decisions partitioned by outcome and reason.",
	}, []string{"outcome", "reason"})
	visits := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "visits_recorded_total",
		Help: "Visit rows written per admission outcome.",
	}, []string{"outcome"})
	reg.MustRegister(duration, decision, visits)
	return &ScanMetrics{
		duration: duration,
		decision: decision,
		visits:   visits,
	}
}

// ObserveDuration records how long a scan decision took.
func (s *ScanMetrics) ObserveDuration(outcome string, duration time.Duration) {
	if s == nil || s.duration == nil {
		return
	}
	s.duration.WithLabelValues(normalizeLabel(outcome)).Observe(duration.Seconds())
}

// IncDecision increments the decision counter for the outcome/reason pair.
func (s *ScanMetrics) IncDecision(outcome, reason string) {
	if s == nil || s.decision == nil {
		return
	}
	s.decision.WithLabelValues(normalizeLabel(outcome), normalizeLabel(reason)).Inc()
}

// IncVisit increments the visit-written counter for the outcome.
func (s *ScanMetrics) IncVisit(outcome string) {
	if s == nil || s.visits == nil {
		return
	}
	s.visits.WithLabelValues(normalizeLabel(outcome)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
