// Package metrics registers the prometheus collectors of the scheduled jobs.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// JobMetrics records executions of scheduled jobs and sweep outcomes.
type JobMetrics struct {
	duration *prometheus.HistogramVec
	success  *prometheus.CounterVec
	failure  *prometheus.CounterVec
	skipped  *prometheus.CounterVec
	outcomes *prometheus.CounterVec
	outbox   *prometheus.CounterVec
}

// NewJobMetrics registers the job metrics on reg. A nil registerer yields a no-op recorder.
func NewJobMetrics(reg prometheus.Registerer) *JobMetrics {
	if reg == nil {
		return &JobMetrics{}
	}
	m := &JobMetrics{
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "handoff_job_duration_seconds",
			Help:    "Duration of scheduled jobs in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"job"}),
		success: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "handoff_job_success_total",
			Help: "Successful scheduled job executions.",
		}, []string{"job"}),
		failure: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "handoff_job_failure_total",
			Help: "Failed scheduled job executions.",
		}, []string{"job"}),
		skipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "handoff_job_skipped_total",
			Help: "Scheduled job runs skipped because another instance held the lock.",
		}, []string{"job"}),
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "handoff_sweep_missions_total",
			Help: "Missions visited by the delivery confirmation sweep, by outcome.",
		}, []string{"outcome"}),
		outbox: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "handoff_outbox_messages_total",
			Help: "Outbox messages handled by the relay, by kind and result.",
		}, []string{"kind", "result"}),
	}
	reg.MustRegister(m.duration, m.success, m.failure, m.skipped, m.outcomes, m.outbox)
	return m
}

func (m *JobMetrics) ObserveDuration(job string, d time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(job)).Observe(d.Seconds())
}

func (m *JobMetrics) IncSuccess(job string) {
	if m == nil || m.success == nil {
		return
	}
	m.success.WithLabelValues(normalizeLabel(job)).Inc()
}

func (m *JobMetrics) IncFailure(job string) {
	if m == nil || m.failure == nil {
		return
	}
	m.failure.WithLabelValues(normalizeLabel(job)).Inc()
}

func (m *JobMetrics) IncSkipped(job string) {
	if m == nil || m.skipped == nil {
		return
	}
	m.skipped.WithLabelValues(normalizeLabel(job)).Inc()
}

// AddSweepOutcome adds n missions to the given outcome bucket.
func (m *JobMetrics) AddSweepOutcome(outcome string, n int) {
	if m == nil || m.outcomes == nil || n <= 0 {
		return
	}
	m.outcomes.WithLabelValues(normalizeLabel(outcome)).Add(float64(n))
}

func (m *JobMetrics) IncOutbox(kind, result string) {
	if m == nil || m.outbox == nil {
		return
	}
	m.outbox.WithLabelValues(normalizeLabel(kind), normalizeLabel(result)).Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
