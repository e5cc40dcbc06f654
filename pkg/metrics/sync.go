package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SyncMetrics tracks bulk ingestion outcomes.
type SyncMetrics struct {
	duration prometheus.Histogram
	accepted prometheus.Counter
	skipped  *prometheus.CounterVec
	failures prometheus.Counter
}

// NewSyncMetrics registers the ingestion metrics on the provided registerer.
func NewSyncMetrics(reg prometheus.Registerer) *SyncMetrics {
	if reg == nil {
		return &SyncMetrics{}
	}
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "sync_batch_duration_seconds",
		Help:    "Duration of bulk sync batches in seconds.",
		Buckets: prometheus.DefBuckets,
	})
	accepted := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sync_drafts_accepted_total",
		Help: "Drying record drafts persisted through bulk sync.",
	})
	skipped := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sync_drafts_skipped_total",
		Help: "Drying record drafts skipped during bulk sync, by reason.",
	}, []string{"reason"})
	failures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sync_batch_failures_total",
		Help: "Bulk sync batches rolled back.",
	})
	reg.MustRegister(duration, accepted, skipped, failures)
	return &SyncMetrics{
		duration: duration,
		accepted: accepted,
		skipped:  skipped,
		failures: failures,
	}
}

func (s *SyncMetrics) ObserveBatch(elapsed time.Duration, accepted int) {
	if s == nil || s.accepted == nil {
		return
	}
	s.duration.Observe(elapsed.Seconds())
	s.accepted.Add(float64(accepted))
}

func (s *SyncMetrics) IncSkipped(reason string) {
	if s == nil || s.skipped == nil {
		return
	}
	s.skipped.WithLabelValues(normalizeLabel(reason)).Inc()
}

func (s *SyncMetrics) IncFailure() {
	if s == nil || s.failures == nil {
		return
	}
	s.failures.Inc()
}
