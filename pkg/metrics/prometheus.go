package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain repository.Metrics using Prometheus.
type Recorder struct {
	batchFetches     *prometheus.CounterVec
	upstreamLatency  *prometheus.HistogramVec
	cacheLookups     *prometheus.CounterVec
	sweepDeletions   prometheus.Counter
	sparklineRenders *prometheus.CounterVec
	batchesInFlight  prometheus.Gauge
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		batchFetches: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockboard_batch_fetches_total",
				Help: "Bulk price batch fetches by outcome",
			},
			[]string{"outcome"},
		),
		upstreamLatency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "stockboard_upstream_duration_seconds",
				Help:    "Duration of upstream chart-source calls",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		cacheLookups: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockboard_cache_lookups_total",
				Help: "Chart cache lookups by result",
			},
			[]string{"result"},
		),
		sweepDeletions: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "stockboard_sweep_deletions_total",
				Help: "Cache entries removed by the staleness sweep",
			},
		),
		sparklineRenders: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockboard_sparkline_renders_total",
				Help: "Sparkline render attempts by outcome",
			},
			[]string{"outcome"},
		),
		batchesInFlight: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "stockboard_batches_in_flight",
				Help: "Bulk price batches currently in flight",
			},
		),
	}
}

// RecordBatchFetch records one bulk batch outcome ("ok" or "error").
func (r *Recorder) RecordBatchFetch(outcome string) {
	r.batchFetches.WithLabelValues(outcome).Inc()
}

// RecordUpstreamLatency records one upstream call duration in seconds.
func (r *Recorder) RecordUpstreamLatency(op string, seconds float64) {
	r.upstreamLatency.WithLabelValues(op).Observe(seconds)
}

// RecordCacheLookup records a chart cache hit or miss.
func (r *Recorder) RecordCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	r.cacheLookups.WithLabelValues(result).Inc()
}

// RecordSweepDeletions adds the entry count removed by one sweep run.
func (r *Recorder) RecordSweepDeletions(count int64) {
	r.sweepDeletions.Add(float64(count))
}

// RecordSparklineRender records one render attempt ("ok", "no_data", "error").
func (r *Recorder) RecordSparklineRender(outcome string) {
	r.sparklineRenders.WithLabelValues(outcome).Inc()
}

// SetBatchesInFlight sets the current in-flight batch gauge.
func (r *Recorder) SetBatchesInFlight(n int) {
	r.batchesInFlight.Set(float64(n))
}
