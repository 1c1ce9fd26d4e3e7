package prometheus

import (
	"time"
)

// NotationMetrics holds the instruments recorded by the notation service.
type NotationMetrics struct {
	SerializationsTotal   CounterVec   // notation, status
	SerializationDuration HistogramVec // notation
	OutputLength          HistogramVec // notation
	RejectionsTotal       CounterVec   // notation, code
	CacheHitsTotal        CounterVec   // cache
	CacheMissesTotal      CounterVec   // cache
	CacheErrorsTotal      CounterVec   // cache, operation
	InFlight              GaugeVec     // notation
}

var (
	DefaultSerializationBuckets = []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1}
	DefaultLengthBuckets        = []float64{16, 64, 256, 1024, 4096, 16384, 65536}
)

// Values of the status label.
const (
	StatusOK       = "ok"
	StatusRejected = "rejected"
	StatusFailed   = "failed"
)

// NewNotationMetrics registers the notation instruments on collector.
func NewNotationMetrics(collector MetricsCollector) *NotationMetrics {
	return &NotationMetrics{
		SerializationsTotal: collector.RegisterCounter("serializations_total",
			"Serialization requests by notation and outcome", "notation", "status"),
		SerializationDuration: collector.RegisterHistogram("serialization_duration_seconds",
			"Time spent producing one line notation", DefaultSerializationBuckets, "notation"),
		OutputLength: collector.RegisterHistogram("output_length_bytes",
			"Length of the produced text including the extension block", DefaultLengthBuckets, "notation"),
		RejectionsTotal: collector.RegisterCounter("rejections_total",
			"Requests rejected because the input cannot be written", "notation", "code"),
		CacheHitsTotal:   collector.RegisterCounter("cache_hits_total", "Result cache hits", "cache"),
		CacheMissesTotal: collector.RegisterCounter("cache_misses_total", "Result cache misses", "cache"),
		CacheErrorsTotal: collector.RegisterCounter("cache_errors_total",
			"Result cache backend errors", "cache", "operation"),
		InFlight: collector.RegisterGauge("in_flight", "Serializations currently running", "notation"),
	}
}

// RecordSerialization counts one finished request.  code is empty on success.
func (m *NotationMetrics) RecordSerialization(notation, status, code string, d time.Duration, length int) {
	if m == nil {
		return
	}
	m.SerializationsTotal.WithLabelValues(notation, status).Inc()
	m.SerializationDuration.WithLabelValues(notation).Observe(d.Seconds())
	if status == StatusOK {
		m.OutputLength.WithLabelValues(notation).Observe(float64(length))
	}
	if code != "" && status == StatusRejected {
		m.RejectionsTotal.WithLabelValues(notation, code).Inc()
	}
}

// RecordCacheAccess counts a hit or a miss on the named cache.
func (m *NotationMetrics) RecordCacheAccess(cache string, hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.CacheHitsTotal.WithLabelValues(cache).Inc()
	} else {
		m.CacheMissesTotal.WithLabelValues(cache).Inc()
	}
}

func (m *NotationMetrics) RecordCacheError(cache, operation string) {
	if m == nil {
		return
	}
	m.CacheErrorsTotal.WithLabelValues(cache, operation).Inc()
}

// Track increments the in-flight gauge and returns the matching decrement.
func (m *NotationMetrics) Track(notation string) func() {
	if m == nil {
		return func() {}
	}
	g := m.InFlight.WithLabelValues(notation)
	g.Inc()
	return g.Dec
}
