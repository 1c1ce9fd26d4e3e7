// Package prometheus exposes molnotation metrics through a private
// client_golang registry.  Callers see small Counter/Gauge/Histogram
// interfaces so that a failed registration degrades to no-op instruments.
package prometheus

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/turtacn/molnotation/internal/infrastructure/monitoring/logging"
)

// MetricsCollector registers instruments on a private registry.
type MetricsCollector interface {
	RegisterCounter(name, help string, labels ...string) CounterVec
	RegisterGauge(name, help string, labels ...string) GaugeVec
	RegisterHistogram(name, help string, buckets []float64, labels ...string) HistogramVec
	Registry() *prometheus.Registry
}

type CounterVec interface {
	WithLabelValues(lvs ...string) Counter
}

type Counter interface {
	Inc()
	Add(delta float64)
}

type GaugeVec interface {
	WithLabelValues(lvs ...string) Gauge
}

type Gauge interface {
	Set(value float64)
	Inc()
	Dec()
}

type HistogramVec interface {
	WithLabelValues(lvs ...string) Histogram
}

type Histogram interface {
	Observe(value float64)
}

// CollectorConfig is the "metrics" section of the configuration.
type CollectorConfig struct {
	Enabled              bool              `mapstructure:"enabled"`
	Namespace            string            `mapstructure:"namespace"`
	Subsystem            string            `mapstructure:"subsystem"`
	EnableProcessMetrics bool              `mapstructure:"process_metrics"`
	EnableGoMetrics      bool              `mapstructure:"go_metrics"`
	ConstLabels          map[string]string `mapstructure:"const_labels"`

	// DefaultHistogramBuckets is used when RegisterHistogram gets nil buckets.
	DefaultHistogramBuckets []float64 `mapstructure:"default_buckets"`
}

type collector struct {
	registry *prometheus.Registry
	cfg      CollectorConfig
	logger   logging.Logger

	mu         sync.Mutex
	registered map[string]prometheus.Collector
}

// NewMetricsCollector builds a collector with its own registry.  Namespace is
// required.
func NewMetricsCollector(cfg CollectorConfig, logger logging.Logger) (MetricsCollector, error) {
	if cfg.Namespace == "" {
		return nil, fmt.Errorf("prometheus: namespace is required")
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if cfg.DefaultHistogramBuckets == nil {
		cfg.DefaultHistogramBuckets = prometheus.DefBuckets
	}

	reg := prometheus.NewRegistry()
	if cfg.EnableProcessMetrics {
		reg.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{Namespace: cfg.Namespace}))
	}
	if cfg.EnableGoMetrics {
		reg.MustRegister(prometheus.NewGoCollector())
	}

	return &collector{
		registry:   reg,
		cfg:        cfg,
		logger:     logger.Named("metrics"),
		registered: make(map[string]prometheus.Collector),
	}, nil
}

func (c *collector) Registry() *prometheus.Registry { return c.registry }

// register returns the collector already registered under name, if any, so
// that repeated registration is idempotent.
func (c *collector) register(name string, fresh prometheus.Collector) (prometheus.Collector, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	fq := prometheus.BuildFQName(c.cfg.Namespace, c.cfg.Subsystem, name)
	if existing, ok := c.registered[fq]; ok {
		return existing, nil
	}
	if err := c.registry.Register(fresh); err != nil {
		return nil, err
	}
	c.registered[fq] = fresh
	return fresh, nil
}

func (c *collector) failed(kind, name string, err error) {
	if err != nil {
		c.logger.Error("metric registration failed", logging.String("kind", kind), logging.String("name", name), logging.Err(err))
		return
	}
	c.logger.Warn("metric type mismatch", logging.String("kind", kind), logging.String("name", name))
}

func (c *collector) RegisterCounter(name, help string, labels ...string) CounterVec {
	vec := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace:   c.cfg.Namespace,
		Subsystem:   c.cfg.Subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: c.cfg.ConstLabels,
	}, labels)

	got, err := c.register(name, vec)
	if v, ok := got.(*prometheus.CounterVec); err == nil && ok {
		return counterVec{v}
	}
	c.failed("counter", name, err)
	return nopCounterVec{}
}

func (c *collector) RegisterGauge(name, help string, labels ...string) GaugeVec {
	vec := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   c.cfg.Namespace,
		Subsystem:   c.cfg.Subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: c.cfg.ConstLabels,
	}, labels)

	got, err := c.register(name, vec)
	if v, ok := got.(*prometheus.GaugeVec); err == nil && ok {
		return gaugeVec{v}
	}
	c.failed("gauge", name, err)
	return nopGaugeVec{}
}

func (c *collector) RegisterHistogram(name, help string, buckets []float64, labels ...string) HistogramVec {
	if buckets == nil {
		buckets = c.cfg.DefaultHistogramBuckets
	}
	vec := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   c.cfg.Namespace,
		Subsystem:   c.cfg.Subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: c.cfg.ConstLabels,
		Buckets:     buckets,
	}, labels)

	got, err := c.register(name, vec)
	if v, ok := got.(*prometheus.HistogramVec); err == nil && ok {
		return histogramVec{v}
	}
	c.failed("histogram", name, err)
	return nopHistogramVec{}
}

type counterVec struct{ vec *prometheus.CounterVec }

func (v counterVec) WithLabelValues(lvs ...string) Counter { return v.vec.WithLabelValues(lvs...) }

type gaugeVec struct{ vec *prometheus.GaugeVec }

func (v gaugeVec) WithLabelValues(lvs ...string) Gauge { return v.vec.WithLabelValues(lvs...) }

type histogramVec struct{ vec *prometheus.HistogramVec }

func (v histogramVec) WithLabelValues(lvs ...string) Histogram { return v.vec.WithLabelValues(lvs...) }

// Stand-ins returned after a failed registration.
type (
	nopCounterVec   struct{}
	nopGaugeVec     struct{}
	nopHistogramVec struct{}
	nopInstrument   struct{}
)

func (nopCounterVec) WithLabelValues(...string) Counter     { return nopInstrument{} }
func (nopGaugeVec) WithLabelValues(...string) Gauge         { return nopInstrument{} }
func (nopHistogramVec) WithLabelValues(...string) Histogram { return nopInstrument{} }

func (nopInstrument) Inc()            {}
func (nopInstrument) Dec()            {}
func (nopInstrument) Add(float64)     {}
func (nopInstrument) Set(float64)     {}
func (nopInstrument) Observe(float64) {}
