package prometheus

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/molnotation/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/molnotation/internal/testutil"
)

func newTestCollector(t *testing.T) MetricsCollector {
	t.Helper()
	c, err := NewMetricsCollector(CollectorConfig{Namespace: "test", Subsystem: "unit"}, logging.NewNopLogger())
	require.NoError(t, err)
	return c
}

func scrape(t *testing.T, c MetricsCollector) string {
	t.Helper()
	w := httptest.NewRecorder()
	promhttp.HandlerFor(c.Registry(), promhttp.HandlerOpts{}).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	return w.Body.String()
}

func TestNewMetricsCollector_RequiresNamespace(t *testing.T) {
	_, err := NewMetricsCollector(CollectorConfig{Subsystem: "unit"}, nil)
	assert.Error(t, err)
}

func TestNewMetricsCollector_ProcessMetrics(t *testing.T) {
	c, err := NewMetricsCollector(CollectorConfig{Namespace: "test", EnableProcessMetrics: true}, nil)
	require.NoError(t, err)
	assert.Contains(t, scrape(t, c), "test_process_")
}

func TestRegisterCounter(t *testing.T) {
	c := newTestCollector(t)
	c.RegisterCounter("saves_total", "help", "notation").WithLabelValues("smiles").Add(5)

	assert.Contains(t, scrape(t, c), `test_unit_saves_total{notation="smiles"} 5`)
}

func TestRegisterCounter_Idempotent(t *testing.T) {
	c := newTestCollector(t)
	c.RegisterCounter("dup_total", "help").WithLabelValues().Inc()
	c.RegisterCounter("dup_total", "help").WithLabelValues().Inc()

	assert.Contains(t, scrape(t, c), "test_unit_dup_total 2")
}

func TestRegisterGauge(t *testing.T) {
	c := newTestCollector(t)
	g := c.RegisterGauge("running", "help").WithLabelValues()
	g.Set(3)
	g.Dec()

	assert.Contains(t, scrape(t, c), "test_unit_running 2")
}

func TestRegisterHistogram_DefaultBuckets(t *testing.T) {
	c := newTestCollector(t)
	c.RegisterHistogram("latency_seconds", "help", nil).WithLabelValues().Observe(0.1)

	out := scrape(t, c)
	assert.Contains(t, out, `test_unit_latency_seconds_bucket{le="0.1"} 1`)
	assert.Contains(t, out, "test_unit_latency_seconds_count 1")
}

func TestConcurrentRegistration(t *testing.T) {
	c := newTestCollector(t)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.RegisterCounter("concurrent_total", "help", "id").WithLabelValues("1").Inc()
		}()
	}
	wg.Wait()

	assert.Contains(t, scrape(t, c), `test_unit_concurrent_total{id="1"} 50`)
}

func TestTypeConflictDegradesToNop(t *testing.T) {
	logger := testutil.NewMockLogger()
	c, err := NewMetricsCollector(CollectorConfig{Namespace: "test", Subsystem: "unit"}, logger)
	require.NoError(t, err)

	c.RegisterCounter("conflict", "help").WithLabelValues().Inc()
	assert.NotPanics(t, func() {
		c.RegisterGauge("conflict", "help").WithLabelValues().Set(10)
		c.RegisterHistogram("conflict", "help", nil).WithLabelValues().Observe(1)
	})

	assert.Contains(t, scrape(t, c), "# TYPE test_unit_conflict counter")
	assert.True(t, logger.HasMessage("warn", "metric type mismatch"))
}

func TestRegisterCounter_InvalidName(t *testing.T) {
	logger := testutil.NewMockLogger()
	c, err := NewMetricsCollector(CollectorConfig{Namespace: "test"}, logger)
	require.NoError(t, err)

	c.RegisterCounter("bad", "help", "dup", "dup").WithLabelValues("a", "b").Inc()
	assert.True(t, logger.HasMessage("error", "metric registration failed"))
}
