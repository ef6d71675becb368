package telemetry

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics is the collection of Prometheus metrics for check runs.
type Metrics struct {
	FilesScanned  prometheus.Counter
	FindingsTotal *prometheus.CounterVec
	UnitErrors    prometheus.Counter
	ScanDuration  prometheus.Histogram
}

var (
	metricsOnce sync.Once
	metrics     *Metrics
)

// GetMetrics returns the process-wide metrics, registering them on first use.
func GetMetrics() *Metrics {
	metricsOnce.Do(func() {
		metrics = newMetrics(prometheus.DefaultRegisterer)
	})
	return metrics
}

func newMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		FilesScanned: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "webcompat_files_scanned_total",
			Help: "Total number of source files scanned",
		}),
		FindingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "webcompat_findings_total",
			Help: "Total number of compatibility findings by failing runtime",
		}, []string{"runtime"}),
		UnitErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "webcompat_unit_errors_total",
			Help: "Total number of source units that failed to scan",
		}),
		ScanDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "webcompat_scan_duration_seconds",
			Help:    "Duration of check runs in seconds",
			Buckets: prometheus.DefBuckets,
		}),
	}
	reg.MustRegister(m.FilesScanned, m.FindingsTotal, m.UnitErrors, m.ScanDuration)
	return m
}

// ObserveReport records one run's outcome.
func (m *Metrics) ObserveReport(filesScanned int, findingsByRuntime map[string]int, unitErrors int, seconds float64) {
	m.FilesScanned.Add(float64(filesScanned))
	for runtime, n := range findingsByRuntime {
		m.FindingsTotal.WithLabelValues(runtime).Add(float64(n))
	}
	m.UnitErrors.Add(float64(unitErrors))
	m.ScanDuration.Observe(seconds)
}

// StartMetricsServer starts a HTTP server exposing Prometheus metrics.
func StartMetricsServer(port int) error {
	http.Handle("/metrics", promhttp.Handler())
	return http.ListenAndServe(fmt.Sprintf(":%d", port), nil)
}
