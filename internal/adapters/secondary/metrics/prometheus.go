package metrics

import (
	"github.com/admin/tg-bots/astro-api/internal/ports/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	swissephErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: metrics.SwissephErrorsTotal,
		Help: "Total native ephemeris failures by error code",
	}, []string{"code"})

	swissephCalcLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    metrics.SwissephCalcLatencyMs,
		Help:    "Latency of native planet computation in milliseconds",
		Buckets: prometheus.ExponentialBuckets(0.5, 2, 12),
	})

	swissephHousesLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    metrics.SwissephHousesLatency,
		Help:    "Latency of native house computation in milliseconds",
		Buckets: prometheus.ExponentialBuckets(0.5, 2, 12),
	})

	timePipelineTTEnabled = promauto.NewCounter(prometheus.CounterOpts{
		Name: metrics.TimePipelineTTEnabled,
		Help: "Number of preparations upgraded to the TT time scale",
	})

	ephemerisBootstrapRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: metrics.EphemerisBootstrapRuns,
		Help: "Ephemeris bootstrap attempts by status",
	}, []string{"status"})
)

// Recorder эмиссия метрик ядра в Prometheus.
// Гистограммы латентности принимают секунды и записывают миллисекунды.
type Recorder struct{}

func NewRecorder() metrics.IRecorder {
	return &Recorder{}
}

// IncrementCounter увеличивает счётчик по имени
func (r *Recorder) IncrementCounter(name string, value float64, labels map[string]string) {
	switch name {
	case metrics.SwissephErrorsTotal:
		swissephErrorsTotal.With(prometheus.Labels{"code": labels["code"]}).Add(value)
	case metrics.TimePipelineTTEnabled:
		timePipelineTTEnabled.Add(value)
	case metrics.EphemerisBootstrapRuns:
		ephemerisBootstrapRuns.With(prometheus.Labels{"status": labels["status"]}).Add(value)
	}
}

// ObserveDuration записывает длительность в гистограмму по имени
func (r *Recorder) ObserveDuration(name string, seconds float64, labels map[string]string) {
	ms := seconds * 1000
	switch name {
	case metrics.SwissephCalcLatencyMs:
		swissephCalcLatency.Observe(ms)
	case metrics.SwissephHousesLatency:
		swissephHousesLatency.Observe(ms)
	}
}
