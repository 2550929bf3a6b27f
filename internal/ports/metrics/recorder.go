package metrics

// Имена метрик ядра
const (
	SwissephErrorsTotal    = "swisseph_errors_total"
	SwissephCalcLatencyMs  = "swisseph_calc_latency_ms"
	SwissephHousesLatency  = "swisseph_houses_latency_ms"
	TimePipelineTTEnabled  = "time_pipeline_tt_enabled"
	EphemerisBootstrapRuns = "ephemeris_bootstrap_total"
)

// IRecorder интерфейс для эмиссии метрик
type IRecorder interface {
	IncrementCounter(name string, value float64, labels map[string]string)
	ObserveDuration(name string, seconds float64, labels map[string]string)
}

// Nop заглушка, когда метрики не сконфигурированы
type Nop struct{}

func (Nop) IncrementCounter(string, float64, map[string]string) {}
func (Nop) ObserveDuration(string, float64, map[string]string) {}
