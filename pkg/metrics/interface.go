package metrics

// Provider define o contrato para envio de métricas.
// Isso permite trocar Datadog por outro backend (ou Noop) sem alterar o transporte.
type Provider interface {
	Count(name string, value float64, tags []string) error
	Gauge(name string, value float64, tags []string) error
	Histogram(name string, value float64, tags []string) error
}

const (
	// MetricRequests conta requisições por endpoint, outcome e status.
	MetricRequests = "simulator.requests"
	// MetricLatency registra a latência (ms) de cada requisição.
	MetricLatency = "simulator.latency_ms"
)
