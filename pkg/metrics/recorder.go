package metrics

import (
	"errors"
	"fmt"
	"time"
)

// Recorder registra o resultado de cada requisição atendida por um simulador.
type Recorder struct {
	provider Provider
	baseTags []string
}

// NewRecorder cria um Recorder. baseTags são anexadas a todas as métricas (ex: "server:bank").
func NewRecorder(provider Provider, baseTags ...string) *Recorder {
	return &Recorder{provider: provider, baseTags: baseTags}
}

// With devolve um Recorder com tags adicionais, compartilhando o mesmo provider.
func (r *Recorder) With(tags ...string) *Recorder {
	if r == nil {
		return nil
	}
	merged := make([]string, 0, len(r.baseTags)+len(tags))
	merged = append(merged, r.baseTags...)
	merged = append(merged, tags...)
	return &Recorder{provider: r.provider, baseTags: merged}
}

// Record envia o contador de requisições e o histograma de latência.
// Um Recorder nulo não registra nada.
func (r *Recorder) Record(endpoint, outcome string, status int, latency time.Duration) error {
	if r == nil || r.provider == nil {
		return nil
	}

	tags := make([]string, 0, len(r.baseTags)+3)
	tags = append(tags, r.baseTags...)
	tags = append(tags,
		"endpoint:"+endpoint,
		"outcome:"+outcome,
		fmt.Sprintf("status:%d", status),
	)

	return errors.Join(
		r.provider.Count(MetricRequests, 1, tags),
		r.provider.Histogram(MetricLatency, float64(latency.Milliseconds()), tags),
	)
}
