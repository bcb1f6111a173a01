package simulator

import (
	"math/rand/v2"
	"sync"
)

// RandomSource fornece valores uniformes em [0,1).
type RandomSource interface {
	Float64() float64
}

type globalSource struct{}

func (globalSource) Float64() float64 { return rand.Float64() }

// GlobalSource usa o gerador do processo (seguro para uso concorrente).
var GlobalSource RandomSource = globalSource{}

type seededSource struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewSeededSource cria uma fonte determinística, útil para reproduzir uma sequência
// de falhas entre execuções.
func NewSeededSource(seed uint64) RandomSource {
	return &seededSource{r: rand.New(rand.NewPCG(seed, seed))}
}

func (s *seededSource) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.Float64()
}

// FixedSource sempre devolve o mesmo valor. FixedSource(0) força a falha sempre que
// a probabilidade for positiva; FixedSource(0.99) praticamente a desliga.
type FixedSource float64

func (f FixedSource) Float64() float64 { return float64(f) }

// FaultPolicy é a falha injetada de um endpoint.
type FaultPolicy struct {
	Probability float64
	Kind        ErrorKind
	Description string
}

// Roll executa uma tentativa de Bernoulli e devolve o erro configurado quando sorteado.
func (p FaultPolicy) Roll(src RandomSource) *Error {
	if p.Probability <= 0 {
		return nil
	}
	if src == nil {
		src = GlobalSource
	}
	if src.Float64() >= p.Probability {
		return nil
	}

	desc := p.Description
	if desc == "" {
		desc = faultDescriptions[p.Kind]
	}
	return &Error{Kind: p.Kind, Description: desc}
}
