package simulator

import (
	"context"
	"encoding/json"
	"errors"
	"sort"

	"github.com/raywall/upstream-simulators/pkg/fixture"
	"github.com/rs/zerolog/log"
)

// Outcome identifica o estado terminal de uma requisição.
type Outcome string

const (
	Faulted      Outcome = "faulted"
	Rejected     Outcome = "rejected"
	ServerFailed Outcome = "server_failed"
	NotMatched   Outcome = "not_found"
	Served       Outcome = "served"
)

// Response contém exatamente um resultado: a fixture (Body) ou um erro (Err).
type Response struct {
	Status  int
	Body    []byte
	Err     *Error
	Outcome Outcome
}

// Payload retorna o corpo JSON a ser escrito na resposta HTTP.
func (r Response) Payload() []byte {
	if r.Err == nil {
		return r.Body
	}
	b, _ := json.Marshal(r.Err)
	return b
}

// Gate compara parâmetros contra valores fixos da rota antes da leitura da fixture.
type Gate struct {
	Expect   map[string]string
	NotFound string
}

// Endpoint é uma instância configurada do simulador. É imutável após Build e pode
// atender requisições concorrentes.
type Endpoint struct {
	Name    string
	Method  string
	Path    string
	Params  []Param
	Fault   FaultPolicy
	Random  RandomSource
	Require Requirement
	Gate    *Gate
	Fixture fixture.Ref
	Loader  fixture.Loader
	Rule    MatchingRule

	NotFound string
}

// Param é um parâmetro declarado da rota.
type Param struct {
	Name string
	In   string // query ou path
}

// Handle executa a política do simulador: falha injetada, validação, gate,
// leitura da fixture e matching, nessa ordem.
func (e *Endpoint) Handle(ctx context.Context, req Request) Response {
	logger := log.Ctx(ctx).With().Str("endpoint", e.Name).Logger()

	if fault := e.Fault.Roll(e.Random); fault != nil {
		logger.Warn().Str("kind", string(fault.Kind)).Msg("falha injetada")
		return failure(Faulted, fault)
	}

	if missing := e.Require.Missing(req); len(missing) > 0 {
		logger.Debug().Strs("missing", missing).Msg("parâmetros obrigatórios ausentes")
		return failure(Rejected, &Error{Kind: BadRequest, Description: describeMissing(e.Require.Mode, missing, e.paramIn)})
	}

	if e.Gate != nil {
		for _, name := range sortedKeys(e.Gate.Expect) {
			if value, _ := req.Value(name); value != e.Gate.Expect[name] {
				logger.Debug().Str("param", name).Str("value", value).Msg("gate da rota não corresponde")
				return failure(NotMatched, &Error{Kind: NotFound, Description: e.Gate.NotFound})
			}
		}
	}

	fx, err := e.Loader.Load(ctx, e.Fixture)
	if err != nil {
		logger.Error().Err(err).Str("source", e.Fixture.Source).Msg("falha ao carregar fixture")
		switch {
		case errors.Is(err, fixture.ErrNotFound):
			return failure(ServerFailed, newError(ServerError, "Fixture file not found: %s", e.Fixture.Source))
		case errors.Is(err, fixture.ErrDecode):
			return failure(ServerFailed, newError(ServerError, "Error decoding fixture data."))
		default:
			return failure(ServerFailed, newError(ServerError, "Error reading fixture data: %v", err))
		}
	}

	switch e.Rule.Match(req, fx) {
	case Match:
		logger.Debug().Msg("fixture servida")
		return Response{Status: 200, Body: fx.Raw, Outcome: Served}
	case MissingParameters:
		missing := e.Rule.Requirement().Missing(req)
		return failure(Rejected, &Error{Kind: BadRequest, Description: describeMissing(e.Rule.Requirement().Mode, missing, e.paramIn)})
	default:
		logger.Debug().Msg("parâmetros não correspondem à fixture")
		return failure(NotMatched, &Error{Kind: NotFound, Description: e.NotFound})
	}
}

func (e *Endpoint) paramIn(name string) string {
	for _, p := range e.Params {
		if p.Name == name {
			return p.In
		}
	}
	return "query"
}

func failure(outcome Outcome, err *Error) Response {
	return Response{Status: err.Status(), Err: err, Outcome: outcome}
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
