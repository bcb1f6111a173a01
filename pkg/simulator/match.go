package simulator

import (
	"github.com/google/cel-go/cel"
	"github.com/raywall/upstream-simulators/pkg/fixture"
	"github.com/raywall/upstream-simulators/pkg/rules"
)

// Verdict é o resultado de uma regra de matching.
type Verdict int

const (
	Match Verdict = iota
	Mismatch
	MissingParameters
)

func (v Verdict) String() string {
	switch v {
	case Match:
		return "match"
	case Mismatch:
		return "mismatch"
	default:
		return "missing_parameters"
	}
}

// MatchingRule compara os parâmetros da requisição com a fixture carregada.
type MatchingRule interface {
	// Requirement são os parâmetros obrigatórios implícitos da regra.
	Requirement() Requirement
	Match(req Request, fx *fixture.Fixture) Verdict
}

// Binding liga um parâmetro da requisição a um campo da fixture.
type Binding struct {
	Param string
	Field string
}

func (b Binding) equals(value string, fx *fixture.Fixture) bool {
	fieldValue, ok := fx.Field(b.Field)
	return ok && valuesMatch(fieldValue, value)
}

// ExactSingleField exige o parâmetro e compara com o campo da fixture.
type ExactSingleField struct {
	Binding
}

func (r ExactSingleField) Requirement() Requirement {
	return Requirement{Mode: RequireAll, Params: []string{r.Param}}
}

func (r ExactSingleField) Match(req Request, fx *fixture.Fixture) Verdict {
	value, ok := req.Value(r.Param)
	if !ok {
		return MissingParameters
	}
	if r.equals(value, fx) {
		return Match
	}
	return Mismatch
}

// ExactDualField exige que os dois parâmetros coincidam com os dois campos.
// Apenas a ausência de ambos é erro de validação; um único parâmetro segue para
// o matching e resulta em Mismatch.
type ExactDualField struct {
	First  Binding
	Second Binding
}

func (r ExactDualField) Requirement() Requirement {
	return Requirement{Mode: RequireAny, Params: []string{r.First.Param, r.Second.Param}}
}

func (r ExactDualField) Match(req Request, fx *fixture.Fixture) Verdict {
	first, okFirst := req.Value(r.First.Param)
	second, okSecond := req.Value(r.Second.Param)
	switch {
	case !okFirst && !okSecond:
		return MissingParameters
	case !okFirst || !okSecond:
		return Mismatch
	case r.First.equals(first, fx) && r.Second.equals(second, fx):
		return Match
	default:
		return Mismatch
	}
}

// OptionalSingleField trata o parâmetro ausente como curinga.
type OptionalSingleField struct {
	Binding
}

func (r OptionalSingleField) Requirement() Requirement {
	return Requirement{Mode: RequireNone}
}

func (r OptionalSingleField) Match(req Request, fx *fixture.Fixture) Verdict {
	value, ok := req.Value(r.Param)
	if !ok || r.equals(value, fx) {
		return Match
	}
	return Mismatch
}

// ExpressionRule avalia uma expressão CEL com as variáveis `request` e `fixture`.
type ExpressionRule struct {
	Expr    string
	Program cel.Program
}

// NewExpressionRule compila a expressão uma única vez, na construção do endpoint.
func NewExpressionRule(rm *rules.RuleManager, expr string) (*ExpressionRule, error) {
	prg, err := rm.CompileProgram(expr)
	if err != nil {
		return nil, err
	}
	return &ExpressionRule{Expr: expr, Program: prg}, nil
}

func (r *ExpressionRule) Requirement() Requirement {
	return Requirement{Mode: RequireNone}
}

// Match trata erro de avaliação (ex: campo inexistente na fixture) como Mismatch.
func (r *ExpressionRule) Match(req Request, fx *fixture.Fixture) Verdict {
	var doc interface{}
	if fx != nil {
		doc = fx.Document
	}
	ok, err := rules.EvaluateBool(r.Program, req.Params, doc)
	if err != nil || !ok {
		return Mismatch
	}
	return Match
}

// valuesMatch compara o campo da fixture com o parâmetro textual da requisição.
// Apenas campos string participam, com igualdade exata (case-sensitive); números,
// booleanos e objetos nunca coincidem.
func valuesMatch(fieldValue interface{}, param string) bool {
	s, ok := fieldValue.(string)
	return ok && s == param
}
