package simulator

import (
	"fmt"
	"strings"

	"github.com/raywall/upstream-simulators/pkg/config"
	"github.com/raywall/upstream-simulators/pkg/fixture"
	"github.com/raywall/upstream-simulators/pkg/rules"
)

// Build converte o registro de configuração em um Endpoint pronto para uso.
// rm só é exigido para regras do tipo expression.
func Build(cfg config.EndpointConf, loader fixture.Loader, rm *rules.RuleManager) (*Endpoint, error) {
	if loader == nil {
		return nil, fmt.Errorf("endpoint '%s': loader de fixture obrigatório", cfg.Name)
	}

	rule, err := buildRule(cfg.Match, rm)
	if err != nil {
		return nil, fmt.Errorf("endpoint '%s': %w", cfg.Name, err)
	}

	ep := &Endpoint{
		Name:    cfg.Name,
		Method:  cfg.MethodOrDefault(),
		Path:    cfg.Path,
		Require: rule.Requirement(),
		Fixture: fixture.Ref{
			Source: cfg.Fixture.Source,
			Format: cfg.Fixture.Format,
			Region: cfg.Fixture.Region,
			Query:  cfg.Fixture.Query,
		},
		Loader:   loader,
		Rule:     rule,
		NotFound: cfg.Match.NotFound,
		Random:   GlobalSource,
	}

	for _, p := range cfg.Params {
		ep.Params = append(ep.Params, Param{Name: p.Name, In: p.In})
	}

	if cfg.Require != nil {
		ep.Require = Requirement{Mode: RequireMode(cfg.Require.Mode), Params: cfg.Require.Params}
	}

	if cfg.Gate != nil {
		ep.Gate = &Gate{Expect: cfg.Gate.Expect, NotFound: cfg.Gate.NotFound}
		if ep.Gate.NotFound == "" {
			ep.Gate.NotFound = "Resource not found."
		}
	}

	if cfg.Fault.Probability > 0 {
		kind, err := ParseErrorKind(cfg.Fault.Kind)
		if err != nil {
			return nil, fmt.Errorf("endpoint '%s': %w", cfg.Name, err)
		}
		ep.Fault = FaultPolicy{Probability: cfg.Fault.Probability, Kind: kind, Description: cfg.Fault.Description}
		if cfg.Fault.Seed != 0 {
			ep.Random = NewSeededSource(cfg.Fault.Seed)
		}
	}

	if ep.NotFound == "" {
		ep.NotFound = defaultNotFound(cfg.Match)
	}
	return ep, nil
}

func buildRule(m config.MatchConf, rm *rules.RuleManager) (MatchingRule, error) {
	binding := func(i int) (Binding, error) {
		if len(m.Bindings) <= i {
			return Binding{}, fmt.Errorf("match '%s' sem binding %d", m.Type, i+1)
		}
		return Binding{Param: m.Bindings[i].Param, Field: m.Bindings[i].Field}, nil
	}

	switch m.Type {
	case "exact":
		b, err := binding(0)
		if err != nil {
			return nil, err
		}
		return ExactSingleField{Binding: b}, nil
	case "exact_dual":
		first, err := binding(0)
		if err != nil {
			return nil, err
		}
		second, err := binding(1)
		if err != nil {
			return nil, err
		}
		return ExactDualField{First: first, Second: second}, nil
	case "optional":
		b, err := binding(0)
		if err != nil {
			return nil, err
		}
		return OptionalSingleField{Binding: b}, nil
	case "expression":
		if rm == nil {
			return nil, fmt.Errorf("match expression exige RuleManager")
		}
		return NewExpressionRule(rm, m.Expr)
	default:
		return nil, fmt.Errorf("tipo de match desconhecido: '%s'", m.Type)
	}
}

// defaultNotFound gera "Data not found for the specified companyId and taxType."
func defaultNotFound(m config.MatchConf) string {
	if len(m.Bindings) == 0 {
		return "Data not found."
	}
	params := make([]string, 0, len(m.Bindings))
	for _, b := range m.Bindings {
		params = append(params, b.Param)
	}
	return "Data not found for the specified " + strings.Join(params, " and ") + "."
}
