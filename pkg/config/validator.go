package config

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var faultKinds = map[string]bool{
	"bad_request":         true,
	"not_found":           true,
	"unauthorized":        true,
	"rate_limited":        true,
	"service_unavailable": true,
	"server_error":        true,
}

var pathVarRegex = regexp.MustCompile(`\{([a-zA-Z0-9_]+)\}`)

type ConfigValidator struct {
	validate *validator.Validate
}

// NewValidator cria uma nova instância do validador
func NewValidator() *ConfigValidator {
	return &ConfigValidator{
		validate: validator.New(),
	}
}

// Validate realiza validações estruturais (tags) e semânticas (lógica)
func (cv *ConfigValidator) Validate(cfg *Config) error {
	if err := cv.validate.Struct(cfg); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			var errMsgs []string
			for _, e := range validationErrors {
				errMsgs = append(errMsgs, fmt.Sprintf("Campo '%s' falhou na regra '%s'", e.Namespace(), e.Tag()))
			}
			return fmt.Errorf("erros de validação estrutural:\n- %s", strings.Join(errMsgs, "\n- "))
		}
		return fmt.Errorf("erro de validação estrutural: %w", err)
	}

	if err := cv.validateSemantics(cfg); err != nil {
		return fmt.Errorf("erro de validação semântica: %w", err)
	}

	return nil
}

func (cv *ConfigValidator) validateSemantics(cfg *Config) error {
	ports := make(map[int]string)
	// Em lambda todos os endpoints dividem o mesmo router
	shared := make(map[string]string)
	for _, srv := range cfg.Servers {
		if cfg.Runtime != "lambda" {
			if srv.Port == 0 {
				return fmt.Errorf("servidor '%s' sem porta definida", srv.Name)
			}
			if other, dup := ports[srv.Port]; dup {
				return fmt.Errorf("porta %d usada por '%s' e '%s'", srv.Port, other, srv.Name)
			}
			ports[srv.Port] = srv.Name
		}

		routes := make(map[string]bool)
		for _, ep := range srv.Endpoints {
			route := ep.MethodOrDefault() + " " + ep.Path
			if routes[route] {
				return fmt.Errorf("rota duplicada em '%s': %s", srv.Name, route)
			}
			routes[route] = true

			if cfg.Runtime == "lambda" {
				if other, dup := shared[route]; dup {
					return fmt.Errorf("rota %s declarada por '%s' e '%s' no mesmo handler lambda", route, other, srv.Name)
				}
				shared[route] = srv.Name
			}

			if err := validateEndpoint(ep); err != nil {
				return fmt.Errorf("endpoint '%s': %w", ep.Name, err)
			}
		}
	}
	return nil
}

func validateEndpoint(ep EndpointConf) error {
	if ep.Fault.Kind != "" && !faultKinds[ep.Fault.Kind] {
		return fmt.Errorf("tipo de falha desconhecido: '%s'", ep.Fault.Kind)
	}

	declared := make(map[string]string)
	for _, p := range ep.Params {
		if _, dup := declared[p.Name]; dup {
			return fmt.Errorf("parâmetro duplicado: '%s'", p.Name)
		}
		declared[p.Name] = p.In
	}

	// Variáveis do path precisam estar declaradas como "path" e vice-versa
	inPath := make(map[string]bool)
	for _, m := range pathVarRegex.FindAllStringSubmatch(ep.Path, -1) {
		inPath[m[1]] = true
		if declared[m[1]] != "path" {
			return fmt.Errorf("variável '{%s}' da rota não declarada como parâmetro path", m[1])
		}
	}
	for name, in := range declared {
		if in == "path" && !inPath[name] {
			return fmt.Errorf("parâmetro path '%s' ausente na rota %s", name, ep.Path)
		}
	}

	arity := map[string]int{"exact": 1, "exact_dual": 2, "optional": 1, "expression": -1}
	if want := arity[ep.Match.Type]; want >= 0 && len(ep.Match.Bindings) != want {
		return fmt.Errorf("match '%s' exige %d binding(s), recebeu %d", ep.Match.Type, want, len(ep.Match.Bindings))
	}
	for _, b := range ep.Match.Bindings {
		if _, ok := declared[b.Param]; !ok {
			return fmt.Errorf("binding referencia parâmetro não declarado: '%s'", b.Param)
		}
	}

	if ep.Require != nil {
		for _, name := range ep.Require.Params {
			if _, ok := declared[name]; !ok {
				return fmt.Errorf("require referencia parâmetro não declarado: '%s'", name)
			}
		}
		if ep.Require.Mode != "none" && len(ep.Require.Params) == 0 {
			return fmt.Errorf("require '%s' sem parâmetros", ep.Require.Mode)
		}
	}

	if ep.Gate != nil {
		for name := range ep.Gate.Expect {
			if _, ok := declared[name]; !ok {
				return fmt.Errorf("gate referencia parâmetro não declarado: '%s'", name)
			}
		}
	}
	return nil
}
