package config

// Config representa a estrutura raiz do arquivo (YAML ou JSON) dos simuladores.
type Config struct {
	Version string       `yaml:"version" json:"version" validate:"required"`
	Runtime string       `yaml:"runtime" json:"runtime" validate:"omitempty,oneof=local lambda"`
	Logging LoggingConf  `yaml:"logging" json:"logging"`
	Metrics MetricsConf  `yaml:"metrics" json:"metrics"`
	Servers []ServerConf `yaml:"servers" json:"servers" validate:"required,min=1,dive"`
}

// ServerConf agrupa endpoints servidos na mesma porta (um simulador por porta, por convenção).
type ServerConf struct {
	Name      string         `yaml:"name" json:"name" validate:"required"`
	Port      int            `yaml:"port" json:"port" validate:"gte=0,lte=65535"`
	Endpoints []EndpointConf `yaml:"endpoints" json:"endpoints" validate:"required,min=1,dive"`
}

// EndpointConf é o registro declarativo de um simulador: rota, falha injetada,
// parâmetros, fixture e regra de matching.
type EndpointConf struct {
	Name    string        `yaml:"name" json:"name" validate:"required"`
	Method  string        `yaml:"method" json:"method" validate:"omitempty,oneof=GET POST PUT PATCH DELETE"`
	Path    string        `yaml:"path" json:"path" validate:"required,startswith=/"`
	Params  []ParamConf   `yaml:"params" json:"params" validate:"dive"`
	Require *RequireConf  `yaml:"require,omitempty" json:"require,omitempty"`
	Gate    *GateConf     `yaml:"gate,omitempty" json:"gate,omitempty"`
	Fault   FaultConf     `yaml:"fault" json:"fault"`
	Fixture FixtureConf   `yaml:"fixture" json:"fixture"`
	Match   MatchConf     `yaml:"match" json:"match"`
}

// ParamConf declara um parâmetro aceito pela rota. Parâmetros não declarados são ignorados.
type ParamConf struct {
	Name string `yaml:"name" json:"name" validate:"required"`
	In   string `yaml:"in" json:"in" validate:"required,oneof=query path"`
}

// RequireConf sobrescreve a obrigatoriedade derivada da regra de matching.
//
//	all:  todos os parâmetros listados são obrigatórios
//	any:  basta um dos parâmetros estar presente
//	none: nenhum parâmetro é obrigatório
type RequireConf struct {
	Mode   string   `yaml:"mode" json:"mode" validate:"required,oneof=all any none"`
	Params []string `yaml:"params" json:"params"`
}

// GateConf compara parâmetros contra valores fixos da rota antes de ler a fixture.
type GateConf struct {
	Expect   map[string]string `yaml:"expect" json:"expect" validate:"required,min=1"`
	NotFound string            `yaml:"not_found" json:"not_found"`
}

// FaultConf é a política de falha injetada (tentativa de Bernoulli por request).
// Seed zero usa a fonte aleatória global do processo.
type FaultConf struct {
	Probability float64 `yaml:"probability" json:"probability" validate:"gte=0,lte=1"`
	Kind        string  `yaml:"kind" json:"kind" validate:"required_unless=Probability 0"`
	Description string  `yaml:"description" json:"description"`
	Seed        uint64  `yaml:"seed" json:"seed"`
}

// FixtureConf aponta para o documento canônico (ver pacote fixture para os esquemas).
type FixtureConf struct {
	Source string `yaml:"source" json:"source" validate:"required"`
	Format string `yaml:"format" json:"format" validate:"omitempty,oneof=json yaml"`
	Region string `yaml:"region" json:"region"`
	Query  string `yaml:"query" json:"query"`
}

// MatchConf seleciona a variante da regra de matching.
type MatchConf struct {
	Type     string        `yaml:"type" json:"type" validate:"required,oneof=exact exact_dual optional expression"`
	Bindings []BindingConf `yaml:"bindings" json:"bindings" validate:"dive"`
	Expr     string        `yaml:"expr" json:"expr" validate:"required_if=Type expression"`
	NotFound string        `yaml:"not_found" json:"not_found"`
}

// BindingConf liga um parâmetro da requisição a um campo da fixture.
type BindingConf struct {
	Param string `yaml:"param" json:"param" validate:"required"`
	Field string `yaml:"field" json:"field" validate:"required"`
}

type LoggingConf struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Level   string `yaml:"level" json:"level" validate:"omitempty,oneof=debug info warn error"`
	Format  string `yaml:"format" json:"format" validate:"omitempty,oneof=json console"`
}

type MetricsConf struct {
	Datadog DatadogConf `yaml:"datadog" json:"datadog"`
}

type DatadogConf struct {
	Enabled   bool     `yaml:"enabled" json:"enabled"`
	Addr      string   `yaml:"addr" json:"addr" validate:"required_if=Enabled true"`
	Namespace string   `yaml:"namespace" json:"namespace"`
	Tags      []string `yaml:"tags" json:"tags"`
}

// MethodOrDefault retorna o método HTTP da rota (GET quando omitido).
func (e EndpointConf) MethodOrDefault() string {
	if e.Method == "" {
		return "GET"
	}
	return e.Method
}

// ParamIn retorna a localização declarada de um parâmetro ("query" quando não declarado).
func (e EndpointConf) ParamIn(name string) string {
	for _, p := range e.Params {
		if p.Name == name {
			return p.In
		}
	}
	return "query"
}
