package rules

import (
	"encoding/json"
	"fmt"

	"github.com/google/cel-go/cel"
)

// RuleManager gerencia a compilação e avaliação de expressões CEL usadas como
// regra de matching customizada.
type RuleManager struct {
	env *cel.Env
}

// NewRuleManager inicializa o ambiente CEL com as variáveis expostas às regras:
//
//	request: parâmetros presentes na requisição (map de string)
//	fixture: documento carregado
func NewRuleManager() (*RuleManager, error) {
	env, err := cel.NewEnv(
		cel.Variable("request", cel.MapType(cel.StringType, cel.DynType)),
		cel.Variable("fixture", cel.DynType),
	)
	if err != nil {
		return nil, fmt.Errorf("erro fatal CEL init: %w", err)
	}

	return &RuleManager{env: env}, nil
}

// CompileProgram compila a expressão e garante que o resultado é booleano.
func (rm *RuleManager) CompileProgram(expr string) (cel.Program, error) {
	ast, issues := rm.env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("erro de compilação CEL '%s': %w", expr, issues.Err())
	}
	if out := ast.OutputType(); !out.IsExactType(cel.BoolType) && !out.IsExactType(cel.DynType) {
		return nil, fmt.Errorf("expressão '%s' deve retornar bool, retorna %s", expr, out)
	}
	prg, err := rm.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("erro ao gerar programa CEL: %w", err)
	}
	return prg, nil
}

// EvaluateBool executa um programa já compilado.
func EvaluateBool(prg cel.Program, request map[string]string, document interface{}) (bool, error) {
	req := make(map[string]interface{}, len(request))
	for k, v := range request {
		req[k] = v
	}

	out, _, err := prg.Eval(map[string]interface{}{
		"request": req,
		"fixture": Plain(document),
	})
	if err != nil {
		return false, fmt.Errorf("erro execução CEL: %w", err)
	}

	if val, ok := out.Value().(bool); ok {
		return val, nil
	}
	return false, fmt.Errorf("resultado não é booleano")
}

// Plain converte json.Number (decoder com UseNumber) em tipos nativos que o CEL entende.
func Plain(v interface{}) interface{} {
	switch x := v.(type) {
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return i
		}
		f, _ := x.Float64()
		return f
	case map[string]interface{}:
		m := make(map[string]interface{}, len(x))
		for k, val := range x {
			m[k] = Plain(val)
		}
		return m
	case []interface{}:
		l := make([]interface{}, len(x))
		for i, val := range x {
			l[i] = Plain(val)
		}
		return l
	default:
		return v
	}
}
