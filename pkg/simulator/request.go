package simulator

import (
	"sort"
	"strings"
)

// Request reúne os parâmetros declarados da rota que estavam presentes na requisição.
// Presença difere de valor vazio: "?companyId=" está presente com valor "".
type Request struct {
	Params map[string]string
}

// NewRequest cria um Request a partir dos parâmetros extraídos pelo transporte.
func NewRequest(params map[string]string) Request {
	if params == nil {
		params = map[string]string{}
	}
	return Request{Params: params}
}

// Value retorna o valor e se o parâmetro estava presente.
func (r Request) Value(name string) (string, bool) {
	v, ok := r.Params[name]
	return v, ok
}

// RequireMode define como os parâmetros obrigatórios são avaliados.
type RequireMode string

const (
	RequireAll  RequireMode = "all"
	RequireAny  RequireMode = "any"
	RequireNone RequireMode = "none"
)

// Requirement é o conjunto de parâmetros obrigatórios de um endpoint.
type Requirement struct {
	Mode   RequireMode
	Params []string
}

// Missing devolve os parâmetros que violam o requisito (vazio quando a requisição é válida).
func (q Requirement) Missing(req Request) []string {
	var missing []string
	switch q.Mode {
	case RequireAll:
		for _, name := range q.Params {
			if _, ok := req.Value(name); !ok {
				missing = append(missing, name)
			}
		}
	case RequireAny:
		for _, name := range q.Params {
			if _, ok := req.Value(name); ok {
				return nil
			}
		}
		missing = append(missing, q.Params...)
	}
	return missing
}

// describeMissing monta a mensagem de 400 no estilo "Missing companyId query parameter.".
func describeMissing(mode RequireMode, missing []string, location func(string) string) string {
	if len(missing) == 1 {
		return "Missing " + missing[0] + " " + location(missing[0]) + " parameter."
	}

	sep := " and "
	if mode == RequireAny {
		sep = " or "
	}
	locs := make(map[string]bool)
	for _, name := range missing {
		locs[location(name)] = true
	}
	kinds := make([]string, 0, len(locs))
	for l := range locs {
		kinds = append(kinds, l)
	}
	sort.Strings(kinds)

	return "Missing " + strings.Join(missing, sep) + " " + strings.Join(kinds, "/") + " parameters."
}
