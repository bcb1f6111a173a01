package fixture

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	// ErrNotFound indica que a fonte não possui o documento (arquivo ausente, chave inexistente...).
	ErrNotFound = errors.New("fixture not found")
	// ErrDecode indica que o conteúdo existe mas não é um documento estruturado válido.
	ErrDecode = errors.New("error decoding fixture data")
	// ErrUnsupportedSource é retornado para esquemas de URI desconhecidos.
	ErrUnsupportedSource = errors.New("unsupported fixture source")
)

// Ref descreve onde e como ler uma fixture.
type Ref struct {
	Source string
	Format string // json (default) ou yaml
	Region string
	Query  string // usado apenas por fontes SQL
}

// Fixture é o documento carregado. Raw é o corpo JSON devolvido sem alterações ao cliente.
type Fixture struct {
	Source   string
	Raw      []byte
	Document interface{}
}

// Field retorna um campo de primeiro nível quando o documento é um objeto JSON.
func (f *Fixture) Field(name string) (interface{}, bool) {
	if f == nil {
		return nil, false
	}
	m, ok := f.Document.(map[string]interface{})
	if !ok {
		return nil, false
	}
	v, ok := m[name]
	return v, ok
}

// Decode interpreta o conteúdo bruto lido de uma fonte.
func Decode(ref Ref, raw []byte) (*Fixture, error) {
	switch formatOf(ref) {
	case "yaml":
		var doc interface{}
		if err := yaml.Unmarshal(raw, &doc); err != nil || doc == nil {
			return nil, fmt.Errorf("%w: %s", ErrDecode, ref.Source)
		}
		doc = sanitize(doc)
		body, err := json.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDecode, err)
		}
		return &Fixture{Source: ref.Source, Raw: body, Document: doc}, nil
	default:
		if !json.Valid(raw) {
			return nil, fmt.Errorf("%w: %s", ErrDecode, ref.Source)
		}
		var doc interface{}
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDecode, err)
		}
		return &Fixture{Source: ref.Source, Raw: raw, Document: doc}, nil
	}
}

func formatOf(ref Ref) string {
	if ref.Format != "" {
		return strings.ToLower(ref.Format)
	}
	// Ignora query string de URIs (ex: dynamodb://t/k?col=data)
	source := ref.Source
	if i := strings.IndexByte(source, '?'); i >= 0 {
		source = source[:i]
	}
	switch strings.ToLower(filepath.Ext(source)) {
	case ".yaml", ".yml":
		return "yaml"
	default:
		return "json"
	}
}

// sanitize converte mapas com chaves não-string (possíveis no YAML) para map[string]interface{}.
func sanitize(input interface{}) interface{} {
	switch x := input.(type) {
	case map[interface{}]interface{}:
		m := make(map[string]interface{}, len(x))
		for k, v := range x {
			m[fmt.Sprintf("%v", k)] = sanitize(v)
		}
		return m
	case map[string]interface{}:
		for k, v := range x {
			x[k] = sanitize(v)
		}
		return x
	case []interface{}:
		for i, v := range x {
			x[i] = sanitize(v)
		}
		return x
	default:
		return x
	}
}
