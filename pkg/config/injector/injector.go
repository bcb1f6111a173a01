package injector

import (
	"context"
	"fmt"
	"os"
	"reflect"
	"regexp"
	"strings"

	"github.com/raywall/upstream-simulators/pkg/fixture"
)

// Regex para capturar padrões ${tipo.chave}
// Ex: ${env.FIXTURE_DIR}, ${ssm./sim/redis_password}, ${secret.sim-postgres-dsn}
var pattern = regexp.MustCompile(`\$\{(env|ssm|secret)\.([^}]+)\}`)

// Resolver busca o valor de uma referência (tipo + chave).
type Resolver func(ctx context.Context, sourceType, key string) (string, error)

type Injector struct {
	resolve Resolver
}

// New cria um Injector que resolve env localmente e ssm/secret na AWS.
func New() *Injector {
	return &Injector{resolve: defaultResolver}
}

// NewWithResolver permite substituir a resolução (testes).
func NewWithResolver(r Resolver) *Injector {
	return &Injector{resolve: r}
}

// Inject percorre a struct (ponteiro) interpolando todas as strings encontradas.
func (i *Injector) Inject(ctx context.Context, target interface{}) error {
	v := reflect.ValueOf(target)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		return fmt.Errorf("target deve ser um ponteiro para struct não nulo")
	}
	return i.walk(ctx, v.Elem())
}

func (i *Injector) walk(ctx context.Context, v reflect.Value) error {
	switch v.Kind() {
	case reflect.String:
		if !v.CanSet() {
			return nil
		}
		out, err := i.interpolate(ctx, v.String())
		if err != nil {
			return err
		}
		v.SetString(out)

	case reflect.Struct:
		for k := 0; k < v.NumField(); k++ {
			if !v.Type().Field(k).IsExported() {
				continue
			}
			if err := i.walk(ctx, v.Field(k)); err != nil {
				return err
			}
		}

	case reflect.Ptr:
		if !v.IsNil() {
			return i.walk(ctx, v.Elem())
		}

	case reflect.Slice:
		for j := 0; j < v.Len(); j++ {
			if err := i.walk(ctx, v.Index(j)); err != nil {
				return err
			}
		}

	case reflect.Map:
		// Apenas map[string]string (ex: gate.expect); valores de mapa não são endereçáveis
		if v.IsNil() || v.Type().Key().Kind() != reflect.String || v.Type().Elem().Kind() != reflect.String {
			return nil
		}
		iter := v.MapRange()
		updates := make(map[string]string)
		for iter.Next() {
			out, err := i.interpolate(ctx, iter.Value().String())
			if err != nil {
				return err
			}
			updates[iter.Key().String()] = out
		}
		for k, val := range updates {
			v.SetMapIndex(reflect.ValueOf(k).Convert(v.Type().Key()), reflect.ValueOf(val).Convert(v.Type().Elem()))
		}
	}
	return nil
}

func (i *Injector) interpolate(ctx context.Context, input string) (string, error) {
	if !strings.Contains(input, "${") {
		return input, nil
	}

	var err error
	result := pattern.ReplaceAllStringFunc(input, func(match string) string {
		sub := pattern.FindStringSubmatch(match)
		val, resolveErr := i.resolve(ctx, sub[1], sub[2])
		if resolveErr != nil {
			if err == nil {
				err = fmt.Errorf("erro ao resolver %s: %w", match, resolveErr)
			}
			return match
		}
		return val
	})

	return result, err
}

func defaultResolver(ctx context.Context, sourceType, key string) (string, error) {
	region := os.Getenv("AWS_REGION")
	switch sourceType {
	case "env":
		// Variável não encontrada resolve para vazio
		return os.Getenv(key), nil
	case "ssm":
		return fixture.ReadParameter(ctx, region, key)
	case "secret":
		return fixture.ReadSecret(ctx, region, key)
	}
	return "", fmt.Errorf("tipo de referência desconhecido: %s", sourceType)
}
