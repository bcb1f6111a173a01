package injector_test

import (
	"context"
	"errors"
	"testing"

	"github.com/raywall/upstream-simulators/pkg/config/injector"
	"github.com/stretchr/testify/assert"
)

type TestConfig struct {
	Source  string
	Query   string
	Expect  map[string]string
	Nested  *NestedConfig
	List    []NestedConfig
	Ignored int
}

type NestedConfig struct {
	URL string
}

func TestInjector_Inject_Environment(t *testing.T) {
	t.Setenv("FIXTURE_DIR", "/data/fixtures")
	t.Setenv("COMPANY", "GAMCO-001")
	t.Setenv("REGION", "us-east-1")

	target := &TestConfig{
		Source:  "${env.FIXTURE_DIR}/sample_bank_api.json",
		Query:   "SELECT 1", // Sem interpolação
		Expect:  map[string]string{"companyId": "${env.COMPANY}"},
		Nested:  &NestedConfig{URL: "s3://bucket-${env.REGION}/bank.json"},
		List:    []NestedConfig{{URL: "${env.MISSING_VAR}"}},
		Ignored: 5,
	}

	err := injector.New().Inject(context.Background(), target)
	assert.NoError(t, err)

	assert.Equal(t, "/data/fixtures/sample_bank_api.json", target.Source)
	assert.Equal(t, "SELECT 1", target.Query)
	assert.Equal(t, "GAMCO-001", target.Expect["companyId"])
	assert.Equal(t, "s3://bucket-us-east-1/bank.json", target.Nested.URL)
	assert.Equal(t, "", target.List[0].URL, "variável ausente resolve para vazio")
}

func TestInjector_Inject_CustomResolver(t *testing.T) {
	calls := map[string]string{}
	inj := injector.NewWithResolver(func(ctx context.Context, sourceType, key string) (string, error) {
		calls[sourceType] = key
		if sourceType == "secret" {
			return "", errors.New("acesso negado")
		}
		return "resolvido", nil
	})

	ok := &TestConfig{Source: "redis://:${ssm./sim/redis}@localhost:6379/bank"}
	assert.NoError(t, inj.Inject(context.Background(), ok))
	assert.Equal(t, "redis://:resolvido@localhost:6379/bank", ok.Source)
	assert.Equal(t, "/sim/redis", calls["ssm"])

	bad := &TestConfig{Source: "${secret.sim-dsn}"}
	assert.Error(t, inj.Inject(context.Background(), bad))
}

func TestInjector_Inject_InvalidTarget(t *testing.T) {
	var cfg TestConfig
	assert.Error(t, injector.New().Inject(context.Background(), cfg))
}
