package simulator

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/raywall/upstream-simulators/pkg/config"
	"github.com/raywall/upstream-simulators/pkg/fixture"
	"github.com/raywall/upstream-simulators/pkg/rules"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	bankFixture = `{"companyId": "GAMCO-001", "transactions": [{"id": "T1", "amount": 1500.25}]}`
	irsFixture  = `{"companyId": "GAMCO-003", "taxType": "FCT", "invoices": [{"number": "INV-9"}]}`
	nlrcFixture = `{"companyId": "GAMCO-001", "licenses": [{"number": "NLRC-77"}]}`
	gameFixture = `{"companyId": "GAMCO-001", "revenue": 98000}`
)

// countingLoader registra quantas leituras foram feitas.
type countingLoader struct {
	inner fixture.Loader
	calls int
}

func (c *countingLoader) Load(ctx context.Context, ref fixture.Ref) (*fixture.Fixture, error) {
	c.calls++
	return c.inner.Load(ctx, ref)
}

type failingLoader struct{ err error }

func (f failingLoader) Load(ctx context.Context, ref fixture.Ref) (*fixture.Fixture, error) {
	return nil, f.err
}

// newDefaultEndpoint monta o endpoint padrão (config.Default) apontando para um
// diretório temporário contendo a fixture informada.
func newDefaultEndpoint(t *testing.T, server int, fixtureName, content string) (*Endpoint, *countingLoader) {
	t.Helper()
	dir := t.TempDir()
	if content != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, fixtureName), []byte(content), 0o600))
	}

	loader := &countingLoader{inner: fixture.NewUniversalLoader()}
	ep, err := Build(config.Default(dir).Servers[server].Endpoints[0], loader, nil)
	require.NoError(t, err)
	ep.Random = FixedSource(0.99) // sem falha
	return ep, loader
}

func bankEndpoint(t *testing.T, content string) (*Endpoint, *countingLoader) {
	return newDefaultEndpoint(t, 0, "sample_bank_api.json", content)
}

func gamingEndpoint(t *testing.T, content string) (*Endpoint, *countingLoader) {
	return newDefaultEndpoint(t, 1, "sample_gaming_company_api.json", content)
}

func irsEndpoint(t *testing.T, content string) (*Endpoint, *countingLoader) {
	return newDefaultEndpoint(t, 2, "sample_firs_irs_api.json", content)
}

func nlrcEndpoint(t *testing.T, content string) (*Endpoint, *countingLoader) {
	return newDefaultEndpoint(t, 3, "sample_nlrc_api.json", content)
}

func params(kv ...string) Request {
	m := map[string]string{}
	for i := 0; i+1 < len(kv); i += 2 {
		m[kv[i]] = kv[i+1]
	}
	return NewRequest(m)
}

func assertOneOutcome(t *testing.T, resp Response) {
	t.Helper()
	if resp.Err != nil {
		assert.Nil(t, resp.Body, "erro não pode carregar corpo de sucesso")
		assert.Equal(t, resp.Err.Status(), resp.Status)
	} else {
		assert.Equal(t, 200, resp.Status)
		assert.Equal(t, Served, resp.Outcome)
	}
}

func TestBank(t *testing.T) {
	ep, _ := bankEndpoint(t, bankFixture)
	ctx := context.Background()

	t.Run("Match devolve fixture intacta", func(t *testing.T) {
		resp := ep.Handle(ctx, params("companyId", "GAMCO-001"))
		assertOneOutcome(t, resp)
		assert.Equal(t, 200, resp.Status)
		assert.Equal(t, bankFixture, string(resp.Payload()))
	})

	t.Run("Datas aceitas e ignoradas", func(t *testing.T) {
		resp := ep.Handle(ctx, params("companyId", "GAMCO-001", "startDate", "2024-01-01", "endDate", "2024-12-31"))
		assert.Equal(t, 200, resp.Status)
	})

	t.Run("companyId diferente", func(t *testing.T) {
		resp := ep.Handle(ctx, params("companyId", "WRONG"))
		assertOneOutcome(t, resp)
		assert.Equal(t, 404, resp.Status)
		assert.Equal(t, NotMatched, resp.Outcome)
		assert.JSONEq(t, `{"status":404,"description":"Transaction data not found for the specified companyId."}`, string(resp.Payload()))
	})

	t.Run("Campo numérico nunca coincide", func(t *testing.T) {
		numeric, _ := bankEndpoint(t, `{"companyId": 1001}`)
		for _, value := range []string{"1001", "1001.0", "1.001e3"} {
			resp := numeric.Handle(ctx, params("companyId", value))
			assert.Equal(t, 404, resp.Status, value)
		}
	})

	t.Run("Case sensitive", func(t *testing.T) {
		assert.Equal(t, 404, ep.Handle(ctx, params("companyId", "gamco-001")).Status)
	})

	t.Run("Sem companyId", func(t *testing.T) {
		resp := ep.Handle(ctx, params())
		assertOneOutcome(t, resp)
		assert.Equal(t, 400, resp.Status)
		assert.Equal(t, Rejected, resp.Outcome)
		assert.Equal(t, "Missing companyId query parameter.", resp.Err.Description)
	})

	t.Run("companyId vazio está presente", func(t *testing.T) {
		assert.Equal(t, 404, ep.Handle(ctx, params("companyId", "")).Status)
	})
}

func TestGaming(t *testing.T) {
	ctx := context.Background()

	t.Run("Match", func(t *testing.T) {
		ep, _ := gamingEndpoint(t, gameFixture)
		resp := ep.Handle(ctx, params("companyId", "GAMCO-001", "reportDate", "2024-06-30"))
		assert.Equal(t, 200, resp.Status)
		assert.Equal(t, gameFixture, string(resp.Body))
	})

	t.Run("Gate rejeita sem ler a fixture", func(t *testing.T) {
		ep, loader := gamingEndpoint(t, "") // fixture ausente: não deve importar
		resp := ep.Handle(ctx, params("companyId", "GAMCO-999"))
		assert.Equal(t, 404, resp.Status)
		assert.Equal(t, "Company ID not found.", resp.Err.Description)
		assert.Zero(t, loader.calls)
	})

	t.Run("Fixture inconsistente com o gate", func(t *testing.T) {
		ep, _ := gamingEndpoint(t, `{"companyId": "GAMCO-002"}`)
		resp := ep.Handle(ctx, params("companyId", "GAMCO-001"))
		assert.Equal(t, 404, resp.Status)
		assert.Equal(t, "Data in sample file does not match the requested companyId.", resp.Err.Description)
	})
}

func TestIRS(t *testing.T) {
	ep, _ := irsEndpoint(t, irsFixture)
	ctx := context.Background()

	tests := []struct {
		name   string
		req    Request
		status int
	}{
		{"Ambos corretos", params("companyId", "GAMCO-003", "taxType", "FCT"), 200},
		{"Nenhum parâmetro", params(), 400},
		{"Apenas companyId correto", params("companyId", "GAMCO-003"), 404},
		{"Apenas taxType correto", params("taxType", "FCT"), 404},
		{"Apenas companyId errado", params("companyId", "X"), 404},
		{"Match parcial", params("companyId", "GAMCO-003", "taxType", "VAT"), 404},
		{"Ambos errados", params("companyId", "X", "taxType", "Y"), 404},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ep.Handle(ctx, tt.req)
			assertOneOutcome(t, resp)
			assert.Equal(t, tt.status, resp.Status)
		})
	}

	resp := ep.Handle(ctx, params())
	assert.Equal(t, "Missing companyId or taxType query parameters.", resp.Err.Description)
}

func TestNLRC(t *testing.T) {
	ctx := context.Background()

	t.Run("Sem companyId devolve fixture independente do conteúdo", func(t *testing.T) {
		for _, content := range []string{nlrcFixture, `{"other": true}`, `[1,2,3]`} {
			ep, _ := nlrcEndpoint(t, content)
			resp := ep.Handle(ctx, params())
			assert.Equal(t, 200, resp.Status)
			assert.Equal(t, content, string(resp.Body))
		}
	})

	t.Run("companyId igual", func(t *testing.T) {
		ep, _ := nlrcEndpoint(t, nlrcFixture)
		assert.Equal(t, 200, ep.Handle(ctx, params("companyId", "GAMCO-001")).Status)
	})

	t.Run("companyId diferente", func(t *testing.T) {
		ep, _ := nlrcEndpoint(t, nlrcFixture)
		resp := ep.Handle(ctx, params("companyId", "GAMCO-002"))
		assert.Equal(t, 404, resp.Status)
		assert.Equal(t, "License data not found for the specified companyId.", resp.Err.Description)
	})

	t.Run("Campo booleano nunca coincide", func(t *testing.T) {
		ep, _ := nlrcEndpoint(t, `{"companyId": true}`)
		for _, value := range []string{"TRUE", "true"} {
			assert.Equal(t, 404, ep.Handle(ctx, params("companyId", value)).Status, value)
		}
	})
}

func TestFixtureFailures(t *testing.T) {
	ctx := context.Background()

	t.Run("Arquivo ausente sempre 500", func(t *testing.T) {
		ep, _ := bankEndpoint(t, "")
		for _, req := range []Request{params("companyId", "GAMCO-001"), params("companyId", "WRONG")} {
			resp := ep.Handle(ctx, req)
			assert.Equal(t, 500, resp.Status)
			assert.Equal(t, ServerFailed, resp.Outcome)
			assert.Contains(t, resp.Err.Description, "Fixture file not found")
		}
	})

	t.Run("JSON inválido sempre 500", func(t *testing.T) {
		ep, _ := nlrcEndpoint(t, `{"companyId": `)
		for _, req := range []Request{params(), params("companyId", "GAMCO-001")} {
			resp := ep.Handle(ctx, req)
			assert.Equal(t, 500, resp.Status)
			assert.Equal(t, "Error decoding fixture data.", resp.Err.Description)
		}
	})

	t.Run("Erro genérico da fonte", func(t *testing.T) {
		ep, _ := bankEndpoint(t, bankFixture)
		ep.Loader = failingLoader{err: errors.New("timeout")}
		resp := ep.Handle(ctx, params("companyId", "GAMCO-001"))
		assert.Equal(t, 500, resp.Status)
		assert.Contains(t, resp.Err.Description, "timeout")
	})

	t.Run("Validação tem prioridade sobre a leitura", func(t *testing.T) {
		ep, loader := bankEndpoint(t, "")
		assert.Equal(t, 400, ep.Handle(ctx, params()).Status)
		assert.Zero(t, loader.calls)
	})
}

func TestFaultInjection(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		server int
		name   string
		status int
		desc   string
	}{
		{0, "sample_bank_api.json", 401, "Simulated Unauthorized Access"},
		{1, "sample_gaming_company_api.json", 500, "Simulated Server Error"},
		{2, "sample_firs_irs_api.json", 429, "Simulated Rate Limit Exceeded"},
		{3, "sample_nlrc_api.json", 503, "Simulated Service Unavailable"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			ep, loader := newDefaultEndpoint(t, c.server, c.name, "")
			ep.Random = FixedSource(0.05)

			// Falha tem prioridade até sobre parâmetros ausentes
			resp := ep.Handle(ctx, params())
			assertOneOutcome(t, resp)
			assert.Equal(t, c.status, resp.Status)
			assert.Equal(t, Faulted, resp.Outcome)
			assert.Equal(t, c.desc, resp.Err.Description)
			assert.Zero(t, loader.calls)
		})
	}
}

func TestFaultInjection_Rate(t *testing.T) {
	ep, _ := nlrcEndpoint(t, nlrcFixture)
	ep.Random = NewSeededSource(42)

	const trials = 10000
	faults := 0
	for i := 0; i < trials; i++ {
		if ep.Handle(context.Background(), params()).Outcome == Faulted {
			faults++
		}
	}

	rate := float64(faults) / trials
	assert.InDelta(t, 0.10, rate, 0.03, "taxa observada %.4f", rate)
}

func TestFaultPolicy_Roll(t *testing.T) {
	p := FaultPolicy{Probability: 0.1, Kind: RateLimited}

	assert.NotNil(t, p.Roll(FixedSource(0)))
	assert.NotNil(t, p.Roll(FixedSource(0.0999)))
	assert.Nil(t, p.Roll(FixedSource(0.1)))
	assert.Nil(t, FaultPolicy{Probability: 0, Kind: RateLimited}.Roll(FixedSource(0)))

	always := FaultPolicy{Probability: 1, Kind: ServerError, Description: "boom"}
	err := always.Roll(FixedSource(0.999))
	require.NotNil(t, err)
	assert.Equal(t, "boom", err.Description)
	assert.Equal(t, 500, err.Status())
}

func TestSeededSource_Reproducible(t *testing.T) {
	a, b := NewSeededSource(7), NewSeededSource(7)
	for i := 0; i < 100; i++ {
		assert.Equal(t, a.Float64(), b.Float64())
	}
}

func TestExpressionRule(t *testing.T) {
	rm, err := rules.NewRuleManager()
	require.NoError(t, err)

	dir := t.TempDir()
	path := filepath.Join(dir, "bank.json")
	require.NoError(t, os.WriteFile(path, []byte(bankFixture), 0o600))

	cfg := config.EndpointConf{
		Name:    "bank-expr",
		Path:    "/sim/v1/payments/transactions",
		Params:  []config.ParamConf{{Name: "companyId", In: "query"}},
		Require: &config.RequireConf{Mode: "all", Params: []string{"companyId"}},
		Fixture: config.FixtureConf{Source: path},
		Match: config.MatchConf{
			Type: "expression",
			Expr: "request.companyId == fixture.companyId && size(fixture.transactions) > 0",
		},
	}
	ep, err := Build(cfg, fixture.NewUniversalLoader(), rm)
	require.NoError(t, err)

	ctx := context.Background()
	assert.Equal(t, 200, ep.Handle(ctx, params("companyId", "GAMCO-001")).Status)
	assert.Equal(t, 404, ep.Handle(ctx, params("companyId", "OTHER")).Status)
	assert.Equal(t, 400, ep.Handle(ctx, params()).Status)
}

func TestBuild_Errors(t *testing.T) {
	base := config.Default("").Servers[0].Endpoints[0]

	_, err := Build(base, nil, nil)
	assert.Error(t, err, "loader obrigatório")

	expr := base
	expr.Match = config.MatchConf{Type: "expression", Expr: "true"}
	_, err = Build(expr, fixture.NewUniversalLoader(), nil)
	assert.Error(t, err, "expression sem RuleManager")

	kind := base
	kind.Fault.Kind = "teapot"
	_, err = Build(kind, fixture.NewUniversalLoader(), nil)
	assert.Error(t, err)

	noBinding := base
	noBinding.Match = config.MatchConf{Type: "exact_dual", Bindings: base.Match.Bindings}
	_, err = Build(noBinding, fixture.NewUniversalLoader(), nil)
	assert.Error(t, err)
}

func TestValuesMatch(t *testing.T) {
	assert.True(t, valuesMatch("GAMCO-001", "GAMCO-001"))
	assert.False(t, valuesMatch("GAMCO-001", "gamco-001"))
	assert.False(t, valuesMatch(json.Number("1001"), "1001"))
	assert.False(t, valuesMatch(float64(10), "10"))
	assert.False(t, valuesMatch(true, "TRUE"))
	assert.False(t, valuesMatch(true, "true"))
	assert.False(t, valuesMatch(nil, ""))
	assert.False(t, valuesMatch(map[string]interface{}{}, "x"))
}
