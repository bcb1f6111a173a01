package config

import "path/filepath"

const (
	// MockCompanyID é o identificador presente nas fixtures de exemplo.
	MockCompanyID = "GAMCO-001"

	defaultFaultProbability = 0.1
)

// Default monta os quatro simuladores padrão (banco, gaming, receita e licenças),
// cada um em sua porta, lendo as fixtures de fixtureDir.
func Default(fixtureDir string) *Config {
	if fixtureDir == "" {
		fixtureDir = "."
	}
	fixture := func(name string) FixtureConf {
		return FixtureConf{Source: filepath.Join(fixtureDir, name)}
	}

	cfg := &Config{
		Version: "1.0",
		Runtime: "local",
		Logging: LoggingConf{Enabled: true, Level: "info", Format: "json"},
		Servers: []ServerConf{
			{
				Name: "bank",
				Port: 5004,
				Endpoints: []EndpointConf{{
					Name:   "bank-transactions",
					Method: "GET",
					Path:   "/sim/v1/payments/transactions",
					Params: []ParamConf{
						{Name: "companyId", In: "query"},
						{Name: "startDate", In: "query"},
						{Name: "endDate", In: "query"},
					},
					Fault:   FaultConf{Probability: defaultFaultProbability, Kind: "unauthorized", Description: "Simulated Unauthorized Access"},
					Fixture: fixture("sample_bank_api.json"),
					Match: MatchConf{
						Type:     "exact",
						Bindings: []BindingConf{{Param: "companyId", Field: "companyId"}},
						NotFound: "Transaction data not found for the specified companyId.",
					},
				}},
			},
			{
				Name: "gaming",
				Port: 5001,
				Endpoints: []EndpointConf{{
					Name:   "gaming-revenue",
					Method: "GET",
					Path:   "/sim/v1/gamingco/{companyId}/revenue",
					Params: []ParamConf{
						{Name: "companyId", In: "path"},
						{Name: "reportDate", In: "query"},
					},
					Gate: &GateConf{
						Expect:   map[string]string{"companyId": MockCompanyID},
						NotFound: "Company ID not found.",
					},
					Fault:   FaultConf{Probability: defaultFaultProbability, Kind: "server_error", Description: "Simulated Server Error"},
					Fixture: fixture("sample_gaming_company_api.json"),
					Match: MatchConf{
						Type:     "exact",
						Bindings: []BindingConf{{Param: "companyId", Field: "companyId"}},
						NotFound: "Data in sample file does not match the requested companyId.",
					},
				}},
			},
			{
				Name: "irs",
				Port: 5003,
				Endpoints: []EndpointConf{{
					Name:   "irs-invoices",
					Method: "GET",
					Path:   "/sim/v1/irs/invoices",
					Params: []ParamConf{
						{Name: "companyId", In: "query"},
						{Name: "taxType", In: "query"},
					},
					Fault:   FaultConf{Probability: defaultFaultProbability, Kind: "rate_limited", Description: "Simulated Rate Limit Exceeded"},
					Fixture: fixture("sample_firs_irs_api.json"),
					Match: MatchConf{
						Type: "exact_dual",
						Bindings: []BindingConf{
							{Param: "companyId", Field: "companyId"},
							{Param: "taxType", Field: "taxType"},
						},
						NotFound: "Invoice data not found for the specified companyId and taxType.",
					},
				}},
			},
			{
				Name: "nlrc",
				Port: 5002,
				Endpoints: []EndpointConf{{
					Name:    "nlrc-licenses",
					Method:  "GET",
					Path:    "/sim/v1/nlrc/licenses",
					Params:  []ParamConf{{Name: "companyId", In: "query"}},
					Fault:   FaultConf{Probability: defaultFaultProbability, Kind: "service_unavailable", Description: "Simulated Service Unavailable"},
					Fixture: fixture("sample_nlrc_api.json"),
					Match: MatchConf{
						Type:     "optional",
						Bindings: []BindingConf{{Param: "companyId", Field: "companyId"}},
						NotFound: "License data not found for the specified companyId.",
					},
				}},
			},
		},
	}
	return cfg
}
