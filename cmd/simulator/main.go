package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/raywall/upstream-simulators/pkg/config"
	"github.com/raywall/upstream-simulators/pkg/fixture"
	"github.com/raywall/upstream-simulators/pkg/logger"
	"github.com/raywall/upstream-simulators/pkg/metrics"
	"github.com/raywall/upstream-simulators/pkg/observability"
	"github.com/raywall/upstream-simulators/pkg/rules"
	"github.com/raywall/upstream-simulators/pkg/simulator"
	"github.com/raywall/upstream-simulators/pkg/transport"
	"github.com/rs/zerolog/log"
)

var (
	// Variáveis injetáveis para mocking
	serverStarter = transport.StartHTTPServers
	lambdaStarter = func(handler interface{}) { lambda.Start(handler) }
	fixtureLoader fixture.Loader = fixture.NewUniversalLoader()
)

type options struct {
	configPath string
	fixtureDir string
	validate   bool
	list       bool
}

func main() {
	opts := options{}
	flag.StringVar(&opts.configPath, "config", os.Getenv("SIMULATOR_CONFIG_PATH"), "Arquivo YAML/JSON com os simuladores (vazio usa os quatro padrão)")
	flag.StringVar(&opts.fixtureDir, "fixtures", envOr("SIMULATOR_FIXTURE_DIR", "fixtures"), "Diretório das fixtures dos simuladores padrão")
	flag.BoolVar(&opts.validate, "validate", false, "Valida a configuração, imprime as rotas e sai")
	flag.BoolVar(&opts.list, "list", false, "Imprime as rotas configuradas antes de iniciar")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts, os.Stdout); err != nil {
		log.Fatal().Err(err).Msg("FATAL: simulador encerrado com erro")
	}
}

// run contém a lógica de orquestração testável
func run(ctx context.Context, opts options, out io.Writer) error {
	// 1. Carrega Configuração
	cfg, err := loadConfig(ctx, opts)
	if err != nil {
		return err
	}

	if opts.validate {
		printRoutes(out, cfg)
		fmt.Fprintln(out, "Configuração válida.")
		return nil
	}
	if opts.list {
		printRoutes(out, cfg)
	}

	// 2. Observabilidade
	logger.Configure(cfg.Logging)

	provider, err := observability.SetupMetrics(cfg.Metrics)
	if err != nil {
		return fmt.Errorf("falha ao configurar métricas: %w", err)
	}
	if closer, ok := provider.(io.Closer); ok {
		defer closer.Close()
	}
	rec := metrics.NewRecorder(provider, "runtime:"+cfg.Runtime)

	// 3. Monta os simuladores (Boot Time)
	servers, err := buildServers(cfg)
	if err != nil {
		return err
	}

	// 4. Seleciona Runtime Strategy
	switch cfg.Runtime {
	case "local":
		return serverStarter(ctx, servers, rec)
	case "lambda":
		var all []*simulator.Endpoint
		for _, srv := range servers {
			all = append(all, srv.Endpoints...)
		}
		handler := transport.NewLambdaHandler(all, rec)
		lambdaStarter(handler.Handle)
		return nil
	default:
		return fmt.Errorf("runtime desconhecido: %s", cfg.Runtime)
	}
}

func loadConfig(ctx context.Context, opts options) (*config.Config, error) {
	if opts.configPath == "" {
		cfg := config.Default(opts.fixtureDir)
		if err := config.NewValidator().Validate(cfg); err != nil {
			return nil, fmt.Errorf("configuração padrão inválida: %w", err)
		}
		return cfg, nil
	}
	return config.Load(ctx, opts.configPath)
}

func buildServers(cfg *config.Config) ([]transport.Server, error) {
	var rm *rules.RuleManager
	for _, srv := range cfg.Servers {
		for _, ep := range srv.Endpoints {
			if ep.Match.Type == "expression" && rm == nil {
				var err error
				if rm, err = rules.NewRuleManager(); err != nil {
					return nil, fmt.Errorf("falha ao iniciar CEL: %w", err)
				}
			}
		}
	}

	servers := make([]transport.Server, 0, len(cfg.Servers))
	for _, srv := range cfg.Servers {
		server := transport.Server{Name: srv.Name, Port: srv.Port}
		for _, epCfg := range srv.Endpoints {
			ep, err := simulator.Build(epCfg, fixtureLoader, rm)
			if err != nil {
				return nil, fmt.Errorf("servidor %s: %w", srv.Name, err)
			}
			server.Endpoints = append(server.Endpoints, ep)
		}
		servers = append(servers, server)
	}
	return servers, nil
}

func printRoutes(out io.Writer, cfg *config.Config) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SERVER\tPORT\tMETHOD\tPATH\tFIXTURE\tFAULT")
	for _, srv := range cfg.Servers {
		for _, ep := range srv.Endpoints {
			fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\t%.2f %s\n",
				srv.Name, srv.Port, ep.MethodOrDefault(), ep.Path, ep.Fixture.Source,
				ep.Fault.Probability, ep.Fault.Kind)
		}
	}
	w.Flush()
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
