package fixture

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
)

// Loader abstrai a leitura de fixtures (permite Mock nos testes do simulador).
type Loader interface {
	Load(ctx context.Context, ref Ref) (*Fixture, error)
}

// UniversalLoader suporta múltiplas fontes de fixture (Local, S3, DynamoDB, SSM,
// Secrets Manager, Redis e Postgres). Clientes nulos são criados sob demanda.
type UniversalLoader struct {
	S3      S3Client
	Dynamo  DynamoGetter
	SSM     SSMClient
	Secrets SecretsClient
	Redis   RedisProvider
	SQL     DocumentQuerier
}

// NewUniversalLoader cria um loader que usa os clientes reais.
func NewUniversalLoader() *UniversalLoader {
	return &UniversalLoader{}
}

// Load detecta o esquema da fonte, lê o conteúdo bruto e decodifica o documento.
func (ul *UniversalLoader) Load(ctx context.Context, ref Ref) (*Fixture, error) {
	raw, err := ul.read(ctx, ref)
	if err != nil {
		return nil, err
	}
	return Decode(ref, raw)
}

func (ul *UniversalLoader) read(ctx context.Context, ref Ref) ([]byte, error) {
	source := ref.Source
	scheme := ""
	if i := strings.Index(source, "://"); i > 0 {
		scheme = strings.ToLower(source[:i])
	}

	switch scheme {
	case "", "file":
		return readFile(source)
	case "s3":
		client, err := ul.s3Client(ctx, ref.Region)
		if err != nil {
			return nil, err
		}
		return readS3(ctx, client, source)
	case "dynamodb":
		client, err := ul.dynamoClient(ctx, ref.Region)
		if err != nil {
			return nil, err
		}
		return readDynamoDB(ctx, client, source)
	case "ssm":
		client, err := ul.ssmClient(ctx, ref.Region)
		if err != nil {
			return nil, err
		}
		return readParameter(ctx, client, source)
	case "secretsmanager":
		client, err := ul.secretsClient(ctx, ref.Region)
		if err != nil {
			return nil, err
		}
		return readSecret(ctx, client, source)
	case "redis":
		provider := ul.Redis
		if provider == nil {
			provider = defaultRedis
		}
		return readRedis(ctx, provider, source)
	case "postgres", "postgresql":
		querier := ul.SQL
		if querier == nil {
			querier = PostgresQuerier{}
		}
		if ref.Query == "" {
			return nil, fmt.Errorf("fonte %s exige fixture.query", scheme)
		}
		return querier.QueryDocument(ctx, source, ref.Query)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedSource, scheme)
	}
}

// readFile suporta tanto "file://fixture.json" quanto apenas "fixture.json".
func readFile(path string) ([]byte, error) {
	cleanPath := strings.TrimPrefix(path, "file://")
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, cleanPath)
		}
		return nil, fmt.Errorf("erro ao ler fixture %s: %w", cleanPath, err)
	}
	return data, nil
}
