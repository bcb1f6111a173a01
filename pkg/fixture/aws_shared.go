package fixture

import (
	"context"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

var (
	awsMu  sync.Mutex
	awsCfg *aws.Config

	// loadAWSConfig é injetável para testes
	loadAWSConfig = func() (aws.Config, error) {
		return config.LoadDefaultConfig(context.Background())
	}
)

// GetAWSConfig devolve a configuração base da AWS (env vars, profile, IAM role) com a
// região informada aplicada. A base é carregada uma única vez, com contexto próprio;
// falhas não ficam em cache e são tentadas de novo na próxima chamada.
func GetAWSConfig(ctx context.Context, region string) (aws.Config, error) {
	if err := ctx.Err(); err != nil {
		return aws.Config{}, err
	}

	awsMu.Lock()
	defer awsMu.Unlock()

	if awsCfg == nil {
		base, err := loadAWSConfig()
		if err != nil {
			return aws.Config{}, err
		}
		awsCfg = &base
	}

	cfg := awsCfg.Copy()
	if region != "" {
		cfg.Region = region
	}
	return cfg, nil
}

func (ul *UniversalLoader) s3Client(ctx context.Context, region string) (S3Client, error) {
	if ul.S3 != nil {
		return ul.S3, nil
	}
	cfg, err := GetAWSConfig(ctx, region)
	if err != nil {
		return nil, err
	}
	return s3.NewFromConfig(cfg), nil
}

func (ul *UniversalLoader) dynamoClient(ctx context.Context, region string) (DynamoGetter, error) {
	if ul.Dynamo != nil {
		return ul.Dynamo, nil
	}
	cfg, err := GetAWSConfig(ctx, region)
	if err != nil {
		return nil, err
	}
	return dynamodb.NewFromConfig(cfg), nil
}

func (ul *UniversalLoader) ssmClient(ctx context.Context, region string) (SSMClient, error) {
	if ul.SSM != nil {
		return ul.SSM, nil
	}
	cfg, err := GetAWSConfig(ctx, region)
	if err != nil {
		return nil, err
	}
	return ssm.NewFromConfig(cfg), nil
}

func (ul *UniversalLoader) secretsClient(ctx context.Context, region string) (SecretsClient, error) {
	if ul.Secrets != nil {
		return ul.Secrets, nil
	}
	cfg, err := GetAWSConfig(ctx, region)
	if err != nil {
		return nil, err
	}
	return secretsmanager.NewFromConfig(cfg), nil
}
