package fixture

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	smtypes "github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	ssmtypes "github.com/aws/aws-sdk-go-v2/service/ssm/types"
)

// Interfaces para abstrair o SDK da AWS (Permite Mocking)
type SSMClient interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

type SecretsClient interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// ReadParameter lê um parâmetro do Parameter Store usando o cliente real.
func ReadParameter(ctx context.Context, region, name string) (string, error) {
	cfg, err := GetAWSConfig(ctx, region)
	if err != nil {
		return "", err
	}
	data, err := getParameter(ctx, ssm.NewFromConfig(cfg), name)
	return string(data), err
}

// ReadSecret lê um segredo do Secrets Manager usando o cliente real.
func ReadSecret(ctx context.Context, region, secretID string) (string, error) {
	cfg, err := GetAWSConfig(ctx, region)
	if err != nil {
		return "", err
	}
	data, err := getSecret(ctx, secretsmanager.NewFromConfig(cfg), secretID)
	return string(data), err
}

// readParameter aceita ssm:///caminho/param ou ssm://param
func readParameter(ctx context.Context, client SSMClient, uri string) ([]byte, error) {
	name := strings.TrimPrefix(uri, "ssm://")
	return getParameter(ctx, client, name)
}

func getParameter(ctx context.Context, client SSMClient, name string) ([]byte, error) {
	decrypt := true
	out, err := client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           &name,
		WithDecryption: &decrypt,
	})
	if err != nil {
		var pnf *ssmtypes.ParameterNotFound
		if errors.As(err, &pnf) {
			return nil, fmt.Errorf("%w: ssm %s", ErrNotFound, name)
		}
		return nil, fmt.Errorf("erro no SSM GetParameter: %w", err)
	}
	if out.Parameter == nil || out.Parameter.Value == nil {
		return nil, fmt.Errorf("%w: ssm %s", ErrNotFound, name)
	}
	return []byte(*out.Parameter.Value), nil
}

func readSecret(ctx context.Context, client SecretsClient, uri string) ([]byte, error) {
	return getSecret(ctx, client, strings.TrimPrefix(uri, "secretsmanager://"))
}

func getSecret(ctx context.Context, client SecretsClient, secretID string) ([]byte, error) {
	out, err := client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: &secretID,
	})
	if err != nil {
		var rnf *smtypes.ResourceNotFoundException
		if errors.As(err, &rnf) {
			return nil, fmt.Errorf("%w: secret %s", ErrNotFound, secretID)
		}
		return nil, fmt.Errorf("erro no SecretsManager: %w", err)
	}
	if out.SecretString != nil {
		return []byte(*out.SecretString), nil
	}
	return out.SecretBinary, nil
}
