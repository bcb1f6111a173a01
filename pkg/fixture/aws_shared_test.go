package fixture

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// withBaseConfig substitui o carregamento da configuração AWS durante o teste.
func withBaseConfig(t *testing.T, load func() (aws.Config, error)) *int {
	t.Helper()
	calls := 0
	originalLoad := loadAWSConfig
	awsMu.Lock()
	awsCfg = nil
	awsMu.Unlock()

	loadAWSConfig = func() (aws.Config, error) {
		calls++
		return load()
	}
	t.Cleanup(func() {
		loadAWSConfig = originalLoad
		awsMu.Lock()
		awsCfg = nil
		awsMu.Unlock()
	})
	return &calls
}

func TestGetAWSConfig_RegionPerCall(t *testing.T) {
	calls := withBaseConfig(t, func() (aws.Config, error) {
		return aws.Config{Region: "us-east-1"}, nil
	})
	ctx := context.Background()

	first, err := GetAWSConfig(ctx, "us-east-1")
	require.NoError(t, err)
	second, err := GetAWSConfig(ctx, "eu-west-1")
	require.NoError(t, err)
	fallback, err := GetAWSConfig(ctx, "")
	require.NoError(t, err)

	assert.Equal(t, "us-east-1", first.Region)
	assert.Equal(t, "eu-west-1", second.Region)
	assert.Equal(t, "us-east-1", fallback.Region)
	assert.Equal(t, 1, *calls, "configuração base deve ser carregada uma vez")
}

func TestGetAWSConfig_FailureNotCached(t *testing.T) {
	fail := true
	calls := withBaseConfig(t, func() (aws.Config, error) {
		if fail {
			return aws.Config{}, errors.New("sem credenciais")
		}
		return aws.Config{Region: "sa-east-1"}, nil
	})
	ctx := context.Background()

	_, err := GetAWSConfig(ctx, "")
	require.Error(t, err)

	fail = false
	cfg, err := GetAWSConfig(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "sa-east-1", cfg.Region)
	assert.Equal(t, 2, *calls)
}

func TestGetAWSConfig_CancelledContext(t *testing.T) {
	calls := withBaseConfig(t, func() (aws.Config, error) {
		return aws.Config{Region: "us-east-1"}, nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := GetAWSConfig(ctx, "eu-west-1")
	assert.ErrorIs(t, err, context.Canceled)

	cfg, err := GetAWSConfig(context.Background(), "eu-west-1")
	require.NoError(t, err)
	assert.Equal(t, "eu-west-1", cfg.Region)
	assert.Equal(t, 1, *calls)
}

func TestUniversalLoader_ClientsUseFixtureRegion(t *testing.T) {
	withBaseConfig(t, func() (aws.Config, error) {
		return aws.Config{Region: "us-east-1"}, nil
	})
	ul := NewUniversalLoader()
	ctx := context.Background()

	for _, region := range []string{"us-east-1", "eu-west-1"} {
		s3c, err := ul.s3Client(ctx, region)
		require.NoError(t, err)
		assert.Equal(t, region, s3c.(*s3.Client).Options().Region)

		dyn, err := ul.dynamoClient(ctx, region)
		require.NoError(t, err)
		assert.Equal(t, region, dyn.(*dynamodb.Client).Options().Region)

		ssmc, err := ul.ssmClient(ctx, region)
		require.NoError(t, err)
		assert.Equal(t, region, ssmc.(*ssm.Client).Options().Region)

		sec, err := ul.secretsClient(ctx, region)
		require.NoError(t, err)
		assert.Equal(t, region, sec.(*secretsmanager.Client).Options().Region)
	}
}
