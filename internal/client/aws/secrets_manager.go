package aws

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/cyphera/cyphera-xdk/internal/interfaces"
	"github.com/cyphera/cyphera-xdk/internal/logger"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// SecretsManagerClient wraps the AWS Secrets Manager client.
type SecretsManagerClient struct {
	svc    interfaces.SecretsManagerAPI
	getenv func(string) string
}

// NewSecretsManagerClient creates and initializes a new Secrets Manager client.
// It uses the default AWS configuration chain (environment variables, shared config, IAM role).
func NewSecretsManagerClient(ctx context.Context) (*SecretsManagerClient, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "unable to load AWS SDK config")
	}

	return NewSecretsManagerClientWithAPI(secretsmanager.NewFromConfig(cfg), os.Getenv), nil
}

// NewSecretsManagerClientWithAPI builds a client over an existing API and
// environment lookup.
func NewSecretsManagerClientWithAPI(svc interfaces.SecretsManagerAPI, getenv func(string) string) *SecretsManagerClient {
	return &SecretsManagerClient{
		svc:    svc,
		getenv: getenv,
	}
}

// GetSecretString fetches a secret string from AWS Secrets Manager using an ARN specified by an environment variable.
// If the ARN environment variable (secretArnEnvVar) is not set or fetching fails,
// it falls back to reading the secret directly from another environment variable (fallbackEnvVar).
func (c *SecretsManagerClient) GetSecretString(ctx context.Context, secretArnEnvVar string, fallbackEnvVar string) (string, error) {
	secretArn := c.getenv(secretArnEnvVar)

	if secretArn != "" {
		logger.Log.Debug("Attempting to fetch secret from Secrets Manager", zap.String("arnEnvVar", secretArnEnvVar))
		result, err := c.svc.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
			SecretId: aws.String(secretArn),
		})
		if err == nil && result.SecretString != nil && *result.SecretString != "" {
			logger.Log.Info("Successfully fetched secret from Secrets Manager", zap.String("arnEnvVar", secretArnEnvVar))
			return *result.SecretString, nil
		}
		logger.Log.Warn("Failed to retrieve secret from Secrets Manager, falling back to env var",
			zap.String("secretArnEnvVar", secretArnEnvVar),
			zap.String("fallbackEnvVar", fallbackEnvVar),
			zap.Error(err),
		)
	} else {
		logger.Log.Debug("Secret ARN environment variable not set, falling back to direct env var",
			zap.String("arnEnvVar", secretArnEnvVar),
			zap.String("fallbackEnvVar", fallbackEnvVar),
		)
	}

	if secretValue := c.getenv(fallbackEnvVar); secretValue != "" {
		logger.Log.Info("Using secret value from direct environment variable", zap.String("envVar", fallbackEnvVar))
		return secretValue, nil
	}

	logger.Log.Error("Failed to retrieve secret from both Secrets Manager and direct environment variable",
		zap.String("arnEnvVar", secretArnEnvVar),
		zap.String("fallbackEnvVar", fallbackEnvVar),
	)
	return "", fmt.Errorf("secret not found using ARN env var '%s' or direct env var '%s'", secretArnEnvVar, fallbackEnvVar)
}
