// Package awsconfig loads the shared AWS configuration used by the S3 document
// store, the SES notifier and the signing key lookup.
package awsconfig

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"

	"pcps/internal/platform/config"
)

// Load resolves credentials from the default chain for the configured region.
// A non-empty Endpoint points every client at a local emulator.
func Load(ctx context.Context, cfg config.AWS) (aws.Config, error) {
	opts := []func(*awscfg.LoadOptions) error{awscfg.WithRegion(cfg.Region)}
	if cfg.Endpoint != "" {
		opts = append(opts, awscfg.WithBaseEndpoint(cfg.Endpoint))
	}
	awsCfg, err := awscfg.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return awsCfg, nil
}

// SecretsAPI is the slice of the Secrets Manager client used here.
type SecretsAPI interface {
	GetSecretValue(ctx context.Context, in *secretsmanager.GetSecretValueInput, opts ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// ErrEmptySecret is returned when the secret exists but carries no string value.
var ErrEmptySecret = errors.New("secret has no string value")

// SigningKey reads the delivery token signing key from Secrets Manager.
func SigningKey(ctx context.Context, client SecretsAPI, secretID string) ([]byte, error) {
	out, err := client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(secretID),
	})
	if err != nil {
		return nil, fmt.Errorf("get secret %s: %w", secretID, err)
	}
	value := aws.ToString(out.SecretString)
	if value == "" {
		return nil, fmt.Errorf("secret %s: %w", secretID, ErrEmptySecret)
	}
	return []byte(value), nil
}
