package shared

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// rdsSecret is the JSON shape the RDS console stores in Secrets Manager.
type rdsSecret struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	DBName   string `json:"dbname"`
}

// ResolveDSN returns the destination connection string, preferring an explicit
// DSN and falling back to an AWS Secrets Manager secret when one is configured.
//
// The secret value may be either a raw connection string or the JSON document
// the RDS console writes ({"username", "password", "host", "port", "dbname"}).
func ResolveDSN(ctx context.Context, cfg DestinationConfig) (string, error) {
	if cfg.DatabaseURL != "" {
		return cfg.DatabaseURL, nil
	}
	if cfg.SecretARN == "" {
		return "", ErrMissingDSN
	}

	var loadOpts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return "", fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := secretsmanager.NewFromConfig(awsCfg)
	out, err := client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: &cfg.SecretARN,
	})
	if err != nil {
		return "", fmt.Errorf("failed to read secret %s: %w", cfg.SecretARN, err)
	}
	if out.SecretString == nil {
		return "", fmt.Errorf("secret %s has no string value", cfg.SecretARN)
	}

	return dsnFromSecret(*out.SecretString)
}

// dsnFromSecret accepts either a raw connection string or an RDS JSON secret.
func dsnFromSecret(value string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if !strings.HasPrefix(trimmed, "{") {
		return trimmed, nil
	}

	var secret rdsSecret
	if err := json.Unmarshal([]byte(trimmed), &secret); err != nil {
		return "", fmt.Errorf("failed to parse secret JSON: %w", err)
	}
	if secret.Host == "" || secret.Username == "" {
		return "", fmt.Errorf("secret JSON missing host or username")
	}
	if secret.Port == 0 {
		secret.Port = 5432
	}
	if secret.DBName == "" {
		secret.DBName = "postgres"
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s",
		url.QueryEscape(secret.Username),
		url.QueryEscape(secret.Password),
		secret.Host,
		secret.Port,
		secret.DBName,
	), nil
}
