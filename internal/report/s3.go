// Package report archives migration run reports to S3 so a run executed from
// an operator laptop leaves a durable record the team can find later.
package report

import (
	"bytes"
	"context"
	"fmt"
	"path"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/slugger-analytics/clubhouse-migrate/internal/migrate"
	"github.com/slugger-analytics/clubhouse-migrate/internal/shared"
)

// Archiver uploads JSON run reports to one S3 bucket.
type Archiver struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewArchiver constructs an archiver using the default AWS credentials chain.
func NewArchiver(ctx context.Context, bucket, prefix, region string) (*Archiver, error) {
	if bucket == "" {
		return nil, fmt.Errorf("s3 bucket required")
	}

	var loadOpts []func(*awsconfig.LoadOptions) error
	if region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &Archiver{
		client: s3.NewFromConfig(awsCfg),
		bucket: bucket,
		prefix: prefix,
	}, nil
}

// Archive uploads the run report as {prefix}/{run_id}.json and returns the key.
func (a *Archiver) Archive(ctx context.Context, result *migrate.RunResult) (string, error) {
	data, err := shared.MarshalJSON(result, true)
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}

	key := path.Join(a.prefix, result.RunID+".json")
	contentType := "application/json"
	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &a.bucket,
		Key:         &key,
		Body:        bytes.NewReader(data),
		ContentType: &contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload report: %w", err)
	}

	return key, nil
}
