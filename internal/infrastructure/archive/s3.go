// Package archive keeps a JSON copy of every pipeline run in an
// S3-compatible bucket.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"ContentCurator/internal/config"
	"ContentCurator/internal/domain"
	"ContentCurator/internal/ports"
)

// ObjectPutter is the part of the S3 client the archiver needs.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Archiver uploads run results as JSON objects.
type S3Archiver struct {
	client ObjectPutter
	bucket string
	prefix string
}

var _ ports.RunArchiver = (*S3Archiver)(nil)

// NewS3Client builds a client for AWS or any S3-compatible endpoint. Static
// credentials are used when configured; otherwise the default chain applies.
func NewS3Client(ctx context.Context, cfg config.ArchiveConfig) (*s3.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	}), nil
}

// NewS3Archiver writes under prefix in bucket.
func NewS3Archiver(client ObjectPutter, bucket, prefix string) *S3Archiver {
	return &S3Archiver{client: client, bucket: bucket, prefix: prefix}
}

// Key returns the object key for a run: <prefix>/<YYYY-MM-DD>/<run_id>.json.
func (a *S3Archiver) Key(result domain.RunResult) string {
	return path.Join(a.prefix, result.StartedAt.UTC().Format("2006-01-02"), result.RunID+".json")
}

// ArchiveRun uploads the run result.
func (a *S3Archiver) ArchiveRun(ctx context.Context, result domain.RunResult) error {
	body, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal run %s: %w", result.RunID, err)
	}

	key := a.Key(result)
	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("put s3://%s/%s: %w", a.bucket, key, err)
	}
	return nil
}
