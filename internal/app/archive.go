package app

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/rbright/voxtrace/internal/archive"
	"github.com/rbright/voxtrace/internal/config"
)

// buildArchive materializes the configured archive backend.
func buildArchive(cfg config.ArchiveConfig) (archive.Archive, error) {
	switch cfg.Backend {
	case "local":
		arch, err := archive.NewLocal(cfg.LocalRoot)
		if err != nil {
			return nil, fmt.Errorf("build local archive: %w", err)
		}
		return arch, nil
	case "s3":
		return archive.NewS3(newS3Client(cfg), cfg.S3Bucket, cfg.S3Prefix), nil
	default:
		return nil, fmt.Errorf("unknown archive backend %q", cfg.Backend)
	}
}

// newS3Client builds an S3 client from config plus standard AWS environment
// credentials. A custom endpoint (MinIO, R2) switches to path-style
// addressing.
func newS3Client(cfg config.ArchiveConfig) *s3.Client {
	opts := s3.Options{
		Region: cfg.S3Region,
		Credentials: aws.CredentialsProviderFunc(func(context.Context) (aws.Credentials, error) {
			return aws.Credentials{
				AccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
				SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
				SessionToken:    os.Getenv("AWS_SESSION_TOKEN"),
			}, nil
		}),
	}
	if cfg.S3Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.S3Endpoint)
		opts.UsePathStyle = true
	}
	return s3.New(opts)
}
