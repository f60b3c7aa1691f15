// Package s3 stores reports in an S3 or MinIO bucket.
package s3

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"github.com/proofpoint/proofpoint/pkg/logging"
	"github.com/proofpoint/proofpoint/pkg/metrics"
)

// Config holds S3 sink settings. Endpoint is only needed for MinIO or other
// S3-compatible services.
type Config struct {
	Endpoint  string `yaml:"endpoint"`
	Bucket    string `yaml:"bucket"`
	Prefix    string `yaml:"prefix"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Region    string `yaml:"region"`
}

// Sink uploads reports as objects.
type Sink struct {
	client *s3.Client
	bucket string
	prefix string
}

// New creates an S3 sink.
func New(ctx context.Context, cfg Config) (*Sink, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = true
	})

	return &Sink{client: client, bucket: cfg.Bucket, prefix: cfg.Prefix}, nil
}

// Save uploads data under <prefix>/<name> and returns its s3:// location.
func (s *Sink) Save(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	key := path.Join(s.prefix, path.Base(name))
	if contentType == "" {
		contentType = "application/pdf"
	}

	start := time.Now()
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		metrics.RecordReportSaved(s.Type(), false)
		return "", fmt.Errorf("put object %s: %w", key, err)
	}

	metrics.RecordReportSaved(s.Type(), true)
	logging.Debug("S3 put report",
		zap.String("bucket", s.bucket),
		zap.String("key", key),
		zap.Int("size", len(data)),
		zap.Duration("elapsed", time.Since(start)))
	return "s3://" + s.bucket + "/" + key, nil
}

// Type returns "s3".
func (s *Sink) Type() string { return "s3" }
