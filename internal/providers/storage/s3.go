package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	appconfig "github.com/fitora/fitora/internal/config"
)

type S3Provider struct {
	client  *s3.Client
	bucket  string
	region  string
	baseURL string
}

func NewS3(cfg appconfig.Config) (*S3Provider, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.StorageRegion),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.StorageEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.StorageEndpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Provider{
		client:  client,
		bucket:  cfg.StorageBucket,
		region:  cfg.StorageRegion,
		baseURL: strings.TrimSuffix(cfg.StorageBaseURL, "/"),
	}, nil
}

func (p *S3Provider) Upload(ctx context.Context, key, contentType string, data []byte) (string, error) {
	_, err := p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(p.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", err
	}
	return p.objectURL(key), nil
}

func (p *S3Provider) objectURL(key string) string {
	if p.baseURL != "" {
		return fmt.Sprintf("%s/%s", p.baseURL, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", p.bucket, p.region, key)
}
