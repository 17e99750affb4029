package service

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	cfg "github.com/maheshrc27/contentflow/configs"
)

// ObjectStorage stores uploaded media and returns its public URL.
type ObjectStorage interface {
	Put(ctx context.Context, key string, body []byte, contentType string) (string, error)
}

type R2Service struct {
	config cfg.R2
	client *s3.Client
}

func NewR2Service(ctx context.Context, r2 cfg.R2) (*R2Service, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(r2.AccessKey, r2.SecretKey, "")),
		config.WithRegion("auto"),
	)
	if err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("load r2 config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", r2.AccountID))
	})
	return &R2Service{config: r2, client: client}, nil
}

// Put uploads body under key to the configured bucket.
func (r *R2Service) Put(ctx context.Context, key string, body []byte, contentType string) (string, error) {
	input := &s3.PutObjectInput{
		Bucket:      aws.String(r.config.BucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	}

	if _, err := r.client.PutObject(ctx, input); err != nil {
		slog.Info(err.Error())
		return "", err
	}
	return strings.TrimRight(r.config.PublicBaseURL, "/") + "/" + key, nil
}
