// Package s3store uploads photos to any S3-compatible endpoint (AWS, MinIO,
// Supabase storage).
package s3store

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/rackaudit/internal/client/remote/objectstore"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) putObjectAPI {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

type putObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type Options struct {
	AccessKey    string
	SecretKey    string
	Bucket       string
	Region       string
	BaseEndpoint string
	// PublicBaseURL overrides URL resolution, e.g.
	// https://<project>.supabase.co/storage/v1/object/public/audit-photos
	PublicBaseURL string
}

type Store struct {
	client putObjectAPI
	opts   Options
}

var _ objectstore.Store = (*Store)(nil)

func New(ctx context.Context, opts Options) (*Store, error) {
	if opts.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket is not configured")
	}

	loadOpts := []func(*config.LoadOptions) error{
		config.WithRegion(opts.Region),
	}
	if opts.AccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
		))
	}

	cfg, err := loadDefaultAWSConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("error loading aws config: %w", err)
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if opts.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(opts.BaseEndpoint)
			o.UsePathStyle = true
		}
	})

	return &Store{client: client, opts: opts}, nil
}

func (s *Store) Upload(ctx context.Context, path string, data []byte, contentType string) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.opts.Bucket),
		Key:           aws.String(path),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return fmt.Errorf("put object %s: %w", path, err)
	}
	return nil
}

func (s *Store) PublicURL(path string) string {
	switch {
	case s.opts.PublicBaseURL != "":
		return objectstore.JoinURL(s.opts.PublicBaseURL, path)
	case s.opts.BaseEndpoint != "":
		return objectstore.JoinURL(objectstore.JoinURL(s.opts.BaseEndpoint, s.opts.Bucket), path)
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.opts.Bucket, s.opts.Region, path)
	}
}
