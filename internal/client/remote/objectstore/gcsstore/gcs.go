// Package gcsstore uploads photos to Google Cloud Storage.
package gcsstore

import (
	"context"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	"github.com/dmitrijs2005/rackaudit/internal/client/remote/objectstore"
	"google.golang.org/api/option"
)

var newStorageClient = func(ctx context.Context, opts ...option.ClientOption) (*storage.Client, error) {
	return storage.NewClient(ctx, opts...)
}

type Options struct {
	Bucket          string
	CredentialsFile string
	PublicBaseURL   string
}

type Store struct {
	opts      Options
	newWriter func(ctx context.Context, object, contentType string) io.WriteCloser
	close     func() error
}

var _ objectstore.Store = (*Store)(nil)

func New(ctx context.Context, opts Options) (*Store, error) {
	if opts.Bucket == "" {
		return nil, fmt.Errorf("gcs bucket is not configured")
	}

	var clientOpts []option.ClientOption
	if opts.CredentialsFile != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(opts.CredentialsFile))
	}

	client, err := newStorageClient(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("error creating gcs client: %w", err)
	}

	bucket := client.Bucket(opts.Bucket)
	return &Store{
		opts: opts,
		newWriter: func(ctx context.Context, object, contentType string) io.WriteCloser {
			w := bucket.Object(object).NewWriter(ctx)
			w.ContentType = contentType
			return w
		},
		close: client.Close,
	}, nil
}

func (s *Store) Upload(ctx context.Context, path string, data []byte, contentType string) error {
	w := s.newWriter(ctx, path, contentType)
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return fmt.Errorf("write object %s: %w", path, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalize object %s: %w", path, err)
	}
	return nil
}

func (s *Store) PublicURL(path string) string {
	base := s.opts.PublicBaseURL
	if base == "" {
		base = "https://storage.googleapis.com/" + s.opts.Bucket
	}
	return objectstore.JoinURL(base, path)
}

func (s *Store) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}
