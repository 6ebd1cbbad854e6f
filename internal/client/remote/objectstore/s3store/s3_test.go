package s3store

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	in   *s3.PutObjectInput
	body []byte
	err  error
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.in = in
	f.body, _ = io.ReadAll(in.Body)
	if f.err != nil {
		return nil, f.err
	}
	return &s3.PutObjectOutput{}, nil
}

func stubSeams(t *testing.T, fake *fakeS3, loadErr error) *s3.Options {
	t.Helper()
	origLoad := loadDefaultAWSConfig
	origNew := newS3ClientFromConfig
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		newS3ClientFromConfig = origNew
	})

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		var lo awsconfig.LoadOptions
		for _, fn := range optFns {
			require.NoError(t, fn(&lo))
		}
		if loadErr != nil {
			return aws.Config{}, loadErr
		}
		return aws.Config{Region: lo.Region}, nil
	}

	var opts s3.Options
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) putObjectAPI {
		for _, fn := range optFns {
			fn(&opts)
		}
		return fake
	}
	return &opts
}

func TestNew_AppliesEndpointAndPathStyle(t *testing.T) {
	fake := &fakeS3{}
	opts := stubSeams(t, fake, nil)

	_, err := New(context.Background(), Options{
		AccessKey: "minioadmin", SecretKey: "minioadmin",
		Bucket: "audit-photos", Region: "us-east-1",
		BaseEndpoint: "http://127.0.0.1:9000",
	})
	require.NoError(t, err)
	require.NotNil(t, opts.BaseEndpoint)
	assert.Equal(t, "http://127.0.0.1:9000", *opts.BaseEndpoint)
	assert.True(t, opts.UsePathStyle)
}

func TestNew_Errors(t *testing.T) {
	_, err := New(context.Background(), Options{})
	require.Error(t, err)

	stubSeams(t, &fakeS3{}, errors.New("no creds"))
	_, err = New(context.Background(), Options{Bucket: "b"})
	require.Error(t, err)
}

func TestUpload_SendsBodyAndContentType(t *testing.T) {
	fake := &fakeS3{}
	stubSeams(t, fake, nil)

	s, err := New(context.Background(), Options{Bucket: "audit-photos", Region: "eu-west-1"})
	require.NoError(t, err)

	require.NoError(t, s.Upload(context.Background(), "damage-photos/1.png", []byte("png!"), "image/png"))
	assert.Equal(t, "audit-photos", aws.ToString(fake.in.Bucket))
	assert.Equal(t, "damage-photos/1.png", aws.ToString(fake.in.Key))
	assert.Equal(t, "image/png", aws.ToString(fake.in.ContentType))
	assert.Equal(t, []byte("png!"), fake.body)
}

func TestUpload_Error(t *testing.T) {
	fake := &fakeS3{err: errors.New("503")}
	stubSeams(t, fake, nil)

	s, err := New(context.Background(), Options{Bucket: "b"})
	require.NoError(t, err)
	require.Error(t, s.Upload(context.Background(), "k", []byte("x"), "image/jpeg"))
}

func TestPublicURL(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want string
	}{
		{"public base", Options{Bucket: "b", PublicBaseURL: "https://p.supabase.co/storage/v1/object/public/audit-photos/"},
			"https://p.supabase.co/storage/v1/object/public/audit-photos/damage-photos/1.jpg"},
		{"endpoint", Options{Bucket: "b", BaseEndpoint: "http://minio:9000"}, "http://minio:9000/b/damage-photos/1.jpg"},
		{"aws", Options{Bucket: "b", Region: "us-east-1"}, "https://b.s3.us-east-1.amazonaws.com/damage-photos/1.jpg"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Store{opts: tt.opts}
			assert.Equal(t, tt.want, s.PublicURL("damage-photos/1.jpg"))
		})
	}
}
