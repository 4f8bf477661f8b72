// storage/r2.go
package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

type R2Options struct {
	AccountID       string
	AccessKeyID     string
	AccessKeySecret string
	Bucket          string
	CDNBaseURL      string
	// Endpoint overrides the Cloudflare endpoint, e.g. for MinIO.
	Endpoint string
}

// R2Store keeps every logical bucket as a key prefix inside one R2 bucket.
type R2Store struct {
	client     *s3.Client
	bucket     string
	cdnBaseURL string
}

func NewR2(ctx context.Context, opts R2Options) (*R2Store, error) {
	if opts.Bucket == "" {
		return nil, fmt.Errorf("R2_BUCKET_NAME is required")
	}
	endpoint := opts.Endpoint
	if endpoint == "" {
		endpoint = fmt.Sprintf("https://%s.r2.cloudflarestorage.com", opts.AccountID)
	}
	cdnBaseURL := opts.CDNBaseURL
	if cdnBaseURL == "" {
		cdnBaseURL = endpoint + "/" + opts.Bucket
	}

	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion("auto"),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			opts.AccessKeyID, opts.AccessKeySecret, "",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load R2 config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	})

	return &R2Store{client: client, bucket: opts.Bucket, cdnBaseURL: cdnBaseURL}, nil
}

func (s *R2Store) objectKey(bucket, key string) (string, error) {
	key, err := cleanKey(key)
	if err != nil {
		return "", err
	}
	return bucket + "/" + key, nil
}

// Upload buffers body so the SDK can sign a seekable payload.
func (s *R2Store) Upload(ctx context.Context, bucket, key string, body io.Reader, contentType string) error {
	objKey, err := s.objectKey(bucket, key)
	if err != nil {
		return err
	}

	buf := new(bytes.Buffer)
	if _, err := io.Copy(buf, body); err != nil {
		return fmt.Errorf("failed to read upload: %w", err)
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(objKey),
		Body:          bytes.NewReader(buf.Bytes()),
		ContentLength: aws.Int64(int64(buf.Len())),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to upload to R2: %w", err)
	}
	return nil
}

func (s *R2Store) PublicURL(bucket, key string) string {
	return fmt.Sprintf("%s/%s/%s", s.cdnBaseURL, bucket, key)
}

func (s *R2Store) Remove(ctx context.Context, bucket string, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	objects := make([]types.ObjectIdentifier, 0, len(keys))
	for _, k := range keys {
		objKey, err := s.objectKey(bucket, k)
		if err != nil {
			return err
		}
		objects = append(objects, types.ObjectIdentifier{Key: aws.String(objKey)})
	}

	_, err := s.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
		Bucket: aws.String(s.bucket),
		Delete: &types.Delete{Objects: objects, Quiet: aws.Bool(true)},
	})
	if err != nil {
		return fmt.Errorf("failed to remove from R2: %w", err)
	}
	return nil
}
