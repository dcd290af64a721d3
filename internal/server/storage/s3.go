package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/google/uuid"

	"github.com/dmitrijs2005/geophoto/internal/common"
	sc "github.com/dmitrijs2005/geophoto/internal/server/config"
)

const (
	photoContentType = "image/jpeg"
	// Objects are immutable once written, so a week-long public cache is safe.
	photoCacheControl = "public, max-age=604800"
)

// s3API is the subset of the S3 client used by S3Store, extracted so tests
// can substitute a fake.
type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Store stores photo blobs in an S3-compatible bucket. Keys are scoped by
// owner and suffixed with a fresh UUID, so collisions are negligible and an
// object is never overwritten.
type S3Store struct {
	client  s3API
	bucket  string
	baseURL string
}

// NewS3Store builds an S3 client from static credentials and a base endpoint
// (minio-style deployments included) and returns a store bound to the
// configured bucket.
func NewS3Store(ctx context.Context, cfg *sc.Config) (*S3Store, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3RootUser,
			cfg.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("aws config error: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.S3BaseEndpoint)
		o.UsePathStyle = true
	})

	return &S3Store{
		client:  client,
		bucket:  cfg.S3Bucket,
		baseURL: strings.TrimRight(cfg.S3BaseEndpoint, "/"),
	}, nil
}

func (s *S3Store) Put(ctx context.Context, data []byte, ownerID string) (string, string, error) {
	key := fmt.Sprintf("%s/%s.jpg", ownerID, uuid.New())

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(s.bucket),
		Key:          aws.String(key),
		Body:         bytes.NewReader(data),
		ContentType:  aws.String(photoContentType),
		CacheControl: aws.String(photoCacheControl),
	})
	if err != nil {
		return "", "", fmt.Errorf("%w: put %s: %v", common.ErrStoreUnavailable, key, err)
	}

	return key, s.PublicURL(key), nil
}

// Delete removes the object under key. A missing key is treated as
// already-deleted success; any other failure is reported as the store being
// unavailable.
func (s *S3Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) {
			switch apiErr.ErrorCode() {
			case "NoSuchKey", "NotFound":
				return nil
			}
		}
		return fmt.Errorf("%w: delete %s: %v", common.ErrStoreUnavailable, key, err)
	}
	return nil
}

// PublicURL derives the long-lived public URL for a stored key.
func (s *S3Store) PublicURL(key string) string {
	return fmt.Sprintf("%s/%s/%s", s.baseURL, s.bucket, key)
}
