package media

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gofrs/uuid"

	"github.com/vasiliy-maslov/user-directory/internal/config"
)

const s3KeyPrefix = "profile-images/"

type s3PutAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3 stores images in a bucket and serves them through presigned GET URLs.
// Objects are stored as uploaded; width and height are not applied.
type S3 struct {
	client  s3PutAPI
	presign *s3.PresignClient
	bucket  string
	urlTTL  time.Duration
}

func NewS3(ctx context.Context, cfg config.S3Config) (*S3, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return newS3(client, s3.NewPresignClient(client), cfg.Bucket, cfg.URLTTL), nil
}

func newS3(client s3PutAPI, presign *s3.PresignClient, bucket string, urlTTL time.Duration) *S3 {
	return &S3{client: client, presign: presign, bucket: bucket, urlTTL: urlTTL}
}

func (s *S3) Upload(ctx context.Context, path string) (*UploadResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("s3: failed to open upload: %w", err)
	}
	defer f.Close()

	id, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("s3: failed to generate key: %w", err)
	}
	ext := filepath.Ext(path)
	key := s3KeyPrefix + id.String() + ext

	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   f,
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		input.ContentType = aws.String(ct)
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return nil, fmt.Errorf("s3: failed to put object: %w", err)
	}

	return &UploadResult{PublicID: key}, nil
}

func (s *S3) ImageURL(ctx context.Context, publicID string, _, _ int) (string, error) {
	if publicID == "" {
		return "", ErrEmptyPublicID
	}
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(publicID),
	}, s3.WithPresignExpires(s.urlTTL))
	if err != nil {
		return "", fmt.Errorf("s3: failed to presign url: %w", err)
	}
	return req.URL, nil
}
