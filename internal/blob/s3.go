package blob

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"

	"github.com/prn-tf/bookworm-api/internal/pkg/crypto"
)

// S3Config holds S3 backend settings.
type S3Config struct {
	// Endpoint overrides the S3 endpoint (for MinIO and compatible stores).
	// Leave empty for AWS.
	Endpoint string

	// Region is the bucket region.
	Region string

	// Bucket is the bucket images are stored in.
	Bucket string

	// KeyPrefix is prepended to object keys (default "books").
	KeyPrefix string

	// AccessKeyID and SecretAccessKey are static credentials. When empty
	// the default AWS credential chain is used.
	AccessKeyID     string
	SecretAccessKey string

	// PublicBaseURL is the prefix of publicly reachable object URLs.
	// When empty, URLs are built from the endpoint and bucket.
	PublicBaseURL string

	// UsePathStyle forces path-style addressing (required by MinIO).
	UsePathStyle bool
}

// S3Store stores images in an S3-compatible bucket, content-addressed by
// their SHA-256 hash.
type S3Store struct {
	client *s3.Client
	cfg    S3Config
	logger zerolog.Logger
}

// NewS3Store creates an S3-backed blob store and its client.
func NewS3Store(ctx context.Context, cfg S3Config, logger zerolog.Logger) (*S3Store, error) {
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = "books"
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}

	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	if cfg.Endpoint != "" {
		resolver := aws.EndpointResolverWithOptionsFunc(
			func(service, region string, options ...interface{}) (aws.Endpoint, error) {
				return aws.Endpoint{
					URL:               cfg.Endpoint,
					HostnameImmutable: true,
					SigningRegion:     cfg.Region,
				}, nil
			},
		)
		opts = append(opts, awsconfig.WithEndpointResolverWithOptions(resolver))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
	})

	logger.Info().
		Str("bucket", cfg.Bucket).
		Str("region", cfg.Region).
		Msg("S3 blob store initialized")

	return &S3Store{
		client: client,
		cfg:    cfg,
		logger: logger.With().Str("blob", "s3").Logger(),
	}, nil
}

// Upload puts the payload into the bucket under its content hash.
func (s *S3Store) Upload(ctx context.Context, data []byte, contentType string) (*Upload, error) {
	hash := crypto.ComputeSHA256(data)
	key := s.objectKey(hash)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	s.logger.Debug().Str("key", key).Int("size", len(data)).Msg("image stored")

	return &Upload{
		URL:    s.publicURL(key),
		Handle: hash,
	}, nil
}

// Delete removes the object for the given handle.
func (s *S3Store) Delete(ctx context.Context, handle string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(s.objectKey(handle)),
	})
	if err != nil {
		return fmt.Errorf("failed to delete blob: %w", err)
	}
	return nil
}

// objectKey builds the bucket key for a content hash.
func (s *S3Store) objectKey(hash string) string {
	return s.cfg.KeyPrefix + "/" + hash
}

// publicURL builds the publicly reachable URL for a key.
func (s *S3Store) publicURL(key string) string {
	if s.cfg.PublicBaseURL != "" {
		return strings.TrimSuffix(s.cfg.PublicBaseURL, "/") + "/" + key
	}
	if s.cfg.Endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", strings.TrimSuffix(s.cfg.Endpoint, "/"), s.cfg.Bucket, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.cfg.Bucket, s.cfg.Region, key)
}

// Ensure S3Store implements Store.
var _ Store = (*S3Store)(nil)
