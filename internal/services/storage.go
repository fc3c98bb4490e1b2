package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"vitrine/internal/ai"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// StorageConfig holds the S3 compatible object storage settings
type StorageConfig struct {
	Endpoint      string
	Region        string
	AccessKey     string
	SecretKey     string
	Bucket        string
	PublicBaseURL string
	DisableSSL    bool
}

// Enabled reports whether enough settings are present to upload
func (c StorageConfig) Enabled() bool {
	return c.AccessKey != "" && c.SecretKey != "" && c.Bucket != ""
}

// StorageService stores generated images in object storage
type StorageService struct {
	s3Client *s3.S3
	bucket   string
	baseURL  string
	now      func() time.Time
}

// NewStorageService creates a new storage service
func NewStorageService(cfg StorageConfig) (*StorageService, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("S3 configuration missing")
	}
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}

	awsConfig := &aws.Config{
		Region: aws.String(cfg.Region),
		Credentials: credentials.NewStaticCredentials(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		),
		DisableSSL:       aws.Bool(cfg.DisableSSL),
		S3ForcePathStyle: aws.Bool(true),
	}
	if cfg.Endpoint != "" {
		awsConfig.Endpoint = aws.String(cfg.Endpoint)
	}

	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	baseURL := cfg.PublicBaseURL
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s", cfg.Bucket)
	}

	return &StorageService{
		s3Client: s3.New(sess),
		bucket:   cfg.Bucket,
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		now:      time.Now,
	}, nil
}

// UploadGeneratedImage stores an image given as a data URI under folder and returns
// its public URL
func (s *StorageService) UploadGeneratedImage(ctx context.Context, dataURI, folder string) (string, error) {
	media, err := ai.ParseDataURI(dataURI)
	if err != nil {
		return "", fmt.Errorf("invalid image payload: %w", err)
	}
	if !strings.HasPrefix(media.MIMEType, "image/") {
		return "", fmt.Errorf("file is not an image: %s", media.MIMEType)
	}

	ext := ".bin"
	if m := mimetype.Lookup(media.MIMEType); m != nil {
		ext = m.Extension()
	}

	s3Key := fmt.Sprintf("%s/%s/%s%s", folder, s.now().UTC().Format("2006/01"), uuid.New().String(), ext)

	// Upload without ACL (bucket should have public access policy)
	_, err = s.s3Client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(s3Key),
		Body:          bytes.NewReader(media.Data),
		ContentType:   aws.String(media.MIMEType),
		ContentLength: aws.Int64(int64(len(media.Data))),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	publicURL := fmt.Sprintf("%s/%s", s.baseURL, s3Key)
	log.Ctx(ctx).Info().Str("key", s3Key).Int("bytes", len(media.Data)).Msg("Generated image uploaded")
	return publicURL, nil
}
