package filestorage

import (
	"context"
	"fmt"
	"mime/multipart"
	"net/url"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/yigit/admission/internal/pkg/logger"
)

// S3Config configures the S3 document store
type S3Config struct {
	Bucket          string
	Region          string
	Endpoint        string // optional, for S3-compatible stores
	AccessKeyID     string // optional; the default credential chain is used when empty
	SecretAccessKey string
	UsePathStyle    bool
	PresignTTL      time.Duration
}

// S3Storage stores documents in an S3 bucket and hands out presigned GET urls
type S3Storage struct {
	client    *s3.Client
	presigner *s3.PresignClient
	bucket    string
	baseURL   string
	host      string
	ttl       time.Duration
}

// NewS3Storage loads AWS configuration and builds the store
func NewS3Storage(ctx context.Context, cfg S3Config) (*S3Storage, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	return newS3Storage(client, cfg)
}

func newS3Storage(client *s3.Client, cfg S3Config) (*S3Storage, error) {
	baseURL := objectBaseURL(cfg)
	u, err := url.Parse(baseURL)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("invalid s3 object base url %q", baseURL)
	}

	ttl := cfg.PresignTTL
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}

	return &S3Storage{
		client:    client,
		presigner: s3.NewPresignClient(client),
		bucket:    cfg.Bucket,
		baseURL:   baseURL,
		host:      u.Host,
		ttl:       ttl,
	}, nil
}

// objectBaseURL is the prefix of every object url persisted for this bucket
func objectBaseURL(cfg S3Config) string {
	if cfg.Endpoint != "" {
		endpoint := strings.TrimRight(cfg.Endpoint, "/")
		if cfg.UsePathStyle {
			return endpoint + "/" + cfg.Bucket
		}
		if u, err := url.Parse(endpoint); err == nil && u.Host != "" {
			return u.Scheme + "://" + cfg.Bucket + "." + u.Host
		}
		return endpoint + "/" + cfg.Bucket
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
}

// Save uploads the file under folder with a random key
func (s *S3Storage) Save(ctx context.Context, fileHeader *multipart.FileHeader, folder string) (*FileInfo, error) {
	if fileHeader == nil {
		return nil, fmt.Errorf("no file provided")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer file.Close()

	key := path.Join(folder, uuid.New().String()+strings.ToLower(filepath.Ext(fileHeader.Filename)))
	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          file,
		ContentLength: aws.Int64(fileHeader.Size),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		logger.Error().Err(err).Str("bucket", s.bucket).Str("key", key).Msg("Failed to upload object")
		return nil, fmt.Errorf("failed to upload object: %w", err)
	}

	logger.Info().Str("filename", fileHeader.Filename).Str("key", key).Msg("Object uploaded")
	return &FileInfo{
		URL:      s.baseURL + "/" + key,
		Key:      key,
		Filename: fileHeader.Filename,
		FileSize: fileHeader.Size,
		MimeType: contentType,
	}, nil
}

// Delete removes the object behind fileURL
func (s *S3Storage) Delete(ctx context.Context, fileURL string) error {
	key, err := s.keyFromURL(fileURL)
	if err != nil {
		return err
	}
	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

// SignedURL presigns a GET for the object behind fileURL
func (s *S3Storage) SignedURL(ctx context.Context, fileURL string) (string, error) {
	key, err := s.keyFromURL(fileURL)
	if err != nil {
		return "", err
	}

	req, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.ttl))
	if err != nil {
		return "", fmt.Errorf("failed to presign object: %w", err)
	}
	return req.URL, nil
}

// TrustedHost is the bucket's object host
func (s *S3Storage) TrustedHost() string {
	return s.host
}

func (s *S3Storage) keyFromURL(fileURL string) (string, error) {
	if !strings.HasPrefix(fileURL, s.baseURL+"/") {
		return "", fmt.Errorf("file url %q is not in bucket %s", fileURL, s.bucket)
	}
	raw := strings.TrimPrefix(fileURL, s.baseURL+"/")
	if i := strings.IndexAny(raw, "?#"); i >= 0 {
		raw = raw[:i]
	}
	key, err := url.PathUnescape(raw)
	if err != nil || key == "" {
		return "", fmt.Errorf("invalid object url %q", fileURL)
	}
	return key, nil
}
