// Package objectstore stores avatar and cover images in an S3 compatible bucket.
package objectstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/SscSPs/user_accounts_service/internal/apperrors"
	"github.com/SscSPs/user_accounts_service/internal/core/domain"
	portssvc "github.com/SscSPs/user_accounts_service/internal/core/ports/services"
	appconfig "github.com/SscSPs/user_accounts_service/internal/platform/config"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// objectAPI is the subset of *s3.Client the store uses.
type objectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// MediaStore implements portssvc.MediaStore on top of S3.
type MediaStore struct {
	client  objectAPI
	bucket  string
	baseURL string
}

var _ portssvc.MediaStore = (*MediaStore)(nil)

// NewMediaStore builds an S3 client from cfg. Static credentials and a custom endpoint
// are used when configured, which is how MinIO is reached in development.
func NewMediaStore(ctx context.Context, cfg *appconfig.Config) (*MediaStore, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.S3Region),
	}
	if cfg.S3AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3BaseEndpoint)
			o.UsePathStyle = true
		}
	})

	return newMediaStore(client, cfg.S3Bucket, publicBaseURL(cfg)), nil
}

func newMediaStore(client objectAPI, bucket, baseURL string) *MediaStore {
	return &MediaStore{
		client:  client,
		bucket:  bucket,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// Upload stores the image under <kind>/<uuid><ext> and returns its public URL.
func (m *MediaStore) Upload(ctx context.Context, kind domain.MediaKind, upload *domain.MediaUpload) (string, error) {
	if upload == nil || upload.Body == nil {
		return "", apperrors.Invalid(string(kind), string(kind)+" file is missing")
	}

	body, err := io.ReadAll(upload.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read %s upload: %w", kind, err)
	}
	if len(body) == 0 {
		return "", apperrors.Invalid(string(kind), string(kind)+" file is empty")
	}

	contentType := upload.ContentType
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(body)
	}
	if !strings.HasPrefix(contentType, "image/") {
		return "", apperrors.Invalid(string(kind), string(kind)+" must be an image")
	}

	key := objectKey(kind, upload.Filename)
	_, err = m.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(m.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentLength: aws.Int64(int64(len(body))),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("%w: put %s: %w", apperrors.ErrMediaStoreUnavailable, key, err)
	}

	return m.baseURL + "/" + key, nil
}

// Delete removes the object behind url. URLs that do not belong to this store are ignored.
func (m *MediaStore) Delete(ctx context.Context, url string) error {
	key, ok := m.keyFromURL(url)
	if !ok {
		return nil
	}
	_, err := m.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(m.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("%w: delete %s: %w", apperrors.ErrMediaStoreUnavailable, key, err)
	}
	return nil
}

func (m *MediaStore) keyFromURL(url string) (string, bool) {
	prefix := m.baseURL + "/"
	if !strings.HasPrefix(url, prefix) {
		return "", false
	}
	key := strings.TrimPrefix(url, prefix)
	return key, key != ""
}

func objectKey(kind domain.MediaKind, filename string) string {
	ext := strings.ToLower(path.Ext(path.Base(filename)))
	if len(ext) > 8 {
		ext = ""
	}
	return string(kind) + "/" + uuid.NewString() + ext
}

func publicBaseURL(cfg *appconfig.Config) string {
	switch {
	case cfg.S3PublicBaseURL != "":
		return cfg.S3PublicBaseURL
	case cfg.S3BaseEndpoint != "":
		return strings.TrimRight(cfg.S3BaseEndpoint, "/") + "/" + cfg.S3Bucket
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.S3Bucket, cfg.S3Region)
	}
}
