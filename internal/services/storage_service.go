package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"estatehub/internal/common"
	"estatehub/internal/config"
	"estatehub/internal/models"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// StorageService stores blobs in S3-compatible object storage and hands out stable URLs.
type StorageService interface {
	Upload(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, contentType string) (string, error)
	UploadFile(ctx context.Context, bucketName, objectName string, file models.FileUpload) (string, error)
	PresignedURL(ctx context.Context, bucketName, objectName string, expiry time.Duration) (string, error)
	Delete(ctx context.Context, bucketName, objectName string) error
	EnsureBucketExists(ctx context.Context, bucketName string) error
	AllowPublicRead(ctx context.Context, bucketName string) error
	ObjectURL(bucketName, objectName string) string
	Ping(ctx context.Context, bucketName string) error
}

type minioStorage struct {
	client  *minio.Client
	baseURL string
}

func NewStorageService(cfg config.StorageConfig) (StorageService, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, err
	}
	return &minioStorage{client: client, baseURL: publicBaseURL(cfg)}, nil
}

func publicBaseURL(cfg config.StorageConfig) string {
	if cfg.PublicBaseURL != "" {
		return strings.TrimRight(cfg.PublicBaseURL, "/")
	}
	scheme := "http"
	if cfg.UseSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s", scheme, cfg.Endpoint)
}

func (m *minioStorage) Upload(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, contentType string) (string, error) {
	_, err := m.client.PutObject(ctx, bucketName, objectName, reader, objectSize, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", common.WrapError(common.CodeStorage, "failed to store object", err)
	}
	return m.ObjectURL(bucketName, objectName), nil
}

func (m *minioStorage) UploadFile(ctx context.Context, bucketName, objectName string, file models.FileUpload) (string, error) {
	return m.Upload(ctx, bucketName, objectName, bytes.NewReader(file.Data), int64(len(file.Data)), DetectContentType(file))
}

func (m *minioStorage) PresignedURL(ctx context.Context, bucketName, objectName string, expiry time.Duration) (string, error) {
	u, err := m.client.PresignedGetObject(ctx, bucketName, objectName, expiry, nil)
	if err != nil {
		return "", common.WrapError(common.CodeStorage, "failed to presign object", err)
	}
	return u.String(), nil
}

func (m *minioStorage) Delete(ctx context.Context, bucketName, objectName string) error {
	if err := m.client.RemoveObject(ctx, bucketName, objectName, minio.RemoveObjectOptions{}); err != nil {
		return common.WrapError(common.CodeStorage, "failed to remove object", err)
	}
	return nil
}

func (m *minioStorage) EnsureBucketExists(ctx context.Context, bucketName string) error {
	found, err := m.client.BucketExists(ctx, bucketName)
	if err != nil {
		return err
	}
	if !found {
		return m.client.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{})
	}
	return nil
}

// AllowPublicRead lets anonymous clients GET objects in the bucket. Listing stays private.
func (m *minioStorage) AllowPublicRead(ctx context.Context, bucketName string) error {
	if err := m.client.SetBucketPolicy(ctx, bucketName, publicReadPolicy(bucketName)); err != nil {
		return common.WrapError(common.CodeStorage, "failed to set bucket policy", err)
	}
	return nil
}

func publicReadPolicy(bucketName string) string {
	return fmt.Sprintf(`{"Version":"2012-10-17","Statement":[{"Effect":"Allow","Principal":{"AWS":["*"]},"Action":["s3:GetObject"],"Resource":["arn:aws:s3:::%s/*"]}]}`, bucketName)
}

// ObjectURL is stable across re-uploads of the same object name.
func (m *minioStorage) ObjectURL(bucketName, objectName string) string {
	return objectURL(m.baseURL, bucketName, objectName)
}

func (m *minioStorage) Ping(ctx context.Context, bucketName string) error {
	_, err := m.client.BucketExists(ctx, bucketName)
	return err
}

func objectURL(baseURL, bucketName, objectName string) string {
	u, err := url.Parse(baseURL)
	if err != nil {
		return baseURL + "/" + bucketName + "/" + objectName
	}
	u.Path = path.Join(u.Path, bucketName, objectName)
	return u.String()
}

// DetectContentType prefers the declared type and falls back to sniffing the bytes.
func DetectContentType(file models.FileUpload) string {
	if file.ContentType != "" && file.ContentType != "application/octet-stream" {
		return file.ContentType
	}
	return http.DetectContentType(file.Data)
}

var allowedImageTypes = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/webp":      ".webp",
	"application/pdf": ".pdf",
}

// imageExtension validates an uploaded document and returns its object extension.
func imageExtension(file models.FileUpload, field string, maxSize int64) (string, error) {
	if len(file.Data) == 0 {
		return "", common.NewValidationError(field, "file is empty")
	}
	if int64(len(file.Data)) > maxSize {
		return "", common.NewValidationError(field, fmt.Sprintf("file exceeds %d bytes", maxSize))
	}
	ext, ok := allowedImageTypes[http.DetectContentType(file.Data)]
	if !ok {
		return "", common.NewValidationError(field, "file must be a JPEG, PNG, WebP or PDF")
	}
	return ext, nil
}
