package service

import (
	"context"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"bootcamp_backend/internal/config"
	"bootcamp_backend/internal/util"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// StorageProvider is the object storage boundary. Handles (object names)
// are opaque to the workflow: it only persists and forwards them.
type StorageProvider interface {
	Upload(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) (string, error)
	SignedURL(ctx context.Context, objectName string, expiry time.Duration) (string, error)
	Delete(ctx context.Context, objectName string) error
}

// LocalStorageProvider keeps objects on disk; used for development and as
// fallback when no MinIO endpoint is configured.
type LocalStorageProvider struct {
	Config *config.StorageConfig
}

func (p *LocalStorageProvider) Upload(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) (string, error) {
	dst := filepath.Join(p.Config.LocalPath, objectName)
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return "", err
	}

	out, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	defer out.Close()

	if _, err = io.Copy(out, reader); err != nil {
		return "", err
	}

	return "/uploads/" + objectName, nil
}

func (p *LocalStorageProvider) SignedURL(ctx context.Context, objectName string, expiry time.Duration) (string, error) {
	// Local files are served directly; there is nothing to sign.
	return "/uploads/" + objectName, nil
}

func (p *LocalStorageProvider) Delete(ctx context.Context, objectName string) error {
	return os.Remove(filepath.Join(p.Config.LocalPath, objectName))
}

// MinioStorageProvider stores submissions in a MinIO bucket and hands out
// short-lived presigned download URLs.
type MinioStorageProvider struct {
	Config *config.StorageConfig
	Client *minio.Client
}

func NewMinioStorageProvider(cfg *config.StorageConfig) (*MinioStorageProvider, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessID, cfg.MinioSecret, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, err
	}
	return &MinioStorageProvider{Config: cfg, Client: client}, nil
}

func (p *MinioStorageProvider) Upload(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) (string, error) {
	_, err := p.Client.PutObject(ctx, p.Config.MinioBucket, objectName, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", err
	}
	return "/" + p.Config.MinioBucket + "/" + objectName, nil
}

func (p *MinioStorageProvider) SignedURL(ctx context.Context, objectName string, expiry time.Duration) (string, error) {
	signed, err := p.Client.PresignedGetObject(ctx, p.Config.MinioBucket, objectName, expiry, url.Values{})
	if err != nil {
		return "", err
	}
	return signed.String(), nil
}

func (p *MinioStorageProvider) Delete(ctx context.Context, objectName string) error {
	return p.Client.RemoveObject(ctx, p.Config.MinioBucket, objectName, minio.RemoveObjectOptions{})
}

// StorageService wraps the configured provider and translates failures
// into StorageError so callers can tell a collaborator fault from a
// workflow fault.
type StorageService struct {
	Provider StorageProvider
	Bucket   string
}

func NewStorageService(cfg *config.Config) *StorageService {
	var provider StorageProvider
	if cfg.Storage.Type == "minio" {
		p, err := NewMinioStorageProvider(&cfg.Storage)
		if err == nil {
			provider = p
		}
	}
	if provider == nil {
		provider = &LocalStorageProvider{Config: &cfg.Storage}
	}

	return &StorageService{Provider: provider, Bucket: cfg.Storage.MinioBucket}
}

func (s *StorageService) Upload(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) (string, error) {
	u, err := s.Provider.Upload(ctx, objectName, reader, size, contentType)
	if err != nil {
		return "", &util.StorageError{Op: "upload", Err: err}
	}
	return u, nil
}

func (s *StorageService) SignedURL(ctx context.Context, objectName string, expiry time.Duration) (string, error) {
	u, err := s.Provider.SignedURL(ctx, objectName, expiry)
	if err != nil {
		return "", &util.StorageError{Op: "sign", Err: err}
	}
	return u, nil
}

func (s *StorageService) Delete(ctx context.Context, objectName string) error {
	if err := s.Provider.Delete(ctx, objectName); err != nil {
		return &util.StorageError{Op: "delete", Err: err}
	}
	return nil
}
