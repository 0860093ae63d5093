package storage

import (
	"context"
	"fmt"
	"log"
	"mime/multipart"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	// PublicURL overrides the scheme://endpoint/bucket prefix in returned URLs.
	PublicURL string
}

// MinioStore keeps images in an S3 compatible bucket.
type MinioStore struct {
	client *minio.Client
	bucket string
	prefix string
}

func NewMinioStore(ctx context.Context, cfg MinioConfig) (*MinioStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, err
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("minio bucket check: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("minio make bucket: %w", err)
		}
		log.Println("[UPLOAD] created bucket:", cfg.Bucket)
	}

	log.Println("[UPLOAD] minio connected:", cfg.Endpoint)
	return &MinioStore{client: client, bucket: cfg.Bucket, prefix: publicPrefix(cfg)}, nil
}

func publicPrefix(cfg MinioConfig) string {
	if cfg.PublicURL != "" {
		return strings.TrimRight(cfg.PublicURL, "/") + "/"
	}
	scheme := "http"
	if cfg.UseSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/", scheme, cfg.Endpoint, cfg.Bucket)
}

func (s *MinioStore) Save(ctx context.Context, file *multipart.FileHeader) (string, error) {
	name, contentType, err := objectName(file)
	if err != nil {
		return "", err
	}

	f, err := file.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()

	if _, err := s.client.PutObject(ctx, s.bucket, name, f, file.Size,
		minio.PutObjectOptions{ContentType: contentType}); err != nil {
		log.Printf("[UPLOAD] minio put %s failed: %v", name, err)
		return "", err
	}
	return s.prefix + name, nil
}

func (s *MinioStore) Delete(ctx context.Context, url string) error {
	key, ok := objectKey(s.prefix, url)
	if !ok {
		return ErrForeignImage
	}
	return s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{})
}

func objectKey(prefix, url string) (string, bool) {
	key, ok := strings.CutPrefix(strings.TrimSpace(url), prefix)
	if !ok || key == "" || strings.Contains(key, "..") {
		return "", false
	}
	return key, true
}
