package source

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/leapstack-labs/leapviz/pkg/core"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ObjectStoreConfig holds S3-compatible connection settings.
type ObjectStoreConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Region    string
}

// ObjectGetter opens objects by bucket and key.
type ObjectGetter interface {
	GetObject(ctx context.Context, bucket, key string) (io.ReadCloser, error)
}

// ObjectStore reads import files from an S3-compatible bucket.
type ObjectStore struct {
	client *minio.Client
}

// NewObjectStore connects to the configured endpoint.
func NewObjectStore(cfg ObjectStoreConfig) (*ObjectStore, error) {
	if cfg.Endpoint == "" {
		return nil, core.InvalidArgumentf("object_store.endpoint is not configured")
	}
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}
	return &ObjectStore{client: mc}, nil
}

// GetObject opens bucket/key for reading. Missing objects are NotFound.
func (s *ObjectStore) GetObject(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	if _, err := s.client.StatObject(ctx, bucket, key, minio.StatObjectOptions{}); err != nil {
		errResp := minio.ToErrorResponse(err)
		if errResp.Code == "NoSuchKey" || errResp.Code == "NoSuchBucket" || errResp.Code == "NotFound" {
			return nil, core.NotFoundf("object s3://%s/%s not found", bucket, key)
		}
		return nil, fmt.Errorf("failed to stat s3://%s/%s: %w", bucket, key, err)
	}

	obj, err := s.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get s3://%s/%s: %w", bucket, key, err)
	}
	return obj, nil
}

// IsObjectURL reports whether location names an s3:// object.
func IsObjectURL(location string) bool {
	return strings.HasPrefix(location, "s3://")
}

// ParseObjectURL splits s3://bucket/key.
func ParseObjectURL(location string) (bucket, key string, err error) {
	u, err := url.Parse(location)
	if err != nil || u.Scheme != "s3" {
		return "", "", core.InvalidArgumentf("invalid object URL %q", location)
	}
	key = strings.TrimPrefix(u.Path, "/")
	if u.Host == "" || key == "" {
		return "", "", core.InvalidArgumentf("object URL %q must be s3://bucket/key", location)
	}
	return u.Host, key, nil
}
