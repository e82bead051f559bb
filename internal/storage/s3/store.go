package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/ectormgl/SQLTranslator/internal/config"
	"github.com/ectormgl/SQLTranslator/internal/storage"
)

// bucket is the part of the object store API one export bucket needs.
type bucket interface {
	put(ctx context.Context, key string, body io.Reader, size int64) (int64, error)
	open(ctx context.Context, key string) (io.ReadCloser, error)
	ensure(ctx context.Context) error
}

// Store writes exports to exports/<session>/turn-<n>.parquet under an
// optional prefix.
type Store struct {
	bucket bucket
	prefix string
}

func New(ctx context.Context, cfg config.ObjectStoreConfig) (*Store, error) {
	b, err := dialBucket(cfg)
	if err != nil {
		return nil, err
	}
	store, err := newStore(b, cfg.Prefix)
	if err != nil {
		return nil, err
	}
	if cfg.AutoCreateBucket {
		if err := b.ensure(ctx); err != nil {
			return nil, err
		}
	}
	return store, nil
}

func newStore(b bucket, prefix string) (*Store, error) {
	cleaned, err := exportPrefix(prefix)
	if err != nil {
		return nil, err
	}
	return &Store{bucket: b, prefix: cleaned}, nil
}

func (s *Store) SaveExport(ctx context.Context, sessionID string, turn int, body io.Reader, size int64) (storage.Object, error) {
	key, err := s.exportKey(sessionID, turn)
	if err != nil {
		return storage.Object{}, err
	}
	written, err := s.bucket.put(ctx, key, body, size)
	if err != nil {
		return storage.Object{}, fmt.Errorf("upload export %s: %w", key, err)
	}
	return storage.Object{Key: key, Size: written}, nil
}

// OpenExport returns storage.ErrObjectNotFound when the turn was never exported.
func (s *Store) OpenExport(ctx context.Context, sessionID string, turn int) (io.ReadCloser, error) {
	key, err := s.exportKey(sessionID, turn)
	if err != nil {
		return nil, err
	}
	reader, err := s.bucket.open(ctx, key)
	switch {
	case errors.Is(err, storage.ErrObjectNotFound):
		return nil, storage.ErrObjectNotFound
	case err != nil:
		return nil, fmt.Errorf("download export %s: %w", key, err)
	}
	return reader, nil
}

func (s *Store) exportKey(sessionID string, turn int) (string, error) {
	key, err := storage.BuildExportPath(sessionID, turn)
	if err != nil {
		return "", err
	}
	return path.Join(s.prefix, key), nil
}

func exportPrefix(raw string) (string, error) {
	trimmed := strings.Trim(strings.TrimSpace(raw), "/")
	if trimmed == "" {
		return "", nil
	}
	cleaned := path.Clean(trimmed)
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("invalid export prefix %q", raw)
	}
	if cleaned == "." {
		return "", nil
	}
	return cleaned, nil
}

type minioBucket struct {
	client *minio.Client
	name   string
	region string
}

func dialBucket(cfg config.ObjectStoreConfig) (*minioBucket, error) {
	name := strings.TrimSpace(cfg.Bucket)
	if name == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}
	host, secure, err := splitEndpoint(cfg.Endpoint, cfg.UseSSL)
	if err != nil {
		return nil, err
	}
	region := strings.TrimSpace(cfg.Region)
	client, err := minio.New(host, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: secure,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("create s3 client: %w", err)
	}
	return &minioBucket{client: client, name: name, region: region}, nil
}

// splitEndpoint accepts host:port or a URL. An explicit scheme overrides useSSL.
func splitEndpoint(raw string, useSSL bool) (string, bool, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false, fmt.Errorf("s3 endpoint is required")
	}
	scheme, host, found := strings.Cut(raw, "://")
	if !found {
		return raw, useSSL, nil
	}
	host = strings.TrimSuffix(host, "/")
	if host == "" || strings.Contains(host, "/") {
		return "", false, fmt.Errorf("invalid s3 endpoint %q", raw)
	}
	switch strings.ToLower(scheme) {
	case "https":
		return host, true, nil
	case "http":
		return host, false, nil
	default:
		return "", false, fmt.Errorf("unsupported s3 endpoint scheme %q", scheme)
	}
}

func (b *minioBucket) put(ctx context.Context, key string, body io.Reader, size int64) (int64, error) {
	info, err := b.client.PutObject(ctx, b.name, key, body, size, minio.PutObjectOptions{ContentType: storage.ParquetContentType})
	if err != nil {
		return 0, missing(err)
	}
	return info.Size, nil
}

// open stats the object so a missing key fails here rather than on the first Read.
func (b *minioBucket) open(ctx context.Context, key string) (io.ReadCloser, error) {
	obj, err := b.client.GetObject(ctx, b.name, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, missing(err)
	}
	if _, err := obj.Stat(); err != nil {
		_ = obj.Close()
		return nil, missing(err)
	}
	return obj, nil
}

func (b *minioBucket) ensure(ctx context.Context) error {
	exists, err := b.client.BucketExists(ctx, b.name)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", b.name, err)
	}
	if exists {
		return nil
	}
	if err := b.client.MakeBucket(ctx, b.name, minio.MakeBucketOptions{Region: b.region}); err != nil {
		return fmt.Errorf("create bucket %s: %w", b.name, err)
	}
	return nil
}

func missing(err error) error {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NoSuchBucket", "NotFound":
		return storage.ErrObjectNotFound
	}
	return err
}
