package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/cppla/lostfound/config"
)

// ErrObjectNotFound is returned by Storage.Open for a missing name.
var ErrObjectNotFound = errors.New("object not found")

// Storage persists uploaded bytes under a flat name.
type Storage interface {
	Save(ctx context.Context, name string, r io.Reader, size int64, contentType string) error
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}

// LocalStorage writes into one directory, created on first save.
type LocalStorage struct {
	dir string
}

// NewLocalStorage returns a Storage rooted at dir.
func NewLocalStorage(dir string) *LocalStorage {
	return &LocalStorage{dir: dir}
}

// Save writes r to dir/name, removing a partial file on failure.
func (s *LocalStorage) Save(_ context.Context, name string, r io.Reader, _ int64, _ string) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create upload dir: %w", err)
	}
	dst := filepath.Join(s.dir, filepath.Base(name))
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	if _, err := io.Copy(out, r); err != nil {
		_ = out.Close()
		_ = os.Remove(dst)
		return fmt.Errorf("write %s: %w", name, err)
	}
	return out.Close()
}

// Open returns the stored file.
func (s *LocalStorage) Open(_ context.Context, name string) (io.ReadCloser, error) {
	f, err := os.Open(filepath.Join(s.dir, filepath.Base(name)))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrObjectNotFound
	}
	return f, err
}

// MinIOStorage keeps uploads in an S3 compatible bucket.
type MinIOStorage struct {
	cli    *minio.Client
	bucket string
}

// NewMinIOStorage connects and creates the bucket if it does not exist yet.
func NewMinIOStorage(ctx context.Context, conf config.MinIO) (*MinIOStorage, error) {
	cli, err := minio.New(conf.MinIOEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(conf.MinIOAccessKey, conf.MinIOSecretKey, ""),
		Secure: conf.MinIOUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio.New: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	exists, err := cli.BucketExists(ctx, conf.MinIOBucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", conf.MinIOBucket, err)
	}
	if !exists {
		if err := cli.MakeBucket(ctx, conf.MinIOBucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", conf.MinIOBucket, err)
		}
	}
	return &MinIOStorage{cli: cli, bucket: conf.MinIOBucket}, nil
}

// Save uploads r as object name.
func (s *MinIOStorage) Save(ctx context.Context, name string, r io.Reader, size int64, contentType string) error {
	_, err := s.cli.PutObject(ctx, s.bucket, name, r, size, minio.PutObjectOptions{ContentType: contentType})
	return err
}

// Open streams object name. The Stat call turns a missing key into ErrObjectNotFound
// before any bytes are written to the client.
func (s *MinIOStorage) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	obj, err := s.cli.GetObject(ctx, s.bucket, name, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	if _, err := obj.Stat(); err != nil {
		_ = obj.Close()
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, ErrObjectNotFound
		}
		return nil, err
	}
	return obj, nil
}

// NewStorage picks the backend named in the upload config.
func NewStorage(ctx context.Context, cfg config.AppConfig) (Storage, error) {
	switch cfg.UploadBackend {
	case "", "local":
		return NewLocalStorage(cfg.UploadDir), nil
	case "minio":
		return NewMinIOStorage(ctx, cfg.MinIO)
	default:
		return nil, fmt.Errorf("unknown upload backend %q", cfg.UploadBackend)
	}
}
