package corpus

import (
	"context"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/Adithya-Monish-Kumar-K/citation-index/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/citation-index/pkg/errors"
)

// ObjectSource reads a JSONL object, optionally compressed, from an
// S3-compatible bucket.
type ObjectSource struct {
	client *minio.Client
	bucket string
	key    string
}

// NewObjectClient connects to the configured object store.
func NewObjectClient(cfg config.ObjectStoreConfig) (*minio.Client, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.Secure,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("creating object store client: %w", err)
	}
	return client, nil
}

func NewObjectSource(client *minio.Client, bucket, key string) *ObjectSource {
	return &ObjectSource{client: client, bucket: bucket, key: key}
}

func (s *ObjectSource) Each(ctx context.Context, fn func(Document) error) error {
	obj, err := s.client.GetObject(ctx, s.bucket, s.key, minio.GetObjectOptions{})
	if err != nil {
		return fmt.Errorf("%w: getting object %s/%s: %w", apperrors.ErrUnavailable, s.bucket, s.key, err)
	}
	defer obj.Close()
	if _, err := obj.Stat(); err != nil {
		return fmt.Errorf("%w: object %s/%s: %w", apperrors.ErrUnavailable, s.bucket, s.key, err)
	}

	rc, err := Decompress(obj, s.key)
	if err != nil {
		return fmt.Errorf("object %s/%s: %w", s.bucket, s.key, err)
	}
	defer rc.Close()
	return eachLine(ctx, rc, s.bucket+"/"+s.key, fn)
}
