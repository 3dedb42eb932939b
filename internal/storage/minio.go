package storage

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/securedocs/securedocs/backend/go-services/internal/document"
)

// ContentStore is the external collaborator that turns a binary payload into a
// content reference. Objects are keyed by the SHA-256 of their bytes, so the
// returned ref is stable and re-uploads of identical content are idempotent.
type ContentStore struct {
	client *minio.Client
	bucket string
}

// NewContentStore creates a MinIO-backed content store and ensures the bucket
// exists.
func NewContentStore(cfg *MinIOConfig) (*ContentStore, error) {
	if cfg == nil || cfg.Endpoint == "" {
		return nil, fmt.Errorf("minio config missing")
	}
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio new: %w", err)
	}
	s := &ContentStore{client: mc, bucket: cfg.Bucket}
	// ensure bucket exists (idempotent)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := mc.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		exist, xerr := mc.BucketExists(ctx, s.bucket)
		if xerr != nil || !exist {
			return nil, fmt.Errorf("minio bucket ensure: %w", err)
		}
	}
	return s, nil
}

// Upload stores the payload and returns its content reference. The payload is
// buffered to compute the address before the put.
func (s *ContentStore) Upload(ctx context.Context, reader io.Reader, contentType string) (string, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("%w: %v", document.ErrUpload, err)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty payload", document.ErrUpload)
	}
	sum := sha256.Sum256(data)
	ref := hex.EncodeToString(sum[:])
	_, err = s.client.PutObject(ctx, s.bucket, ref, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("%w: %v", document.ErrUpload, err)
	}
	return ref, nil
}

// Download returns a ReadCloser for the stored content.
func (s *ContentStore) Download(ctx context.Context, contentRef string) (io.ReadCloser, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, contentRef, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	// stat to ensure the object exists
	if _, err := obj.Stat(); err != nil {
		obj.Close()
		return nil, err
	}
	return obj, nil
}

// PresignedURL returns a presigned GET URL for the content, valid for the
// given duration.
func (s *ContentStore) PresignedURL(ctx context.Context, contentRef string, expires time.Duration) (string, error) {
	reqParams := make(url.Values)
	presigned, err := s.client.PresignedGetObject(ctx, s.bucket, contentRef, expires, reqParams)
	if err != nil {
		return "", err
	}
	return presigned.String(), nil
}
