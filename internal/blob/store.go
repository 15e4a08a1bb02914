// Package blob is the boundary to the namespaced object store. It assumes
// nothing beyond what the backend natively provides: no retries, no
// consistency guarantees, errors surface upward unchanged.
package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
)

// ErrNotFound signals that the target object does not exist.
var ErrNotFound = errors.New("object not found")

// ObjectInfo identifies one stored object.
type ObjectInfo struct {
	Path string
	Size int64
}

// ProgressFunc receives byte-level upload progress.
type ProgressFunc func(transferred, total int64)

// ObjectStore is the opaque blob-store contract used by the repository
// manager.
type ObjectStore interface {
	ListByPrefix(ctx context.Context, prefix string) ([]ObjectInfo, error)
	Upload(ctx context.Context, path string, reader io.Reader, size int64, progress ProgressFunc) error
	Metadata(ctx context.Context, path string) (map[string]string, error)
	SetMetadata(ctx context.Context, path string, md map[string]string) error
	DownloadRef(ctx context.Context, path string) (string, error)
	Remove(ctx context.Context, path string) error
}

// MinIOStore adapts minio.Client to the ObjectStore interface.
type MinIOStore struct {
	client     *minio.Client
	bucket     string
	presignTTL time.Duration
}

// NewMinIOStore constructs an adapter bound to one bucket.
func NewMinIOStore(client *minio.Client, bucket string, presignTTL time.Duration) *MinIOStore {
	return &MinIOStore{client: client, bucket: bucket, presignTTL: presignTTL}
}

func (s *MinIOStore) ListByPrefix(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	opts := minio.ListObjectsOptions{Prefix: prefix, Recursive: true}

	var objects []ObjectInfo
	for obj := range s.client.ListObjects(ctx, s.bucket, opts) {
		if obj.Err != nil {
			return nil, fmt.Errorf("list objects under %q: %w", prefix, obj.Err)
		}
		objects = append(objects, ObjectInfo{Path: obj.Key, Size: obj.Size})
	}
	return objects, nil
}

func (s *MinIOStore) Upload(ctx context.Context, path string, reader io.Reader, size int64, progress ProgressFunc) error {
	if progress != nil {
		reader = &progressReader{r: reader, total: size, report: progress}
	}

	_, err := s.client.PutObject(ctx, s.bucket, path, reader, size, minio.PutObjectOptions{})
	if err != nil {
		return fmt.Errorf("store object %q: %w", path, err)
	}
	return nil
}

func (s *MinIOStore) Metadata(ctx context.Context, path string) (map[string]string, error) {
	info, err := s.client.StatObject(ctx, s.bucket, path, minio.StatObjectOptions{})
	if err != nil {
		return nil, translateErr("stat object", path, err)
	}
	return info.UserMetadata, nil
}

// SetMetadata replaces the object's sidecar metadata via a same-key server
// side copy. This is a separate call from the byte upload and never atomic
// with it.
func (s *MinIOStore) SetMetadata(ctx context.Context, path string, md map[string]string) error {
	src := minio.CopySrcOptions{Bucket: s.bucket, Object: path}
	dst := minio.CopyDestOptions{
		Bucket:          s.bucket,
		Object:          path,
		UserMetadata:    md,
		ReplaceMetadata: true,
	}

	if _, err := s.client.CopyObject(ctx, dst, src); err != nil {
		return translateErr("set metadata on", path, err)
	}
	return nil
}

// DownloadRef derives a fresh presigned GET URL. References expire after the
// configured TTL, so callers re-derive rather than cache them.
func (s *MinIOStore) DownloadRef(ctx context.Context, path string) (string, error) {
	u, err := s.client.PresignedGetObject(ctx, s.bucket, path, s.presignTTL, nil)
	if err != nil {
		return "", fmt.Errorf("presign %q: %w", path, err)
	}
	return u.String(), nil
}

// Remove deletes the object. S3-style removes succeed silently on absent
// keys, so the object is stat'ed first to report ErrNotFound distinctly.
func (s *MinIOStore) Remove(ctx context.Context, path string) error {
	if _, err := s.client.StatObject(ctx, s.bucket, path, minio.StatObjectOptions{}); err != nil {
		return translateErr("stat object", path, err)
	}

	if err := s.client.RemoveObject(ctx, s.bucket, path, minio.RemoveObjectOptions{}); err != nil {
		return translateErr("remove object", path, err)
	}
	return nil
}

func translateErr(action, path string, err error) error {
	resp := minio.ToErrorResponse(err)
	if resp.Code == "NoSuchKey" || resp.StatusCode == 404 {
		return fmt.Errorf("%s %q: %w", action, path, ErrNotFound)
	}
	return fmt.Errorf("%s %q: %w", action, path, err)
}
