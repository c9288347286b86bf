package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"medinfo-backend/internal/config"
	"medinfo-backend/pkg/logger"
)

// thumbnailSize bounds the derived thumbnail stored next to every
// uploaded image.
const thumbnailSize = 320

// allowedFileTypes is the extension allow-list for document uploads.
// Anything else is rejected before touching the bucket.
var allowedFileTypes = map[string]string{
	".pdf":  "application/pdf",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// MinIOStorage handles binary asset uploads to MinIO.
type MinIOStorage struct {
	client    *minio.Client
	bucket    string
	processor *ImageProcessor
}

// NewMinIOStorage creates the client and makes sure the bucket exists.
// Configured once at process start; the client is shared by reference
// afterwards and never reconfigured.
func NewMinIOStorage(cfg config.MinIOConfig) (*MinIOStorage, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL, // false for local, true for production
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	ctx := context.Background()
	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return &MinIOStorage{
		client:    client,
		bucket:    cfg.Bucket,
		processor: NewImageProcessor(),
	}, nil
}

// UploadImage validates and uploads an image, returning its public URL.
// key format: <folder>/<uuid>.<format> (e.g. brands/5f3c....jpeg)
// A downsized thumbnail is stored alongside under <folder>/thumbs/;
// thumbnail derivation is best-effort and never fails the upload, as
// documents reference only the original URL.
func (s *MinIOStorage) UploadImage(ctx context.Context, data []byte, folder string) (string, error) {
	format, err := s.processor.Validate(data)
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("%s/%s.%s", folder, uuid.New().String(), format)
	assetURL, err := s.put(ctx, key, data, "image/"+format)
	if err != nil {
		return "", err
	}

	s.putThumbnail(ctx, key, data)
	return assetURL, nil
}

func (s *MinIOStorage) putThumbnail(ctx context.Context, key string, data []byte) {
	thumb, err := s.processor.Thumbnail(data, thumbnailSize)
	if err != nil {
		logger.Warn("thumbnail derivation failed", map[string]interface{}{
			"key": key, "error": err.Error(),
		})
		return
	}
	if _, err := s.put(ctx, ThumbKeyFor(key), thumb, "image/jpeg"); err != nil {
		logger.Warn("thumbnail upload failed", map[string]interface{}{
			"key": key, "error": err.Error(),
		})
	}
}

// UploadFile uploads a document, keeping the original extension.
// Disallowed extensions are rejected (allow-list: pdf, doc, docx).
func (s *MinIOStorage) UploadFile(ctx context.Context, data []byte, originalName, folder string) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	contentType, ok := allowedFileTypes[ext]
	if !ok {
		return "", fmt.Errorf("file type %q not allowed (only pdf, doc, docx)", ext)
	}

	key := fmt.Sprintf("%s/%s%s", folder, uuid.New().String(), ext)
	return s.put(ctx, key, data, contentType)
}

func (s *MinIOStorage) put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	_, err := s.client.PutObject(
		ctx,
		s.bucket,
		key,
		bytes.NewReader(data),
		int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType},
	)
	if err != nil {
		return "", fmt.Errorf("failed to upload to minio: %w", err)
	}

	return s.URLFor(key), nil
}

// Delete removes the object an asset URL points at, along with its
// derived thumbnail. Removing an absent thumbnail is a no-op.
func (s *MinIOStorage) Delete(ctx context.Context, assetURL string) error {
	key, err := s.KeyFromURL(assetURL)
	if err != nil {
		return err
	}
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete object %s: %w", key, err)
	}
	if err := s.client.RemoveObject(ctx, s.bucket, ThumbKeyFor(key), minio.RemoveObjectOptions{}); err != nil {
		logger.Warn("thumbnail delete failed", map[string]interface{}{
			"key": key, "error": err.Error(),
		})
	}
	return nil
}

// ListKeys returns all object keys under a prefix. Used by the
// orphan sweep job; an empty prefix lists the whole bucket.
func (s *MinIOStorage) ListKeys(ctx context.Context, prefix string) ([]string, error) {
	objectsCh := s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	})

	var keys []string
	for object := range objectsCh {
		if object.Err != nil {
			return nil, fmt.Errorf("error listing objects: %w", object.Err)
		}
		keys = append(keys, object.Key)
	}
	return keys, nil
}

// DeleteKey removes an object by its bucket key.
func (s *MinIOStorage) DeleteKey(ctx context.Context, key string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete object %s: %w", key, err)
	}
	return nil
}

// URLFor builds the public URL for a bucket key.
// Format: http://localhost:9000/medinfo/brands/<uuid>.jpeg
func (s *MinIOStorage) URLFor(key string) string {
	scheme := "http"
	if s.client.EndpointURL().Scheme == "https" {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, s.client.EndpointURL().Host, s.bucket, key)
}

// ThumbKeyFor returns the bucket key of the thumbnail derived from an
// image key. Thumbnails live under a thumbs/ segment next to their
// originals and are always JPEG-encoded.
func ThumbKeyFor(key string) string {
	dir, file := path.Split(key)
	stem := strings.TrimSuffix(file, path.Ext(file))
	return dir + "thumbs/" + stem + ".jpeg"
}

// BaseKeyPrefixForThumb maps a thumbnail key back to the key prefix of
// its original, up to and including the dot before the extension (the
// original's format is not recoverable from the always-JPEG thumbnail).
// Returns false for keys that are not thumbnails.
func BaseKeyPrefixForThumb(key string) (string, bool) {
	dir, file := path.Split(key)
	if !strings.HasSuffix(dir, "thumbs/") {
		return "", false
	}
	stem := strings.TrimSuffix(file, path.Ext(file))
	return strings.TrimSuffix(dir, "thumbs/") + stem + ".", true
}

// KeyFromURL extracts the bucket key from an asset URL.
func (s *MinIOStorage) KeyFromURL(assetURL string) (string, error) {
	u, err := url.Parse(assetURL)
	if err != nil {
		return "", fmt.Errorf("invalid asset url %q: %w", assetURL, err)
	}
	prefix := "/" + s.bucket + "/"
	if !strings.HasPrefix(u.Path, prefix) {
		return "", fmt.Errorf("asset url %q does not belong to bucket %s", assetURL, s.bucket)
	}
	return strings.TrimPrefix(u.Path, prefix), nil
}
