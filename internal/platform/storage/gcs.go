package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// gcsPublicBase is the public host for objects in Google Cloud Storage.
const gcsPublicBase = "https://storage.googleapis.com"

// writerFunc opens a writer for one object.
type writerFunc func(ctx context.Context, bucket, key, contentType string) io.WriteCloser

// GCSUploader writes objects to a Cloud Storage (Firebase Storage) bucket.
type GCSUploader struct {
	client    *gcs.Client
	bucket    string
	newWriter writerFunc
	logger    *slog.Logger
}

// NewGCSUploader creates an uploader for bucket. An empty credentialsFile
// uses application default credentials.
func NewGCSUploader(ctx context.Context, bucket, credentialsFile string, logger *slog.Logger) (*GCSUploader, error) {
	bucket = strings.TrimSpace(bucket)
	if bucket == "" {
		return nil, errors.New("storage: bucket is required")
	}

	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("storage: create gcs client: %w", err)
	}

	u := &GCSUploader{
		client: client,
		bucket: bucket,
		logger: logger.With("component", "gcs_uploader", "bucket", bucket),
	}
	u.newWriter = u.objectWriter
	return u, nil
}

func (u *GCSUploader) objectWriter(ctx context.Context, bucket, key, contentType string) io.WriteCloser {
	w := u.client.Bucket(bucket).Object(key).NewWriter(ctx)
	w.ContentType = contentType
	w.CacheControl = "public, max-age=86400"
	return w
}

// Upload implements Uploader.
func (u *GCSUploader) Upload(ctx context.Context, key, contentType string, r io.Reader) (string, error) {
	key, err := SanitizeKey(key)
	if err != nil {
		return "", err
	}

	w := u.newWriter(ctx, u.bucket, key, contentType)
	n, err := io.Copy(w, r)
	if err != nil {
		_ = w.Close()
		return "", fmt.Errorf("storage: write object %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("storage: finalize object %s: %w", key, err)
	}

	u.logger.DebugContext(ctx, "object uploaded", "key", key, "bytes", n)
	return publicURL(gcsPublicBase+"/"+u.bucket, key), nil
}

// Close releases the underlying client.
func (u *GCSUploader) Close() error {
	if u.client == nil {
		return nil
	}
	return u.client.Close()
}
