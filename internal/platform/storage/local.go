package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// LocalUploader persists objects onto the local filesystem. It is intended
// for development environments without a bucket.
type LocalUploader struct {
	basePath      string
	publicBaseURL string
	logger        *slog.Logger
}

// NewLocalUploader initializes a LocalUploader rooted at basePath whose
// objects are served under publicBaseURL.
func NewLocalUploader(basePath, publicBaseURL string, logger *slog.Logger) (*LocalUploader, error) {
	basePath = strings.TrimSpace(basePath)
	if basePath == "" {
		return nil, errors.New("storage: base path is required")
	}
	if strings.TrimSpace(publicBaseURL) == "" {
		return nil, errors.New("storage: public base url is required")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("storage: ensure base path: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &LocalUploader{
		basePath:      basePath,
		publicBaseURL: publicBaseURL,
		logger:        logger.With("component", "local_uploader"),
	}, nil
}

// BasePath returns the configured root directory.
func (u *LocalUploader) BasePath() string {
	return u.basePath
}

// Upload implements Uploader.
func (u *LocalUploader) Upload(ctx context.Context, key, contentType string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	key, err := SanitizeKey(key)
	if err != nil {
		return "", err
	}

	fullPath := filepath.Join(u.basePath, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", fmt.Errorf("storage: ensure directory: %w", err)
	}

	f, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("storage: create file: %w", err)
	}
	n, err := io.Copy(f, r)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(fullPath)
		return "", fmt.Errorf("storage: write file: %w", err)
	}

	u.logger.DebugContext(ctx, "file stored", "key", key, "bytes", n, "content_type", contentType)
	return publicURL(u.publicBaseURL, key), nil
}
