// Package storage writes user uploads and generated images to blob storage
// and returns their public URLs.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"

	"github.com/phrazzld/styleai-api/internal/config"
)

// Errors returned by uploaders.
var (
	ErrInvalidKey     = errors.New("storage: invalid object key")
	ErrUnknownBackend = errors.New("storage: unknown backend")
)

// Uploader stores an object under key and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, key, contentType string, r io.Reader) (string, error)
}

// New builds the uploader selected by cfg.Backend.
func New(ctx context.Context, cfg config.StorageConfig, logger *slog.Logger) (Uploader, error) {
	if logger == nil {
		logger = slog.Default()
	}

	switch cfg.Backend {
	case "gcs":
		return NewGCSUploader(ctx, cfg.Bucket, cfg.CredentialsFile, logger)
	case "local":
		return NewLocalUploader(cfg.LocalPath, cfg.PublicBaseURL, logger)
	case "mock", "":
		return NewMockUploader(cfg.Bucket), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
}

// SanitizeKey normalizes a key and prevents escaping the storage root.
func SanitizeKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", fmt.Errorf("%w: key is required", ErrInvalidKey)
	}
	key = strings.ReplaceAll(key, "\\", "/")
	key = strings.TrimPrefix(key, "./")
	key = strings.TrimLeft(key, "/")
	cleaned := path.Clean(key)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return cleaned, nil
}

// SanitizeFilename reduces a client supplied filename to a safe base name.
func SanitizeFilename(name string) string {
	name = path.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	out := strings.Trim(b.String(), ".")
	if out == "" {
		return "file"
	}
	return out
}

func publicURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + key
}
