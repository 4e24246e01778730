package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/phrazzld/styleai-api/internal/platform/storage"
)

// UploadService validates and stores user photos.
type UploadService struct {
	uploader storage.Uploader
	maxBytes int64
	logger   *slog.Logger
}

// NewUploadService creates an UploadService accepting images up to maxBytes.
func NewUploadService(uploader storage.Uploader, maxBytes int64, logger *slog.Logger) *UploadService {
	if logger == nil {
		logger = slog.Default()
	}
	if maxBytes <= 0 {
		maxBytes = 10 << 20
	}
	return &UploadService{
		uploader: uploader,
		maxBytes: maxBytes,
		logger:   logger.With("component", "upload_service"),
	}
}

// MaxBytes returns the upload size limit.
func (s *UploadService) MaxBytes() int64 {
	return s.maxBytes
}

// Upload reads the file, checks that it is an image within the size limit
// and stores it under uploads/. It returns the public URL.
func (s *UploadService) Upload(ctx context.Context, filename string, r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}
	if len(data) == 0 {
		return "", ErrEmptyFile
	}
	if int64(len(data)) > s.maxBytes {
		return "", fmt.Errorf("%w: limit is %d bytes", ErrFileTooLarge, s.maxBytes)
	}

	detected := mimetype.Detect(data)
	if !isImage(detected) {
		return "", fmt.Errorf("%w: detected %s", ErrNotImage, detected.String())
	}

	key := fmt.Sprintf("uploads/%s-%s", uuid.NewString(), storage.SanitizeFilename(filename))
	url, err := s.uploader.Upload(ctx, key, detected.String(), bytes.NewReader(data))
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to store upload", "key", key, "error", err)
		return "", fmt.Errorf("failed to store upload: %w", err)
	}

	s.logger.InfoContext(ctx, "upload stored",
		"key", key,
		"content_type", detected.String(),
		"bytes", len(data))
	return url, nil
}

func isImage(m *mimetype.MIME) bool {
	for ; m != nil; m = m.Parent() {
		if len(m.String()) > 6 && m.String()[:6] == "image/" {
			return true
		}
	}
	return false
}
