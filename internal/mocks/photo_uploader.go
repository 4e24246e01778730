package mocks

import (
	"bytes"
	"context"
	"io"
)

// MockPhotoUploader stands in for the upload service in handler tests
type MockPhotoUploader struct {
	UploadFn func(ctx context.Context, filename string, r io.Reader) (string, error)

	// Default return values
	URL string
	Err error

	// Limit is returned by MaxBytes; 10 MiB when zero
	Limit int64

	// LastFilename and LastData record the most recent upload
	LastFilename string
	LastData     []byte
}

// Upload mirrors service.UploadService.Upload
func (m *MockPhotoUploader) Upload(ctx context.Context, filename string, r io.Reader) (string, error) {
	m.LastFilename = filename
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	m.LastData = data
	if m.UploadFn != nil {
		return m.UploadFn(ctx, filename, bytes.NewReader(data))
	}
	return m.URL, m.Err
}

// MaxBytes mirrors service.UploadService.MaxBytes
func (m *MockPhotoUploader) MaxBytes() int64 {
	if m.Limit == 0 {
		return 10 << 20
	}
	return m.Limit
}
