package storage

import (
	"context"
	"io"
	"sync"
)

// MockUploader returns the URL an object would have in the bucket without
// storing anything.
type MockUploader struct {
	bucket string

	mu   sync.Mutex
	keys []string
}

// NewMockUploader creates a MockUploader for bucket.
func NewMockUploader(bucket string) *MockUploader {
	if bucket == "" {
		bucket = "94style-ai.appspot.com"
	}
	return &MockUploader{bucket: bucket}
}

// Upload implements Uploader. The reader is drained so callers see the same
// consumption as with a real backend.
func (m *MockUploader) Upload(ctx context.Context, key, contentType string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	key, err := SanitizeKey(key)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(io.Discard, r); err != nil {
		return "", err
	}

	m.mu.Lock()
	m.keys = append(m.keys, key)
	m.mu.Unlock()

	return publicURL(gcsPublicBase+"/"+m.bucket, key), nil
}

// Keys returns the keys uploaded so far.
func (m *MockUploader) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.keys...)
}
