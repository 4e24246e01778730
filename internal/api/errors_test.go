package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/phrazzld/styleai-api/internal/api/shared"
	"github.com/phrazzld/styleai-api/internal/i18n"
	"github.com/phrazzld/styleai-api/internal/service"
	"github.com/phrazzld/styleai-api/internal/service/auth"
	"github.com/phrazzld/styleai-api/internal/task"
	"github.com/stretchr/testify/assert"
)

func TestMapErrorToStatusCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want int
	}{
		{auth.ErrExpiredToken, http.StatusUnauthorized},
		{fmt.Errorf("lookup: %w", task.ErrTaskNotFound), http.StatusNotFound},
		{fmt.Errorf("%w: %w", service.ErrInvalidRequest, task.ErrInvalidPayload), http.StatusBadRequest},
		{shared.ErrEmptyBody, http.StatusBadRequest},
		{service.ErrFileTooLarge, http.StatusRequestEntityTooLarge},
		{&http.MaxBytesError{Limit: 10}, http.StatusRequestEntityTooLarge},
		{service.ErrNotImage, http.StatusUnsupportedMediaType},
		{fmt.Errorf("%w: %w", service.ErrServiceBusy, task.ErrQueueFull), http.StatusServiceUnavailable},
		{errors.New("database exploded"), http.StatusInternalServerError},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, MapErrorToStatusCode(tc.err), "error: %v", tc.err)
	}
}

func TestGetSafeErrorMessage(t *testing.T) {
	t.Parallel()

	en := context.Background()
	zh := i18n.WithLanguage(context.Background(), i18n.TraditionalChinese)
	internal := errors.New("pq: password authentication failed for user admin")

	assert.Equal(t, "An unexpected error occurred", GetSafeErrorMessage(en, internal))
	assert.NotContains(t, GetSafeErrorMessage(en, internal), "password")
	assert.Equal(t, "Server is busy, please try again later", GetSafeErrorMessage(en, service.ErrServiceBusy))
	assert.Equal(t, "伺服器忙碌中，請稍後再試", GetSafeErrorMessage(zh, service.ErrServiceBusy))
	assert.Equal(t, "An image file is required", GetSafeErrorMessage(en, service.ErrEmptyFile))
	assert.Equal(t, "An unexpected error occurred", GetSafeErrorMessage(en, nil))
}

func TestSanitizeValidationError(t *testing.T) {
	t.Parallel()

	err := shared.ValidateRequest(GenerateRequest{})

	msg := SanitizeValidationError(context.Background(), err)

	assert.Contains(t, msg, "Validation failed")
	assert.Contains(t, msg, "original_image_url (required field)")
	assert.Contains(t, msg, "hairstyle_id (required field)")
	assert.Equal(t, "Validation failed", SanitizeValidationError(context.Background(), errors.New("other")))
}
