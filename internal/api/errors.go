package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/styleai-api/internal/api/shared"
	"github.com/phrazzld/styleai-api/internal/i18n"
	"github.com/phrazzld/styleai-api/internal/service"
	"github.com/phrazzld/styleai-api/internal/service/auth"
	"github.com/phrazzld/styleai-api/internal/task"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	var maxBytesErr *http.MaxBytesError
	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken):
		return http.StatusUnauthorized

	// Not found errors
	case errors.Is(err, task.ErrTaskNotFound):
		return http.StatusNotFound

	// Bad request errors
	case errors.Is(err, service.ErrInvalidRequest),
		errors.Is(err, service.ErrEmptyFile),
		errors.Is(err, task.ErrInvalidPayload),
		errors.Is(err, shared.ErrEmptyBody):
		return http.StatusBadRequest

	case errors.Is(err, service.ErrFileTooLarge), errors.As(err, &maxBytesErr):
		return http.StatusRequestEntityTooLarge

	case errors.Is(err, service.ErrNotImage):
		return http.StatusUnsupportedMediaType

	// Capacity errors
	case errors.Is(err, service.ErrServiceBusy),
		errors.Is(err, task.ErrQueueFull),
		errors.Is(err, task.ErrQueueClosed),
		errors.Is(err, auth.ErrKeysUnavailable):
		return http.StatusServiceUnavailable

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message in the
// request's language. Internal details never reach the client.
func GetSafeErrorMessage(ctx context.Context, err error) string {
	if err == nil {
		return i18n.TC(ctx, i18n.MsgInternal)
	}

	switch MapErrorToStatusCode(err) {
	case http.StatusUnauthorized:
		return i18n.TC(ctx, i18n.MsgUnauthorized)
	case http.StatusNotFound:
		return i18n.TC(ctx, i18n.MsgNotFound)
	case http.StatusBadRequest:
		if errors.Is(err, service.ErrEmptyFile) {
			return i18n.TC(ctx, i18n.MsgFileRequired)
		}
		return i18n.TC(ctx, i18n.MsgInvalidRequest)
	case http.StatusRequestEntityTooLarge:
		return i18n.TC(ctx, i18n.MsgFileTooLarge)
	case http.StatusUnsupportedMediaType:
		return i18n.TC(ctx, i18n.MsgNotImage)
	case http.StatusServiceUnavailable:
		return i18n.TC(ctx, i18n.MsgBusy)
	default:
		return i18n.TC(ctx, i18n.MsgInternal)
	}
}

// SanitizeValidationError removes sensitive details from validation errors
// and returns a user-friendly message naming the offending fields.
func SanitizeValidationError(ctx context.Context, err error) string {
	prefix := i18n.TC(ctx, i18n.MsgValidation)

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return prefix
	}

	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field()+" ("+getValidationTagMessage(fe.Tag())+")")
	}
	return prefix + ": " + strings.Join(fields, ", ")
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required", "required_without":
		return "required field"
	case "url", "http_url":
		return "invalid url"
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "oneof":
		return "invalid value"
	default:
		return "validation failed"
	}
}

// HandleAPIError writes the status and safe message for err and logs the
// redacted details.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error) {
	status := MapErrorToStatusCode(err)
	shared.RespondWithErrorAndLog(w, r, status, GetSafeErrorMessage(r.Context(), err), err)
}
