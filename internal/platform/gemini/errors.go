package gemini

import "errors"

// Error definitions for the gemini package.
var (
	// ErrBlocked is returned when the prompt or the answer trips a safety filter.
	ErrBlocked = errors.New("gemini blocked the request")

	// ErrEmptyResponse is returned when the API answers without content.
	ErrEmptyResponse = errors.New("gemini returned no content")

	// ErrTransientFailure is returned when retries are exhausted.
	ErrTransientFailure = errors.New("gemini request failed after retries")

	// ErrMissingAPIKey is returned by New when no API key is configured.
	ErrMissingAPIKey = errors.New("gemini API key cannot be empty")
)
