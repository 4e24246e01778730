package service

import "errors"

// Common service errors - sentinel errors used across service implementations.
// Callers use errors.Is to check for them; the API layer maps each to an
// HTTP status code.
var (
	// ErrInvalidRequest indicates the request is missing required data.
	// API layer should map this to HTTP 400 Bad Request.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrServiceBusy indicates the task queue is full.
	// API layer should map this to HTTP 503 Service Unavailable.
	ErrServiceBusy = errors.New("service is busy")

	// ErrFileTooLarge indicates an upload exceeds the size limit.
	// API layer should map this to HTTP 413 Request Entity Too Large.
	ErrFileTooLarge = errors.New("file too large")

	// ErrNotImage indicates an upload is not an image.
	// API layer should map this to HTTP 415 Unsupported Media Type.
	ErrNotImage = errors.New("file is not an image")

	// ErrEmptyFile indicates an upload without content.
	// API layer should map this to HTTP 400 Bad Request.
	ErrEmptyFile = errors.New("file is empty")
)
