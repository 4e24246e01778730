package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidTransition is returned when a task update would move its
	// status backwards or modify a finished task.
	ErrInvalidTransition = errors.New("invalid task status transition")

	// ErrInvalidTaskStatus is returned when a status value is unknown.
	ErrInvalidTaskStatus = errors.New("invalid task status")

	// ErrEmptyTaskID is returned when a task is built without an identifier.
	ErrEmptyTaskID = errors.New("task ID cannot be empty")

	// ErrHairstyleNotFound is returned when a catalog lookup misses.
	ErrHairstyleNotFound = errors.New("hairstyle not found")
)
