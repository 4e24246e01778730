// Package service contains the application use cases behind the HTTP API:
// creating and polling generation tasks, producing recommendations and
// storing uploaded photos.
//
// Services receive their dependencies through constructor injection and
// translate lower-level errors into the sentinels defined in errors.go,
// which the API layer maps to status codes.
package service
