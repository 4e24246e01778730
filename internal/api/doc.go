// Package api exposes the hairstyle service over HTTP: recommendation,
// generation task creation and polling, photo upload and cleanup. Handlers
// decode and validate requests, call the service layer and map its errors
// to status codes and localized, redacted messages.
package api
