// Package generation defines the boundary between the task runner and the
// vendors that render a new hairstyle onto a user's photo.
//
// The Generator interface is implemented by the Gemini and MiniMax adapters
// in internal/platform and by MockGenerator, which is used when no vendor
// credentials are configured. Chain tries several generators in order and
// returns the first successful result.
package generation
