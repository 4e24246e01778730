package recommend

import (
	"context"
	"errors"

	"github.com/phrazzld/styleai-api/internal/domain"
)

// MaxCount is the largest number of recommendations returned per request.
const MaxCount = 6

// Common errors returned by providers
var (
	// ErrInvalidResponse is returned when a vendor answer cannot be parsed
	ErrInvalidResponse = errors.New("invalid recommendation response")

	// ErrNoRecommendations is returned when a vendor answer holds no usable entry
	ErrNoRecommendations = errors.New("no recommendations in response")

	// ErrContentBlocked is returned when the vendor refuses the request
	ErrContentBlocked = errors.New("recommendation blocked by safety filters")
)

// Request carries the inputs of one recommendation.
type Request struct {
	// ImageURL is the user's photo as a data URL, http(s) URL or bare base64.
	ImageURL    string
	Preferences domain.Preferences
	// Count is the number of recommendations wanted, clamped to 1..MaxCount.
	Count int
	// Locale is the BCP 47 tag the vendor should answer in.
	Locale string
}

// Normalized returns a copy of the request with Count clamped.
func (r Request) Normalized() Request {
	if r.Count <= 0 || r.Count > MaxCount {
		r.Count = MaxCount
	}
	return r
}

// Result is the outcome of a recommendation.
type Result struct {
	Recommendations []domain.Hairstyle
	// Analysis is the vendor's free-text reading of the photo, if any.
	Analysis string
	// Provider names the provider that produced the result.
	Provider string
}

// Provider recommends hairstyles for a photo.
type Provider interface {
	// Name identifies the provider in logs and responses.
	Name() string

	// Recommend returns at most req.Count hairstyles.
	Recommend(ctx context.Context, req Request) (*Result, error)
}
