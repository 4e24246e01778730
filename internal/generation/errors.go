package generation

import "errors"

// Common errors returned by the generation package
var (
	// ErrGenerationFailed is returned when image generation fails for any general reason
	ErrGenerationFailed = errors.New("failed to generate hairstyle image")

	// ErrInvalidResponse is returned when the vendor response cannot be parsed or is malformed
	ErrInvalidResponse = errors.New("invalid response from image model")

	// ErrContentBlocked is returned when the vendor blocks the content due to safety filters
	ErrContentBlocked = errors.New("content blocked by image model safety filters")

	// ErrNoImages is returned when a vendor answers without any image
	ErrNoImages = errors.New("image model returned no images")

	// ErrAllGeneratorsFailed is returned by Chain when every generator failed
	ErrAllGeneratorsFailed = errors.New("all image generators failed")

	// ErrInvalidConfig is returned when the generator configuration is invalid
	ErrInvalidConfig = errors.New("invalid generator configuration")

	// ErrInvalidRequest is returned when a request lacks the face image or hairstyle
	ErrInvalidRequest = errors.New("invalid generation request")
)
