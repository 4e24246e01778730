package generation

import (
	"context"
	"fmt"
	"strings"
)

// Request describes one hairstyle rendering.
type Request struct {
	// FaceImage is the user's photo as a data URL, http(s) URL or bare base64.
	FaceImage string
	// HairstyleID identifies the hairstyle in the catalog, if it came from there.
	HairstyleID string
	// HairstyleName is the human readable hairstyle name used in prompts.
	HairstyleName string
	// HairstyleDescription adds detail to the prompt when known.
	HairstyleDescription string
	// ReferenceImage is an optional picture of the target hairstyle.
	ReferenceImage string
}

// Validate checks that the request carries the fields every generator needs.
func (r Request) Validate() error {
	if strings.TrimSpace(r.FaceImage) == "" {
		return fmt.Errorf("%w: face image is required", ErrInvalidRequest)
	}
	if strings.TrimSpace(r.HairstyleName) == "" {
		return fmt.Errorf("%w: hairstyle name is required", ErrInvalidRequest)
	}
	return nil
}

// Image is one generated picture. Vendors return either a URL or raw bytes.
type Image struct {
	URL      string
	Data     []byte
	MIMEType string
	Provider string
}

// Generator defines the interface for rendering a hairstyle onto a photo.
// This interface serves as a boundary between the task runner and external
// image generation services.
type Generator interface {
	// Name identifies the generator in logs and task results.
	Name() string

	// Generate creates one or more images for the request.
	//
	// Parameters:
	//   - ctx: Context for the operation, which can be used for cancellation
	//   - req: The face image and the hairstyle to apply
	//
	// Returns:
	//   - The generated images, at least one on success
	//   - An error if the generation fails for any reason (see errors.go for specific types)
	Generate(ctx context.Context, req Request) ([]Image, error)
}

// NegativePrompt lists artifacts vendors that support negative prompts should avoid.
const NegativePrompt = "blurry, low quality, distorted, deformed face, extra limbs, watermark, text"

// Prompt builds the instruction sent to image vendors.
func Prompt(req Request) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Restyle the hair of the person in the photo into a %s hairstyle.", req.HairstyleName)
	if req.HairstyleDescription != "" {
		fmt.Fprintf(&b, " Style details: %s.", req.HairstyleDescription)
	}
	if req.ReferenceImage != "" {
		b.WriteString(" Use the reference picture as the target hairstyle.")
	}
	b.WriteString(" Keep the face, skin tone, expression and background unchanged.")
	b.WriteString(" High quality, professional photography, realistic lighting.")
	return b.String()
}
