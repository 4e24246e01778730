package task

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/phrazzld/styleai-api/internal/domain"
	"github.com/phrazzld/styleai-api/internal/generation"
)

// GenerationPayload is the stored request of a hairstyle generation task.
type GenerationPayload struct {
	OriginalImageURL  string `json:"original_image_url"`
	HairstyleID       string `json:"hairstyle_id"`
	HairstyleName     string `json:"hairstyle_name,omitempty"`
	ReferenceImageURL string `json:"reference_image_url,omitempty"`
}

// Validate checks the fields the job cannot run without.
func (p GenerationPayload) Validate() error {
	if strings.TrimSpace(p.OriginalImageURL) == "" {
		return fmt.Errorf("%w: original image is required", ErrInvalidPayload)
	}
	if strings.TrimSpace(p.HairstyleID) == "" && strings.TrimSpace(p.HairstyleName) == "" {
		return fmt.Errorf("%w: hairstyle is required", ErrInvalidPayload)
	}
	return nil
}

// ImageUploader stores generated image bytes and returns their public URL.
type ImageUploader interface {
	Upload(ctx context.Context, name, contentType string, r io.Reader) (string, error)
}

// HairstyleGenerationJob renders the requested hairstyle onto the user's
// photo. Progress moves through the resolved, generated and stored
// checkpoints before the runner completes the task.
type HairstyleGenerationJob struct {
	id        string
	payload   GenerationPayload
	raw       []byte
	generator generation.Generator
	uploader  ImageUploader
	logger    *slog.Logger
}

// Ensure HairstyleGenerationJob implements Job
var _ Job = (*HairstyleGenerationJob)(nil)

// ID implements Job.
func (j *HairstyleGenerationJob) ID() string { return j.id }

// Type implements Job.
func (j *HairstyleGenerationJob) Type() string { return TaskTypeHairstyleGeneration }

// Payload implements Job.
func (j *HairstyleGenerationJob) Payload() []byte { return j.raw }

// Execute implements Job.
func (j *HairstyleGenerationJob) Execute(ctx context.Context, progress ProgressFunc) ([]domain.GeneratedImage, error) {
	log := j.logger.With("hairstyle_id", j.payload.HairstyleID)

	hairstyle := j.resolveHairstyle()
	progress(ctx, domain.ProgressResolved)
	log.DebugContext(ctx, "hairstyle resolved", "hairstyle_name", hairstyle.Name)

	images, err := j.generator.Generate(ctx, generation.Request{
		FaceImage:            j.payload.OriginalImageURL,
		HairstyleID:          hairstyle.ID,
		HairstyleName:        hairstyle.Name,
		HairstyleDescription: hairstyle.Description,
		ReferenceImage:       j.payload.ReferenceImageURL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate hairstyle image: %w", err)
	}
	if len(images) == 0 {
		return nil, generation.ErrNoImages
	}
	progress(ctx, domain.ProgressGenerated)
	log.DebugContext(ctx, "images generated", "image_count", len(images))

	results := make([]domain.GeneratedImage, 0, len(images))
	for i, img := range images {
		url, err := j.publish(ctx, i, img)
		if err != nil {
			return nil, err
		}
		results = append(results, domain.GeneratedImage{
			ImageURL:      url,
			HairstyleID:   hairstyle.ID,
			HairstyleName: hairstyle.Name,
			Provider:      img.Provider,
		})
	}
	progress(ctx, domain.ProgressStored)

	return results, nil
}

// resolveHairstyle prefers the catalog entry; unknown ids fall back to the
// name supplied with the request, then to the id itself.
func (j *HairstyleGenerationJob) resolveHairstyle() domain.Hairstyle {
	if h, err := domain.FindHairstyle(j.payload.HairstyleID); err == nil {
		return h
	}

	name := strings.TrimSpace(j.payload.HairstyleName)
	if name == "" {
		name = j.payload.HairstyleID
	}
	return domain.Hairstyle{ID: j.payload.HairstyleID, Name: name}
}

// publish returns a URL for the image, uploading raw bytes when needed.
// Without an uploader the bytes are returned inline as a data URL.
func (j *HairstyleGenerationJob) publish(ctx context.Context, index int, img generation.Image) (string, error) {
	if img.URL != "" {
		return img.URL, nil
	}
	if len(img.Data) == 0 {
		return "", fmt.Errorf("%w: image %d has neither url nor data", generation.ErrInvalidResponse, index)
	}

	mtype := mimetype.Detect(img.Data)
	contentType := img.MIMEType
	if contentType == "" {
		contentType = mtype.String()
	}
	if !strings.HasPrefix(contentType, "image/") {
		return "", fmt.Errorf("%w: image %d is %s", generation.ErrInvalidResponse, index, contentType)
	}

	if j.uploader == nil {
		return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(img.Data), nil
	}

	name := fmt.Sprintf("generated/%s-%d%s", j.id, index+1, mtype.Extension())
	url, err := j.uploader.Upload(ctx, name, contentType, bytes.NewReader(img.Data))
	if err != nil {
		return "", fmt.Errorf("failed to store generated image: %w", err)
	}
	return url, nil
}

// HairstyleGenerationJobFactory builds generation jobs from task records.
type HairstyleGenerationJobFactory struct {
	generator generation.Generator
	uploader  ImageUploader
	logger    *slog.Logger
}

// Ensure HairstyleGenerationJobFactory implements JobFactory
var _ JobFactory = (*HairstyleGenerationJobFactory)(nil)

// NewHairstyleGenerationJobFactory creates a factory. The uploader may be
// nil, in which case generated bytes are returned as data URLs.
func NewHairstyleGenerationJobFactory(
	generator generation.Generator,
	uploader ImageUploader,
	logger *slog.Logger,
) (*HairstyleGenerationJobFactory, error) {
	if generator == nil {
		return nil, errors.New("generator cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &HairstyleGenerationJobFactory{
		generator: generator,
		uploader:  uploader,
		logger:    logger.With("component", "hairstyle_generation_job"),
	}, nil
}

// CreateJob implements JobFactory.
func (f *HairstyleGenerationJobFactory) CreateJob(t *domain.Task) (Job, error) {
	var payload GenerationPayload
	if err := unmarshalPayload(t.Payload, &payload); err != nil {
		return nil, err
	}
	if err := payload.Validate(); err != nil {
		return nil, err
	}

	return &HairstyleGenerationJob{
		id:        t.ID,
		payload:   payload,
		raw:       append([]byte(nil), t.Payload...),
		generator: f.generator,
		uploader:  f.uploader,
		logger:    f.logger.With("task_id", t.ID),
	}, nil
}

func unmarshalPayload(raw []byte, v any) error {
	if len(raw) == 0 {
		return fmt.Errorf("%w: empty payload", ErrInvalidPayload)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}
	return nil
}
