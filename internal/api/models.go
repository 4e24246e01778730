package api

import (
	"github.com/phrazzld/styleai-api/internal/domain"
	"github.com/phrazzld/styleai-api/internal/task"
)

// Common request/response structures

// StatusResponse is returned by the root and health endpoints.
type StatusResponse struct {
	Message string `json:"message,omitempty"`
	Status  string `json:"status"`
}

// RecommendRequest defines the payload for the recommendation endpoint.
type RecommendRequest struct {
	// ImageURL is a data URL, an http(s) URL or bare base64 image data
	ImageURL    string             `json:"image_url"`
	Preferences domain.Preferences `json:"preferences"`
}

// RecommendResponse lists the recommended hairstyles.
type RecommendResponse struct {
	Recommendations []domain.Hairstyle `json:"recommendations"`
	AIAnalysis      string             `json:"ai_analysis,omitempty"`
	Provider        string             `json:"provider"`
	Message         string             `json:"message"`
}

// GenerateRequest defines the payload for the generation endpoint.
type GenerateRequest struct {
	OriginalImageURL  string `json:"original_image_url"            validate:"required"`
	HairstyleID       string `json:"hairstyle_id"                  validate:"required_without=HairstyleName,max=128"`
	HairstyleName     string `json:"hairstyle_name,omitempty"      validate:"max=256"`
	ReferenceImageURL string `json:"reference_image_url,omitempty"`
}

// payload converts the request into the task payload.
func (r GenerateRequest) payload() task.GenerationPayload {
	return task.GenerationPayload{
		OriginalImageURL:  r.OriginalImageURL,
		HairstyleID:       r.HairstyleID,
		HairstyleName:     r.HairstyleName,
		ReferenceImageURL: r.ReferenceImageURL,
	}
}

// GenerateResponse acknowledges a queued generation task.
type GenerateResponse struct {
	TaskID string            `json:"task_id"`
	Status domain.TaskStatus `json:"status"`
}

// TaskResponse is the polling view of a task. Internal fields such as the
// payload are not exposed. Results is set only for completed tasks, and then
// always serialized, even when empty.
type TaskResponse struct {
	TaskID   string                   `json:"task_id"`
	Status   domain.TaskStatus        `json:"status"`
	Progress int                      `json:"progress"`
	Results  *[]domain.GeneratedImage `json:"results,omitempty"`
	Error    string                   `json:"error,omitempty"`
	Message  string                   `json:"message,omitempty"`
}

// taskToResponse converts a domain.Task to a TaskResponse
func taskToResponse(t *domain.Task) TaskResponse {
	resp := TaskResponse{
		TaskID:   t.ID,
		Status:   t.Status,
		Progress: t.Progress,
		Error:    t.Error,
		Message:  t.Message,
	}
	if t.Status == domain.TaskStatusCompleted {
		results := t.Results
		if results == nil {
			results = []domain.GeneratedImage{}
		}
		resp.Results = &results
	}
	return resp
}

// UploadResponse returns the public URL of an uploaded photo.
type UploadResponse struct {
	URL     string `json:"url"`
	Message string `json:"message"`
}

// CleanupResponse reports how many finished tasks were deleted.
type CleanupResponse struct {
	Deleted int    `json:"deleted"`
	Message string `json:"message"`
}
