package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/styleai-api/internal/api/shared"
	"github.com/phrazzld/styleai-api/internal/domain"
	"github.com/phrazzld/styleai-api/internal/i18n"
	"github.com/phrazzld/styleai-api/internal/platform/logger"
	"github.com/phrazzld/styleai-api/internal/recommend"
	"github.com/phrazzld/styleai-api/internal/service"
)

// Recommender produces hairstyle recommendations.
type Recommender interface {
	Recommend(ctx context.Context, imageURL string, prefs domain.Preferences, locale string) (*recommend.Result, error)
}

// PhotoUploader stores uploaded photos.
type PhotoUploader interface {
	Upload(ctx context.Context, filename string, r io.Reader) (string, error)
	MaxBytes() int64
}

// multipartOverhead is allowed on top of the file limit for form headers.
const multipartOverhead = 1 << 20

// SystemHandler serves the liveness endpoints.
type SystemHandler struct{}

// Root handles GET /
func (SystemHandler) Root(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, StatusResponse{Message: "StyleAI API", Status: "running"})
}

// Health handles GET /health
func (SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, StatusResponse{Status: "healthy"})
}

// HairstyleHandler handles recommendation and generation requests.
type HairstyleHandler struct {
	recommender Recommender
	generation  service.GenerationService
}

// NewHairstyleHandler creates a new HairstyleHandler
func NewHairstyleHandler(recommender Recommender, generation service.GenerationService) *HairstyleHandler {
	return &HairstyleHandler{recommender: recommender, generation: generation}
}

// Recommend handles POST /api/recommendations and its /api/recommend alias.
func (h *HairstyleHandler) Recommend(w http.ResponseWriter, r *http.Request) {
	var req RecommendRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.ImageURL) == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, i18n.TC(r.Context(), i18n.MsgImageRequired))
		return
	}

	locale := i18n.FromContext(r.Context())
	res, err := h.recommender.Recommend(r.Context(), req.ImageURL, req.Preferences, locale.String())
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	msg := i18n.MsgRecommendAI
	if res.Provider == recommend.NewMockProvider().Name() {
		msg = i18n.MsgRecommendMock
	}
	shared.RespondWithJSON(w, r, http.StatusOK, RecommendResponse{
		Recommendations: res.Recommendations,
		AIAnalysis:      res.Analysis,
		Provider:        res.Provider,
		Message:         i18n.TC(r.Context(), msg),
	})
}

// Generate handles POST /api/generate. The task runs in the background;
// the response carries its id with 202 Accepted.
func (h *HairstyleHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	t, err := h.generation.CreateGenerationTask(r.Context(), req.payload())
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	logger.FromContext(r.Context()).Info("generation task accepted", "task_id", t.ID)
	shared.RespondWithJSON(w, r, http.StatusAccepted, GenerateResponse{TaskID: t.ID, Status: t.Status})
}

// TaskHandler reports and evicts generation tasks.
type TaskHandler struct {
	generation service.GenerationService
}

// NewTaskHandler creates a new TaskHandler
func NewTaskHandler(generation service.GenerationService) *TaskHandler {
	return &TaskHandler{generation: generation}
}

// GetTask handles GET /api/tasks/{task_id} and its /api/generate/{task_id}
// alias. Unknown ids are reported with status not_found and 200.
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "task_id"))
	if id == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, i18n.TC(r.Context(), i18n.MsgTaskIDRequired))
		return
	}

	t, err := h.generation.GetTask(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(t))
}

// Cleanup handles DELETE /api/cleanup
func (h *TaskHandler) Cleanup(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.generation.Cleanup(r.Context())
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, CleanupResponse{
		Deleted: deleted,
		Message: i18n.TC(r.Context(), i18n.MsgCleanupDone, deleted),
	})
}

// UploadHandler accepts user photos.
type UploadHandler struct {
	uploader PhotoUploader
	mock     bool
}

// NewUploadHandler creates a new UploadHandler. mock selects the message
// telling clients that files are not kept.
func NewUploadHandler(uploader PhotoUploader, mock bool) *UploadHandler {
	return &UploadHandler{uploader: uploader, mock: mock}
}

// Upload handles POST /api/upload with a multipart "file" field.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.uploader.MaxBytes()+multipartOverhead)

	file, header, err := r.FormFile("file")
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			HandleAPIError(w, r, err)
			return
		}
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, i18n.TC(r.Context(), i18n.MsgFileRequired), err)
		return
	}
	defer func() { _ = file.Close() }()

	url, err := h.uploader.Upload(r.Context(), header.Filename, file)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	msg := i18n.MsgUploadDone
	if h.mock {
		msg = i18n.MsgUploadMock
	}
	shared.RespondWithJSON(w, r, http.StatusOK, UploadResponse{URL: url, Message: i18n.TC(r.Context(), msg)})
}

// decodeAndValidate parses the JSON body into v and validates it, writing
// a 400 response on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := shared.DecodeJSON(r, v); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, i18n.TC(r.Context(), i18n.MsgInvalidRequest), err)
		return false
	}
	if err := shared.ValidateRequest(v); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(r.Context(), err), err)
		return false
	}
	return true
}

// NotFound answers unknown routes.
func NotFound(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithError(w, r, http.StatusNotFound, i18n.TC(r.Context(), i18n.MsgNotFound))
}

// MethodNotAllowed answers known routes called with the wrong method.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithError(w, r, http.StatusMethodNotAllowed, i18n.TC(r.Context(), i18n.MsgMethodNotAllowed))
}
