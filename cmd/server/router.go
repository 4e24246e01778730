package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/phrazzld/styleai-api/internal/api"
	apiMiddleware "github.com/phrazzld/styleai-api/internal/api/middleware"
	"github.com/phrazzld/styleai-api/internal/i18n"
)

// setupRouter creates and configures the application router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	// Apply standard middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(apiMiddleware.Trace(app.logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: app.config.Server.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Accept-Language", "Authorization", "Content-Type", apiMiddleware.LocaleHeader},
		ExposedHeaders: []string{apiMiddleware.TraceHeader, "Content-Language"},
		MaxAge:         300,
	}))
	r.Use(apiMiddleware.Locale(i18n.Parse(app.config.Server.DefaultLocale, i18n.English)))

	r.NotFound(api.NotFound)
	r.MethodNotAllowed(api.MethodNotAllowed)

	system := api.SystemHandler{}
	hairstyles := api.NewHairstyleHandler(app.recommendationService, app.generationService)
	tasks := api.NewTaskHandler(app.generationService)
	uploads := api.NewUploadHandler(app.uploadService, app.mockStorage)

	r.Get("/", system.Root)
	r.Get("/health", system.Health)

	r.Route("/api", func(r chi.Router) {
		// Authentication is only enforced when a Firebase project is configured
		if app.tokenVerifier != nil {
			r.Use(apiMiddleware.NewAuthMiddleware(app.tokenVerifier).Authenticate)
		}

		r.Post("/upload", uploads.Upload)

		r.Post("/recommendations", hairstyles.Recommend)
		r.Post("/recommend", hairstyles.Recommend)

		r.Post("/generate", hairstyles.Generate)
		r.Get("/generate/{task_id}", tasks.GetTask)
		r.Get("/tasks/{task_id}", tasks.GetTask)

		r.Delete("/cleanup", tasks.Cleanup)
	})

	return r
}
