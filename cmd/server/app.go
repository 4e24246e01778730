package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/phrazzld/styleai-api/internal/config"
	"github.com/phrazzld/styleai-api/internal/events"
	"github.com/phrazzld/styleai-api/internal/generation"
	"github.com/phrazzld/styleai-api/internal/imagesrc"
	"github.com/phrazzld/styleai-api/internal/platform/badgerstore"
	"github.com/phrazzld/styleai-api/internal/platform/errreport"
	"github.com/phrazzld/styleai-api/internal/platform/gemini"
	"github.com/phrazzld/styleai-api/internal/platform/minimax"
	"github.com/phrazzld/styleai-api/internal/platform/postgres"
	"github.com/phrazzld/styleai-api/internal/platform/storage"
	"github.com/phrazzld/styleai-api/internal/recommend"
	"github.com/phrazzld/styleai-api/internal/service"
	"github.com/phrazzld/styleai-api/internal/service/auth"
	"github.com/phrazzld/styleai-api/internal/task"
)

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	// Configuration
	config *config.Config

	// Core services
	logger   *slog.Logger
	reporter errreport.Reporter

	// Task handling
	taskStore  task.Store
	registry   *task.Registry
	taskRunner *task.TaskRunner

	// Event system
	eventEmitter *events.InMemoryEventEmitter

	// Service interfaces
	generationService     service.GenerationService
	recommendationService *service.RecommendationService
	uploadService         *service.UploadService
	tokenVerifier         auth.TokenVerifier

	// mockStorage reports that uploads are not kept
	mockStorage bool

	// closers run in reverse order on shutdown, after the runner stops
	closers []func() error
}

// newApplication creates a new application instance with all dependencies
// initialized and the task runner started.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
	}

	ok := false
	defer func() {
		if !ok {
			app.cleanup()
		}
	}()

	var err error
	app.reporter, err = errreport.New(errreport.Options{
		DSN:         cfg.Sentry.DSN,
		Environment: cfg.Sentry.Environment,
	}, logger)
	if err != nil {
		return nil, err
	}

	app.taskStore, err = app.setupTaskStore(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to setup task store: %w", err)
	}
	app.registry = task.NewRegistry(app.taskStore, logger)

	resolverOpts := []imagesrc.Option{imagesrc.WithMaxBytes(cfg.Storage.MaxUploadBytes)}
	if !cfg.Server.AllowPrivateImageHosts {
		resolverOpts = append(resolverOpts, imagesrc.WithPublicHostsOnly())
	}
	resolver := imagesrc.NewResolver(resolverOpts...)

	vendors, err := app.setupVendors(ctx, resolver)
	if err != nil {
		return nil, fmt.Errorf("failed to setup AI vendors: %w", err)
	}
	generator, err := vendors.generator(app.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to setup image generator: %w", err)
	}
	recommender := vendors.recommender(app.logger)

	uploader, err := storage.New(ctx, cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to setup storage: %w", err)
	}
	if c, isCloser := uploader.(io.Closer); isCloser {
		app.closers = append(app.closers, c.Close)
	}
	app.mockStorage = cfg.Storage.Backend == "mock" || cfg.Storage.Backend == ""
	app.uploadService = service.NewUploadService(uploader, cfg.Storage.MaxUploadBytes, logger)

	// Mock storage keeps nothing, so generated images are returned inline.
	var jobUploader task.ImageUploader
	if !app.mockStorage {
		jobUploader = uploader
	}

	app.taskRunner, err = app.setupTaskRunner(generator, jobUploader)
	if err != nil {
		return nil, fmt.Errorf("failed to setup task runner: %w", err)
	}

	app.eventEmitter = events.NewInMemoryEventEmitter(logger)
	app.eventEmitter.RegisterHandler(
		task.NewTaskEventHandler(app.taskRunner, logger),
		task.TaskTypeHairstyleGeneration,
	)

	app.generationService, err = service.NewGenerationService(app.registry, app.eventEmitter, app.taskRunner, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create generation service: %w", err)
	}
	app.recommendationService = service.NewRecommendationService(recommender, cfg.Recommend.Count, logger)

	if cfg.Auth.FirebaseProjectID != "" {
		app.tokenVerifier, err = auth.NewFirebaseVerifier(auth.VerifierOptions{ProjectID: cfg.Auth.FirebaseProjectID})
		if err != nil {
			return nil, fmt.Errorf("failed to create token verifier: %w", err)
		}
		logger.Info("firebase authentication enabled", "project_id", cfg.Auth.FirebaseProjectID)
	}

	if err := app.taskRunner.Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to start task runner: %w", err)
	}

	ok = true
	logger.Info("application initialized successfully")
	return app, nil
}

// Run starts the application server, handling lifecycle and cleanup.
// It returns an error if the server fails to start or encounters problems.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// setupTaskStore opens the task store selected by task.store.
func (app *application) setupTaskStore(ctx context.Context) (task.Store, error) {
	cfg := app.config
	switch cfg.Task.Store {
	case "badger":
		store, err := badgerstore.Open(badgerstore.Options{
			Path:     cfg.Badger.Path,
			InMemory: cfg.Badger.Path == "",
			Logger:   app.logger,
		})
		if err != nil {
			return nil, err
		}
		app.closers = append(app.closers, store.Close)
		return store, nil

	case "postgres":
		pool, err := postgres.Connect(ctx, cfg.Database.URL, app.logger)
		if err != nil {
			return nil, err
		}
		app.closers = append(app.closers, closePool(pool))
		if err := postgres.Migrate(ctx, pool, app.logger); err != nil {
			return nil, err
		}
		return postgres.NewTaskStore(pool), nil

	default:
		return task.NewMemoryStore(), nil
	}
}

// vendorSet holds the adapters of every configured AI vendor in the order
// they are tried.
type vendorSet struct {
	recommenders []recommend.Provider
	generators   []generation.Generator
}

// setupVendors creates the Gemini and MiniMax adapters whose API keys are set.
func (app *application) setupVendors(ctx context.Context, resolver *imagesrc.Resolver) (*vendorSet, error) {
	llm := app.config.LLM
	vs := &vendorSet{}

	if llm.GeminiEnabled() {
		client, err := gemini.New(ctx, app.logger, llm, resolver)
		if err != nil {
			return nil, err
		}
		vs.recommenders = append(vs.recommenders, client.Recommender)
		vs.generators = append(vs.generators, client.ImageGenerator)
	}

	if llm.MiniMaxEnabled() {
		client, err := minimax.NewClient(minimax.Options{
			APIKey:         llm.MiniMaxAPIKey,
			BaseURL:        llm.MiniMaxBaseURL,
			ChatModel:      llm.MiniMaxModel,
			ImageModel:     llm.MiniMaxImageModel,
			Logger:         app.logger,
			RequestTimeout: time.Duration(llm.RequestTimeoutSeconds) * time.Second,
		})
		if err != nil {
			return nil, err
		}
		vs.recommenders = append(vs.recommenders, minimax.NewRecommender(client, resolver, app.logger))
		vs.generators = append(vs.generators, minimax.NewImageGenerator(client, resolver, app.logger))
	}

	return vs, nil
}

// generator chains the vendor generators, or returns the mock generator
// when no vendor is configured.
func (vs *vendorSet) generator(logger *slog.Logger) (generation.Generator, error) {
	gens := vs.generators
	if len(gens) == 0 {
		logger.Warn("no image vendor configured, using mock generator")
		gens = []generation.Generator{generation.NewMockGenerator()}
	}
	return generation.NewChain(logger, gens...)
}

// recommender chains the vendor recommenders; the mock catalog is always last.
func (vs *vendorSet) recommender(logger *slog.Logger) *recommend.Chain {
	chain := recommend.NewChain(logger, vs.recommenders...)
	logger.Info("recommendation providers configured", "providers", chain.Providers())
	return chain
}

// setupTaskRunner creates the runner and registers the generation job factory.
func (app *application) setupTaskRunner(generator generation.Generator, uploader task.ImageUploader) (*task.TaskRunner, error) {
	cfg := app.config.Task

	runner := task.NewTaskRunner(app.taskStore, task.TaskRunnerConfig{
		WorkerCount:   cfg.WorkerCount,
		QueueSize:     cfg.QueueSize,
		JobTimeout:    time.Duration(cfg.JobTimeoutSeconds) * time.Second,
		Retention:     time.Duration(cfg.RetentionMinutes) * time.Minute,
		SweepInterval: time.Duration(cfg.SweepIntervalMinutes) * time.Minute,
	}, app.logger)
	runner.SetErrorHandler(errreport.TaskErrorHandler(app.reporter, app.logger))

	factory, err := task.NewHairstyleGenerationJobFactory(generator, uploader, app.logger)
	if err != nil {
		return nil, err
	}
	runner.RegisterFactory(task.TaskTypeHairstyleGeneration, factory)
	return runner, nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.taskRunner != nil {
		app.taskRunner.Stop()
	}

	for i := len(app.closers) - 1; i >= 0; i-- {
		if err := app.closers[i](); err != nil {
			app.logger.Error("error closing resource", "error", err)
		}
	}
	app.closers = nil

	if app.reporter != nil {
		app.reporter.Flush(2 * time.Second)
	}

	app.logger.Info("application shutdown completed")
}

func closePool(pool *pgxpool.Pool) func() error {
	return func() error {
		pool.Close()
		return nil
	}
}
