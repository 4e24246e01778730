package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// envPrefix is prepended to every environment variable read by viper.
const envPrefix = "STYLEAI"

// legacyEnv maps config keys to the unprefixed variable names used by
// existing deployments. They are consulted after the prefixed names.
var legacyEnv = map[string]string{
	"server.port":                 "PORT",
	"server.cors_origins":         "CORS_ORIGINS",
	"llm.gemini_api_key":          "GEMINI_API_KEY",
	"llm.minimax_api_key":         "MINIMAX_API_KEY",
	"database.url":                "DATABASE_URL",
	"storage.bucket":              "FIREBASE_STORAGE_BUCKET",
	"storage.credentials_file":    "GOOGLE_APPLICATION_CREDENTIALS",
	"auth.firebase_project_id":    "FIREBASE_PROJECT_ID",
	"sentry.dsn":                  "SENTRY_DSN",
	"sentry.environment":          "SENTRY_ENVIRONMENT",
	"recommend.count":             "RECOMMENDATION_COUNT",
	"task.store":                  "TASK_STORE",
	"badger.path":                 "BADGER_PATH",
	"storage.backend":             "STORAGE_BACKEND",
	"storage.local_path":          "STORAGE_LOCAL_PATH",
	"storage.public_base_url":     "STORAGE_PUBLIC_BASE_URL",
	"llm.request_timeout_seconds": "LLM_REQUEST_TIMEOUT_SECONDS",
}

// setDefaults registers default values for every optional setting.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.default_locale", "en")
	v.SetDefault("server.allow_private_image_hosts", false)

	v.SetDefault("llm.gemini_model", "gemini-2.0-flash")
	v.SetDefault("llm.gemini_image_model", "gemini-2.0-flash-preview-image-generation")
	v.SetDefault("llm.minimax_base_url", "https://api.minimax.io/v1")
	v.SetDefault("llm.minimax_model", "MiniMax-Text-01")
	v.SetDefault("llm.minimax_image_model", "image-01")
	v.SetDefault("llm.request_timeout_seconds", 60)

	v.SetDefault("recommend.count", 6)

	v.SetDefault("task.store", "memory")
	v.SetDefault("task.worker_count", 2)
	v.SetDefault("task.queue_size", 100)
	v.SetDefault("task.job_timeout_seconds", 120)
	v.SetDefault("task.retention_minutes", 0)
	v.SetDefault("task.sweep_interval_minutes", 5)

	v.SetDefault("badger.path", "data/tasks")

	v.SetDefault("storage.backend", "mock")
	v.SetDefault("storage.bucket", "94style-ai.appspot.com")
	v.SetDefault("storage.local_path", "data/uploads")
	v.SetDefault("storage.max_upload_bytes", 10<<20)

	v.SetDefault("sentry.environment", "development")
}

// Load configuration from environment variables and optionally config files.
// Environment variables take precedence over values from config files.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	// A missing .env file is the normal case outside local development.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, legacy := range legacyEnv {
		prefixed := envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, legacy); err != nil {
			return nil, fmt.Errorf("failed to bind environment variable for %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Comma-separated lists arrive from the environment as one string.
	cfg.Server.CORSOrigins = splitList(cfg.Server.CORSOrigins)

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// validate runs struct-tag validation followed by cross-field checks.
func validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	switch cfg.Task.Store {
	case "postgres":
		if cfg.Database.URL == "" {
			return errors.New("config validation failed: database.url is required for the postgres task store")
		}
	case "badger":
		if cfg.Badger.Path == "" {
			return errors.New("config validation failed: badger.path is required for the badger task store")
		}
	}

	switch cfg.Storage.Backend {
	case "gcs":
		if cfg.Storage.Bucket == "" {
			return errors.New("config validation failed: storage.bucket is required for the gcs backend")
		}
	case "local":
		if cfg.Storage.LocalPath == "" || cfg.Storage.PublicBaseURL == "" {
			return errors.New("config validation failed: storage.local_path and storage.public_base_url are required for the local backend")
		}
	}

	return nil
}

// splitList flattens comma-separated entries and drops blanks.
func splitList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
