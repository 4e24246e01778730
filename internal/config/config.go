package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"    validate:"required"`
	LLM       LLMConfig       `mapstructure:"llm"       validate:"required"`
	Recommend RecommendConfig `mapstructure:"recommend" validate:"required"`
	Task      TaskConfig      `mapstructure:"task"      validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Badger    BadgerConfig    `mapstructure:"badger"`
	Storage   StorageConfig   `mapstructure:"storage"   validate:"required"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Sentry    SentryConfig    `mapstructure:"sentry"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	// CORSOrigins lists allowed browser origins; "*" allows any origin.
	CORSOrigins []string `mapstructure:"cors_origins" validate:"required,min=1,dive,required"`
	// DefaultLocale is used when a request carries no language preference.
	DefaultLocale string `mapstructure:"default_locale" validate:"required"`
	// AllowPrivateImageHosts lets image URLs point at loopback and private
	// networks. Off by default so clients cannot probe internal services.
	AllowPrivateImageHosts bool `mapstructure:"allow_private_image_hosts"`
}

// LLMConfig contains the vendor settings for text and image generation.
// Empty API keys are valid: the corresponding vendor is simply skipped.
type LLMConfig struct {
	GeminiAPIKey          string `mapstructure:"gemini_api_key"`
	GeminiModel           string `mapstructure:"gemini_model"            validate:"required"`
	GeminiImageModel      string `mapstructure:"gemini_image_model"      validate:"required"`
	MiniMaxAPIKey         string `mapstructure:"minimax_api_key"`
	MiniMaxBaseURL        string `mapstructure:"minimax_base_url"        validate:"required,url"`
	MiniMaxModel          string `mapstructure:"minimax_model"           validate:"required"`
	MiniMaxImageModel     string `mapstructure:"minimax_image_model"     validate:"required"`
	RequestTimeoutSeconds int    `mapstructure:"request_timeout_seconds" validate:"gte=1"`
}

// RecommendConfig controls the recommendation endpoint.
type RecommendConfig struct {
	// Count is the number of hairstyles returned per recommendation request.
	Count int `mapstructure:"count" validate:"gte=1,lte=6"`
}

// TaskConfig controls the task registry and the background runner.
type TaskConfig struct {
	Store                string `mapstructure:"store"                  validate:"required,oneof=memory badger postgres"`
	WorkerCount          int    `mapstructure:"worker_count"           validate:"gte=1"`
	QueueSize            int    `mapstructure:"queue_size"             validate:"gte=1"`
	JobTimeoutSeconds    int    `mapstructure:"job_timeout_seconds"    validate:"gte=1"`
	RetentionMinutes     int    `mapstructure:"retention_minutes"      validate:"gte=0"`
	SweepIntervalMinutes int    `mapstructure:"sweep_interval_minutes" validate:"gte=1"`
}

// DatabaseConfig contains all database-related configuration settings.
// Only required when the postgres task store is selected.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"omitempty,url"`
}

// BadgerConfig configures the embedded task store.
type BadgerConfig struct {
	Path string `mapstructure:"path"`
}

// StorageConfig selects where uploaded and generated images are written.
type StorageConfig struct {
	Backend         string `mapstructure:"backend"          validate:"required,oneof=mock gcs local"`
	Bucket          string `mapstructure:"bucket"`
	CredentialsFile string `mapstructure:"credentials_file"`
	LocalPath       string `mapstructure:"local_path"`
	PublicBaseURL   string `mapstructure:"public_base_url"  validate:"omitempty,url"`
	MaxUploadBytes  int64  `mapstructure:"max_upload_bytes" validate:"gte=1"`
}

// AuthConfig enables Firebase ID token verification when a project is set.
type AuthConfig struct {
	FirebaseProjectID string `mapstructure:"firebase_project_id"`
}

// SentryConfig enables error reporting when a DSN is set.
type SentryConfig struct {
	DSN         string `mapstructure:"dsn"`
	Environment string `mapstructure:"environment"`
}

// GeminiEnabled reports whether a Gemini API key is configured.
func (c LLMConfig) GeminiEnabled() bool {
	return c.GeminiAPIKey != ""
}

// MiniMaxEnabled reports whether a MiniMax API key is configured.
func (c LLMConfig) MiniMaxEnabled() bool {
	return c.MiniMaxAPIKey != ""
}
