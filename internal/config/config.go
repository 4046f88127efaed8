package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Storage  StorageConfig  `mapstructure:"storage" validate:"required"`
	LLM      LLMConfig      `mapstructure:"llm" validate:"required"`
	Task     TaskConfig     `mapstructure:"task" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required"`
}

// StorageConfig selects and configures the backend used for uploaded
// document files. Backend "local" stores files on disk under BasePath;
// backend "minio" stores them in an S3-compatible bucket.
type StorageConfig struct {
	Backend  string `mapstructure:"backend" validate:"required,oneof=local minio"`
	BasePath string `mapstructure:"base_path" validate:"required_if=Backend local"`

	MinioEndpoint  string `mapstructure:"minio_endpoint" validate:"required_if=Backend minio"`
	MinioAccessKey string `mapstructure:"minio_access_key" validate:"required_if=Backend minio"`
	MinioSecretKey string `mapstructure:"minio_secret_key" validate:"required_if=Backend minio"`
	MinioBucket    string `mapstructure:"minio_bucket" validate:"required_if=Backend minio"`
	MinioUseSSL    bool   `mapstructure:"minio_use_ssl"`
}

// LLMConfig contains all flashcard generation provider settings.
// Provider selects which backend generates cards; each backend reads
// only the fields it needs and validates them at construction time.
type LLMConfig struct {
	Provider string `mapstructure:"provider" validate:"required,oneof=gemini openai ollama"`

	GeminiAPIKey string `mapstructure:"gemini_api_key"`
	GeminiModel  string `mapstructure:"gemini_model"`

	OpenAIAPIKey  string `mapstructure:"openai_api_key"`
	OpenAIBaseURL string `mapstructure:"openai_base_url"`
	OpenAIModel   string `mapstructure:"openai_model"`

	OllamaHost  string `mapstructure:"ollama_host"`
	OllamaModel string `mapstructure:"ollama_model"`

	// ContextWindowTokens bounds prompt size for local models; inputs
	// exceeding the window are chunked before generation.
	ContextWindowTokens int `mapstructure:"context_window_tokens" validate:"gt=0"`

	MaxCardsPerDocument int `mapstructure:"max_cards_per_document" validate:"gt=0"`

	RequestTimeout time.Duration `mapstructure:"request_timeout" validate:"gt=0"`
}

// TaskConfig contains background task processing settings.
type TaskConfig struct {
	WorkerCount  int           `mapstructure:"worker_count" validate:"gt=0"`
	QueueSize    int           `mapstructure:"queue_size" validate:"gt=0"`
	MaxRetries   int           `mapstructure:"max_retries" validate:"gte=0"`
	RetryBackoff time.Duration `mapstructure:"retry_backoff" validate:"gt=0"`

	// SoftTimeLimit is how long a task may run before it is asked to
	// stop via context cancellation. HardTimeLimit is the ceiling after
	// which the task is abandoned and marked failed regardless.
	SoftTimeLimit time.Duration `mapstructure:"soft_time_limit" validate:"gt=0"`
	HardTimeLimit time.Duration `mapstructure:"hard_time_limit" validate:"gt=0,gtfield=SoftTimeLimit"`

	StuckTaskAge time.Duration `mapstructure:"stuck_task_age" validate:"gt=0"`
}
