package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Worker   WorkerConfig   `mapstructure:"worker"   validate:"required"`
	Blob     BlobConfig     `mapstructure:"blob"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`

	// BaseURL is the externally reachable address of this server. It is
	// embedded into upstream payloads as the callback URL and as the base
	// for staged-image URLs, so it must be resolvable by the external
	// worker, not just by clients.
	BaseURL string `mapstructure:"base_url" validate:"required,url"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
}

// RedisConfig contains settings for the optional Redis-backed job state.
// When URL is empty the in-memory registry and result cache are used.
type RedisConfig struct {
	URL string `mapstructure:"url" validate:"omitempty,uri"`
}

// WorkerConfig selects and configures the external generation worker.
type WorkerConfig struct {
	// Backend chooses the worker implementation: "kie" talks to the KIE
	// jobs API over HTTP (callback + pull), "gemini" generates in-process
	// through the Gemini API.
	Backend string `mapstructure:"backend" validate:"required,oneof=kie gemini"`

	KIEBaseURL string `mapstructure:"kie_base_url" validate:"required_if=Backend kie,omitempty,url"`
	KIEAPIKey  string `mapstructure:"kie_api_key"  validate:"required_if=Backend kie"`

	GeminiAPIKey string `mapstructure:"gemini_api_key" validate:"required_if=Backend gemini"`
	GeminiModel  string `mapstructure:"gemini_model"`
}

// BlobConfig tunes the ephemeral blob store used for staged reference
// images. Zero values select the store's defaults.
type BlobConfig struct {
	// TTLSeconds is the absolute lifetime of a handle that is never fetched.
	TTLSeconds int `mapstructure:"ttl_seconds" validate:"omitempty,gt=0"`

	// GraceSeconds is the retention window after a fetch, so the external
	// worker can re-fetch the same URL.
	GraceSeconds int `mapstructure:"grace_seconds" validate:"omitempty,gt=0"`

	// MaxBytes caps the size of a single staged image.
	MaxBytes int `mapstructure:"max_bytes" validate:"omitempty,gt=0"`
}
