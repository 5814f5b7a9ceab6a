package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Load reads configuration from environment variables and an optional
// config file. Environment variables take precedence over values from the
// config file. Returns a populated Config struct or an error if loading or
// validation fails.
func Load() (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("worker.backend", "kie")
	v.SetDefault("worker.kie_base_url", "https://api.kie.ai")
	v.SetDefault("worker.gemini_model", "gemini-2.5-flash-image")
	v.SetDefault("blob.ttl_seconds", 600)
	v.SetDefault("blob.grace_seconds", 30)
	v.SetDefault("blob.max_bytes", 10*1024*1024)

	// Optional config file: ./config.yaml
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Missing config file is fine; env vars may carry everything.
	}

	// Environment variables with PIXGEN_ prefix, e.g. PIXGEN_SERVER_PORT,
	// PIXGEN_DATABASE_URL, PIXGEN_WORKER_KIE_API_KEY.
	v.SetEnvPrefix("PIXGEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// AutomaticEnv alone does not make Unmarshal see keys that have no
	// default and no config-file value, so every key is bound explicitly.
	// Without this, an env-only deployment cannot set the required fields.
	for _, key := range []string{
		"server.port",
		"server.log_level",
		"server.base_url",
		"database.url",
		"redis.url",
		"worker.backend",
		"worker.kie_base_url",
		"worker.kie_api_key",
		"worker.gemini_api_key",
		"worker.gemini_model",
		"blob.ttl_seconds",
		"blob.grace_seconds",
		"blob.max_bytes",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind environment variable for %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}
