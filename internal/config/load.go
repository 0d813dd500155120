package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// envPrefix namespaces the environment variables the loader reads, e.g.
// PASTFORWARD_GENERATION_GEMINI_API_KEY.
const envPrefix = "PASTFORWARD"

// Load reads configuration from environment variables and an optional
// config.yaml in the working directory. Environment variables take
// precedence over file values, which take precedence over defaults.
// Returns a populated Config or an error if loading or validation fails.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// The config file is optional; only a malformed file is an error.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults registers a default for every key so AutomaticEnv binds each
// of them, and so a bare environment provides a runnable configuration
// short of the API key.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")

	v.SetDefault("database.url", "")

	v.SetDefault("generation.gemini_api_key", "")
	v.SetDefault("generation.image_model", "gemini-2.5-flash-image")
	v.SetDefault("generation.text_model", "gemini-2.5-flash")
	v.SetDefault("generation.tts_model", "gemini-2.5-flash-preview-tts")
	v.SetDefault("generation.video_model", "veo-3.1-fast-generate-preview")
	v.SetDefault("generation.narration_voice", "Kore")
	v.SetDefault("generation.video_resolution", "720p")
	v.SetDefault("generation.max_attempts", 3)
	v.SetDefault("generation.retry_base_delay", time.Second)
	v.SetDefault("generation.video_poll_interval", 10*time.Second)

	v.SetDefault("engine.workers", 2)

	v.SetDefault("album.compositor_url", "")
}
