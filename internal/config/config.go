package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"     validate:"required"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Generation GenerationConfig `mapstructure:"generation" validate:"required"`
	Engine     EngineConfig     `mapstructure:"engine"     validate:"required"`
	Album      AlbumConfig      `mapstructure:"album"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains the durable session mirror settings. The mirror
// is optional: with an empty URL the engine runs purely in memory.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"omitempty,url"`
}

// GenerationConfig contains all settings for the Gemini generation backend.
type GenerationConfig struct {
	GeminiAPIKey   string `mapstructure:"gemini_api_key" validate:"required"`
	ImageModel     string `mapstructure:"image_model"    validate:"required"`
	TextModel      string `mapstructure:"text_model"     validate:"required"`
	TTSModel       string `mapstructure:"tts_model"      validate:"required"`
	VideoModel     string `mapstructure:"video_model"    validate:"required"`
	NarrationVoice string `mapstructure:"narration_voice" validate:"required"`

	// VideoResolution is the output resolution requested from the video
	// model, e.g. "720p".
	VideoResolution string `mapstructure:"video_resolution" validate:"required"`

	// MaxAttempts bounds total image-generation attempts for transient
	// failures, including the first.
	MaxAttempts int `mapstructure:"max_attempts" validate:"required,gte=1"`

	// RetryBaseDelay is the delay before the first retry; each further
	// retry doubles it.
	RetryBaseDelay time.Duration `mapstructure:"retry_base_delay" validate:"required"`

	// VideoPollInterval is how often a long-running video operation is
	// polled for completion.
	VideoPollInterval time.Duration `mapstructure:"video_poll_interval" validate:"required"`
}

// EngineConfig contains the batch scheduler settings.
type EngineConfig struct {
	// Workers bounds concurrent in-flight generation calls per batch.
	Workers int `mapstructure:"workers" validate:"required,gte=1"`
}

// AlbumConfig contains the external album compositor settings. Optional:
// with an empty URL album export is disabled.
type AlbumConfig struct {
	CompositorURL string `mapstructure:"compositor_url" validate:"omitempty,url"`
}
