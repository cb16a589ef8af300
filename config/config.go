package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds server and engine settings loaded from the environment or config files.
type Config struct {
	ListenAddr string `mapstructure:"LISTEN_ADDR" validate:"required,hostname_port"`
	LogLevel   string `mapstructure:"LOG_LEVEL" validate:"required,oneof=trace debug info warn warning error fatal panic"`

	Storage `mapstructure:",squash"`

	HistoryDebounce time.Duration `mapstructure:"HISTORY_DEBOUNCE" validate:"gte=0"`
	HistoryLimit    int           `mapstructure:"HISTORY_LIMIT" validate:"gte=1,lte=10000"`

	WorkspaceWidth  float64 `mapstructure:"WORKSPACE_WIDTH" validate:"gt=0"`
	WorkspaceHeight float64 `mapstructure:"WORKSPACE_HEIGHT" validate:"gt=0"`
	ThumbnailSize   int     `mapstructure:"THUMBNAIL_SIZE" validate:"gte=8,lte=1024"`

	FontDir string `mapstructure:"FONT_DIR"`
}

// Storage selects and parameterizes the persistence backend.
type Storage struct {
	Type           string `mapstructure:"STORAGE_TYPE" validate:"omitempty,oneof=memory filesystem sqlite s3"`
	LocalPath      string `mapstructure:"LOCAL_STORAGE_PATH"`
	DataSourceName string `mapstructure:"DATA_SOURCE_NAME"`
	BucketName     string `mapstructure:"S3_BUCKET_NAME" validate:"required_if=Type s3"`
}

var (
	validate = validator.New(validator.WithRequiredStructEnabled())

	keys = []string{
		"LISTEN_ADDR",
		"LOG_LEVEL",
		"STORAGE_TYPE",
		"LOCAL_STORAGE_PATH",
		"DATA_SOURCE_NAME",
		"S3_BUCKET_NAME",
		"HISTORY_DEBOUNCE",
		"HISTORY_LIMIT",
		"WORKSPACE_WIDTH",
		"WORKSPACE_HEIGHT",
		"THUMBNAIL_SIZE",
		"FONT_DIR",
	}
)

// Load reads .env files if present, applies defaults, binds env vars,
// reads an optional config.yaml and validates the result.
func Load() (*Config, error) {
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AutomaticEnv()

	v.SetDefault("LISTEN_ADDR", ":3002")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("STORAGE_TYPE", "memory")
	v.SetDefault("LOCAL_STORAGE_PATH", "./data")
	v.SetDefault("DATA_SOURCE_NAME", "canvas.db")
	v.SetDefault("HISTORY_DEBOUNCE", "500ms")
	v.SetDefault("HISTORY_LIMIT", 50)
	v.SetDefault("WORKSPACE_WIDTH", 900)
	v.SetDefault("WORKSPACE_HEIGHT", 1200)
	v.SetDefault("THUMBNAIL_SIZE", 64)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("config file error: %w", err)
		}
	}

	for _, key := range keys {
		_ = v.BindEnv(key)
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("config unmarshal error: %w", err)
	}

	if s := v.GetString("HISTORY_DEBOUNCE"); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil {
			return nil, fmt.Errorf("invalid HISTORY_DEBOUNCE: %w", err)
		}
		c.HistoryDebounce = d
	}

	if err := validate.Struct(&c); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &c, nil
}
