package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"printflow"`
		Port int    `envconfig:"PORT" default:"8080"`
	}

	DB struct {
		URL string `envconfig:"DATABASE_URL"`
	}

	Server struct {
		Timeout        time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
		AllowedOrigins string        `envconfig:"ALLOWED_ORIGINS"`
	}

	SMTP struct {
		Host string `envconfig:"SMTP_HOST"`
		Port int    `envconfig:"SMTP_PORT" default:"587"`
		User string `envconfig:"SMTP_USER"`
		Pass string `envconfig:"SMTP_PASS"`
		From string `envconfig:"SMTP_FROM" default:"orders@impactdirect.example"`
	}

	Blob struct {
		Dir     string `envconfig:"BLOB_DIR" default:"./data/blobs"`
		BaseURL string `envconfig:"BLOB_BASE_URL" default:"http://localhost:8080/files"`
	}

	OpenAI struct {
		APIKey string `envconfig:"OPENAI_API_KEY"`
	}
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}
	return &cfg, nil
}
