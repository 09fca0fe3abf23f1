package main

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is loaded from environment variables (after the optional .env file
// has been applied).
type Config struct {
	Port          string `env:"PORT" envDefault:"5000"`
	PublicBaseURL string `env:"PUBLIC_BASE_URL" envDefault:"http://localhost:5000"`
	DatabaseDSN   string `env:"DB_DSN,notEmpty"`
	AutoMigrate   bool   `env:"DB_AUTO_MIGRATE" envDefault:"true"`
	LogLevel      int    `env:"LOG_LEVEL" envDefault:"0"`

	JWT     JWTConfig     `envPrefix:"JWT_"`
	Storage StorageConfig `envPrefix:"MINIO_"`
	SMTP    SMTPConfig    `envPrefix:"SMTP_"`
}

// JWTConfig carries signing secrets and token validity windows. Access and
// refresh use distinct secrets, as the original two env keys did.
type JWTConfig struct {
	AccessSecret  string        `env:"SECRET_KEY" envDefault:"dev-insecure-secret-change"`
	RefreshSecret string        `env:"REFRESH_SECRET_KEY" envDefault:"dev-insecure-refresh-change"`
	AccessTTL     time.Duration `env:"ACCESS_TTL" envDefault:"5m"`
	RefreshTTL    time.Duration `env:"REFRESH_TTL" envDefault:"6h"`
	RenewWithin   time.Duration `env:"RENEW_WITHIN" envDefault:"2m"`
}

// StorageConfig carries object-store parameters for recipe images.
type StorageConfig struct {
	Endpoint      string `env:"ENDPOINT" envDefault:"localhost:9000"`
	AccessKey     string `env:"ACCESS_KEY"`
	SecretKey     string `env:"SECRET_KEY"`
	Bucket        string `env:"BUCKET_NAME" envDefault:"recipe-images"`
	UseSSL        bool   `env:"USE_SSL" envDefault:"false"`
	PublicBaseURL string `env:"PUBLIC_BASE_URL"`
}

// SMTPConfig carries mail transport parameters.
type SMTPConfig struct {
	Host     string `env:"HOST" envDefault:"localhost"`
	Port     int    `env:"PORT" envDefault:"587"`
	Username string `env:"USERNAME"`
	Password string `env:"PASSWORD"`
	From     string `env:"FROM" envDefault:"noreply@delicious-recipes.local"`
}

func loadConfig() (*Config, error) {
	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, nil
}
