package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all process-level settings. Values come from the environment;
// a .env file, when present, is loaded first (development convenience).
type Config struct {
	Port        string `env:"PORT" envDefault:"3000"`
	ClientURL   string `env:"CLIENT_URL" envDefault:"http://localhost:5173"`
	DatabaseURL string `env:"DATABASE_URL,required"`
	RedisURL    string `env:"REDIS_URL,required"`
	JWTSecret   string `env:"JWT_SECRET,required"`

	SMTPHost string `env:"SMTP_HOST"`
	SMTPPort string `env:"SMTP_PORT" envDefault:"587"`
	SMTPUser string `env:"SMTP_USER"`
	SMTPPass string `env:"SMTP_PASS"`
	MailFrom string `env:"MAIL_FROM" envDefault:"no-reply@rentyourdate.space"`
}

// Load reads .env (if any) and parses the environment into a Config.
func Load() (Config, error) {
	// Missing .env is fine in production; the environment is already set.
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse environment: %w", err)
	}
	return cfg, nil
}
