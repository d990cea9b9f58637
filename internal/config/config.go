package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is read once at startup.
type Config struct {
	DatabaseURL string
	Port        string
	FrontendURL string
	RabbitMQURL string
	LogLevel    string
	LogFormat   string
}

// Load reads an optional .env file, then the environment. Variables already
// set in the environment win over .env entries.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("config: load %s: %w", f, err)
		}
	}

	v := viper.New()
	v.SetDefault("PORT", "4000")
	v.SetDefault("FRONTEND_URL", "*")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	v.AutomaticEnv()
	// DB_URL is the historical name of DATABASE_URL.
	if err := v.BindEnv("DATABASE_URL", "DATABASE_URL", "DB_URL"); err != nil {
		return Config{}, fmt.Errorf("config: bind DATABASE_URL: %w", err)
	}

	return Config{
		DatabaseURL: v.GetString("DATABASE_URL"),
		Port:        v.GetString("PORT"),
		FrontendURL: v.GetString("FRONTEND_URL"),
		RabbitMQURL: v.GetString("RABBITMQ_URL"),
		LogLevel:    v.GetString("LOG_LEVEL"),
		LogFormat:   v.GetString("LOG_FORMAT"),
	}, nil
}

// Addr is the listen address for Port.
func (c Config) Addr() string {
	return ":" + c.Port
}

func (c Config) String() string {
	return fmt.Sprintf("database_url=%s port=%s frontend_url=%s rabbitmq_url=%s log_level=%s log_format=%s",
		maskURL(c.DatabaseURL), c.Port, c.FrontendURL, maskURL(c.RabbitMQURL), c.LogLevel, c.LogFormat)
}

// maskURL hides credentials embedded in a connection URL.
func maskURL(raw string) string {
	if raw == "" {
		return "<not configured>"
	}
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	u.User = url.User("****")
	return u.String()
}
