package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds application configuration sourced from environment variables.
type Config struct {
	Env            string   `env:"APP_ENV" env-default:"dev"`
	Port           string   `env:"PORT" env-default:"8080"`
	DBPath         string   `env:"DB_PATH" env-default:"./printlog.db"`
	MigrationsDir  string   `env:"MIGRATIONS_DIR" env-default:"migrations"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" env-separator:"," env-default:"http://localhost:5173"`
}

// Load reads the environment and returns a populated Config.
func Load() (Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("read environment config: %w", err)
	}
	return cfg, nil
}

// IsDev reports whether the app runs in a development environment; dev runs
// apply database migrations on startup.
func (c Config) IsDev() bool {
	return c.Env != "prod"
}
