// Package config loads environment-driven process configuration.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Settings holds everything the process reads from the environment.
type Settings struct {
	Port           string   `env:"PORT" envDefault:"4000"`
	DBPath         string   `env:"DB_PATH" envDefault:"mgnrega.db"`
	DataGovAPIKey  string   `env:"DATA_GOV_API_KEY"`
	DataGovBaseURL string   `env:"DATA_GOV_BASE_URL"`
	StateName      string   `env:"STATE_NAME" envDefault:"BIHAR"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
}

// Load parses Settings from the environment.
func Load() (Settings, error) {
	var s Settings
	if err := env.Parse(&s); err != nil {
		return Settings{}, fmt.Errorf("parse env: %w", err)
	}
	return s, nil
}
